package auth

import "github.com/facilityops/helpdesk-gateway/internal/domain"

// LoginPath is where unauthenticated callers are sent.
const LoginPath = "/login"

// GuardState is the outcome of checking a caller against a view's allow-list.
// The zero value is GuardLoading: nothing is known about the caller yet.
type GuardState int

const (
	GuardLoading GuardState = iota
	GuardUnauthenticated
	GuardAuthorized
	GuardForbidden
)

func (s GuardState) String() string {
	switch s {
	case GuardUnauthenticated:
		return "unauthenticated"
	case GuardAuthorized:
		return "authorized"
	case GuardForbidden:
		return "forbidden"
	default:
		return "loading"
	}
}

// SessionLookup is what is known about the caller's session. Resolved is
// false while the session store has not answered.
type SessionLookup struct {
	Resolved bool
	Session  *domain.Session
}

// Decision is the guard verdict plus where to send the caller, if anywhere.
type Decision struct {
	State    GuardState
	Redirect string
}

var homes = []struct {
	role domain.Role
	path string
}{
	{domain.RoleAdministrator, "/admin/dashboard"},
	{domain.RoleManager, "/manager/dashboard"},
	{domain.RoleStaff, "/staff/dashboard"},
	{domain.RoleReporter, "/reporter/dashboard"},
}

// HomeFor returns the landing page of the most privileged role held.
func HomeFor(roles domain.Roles) string {
	for _, home := range homes {
		if roles.Has(home.role) {
			return home.path
		}
	}
	return LoginPath
}

// Evaluate decides whether the caller may see a view restricted to allow.
// An empty allow-list admits any authenticated caller.
func Evaluate(lookup SessionLookup, allow domain.Roles) Decision {
	if !lookup.Resolved {
		return Decision{State: GuardLoading}
	}
	if lookup.Session == nil {
		return Decision{State: GuardUnauthenticated, Redirect: LoginPath}
	}

	roles := lookup.Session.Actor.Roles
	if len(allow) == 0 {
		return Decision{State: GuardAuthorized}
	}
	for role := range allow {
		if roles.Has(role) {
			return Decision{State: GuardAuthorized}
		}
	}
	return Decision{State: GuardForbidden, Redirect: HomeFor(roles)}
}
