package workflow

import "github.com/facilityops/helpdesk-gateway/internal/domain"

// StepID identifies a step in the ticket progression.
type StepID string

const (
	StepReported      StepID = "reported"
	StepAssignment    StepID = "assignment"
	StepAssigned      StepID = "assigned"
	StepInProgress    StepID = "in-progress"
	StepPartApproval  StepID = "part-approval"
	StepParts         StepID = "parts"
	StepCloseApproval StepID = "close-approval"
	StepClosed        StepID = "closed"
	StepUnknown       StepID = "unknown"
)

// Responsible names who must act on a step.
type Responsible string

const (
	ResponsibleReporter Responsible = "Reporter"
	ResponsibleStaff    Responsible = "Staff"
	ResponsibleManager  Responsible = "Manager/Administrator"
	ResponsibleSystem   Responsible = "System"
)

type stepDef struct {
	title       string
	description string
	responsible Responsible
}

var steps = map[StepID]stepDef{
	StepReported: {
		title:       "Ticket Reported",
		description: "The issue has been reported.",
		responsible: ResponsibleReporter,
	},
	StepAssignment: {
		title:       "Waiting for Assignment",
		description: "A manager assigns the ticket to a staff member.",
		responsible: ResponsibleManager,
	},
	StepAssigned: {
		title:       "Assigned to Staff",
		description: "A staff member has been assigned.",
		responsible: ResponsibleManager,
	},
	StepInProgress: {
		title:       "In Progress",
		description: "The assigned staff member works on the issue.",
		responsible: ResponsibleStaff,
	},
	StepPartApproval: {
		title:       "Waiting for Part Approval",
		description: "A manager reviews the requested parts.",
		responsible: ResponsibleManager,
	},
	StepParts: {
		title:       "Waiting for Parts",
		description: "Approved parts are on order.",
		responsible: ResponsibleSystem,
	},
	StepCloseApproval: {
		title:       "Waiting for Close Approval",
		description: "A manager reviews the close request.",
		responsible: ResponsibleManager,
	},
	StepClosed: {
		title:       "Closed",
		description: "The ticket is closed.",
		responsible: ResponsibleSystem,
	},
}

var (
	directPath = []StepID{StepReported, StepAssignment, StepAssigned, StepInProgress, StepCloseApproval, StepClosed}
	partPath   = []StepID{StepReported, StepAssignment, StepAssigned, StepInProgress, StepPartApproval, StepParts, StepCloseApproval, StepClosed}
)

// statusRow places a status on a path. Steps before current are completed,
// steps after it are pending. An empty current marks every step completed.
type statusRow struct {
	path    []StepID
	current StepID
	actions []domain.ActionID
}

var statusTable = map[domain.TicketStatus]statusRow{
	domain.TicketStatusReported: {
		path:    directPath,
		current: StepAssignment,
		actions: []domain.ActionID{domain.ActionAssign},
	},
	domain.TicketStatusWaitingForAssignment: {
		path:    directPath,
		current: StepAssignment,
		actions: []domain.ActionID{domain.ActionAssign},
	},
	domain.TicketStatusAssigned: {
		path:    directPath,
		current: StepInProgress,
		actions: []domain.ActionID{domain.ActionStartWork, domain.ActionRequestParts, domain.ActionRequestClose, domain.ActionUpdateProgress},
	},
	domain.TicketStatusReviewing: {
		path:    directPath,
		current: StepInProgress,
		actions: []domain.ActionID{domain.ActionStartWork, domain.ActionRequestParts, domain.ActionUpdateProgress},
	},
	domain.TicketStatusInProgress: {
		path:    directPath,
		current: StepInProgress,
		actions: []domain.ActionID{domain.ActionRequestParts, domain.ActionRequestClose, domain.ActionUpdateProgress},
	},
	domain.TicketStatusWaitingForPartApproval: {
		path:    partPath,
		current: StepPartApproval,
		actions: []domain.ActionID{domain.ActionReviewParts},
	},
	domain.TicketStatusWaitingForParts: {
		path:    partPath,
		current: StepParts,
	},
	domain.TicketStatusWaitingForCloseApproval: {
		path:    directPath,
		current: StepCloseApproval,
		actions: []domain.ActionID{domain.ActionReviewClose},
	},
	domain.TicketStatusClosed: {
		path: directPath,
	},
}

type actorScope int

const (
	scopeManager actorScope = iota
	scopeCreator
)

// privilegedRule grants an action outside the step table.
type privilegedRule struct {
	action   domain.ActionID
	statuses []domain.TicketStatus
	scope    actorScope
}

var (
	openStatuses = []domain.TicketStatus{
		domain.TicketStatusReported,
		domain.TicketStatusWaitingForAssignment,
		domain.TicketStatusAssigned,
		domain.TicketStatusReviewing,
		domain.TicketStatusInProgress,
		domain.TicketStatusWaitingForPartApproval,
		domain.TicketStatusWaitingForParts,
		domain.TicketStatusWaitingForCloseApproval,
	}
	workingStatuses = []domain.TicketStatus{
		domain.TicketStatusAssigned,
		domain.TicketStatusReviewing,
		domain.TicketStatusInProgress,
	}
)

var privilegedRules = []privilegedRule{
	{action: domain.ActionReopen, statuses: []domain.TicketStatus{domain.TicketStatusClosed}, scope: scopeManager},
	{action: domain.ActionComplete, statuses: []domain.TicketStatus{domain.TicketStatusInProgress, domain.TicketStatusWaitingForCloseApproval}, scope: scopeManager},
	{action: domain.ActionUnassign, statuses: workingStatuses, scope: scopeManager},
	{action: domain.ActionReassign, statuses: workingStatuses, scope: scopeManager},
	{action: domain.ActionCancel, statuses: openStatuses, scope: scopeManager},
	{action: domain.ActionCancel, statuses: []domain.TicketStatus{domain.TicketStatusReported, domain.TicketStatusWaitingForAssignment}, scope: scopeCreator},
}
