package domain

// ActionID names a next-step operation on a ticket.
type ActionID string

const (
	ActionAssign         ActionID = "assign"
	ActionStartWork      ActionID = "start-work"
	ActionRequestParts   ActionID = "request-parts"
	ActionUpdateProgress ActionID = "update-progress"
	ActionRequestClose   ActionID = "request-close"
	ActionReviewParts    ActionID = "review-parts"
	ActionReviewClose    ActionID = "review-close"
	ActionComplete       ActionID = "complete"
	ActionUnassign       ActionID = "unassign"
	ActionReassign       ActionID = "reassign"
	ActionReopen         ActionID = "reopen"
	ActionCancel         ActionID = "cancel"
)

// Actions lists every action identifier.
var Actions = []ActionID{
	ActionAssign,
	ActionStartWork,
	ActionRequestParts,
	ActionUpdateProgress,
	ActionRequestClose,
	ActionReviewParts,
	ActionReviewClose,
	ActionComplete,
	ActionUnassign,
	ActionReassign,
	ActionReopen,
	ActionCancel,
}

// ParseAction returns the identifier when raw names a known action.
func ParseAction(raw string) (ActionID, bool) {
	for _, action := range Actions {
		if string(action) == raw {
			return action, true
		}
	}
	return "", false
}
