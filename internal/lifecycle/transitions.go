package lifecycle

import "github.com/dukerupert/choreboard/internal/model"

// entryTransitions lists the allowed calendar entry moves. A rejected entry
// is resubmittable exactly like a planned one.
var entryTransitions = map[model.EntryStatus][]model.EntryStatus{
	model.EntryPlanned:   {model.EntrySubmitted},
	model.EntryRejected:  {model.EntrySubmitted},
	model.EntrySubmitted: {model.EntryApproved, model.EntryRejected},
}

// CanTransition reports whether an entry may move from one status to another.
func CanTransition(from, to model.EntryStatus) bool {
	for _, s := range entryTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// Editable reports whether an entry's date or assignee may still change.
func Editable(s model.EntryStatus) bool {
	return s == model.EntryPlanned
}

// Deletable reports whether an entry may be removed.
func Deletable(s model.EntryStatus) bool {
	return s == model.EntryPlanned || s == model.EntryRejected
}

// Action is a reviewer's decision on a pending approval.
type Action string

const (
	ActionApprove Action = "approve"
	ActionReject  Action = "reject"
)

func (a Action) Valid() bool {
	return a == ActionApprove || a == ActionReject
}

func (a Action) entryStatus() model.EntryStatus {
	if a == ActionApprove {
		return model.EntryApproved
	}
	return model.EntryRejected
}

func (a Action) approvalStatus() model.ApprovalStatus {
	if a == ActionApprove {
		return model.ApprovalApproved
	}
	return model.ApprovalRejected
}
