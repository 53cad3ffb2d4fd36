// Package moderation implements the content lifecycle state machine
// shared by forum posts and comments. Content is pending, approved or
// rejected; moderators and admins move it between states. The package
// holds only the decision logic; persistence stays in the repositories
// so the rules are testable without a database.
package moderation

import (
	"errors"

	"github.com/iliyamo/community-hub/internal/model"
)

// Actions a moderator can take on a content item.
const (
	ActionApprove = "approve"
	ActionReject  = "reject"
)

// ErrUnknownAction is returned for actions outside the state machine.
var ErrUnknownAction = errors.New("unknown moderation action")

// InitialStatus returns the state newly created content enters. Authors
// whose role is in the auto-approve set publish immediately; everyone
// else lands in the pending queue. The same rule applies to posts and
// comments.
func InitialStatus(authorRole string, autoApprove map[string]bool) string {
	if autoApprove[authorRole] {
		return model.StatusApproved
	}
	return model.StatusPending
}

// Decide computes the transition for a moderation action against the
// current state. changed is false when the action is an idempotent
// no-op (approving approved content, rejecting rejected content),
// which callers report as success without writing.
func Decide(current, action string) (next string, changed bool, err error) {
	switch action {
	case ActionApprove:
		if current == model.StatusApproved {
			return model.StatusApproved, false, nil
		}
		return model.StatusApproved, true, nil
	case ActionReject:
		if current == model.StatusRejected {
			return model.StatusRejected, false, nil
		}
		return model.StatusRejected, true, nil
	default:
		return "", false, ErrUnknownAction
	}
}

// CanModerate reports whether a role may approve, reject or edit
// other users' content.
func CanModerate(role string) bool {
	return role == model.RoleModerator || role == model.RoleAdmin
}

// CanDelete reports whether a caller may delete a content item: owners
// always can, and moderators/admins can delete anything.
func CanDelete(callerID uint64, callerRole string, ownerID uint64) bool {
	return callerID == ownerID || CanModerate(callerRole)
}
