package moderation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/community-hub/internal/model"
)

func TestInitialStatus(t *testing.T) {
	autoApprove := map[string]bool{
		model.RoleModerator: true,
		model.RoleAdmin:     true,
	}

	assert.Equal(t, model.StatusPending, InitialStatus(model.RoleUser, autoApprove))
	assert.Equal(t, model.StatusApproved, InitialStatus(model.RoleModerator, autoApprove))
	assert.Equal(t, model.StatusApproved, InitialStatus(model.RoleAdmin, autoApprove))

	// An empty set means everything goes through review.
	assert.Equal(t, model.StatusPending, InitialStatus(model.RoleAdmin, map[string]bool{}))
}

func TestDecideTransitions(t *testing.T) {
	cases := []struct {
		name    string
		current string
		action  string
		next    string
		changed bool
	}{
		{"approve pending", model.StatusPending, ActionApprove, model.StatusApproved, true},
		{"reject pending", model.StatusPending, ActionReject, model.StatusRejected, true},
		{"approve rejected", model.StatusRejected, ActionApprove, model.StatusApproved, true},
		{"reject approved", model.StatusApproved, ActionReject, model.StatusRejected, true},
		{"approve approved is a no-op", model.StatusApproved, ActionApprove, model.StatusApproved, false},
		{"reject rejected is a no-op", model.StatusRejected, ActionReject, model.StatusRejected, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			next, changed, err := Decide(tc.current, tc.action)
			require.NoError(t, err)
			assert.Equal(t, tc.next, next)
			assert.Equal(t, tc.changed, changed)
		})
	}
}

func TestDecideUnknownAction(t *testing.T) {
	_, _, err := Decide(model.StatusPending, "publish")
	assert.ErrorIs(t, err, ErrUnknownAction)
}

func TestCanModerate(t *testing.T) {
	assert.False(t, CanModerate(model.RoleUser))
	assert.False(t, CanModerate(""))
	assert.True(t, CanModerate(model.RoleModerator))
	assert.True(t, CanModerate(model.RoleAdmin))
}

func TestCanDelete(t *testing.T) {
	// Owners delete their own content regardless of role.
	assert.True(t, CanDelete(7, model.RoleUser, 7))
	// Non-owners need moderation rights.
	assert.False(t, CanDelete(7, model.RoleUser, 8))
	assert.True(t, CanDelete(7, model.RoleModerator, 8))
	assert.True(t, CanDelete(7, model.RoleAdmin, 8))
}
