package tutortime_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tutortime/tutortime"
)

func TestParseRole(t *testing.T) {
	tests := []struct {
		input string
		valid bool
	}{
		{"student", true},
		{"teacher", true},
		{"admin", true},
		{"", false},
		{"superuser", false},
		{"Admin", false},
	}

	for _, tc := range tests {
		role, ok := tutortime.ParseRole(tc.input)
		assert.Equal(t, tc.valid, ok, "role %q", tc.input)
		assert.Equal(t, tutortime.UserRole(tc.input), role)
	}
}

func TestAllRolesAreValid(t *testing.T) {
	for _, role := range tutortime.AllRoles() {
		assert.True(t, tutortime.IsValidRole(role))
	}
}

func TestAllow(t *testing.T) {
	teacher := MockIdentity{IdentityID: "t-1", IdentityRole: tutortime.RoleTeacher}

	t.Run("matching role passes", func(t *testing.T) {
		assert.NoError(t, tutortime.Allow(teacher, tutortime.RoleTeacher))
	})

	t.Run("any of several roles passes", func(t *testing.T) {
		assert.NoError(t, tutortime.Allow(teacher, tutortime.RoleAdmin, tutortime.RoleTeacher))
	})

	t.Run("wrong role is forbidden", func(t *testing.T) {
		err := tutortime.Allow(teacher, tutortime.RoleAdmin)
		require.Error(t, err)
		assert.ErrorIs(t, err, tutortime.ErrRoleForbidden)
	})

	t.Run("nil identity is rejected", func(t *testing.T) {
		err := tutortime.Allow(nil, tutortime.RoleAdmin)
		require.Error(t, err)
		assert.ErrorIs(t, err, tutortime.ErrIdentityNotFound)
	})
}

type rolePayload struct {
	Role tutortime.UserRole
}

func (p *rolePayload) SetRole(role tutortime.UserRole) {
	p.Role = role
}

func TestForceRoleOverridesClientClaim(t *testing.T) {
	payload := &rolePayload{Role: tutortime.RoleAdmin}

	tutortime.ForceRole(payload, tutortime.RoleStudent)

	assert.Equal(t, tutortime.RoleStudent, payload.Role)
}
