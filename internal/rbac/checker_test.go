package rbac

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestChecker_DefaultRoles(t *testing.T) {
	c := NewChecker(nil)

	tests := []struct {
		role string
		perm string
		want bool
	}{
		{"candidate", "session:take", true},
		{"candidate", "response:view-own", true},
		{"candidate", "response:view-all", false},
		{"candidate", "job:create", false},
		{"recruiter", "response:view-all", true},
		{"recruiter", "response:review", true},
		{"recruiter", "assessment:edit", true},
		{"admin", "job:delete", true},
		{"admin", "user:create", true},
		{"ghost", "job:view", false},
		{"", "job:view", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, c.Has(tt.role, tt.perm), "%s/%s", tt.role, tt.perm)
	}
}

func TestChecker_WildcardMatch(t *testing.T) {
	c := NewChecker(map[string][]string{
		"ops":  {"job:*"},
		"root": {"*"},
	})

	assert.True(t, c.Has("ops", "job:create"))
	assert.True(t, c.Has("ops", "job:delete"))
	assert.False(t, c.Has("ops", "candidate:view"))
	assert.True(t, c.Has("root", "anything:at-all"))
}

func TestChecker_Any(t *testing.T) {
	c := NewChecker(nil)
	assert.True(t, c.Any("candidate", "response:view-all", "response:view-own"))
	assert.False(t, c.Any("candidate", "response:view-all", "job:create"))
}

func TestRoleContext(t *testing.T) {
	ctx := WithRole(context.Background(), "recruiter")
	assert.Equal(t, "recruiter", RoleFromContext(ctx))
	assert.Equal(t, "", RoleFromContext(context.Background()))
}
