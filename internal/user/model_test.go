package user

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseRole(t *testing.T) {
	assert.Equal(t, RoleAdmin, ParseRole("admin"))
	assert.Equal(t, RoleStaff, ParseRole("staff"))

	// Unknown values never grant privileges
	assert.Equal(t, RoleStaff, ParseRole(""))
	assert.Equal(t, RoleStaff, ParseRole("ADMIN"))
	assert.Equal(t, RoleStaff, ParseRole("superuser"))
}

func TestRoleIsAdmin(t *testing.T) {
	assert.True(t, RoleAdmin.IsAdmin())
	assert.False(t, RoleStaff.IsAdmin())
	assert.False(t, Role("").IsAdmin())
}
