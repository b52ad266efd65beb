package users_test

import (
	"encoding/json"
	"testing"

	"github.com/opencampus/vitrine/users"
	"github.com/stretchr/testify/require"
)

func TestParseRole(t *testing.T) {
	require.Equal(t, users.RoleStudent, users.ParseRole("STUDENT"))
	require.Equal(t, users.RoleStudent, users.ParseRole("student"))
	require.Equal(t, users.RoleTeacher, users.ParseRole(" Teacher "))
	require.Equal(t, users.RoleAdmin, users.ParseRole("admin"))
	require.Equal(t, users.RoleUnknown, users.ParseRole("janitor"))
	require.Equal(t, users.RoleUnknown, users.ParseRole(""))
}

func TestDashboardPath(t *testing.T) {
	require.Equal(t, "/student", users.RoleStudent.DashboardPath())
	require.Equal(t, "/teacher", users.RoleTeacher.DashboardPath())
	require.Equal(t, "/admin", users.RoleAdmin.DashboardPath())
	require.Equal(t, "/", users.RoleUnknown.DashboardPath())
}

func TestProfileUnmarshalRoleAsString(t *testing.T) {
	var p users.Profile
	err := json.Unmarshal([]byte(`{"id":"u1","name":"Ada","email":"ada@test.com","role":"STUDENT"}`), &p)
	require.NoError(t, err)
	require.Equal(t, "u1", p.ID)
	require.Equal(t, users.RoleStudent, p.Role)
}

func TestProfileUnmarshalRoleAsObject(t *testing.T) {
	var p users.Profile
	err := json.Unmarshal([]byte(`{"id":"u2","role":{"id":3,"name":"teacher"}}`), &p)
	require.NoError(t, err)
	require.Equal(t, users.RoleTeacher, p.Role)
}

func TestProfileUnmarshalRoleMissing(t *testing.T) {
	var p users.Profile
	err := json.Unmarshal([]byte(`{"id":"u3"}`), &p)
	require.NoError(t, err)
	require.Equal(t, users.RoleUnknown, p.Role)
	require.False(t, p.Role.IsValid())
}
