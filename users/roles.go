package users

import "strings"

// Role is the closed set of portal roles. Adding a role here must be paired
// with a review of every guard and dashboard switch.
type Role string

const (
	RoleUnknown Role = ""
	RoleStudent Role = "STUDENT"
	RoleTeacher Role = "TEACHER"
	RoleAdmin   Role = "ADMIN"
)

// ParseRole maps a backend role value onto the closed enumeration.
// Matching is case-insensitive; anything unrecognised is RoleUnknown.
func ParseRole(s string) Role {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "STUDENT":
		return RoleStudent
	case "TEACHER":
		return RoleTeacher
	case "ADMIN":
		return RoleAdmin
	}
	return RoleUnknown
}

// DashboardPath returns the role's home dashboard route.
func (r Role) DashboardPath() string {
	switch r {
	case RoleStudent:
		return "/student"
	case RoleTeacher:
		return "/teacher"
	case RoleAdmin:
		return "/admin"
	case RoleUnknown:
		return "/"
	}
	return "/"
}

func (r Role) IsValid() bool {
	switch r {
	case RoleStudent, RoleTeacher, RoleAdmin:
		return true
	}
	return false
}
