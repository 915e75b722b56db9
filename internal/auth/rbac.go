package auth

import "strings"

type Role string

const (
	RoleUser    Role = "user"
	RolePartner Role = "partner"
	RoleAdmin   Role = "admin"
)

func ParseRole(role string) (Role, bool) {
	switch Role(strings.ToLower(strings.TrimSpace(role))) {
	case RoleUser:
		return RoleUser, true
	case RolePartner:
		return RolePartner, true
	case RoleAdmin:
		return RoleAdmin, true
	default:
		return "", false
	}
}

// HasRole reports whether role is in the allowed set. The set is an explicit
// allow-list; admin is not implicitly granted partner or user permissions.
func HasRole(role Role, allowed ...Role) bool {
	if len(allowed) == 0 {
		return false
	}
	for _, candidate := range allowed {
		if role == candidate {
			return true
		}
	}
	return false
}
