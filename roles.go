package tutortime

// IsValid checks if the role is one of the predefined valid roles
func IsValidRole(r UserRole) bool {
	switch r {
	case RoleStudent, RoleTeacher, RoleAdmin:
		return true
	default:
		return false
	}
}

// AllRoles returns all predefined roles
func AllRoles() []UserRole {
	return []UserRole{
		RoleStudent,
		RoleTeacher,
		RoleAdmin,
	}
}

// ParseRole safely parses a string into a UserRole type
func ParseRole(roleStr string) (UserRole, bool) {
	role := UserRole(roleStr)
	return role, IsValidRole(role)
}

// Allow is the role gate: a pure predicate run after identity resolution.
// Unauthenticated requests never reach this check, they are rejected upstream
// by token verification.
func Allow(identity Identity, roles ...UserRole) error {
	if identity == nil {
		return ErrIdentityNotFound
	}

	for _, role := range roles {
		if identity.Role() == role {
			return nil
		}
	}

	return ErrRoleForbidden.WithMetadata(map[string]any{
		"role":     identity.Role(),
		"required": roles,
	})
}

// AllowClaims applies the role gate to token claims, for use at the transport
// boundary before a full identity load.
func AllowClaims(claims AuthClaims, roles ...UserRole) error {
	if claims == nil {
		return ErrIdentityNotFound
	}

	for _, role := range roles {
		if claims.HasRole(role) {
			return nil
		}
	}

	return ErrRoleForbidden.WithMetadata(map[string]any{
		"role":     claims.Role(),
		"required": roles,
	})
}

// RoleAssignable carries a client supplied role claim that must never be
// trusted on creation paths.
type RoleAssignable interface {
	SetRole(role UserRole)
}

// ForceRole overwrites any client supplied role claim with the role the
// endpoint mandates. Creation endpoints must call this before the input
// reaches creation logic; the role gate alone does not prevent privilege
// escalation via payload injection.
func ForceRole[T RoleAssignable](input T, required UserRole) T {
	input.SetRole(required)
	return input
}
