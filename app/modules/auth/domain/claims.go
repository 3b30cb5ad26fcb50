package authdomain

import (
	"time"

	"github.com/google/uuid"
)

// Claims represents the domain model for authentication claims.
type Claims struct {
	UserID    uuid.UUID
	Role      Role
	ExpiresAt time.Time
	IssuedAt  time.Time
}

// IsExpired checks if the claims have expired.
func (c *Claims) IsExpired() bool {
	return time.Now().After(c.ExpiresAt)
}

// IsAdmin reports whether the caller may use admin routes.
func (c *Claims) IsAdmin() bool {
	return c.Role == RoleAdmin
}

// CanActFor reports whether the caller may act on behalf of userID.
func (c *Claims) CanActFor(userID uuid.UUID) bool {
	return c.IsAdmin() || c.UserID == userID
}
