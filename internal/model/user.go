package model

import "time"

// Role values stored in users.role. Public registration always produces a
// customer; admin accounts are created by existing admins.
const (
	RoleAdmin    = "admin"
	RoleCustomer = "customer"
)

// User represents an application user record as stored in the `users` table.
// PasswordHash is a bcrypt digest and must never leave the server. The reset
// fields hold the SHA-256 hash of an outstanding password-reset token and its
// expiry; both are nil when no reset is in flight.
type User struct {
	ID                uint64     `json:"id"`
	Name              string     `json:"name"`
	Email             string     `json:"email"`
	PasswordHash      string     `json:"-"`
	Role              string     `json:"role"`
	ResetTokenHash    *string    `json:"-"`
	ResetExpiresAt    *time.Time `json:"-"`
	PasswordChangedAt *time.Time `json:"-"`
	CreatedAt         time.Time  `json:"createdAt"`
	UpdatedAt         time.Time  `json:"updatedAt"`
}

// IsAdmin reports whether the user carries the admin role. Authorization must
// not rely on this alone; the admin middleware re-reads the role from the
// database before allowing admin-only operations.
func (u *User) IsAdmin() bool { return u.Role == RoleAdmin }

// ChangedPasswordAfter reports whether the user's password was changed after
// the given token issue time. Tokens issued strictly before the recorded
// change must be rejected by the auth middleware.
func (u *User) ChangedPasswordAfter(issuedAt time.Time) bool {
	if u.PasswordChangedAt == nil {
		return false
	}
	return issuedAt.Unix() < u.PasswordChangedAt.Unix()
}
