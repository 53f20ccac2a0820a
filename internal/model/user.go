package model

import "time"

// Roles stored in users.role.  Admin unlocks cross-user listings and the
// moderation endpoints; seller and user only differ in intent, not privilege.
const (
	RoleUser   = "user"
	RoleSeller = "seller"
	RoleAdmin  = "admin"
)

// User represents an application account as stored in the `users` table.
// PasswordHash is nil for accounts created through Google login.
// RefreshTokenHash holds the SHA-256 digest of the most recently issued
// refresh token; it is cleared on logout so the old token can no longer be
// exchanged.
//
// Fields:
//  ID               – primary key identifier.
//  Email            – unique, lowercased email address.
//  PasswordHash     – bcrypt hash of the password (nil for federated accounts).
//  FirstName        – optional given name.
//  LastName         – optional family name.
//  Phone            – optional phone number.
//  GoogleID         – external Google subject id (nil unless linked).
//  Role             – user, seller or admin.
//  EmailVerified    – true once the address is confirmed (always true for Google).
//  RefreshTokenHash – SHA-256 hex of the active refresh token (nil after logout).
type User struct {
	ID               uint64     `json:"id"`
	Email            string     `json:"email"`
	PasswordHash     *string    `json:"-"`
	FirstName        *string    `json:"first_name,omitempty"`
	LastName         *string    `json:"last_name,omitempty"`
	Phone            *string    `json:"phone,omitempty"`
	GoogleID         *string    `json:"-"`
	Role             string     `json:"role"`
	EmailVerified    bool       `json:"email_verified"`
	RefreshTokenHash *string    `json:"-"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}
