package model

import "time"

// Roles stored in users.role.  ADMIN may manage the movie and theater
// catalog; every authenticated account may book.
const (
	RoleUser  = "USER"
	RoleAdmin = "ADMIN"
)

// User represents an application account as stored in the `users`
// table.  The password hash never leaves the repository layer in API
// responses.
//
// Fields:
//  ID           – primary key identifier.
//  Name         – display name.
//  Email        – unique, lower-cased email address.
//  PasswordHash – bcrypt hash of the password.
//  Phone, City  – optional contact details.
//  Role         – USER or ADMIN.
//  IsActive     – inactive accounts cannot log in.
//  CreatedAt    – timestamp of creation.
//  UpdatedAt    – timestamp of last update.
type User struct {
	ID           uint64    `db:"id" json:"id"`
	Name         string    `db:"name" json:"name"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	Phone        *string   `db:"phone" json:"phone"`
	City         *string   `db:"city" json:"city"`
	Role         string    `db:"role" json:"role"`
	IsActive     bool      `db:"is_active" json:"is_active"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// RefreshToken models an entry in the `refresh_tokens` table.  Only the
// SHA-256 hash of the raw token is stored.
type RefreshToken struct {
	ID        uint64     `db:"id"`
	UserID    uint64     `db:"user_id"`
	TokenHash string     `db:"token_hash"`
	ExpiresAt time.Time  `db:"expires_at"`
	RevokedAt *time.Time `db:"revoked_at"`
	CreatedAt time.Time  `db:"created_at"`
}
