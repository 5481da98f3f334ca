package accounts

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// UserRole is the user's role
type UserRole = string

const (
	// RoleUser is a regular storefront customer
	RoleUser UserRole = "user"
	// RoleAdmin is a storefront administrator
	RoleAdmin UserRole = "admin"
)

// IsValidRole checks the role against the closed set.
func IsValidRole(r UserRole) bool {
	switch r {
	case RoleUser, RoleAdmin:
		return true
	default:
		return false
	}
}

// User is the identity record held by the credential store. Secret material
// (password hash, live challenges) is never serialized outward.
type User struct {
	bun.BaseModel `bun:"table:users,alias:usr"`

	ID          uuid.UUID `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	Role        UserRole  `bun:"user_role,notnull" json:"user_role,omitempty"`
	DisplayName string    `bun:"display_name,notnull" json:"display_name,omitempty"`
	Email       string    `bun:"email,notnull,unique" json:"email,omitempty"`
	Phone       string    `bun:"phone_number" json:"phone_number,omitempty"`
	Address     string    `bun:"address" json:"address,omitempty"`

	PasswordHash string `bun:"password_hash" json:"-"`
	IsVerified   bool   `bun:"is_email_verified" json:"is_email_verified"`

	VerificationCode      string     `bun:"verification_code" json:"-"`
	VerificationExpiresAt *time.Time `bun:"verification_expires_at,nullzero" json:"-"`

	ResetTokenHash string     `bun:"reset_token_hash" json:"-"`
	ResetExpiresAt *time.Time `bun:"reset_expires_at,nullzero" json:"-"`

	LoggedInAt *time.Time `bun:"loggedin_at,nullzero" json:"loggedin_at,omitempty"`
	CreatedAt  *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt  *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
	DeletedAt  *time.Time `bun:"deleted_at,soft_delete,nullzero" json:"-"`
}

// Status derives the account lifecycle state from the record.
func (u *User) Status() AccountStatus {
	if u == nil {
		return StatusUnregistered
	}
	if u.IsVerified {
		return StatusActive
	}
	return StatusPendingVerification
}

// HasLiveVerification reports whether a non-expired verification challenge
// is attached. Expired challenges are treated as absent.
func (u *User) HasLiveVerification(now time.Time) bool {
	return u.VerificationCode != "" &&
		u.VerificationExpiresAt != nil &&
		!now.After(*u.VerificationExpiresAt)
}

// HasLiveReset reports whether a non-expired reset challenge is attached.
func (u *User) HasLiveReset(now time.Time) bool {
	return u.ResetTokenHash != "" &&
		u.ResetExpiresAt != nil &&
		!now.After(*u.ResetExpiresAt)
}

// AttachVerification replaces any prior verification challenge. Only one
// live challenge per purpose may exist at a time.
func (u *User) AttachVerification(c Challenge) {
	u.VerificationCode = c.Secret
	expires := c.ExpiresAt
	u.VerificationExpiresAt = &expires
}

// ClearVerification consumes the verification challenge.
func (u *User) ClearVerification() {
	u.VerificationCode = ""
	u.VerificationExpiresAt = nil
}

// AttachReset replaces any prior reset challenge. The challenge secret is
// already the one-way hash; plaintext reset tokens are never persisted.
func (u *User) AttachReset(c Challenge) {
	u.ResetTokenHash = c.Secret
	expires := c.ExpiresAt
	u.ResetExpiresAt = &expires
}

// ClearReset consumes the reset challenge.
func (u *User) ClearReset() {
	u.ResetTokenHash = ""
	u.ResetExpiresAt = nil
}

// Clone returns a deep copy so store implementations can hand out records
// without sharing pointers with callers.
func (u *User) Clone() *User {
	if u == nil {
		return nil
	}
	c := *u
	c.VerificationExpiresAt = cloneTime(u.VerificationExpiresAt)
	c.ResetExpiresAt = cloneTime(u.ResetExpiresAt)
	c.LoggedInAt = cloneTime(u.LoggedInAt)
	c.CreatedAt = cloneTime(u.CreatedAt)
	c.UpdatedAt = cloneTime(u.UpdatedAt)
	c.DeletedAt = cloneTime(u.DeletedAt)
	return &c
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}
