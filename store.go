package accounts

import (
	"context"
	"strings"

	"github.com/google/uuid"
)

// CredentialStore is the durable record of each user's identity and secret
// material. The lifecycle manager owns every read/write pattern; no other
// component mutates verification state, challenges, or password hashes.
//
// Accounts are never hard-deleted by this core, so no Delete is exposed.
type CredentialStore interface {
	// FindByEmail looks a user up by email (case-insensitive match,
	// case-preserving storage). Absent users yield ErrUserNotFound.
	FindByEmail(ctx context.Context, email string) (*User, error)

	// FindByID looks a user up by its opaque id.
	FindByID(ctx context.Context, id uuid.UUID) (*User, error)

	// FindByResetTokenHash locates the user holding the given reset
	// challenge hash. Expiry is checked by the caller, not the store.
	FindByResetTokenHash(ctx context.Context, hash string) (*User, error)

	// Create persists a new record. If the email is taken by a verified
	// user it fails with ErrAccountExists. If the existing record is
	// unverified it is overwritten in place (name, password, challenge),
	// which lets an abandoned signup be retried without a separate
	// resend endpoint.
	Create(ctx context.Context, user *User) (*User, error)

	// Update persists changes to an existing record, keyed by id.
	Update(ctx context.Context, user *User) (*User, error)
}

func emailKey(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
