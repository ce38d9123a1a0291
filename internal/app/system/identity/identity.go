// Package identity is the credential side of the house: it owns login
// accounts (email + password hash) separately from the application's user
// rows. A user row points at its account via AuthID; supporters created by a
// leader or by an event registration have no account until they upgrade.
package identity

import (
	"context"
	"errors"
)

var (
	// ErrEmailTaken means an account with that email already exists.
	ErrEmailTaken = errors.New("identity: email already registered")
	// ErrNotFound means no account matches the given id or email.
	ErrNotFound = errors.New("identity: account not found")
	// ErrBadCredentials means the email/password pair did not match.
	ErrBadCredentials = errors.New("identity: invalid email or password")
)

// Provider manages login accounts.
type Provider interface {
	// SignUp creates an account and returns its opaque ID.
	// Returns ErrEmailTaken if the email is already registered.
	SignUp(ctx context.Context, email, password string) (string, error)

	// VerifyPassword checks an email/password pair and returns the account ID.
	// Returns ErrBadCredentials on any mismatch, including unknown email.
	VerifyPassword(ctx context.Context, email, password string) (string, error)

	// UpdateEmail changes an account's email.
	// Returns ErrEmailTaken when the new email belongs to another account,
	// ErrNotFound when the account does not exist.
	UpdateEmail(ctx context.Context, accountID, newEmail string) error

	// UpdatePassword replaces an account's password.
	UpdatePassword(ctx context.Context, accountID, newPassword string) error

	// EmailByID returns the email on file for an account.
	EmailByID(ctx context.Context, accountID string) (string, error)

	// Delete removes an account. Deleting a missing account is not an
	// error; admin user deletion must succeed even when the identity side
	// was already cleaned up.
	Delete(ctx context.Context, accountID string) error
}
