package auth

import (
	"context"

	"github.com/mmynk/splitledger/internal/models"
)

// Authenticator verifies who a ledger user is. The auth service depends on
// this interface only, so the credential scheme can change without touching
// group or ledger code.
type Authenticator interface {
	// Register creates an account for email. It returns ErrInvalidEmail,
	// ErrWeakPassword or ErrEmailExists for rejected input.
	Register(ctx context.Context, email, displayName, credential string) (*models.User, error)

	// Authenticate returns the account matching email and credential, or
	// ErrInvalidCredentials. Unknown emails and wrong credentials are not
	// distinguished.
	Authenticate(ctx context.Context, email, credential string) (*models.User, error)

	// ValidateCredential reports whether credential is acceptable for a new
	// account or a credential change.
	ValidateCredential(credential string) error

	// ChangeCredential verifies current against the user's stored credential
	// and replaces it with next. Only the in-memory user is modified; the
	// caller persists it.
	ChangeCredential(user *models.User, current, next string) error
}
