package secrets

import (
	"github.com/goliatone/go-errors"
)

const (
	TextCodeAccountNotFound = "account_not_found"
	TextCodeBadCredentials  = "bad_credentials"
	TextCodeUsernameTaken   = "username_taken"
	TextCodeSessionNotFound = "session_not_found"
	TextCodeUnknownProvider = "unknown_provider"
	TextCodeStoreFailure    = "store_failure"
)

// ErrAccountNotFound is returned when no account matches the lookup.
var ErrAccountNotFound = errors.New("account not found", errors.CategoryNotFound).
	WithTextCode(TextCodeAccountNotFound).
	WithCode(errors.CodeNotFound)

// ErrBadCredentials is returned when the password does not match the stored
// hash. Callers present it the same way as a missing account.
var ErrBadCredentials = errors.New("invalid username or password", errors.CategoryAuth).
	WithTextCode(TextCodeBadCredentials).
	WithCode(errors.CodeUnauthorized)

// ErrUsernameTaken is returned when a registration collides with an existing
// username.
var ErrUsernameTaken = errors.New("username already registered", errors.CategoryConflict).
	WithTextCode(TextCodeUsernameTaken).
	WithCode(errors.CodeConflict)

// ErrSessionNotFound is returned when a token resolves to no live session:
// missing cookie, expired binding, destroyed session, or a deleted account.
var ErrSessionNotFound = errors.New("session not found", errors.CategoryAuth).
	WithTextCode(TextCodeSessionNotFound).
	WithCode(errors.CodeUnauthorized)

// ErrUnknownProvider is returned when a provider name has no accounts column.
var ErrUnknownProvider = errors.New("unknown identity provider", errors.CategoryBadInput).
	WithTextCode(TextCodeUnknownProvider).
	WithCode(errors.CodeBadRequest)

// ErrNoEmptyString rejects empty required values before they hit the store.
var ErrNoEmptyString = errors.New("value should not be empty", errors.CategoryValidation).
	WithCode(errors.CodeBadRequest)

// ErrMismatchedHashAndPassword mirrors bcrypt's mismatch error with our
// category attached.
var ErrMismatchedHashAndPassword = errors.New("hash and password mismatch", errors.CategoryAuth).
	WithTextCode(TextCodeBadCredentials).
	WithCode(errors.CodeUnauthorized)

// WrapStoreError marks an unexpected persistence failure. Domain errors pass
// through untouched so callers can keep matching on them.
func WrapStoreError(err error) error {
	if err == nil {
		return nil
	}
	var rich *errors.Error
	if errors.As(err, &rich) {
		return err
	}
	return errors.Wrap(err, errors.CategoryInternal, "account store failure").
		WithTextCode(TextCodeStoreFailure)
}
