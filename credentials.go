package secrets

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// bcryptCost is deliberately above the library default; registration and
// login absorb the extra latency.
const bcryptCost = 14

const registerTimeout = 10 * time.Second

// HashPassword will generate a password hash
func HashPassword(password string) (string, error) {
	if password == "" {
		return "", ErrNoEmptyString
	}

	h, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	return string(h), err
}

// ComparePasswordAndHash will validate the given cleartext
// password matches the hashed password
func ComparePasswordAndHash(password, hash string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return ErrMismatchedHashAndPassword
		}
		return err
	}
	return nil
}

// CredentialVerifier owns the local username/password flows: verifying a
// login attempt and registering a new account.
type CredentialVerifier struct {
	accounts Accounts
	logger   Logger
}

type CredentialVerifierOption func(*CredentialVerifier)

func NewCredentialVerifier(accounts Accounts, opts ...CredentialVerifierOption) *CredentialVerifier {
	v := &CredentialVerifier{
		accounts: accounts,
		logger:   defLogger{},
	}

	for _, opt := range opts {
		if opt != nil {
			opt(v)
		}
	}

	return v
}

func WithVerifierLogger(logger Logger) CredentialVerifierOption {
	return func(v *CredentialVerifier) {
		if logger != nil {
			v.logger = logger
		}
	}
}

// Verify checks username and password against the store. A missing account
// surfaces as ErrAccountNotFound and a wrong password as ErrBadCredentials;
// the controller collapses both into the same redirect so the response never
// says which check failed.
func (v *CredentialVerifier) Verify(ctx context.Context, username, password string) (*Account, error) {
	account, err := v.accounts.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, ErrAccountNotFound) {
			v.logger.Debug("verify: no account for username %q", username)
		}
		return nil, err
	}

	if account.PasswordHash == "" {
		// Social only account, no local password to check.
		return nil, ErrBadCredentials
	}

	if err := ComparePasswordAndHash(password, account.PasswordHash); err != nil {
		v.logger.Debug("verify: password mismatch for username %q", username)
		return nil, ErrBadCredentials
	}

	if err := v.accounts.TrackLogin(ctx, account.ID); err != nil {
		v.logger.Warn("verify: track login failed: %v", err)
	}

	return account, nil
}

// Register creates a new local account. The insert is a single statement so
// two racing registrations of the same username cannot both win; the loser
// gets ErrUsernameTaken.
func (v *CredentialVerifier) Register(ctx context.Context, username, password string) (*Account, error) {
	ctx, cancel := context.WithTimeout(ctx, registerTimeout)
	defer cancel()

	username = strings.TrimSpace(username)
	if username == "" {
		return nil, ErrNoEmptyString
	}

	hash, err := HashPassword(password)
	if err != nil {
		return nil, err
	}

	account := &Account{
		ID:           uuid.New(),
		Username:     username,
		PasswordHash: hash,
		Secrets:      []string{},
	}

	created, err := v.accounts.Create(ctx, account)
	if err != nil {
		return nil, err
	}

	v.logger.Info("registered account %s", created.ID)
	return created, nil
}
