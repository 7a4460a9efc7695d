package secrets

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type Logger interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Warn(format string, args ...any)
	Error(format string, args ...any)
}

// Accounts is the account store contract. Implementations keep the identity
// uniqueness invariants and make GetOrCreateByProvider safe under concurrent
// callbacks for the same provider identity.
type Accounts interface {
	GetByID(ctx context.Context, id uuid.UUID) (*Account, error)
	GetByUsername(ctx context.Context, username string) (*Account, error)
	Create(ctx context.Context, account *Account) (*Account, error)
	GetOrCreateByProvider(ctx context.Context, provider, providerID string, seed *Account) (*Account, error)
	ListWithSecrets(ctx context.Context) ([]*Account, error)
	AppendSecret(ctx context.Context, id uuid.UUID, secret string) (*Account, error)
	RemoveSecret(ctx context.Context, id uuid.UUID, secret string) (*Account, error)
	TrackLogin(ctx context.Context, id uuid.UUID) error
}

// SessionStore persists the token hash to account id binding. Implementations
// never see the client token, only its digest.
type SessionStore interface {
	Put(ctx context.Context, tokenHash string, accountID uuid.UUID, ttl time.Duration) error
	Get(ctx context.Context, tokenHash string) (uuid.UUID, error)
	Del(ctx context.Context, tokenHash string) error
}

// Sessions manages the lifecycle of opaque session tokens.
type Sessions interface {
	Create(ctx context.Context, account *Account) (string, error)
	Resolve(ctx context.Context, token string) (*Account, error)
	Destroy(ctx context.Context, token string) error
}

// Config holds the cookie and redirect options shared by the HTTP layer.
type Config interface {
	GetCookieName() string
	GetSessionTTL() time.Duration
	GetRejectedRouteKey() string
	GetRejectedRouteDefault() string
}

type defLogger struct{}

func (d defLogger) Error(format string, args ...any) {
	fmt.Printf("[ERR] SECRETS "+newline(format), args...)
}

func (d defLogger) Warn(format string, args ...any) {
	fmt.Printf("[WRN] SECRETS "+newline(format), args...)
}

func (d defLogger) Info(format string, args ...any) {
	fmt.Printf("[INF] SECRETS "+newline(format), args...)
}

func (d defLogger) Debug(format string, args ...any) {
	fmt.Printf("[DBG] SECRETS "+newline(format), args...)
}

func newline(s string) string {
	if len(s) > 0 && s[len(s)-1] != '\n' {
		s += "\n"
	}
	return s
}
