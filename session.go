package secrets

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"time"

	"github.com/google/uuid"
)

// DefaultSessionTTL bounds how long a session token stays valid.
const DefaultSessionTTL = 24 * time.Hour

const sessionTokenBytes = 32

// SessionManager issues opaque session tokens and resolves them back to live
// accounts. The client holds the raw token; the store only ever sees its
// SHA-256 digest, so a leaked store dump cannot be replayed.
type SessionManager struct {
	store    SessionStore
	accounts Accounts
	ttl      time.Duration
	logger   Logger
}

var _ Sessions = (*SessionManager)(nil)

type SessionManagerOption func(*SessionManager)

func NewSessionManager(store SessionStore, accounts Accounts, opts ...SessionManagerOption) *SessionManager {
	m := &SessionManager{
		store:    store,
		accounts: accounts,
		ttl:      DefaultSessionTTL,
		logger:   defLogger{},
	}

	for _, opt := range opts {
		if opt != nil {
			opt(m)
		}
	}

	return m
}

func WithSessionTTL(ttl time.Duration) SessionManagerOption {
	return func(m *SessionManager) {
		if ttl != 0 {
			m.ttl = ttl
		}
	}
}

func WithSessionLogger(logger Logger) SessionManagerOption {
	return func(m *SessionManager) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// TTL exposes the configured session lifetime so the HTTP layer can align
// cookie expiry with it.
func (m *SessionManager) TTL() time.Duration {
	return m.ttl
}

// Create mints a fresh token bound to the account id.
func (m *SessionManager) Create(ctx context.Context, account *Account) (string, error) {
	if account == nil || account.ID == uuid.Nil {
		return "", ErrAccountNotFound
	}

	token, err := generateSessionToken()
	if err != nil {
		return "", err
	}

	if err := m.store.Put(ctx, hashSessionToken(token), account.ID, m.ttl); err != nil {
		return "", WrapStoreError(err)
	}

	m.logger.Debug("session created for account %s", account.ID)
	return token, nil
}

// Resolve maps a token back to its account. The account is re-fetched on
// every call so the caller always sees current state, and a binding whose
// account has vanished reads as no session at all.
func (m *SessionManager) Resolve(ctx context.Context, token string) (*Account, error) {
	if token == "" {
		return nil, ErrSessionNotFound
	}

	id, err := m.store.Get(ctx, hashSessionToken(token))
	if err != nil {
		return nil, ErrSessionNotFound
	}

	account, err := m.accounts.GetByID(ctx, id)
	if err != nil {
		m.logger.Warn("session resolved to missing account %s", id)
		return nil, ErrSessionNotFound
	}

	return account, nil
}

// Destroy invalidates a token. Destroying an unknown or already destroyed
// token is a no-op.
func (m *SessionManager) Destroy(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}

	if err := m.store.Del(ctx, hashSessionToken(token)); err != nil {
		return WrapStoreError(err)
	}

	return nil
}

func generateSessionToken() (string, error) {
	buf := make([]byte, sessionTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

func hashSessionToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
