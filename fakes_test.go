package secrets_test

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	secrets "github.com/JulijaJermolajeva/Authentication-Secrets"
)

// memAccounts is an in-memory Accounts used by the verifier and session
// tests; repository behavior against a real database is covered separately.
type memAccounts struct {
	mu      sync.Mutex
	records map[uuid.UUID]*secrets.Account
}

var _ secrets.Accounts = (*memAccounts)(nil)

func newMemAccounts() *memAccounts {
	return &memAccounts{records: map[uuid.UUID]*secrets.Account{}}
}

func (m *memAccounts) GetByID(_ context.Context, id uuid.UUID) (*secrets.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if record, ok := m.records[id]; ok {
		return record, nil
	}
	return nil, secrets.ErrAccountNotFound
}

func (m *memAccounts) GetByUsername(_ context.Context, username string) (*secrets.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, record := range m.records {
		if record.Username == username {
			return record, nil
		}
	}
	return nil, secrets.ErrAccountNotFound
}

func (m *memAccounts) Create(_ context.Context, account *secrets.Account) (*secrets.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, record := range m.records {
		if record.Username == account.Username {
			return nil, secrets.ErrUsernameTaken
		}
	}
	if account.ID == uuid.Nil {
		account.ID = uuid.New()
	}
	m.records[account.ID] = account
	return account, nil
}

func (m *memAccounts) GetOrCreateByProvider(_ context.Context, provider, providerID string, seed *secrets.Account) (*secrets.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, record := range m.records {
		if record.ProviderID(provider) == providerID {
			return record, nil
		}
	}
	if seed.ID == uuid.Nil {
		seed.ID = uuid.New()
	}
	seed.SetProviderID(provider, providerID)
	m.records[seed.ID] = seed
	return seed, nil
}

func (m *memAccounts) ListWithSecrets(_ context.Context) ([]*secrets.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*secrets.Account
	for _, record := range m.records {
		if record.HasSecrets() {
			out = append(out, record)
		}
	}
	return out, nil
}

func (m *memAccounts) AppendSecret(ctx context.Context, id uuid.UUID, secret string) (*secrets.Account, error) {
	record, err := m.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	record.AppendSecret(secret)
	return record, nil
}

func (m *memAccounts) RemoveSecret(ctx context.Context, id uuid.UUID, secret string) (*secrets.Account, error) {
	record, err := m.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	record.RemoveSecret(secret)
	return record, nil
}

func (m *memAccounts) TrackLogin(ctx context.Context, id uuid.UUID) error {
	record, err := m.GetByID(ctx, id)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now()
	record.LoggedInAt = &now
	return nil
}

func (m *memAccounts) delete(id uuid.UUID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.records, id)
}
