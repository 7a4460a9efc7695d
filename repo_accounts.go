package secrets

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

type accounts struct {
	repository.Repository[*Account]
	db *bun.DB
}

var _ Accounts = (*accounts)(nil)

func NewAccountsRepository(db *bun.DB) Accounts {
	repo := repository.NewRepository[*Account](db, repository.ModelHandlers[*Account]{
		NewRecord: func() *Account { return &Account{} },
		GetID: func(a *Account) uuid.UUID {
			if a == nil {
				return uuid.Nil
			}
			return a.ID
		},
		SetID: func(a *Account, id uuid.UUID) {
			if a != nil {
				a.ID = id
			}
		},
	})

	return &accounts{
		Repository: repo,
		db:         db,
	}
}

func (a *accounts) GetByID(ctx context.Context, id uuid.UUID) (*Account, error) {
	return a.getByColumn(ctx, "id", id)
}

func (a *accounts) GetByUsername(ctx context.Context, username string) (*Account, error) {
	if strings.TrimSpace(username) == "" {
		return nil, ErrAccountNotFound
	}
	return a.getByColumn(ctx, "username", username)
}

func (a *accounts) getByColumn(ctx context.Context, column string, value any) (*Account, error) {
	record := &Account{}
	err := a.db.NewSelect().
		Model(record).
		Where(fmt.Sprintf("?TableAlias.%s = ?", column), value).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if isNoRows(err) {
			return nil, ErrAccountNotFound
		}
		return nil, WrapStoreError(err)
	}

	return record, nil
}

// Create inserts a new account. A username collision surfaces as
// ErrUsernameTaken so registration can report it without inspecting driver
// errors.
func (a *accounts) Create(ctx context.Context, record *Account) (*Account, error) {
	prepareAccountDefaults(record)

	created, err := a.Repository.Create(ctx, record)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrUsernameTaken
		}
		return nil, WrapStoreError(err)
	}

	return created, nil
}

// GetOrCreateByProvider resolves a provider identity to an account, creating
// one from seed on first sign-in. Concurrent callbacks for the same identity
// race through insert-or-nothing and re-read, so exactly one account survives.
func (a *accounts) GetOrCreateByProvider(ctx context.Context, provider, providerID string, seed *Account) (*Account, error) {
	column, ok := providerColumn(provider)
	if !ok {
		return nil, ErrUnknownProvider
	}
	if providerID == "" {
		return nil, ErrNoEmptyString
	}

	if found, err := a.getByColumn(ctx, column, providerID); err == nil {
		return found, nil
	} else if !errors.Is(err, ErrAccountNotFound) {
		return nil, err
	}

	record := seed
	if record == nil {
		record = &Account{}
	}
	prepareAccountDefaults(record)
	record.SetProviderID(provider, providerID)

	res, err := a.db.NewInsert().
		Model(record).
		On("CONFLICT DO NOTHING").
		Exec(ctx)
	if err != nil {
		return nil, WrapStoreError(err)
	}
	if n, _ := res.RowsAffected(); n > 0 {
		return record, nil
	}

	// Lost the race, or the seeded username belongs to someone else.
	if found, err := a.getByColumn(ctx, column, providerID); err == nil {
		return found, nil
	} else if !errors.Is(err, ErrAccountNotFound) {
		return nil, err
	}

	// Username conflict: retry once under a provider scoped name.
	record.ID = uuid.New()
	record.Username = fmt.Sprintf("%s_%s", provider, providerID)

	res, err = a.db.NewInsert().
		Model(record).
		On("CONFLICT DO NOTHING").
		Exec(ctx)
	if err != nil {
		return nil, WrapStoreError(err)
	}
	if n, _ := res.RowsAffected(); n > 0 {
		return record, nil
	}

	return a.getByColumn(ctx, column, providerID)
}

func (a *accounts) ListWithSecrets(ctx context.Context) ([]*Account, error) {
	var records []*Account
	err := a.db.NewSelect().
		Model(&records).
		Where("?TableAlias.secrets IS NOT NULL").
		OrderExpr("?TableAlias.created_at ASC").
		Scan(ctx)
	if err != nil {
		return nil, WrapStoreError(err)
	}

	out := make([]*Account, 0, len(records))
	for _, record := range records {
		if record.HasSecrets() {
			out = append(out, record)
		}
	}

	return out, nil
}

func (a *accounts) AppendSecret(ctx context.Context, id uuid.UUID, secret string) (*Account, error) {
	if secret == "" {
		return nil, ErrNoEmptyString
	}
	return a.mutateSecrets(ctx, id, func(record *Account) {
		record.AppendSecret(secret)
	})
}

func (a *accounts) RemoveSecret(ctx context.Context, id uuid.UUID, secret string) (*Account, error) {
	return a.mutateSecrets(ctx, id, func(record *Account) {
		record.RemoveSecret(secret)
	})
}

// mutateSecrets runs a read-modify-write of the secrets list inside a
// transaction so per-account updates serialize.
func (a *accounts) mutateSecrets(ctx context.Context, id uuid.UUID, mutate func(*Account)) (*Account, error) {
	record := &Account{}

	err := a.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		err := tx.NewSelect().
			Model(record).
			Where("?TableAlias.id = ?", id).
			Limit(1).
			Scan(ctx)
		if err != nil {
			if isNoRows(err) {
				return ErrAccountNotFound
			}
			return err
		}

		mutate(record)
		if record.Secrets == nil {
			record.Secrets = []string{}
		}
		now := time.Now()
		record.UpdatedAt = &now

		_, err = tx.NewUpdate().
			Model(record).
			Column("secrets", "updated_at").
			WherePK().
			Exec(ctx)
		return err
	})

	if err != nil {
		if errors.Is(err, ErrAccountNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, WrapStoreError(err)
	}

	return record, nil
}

func (a *accounts) TrackLogin(ctx context.Context, id uuid.UUID) error {
	_, err := a.db.NewRaw(`
		UPDATE "accounts" AS "acc"
		SET "loggedin_at" = ?
		WHERE ("acc".id = ?);
	`, time.Now(), id).Exec(ctx)

	if err != nil {
		return WrapStoreError(err)
	}
	return nil
}

func prepareAccountDefaults(record *Account) {
	if record == nil {
		return
	}

	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}

	if record.Secrets == nil {
		record.Secrets = []string{}
	}

	if record.CreatedAt == nil {
		now := time.Now()
		record.CreatedAt = &now
		record.UpdatedAt = &now
	}
}

func isNoRows(err error) bool {
	return repository.IsRecordNotFound(err) || errors.Is(err, sql.ErrNoRows)
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "duplicate key value")
}
