package secrets_test

import (
	"context"
	"database/sql"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"

	secrets "github.com/JulijaJermolajeva/Authentication-Secrets"
)

func newTestDB(t *testing.T) *bun.DB {
	t.Helper()

	sqldb, err := sql.Open(sqliteshim.ShimName, ":memory:")
	require.NoError(t, err)
	// A single connection keeps every query on the same in-memory database.
	sqldb.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqldb.Close() })

	db := bun.NewDB(sqldb, sqlitedialect.New())

	_, err = db.NewCreateTable().
		Model((*secrets.Account)(nil)).
		IfNotExists().
		Exec(context.Background())
	require.NoError(t, err)

	return db
}

func TestAccountsCreateAndGet(t *testing.T) {
	repo := secrets.NewAccountsRepository(newTestDB(t))

	created, err := repo.Create(context.Background(), &secrets.Account{
		Username:     "alice",
		PasswordHash: "hashed",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.NotNil(t, created.CreatedAt)

	byName, err := repo.GetByUsername(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, created.ID, byName.ID)
	assert.Equal(t, "hashed", byName.PasswordHash)

	byID, err := repo.GetByID(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", byID.Username)
}

func TestAccountsCreateDuplicateUsername(t *testing.T) {
	repo := secrets.NewAccountsRepository(newTestDB(t))

	_, err := repo.Create(context.Background(), &secrets.Account{Username: "alice"})
	require.NoError(t, err)

	_, err = repo.Create(context.Background(), &secrets.Account{Username: "alice"})
	assert.ErrorIs(t, err, secrets.ErrUsernameTaken)
}

func TestAccountsGetByUsernameMisses(t *testing.T) {
	repo := secrets.NewAccountsRepository(newTestDB(t))

	_, err := repo.GetByUsername(context.Background(), "nobody")
	assert.ErrorIs(t, err, secrets.ErrAccountNotFound)

	_, err = repo.GetByUsername(context.Background(), "   ")
	assert.ErrorIs(t, err, secrets.ErrAccountNotFound)
}

func TestGetOrCreateByProvider(t *testing.T) {
	repo := secrets.NewAccountsRepository(newTestDB(t))

	first, err := repo.GetOrCreateByProvider(context.Background(), secrets.ProviderGoogle, "google-1", &secrets.Account{
		Username: "User Example",
	})
	require.NoError(t, err)
	assert.Equal(t, "google-1", first.GoogleID)
	assert.Equal(t, "User Example", first.Username)

	// Same identity resolves to the same account.
	again, err := repo.GetOrCreateByProvider(context.Background(), secrets.ProviderGoogle, "google-1", &secrets.Account{
		Username: "User Example",
	})
	require.NoError(t, err)
	assert.Equal(t, first.ID, again.ID)
}

func TestGetOrCreateByProviderValidates(t *testing.T) {
	repo := secrets.NewAccountsRepository(newTestDB(t))

	_, err := repo.GetOrCreateByProvider(context.Background(), "github", "gh-1", nil)
	assert.ErrorIs(t, err, secrets.ErrUnknownProvider)

	_, err = repo.GetOrCreateByProvider(context.Background(), secrets.ProviderGoogle, "", nil)
	assert.ErrorIs(t, err, secrets.ErrNoEmptyString)
}

func TestGetOrCreateByProviderUsernameCollision(t *testing.T) {
	repo := secrets.NewAccountsRepository(newTestDB(t))

	_, err := repo.Create(context.Background(), &secrets.Account{Username: "User Example"})
	require.NoError(t, err)

	// The seeded display name is taken by a local account, so the social
	// account falls back to a provider scoped username.
	created, err := repo.GetOrCreateByProvider(context.Background(), secrets.ProviderFacebook, "fb-1", &secrets.Account{
		Username: "User Example",
	})
	require.NoError(t, err)
	assert.Equal(t, "fb-1", created.FacebookID)
	assert.Equal(t, "facebook_fb-1", created.Username)
}

func TestGetOrCreateByProviderConcurrentCallbacks(t *testing.T) {
	repo := secrets.NewAccountsRepository(newTestDB(t))

	const workers = 8
	results := make([]*secrets.Account, workers)
	errs := make([]error, workers)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = repo.GetOrCreateByProvider(context.Background(), secrets.ProviderGoogle, "google-1", &secrets.Account{
				Username: "User Example",
			})
		}(i)
	}
	wg.Wait()

	for i := 0; i < workers; i++ {
		require.NoError(t, errs[i])
		require.NotNil(t, results[i])
		assert.Equal(t, results[0].ID, results[i].ID)
	}
}

func TestAppendAndRemoveSecret(t *testing.T) {
	repo := secrets.NewAccountsRepository(newTestDB(t))

	account, err := repo.Create(context.Background(), &secrets.Account{Username: "alice"})
	require.NoError(t, err)

	updated, err := repo.AppendSecret(context.Background(), account.ID, "first secret")
	require.NoError(t, err)
	assert.Equal(t, []string{"first secret"}, updated.Secrets)

	updated, err = repo.AppendSecret(context.Background(), account.ID, "second secret")
	require.NoError(t, err)
	assert.Equal(t, []string{"first secret", "second secret"}, updated.Secrets)

	// Duplicates are allowed; removal drops only the first occurrence.
	updated, err = repo.AppendSecret(context.Background(), account.ID, "first secret")
	require.NoError(t, err)
	assert.Len(t, updated.Secrets, 3)

	updated, err = repo.RemoveSecret(context.Background(), account.ID, "first secret")
	require.NoError(t, err)
	assert.Equal(t, []string{"second secret", "first secret"}, updated.Secrets)

	// Removing an absent value is a no-op.
	updated, err = repo.RemoveSecret(context.Background(), account.ID, "never added")
	require.NoError(t, err)
	assert.Len(t, updated.Secrets, 2)
}

func TestAppendSecretValidates(t *testing.T) {
	repo := secrets.NewAccountsRepository(newTestDB(t))

	account, err := repo.Create(context.Background(), &secrets.Account{Username: "alice"})
	require.NoError(t, err)

	_, err = repo.AppendSecret(context.Background(), account.ID, "")
	assert.ErrorIs(t, err, secrets.ErrNoEmptyString)

	_, err = repo.AppendSecret(context.Background(), uuid.New(), "a secret")
	assert.ErrorIs(t, err, secrets.ErrAccountNotFound)
}

func TestListWithSecrets(t *testing.T) {
	repo := secrets.NewAccountsRepository(newTestDB(t))

	quiet, err := repo.Create(context.Background(), &secrets.Account{Username: "quiet"})
	require.NoError(t, err)

	talker, err := repo.Create(context.Background(), &secrets.Account{Username: "talker"})
	require.NoError(t, err)

	_, err = repo.AppendSecret(context.Background(), talker.ID, "I snore")
	require.NoError(t, err)

	listed, err := repo.ListWithSecrets(context.Background())
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, talker.ID, listed[0].ID)
	assert.NotEqual(t, quiet.ID, listed[0].ID)
}

func TestTrackLogin(t *testing.T) {
	repo := secrets.NewAccountsRepository(newTestDB(t))

	account, err := repo.Create(context.Background(), &secrets.Account{Username: "alice"})
	require.NoError(t, err)
	require.Nil(t, account.LoggedInAt)

	require.NoError(t, repo.TrackLogin(context.Background(), account.ID))

	refreshed, err := repo.GetByID(context.Background(), account.ID)
	require.NoError(t, err)
	assert.NotNil(t, refreshed.LoggedInAt)
}
