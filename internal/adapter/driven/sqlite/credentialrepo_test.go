package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vinylvault/internal/domain/model"
)

func TestCredentialRepo_InsertAndLatest(t *testing.T) {
	db := setupTestDB(t)
	repo := NewCredentialRepo(db)
	ctx := context.Background()

	issued := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	err := repo.Insert(ctx, model.Credential{
		ClientID:     "client-a",
		ClientSecret: "secret-a",
		AccessToken:  "tok-1",
		CreatedAt:    issued,
		ExpiresAt:    issued.Add(time.Hour),
	})
	require.NoError(t, err)

	cred, err := repo.Latest(ctx, "client-a")
	require.NoError(t, err)
	require.NotNil(t, cred)
	assert.Equal(t, "tok-1", cred.AccessToken)
	assert.Equal(t, "client-a", cred.ClientID)
	assert.Equal(t, issued, cred.CreatedAt)
	assert.Equal(t, issued.Add(time.Hour), cred.ExpiresAt)
}

func TestCredentialRepo_LatestMissing(t *testing.T) {
	db := setupTestDB(t)
	repo := NewCredentialRepo(db)

	cred, err := repo.Latest(context.Background(), "never-seen")
	require.NoError(t, err)
	assert.Nil(t, cred)
}

func TestCredentialRepo_LatestPicksNewestExpiry(t *testing.T) {
	db := setupTestDB(t)
	repo := NewCredentialRepo(db)
	ctx := context.Background()

	issued := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	for i, token := range []string{"tok-old", "tok-new", "tok-mid"} {
		offsets := []time.Duration{time.Hour, 3 * time.Hour, 2 * time.Hour}
		err := repo.Insert(ctx, model.Credential{
			ClientID:     "client-a",
			ClientSecret: "secret-a",
			AccessToken:  token,
			CreatedAt:    issued,
			ExpiresAt:    issued.Add(offsets[i]),
		})
		require.NoError(t, err)
	}

	cred, err := repo.Latest(ctx, "client-a")
	require.NoError(t, err)
	require.NotNil(t, cred)
	assert.Equal(t, "tok-new", cred.AccessToken, "latest must be ordered by expiry, not insertion")
}

func TestCredentialRepo_HistoryIsAppendOnly(t *testing.T) {
	db := setupTestDB(t)
	repo := NewCredentialRepo(db)
	ctx := context.Background()

	issued := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		err := repo.Insert(ctx, model.Credential{
			ClientID:     "client-a",
			ClientSecret: "secret-a",
			AccessToken:  "tok",
			CreatedAt:    issued,
			ExpiresAt:    issued.Add(time.Duration(i+1) * time.Hour),
		})
		require.NoError(t, err)
	}

	var count int
	err := db.Reader.QueryRowContext(ctx, `SELECT COUNT(*) FROM access_tokens WHERE client_id = ?`, "client-a").Scan(&count)
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}

func TestCredentialRepo_LatestScopedToClient(t *testing.T) {
	db := setupTestDB(t)
	repo := NewCredentialRepo(db)
	ctx := context.Background()

	issued := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, repo.Insert(ctx, model.Credential{
		ClientID: "client-a", ClientSecret: "s", AccessToken: "tok-a",
		CreatedAt: issued, ExpiresAt: issued.Add(time.Hour),
	}))
	require.NoError(t, repo.Insert(ctx, model.Credential{
		ClientID: "client-b", ClientSecret: "s", AccessToken: "tok-b",
		CreatedAt: issued, ExpiresAt: issued.Add(2 * time.Hour),
	}))

	cred, err := repo.Latest(ctx, "client-a")
	require.NoError(t, err)
	require.NotNil(t, cred)
	assert.Equal(t, "tok-a", cred.AccessToken)
}
