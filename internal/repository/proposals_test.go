package repository

import (
	"context"
	"io/fs"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	postrelay "github.com/set-night/postrelay"
	"github.com/set-night/postrelay/internal/domain"
)

func newTestRepository(t *testing.T) *ProposalRepository {
	t.Helper()
	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	migrations, err := fs.Sub(postrelay.MigrationsFS, "migrations")
	require.NoError(t, err)
	require.NoError(t, RunMigrations(url, migrations))

	pool, err := NewPool(context.Background(), url, PoolOptions{})
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	return NewProposalRepository(pool)
}

func TestProposalRepository_Lifecycle(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()
	id := uuid.New()

	require.NoError(t, repo.Create(ctx, domain.Proposal{ID: id, Channel: "100", SubmitterID: 7, CreatedAt: time.Now()}))
	require.NoError(t, repo.AddInstance(ctx, domain.ProposalInstance{ProposalID: id, AdminID: 1, MessageID: 11}))
	require.NoError(t, repo.AddInstance(ctx, domain.ProposalInstance{ProposalID: id, AdminID: 2, MessageID: 12}))

	ok, err := repo.Claim(ctx, id, 1)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.Claim(ctx, id, 2)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, repo.MarkPublished(ctx, id, 99))

	instances, err := repo.Instances(ctx, id)
	require.NoError(t, err)
	require.Len(t, instances, 2)
	assert.Equal(t, int64(1), instances[0].AdminID)
	assert.Equal(t, id, instances[0].ProposalID)

	_, err = repo.Claim(ctx, uuid.New(), 1)
	assert.ErrorIs(t, err, domain.ErrProposalNotFound)

	n, err := repo.PurgeBefore(ctx, time.Now().Add(time.Hour))
	require.NoError(t, err)
	assert.GreaterOrEqual(t, n, int64(1))
}
