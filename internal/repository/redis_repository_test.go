package repository

import (
	"context"
	"ctlab_backend/internal/testutil"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionRepository(t *testing.T) {
	rdb, mr := testutil.NewRedis(t)
	repo := NewSessionRepository(rdb)
	ctx := context.Background()

	revoked, err := repo.IsRevoked(ctx, "abc")
	require.NoError(t, err)
	assert.False(t, revoked)

	require.NoError(t, repo.Revoke(ctx, "abc", time.Minute))
	revoked, err = repo.IsRevoked(ctx, "abc")
	require.NoError(t, err)
	assert.True(t, revoked)

	mr.FastForward(2 * time.Minute)
	revoked, err = repo.IsRevoked(ctx, "abc")
	require.NoError(t, err)
	assert.False(t, revoked)

	// already expired tokens need no entry
	require.NoError(t, repo.Revoke(ctx, "old", -time.Second))
	assert.False(t, mr.Exists(revokedTokenPrefix+"old"))
}

func TestIdempotencyRepository(t *testing.T) {
	rdb, mr := testutil.NewRedis(t)
	repo := NewIdempotencyRepository(rdb, time.Minute)
	ctx := context.Background()

	resp, pending, err := repo.Load(ctx, "k")
	require.NoError(t, err)
	assert.Nil(t, resp)
	assert.False(t, pending)

	ok, err := repo.Reserve(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.Reserve(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)

	_, pending, err = repo.Load(ctx, "k")
	require.NoError(t, err)
	assert.True(t, pending)

	stored := &StoredResponse{Status: 200, ContentType: "application/json", Body: []byte(`{"code":200}`)}
	require.NoError(t, repo.Save(ctx, "k", stored))

	resp, pending, err = repo.Load(ctx, "k")
	require.NoError(t, err)
	assert.False(t, pending)
	assert.Equal(t, stored, resp)

	require.NoError(t, repo.Release(ctx, "k"))
	resp, _, err = repo.Load(ctx, "k")
	require.NoError(t, err)
	assert.Nil(t, resp)

	require.NoError(t, repo.Save(ctx, "ttl", stored))
	mr.FastForward(2 * time.Minute)
	assert.False(t, mr.Exists("ttl"))
}
