package redis

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRecentRepo(t *testing.T) (*RecentSearchRepository, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	repo := NewRecentSearchRepository(client, 30*24*time.Hour)
	return repo, mr
}

func TestRecentSearchRepository_Get_Success(t *testing.T) {
	repo, mr := setupRecentRepo(t)

	data, err := json.Marshal([]string{"dune", "foundation"})
	require.NoError(t, err)
	require.NoError(t, mr.Set("searches:recent:shopper-1", string(data)))

	got, err := repo.Get(context.Background(), "shopper-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"dune", "foundation"}, got)
}

func TestRecentSearchRepository_Get_MissingKeyYieldsEmptyLog(t *testing.T) {
	repo, _ := setupRecentRepo(t)

	got, err := repo.Get(context.Background(), "shopper-unknown")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestRecentSearchRepository_Get_InvalidJSON(t *testing.T) {
	repo, mr := setupRecentRepo(t)

	require.NoError(t, mr.Set("searches:recent:shopper-bad", "{{not-json"))

	got, err := repo.Get(context.Background(), "shopper-bad")
	assert.Nil(t, got)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unmarshal recent searches")
}

func TestRecentSearchRepository_Save_RoundTrip(t *testing.T) {
	repo, mr := setupRecentRepo(t)

	log := []string{"hyperion", "dune"}
	require.NoError(t, repo.Save(context.Background(), "shopper-1", log))

	got, err := repo.Get(context.Background(), "shopper-1")
	require.NoError(t, err)
	assert.Equal(t, log, got)

	// The TTL refreshes on save.
	assert.Greater(t, mr.TTL("searches:recent:shopper-1"), time.Duration(0))
}

func TestRecentSearchRepository_Clear(t *testing.T) {
	repo, mr := setupRecentRepo(t)

	require.NoError(t, repo.Save(context.Background(), "shopper-1", []string{"dune"}))
	require.NoError(t, repo.Clear(context.Background(), "shopper-1"))

	assert.False(t, mr.Exists("searches:recent:shopper-1"))

	got, err := repo.Get(context.Background(), "shopper-1")
	require.NoError(t, err)
	assert.Empty(t, got)
}
