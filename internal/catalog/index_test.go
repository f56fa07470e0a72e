package catalog

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/romindigital/ikirezi-bookstore-sub002/internal/domain"
	"github.com/romindigital/ikirezi-bookstore-sub002/internal/query"
)

func TestIndex_UpsertPreservesRankOnUpdate(t *testing.T) {
	ctx := context.Background()
	ix := NewIndex()

	require.NoError(t, ix.Upsert(ctx, book("bk-1", "First", "A", "Fiction", 10_00)))
	require.NoError(t, ix.Upsert(ctx, book("bk-2", "Second", "B", "Fiction", 20_00)))

	// Re-indexing bk-1 keeps its original position in the ranking.
	updated := book("bk-1", "First, Revised", "A", "Fiction", 11_00)
	require.NoError(t, ix.Upsert(ctx, updated))

	res, err := ix.Search(ctx, query.Defaults())
	require.NoError(t, err)
	require.Len(t, res.Books, 2)
	assert.Equal(t, "First, Revised", res.Books[0].Title)
	assert.Equal(t, "bk-2", res.Books[1].ID)
	assert.Equal(t, 2, ix.Len())
}

func TestIndex_DeleteClosesRankGap(t *testing.T) {
	ctx := context.Background()
	ix := NewIndex()
	require.NoError(t, ix.BulkUpsert(ctx, []domain.Book{
		book("bk-1", "One", "A", "Fiction", 10_00),
		book("bk-2", "Two", "B", "Fiction", 20_00),
		book("bk-3", "Three", "C", "Fiction", 30_00),
	}))

	require.NoError(t, ix.Delete(ctx, "bk-2"))

	res, err := ix.Search(ctx, query.Defaults())
	require.NoError(t, err)
	require.Len(t, res.Books, 2)
	assert.Equal(t, "bk-1", res.Books[0].ID)
	assert.Equal(t, "bk-3", res.Books[1].ID)

	// Delete of an unknown ID is a no-op.
	require.NoError(t, ix.Delete(ctx, "bk-404"))
	assert.Equal(t, 2, ix.Len())
}

func TestIndex_Suggest(t *testing.T) {
	ctx := context.Background()
	ix := NewIndex()
	require.NoError(t, ix.BulkUpsert(ctx, []domain.Book{
		book("bk-1", "Dune", "Frank Herbert", "Sci-Fi", 12_00),
		book("bk-2", "Dune Messiah", "Frank Herbert", "Sci-Fi", 13_00),
		book("bk-3", "Desert Flora", "Dunean Forbes", "Nature", 9_00),
		book("bk-4", "Cooking at Home", "Jo Brown", "Cooking", 8_00),
	}))

	got, err := ix.Suggest(ctx, "DUNE", 2)
	require.NoError(t, err)
	require.Len(t, got, 2, "limit caps the candidate list")
	assert.Equal(t, "bk-1", got[0].ID)
	assert.Equal(t, "bk-2", got[1].ID)

	// Author matches count too.
	got, err = ix.Suggest(ctx, "dunean", 5)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "bk-3", got[0].ID)
}

func TestIndex_SuggestEmptyQuery(t *testing.T) {
	ctx := context.Background()
	ix := NewIndex()
	require.NoError(t, ix.Upsert(ctx, book("bk-1", "Dune", "Frank Herbert", "Sci-Fi", 12_00)))

	got, err := ix.Suggest(ctx, "   ", 5)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestIndex_Categories(t *testing.T) {
	ctx := context.Background()
	ix := NewIndex()
	require.NoError(t, ix.BulkUpsert(ctx, []domain.Book{
		book("bk-1", "A", "X", "Sci-Fi", 10_00),
		book("bk-2", "B", "Y", "Cooking", 10_00),
		book("bk-3", "C", "Z", "Sci-Fi", 10_00),
	}))

	got, err := ix.Categories(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Cooking", "Sci-Fi"}, got)
}
