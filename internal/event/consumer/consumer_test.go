package consumer

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/romindigital/ikirezi-bookstore-sub002/internal/catalog"
	"github.com/romindigital/ikirezi-bookstore-sub002/internal/domain"
	"github.com/romindigital/ikirezi-bookstore-sub002/internal/service"
	pkgkafka "github.com/romindigital/ikirezi-bookstore-sub002/pkg/kafka"
)

type stubRecentRepo struct{}

func (stubRecentRepo) Get(ctx context.Context, shopperID string) ([]string, error) {
	return []string{}, nil
}
func (stubRecentRepo) Save(ctx context.Context, shopperID string, log []string) error { return nil }
func (stubRecentRepo) Clear(ctx context.Context, shopperID string) error              { return nil }

type stubPrefsRepo struct{}

func (stubPrefsRepo) Get(ctx context.Context, shopperID string) (*domain.Preferences, error) {
	return nil, nil
}
func (stubPrefsRepo) Save(ctx context.Context, shopperID string, prefs *domain.Preferences) error {
	return nil
}

func newTestConsumer(t *testing.T) (*Consumer, *catalog.Index) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	ix := catalog.NewIndex()
	svc := service.NewCatalogService(ix, stubRecentRepo{}, stubPrefsRepo{}, nil, logger, nil)
	return NewConsumer(svc, logger), ix
}

func mustEvent(t *testing.T, eventType string, data any) *pkgkafka.Event {
	t.Helper()
	ev, err := pkgkafka.NewEvent(eventType, "b1", "book", "test", data)
	require.NoError(t, err)
	return ev
}

func TestConsumer_Handle_BookCreatedIndexes(t *testing.T) {
	consumer, ix := newTestConsumer(t)

	ev := mustEvent(t, TopicBookCreated, BookEventData{
		ID:       "b1",
		Title:    "Dune",
		Author:   "Frank Herbert",
		Category: "science-fiction",
		Price:    1500,
		Rating:   4.8,
		Stock:    3,
	})

	require.NoError(t, consumer.Handle(context.Background(), ev))
	assert.Equal(t, 1, ix.Len())
}

func TestConsumer_Handle_BookUpdatedReplaces(t *testing.T) {
	consumer, ix := newTestConsumer(t)

	created := mustEvent(t, TopicBookCreated, BookEventData{
		ID: "b1", Title: "Dune", Author: "Frank Herbert", Category: "science-fiction", Price: 1500,
	})
	require.NoError(t, consumer.Handle(context.Background(), created))

	updated := mustEvent(t, TopicBookUpdated, BookEventData{
		ID: "b1", Title: "Dune (Anniversary Edition)", Author: "Frank Herbert", Category: "science-fiction", Price: 1800,
	})
	require.NoError(t, consumer.Handle(context.Background(), updated))

	assert.Equal(t, 1, ix.Len())

	books, err := ix.Suggest(context.Background(), "anniversary", 5)
	require.NoError(t, err)
	require.Len(t, books, 1)
	assert.Equal(t, int64(1800), books[0].Price)
}

func TestConsumer_Handle_BookDeletedRemoves(t *testing.T) {
	consumer, ix := newTestConsumer(t)

	created := mustEvent(t, TopicBookCreated, BookEventData{
		ID: "b1", Title: "Dune", Author: "Frank Herbert", Category: "science-fiction", Price: 1500,
	})
	require.NoError(t, consumer.Handle(context.Background(), created))

	deleted := mustEvent(t, TopicBookDeleted, BookDeletedData{ID: "b1"})
	require.NoError(t, consumer.Handle(context.Background(), deleted))

	assert.Zero(t, ix.Len())
}

func TestConsumer_Handle_InvalidPayloadErrors(t *testing.T) {
	consumer, _ := newTestConsumer(t)

	ev := mustEvent(t, TopicBookCreated, BookEventData{ID: "b1", Title: "Dune"})
	ev.Data = []byte("{{not-json")

	assert.Error(t, consumer.Handle(context.Background(), ev))
}

func TestConsumer_Handle_UnknownEventTypeIgnored(t *testing.T) {
	consumer, ix := newTestConsumer(t)

	ev := mustEvent(t, "bookstore.book.archived", BookDeletedData{ID: "b1"})

	require.NoError(t, consumer.Handle(context.Background(), ev))
	assert.Zero(t, ix.Len())
}
