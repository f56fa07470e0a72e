package consumer

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/romindigital/ikirezi-bookstore-sub002/internal/service"
	pkgkafka "github.com/romindigital/ikirezi-bookstore-sub002/pkg/kafka"
)

// Kafka topic constants for book domain events consumed by the catalog
// service. The event stream is the single write path for the index at
// runtime.
var (
	TopicBookCreated = pkgkafka.Topic("book", "created")
	TopicBookUpdated = pkgkafka.Topic("book", "updated")
	TopicBookDeleted = pkgkafka.Topic("book", "deleted")
)

// BookEventData represents the payload from book domain events.
type BookEventData struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	Author        string    `json:"author"`
	Category      string    `json:"category"`
	Price         int64     `json:"price"`
	DiscountPrice *int64    `json:"discount_price,omitempty"`
	Rating        float64   `json:"rating"`
	Stock         int       `json:"stock"`
	PublishedAt   time.Time `json:"published_at"`
	Featured      bool      `json:"featured"`
}

// BookDeletedData represents the payload from a book.deleted event.
type BookDeletedData struct {
	ID string `json:"id"`
}

// Consumer handles Kafka events related to book changes for catalog indexing.
type Consumer struct {
	catalogService *service.CatalogService
	logger         *slog.Logger
}

// NewConsumer creates a new event consumer for the catalog service.
func NewConsumer(catalogService *service.CatalogService, logger *slog.Logger) *Consumer {
	return &Consumer{
		catalogService: catalogService,
		logger:         logger,
	}
}

// Handle processes a Kafka event based on its type.
func (c *Consumer) Handle(ctx context.Context, event *pkgkafka.Event) error {
	switch event.EventType {
	case TopicBookCreated, TopicBookUpdated:
		return c.handleBookUpserted(ctx, event)
	case TopicBookDeleted:
		return c.handleBookDeleted(ctx, event)
	default:
		c.logger.WarnContext(ctx, "unknown event type received",
			slog.String("event_type", event.EventType),
			slog.String("event_id", event.EventID),
		)
		return nil
	}
}

// handleBookUpserted indexes a created or updated book.
func (c *Consumer) handleBookUpserted(ctx context.Context, event *pkgkafka.Event) error {
	var data BookEventData
	if err := json.Unmarshal(event.Data, &data); err != nil {
		return fmt.Errorf("unmarshal %s data: %w", event.EventType, err)
	}

	input := &service.IndexBookInput{
		ID:            data.ID,
		Title:         data.Title,
		Author:        data.Author,
		Category:      data.Category,
		Price:         data.Price,
		DiscountPrice: data.DiscountPrice,
		Rating:        data.Rating,
		Stock:         data.Stock,
		PublishedAt:   data.PublishedAt,
		Featured:      data.Featured,
	}

	if err := c.catalogService.IndexBook(ctx, input); err != nil {
		return fmt.Errorf("index book from %s event: %w", event.EventType, err)
	}

	c.logger.InfoContext(ctx, "indexed book from event",
		slog.String("book_id", data.ID),
		slog.String("event_type", event.EventType),
	)

	return nil
}

// handleBookDeleted removes a deleted book from the index.
func (c *Consumer) handleBookDeleted(ctx context.Context, event *pkgkafka.Event) error {
	var data BookDeletedData
	if err := json.Unmarshal(event.Data, &data); err != nil {
		return fmt.Errorf("unmarshal book.deleted data: %w", err)
	}

	if err := c.catalogService.RemoveBook(ctx, data.ID); err != nil {
		return fmt.Errorf("remove book from deleted event: %w", err)
	}

	c.logger.InfoContext(ctx, "removed book from deleted event",
		slog.String("book_id", data.ID),
	)

	return nil
}
