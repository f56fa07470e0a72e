package event

import (
	"context"
	"fmt"
	"log/slog"

	pkgkafka "github.com/romindigital/ikirezi-bookstore-sub002/pkg/kafka"
)

// Kafka topic for catalog analytics events.
var TopicSearchPerformed = pkgkafka.Topic("search", "performed")

// Aggregate type constant.
const AggregateTypeSearch = "search"

// Source identifier for events originating from the catalog service.
const SourceCatalogService = "catalog-service"

// SearchPerformedData is the payload for a search.performed analytics event.
type SearchPerformedData struct {
	ShopperID string `json:"shopper_id,omitempty"`
	Query     string `json:"query"`
	Category  string `json:"category,omitempty"`
	Sort      string `json:"sort"`
	Page      int    `json:"page"`
	PerPage   int    `json:"per_page"`
	Total     int    `json:"total"`
}

// Producer publishes catalog analytics events to Kafka.
type Producer struct {
	kafka  *pkgkafka.Producer
	logger *slog.Logger
}

// NewProducer creates a new event producer for the catalog service.
func NewProducer(kafka *pkgkafka.Producer, logger *slog.Logger) *Producer {
	return &Producer{
		kafka:  kafka,
		logger: logger,
	}
}

// PublishSearchPerformed publishes a search.performed event.
func (p *Producer) PublishSearchPerformed(ctx context.Context, data SearchPerformedData) error {
	event, err := pkgkafka.NewEvent(TopicSearchPerformed, data.ShopperID, AggregateTypeSearch, SourceCatalogService, data)
	if err != nil {
		return fmt.Errorf("create search.performed event: %w", err)
	}

	if err := p.kafka.Publish(ctx, TopicSearchPerformed, event); err != nil {
		return fmt.Errorf("publish search.performed event: %w", err)
	}

	p.logger.DebugContext(ctx, "published search.performed event",
		slog.String("query", data.Query),
		slog.Int("total", data.Total),
	)

	return nil
}
