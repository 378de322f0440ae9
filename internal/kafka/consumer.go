package kafka

import (
	"context"
	"encoding/json"
	"log"

	"github.com/segmentio/kafka-go"

	"github.com/Vampire-js/DAAVAT/internal/events"
	rediscache "github.com/Vampire-js/DAAVAT/internal/redis"
)

type Consumer struct {
	reader *kafka.Reader
	cache  *rediscache.Service
}

// NewConsumer creates a consumer for the document events topic.
func NewConsumer(brokers []string, topic, groupID string, cache *rediscache.Service) *Consumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers: brokers,
		Topic:   topic,
		GroupID: groupID,
	})

	return &Consumer{reader: reader, cache: cache}
}

// Start consumes document events until the context is cancelled. Mutation
// events drop the stale cache entry for the affected document; malformed
// messages are logged and skipped.
func (c *Consumer) Start(ctx context.Context) {
	for {
		message, err := c.reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			log.Printf("Failed to read message: %v", err)
			continue
		}

		var event events.DocumentEvent
		if err := json.Unmarshal(message.Value, &event); err != nil {
			log.Printf("Failed to unmarshal document event: %v", err)
			continue
		}

		switch event.Type {
		case events.DocumentUpdated, events.DocumentRenamed, events.DocumentDeleted:
			if err := c.cache.InvalidateDocument(ctx, event.DocumentID); err != nil {
				log.Printf("Failed to invalidate document %s: %v", event.DocumentID, err)
				continue
			}
			log.Printf("Invalidated cached document %s after %s", event.DocumentID, event.Type)
		case events.DocumentCreated:
			// Nothing cached yet for a fresh document.
		default:
			log.Printf("Ignoring unknown event type: %s", event.Type)
		}
	}
}

// Close closes the Kafka reader.
func (c *Consumer) Close() error {
	return c.reader.Close()
}
