package kafka

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/Vampire-js/DAAVAT/internal/events"
)

type Producer struct {
	writer *kafka.Writer
}

// NewProducer creates a Kafka producer for the document events topic.
func NewProducer(brokers []string, topic string) *Producer {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.LeastBytes{},
		WriteTimeout: 10 * time.Second,
		ReadTimeout:  10 * time.Second,
	}

	return &Producer{writer: writer}
}

// PublishDocumentEvent publishes a lifecycle event, keyed by document id so
// events for the same document stay ordered within a partition.
func (p *Producer) PublishDocumentEvent(ctx context.Context, event events.DocumentEvent) error {
	value, err := json.Marshal(event)
	if err != nil {
		log.Printf("Failed to marshal document event: %v", err)
		return err
	}

	message := kafka.Message{
		Key:   []byte(event.DocumentID.String()),
		Value: value,
		Time:  event.Timestamp,
	}

	if err := p.writer.WriteMessages(ctx, message); err != nil {
		log.Printf("Failed to publish document event: %v", err)
		return err
	}

	log.Printf("Published document event: %s for %s %s", event.Type, event.Kind, event.DocumentID)
	return nil
}

// Close closes the Kafka writer.
func (p *Producer) Close() error {
	if p.writer != nil {
		return p.writer.Close()
	}
	return nil
}
