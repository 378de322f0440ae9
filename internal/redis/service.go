package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/Vampire-js/DAAVAT/internal/models"
)

const documentTTL = 24 * time.Hour

type Service struct {
	client *redis.Client
}

// NewService creates a Redis service. Returns nil when the server is not
// reachable; callers treat a nil service as "caching disabled".
func NewService(addr, password string, db int) *Service {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := client.Ping(ctx).Result(); err != nil {
		log.Printf("Failed to connect to Redis: %v", err)
		return nil
	}

	log.Println("Successfully connected to Redis")
	return &Service{client: client}
}

// SetDocument caches a document by id.
func (s *Service) SetDocument(ctx context.Context, doc *models.Document) error {
	key := documentKey(doc.ID)

	data, err := json.Marshal(doc)
	if err != nil {
		log.Printf("Failed to marshal document: %v", err)
		return err
	}

	if err := s.client.Set(ctx, key, data, documentTTL).Err(); err != nil {
		log.Printf("Failed to cache document %s: %v", doc.ID, err)
		return err
	}
	return nil
}

// GetDocument retrieves a cached document. A nil document with a nil error
// is a cache miss.
func (s *Service) GetDocument(ctx context.Context, id uuid.UUID) (*models.Document, error) {
	data, err := s.client.Get(ctx, documentKey(id)).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		log.Printf("Failed to get document %s from cache: %v", id, err)
		return nil, err
	}

	var doc models.Document
	if err := json.Unmarshal([]byte(data), &doc); err != nil {
		log.Printf("Failed to unmarshal cached document: %v", err)
		return nil, err
	}
	return &doc, nil
}

// InvalidateDocument removes a document from the cache.
func (s *Service) InvalidateDocument(ctx context.Context, id uuid.UUID) error {
	return s.client.Del(ctx, documentKey(id)).Err()
}

// Close closes the underlying client.
func (s *Service) Close() error {
	return s.client.Close()
}

func documentKey(id uuid.UUID) string {
	return fmt.Sprintf("document:%s", id.String())
}
