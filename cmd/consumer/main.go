package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/Vampire-js/DAAVAT/internal/config"
	"github.com/Vampire-js/DAAVAT/internal/kafka"
	rediscache "github.com/Vampire-js/DAAVAT/internal/redis"
)

// The consumer keeps the document cache honest: it subscribes to the
// lifecycle topic and drops cache entries touched by other writers.
func main() {
	cfg, err := config.LoadFromEnv()
	if err != nil {
		log.Fatal("Failed to load config: ", err)
	}

	redisService := rediscache.NewService(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if redisService == nil {
		log.Fatal("Failed to connect to Redis")
	}

	brokers := cfg.Brokers()
	if len(brokers) == 0 {
		log.Fatal("KAFKA_BROKERS is not configured")
	}
	consumer := kafka.NewConsumer(brokers, cfg.KafkaTopic, cfg.KafkaGroupID, redisService)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go consumer.Start(ctx)

	log.Println("Document event consumer started. Press Ctrl+C to exit.")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down consumer...")
	cancel()

	consumer.Close()
	redisService.Close()

	log.Println("Consumer exited")
}
