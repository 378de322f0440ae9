package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Vampire-js/DAAVAT/internal/auth"
	"github.com/Vampire-js/DAAVAT/internal/config"
	"github.com/Vampire-js/DAAVAT/internal/database"
	"github.com/Vampire-js/DAAVAT/internal/handlers"
	"github.com/Vampire-js/DAAVAT/internal/kafka"
	"github.com/Vampire-js/DAAVAT/internal/middleware"
	rediscache "github.com/Vampire-js/DAAVAT/internal/redis"
	"github.com/Vampire-js/DAAVAT/internal/router"
	"github.com/Vampire-js/DAAVAT/internal/store"
	"github.com/Vampire-js/DAAVAT/pkg/logger"
)

func main() {
	cfg, err := config.LoadFromEnv()
	if err != nil {
		log.Fatal("Failed to load config: ", err)
	}

	appLogger := logger.New()
	appLogger.Info().Str("config", cfg.String()).Msg("Configuration loaded")

	if cfg.JWTSecret == "" {
		// The guard fails closed without it, but a deployment with no secret
		// serves nothing useful.
		appLogger.Warn().Msg("JWT_SECRET is empty; all guarded requests will be rejected")
	}

	db, err := database.Connect(cfg.DSN())
	if err != nil {
		log.Fatal("Failed to connect to database: ", err)
	}

	var redisService *rediscache.Service
	if cfg.RedisAddr != "" {
		redisService = rediscache.NewService(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	}

	var kafkaProducer *kafka.Producer
	if brokers := cfg.Brokers(); len(brokers) > 0 {
		kafkaProducer = kafka.NewProducer(brokers, cfg.KafkaTopic)
		defer kafkaProducer.Close()
	}

	verifier := auth.NewVerifier(cfg.JWTSecret)
	documentStore := store.New(db)
	documentHandler := handlers.NewDocumentHandler(documentStore, redisService, kafkaProducer)

	r := gin.Default()

	middleware.SetupPrometheus(r)
	r.Use(middleware.LoggerMiddleware(appLogger))

	// CORS middleware
	r.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	})

	router.Setup(r, verifier, cfg.CookieName, documentHandler)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		appLogger.Info().Str("port", cfg.Port).Msg("Server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Server failed: ", err)
		}
	}()

	<-ctx.Done()
	appLogger.Info().Msg("Shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLogger.Error().Err(err).Msg("Forced shutdown")
	}

	appLogger.Info().Msg("Server exited")
}
