package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/IBM/sarama"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/anonto42/nano-midea/notification/internal/dispatch"
	"github.com/anonto42/nano-midea/notification/internal/kafka"
	"github.com/anonto42/nano-midea/notification/internal/metrics"
	"github.com/anonto42/nano-midea/notification/internal/repositories"
	"github.com/anonto42/nano-midea/notification/internal/router"
	"github.com/anonto42/nano-midea/notification/internal/validators"
	"github.com/anonto42/nano-midea/notification/pkg/config"
	"github.com/anonto42/nano-midea/notification/pkg/firebase"
)

func main() {
	// Load configuration
	cfg := config.Load()
	if cfg.Env == "development" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize MongoDB
	mongoClient, err := config.InitMongo(cfg.MongoURI)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize MongoDB")
	}
	defer config.CloseMongo(mongoClient)
	db := mongoClient.Database(cfg.MongoDatabase)

	// Initialize Firebase
	firebaseApp, err := firebase.InitFirebase(ctx, cfg.FirebaseCredentialsPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize Firebase")
	}

	// --- Dependency Injection Setup ---
	notifRepo := repositories.NewMongoNotificationRepository(db)
	sessionRepo := repositories.NewMongoSessionRepository(db)

	registry := prometheus.NewRegistry()
	m := metrics.New(registry)

	resolver := dispatch.NewTokenResolver(sessionRepo)
	fanout := dispatch.NewFanout(firebase.NewSender(firebaseApp.MessagingClient), cfg.PushSendTimeout)
	recorder := dispatch.NewRecorder(notifRepo)
	dispatcher := dispatch.NewDispatcher(resolver, fanout, recorder, m)

	// Create Echo instance
	e := echo.New()
	e.HideBanner = true
	e.Validator = validators.NewValidator()
	router.SetupMiddleware(e)
	router.SetupRoutes(e, dispatcher, notifRepo, registry)

	// Start Kafka consumer when brokers are configured
	var consumerGroup sarama.ConsumerGroup
	if len(cfg.KafkaBrokers) > 0 {
		saramaCfg := sarama.NewConfig()
		saramaCfg.Version = sarama.V2_1_0_0
		saramaCfg.Consumer.Return.Errors = true
		consumerGroup, err = sarama.NewConsumerGroup(cfg.KafkaBrokers, cfg.KafkaGroupID, saramaCfg)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create Kafka consumer group")
		}

		consumer := kafka.NewConsumer(cfg.KafkaTopic, consumerGroup, dispatcher)
		go func() {
			if err := consumer.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.Error().Err(err).Msg("Kafka consumer stopped with error")
			}
		}()
	} else {
		log.Info().Msg("KAFKA_BROKERS not set, event consumer disabled")
	}

	// Start server
	go func() {
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Server stopped with error")
		}
	}()

	// Wait for a termination signal from the OS
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	log.Info().Msg("Shutdown signal received")

	cancel()
	if consumerGroup != nil {
		if err := consumerGroup.Close(); err != nil {
			log.Warn().Err(err).Msg("Failed to close consumer group")
		}
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server shutdown failed")
	}
	log.Info().Msg("Service shut down gracefully")
}
