package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"queueflow/api/routes"
	"queueflow/internal/audit"
	"queueflow/internal/shared/config"
	"queueflow/internal/shared/database"
	"queueflow/pkg/logger"

	"github.com/IBM/sarama"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := config.Load()
	appLogger := logger.New()
	logger.SetDefault(appLogger)

	db, err := database.InitDB(cfg)
	if err != nil {
		appLogger.Error("Failed to initialize databases", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	var publisher audit.Publisher
	if cfg.Kafka.Enabled {
		publisher, err = audit.NewKafkaPublisher(&audit.KafkaPublisherConfig{
			Brokers:         cfg.Kafka.Brokers,
			Topic:           cfg.Kafka.Topic,
			RetryMax:        3,
			TimeoutMs:       10000,
			RequiredAcks:    sarama.WaitForAll,
			CompressionType: sarama.CompressionSnappy,
			MaxMessageBytes: 1000000,
		})
		if err != nil {
			appLogger.Error("Failed to create Kafka publisher", "error", err)
			os.Exit(1)
		}
		defer publisher.Close()
	}

	router := routes.NewRouter(cfg, db, publisher)
	engine := router.Setup()
	router.StartJobs()

	server := &http.Server{
		Addr:           cfg.GetServerAddress(),
		Handler:        engine,
		ReadTimeout:    cfg.ReadTimeout,
		WriteTimeout:   cfg.WriteTimeout,
		IdleTimeout:    cfg.IdleTimeout,
		MaxHeaderBytes: cfg.MaxHeaderBytes,
	}

	go func() {
		appLogger.Info("Server starting", "address", cfg.GetServerAddress(), "mode", cfg.GinMode)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server")
	router.StopJobs()

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		appLogger.Error("Forced shutdown", "error", err)
		os.Exit(1)
	}

	appLogger.Info("Server stopped")
}
