package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"backoffice/handlers"
	"backoffice/internal/auth"
	"backoffice/internal/customers"
	"backoffice/internal/orders"
	"backoffice/internal/products"
	"backoffice/internal/stores/kafka"
	"backoffice/internal/stores/postgres"
	"backoffice/internal/users"
	"backoffice/pkg/logkey"
)

func main() {
	setupSlog()

	if err := godotenv.Load(); err != nil {
		slog.Warn("no .env file found, relying on environment")
	}

	if err := startApp(); err != nil {
		slog.Error("service failed to start", slog.String(logkey.ERROR, err.Error()))
		os.Exit(1)
	}
}

func startApp() error {
	slog.Info("migrating tables")
	db, err := postgres.OpenDB()
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	if err := postgres.RunMigrations(db); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}

	var k *kafka.Conf
	if brokers := os.Getenv("KAFKA_BROKERS"); brokers != "" {
		k, err = kafka.NewConf(strings.Split(brokers, ","))
		if err != nil {
			return fmt.Errorf("connecting to kafka: %w", err)
		}
		defer k.Close()
	} else {
		slog.Warn("KAFKA_BROKERS not set, events disabled")
	}

	secret := os.Getenv("JWT_SECRET")
	keys, err := auth.NewKeys(secret)
	if err != nil {
		return fmt.Errorf("initializing auth keys: %w", err)
	}

	u, err := users.NewConf(db)
	if err != nil {
		return fmt.Errorf("initializing users store: %w", err)
	}
	cu, err := customers.NewConf(db)
	if err != nil {
		return fmt.Errorf("initializing customers store: %w", err)
	}
	p, err := products.NewConf(db)
	if err != nil {
		return fmt.Errorf("initializing products store: %w", err)
	}
	o, err := orders.NewConf(db)
	if err != nil {
		return fmt.Errorf("initializing orders store: %w", err)
	}

	prefix := os.Getenv("SERVICE_ENDPOINT_PREFIX")
	if prefix == "" {
		prefix = "/v1"
	}
	port := os.Getenv("APP_PORT")
	if port == "" {
		port = "8080"
	}

	api := http.Server{
		Addr:         ":" + port,
		Handler:      handlers.API(prefix, u, cu, p, o, k, keys),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		slog.Info("starting server", slog.String("port", port))
		serverErrors <- api.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)

	case sig := <-shutdown:
		slog.Info("shutdown started", slog.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := api.Shutdown(ctx); err != nil {
			if closeErr := api.Close(); closeErr != nil {
				return errors.Join(err, closeErr)
			}
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}
	return nil
}

func setupSlog() {
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		AddSource: true,
	})
	slog.SetDefault(slog.New(handler))
}
