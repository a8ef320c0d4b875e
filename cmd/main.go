package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"property-marketplace/internal/config"
	"property-marketplace/internal/infrastructure/database/memory"
	"property-marketplace/internal/infrastructure/database/postgres"
	"property-marketplace/internal/logger"
	"property-marketplace/internal/notification"
	"property-marketplace/internal/routes"
	"property-marketplace/pkg/mqtt"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		os.Stderr.WriteString("Failed to load configuration: " + err.Error() + "\n")
		os.Exit(1)
	}

	if err := logger.Init(cfg.Server.Environment); err != nil {
		os.Stderr.WriteString("Failed to initialize logger: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer logger.Sync()

	if err := cfg.Validate(); err != nil {
		logger.Fatal("Invalid configuration", zap.Error(err))
	}

	logger.Info("Starting application",
		zap.String("environment", cfg.Server.Environment),
		zap.String("db_driver", cfg.Database.Driver),
	)

	deps, closeStorage := openStorage(cfg)
	defer closeStorage()

	deps.Notifier = notification.NopPublisher{}
	if cfg.MQTT.Enabled() {
		client := mqtt.NewClient(&mqtt.Config{
			Broker:               cfg.MQTT.Broker,
			ClientID:             cfg.MQTT.ClientID,
			Username:             cfg.MQTT.Username,
			Password:             cfg.MQTT.Password,
			CleanSession:         true,
			KeepAlive:            30 * time.Second,
			ConnectTimeout:       10 * time.Second,
			PublishTimeout:       5 * time.Second,
			AutoReconnect:        true,
			MaxReconnectInterval: time.Minute,
		}, logger.Named("mqtt"))

		if err := client.Connect(); err != nil {
			logger.Error("MQTT unavailable, interest notifications disabled", zap.Error(err))
		} else {
			defer client.Disconnect()
			deps.Notifier = notification.NewMQTTPublisher(client, cfg.MQTT.InterestTopic, byte(cfg.MQTT.QoS))
		}
	}

	router, err := routes.SetupRoutes(cfg, deps)
	if err != nil {
		logger.Fatal("Failed to set up routes", zap.Error(err))
	}

	addr := net.JoinHostPort(cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		logger.Info("Server starting", zap.String("address", addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("Failed to shut down server gracefully", zap.Error(err))
		return
	}

	logger.Info("Server exited properly")
}

// openStorage selects the repositories for cfg.Database.Driver. The memory
// driver keeps everything in process and loses it on exit.
func openStorage(cfg *config.Config) (routes.Dependencies, func()) {
	if cfg.Database.Driver == config.DriverMemory {
		logger.Warn("Using in-memory storage, data will not survive a restart")
		store := memory.NewStore()
		return routes.Dependencies{
			Users:      memory.NewUserRepository(store),
			Properties: memory.NewPropertyRepository(store),
			Health:     store,
		}, func() {}
	}

	db, err := postgres.NewDB(cfg)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := db.Migrate(ctx); err != nil {
		logger.Fatal("Failed to bootstrap schema", zap.Error(err))
	}

	closeDB := func() {
		if err := db.Close(); err != nil {
			logger.Error("Failed to close database connection", zap.Error(err))
		}
	}

	return routes.Dependencies{
		Users:      postgres.NewUserRepository(db),
		Properties: postgres.NewPropertyRepository(db),
		Health:     db,
	}, closeDB
}
