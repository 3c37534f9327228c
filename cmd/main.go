package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/shopspring/decimal"

	"storefront/internal/api"
	"storefront/internal/cart"
	"storefront/internal/config"
	"storefront/internal/database"
	"storefront/internal/draft"
	"storefront/internal/logger"
	"storefront/internal/messaging"
	"storefront/internal/services/notification"
	"storefront/internal/services/terminal"
	"storefront/internal/session"
)

func main() {
	// Parse command line flags
	var (
		mode       = flag.String("mode", "", "Service mode (terminal-service, notification-subscriber)")
		configPath = flag.String("config", "config.yaml", "Path to the YAML config file")
		port       = flag.Int("port", 0, "HTTP port, overrides terminal.port")
		terminalID = flag.String("terminal-id", "", "Terminal id, overrides terminal.terminal_id")
		checkpoint = flag.Bool("checkpoint-carts", true, "Persist carts to PostgreSQL")
		events     = flag.Bool("publish-events", true, "Publish order events to RabbitMQ")
		eventLog   = flag.Bool("event-log", true, "Record consumed events in PostgreSQL")
		prefetch   = flag.Int("prefetch", 10, "RabbitMQ prefetch count")
	)
	flag.Parse()

	// Validate required mode flag
	if *mode == "" {
		fmt.Fprintf(os.Stderr, "Error: --mode flag is required\n")
		flag.Usage()
		os.Exit(1)
	}

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	if *port != 0 {
		cfg.Terminal.Port = *port
	}
	if *terminalID != "" {
		cfg.Terminal.Terminal = *terminalID
	}

	// Amounts go over the wire as JSON numbers
	decimal.MarshalJSONWithoutQuotes = true

	log := logger.New(*mode)
	requestID := logger.GenerateRequestID()

	log.Info("service_started", fmt.Sprintf("Starting %s", *mode), requestID, map[string]interface{}{
		"mode":        *mode,
		"port":        cfg.Terminal.Port,
		"terminal_id": cfg.Terminal.Terminal,
	})

	// Set up graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		log.Info("graceful_shutdown", "Received shutdown signal", requestID, nil)
		cancel()
	}()

	// Route to appropriate service
	switch *mode {
	case "terminal-service":
		if err := runTerminalService(ctx, cfg, log, *checkpoint, *events); err != nil {
			log.Error("service_failed", "Terminal service failed", requestID, err, nil)
			os.Exit(1)
		}
	case "notification-subscriber":
		if err := runNotificationSubscriber(ctx, cfg, log, *eventLog, *prefetch); err != nil {
			log.Error("service_failed", "Notification subscriber failed", requestID, err, nil)
			os.Exit(1)
		}
	default:
		log.Error("validation_failed", fmt.Sprintf("Unknown mode: %s", *mode), requestID, nil, nil)
		os.Exit(1)
	}

	log.Info("service_stopped", "Service stopped gracefully", requestID, nil)
}

// runTerminalService serves the terminal HTTP API for one operator
func runTerminalService(ctx context.Context, cfg *config.Config, log *logger.Logger, checkpoint, events bool) error {
	requestID := logger.GenerateRequestID()

	sessions, err := session.NewRedisStore(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize session store: %w", err)
	}
	defer sessions.Close()

	log.Info("redis_connected", "Connected to Redis session store", requestID, nil)

	health := map[string]terminal.HealthFunc{
		"redis": sessions.Ping,
	}

	opts := terminal.Options{
		TerminalID: cfg.Terminal.Terminal,
		Backend:    api.New(cfg.Backend, log),
		Sessions:   sessions,
		Pricing:    draft.PricingFromConfig(cfg.Pricing),
		Logger:     log,
	}

	if checkpoint {
		db, err := database.New(ctx, cfg, log)
		if err != nil {
			return fmt.Errorf("failed to initialize database: %w", err)
		}
		defer db.Close()

		log.Info("db_connected", "Connected to PostgreSQL database", requestID, nil)

		if err := db.RunMigrations(ctx); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}
		opts.Carts = cart.NewPostgresRepository(db)
		health["database"] = db.Ping
	}

	if events {
		conn, err := messaging.New(ctx, cfg, log)
		if err != nil {
			return fmt.Errorf("failed to initialize messaging: %w", err)
		}
		defer conn.Close()

		log.Info("rabbitmq_connected", "Connected to RabbitMQ", requestID, nil)

		opts.Publisher = messaging.NewPublisher(conn, log)
		health["rabbitmq"] = func(context.Context) error {
			if conn.IsClosed() {
				return errors.New("connection closed")
			}
			return nil
		}
	}

	t := terminal.New(opts)
	if err := t.Resume(ctx); err != nil {
		return fmt.Errorf("failed to resume terminal: %w", err)
	}

	handler := terminal.NewHandler(t, log, health)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Terminal.Port),
		Handler:           handler.SetupRoutes(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Info("service_started", fmt.Sprintf("Terminal Service started on port %d", cfg.Terminal.Port), requestID, map[string]interface{}{
			"port":        cfg.Terminal.Port,
			"terminal_id": cfg.Terminal.Terminal,
		})
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// Wait for shutdown signal
	select {
	case <-ctx.Done():
	case err := <-serverErr:
		return fmt.Errorf("HTTP server failed: %w", err)
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	return server.Shutdown(shutdownCtx)
}

// runNotificationSubscriber prints order events and records them in the event log
func runNotificationSubscriber(ctx context.Context, cfg *config.Config, log *logger.Logger, eventLog bool, prefetch int) error {
	requestID := logger.GenerateRequestID()

	var db *database.DB
	if eventLog {
		var err error
		db, err = database.New(ctx, cfg, log)
		if err != nil {
			return fmt.Errorf("failed to initialize database: %w", err)
		}
		defer db.Close()

		if err := db.RunMigrations(ctx); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}
		log.Info("db_connected", "Connected to PostgreSQL database", requestID, nil)
	}

	conn, err := messaging.New(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("failed to initialize messaging: %w", err)
	}

	log.Info("rabbitmq_connected", "Connected to RabbitMQ", requestID, nil)

	consumer := messaging.NewConsumer(conn, log, messaging.OrderEventsQueue, "notification-subscriber", prefetch)
	return notification.NewSubscriber(consumer, db, log).Start(ctx)
}
