package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"leadconnect_backend/internal/conversations"
	"leadconnect_backend/internal/conversations/dedup"
	"leadconnect_backend/internal/conversations/generation"
	"leadconnect_backend/internal/conversations/handler"
	convorepo "leadconnect_backend/internal/conversations/repository"
	"leadconnect_backend/internal/conversations/service"
	"leadconnect_backend/internal/events"
	apphttp "leadconnect_backend/internal/http"
	"leadconnect_backend/internal/http/router"
	leadrepo "leadconnect_backend/internal/leads/repository"
	"leadconnect_backend/internal/notification"
	"leadconnect_backend/internal/observability"
	"leadconnect_backend/internal/scheduler"
	"leadconnect_backend/internal/whatsapp"
	"leadconnect_backend/platform/config"
	"leadconnect_backend/platform/db"
	"leadconnect_backend/platform/httpkit"
	"leadconnect_backend/platform/logger"
	"leadconnect_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(cfg.Env)
	log.Info("starting server", "env", cfg.Env, "addr", cfg.HTTPAddr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ========================================================================
	// Infrastructure Layer
	// ========================================================================

	var pool *pgxpool.Pool
	if err := withRetry(ctx, log, "database connection", 5, 2*time.Second, func() error {
		p, err := db.NewPool(ctx, cfg)
		if err != nil {
			return err
		}
		pool = p
		return nil
	}); err != nil {
		log.Error("failed to connect to database", "error", err)
		panic("failed to connect to database: " + err.Error())
	}
	defer pool.Close()
	log.Info("database connection established")

	if err := withRetry(ctx, log, "database migrations", 5, 2*time.Second, func() error {
		return db.RunMigrations(ctx, pool)
	}); err != nil {
		log.Error("failed to run database migrations", "error", err)
		panic("failed to run database migrations: " + err.Error())
	}
	log.Info("database migrations complete")

	eventBus := events.NewInMemoryBus(log)
	defer eventBus.Wait()

	metrics := observability.NewMetrics()
	metrics.RegisterHandlers(eventBus)

	notification.NewEscalatorFromConfig(cfg, log).RegisterHandlers(eventBus)

	queue, deduper, closeQueue := initQueue(cfg, log)
	if closeQueue != nil {
		defer closeQueue()
	}

	// ========================================================================
	// Domain Modules (Composition Root)
	// ========================================================================

	backend, err := generation.New(cfg)
	if err != nil {
		log.Error("failed to initialize generation backend", "error", err)
		panic("failed to initialize generation backend: " + err.Error())
	}

	core, err := conversations.NewCore(cfg, conversations.Stores{
		Leads:         leadrepo.New(pool),
		Conversations: convorepo.New(pool),
	}, backend, eventBus, metrics, log)
	if err != nil {
		log.Error("failed to initialize conversation core", "error", err)
		panic("failed to initialize conversation core: " + err.Error())
	}

	sender, err := whatsapp.NewSender(cfg, log)
	if err != nil {
		log.Error("failed to initialize whatsapp sender", "error", err)
		panic("failed to initialize whatsapp sender: " + err.Error())
	}
	if sender == nil {
		log.Warn("WhatsApp delivery not configured; inline webhook replies are dropped")
	}

	conversationsModule := conversations.NewModule(conversations.ModuleDeps{
		Core:      core,
		Responder: service.NewWhatsAppResponder(core.Pipeline, sender, log),
		Queue:     queue,
		Dedup:     deduper,
		Tokens:    httpkit.NewChatTokens(cfg.GetChatTokenSecret(), cfg.GetChatTokenTTL()),
		Validator: validator.New(),
		WhatsApp:  cfg,
		Log:       log,
	})

	// ========================================================================
	// HTTP Layer
	// ========================================================================

	app := &apphttp.App{
		Config:  cfg,
		Logger:  log,
		Health:  db.NewPoolAdapter(pool),
		Metrics: metrics.Handler(),
		Modules: []apphttp.Module{
			conversationsModule,
		},
	}

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router.New(app),
		ReadHeaderTimeout: 10 * time.Second,
	}

	srvErr := make(chan error, 1)
	go func() {
		log.Info("server listening", "addr", cfg.HTTPAddr)
		srvErr <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received, gracefully shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("graceful shutdown failed", "error", err)
		}
	case err := <-srvErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			panic("server error: " + err.Error())
		}
	}
}

// initQueue returns the asynq enqueuer and a Redis-backed deduper, or a nil
// queue and an in-process deduper when REDIS_URL is unset.
func initQueue(cfg config.SchedulerConfig, log *logger.Logger) (handler.Enqueuer, dedup.Deduper, func()) {
	if cfg.GetRedisURL() == "" {
		log.Warn("REDIS_URL not configured; WhatsApp messages are answered inline")
		return nil, dedup.NewMemory(dedup.DefaultTTL), nil
	}

	client, err := scheduler.NewClient(cfg)
	if err != nil {
		log.Error("failed to initialize scheduler client; answering inline", "error", err)
		return nil, dedup.NewMemory(dedup.DefaultTTL), nil
	}
	redisClient, err := scheduler.NewRedisClient(cfg)
	if err != nil {
		log.Error("failed to initialize redis client for dedup", "error", err)
		return client, dedup.NewMemory(dedup.DefaultTTL), func() { _ = client.Close() }
	}

	return client, dedup.NewRedis(redisClient, dedup.DefaultTTL), func() {
		_ = client.Close()
		_ = redisClient.Close()
	}
}

func withRetry(ctx context.Context, log *logger.Logger, name string, attempts int, baseDelay time.Duration, fn func() error) error {
	if attempts < 1 {
		return fmt.Errorf("%s: invalid retry attempts", name)
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		lastErr = fn()
		if lastErr == nil {
			return nil
		}
		log.Warn("retryable operation failed", "operation", name, "attempt", attempt, "error", lastErr)

		if attempt < attempts {
			delay := time.Duration(attempt*attempt) * baseDelay
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}
	}

	return fmt.Errorf("%s: %w", name, lastErr)
}
