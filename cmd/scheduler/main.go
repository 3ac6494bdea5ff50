package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"leadconnect_backend/internal/conversations"
	"leadconnect_backend/internal/conversations/generation"
	convorepo "leadconnect_backend/internal/conversations/repository"
	"leadconnect_backend/internal/conversations/service"
	"leadconnect_backend/internal/events"
	leadrepo "leadconnect_backend/internal/leads/repository"
	"leadconnect_backend/internal/notification"
	"leadconnect_backend/internal/observability"
	"leadconnect_backend/internal/scheduler"
	"leadconnect_backend/internal/whatsapp"
	"leadconnect_backend/platform/config"
	"leadconnect_backend/platform/db"
	"leadconnect_backend/platform/logger"

	"github.com/jackc/pgx/v5/pgxpool"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(cfg.Env)
	log.Info("starting scheduler", "env", cfg.Env, "queue", cfg.GetAsynqQueueName())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

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

	eventBus := events.NewInMemoryBus(log)
	defer eventBus.Wait()

	// Worker metrics are not scraped; they still back the pipeline counters.
	metrics := observability.NewMetrics()
	metrics.RegisterHandlers(eventBus)
	notification.NewEscalatorFromConfig(cfg, log).RegisterHandlers(eventBus)

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
		log.Warn("WhatsApp delivery not configured; replies are stored but not sent")
	}

	worker, err := scheduler.NewWorker(cfg, service.NewWhatsAppResponder(core.Pipeline, sender, log), log)
	if err != nil {
		log.Error("failed to initialize scheduler worker", "error", err)
		panic("failed to initialize scheduler worker: " + err.Error())
	}

	worker.Run(ctx)
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
