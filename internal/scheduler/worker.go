package scheduler

import (
	"context"
	"errors"
	"fmt"

	"leadconnect_backend/internal/conversations/service"
	"leadconnect_backend/platform/config"
	"leadconnect_backend/platform/logger"

	"github.com/hibiken/asynq"
)

// InboundResponder answers one queued WhatsApp message.
type InboundResponder interface {
	Respond(ctx context.Context, m service.WhatsAppMessage) error
}

type Worker struct {
	server    *asynq.Server
	mux       *asynq.ServeMux
	responder InboundResponder
	log       *logger.Logger
}

func NewWorker(cfg config.SchedulerConfig, responder InboundResponder, log *logger.Logger) (*Worker, error) {
	redisURL := cfg.GetRedisURL()
	if redisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}

	opt, err := redisClientOpt(redisURL, cfg.GetRedisTLSInsecure())
	if err != nil {
		return nil, err
	}

	concurrency := cfg.GetAsynqConcurrency()
	if concurrency < 1 {
		concurrency = 10
	}

	server := asynq.NewServer(opt, asynq.Config{
		Concurrency: concurrency,
		Queues: map[string]int{
			queueName(cfg): 1,
		},
	})

	w := &Worker{
		server:    server,
		mux:       newMux(responder, log),
		responder: responder,
		log:       log,
	}
	return w, nil
}

func newMux(responder InboundResponder, log *logger.Logger) *asynq.ServeMux {
	mux := asynq.NewServeMux()
	mux.HandleFunc(TaskWhatsAppInbound, whatsAppInboundHandler(responder, log))
	return mux
}

func whatsAppInboundHandler(responder InboundResponder, log *logger.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		payload, err := ParseWhatsAppInboundPayload(task)
		if err != nil {
			return err
		}

		err = responder.Respond(ctx, payload)
		if err == nil {
			return nil
		}
		if errors.Is(err, service.ErrPermanent) {
			log.Warn("whatsapp inbound dropped", "messageId", payload.MessageID, "error", err)
			return fmt.Errorf("%w: %w", asynq.SkipRetry, err)
		}
		return err
	}
}

func (w *Worker) Run(ctx context.Context) {
	if w == nil || w.server == nil {
		return
	}

	go func() {
		<-ctx.Done()
		w.server.Shutdown()
	}()

	if err := w.server.Run(w.mux); err != nil {
		w.log.Error("scheduler worker stopped", "error", err)
	}
}
