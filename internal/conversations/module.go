// Package conversations wires the conversation core and mounts its HTTP surface:
// web chat, the WhatsApp webhook and the admin introspection routes.
package conversations

import (
	"fmt"

	"leadconnect_backend/internal/conversations/dedup"
	"leadconnect_backend/internal/conversations/generation"
	"leadconnect_backend/internal/conversations/handler"
	"leadconnect_backend/internal/conversations/keywords"
	"leadconnect_backend/internal/conversations/repository"
	"leadconnect_backend/internal/conversations/service"
	"leadconnect_backend/internal/conversations/shaping"
	"leadconnect_backend/internal/conversations/synthesis"
	"leadconnect_backend/internal/events"
	apphttp "leadconnect_backend/internal/http"
	"leadconnect_backend/internal/leads/identity"
	leadrepo "leadconnect_backend/internal/leads/repository"
	"leadconnect_backend/internal/observability"
	"leadconnect_backend/platform/config"
	"leadconnect_backend/platform/httpkit"
	"leadconnect_backend/platform/logger"
	"leadconnect_backend/platform/validator"
)

// CoreConfig is the configuration the conversation core reads.
type CoreConfig interface {
	config.ConversationConfig
	config.GenerationConfig
}

// Stores are the persistence capabilities the core needs.
type Stores struct {
	Leads         leadrepo.LeadsRepository
	Conversations repository.ConversationsRepository
}

// Core holds the assembled conversation components.
type Core struct {
	Resolver   *identity.Resolver
	Aggregator *synthesis.Aggregator
	Shaper     *shaping.Shaper
	Pipeline   *service.Pipeline
	Inspector  *service.Inspector
}

// NewCore builds the pipeline over the given stores and backend. bus may be nil.
func NewCore(cfg CoreConfig, stores Stores, backend generation.Backend, bus events.Bus, metrics *observability.Metrics, log *logger.Logger) (*Core, error) {
	set, err := LoadKeywords(cfg)
	if err != nil {
		return nil, err
	}

	var opts []identity.Option
	if bus != nil {
		opts = append(opts, identity.WithEventBus(bus))
	}
	resolver := identity.NewResolver(stores.Leads, log, opts...)
	aggregator := synthesis.NewAggregator(resolver, stores.Conversations, stores.Conversations, set, cfg.GetHistoryLimit())
	shaper := shaping.NewShaper(set)

	pipeline := service.NewPipeline(service.Deps{
		Aggregator:        aggregator,
		Backend:           backend,
		Shaper:            shaper,
		Sink:              service.NewSink(stores.Conversations, stores.Leads),
		Bus:               bus,
		Metrics:           metrics,
		Log:               log,
		GenerationTimeout: cfg.GetGenerationTimeout(),
	})

	return &Core{
		Resolver:   resolver,
		Aggregator: aggregator,
		Shaper:     shaper,
		Pipeline:   pipeline,
		Inspector:  service.NewInspector(resolver, aggregator).WithLogs(stores.Conversations),
	}, nil
}

// LoadKeywords returns the embedded keyword set, merged with KEYWORDS_FILE when set.
func LoadKeywords(cfg config.ConversationConfig) (keywords.Set, error) {
	path := cfg.GetKeywordsFile()
	if path == "" {
		return keywords.Default(), nil
	}
	set, err := keywords.Load(path)
	if err != nil {
		return keywords.Set{}, fmt.Errorf("load keywords: %w", err)
	}
	return set, nil
}

// ModuleDeps are the HTTP-facing collaborators of the module. Queue may be nil.
type ModuleDeps struct {
	Core      *Core
	Responder *service.WhatsAppResponder
	Queue     handler.Enqueuer
	Dedup     dedup.Deduper
	Tokens    *httpkit.ChatTokens
	Validator *validator.Validator
	WhatsApp  config.WhatsAppConfig
	Log       *logger.Logger
}

// Module is the conversations bounded context module implementing http.Module.
type Module struct {
	chat       *handler.ChatHandler
	webhook    *handler.WebhookHandler
	admin      *handler.AdminHandler
	tokens     *httpkit.ChatTokens
	webhookKey string
}

func NewModule(d ModuleDeps) *Module {
	return &Module{
		chat:       handler.NewChatHandler(d.Core.Pipeline, d.Tokens, d.Validator),
		webhook:    handler.NewWebhookHandler(d.WhatsApp.GetWhatsAppBrand(), d.Dedup, d.Queue, d.Responder, d.Log),
		admin:      handler.NewAdminHandler(d.Core.Inspector, d.Validator),
		tokens:     d.Tokens,
		webhookKey: d.WhatsApp.GetWhatsAppWebhookKey(),
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "conversations"
}

// RegisterRoutes mounts the module's routes.
func (m *Module) RegisterRoutes(rc *apphttp.RouterContext) {
	chat := rc.V1.Group("/chat", rc.ChatRateLimiter.RateLimit())
	chat.POST("/sessions", m.chat.CreateSession)
	chat.POST("/messages", httpkit.ChatAuthRequired(m.tokens), m.chat.SendMessage)

	rc.V1.POST("/webhook/whatsapp", httpkit.APIKeyRequired("X-Webhook-Key", m.webhookKey), m.webhook.WhatsApp)

	rc.Admin.GET("/context", m.admin.Context)
	rc.Admin.GET("/logs", m.admin.Logs)
}

var _ apphttp.Module = (*Module)(nil)
