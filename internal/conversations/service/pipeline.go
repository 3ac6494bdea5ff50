// Package service runs one inbound message through identity resolution,
// context synthesis, generation, response shaping and storage.
package service

import (
	"context"
	"strings"
	"time"

	"leadconnect_backend/internal/conversations/domain"
	"leadconnect_backend/internal/conversations/generation"
	"leadconnect_backend/internal/conversations/shaping"
	"leadconnect_backend/internal/conversations/synthesis"
	"leadconnect_backend/internal/events"
	"leadconnect_backend/internal/observability"
	"leadconnect_backend/platform/apperr"
	"leadconnect_backend/platform/logger"

	"github.com/google/uuid"
)

const defaultGenerationTimeout = 30 * time.Second

// Inbound is one customer message from any channel.
type Inbound struct {
	Channel     domain.Channel
	Brand       string
	RawPhone    string
	DisplayName string
	SessionID   string
	Text        string
	ReceivedAt  time.Time
}

// Reply is the shaped answer returned to the channel.
type Reply struct {
	LeadID       uuid.UUID       `json:"leadId"`
	SessionID    string          `json:"sessionId"`
	Text         string          `json:"text"`
	Buttons      []domain.Button `json:"buttons"`
	Urgency      domain.Urgency  `json:"urgency"`
	NextAction   string          `json:"nextAction"`
	Phase        domain.Phase    `json:"phase"`
	IsNewUser    bool            `json:"isNewUser"`
	OutputTokens int             `json:"outputTokens"`
	ElapsedMs    int64           `json:"elapsedMs"`
}

// Pipeline wires the conversation components together.
type Pipeline struct {
	aggregator *synthesis.Aggregator
	backend    generation.Backend
	shaper     *shaping.Shaper
	sink       *Sink
	bus        events.Publisher
	metrics    *observability.Metrics
	log        *logger.Logger
	timeout    time.Duration
}

// Deps are the Pipeline collaborators. Bus is optional.
type Deps struct {
	Aggregator        *synthesis.Aggregator
	Backend           generation.Backend
	Shaper            *shaping.Shaper
	Sink              *Sink
	Bus               events.Publisher
	Metrics           *observability.Metrics
	Log               *logger.Logger
	GenerationTimeout time.Duration
}

func NewPipeline(d Deps) *Pipeline {
	timeout := d.GenerationTimeout
	if timeout <= 0 {
		timeout = defaultGenerationTimeout
	}
	return &Pipeline{
		aggregator: d.Aggregator,
		backend:    d.Backend,
		shaper:     d.Shaper,
		sink:       d.Sink,
		bus:        d.Bus,
		metrics:    d.Metrics,
		log:        d.Log,
		timeout:    timeout,
	}
}

// Handle processes one inbound message. Failures are classified and returned,
// never retried; nothing is stored when generation fails.
func (p *Pipeline) Handle(ctx context.Context, in Inbound) (Reply, error) {
	text := strings.TrimSpace(in.Text)
	if text == "" {
		return Reply{}, apperr.Validation("message text is required").WithOp("conversations.Pipeline.Handle")
	}
	if !in.Channel.Valid() {
		return Reply{}, apperr.Validation("unknown channel").WithOp("conversations.Pipeline.Handle")
	}

	p.log.WithContext(ctx).MessageIngested(string(in.Channel), in.Brand, in.SessionID)

	convo, err := p.aggregator.Build(ctx, synthesis.BuildInput{
		RawPhone:    in.RawPhone,
		Brand:       in.Brand,
		DisplayName: in.DisplayName,
		Channel:     in.Channel,
		SessionID:   in.SessionID,
	})
	if err != nil {
		p.countOutcome(in.Channel, outcomeFor(err))
		return Reply{}, err
	}
	log := p.log.WithContext(ctx).With("leadId", convo.LeadID.String())

	completion, err := p.generate(ctx, convo, text)
	if err != nil {
		kind := apperr.GetKind(err)
		log.BackendFailure(p.backend.Name(), kind.String(), err)
		p.metrics.BackendErrors.WithLabelValues(kind.String()).Inc()
		p.countOutcome(in.Channel, "backend_error")
		return Reply{}, err
	}
	p.metrics.ObserveBackendLatency(completion.ElapsedMs)

	shaped := p.shaper.Shape(completion.Text, text, convo, convo.HistoryTurnCount, convo.IsNewUser)

	if err := p.sink.Store(ctx, StoreInput{
		Context:      convo,
		UserMessage:  text,
		ReceivedAt:   in.ReceivedAt,
		Response:     shaped,
		OutputTokens: completion.OutputTokens,
		ElapsedMs:    completion.ElapsedMs,
	}); err != nil {
		log.DatabaseError("store exchange", err)
		p.countOutcome(in.Channel, "store_error")
		return Reply{}, err
	}

	for _, label := range shaped.Labels() {
		p.metrics.Buttons.WithLabelValues(label).Inc()
	}
	p.countOutcome(in.Channel, "ok")
	p.publish(ctx, in, convo, text, shaped)

	sessionID := convo.SessionID
	if sessionID == "" {
		sessionID = DefaultSessionID(convo.Channel, convo.Brand, convo.NormalizedPhone)
	}
	return Reply{
		LeadID:       convo.LeadID,
		SessionID:    sessionID,
		Text:         shaped.Text,
		Buttons:      shaped.Buttons,
		Urgency:      shaped.Urgency,
		NextAction:   shaped.NextAction,
		Phase:        convo.Phase,
		IsNewUser:    convo.IsNewUser,
		OutputTokens: completion.OutputTokens,
		ElapsedMs:    completion.ElapsedMs,
	}, nil
}

func (p *Pipeline) generate(ctx context.Context, convo domain.Context, text string) (generation.Completion, error) {
	genCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	completion, err := p.backend.Complete(genCtx, ComposeSystemPrompt(convo), BuildTurns(convo, text))
	if err != nil {
		return generation.Completion{}, generation.Classify(p.backend.Name(), err)
	}
	return completion, nil
}

func (p *Pipeline) publish(ctx context.Context, in Inbound, convo domain.Context, text string, shaped domain.ShapedResponse) {
	if p.bus == nil {
		return
	}
	button := ""
	if labels := shaped.Labels(); len(labels) > 0 {
		button = labels[0]
	}
	p.bus.Publish(ctx, events.ConversationReplied{
		BaseEvent:   events.NewBaseEvent(),
		LeadID:      convo.LeadID,
		Brand:       convo.Brand,
		Channel:     string(in.Channel),
		LeadName:    convo.Name,
		LeadPhone:   convo.Phone,
		UserMessage: text,
		Reply:       shaped.Text,
		Button:      button,
		Urgency:     string(shaped.Urgency),
		Phase:       string(convo.Phase),
	})
}

func (p *Pipeline) countOutcome(channel domain.Channel, outcome string) {
	p.metrics.PipelineRequests.WithLabelValues(string(channel), outcome).Inc()
}

func outcomeFor(err error) string {
	if apperr.Is(err, apperr.KindValidation) {
		return "invalid_identity"
	}
	return "store_error"
}
