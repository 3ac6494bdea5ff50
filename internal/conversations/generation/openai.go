package generation

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// OpenAIConfig configures an OpenAI-compatible chat completions backend.
type OpenAIConfig struct {
	APIKey     string
	BaseURL    string
	Model      string
	HTTPClient *http.Client
}

// OpenAIBackend calls the chat completions API through openai-go.
type OpenAIBackend struct {
	client openai.Client
	model  string
	now    func() time.Time
}

func NewOpenAIBackend(cfg OpenAIConfig) *OpenAIBackend {
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		// Failures surface to the caller; nothing is retried here.
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	if cfg.HTTPClient != nil {
		opts = append(opts, option.WithHTTPClient(cfg.HTTPClient))
	}
	if cfg.Model == "" {
		cfg.Model = "gpt-4o-mini"
	}
	return &OpenAIBackend{
		client: openai.NewClient(opts...),
		model:  cfg.Model,
		now:    time.Now,
	}
}

func (b *OpenAIBackend) Name() string { return "openai" }

func (b *OpenAIBackend) Complete(ctx context.Context, systemPrompt string, turns []Turn) (Completion, error) {
	messages := make([]openai.ChatCompletionMessageParamUnion, 0, len(turns)+1)
	if strings.TrimSpace(systemPrompt) != "" {
		messages = append(messages, openai.SystemMessage(systemPrompt))
	}
	for _, t := range turns {
		if t.Role == RoleAssistant {
			messages = append(messages, openai.AssistantMessage(t.Content))
		} else {
			messages = append(messages, openai.UserMessage(t.Content))
		}
	}

	start := b.now()
	resp, err := b.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(b.model),
		Messages: messages,
	})
	if err != nil {
		var apiErr *openai.Error
		if errors.As(err, &apiErr) {
			return Completion{}, Classify(b.Name(), statusError{code: apiErr.StatusCode, err: err})
		}
		return Completion{}, Classify(b.Name(), err)
	}
	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		return Completion{}, Classify(b.Name(), errors.New("empty completion"))
	}

	return Completion{
		Text:         strings.TrimSpace(resp.Choices[0].Message.Content),
		OutputTokens: int(resp.Usage.CompletionTokens),
		ElapsedMs:    b.now().Sub(start).Milliseconds(),
	}, nil
}

// statusError exposes a provider status code to Classify.
type statusError struct {
	code int
	err  error
}

func (e statusError) Error() string       { return e.err.Error() }
func (e statusError) Unwrap() error       { return e.err }
func (e statusError) HTTPStatusCode() int { return e.code }
