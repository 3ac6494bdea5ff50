package generation

import (
	"context"
	"errors"
	"strings"
	"time"

	"google.golang.org/adk/model"
	"google.golang.org/genai"
)

// LLMBackend drives any ADK model.LLM, such as the Moonshot adapter.
type LLMBackend struct {
	llm      model.LLM
	provider string
	now      func() time.Time
}

func NewLLMBackend(provider string, llm model.LLM) *LLMBackend {
	return &LLMBackend{llm: llm, provider: provider, now: time.Now}
}

func (b *LLMBackend) Name() string { return b.provider }

func (b *LLMBackend) Complete(ctx context.Context, systemPrompt string, turns []Turn) (Completion, error) {
	req := &model.LLMRequest{
		Model:    b.llm.Name(),
		Contents: make([]*genai.Content, 0, len(turns)),
		Config:   &genai.GenerateContentConfig{},
	}
	if strings.TrimSpace(systemPrompt) != "" {
		req.Config.SystemInstruction = genai.NewContentFromText(systemPrompt, genai.RoleUser)
	}
	for _, t := range turns {
		var role genai.Role = genai.RoleUser
		if t.Role == RoleAssistant {
			role = genai.RoleModel
		}
		req.Contents = append(req.Contents, genai.NewContentFromText(t.Content, role))
	}

	start := b.now()
	var (
		text   strings.Builder
		tokens int
	)
	for resp, err := range b.llm.GenerateContent(ctx, req, false) {
		if err != nil {
			return Completion{}, Classify(b.provider, err)
		}
		if resp == nil {
			continue
		}
		if resp.Content != nil {
			for _, part := range resp.Content.Parts {
				if part != nil {
					text.WriteString(part.Text)
				}
			}
		}
		if resp.UsageMetadata != nil {
			tokens += int(resp.UsageMetadata.CandidatesTokenCount)
		}
	}

	out := strings.TrimSpace(text.String())
	if out == "" {
		return Completion{}, Classify(b.provider, errors.New("empty completion"))
	}
	return Completion{
		Text:         out,
		OutputTokens: tokens,
		ElapsedMs:    b.now().Sub(start).Milliseconds(),
	}, nil
}
