package composer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	openai "github.com/sashabaranov/go-openai"

	"github.com/adaptivebank/genui/internal/traits"
)

// Generator produces a candidate schema document from a trait snapshot.
// The result is raw JSON; the caller validates it before use.
type Generator interface {
	GenerateSchema(ctx context.Context, t traits.UserTraits) ([]byte, error)
}

// GeneratorConfig holds external generator settings.
type GeneratorConfig struct {
	APIKey  string
	BaseURL string // optional override for OpenAI-compatible endpoints
	Model   string
	Timeout time.Duration
}

// OpenAIGenerator calls an OpenAI-compatible chat completion endpoint.
// Best-effort, single attempt: any failure means the caller falls back to
// the rule engine.
type OpenAIGenerator struct {
	client  *openai.Client
	model   string
	timeout time.Duration
	log     zerolog.Logger
}

// NewOpenAIGenerator creates the external layout generator client.
func NewOpenAIGenerator(cfg GeneratorConfig, log zerolog.Logger) *OpenAIGenerator {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}

	return &OpenAIGenerator{
		client:  openai.NewClientWithConfig(clientCfg),
		model:   cfg.Model,
		timeout: timeout,
		log:     log.With().Str("client", "layout_generator").Logger(),
	}
}

// GenerateSchema asks the model for a schema document. Markdown fences are
// stripped; everything else is left for the validator to judge.
func (g *OpenAIGenerator) GenerateSchema(ctx context.Context, t traits.UserTraits) ([]byte, error) {
	userPrompt, err := buildUserPrompt(t)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	start := time.Now()
	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: g.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: userPrompt},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("chat completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, errors.New("chat completion returned no choices")
	}

	g.log.Debug().
		Dur("duration", time.Since(start)).
		Int("total_tokens", resp.Usage.TotalTokens).
		Msg("Generated candidate schema")

	return []byte(stripFences(resp.Choices[0].Message.Content)), nil
}

// stripFences removes a surrounding markdown code fence if the model added
// one despite instructions.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
