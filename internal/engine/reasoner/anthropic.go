package reasoner

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/crimson-sun/tiermap/internal/model"
)

// AnthropicConfig configures the Anthropic Messages API provider.
type AnthropicConfig struct {
	APIKey    string
	Model     string
	MaxTokens int
	BaseURL   string
	Timeout   time.Duration
}

// Anthropic ranks candidates with the Anthropic Messages API.
type Anthropic struct {
	client    anthropic.Client
	model     string
	maxTokens int64
	timeout   time.Duration
	ready     bool
}

// NewAnthropic builds the provider. A missing API key is not an error here:
// every call then fails with model.ErrReasoningUnavailable, which degrades
// results instead of failing them.
func NewAnthropic(cfg AnthropicConfig) *Anthropic {
	if cfg.Model == "" {
		cfg.Model = "claude-haiku-4-5"
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 1000
	}
	// Retries are owned by the fine classifier.
	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey), option.WithMaxRetries(0)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	return &Anthropic{
		client:    anthropic.NewClient(opts...),
		model:     cfg.Model,
		maxTokens: int64(cfg.MaxTokens),
		timeout:   cfg.Timeout,
		ready:     cfg.APIKey != "",
	}
}

// Reason sends one Messages request and parses the reply.
func (a *Anthropic) Reason(ctx context.Context, req Request) (Verdict, error) {
	if !a.ready {
		return Verdict{}, fmt.Errorf("reasoner: %w: no API key configured", model.ErrReasoningUnavailable)
	}
	if a.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.timeout)
		defer cancel()
	}

	system, user := BuildPrompt(req)
	msg, err := a.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:       anthropic.Model(a.model),
		MaxTokens:   a.maxTokens,
		System:      []anthropic.TextBlockParam{{Text: system}},
		Messages:    []anthropic.MessageParam{anthropic.NewUserMessage(anthropic.NewTextBlock(user))},
		Temperature: anthropic.Float(0.1),
	})
	if err != nil {
		return Verdict{}, classifyError(err)
	}

	var text strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}
	if text.Len() == 0 {
		return Verdict{}, fmt.Errorf("reasoner: %w: empty reply", model.ErrReasoningInvalidResponse)
	}
	return ParseVerdict(text.String())
}

// classifyError maps transport and API failures onto ErrReasoningUnavailable,
// keeping caller cancellation visible.
func classifyError(err error) error {
	if errors.Is(err, context.Canceled) {
		return fmt.Errorf("reasoner: %w", err)
	}
	var apiErr *anthropic.Error
	if errors.As(err, &apiErr) {
		return fmt.Errorf("reasoner: %w: HTTP %d", model.ErrReasoningUnavailable, apiErr.StatusCode)
	}
	return fmt.Errorf("reasoner: %w: %v", model.ErrReasoningUnavailable, err)
}
