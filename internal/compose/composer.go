package compose

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"voiceblog/internal/config"
	"voiceblog/internal/services"
	"voiceblog/internal/services/llm"
)

// Provider names accepted by compose.provider.
const (
	ProviderLLM       = "llm"
	ProviderAnthropic = "anthropic"
)

// Sampling holds the generation settings shared by every provider.
type Sampling struct {
	Temperature float64
	TopP        float64
	MaxTokens   int
}

// Composer writes a blog post from a transcript.
type Composer interface {
	Name() string
	Compose(ctx context.Context, transcript string, diag io.Writer) (string, error)
}

// New builds the composer selected by cfg.Compose.Provider.
func New(cfg *config.Config) (Composer, error) {
	if cfg == nil {
		return nil, services.Wrap(services.ErrConfiguration, "compose", "init", "configuration unavailable", nil)
	}
	sampling := Sampling{
		Temperature: cfg.Compose.Temperature,
		TopP:        cfg.Compose.TopP,
		MaxTokens:   cfg.Compose.MaxTokens,
	}
	switch cfg.Compose.Provider {
	case "", ProviderLLM:
		llmCfg := cfg.ComposeLLM()
		client := llm.NewClient(llm.Config{
			APIKey:         llmCfg.APIKey,
			BaseURL:        llmCfg.BaseURL,
			Model:          llmCfg.Model,
			Referer:        llmCfg.Referer,
			Title:          llmCfg.Title,
			TimeoutSeconds: llmCfg.TimeoutSeconds,
		})
		return NewLLM(client, sampling), nil
	case ProviderAnthropic:
		return NewAnthropic(AnthropicConfig{
			APIKey:   cfg.Compose.AnthropicAPIKey,
			Model:    cfg.Compose.AnthropicModel,
			Sampling: sampling,
		}), nil
	default:
		return nil, services.Wrap(services.ErrConfiguration, "compose", "init",
			fmt.Sprintf("unknown provider %q", cfg.Compose.Provider), nil)
	}
}

// LLM composes through the shared chat completion client.
type LLM struct {
	client   *llm.Client
	sampling Sampling
}

// NewLLM wraps client as a composer.
func NewLLM(client *llm.Client, sampling Sampling) *LLM {
	return &LLM{client: client, sampling: sampling}
}

// Name identifies the provider in logs.
func (c *LLM) Name() string {
	return ProviderLLM + ":" + c.client.Model()
}

// Compose requests the post.
func (c *LLM) Compose(ctx context.Context, transcript string, diag io.Writer) (string, error) {
	temperature := c.sampling.Temperature
	params := llm.Params{
		Temperature: &temperature,
		TopP:        c.sampling.TopP,
		MaxTokens:   c.sampling.MaxTokens,
	}
	if diag != nil {
		fmt.Fprintf(diag, "provider=%s temperature=%.2f top_p=%.2f max_tokens=%d\n",
			c.Name(), temperature, params.TopP, params.MaxTokens)
	}
	out, err := c.client.Complete(ctx, SystemPrompt, UserPrompt(transcript), params)
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", services.Wrap(services.ErrExternalTool, "compose", "llm request", "", err)
	}
	return out, nil
}

// HealthCheck pings the chat endpoint.
func (c *LLM) HealthCheck(ctx context.Context) error {
	return c.client.HealthCheck(ctx)
}

// AnthropicConfig configures the Anthropic provider.
type AnthropicConfig struct {
	APIKey  string
	BaseURL string
	Model   string
	// MaxRetries overrides the SDK retry count when positive; a negative
	// value disables retries.
	MaxRetries int
	Sampling   Sampling
}

// Anthropic composes with the Anthropic Messages API.
type Anthropic struct {
	client   anthropic.Client
	model    string
	sampling Sampling
}

// NewAnthropic builds an Anthropic composer.
func NewAnthropic(cfg AnthropicConfig) *Anthropic {
	opts := []option.RequestOption{option.WithAPIKey(strings.TrimSpace(cfg.APIKey))}
	if baseURL := strings.TrimSpace(cfg.BaseURL); baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	switch {
	case cfg.MaxRetries > 0:
		opts = append(opts, option.WithMaxRetries(cfg.MaxRetries))
	case cfg.MaxRetries < 0:
		opts = append(opts, option.WithMaxRetries(0))
	}
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = "claude-sonnet-4-5"
	}
	return &Anthropic{
		client:   anthropic.NewClient(opts...),
		model:    model,
		sampling: cfg.Sampling,
	}
}

// Name identifies the provider in logs.
func (c *Anthropic) Name() string {
	return ProviderAnthropic + ":" + c.model
}

// Compose requests the post. Only temperature is sent: the API rejects
// temperature and top_p together on current models.
func (c *Anthropic) Compose(ctx context.Context, transcript string, diag io.Writer) (string, error) {
	maxTokens := c.sampling.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 8192
	}
	if diag != nil {
		fmt.Fprintf(diag, "provider=%s temperature=%.2f max_tokens=%d\n", c.Name(), c.sampling.Temperature, maxTokens)
	}
	msg, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:       anthropic.Model(c.model),
		MaxTokens:   int64(maxTokens),
		System:      []anthropic.TextBlockParam{{Text: SystemPrompt}},
		Messages:    []anthropic.MessageParam{anthropic.NewUserMessage(anthropic.NewTextBlock(UserPrompt(transcript)))},
		Temperature: anthropic.Float(c.sampling.Temperature),
	})
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", services.Wrap(services.ErrExternalTool, "compose", "anthropic request", "", err)
	}
	var b strings.Builder
	for _, block := range msg.Content {
		if text, ok := block.AsAny().(anthropic.TextBlock); ok {
			b.WriteString(text.Text)
		}
	}
	if diag != nil {
		fmt.Fprintf(diag, "stop_reason=%s output_tokens=%d\n", msg.StopReason, msg.Usage.OutputTokens)
	}
	return b.String(), nil
}
