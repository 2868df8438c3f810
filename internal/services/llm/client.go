package llm

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

const (
	defaultBaseURL        = "https://openrouter.ai/api/v1/chat/completions"
	defaultHTTPTimeout    = 120 * time.Second
	defaultRetryMaxDelay  = 10 * time.Second
	defaultRetryBaseDelay = 1 * time.Second
	defaultRetryAttempts  = 5
)

// Config captures the runtime settings required to talk to the LLM.
type Config struct {
	APIKey         string
	BaseURL        string
	Model          string
	Referer        string
	Title          string
	TimeoutSeconds int
}

// Params are the sampling settings of one request. Zero values are omitted so
// the provider default applies.
type Params struct {
	Temperature *float64
	TopP        float64
	MaxTokens   int
}

// Audio is an inline audio attachment. Format is the container name the
// provider expects ("mp3", "wav", ...).
type Audio struct {
	Data   []byte
	Format string
}

// Client wraps an OpenAI-compatible chat completion endpoint (OpenRouter by
// default, or Gemini's compatibility endpoint).
type Client struct {
	cfg        Config
	httpClient *http.Client

	retryMaxAttempts int
	retryBaseDelay   time.Duration
	retryMaxDelay    time.Duration
	sleeper          func(time.Duration)
}

// Option customizes the client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithRetryMaxAttempts overrides the default retry count (defaults to 5).
func WithRetryMaxAttempts(attempts int) Option {
	return func(c *Client) {
		c.retryMaxAttempts = attempts
	}
}

// WithRetryBackoff overrides the retry backoff delays.
func WithRetryBackoff(baseDelay, maxDelay time.Duration) Option {
	return func(c *Client) {
		c.retryBaseDelay = baseDelay
		c.retryMaxDelay = maxDelay
	}
}

// WithSleeper overrides how retry sleeps are performed (useful for tests).
func WithSleeper(sleeper func(time.Duration)) Option {
	return func(c *Client) {
		c.sleeper = sleeper
	}
}

// NewClient constructs an LLM client using the supplied configuration.
func NewClient(cfg Config, opts ...Option) *Client {
	timeout := defaultHTTPTimeout
	if cfg.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}
	client := &Client{
		cfg: Config{
			APIKey:         strings.TrimSpace(cfg.APIKey),
			BaseURL:        strings.TrimSpace(cfg.BaseURL),
			Model:          strings.TrimSpace(cfg.Model),
			Referer:        strings.TrimSpace(cfg.Referer),
			Title:          strings.TrimSpace(cfg.Title),
			TimeoutSeconds: cfg.TimeoutSeconds,
		},
		httpClient:       &http.Client{Timeout: timeout},
		retryMaxAttempts: defaultRetryAttempts,
		retryBaseDelay:   defaultRetryBaseDelay,
		retryMaxDelay:    defaultRetryMaxDelay,
	}
	for _, opt := range opts {
		opt(client)
	}
	if client.cfg.BaseURL == "" {
		client.cfg.BaseURL = defaultBaseURL
	}
	return client
}

// Model returns the configured model identifier.
func (c *Client) Model() string {
	return c.cfg.Model
}

// Complete sends a system and user prompt and returns the text reply.
func (c *Client) Complete(ctx context.Context, systemPrompt, userPrompt string, params Params) (string, error) {
	userPrompt = strings.TrimSpace(userPrompt)
	if userPrompt == "" {
		return "", errors.New("llm complete: user prompt required")
	}
	if c.cfg.APIKey == "" {
		return "", errors.New("llm complete: api key required")
	}
	messages := make([]chatMessage, 0, 2)
	if systemPrompt = strings.TrimSpace(systemPrompt); systemPrompt != "" {
		messages = append(messages, chatMessage{Role: "system", Content: systemPrompt})
	}
	messages = append(messages, chatMessage{Role: "user", Content: userPrompt})
	return c.chat(ctx, "llm complete", c.newRequest(messages, params))
}

// CompleteWithAudio sends a prompt together with an inline audio part and
// returns the text reply. Used for speech transcription by multimodal models.
func (c *Client) CompleteWithAudio(ctx context.Context, prompt string, audio Audio, params Params) (string, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return "", errors.New("llm audio: prompt required")
	}
	if len(audio.Data) == 0 {
		return "", errors.New("llm audio: audio payload is empty")
	}
	if c.cfg.APIKey == "" {
		return "", errors.New("llm audio: api key required")
	}
	format := strings.ToLower(strings.TrimSpace(audio.Format))
	if format == "" {
		format = "mp3"
	}
	parts := []contentPart{
		{Type: "text", Text: prompt},
		{Type: "input_audio", InputAudio: &inputAudio{
			Data:   base64.StdEncoding.EncodeToString(audio.Data),
			Format: format,
		}},
	}
	messages := []chatMessage{{Role: "user", Content: parts}}
	return c.chat(ctx, "llm audio", c.newRequest(messages, params))
}

// HealthCheck issues a fast ping to verify the API key and model are usable.
func (c *Client) HealthCheck(ctx context.Context) error {
	if c.cfg.APIKey == "" {
		return errors.New("llm health: api key required")
	}
	zero := 0.0
	payload := c.newRequest([]chatMessage{
		{Role: "system", Content: "You must respond with JSON only."},
		{Role: "user", Content: "Respond with {\"ok\":true}"},
	}, Params{Temperature: &zero})
	payload.ResponseFormat = map[string]string{"type": "json_object"}
	content, err := c.chat(ctx, "llm health", payload)
	if err != nil {
		return err
	}
	var parsed struct {
		OK bool `json:"ok"`
	}
	if err := DecodeLLMJSON(content, &parsed); err != nil {
		return fmt.Errorf("llm health: parse payload: %w", err)
	}
	if !parsed.OK {
		return errors.New("llm health: unexpected response")
	}
	return nil
}

func (c *Client) newRequest(messages []chatMessage, params Params) chatCompletionRequest {
	return chatCompletionRequest{
		Model:       c.cfg.Model,
		Messages:    messages,
		Temperature: params.Temperature,
		TopP:        params.TopP,
		MaxTokens:   params.MaxTokens,
	}
}
