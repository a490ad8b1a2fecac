package adapter

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/sashabaranov/go-openai"
	"golang.org/x/time/rate"
)

// Chat roles understood by ChatBackend implementations.
const (
	RoleSystem = openai.ChatMessageRoleSystem
	RoleUser   = openai.ChatMessageRoleUser
)

// ErrRateLimited marks a backend failure that should be answered by rotating
// to another credential.
var ErrRateLimited = errors.New("backend rate limited")

// ChatMessage is one role-tagged message of a chat request.
type ChatMessage struct {
	Role    string
	Content string
}

// ChatRequest is the backend-neutral shape of a completion call.
type ChatRequest struct {
	Model       string
	Messages    []ChatMessage
	MaxTokens   int
	Temperature float32
}

// ChatBackend submits a prompt with a given API key and returns the reply text.
// Rate-limit and quota failures must wrap ErrRateLimited.
type ChatBackend interface {
	Complete(ctx context.Context, apiKey string, req ChatRequest) (string, error)
}

// OpenAIBackendConfig configures OpenAIBackend.
type OpenAIBackendConfig struct {
	BaseURL           string
	Timeout           time.Duration
	RequestsPerMinute int
}

// OpenAIBackend talks to any OpenAI-compatible chat completions endpoint.
// One client is kept per API key.
type OpenAIBackend struct {
	config  OpenAIBackendConfig
	limiter *rate.Limiter
	http    *http.Client

	mu      sync.Mutex
	clients map[string]*openai.Client
}

// NewOpenAIBackend builds an OpenAIBackend. A zero RequestsPerMinute disables pacing.
func NewOpenAIBackend(config OpenAIBackendConfig) *OpenAIBackend {
	limiter := rate.NewLimiter(rate.Inf, 0)
	if config.RequestsPerMinute > 0 {
		limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(config.RequestsPerMinute)), 1)
	}

	return &OpenAIBackend{
		config:  config,
		limiter: limiter,
		http:    &http.Client{Timeout: config.Timeout},
		clients: make(map[string]*openai.Client),
	}
}

// Complete implements ChatBackend.
func (b *OpenAIBackend) Complete(ctx context.Context, apiKey string, req ChatRequest) (string, error) {
	if err := b.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("wait for request slot: %w", err)
	}

	messages := make([]openai.ChatCompletionMessage, 0, len(req.Messages))
	for _, msg := range req.Messages {
		messages = append(messages, openai.ChatCompletionMessage{Role: msg.Role, Content: msg.Content})
	}

	slog.Debug("Submitting chat completion", "model", req.Model, "maxTokens", req.MaxTokens)

	resp, err := b.client(apiKey).CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       req.Model,
		Messages:    messages,
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
	})
	if err != nil {
		if IsRateLimit(err) {
			return "", fmt.Errorf("%w: %w", ErrRateLimited, err)
		}

		return "", fmt.Errorf("chat completion: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", errors.New("chat completion returned no choices")
	}

	slog.Debug("Received chat completion", "finishReason", resp.Choices[0].FinishReason)

	return resp.Choices[0].Message.Content, nil
}

func (b *OpenAIBackend) client(apiKey string) *openai.Client {
	b.mu.Lock()
	defer b.mu.Unlock()

	if c, ok := b.clients[apiKey]; ok {
		return c
	}

	cfg := openai.DefaultConfig(apiKey)
	if b.config.BaseURL != "" {
		cfg.BaseURL = b.config.BaseURL
	}

	cfg.HTTPClient = b.http

	c := openai.NewClientWithConfig(cfg)
	b.clients[apiKey] = c

	return c
}

// IsRateLimit reports whether err signals a rate limit or exhausted quota:
// an HTTP 429 from the API, or an error message mentioning 429, rate, quota
// or limit.
func IsRateLimit(err error) bool {
	if err == nil {
		return false
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) && apiErr.HTTPStatusCode == http.StatusTooManyRequests {
		return true
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) && reqErr.HTTPStatusCode == http.StatusTooManyRequests {
		return true
	}

	msg := strings.ToLower(err.Error())
	for _, marker := range []string{"429", "rate", "quota", "limit"} {
		if strings.Contains(msg, marker) {
			return true
		}
	}

	return false
}
