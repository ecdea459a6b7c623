package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/tracewright/apqp-engine/pkg/retry"
)

const systemMessage = "You are a quality engineer writing concise PFMEA and control " +
	"document narrative in the language of the input. Answer with the requested " +
	"text only, one or two sentences, no preamble."

// Client calls an OpenAI-compatible endpoint for enhanced narrative text.
type Client struct {
	client *openai.Client
	model  string
	logger *zap.Logger
}

// Config holds configuration for creating a narrative client.
type Config struct {
	Endpoint string // Base URL, e.g. "https://api.openai.com/v1"
	Model    string // Model name
	APIKey   string // Optional for local endpoints
}

// NewClient creates a new OpenAI-compatible narrative client.
func NewClient(cfg *Config, logger *zap.Logger) (*Client, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("endpoint is required")
	}
	if cfg.Model == "" {
		return nil, fmt.Errorf("model is required")
	}

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	clientConfig.BaseURL = strings.TrimSuffix(cfg.Endpoint, "/")

	return &Client{
		client: openai.NewClientWithConfig(clientConfig),
		model:  cfg.Model,
		logger: logger.Named("narrative"),
	}, nil
}

var _ NarrativeGenerator = (*Client)(nil)

// Name implements NarrativeGenerator.
func (c *Client) Name() string { return "openai:" + c.model }

// Narrative implements NarrativeGenerator. Transient endpoint failures
// are retried with backoff inside the caller's deadline.
func (c *Client) Narrative(ctx context.Context, req Request) (string, error) {
	resp, err := retry.DoWithResult(ctx, retry.DefaultConfig(), func() (openai.ChatCompletionResponse, error) {
		return c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
			Model:       c.model,
			Temperature: 0.3,
			Messages: []openai.ChatCompletionMessage{
				{Role: openai.ChatMessageRoleSystem, Content: systemMessage},
				{Role: openai.ChatMessageRoleUser, Content: buildPrompt(req)},
			},
		})
	})
	if err != nil {
		c.logger.Warn("Narrative generation failed, caller falls back to template",
			zap.String("field", string(req.Field)),
			zap.Error(err))
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("chat completion returned no choices")
	}

	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		return "", fmt.Errorf("chat completion returned empty text")
	}
	return text, nil
}

func buildPrompt(req Request) string {
	var b strings.Builder
	switch req.Field {
	case FieldFailureEffect:
		b.WriteString("Write the failure effect for a PFMEA line.\n")
	case FieldRecommendedAction:
		b.WriteString("Write the recommended action for a PFMEA line.\n")
	default:
		b.WriteString("Write narrative text for a quality document field.\n")
	}
	fmt.Fprintf(&b, "Characteristic: %s (category %s)\n", req.CharacteristicName, req.Category)
	if req.FailureMode != "" {
		fmt.Fprintf(&b, "Failure mode: %s\n", req.FailureMode)
	}
	if req.ProcessName != "" {
		fmt.Fprintf(&b, "Process: %s\n", req.ProcessName)
	}
	if req.Priority != "" {
		fmt.Fprintf(&b, "Action priority: %s\n", req.Priority)
	}
	return b.String()
}
