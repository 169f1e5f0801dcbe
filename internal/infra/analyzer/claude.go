package analyzer

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"agrisense/internal/resilience/circuitbreaker"
	"agrisense/internal/resilience/retry"
)

// Claude implements Provider with Anthropic's Messages API. Claude has no
// response-schema switch, so the schema is sent in the system prompt and
// markdown fences are stripped from the answer.
type Claude struct {
	client    anthropic.Client
	model     string
	maxTokens int
	inv       *invoker
}

// NewClaude creates a Claude provider.
func NewClaude(opts Options) *Claude {
	if opts.Model == "" {
		opts.Model = string(anthropic.ModelClaudeSonnet4_5_20250929)
	}
	if opts.MaxTokens <= 0 {
		opts.MaxTokens = 2048
	}

	reqOpts := []option.RequestOption{
		option.WithAPIKey(opts.APIKey),
		// retries are handled by the invoker
		option.WithMaxRetries(0),
	}
	if opts.BaseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(opts.BaseURL))
	}

	slog.Info("Initialized Claude analyzer", slog.String("model", opts.Model))

	return &Claude{
		client:    anthropic.NewClient(reqOpts...),
		model:     opts.Model,
		maxTokens: opts.MaxTokens,
		inv:       newInvoker("claude", opts, circuitbreaker.ClaudeAPIConfig()),
	}
}

// Name implements Provider.
func (c *Claude) Name() string { return "claude" }

// Generate implements Provider.
func (c *Claude) Generate(ctx context.Context, req Request) (string, error) {
	return c.inv.call(ctx, req, func(ctx context.Context) (string, error) {
		return c.doGenerate(ctx, req)
	})
}

func (c *Claude) doGenerate(ctx context.Context, req Request) (string, error) {
	blocks := make([]anthropic.ContentBlockParamUnion, 0, 2)
	if req.Image != nil {
		blocks = append(blocks, anthropic.NewImageBlockBase64(
			req.Image.MIMEType, base64.StdEncoding.EncodeToString(req.Image.Data)))
	}
	blocks = append(blocks, anthropic.NewTextBlock(req.Prompt))

	system, err := jsonInstruction(req.Schema)
	if err != nil {
		return "", err
	}

	message, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(c.model),
		MaxTokens: int64(c.maxTokens),
		System:    []anthropic.TextBlockParam{{Text: system}},
		Messages:  []anthropic.MessageParam{anthropic.NewUserMessage(blocks...)},
	})
	if err != nil {
		var apiErr *anthropic.Error
		if errors.As(err, &apiErr) {
			return "", retry.StatusError(apiErr.StatusCode, "claude api error", err)
		}
		return "", fmt.Errorf("claude api error: %w", err)
	}

	var sb strings.Builder
	for _, block := range message.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	text := StripCodeFence(sb.String())
	if text == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}

// jsonInstruction builds the system prompt that pins the response to schema.
func jsonInstruction(schema *Schema) (string, error) {
	if schema == nil {
		return "Respond with a single JSON value and nothing else.", nil
	}
	raw, err := json.Marshal(schema)
	if err != nil {
		return "", fmt.Errorf("encode response schema: %w", err)
	}
	return "Respond with a single JSON object that validates against this JSON Schema, and nothing else:\n" + string(raw), nil
}

// StripCodeFence removes a surrounding ```json ... ``` block if present.
func StripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		// drop the language tag line
		s = s[nl+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
