package analyzer

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"agrisense/internal/resilience/circuitbreaker"
	"agrisense/internal/resilience/retry"
)

// OpenAI implements Provider with chat completions and a strict
// json_schema response format.
type OpenAI struct {
	client    *openai.Client
	model     string
	maxTokens int
	inv       *invoker
}

// NewOpenAI creates an OpenAI provider.
func NewOpenAI(opts Options) *OpenAI {
	if opts.Model == "" {
		opts.Model = "gpt-4o-mini"
	}

	cfg := openai.DefaultConfig(opts.APIKey)
	if opts.BaseURL != "" {
		cfg.BaseURL = opts.BaseURL
	}

	slog.Info("Initialized OpenAI analyzer", slog.String("model", opts.Model))

	return &OpenAI{
		client:    openai.NewClientWithConfig(cfg),
		model:     opts.Model,
		maxTokens: opts.MaxTokens,
		inv:       newInvoker("openai", opts, circuitbreaker.OpenAIAPIConfig()),
	}
}

// Name implements Provider.
func (o *OpenAI) Name() string { return "openai" }

// Generate implements Provider.
func (o *OpenAI) Generate(ctx context.Context, req Request) (string, error) {
	return o.inv.call(ctx, req, func(ctx context.Context) (string, error) {
		return o.doGenerate(ctx, req)
	})
}

func (o *OpenAI) doGenerate(ctx context.Context, req Request) (string, error) {
	parts := []openai.ChatMessagePart{{Type: openai.ChatMessagePartTypeText, Text: req.Prompt}}
	if req.Image != nil {
		parts = append(parts, openai.ChatMessagePart{
			Type: openai.ChatMessagePartTypeImageURL,
			ImageURL: &openai.ChatMessageImageURL{
				URL:    "data:" + req.Image.MIMEType + ";base64," + base64.StdEncoding.EncodeToString(req.Image.Data),
				Detail: openai.ImageURLDetailAuto,
			},
		})
	}

	chatReq := openai.ChatCompletionRequest{
		Model: o.model,
		Messages: []openai.ChatCompletionMessage{{
			Role:         openai.ChatMessageRoleUser,
			MultiContent: parts,
		}},
		MaxCompletionTokens: o.maxTokens,
	}
	if req.Schema != nil {
		chatReq.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONSchema,
			JSONSchema: &openai.ChatCompletionResponseFormatJSONSchema{
				Name:   string(req.Kind) + "_analysis",
				Schema: req.Schema,
				Strict: true,
			},
		}
	} else {
		chatReq.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		}
	}

	resp, err := o.client.CreateChatCompletion(ctx, chatReq)
	if err != nil {
		var apiErr *openai.APIError
		if errors.As(err, &apiErr) {
			return "", retry.StatusError(apiErr.HTTPStatusCode, apiErr.Message, err)
		}
		var reqErr *openai.RequestError
		if errors.As(err, &reqErr) {
			return "", retry.StatusError(reqErr.HTTPStatusCode, "openai request error", err)
		}
		return "", fmt.Errorf("openai api error: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", ErrEmptyResponse
	}
	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}
