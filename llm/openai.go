package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"financetracker/backend/config"
	"financetracker/backend/services"

	"github.com/sashabaranov/go-openai"
)

// OpenAIClient sends chat completions to an OpenAI-compatible endpoint.
type OpenAIClient struct {
	client    *openai.Client
	apiKey    string
	model     string
	maxTokens int
	timeout   time.Duration
}

func NewOpenAIClient(cfg config.OpenAIConfig) *OpenAIClient {
	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	}

	return &OpenAIClient{
		client:    openai.NewClientWithConfig(clientConfig),
		apiKey:    cfg.APIKey,
		model:     cfg.Model,
		maxTokens: cfg.MaxTokens,
		timeout:   cfg.Timeout,
	}
}

// Complete implements services.Completer. Every failure is returned as a
// *services.UpstreamError with the API key scrubbed from its message.
func (c *OpenAIClient) Complete(ctx context.Context, system, user string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
		MaxTokens: c.maxTokens,
	})
	if err != nil {
		return "", c.upstreamError(err)
	}

	if len(resp.Choices) == 0 {
		return "", &services.UpstreamError{Message: "completion response contained no choices"}
	}

	return resp.Choices[0].Message.Content, nil
}

func (c *OpenAIClient) upstreamError(err error) *services.UpstreamError {
	var (
		apiErr *openai.APIError
		reqErr *openai.RequestError
		status int
		msg    string
	)

	switch {
	case errors.As(err, &apiErr):
		status, msg = apiErr.HTTPStatusCode, apiErr.Message
	case errors.As(err, &reqErr):
		status, msg = reqErr.HTTPStatusCode, reqErr.Error()
	case errors.Is(err, context.DeadlineExceeded):
		msg = fmt.Sprintf("request timed out after %s", c.timeout)
	default:
		msg = err.Error()
	}

	return &services.UpstreamError{Status: status, Message: c.scrub(msg), Err: err}
}

func (c *OpenAIClient) scrub(msg string) string {
	if c.apiKey == "" {
		return msg
	}
	return strings.ReplaceAll(msg, c.apiKey, "[REDACTED]")
}
