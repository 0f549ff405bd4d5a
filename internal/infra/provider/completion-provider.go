package provider

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"chat-relay/internal/domain/apperr"
	"chat-relay/internal/infra/logger"

	"github.com/sirupsen/logrus"
	openai "github.com/sashabaranov/go-openai"
)

// CompletionTemperature is fixed for every request.
const CompletionTemperature float32 = 0.7

// CompletionProvider talks to an OpenAI-compatible chat completions endpoint.
type CompletionProvider struct {
	Logger *logger.Logger
	client *openai.Client
	model  string
}

func NewCompletionProvider(log *logger.Logger, apiKey, baseURL, model string, timeout time.Duration) *CompletionProvider {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = strings.TrimRight(baseURL, "/")
	}
	cfg.HTTPClient = &http.Client{Timeout: timeout}

	return &CompletionProvider{
		Logger: log,
		client: openai.NewClientWithConfig(cfg),
		model:  model,
	}
}

// Complete sends one system+user exchange and returns the trimmed assistant reply.
// There is no retry: a failed attempt is returned to the caller as is.
func (p *CompletionProvider) Complete(ctx context.Context, systemPrompt string, userPrompt string) (string, error) {
	req := openai.ChatCompletionRequest{
		Model: p.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: userPrompt},
		},
		Temperature: CompletionTemperature,
	}

	start := time.Now()
	resp, err := p.client.CreateChatCompletion(ctx, req)
	if err != nil {
		if isDecodeError(err) {
			return "", apperr.New(apperr.ErrMalformedResponse, err)
		}
		return "", apperr.New(apperr.ErrCompletionUnavailable, err)
	}

	if len(resp.Choices) == 0 {
		return "", apperr.Newf(apperr.ErrMalformedResponse, "response has no choices")
	}
	reply := strings.TrimSpace(resp.Choices[0].Message.Content)
	if reply == "" {
		return "", apperr.Newf(apperr.ErrMalformedResponse, "choices[0].message.content is empty")
	}

	p.Logger.WithContext(ctx).Debug("Completion received", logrus.Fields{
		"model":             p.model,
		"duration_ms":       time.Since(start).Milliseconds(),
		"prompt_tokens":     resp.Usage.PromptTokens,
		"completion_tokens": resp.Usage.CompletionTokens,
	})
	return reply, nil
}

func isDecodeError(err error) bool {
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	return errors.As(err, &syntaxErr) || errors.As(err, &typeErr)
}
