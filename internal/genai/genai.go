// Package genai wraps the OpenAI chat completion API behind the small
// Generator interface the rest of the bot consumes.
package genai

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/calorico-bot/calorico/internal/models"
)

// systemPrompt frames every request: the model answers as a Hebrew
// nutrition assistant.
const systemPrompt = "אתה קלוריקו, עוזר תזונה אישי בעברית. ענה בקצרה, בגובה העיניים ובטון חם. אל תמציא ערכים תזונתיים מדויקים כשאינך בטוח, תן הערכה sensible."

// requestTimeout caps a single completion round trip.
const requestTimeout = 60 * time.Second

// completionService is the slice of the OpenAI client the wrapper uses.
type completionService interface {
	New(ctx context.Context, body openai.ChatCompletionNewParams, opts ...option.RequestOption) (*openai.ChatCompletion, error)
}

// Client generates chat completions. It satisfies the Generator
// interfaces declared by the ledger and bot packages.
type Client struct {
	completions completionService
	model       openai.ChatModel
}

// NewClient builds a Client for the given API key.
func NewClient(apiKey string) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("genai: API key is empty")
	}
	cli := openai.NewClient(option.WithAPIKey(apiKey))
	return &Client{
		completions: &cli.Chat.Completions,
		model:       openai.ChatModelGPT4o,
	}, nil
}

// Generate sends one user prompt under the assistant system prompt and
// returns the model's reply text.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	start := time.Now()
	resp, err := c.completions.New(ctx, openai.ChatCompletionNewParams{
		Model: c.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(prompt),
		},
	})
	if err != nil {
		slog.Error("GenAI completion failed", "error", err)
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		slog.Warn("GenAI returned empty completion")
		return "", models.ErrEmptyResponse
	}
	slog.Debug("GenAI completion", "duration", time.Since(start), "promptLen", len(prompt))
	return resp.Choices[0].Message.Content, nil
}
