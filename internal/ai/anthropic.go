package ai

import (
	"context"
	"strings"
)

const anthropicVersion = "2023-06-01"

// AnthropicDispatcher speaks the Messages API.
type AnthropicDispatcher struct {
	caller
	endpoint string
	model    string
	key      string
	gen      GenerationConfig
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicRequest struct {
	Model       string             `json:"model"`
	MaxTokens   int                `json:"max_tokens"`
	Temperature float32            `json:"temperature"`
	Messages    []anthropicMessage `json:"messages"`
}

type anthropicBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type anthropicResponse struct {
	Content    []anthropicBlock `json:"content"`
	StopReason string           `json:"stop_reason"`
}

func (d *AnthropicDispatcher) Send(ctx context.Context, prompt string) (string, error) {
	req := anthropicRequest{
		Model:       d.model,
		MaxTokens:   d.gen.MaxOutputTokens,
		Temperature: d.gen.Temperature,
		Messages:    []anthropicMessage{{Role: "user", Content: prompt}},
	}
	headers := map[string]string{
		"x-api-key":         d.key,
		"anthropic-version": anthropicVersion,
	}
	var resp anthropicResponse
	if err := d.postJSON(ctx, d.endpoint, headers, req, &resp); err != nil {
		return "", err
	}
	var b strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" || block.Type == "" {
			b.WriteString(block.Text)
		}
	}
	return d.finish(b.String(), resp.StopReason == "max_tokens")
}
