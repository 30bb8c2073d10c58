package ai

import (
	"context"

	openai "github.com/sashabaranov/go-openai"
)

// OpenAIDispatcher covers every vendor exposing an OpenAI-style chat
// completions endpoint, plus user-supplied custom endpoints. The request is
// posted to the endpoint as given so that custom paths work unchanged.
type OpenAIDispatcher struct {
	caller
	endpoint string
	model    string
	key      string
	gen      GenerationConfig
}

func (d *OpenAIDispatcher) Send(ctx context.Context, prompt string) (string, error) {
	req := openai.ChatCompletionRequest{
		Model: d.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		Temperature: d.gen.Temperature,
		MaxTokens:   d.gen.MaxOutputTokens,
	}
	var headers map[string]string
	if d.key != "" {
		headers = map[string]string{"Authorization": "Bearer " + d.key}
	}
	var resp openai.ChatCompletionResponse
	if err := d.postJSON(ctx, d.endpoint, headers, req, &resp); err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", d.empty()
	}
	choice := resp.Choices[0]
	return d.finish(choice.Message.Content, choice.FinishReason == openai.FinishReasonLength)
}
