package ai

import "context"

// ProxyDispatcher posts to the same-origin relay, which forwards to Gemini
// with the server's key.
type ProxyDispatcher struct {
	caller
	endpoint string
	gen      GenerationConfig
}

// RelayRequest is the body the relay accepts.
type RelayRequest struct {
	Prompt           string                `json:"prompt"`
	GenerationConfig *RelayGenerationConfig `json:"generationConfig,omitempty"`
}

type RelayGenerationConfig struct {
	Temperature     *float32 `json:"temperature,omitempty"`
	MaxOutputTokens int      `json:"maxOutputTokens,omitempty"`
}

func (d *ProxyDispatcher) Send(ctx context.Context, prompt string) (string, error) {
	temp := d.gen.Temperature
	req := RelayRequest{
		Prompt:           prompt,
		GenerationConfig: &RelayGenerationConfig{Temperature: &temp, MaxOutputTokens: d.gen.MaxOutputTokens},
	}
	var resp geminiResponse
	if err := d.postJSON(ctx, d.endpoint, nil, req, &resp); err != nil {
		return "", err
	}
	text, truncated := resp.text()
	return d.finish(text, truncated)
}
