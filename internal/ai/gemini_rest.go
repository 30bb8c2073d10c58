package ai

import (
	"context"
	"fmt"
	"net/url"
	"strings"
)

// GeminiRESTDispatcher calls generateContent directly with the user's key.
type GeminiRESTDispatcher struct {
	caller
	endpoint string
	model    string
	key      string
	gen      GenerationConfig
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiGenerationConfig struct {
	Temperature     float32 `json:"temperature"`
	MaxOutputTokens int     `json:"maxOutputTokens,omitempty"`
}

type geminiRequest struct {
	Contents         []geminiContent        `json:"contents"`
	GenerationConfig geminiGenerationConfig `json:"generationConfig"`
}

type geminiCandidate struct {
	Content      geminiContent `json:"content"`
	FinishReason string        `json:"finishReason"`
}

type geminiResponse struct {
	Candidates []geminiCandidate `json:"candidates"`
}

// text reads candidates[0].content.parts[0].text.
func (r geminiResponse) text() (string, bool) {
	if len(r.Candidates) == 0 || len(r.Candidates[0].Content.Parts) == 0 {
		return "", false
	}
	c := r.Candidates[0]
	return c.Content.Parts[0].Text, c.FinishReason == "MAX_TOKENS"
}

func (d *GeminiRESTDispatcher) Send(ctx context.Context, prompt string) (string, error) {
	endpoint := fmt.Sprintf("%s/%s:generateContent?key=%s",
		strings.TrimRight(d.endpoint, "/"), url.PathEscape(d.model), url.QueryEscape(d.key))
	req := geminiRequest{
		Contents: []geminiContent{{Role: "user", Parts: []geminiPart{{Text: prompt}}}},
		GenerationConfig: geminiGenerationConfig{
			Temperature:     d.gen.Temperature,
			MaxOutputTokens: d.gen.MaxOutputTokens,
		},
	}
	var resp geminiResponse
	if err := d.postJSON(ctx, endpoint, nil, req, &resp); err != nil {
		return "", err
	}
	text, truncated := resp.text()
	return d.finish(text, truncated)
}
