package ai

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	genai "google.golang.org/genai"
)

const DefaultGeminiModel = "gemini-3-flash-preview"

// Gemini sends prompts through the Gemini SDK. It backs page generation,
// where JSON-mode responses are requested.
type Gemini struct {
	client *genai.Client
	model  string
	json   bool
	gen    GenerationConfig
}

type GeminiOption func(*genai.ClientConfig, *Gemini)

// WithGeminiHTTPClient sets the transport, e.g. one that skips TLS checks.
func WithGeminiHTTPClient(c *http.Client) GeminiOption {
	return func(cc *genai.ClientConfig, _ *Gemini) { cc.HTTPClient = c }
}

// WithGeminiBaseURL points the SDK at another host.
func WithGeminiBaseURL(u string) GeminiOption {
	return func(cc *genai.ClientConfig, _ *Gemini) { cc.HTTPOptions.BaseURL = u }
}

// WithJSONResponses asks for application/json output.
func WithJSONResponses() GeminiOption {
	return func(_ *genai.ClientConfig, g *Gemini) { g.json = true }
}

func NewGemini(ctx context.Context, apiKey, model string, opts ...GeminiOption) (*Gemini, error) {
	if apiKey == "" {
		return nil, configError("Gemini", fmt.Errorf("GEMINI_API_KEY: %w", ErrMissingKey))
	}
	if model == "" {
		model = DefaultGeminiModel
	}
	g := &Gemini{model: model, gen: GenerationConfig{Temperature: defaultTemp, MaxOutputTokens: 8192}}
	cc := &genai.ClientConfig{APIKey: apiKey, Backend: genai.BackendGeminiAPI}
	for _, o := range opts {
		o(cc, g)
	}
	c, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("creating gemini client: %w", err)
	}
	g.client = c
	return g, nil
}

func (g *Gemini) Model() string { return g.model }

func (g *Gemini) Send(ctx context.Context, prompt string) (string, error) {
	if g.client == nil {
		return "", configError("Gemini", errors.New("gemini not configured"))
	}
	cfg := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(g.gen.Temperature),
		MaxOutputTokens: int32(g.gen.MaxOutputTokens),
	}
	if g.json {
		cfg.ResponseMIMEType = "application/json"
	}
	res, err := g.client.Models.GenerateContent(ctx, g.model, []*genai.Content{
		genai.NewContentFromText(prompt, genai.RoleUser),
	}, cfg)
	if err != nil {
		return "", &DispatchError{Kind: KindTransport, Provider: "Gemini", Err: err}
	}
	text := res.Text()
	if text == "" {
		return "", &DispatchError{Kind: KindShape, Provider: "Gemini", Err: ErrEmptyResponse}
	}
	if len(res.Candidates) > 0 && res.Candidates[0].FinishReason == genai.FinishReasonMaxTokens {
		text += TrimmedSuffix
	}
	return text, nil
}
