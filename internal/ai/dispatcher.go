package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// TrimmedSuffix is appended to answers the vendor cut off at the token limit.
const TrimmedSuffix = "...\n\n_(Response was trimmed. Ask a follow-up for more detail.)_"

const (
	maxErrorBody    = 200
	defaultTemp     = 0.7
	defaultMaxToken = 1024
)

// Dispatcher sends one prompt to a provider and returns the answer text.
type Dispatcher interface {
	Send(ctx context.Context, prompt string) (string, error)
}

// GenerationConfig holds the sampling knobs shared by every family.
type GenerationConfig struct {
	Temperature     float32
	MaxOutputTokens int
}

type options struct {
	client     *http.Client
	baseURL    string
	timeout    time.Duration
	generation GenerationConfig
}

type Option func(*options)

// WithHTTPClient replaces http.DefaultClient.
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) { o.client = c }
}

// WithBaseURL resolves relative endpoints, such as the proxy relay path,
// against base.
func WithBaseURL(base string) Option {
	return func(o *options) { o.baseURL = strings.TrimRight(base, "/") }
}

// WithTimeout bounds each Send. Zero leaves the caller's context alone.
func WithTimeout(d time.Duration) Option {
	return func(o *options) { o.timeout = d }
}

func WithGeneration(g GenerationConfig) Option {
	return func(o *options) { o.generation = g }
}

// NewDispatcher validates cfg and returns the variant for its provider
// family. Every configuration problem is reported here, before any request
// is made.
func NewDispatcher(cfg AIConfig, opts ...Option) (Dispatcher, error) {
	o := options{
		client:     http.DefaultClient,
		generation: GenerationConfig{Temperature: defaultTemp, MaxOutputTokens: defaultMaxToken},
	}
	for _, opt := range opts {
		opt(&o)
	}

	if strings.TrimSpace(cfg.Provider) == "" {
		return nil, configError("", ErrNoProvider)
	}
	p, ok := Lookup(cfg.Provider)
	if !ok {
		return nil, configError(cfg.Provider, fmt.Errorf("%w: %q", ErrUnknownProvider, cfg.Provider))
	}
	key := strings.TrimSpace(cfg.APIKey)
	if p.NeedsKey && key == "" {
		return nil, configError(p.Label, ErrMissingKey)
	}
	endpoint := strings.TrimSpace(cfg.Endpoint)
	if endpoint == "" {
		endpoint = p.DefaultEndpoint
	}
	if endpoint == "" {
		return nil, configError(p.Label, ErrMissingEndpoint)
	}
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = p.DefaultModel()
	}
	if model == "" && p.Family != FamilyProxy {
		return nil, configError(p.Label, ErrMissingModel)
	}
	if !strings.Contains(endpoint, "://") {
		if o.baseURL == "" {
			return nil, configError(p.Label, fmt.Errorf("endpoint %q is relative and no server address is known", endpoint))
		}
		endpoint = o.baseURL + "/" + strings.TrimLeft(endpoint, "/")
	}

	c := caller{label: p.Label, client: o.client, timeout: o.timeout}
	switch p.Family {
	case FamilyProxy:
		return &ProxyDispatcher{caller: c, endpoint: endpoint, gen: o.generation}, nil
	case FamilyGemini:
		return &GeminiRESTDispatcher{caller: c, endpoint: endpoint, model: model, key: key, gen: o.generation}, nil
	case FamilyAnthropic:
		return &AnthropicDispatcher{caller: c, endpoint: endpoint, model: model, key: key, gen: o.generation}, nil
	case FamilyOpenAI:
		return &OpenAIDispatcher{caller: c, endpoint: endpoint, model: model, key: key, gen: o.generation}, nil
	}
	return nil, configError(p.Label, fmt.Errorf("%w: family %q", ErrUnknownProvider, p.Family))
}

// caller is the HTTP plumbing shared by the families.
type caller struct {
	label   string
	client  *http.Client
	timeout time.Duration
}

func (c caller) postJSON(ctx context.Context, endpoint string, headers map[string]string, payload, out any) error {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return &DispatchError{Kind: KindTransport, Provider: c.label, Err: fmt.Errorf("marshal request: %w", err)}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return &DispatchError{Kind: KindTransport, Provider: c.label, Err: fmt.Errorf("create request: %w", err)}
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return &DispatchError{Kind: KindTransport, Provider: c.label, Err: redactURLError(err)}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return &DispatchError{Kind: KindTransport, Provider: c.label, Err: fmt.Errorf("read response: %w", err)}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &DispatchError{
			Kind:     KindTransport,
			Provider: c.label,
			Status:   resp.StatusCode,
			Body:     truncateRunes(string(raw), maxErrorBody),
			Err:      fmt.Errorf("status %d", resp.StatusCode),
		}
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return &DispatchError{Kind: KindShape, Provider: c.label, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}

func (c caller) empty() error {
	return &DispatchError{Kind: KindShape, Provider: c.label, Err: ErrEmptyResponse}
}

// finish applies the empty check and the trimmed-answer suffix.
func (c caller) finish(text string, truncated bool) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", c.empty()
	}
	if truncated {
		return text + TrimmedSuffix, nil
	}
	return text, nil
}

// redactURLError drops the query string from url errors; Gemini carries the
// key there.
func redactURLError(err error) error {
	if ue, ok := err.(*url.Error); ok {
		if u, perr := url.Parse(ue.URL); perr == nil {
			u.RawQuery = ""
			return &url.Error{Op: ue.Op, URL: u.String(), Err: ue.Err}
		}
	}
	return err
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
