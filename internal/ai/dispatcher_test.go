package ai

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorded struct {
	hits    atomic.Int32
	path    string
	query   string
	headers http.Header
	body    map[string]any
}

func scripted(t *testing.T, status int, body string) (*httptest.Server, *recorded) {
	t.Helper()
	rec := &recorded{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec.hits.Add(1)
		rec.path = r.URL.Path
		rec.query = r.URL.RawQuery
		rec.headers = r.Header.Clone()
		raw, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(raw, &rec.body)
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv, rec
}

func send(t *testing.T, cfg AIConfig, opts ...Option) (string, error) {
	t.Helper()
	d, err := NewDispatcher(cfg, opts...)
	if err != nil {
		return "", err
	}
	return d.Send(context.Background(), "hello")
}

func TestMissingKeyIsConfigErrorWithoutNetwork(t *testing.T) {
	srv, rec := scripted(t, http.StatusOK, `{}`)
	for _, p := range Providers() {
		if !p.NeedsKey {
			continue
		}
		t.Run(p.ID, func(t *testing.T) {
			_, err := send(t, AIConfig{Provider: p.ID, Endpoint: srv.URL, Model: "m"})
			require.Error(t, err)
			assert.True(t, IsConfig(err))
			assert.True(t, errors.Is(err, ErrMissingKey))
		})
	}
	assert.Equal(t, int32(0), rec.hits.Load())
}

func TestConfigErrors(t *testing.T) {
	tests := []struct {
		name string
		cfg  AIConfig
		want error
	}{
		{"no provider", AIConfig{}, ErrNoProvider},
		{"unknown provider", AIConfig{Provider: "nope"}, ErrUnknownProvider},
		{"custom without endpoint", AIConfig{Provider: "custom", Model: "m"}, ErrMissingEndpoint},
		{"ollama without model", AIConfig{Provider: "ollama"}, ErrMissingModel},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewDispatcher(tt.cfg)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)
			var de *DispatchError
			require.ErrorAs(t, err, &de)
			assert.Equal(t, KindConfig, de.Kind)
		})
	}
}

func TestOpenAICompatibleReturnsContent(t *testing.T) {
	srv, rec := scripted(t, http.StatusOK, `{"choices":[{"message":{"content":"X"}}]}`)
	got, err := send(t, AIConfig{Provider: "openai", APIKey: "sk-test", Endpoint: srv.URL + "/v1/chat/completions"})
	require.NoError(t, err)
	assert.Equal(t, "X", got)
	assert.Equal(t, "Bearer sk-test", rec.headers.Get("Authorization"))
	assert.Equal(t, "/v1/chat/completions", rec.path)
	assert.Equal(t, "gpt-4o-mini", rec.body["model"])
	msgs := rec.body["messages"].([]any)
	require.Len(t, msgs, 1)
	assert.Equal(t, "hello", msgs[0].(map[string]any)["content"])
}

func TestOpenAICompatibleWithoutKeyOmitsAuth(t *testing.T) {
	srv, rec := scripted(t, http.StatusOK, `{"choices":[{"message":{"content":"local"}}]}`)
	got, err := send(t, AIConfig{Provider: "ollama", Model: "llama3", Endpoint: srv.URL})
	require.NoError(t, err)
	assert.Equal(t, "local", got)
	assert.Empty(t, rec.headers.Get("Authorization"))
}

func TestServerErrorCarriesStatusAndBody(t *testing.T) {
	srv, _ := scripted(t, http.StatusInternalServerError, "server error")
	for _, id := range []string{"openai", "anthropic", "gemini"} {
		t.Run(id, func(t *testing.T) {
			_, err := send(t, AIConfig{Provider: id, APIKey: "k", Endpoint: srv.URL})
			require.Error(t, err)
			assert.Contains(t, err.Error(), "500")
			assert.Contains(t, err.Error(), "server error")
			var de *DispatchError
			require.ErrorAs(t, err, &de)
			assert.Equal(t, KindTransport, de.Kind)
			assert.Equal(t, 500, de.Status)
		})
	}
}

func TestErrorBodyIsTruncated(t *testing.T) {
	srv, _ := scripted(t, http.StatusBadGateway, strings.Repeat("é", 500))
	_, err := send(t, AIConfig{Provider: "custom", Endpoint: srv.URL, Model: "m"})
	var de *DispatchError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, 200, len([]rune(de.Body)))
}

func TestEmptyResponseIsShapeError(t *testing.T) {
	srv, _ := scripted(t, http.StatusOK, `{"choices":[]}`)
	_, err := send(t, AIConfig{Provider: "openai", APIKey: "k", Endpoint: srv.URL})
	require.Error(t, err)
	assert.Equal(t, "Empty response from OpenAI", err.Error())
	var de *DispatchError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, KindShape, de.Kind)
}

func TestGeminiRESTPutsKeyInQuery(t *testing.T) {
	srv, rec := scripted(t, http.StatusOK, `{"candidates":[{"content":{"parts":[{"text":"G"}]},"finishReason":"STOP"}]}`)
	got, err := send(t, AIConfig{Provider: "gemini", APIKey: "secret", Model: "gemini-2.5-pro", Endpoint: srv.URL + "/v1beta/models"})
	require.NoError(t, err)
	assert.Equal(t, "G", got)
	assert.Equal(t, "/v1beta/models/gemini-2.5-pro:generateContent", rec.path)
	assert.Equal(t, "key=secret", rec.query)
	contents := rec.body["contents"].([]any)
	require.Len(t, contents, 1)
}

func TestGeminiTruncatedAnswerGetsSuffix(t *testing.T) {
	srv, _ := scripted(t, http.StatusOK, `{"candidates":[{"content":{"parts":[{"text":"partial"}]},"finishReason":"MAX_TOKENS"}]}`)
	got, err := send(t, AIConfig{Provider: "gemini", APIKey: "k", Endpoint: srv.URL})
	require.NoError(t, err)
	assert.Equal(t, "partial"+TrimmedSuffix, got)
}

func TestAnthropicHeadersAndContent(t *testing.T) {
	srv, rec := scripted(t, http.StatusOK, `{"content":[{"type":"text","text":"A"},{"type":"text","text":"B"}],"stop_reason":"end_turn"}`)
	got, err := send(t, AIConfig{Provider: "anthropic", APIKey: "ak", Endpoint: srv.URL})
	require.NoError(t, err)
	assert.Equal(t, "AB", got)
	assert.Equal(t, "ak", rec.headers.Get("x-api-key"))
	assert.Equal(t, "2023-06-01", rec.headers.Get("anthropic-version"))
	assert.Equal(t, float64(1024), rec.body["max_tokens"])
}

func TestProxyResolvesRelativeEndpoint(t *testing.T) {
	srv, rec := scripted(t, http.StatusOK, `{"candidates":[{"content":{"parts":[{"text":"P"}]}}]}`)

	_, err := NewDispatcher(AIConfig{Provider: "proxy"})
	require.Error(t, err)
	assert.True(t, IsConfig(err))

	got, err := send(t, AIConfig{Provider: "proxy"}, WithBaseURL(srv.URL+"/"))
	require.NoError(t, err)
	assert.Equal(t, "P", got)
	assert.Equal(t, "/api/gemini", rec.path)
	assert.Equal(t, "hello", rec.body["prompt"])
	gen := rec.body["generationConfig"].(map[string]any)
	assert.InDelta(t, 0.7, gen["temperature"], 0.001)
	assert.Equal(t, float64(1024), gen["maxOutputTokens"])
}

func TestTransportFailure(t *testing.T) {
	srv, _ := scripted(t, http.StatusOK, `{}`)
	srv.Close()
	_, err := send(t, AIConfig{Provider: "gemini", APIKey: "topsecret", Endpoint: srv.URL})
	require.Error(t, err)
	var de *DispatchError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, KindTransport, de.Kind)
	assert.Zero(t, de.Status)
	assert.NotContains(t, err.Error(), "topsecret")
}
