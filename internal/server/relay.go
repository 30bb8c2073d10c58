package server

import (
	"bytes"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// DefaultGeminiBaseURL is the public Generative Language API.
const DefaultGeminiBaseURL = "https://generativelanguage.googleapis.com"

// RelayConfig configures POST /api/gemini, which lets pages use Gemini with
// the server's key instead of one stored in the browser.
type RelayConfig struct {
	APIKey      string
	Model       string
	Timeout     time.Duration
	InsecureTLS bool
	BaseURL     string
}

func newRelayClient(cfg RelayConfig) *http.Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 90 * time.Second
	}
	transport := http.DefaultTransport.(*http.Transport).Clone()
	if cfg.InsecureTLS {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec // opt-in via GEMINI_INSECURE_SSL for local testing
	}
	return &http.Client{Timeout: timeout, Transport: transport}
}

func (s *Server) handleRelayPreflight(w http.ResponseWriter, r *http.Request) {
	h := w.Header()
	h.Set("Access-Control-Allow-Origin", "*")
	h.Set("Access-Control-Allow-Headers", "Content-Type")
	h.Set("Access-Control-Allow-Methods", "POST, OPTIONS")
	w.WriteHeader(http.StatusNoContent)
}

type relayPart struct {
	Text string `json:"text"`
}

type relayContent struct {
	Parts []relayPart `json:"parts"`
}

type relayUpstreamRequest struct {
	Contents         []relayContent `json:"contents"`
	GenerationConfig map[string]any `json:"generationConfig"`
}

// handleRelay forwards {prompt, generationConfig} to generateContent and
// passes the upstream status and body through unchanged.
func (s *Server) handleRelay(w http.ResponseWriter, r *http.Request) {
	cfg := s.cfg.Relay
	if cfg.APIKey == "" {
		writeError(w, http.StatusInternalServerError, "GEMINI_API_KEY missing. Put it in .env.local before starting server.")
		return
	}

	var payload map[string]any
	raw, err := io.ReadAll(http.MaxBytesReader(w, r.Body, 4<<20))
	if err == nil && len(bytes.TrimSpace(raw)) > 0 {
		err = json.Unmarshal(raw, &payload)
	}
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON payload.")
		return
	}
	prompt, _ := payload["prompt"].(string)
	if strings.TrimSpace(prompt) == "" {
		writeError(w, http.StatusBadRequest, "Request must include non-empty 'prompt'.")
		return
	}
	gen, ok := payload["generationConfig"].(map[string]any)
	if !ok {
		gen = map[string]any{"temperature": 0.7, "maxOutputTokens": 1024}
	}

	model := cfg.Model
	if model == "" {
		model = "gemini-3-flash-preview"
	}
	base := cfg.BaseURL
	if base == "" {
		base = DefaultGeminiBaseURL
	}
	endpoint := fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s",
		strings.TrimRight(base, "/"), url.PathEscape(model), url.QueryEscape(cfg.APIKey))

	body, err := json.Marshal(relayUpstreamRequest{
		Contents:         []relayContent{{Parts: []relayPart{{Text: prompt}}}},
		GenerationConfig: gen,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	req, err := http.NewRequestWithContext(r.Context(), http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Gemini request failed: "+s.redactKey(err.Error()))
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.relay.Do(req)
	if err != nil {
		msg := s.redactKey(err.Error())
		if strings.Contains(msg, "x509") || strings.Contains(msg, "certificate") {
			writeError(w, http.StatusBadGateway, "Gemini SSL verification failed. Install system certificates or set GEMINI_INSECURE_SSL=1 for local testing only. Details: "+msg)
			return
		}
		writeError(w, http.StatusBadGateway, "Gemini request failed: "+msg)
		return
	}
	defer resp.Body.Close()

	out, err := io.ReadAll(resp.Body)
	if err != nil {
		writeError(w, http.StatusBadGateway, "Gemini request failed: "+s.redactKey(err.Error()))
		return
	}
	if len(out) == 0 && resp.StatusCode >= 400 {
		out, _ = json.Marshal(map[string]string{"error": fmt.Sprintf("Gemini API error %d", resp.StatusCode)})
	}
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(resp.StatusCode)
	_, _ = w.Write(out)
}

func (s *Server) redactKey(msg string) string {
	k := s.cfg.Relay.APIKey
	if k == "" {
		return msg
	}
	msg = strings.ReplaceAll(msg, url.QueryEscape(k), "***")
	return strings.ReplaceAll(msg, k, "***")
}
