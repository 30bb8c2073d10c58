package server

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/thywilljoshua/pdf-to-study/internal/ai"
	"github.com/thywilljoshua/pdf-to-study/internal/lectures"
	"github.com/thywilljoshua/pdf-to-study/internal/markdown"
	"github.com/thywilljoshua/pdf-to-study/internal/shell"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func decode(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 4<<20))
	return dec.Decode(v)
}

func (s *Server) handleLectures(w http.ResponseWriter, r *http.Request) {
	list, err := lectures.Build(s.cfg.Root)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, lectures.Index{Lectures: list, Count: len(list)})
}

func (s *Server) handleProviders(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, ai.Providers())
}

func (s *Server) handleMarkdown(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Text string `json:"text"`
	}
	if err := decode(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"html": markdown.Render(req.Text)})
}

type shellResponse struct {
	Page    shell.Page     `json:"page"`
	Actions []shell.Action `json:"actions"`
	Layout  shell.Layout   `json:"layout"`
	Latest  string         `json:"latest,omitempty"`
}

func (s *Server) handleShellActions(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page := shell.Detect(q.Get("path"), q.Get("marker"))
	latest, _ := s.last.Get()
	writeJSON(w, http.StatusOK, shellResponse{
		Page:    page,
		Actions: shell.Actions(page, latest),
		Layout:  shell.DefaultLayout,
		Latest:  latest,
	})
}

func (s *Server) handleShellLatest(w http.ResponseWriter, r *http.Request) {
	latest, _ := s.last.Get()
	writeJSON(w, http.StatusOK, map[string]string{"path": latest})
}

type aiConfigResponse struct {
	Config ai.AIConfig `json:"config"`
	HasKey bool        `json:"hasKey"`
	Label  string      `json:"label,omitempty"`
}

func (s *Server) aiConfigView() aiConfigResponse {
	cfg := s.aiConfigs.Get()
	resp := aiConfigResponse{Config: cfg.Redacted(), HasKey: cfg.APIKey != ""}
	if p, ok := ai.Lookup(cfg.Provider); ok {
		resp.Label = p.Label
	}
	return resp
}

func (s *Server) handleGetAIConfig(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.aiConfigView())
}

// handlePutAIConfig saves the chat provider. An empty key for the provider
// already in use keeps the stored key, since the dialog never sees it.
func (s *Server) handlePutAIConfig(w http.ResponseWriter, r *http.Request) {
	var cfg ai.AIConfig
	if err := decode(w, r, &cfg); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	current := s.aiConfigs.Get()
	if strings.TrimSpace(cfg.APIKey) == "" && strings.EqualFold(strings.TrimSpace(cfg.Provider), current.Provider) {
		cfg.APIKey = current.APIKey
	}
	if err := s.aiConfigs.Save(cfg); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error(), "kind": ai.KindConfig.String()})
		return
	}
	s.log.Info("ai provider saved", "provider", cfg.Provider, "model", cfg.Model)
	writeJSON(w, http.StatusOK, s.aiConfigView())
}

func (s *Server) handleDeleteAIConfig(w http.ResponseWriter, r *http.Request) {
	if err := s.aiConfigs.Clear(); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, s.aiConfigView())
}
