package server

import (
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/thywilljoshua/pdf-to-study/internal/ai"
	"github.com/thywilljoshua/pdf-to-study/internal/markdown"
)

type chatEntry struct {
	session *ai.Session
	page    string
	used    time.Time
}

// chatSessions keeps conversations in memory, dropping the least recently
// used one when full.
type chatSessions struct {
	mu   sync.Mutex
	max  int
	byID map[string]*chatEntry
}

func newChatSessions(max int) *chatSessions {
	return &chatSessions{max: max, byID: make(map[string]*chatEntry)}
}

// get returns the session for id, creating a new one under a fresh id when
// id is unknown or belongs to another page.
func (c *chatSessions) get(id, page string, create func() *ai.Session) (string, *ai.Session, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.byID[id]; ok && e.page == page {
		e.used = time.Now()
		return id, e.session, false
	}
	if len(c.byID) >= c.max {
		var oldest string
		var at time.Time
		for k, e := range c.byID {
			if oldest == "" || e.used.Before(at) {
				oldest, at = k, e.used
			}
		}
		delete(c.byID, oldest)
	}
	id = uuid.NewString()
	e := &chatEntry{session: create(), page: page, used: time.Now()}
	c.byID[id] = e
	return id, e.session, true
}

func (c *chatSessions) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.byID)
}

type chatRequest struct {
	Session string `json:"session"`
	Page    string `json:"page"`
	Context string `json:"context"`
	Message string `json:"message"`
}

type chatResponse struct {
	Session string `json:"session"`
	Reply   string `json:"reply"`
	HTML    string `json:"html"`
}

type chatError struct {
	Error   string `json:"error"`
	Kind    string `json:"kind,omitempty"`
	Action  string `json:"action,omitempty"`
	Session string `json:"session,omitempty"`
}

// baseURL is the origin the browser used, so the proxy provider reaches
// this server's own relay.
func baseURL(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	return scheme + "://" + r.Host
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	msg := strings.TrimSpace(req.Message)
	if msg == "" {
		writeError(w, http.StatusBadRequest, "message is required")
		return
	}

	opts := append([]ai.Option{ai.WithBaseURL(baseURL(r))}, s.dispatch...)
	id, sess, created := s.sessions.get(req.Session, req.Page, func() *ai.Session {
		return ai.NewSession(s.aiConfigs, req.Context, ai.WithDispatchOptions(opts...))
	})
	if !created && req.Context != "" {
		sess.SetContext(req.Context)
	}

	reply, err := sess.Ask(r.Context(), msg)
	if err != nil {
		status, body := chatFailure(err)
		body.Session = id
		s.log.Warn("chat failed", "session", id, "kind", body.Kind, "err", err)
		writeJSON(w, status, body)
		return
	}
	writeJSON(w, http.StatusOK, chatResponse{Session: id, Reply: reply, HTML: markdown.Render(reply)})
}

func chatFailure(err error) (int, chatError) {
	var de *ai.DispatchError
	if !errors.As(err, &de) {
		return http.StatusBadGateway, chatError{Error: err.Error()}
	}
	body := chatError{Error: de.Error(), Kind: de.Kind.String()}
	switch de.Kind {
	case ai.KindConfig:
		body.Action = "configure"
		return http.StatusBadRequest, body
	case ai.KindShape:
		return http.StatusBadGateway, body
	}
	if de.Status == http.StatusUnauthorized || de.Status == http.StatusForbidden {
		body.Action = "configure"
	}
	return http.StatusBadGateway, body
}
