package server

import (
	"bytes"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/thywilljoshua/pdf-to-study/internal/notes"
)

// titleParam returns the decoded page title. Titles containing an encoded
// slash arrive still escaped.
func titleParam(r *http.Request) string {
	t := chi.URLParam(r, "title")
	if r.URL.RawPath != "" {
		if u, err := url.PathUnescape(t); err == nil {
			return u
		}
	}
	return t
}

func (s *Server) notesFor(r *http.Request) (*notes.Store, bool) {
	title := strings.TrimSpace(titleParam(r))
	if title == "" {
		return nil, false
	}
	return notes.New(s.local, title), true
}

func noteID(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}

type notesResponse struct {
	Notes    []notes.Note `json:"notes"`
	ActiveID *int64       `json:"activeId"`
	FocusID  *int64       `json:"focusId"`
	Draft    string       `json:"draft"`
}

func (s *Server) notesState(st *notes.Store) notesResponse {
	resp := notesResponse{Notes: st.Timeline(), Draft: st.Draft()}
	if n, ok := st.ActiveNote(); ok {
		id := n.ID
		resp.ActiveID = &id
	}
	if id, ok := st.FocusID(); ok {
		resp.FocusID = &id
	}
	return resp
}

func (s *Server) handleListNotes(w http.ResponseWriter, r *http.Request) {
	st, ok := s.notesFor(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "page title is required")
		return
	}
	s.notesMu.Lock()
	defer s.notesMu.Unlock()
	writeJSON(w, http.StatusOK, s.notesState(st))
}

func (s *Server) handleAddNote(w http.ResponseWriter, r *http.Request) {
	st, ok := s.notesFor(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "page title is required")
		return
	}
	var req struct {
		Citation string `json:"citation"`
		Body     string `json:"body"`
		Section  string `json:"section"`
	}
	if err := decode(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Body) == "" && strings.TrimSpace(req.Citation) == "" {
		writeError(w, http.StatusBadRequest, "note is empty")
		return
	}
	s.notesMu.Lock()
	defer s.notesMu.Unlock()
	n, err := st.Add(req.Citation, req.Body, req.Section)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, n)
}

func (s *Server) handleUpdateNote(w http.ResponseWriter, r *http.Request) {
	st, ok := s.notesFor(r)
	id, err := noteID(r)
	if !ok || err != nil {
		writeError(w, http.StatusBadRequest, "invalid note reference")
		return
	}
	var req struct {
		Body string `json:"body"`
	}
	if err := decode(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	s.notesMu.Lock()
	defer s.notesMu.Unlock()
	if _, found := st.Get(id); !found {
		writeError(w, http.StatusNotFound, "note not found")
		return
	}
	if err := st.Update(id, req.Body); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	n, _ := st.Get(id)
	writeJSON(w, http.StatusOK, n)
}

// handleDeleteNote is idempotent: deleting a missing id succeeds.
func (s *Server) handleDeleteNote(w http.ResponseWriter, r *http.Request) {
	st, ok := s.notesFor(r)
	id, err := noteID(r)
	if !ok || err != nil {
		writeError(w, http.StatusBadRequest, "invalid note reference")
		return
	}
	s.notesMu.Lock()
	defer s.notesMu.Unlock()
	if err := st.Delete(id); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, s.notesState(st))
}

func (s *Server) handleToggleFocus(w http.ResponseWriter, r *http.Request) {
	s.pointerOp(w, r, func(st *notes.Store, id int64) error { return st.ToggleFocus(id) })
}

func (s *Server) handleSetActive(w http.ResponseWriter, r *http.Request) {
	s.pointerOp(w, r, func(st *notes.Store, id int64) error { return st.SetActiveID(id) })
}

func (s *Server) pointerOp(w http.ResponseWriter, r *http.Request, op func(*notes.Store, int64) error) {
	st, ok := s.notesFor(r)
	id, err := noteID(r)
	if !ok || err != nil {
		writeError(w, http.StatusBadRequest, "invalid note reference")
		return
	}
	s.notesMu.Lock()
	defer s.notesMu.Unlock()
	if _, found := st.Get(id); !found {
		writeError(w, http.StatusNotFound, "note not found")
		return
	}
	if err := op(st, id); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, s.notesState(st))
}

func (s *Server) handleSaveDraft(w http.ResponseWriter, r *http.Request) {
	st, ok := s.notesFor(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "page title is required")
		return
	}
	var req struct {
		Text string `json:"text"`
	}
	if err := decode(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	s.notesMu.Lock()
	defer s.notesMu.Unlock()
	if err := st.SaveDraft(req.Text); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleExportNotes(w http.ResponseWriter, r *http.Request) {
	st, ok := s.notesFor(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "page title is required")
		return
	}
	s.notesMu.Lock()
	var buf bytes.Buffer
	err := st.Export(&buf, notes.ExportMeta{SourceFile: r.URL.Query().Get("source")})
	s.notesMu.Unlock()
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	name := notes.ExportFilename(strings.TrimSuffix(st.Title(), " - Interactive Learning"))
	w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	_, _ = w.Write(buf.Bytes())
}
