// Package notes is the per-page note collection stored in local storage.
package notes

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/thywilljoshua/pdf-to-study/internal/storage"
)

// TimestampLayout is the ISO-8601 UTC form notes are stamped with.
const TimestampLayout = "2006-01-02T15:04:05.000Z"

const keyPrefix = "learning-notes-"

// Note is a single annotation on a page.
type Note struct {
	ID        int64  `json:"id"`
	Citation  string `json:"citation"`
	Body      string `json:"body"`
	Section   string `json:"section"`
	Timestamp string `json:"timestamp"`
}

// Time parses the note timestamp. A zero time is returned if it is unparsable.
func (n Note) Time() time.Time {
	t, err := time.Parse(time.RFC3339Nano, n.Timestamp)
	if err != nil {
		return time.Time{}
	}
	return t
}

// Store is the note collection for one page title.
type Store struct {
	local storage.Local
	title string
	now   func() time.Time
}

type Option func(*Store)

// WithClock replaces time.Now, mostly for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

func New(local storage.Local, pageTitle string, opts ...Option) *Store {
	s := &Store{local: local, title: pageTitle, now: time.Now}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Key returns the storage key holding the collection for a page title.
func Key(pageTitle string) string { return keyPrefix + pageTitle }

// TitleFromKey is the inverse of Key for collection keys. Pointer keys
// (-active, -focus, -draft) are rejected.
func TitleFromKey(key string) (string, bool) {
	if !strings.HasPrefix(key, keyPrefix) {
		return "", false
	}
	for _, suffix := range []string{"-active", "-focus", "-draft"} {
		if strings.HasSuffix(key, suffix) {
			return "", false
		}
	}
	return strings.TrimPrefix(key, keyPrefix), true
}

func (s *Store) Title() string { return s.title }

func (s *Store) key() string       { return Key(s.title) }
func (s *Store) activeKey() string { return s.key() + "-active" }
func (s *Store) focusKey() string  { return s.key() + "-focus" }
func (s *Store) draftKey() string  { return s.key() + "-draft" }

// List returns the notes in insertion order. It never fails: missing or
// corrupt state reads as an empty collection. Elements are decoded one by
// one, so a single malformed entry does not hide the others.
func (s *Store) List() []Note {
	raw, ok := storage.Lookup(s.local, s.key())
	if !ok || strings.TrimSpace(raw) == "" {
		return []Note{}
	}
	var elems []json.RawMessage
	if err := json.Unmarshal([]byte(raw), &elems); err != nil {
		return []Note{}
	}
	out := make([]Note, 0, len(elems))
	for i, e := range elems {
		var r map[string]any
		if err := json.Unmarshal(e, &r); err != nil {
			r = nil
		}
		out = append(out, s.normalize(r, i))
	}
	return out
}

// normalize accepts the current shape and the older field names.
func (s *Store) normalize(r map[string]any, idx int) Note {
	n := Note{ID: -int64(idx + 1)}
	if id, ok := number(r["id"]); ok {
		n.ID = id
	}
	n.Citation = firstString(r, "citation", "quote")
	n.Body = firstString(r, "body", "text", "content")
	n.Section = firstString(r, "section", "title")
	n.Timestamp = firstNonEmpty(r, "timestamp", "created_at")
	if n.Timestamp == "" {
		n.Timestamp = s.now().UTC().Format(TimestampLayout)
	}
	return n
}

func number(v any) (int64, bool) {
	switch x := v.(type) {
	case float64:
		return int64(x), true
	case string:
		if id, err := strconv.ParseInt(strings.TrimSpace(x), 10, 64); err == nil {
			return id, true
		}
		if f, err := strconv.ParseFloat(strings.TrimSpace(x), 64); err == nil {
			return int64(f), true
		}
	}
	return 0, false
}

// firstString returns the first field that is a string, even an empty one.
func firstString(r map[string]any, fields ...string) string {
	for _, f := range fields {
		if v, ok := r[f].(string); ok {
			return v
		}
	}
	return ""
}

func firstNonEmpty(r map[string]any, fields ...string) string {
	for _, f := range fields {
		if v, ok := r[f].(string); ok && v != "" {
			return v
		}
	}
	return ""
}

func (s *Store) save(notes []Note) error {
	raw, err := json.Marshal(notes)
	if err != nil {
		return fmt.Errorf("encoding notes: %w", err)
	}
	if err := s.local.Set(s.key(), string(raw)); err != nil {
		return fmt.Errorf("saving notes for %q: %w", s.title, err)
	}
	return nil
}

// Add appends a note and makes it the active one.
func (s *Store) Add(citation, body, section string) (Note, error) {
	notes := s.List()
	now := s.now()
	n := Note{
		ID:        now.UnixMilli(),
		Citation:  citation,
		Body:      body,
		Section:   section,
		Timestamp: now.UTC().Format(TimestampLayout),
	}
	notes = append(notes, n)
	if err := s.SetActiveID(n.ID); err != nil {
		return Note{}, err
	}
	if err := s.save(notes); err != nil {
		return Note{}, err
	}
	return n, nil
}

// Get looks up a note by id.
func (s *Store) Get(id int64) (Note, bool) {
	for _, n := range s.List() {
		if n.ID == id {
			return n, true
		}
	}
	return Note{}, false
}

// Update replaces the body of the note with the given id. Unknown ids are ignored.
func (s *Store) Update(id int64, body string) error {
	notes := s.List()
	found := false
	for i := range notes {
		if notes[i].ID == id {
			notes[i].Body = body
			found = true
		}
	}
	if !found {
		return nil
	}
	return s.save(notes)
}

// Delete removes the note with the given id. Unknown ids are ignored.
func (s *Store) Delete(id int64) error {
	notes := s.List()
	kept := notes[:0]
	for _, n := range notes {
		if n.ID != id {
			kept = append(kept, n)
		}
	}
	if len(kept) == len(notes) {
		return nil
	}
	if f, ok := s.FocusID(); ok && f == id {
		if err := s.ClearFocusID(); err != nil {
			return err
		}
	}
	if a, ok := s.ActiveID(); ok && a == id {
		var err error
		if len(kept) > 0 {
			err = s.SetActiveID(kept[0].ID)
		} else {
			err = s.ClearActiveID()
		}
		if err != nil {
			return err
		}
	}
	return s.save(kept)
}

func (s *Store) pointer(key string) (int64, bool) {
	raw, ok := storage.Lookup(s.local, key)
	if !ok {
		return 0, false
	}
	id, ok := number(raw)
	if !ok || id == 0 {
		return 0, false
	}
	return id, true
}

func (s *Store) setPointer(key string, id int64) error {
	if id == 0 {
		return s.local.Remove(key)
	}
	return s.local.Set(key, strconv.FormatInt(id, 10))
}

func (s *Store) ActiveID() (int64, bool)     { return s.pointer(s.activeKey()) }
func (s *Store) SetActiveID(id int64) error { return s.setPointer(s.activeKey(), id) }
func (s *Store) ClearActiveID() error       { return s.local.Remove(s.activeKey()) }

func (s *Store) FocusID() (int64, bool)     { return s.pointer(s.focusKey()) }
func (s *Store) SetFocusID(id int64) error { return s.setPointer(s.focusKey(), id) }
func (s *Store) ClearFocusID() error       { return s.local.Remove(s.focusKey()) }

// ToggleFocus pins the note to the top of the timeline, or unpins it if it
// already is.
func (s *Store) ToggleFocus(id int64) error {
	if cur, ok := s.FocusID(); ok && cur == id {
		return s.ClearFocusID()
	}
	return s.SetFocusID(id)
}

// Timeline orders notes for display: the focused note first, then newest first.
func (s *Store) Timeline() []Note {
	notes := s.List()
	focus, hasFocus := s.FocusID()
	sort.SliceStable(notes, func(i, j int) bool {
		fi := hasFocus && notes[i].ID == focus
		fj := hasFocus && notes[j].ID == focus
		if fi != fj {
			return fi
		}
		return notes[i].Time().After(notes[j].Time())
	})
	return notes
}

// ActiveNote returns the note shown in the reader. When the pointer is
// absent or dangling, the first timeline note is chosen and persisted.
func (s *Store) ActiveNote() (Note, bool) {
	timeline := s.Timeline()
	if len(timeline) == 0 {
		return Note{}, false
	}
	if id, ok := s.ActiveID(); ok {
		for _, n := range timeline {
			if n.ID == id {
				return n, true
			}
		}
	}
	n := timeline[0]
	_ = s.SetActiveID(n.ID)
	return n, true
}

func (s *Store) Draft() string {
	v, _ := storage.Lookup(s.local, s.draftKey())
	return v
}

func (s *Store) SaveDraft(text string) error {
	return s.local.Set(s.draftKey(), text)
}
