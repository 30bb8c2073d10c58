// Package shell holds the navigation rules shared by the portal and the
// lecture pages: which page a URL is, what the bottom bar does there, and
// the "latest lecture" pointer.
package shell

import (
	"net/url"
	"path"
	"strings"

	"github.com/thywilljoshua/pdf-to-study/internal/storage"
)

type Page string

const (
	PagePortal  Page = "portal"
	PageLecture Page = "lecture"
)

// LectureSuffix marks generated lecture pages.
const LectureSuffix = "_interactive.html"

// Detect infers the page kind. A recognized marker wins over the URL shape.
func Detect(urlPath, marker string) Page {
	switch Page(strings.ToLower(strings.TrimSpace(marker))) {
	case PagePortal:
		return PagePortal
	case PageLecture:
		return PageLecture
	}
	if u, err := url.Parse(urlPath); err == nil {
		urlPath = u.Path
	}
	if strings.HasSuffix(urlPath, LectureSuffix) {
		return PageLecture
	}
	return PagePortal
}

type ActionKind string

const (
	Navigate  ActionKind = "navigate"
	Focus     ActionKind = "focus"
	SwitchTab ActionKind = "switch-tab"
)

// Action is one bottom-navigation button.
type Action struct {
	ID     string     `json:"id"`
	Label  string     `json:"label"`
	Kind   ActionKind `json:"kind"`
	Target string     `json:"target"`
	// Disabled is set when the action has nowhere to go, e.g. "latest"
	// before any lecture was opened.
	Disabled bool `json:"disabled,omitempty"`
}

// Actions returns the fixed bottom bar for a page. latest is the stored
// last-lecture path (site-relative, e.g. "html/Lec2_interactive.html") or "".
func Actions(page Page, latest string) []Action {
	latest = strings.TrimLeft(latest, "/")
	if page == PageLecture {
		return []Action{
			{ID: "home", Label: "Home", Kind: Navigate, Target: "/index.html"},
			{ID: "search", Label: "Search", Kind: Navigate, Target: "/index.html#search"},
			latestAction(latest),
			{ID: "pdf", Label: "PDF", Kind: SwitchTab, Target: "pdf"},
			{ID: "notes", Label: "Notes", Kind: SwitchTab, Target: "notes"},
			{ID: "ai", Label: "AI", Kind: SwitchTab, Target: "ai"},
		}
	}
	out := []Action{
		{ID: "home", Label: "Home", Kind: Navigate, Target: "/index.html"},
		{ID: "search", Label: "Search", Kind: Focus, Target: "lectureSearch"},
		latestAction(latest),
	}
	for _, tab := range []struct{ id, label string }{{"pdf", "PDF"}, {"notes", "Notes"}, {"ai", "AI"}} {
		a := Action{ID: tab.id, Label: tab.label, Kind: Navigate}
		if latest == "" {
			a.Disabled = true
		} else {
			a.Target = "/" + latest + "#tab=" + tab.id
		}
		out = append(out, a)
	}
	return out
}

func latestAction(latest string) Action {
	a := Action{ID: "latest", Label: "Latest", Kind: Navigate}
	if latest == "" {
		a.Disabled = true
		return a
	}
	a.Target = "/" + latest
	return a
}

// Layout holds the responsive rules.
type Layout struct {
	DrawerBreakpoint int `json:"drawerBreakpoint"`
}

// DefaultLayout moves sidebar panels into the drawer at 1200px and below.
var DefaultLayout = Layout{DrawerBreakpoint: 1200}

// UseDrawer reports whether a viewport of the given width shows the sidebar
// panels in the modal drawer instead of inline.
func (l Layout) UseDrawer(width int) bool {
	return width <= l.DrawerBreakpoint
}

// LastLectureKey stores the path of the most recently opened lecture.
const LastLectureKey = "mfin_last_lecture"

// LastLecture is the persisted "latest" pointer.
type LastLecture struct {
	local storage.Local
}

func NewLastLecture(local storage.Local) *LastLecture {
	return &LastLecture{local: local}
}

func (l *LastLecture) Get() (string, bool) {
	v, ok := storage.Lookup(l.local, LastLectureKey)
	if !ok || v == "" {
		return "", false
	}
	return v, true
}

// Record stores p if it is a lecture page. Other paths are ignored.
func (l *LastLecture) Record(p string) error {
	if u, err := url.Parse(p); err == nil {
		p = u.Path
	}
	p = strings.TrimLeft(path.Clean("/"+p), "/")
	if !strings.HasSuffix(p, LectureSuffix) {
		return nil
	}
	return l.local.Set(LastLectureKey, p)
}
