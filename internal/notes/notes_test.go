package notes

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thywilljoshua/pdf-to-study/internal/storage"
)

// tickingClock returns a clock that advances one second per call.
func tickingClock(start time.Time) func() time.Time {
	cur := start
	return func() time.Time {
		t := cur
		cur = cur.Add(time.Second)
		return t
	}
}

func newStore(t *testing.T, local storage.Local) *Store {
	t.Helper()
	return New(local, "Lec1 Demand", WithClock(tickingClock(time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC))))
}

func TestAddThenListReturnsNoteLast(t *testing.T) {
	cases := []struct{ citation, body, section string }{
		{"", "", ""},
		{"marginal utility", "key concept", "Concept 1"},
		{"quote with \"quotes\"", "**bold**\n- item", "§2"},
	}
	s := newStore(t, storage.NewMemory())
	for _, c := range cases {
		n, err := s.Add(c.citation, c.body, c.section)
		require.NoError(t, err)
		list := s.List()
		require.NotEmpty(t, list)
		assert.Equal(t, n, list[len(list)-1])
		assert.Equal(t, c.citation, n.Citation)
		assert.Equal(t, c.body, n.Body)
		assert.Equal(t, c.section, n.Section)
	}
}

func TestAddMakesNoteActive(t *testing.T) {
	s := newStore(t, storage.NewMemory())
	n, err := s.Add("", "x", "")
	require.NoError(t, err)
	id, ok := s.ActiveID()
	require.True(t, ok)
	assert.Equal(t, n.ID, id)
	assert.Equal(t, "2025-03-01T09:00:00.000Z", n.Timestamp)
	assert.Equal(t, time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC).UnixMilli(), n.ID)
}

func TestDeleteMissingIsNoop(t *testing.T) {
	local := storage.NewMemory()
	s := newStore(t, local)
	_, err := s.Add("a", "b", "c")
	require.NoError(t, err)
	before, _ := local.Get(Key(s.Title()))
	activeBefore, _ := s.ActiveID()

	require.NoError(t, s.Delete(424242))

	after, _ := local.Get(Key(s.Title()))
	assert.Equal(t, before, after)
	activeAfter, _ := s.ActiveID()
	assert.Equal(t, activeBefore, activeAfter)
}

func TestDeleteMovesActiveAndClearsFocus(t *testing.T) {
	s := newStore(t, storage.NewMemory())
	first, _ := s.Add("", "first", "")
	second, _ := s.Add("", "second", "")
	require.NoError(t, s.SetFocusID(second.ID))

	require.NoError(t, s.Delete(second.ID))
	_, focused := s.FocusID()
	assert.False(t, focused)
	active, ok := s.ActiveID()
	require.True(t, ok)
	assert.Equal(t, first.ID, active)

	require.NoError(t, s.Delete(first.ID))
	_, ok = s.ActiveID()
	assert.False(t, ok)
	assert.Empty(t, s.List())
}

func TestUpdate(t *testing.T) {
	s := newStore(t, storage.NewMemory())
	n, _ := s.Add("c", "old", "s")
	require.NoError(t, s.Update(n.ID, "new"))
	require.NoError(t, s.Update(n.ID+99, "ignored"))
	got, ok := s.Get(n.ID)
	require.True(t, ok)
	assert.Equal(t, "new", got.Body)
	assert.Len(t, s.List(), 1)
}

func TestCorruptStorageReadsEmpty(t *testing.T) {
	for _, raw := range []string{"{not json", `{"id":1}`, `"string"`, "null", ""} {
		local := storage.NewMemory()
		require.NoError(t, local.Set(Key("P"), raw))
		assert.Empty(t, New(local, "P").List(), raw)
	}
}

func TestMalformedElementKeepsOtherNotes(t *testing.T) {
	local := storage.NewMemory()
	raw := `[{"id":1,"citation":"","body":"keep me","section":"","timestamp":"2024-01-01T00:00:00.000Z"},null,5,"x"]`
	require.NoError(t, local.Set(Key("P"), raw))
	s := New(local, "P")

	list := s.List()
	require.Len(t, list, 4)
	assert.Equal(t, "keep me", list[0].Body)
	assert.Equal(t, []int64{1, -2, -3, -4}, []int64{list[0].ID, list[1].ID, list[2].ID, list[3].ID})
	assert.Empty(t, list[2].Body)

	_, err := s.Add("", "new", "")
	require.NoError(t, err)
	kept, ok := s.Get(1)
	require.True(t, ok)
	assert.Equal(t, "keep me", kept.Body)
	assert.Len(t, s.List(), 5)
}

func TestLegacyShapesNormalized(t *testing.T) {
	local := storage.NewMemory()
	legacy := `[
		{"id": "17", "quote": "q", "text": "t", "title": "sec", "created_at": "2024-01-01T00:00:00.000Z"},
		{"id": "abc", "content": "c"}
	]`
	require.NoError(t, local.Set(Key("P"), legacy))
	s := New(local, "P", WithClock(func() time.Time { return time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC) }))

	list := s.List()
	require.Len(t, list, 2)
	assert.Equal(t, Note{ID: 17, Citation: "q", Body: "t", Section: "sec", Timestamp: "2024-01-01T00:00:00.000Z"}, list[0])
	assert.Equal(t, int64(-2), list[1].ID)
	assert.Equal(t, "c", list[1].Body)
	assert.Equal(t, "2025-01-01T00:00:00.000Z", list[1].Timestamp)
}

func TestSelectionNoteSurvivesReload(t *testing.T) {
	profile, err := storage.OpenSQLiteMemory()
	require.NoError(t, err)
	defer profile.Close()

	s := newStore(t, profile)
	_, err = s.Add("marginal utility", "key concept", "")
	require.NoError(t, err)

	reloaded := New(profile, "Lec1 Demand")
	list := reloaded.List()
	require.Len(t, list, 1)
	assert.Equal(t, "marginal utility", list[0].Citation)
	assert.Equal(t, "key concept", list[0].Body)
	assert.Equal(t, s.List(), list)
}

func TestActiveNoteAfterReload(t *testing.T) {
	local := storage.NewMemory()
	require.NoError(t, local.Set(Key("P"), `[
		{"id": 100, "citation": "", "body": "hundred", "section": "", "timestamp": "2025-01-01T00:00:00.000Z"},
		{"id": 200, "citation": "", "body": "two hundred", "section": "", "timestamp": "2025-01-01T00:00:01.000Z"}
	]`))
	require.NoError(t, New(local, "P").SetActiveID(200))

	n, ok := New(local, "P").ActiveNote()
	require.True(t, ok)
	assert.Equal(t, int64(200), n.ID)
	assert.Equal(t, "two hundred", n.Body)
}

func TestActiveNoteFallsBackToTimelineHead(t *testing.T) {
	s := newStore(t, storage.NewMemory())
	a, _ := s.Add("", "a", "")
	b, _ := s.Add("", "b", "")
	require.NoError(t, s.SetFocusID(a.ID))
	require.NoError(t, s.SetActiveID(999))

	timeline := s.Timeline()
	require.Len(t, timeline, 2)
	assert.Equal(t, a.ID, timeline[0].ID)
	assert.Equal(t, b.ID, timeline[1].ID)

	n, ok := s.ActiveNote()
	require.True(t, ok)
	assert.Equal(t, a.ID, n.ID)
	id, _ := s.ActiveID()
	assert.Equal(t, a.ID, id)

	require.NoError(t, s.ToggleFocus(a.ID))
	assert.Equal(t, b.ID, s.Timeline()[0].ID)
}

func TestDraft(t *testing.T) {
	s := newStore(t, storage.NewMemory())
	assert.Equal(t, "", s.Draft())
	require.NoError(t, s.SaveDraft("half a thought"))
	assert.Equal(t, "half a thought", s.Draft())
}

func TestExport(t *testing.T) {
	s := newStore(t, storage.NewMemory())
	var buf bytes.Buffer
	require.Error(t, s.Export(&buf, ExportMeta{}))

	_, _ = s.Add("marginal utility", "key concept", "")
	_, _ = s.Add("", "second", "")
	err := s.Export(&buf, ExportMeta{SourceFile: "Lec1.pdf", Tags: []string{"lecture-notes", "econ"}, Generated: time.Date(2025, 3, 2, 0, 0, 0, 0, time.UTC)})
	require.NoError(t, err)
	out := buf.String()
	assert.Contains(t, out, "tags: [lecture-notes, econ]")
	assert.Contains(t, out, "date: 2025-03-02")
	assert.Contains(t, out, "# Lec1 Demand")
	assert.Contains(t, out, "PDF: [[Lec1]]")
	assert.Contains(t, out, "> [!quote] Highlight\n> marginal utility")
	assert.Contains(t, out, "key concept\n\n---\n\nsecond")
	assert.Equal(t, "Lec1 Demand_ _.md", ExportFilename("Lec1 Demand: ?"))
}

func TestTitleFromKey(t *testing.T) {
	title, ok := TitleFromKey("learning-notes-Lec2")
	assert.True(t, ok)
	assert.Equal(t, "Lec2", title)
	_, ok = TitleFromKey("learning-notes-Lec2-active")
	assert.False(t, ok)
	_, ok = TitleFromKey("mfin_ai_config")
	assert.False(t, ok)
}
