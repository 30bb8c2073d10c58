package lectures

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func touch(t *testing.T, root, rel string) {
	t.Helper()
	p := filepath.Join(root, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
	require.NoError(t, os.WriteFile(p, []byte("x"), 0o644))
}

func TestBuildSortsByLectureNumber(t *testing.T) {
	root := t.TempDir()
	touch(t, root, "html/Lec10_Options_interactive.html")
	touch(t, root, "html/Lec2_Risk_interactive.html")
	touch(t, root, "html/Appendix_interactive.html")
	touch(t, root, "html/lec_1_Intro_interactive.html")
	touch(t, root, "html/index.html")

	list, err := Build(root)
	require.NoError(t, err)
	var titles []string
	for _, l := range list {
		titles = append(titles, l.Title)
	}
	assert.Equal(t, []string{"lec 1 Intro", "Lec2 Risk", "Lec10 Options", "Appendix"}, titles)
	assert.Equal(t, "./Lec2_Risk_interactive.html", list[1].HTMLPath)
	assert.NotEmpty(t, list[0].UpdatedAt)
}

func TestBuildMatchesPDFs(t *testing.T) {
	root := t.TempDir()
	touch(t, root, "html/Lec2_Risk_interactive.html")
	touch(t, root, "html/Lec3_Beta_interactive.html")
	touch(t, root, "html/Lec4_interactive.html")
	touch(t, root, "pdfs/Lec 2 Risk.pdf")
	touch(t, root, "pdfs/LEC3-beta.pdf")

	list, err := Build(root)
	require.NoError(t, err)
	require.Len(t, list, 3)
	require.NotNil(t, list[0].PDFPath)
	assert.Equal(t, "../pdfs/Lec 2 Risk.pdf", *list[0].PDFPath)
	require.NotNil(t, list[1].PDFPath)
	assert.Equal(t, "../pdfs/LEC3-beta.pdf", *list[1].PDFPath)
	assert.Nil(t, list[2].PDFPath)
}

func TestBuildWithoutHTMLDir(t *testing.T) {
	list, err := Build(t.TempDir())
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestSyncWritesIndex(t *testing.T) {
	root := t.TempDir()
	touch(t, root, "html/Lec1_interactive.html")

	out, list, err := Sync(root)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	raw, err := os.ReadFile(out)
	require.NoError(t, err)
	var idx struct {
		Lectures []map[string]any `json:"lectures"`
		Count    int              `json:"count"`
	}
	require.NoError(t, json.Unmarshal(raw, &idx))
	assert.Equal(t, 1, idx.Count)
	assert.Equal(t, "Lec1", idx.Lectures[0]["title"])
	assert.Contains(t, idx.Lectures[0], "pdf_path")
	assert.Nil(t, idx.Lectures[0]["pdf_path"])
}

func TestNumber(t *testing.T) {
	assert.Equal(t, 7, Number("Lec7_interactive"))
	assert.Equal(t, 12, Number("lec 12 x"))
	assert.Equal(t, 9999, Number("Intro"))
}

func TestRelevant(t *testing.T) {
	assert.True(t, relevant("/x/html/Lec1_interactive.html"))
	assert.True(t, relevant("/x/pdfs/Lec1.pdf"))
	assert.False(t, relevant("/x/html/lectures.json"))
	assert.False(t, relevant("/x/html/app-shell.js"))
}

func TestWatchResyncsOnNewPage(t *testing.T) {
	root := t.TempDir()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var synced atomic.Int32
	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, root, WatchOptions{
			Debounce: 20 * time.Millisecond,
			OnSync:   func([]Lecture) { synced.Add(1) },
		})
	}()

	require.Eventually(t, func() bool {
		_, err := os.Stat(filepath.Join(root, "pdfs"))
		return err == nil
	}, time.Second, 10*time.Millisecond)
	time.Sleep(50 * time.Millisecond)
	touch(t, root, "html/Lec5_interactive.html")

	require.Eventually(t, func() bool { return synced.Load() > 0 }, 3*time.Second, 20*time.Millisecond)
	_, err := os.Stat(filepath.Join(root, "html", IndexFile))
	assert.NoError(t, err)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("watch did not stop")
	}
}
