package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thywilljoshua/pdf-to-study/internal/config"
)

func run(t *testing.T, root string, args ...string) (string, error) {
	t.Helper()
	t.Setenv("PDF2STUDY_ROOT", root)
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--config", filepath.Join(root, "missing.yml"), "--env-file", filepath.Join(root, "missing.env")}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func TestNormalizeOpenPath(t *testing.T) {
	tests := map[string]string{
		`"/html/Lec1_interactive.html"`: "html/Lec1_interactive.html",
		"  html/index.html).":           "html/index.html).",
		"html/index.html)":              "html/index.html",
		"'/'":                           "",
	}
	for in, want := range tests {
		assert.Equal(t, want, normalizeOpenPath(in), in)
	}
}

func TestOpenTarget(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "html"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "html", "Lec1_interactive.html"), nil, 0o644))

	got, ok := openTarget(root, "/html/Lec1_interactive.html")
	assert.True(t, ok)
	assert.Equal(t, "html/Lec1_interactive.html", got)

	got, ok = openTarget(root, "html/nope.html")
	assert.False(t, ok)
	assert.Empty(t, got)
}

func TestNotesCommands(t *testing.T) {
	root := t.TempDir()

	out, err := run(t, root, "notes", "add", "Lec2 Risk", "variance is not everything", "--citation", "beta", "--section", "CAPM")
	require.NoError(t, err, out)
	assert.Contains(t, out, "Lec2 Risk - Interactive Learning")

	out, err = run(t, root, "notes", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Lec2 Risk - Interactive Learning")
	assert.Contains(t, out, "1 notes")

	out, err = run(t, root, "notes", "list", "Lec2 Risk")
	require.NoError(t, err)
	assert.Contains(t, out, "variance is not everything")
	assert.Contains(t, out, "beta")

	out, err = run(t, root, "notes", "export", "Lec2 Risk", "-o", "-", "--source", "Lec2_Risk.pdf")
	require.NoError(t, err)
	assert.Contains(t, out, "> [!quote] Highlight\n> beta")
	assert.Contains(t, out, "Lec2_Risk.pdf")

	_, err = run(t, root, "notes", "edit", "Lec2 Risk", "99", "nope")
	assert.Error(t, err)

	_, err = run(t, root, "notes", "export", "Lec3 Empty", "-o", "-")
	assert.Error(t, err)

	assert.FileExists(t, filepath.Join(root, ".pdf2study", "profile.db"))
}

func TestLecturesSyncAndScan(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "html"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "pdfs"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "pdfs", "Lec1_Intro.pdf"), []byte("%PDF"), 0o644))
	page := `<html><body><div class="concept">[TODO] write this</div></body></html>`
	require.NoError(t, os.WriteFile(filepath.Join(root, "html", "Lec1_Intro_interactive.html"), []byte(page), 0o644))

	out, err := run(t, root, "lectures", "sync")
	require.NoError(t, err, out)
	assert.Contains(t, out, "Lec1 Intro")
	assert.Contains(t, out, "1 lectures")
	assert.FileExists(t, filepath.Join(root, "html", "lectures.json"))

	out, err = run(t, root, "scan")
	assert.Error(t, err)
	assert.Contains(t, out, "html/Lec1_Intro_interactive.html:1")
}

func TestAIProviders(t *testing.T) {
	out, err := run(t, t.TempDir(), "ai", "providers")
	require.NoError(t, err)
	assert.Contains(t, out, "anthropic")
	assert.Contains(t, out, "ollama")
}

func TestGenerateRejectsUnknownExpander(t *testing.T) {
	_, err := run(t, t.TempDir(), "generate", "extracted/x", "--expander", "magic")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown expander")
}

func TestNotesOnFileBackendEditLegacyIDs(t *testing.T) {
	root := t.TempDir()
	t.Setenv("PDF2STUDY_STORAGE__BACKEND", "file")
	t.Setenv("PDF2STUDY_STORAGE__PATH", "profile.json")

	legacy, err := json.Marshal(map[string]string{
		"learning-notes-Lec9 Bonds - Interactive Learning": `[{"id":1,"body":"duration","citation":"","section":"","timestamp":""},"stray"]`,
	})
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(root, "profile.json"), legacy, 0o644))

	out, err := run(t, root, "notes", "list")
	require.NoError(t, err, out)
	assert.Contains(t, out, "Lec9 Bonds - Interactive Learning")

	out, err = run(t, root, "notes", "edit", "--", "Lec9 Bonds", "-2", "convexity")
	require.NoError(t, err, out)

	out, err = run(t, root, "notes", "list", "Lec9 Bonds")
	require.NoError(t, err)
	assert.Contains(t, out, "duration")
	assert.Contains(t, out, "convexity")

	_, err = run(t, root, "notes", "delete", "--", "Lec9 Bonds", "-2")
	require.NoError(t, err)
	out, err = run(t, root, "notes", "list", "Lec9 Bonds")
	require.NoError(t, err)
	assert.NotContains(t, out, "convexity")

	_, err = run(t, root, "notes", "edit", "Lec9 Bonds", "0", "nope")
	assert.Error(t, err)

	assert.NoFileExists(t, filepath.Join(root, ".pdf2study", "profile.db"))
}

func TestInvalidStorageBackendRejected(t *testing.T) {
	t.Setenv("PDF2STUDY_STORAGE__BACKEND", "redis")
	_, err := run(t, t.TempDir(), "notes", "list")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "storage.backend")
}

func TestProviderExpanderUsesLocalRelay(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		assert.Equal(t, "/api/gemini", r.URL.Path)
		reply := `{"main_concepts":[{"name":"Duration","description":"rate sensitivity"}],"difficulty_level":"beginner"}`
		fmt.Fprintf(w, `{"candidates":[{"content":{"parts":[{"text":%q}]},"finishReason":"STOP"}]}`, reply)
	}))
	defer srv.Close()
	u, err := url.Parse(srv.URL)
	require.NoError(t, err)
	port, err := strconv.Atoi(u.Port())
	require.NoError(t, err)

	cfg := config.DefaultConfig()
	cfg.Root = t.TempDir()
	cfg.Server.Port = port
	a := &app{cfg: cfg, log: slog.Default()}

	exp, closeFn, err := a.expander(context.Background(), "provider", "")
	require.NoError(t, err)
	defer closeFn()

	analysis, err := exp.Analyze(context.Background(), "Lec9 Bonds", "bond pricing")
	require.NoError(t, err)
	require.Len(t, analysis.MainConcepts, 1)
	assert.Equal(t, "Duration", analysis.MainConcepts[0].Name)
	assert.Equal(t, int32(1), hits.Load())
}
