package scan

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thywilljoshua/pdf-to-study/internal/ai"
	"github.com/thywilljoshua/pdf-to-study/internal/extract"
	"github.com/thywilljoshua/pdf-to-study/internal/generate"
)

func rules(fs []Finding) []string {
	var out []string
	for _, f := range fs {
		out = append(out, f.Rule)
	}
	return out
}

func TestTextPlaceholders(t *testing.T) {
	found := Text("ok line\n[TODO] fill me\nLorem Ipsum dolor\nThis concept is like a familiar everyday process.")
	require.Len(t, found, 3)
	assert.Equal(t, 2, found[0].Line)
	assert.Equal(t, "placeholder", found[0].Rule)
	assert.Equal(t, 3, found[1].Line)
	assert.Equal(t, "generic-filler", found[2].Rule)
	assert.True(t, HasErrors(found))
}

func TestReviewCleanPage(t *testing.T) {
	html := `<html><head><script src="https://cdn/chart.umd.min.js"></script><script src="https://cdn/katex.min.js"></script></head><body>
<section class="concept-section"><div class="chart-container"><canvas id="chart-1"></canvas></div>
<script>initChart(document.getElementById('chart-1'), {});</script>
<div class="quiz-container"><div class="quiz-option" data-correct="false">a</div><div class="quiz-option" data-correct="true">b</div>
<div class="quiz-feedback correct">yes</div><div class="quiz-feedback incorrect">no</div></div>
<p>Price is $x$ here.</p></section></body></html>`
	assert.Empty(t, Review(html))
}

func TestReviewStructuralProblems(t *testing.T) {
	html := `<body><section class="concept-section">
<div><div></div>
<div class="mermaid">
banana A --> B
</div>
<canvas id="chart-9"></canvas>
<div class="quiz-container"><div class="quiz-option" data-correct="false">a</div>
<div class="quiz-feedback correct">x</div></div>
<p>costs $5</p></section></body>`
	got := rules(Review(html))
	assert.Contains(t, got, "div-balance")
	assert.Contains(t, got, "mermaid")
	assert.Contains(t, got, "chart")
	assert.Contains(t, got, "quiz")
	assert.Contains(t, got, "math")
	assert.Contains(t, got, "cdn")
}

func TestReviewWarnsWithoutVisualizations(t *testing.T) {
	found := Review(`<section class="concept-section"><p>text</p></section>`)
	require.Len(t, found, 1)
	assert.Equal(t, "viz-coverage", found[0].Rule)
	assert.False(t, HasErrors(found))
}

func TestGeneratedPagePassesReview(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "Lec1")
	require.NoError(t, extract.Write(dir, &extract.Document{Title: "Lec1", SourceFile: "Lec1.pdf"}, nil))
	out := filepath.Join(t.TempDir(), "Lec1_interactive.html")

	_, err := generate.Run(context.Background(), dir, out, generate.Options{Expander: ai.Noop{}})
	require.NoError(t, err)
	raw, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.False(t, HasErrors(Review(string(raw))), "%v", Review(string(raw)))
}

func TestPaths(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "html", "sub"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "html", "sub", "Lec1_interactive.html"), []byte("<div>[TBD]</div>"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "notes.md"), []byte("fine\n[PLACEHOLDER]"), 0o644))

	found, n, err := Paths(root)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	require.Len(t, found, 1)
	assert.Equal(t, "html/sub/Lec1_interactive.html", found[0].File)

	found, n, err = Paths(root, "*.md", "html/**/*.html")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Len(t, found, 2)
	assert.Equal(t, "html/sub/Lec1_interactive.html:1 [error] placeholder: found \"[TBD]\"", found[0].String())
}
