package generate

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thywilljoshua/pdf-to-study/internal/ai"
	"github.com/thywilljoshua/pdf-to-study/internal/extract"
)

type fakeExpander struct {
	analysis  ai.Analysis
	expansion ai.Expansion
	expandErr error
	quiz      []ai.QuizQuestion
	expanded  []string
}

func (f *fakeExpander) Analyze(ctx context.Context, title, text string) (ai.Analysis, error) {
	return f.analysis, nil
}

func (f *fakeExpander) Expand(ctx context.Context, concept, original, pageContext string) (ai.Expansion, error) {
	f.expanded = append(f.expanded, concept)
	return f.expansion, f.expandErr
}

func (f *fakeExpander) Quiz(ctx context.Context, concept, content string) ([]ai.QuizQuestion, error) {
	return f.quiz, nil
}

func writeExtracted(t *testing.T) string {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "Lec3_Portfolio")
	doc := &extract.Document{
		Title:      "Lec3 Portfolio",
		SourceFile: "Lec3_Portfolio.pdf",
		Pages: []extract.Page{{
			PageNumber: 1,
			TextBlocks: []extract.TextBlock{
				{Text: "Diversification", Type: extract.TypeHeading, FontSize: 18},
				{Text: "Diversification reduces idiosyncratic risk across many holdings.", Type: extract.TypeParagraph, FontSize: 11},
			},
		}},
		TotalImages: 0,
		TotalTables: 2,
	}
	require.NoError(t, extract.Write(dir, doc, nil))
	return dir
}

func longText(prefix string) string {
	return prefix + " with enough concrete lecture detail to pass the length check."
}

func TestRunWritesPageAndAssets(t *testing.T) {
	dir := writeExtracted(t)
	out := filepath.Join(t.TempDir(), "html", "Lec3_Portfolio_interactive.html")
	labels, _ := json.Marshal([]string{"1", "10", "50"})
	datasets, _ := json.Marshal([]map[string]any{{"label": "Risk", "data": []float64{20, 12, 9}}})
	fx := &fakeExpander{
		analysis: ai.Analysis{
			MainConcepts:       []ai.Concept{{Name: "Diversification", Description: "spreading risk"}},
			DifficultyLevel:    "advanced",
			Prerequisites:      []string{"Statistics"},
			LearningObjectives: []string{"Explain diversification"},
		},
		expansion: ai.Expansion{
			SimpleAnalogy:   longText("Not putting all eggs in one basket"),
			WhyItMatters:    longText("Portfolio risk falls as holdings grow"),
			DeepExplanation: longText("Idiosyncratic shocks average out"),
			Example:         longText("Holding 50 stocks instead of 1"),
			CommonMistake:   longText("Assuming systematic risk disappears too"),
			Visualization:   &ai.Visualization{Type: "chartjs", ChartType: "line", Title: "Risk vs holdings", Labels: labels, Datasets: datasets},
		},
		quiz: []ai.QuizQuestion{{Question: "What falls?", Options: []string{"Systematic risk", "Idiosyncratic risk"}, Correct: 1, Explanation: "Only firm-specific risk diversifies."}},
	}

	res, err := Run(context.Background(), dir, out, Options{Expander: fx, PDFDir: filepath.Join(filepath.Dir(filepath.Dir(out)), "pdfs")})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Concepts)
	assert.Equal(t, "Lec3 Portfolio", res.Title)

	raw, err := os.ReadFile(out)
	require.NoError(t, err)
	html := string(raw)
	assert.Contains(t, html, "<title>Lec3 Portfolio - Interactive Learning</title>")
	assert.Contains(t, html, `id="concept-1"`)
	assert.Contains(t, html, "Difficulty:</strong> Advanced")
	assert.Contains(t, html, `src="../pdfs/Lec3_Portfolio.pdf"`)
	assert.Contains(t, html, `<canvas id="chart-1"`)
	assert.Contains(t, html, "initChart(document.getElementById")
	assert.Contains(t, html, `data-correct="true">Idiosyncratic risk`)
	assert.Contains(t, html, "<div>2 Tables</div>")
	assert.Contains(t, html, "./app-shell.js?v="+AssetVersion())

	for _, name := range []string{CSSFile, JSFile} {
		_, err := os.Stat(filepath.Join(filepath.Dir(out), name))
		assert.NoError(t, err, name)
	}
}

func TestRunFallsBackWhenExpansionFails(t *testing.T) {
	dir := writeExtracted(t)
	out := filepath.Join(t.TempDir(), "page.html")
	fx := &fakeExpander{
		analysis:  ai.Analysis{MainConcepts: []ai.Concept{{Name: "Diversification"}}},
		expandErr: errors.New("boom"),
	}

	_, err := Run(context.Background(), dir, out, Options{Expander: fx})
	require.NoError(t, err)

	raw, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "Think of Diversification like a workflow")
	assert.NotContains(t, string(raw), "quiz-container")
}

func TestRunWithNoopUsesDefaultAnalysis(t *testing.T) {
	dir := writeExtracted(t)
	out := filepath.Join(t.TempDir(), "page.html")

	res, err := Run(context.Background(), dir, out, Options{})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Concepts)

	raw, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(raw), ">Overview</a>")
	assert.Contains(t, string(raw), "Difficulty:</strong> Intermediate")
}

func TestRunCapsConcepts(t *testing.T) {
	dir := writeExtracted(t)
	var concepts []ai.Concept
	for i := 0; i < 12; i++ {
		concepts = append(concepts, ai.Concept{Name: strings.Repeat("c", i+1)})
	}
	fx := &fakeExpander{analysis: ai.Analysis{MainConcepts: concepts}}

	res, err := Run(context.Background(), dir, filepath.Join(t.TempDir(), "p.html"), Options{Expander: fx})
	require.NoError(t, err)
	assert.Equal(t, DefaultMaxConcepts, res.Concepts)
	assert.Len(t, fx.expanded, DefaultMaxConcepts)
}

func TestModelHTMLIsEscaped(t *testing.T) {
	dir := writeExtracted(t)
	out := filepath.Join(t.TempDir(), "p.html")
	fx := &fakeExpander{
		analysis: ai.Analysis{MainConcepts: []ai.Concept{{Name: "Diversification"}}},
		expansion: ai.Expansion{
			SimpleAnalogy:   "<script>alert(1)</script> is an analogy that is long enough",
			WhyItMatters:    longText("It matters"),
			DeepExplanation: longText("Deep"),
			Example:         longText("Example"),
			CommonMistake:   longText("Mistake"),
		},
	}
	_, err := Run(context.Background(), dir, out, Options{Expander: fx})
	require.NoError(t, err)
	raw, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "<script>alert(1)</script>")
}

func TestRunMissingDir(t *testing.T) {
	_, err := Run(context.Background(), filepath.Join(t.TempDir(), "nope"), "", Options{})
	assert.Error(t, err)
}

func TestWritePortal(t *testing.T) {
	root := t.TempDir()
	path, err := WritePortal(root, "MFIN Lectures")
	require.NoError(t, err)
	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `data-shell-page="portal"`)
	assert.Contains(t, string(raw), `id="lectureSearch"`)
	_, err = os.Stat(filepath.Join(root, "html", JSFile))
	assert.NoError(t, err)
}

func TestDefaultOutput(t *testing.T) {
	assert.Equal(t, filepath.Join("html", "Lec3_Portfolio_interactive.html"), DefaultOutput("extracted/Lec3_Portfolio/"))
}

func TestSanitizeReplacesGenericFields(t *testing.T) {
	got := Sanitize("Beta", "Beta measures sensitivity to the market.", ai.Expansion{
		SimpleAnalogy:   "This concept is like a familiar everyday process, honestly.",
		WhyItMatters:    "short",
		DeepExplanation: longText("Beta is the covariance with the market over market variance"),
		Visualization:   &ai.Visualization{},
	})
	assert.Contains(t, got.SimpleAnalogy, "Think of Beta like a workflow")
	assert.Contains(t, got.WhyItMatters, "In this lecture, Beta influences")
	assert.True(t, strings.HasPrefix(got.DeepExplanation, "Beta is the covariance"))
	assert.Nil(t, got.Visualization)
}

func TestFallbackTruncatesSource(t *testing.T) {
	fb := FallbackExpansion("X", strings.Repeat("word ", 200))
	assert.True(t, strings.HasSuffix(fb.DeepExplanation, "..."))
	assert.LessOrEqual(t, len([]rune(fb.DeepExplanation)), 523)
}

func TestRelevantText(t *testing.T) {
	text := "a\nb\nc\nd\nThe CAPM line\ne\nf"
	assert.Equal(t, "b\nc\nd\nThe CAPM line\ne\nf", relevantText(text, "capm", "desc"))
	assert.Equal(t, "desc", relevantText(text, "missing", "desc"))
}

func TestRenderVisualization(t *testing.T) {
	h, err := renderVisualization(&ai.Visualization{Type: "mermaid", Code: "flowchart TD\n  A --> B"}, 2)
	require.NoError(t, err)
	assert.Contains(t, string(h), `class="mermaid"`)
	assert.Contains(t, string(h), "Diagram")

	h, err = renderVisualization(&ai.Visualization{Type: "comparison", LeftPoints: []string{"cheap"}}, 3)
	require.NoError(t, err)
	assert.Contains(t, string(h), "Option A")
	assert.Contains(t, string(h), "<li>cheap</li>")

	h, err = renderVisualization(&ai.Visualization{Type: "stats"}, 4)
	require.NoError(t, err)
	assert.Empty(t, h)

	h, err = renderVisualization(&ai.Visualization{Type: "hologram"}, 5)
	require.NoError(t, err)
	assert.Empty(t, h)
}

func TestChartConfigDefaults(t *testing.T) {
	cfg, err := chartConfig(&ai.Visualization{ChartType: "sparkline", Datasets: json.RawMessage(`[{"data":[1,2]}]`)})
	require.NoError(t, err)
	assert.Equal(t, "bar", cfg["type"])
	ds := cfg["data"].(map[string]any)["datasets"].([]map[string]any)
	require.Len(t, ds, 1)
	assert.Equal(t, "Series 1", ds[0]["label"])
	assert.Equal(t, "#f6c177", ds[0]["borderColor"])
	assert.Equal(t, "#f6c17726", ds[0]["backgroundColor"])
}

func TestShellBundleOffersSettingsOnChatErrors(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, WriteAssets(dir))
	js, err := os.ReadFile(filepath.Join(dir, JSFile))
	require.NoError(t, err)
	bundle := string(js)

	catchAt := strings.Index(bundle, "if (e.data && e.data.session) chat.session")
	require.NotEqual(t, -1, catchAt)
	branch := bundle[catchAt:]
	branch = branch[:strings.Index(branch, "return true;")]
	assert.Contains(t, branch, "fix.className = 'ai-settings-link'")
	assert.Contains(t, branch, "settings.open(); });")
	assert.Contains(t, branch, "e.data.action === 'configure') settings.open()")

	// The input keeps its text when a reply is still pending.
	assert.Contains(t, bundle, "if (chat.send(input.value.trim())) input.value = '';")
	assert.Contains(t, bundle, "if (chat.busy || !message) return false;")

	css, err := os.ReadFile(filepath.Join(dir, CSSFile))
	require.NoError(t, err)
	assert.Contains(t, string(css), ".ai-settings-link")
}
