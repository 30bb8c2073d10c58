// Package generate turns an extracted lecture directory into an interactive
// study page plus the shared shell assets it loads.
package generate

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"html/template"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/extension"

	"github.com/thywilljoshua/pdf-to-study/internal/ai"
	"github.com/thywilljoshua/pdf-to-study/internal/extract"
	"github.com/thywilljoshua/pdf-to-study/internal/markdown"
	"github.com/thywilljoshua/pdf-to-study/internal/progress"
	"github.com/thywilljoshua/pdf-to-study/internal/shell"
)

const (
	// DefaultMaxConcepts caps how many analyzed concepts get a section.
	DefaultMaxConcepts = 8

	// CSSFile and JSFile are written next to every generated page.
	CSSFile = "app-shell.css"
	JSFile  = "app-shell.js"

	contextRunes  = 3000
	originalRunes = 1000
)

// Options configure a generation run.
type Options struct {
	Expander     ai.Expander
	MaxConcepts  int
	Progress     progress.Reporter
	Logger       *slog.Logger
	PDFDir       string
	AssetVersion string
	Breakpoint   int
}

func (o *Options) defaults() {
	if o.Expander == nil {
		o.Expander = ai.Noop{}
	}
	if o.MaxConcepts <= 0 {
		o.MaxConcepts = DefaultMaxConcepts
	}
	if o.Progress == nil {
		o.Progress = progress.Silent{}
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	if o.PDFDir == "" {
		o.PDFDir = "pdfs"
	}
	if o.AssetVersion == "" {
		o.AssetVersion = AssetVersion()
	}
	if o.Breakpoint <= 0 {
		o.Breakpoint = shell.DefaultLayout.DrawerBreakpoint
	}
}

// AssetVersion is a content hash of the shell bundle, used to bust caches.
func AssetVersion() string {
	sum := sha256.Sum256([]byte(cssContent + jsContent))
	return hex.EncodeToString(sum[:])[:10]
}

// DefaultOutput is html/<dir name>_interactive.html.
func DefaultOutput(extractedDir string) string {
	name := filepath.Base(filepath.Clean(extractedDir))
	return filepath.Join("html", name+shell.LectureSuffix)
}

// Result summarizes a generated page.
type Result struct {
	Path     string
	Title    string
	Concepts int
	Bytes    int
}

type quizOption struct {
	Text    string
	Correct bool
}

type quizView struct {
	Number      int
	Question    string
	Options     []quizOption
	Explanation string
}

type conceptView struct {
	ID           string
	Name         string
	Analogy      template.HTML
	WhyItMatters template.HTML
	Viz          template.HTML
	Deep         template.HTML
	Original     template.HTML
	Example      template.HTML
	Mistake      template.HTML
	Quiz         []quizView
}

type pageView struct {
	DocTitle      string
	AssetVersion  string
	Breakpoint    int
	SourceFile    string
	PDFSrc        string
	Title         string
	Difficulty    string
	Prerequisites []string
	Objectives    []string
	Concepts      []conceptView
	Images        int
	Tables        int
}

var (
	pageTmpl   = template.Must(template.New("page").Parse(pageTemplate))
	portalTmpl = template.Must(template.New("portal").Parse(portalTemplate))
)

// newMarkdown renders model-written fields. Raw HTML from the model is
// escaped, so there is no WithUnsafe here.
func newMarkdown() goldmark.Markdown {
	return goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,
			highlighting.NewHighlighting(
				highlighting.WithStyle("monokai"),
			),
		),
	)
}

// Run reads extractedDir, expands its concepts and writes outputFile.
// An empty outputFile means DefaultOutput(extractedDir).
func Run(ctx context.Context, extractedDir, outputFile string, opts Options) (*Result, error) {
	opts.defaults()
	if outputFile == "" {
		outputFile = DefaultOutput(extractedDir)
	}

	doc, fullText, err := extract.Load(extractedDir)
	if err != nil {
		return nil, err
	}
	fmt.Printf("📄 Title: %s\n", doc.Title)

	analysis, err := opts.Expander.Analyze(ctx, doc.Title, fullText)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		opts.Logger.Warn("content analysis failed, using defaults", "err", err)
		analysis = DefaultAnalysis()
	}
	concepts := analysis.MainConcepts
	if len(concepts) > opts.MaxConcepts {
		concepts = concepts[:opts.MaxConcepts]
	}

	md := newMarkdown()
	pageContext := truncate(fullText, contextRunes)
	views := make([]conceptView, 0, len(concepts))

	opts.Progress.Start(len(concepts), "Expanding concepts")
	for i, c := range concepts {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		idx := i + 1
		name := strings.TrimSpace(c.Name)
		if name == "" {
			name = fmt.Sprintf("Concept %d", idx)
		}
		opts.Progress.Update(i, name)
		original := relevantText(fullText, name, c.Description)

		exp, err := opts.Expander.Expand(ctx, name, original, pageContext)
		if err != nil {
			opts.Logger.Warn("expansion failed, using fallback", "concept", name, "err", err)
		}
		exp = Sanitize(name, original, exp)

		quiz, err := opts.Expander.Quiz(ctx, name, original)
		if err != nil {
			opts.Logger.Warn("quiz generation failed", "concept", name, "err", err)
			quiz = nil
		}

		view, err := buildConcept(md, idx, name, original, exp, quiz)
		if err != nil {
			return nil, fmt.Errorf("building %q: %w", name, err)
		}
		views = append(views, view)
	}
	opts.Progress.Finish()

	outDir := filepath.Dir(outputFile)
	pdfSrc, err := filepath.Rel(outDir, filepath.Join(opts.PDFDir, doc.SourceFile))
	if err != nil {
		pdfSrc = filepath.Join(opts.PDFDir, doc.SourceFile)
	}

	view := pageView{
		DocTitle:      doc.Title + " - Interactive Learning",
		AssetVersion:  opts.AssetVersion,
		Breakpoint:    opts.Breakpoint,
		SourceFile:    doc.SourceFile,
		PDFSrc:        filepath.ToSlash(pdfSrc),
		Title:         doc.Title,
		Difficulty:    titleCase(orDefault(analysis.DifficultyLevel, "intermediate")),
		Prerequisites: analysis.Prerequisites,
		Objectives:    analysis.LearningObjectives,
		Concepts:      views,
		Images:        doc.TotalImages,
		Tables:        doc.TotalTables,
	}

	var buf bytes.Buffer
	if err := pageTmpl.Execute(&buf, view); err != nil {
		return nil, fmt.Errorf("rendering page: %w", err)
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, err
	}
	if err := WriteAssets(outDir); err != nil {
		return nil, err
	}
	if err := os.WriteFile(outputFile, buf.Bytes(), 0o644); err != nil {
		return nil, fmt.Errorf("writing %s: %w", outputFile, err)
	}

	return &Result{Path: outputFile, Title: doc.Title, Concepts: len(views), Bytes: buf.Len()}, nil
}

func buildConcept(md goldmark.Markdown, idx int, name, original string, exp ai.Expansion, quiz []ai.QuizQuestion) (conceptView, error) {
	render := func(s string) (template.HTML, error) {
		var out bytes.Buffer
		if err := md.Convert([]byte(s), &out); err != nil {
			return "", err
		}
		return template.HTML(out.String()), nil
	}

	v := conceptView{ID: fmt.Sprintf("concept-%d", idx), Name: name}
	fields := []struct {
		dst *template.HTML
		src string
	}{
		{&v.Analogy, exp.SimpleAnalogy},
		{&v.WhyItMatters, exp.WhyItMatters},
		{&v.Deep, exp.DeepExplanation},
		{&v.Example, exp.Example},
		{&v.Mistake, exp.CommonMistake},
	}
	for _, f := range fields {
		h, err := render(f.src)
		if err != nil {
			return conceptView{}, err
		}
		*f.dst = h
	}
	if o := strings.TrimSpace(original); o != "" {
		v.Original = template.HTML(markdown.Render(truncate(o, originalRunes)))
	}

	viz, err := renderVisualization(exp.Visualization, idx)
	if err != nil {
		return conceptView{}, err
	}
	v.Viz = viz

	for qi, q := range quiz {
		if strings.TrimSpace(q.Question) == "" || len(q.Options) == 0 {
			continue
		}
		qv := quizView{Number: qi + 1, Question: q.Question, Explanation: q.Explanation}
		for oi, o := range q.Options {
			qv.Options = append(qv.Options, quizOption{Text: o, Correct: oi == q.Correct})
		}
		v.Quiz = append(v.Quiz, qv)
	}
	return v, nil
}

// WriteAssets writes the shell stylesheet and script into dir.
func WriteAssets(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(dir, CSSFile), []byte(cssContent), 0o644); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, JSFile), []byte(jsContent), 0o644)
}

// WritePortal writes root/index.html, the course landing page that lists
// lectures from the server's index. The shell assets go to root/html.
func WritePortal(root, title string) (string, error) {
	if title == "" {
		title = "Lectures"
	}
	if err := WriteAssets(filepath.Join(root, "html")); err != nil {
		return "", err
	}
	var buf bytes.Buffer
	err := portalTmpl.Execute(&buf, struct {
		Title        string
		AssetVersion string
		Breakpoint   int
	}{title, AssetVersion(), shell.DefaultLayout.DrawerBreakpoint})
	if err != nil {
		return "", fmt.Errorf("rendering portal: %w", err)
	}
	path := filepath.Join(root, "index.html")
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return "", err
	}
	return path, nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

func titleCase(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return s
	}
	r := []rune(strings.ToLower(s))
	r[0] = []rune(strings.ToUpper(string(r[0])))[0]
	return string(r)
}
