// Package scan is the pre-delivery gate for generated pages: it looks for
// leftover placeholder text and for structural problems that break the page
// at runtime.
package scan

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/thywilljoshua/pdf-to-study/internal/generate"
)

// Severity orders findings. Only errors fail the gate.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Finding is one problem in one file.
type Finding struct {
	File     string   `json:"file,omitempty"`
	Line     int      `json:"line,omitempty"`
	Rule     string   `json:"rule"`
	Severity Severity `json:"severity"`
	Message  string   `json:"message"`
}

func (f Finding) String() string {
	loc := f.File
	if f.Line > 0 {
		loc = fmt.Sprintf("%s:%d", f.File, f.Line)
	}
	if loc == "" {
		return fmt.Sprintf("[%s] %s: %s", f.Severity, f.Rule, f.Message)
	}
	return fmt.Sprintf("%s [%s] %s: %s", loc, f.Severity, f.Rule, f.Message)
}

// HasErrors reports whether any finding is an error.
func HasErrors(findings []Finding) bool {
	for _, f := range findings {
		if f.Severity == SeverityError {
			return true
		}
	}
	return false
}

// DefaultPatterns are the files checked when none are given.
var DefaultPatterns = []string{"html/**/*_interactive.html"}

var placeholderPatterns = []*regexp.Regexp{
	regexp.MustCompile(`\[(?:TODO|TBD|PLACEHOLDER)\]`),
	regexp.MustCompile(`(?i)lorem ipsum`),
}

var mermaidTypes = map[string]bool{
	"flowchart": true, "graph": true, "sequenceDiagram": true, "classDiagram": true,
	"stateDiagram": true, "stateDiagram-v2": true, "erDiagram": true, "gantt": true,
	"pie": true, "journey": true, "mindmap": true, "timeline": true,
	"quadrantChart": true, "xychart-beta": true, "gitGraph": true,
}

var (
	divOpen      = regexp.MustCompile(`(?i)<div\b`)
	divClose     = regexp.MustCompile(`(?i)</div\s*>`)
	mermaidBlock = regexp.MustCompile(`(?s)<div class="mermaid">(.*?)</div>`)
	canvasID     = regexp.MustCompile(`<canvas id="([^"]+)"`)
	chartInit    = regexp.MustCompile(`initChart\(document\.getElementById\(['"]([^'"]+)['"]\)`)
	scriptBlock  = regexp.MustCompile(`(?is)<(script|style)\b.*?</(script|style)>`)
	tag          = regexp.MustCompile(`(?s)<[^>]*>`)
	quizBlock    = regexp.MustCompile(`(?s)<div class="quiz-container">(.*?)<div class="quiz-feedback correct">`)
	dataCorrect  = regexp.MustCompile(`data-correct="(true|false)"`)
)

// Text checks any text for placeholder patterns and generic filler
// sentences, reporting line numbers.
func Text(content string) []Finding {
	var out []Finding
	lines := strings.Split(content, "\n")
	for i, line := range lines {
		for _, re := range placeholderPatterns {
			if m := re.FindString(line); m != "" {
				out = append(out, Finding{Line: i + 1, Rule: "placeholder", Severity: SeverityError, Message: fmt.Sprintf("found %q", m)})
			}
		}
		lower := strings.ToLower(line)
		for _, p := range generate.GenericPhrases {
			if strings.Contains(lower, p) {
				out = append(out, Finding{Line: i + 1, Rule: "generic-filler", Severity: SeverityError, Message: fmt.Sprintf("generic sentence %q", p)})
			}
		}
	}
	return out
}

// Review checks a generated page for structural problems. It includes the
// Text checks.
func Review(html string) []Finding {
	out := Text(html)
	add := func(rule string, sev Severity, format string, args ...any) {
		out = append(out, Finding{Rule: rule, Severity: sev, Message: fmt.Sprintf(format, args...)})
	}

	if o, c := len(divOpen.FindAllStringIndex(html, -1)), len(divClose.FindAllStringIndex(html, -1)); o != c {
		add("div-balance", SeverityError, "%d <div> vs %d </div>", o, c)
	}

	for i, m := range quizBlock.FindAllStringSubmatch(html, -1) {
		attrs := dataCorrect.FindAllStringSubmatch(m[1], -1)
		correct := 0
		for _, a := range attrs {
			if a[1] == "true" {
				correct++
			}
		}
		if len(attrs) == 0 {
			add("quiz", SeverityError, "quiz %d has no options with data-correct", i+1)
		} else if correct != 1 {
			add("quiz", SeverityError, "quiz %d has %d correct options", i+1, correct)
		}
	}

	blocks := mermaidBlock.FindAllStringSubmatch(html, -1)
	for i, m := range blocks {
		fields := strings.Fields(m[1])
		if len(fields) == 0 {
			add("mermaid", SeverityError, "mermaid block %d is empty", i+1)
			continue
		}
		if !mermaidTypes[fields[0]] {
			add("mermaid", SeverityError, "mermaid block %d has unknown diagram type %q", i+1, fields[0])
		}
	}

	canvases := map[string]bool{}
	for _, m := range canvasID.FindAllStringSubmatch(html, -1) {
		canvases[m[1]] = true
	}
	inits := map[string]bool{}
	for _, m := range chartInit.FindAllStringSubmatch(html, -1) {
		inits[m[1]] = true
	}
	for _, id := range sortedKeys(canvases) {
		if !inits[id] {
			add("chart", SeverityError, "canvas %q is never initialized", id)
		}
	}
	for _, id := range sortedKeys(inits) {
		if !canvases[id] {
			add("chart", SeverityError, "chart init targets missing canvas %q", id)
		}
	}

	text := tag.ReplaceAllString(scriptBlock.ReplaceAllString(html, ""), " ")
	text = strings.ReplaceAll(text, `\$`, "")
	if n := strings.Count(text, "$"); n%2 != 0 {
		add("math", SeverityError, "unbalanced $ delimiters (%d)", n)
	}

	if len(blocks) > 0 && !strings.Contains(html, "mermaid.min.js") {
		add("cdn", SeverityError, "mermaid diagrams without the mermaid script")
	}
	if len(canvases) > 0 && !strings.Contains(html, "chart.umd") && !strings.Contains(html, "chart.js") {
		add("cdn", SeverityError, "charts without the Chart.js script")
	}
	if strings.Contains(text, "$") && !strings.Contains(html, "katex") {
		add("cdn", SeverityWarning, "math delimiters without KaTeX")
	}

	sections := strings.Count(html, `class="concept-section"`)
	visuals := len(blocks) + len(canvases) + strings.Count(html, `class="comparison-block"`) + strings.Count(html, `class="stats-grid"`)
	if sections > 0 && visuals == 0 {
		add("viz-coverage", SeverityWarning, "%d concept sections and no visualizations", sections)
	}
	return out
}

func sortedKeys(m map[string]bool) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Files expands glob patterns relative to root. Patterns support **.
func Files(root string, patterns ...string) ([]string, error) {
	if len(patterns) == 0 {
		patterns = DefaultPatterns
	}
	fsys := os.DirFS(root)
	seen := map[string]bool{}
	var out []string
	for _, p := range patterns {
		matches, err := doublestar.Glob(fsys, filepath.ToSlash(p), doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("bad pattern %q: %w", p, err)
		}
		for _, m := range matches {
			if !seen[m] {
				seen[m] = true
				out = append(out, m)
			}
		}
	}
	sort.Strings(out)
	return out, nil
}

// Paths runs Review on every .html match and Text on everything else.
func Paths(root string, patterns ...string) ([]Finding, int, error) {
	files, err := Files(root, patterns...)
	if err != nil {
		return nil, 0, err
	}
	var out []Finding
	for _, rel := range files {
		raw, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(rel)))
		if err != nil {
			return nil, 0, fmt.Errorf("reading %s: %w", rel, err)
		}
		var found []Finding
		if strings.HasSuffix(rel, ".html") {
			found = Review(string(raw))
		} else {
			found = Text(string(raw))
		}
		for i := range found {
			found[i].File = rel
		}
		out = append(out, found...)
	}
	return out, len(files), nil
}
