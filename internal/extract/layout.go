package extract

import (
	"math"
	"regexp"
	"sort"
	"strings"

	rpdf "rsc.io/pdf"
)

// Line is one visual line of a page, rebuilt from positioned text runs.
// Raw keeps wide horizontal gaps as runs of two or more spaces so column
// layouts survive for table detection.
type Line struct {
	Raw      string
	FontSize float64
	Font     string
}

// Text is Raw with whitespace collapsed.
func (l Line) Text() string {
	return strings.Join(strings.Fields(l.Raw), " ")
}

// Bold reports whether the line's first run uses a bold face.
func (l Line) Bold() bool {
	return strings.Contains(strings.ToLower(l.Font), "bold")
}

// groupLines orders runs top-to-bottom, left-to-right, and joins runs on
// the same baseline.
func groupLines(runs []rpdf.Text) []Line {
	runs = append([]rpdf.Text(nil), runs...)
	sort.SliceStable(runs, func(i, j int) bool {
		if math.Abs(runs[i].Y-runs[j].Y) > yTolerance(runs[i], runs[j]) {
			return runs[i].Y > runs[j].Y
		}
		return runs[i].X < runs[j].X
	})

	var (
		lines []Line
		cur   strings.Builder
		first rpdf.Text
		prev  rpdf.Text
		open  bool
	)
	flush := func() {
		if open && strings.TrimSpace(cur.String()) != "" {
			lines = append(lines, Line{Raw: strings.TrimSpace(cur.String()), FontSize: first.FontSize, Font: first.Font})
		}
		cur.Reset()
		open = false
	}
	for _, r := range runs {
		if open && math.Abs(r.Y-prev.Y) > yTolerance(r, prev) {
			flush()
		}
		if !open {
			first = r
			open = true
		} else {
			gap := r.X - (prev.X + prev.W)
			size := math.Max(prev.FontSize, 1)
			switch {
			case gap > size*1.5:
				cur.WriteString("   ")
			case gap > size*0.15 && !strings.HasSuffix(cur.String(), " ") && !strings.HasPrefix(r.S, " "):
				cur.WriteString(" ")
			}
		}
		cur.WriteString(r.S)
		prev = r
	}
	flush()
	return lines
}

func yTolerance(a, b rpdf.Text) float64 {
	return math.Max(math.Max(a.FontSize, b.FontSize)*0.5, 1)
}

var mathPattern = regexp.MustCompile(`[∫∑∏√∂∇∈∉⊂⊃∪∩±≤≥≠≈∞×÷]|[α-ωΑ-Ω]|[₀-₉]|[⁰-⁹]`)

// IsFormula reports whether text contains math symbols.
func IsFormula(text string) bool {
	return mathPattern.MatchString(text)
}

// Classify assigns a block type. Size wins over content: a large line is a
// heading even if it holds symbols.
func Classify(text string, fontSize float64, bold bool) string {
	trimmed := strings.TrimSpace(text)
	switch {
	case fontSize > 14 || (fontSize > 12 && bold):
		return TypeHeading
	case IsFormula(trimmed):
		return TypeFormula
	case strings.HasPrefix(trimmed, "•"), strings.HasPrefix(trimmed, "-"):
		return TypeListItem
	}
	return TypeParagraph
}

// blocks converts lines to text blocks.
func blocks(lines []Line) []TextBlock {
	out := make([]TextBlock, 0, len(lines))
	for _, l := range lines {
		text := l.Text()
		if text == "" {
			continue
		}
		out = append(out, TextBlock{
			Text:     text,
			Type:     Classify(text, l.FontSize, l.Bold()),
			FontSize: math.Round(l.FontSize*10) / 10,
			IsBold:   l.Bold(),
		})
	}
	return out
}
