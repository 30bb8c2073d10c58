// Package markdown renders the small markdown dialect used in notes and
// chat answers. It is deliberately narrow: headings, flat bullet lists,
// bold, italic and inline code. Everything else is escaped text.
package markdown

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

var (
	codeRe   = regexp.MustCompile("`([^`]+?)`")
	boldRe   = regexp.MustCompile(`\*\*(.+?)\*\*`)
	italicRe = regexp.MustCompile(`\*(.+?)\*`)
	slotRe   = regexp.MustCompile("\x00(\\d+)\x00")
)

var escaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&#39;",
)

// Escape HTML-escapes s the same way Render does before any substitution.
func Escape(s string) string { return escaper.Replace(s) }

type lineKind int

const (
	kindText lineKind = iota
	kindBlank
	kindBullet
	kindHeading
)

// Render converts text to an HTML fragment.
func Render(text string) string {
	text = strings.ReplaceAll(text, "\x00", "")
	text = strings.ReplaceAll(text, "\r\n", "\n")
	lines := strings.Split(Escape(text), "\n")

	var (
		out   strings.Builder
		run   []string // consecutive text/blank lines
		items []string // consecutive bullet items
	)
	flushRun := func() {
		if len(run) == 0 {
			return
		}
		allBlank := true
		for _, l := range run {
			if l != "" {
				allBlank = false
				break
			}
		}
		if allBlank {
			out.WriteString(strings.Repeat("<br>", len(run)))
		} else {
			out.WriteString(strings.Join(run, "<br>"))
		}
		run = run[:0]
	}
	flushList := func() {
		if len(items) == 0 {
			return
		}
		out.WriteString("<ul>")
		for _, it := range items {
			out.WriteString("<li>" + it + "</li>")
		}
		out.WriteString("</ul>")
		items = items[:0]
	}

	for _, line := range lines {
		kind, level, body := classify(line)
		switch kind {
		case kindHeading:
			flushRun()
			flushList()
			fmt.Fprintf(&out, "<h%d>%s</h%d>", level, inline(body), level)
		case kindBullet:
			flushRun()
			items = append(items, inline(body))
		case kindBlank:
			flushList()
			run = append(run, "")
		default:
			flushList()
			run = append(run, inline(body))
		}
	}
	flushRun()
	flushList()
	return out.String()
}

func classify(line string) (lineKind, int, string) {
	switch {
	case strings.TrimSpace(line) == "":
		return kindBlank, 0, ""
	case strings.HasPrefix(line, "### "):
		return kindHeading, 3, line[4:]
	case strings.HasPrefix(line, "## "):
		return kindHeading, 2, line[3:]
	case strings.HasPrefix(line, "# "):
		return kindHeading, 1, line[2:]
	case strings.HasPrefix(line, "- "), strings.HasPrefix(line, "* "):
		return kindBullet, 0, line[2:]
	}
	return kindText, 0, line
}

// inline applies code, bold and italic to already-escaped text. Code spans
// are lifted out first so their contents stay literal.
func inline(s string) string {
	var codes []string
	s = codeRe.ReplaceAllStringFunc(s, func(m string) string {
		codes = append(codes, "<code>"+m[1:len(m)-1]+"</code>")
		return fmt.Sprintf("\x00%d\x00", len(codes)-1)
	})
	s = boldRe.ReplaceAllString(s, "<strong>$1</strong>")
	s = italicRe.ReplaceAllString(s, "<em>$1</em>")
	if len(codes) == 0 {
		return s
	}
	return slotRe.ReplaceAllStringFunc(s, func(m string) string {
		var i int
		fmt.Sscanf(strings.Trim(m, "\x00"), "%d", &i)
		if i < 0 || i >= len(codes) {
			return ""
		}
		return codes[i]
	})
}

// Preview returns the first n runes of text, followed by "..." when cut.
func Preview(text string, n int) string {
	if n <= 0 || utf8.RuneCountInString(text) <= n {
		return text
	}
	r := []rune(text)
	return string(r[:n]) + "..."
}
