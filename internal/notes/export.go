package notes

import (
	"fmt"
	"io"
	"regexp"
	"strings"
	"time"
)

// ExportMeta describes the page a note collection belongs to.
type ExportMeta struct {
	Title      string
	SourceFile string
	Tags       []string
	Generated  time.Time
}

var unsafeFilename = regexp.MustCompile(`[^a-zA-Z0-9\p{Han} ]`)

// ExportFilename is the download name for an exported collection.
func ExportFilename(title string) string {
	return unsafeFilename.ReplaceAllString(title, "_") + ".md"
}

// Export writes the notes as an Obsidian markdown document: frontmatter,
// highlight callouts per citation and a references footer.
func (s *Store) Export(w io.Writer, meta ExportMeta) error {
	notes := s.List()
	if len(notes) == 0 {
		return fmt.Errorf("no notes to export for %q", s.title)
	}
	if meta.Title == "" {
		meta.Title = strings.TrimSuffix(s.title, " - Interactive Learning")
	}
	if meta.Generated.IsZero() {
		meta.Generated = s.now()
	}
	tags := meta.Tags
	if len(tags) == 0 {
		tags = []string{"lecture-notes"}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "---\ntags: [%s]\nsource: %q\ndate: %s\n---\n\n", strings.Join(tags, ", "), meta.SourceFile, meta.Generated.UTC().Format("2006-01-02"))
	fmt.Fprintf(&b, "# %s\n\n", meta.Title)
	fmt.Fprintf(&b, "> [!info] Source\n> PDF: [[%s]]\n\n", strings.TrimSuffix(meta.SourceFile, ".pdf"))
	for i, n := range notes {
		if n.Citation != "" {
			fmt.Fprintf(&b, "> [!quote] Highlight\n> %s\n\n", strings.ReplaceAll(n.Citation, "\n", "\n> "))
		}
		b.WriteString(n.Body + "\n\n")
		if i < len(notes)-1 {
			b.WriteString("---\n\n")
		}
	}
	fmt.Fprintf(&b, "\n## References\n\n- Source: %s\n- Generated: %s\n", meta.SourceFile, meta.Generated.Format("2006-01-02 15:04:05"))

	_, err := io.WriteString(w, b.String())
	return err
}
