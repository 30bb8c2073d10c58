// Package extract turns a lecture PDF into the extracted_content.json tree
// the page generator consumes.
package extract

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/thywilljoshua/pdf-to-study/internal/progress"
	rpdf "rsc.io/pdf"
)

// Options configure an extraction run.
type Options struct {
	OutDir   string
	Progress progress.Reporter
	Logger   *slog.Logger
}

// DefaultOutDir is extracted/<pdf name>.
func DefaultOutDir(pdfPath string) string {
	return filepath.Join("extracted", strings.TrimSuffix(filepath.Base(pdfPath), filepath.Ext(pdfPath)))
}

// Run extracts pdfPath and writes the result under opts.OutDir.
func Run(ctx context.Context, pdfPath string, opts Options) (*Document, error) {
	if opts.OutDir == "" {
		opts.OutDir = DefaultOutDir(pdfPath)
	}
	if opts.Progress == nil {
		opts.Progress = progress.Silent{}
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if _, err := os.Stat(pdfPath); err != nil {
		return nil, fmt.Errorf("PDF file not found: %w", err)
	}

	r, err := rpdf.Open(pdfPath)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", pdfPath, err)
	}
	n := r.NumPage()
	fmt.Printf("📖 Total pages: %d\n", n)

	doc := &Document{
		Title:      strings.TrimSuffix(filepath.Base(pdfPath), filepath.Ext(pdfPath)),
		SourceFile: filepath.Base(pdfPath),
		Pages:      make([]Page, 0, n),
	}
	var tables []Table

	opts.Progress.Start(n, "Extracting pages")
	for i := 1; i <= n; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		lines, err := pageLines(r, i)
		if err != nil {
			opts.Logger.Warn("skipping unreadable page", "page", i, "err", err)
		}
		page := Page{PageNumber: i, TextBlocks: blocks(lines), Images: []ImageRef{}, Tables: []TableRef{}}
		for _, b := range page.TextBlocks {
			if b.Type == TypeFormula || (b.Type == TypeHeading && IsFormula(b.Text)) {
				page.HasFormulas = true
				doc.TotalFormulas++
			}
		}
		for j, t := range detectTables(lines, i) {
			name := fmt.Sprintf("page%d_table%d.json", i, j+1)
			page.Tables = append(page.Tables, TableRef{
				Filename: name,
				Path:     "tables/" + name,
				Headers:  t.Headers,
				RowCount: t.RowCount,
				ColCount: t.ColCount,
			})
			tables = append(tables, t)
		}
		doc.TotalTables += len(page.Tables)
		doc.Pages = append(doc.Pages, page)
		opts.Progress.Update(i, fmt.Sprintf("page %d: %d blocks", i, len(page.TextBlocks)))
	}
	opts.Progress.Finish()

	if err := Write(opts.OutDir, doc, tables); err != nil {
		return nil, err
	}
	return doc, nil
}

// pageLines reads one page. rsc.io/pdf panics on malformed content streams,
// so the panic is turned into an error for that page only.
func pageLines(r *rpdf.Reader, i int) (lines []Line, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			lines, err = nil, fmt.Errorf("page %d: %v", i, rec)
		}
	}()
	p := r.Page(i)
	if p.V.IsNull() {
		return nil, fmt.Errorf("page %d: missing", i)
	}
	return groupLines(p.Content().Text), nil
}

// Write lays out the extraction directory: extracted_content.json,
// text/full_text.txt, tables/*.json and an images/ directory.
func Write(outDir string, doc *Document, tables []Table) error {
	for _, d := range []string{"text", "images", "tables"} {
		if err := os.MkdirAll(filepath.Join(outDir, d), 0o755); err != nil {
			return fmt.Errorf("creating %s dir: %w", d, err)
		}
	}
	tableIdx := 0
	for _, p := range doc.Pages {
		for _, ref := range p.Tables {
			if tableIdx >= len(tables) {
				break
			}
			if err := writeJSON(filepath.Join(outDir, ref.Path), tables[tableIdx]); err != nil {
				return err
			}
			tableIdx++
		}
	}
	if err := writeJSON(filepath.Join(outDir, "extracted_content.json"), doc); err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(outDir, "text", "full_text.txt"), []byte(FullText(doc)), 0o644); err != nil {
		return fmt.Errorf("writing full text: %w", err)
	}
	return nil
}

func writeJSON(path string, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding %s: %w", filepath.Base(path), err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

// Load reads extracted_content.json and text/full_text.txt from dir.
func Load(dir string) (*Document, string, error) {
	raw, err := os.ReadFile(filepath.Join(dir, "extracted_content.json"))
	if err != nil {
		return nil, "", fmt.Errorf("reading extracted content: %w", err)
	}
	var doc Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, "", fmt.Errorf("decoding extracted content: %w", err)
	}
	text, err := os.ReadFile(filepath.Join(dir, "text", "full_text.txt"))
	if err != nil {
		return nil, "", fmt.Errorf("reading full text: %w", err)
	}
	return &doc, string(text), nil
}

// FullText renders the plain-text view used as AI context.
func FullText(doc *Document) string {
	rule := strings.Repeat("=", 60)
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n", doc.Title)
	fmt.Fprintf(&b, "Source: %s\n", doc.SourceFile)
	b.WriteString(rule + "\n")

	for _, p := range doc.Pages {
		fmt.Fprintf(&b, "\n%s\nPAGE %d\n%s\n\n", rule, p.PageNumber, rule)
		var section []string
		flush := func() {
			if len(section) > 0 {
				b.WriteString(strings.Join(section, " ") + "\n\n")
				section = section[:0]
			}
		}
		for _, blk := range p.TextBlocks {
			switch blk.Type {
			case TypeHeading:
				flush()
				fmt.Fprintf(&b, "\n## %s\n\n", blk.Text)
			case TypeListItem:
				flush()
				b.WriteString(blk.Text + "\n")
			case TypeFormula:
				flush()
				fmt.Fprintf(&b, "\n[FORMULA]: %s\n\n", blk.Text)
			default:
				section = append(section, blk.Text)
			}
		}
		flush()
		if len(p.Images) > 0 {
			names := make([]string, len(p.Images))
			for i, img := range p.Images {
				names[i] = img.Filename
			}
			fmt.Fprintf(&b, "\n[Images on this page: %s]\n", strings.Join(names, ", "))
		}
		if len(p.Tables) > 0 {
			fmt.Fprintf(&b, "\n[Tables on this page: %d]\n", len(p.Tables))
		}
	}
	return b.String()
}
