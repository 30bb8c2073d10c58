// Package lectures indexes generated lecture pages and the PDFs they were
// built from.
package lectures

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

const (
	// IndexFile is written under html/.
	IndexFile = "lectures.json"

	pagePattern = "html/*_interactive.html"
	pdfPattern  = "pdfs/*.pdf"
	unnumbered  = 9999
)

// Lecture is one entry of html/lectures.json. Paths are relative to html/.
type Lecture struct {
	Title     string  `json:"title"`
	HTMLPath  string  `json:"html_path"`
	PDFPath   *string `json:"pdf_path"`
	UpdatedAt string  `json:"updated_at"`
}

// Index is the lectures.json document.
type Index struct {
	Lectures []Lecture `json:"lectures"`
	Count    int       `json:"count"`
}

var (
	lecNumber = regexp.MustCompile(`(?i)^Lec[_ ]?(\d+)`)
	nonAlnum  = regexp.MustCompile(`[^a-z0-9]+`)
)

// NormalizeAssetName lowercases name and drops everything but letters and
// digits, so "Lec 2 Risk" and "Lec2_Risk" match.
func NormalizeAssetName(name string) string {
	return nonAlnum.ReplaceAllString(strings.ToLower(name), "")
}

// Number returns the lecture number in a "Lec<N>" stem, or 9999.
func Number(stem string) int {
	m := lecNumber.FindStringSubmatch(stem)
	if m == nil {
		return unnumbered
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return unnumbered
	}
	return n
}

// Build scans root/html and root/pdfs. A missing html directory yields an
// empty list.
func Build(root string) ([]Lecture, error) {
	fsys := os.DirFS(root)
	pages, err := doublestar.Glob(fsys, pagePattern)
	if err != nil {
		return nil, fmt.Errorf("listing lecture pages: %w", err)
	}
	pdfs, err := doublestar.Glob(fsys, pdfPattern)
	if err != nil {
		return nil, fmt.Errorf("listing pdfs: %w", err)
	}
	sort.Strings(pdfs)
	pdfIndex := make(map[string]string, len(pdfs))
	for _, p := range pdfs {
		key := NormalizeAssetName(strings.TrimSuffix(path.Base(p), ".pdf"))
		if _, ok := pdfIndex[key]; !ok {
			pdfIndex[key] = path.Base(p)
		}
	}

	sort.Slice(pages, func(i, j int) bool {
		a, b := stemOf(pages[i]), stemOf(pages[j])
		if na, nb := Number(a), Number(b); na != nb {
			return na < nb
		}
		return strings.ToLower(a) < strings.ToLower(b)
	})

	out := make([]Lecture, 0, len(pages))
	for _, p := range pages {
		name := path.Base(p)
		stem := strings.TrimSuffix(stemOf(p), "_interactive")
		lec := Lecture{
			Title:    strings.ReplaceAll(stem, "_", " "),
			HTMLPath: "./" + name,
		}
		pdf, ok := pdfIndex[NormalizeAssetName(stem)]
		if !ok {
			guess := strings.ReplaceAll(stem, "_", " ") + ".pdf"
			if _, err := fs.Stat(fsys, "pdfs/"+guess); err == nil {
				pdf, ok = guess, true
			}
		}
		if ok {
			rel := "../pdfs/" + pdf
			lec.PDFPath = &rel
		}
		if info, err := fs.Stat(fsys, p); err == nil {
			lec.UpdatedAt = info.ModTime().Format("2006-01-02T15:04:05")
		}
		out = append(out, lec)
	}
	return out, nil
}

func stemOf(p string) string {
	return strings.TrimSuffix(path.Base(p), path.Ext(p))
}

// Sync rebuilds the index and writes root/html/lectures.json.
func Sync(root string) (string, []Lecture, error) {
	list, err := Build(root)
	if err != nil {
		return "", nil, err
	}
	dir := filepath.Join(root, "html")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", nil, err
	}
	b, err := json.MarshalIndent(Index{Lectures: list, Count: len(list)}, "", "  ")
	if err != nil {
		return "", nil, err
	}
	out := filepath.Join(dir, IndexFile)
	if err := os.WriteFile(out, b, 0o644); err != nil {
		return "", nil, fmt.Errorf("writing %s: %w", out, err)
	}
	return out, list, nil
}
