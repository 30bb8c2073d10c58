package extract

import (
	"regexp"
	"strings"
)

const maxTableRows = 50

var twoPlusSpaces = regexp.MustCompile(`\s{2,}`)

func splitColumns(s string) []string {
	parts := twoPlusSpaces.Split(strings.TrimSpace(s), -1)
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

// detectTables finds runs of consecutive lines that split into the same
// number (at least two) of space-separated columns. A run needs a header
// and at least one row.
func detectTables(lines []Line, page int) []Table {
	var tables []Table
	i := 0
	for i < len(lines) {
		var block [][]string
		cols := 0
		for i < len(lines) && len(block) < maxTableRows {
			parts := splitColumns(lines[i].Raw)
			if len(parts) < 2 || (cols != 0 && len(parts) != cols) {
				break
			}
			cols = len(parts)
			block = append(block, parts)
			i++
		}
		if len(block) >= 2 {
			tables = append(tables, Table{
				Headers:  block[0],
				Rows:     block[1:],
				Page:     page,
				RowCount: len(block) - 1,
				ColCount: cols,
			})
			continue
		}
		if len(block) == 0 {
			i++
		}
	}
	return tables
}

// Markdown renders t as a pipe table.
func (t Table) Markdown() string {
	var b strings.Builder
	row := func(cells []string) {
		b.WriteString("| " + strings.Join(cells, " | ") + " |\n")
	}
	row(t.Headers)
	sep := make([]string, len(t.Headers))
	for i := range sep {
		sep[i] = "---"
	}
	row(sep)
	for _, r := range t.Rows {
		row(r)
	}
	return b.String()
}
