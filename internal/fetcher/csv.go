package fetcher

import (
	"strings"
)

// ParseCSV splits published-sheet CSV text into rows of cells.
//
// Each physical line is one row: a trailing "\r" is dropped and blank lines
// are skipped. Double quotes only toggle comma escaping and are removed from
// the cell, so a literal quote cannot be represented and quoted fields may not
// span lines. Unbalanced quotes never fail; the line is split best-effort.
func ParseCSV(text string) [][]string {
	lines := strings.Split(text, "\n")
	rows := make([][]string, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimSuffix(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		rows = append(rows, SplitCSVLine(line))
	}
	return rows
}

// SplitCSVLine splits a single line on commas that are outside double quotes.
// Cells are returned untrimmed.
func SplitCSVLine(line string) []string {
	var (
		cells    []string
		cur      strings.Builder
		inQuotes bool
	)
	for _, r := range line {
		switch {
		case r == '"':
			inQuotes = !inQuotes
		case r == ',' && !inQuotes:
			cells = append(cells, cur.String())
			cur.Reset()
		default:
			cur.WriteRune(r)
		}
	}
	return append(cells, cur.String())
}
