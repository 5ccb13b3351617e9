// internal/cli/table.go
package cli

import (
	"io"
	"strings"

	"github.com/mattn/go-runewidth"
)

const maxCellWidth = 40

// renderTable writes rows as an aligned plain-text table. Widths are display
// widths, so Cyrillic and Romanian text lines up.
func renderTable(w io.Writer, headers []string, rows [][]string) error {
	widths := make([]int, len(headers))
	cells := make([][]string, 0, len(rows)+1)
	for _, row := range append([][]string{headers}, rows...) {
		line := make([]string, len(headers))
		for i := range headers {
			if i < len(row) {
				line[i] = runewidth.Truncate(strings.TrimSpace(row[i]), maxCellWidth, "…")
			}
			if width := runewidth.StringWidth(line[i]); width > widths[i] {
				widths[i] = width
			}
		}
		cells = append(cells, line)
	}

	var sb strings.Builder
	for n, line := range cells {
		for i, cell := range line {
			if i > 0 {
				sb.WriteString("  ")
			}
			sb.WriteString(runewidth.FillRight(cell, widths[i]))
		}
		sb.WriteString("\n")
		if n == 0 {
			for i, width := range widths {
				if i > 0 {
					sb.WriteString("  ")
				}
				sb.WriteString(strings.Repeat("-", width))
			}
			sb.WriteString("\n")
		}
	}

	_, err := io.WriteString(w, sb.String())
	return err
}
