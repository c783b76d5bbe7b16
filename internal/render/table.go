package render

import (
	"strings"

	"github.com/charmbracelet/x/ansi"
	east "github.com/yuin/goldmark/extension/ast"
)

const (
	cellSep   = " │ "
	minColumn = 3
)

// table renders a GFM table as aligned columns. Rows never wrap: cells
// wider than their column are truncated with an ellipsis so each row
// stays one display line.
func (l *layouter) table(n *east.Table, width int) []string {
	var rows [][]string
	header := -1
	for r := n.FirstChild(); r != nil; r = r.NextSibling() {
		if _, ok := r.(*east.TableHeader); ok {
			header = len(rows)
		}
		var cells []string
		for c := r.FirstChild(); c != nil; c = c.NextSibling() {
			cells = append(cells, strings.ReplaceAll(l.inline(c), "\n", " "))
		}
		rows = append(rows, cells)
	}
	if len(rows) == 0 {
		return nil
	}

	cols := len(n.Alignments)
	for _, row := range rows {
		cols = max(cols, len(row))
	}
	widths := columnWidths(rows, cols, width)

	out := make([]string, 0, len(rows)+1)
	for i, row := range rows {
		cells := make([]string, cols)
		for c := 0; c < cols; c++ {
			var cell string
			if c < len(row) {
				cell = row[c]
			}
			align := east.AlignNone
			if c < len(n.Alignments) {
				align = n.Alignments[c]
			}
			cells[c] = pad(ansi.Truncate(cell, widths[c], "…"), widths[c], align)
		}
		out = append(out, strings.TrimRight(strings.Join(cells, cellSep), " "))

		if i == header {
			rules := make([]string, cols)
			for c, w := range widths {
				rules[c] = strings.Repeat("─", w)
			}
			out = append(out, strings.Join(rules, "─┼─"))
		}
	}
	return out
}

// columnWidths sizes each column to its widest cell, then shrinks the
// widest columns until the row fits.
func columnWidths(rows [][]string, cols, width int) []int {
	widths := make([]int, cols)
	for _, row := range rows {
		for c, cell := range row {
			widths[c] = max(widths[c], ansi.StringWidth(cell), 1)
		}
	}

	budget := width - (cols-1)*ansi.StringWidth(cellSep)
	for total(widths) > budget {
		widest := 0
		for c := range widths {
			if widths[c] > widths[widest] {
				widest = c
			}
		}
		if widths[widest] <= minColumn {
			break
		}
		widths[widest]--
	}
	return widths
}

func total(ws []int) int {
	n := 0
	for _, w := range ws {
		n += w
	}
	return n
}

func pad(s string, width int, align east.Alignment) string {
	gap := width - ansi.StringWidth(s)
	if gap <= 0 {
		return s
	}
	switch align {
	case east.AlignRight:
		return strings.Repeat(" ", gap) + s
	case east.AlignCenter:
		left := gap / 2
		return strings.Repeat(" ", left) + s + strings.Repeat(" ", gap-left)
	default:
		return s + strings.Repeat(" ", gap)
	}
}
