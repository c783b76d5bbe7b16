package replay

import (
	"bytes"

	"github.com/alnah/go-mdsync/internal/render"
)

// DocLayout describes the terminal panes a document is sized for.
type DocLayout struct {
	Width     int     // preview wrap width in columns
	Rows      int     // visible rows per pane
	RowHeight float64 // units per row; 1 keeps geometry in rows
}

// PanesFromDocument sizes both panes the way the terminal view lays out
// src: the editor shows one row per source line, the preview one row per
// rendered line. The editor snaps to rows.
func PanesFromDocument(src []byte, r *render.Renderer, l DocLayout) (editor, preview PaneSpec) {
	if l.RowHeight <= 0 {
		l.RowHeight = 1
	}
	if l.Rows <= 0 {
		l.Rows = 1
	}
	client := float64(l.Rows) * l.RowHeight

	editor = PaneSpec{
		ScrollHeight: float64(sourceLines(src)) * l.RowHeight,
		ClientHeight: client,
		RowHeight:    l.RowHeight,
	}
	preview = PaneSpec{
		ScrollHeight: float64(r.Layout(src, l.Width).Height()) * l.RowHeight,
		ClientHeight: client,
	}
	return editor, preview
}

func sourceLines(src []byte) int {
	if len(src) == 0 {
		return 0
	}
	n := bytes.Count(src, []byte{'\n'})
	if src[len(src)-1] != '\n' {
		n++
	}
	return n
}
