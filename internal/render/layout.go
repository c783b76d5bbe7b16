package render

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/x/ansi"
	"github.com/yuin/goldmark/ast"
	east "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"
)

// MinWidth is the narrowest layout produced; smaller widths are raised to it.
const MinWidth = 10

const tabWidth = 4

// BlockKind classifies a top-level block for styling.
type BlockKind int

const (
	BlockParagraph BlockKind = iota
	BlockHeading
	BlockList
	BlockCode
	BlockQuote
	BlockTable
	BlockRule
	BlockHTML
	BlockFootnotes
)

var blockKindNames = [...]string{
	"paragraph", "heading", "list", "code", "quote", "table", "rule", "html", "footnotes",
}

func (k BlockKind) String() string {
	if int(k) < len(blockKindNames) {
		return blockKindNames[k]
	}
	return "block(" + strconv.Itoa(int(k)) + ")"
}

// Block is one top-level element laid out as display lines.
// Level is the heading level, 0 for other kinds.
type Block struct {
	Kind  BlockKind
	Level int
	Lines []string
}

// Document is a laid-out preview. Blocks are separated by one blank line.
type Document struct {
	Width  int
	Blocks []Block
}

// Lines returns the display lines with blank separators between blocks.
func (d Document) Lines() []string {
	out := make([]string, 0, d.Height())
	for i, b := range d.Blocks {
		if i > 0 {
			out = append(out, "")
		}
		out = append(out, b.Lines...)
	}
	return out
}

// Height is the number of display lines.
func (d Document) Height() int {
	if len(d.Blocks) == 0 {
		return 0
	}
	n := len(d.Blocks) - 1
	for _, b := range d.Blocks {
		n += len(b.Lines)
	}
	return n
}

// Layout parses src and wraps it to width display columns.
func (r *Renderer) Layout(src []byte, width int) Document {
	if width < MinWidth {
		width = MinWidth
	}

	root := r.md.Parser().Parse(text.NewReader(src))
	l := &layouter{src: src}

	doc := Document{Width: width}
	for n := root.FirstChild(); n != nil; n = n.NextSibling() {
		lines := l.lines(n, width)
		if len(lines) == 0 {
			continue
		}
		b := Block{Kind: kindOf(n), Lines: lines}
		if h, ok := n.(*ast.Heading); ok {
			b.Level = h.Level
		}
		doc.Blocks = append(doc.Blocks, b)
	}
	return doc
}

func kindOf(n ast.Node) BlockKind {
	switch n.(type) {
	case *ast.Heading:
		return BlockHeading
	case *ast.List:
		return BlockList
	case *ast.FencedCodeBlock, *ast.CodeBlock:
		return BlockCode
	case *ast.Blockquote:
		return BlockQuote
	case *east.Table:
		return BlockTable
	case *ast.ThematicBreak:
		return BlockRule
	case *ast.HTMLBlock:
		return BlockHTML
	case *east.FootnoteList:
		return BlockFootnotes
	default:
		return BlockParagraph
	}
}

type layouter struct {
	src []byte
}

// lines lays out a block node at the given width.
func (l *layouter) lines(n ast.Node, width int) []string {
	switch n := n.(type) {
	case *ast.Heading:
		return wrap(strings.Repeat("#", n.Level)+" "+l.inline(n), width)
	case *ast.Paragraph, *ast.TextBlock:
		return wrap(l.inline(n), width)
	case *ast.FencedCodeBlock:
		return l.code(n, width)
	case *ast.CodeBlock:
		return l.code(n, width)
	case *ast.HTMLBlock:
		return l.raw(n, width)
	case *ast.ThematicBreak:
		return []string{strings.Repeat("─", width)}
	case *ast.Blockquote:
		return prefixed(l.children(n, width-2, true), "│ ", "│ ")
	case *ast.List:
		return l.list(n, width)
	case *east.Table:
		return l.table(n, width)
	case *east.FootnoteList:
		return l.footnotes(n, width)
	default:
		return l.children(n, width, false)
	}
}

// children lays out each child block, separated by a blank line when loose.
func (l *layouter) children(n ast.Node, width int, loose bool) []string {
	var out []string
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		lines := l.lines(c, width)
		if len(lines) == 0 {
			continue
		}
		if loose && len(out) > 0 {
			out = append(out, "")
		}
		out = append(out, lines...)
	}
	return out
}

func (l *layouter) list(n *ast.List, width int) []string {
	var out []string
	num := n.Start
	for item := n.FirstChild(); item != nil; item = item.NextSibling() {
		marker := "• "
		if n.IsOrdered() {
			marker = fmt.Sprintf("%d%c ", num, n.Marker)
			num++
		}
		pad := strings.Repeat(" ", ansi.StringWidth(marker))
		body := l.children(item, width-len(pad), !n.IsTight)
		if len(body) == 0 {
			body = []string{""}
		}
		if !n.IsTight && len(out) > 0 {
			out = append(out, "")
		}
		out = append(out, prefixed(body, marker, pad)...)
	}
	return out
}

func (l *layouter) footnotes(n *east.FootnoteList, width int) []string {
	out := []string{strings.Repeat("─", min(width, 8))}
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		fn, ok := c.(*east.Footnote)
		if !ok {
			continue
		}
		marker := fmt.Sprintf("[%d] ", fn.Index)
		pad := strings.Repeat(" ", len(marker))
		out = append(out, prefixed(l.children(fn, width-len(pad), false), marker, pad)...)
	}
	return out
}

type segmented interface {
	Lines() *text.Segments
}

// code keeps source lines verbatim, expanding tabs and hard-wrapping
// lines longer than the pane.
func (l *layouter) code(n segmented, width int) []string {
	segs := n.Lines()
	out := make([]string, 0, segs.Len())
	for i := 0; i < segs.Len(); i++ {
		seg := segs.At(i)
		line := strings.TrimRight(string(seg.Value(l.src)), "\r\n")
		line = strings.ReplaceAll(line, "\t", strings.Repeat(" ", tabWidth))
		out = append(out, hardwrap(line, width-2)...)
	}
	return prefixed(out, "  ", "  ")
}

func (l *layouter) raw(n *ast.HTMLBlock, width int) []string {
	out := l.code(n, width+2)
	for i := range out {
		out[i] = strings.TrimPrefix(out[i], "  ")
	}
	if n.HasClosure() {
		closure := n.ClosureLine
		out = append(out, strings.TrimRight(string(closure.Value(l.src)), "\r\n"))
	}
	return out
}

// inline flattens the inline children of n to plain text.
// Hard line breaks survive as newlines; soft breaks become spaces.
func (l *layouter) inline(n ast.Node) string {
	var b strings.Builder
	_ = ast.Walk(n, func(c ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering || c == n {
			return ast.WalkContinue, nil
		}
		switch c := c.(type) {
		case *ast.Text:
			b.Write(c.Segment.Value(l.src))
			switch {
			case c.HardLineBreak():
				b.WriteByte('\n')
			case c.SoftLineBreak():
				b.WriteByte(' ')
			}
		case *ast.String:
			b.Write(c.Value)
		case *ast.AutoLink:
			b.Write(c.Label(l.src))
			return ast.WalkSkipChildren, nil
		case *ast.RawHTML:
			return ast.WalkSkipChildren, nil
		case *east.TaskCheckBox:
			if c.IsChecked {
				b.WriteString("[x] ")
			} else {
				b.WriteString("[ ] ")
			}
		case *east.FootnoteLink:
			fmt.Fprintf(&b, "[%d]", c.Index)
			return ast.WalkSkipChildren, nil
		case *east.FootnoteBacklink:
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})
	return b.String()
}

// wrap word-wraps s to width, breaking words longer than a line.
func wrap(s string, width int) []string {
	if width < 1 {
		width = 1
	}
	var out []string
	for _, para := range strings.Split(s, "\n") {
		wrapped := ansi.Wrap(para, width, "")
		for _, line := range strings.Split(wrapped, "\n") {
			out = append(out, strings.TrimRight(line, " "))
		}
	}
	return out
}

func hardwrap(s string, width int) []string {
	if width < 1 {
		width = 1
	}
	if ansi.StringWidth(s) <= width {
		return []string{s}
	}
	return strings.Split(ansi.Hardwrap(s, width, true), "\n")
}

func prefixed(lines []string, first, rest string) []string {
	out := make([]string, len(lines))
	for i, line := range lines {
		p := rest
		if i == 0 {
			p = first
		}
		out[i] = strings.TrimRight(p+line, " ")
	}
	return out
}
