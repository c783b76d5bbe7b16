// Package render turns Markdown into the preview pane's content.
//
// Two outputs share one goldmark parser configuration:
//   - Layout produces wrapped terminal lines for the TUI preview pane
//   - HTML produces a body fragment with class-based code highlighting
//     for the browser preview pane
//
// Both are pure functions of the source text and a width, so a reload
// rebuilds the preview from scratch and the pane's scroll height changes
// with it.
package render

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
)

// ErrHTMLConversion indicates HTML conversion failed.
var ErrHTMLConversion = errors.New("HTML conversion failed")

// Code highlighting styles for the browser preview.
const (
	LightCodeStyle = "github"
	DarkCodeStyle  = "monokai"
)

// Renderer converts Markdown with GFM tables, task lists, strikethrough,
// autolinks and footnotes. Safe for concurrent use.
type Renderer struct {
	md goldmark.Markdown
}

// New creates a Renderer.
func New() *Renderer {
	md := goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,
			extension.Footnote,
			highlighting.NewHighlighting(
				highlighting.WithFormatOptions(
					chromahtml.WithClasses(true),
				),
			),
		),
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
		),
	)
	return &Renderer{md: md}
}

// HTML converts Markdown to an HTML body fragment.
// Goldmark has no context support, so conversion runs in a goroutine and
// the caller stops waiting on cancellation.
func (r *Renderer) HTML(ctx context.Context, src []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	type result struct {
		html string
		err  error
	}

	done := make(chan result, 1)

	go func() {
		var buf bytes.Buffer
		if err := r.md.Convert(src, &buf); err != nil {
			done <- result{err: fmt.Errorf("%w: %v", ErrHTMLConversion, err)}
			return
		}
		done <- result{html: buf.String()}
	}()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res := <-done:
		return res.html, res.err
	}
}

// CodeCSS returns the stylesheet for highlighted code blocks.
func CodeCSS(dark bool) (string, error) {
	name := LightCodeStyle
	if dark {
		name = DarkCodeStyle
	}

	var b strings.Builder
	formatter := chromahtml.New(chromahtml.WithClasses(true))
	if err := formatter.WriteCSS(&b, styles.Get(name)); err != nil {
		return "", fmt.Errorf("writing %s code style: %w", name, err)
	}
	return b.String(), nil
}
