package browser

import (
	"context"
	"fmt"
	"html/template"
	"strings"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
	"github.com/ysmood/gson"

	"github.com/alnah/go-mdsync"
	"github.com/alnah/go-mdsync/internal/fileutil"
)

// DefaultPaneHeight is the CSS pixel height of both scroll containers.
const DefaultPaneHeight = 600

// bindingName is the page-global function the scroll listeners call.
const bindingName = "mdsyncScrolled"

// Content is what the two panes show.
type Content struct {
	Title       string
	Editor      string // raw Markdown, shown preformatted
	PreviewHTML string // rendered fragment from render.HTML
	CodeCSS     string // chroma classes from render.CodeCSS
	Height      int    // pane height in CSS pixels; 0 uses DefaultPaneHeight
}

var pageTemplate = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
html, body { margin: 0; }
body { display: flex; font-family: system-ui, sans-serif; }
.pane { flex: 1; height: {{.Height}}px; overflow-y: auto; padding: 0 1em; box-sizing: border-box; }
#editor { font-family: ui-monospace, monospace; white-space: pre; border-right: 1px solid #ccc; }
{{.CodeCSS}}
</style>
</head>
<body>
<div id="editor" class="pane">{{.Editor}}</div>
<div id="preview" class="pane">{{.Preview}}</div>
</body>
</html>
`))

// pageHTML builds the two-pane document. The preview fragment is trusted:
// goldmark escapes raw HTML unless told otherwise.
func pageHTML(c Content) (string, error) {
	height := c.Height
	if height <= 0 {
		height = DefaultPaneHeight
	}
	var b strings.Builder
	err := pageTemplate.Execute(&b, struct {
		Title   string
		Height  int
		CodeCSS template.CSS
		Editor  string
		Preview template.HTML
	}{
		Title:   c.Title,
		Height:  height,
		CodeCSS: template.CSS(c.CodeCSS), // #nosec G203 -- generated by chroma
		Editor:  c.Editor,
		Preview: template.HTML(c.PreviewHTML), // #nosec G203 -- goldmark output, raw HTML escaped
	})
	if err != nil {
		return "", fmt.Errorf("building page: %w", err)
	}
	return b.String(), nil
}

// Page is an open two-pane document.
type Page struct {
	ctx     context.Context
	page    *rod.Page
	cleanup func()
	unbind  func() error
	onError func(error)
}

// OpenPage writes c to a temp file and loads it in a new tab.
func (b *Browser) OpenPage(ctx context.Context, c Content) (*Page, error) {
	doc, err := pageHTML(c)
	if err != nil {
		return nil, err
	}
	path, cleanup, err := fileutil.WriteTempFile(doc, "html")
	if err != nil {
		return nil, err
	}

	page, err := b.rod.Page(proto.TargetCreateTarget{URL: "file://" + path})
	if err != nil {
		cleanup()
		return nil, fmt.Errorf("%w: %v", ErrPageCreate, err)
	}

	timeout, err := b.loadTimeout(ctx)
	if err == nil {
		err = page.Context(ctx).Timeout(timeout).WaitLoad()
	}
	if err != nil {
		_ = page.Close()
		cleanup()
		return nil, fmt.Errorf("%w: %v", ErrPageLoad, err)
	}

	return &Page{ctx: ctx, page: page.Context(ctx), cleanup: cleanup}, nil
}

// OnError sets the handler for script failures on the scroll path, where
// Surface methods cannot return errors.
func (p *Page) OnError(f func(error)) {
	p.onError = f
}

// Close closes the tab and removes the temp file.
func (p *Page) Close() error {
	if p.unbind != nil {
		_ = p.unbind()
		p.unbind = nil
	}
	err := p.page.Close()
	p.cleanup()
	return err
}

const geometryJS = `(id) => {
	const el = document.getElementById(id);
	return {top: el.scrollTop, height: el.scrollHeight, client: el.clientHeight};
}`

// Geometry reads a pane's scroll measurements.
func (p *Page) Geometry(ctx context.Context, pane mdsync.Source) (mdsync.Geometry, error) {
	res, err := p.page.Context(ctx).Eval(geometryJS, pane.String())
	if err != nil {
		return mdsync.Geometry{}, fmt.Errorf("%w: %v", ErrScript, err)
	}
	return geometryOf(res.Value), nil
}

func geometryOf(v gson.JSON) mdsync.Geometry {
	return mdsync.Geometry{
		ScrollTop:    v.Get("top").Num(),
		ScrollHeight: v.Get("height").Num(),
		ClientHeight: v.Get("client").Num(),
	}
}

// SetScrollTop writes a pane's scrollTop from the page, the way a script
// would. The browser fires the scroll event asynchronously.
func (p *Page) SetScrollTop(ctx context.Context, pane mdsync.Source, top float64) error {
	_, err := p.page.Context(ctx).Eval(`(id, top) => { document.getElementById(id).scrollTop = top; }`, pane.String(), top)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrScript, err)
	}
	return nil
}

const dragJS = `(id, tops, interval) => new Promise(resolve => {
	const el = document.getElementById(id);
	let i = 0;
	const step = () => {
		if (i >= tops.length) { resolve(); return; }
		el.scrollTop = tops[i++];
		setTimeout(step, interval);
	};
	step();
})`

// Drag scrolls pane through tops one step per interval milliseconds, as a
// user dragging the scrollbar. It returns once the last step is written.
func (p *Page) Drag(ctx context.Context, pane mdsync.Source, tops []float64, intervalMS int) error {
	_, err := p.page.Context(ctx).Eval(dragJS, pane.String(), tops, intervalMS)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrScript, err)
	}
	return nil
}

// Surface is a page pane as an mdsync.Surface.
type Surface struct {
	page *Page
	pane mdsync.Source
}

var _ mdsync.Surface = (*Surface)(nil)

// Surface returns the editor or preview pane.
func (p *Page) Surface(pane mdsync.Source) *Surface {
	return &Surface{page: p, pane: pane}
}

// Geometry reads the pane. On failure it reports a zero geometry, which
// the adapters treat as degenerate.
func (s *Surface) Geometry() mdsync.Geometry {
	g, err := s.page.Geometry(s.page.ctx, s.pane)
	if err != nil {
		s.page.fail(err)
		return mdsync.Geometry{}
	}
	return g
}

func (s *Surface) SetScrollTop(top float64) {
	if err := s.page.SetScrollTop(s.page.ctx, s.pane, top); err != nil {
		s.page.fail(err)
	}
}

func (p *Page) fail(err error) {
	if p.onError != nil {
		p.onError(err)
	}
}

const listenJS = `(name) => {
	for (const id of ["editor", "preview"]) {
		document.getElementById(id).addEventListener("scroll", () => window[name](id), {passive: true});
	}
}`

// Attach couples both panes with a new session running on loop. Native
// scroll events cross from the page into loop tasks; every session call,
// including the surfaces' page reads and writes, runs on loop.
func (p *Page) Attach(loop *mdsync.EventLoop, opts ...mdsync.Option) (*mdsync.Session, error) {
	if loop == nil {
		panic("nil EventLoop in Attach")
	}
	sess := mdsync.NewSession(p.Surface(mdsync.Editor), p.Surface(mdsync.Preview), loop, opts...)

	unbind, err := p.page.Expose(bindingName, func(arg gson.JSON) (any, error) {
		pane, ok := mdsync.ParseSource(arg.Str())
		if !ok || pane == mdsync.None {
			return nil, nil
		}
		_ = loop.Post(func() { sess.Scrolled(pane) })
		return nil, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrScript, err)
	}
	p.unbind = unbind

	if _, err := p.page.Eval(listenJS, bindingName); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrScript, err)
	}
	return sess, nil
}
