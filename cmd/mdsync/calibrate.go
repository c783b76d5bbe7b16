package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"path/filepath"
	"text/tabwriter"
	"time"

	"github.com/alnah/go-mdsync"
	"github.com/alnah/go-mdsync/internal/browser"
	"github.com/alnah/go-mdsync/internal/calibrate"
	"github.com/alnah/go-mdsync/internal/config"
	"github.com/alnah/go-mdsync/internal/hints"
	"github.com/alnah/go-mdsync/internal/render"
	"github.com/alnah/go-mdsync/internal/yamlutil"
)

// dragSteps and dragIntervalMS shape the verification drag: a scrollbar
// pull through half the editor at 60Hz.
const (
	dragSteps      = 30
	dragIntervalMS = 16
)

// calibrateResult is the JSON form of a calibration run.
type calibrateResult struct {
	Document      string        `json:"document"`
	Pane          string        `json:"pane"`
	Samples       int           `json:"samples"`
	Min           string        `json:"min"`
	Median        string        `json:"median"`
	P95           string        `json:"p95"`
	P99           string        `json:"p99"`
	Max           string        `json:"max"`
	SuppressDelay string        `json:"suppress_delay"`
	IdleWindow    string        `json:"idle_window"`
	Verify        *verifyResult `json:"verify,omitempty"`
}

// verifyResult counts what a scripted editor drag produced.
type verifyResult struct {
	EditorReports   int  `json:"editor_reports"`
	PreviewWrites   int  `json:"preview_writes"`
	PreviewReports  int  `json:"preview_reports"`
	PreviewSuppress int  `json:"preview_suppressed"`
	PreviewEchoes   int  `json:"preview_late_echoes"`
	OK              bool `json:"ok"`
}

// runCalibrate measures how long the browser takes to dispatch the scroll
// event of a programmatic write, and recommends session timings from it.
func runCalibrate(ctx context.Context, args []string, env *Environment) error {
	flags, positional, err := parseCalibrateFlags(args, env.Stderr)
	if err != nil {
		return err
	}
	path, err := oneArg(positional, "markdown file")
	if err != nil {
		return err
	}
	pane, err := parsePane(flags.pane)
	if err != nil {
		return err
	}

	cfg, err := loadConfig(flags.common, env)
	if err != nil {
		return err
	}
	flags.sync.mergeInto(cfg)
	if flags.samples != 0 {
		cfg.Calibrate.Samples = flags.samples
	}
	if flags.timeout != "" {
		cfg.Calibrate.Timeout = flags.timeout
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	samples := cfg.Calibrate.Samples
	if samples == 0 {
		samples = config.DefaultConfig().Calibrate.Samples
	}

	src, err := readMarkdown(path)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, cfg.CalibrateTimeout())
	defer cancel()

	content, err := pageContent(ctx, path, src, cfg.Dark())
	if err != nil {
		return err
	}

	if flags.common.verbose {
		fmt.Fprintln(env.Stderr, "Launching browser...")
	}
	b, err := browser.Launch(ctx, browser.Options{Timeout: cfg.CalibrateTimeout()})
	if err != nil {
		return fmt.Errorf("%w%s", err, hints.ForBrowserConnect())
	}
	defer func() { _ = b.Close() }()

	page, err := b.OpenPage(ctx, content)
	if err != nil {
		return err
	}
	defer func() { _ = page.Close() }()

	if flags.common.verbose {
		fmt.Fprintf(env.Stderr, "Measuring %d writes on the %s pane...\n", samples, pane)
	}
	latencies, err := page.MeasureEchoLatency(ctx, pane, samples)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return fmt.Errorf("calibration: %w%s", err, hints.ForTimeout())
		}
		if errors.Is(err, browser.ErrNotScrollable) {
			return fmt.Errorf("%w: %s is too short to scroll; use a longer document", err, filepath.Base(path))
		}
		return err
	}

	summary, err := calibrate.Summarize(latencies)
	if err != nil {
		return err
	}
	rec := calibrate.Recommend(summary)

	result := &calibrateResult{
		Document:      path,
		Pane:          pane.String(),
		Samples:       summary.Samples,
		Min:           summary.Min.String(),
		Median:        summary.Median.String(),
		P95:           summary.P95.String(),
		P99:           summary.P99.String(),
		Max:           summary.Max.String(),
		SuppressDelay: rec.SuppressDelay.String(),
		IdleWindow:    rec.IdleWindow.String(),
	}

	if flags.verify {
		if flags.common.verbose {
			fmt.Fprintln(env.Stderr, "Verifying with a scripted editor drag...")
		}
		v, err := verifyTimings(ctx, page, rec, cfg.Sync.EchoTolerance)
		if err != nil {
			return err
		}
		result.Verify = v
	}

	if flags.json {
		enc := json.NewEncoder(env.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}
	if flags.common.quiet {
		return nil
	}
	return printCalibration(env.Stdout, result, rec, cfg.Sync.EchoTolerance)
}

// pageContent renders the document for both browser panes.
func pageContent(ctx context.Context, path string, src []byte, dark bool) (browser.Content, error) {
	preview, err := render.New().HTML(ctx, src)
	if err != nil {
		return browser.Content{}, err
	}
	css, err := render.CodeCSS(dark)
	if err != nil {
		return browser.Content{}, err
	}
	return browser.Content{
		Title:       filepath.Base(path),
		Editor:      string(src),
		PreviewHTML: preview,
		CodeCSS:     css,
	}, nil
}

// verifyTimings drags the editor with rec applied and counts how the
// preview responded. Any preview report during an editor drag is an echo
// that escaped suppression.
func verifyTimings(ctx context.Context, page *browser.Page, rec calibrate.Recommendation, tolerance float64) (*verifyResult, error) {
	var scriptErr error
	page.OnError(func(err error) { scriptErr = err })

	loop := mdsync.NewEventLoop()
	defer loop.Close()

	sess, err := page.Attach(loop,
		mdsync.WithSuppressDelay(rec.SuppressDelay),
		mdsync.WithIdleWindow(rec.IdleWindow),
		mdsync.WithEchoTolerance(tolerance),
	)
	if err != nil {
		return nil, err
	}
	defer func() { _ = loop.Do(context.Background(), sess.Close) }()

	g, err := page.Geometry(ctx, mdsync.Editor)
	if err != nil {
		return nil, err
	}
	if !g.Scrollable() {
		return nil, browser.ErrNotScrollable
	}
	tops := make([]float64, dragSteps)
	for i := range tops {
		tops[i] = math.Round(g.MaxScroll() * float64(i+1) / (2 * dragSteps))
	}
	if err := page.Drag(ctx, mdsync.Editor, tops, dragIntervalMS); err != nil {
		return nil, err
	}

	// Let the last echo land and the idle window expire.
	select {
	case <-time.After(rec.SuppressDelay + rec.IdleWindow + 100*time.Millisecond):
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	var ed, pv mdsync.Stats
	if err := loop.Do(ctx, func() { ed, pv = sess.Stats() }); err != nil {
		return nil, err
	}
	if scriptErr != nil {
		return nil, scriptErr
	}
	return &verifyResult{
		EditorReports:   ed.Reports,
		PreviewWrites:   pv.Writes,
		PreviewReports:  pv.Reports,
		PreviewSuppress: pv.Suppressed,
		PreviewEchoes:   pv.Echoes,
		OK:              pv.Reports == 0 && ed.Reports > 0,
	}, nil
}

func printCalibration(w io.Writer, r *calibrateResult, rec calibrate.Recommendation, tolerance float64) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "document\t%s (%s pane, %d samples)\n", r.Document, r.Pane, r.Samples)
	fmt.Fprintf(tw, "latency\tmin %s, median %s, p95 %s, p99 %s, max %s\n", r.Min, r.Median, r.P95, r.P99, r.Max)
	fmt.Fprintf(tw, "recommend\tsuppress %s, idle %s\n", r.SuppressDelay, r.IdleWindow)
	if v := r.Verify; v != nil {
		verdict := "ok"
		if !v.OK {
			verdict = "FAILED"
		}
		fmt.Fprintf(tw, "verify\t%s (editor reports %d, preview writes %d, suppressed %d, late echoes %d, preview reports %d)\n",
			verdict, v.EditorReports, v.PreviewWrites, v.PreviewSuppress, v.PreviewEchoes, v.PreviewReports)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	snippet, err := yamlutil.Marshal(map[string]config.SyncConfig{
		"sync": {
			SuppressDelay: rec.SuppressDelay.String(),
			IdleWindow:    rec.IdleWindow.String(),
			EchoTolerance: tolerance,
		},
	})
	if err != nil {
		return err
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Add to your config:")
	_, err = w.Write(snippet)
	return err
}
