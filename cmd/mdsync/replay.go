package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/alnah/go-mdsync/internal/config"
	"github.com/alnah/go-mdsync/internal/hints"
	"github.com/alnah/go-mdsync/internal/render"
	"github.com/alnah/go-mdsync/internal/replay"
	"github.com/alnah/go-mdsync/internal/yamlutil"
)

// ErrFeedbackLoop is returned when a replayed pane reported its own echo.
var ErrFeedbackLoop = errors.New("feedback loop detected")

// runReplay runs a scroll trace on the virtual clock and prints the report.
// Timing precedence: CLI flags > trace file > env vars > config > defaults.
func runReplay(_ context.Context, args []string, env *Environment) error {
	flags, positional, err := parseReplayFlags(args, env.Stderr)
	if err != nil {
		return err
	}
	path, err := oneArg(positional, "trace file")
	if err != nil {
		return err
	}
	if flags.json && flags.yaml {
		return fmt.Errorf("%w: --json and --yaml are exclusive", ErrUsage)
	}

	cfg, err := loadConfig(flags.common, env)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	tr, err := replay.Load(path)
	if err != nil {
		if errors.Is(err, replay.ErrInvalidTrace) {
			return fmt.Errorf("%w%s", err, hints.ForTrace())
		}
		return err
	}

	if flags.doc != "" {
		src, err := readMarkdown(flags.doc)
		if err != nil {
			return err
		}
		tr.Editor, tr.Preview = replay.PanesFromDocument(src, render.New(), replay.DocLayout{
			Width: flags.width,
			Rows:  flags.rows,
		})
		if err := tr.Validate(); err != nil {
			return err
		}
	}

	params, err := replayParams(flags, cfg, tr)
	if err != nil {
		return err
	}
	if flags.common.verbose {
		fmt.Fprintf(env.Stderr, "Replay: %d steps, suppress %v, idle %v, echo %v\n",
			len(tr.Steps), params.SuppressDelay, params.IdleWindow, params.EchoLatency)
	}

	start := env.Now()
	rep, err := replay.Run(tr, params)
	if err != nil {
		return err
	}
	if flags.common.verbose {
		fmt.Fprintf(env.Stderr, "Replayed in %v\n", env.Now().Sub(start).Round(time.Microsecond))
	}

	if !flags.timeline {
		rep.Timeline = nil
	}
	if err := writeReport(env.Stdout, rep, flags); err != nil {
		return err
	}
	if rep.FeedbackLoop {
		return ErrFeedbackLoop
	}
	return nil
}

// replayParams resolves the replay timings.
func replayParams(flags *replayFlags, cfg *config.Config, tr *replay.Trace) (replay.Params, error) {
	base := replay.Params{
		SuppressDelay: cfg.SuppressDelay(),
		IdleWindow:    cfg.IdleWindow(),
		EchoLatency:   cfg.EchoLatency(),
		EchoTolerance: cfg.Sync.EchoTolerance,
	}
	p, err := tr.Params(base)
	if err != nil {
		return replay.Params{}, err
	}

	// Flags go through a throwaway config to reuse its validation.
	over := config.DefaultConfig()
	flags.sync.mergeInto(over)
	if flags.echoLatency != "" {
		over.Replay.EchoLatency = flags.echoLatency
	}
	if err := over.Validate(); err != nil {
		return replay.Params{}, err
	}
	if flags.sync.suppressDelay != "" {
		p.SuppressDelay = over.SuppressDelay()
	}
	if flags.sync.idleWindow != "" {
		p.IdleWindow = over.IdleWindow()
	}
	if flags.sync.echoTolerance != toleranceUnset {
		p.EchoTolerance = over.Sync.EchoTolerance
	}
	if flags.echoLatency != "" {
		p.EchoLatency = over.EchoLatency()
	}
	return p, nil
}

func writeReport(w io.Writer, rep *replay.Report, flags *replayFlags) error {
	switch {
	case flags.json:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(rep)
	case flags.yaml:
		out, err := yamlutil.Marshal(rep)
		if err != nil {
			return err
		}
		_, err = w.Write(out)
		return err
	}

	if flags.common.quiet {
		return nil
	}
	if err := rep.WriteText(w, flags.timeline); err != nil {
		return err
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, verdictLine(w, rep))
	return nil
}

// verdictLine summarizes the replay, colored when w is a terminal.
func verdictLine(w io.Writer, rep *replay.Report) string {
	r := lipgloss.NewRenderer(w)
	if rep.FeedbackLoop {
		return r.NewStyle().Bold(true).Foreground(lipgloss.Color("1")).
			Render("LOOP: a pane reported the echo of a programmatic write")
	}
	return r.NewStyle().Foreground(lipgloss.Color("2")).
		Render("ok: no pane reported its own echo")
}
