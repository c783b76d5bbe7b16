package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/alnah/go-mdsync/internal/config"
	"github.com/alnah/go-mdsync/internal/hints"
	"github.com/alnah/go-mdsync/internal/tui"
	"github.com/alnah/go-mdsync/internal/watch"
)

// ErrNoTerminal is returned when view runs without an interactive terminal.
var ErrNoTerminal = errors.New("not a terminal")

// runView opens the live dual-pane view of one markdown file.
func runView(ctx context.Context, args []string, env *Environment) error {
	flags, positional, err := parseViewFlags(args, env.Stderr)
	if err != nil {
		return err
	}
	path, err := oneArg(positional, "markdown file")
	if err != nil {
		return err
	}

	cfg, err := loadConfig(flags.common, env)
	if err != nil {
		return err
	}
	mergeViewFlags(flags, cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}

	src, err := readMarkdown(path)
	if err != nil {
		return err
	}
	if env.IsTerminal == nil || !env.IsTerminal() {
		return fmt.Errorf("%w%s", ErrNoTerminal, hints.ForTerminal())
	}

	if flags.common.verbose {
		fmt.Fprintf(env.Stderr, "Sync: suppress %v, idle %v, tolerance %.2f\n",
			cfg.SuppressDelay(), cfg.IdleWindow(), cfg.Sync.EchoTolerance)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var updates chan tea.Msg
	if cfg.View.Watch {
		updates = make(chan tea.Msg, 1)
		go watchDocument(ctx, path, updates)
	}

	return tui.Run(ctx, tui.Options{
		Path:         path,
		Source:       src,
		Dark:         cfg.Dark(),
		LineNumbers:  cfg.Editor.LineNumbers,
		PreviewWidth: cfg.Preview.Width,
		Sync:         sessionOptions(cfg),
	}, updates)
}

// mergeViewFlags applies explicitly set view flags over cfg.
func mergeViewFlags(flags *viewFlags, cfg *config.Config) {
	flags.sync.mergeInto(cfg)
	if flags.theme != "" {
		cfg.View.Theme = strings.ToLower(flags.theme)
	}
	if flags.watch {
		cfg.View.Watch = true
	}
	if flags.noWatch {
		cfg.View.Watch = false
	}
	if flags.noLineNumbers {
		cfg.Editor.LineNumbers = false
	}
	if flags.width != 0 {
		cfg.Preview.Width = flags.width
	}
}

// watchDocument re-reads path after each change and forwards the result to
// the view until ctx ends.
func watchDocument(ctx context.Context, path string, out chan<- tea.Msg) {
	send := func(msg tea.Msg) {
		select {
		case out <- msg:
		case <-ctx.Done():
		}
	}

	err := watch.Run(ctx, path, watch.Options{
		OnError: func(err error) { send(tui.ErrMsg{Err: err}) },
	}, func() {
		src, err := readMarkdown(path)
		if err != nil {
			send(tui.ErrMsg{Err: err})
			return
		}
		send(tui.ReloadMsg{Source: src})
	})
	if err != nil {
		send(tui.ErrMsg{Err: fmt.Errorf("watching %s: %w", path, err)})
	}
}
