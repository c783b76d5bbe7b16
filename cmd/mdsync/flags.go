package main

import (
	"errors"
	"fmt"
	"io"

	flag "github.com/spf13/pflag"

	"github.com/alnah/go-mdsync/internal/config"
)

// Sentinel errors for command-line handling.
var (
	ErrUsage            = errors.New("invalid usage")
	ErrInvalidExtension = errors.New("file must have .md or .markdown extension")
	ErrReadMarkdown     = errors.New("failed to read markdown file")
	ErrInvalidPane      = errors.New("pane must be editor or preview")
)

// toleranceUnset detects if --echo-tolerance was explicitly set.
// Since 0 is a valid tolerance, we use an out-of-range sentinel.
const toleranceUnset = -1.0

// commonFlags holds flags shared across commands.
type commonFlags struct {
	config  string
	quiet   bool
	verbose bool
}

// syncFlags holds the timing overrides shared by every command that runs
// a session.
type syncFlags struct {
	suppressDelay string
	idleWindow    string
	echoTolerance float64
}

// viewFlags holds all flags for the view command.
type viewFlags struct {
	common        commonFlags
	sync          syncFlags
	theme         string
	watch         bool
	noWatch       bool
	noLineNumbers bool
	width         int
}

// replayFlags holds all flags for the replay command.
type replayFlags struct {
	common      commonFlags
	sync        syncFlags
	echoLatency string
	doc         string
	rows        int
	width       int
	json        bool
	yaml        bool
	timeline    bool
}

// calibrateFlags holds all flags for the calibrate command.
type calibrateFlags struct {
	common  commonFlags
	sync    syncFlags
	samples int
	timeout string
	pane    string
	verify  bool
	json    bool
}

// addCommonFlags adds common flags to a FlagSet.
func addCommonFlags(fs *flag.FlagSet, f *commonFlags) {
	fs.StringVarP(&f.config, "config", "c", "", "config file name or path")
	fs.BoolVarP(&f.quiet, "quiet", "q", false, "only show errors")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "show detailed progress")
}

// addSyncFlags adds the session timing flags to a FlagSet.
func addSyncFlags(fs *flag.FlagSet, f *syncFlags) {
	fs.StringVar(&f.suppressDelay, "suppress-delay", "", "echo suppression window (e.g. 50ms)")
	fs.StringVar(&f.idleWindow, "idle-window", "", "quiet period before the active pane resets (e.g. 100ms)")
	fs.Float64Var(&f.echoTolerance, "echo-tolerance", toleranceUnset, "late-echo match tolerance in pane units")
}

// mergeInto applies explicitly set sync flags over cfg. CLI wins.
func (f syncFlags) mergeInto(cfg *config.Config) {
	if f.suppressDelay != "" {
		cfg.Sync.SuppressDelay = f.suppressDelay
	}
	if f.idleWindow != "" {
		cfg.Sync.IdleWindow = f.idleWindow
	}
	if f.echoTolerance != toleranceUnset {
		cfg.Sync.EchoTolerance = f.echoTolerance
	}
}

func newFlagSet(name string, w io.Writer, usage func(io.Writer)) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(w)
	fs.Usage = func() { usage(w) }
	return fs
}

// parse wraps pflag errors so they map to ExitUsage. ErrHelp passes through.
func parse(fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return err
		}
		return fmt.Errorf("%w: %v", ErrUsage, err)
	}
	return nil
}

// viewFlagSet registers the view flags. Completion reads the same set.
func viewFlagSet(w io.Writer) (*flag.FlagSet, *viewFlags) {
	f := &viewFlags{}
	fs := newFlagSet("view", w, printViewUsage)
	addCommonFlags(fs, &f.common)
	addSyncFlags(fs, &f.sync)
	fs.StringVar(&f.theme, "theme", "", "color theme: light, dark")
	fs.BoolVarP(&f.watch, "watch", "w", false, "reload when the file changes")
	fs.BoolVar(&f.noWatch, "no-watch", false, "do not reload on change")
	fs.BoolVar(&f.noLineNumbers, "no-line-numbers", false, "hide editor line numbers")
	fs.IntVar(&f.width, "width", 0, "preview wrap width in columns (0 = pane width)")
	return fs, f
}

// parseViewFlags parses view command flags and returns positional args.
func parseViewFlags(args []string, w io.Writer) (*viewFlags, []string, error) {
	fs, f := viewFlagSet(w)
	if err := parse(fs, args); err != nil {
		return nil, nil, err
	}
	return f, fs.Args(), nil
}

func replayFlagSet(w io.Writer) (*flag.FlagSet, *replayFlags) {
	f := &replayFlags{}
	fs := newFlagSet("replay", w, printReplayUsage)
	addCommonFlags(fs, &f.common)
	addSyncFlags(fs, &f.sync)
	fs.StringVar(&f.echoLatency, "echo-latency", "", "simulated scroll-event dispatch delay (e.g. 16ms)")
	fs.StringVar(&f.doc, "doc", "", "size both panes from a markdown file")
	fs.IntVar(&f.rows, "rows", 40, "visible rows per pane with --doc")
	fs.IntVar(&f.width, "width", 80, "preview wrap width with --doc")
	fs.BoolVar(&f.json, "json", false, "print the report as JSON")
	fs.BoolVar(&f.yaml, "yaml", false, "print the report as YAML")
	fs.BoolVarP(&f.timeline, "timeline", "t", false, "include every sync event")
	return fs, f
}

// parseReplayFlags parses replay command flags and returns positional args.
func parseReplayFlags(args []string, w io.Writer) (*replayFlags, []string, error) {
	fs, f := replayFlagSet(w)
	if err := parse(fs, args); err != nil {
		return nil, nil, err
	}
	return f, fs.Args(), nil
}

func calibrateFlagSet(w io.Writer) (*flag.FlagSet, *calibrateFlags) {
	f := &calibrateFlags{}
	fs := newFlagSet("calibrate", w, printCalibrateUsage)
	addCommonFlags(fs, &f.common)
	addSyncFlags(fs, &f.sync)
	fs.IntVarP(&f.samples, "samples", "n", 0, "writes to measure (0 = config, default 50)")
	fs.StringVar(&f.timeout, "timeout", "", "overall time limit (e.g. 30s, 2m)")
	fs.StringVar(&f.pane, "pane", "preview", "pane to probe: editor, preview")
	fs.BoolVar(&f.verify, "verify", false, "drag the editor with the recommended timings and check for echoes")
	fs.BoolVar(&f.json, "json", false, "print results as JSON")
	return fs, f
}

// parseCalibrateFlags parses calibrate command flags and returns positional args.
func parseCalibrateFlags(args []string, w io.Writer) (*calibrateFlags, []string, error) {
	fs, f := calibrateFlagSet(w)
	if err := parse(fs, args); err != nil {
		return nil, nil, err
	}
	return f, fs.Args(), nil
}
