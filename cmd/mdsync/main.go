package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	flag "github.com/spf13/pflag"
	"go.uber.org/automaxprocs/maxprocs"
)

// Version is set at build time via ldflags.
var Version = "dev"

func main() {
	// Configure GOMAXPROCS with conditional logging
	// Error ignored: maxprocs.Set only fails if GOMAXPROCS env is invalid,
	// in which case Go runtime defaults apply and the program continues safely.
	if hasVerboseFlag(os.Args) {
		_, _ = maxprocs.Set(maxprocs.Logger(func(format string, args ...interface{}) {
			fmt.Fprintf(os.Stderr, format+"\n", args...)
		}))
	} else {
		_, _ = maxprocs.Set(maxprocs.Logger(func(string, ...interface{}) {}))
	}

	os.Exit(runMain(os.Args, DefaultEnv()))
}

// hasVerboseFlag scans raw arguments before any FlagSet exists.
func hasVerboseFlag(args []string) bool {
	for _, a := range args[1:] {
		if a == "--" {
			break
		}
		if a == "-v" || a == "--verbose" {
			return true
		}
	}
	return false
}

// commands lists the subcommand names.
var commands = []string{"view", "replay", "calibrate", "doctor", "completion", "version", "help"}

// isCommand reports whether arg names a subcommand.
func isCommand(arg string) bool {
	for _, c := range commands {
		if arg == c {
			return true
		}
	}
	return false
}

// looksLikeMarkdown lets "mdsync notes.md" stand for "mdsync view notes.md".
func looksLikeMarkdown(arg string) bool {
	switch strings.ToLower(filepath.Ext(arg)) {
	case ".md", ".markdown":
		return true
	}
	return false
}

// runMain dispatches the command in args and returns the exit code.
func runMain(args []string, env *Environment) int {
	warnUnknownEnvVars(env.Stderr)

	if len(args) < 2 {
		printUsage(env.Stderr)
		return ExitUsage
	}

	ctx, stop := notifyContext(context.Background())
	defer stop()

	cmd, rest := args[1], args[2:]
	var err error
	switch {
	case cmd == "view":
		err = runView(ctx, rest, env)
	case cmd == "replay":
		err = runReplay(ctx, rest, env)
	case cmd == "calibrate":
		err = runCalibrate(ctx, rest, env)
	case cmd == "doctor":
		return runDoctorCmd(rest, env)
	case cmd == "completion":
		err = runCompletion(rest, env)
	case cmd == "version":
		fmt.Fprintf(env.Stdout, "mdsync %s\n", Version)
		return ExitSuccess
	case cmd == "help" || cmd == "-h" || cmd == "--help":
		return runHelp(rest, env)
	case looksLikeMarkdown(cmd):
		err = runView(ctx, args[1:], env)
	default:
		fmt.Fprintf(env.Stderr, "unknown command: %s\n\n", cmd)
		printUsage(env.Stderr)
		return ExitUsage
	}

	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return ExitSuccess
		}
		fmt.Fprintf(env.Stderr, "error: %v\n", err)
		return exitCodeFor(err)
	}
	return ExitSuccess
}
