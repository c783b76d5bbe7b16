package main

import (
	"fmt"
	"io"
)

// printUsage prints the main usage message.
func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: mdsync <command> [flags] [args]")
	fmt.Fprintln(w, "       mdsync <file.md> [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  view        Show a markdown file in linked editor and preview panes")
	fmt.Fprintln(w, "  replay      Replay a scroll trace and check for feedback loops")
	fmt.Fprintln(w, "  calibrate   Measure browser scroll-event latency and recommend timings")
	fmt.Fprintln(w, "  doctor      Check system configuration")
	fmt.Fprintln(w, "  completion  Generate shell completion script")
	fmt.Fprintln(w, "  version     Show version information")
	fmt.Fprintln(w, "  help        Show help for a command")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Run 'mdsync help <command>' for details on a specific command.")
}

func printCommonUsage(w io.Writer) {
	fmt.Fprintln(w, "Sync timing:")
	fmt.Fprintln(w, "      --suppress-delay <d>  Echo suppression window (default 50ms)")
	fmt.Fprintln(w, "      --idle-window <d>     Quiet period before the active pane resets (default 100ms)")
	fmt.Fprintln(w, "      --echo-tolerance <f>  Late-echo match tolerance in pane units (default 0.5)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Output Control:")
	fmt.Fprintln(w, "  -c, --config <name>       Config file name or path")
	fmt.Fprintln(w, "  -q, --quiet               Only show errors")
	fmt.Fprintln(w, "  -v, --verbose             Show detailed progress")
}

// printViewUsage prints usage for the view command.
func printViewUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: mdsync view <file.md> [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Show the raw source and its rendered preview side by side. Scrolling")
	fmt.Fprintln(w, "either pane moves the other to the same relative position.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Display:")
	fmt.Fprintln(w, "      --theme <s>           Color theme: light, dark")
	fmt.Fprintln(w, "      --width <n>           Preview wrap width in columns (0 = pane width)")
	fmt.Fprintln(w, "      --no-line-numbers     Hide editor line numbers")
	fmt.Fprintln(w, "  -w, --watch               Reload when the file changes")
	fmt.Fprintln(w, "      --no-watch            Do not reload on change")
	fmt.Fprintln(w)
	printCommonUsage(w)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Keys:")
	fmt.Fprintln(w, "  j/k, arrows, pgup/pgdn, g/G   Scroll the focused pane")
	fmt.Fprintln(w, "  mouse wheel                   Scroll the pane under the pointer")
	fmt.Fprintln(w, "  tab                           Switch focus")
	fmt.Fprintln(w, "  t                             Toggle theme")
	fmt.Fprintln(w, "  q                             Quit")
}

// printReplayUsage prints usage for the replay command.
func printReplayUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: mdsync replay <trace.yaml> [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Drive a session from a recorded scroll trace on a virtual clock and")
	fmt.Fprintln(w, "report every write, echo, and suppressed report. Exits 1 if a pane")
	fmt.Fprintln(w, "reported the echo of a programmatic write.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Simulation:")
	fmt.Fprintln(w, "      --echo-latency <d>    Scroll-event dispatch delay (default 16ms)")
	fmt.Fprintln(w, "      --doc <file.md>       Size both panes from a markdown file")
	fmt.Fprintln(w, "      --rows <n>            Visible rows per pane with --doc (default 40)")
	fmt.Fprintln(w, "      --width <n>           Preview wrap width with --doc (default 80)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Report:")
	fmt.Fprintln(w, "  -t, --timeline            Include every sync event")
	fmt.Fprintln(w, "      --json                Print the report as JSON")
	fmt.Fprintln(w, "      --yaml                Print the report as YAML")
	fmt.Fprintln(w)
	printCommonUsage(w)
}

// printCalibrateUsage prints usage for the calibrate command.
func printCalibrateUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: mdsync calibrate <file.md> [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Open the file in headless Chrome, write scrollTop repeatedly, and time")
	fmt.Fprintln(w, "each resulting scroll event. Prints latency percentiles and a sync")
	fmt.Fprintln(w, "section to paste into the config file.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Measurement:")
	fmt.Fprintln(w, "  -n, --samples <n>         Writes to measure (default 50)")
	fmt.Fprintln(w, "      --pane <s>            Pane to probe: editor, preview (default preview)")
	fmt.Fprintln(w, "      --timeout <d>         Overall time limit (default 30s)")
	fmt.Fprintln(w, "      --verify              Drag the editor with the recommended timings")
	fmt.Fprintln(w, "      --json                Print results as JSON")
	fmt.Fprintln(w)
	printCommonUsage(w)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Environment:")
	fmt.Fprintln(w, "  ROD_BROWSER_BIN           Chrome binary to use")
	fmt.Fprintln(w, "  ROD_NO_SANDBOX=1          Run Chrome without its sandbox")
}

// printDoctorUsage prints usage for the doctor command.
func printDoctorUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: mdsync doctor [--json]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Check the terminal, Chrome, config file, and temp directory.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Flags:")
	fmt.Fprintln(w, "      --json                Output in JSON format")
}

// printCompletionUsage prints help for the completion command.
func printCompletionUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: mdsync completion <shell>")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Generate shell completion script for the specified shell.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Supported shells:")
	fmt.Fprintln(w, "  bash        Bash completion script")
	fmt.Fprintln(w, "  zsh         Zsh completion script")
	fmt.Fprintln(w, "  fish        Fish completion script")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Installation:")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "  Bash:")
	fmt.Fprintln(w, "    # Add to ~/.bashrc:")
	fmt.Fprintln(w, "    eval \"$(mdsync completion bash)\"")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "  Zsh:")
	fmt.Fprintln(w, "    # Add to ~/.zshrc (before compinit):")
	fmt.Fprintln(w, "    eval \"$(mdsync completion zsh)\"")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "  Fish:")
	fmt.Fprintln(w, "    mdsync completion fish > ~/.config/fish/completions/mdsync.fish")
}

// runHelp prints help for a specific command.
func runHelp(args []string, env *Environment) int {
	if len(args) == 0 {
		printUsage(env.Stdout)
		return ExitSuccess
	}

	switch args[0] {
	case "view":
		printViewUsage(env.Stdout)
	case "replay":
		printReplayUsage(env.Stdout)
	case "calibrate":
		printCalibrateUsage(env.Stdout)
	case "doctor":
		printDoctorUsage(env.Stdout)
	case "completion":
		printCompletionUsage(env.Stdout)
	case "version":
		fmt.Fprintln(env.Stdout, "Usage: mdsync version")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show version information.")
	case "help":
		fmt.Fprintln(env.Stdout, "Usage: mdsync help [command]")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show help for a command.")
	default:
		fmt.Fprintf(env.Stderr, "Unknown command: %s\n", args[0])
		printUsage(env.Stderr)
		return ExitUsage
	}
	return ExitSuccess
}
