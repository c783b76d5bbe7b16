package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	flag "github.com/spf13/pflag"
)

// Shell represents a supported shell for completion generation.
type Shell string

// Supported shells for completion.
const (
	ShellBash Shell = "bash"
	ShellZsh  Shell = "zsh"
	ShellFish Shell = "fish"
)

// ErrUnsupportedShell is returned when an unknown shell is requested.
var ErrUnsupportedShell = errors.New("unsupported shell")

// flagType represents the completion type for a flag.
type flagType int

const (
	flagString flagType = iota // default
	flagBool
	flagInt
	flagFloat
	flagEnum // has predefined values
	flagFile // file with glob pattern
)

// flagDef describes a flag for completion purposes.
type flagDef struct {
	Long     string   // --config
	Short    string   // -c (empty if none)
	Type     flagType // completion type
	Desc     string   // help text
	Values   []string // for enum flags
	FileGlob string   // for file flags
}

// commandDef describes a command for completion.
type commandDef struct {
	Name        string
	Desc        string
	Flags       []flagDef
	TakesFiles  bool   // accepts file arguments
	FilePattern string // glob for file arguments (e.g., "*.md")
}

// completionMeta holds completion-specific metadata for flags.
// Flag names, types, and descriptions come from the FlagSet.
type completionMeta struct {
	Values   []string // enum values
	FileGlob string   // file glob pattern
}

// flagCompletionMeta maps flag names to their completion metadata.
var flagCompletionMeta = map[string]completionMeta{
	"theme": {Values: []string{"light", "dark"}},
	"pane":  {Values: []string{"editor", "preview"}},

	"config": {FileGlob: "*.yaml,*.yml"},
	"doc":    {FileGlob: "*.md,*.markdown"},
}

// extractFlagsFromFlagSet extracts flag definitions from a pflag.FlagSet.
// Enriches with completion metadata from flagCompletionMeta.
func extractFlagsFromFlagSet(fs *flag.FlagSet) []flagDef {
	var flags []flagDef

	fs.VisitAll(func(f *flag.Flag) {
		fd := flagDef{
			Long:  f.Name,
			Short: f.Shorthand,
			Desc:  f.Usage,
		}

		switch f.Value.Type() {
		case "bool":
			fd.Type = flagBool
		case "int", "int8", "int16", "int32", "int64", "uint", "uint8", "uint16", "uint32", "uint64":
			fd.Type = flagInt
		case "float32", "float64":
			fd.Type = flagFloat
		default:
			fd.Type = flagString
		}

		if meta, ok := flagCompletionMeta[f.Name]; ok {
			if len(meta.Values) > 0 {
				fd.Type = flagEnum
				fd.Values = meta.Values
			} else if meta.FileGlob != "" {
				fd.Type = flagFile
				fd.FileGlob = meta.FileGlob
			}
		}

		flags = append(flags, fd)
	})

	return flags
}

// getCommands returns the command registry for completion.
// Flags are extracted from the actual FlagSets.
func getCommands() []commandDef {
	viewFS, _ := viewFlagSet(io.Discard)
	replayFS, _ := replayFlagSet(io.Discard)
	calibrateFS, _ := calibrateFlagSet(io.Discard)

	return []commandDef{
		{
			Name:        "view",
			Desc:        "Show a markdown file in linked editor and preview panes",
			Flags:       extractFlagsFromFlagSet(viewFS),
			TakesFiles:  true,
			FilePattern: "*.md,*.markdown",
		},
		{
			Name:        "replay",
			Desc:        "Replay a scroll trace and check for feedback loops",
			Flags:       extractFlagsFromFlagSet(replayFS),
			TakesFiles:  true,
			FilePattern: "*.yaml,*.yml",
		},
		{
			Name:        "calibrate",
			Desc:        "Measure browser scroll-event latency and recommend timings",
			Flags:       extractFlagsFromFlagSet(calibrateFS),
			TakesFiles:  true,
			FilePattern: "*.md,*.markdown",
		},
		{
			Name:  "doctor",
			Desc:  "Check system configuration",
			Flags: []flagDef{{Long: "json", Type: flagBool, Desc: "output in JSON format"}},
		},
		{
			Name: "completion",
			Desc: "Generate shell completion script",
		},
		{
			Name: "version",
			Desc: "Show version information",
		},
		{
			Name: "help",
			Desc: "Show help for a command",
		},
	}
}

// GenerateCompletion writes shell completion script to w.
// Returns error if shell is unsupported or write fails.
func GenerateCompletion(w io.Writer, shell Shell) error {
	switch shell {
	case ShellBash:
		return generateBash(w)
	case ShellZsh:
		return generateZsh(w)
	case ShellFish:
		return generateFish(w)
	default:
		return fmt.Errorf("%w: %q (supported: bash, zsh, fish)", ErrUnsupportedShell, shell)
	}
}

func commandNames(cmds []commandDef) []string {
	names := make([]string, len(cmds))
	for i, c := range cmds {
		names[i] = c.Name
	}
	return names
}

// bashGlob turns "*.md,*.markdown" into the extglob "@(md|markdown)".
func bashGlob(globs string) string {
	var exts []string
	for _, g := range strings.Split(globs, ",") {
		exts = append(exts, strings.TrimPrefix(strings.TrimSpace(g), "*."))
	}
	return "@(" + strings.Join(exts, "|") + ")"
}

func generateBash(w io.Writer) error {
	cmds := getCommands()
	var b strings.Builder

	b.WriteString("# bash completion for mdsync\n")
	b.WriteString("_mdsync() {\n")
	b.WriteString("    local cur prev cmd\n")
	b.WriteString("    cur=\"${COMP_WORDS[COMP_CWORD]}\"\n")
	b.WriteString("    prev=\"${COMP_WORDS[COMP_CWORD-1]}\"\n")
	b.WriteString("    cmd=\"${COMP_WORDS[1]}\"\n\n")
	b.WriteString("    if [[ ${COMP_CWORD} -eq 1 ]]; then\n")
	fmt.Fprintf(&b, "        COMPREPLY=($(compgen -W %q -- \"$cur\"))\n", strings.Join(commandNames(cmds), " "))
	b.WriteString("        return\n")
	b.WriteString("    fi\n\n")
	b.WriteString("    case \"$cmd\" in\n")
	for _, c := range cmds {
		fmt.Fprintf(&b, "    %s)\n", c.Name)
		var names []string
		var valueCases strings.Builder
		for _, f := range c.Flags {
			names = append(names, "--"+f.Long)
			pattern := "--" + f.Long
			if f.Short != "" {
				names = append(names, "-"+f.Short)
				pattern += "|-" + f.Short
			}
			switch f.Type {
			case flagEnum:
				fmt.Fprintf(&valueCases, "        %s) COMPREPLY=($(compgen -W %q -- \"$cur\")); return ;;\n",
					pattern, strings.Join(f.Values, " "))
			case flagFile:
				fmt.Fprintf(&valueCases, "        %s) COMPREPLY=($(compgen -f -X '!*.%s' -- \"$cur\")); return ;;\n",
					pattern, bashGlob(f.FileGlob))
			case flagString, flagInt, flagFloat:
				fmt.Fprintf(&valueCases, "        %s) return ;;\n", pattern)
			}
		}
		if c.Name == "completion" {
			b.WriteString("        COMPREPLY=($(compgen -W \"bash zsh fish\" -- \"$cur\"))\n")
			b.WriteString("        ;;\n")
			continue
		}
		if c.Name == "help" {
			fmt.Fprintf(&b, "        COMPREPLY=($(compgen -W %q -- \"$cur\"))\n", strings.Join(commandNames(cmds), " "))
			b.WriteString("        ;;\n")
			continue
		}
		if valueCases.Len() > 0 {
			b.WriteString("        case \"$prev\" in\n")
			b.WriteString(valueCases.String())
			b.WriteString("        esac\n")
		}
		if len(names) > 0 {
			b.WriteString("        if [[ \"$cur\" == -* ]]; then\n")
			fmt.Fprintf(&b, "            COMPREPLY=($(compgen -W %q -- \"$cur\"))\n", strings.Join(names, " "))
			b.WriteString("            return\n")
			b.WriteString("        fi\n")
		}
		if c.TakesFiles {
			fmt.Fprintf(&b, "        COMPREPLY=($(compgen -f -X '!*.%s' -- \"$cur\"))\n", bashGlob(c.FilePattern))
		}
		b.WriteString("        ;;\n")
	}
	b.WriteString("    esac\n")
	b.WriteString("}\n\n")
	b.WriteString("shopt -s extglob\n")
	b.WriteString("complete -o filenames -F _mdsync mdsync\n")

	_, err := io.WriteString(w, b.String())
	return err
}

// zshEscape escapes text for use inside a single-quoted _arguments spec.
func zshEscape(s string) string {
	s = strings.ReplaceAll(s, "'", `'\''`)
	s = strings.ReplaceAll(s, "[", `\[`)
	s = strings.ReplaceAll(s, "]", `\]`)
	s = strings.ReplaceAll(s, ":", `\:`)
	return s
}

func zshFileGlob(globs string) string {
	parts := strings.Split(globs, ",")
	if len(parts) == 1 {
		return strings.TrimSpace(parts[0])
	}
	var exts []string
	for _, g := range parts {
		exts = append(exts, strings.TrimPrefix(strings.TrimSpace(g), "*."))
	}
	return "*.(" + strings.Join(exts, "|") + ")"
}

func zshAction(f flagDef) string {
	switch f.Type {
	case flagBool:
		return ""
	case flagEnum:
		return fmt.Sprintf(":%s:(%s)", f.Long, strings.Join(f.Values, " "))
	case flagFile:
		return fmt.Sprintf(":%s:_files -g \"%s\"", f.Long, zshFileGlob(f.FileGlob))
	default:
		return ":" + f.Long + ": "
	}
}

func generateZsh(w io.Writer) error {
	cmds := getCommands()
	var b strings.Builder

	b.WriteString("#compdef mdsync\n\n")
	b.WriteString("_mdsync() {\n")
	b.WriteString("    local -a commands\n")
	b.WriteString("    commands=(\n")
	for _, c := range cmds {
		fmt.Fprintf(&b, "        '%s:%s'\n", c.Name, zshEscape(c.Desc))
	}
	b.WriteString("    )\n\n")
	b.WriteString("    if (( CURRENT == 2 )); then\n")
	b.WriteString("        _describe 'command' commands\n")
	b.WriteString("        return\n")
	b.WriteString("    fi\n\n")
	b.WriteString("    case \"${words[2]}\" in\n")
	for _, c := range cmds {
		fmt.Fprintf(&b, "    %s)\n", c.Name)
		switch c.Name {
		case "completion":
			b.WriteString("        _values 'shell' bash zsh fish\n")
			b.WriteString("        ;;\n")
			continue
		case "help":
			b.WriteString("        _describe 'command' commands\n")
			b.WriteString("        ;;\n")
			continue
		}
		b.WriteString("        _arguments -s \\\n")
		for _, f := range c.Flags {
			spec := fmt.Sprintf("[%s]%s", zshEscape(f.Desc), zshAction(f))
			if f.Short != "" {
				fmt.Fprintf(&b, "            '(-%s --%s)'{-%s,--%s}'%s' \\\n", f.Short, f.Long, f.Short, f.Long, spec)
			} else {
				fmt.Fprintf(&b, "            '--%s%s' \\\n", f.Long, spec)
			}
		}
		if c.TakesFiles {
			fmt.Fprintf(&b, "            '*:file:_files -g \"%s\"'\n", zshFileGlob(c.FilePattern))
		} else {
			b.WriteString("            '*: :'\n")
		}
		b.WriteString("        ;;\n")
	}
	b.WriteString("    esac\n")
	b.WriteString("}\n\n")
	b.WriteString("compdef _mdsync mdsync\n")

	_, err := io.WriteString(w, b.String())
	return err
}

// fishEscape escapes text for a single-quoted fish string.
func fishEscape(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	return strings.ReplaceAll(s, "'", `\'`)
}

func generateFish(w io.Writer) error {
	cmds := getCommands()
	var b strings.Builder

	b.WriteString("# fish completion for mdsync\n")
	b.WriteString("complete -c mdsync -f\n\n")

	names := strings.Join(commandNames(cmds), " ")
	for _, c := range cmds {
		fmt.Fprintf(&b, "complete -c mdsync -n 'not __fish_seen_subcommand_from %s' -a %s -d '%s'\n",
			names, c.Name, fishEscape(c.Desc))
	}
	b.WriteString("\n")

	for _, c := range cmds {
		cond := "__fish_seen_subcommand_from " + c.Name
		switch c.Name {
		case "completion":
			fmt.Fprintf(&b, "complete -c mdsync -n '%s' -a 'bash zsh fish'\n", cond)
			continue
		case "help":
			fmt.Fprintf(&b, "complete -c mdsync -n '%s' -a '%s'\n", cond, names)
			continue
		}
		for _, f := range c.Flags {
			line := fmt.Sprintf("complete -c mdsync -n '%s' -l %s", cond, f.Long)
			if f.Short != "" {
				line += " -s " + f.Short
			}
			switch f.Type {
			case flagEnum:
				line += fmt.Sprintf(" -x -a '%s'", strings.Join(f.Values, " "))
			case flagFile:
				line += " -r -F"
			case flagString, flagInt, flagFloat:
				line += " -x"
			}
			line += fmt.Sprintf(" -d '%s'\n", fishEscape(f.Desc))
			b.WriteString(line)
		}
		if c.TakesFiles {
			fmt.Fprintf(&b, "complete -c mdsync -n '%s' -F\n", cond)
		}
		b.WriteString("\n")
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// runCompletion handles the completion command.
func runCompletion(args []string, env *Environment) error {
	if len(args) == 0 {
		printCompletionUsage(env.Stdout)
		return nil
	}

	shell := Shell(args[0])
	return GenerateCompletion(env.Stdout, shell)
}
