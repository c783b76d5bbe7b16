package main

// Notes:
// - runDoctor: we test status aggregation, the terminal check, config
//   discovery, and container detection through env overrides.
// - printDoctorResult, runDoctorCmd: we test text and JSON output.
// - checkChrome is environment dependent; we only assert it never errors.
// Tests use t.Setenv, so they cannot run in parallel.

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

// ---------------------------------------------------------------------------
// TestRunDoctor - Diagnostic aggregation
// ---------------------------------------------------------------------------

func TestRunDoctor_Terminal(t *testing.T) {
	env, _, _ := testEnv()
	r := runDoctor(env)

	if r.Terminal.Interactive {
		t.Error("Interactive = true, want false")
	}
	if r.Status == "ready" {
		t.Error("Status = ready, want a warning for the missing terminal")
	}
	if !r.System.TempWritable {
		t.Error("TempWritable = false")
	}

	env.IsTerminal = func() bool { return true }
	if r := runDoctor(env); !r.Terminal.Interactive {
		t.Error("Interactive = false with a terminal")
	}
}

func TestRunDoctor_ChromeMissingIsWarning(t *testing.T) {
	t.Setenv("ROD_BROWSER_BIN", "/nonexistent/chrome")

	env, _, _ := testEnv()
	r := runDoctor(env)

	if r.Chrome.Found {
		t.Error("Chrome.Found = true for a missing binary")
	}
	if len(r.Errors) != 0 {
		t.Errorf("Errors = %v, want none", r.Errors)
	}
}

func TestRunDoctor_Config(t *testing.T) {
	valid := writeFile(t, "ok.yaml", "sync:\n  suppressDelay: 60ms\n")
	invalid := writeFile(t, "bad.yaml", "sync:\n  suppressDelay: soon\n")

	tests := []struct {
		name      string
		path      string
		wantFound bool
		wantValid bool
	}{
		{"valid file", valid, true, true},
		{"invalid file", invalid, true, false},
		{"missing file", "/nonexistent/mdsync.yaml", false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("MDSYNC_CONFIG", tt.path)

			env, _, _ := testEnv()
			r := runDoctor(env)

			if r.Config.Found != tt.wantFound || r.Config.Valid != tt.wantValid {
				t.Errorf("Config = %+v, want found=%v valid=%v", r.Config, tt.wantFound, tt.wantValid)
			}
			if !tt.wantValid && r.Status != "errors" {
				t.Errorf("Status = %q, want errors", r.Status)
			}
		})
	}
}

func TestRunDoctor_ContainerWithoutNoSandbox(t *testing.T) {
	t.Setenv("MDSYNC_CONTAINER", "1")
	t.Setenv("ROD_NO_SANDBOX", "")

	env, _, _ := testEnv()
	r := runDoctor(env)

	if !r.Env.Container || r.Env.ContainerHint != "MDSYNC_CONTAINER=1" {
		t.Errorf("Env = %+v, want container via MDSYNC_CONTAINER", r.Env)
	}
	found := false
	for _, w := range r.Warnings {
		if strings.Contains(w, "ROD_NO_SANDBOX") {
			found = true
		}
	}
	if !found {
		t.Errorf("Warnings = %v, want a ROD_NO_SANDBOX hint", r.Warnings)
	}
}

// ---------------------------------------------------------------------------
// TestRunDoctorCmd - Output formats
// ---------------------------------------------------------------------------

func TestRunDoctorCmd_JSON(t *testing.T) {
	env, stdout, _ := testEnv()
	runDoctorCmd([]string{"--json"}, env)

	var r doctorResult
	if err := json.Unmarshal(stdout.Bytes(), &r); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, stdout.String())
	}
	if r.Env.OS == "" || r.Status == "" {
		t.Errorf("result = %+v, want os and status", r)
	}
}

func TestPrintDoctorResult(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	printDoctorResult(&buf, &doctorResult{
		Status:   "errors",
		Terminal: terminalInfo{Interactive: true, Term: "xterm-256color"},
		Chrome:   chromeInfo{Found: true, Path: "/usr/bin/chromium", Version: "Chromium 120", Sandbox: false},
		Config:   configInfo{Found: true, Path: "/etc/mdsync.yaml", Valid: true},
		Env:      envInfo{OS: "linux", Arch: "amd64", Container: true, ContainerHint: "/.dockerenv"},
		Errors:   []string{"Temp directory not writable: /tmp"},
	})

	out := buf.String()
	for _, want := range []string{
		"[OK] Interactive (TERM=xterm-256color)",
		"[OK] Found at /usr/bin/chromium",
		"Sandbox: disabled",
		"[OK] /etc/mdsync.yaml",
		"Container: detected (/.dockerenv)",
		"[ERROR] Temp directory: not writable",
		"Status: Not ready",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q\n%s", want, out)
		}
	}
}
