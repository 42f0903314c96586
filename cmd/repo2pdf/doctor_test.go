package main

// Notes:
// - Tool detection goes through Environment.LookPath and Environment.Runner,
//   so no real binaries are needed.
// - isContainer is exercised through REPO2PDF_CONTAINER only; /.dockerenv
//   depends on the host.

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
)

// ---------------------------------------------------------------------------
// TestRunDoctor - Tool detection and status
// ---------------------------------------------------------------------------

func TestRunDoctor(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		missing    []string
		wantStatus string
		wantErrs   int
		wantWarns  int
	}{
		{name: "all present", wantStatus: "ready"},
		{name: "inkscape missing", missing: []string{"inkscape"}, wantStatus: "warnings", wantWarns: 1},
		{name: "pandoc missing", missing: []string{"pandoc"}, wantStatus: "errors", wantErrs: 1},
		{name: "nothing installed", missing: []string{"pandoc", "xelatex", "inkscape"}, wantStatus: "errors", wantErrs: 2, wantWarns: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			te := newTestEnv(t)
			for _, name := range tt.missing {
				te.tools[name] = false
			}

			r := runDoctor(context.Background(), te.Environment)
			if r.Status != tt.wantStatus {
				t.Errorf("Status = %q, want %q (errors %v)", r.Status, tt.wantStatus, r.Errors)
			}
			if len(r.Errors) != tt.wantErrs || len(r.Warnings) != tt.wantWarns {
				t.Errorf("errors=%v warnings=%v", r.Errors, r.Warnings)
			}
			if len(r.Tools) != len(doctorTools) {
				t.Fatalf("got %d tools, want %d", len(r.Tools), len(doctorTools))
			}
		})
	}
}

func TestRunDoctor_Versions(t *testing.T) {
	t.Parallel()

	te := newTestEnv(t)
	delete(te.runner.versions, "inkscape")

	r := runDoctor(context.Background(), te.Environment)
	want := map[string]string{
		"pandoc":   "pandoc 3.1.11",
		"xelatex":  "XeTeX 3.141592653-2.6-0.999995 (TeX Live 2023)",
		"inkscape": "",
	}
	for _, tool := range r.Tools {
		if !tool.Found {
			t.Errorf("%s not found", tool.Name)
		}
		if tool.Version != want[tool.Name] {
			t.Errorf("%s version = %q, want %q", tool.Name, tool.Version, want[tool.Name])
		}
	}
}

// ---------------------------------------------------------------------------
// TestIsContainer - Explicit container marker
// ---------------------------------------------------------------------------

func TestIsContainer(t *testing.T) {
	t.Setenv("REPO2PDF_CONTAINER", "1")

	ok, hint := isContainer()
	if !ok || hint != "REPO2PDF_CONTAINER=1" {
		t.Errorf("isContainer() = %v, %q", ok, hint)
	}
}

// ---------------------------------------------------------------------------
// TestRunDoctorCmd - Output formats and exit codes
// ---------------------------------------------------------------------------

func TestRunDoctorCmd(t *testing.T) {
	t.Parallel()

	t.Run("text", func(t *testing.T) {
		t.Parallel()

		te := newTestEnv(t)
		te.tools["inkscape"] = false
		if code := runDoctorCmd(nil, te.Environment); code != ExitSuccess {
			t.Errorf("exit = %d, want %d", code, ExitSuccess)
		}
		out := te.stdout.String()
		for _, want := range []string{
			"repo2pdf doctor",
			"[OK] pandoc: pandoc 3.1.11",
			"[WARN] inkscape: not found (optional)",
			"Status: Ready with warnings",
		} {
			if !strings.Contains(out, want) {
				t.Errorf("output missing %q:\n%s", want, out)
			}
		}
	})

	t.Run("json", func(t *testing.T) {
		t.Parallel()

		te := newTestEnv(t)
		te.tools["xelatex"] = false
		if code := runDoctorCmd([]string{"--json"}, te.Environment); code != ExitGeneral {
			t.Errorf("exit = %d, want %d", code, ExitGeneral)
		}
		var r doctorResult
		if err := json.Unmarshal(te.stdout.Bytes(), &r); err != nil {
			t.Fatalf("invalid JSON: %v\n%s", err, te.stdout.String())
		}
		if r.Status != "errors" || len(r.Errors) != 1 || !strings.Contains(r.Errors[0], "xelatex not found") {
			t.Errorf("result = %+v", r)
		}
	})

	t.Run("unknown flag", func(t *testing.T) {
		t.Parallel()

		te := newTestEnv(t)
		if code := runDoctorCmd([]string{"--yaml"}, te.Environment); code != ExitUsage {
			t.Errorf("exit = %d, want %d", code, ExitUsage)
		}
	})
}

func TestPrintDoctorResult(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	printDoctorResult(&buf, &doctorResult{
		Status: "errors",
		Tools:  []toolInfo{{Name: "pandoc", Required: true}},
		Env:    envInfo{OS: "linux", Arch: "amd64", Container: true, ContainerHint: "/.dockerenv"},
		Errors: []string{"pandoc not found"},
	})

	out := buf.String()
	for _, want := range []string{
		"[ERROR] pandoc: not found",
		"Container: detected (/.dockerenv)",
		"[ERROR] Temp directory: not writable",
		"Status: Not ready",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}
