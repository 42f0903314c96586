package main

import (
	"bytes"
	"strings"
	"testing"
)

// ---------------------------------------------------------------------------
// TestPrintUsage - Usage text lists every command
// ---------------------------------------------------------------------------

func TestPrintUsage(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	printUsage(&buf)

	for name := range commands {
		if !strings.Contains(buf.String(), "  "+name) {
			t.Errorf("usage missing command %q", name)
		}
	}
}

// ---------------------------------------------------------------------------
// TestPrintConvertUsage - Help stays in sync with the FlagSet
// ---------------------------------------------------------------------------

func TestPrintConvertUsage(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	printConvertUsage(&buf)
	out := buf.String()

	for _, f := range extractFlagsFromFlagSet(buildConvertFlagSet(&convertFlags{})) {
		if !strings.Contains(out, "--"+f.Long) {
			t.Errorf("convert usage missing --%s", f.Long)
		}
		if f.Short != "" && !strings.Contains(out, "-"+f.Short+", --"+f.Long) {
			t.Errorf("convert usage missing -%s, --%s", f.Short, f.Long)
		}
	}
}

// ---------------------------------------------------------------------------
// TestRunHelp - Per-command help
// ---------------------------------------------------------------------------

func TestRunHelp(t *testing.T) {
	t.Parallel()

	tests := []struct {
		args     []string
		wantCode int
		want     string
	}{
		{nil, ExitSuccess, "Usage: repo2pdf <command>"},
		{[]string{"convert"}, ExitSuccess, "Usage: repo2pdf convert"},
		{[]string{"doctor"}, ExitSuccess, "Usage: repo2pdf doctor"},
		{[]string{"completion"}, ExitSuccess, "Usage: repo2pdf completion"},
		{[]string{"version"}, ExitSuccess, "Usage: repo2pdf version"},
		{[]string{"help"}, ExitSuccess, "Usage: repo2pdf help"},
	}
	for _, tt := range tests {
		te := newTestEnv(t)
		if code := runHelp(tt.args, te.Environment); code != tt.wantCode {
			t.Errorf("runHelp(%v) = %d, want %d", tt.args, code, tt.wantCode)
		}
		if !strings.Contains(te.stdout.String(), tt.want) {
			t.Errorf("runHelp(%v) output missing %q", tt.args, tt.want)
		}
	}
}
