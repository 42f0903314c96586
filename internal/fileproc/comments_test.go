package fileproc

import (
	"strings"
	"testing"
)

// ---------------------------------------------------------------------------
// TestExtractHeaderComment - Leading comment blocks become prose
// ---------------------------------------------------------------------------

func TestExtractHeaderComment(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		content    string
		ext        string
		wantHeader string
		wantBody   string
	}{
		{
			name:       "go line comments",
			content:    "// Package x does y.\n// More.\n\npackage x",
			ext:        ".go",
			wantHeader: "Package x does y.\nMore.",
			wantBody:   "package x",
		},
		{
			name:       "javadoc block",
			content:    "/**\n * Utility class.\n * @author a\n */\npublic class U {}",
			ext:        ".java",
			wantHeader: "Utility class.\n@author a",
			wantBody:   "public class U {}",
		},
		{
			name:       "one line block then line comments",
			content:    "/* License: MIT */\n// see docs\nint x;",
			ext:        ".c",
			wantHeader: "License: MIT\nsee docs",
			wantBody:   "int x;",
		},
		{
			name:       "python hash",
			content:    "# Tool entry point\n#   usage: run\nimport os",
			ext:        ".py",
			wantHeader: "Tool entry point\nusage: run",
			wantBody:   "import os",
		},
		{
			name:     "shebang kept in code",
			content:  "#!/bin/sh\necho hi",
			ext:      ".sh",
			wantBody: "#!/bin/sh\necho hi",
		},
		{
			name:       "sql dashes",
			content:    "-- schema\nCREATE TABLE t();",
			ext:        ".sql",
			wantHeader: "schema",
			wantBody:   "CREATE TABLE t();",
		},
		{
			name:     "leading blank line",
			content:  "\n// late comment\ncode",
			ext:      ".go",
			wantBody: "\n// late comment\ncode",
		},
		{
			name:     "no comment",
			content:  "package main",
			ext:      ".go",
			wantBody: "package main",
		},
		{
			name:     "unsupported language",
			content:  "// not parsed\nfn main() {}",
			ext:      ".rs",
			wantBody: "// not parsed\nfn main() {}",
		},
		{
			name:       "whole file is comment",
			content:    "# only",
			ext:        ".yaml",
			wantHeader: "only",
			wantBody:   "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			header, body := ExtractHeaderComment(tt.content, tt.ext)
			if header != tt.wantHeader {
				t.Errorf("header = %q, want %q", header, tt.wantHeader)
			}
			if body != tt.wantBody {
				t.Errorf("body = %q, want %q", body, tt.wantBody)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestBreakLongLines - Array and string reformatting
// ---------------------------------------------------------------------------

func TestBreakLongLines_Arrays(t *testing.T) {
	t.Parallel()

	items := make([]string, 30)
	for i := range items {
		items[i] = `"item"`
	}
	line := "    values = [" + strings.Join(items, ", ") + "]"

	got := BreakLongLines(line, LongLineColumn)
	lines := strings.Split(got, "\n")
	if len(lines) < 2 {
		t.Fatalf("expected line to be broken, got %q", got)
	}
	for _, l := range lines {
		if len(l) > LongLineColumn {
			t.Errorf("line of %d chars exceeds %d: %q", len(l), LongLineColumn, l)
		}
		if !strings.HasPrefix(l, "    ") {
			t.Errorf("continuation lost indent: %q", l)
		}
	}
	if strings.Count(got, `"item"`) != 30 {
		t.Error("items lost while breaking")
	}
}

func TestBreakLongLines_Strings(t *testing.T) {
	t.Parallel()

	long := strings.Repeat("s", 170)
	line := `  msg := "` + long + `"`

	got := BreakLongLines(line, LongLineColumn)
	want := `  msg := "` + long[:80] + "\"\\\n  \"" + long[80:160] + "\"\\\n  \"" + long[160:] + `"`
	if got != want {
		t.Errorf("BreakLongLines() =\n%s\nwant\n%s", got, want)
	}
}

func TestBreakLongLines_Untouched(t *testing.T) {
	t.Parallel()

	short := "x := 1"
	plain := strings.Repeat("y", 120)
	shortString := `s := "` + strings.Repeat("z", 50) + `" + ` + strings.Repeat("w", 60)

	for _, in := range []string{short, plain, shortString} {
		if got := BreakLongLines(in, LongLineColumn); got != in {
			t.Errorf("BreakLongLines(%q) = %q, want unchanged", in, got)
		}
	}
}
