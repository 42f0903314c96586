package pipeline

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFiles(t *testing.T, root string, files ...string) {
	t.Helper()
	for _, f := range files {
		p := filepath.Join(root, filepath.FromSlash(f))
		if err := os.MkdirAll(filepath.Dir(p), 0o750); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(p, []byte(f), 0o600); err != nil {
			t.Fatal(err)
		}
	}
}

// ---------------------------------------------------------------------------
// TestResolveImagePath - Candidate order and containment
// ---------------------------------------------------------------------------

func TestResolveImagePath(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeFiles(t, root,
		"docs/guide.md",
		"docs/img/local.png",
		"img/root.png",
		"img/local.png",
		"both.svg",
		"docs/both.svg",
	)
	source := filepath.Join(root, "docs", "guide.md")

	tests := []struct {
		name string
		ref  string
		want string // relative to root, "" for not found
	}{
		{name: "next to source", ref: "img/local.png", want: "docs/img/local.png"},
		{name: "source dir wins over root", ref: "both.svg", want: "docs/both.svg"},
		{name: "root fallback", ref: "img/root.png", want: "img/root.png"},
		{name: "leading slash is root", ref: "/img/root.png", want: "img/root.png"},
		{name: "dot slash", ref: "./img/local.png", want: "docs/img/local.png"},
		{name: "parent", ref: "../img/root.png", want: "img/root.png"},
		{name: "escaping root stripped", ref: "../../img/root.png", want: "img/root.png"},
		{name: "missing", ref: "img/nope.png"},
		{name: "empty", ref: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, ok := ResolveImagePath(tt.ref, source, root)
			if tt.want == "" {
				if ok {
					t.Errorf("ResolveImagePath(%q) = %q, want not found", tt.ref, got)
				}
				return
			}
			if !ok {
				t.Fatalf("ResolveImagePath(%q) not found, want %q", tt.ref, tt.want)
			}
			if want := filepath.Join(root, filepath.FromSlash(tt.want)); got != want {
				t.Errorf("ResolveImagePath(%q) = %q, want %q", tt.ref, got, want)
			}
		})
	}
}

func TestResolveImagePath_OutsideRoot(t *testing.T) {
	t.Parallel()

	parent := t.TempDir()
	root := filepath.Join(parent, "repo")
	writeFiles(t, parent, "secret.png", "repo/README.md")

	if got, ok := ResolveImagePath("../secret.png", filepath.Join(root, "README.md"), root); ok {
		t.Errorf("ResolveImagePath() = %q, want refusal outside root", got)
	}
}

func TestResolveImagePath_RequiresAnchors(t *testing.T) {
	t.Parallel()

	if _, ok := ResolveImagePath("a.png", "", "/tmp"); ok {
		t.Error("want not found without source file")
	}
	if _, ok := ResolveImagePath("a.png", "/tmp/x.md", ""); ok {
		t.Error("want not found without repo root")
	}
}

func TestResolveImage_ReportsAmbiguity(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeFiles(t, root, "docs/a.md", "docs/x.png", "x.png")

	found, others := resolveImage("x.png", filepath.Join(root, "docs", "a.md"), root)
	if found != filepath.Join(root, "docs", "x.png") {
		t.Errorf("found = %q", found)
	}
	if len(others) != 1 || others[0] != filepath.Join(root, "x.png") {
		t.Errorf("others = %v, want [root x.png]", others)
	}
}

func TestTargetClassifiers(t *testing.T) {
	t.Parallel()

	svg := map[string]bool{
		"a.svg": true, "A.SVG": true, "b.svgz": true, "https://x.io/b.svg?v=2": true,
		"a.png": false, "svg": false, "a.svg.png": false,
	}
	for in, want := range svg {
		if got := isSVGTarget(in); got != want {
			t.Errorf("isSVGTarget(%q) = %v, want %v", in, got, want)
		}
	}

	local := map[string]bool{
		"a.png": true, "./a.png": true, "/abs/a.png": true,
		"#anchor": false, "data:image/png;base64,AAA": false, "//cdn.io/a.png": false,
		"mailto:x@y": false, "": false,
	}
	for in, want := range local {
		if got := isLocalTarget(in); got != want {
			t.Errorf("isLocalTarget(%q) = %v, want %v", in, got, want)
		}
	}
}
