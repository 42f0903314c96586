package main

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/alnah/go-repo2pdf/internal/config"
)

// ---------------------------------------------------------------------------
// Test Infrastructure - Fake environment
// ---------------------------------------------------------------------------

var fixedNow = time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC)

// fakeRunner answers --version probes and stands in for pandoc, writing
// a stub PDF wherever -o points.
type fakeRunner struct {
	mu       sync.Mutex
	calls    [][]string
	fail     bool
	versions map[string]string
}

func (f *fakeRunner) Run(_ context.Context, _, name string, args ...string) (string, string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls = append(f.calls, append([]string{name}, args...))
	if slices.Equal(args, []string{"--version"}) {
		if v, ok := f.versions[name]; ok {
			return v, "", nil
		}
		return "", "", errors.New("exit status 1")
	}
	if f.fail {
		return "", "! LaTeX Error: File `fontspec.sty' not found.", errors.New("exit status 43")
	}
	if i := slices.Index(args, "-o"); i >= 0 && i+1 < len(args) {
		return "", "", os.WriteFile(args[i+1], []byte("%PDF-1.7\n"), 0o600)
	}
	return "", "", nil
}

// fakeSyncer writes a small repository instead of cloning.
type fakeSyncer struct {
	workspace string
	err       error
	gotRepo   config.RepositoryConfig
}

func (f *fakeSyncer) Sync(_ context.Context, repo config.RepositoryConfig) (string, error) {
	f.gotRepo = repo
	if f.err != nil {
		return "", f.err
	}
	dir := filepath.Join(f.workspace, "demo")
	files := map[string]string{
		"README.md":   "# Demo\n\nHello.\n",
		"cmd/main.go": "package main\n\nfunc main() {}\n",
	}
	for rel, content := range files {
		path := filepath.Join(dir, rel)
		if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
			return "", err
		}
		if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
			return "", err
		}
	}
	return dir, nil
}

// testEnv bundles an Environment with its captured output and fakes.
type testEnv struct {
	*Environment
	stdout *bytes.Buffer
	stderr *bytes.Buffer
	runner *fakeRunner
	syncer *fakeSyncer
	tools  map[string]bool
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	te := &testEnv{
		stdout: &bytes.Buffer{},
		stderr: &bytes.Buffer{},
		runner: &fakeRunner{versions: map[string]string{
			"pandoc":   "pandoc 3.1.11\nFeatures: +server +lua",
			"xelatex":  "XeTeX 3.141592653-2.6-0.999995 (TeX Live 2023)",
			"inkscape": "Inkscape 1.2.2 (b0a8486541, 2022-12-01)",
		}},
		syncer: &fakeSyncer{},
		tools:  map[string]bool{"pandoc": true, "xelatex": true, "inkscape": true},
	}
	te.Environment = &Environment{
		Now:      func() time.Time { return fixedNow },
		Stdout:   te.stdout,
		Stderr:   te.stderr,
		Runner:   te.runner,
		LookPath: func(name string) bool { return te.tools[name] },
		Syncer: func(workspace string, _ *slog.Logger, _ io.Writer) repoSyncer {
			te.syncer.workspace = workspace
			return te.syncer
		},
	}
	return te
}

// writeConfig writes repo.yaml into a fresh project directory and
// returns its path.
func writeConfig(t *testing.T, extra string) string {
	t.Helper()

	dir := t.TempDir()
	content := "repository:\n" +
		"  url: https://example.com/acme/demo.git\n" +
		"  branch: main\n" +
		"workspace_dir: work\n" +
		"output_dir: out\n" + extra
	path := filepath.Join(dir, "repo.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

// clearEnv unsets every REPO2PDF_* variable for the test's duration.
func clearEnv(t *testing.T) {
	t.Helper()
	for name := range knownEnvVars {
		t.Setenv(name, "")
	}
}
