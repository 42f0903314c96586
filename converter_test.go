package repo2pdf

// Notes:
// - fakePandoc stands in for the pandoc binary: it snapshots the work
//   directory and writes a stub PDF, so the whole pipeline runs without
//   a TeX installation.
// - Remote images are served by httptest; nothing reaches the network.

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ---------------------------------------------------------------------------
// Test Fixtures
// ---------------------------------------------------------------------------

var fixedNow = time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC)

const badgeSVG = `<svg xmlns="http://www.w3.org/2000/svg" width="20" height="20"><rect width="20" height="20" fill="red"/></svg>`

type fakePandoc struct {
	mu       sync.Mutex
	fail     bool
	calls    [][]string
	combined string
	header   string
	defaults string
}

func (f *fakePandoc) Run(_ context.Context, dir, name string, args ...string) (string, string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls = append(f.calls, append([]string{name}, args...))
	if name != "pandoc" {
		return "", "", errors.New("unexpected command " + name)
	}
	if slices.Contains(args, "--from=html") {
		return "converted html\n", "", nil
	}

	read := func(name string) string {
		data, _ := os.ReadFile(filepath.Join(dir, name))
		return string(data)
	}
	f.combined, f.header, f.defaults = read(combinedName), read(headerName), read(defaultsName)

	if f.fail {
		return "", "! Undefined control sequence.\nl.42 \\foo", errors.New("exit status 43")
	}
	out := args[slices.Index(args, "-o")+1]
	return "", "", os.WriteFile(out, []byte("%PDF-1.7\n"), 0o600)
}

func newImageServer(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/badge.svg", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "image/svg+xml")
		_, _ = w.Write([]byte(badgeSVG))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

// writeRepo creates <tmp>/demo with the given files and returns its path.
func writeRepo(t *testing.T, files map[string]string) string {
	t.Helper()

	root := filepath.Join(t.TempDir(), "demo")
	for rel, content := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	}
	return root
}

func demoRepo(t *testing.T, serverURL string) string {
	t.Helper()

	return writeRepo(t, map[string]string{
		"README.md": "# Demo\n\n![shot](docs/shot.png)\n\n![badge](" + serverURL + "/badge.svg)\n\n" +
			"![gone](" + serverURL + "/missing.png)\n",
		"docs/shot.png":    "\x89PNG\r\n\x1a\nfake",
		"src/main.py":      "print('hi')\n",
		"build/output.bin": "\x00\x01\x02",
	})
}

func newTestConverter(t *testing.T, runner CommandRunner, srv *httptest.Server, opts ...Option) *Converter {
	t.Helper()

	base := []Option{WithCommandRunner(runner), WithNow(func() time.Time { return fixedNow })}
	if srv != nil {
		base = append(base, WithHTTPClient(srv.Client()))
	}
	c, err := NewConverter(append(base, opts...)...)
	require.NoError(t, err)
	return c
}

// ---------------------------------------------------------------------------
// TestConvert - End-to-end with a fake typesetter
// ---------------------------------------------------------------------------

func TestConvert(t *testing.T) {
	t.Parallel()

	srv := newImageServer(t)
	repo := demoRepo(t, srv.URL)
	out := filepath.Join(t.TempDir(), "out")
	runner := &fakePandoc{}

	result, err := newTestConverter(t, runner, srv).Convert(context.Background(), Input{
		RepoPath:  repo,
		OutputDir: out,
		Ignores:   []string{"build"},
		Metadata:  map[string]string{"author": "Ada"},
	})
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(out, "demo_20240315_103000.pdf"), result.PDFPath)
	assert.FileExists(t, result.PDFPath)
	assert.Equal(t, 2, result.Files)
	assert.Equal(t, 1, result.Skipped)
	assert.Empty(t, result.WorkDir)

	doc := runner.combined
	assert.True(t, strings.HasPrefix(doc, "# demo Code Documentation\n\n"), "title heading first:\n%s", doc)
	assert.Contains(t, doc, "# Project Structure")
	assert.Contains(t, doc, "# Code Statistics")
	assert.Contains(t, doc, "![shot](docs/shot.png)")
	assert.Regexp(t, regexp.MustCompile(`!\[badge\]\(images/[0-9a-f]{32}\.png\)`), doc)
	assert.NotContains(t, doc, srv.URL)
	assert.NotContains(t, doc, "output.bin")

	readme := strings.Index(doc, "\n# README.md\n")
	mainPy := strings.Index(doc, "\n# src/main.py\n")
	require.NotEqual(t, -1, readme)
	require.NotEqual(t, -1, mainPy)
	assert.Less(t, strings.Index(doc, "# Code Statistics"), readme, "front section precedes files")
	assert.Less(t, readme, mainPy, "files in sorted path order")
	assert.Contains(t, doc[mainPy:], "`````python\nprint('hi')\n`````")

	assert.Contains(t, runner.header, `pdfauthor={Ada}`)
	assert.Contains(t, runner.defaults, "author: Ada")

	require.Len(t, runner.calls, 1)
	assert.Contains(t, runner.calls[0], "title=demo Code Documentation")
	assert.Contains(t, runner.calls[0], "date=2024-03-15")
}

func TestConvert_TypesettingFailureKeepsSource(t *testing.T) {
	t.Parallel()

	repo := writeRepo(t, map[string]string{"main.go": "package main\n"})
	out := filepath.Join(t.TempDir(), "out")
	runner := &fakePandoc{fail: true}

	_, err := newTestConverter(t, runner, nil).Convert(context.Background(), Input{RepoPath: repo, OutputDir: out})
	require.ErrorIs(t, err, ErrTypesetting)
	assert.Contains(t, err.Error(), "Undefined control sequence")

	var te *TypesetError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, filepath.Join(out, debugName), te.DebugSource)

	data, readErr := os.ReadFile(te.DebugSource)
	require.NoError(t, readErr)
	assert.Equal(t, runner.combined, string(data))
}

func TestConvert_EngineWroteNothing(t *testing.T) {
	t.Parallel()

	repo := writeRepo(t, map[string]string{"main.go": "package main\n"})
	runner := runnerFunc(func(context.Context, string, string, ...string) (string, string, error) {
		return "", "", nil
	})

	_, err := newTestConverter(t, runner, nil).Convert(context.Background(), Input{RepoPath: repo, OutputDir: t.TempDir()})
	assert.ErrorIs(t, err, ErrTypesetting)
}

type runnerFunc func(ctx context.Context, dir, name string, args ...string) (string, string, error)

func (f runnerFunc) Run(ctx context.Context, dir, name string, args ...string) (string, string, error) {
	return f(ctx, dir, name, args...)
}

// ---------------------------------------------------------------------------
// TestConvert_Validation - Input errors
// ---------------------------------------------------------------------------

func TestConvert_Validation(t *testing.T) {
	t.Parallel()

	repo := writeRepo(t, map[string]string{"main.go": "package main\n"})
	out := t.TempDir()

	tests := []struct {
		name    string
		input   Input
		wantErr error
	}{
		{"empty repo path", Input{OutputDir: out}, ErrEmptyRepoPath},
		{"empty output dir", Input{RepoPath: repo}, ErrEmptyOutputDir},
		{"missing repo", Input{RepoPath: filepath.Join(repo, "nope"), OutputDir: out}, ErrRepoNotFound},
		{"repo is a file", Input{RepoPath: filepath.Join(repo, "main.go"), OutputDir: out}, ErrRepoNotFound},
		{"bad layout", Input{RepoPath: repo, OutputDir: out, Layout: &Layout{TOCDepth: 9, FontSize: "10pt"}}, ErrInvalidTOCDepth},
		{"bad processing", Input{RepoPath: repo, OutputDir: out, Processing: &Processing{MaxLineLength: 10, TreeMaxDepth: 3}}, ErrInvalidMaxLineLength},
		{"bad date", Input{RepoPath: repo, OutputDir: out, Date: "auto:"}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			runner := &fakePandoc{}
			_, err := newTestConverter(t, runner, nil).Convert(context.Background(), tt.input)
			require.Error(t, err)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
			assert.Empty(t, runner.calls, "no typesetting on invalid input")
		})
	}
}

func TestConvert_NoContent(t *testing.T) {
	t.Parallel()

	repo := writeRepo(t, map[string]string{"logo.png": "png", "LICENSE": "MIT"})
	runner := &fakePandoc{}

	_, err := newTestConverter(t, runner, nil).Convert(context.Background(), Input{RepoPath: repo, OutputDir: t.TempDir()})
	assert.ErrorIs(t, err, ErrNoContent)
	assert.Empty(t, runner.calls)
}

func TestConvert_CancelledContext(t *testing.T) {
	t.Parallel()

	repo := writeRepo(t, map[string]string{"main.go": "package main\n"})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestConverter(t, &fakePandoc{}, nil).Convert(ctx, Input{RepoPath: repo, OutputDir: t.TempDir()})
	assert.ErrorIs(t, err, context.Canceled)
}

// ---------------------------------------------------------------------------
// TestConvert_FrontSection - Templates and report flags
// ---------------------------------------------------------------------------

func TestConvert_FrontSection(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		template   string
		processing *Processing
		want       []string
		notWant    []string
	}{
		{
			name:     "kindle template",
			template: "kindle",
			want:     []string{"# About this document", "Source code of **demo**, generated on 2024-03-15.", "# Project Structure"},
			notWant:  []string{"# Code Statistics"},
		},
		{
			name:     "technical template puts stats before tree",
			template: "technical",
			want:     []string{"# Overview\n\nTechnical reference for demo (2024-03-15).", "# Code Statistics", "# Project Structure"},
		},
		{
			name:       "missing template falls back to flags",
			template:   "ghost",
			processing: &Processing{MaxLineLength: 200, TreeMaxDepth: 3, IncludeStats: true},
			want:       []string{"# Code Statistics"},
			notWant:    []string{"# Project Structure"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			repo := writeRepo(t, map[string]string{"main.go": "package main\n"})
			runner := &fakePandoc{}
			_, err := newTestConverter(t, runner, nil).Convert(context.Background(), Input{
				RepoPath:   repo,
				OutputDir:  t.TempDir(),
				Template:   tt.template,
				Processing: tt.processing,
			})
			require.NoError(t, err)

			for _, w := range tt.want {
				assert.Contains(t, runner.combined, w)
			}
			for _, w := range tt.notWant {
				assert.NotContains(t, runner.combined, w)
			}
		})
	}

	t.Run("technical order", func(t *testing.T) {
		t.Parallel()

		repo := writeRepo(t, map[string]string{"main.go": "package main\n"})
		runner := &fakePandoc{}
		_, err := newTestConverter(t, runner, nil).Convert(context.Background(), Input{
			RepoPath: repo, OutputDir: t.TempDir(), Template: "technical",
		})
		require.NoError(t, err)
		doc := runner.combined
		assert.Less(t, strings.Index(doc, "# Overview"), strings.Index(doc, "# Code Statistics"))
		assert.Less(t, strings.Index(doc, "# Code Statistics"), strings.Index(doc, "# Project Structure"))
	})
}

// ---------------------------------------------------------------------------
// TestConvert_KeepWorkDir - Work directory retention
// ---------------------------------------------------------------------------

func TestConvert_KeepWorkDir(t *testing.T) {
	t.Parallel()

	srv := newImageServer(t)
	repo := demoRepo(t, srv.URL)

	result, err := newTestConverter(t, &fakePandoc{}, srv, WithKeepWorkDir(true)).Convert(context.Background(), Input{
		RepoPath:  repo,
		OutputDir: t.TempDir(),
		Title:     "Handbook",
		Ignores:   []string{"build"},
	})
	require.NoError(t, err)
	require.NotEmpty(t, result.WorkDir)
	t.Cleanup(func() { _ = os.RemoveAll(result.WorkDir) })

	for _, name := range []string{combinedName, headerName, defaultsName, "images/shot.png"} {
		assert.FileExists(t, filepath.Join(result.WorkDir, filepath.FromSlash(name)))
	}
	pngs, _ := filepath.Glob(filepath.Join(result.WorkDir, "images", "*.png"))
	assert.Len(t, pngs, 2, "copied raster and rasterized badge")

	combined, err := os.ReadFile(filepath.Join(result.WorkDir, combinedName))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(combined), "# Handbook\n\n"))
}

// ---------------------------------------------------------------------------
// TestAssemble - Document assembly
// ---------------------------------------------------------------------------

func TestAssemble(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		title     string
		front     string
		fragments []string
		want      string
	}{
		{
			name:      "title front and files",
			title:     "demo",
			front:     "# Project Structure\n\ntree\n",
			fragments: []string{"\n\n# a.md\n\nA\n\n", "\n\n# b.md\n\nB\n\n"},
			want:      "# demo\n\n# Project Structure\n\ntree\n\n\n\n# a.md\n\nA\n\n\n\n# b.md\n\nB\n\n",
		},
		{
			name:      "no front section",
			title:     "demo",
			fragments: []string{"\n\n# a.md\n\nA\n\n"},
			want:      "# demo\n\n\n\n# a.md\n\nA\n\n",
		},
		{
			name:      "remote images scrubbed",
			title:     "demo",
			fragments: []string{"\n\n# a.md\n\nsee ![x](https://example.com/x.png) here\n\n"},
			want:      "# demo\n\n\n\n# a.md\n\nsee  here\n\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, Assemble(tt.title, tt.front, tt.fragments))
		})
	}
}

// ---------------------------------------------------------------------------
// TestNewConverter - Construction and options
// ---------------------------------------------------------------------------

func TestNewConverter(t *testing.T) {
	t.Parallel()

	c, err := NewConverter()
	require.NoError(t, err)
	assert.Equal(t, DefaultTimeout, c.cfg.timeout)
	assert.Contains(t, c.header, `\usepackage{fontspec}`)

	c, err = NewConverter(WithTimeout(time.Minute), WithLogger(nil), WithCommandRunner(nil))
	require.NoError(t, err)
	assert.Equal(t, time.Minute, c.cfg.timeout)
	assert.NotNil(t, c.logger)
	assert.NotNil(t, c.runner)
}

func TestNewConverter_MissingHeader(t *testing.T) {
	t.Parallel()

	_, err := NewConverter(WithAssetLoader(headerlessLoader{}))
	assert.ErrorIs(t, err, ErrHeaderNotFound)
}

type headerlessLoader struct{}

func (headerlessLoader) LoadHeader(name string) (string, error) {
	return "", ErrHeaderNotFound
}

func (headerlessLoader) LoadTemplate(name string) (string, error) {
	return "", ErrTemplateNotFound
}

func TestWithTimeout_PanicsOnNonPositive(t *testing.T) {
	t.Parallel()

	assert.Panics(t, func() { WithTimeout(0) })
	assert.Panics(t, func() { WithTimeout(-time.Second) })
}
