package repo2pdf

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/alnah/go-repo2pdf/internal/yamlutil"
)

// File names inside the work directory.
const (
	combinedName = "combined.md"
	headerName   = "header.tex"
	defaultsName = "pandoc_defaults.yaml"
	debugName    = "debug.md"
)

// pandocFormat enables the fenced code extensions the fragments rely on.
const pandocFormat = "markdown+fenced_code_attributes+fenced_code_blocks+backtick_code_blocks"

// maxStderrLines bounds the engine output quoted in a typesetting error.
const maxStderrLines = 20

// pandocDefaults is written as a pandoc defaults file.
type pandocDefaults struct {
	PDFEngine       string            `yaml:"pdf-engine"`
	From            string            `yaml:"from"`
	HighlightStyle  string            `yaml:"highlight-style"`
	IncludeInHeader []string          `yaml:"include-in-header"`
	Variables       map[string]any    `yaml:"variables"`
	Metadata        map[string]string `yaml:"metadata,omitempty"`
}

// writePandocDefaults writes the defaults file for layout into dir.
func writePandocDefaults(dir string, layout *Layout, metadata map[string]string) (string, error) {
	vars := map[string]any{
		"documentclass": "article",
		"geometry":      layout.Margin,
		"fontsize":      layout.FontSize,
		"colorlinks":    true,
		"linkcolor":     "blue",
		"urlcolor":      "blue",
	}
	if layout.MainFont != "" {
		vars["mainfont"] = layout.MainFont
	}
	if layout.SansFont != "" {
		vars["sansfont"] = layout.SansFont
	}

	data, err := yamlutil.Marshal(pandocDefaults{
		PDFEngine:       "xelatex",
		From:            pandocFormat,
		HighlightStyle:  layout.HighlightStyle,
		IncludeInHeader: []string{headerName},
		Variables:       vars,
		Metadata:        metadata,
	})
	if err != nil {
		return "", fmt.Errorf("encoding pandoc defaults: %w", err)
	}
	path := filepath.Join(dir, defaultsName)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return "", fmt.Errorf("writing pandoc defaults: %w", err)
	}
	return path, nil
}

// typesetJob describes one pandoc invocation.
type typesetJob struct {
	workDir  string
	repoPath string
	output   string
	title    string
	date     string
	tocDepth int
}

// typesetter turns the prepared work directory into a PDF.
type typesetter interface {
	Typeset(ctx context.Context, job typesetJob) error
}

// pandocTypesetter runs pandoc with xelatex.
type pandocTypesetter struct {
	runner  CommandRunner
	timeout time.Duration
}

var _ typesetter = (*pandocTypesetter)(nil)

// Typeset runs pandoc in the work directory. Images resolve against the
// work directory first, then the repository.
func (p *pandocTypesetter) Typeset(ctx context.Context, job typesetJob) error {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	_, stderr, err := p.runner.Run(ctx, job.workDir, "pandoc", pandocArgs(job)...)
	if err != nil {
		if tail := stderrTail(stderr); tail != "" {
			return fmt.Errorf("%w: %w\n%s", ErrTypesetting, err, tail)
		}
		return fmt.Errorf("%w: %w", ErrTypesetting, err)
	}
	return nil
}

func pandocArgs(job typesetJob) []string {
	return []string{
		combinedName,
		"-o", job.output,
		"--defaults", defaultsName,
		"--toc",
		"--toc-depth=" + strconv.Itoa(job.tocDepth),
		"--metadata", "title=" + job.title,
		"--metadata", "date=" + job.date,
		"--resource-path", job.workDir + string(os.PathListSeparator) + job.repoPath,
	}
}

// stderrTail keeps the last lines of engine output, where LaTeX reports
// the error that stopped it.
func stderrTail(stderr string) string {
	lines := strings.Split(strings.TrimSpace(stderr), "\n")
	if len(lines) > maxStderrLines {
		lines = lines[len(lines)-maxStderrLines:]
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}
