package fileproc

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/alnah/go-repo2pdf/internal/fileutil"
	"github.com/alnah/go-repo2pdf/internal/logfields"
	"github.com/alnah/go-repo2pdf/internal/pipeline"
)

// Splitting thresholds for long code files.
const (
	MaxLinesBeforeSplit = 1000
	ChunkLines          = 800
)

// DefaultHTMLTimeout bounds the pandoc HTML-to-Markdown conversion.
const DefaultHTMLTimeout = 30 * time.Second

// TruncationMarker ends a code file cut at MaxLinesBeforeSplit.
const TruncationMarker = "... (file too large, truncated)"

// codeFence is longer than any fence a source file is likely to contain.
const codeFence = "`````"

// ErrHTMLConversion indicates pandoc could not convert an HTML file.
var ErrHTMLConversion = errors.New("HTML conversion failed")

// MarkdownProcessor rewrites Markdown text. *pipeline.Processor satisfies it.
type MarkdownProcessor interface {
	Process(ctx context.Context, content, sourceFile, repoRoot string) string
}

// ImageHandler materializes image files. *imaging.Converter satisfies it.
type ImageHandler interface {
	ConvertImage(ctx context.Context, path, root string) (string, error)
}

// Runner executes an external command. *process.ExecRunner satisfies it.
type Runner interface {
	Run(ctx context.Context, dir, name string, args ...string) (stdout, stderr string, err error)
}

var _ MarkdownProcessor = (*pipeline.Processor)(nil)

// Options holds the per-run settings of a Processor.
type Options struct {
	RepoRoot                  string
	Ignores                   []string
	MaxFileSize               int64 // 0 disables the size check
	MaxLineLength             int
	SplitLargeFiles           bool
	HeaderCommentsOutsideCode bool
	HTMLTimeout               time.Duration
}

// file is the unit a handler works on.
type file struct {
	path    string // absolute
	rel     string // slash separated, relative to the repository root
	content string
}

type handler func(p *Processor, ctx context.Context, f file) (string, error)

// handlers renders each text kind. Kinds without an entry produce nothing.
var handlers = map[Kind]handler{
	Markdown:    (*Processor).markdown,
	MDX:         (*Processor).mdx,
	HTML:        (*Processor).html,
	Code:        (*Processor).code,
	Cursorrules: (*Processor).cursorrules,
}

// Processor turns one repository file into its document fragment.
type Processor struct {
	opts   Options
	md     MarkdownProcessor
	images ImageHandler
	runner Runner
	logger *slog.Logger
}

// NewProcessor creates a Processor. images and runner may be nil, which
// disables image materialization and HTML conversion respectively.
func NewProcessor(opts Options, md MarkdownProcessor, images ImageHandler, runner Runner, logger *slog.Logger) *Processor {
	if opts.MaxLineLength <= 0 {
		opts.MaxLineLength = pipeline.DefaultMaxLineLength
	}
	if opts.HTMLTimeout <= 0 {
		opts.HTMLTimeout = DefaultHTMLTimeout
	}
	if logger == nil {
		logger = logfields.Discard()
	}
	return &Processor{opts: opts, md: md, images: images, runner: runner, logger: logger}
}

// Kind classifies rel with the ignore patterns applied.
func (p *Processor) Kind(rel string) Kind {
	if ShouldIgnore(rel, p.opts.Ignores) {
		return Ignored
	}
	return Classify(rel)
}

// Process returns the fragment for the file at filePath, whose repository
// relative path is rel. An empty fragment with a nil error means the file
// contributes nothing. Errors are per-file except context errors, which
// callers should treat as fatal.
func (p *Processor) Process(ctx context.Context, filePath, rel string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	kind := p.Kind(rel)
	log := p.logger.With(logfields.Path(rel), logfields.Kind(kind.String()))

	switch kind {
	case Ignored, Binary, Other:
		log.Debug("skipping file")
		return "", nil
	case Image:
		if p.images == nil {
			return "", nil
		}
		if _, err := p.images.ConvertImage(ctx, filePath, p.opts.RepoRoot); err != nil {
			log.Warn("image conversion failed", logfields.Error(err))
		}
		return "", nil
	}

	info, err := os.Stat(filePath)
	if err != nil {
		return "", fmt.Errorf("stat %s: %w", rel, err)
	}
	if p.opts.MaxFileSize > 0 && info.Size() > p.opts.MaxFileSize {
		log.Debug("skipping large file", logfields.Size(info.Size()))
		return "", nil
	}

	content, err := fileutil.ReadUTF8(filePath)
	if errors.Is(err, fileutil.ErrNotUTF8) {
		log.Debug("skipping non-UTF-8 file")
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", rel, err)
	}

	h, ok := handlers[kind]
	if !ok {
		return "", nil
	}
	return h(p, ctx, file{path: filePath, rel: rel, content: content})
}

func section(rel, body string) string {
	return "\n\n# " + rel + "\n\n" + body + "\n\n"
}

func fenced(lang, body string) string {
	return codeFence + lang + "\n" + body + "\n" + codeFence
}

func (p *Processor) markdown(ctx context.Context, f file) (string, error) {
	return section(f.rel, p.md.Process(ctx, f.content, f.path, p.opts.RepoRoot)), nil
}

func (p *Processor) mdx(ctx context.Context, f file) (string, error) {
	return section(f.rel, fenced("mdx", p.md.Process(ctx, f.content, f.path, p.opts.RepoRoot))), nil
}

func (p *Processor) cursorrules(_ context.Context, f file) (string, error) {
	return section(f.rel, fenced("markdown", f.content)), nil
}

func (p *Processor) html(ctx context.Context, f file) (string, error) {
	if p.runner == nil {
		p.logger.Debug("no command runner, skipping html", logfields.Path(f.rel))
		return "", nil
	}

	ctx, cancel := context.WithTimeout(ctx, p.opts.HTMLTimeout)
	defer cancel()

	stdout, stderr, err := p.runner.Run(ctx, "", "pandoc", "--from=html", "--to=markdown", "--wrap=none", f.path)
	if err != nil {
		err = fmt.Errorf("%w: %w", ErrHTMLConversion, err)
		p.logger.Warn("skipping html file", logfields.Path(f.rel), logfields.Error(err),
			slog.String("stderr", strings.TrimSpace(stderr)))
		return "", nil
	}
	return section(f.rel, stdout), nil
}

func (p *Processor) code(_ context.Context, f file) (string, error) {
	if strings.Contains(f.content, "<svg") {
		p.logger.Debug("skipping code file with embedded svg", logfields.Path(f.rel))
		return "", nil
	}

	lang, _ := LanguageFor(f.rel)
	body := pipeline.NormalizeLineEndings(f.content)

	var header string
	if p.opts.HeaderCommentsOutsideCode {
		var text string
		text, body = ExtractHeaderComment(body, path.Ext(f.rel))
		if text != "" {
			header = text + "\n\n"
		}
	}

	body = BreakLongLines(body, LongLineColumn)
	body = pipeline.WrapLines(body, p.opts.MaxLineLength)

	lines := strings.Split(strings.TrimRight(body, "\n"), "\n")
	if len(lines) <= MaxLinesBeforeSplit {
		return section(f.rel, header+fenced(lang, strings.Join(lines, "\n"))), nil
	}

	p.logger.Debug("long code file", logfields.Path(f.rel), logfields.Lines(len(lines)))
	if !p.opts.SplitLargeFiles {
		truncated := strings.Join(lines[:MaxLinesBeforeSplit], "\n") + "\n\n" + TruncationMarker
		return section(f.rel, header+fenced(lang, truncated)), nil
	}
	return "\n\n# " + f.rel + "\n\n" + header + splitParts(f.rel, lang, lines), nil
}

// splitParts renders lines as consecutive ChunkLines-sized parts, each
// under its own heading.
func splitParts(rel, lang string, lines []string) string {
	total := len(lines)
	parts := (total + ChunkLines - 1) / ChunkLines

	var b strings.Builder
	b.WriteString("> Note: this file has " + strconv.Itoa(total) + " lines, split into " + strconv.Itoa(parts) + " parts\n")
	for i := range parts {
		start := i * ChunkLines
		end := min(start+ChunkLines, total)
		fmt.Fprintf(&b, "\n## %s - Part %d/%d (lines %d-%d)\n\n", rel, i+1, parts, start+1, end)
		b.WriteString(fenced(lang, strings.Join(lines[start:end], "\n")))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	return b.String()
}
