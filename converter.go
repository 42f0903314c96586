package repo2pdf

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/alnah/go-repo2pdf/internal/dateutil"
	"github.com/alnah/go-repo2pdf/internal/fileproc"
	"github.com/alnah/go-repo2pdf/internal/fileutil"
	"github.com/alnah/go-repo2pdf/internal/imaging"
	"github.com/alnah/go-repo2pdf/internal/logfields"
	"github.com/alnah/go-repo2pdf/internal/pipeline"
	"github.com/alnah/go-repo2pdf/internal/process"
	"github.com/alnah/go-repo2pdf/internal/treestats"
)

// Compile-time interface implementation checks.
var (
	_ CommandRunner              = (*process.ExecRunner)(nil)
	_ AssetLoader                = (*assetLoaderAdapter)(nil)
	_ pipeline.ImageResolver     = (*imaging.Converter)(nil)
	_ fileproc.ImageHandler      = (*imaging.Converter)(nil)
	_ fileproc.MarkdownProcessor = (*pipeline.Processor)(nil)
)

// defaultAuthor fills the PDF author when the metadata names none.
const defaultAuthor = "repo2pdf"

// Converter renders a checked-out repository into one PDF.
// Create with NewConverter and call Convert once per repository.
// A Converter holds no per-run state and may be reused sequentially.
type Converter struct {
	cfg        converterConfig
	logger     *slog.Logger
	runner     CommandRunner
	httpClient *http.Client
	assets     AssetLoader
	now        func() time.Time
	header     string
	typesetter typesetter
}

// NewConverter creates a Converter with default configuration.
// Use options to customize behavior (e.g., WithTimeout, WithAssetLoader).
// Returns an error if the LaTeX header cannot be loaded.
func NewConverter(opts ...Option) (*Converter, error) {
	c := &Converter{
		cfg:        converterConfig{timeout: DefaultTimeout},
		logger:     logfields.Discard(),
		runner:     &process.ExecRunner{},
		httpClient: &http.Client{},
		now:        time.Now,
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.assets == nil {
		loader, err := NewAssetLoader("")
		if err != nil {
			return nil, err
		}
		c.assets = loader
	}

	header, err := c.assets.LoadHeader(DefaultHeader)
	if err != nil {
		return nil, fmt.Errorf("loading latex header: %w", convertAssetError(err))
	}
	c.header = header

	if c.typesetter == nil {
		c.typesetter = &pandocTypesetter{runner: c.runner, timeout: c.cfg.timeout}
	}
	return c, nil
}

// Convert renders input.RepoPath and writes
// <OutputDir>/<RepoName>_<YYYYMMDD_HHmmss>.pdf.
//
// Per-file failures are logged and the file is left out. A typesetting
// failure is returned as ErrTypesetting after the combined source is
// copied to <OutputDir>/debug.md. Recovers from internal panics to
// prevent crashes from propagating to callers.
func (c *Converter) Convert(ctx context.Context, input Input) (result *Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("internal error: %v", r)
		}
	}()

	started := time.Now()
	in, err := c.prepareInput(input)
	if err != nil {
		return nil, err
	}
	log := c.logger.With(logfields.Repository(in.RepoName))

	work, err := os.MkdirTemp("", "repo2pdf-")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrWorkDir, err)
	}
	if c.cfg.keepWorkDir {
		log.Info("keeping work directory", logfields.Path(work))
	} else {
		defer func() { _ = os.RemoveAll(work) }()
	}

	images, err := imaging.New(filepath.Join(work, imaging.ImagesDir),
		imaging.WithHTTPClient(c.httpClient),
		imaging.WithRunner(c.runner),
		imaging.WithLogger(c.logger),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrWorkDir, err)
	}
	md := pipeline.NewProcessor(images,
		pipeline.WithLogger(c.logger),
		pipeline.WithMaxLineLength(in.Processing.MaxLineLength),
	)
	files := fileproc.NewProcessor(fileproc.Options{
		RepoRoot:                  in.RepoPath,
		Ignores:                   in.Ignores,
		MaxFileSize:               in.Processing.MaxFileSize,
		MaxLineLength:             in.Processing.MaxLineLength,
		SplitLargeFiles:           in.Processing.SplitLargeFiles,
		HeaderCommentsOutsideCode: in.Processing.HeaderCommentsOutsideCode,
	}, md, images, c.runner, c.logger)

	log.Info("rendering files", logfields.Stage("files"))
	fragments, skipped, err := c.renderFiles(ctx, files, in)
	if err != nil {
		return nil, err
	}
	if len(fragments) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoContent, in.RepoPath)
	}
	log.Info("files rendered", slog.Int("sections", len(fragments)), slog.Int("skipped", skipped))

	now := c.now()
	date, err := ResolveDate(in.Date, now)
	if err != nil {
		return nil, err
	}
	title := expandVariables(in.Title, in.RepoName, date)
	doc := Assemble(title, c.frontSection(in, date), fragments)

	if err := c.prepareWorkDir(work, doc, title, in); err != nil {
		return nil, err
	}

	outDir, err := filepath.Abs(in.OutputDir)
	if err == nil {
		err = os.MkdirAll(outDir, 0o750)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrOutputDir, err)
	}
	output := filepath.Join(outDir, in.RepoName+"_"+dateutil.Stamp(now)+".pdf")

	log.Info("typesetting", logfields.Stage("pandoc"), logfields.Path(output))
	err = c.typesetter.Typeset(ctx, typesetJob{
		workDir:  work,
		repoPath: in.RepoPath,
		output:   output,
		title:    title,
		date:     date,
		tocDepth: in.Layout.TOCDepth,
	})
	if err == nil && !fileutil.FileExists(output) {
		err = fmt.Errorf("%w: engine reported success but wrote no %s", ErrTypesetting, output)
	}
	if err != nil {
		if debug, cerr := saveDebugSource(work, outDir); cerr == nil {
			log.Error("typesetting failed", logfields.Path(debug), logfields.Error(err))
			return nil, &TypesetError{Err: err, DebugSource: debug}
		}
		return nil, err
	}

	result = &Result{
		PDFPath:  output,
		Files:    len(fragments),
		Skipped:  skipped,
		Duration: time.Since(started),
	}
	if c.cfg.keepWorkDir {
		result.WorkDir = work
	}
	log.Info("pdf written", logfields.Path(output), logfields.Duration(result.Duration))
	return result, nil
}

// prepareInput fills defaults and validates. This is the trust boundary
// for library users building Input by hand.
func (c *Converter) prepareInput(in Input) (Input, error) {
	if in.RepoPath == "" {
		return in, ErrEmptyRepoPath
	}
	if in.OutputDir == "" {
		return in, ErrEmptyOutputDir
	}
	abs, err := filepath.Abs(in.RepoPath)
	if err != nil || !fileutil.DirExists(abs) {
		return in, fmt.Errorf("%w: %s", ErrRepoNotFound, in.RepoPath)
	}
	in.RepoPath = abs
	in.RepoName = cmp.Or(in.RepoName, filepath.Base(abs))
	in.Title = cmp.Or(in.Title, DefaultTitle)
	in.Date = cmp.Or(in.Date, "auto")
	if in.Layout == nil {
		in.Layout = DefaultLayout()
	}
	if in.Processing == nil {
		in.Processing = DefaultProcessing()
	}
	if err := in.Layout.Validate(); err != nil {
		return in, err
	}
	if err := in.Processing.Validate(); err != nil {
		return in, err
	}
	return in, nil
}

// renderFiles produces one fragment per contributing file, in sorted
// path order. Only context errors abort the walk.
func (c *Converter) renderFiles(ctx context.Context, files *fileproc.Processor, in Input) ([]string, int, error) {
	rels, err := fileproc.CollectFiles(in.RepoPath, in.Ignores, c.logger)
	if err != nil {
		return nil, 0, err
	}

	var (
		fragments []string
		skipped   int
	)
	for _, rel := range rels {
		fragment, err := files.Process(ctx, filepath.Join(in.RepoPath, filepath.FromSlash(rel)), rel)
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, 0, ctxErr
		}
		if err != nil {
			c.logger.Warn("skipping file", logfields.Path(rel), logfields.Error(err))
		}
		if fragment == "" {
			skipped++
			continue
		}
		fragments = append(fragments, fragment)
	}
	return fragments, skipped, nil
}

// frontSection renders the template sections, or the tree and stats
// reports when the template lists no sections.
func (c *Converter) frontSection(in Input, date string) string {
	includeTree, includeStats := in.Processing.IncludeTree, in.Processing.IncludeStats
	depth := in.Processing.TreeMaxDepth

	var sections []Section
	if tmpl := c.loadTemplate(in.Template); tmpl != nil {
		s := tmpl.Structure
		if s.IncludeTree != nil {
			includeTree = *s.IncludeTree
		}
		if s.IncludeStats != nil {
			includeStats = *s.IncludeStats
		}
		if s.TreeMaxDepth > 0 {
			depth = s.TreeMaxDepth
		}
		sections = s.Sections
	}
	if len(sections) == 0 {
		if includeTree {
			sections = append(sections, Section{Type: SectionTree})
		}
		if includeStats {
			sections = append(sections, Section{Type: SectionStats})
		}
	}

	parts := make([]string, 0, len(sections))
	for _, s := range sections {
		switch s.Type {
		case SectionTree:
			parts = append(parts, treestats.Tree(in.RepoPath, treestats.TreeOptions{MaxDepth: depth, Ignores: in.Ignores}))
		case SectionStats:
			stats, err := treestats.Collect(in.RepoPath, in.Ignores)
			if err != nil {
				c.logger.Warn("skipping statistics", logfields.Error(err))
				continue
			}
			parts = append(parts, stats.Markdown())
		default:
			var b strings.Builder
			if s.Title != "" {
				b.WriteString("# " + expandVariables(s.Title, in.RepoName, date) + "\n\n")
			}
			b.WriteString(expandVariables(strings.TrimSpace(s.Content), in.RepoName, date))
			parts = append(parts, strings.TrimSpace(b.String())+"\n")
		}
	}
	return strings.Join(parts, "\n")
}

// loadTemplate returns the named template, or nil with a warning when it
// is missing or malformed.
func (c *Converter) loadTemplate(name string) *Template {
	name = cmp.Or(name, DefaultTemplate)
	src, err := c.assets.LoadTemplate(name)
	if err != nil {
		c.logger.Warn("template unavailable, using built-in front section", logfields.Template(name), logfields.Error(err))
		return nil
	}
	tmpl, err := ParseTemplate(src)
	if err != nil {
		c.logger.Warn("template invalid, using built-in front section", logfields.Template(name), logfields.Error(err))
		return nil
	}
	return tmpl
}

// prepareWorkDir writes the combined source, the rendered header and the
// pandoc defaults file.
func (c *Converter) prepareWorkDir(work, doc, title string, in Input) error {
	if err := os.WriteFile(filepath.Join(work, combinedName), []byte(doc), 0o600); err != nil {
		return fmt.Errorf("%w: writing combined source: %v", ErrWorkDir, err)
	}

	author := cmp.Or(in.Metadata["author"], defaultAuthor)
	header, err := renderHeader(c.header, in.Layout, title, author)
	if err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(work, headerName), []byte(header), 0o600); err != nil {
		return fmt.Errorf("%w: writing header: %v", ErrWorkDir, err)
	}

	if _, err := writePandocDefaults(work, in.Layout, in.Metadata); err != nil {
		return fmt.Errorf("%w: %v", ErrWorkDir, err)
	}
	return nil
}

// Assemble joins the title heading, the front section and the file
// fragments in order, then strips images still pointing at http(s) URLs
// so the typesetter never reaches the network.
func Assemble(title, front string, fragments []string) string {
	var b strings.Builder
	b.WriteString("# " + title + "\n\n")
	if front != "" {
		b.WriteString(front)
		b.WriteString("\n")
	}
	for _, f := range fragments {
		b.WriteString(f)
	}
	return pipeline.ScrubRemoteImages(b.String())
}

// saveDebugSource copies the combined source to <outDir>/debug.md.
func saveDebugSource(work, outDir string) (string, error) {
	dst := filepath.Join(outDir, debugName)
	if err := fileutil.CopyFile(filepath.Join(work, combinedName), dst); err != nil {
		return "", err
	}
	return dst, nil
}
