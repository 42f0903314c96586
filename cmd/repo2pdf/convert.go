package main

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/dustin/go-humanize"

	repo2pdf "github.com/alnah/go-repo2pdf"
	"github.com/alnah/go-repo2pdf/internal/config"
	"github.com/alnah/go-repo2pdf/internal/gitrepo"
	"github.com/alnah/go-repo2pdf/internal/hints"
	"github.com/alnah/go-repo2pdf/internal/logfields"
)

// Sentinel errors for CLI operations.
var (
	ErrNoConfig           = errors.New("no config file given (use -c or REPO2PDF_CONFIG)")
	ErrUnexpectedArgument = errors.New("unexpected argument")
	ErrInvalidTimeout     = errors.New("invalid timeout")
	ErrPandocMissing      = errors.New("pandoc not found in PATH")
	ErrSync               = errors.New("repository sync failed")
)

// runConvert orchestrates one run: config, preset, sync, conversion.
func runConvert(ctx context.Context, flags *convertFlags, env *Environment, logger *slog.Logger) error {
	envCfg := loadEnvConfig()
	warnUnknownEnvVars(env.Stderr)

	cfg, err := loadConfig(cmp.Or(flags.common.config, envCfg.ConfigPath))
	if err != nil {
		return err
	}
	applyEnvConfig(envCfg, cfg)
	mergeFlags(flags, cfg)

	preset, err := cfg.ApplyPreset(cmp.Or(flags.device, envCfg.Device))
	if err != nil {
		if errors.Is(err, config.ErrUnknownPreset) {
			return fmt.Errorf("%w%s", err, hints.ForDeviceNotFound(cfg.PresetNames()))
		}
		return err
	}
	template := cmp.Or(flags.template, envCfg.Template, preset.Template)
	logger.Debug("configuration resolved",
		logfields.Preset(cfg.DevicePreset), logfields.Template(template),
		slog.String("workspace", cfg.WorkspacePath()), slog.String("output", cfg.OutputPath()))

	timeout, err := resolveTimeout(flags.timeout, envCfg.Timeout)
	if err != nil {
		return err
	}

	if !env.LookPath("pandoc") {
		return fmt.Errorf("%w%s", ErrPandocMissing, hints.ForPandocMissing())
	}
	if !env.LookPath("inkscape") {
		logger.Debug("inkscape not found, svg fallback disabled" + hints.ForInkscapeMissing())
	}

	repoPath, err := syncRepository(ctx, cfg, env, logger, flags.common.verbose)
	if err != nil {
		return err
	}

	loader, err := repo2pdf.NewAssetLoader(cfg.ProjectRoot())
	if err != nil {
		return err
	}
	conv, err := repo2pdf.NewConverter(
		repo2pdf.WithLogger(logger),
		repo2pdf.WithTimeout(timeout),
		repo2pdf.WithAssetLoader(loader),
		repo2pdf.WithCommandRunner(env.Runner),
		repo2pdf.WithNow(env.Now),
		repo2pdf.WithKeepWorkDir(flags.keepTemp),
	)
	if err != nil {
		return err
	}

	result, err := conv.Convert(ctx, buildInput(cfg, repoPath, template))
	if err != nil {
		return withHint(err, timeout)
	}

	if !flags.common.quiet {
		printResult(env.Stdout, result)
	}
	return nil
}

// loadConfig loads the named config, adding a hint when it is missing.
func loadConfig(name string) (*config.Config, error) {
	if name == "" {
		return nil, ErrNoConfig
	}
	cfg, err := config.Load(name)
	if errors.Is(err, config.ErrConfigNotFound) {
		return nil, fmt.Errorf("loading config: %w%s", err, hints.ForConfigNotFound(config.CandidatePaths(name)))
	}
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return cfg, nil
}

// mergeFlags merges CLI flags into config. CLI values override config values.
func mergeFlags(flags *convertFlags, cfg *config.Config) {
	if flags.output != "" {
		cfg.OutputDir = flags.output
	}
	if flags.workspace != "" {
		cfg.WorkspaceDir = flags.workspace
	}
}

// resolveTimeout picks --timeout, then REPO2PDF_TIMEOUT, then the default.
func resolveTimeout(flagValue string, envValue time.Duration) (time.Duration, error) {
	if flagValue != "" {
		d, err := time.ParseDuration(flagValue)
		if err != nil {
			return 0, fmt.Errorf("%w: %q: %v", ErrInvalidTimeout, flagValue, err)
		}
		if d <= 0 {
			return 0, fmt.Errorf("%w: %q must be positive", ErrInvalidTimeout, flagValue)
		}
		return d, nil
	}
	if envValue > 0 {
		return envValue, nil
	}
	return repo2pdf.DefaultTimeout, nil
}

// syncRepository clones or updates the repository and logs the commit
// that will be documented.
func syncRepository(ctx context.Context, cfg *config.Config, env *Environment, logger *slog.Logger, verbose bool) (string, error) {
	var progress io.Writer
	if verbose {
		progress = env.Stderr
	}
	url := cfg.Repository.URL
	log := logger.With(logfields.Repository(gitrepo.RepoName(url)), logfields.Branch(cfg.Repository.Branch))
	log.Info("syncing repository", logfields.URL(url))

	path, err := env.Syncer(cfg.WorkspacePath(), logger, progress).Sync(ctx, cfg.Repository)
	if err != nil {
		var (
			authErr     *gitrepo.AuthError
			notFoundErr *gitrepo.NotFoundError
		)
		switch {
		case errors.Is(err, context.Canceled):
			return "", err
		case errors.As(err, &authErr):
			return "", fmt.Errorf("%w: %w%s", ErrSync, err, hints.ForGitAuth(url))
		case errors.As(err, &notFoundErr):
			return "", fmt.Errorf("%w: %w%s", ErrSync, err, hints.ForRepoNotFound())
		default:
			return "", fmt.Errorf("%w: %w", ErrSync, err)
		}
	}

	if commit, err := gitrepo.CommitInfo(path); err == nil {
		log.Info("documenting commit",
			logfields.Commit(commit.Short()),
			slog.String("author", commit.Author),
			slog.Time("date", commit.Date),
			slog.String("subject", commit.Subject))
	} else {
		log.Warn("reading commit info", logfields.Error(err))
	}
	return path, nil
}

// buildInput maps the resolved config onto a conversion request.
func buildInput(cfg *config.Config, repoPath, template string) repo2pdf.Input {
	p := cfg.PDF
	return repo2pdf.Input{
		RepoPath:  repoPath,
		RepoName:  gitrepo.RepoName(cfg.Repository.URL),
		OutputDir: cfg.OutputPath(),
		Title:     p.Title,
		Date:      "auto",
		Template:  template,
		Ignores:   cfg.Ignores,
		Metadata:  p.Metadata,
		Layout: &repo2pdf.Layout{
			Margin:           p.Margin,
			MainFont:         p.MainFont,
			SansFont:         p.SansFont,
			MonoFont:         p.MonoFont,
			EmojiFonts:       []string(p.EmojiFont),
			FontSize:         p.FontSize,
			CodeFontSize:     p.CodeFontSize,
			LineSpread:       p.LineSpread,
			ParSkip:          p.ParSkip,
			HighlightStyle:   p.HighlightStyle,
			TOCDepth:         p.TOCDepth,
			CodeBlockBg:      p.CodeBlockBg,
			CodeBlockBorder:  p.CodeBlockBorder,
			CodeBlockPadding: p.CodeBlockPadding,
		},
		Processing: &repo2pdf.Processing{
			MaxFileSize:               int64(p.MaxFileSize),
			MaxLineLength:             p.MaxLineLength,
			SplitLargeFiles:           p.SplitLargeFiles,
			HeaderCommentsOutsideCode: p.RenderHeaderCommentsOutsideCode,
			IncludeTree:               p.IncludeTree,
			IncludeStats:              p.IncludeStats,
			TreeMaxDepth:              p.TreeMaxDepth,
		},
	}
}

// withHint appends an actionable hint to conversion errors.
func withHint(err error, timeout time.Duration) error {
	var typesetErr *repo2pdf.TypesetError
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%w (after %s)%s", err, timeout, hints.ForTimeout())
	case errors.As(err, &typesetErr):
		return fmt.Errorf("%w%s", err, hints.ForDebugSource(typesetErr.DebugSource))
	case errors.Is(err, repo2pdf.ErrOutputDir):
		return fmt.Errorf("%w%s", err, hints.ForOutputDirectory())
	case errors.Is(err, repo2pdf.ErrTemplateNotFound):
		return fmt.Errorf("%w%s", err, hints.ForTemplateNotFound(repo2pdf.TemplateNames()))
	default:
		return err
	}
}

// printResult reports the written PDF.
func printResult(w io.Writer, r *repo2pdf.Result) {
	size := "?"
	if info, err := os.Stat(r.PDFPath); err == nil {
		size = humanize.Bytes(uint64(info.Size())) // #nosec G115 -- file sizes are non-negative
	}
	fmt.Fprintf(w, "%s (%s, %d files, %d skipped, %s)\n",
		r.PDFPath, size, r.Files, r.Skipped, r.Duration.Round(time.Millisecond))
	if r.WorkDir != "" {
		fmt.Fprintf(w, "work directory kept at %s\n", r.WorkDir)
	}
}
