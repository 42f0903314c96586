package repo2pdf

import (
	"context"
	"log/slog"
	"net/http"
	"time"
)

// DefaultTimeout bounds one typesetting run.
const DefaultTimeout = 10 * time.Minute

// CommandRunner executes external commands (pandoc, inkscape).
// Implementations must honour ctx cancellation.
type CommandRunner interface {
	Run(ctx context.Context, dir, name string, args ...string) (stdout, stderr string, err error)
}

// Option configures a Converter.
type Option func(*Converter)

// converterConfig holds internal configuration for Converter.
type converterConfig struct {
	timeout     time.Duration
	keepWorkDir bool
}

// WithTimeout sets the typesetting timeout.
// Panics if d <= 0 (programmer error, similar to time.NewTicker).
func WithTimeout(d time.Duration) Option {
	if d <= 0 {
		panic("repo2pdf: WithTimeout duration must be positive")
	}
	return func(c *Converter) {
		c.cfg.timeout = d
	}
}

// WithLogger sets the logger. A nil logger is ignored.
func WithLogger(l *slog.Logger) Option {
	return func(c *Converter) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithCommandRunner replaces the runner used for pandoc and inkscape.
func WithCommandRunner(r CommandRunner) Option {
	return func(c *Converter) {
		if r != nil {
			c.runner = r
		}
	}
}

// WithHTTPClient sets the client used to download remote images.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Converter) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithAssetLoader sets where the LaTeX header and document templates
// come from. See NewAssetLoader.
func WithAssetLoader(l AssetLoader) Option {
	return func(c *Converter) {
		if l != nil {
			c.assets = l
		}
	}
}

// WithNow sets the clock used for {{date}} and output file names.
func WithNow(now func() time.Time) Option {
	return func(c *Converter) {
		if now != nil {
			c.now = now
		}
	}
}

// WithKeepWorkDir keeps the work directory (combined source, header,
// images) after conversion; Result.WorkDir reports its path.
func WithKeepWorkDir(keep bool) Option {
	return func(c *Converter) {
		c.cfg.keepWorkDir = keep
	}
}
