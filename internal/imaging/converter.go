package imaging

import (
	"compress/gzip"
	"context"
	"crypto/md5" // #nosec G501 -- content addressing, not security
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/alnah/go-repo2pdf/internal/fileutil"
	"github.com/alnah/go-repo2pdf/internal/logfields"
)

// Directory names relative to the work directory.
const (
	ImagesDir = "images"
	EmojiDir  = "images/emoji"
)

// Default timeouts.
const (
	DefaultDownloadTimeout = 10 * time.Second
	DefaultInkscapeTimeout = 30 * time.Second
)

// Sentinel errors for image operations.
var (
	ErrIconDefinition = errors.New("svg only defines icons")
	ErrZeroSize       = errors.New("svg has zero dimensions")
	ErrParse          = errors.New("svg parse failed")
	ErrRasterize      = errors.New("svg rasterization failed")
	ErrInkscape       = errors.New("inkscape conversion failed")
	ErrImageNotFound  = errors.New("image not found")
	ErrDownload       = errors.New("image download failed")
)

// Runner executes an external command. *process.ExecRunner satisfies it.
type Runner interface {
	Run(ctx context.Context, dir, name string, args ...string) (stdout, stderr string, err error)
}

// Converter materializes images into one directory. It keeps a per-run
// cache and is not safe for concurrent use.
type Converter struct {
	dir             string
	client          *http.Client
	runner          Runner
	logger          *slog.Logger
	downloadTimeout time.Duration
	inkscapeTimeout time.Duration

	cache map[string]string // path, url or content hash -> images/<file>
}

// Option configures a Converter.
type Option func(*Converter)

// WithHTTPClient sets the client used for remote images.
func WithHTTPClient(c *http.Client) Option {
	return func(conv *Converter) { conv.client = c }
}

// WithRunner enables the inkscape fallback.
func WithRunner(r Runner) Option {
	return func(conv *Converter) { conv.runner = r }
}

// WithLogger sets the logger for per-image diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(conv *Converter) { conv.logger = l }
}

// WithDownloadTimeout bounds each remote fetch. Panics if d <= 0.
func WithDownloadTimeout(d time.Duration) Option {
	if d <= 0 {
		panic("imaging: download timeout must be positive")
	}
	return func(conv *Converter) { conv.downloadTimeout = d }
}

// WithInkscapeTimeout bounds each inkscape run. Panics if d <= 0.
func WithInkscapeTimeout(d time.Duration) Option {
	if d <= 0 {
		panic("imaging: inkscape timeout must be positive")
	}
	return func(conv *Converter) { conv.inkscapeTimeout = d }
}

// New creates a Converter writing into dir (normally <work>/images) and
// creates dir and its emoji subdirectory.
func New(dir string, opts ...Option) (*Converter, error) {
	c := &Converter{
		dir:             dir,
		client:          http.DefaultClient,
		logger:          logfields.Discard(),
		downloadTimeout: DefaultDownloadTimeout,
		inkscapeTimeout: DefaultInkscapeTimeout,
		cache:           make(map[string]string),
	}
	for _, opt := range opts {
		opt(c)
	}
	if err := os.MkdirAll(filepath.Join(dir, "emoji"), 0o750); err != nil {
		return nil, fmt.Errorf("creating images directory: %w", err)
	}
	return c, nil
}

// Dir returns the images directory.
func (c *Converter) Dir() string { return c.dir }

// ConvertImage materializes the image at path (absolute or relative to
// root) and returns its path relative to the work directory. SVG and
// SVGZ sources become images/<md5>.png; other formats are copied as is.
func (c *Converter) ConvertImage(ctx context.Context, path, root string) (string, error) {
	if !filepath.IsAbs(path) {
		path = filepath.Join(root, path)
	}
	if rel, ok := c.cache[path]; ok {
		return rel, nil
	}
	if !fileutil.FileExists(path) {
		return "", fmt.Errorf("%w: %s", ErrImageNotFound, path)
	}

	var (
		rel string
		err error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".svg", ".svgz":
		rel, err = c.convertSVGFile(ctx, path)
	default:
		rel, err = c.copyRaster(path)
	}
	if err != nil {
		return "", err
	}
	c.cache[path] = rel
	return rel, nil
}

func (c *Converter) convertSVGFile(ctx context.Context, path string) (string, error) {
	data, err := readSVG(path)
	if err != nil {
		return "", err
	}

	name := hashBytes(data) + ".png"
	rel := ImagesDir + "/" + name
	key := "svg:" + name
	if cached, ok := c.cache[key]; ok {
		return cached, nil
	}

	out := filepath.Join(c.dir, name)
	if !fileutil.FileExists(out) {
		if err := c.ConvertSVG(ctx, data, out); err != nil {
			return "", fmt.Errorf("%s: %w", path, err)
		}
		c.logger.Debug("converted svg", logfields.Path(path), logfields.Image(rel))
	}
	c.cache[key] = rel
	return rel, nil
}

func readSVG(path string) ([]byte, error) {
	f, err := os.Open(path) // #nosec G304 -- path resolved under the repository root
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	var r io.Reader = f
	if strings.EqualFold(filepath.Ext(path), ".svgz") {
		gz, err := gzip.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrParse, path, err)
		}
		defer func() { _ = gz.Close() }()
		r = gz
	}
	return io.ReadAll(r)
}

// copyRaster copies path to images/<name>. When another file already took
// that name with different content, the copy gets a hash suffix.
func (c *Converter) copyRaster(path string) (string, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- path resolved under the repository root
	if err != nil {
		return "", err
	}

	name := filepath.Base(path)
	dst := filepath.Join(c.dir, name)
	if existing, err := os.ReadFile(dst); err == nil && string(existing) != string(data) { // #nosec G304
		ext := filepath.Ext(name)
		name = strings.TrimSuffix(name, ext) + "-" + hashBytes(data)[:8] + ext
		dst = filepath.Join(c.dir, name)
	}
	if err := os.WriteFile(dst, data, 0o600); err != nil {
		return "", fmt.Errorf("copying image: %w", err)
	}
	return ImagesDir + "/" + name, nil
}

// ConvertInlineSVG rasterizes an inline <svg> element into
// images/emoji/<md5>.png and returns the file name.
func (c *Converter) ConvertInlineSVG(ctx context.Context, svg string) (string, error) {
	name := hashBytes([]byte(svg)) + ".png"
	out := filepath.Join(c.dir, "emoji", name)
	if fileutil.FileExists(out) {
		return name, nil
	}
	if err := c.ConvertSVG(ctx, []byte(svg), out); err != nil {
		return "", err
	}
	return name, nil
}

func hashBytes(b []byte) string {
	sum := md5.Sum(b) // #nosec G401 -- content addressing, not security
	return hex.EncodeToString(sum[:])
}
