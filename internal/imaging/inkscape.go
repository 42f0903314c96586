package imaging

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/alnah/go-repo2pdf/internal/fileutil"
)

// inkscapeExportWidth is the pixel width requested from inkscape.
const inkscapeExportWidth = 1600

// convertWithInkscape writes content next to outPath and asks inkscape to
// export it. Success requires both a zero exit and the output file.
func (c *Converter) convertWithInkscape(ctx context.Context, content, outPath string) error {
	dir := filepath.Dir(outPath)
	stem := strings.TrimSuffix(filepath.Base(outPath), filepath.Ext(outPath))

	tmp, cleanup, err := fileutil.WriteTempFile(dir, "temp_"+stem, []byte(content), "svg")
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInkscape, err)
	}
	defer cleanup()

	ctx, cancel := context.WithTimeout(ctx, c.inkscapeTimeout)
	defer cancel()

	_, stderr, err := c.runner.Run(ctx, dir, "inkscape",
		"--export-type=png",
		"--export-filename="+outPath,
		fmt.Sprintf("--export-width=%d", inkscapeExportWidth),
		tmp,
	)
	if err != nil {
		if msg := strings.TrimSpace(stderr); msg != "" {
			return fmt.Errorf("%w: %v: %s", ErrInkscape, err, msg)
		}
		return fmt.Errorf("%w: %v", ErrInkscape, err)
	}
	if !fileutil.FileExists(outPath) {
		return fmt.Errorf("%w: no output produced", ErrInkscape)
	}
	return nil
}
