package imaging

import (
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"
	"math"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"

	"github.com/alnah/go-repo2pdf/internal/logfields"
)

// Rasterization geometry.
const (
	DefaultWidth  = 800
	DefaultHeight = 600
	ParentWidth   = 1600 // percentages resolve against this viewport
	ParentHeight  = 1200
	Scale         = 2.0
	MaxPixels     = 8192 // longest output side
)

var (
	xmlDeclRe  = regexp.MustCompile(`<\?xml[^>]*\?>`)
	rootSVGRe  = regexp.MustCompile(`(?s)<svg\b[^>]*>`)
	dimAttrRe  = regexp.MustCompile(`(?s)\s(?:width|height)\s*=\s*(?:"[^"]*"|'[^']*')`)
	lengthRe   = regexp.MustCompile(`^\s*([+-]?(?:\d+\.?\d*|\.\d+)(?:[eE][+-]?\d+)?)\s*([a-zA-Z%]*)\s*$`)
	knownUnits = []string{"px", "pt", "pc", "cm", "mm", "in", "em", "ex", "%"}
)

// svgRoot holds the sizing attributes of the root element.
type svgRoot struct {
	width, height, viewBox string
}

// ConvertSVG rasterizes svg to a PNG at outPath.
//
// Icon-definition documents (<symbol>, or <defs> without <use>) fail with
// ErrIconDefinition and zero-sized ones with ErrZeroSize; neither produces
// a file. Missing width/height come from the viewBox, else default to
// 800x600. Parse and render failures fall back to inkscape when a runner
// is configured.
func (c *Converter) ConvertSVG(ctx context.Context, svg []byte, outPath string) error {
	content := cleanSVG(string(svg))
	if isIconDefinition(content) {
		c.logger.Debug("skipping icon definition svg", logfields.Path(outPath))
		return ErrIconDefinition
	}

	fixed, w, h, err := fixDimensions(content)
	if errors.Is(err, ErrZeroSize) {
		return err
	}
	if err == nil {
		if err = rasterize(content, w, h, outPath); err == nil {
			return nil
		}
	} else {
		fixed = content
	}

	c.logger.Debug("built-in svg renderer failed", logfields.Path(outPath), logfields.Error(err))
	if c.runner == nil {
		return err
	}
	if inkErr := c.convertWithInkscape(ctx, fixed, outPath); inkErr != nil {
		c.logger.Warn("svg conversion failed", logfields.Path(outPath), logfields.Error(inkErr))
		return fmt.Errorf("%w; %w", err, inkErr)
	}
	return nil
}

func cleanSVG(s string) string {
	return strings.TrimSpace(xmlDeclRe.ReplaceAllString(s, ""))
}

func isIconDefinition(s string) bool {
	return strings.Contains(s, "<symbol") ||
		(strings.Contains(s, "<defs>") && !strings.Contains(s, "<use"))
}

// fixDimensions validates the document and returns it with explicit root
// width/height plus the CSS pixel size those resolve to.
func fixDimensions(content string) (string, float64, float64, error) {
	root, err := parseRoot(content)
	if err != nil {
		return "", 0, 0, err
	}
	if isZeroLength(root.width) || isZeroLength(root.height) {
		return "", 0, 0, ErrZeroSize
	}

	width, height := root.width, root.height
	if root.viewBox != "" && (width == "" || height == "") {
		if vw, vh, ok := viewBoxSize(root.viewBox); ok {
			width, height = formatFloat(vw)+"px", formatFloat(vh)+"px"
		}
	}
	if width == "" || height == "" {
		width, height = strconv.Itoa(DefaultWidth)+"px", strconv.Itoa(DefaultHeight)+"px"
	}
	width, height = ensureUnit(width), ensureUnit(height)

	w, err := toPixels(width, ParentWidth)
	if err != nil {
		return "", 0, 0, err
	}
	h, err := toPixels(height, ParentHeight)
	if err != nil {
		return "", 0, 0, err
	}
	if w <= 0 || h <= 0 {
		return "", 0, 0, ErrZeroSize
	}
	return setRootDimensions(content, width, height), w, h, nil
}

// parseRoot reads the whole document so malformed XML is rejected, and
// returns the attributes of the outermost element, which must be <svg>.
func parseRoot(content string) (svgRoot, error) {
	dec := xml.NewDecoder(strings.NewReader(content))
	dec.Strict = true
	dec.Entity = xml.HTMLEntity

	var (
		root  svgRoot
		found bool
	)
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return svgRoot{}, fmt.Errorf("%w: %v", ErrParse, err)
		}
		start, ok := tok.(xml.StartElement)
		if !ok || found {
			continue
		}
		if start.Name.Local != "svg" {
			return svgRoot{}, fmt.Errorf("%w: root element is <%s>", ErrParse, start.Name.Local)
		}
		found = true
		for _, a := range start.Attr {
			switch a.Name.Local {
			case "width":
				root.width = strings.TrimSpace(a.Value)
			case "height":
				root.height = strings.TrimSpace(a.Value)
			case "viewBox":
				root.viewBox = strings.TrimSpace(a.Value)
			}
		}
	}
	if !found {
		return svgRoot{}, fmt.Errorf("%w: no <svg> element", ErrParse)
	}
	return root, nil
}

func isZeroLength(s string) bool {
	m := lengthRe.FindStringSubmatch(s)
	if m == nil {
		return false
	}
	v, err := strconv.ParseFloat(m[1], 64)
	return err == nil && v == 0
}

func viewBoxSize(vb string) (float64, float64, bool) {
	parts := strings.FieldsFunc(vb, func(r rune) bool { return r == ',' || r == ' ' || r == '\t' || r == '\n' })
	if len(parts) != 4 {
		return 0, 0, false
	}
	w, errW := strconv.ParseFloat(parts[2], 64)
	h, errH := strconv.ParseFloat(parts[3], 64)
	if errW != nil || errH != nil || w <= 0 || h <= 0 {
		return 0, 0, false
	}
	return w, h, true
}

func ensureUnit(s string) string {
	lower := strings.ToLower(s)
	for _, u := range knownUnits {
		if strings.HasSuffix(lower, u) {
			return s
		}
	}
	return s + "px"
}

// toPixels converts a CSS length to pixels at 96 dpi.
func toPixels(length string, parent float64) (float64, error) {
	m := lengthRe.FindStringSubmatch(length)
	if m == nil {
		return 0, fmt.Errorf("%w: invalid length %q", ErrParse, length)
	}
	v, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, fmt.Errorf("%w: invalid length %q", ErrParse, length)
	}
	switch strings.ToLower(m[2]) {
	case "", "px":
		return v, nil
	case "pt":
		return v * 96 / 72, nil
	case "pc":
		return v * 16, nil
	case "in":
		return v * 96, nil
	case "cm":
		return v * 96 / 2.54, nil
	case "mm":
		return v * 96 / 25.4, nil
	case "em":
		return v * 16, nil
	case "ex":
		return v * 8, nil
	case "%":
		return v / 100 * parent, nil
	default:
		return 0, fmt.Errorf("%w: unknown unit in %q", ErrParse, length)
	}
}

func setRootDimensions(content, width, height string) string {
	loc := rootSVGRe.FindStringIndex(content)
	if loc == nil {
		return content
	}
	tag := dimAttrRe.ReplaceAllString(content[loc[0]:loc[1]], "")
	tag = `<svg width="` + width + `" height="` + height + `"` + strings.TrimPrefix(tag, "<svg")
	return content[:loc[0]] + tag + content[loc[1]:]
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// outputSize scales the CSS size and caps the longest side at MaxPixels.
func outputSize(w, h float64) (int, int) {
	pw, ph := w*Scale, h*Scale
	if longest := math.Max(pw, ph); longest > MaxPixels {
		ratio := MaxPixels / longest
		pw, ph = pw*ratio, ph*ratio
	}
	return max(1, int(math.Round(pw))), max(1, int(math.Round(ph)))
}

func rasterize(content string, w, h float64, outPath string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrRasterize, r)
		}
	}()

	// oksvg reads unitless root dimensions only.
	content = setRootDimensions(content, formatFloat(w), formatFloat(h))
	icon, err := oksvg.ReadIconStream(strings.NewReader(content), oksvg.IgnoreErrorMode)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRasterize, err)
	}
	if icon.ViewBox.W <= 0 || icon.ViewBox.H <= 0 {
		icon.ViewBox.X, icon.ViewBox.Y = 0, 0
		icon.ViewBox.W, icon.ViewBox.H = w, h
	}

	pw, ph := outputSize(w, h)
	icon.SetTarget(0, 0, float64(pw), float64(ph))

	img := image.NewRGBA(image.Rect(0, 0, pw, ph))
	scanner := rasterx.NewScannerGV(pw, ph, img, img.Bounds())
	icon.Draw(rasterx.NewDasher(pw, ph, scanner), 1)

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return fmt.Errorf("%w: %v", ErrRasterize, err)
	}
	if err := os.WriteFile(outPath, buf.Bytes(), 0o600); err != nil {
		return fmt.Errorf("writing png: %w", err)
	}
	return nil
}
