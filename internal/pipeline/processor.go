package pipeline

import (
	"context"
	"log/slog"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/alnah/go-repo2pdf/internal/imaging"
	"github.com/alnah/go-repo2pdf/internal/logfields"
)

// DefaultMaxLineLength is the code line length above which lines wrap.
const DefaultMaxLineLength = 200

var (
	referenceImage = regexp.MustCompile(`!\[([^\]]*)\]\[([^\]]*)\]`)
	inlineImage    = regexp.MustCompile(`!\[([^\]]*)\]\(\s*(<[^>]*>|[^\s)]+)(?:\s+("[^"]*"|'[^']*'))?\s*\)`)
	htmlImage      = regexp.MustCompile(`(?i)<img\s[^>]*>`)
	inlineSVG      = regexp.MustCompile(`(?is)<svg\b[^>]*>.*?</svg>`)
)

// ImageResolver materializes images for the document. *imaging.Converter
// satisfies it. Returned paths are relative to the work directory.
type ImageResolver interface {
	ConvertImage(ctx context.Context, path, root string) (string, error)
	Download(ctx context.Context, url string) (string, error)
	ConvertInlineSVG(ctx context.Context, svg string) (string, error)
}

var _ ImageResolver = (*imaging.Converter)(nil)

// Processor rewrites Markdown so it can be embedded in the combined
// document. Passes run in a fixed order:
//
//  1. strip fence title attributes
//  2. collect reference definitions
//  3. resolve reference-style images
//  4. rewrite inline images
//  5. rewrite <img> sources that point at SVGs
//  6. rasterize inline <svg> elements
//  7. escape \u sequences outside code
//  8. hard-wrap long code lines
//  9. escape standalone --- lines
//
// Image passes skip fenced code. Failed images are dropped from the text.
type Processor struct {
	images        ImageResolver
	logger        *slog.Logger
	maxLineLength int
}

// ProcessorOption configures a Processor.
type ProcessorOption func(*Processor)

// WithLogger sets the logger for image diagnostics.
func WithLogger(l *slog.Logger) ProcessorOption {
	return func(p *Processor) { p.logger = l }
}

// WithMaxLineLength sets the code wrap threshold. Panics if n <= 0.
func WithMaxLineLength(n int) ProcessorOption {
	if n <= 0 {
		panic("pipeline: max line length must be positive")
	}
	return func(p *Processor) { p.maxLineLength = n }
}

// NewProcessor creates a Processor. A nil images resolver disables the
// image passes.
func NewProcessor(images ImageResolver, opts ...ProcessorOption) *Processor {
	p := &Processor{
		images:        images,
		logger:        logfields.Discard(),
		maxLineLength: DefaultMaxLineLength,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// MaxLineLength returns the configured wrap threshold.
func (p *Processor) MaxLineLength() int { return p.maxLineLength }

// Process runs every pass over content. sourceFile is the absolute path
// of the Markdown file and repoRoot the repository checkout; both anchor
// relative image references.
func (p *Processor) Process(ctx context.Context, content, sourceFile, repoRoot string) string {
	if ctx.Err() != nil {
		return content
	}

	content = NormalizeLineEndings(content)
	content = StripFenceTitles(content)
	refs := ExtractReferences(content)

	if p.images != nil {
		r := imageRewrite{p: p, ctx: ctx, sourceFile: sourceFile, repoRoot: repoRoot}
		content = rewriteText(content, func(text string) string { return r.references(text, refs) })
		content = rewriteText(content, r.inline)
		content = rewriteText(content, r.htmlImages)
		content = rewriteText(content, r.inlineSVG)
	}

	content = EscapeUnicodeSequences(content)
	content = HardWrapCodeBlocks(content, p.maxLineLength)
	return EscapeRuleLines(content)
}

// imageRewrite carries the per-file state of the image passes.
type imageRewrite struct {
	p          *Processor
	ctx        context.Context
	sourceFile string
	repoRoot   string
}

// target maps an image reference to its rewritten form. keep is false
// when the reference must be dropped.
func (r imageRewrite) target(ref string) (out string, keep bool) {
	log := r.p.logger.With(logfields.Path(r.sourceFile), logfields.Image(ref))

	if isRemote(ref) {
		rel, err := r.p.images.Download(r.ctx, ref)
		if err != nil {
			log.Warn("dropping remote image", logfields.Error(err))
			return "", false
		}
		return rel, true
	}
	if !isLocalTarget(ref) {
		return ref, true
	}

	found, others := resolveImage(ref, r.sourceFile, r.repoRoot)
	if len(others) > 0 {
		log.Debug("image reference is ambiguous, using first match",
			slog.String("chosen", found), slog.Any("candidates", others))
	}

	if isSVGTarget(ref) {
		if found == "" {
			log.Warn("dropping unresolved svg image")
			return "", false
		}
		rel, err := r.p.images.ConvertImage(r.ctx, found, r.repoRoot)
		if err != nil {
			log.Warn("dropping svg image", logfields.Error(err))
			return "", false
		}
		return rel, true
	}

	if found != "" {
		if rel, ok := relToRoot(found, r.repoRoot); ok {
			return rel, true
		}
	}
	return ref, true
}

func (r imageRewrite) references(text string, refs ReferenceTable) string {
	if len(refs) == 0 {
		return text
	}
	return referenceImage.ReplaceAllStringFunc(text, func(m string) string {
		sub := referenceImage.FindStringSubmatch(m)
		alt, label := sub[1], sub[2]
		if label == "" {
			label = alt
		}
		ref, ok := refs.Lookup(label)
		if !ok {
			return m
		}
		out, keep := r.target(ref.Destination)
		if !keep {
			return ""
		}
		return markdownImage(alt, out, quoteTitle(ref.Title))
	})
}

func (r imageRewrite) inline(text string) string {
	return inlineImage.ReplaceAllStringFunc(text, func(m string) string {
		sub := inlineImage.FindStringSubmatch(m)
		alt, dest, title := sub[1], sub[2], sub[3]
		dest = strings.TrimSuffix(strings.TrimPrefix(dest, "<"), ">")

		out, keep := r.target(dest)
		switch {
		case !keep:
			return ""
		case out == dest:
			return m
		default:
			return markdownImage(alt, out, title)
		}
	})
}

func (r imageRewrite) htmlImages(text string) string {
	return htmlImage.ReplaceAllStringFunc(text, func(tag string) string {
		tok, i := imgTagSource(tag)
		if i < 0 || !isSVGTarget(tok.Attr[i].Val) {
			return tag
		}
		out, keep := r.target(tok.Attr[i].Val)
		if !keep {
			return ""
		}
		tok.Attr[i].Val = out
		return tok.String()
	})
}

func (r imageRewrite) inlineSVG(text string) string {
	return inlineSVG.ReplaceAllStringFunc(text, func(svg string) string {
		if !imaging.IsValidSVG(svg) {
			return svg
		}
		name, err := r.p.images.ConvertInlineSVG(r.ctx, svg)
		if err != nil {
			r.p.logger.Debug("keeping inline svg", logfields.Path(r.sourceFile), logfields.Error(err))
			return svg
		}
		return "![](" + filepath.ToSlash(filepath.Join(imaging.EmojiDir, name)) + ")"
	})
}

func markdownImage(alt, target, quotedTitle string) string {
	if strings.ContainsAny(target, " \t") {
		target = "<" + target + ">"
	}
	if quotedTitle == "" {
		return "![" + alt + "](" + target + ")"
	}
	return "![" + alt + "](" + target + " " + quotedTitle + ")"
}

func quoteTitle(title string) string {
	if title == "" {
		return ""
	}
	if !strings.Contains(title, `"`) {
		return `"` + title + `"`
	}
	return strconv.Quote(title)
}
