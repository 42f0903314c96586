package repo2pdf

import (
	"fmt"
	"slices"
	"strings"
	"time"
)

// Layout bounds.
const (
	MinTOCDepth = 1
	MaxTOCDepth = 6
)

// Processing bounds.
const (
	MinMaxLineLength = 40
	MaxMaxLineLength = 500
	MinTreeDepth     = 1
	MaxTreeDepth     = 10
)

// Defaults used when Layout or Processing is nil.
const (
	DefaultMargin         = "margin=1in"
	DefaultFontSize       = "10pt"
	DefaultCodeFontSize   = `\small`
	DefaultHighlightStyle = "monochrome"
	DefaultTOCDepth       = 2
	DefaultMaxFileSize    = 512 << 10
	DefaultMaxLineLength  = 200
	DefaultTreeMaxDepth   = 3
	DefaultTitle          = "{{repo_name}} Code Documentation"
)

// FontSizes lists the document class sizes accepted in Layout.FontSize.
var FontSizes = []string{"7pt", "8pt", "9pt", "10pt", "11pt", "12pt", "14pt"}

// Layout configures typesetting: page geometry, fonts and code block look.
type Layout struct {
	Margin         string   // geometry option, e.g. "margin=1in"
	MainFont       string   // empty = engine default
	SansFont       string   // empty = engine default
	MonoFont       string   // empty = engine default
	EmojiFonts     []string // tried in order; the first installed one is used
	FontSize       string   // one of FontSizes
	CodeFontSize   string   // LaTeX size command, e.g. `\small`
	LineSpread     string
	ParSkip        string
	HighlightStyle string
	TOCDepth       int

	CodeBlockBg      string // xcolor expressions
	CodeBlockBorder  string
	CodeBlockPadding string
}

// DefaultLayout returns layout settings with default values.
func DefaultLayout() *Layout {
	return &Layout{
		Margin:           DefaultMargin,
		FontSize:         DefaultFontSize,
		CodeFontSize:     DefaultCodeFontSize,
		LineSpread:       "1.0",
		ParSkip:          "6pt",
		HighlightStyle:   DefaultHighlightStyle,
		TOCDepth:         DefaultTOCDepth,
		CodeBlockBg:      "gray!5",
		CodeBlockBorder:  "gray!30",
		CodeBlockPadding: "5pt",
	}
}

// Validate checks that layout settings are usable.
// Returns nil if l is nil (nil means use defaults).
func (l *Layout) Validate() error {
	if l == nil {
		return nil
	}
	if l.TOCDepth < MinTOCDepth || l.TOCDepth > MaxTOCDepth {
		return fmt.Errorf("%w: %d (must be between %d and %d)", ErrInvalidTOCDepth, l.TOCDepth, MinTOCDepth, MaxTOCDepth)
	}
	if !slices.Contains(FontSizes, l.FontSize) {
		return fmt.Errorf("%w: %q (must be one of %s)", ErrInvalidFontSize, l.FontSize, strings.Join(FontSizes, ", "))
	}
	if l.CodeFontSize != "" && !strings.HasPrefix(l.CodeFontSize, `\`) {
		return fmt.Errorf("%w: code font size %q must be a LaTeX command", ErrInvalidLayout, l.CodeFontSize)
	}
	for name, v := range map[string]string{
		"margin":             l.Margin,
		"main font":          l.MainFont,
		"sans font":          l.SansFont,
		"mono font":          l.MonoFont,
		"line spread":        l.LineSpread,
		"parskip":            l.ParSkip,
		"code block bg":      l.CodeBlockBg,
		"code block border":  l.CodeBlockBorder,
		"code block padding": l.CodeBlockPadding,
	} {
		if strings.ContainsAny(v, "{}\n") {
			return fmt.Errorf("%w: %s %q contains braces or newlines", ErrInvalidLayout, name, v)
		}
	}
	return nil
}

// Processing configures how repository files become document content.
type Processing struct {
	MaxFileSize               int64 // bytes; larger non-image files are skipped, 0 disables
	MaxLineLength             int
	SplitLargeFiles           bool
	HeaderCommentsOutsideCode bool
	IncludeTree               bool
	IncludeStats              bool
	TreeMaxDepth              int
}

// DefaultProcessing returns processing settings with default values.
func DefaultProcessing() *Processing {
	return &Processing{
		MaxFileSize:               DefaultMaxFileSize,
		MaxLineLength:             DefaultMaxLineLength,
		SplitLargeFiles:           true,
		HeaderCommentsOutsideCode: true,
		IncludeTree:               true,
		IncludeStats:              true,
		TreeMaxDepth:              DefaultTreeMaxDepth,
	}
}

// Validate checks that processing settings are in range.
// Returns nil if p is nil (nil means use defaults).
func (p *Processing) Validate() error {
	if p == nil {
		return nil
	}
	if p.MaxLineLength < MinMaxLineLength || p.MaxLineLength > MaxMaxLineLength {
		return fmt.Errorf("%w: %d (must be between %d and %d)", ErrInvalidMaxLineLength, p.MaxLineLength, MinMaxLineLength, MaxMaxLineLength)
	}
	if p.TreeMaxDepth < MinTreeDepth || p.TreeMaxDepth > MaxTreeDepth {
		return fmt.Errorf("%w: %d (must be between %d and %d)", ErrInvalidTreeDepth, p.TreeMaxDepth, MinTreeDepth, MaxTreeDepth)
	}
	if p.MaxFileSize < 0 {
		return fmt.Errorf("%w: %d", ErrInvalidMaxFileSize, p.MaxFileSize)
	}
	return nil
}

// Input contains conversion parameters.
type Input struct {
	RepoPath  string // checked-out repository (required)
	RepoName  string // defaults to the base name of RepoPath
	OutputDir string // receives the PDF and, on failure, debug.md (required)

	Title    string            // supports {{repo_name}} and {{date}}; empty = DefaultTitle
	Date     string            // literal, "auto" or "auto:FORMAT"; empty = "auto"
	Template string            // document template name; empty = default
	Ignores  []string          // path patterns skipped everywhere
	Metadata map[string]string // PDF metadata (author, subject, keywords, ...)

	Layout     *Layout     // nil = DefaultLayout()
	Processing *Processing // nil = DefaultProcessing()
}

// Result describes a finished conversion.
type Result struct {
	PDFPath  string
	WorkDir  string // set only when the work directory was kept
	Files    int    // files that contributed a section
	Skipped  int    // files that produced nothing
	Duration time.Duration
}
