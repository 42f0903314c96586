package repo2pdf

import (
	"fmt"
	"strings"
	"text/template"
)

// headerData feeds the LaTeX header template.
type headerData struct {
	Title            string
	Author           string
	MonoFont         string
	EmojiFonts       []string
	CodeFontSize     string
	LineSpread       string
	ParSkip          string
	CodeBlockBg      string
	CodeBlockBorder  string
	CodeBlockPadding string
}

// latexEscaper escapes characters with a special meaning in LaTeX text.
var latexEscaper = strings.NewReplacer(
	`\`, `\textbackslash{}`,
	`{`, `\{`,
	`}`, `\}`,
	`$`, `\$`,
	`&`, `\&`,
	`%`, `\%`,
	`#`, `\#`,
	`_`, `\_`,
	`~`, `\textasciitilde{}`,
	`^`, `\textasciicircum{}`,
)

// renderHeader executes the header template with << >> delimiters, which
// keeps LaTeX braces literal.
func renderHeader(src string, layout *Layout, title, author string) (string, error) {
	tmpl, err := template.New("header").Delims("<<", ">>").Option("missingkey=error").Parse(src)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrHeaderRender, err)
	}

	mono := layout.MonoFont
	if mono == "" {
		mono = "DejaVu Sans Mono"
	}
	data := headerData{
		Title:            latexEscaper.Replace(title),
		Author:           latexEscaper.Replace(author),
		MonoFont:         mono,
		EmojiFonts:       layout.EmojiFonts,
		CodeFontSize:     layout.CodeFontSize,
		LineSpread:       layout.LineSpread,
		ParSkip:          layout.ParSkip,
		CodeBlockBg:      layout.CodeBlockBg,
		CodeBlockBorder:  layout.CodeBlockBorder,
		CodeBlockPadding: layout.CodeBlockPadding,
	}

	var b strings.Builder
	if err := tmpl.Execute(&b, data); err != nil {
		return "", fmt.Errorf("%w: %v", ErrHeaderRender, err)
	}
	return b.String(), nil
}
