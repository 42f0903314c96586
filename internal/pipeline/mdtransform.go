package pipeline

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// Wrap bounds for code lines.
const (
	MinWrapWidth = 40
	MaxWrapWidth = 160
)

var (
	crlfOrCR = regexp.MustCompile(`\r\n?`)

	fenceTitle = regexp.MustCompile(`^(\s{0,3}(?:` + "`{3,}" + `|~{3,})\s*)([\w+#.-]+)\s+title=(?:"[^"]*"|'[^']*')`)

	longUnicodeEscape  = regexp.MustCompile(`\\U([0-9A-Fa-f]{8})`)
	shortUnicodeEscape = regexp.MustCompile(`\\u([0-9A-Fa-f]{4})`)

	ruleLine = regexp.MustCompile(`(?m)^---$`)

	remoteMarkdownImage = regexp.MustCompile(`!\[[^\]]*\]\((https?://[^\s)]+)(\s+"[^"]*")?\)`)
	remoteHTMLImage     = regexp.MustCompile(`(?i)<img[^>]+src="https?://[^"]+"[^>]*>`)
)

// NormalizeLineEndings converts \r\n and \r to \n.
func NormalizeLineEndings(content string) string {
	return crlfOrCR.ReplaceAllString(content, "\n")
}

// StripFenceTitles reduces fence info strings like `go title="main.go"`
// to the bare language.
func StripFenceTitles(content string) string {
	lines := strings.Split(content, "\n")
	var s FenceScanner
	for i, line := range lines {
		if s.Next(line) == FenceOpen {
			lines[i] = fenceTitle.ReplaceAllString(line, "$1$2")
		}
	}
	return strings.Join(lines, "\n")
}

// EscapeUnicodeSequences turns literal \uXXXX and \UXXXXXXXX outside
// fenced blocks into \textbackslash{}u... so LaTeX does not read them as
// control sequences.
func EscapeUnicodeSequences(content string) string {
	return rewriteText(content, func(text string) string {
		text = longUnicodeEscape.ReplaceAllString(text, `\textbackslash{}U$1`)
		return shortUnicodeEscape.ReplaceAllString(text, `\textbackslash{}u$1`)
	})
}

// WrapWidths derives the hard-wrap threshold and segment width from the
// configured maximum line length.
func WrapWidths(maxLineLength int) (threshold, width int) {
	threshold = max(MinWrapWidth, maxLineLength)
	width = max(MinWrapWidth, min(MaxWrapWidth, maxLineLength*3/4))
	return threshold, width
}

// HardWrapCodeBlocks splits fenced code lines longer than the threshold
// into width-sized segments. Blocks holding raw output-format content are
// left alone.
func HardWrapCodeBlocks(content string, maxLineLength int) string {
	threshold, width := WrapWidths(maxLineLength)

	lines := strings.Split(content, "\n")
	out := make([]string, 0, len(lines))
	var s FenceScanner
	for _, line := range lines {
		if s.Next(line) != Code || s.Raw() || utf8.RuneCountInString(line) <= threshold {
			out = append(out, line)
			continue
		}
		out = append(out, splitRunes(line, width)...)
	}
	return strings.Join(out, "\n")
}

// WrapLines hard-wraps every line of content longer than the threshold
// derived from maxLineLength, with no regard for fences.
func WrapLines(content string, maxLineLength int) string {
	threshold, width := WrapWidths(maxLineLength)

	lines := strings.Split(content, "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		if utf8.RuneCountInString(line) <= threshold {
			out = append(out, line)
			continue
		}
		out = append(out, splitRunes(line, width)...)
	}
	return strings.Join(out, "\n")
}

// splitRunes cuts s into consecutive segments of at most width runes.
func splitRunes(s string, width int) []string {
	segments := make([]string, 0, utf8.RuneCountInString(s)/width+1)
	for s != "" {
		cut, n := 0, 0
		for cut < len(s) && n < width {
			_, size := utf8.DecodeRuneInString(s[cut:])
			cut += size
			n++
		}
		segments = append(segments, s[:cut])
		s = s[cut:]
	}
	return segments
}

// EscapeRuleLines escapes standalone --- lines outside fenced blocks so
// pandoc does not take them for a YAML metadata delimiter.
func EscapeRuleLines(content string) string {
	return rewriteText(content, func(text string) string {
		return ruleLine.ReplaceAllString(text, `\---`)
	})
}

// ScrubRemoteImages removes Markdown and HTML images that still point at
// http(s) URLs so the typesetter never reaches for the network.
func ScrubRemoteImages(content string) string {
	return rewriteText(content, func(text string) string {
		text = remoteMarkdownImage.ReplaceAllString(text, "")
		return remoteHTMLImage.ReplaceAllString(text, "")
	})
}

// rewriteText applies fn to each maximal run of lines outside fenced
// blocks. Fence lines and code are copied unchanged.
func rewriteText(content string, fn func(string) string) string {
	lines := strings.Split(content, "\n")
	out := make([]string, 0, len(lines))
	var (
		s   FenceScanner
		run []string
	)
	flush := func() {
		if len(run) == 0 {
			return
		}
		out = append(out, fn(strings.Join(run, "\n")))
		run = run[:0]
	}
	for _, line := range lines {
		if s.Next(line) == Text {
			run = append(run, line)
			continue
		}
		flush()
		out = append(out, line)
	}
	flush()
	return strings.Join(out, "\n")
}
