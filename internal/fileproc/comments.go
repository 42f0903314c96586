package fileproc

import (
	"regexp"
	"strings"
)

type commentStyle int

const (
	noComments commentStyle = iota
	cStyle
	hashStyle
	sqlStyle
)

var commentStyles = map[string]commentStyle{
	".js": cStyle, ".jsx": cStyle, ".ts": cStyle, ".tsx": cStyle, ".java": cStyle,
	".cpp": cStyle, ".c": cStyle, ".go": cStyle, ".cs": cStyle, ".php": cStyle,

	".py": hashStyle, ".sh": hashStyle, ".bash": hashStyle, ".zsh": hashStyle, ".rb": hashStyle,
	".yaml": hashStyle, ".yml": hashStyle, ".toml": hashStyle, ".ini": hashStyle,

	".sql": sqlStyle,
}

// ExtractHeaderComment splits a leading comment block from code so it can
// be rendered as prose. ext selects the comment syntax: // and /* */ for
// C-like languages, # for scripts and config, -- for SQL. Extraction stops
// at the first line that is not a comment; one blank line after the block
// is consumed. Content starting with a blank line has no header.
func ExtractHeaderComment(content, ext string) (header, body string) {
	lines := strings.Split(content, "\n")
	if len(lines) == 0 || strings.TrimSpace(lines[0]) == "" {
		return "", content
	}

	var (
		chunks []string
		i      int
	)
	switch commentStyles[strings.ToLower(ext)] {
	case cStyle:
		switch {
		case hasPrefix(lines[0], "/*"):
			var block []string
			line := strings.TrimPrefix(strings.TrimLeft(lines[0], " \t"), "/*")
			for i < len(lines) {
				if end := strings.Index(line, "*/"); end >= 0 {
					block = append(block, line[:end])
					i++
					break
				}
				block = append(block, line)
				i++
				if i < len(lines) {
					line = lines[i]
				}
			}
			chunks = append(chunks, cleanBlockComment(block))
			for i < len(lines) && hasPrefix(lines[i], "//") {
				chunks = append(chunks, stripMarker(lines[i], "//"))
				i++
			}
		case hasPrefix(lines[0], "//"):
			i, chunks = lineComments(lines, "//")
		default:
			return "", content
		}
	case hashStyle:
		if !hasPrefix(lines[0], "#") || strings.HasPrefix(lines[0], "#!") {
			return "", content
		}
		i, chunks = lineComments(lines, "#")
	case sqlStyle:
		if !hasPrefix(lines[0], "--") {
			return "", content
		}
		i, chunks = lineComments(lines, "--")
	default:
		return "", content
	}

	if i < len(lines) && strings.TrimSpace(lines[i]) == "" {
		i++
	}
	for j, c := range chunks {
		chunks[j] = strings.TrimRight(c, " \t")
	}
	return strings.TrimSpace(strings.Join(chunks, "\n")), strings.Join(lines[i:], "\n")
}

func hasPrefix(line, marker string) bool {
	return strings.HasPrefix(strings.TrimLeft(line, " \t"), marker)
}

func stripMarker(line, marker string) string {
	return strings.TrimLeft(strings.TrimPrefix(strings.TrimLeft(line, " \t"), marker), " \t")
}

func lineComments(lines []string, marker string) (int, []string) {
	var chunks []string
	i := 0
	for i < len(lines) && hasPrefix(lines[i], marker) {
		chunks = append(chunks, stripMarker(lines[i], marker))
		i++
	}
	return i, chunks
}

// cleanBlockComment drops the decorative leading "*" of javadoc-style
// block comment lines.
func cleanBlockComment(block []string) string {
	for i, line := range block {
		t := strings.TrimLeft(line, " \t")
		if strings.HasPrefix(t, "*") {
			t = strings.TrimLeft(strings.TrimPrefix(t, "*"), " \t")
		}
		block[i] = t
	}
	return strings.Join(block, "\n")
}

// LongLineColumn is where BreakLongLines starts reformatting.
const LongLineColumn = 80

// StringBreakLength is the shortest quoted string that gets split.
const StringBreakLength = 100

const stringChunk = 80

var longString = regexp.MustCompile(`["']([^"']{100,})["']`)

// BreakLongLines reformats code lines longer than limit: lines holding a
// bracketed list are broken after commas, and quoted strings of
// StringBreakLength or more characters are split into 80-character pieces
// joined by a backslash continuation. Other lines are left for hard
// wrapping.
func BreakLongLines(content string, limit int) string {
	lines := strings.Split(content, "\n")
	for i, line := range lines {
		if len(line) <= limit {
			continue
		}
		switch {
		case strings.Contains(line, "[") && strings.Contains(line, "]"):
			lines[i] = breakAtCommas(line, limit)
		case strings.ContainsAny(line, `"'`):
			lines[i] = breakLongStrings(line)
		}
	}
	return strings.Join(lines, "\n")
}

func breakAtCommas(line string, limit int) string {
	indent := leadingIndent(line)
	parts := strings.Split(line, ",")
	var out []string
	current := parts[0]
	for _, part := range parts[1:] {
		if len(current)+1+len(part) > limit {
			out = append(out, current+",")
			current = indent + strings.TrimLeft(part, " \t")
			continue
		}
		current += "," + part
	}
	return strings.Join(append(out, current), "\n")
}

func breakLongStrings(line string) string {
	indent := leadingIndent(line)
	return longString.ReplaceAllStringFunc(line, func(m string) string {
		quote := m[:1]
		inner := []rune(m[1 : len(m)-1])
		var pieces []string
		for len(inner) > stringChunk {
			pieces = append(pieces, string(inner[:stringChunk]))
			inner = inner[stringChunk:]
		}
		pieces = append(pieces, string(inner))
		return quote + strings.Join(pieces, quote+"\\\n"+indent+quote) + quote
	})
}

func leadingIndent(line string) string {
	return strings.Repeat(" ", len(line)-len(strings.TrimLeft(line, " \t")))
}
