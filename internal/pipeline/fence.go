package pipeline

import "strings"

// LineKind classifies a line relative to fenced code blocks.
type LineKind int

const (
	// Text is a line outside any fenced block.
	Text LineKind = iota
	// FenceOpen starts a fenced block.
	FenceOpen
	// Code is a line inside a fenced block.
	Code
	// FenceClose ends the current fenced block.
	FenceClose
)

func (k LineKind) String() string {
	switch k {
	case Text:
		return "text"
	case FenceOpen:
		return "fence-open"
	case Code:
		return "code"
	case FenceClose:
		return "fence-close"
	default:
		return "unknown"
	}
}

// FenceScanner tracks whether successive lines are inside a fenced code
// block. It has two states, outside and inside; the opening fence decides
// which line may close the block.
//
// A fence is three or more backticks or tildes indented by at most three
// spaces. A block closes on a line made of the same character, at least as
// long as the opener, with nothing after it but whitespace. An unclosed
// block runs to the end of input.
type FenceScanner struct {
	inside bool
	char   byte
	length int
	info   string
}

// Next advances the scanner by one line and returns its kind.
func (s *FenceScanner) Next(line string) LineKind {
	char, length, rest, ok := parseFence(line)
	if !s.inside {
		if !ok || (char == '`' && strings.ContainsRune(rest, '`')) {
			return Text
		}
		s.inside = true
		s.char, s.length = char, length
		s.info = strings.TrimSpace(rest)
		return FenceOpen
	}
	if ok && char == s.char && length >= s.length && strings.TrimSpace(rest) == "" {
		s.inside = false
		s.char, s.length, s.info = 0, 0, ""
		return FenceClose
	}
	return Code
}

// Inside reports whether the scanner is within a fenced block.
func (s *FenceScanner) Inside() bool { return s.inside }

// Info returns the info string of the open block, e.g. "go" or "{=latex}".
func (s *FenceScanner) Info() string { return s.info }

// Raw reports whether the open block carries content for a specific output
// format (pandoc's raw attribute or a bare latex/tex tag). Such blocks are
// passed to the typesetter untouched.
func (s *FenceScanner) Raw() bool {
	if !s.inside {
		return false
	}
	info := strings.ToLower(s.info)
	return strings.Contains(info, "{=") || info == "latex" || info == "tex"
}

// parseFence reports whether line starts a fence run and returns the fence
// character, its run length and the text after it.
func parseFence(line string) (char byte, length int, rest string, ok bool) {
	indent := 0
	for indent < len(line) && indent < 4 && line[indent] == ' ' {
		indent++
	}
	if indent > 3 || indent >= len(line) {
		return 0, 0, "", false
	}
	char = line[indent]
	if char != '`' && char != '~' {
		return 0, 0, "", false
	}
	end := indent
	for end < len(line) && line[end] == char {
		end++
	}
	length = end - indent
	if length < 3 {
		return 0, 0, "", false
	}
	return char, length, line[end:], true
}
