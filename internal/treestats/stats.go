package treestats

import (
	"bytes"
	"cmp"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/dustin/go-humanize"

	"github.com/alnah/go-repo2pdf/internal/fileproc"
)

// StatsHeading titles the statistics section.
const StatsHeading = "# Code Statistics"

// MaxExtensions caps the rows of the extension table.
const MaxExtensions = 20

// LanguageStats aggregates the code files of one language.
type LanguageStats struct {
	Language string
	Files    int
	Lines    int
}

// ExtensionStats counts the files sharing one extension.
type ExtensionStats struct {
	Extension string
	Files     int
}

// Stats summarizes the files of a repository.
type Stats struct {
	Files      int
	Lines      int              // lines of code files only
	Size       int64            // bytes, all files
	Languages  []LanguageStats  // by Lines, descending
	Extensions []ExtensionStats // by Files, descending
}

// Collect walks root with the same rules as fileproc.CollectFiles and
// aggregates the totals. Lines are counted for code files that decode
// as UTF-8; other files add to the file count and size only.
func Collect(root string, ignores []string) (Stats, error) {
	files, err := fileproc.CollectFiles(root, ignores, nil)
	if err != nil {
		return Stats{}, err
	}

	var (
		s     Stats
		langs = map[string]*LanguageStats{}
		exts  = map[string]int{}
	)
	for _, rel := range files {
		abs := filepath.Join(root, filepath.FromSlash(rel))
		info, err := os.Stat(abs)
		if err != nil {
			continue
		}
		s.Files++
		s.Size += info.Size()

		ext := strings.ToLower(path.Ext(rel))
		if ext != "" {
			exts[ext]++
		}

		if fileproc.Classify(rel) != fileproc.Code {
			continue
		}
		name := languageName(rel)
		ls, ok := langs[name]
		if !ok {
			ls = &LanguageStats{Language: name}
			langs[name] = ls
		}
		ls.Files++
		n := countLines(abs)
		ls.Lines += n
		s.Lines += n
	}

	for _, ls := range langs {
		s.Languages = append(s.Languages, *ls)
	}
	slices.SortFunc(s.Languages, func(a, b LanguageStats) int {
		return cmp.Or(cmp.Compare(b.Lines, a.Lines), cmp.Compare(b.Files, a.Files), cmp.Compare(a.Language, b.Language))
	})
	for ext, n := range exts {
		s.Extensions = append(s.Extensions, ExtensionStats{Extension: ext, Files: n})
	}
	slices.SortFunc(s.Extensions, func(a, b ExtensionStats) int {
		return cmp.Or(cmp.Compare(b.Files, a.Files), cmp.Compare(a.Extension, b.Extension))
	})
	return s, nil
}

// languageName labels a code file. Files fenced without a language
// (package.json, lock files) are grouped under their extension.
func languageName(rel string) string {
	lang, _ := fileproc.LanguageFor(rel)
	if lang != "" {
		return lang
	}
	if ext := strings.TrimPrefix(strings.ToLower(path.Ext(rel)), "."); ext != "" {
		return ext
	}
	return path.Base(rel)
}

// countLines counts lines the way an editor does: a final line without
// a trailing newline still counts. Unreadable or non-UTF-8 files count 0.
func countLines(file string) int {
	data, err := os.ReadFile(file) // #nosec G304 -- path comes from the repository walk
	if err != nil || !utf8.Valid(data) || len(data) == 0 {
		return 0
	}
	n := bytes.Count(data, []byte{'\n'})
	if data[len(data)-1] != '\n' {
		n++
	}
	return n
}

// Markdown renders s as a section with a totals list and two tables.
func (s Stats) Markdown() string {
	var b strings.Builder
	b.WriteString(StatsHeading + "\n\n")
	fmt.Fprintf(&b, "- Total files: %s\n", humanize.Comma(int64(s.Files)))
	fmt.Fprintf(&b, "- Total lines: %s\n", humanize.Comma(int64(s.Lines)))
	fmt.Fprintf(&b, "- Total size: %s\n", humanize.Bytes(uint64(max(s.Size, 0)))) // #nosec G115 -- clamped above

	if len(s.Languages) > 0 {
		b.WriteString("\n## By Language\n\n")
		b.WriteString("| Language | Files | Lines |\n")
		b.WriteString("|----------|-------|-------|\n")
		for _, l := range s.Languages {
			fmt.Fprintf(&b, "| %s | %d | %s |\n", l.Language, l.Files, humanize.Comma(int64(l.Lines)))
		}
	}

	if len(s.Extensions) > 0 {
		b.WriteString("\n## By Extension\n\n")
		b.WriteString("| Extension | Files |\n")
		b.WriteString("|-----------|-------|\n")
		for _, e := range s.Extensions[:min(len(s.Extensions), MaxExtensions)] {
			fmt.Fprintf(&b, "| %s | %d |\n", e.Extension, e.Files)
		}
	}
	return b.String()
}
