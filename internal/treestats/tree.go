package treestats

import (
	"cmp"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/alnah/go-repo2pdf/internal/fileproc"
)

// DefaultMaxDepth is the number of directory levels listed below the root.
const DefaultMaxDepth = 3

// TreeHeading titles the tree section.
const TreeHeading = "# Project Structure"

const (
	branchMid  = "├── "
	branchLast = "└── "
	indentMid  = "│   "
	indentLast = "    "
)

// TreeOptions controls Tree.
type TreeOptions struct {
	MaxDepth int // levels below the root; <= 0 means DefaultMaxDepth
	Ignores  []string
}

// Tree returns a Markdown section holding the directory listing of root.
// Directories come first, then files, each group sorted by name without
// regard to case. Files carry their size. Hidden entries other than
// fileproc.AllowedDotfiles and ignored paths are left out.
func Tree(root string, opts TreeOptions) string {
	if opts.MaxDepth <= 0 {
		opts.MaxDepth = DefaultMaxDepth
	}

	lines := []string{filepath.Base(root) + "/"}
	lines = walkTree(root, "", "", 1, opts, lines)

	var b strings.Builder
	b.WriteString(TreeHeading + "\n\n```\n")
	b.WriteString(strings.Join(lines, "\n"))
	b.WriteString("\n```\n")
	return b.String()
}

type treeEntry struct {
	name  string
	dir   bool
	size  int64
	known bool
}

func walkTree(dir, rel, prefix string, depth int, opts TreeOptions, lines []string) []string {
	entries, err := readEntries(dir, rel, opts.Ignores)
	if err != nil {
		return append(lines, prefix+"[unreadable]")
	}

	for i, e := range entries {
		branch, indent := branchMid, indentMid
		if i == len(entries)-1 {
			branch, indent = branchLast, indentLast
		}
		if e.dir {
			lines = append(lines, prefix+branch+e.name+"/")
			if depth < opts.MaxDepth {
				lines = walkTree(filepath.Join(dir, e.name), path.Join(rel, e.name), prefix+indent, depth+1, opts, lines)
			}
			continue
		}
		size := "??"
		if e.known {
			size = humanize.Bytes(uint64(e.size)) // #nosec G115 -- sizes are non-negative
		}
		lines = append(lines, prefix+branch+e.name+" ("+size+")")
	}
	return lines
}

// readEntries lists the visible entries of dir, directories first.
func readEntries(dir, rel string, ignores []string) ([]treeEntry, error) {
	dirEntries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	entries := make([]treeEntry, 0, len(dirEntries))
	for _, d := range dirEntries {
		name := d.Name()
		if strings.HasPrefix(name, ".") && (d.IsDir() || !fileproc.AllowedDotfiles[name]) {
			continue
		}
		entryRel := path.Join(rel, name)
		if d.IsDir() {
			entryRel += "/"
		}
		if fileproc.ShouldIgnore(entryRel, ignores) {
			continue
		}
		e := treeEntry{name: name, dir: d.IsDir()}
		if !e.dir {
			if info, err := d.Info(); err == nil {
				e.size, e.known = info.Size(), true
			}
		}
		entries = append(entries, e)
	}

	slices.SortFunc(entries, func(a, b treeEntry) int {
		if a.dir != b.dir {
			if a.dir {
				return -1
			}
			return 1
		}
		return cmp.Or(
			cmp.Compare(strings.ToLower(a.name), strings.ToLower(b.name)),
			cmp.Compare(a.name, b.name),
		)
	})
	return entries, nil
}
