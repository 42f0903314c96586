package pipeline

import (
	"net/url"
	"path"
	"path/filepath"
	"strings"

	"golang.org/x/net/html"

	"github.com/alnah/go-repo2pdf/internal/fileutil"
)

// imageCandidates lists where an image reference may live, in lookup
// order. A leading slash means "from the repository root".
//
//  1. relative to the source file's directory
//  2. relative to the repository root
//  3. (1) with symlinks resolved
//  4. (1) with leading "./" and "../" runs stripped
//  5. (2) with leading "./" and "../" runs stripped
func imageCandidates(p, sourceFile, repoRoot string) []string {
	p = strings.TrimLeft(filepath.FromSlash(p), string(filepath.Separator))
	stripped := strings.TrimLeft(filepath.ToSlash(p), "./")
	sourceDir := filepath.Dir(sourceFile)

	candidates := []string{
		filepath.Join(sourceDir, p),
		filepath.Join(repoRoot, p),
	}
	if resolved, err := filepath.EvalSymlinks(filepath.Join(sourceDir, p)); err == nil {
		candidates = append(candidates, resolved)
	}
	return append(candidates,
		filepath.Join(sourceDir, filepath.FromSlash(stripped)),
		filepath.Join(repoRoot, filepath.FromSlash(stripped)),
	)
}

// ResolveImagePath returns the first candidate location of p that exists
// as a file inside repoRoot. Both sourceFile and repoRoot are required.
func ResolveImagePath(p, sourceFile, repoRoot string) (string, bool) {
	found, _ := resolveImage(p, sourceFile, repoRoot)
	return found, found != ""
}

// resolveImage is ResolveImagePath plus every other distinct existing
// candidate, which callers report as ambiguity.
func resolveImage(p, sourceFile, repoRoot string) (found string, others []string) {
	if p == "" || sourceFile == "" || repoRoot == "" {
		return "", nil
	}
	seen := make(map[string]bool)
	for _, c := range imageCandidates(p, sourceFile, repoRoot) {
		if abs, err := filepath.Abs(c); err == nil {
			c = abs
		}
		if seen[c] || !fileutil.IsPathUnder(c, repoRoot) || !fileutil.FileExists(c) {
			continue
		}
		seen[c] = true
		if found == "" {
			found = c
		} else {
			others = append(others, c)
		}
	}
	return found, others
}

// isRemote reports whether target is fetched over the network.
func isRemote(target string) bool {
	return fileutil.IsURL(strings.ToLower(target))
}

// isLocalTarget excludes anchors, data URIs and other schemes.
func isLocalTarget(target string) bool {
	if target == "" || strings.HasPrefix(target, "#") || strings.HasPrefix(target, "//") {
		return false
	}
	u, err := url.Parse(target)
	return err != nil || u.Scheme == "" || len(u.Scheme) == 1 // drive letters
}

// isSVGTarget reports whether target names an SVG, ignoring any query or
// fragment.
func isSVGTarget(target string) bool {
	p := target
	if u, err := url.Parse(target); err == nil {
		p = u.Path
	}
	ext := strings.ToLower(path.Ext(p))
	return ext == ".svg" || ext == ".svgz"
}

// relToRoot expresses an absolute path inside repoRoot as a slash path
// relative to it.
func relToRoot(abs, repoRoot string) (string, bool) {
	root, err := filepath.Abs(repoRoot)
	if err != nil {
		return "", false
	}
	rel, err := filepath.Rel(root, abs)
	if err != nil || strings.HasPrefix(rel, "..") {
		return "", false
	}
	return filepath.ToSlash(rel), true
}

// imgTagSource parses a single <img> tag and returns its token and the
// index of its src attribute, or -1.
func imgTagSource(tag string) (html.Token, int) {
	z := html.NewTokenizer(strings.NewReader(tag))
	switch z.Next() {
	case html.StartTagToken, html.SelfClosingTagToken:
	default:
		return html.Token{}, -1
	}
	tok := z.Token()
	if tok.Data != "img" {
		return tok, -1
	}
	for i, a := range tok.Attr {
		if strings.EqualFold(a.Key, "src") {
			return tok, i
		}
	}
	return tok, -1
}
