package fileproc

import (
	"fmt"
	"io/fs"
	"log/slog"
	"path"
	"path/filepath"
	"slices"
	"strings"

	"github.com/alnah/go-repo2pdf/internal/logfields"
)

// ShouldIgnore reports whether rel (slash separated, relative to the
// repository root) matches one of patterns. A pattern matches when it is
// a substring of "/"+rel, so "build" also catches "rebuild.go" while
// "/build/" only catches a build directory at any depth. Patterns with
// wildcards are also tried as globs against the base name and the whole
// path. Directory paths end in "/".
func ShouldIgnore(rel string, patterns []string) bool {
	rel = filepath.ToSlash(rel)
	rooted := "/" + rel
	trimmed := strings.TrimSuffix(rel, "/")
	name := path.Base(trimmed)

	for _, p := range patterns {
		p = filepath.ToSlash(p)
		if strings.Trim(p, "/") == "" {
			continue
		}
		if strings.Contains(rooted, p) {
			return true
		}
		if strings.ContainsAny(p, "*?[") {
			glob := strings.Trim(p, "/")
			if ok, _ := path.Match(glob, name); ok {
				return true
			}
			if ok, _ := path.Match(glob, trimmed); ok {
				return true
			}
		}
	}
	return false
}

// isHidden reports dot-prefixed names that are not explicitly allowed.
func isHidden(name string) bool {
	return strings.HasPrefix(name, ".") && !AllowedDotfiles[name]
}

// CollectFiles walks root and returns the slash-separated relative paths
// of regular files to render, sorted. Hidden entries (other than
// AllowedDotfiles) and ignored paths are skipped; ignored or hidden
// directories are not descended into. Symlinks are not followed.
//
// Only a failure on root itself is returned. Unreadable entries below it
// are logged and skipped.
func CollectFiles(root string, ignores []string, logger *slog.Logger) ([]string, error) {
	if logger == nil {
		logger = logfields.Discard()
	}

	var files []string
	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if p == root {
			return err
		}
		rel, relErr := filepath.Rel(root, p)
		if relErr != nil {
			return relErr
		}
		rel = filepath.ToSlash(rel)

		if err != nil {
			logger.Warn("skipping unreadable entry", logfields.Path(rel), logfields.Error(err))
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if d.IsDir() {
			if strings.HasPrefix(d.Name(), ".") || ShouldIgnore(rel+"/", ignores) {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() || isHidden(d.Name()) || ShouldIgnore(rel, ignores) {
			return nil
		}
		files = append(files, rel)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking %s: %w", root, err)
	}
	slices.Sort(files)
	return files, nil
}
