// Package hints provides actionable error hints for common failure scenarios.
// Hints are formatted consistently as "\n  hint: <text>" for appending to error messages.
package hints

import (
	"runtime"
	"strings"
)

// GOOS is swapped in tests to exercise platform-specific install hints.
var GOOS = runtime.GOOS

// ForPandocMissing returns an install hint for the typesetting toolchain.
func ForPandocMissing() string {
	switch GOOS {
	case "darwin":
		return format("brew install pandoc && brew install --cask mactex-no-gui")
	case "windows":
		return format("choco install pandoc miktex")
	default:
		return format("install pandoc and texlive-xetex (e.g. apt-get install pandoc texlive-xetex)")
	}
}

// ForInkscapeMissing returns a hint shown when SVG rasterization needs the
// external fallback and inkscape is not on PATH.
func ForInkscapeMissing() string {
	return format("install inkscape to convert SVGs the built-in rasterizer rejects")
}

// ForGitAuth returns hints for repository authentication failures.
func ForGitAuth(url string) string {
	if strings.HasPrefix(url, "git@") || strings.HasPrefix(url, "ssh://") {
		return format("set repository.auth.type: ssh and key_path in the config")
	}
	return format("set repository.auth.token (e.g. token: ${GITHUB_TOKEN}) in the config")
}

// ForRepoNotFound returns a hint for missing repositories or branches.
func ForRepoNotFound() string {
	return format("check repository.url and repository.branch")
}

// ForTimeout returns a hint about increasing the typesetting timeout.
func ForTimeout() string {
	return format("for large repositories, use --timeout or REPO2PDF_TIMEOUT")
}

// ForConfigNotFound returns hints for config file not found errors.
func ForConfigNotFound(searchedPaths []string) string {
	hint := "use --config /path/to/repo.yaml"
	for _, p := range searchedPaths {
		if strings.Contains(p, "repo2pdf") {
			hint += " or create " + p
			break
		}
	}
	return format(hint)
}

// ForOutputDirectory returns hints for output directory creation errors.
func ForOutputDirectory() string {
	return format("check parent directory exists and is writable")
}

// ForDeviceNotFound lists the known device presets.
func ForDeviceNotFound(available []string) string {
	if len(available) == 0 {
		return ""
	}
	return format("available devices: " + strings.Join(available, ", "))
}

// ForTemplateNotFound lists the known templates.
func ForTemplateNotFound(available []string) string {
	if len(available) == 0 {
		return ""
	}
	return format("available templates: " + strings.Join(available, ", "))
}

// ForDebugSource points at the preserved intermediate document.
func ForDebugSource(path string) string {
	if path == "" {
		return ""
	}
	return format("inspect " + path + " and rerun with -v for pandoc output")
}

func format(hint string) string {
	if hint == "" {
		return ""
	}
	return "\n  hint: " + hint
}
