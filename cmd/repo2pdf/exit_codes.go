package main

import (
	"errors"
	"os"

	repo2pdf "github.com/alnah/go-repo2pdf"
	"github.com/alnah/go-repo2pdf/internal/config"
	"github.com/alnah/go-repo2pdf/internal/gitrepo"
)

// Exit codes for the repo2pdf CLI.
// Follows Unix conventions: 0=success, 1=general, 2=usage, and custom codes < 126.
const (
	ExitSuccess    = 0 // PDF written
	ExitGeneral    = 1 // General/unexpected error
	ExitUsage      = 2 // Invalid flags, config, or validation
	ExitIO         = 3 // File not found, permission denied
	ExitRepository = 4 // Clone/fetch failed: auth, missing repo or branch, network
	ExitTypeset    = 5 // pandoc/xelatex missing or failed
)

// exitCodeFor returns the appropriate exit code for an error.
// It uses errors.Is/As on wrapped errors, so callers must wrap with %w.
func exitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}

	// Typesetting engine (exit 5)
	if errors.Is(err, repo2pdf.ErrTypesetting) || errors.Is(err, ErrPandocMissing) {
		return ExitTypeset
	}

	// Repository access (exit 4)
	if gitrepo.IsAccessError(err) || errors.Is(err, ErrSync) {
		return ExitRepository
	}

	// Usage/config/validation errors (exit 2)
	if errors.Is(err, ErrNoConfig) ||
		errors.Is(err, ErrUnexpectedArgument) ||
		errors.Is(err, ErrInvalidTimeout) ||
		errors.Is(err, ErrUnsupportedShell) ||
		errors.Is(err, config.ErrConfigNotFound) ||
		errors.Is(err, config.ErrEmptyConfigName) ||
		errors.Is(err, config.ErrEmptyConfig) ||
		errors.Is(err, config.ErrConfigParse) ||
		errors.Is(err, config.ErrFieldTooLong) ||
		errors.Is(err, config.ErrInvalidValue) ||
		errors.Is(err, config.ErrUnknownPreset) ||
		errors.Is(err, config.ErrRetiredSetting) ||
		errors.Is(err, repo2pdf.ErrInvalidTOCDepth) ||
		errors.Is(err, repo2pdf.ErrInvalidFontSize) ||
		errors.Is(err, repo2pdf.ErrInvalidLayout) ||
		errors.Is(err, repo2pdf.ErrInvalidMaxLineLength) ||
		errors.Is(err, repo2pdf.ErrInvalidTreeDepth) ||
		errors.Is(err, repo2pdf.ErrInvalidMaxFileSize) ||
		errors.Is(err, repo2pdf.ErrInvalidAssetPath) ||
		errors.Is(err, repo2pdf.ErrHeaderNotFound) {
		return ExitUsage
	}

	// I/O errors (exit 3)
	if errors.Is(err, os.ErrNotExist) ||
		errors.Is(err, os.ErrPermission) ||
		errors.Is(err, repo2pdf.ErrWorkDir) ||
		errors.Is(err, repo2pdf.ErrOutputDir) ||
		errors.Is(err, repo2pdf.ErrRepoNotFound) ||
		errors.Is(err, repo2pdf.ErrNoContent) {
		return ExitIO
	}

	return ExitGeneral
}
