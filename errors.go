package repo2pdf

import "errors"

// Sentinel errors for library operations.
var (
	ErrEmptyRepoPath  = errors.New("repository path cannot be empty")
	ErrRepoNotFound   = errors.New("repository directory not found")
	ErrEmptyOutputDir = errors.New("output directory cannot be empty")
	ErrNoContent      = errors.New("repository has no renderable files")
	ErrTypesetting    = errors.New("typesetting failed")
	ErrHeaderRender   = errors.New("latex header rendering failed")
	ErrWorkDir        = errors.New("failed to prepare work directory")
	ErrOutputDir      = errors.New("failed to create output directory")

	// Layout validation errors.
	ErrInvalidTOCDepth = errors.New("invalid TOC depth")
	ErrInvalidFontSize = errors.New("invalid font size")
	ErrInvalidLayout   = errors.New("invalid layout value")

	// Processing validation errors.
	ErrInvalidMaxLineLength = errors.New("invalid max line length")
	ErrInvalidTreeDepth     = errors.New("invalid tree depth")
	ErrInvalidMaxFileSize   = errors.New("invalid max file size")

	// Asset loading errors.
	ErrTemplateNotFound = errors.New("template not found")
	ErrTemplateParse    = errors.New("template parse failed")
	ErrHeaderNotFound   = errors.New("latex header not found")
	ErrInvalidAssetPath = errors.New("invalid asset path")
)

// TypesetError reports a failed typesetting run. DebugSource is the copy
// of the combined Markdown kept for inspection.
type TypesetError struct {
	Err         error
	DebugSource string
}

func (e *TypesetError) Error() string { return e.Err.Error() }

func (e *TypesetError) Unwrap() error { return e.Err }
