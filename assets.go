package repo2pdf

import (
	"errors"

	"github.com/alnah/go-repo2pdf/internal/assets"
)

// Asset name constants for the built-in header and templates.
const (
	// DefaultHeader is the name of the built-in LaTeX header template.
	DefaultHeader = assets.DefaultHeaderName

	// DefaultTemplate is the name of the built-in document template.
	DefaultTemplate = assets.DefaultTemplateName
)

// AssetLoader defines the contract for loading the LaTeX header and the
// document templates. Implementations may load from the filesystem,
// embedded assets or anything else.
type AssetLoader interface {
	// LoadHeader loads a LaTeX header template by name (without .tex).
	// Returns ErrHeaderNotFound if it doesn't exist.
	LoadHeader(name string) (string, error)

	// LoadTemplate loads a YAML document template by name (without .yaml).
	// Returns ErrTemplateNotFound if it doesn't exist.
	LoadTemplate(name string) (string, error)
}

// NewAssetLoader creates an AssetLoader for the given base path.
// If basePath is empty, returns a loader using only embedded assets.
// If basePath is set, custom assets take precedence with fallback to embedded.
//
// The basePath directory may contain:
//   - latex/{name}.tex for header templates
//   - templates/{name}.yaml for document templates
//
// Returns ErrInvalidAssetPath if basePath is set but not a readable directory.
func NewAssetLoader(basePath string) (AssetLoader, error) {
	resolver, err := assets.NewAssetResolver(basePath)
	if err != nil {
		return nil, convertAssetError(err)
	}
	return &assetLoaderAdapter{resolver: resolver}, nil
}

// TemplateNames lists the embedded document templates.
func TemplateNames() []string {
	return assets.TemplateNames()
}

// assetLoaderAdapter wraps the internal resolver to return public errors.
type assetLoaderAdapter struct {
	resolver *assets.AssetResolver
}

func (a *assetLoaderAdapter) LoadHeader(name string) (string, error) {
	content, err := a.resolver.LoadHeader(name)
	return content, convertAssetError(err)
}

func (a *assetLoaderAdapter) LoadTemplate(name string) (string, error) {
	content, err := a.resolver.LoadTemplate(name)
	return content, convertAssetError(err)
}

// convertAssetError maps internal asset errors to public errors.
func convertAssetError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, assets.ErrHeaderNotFound):
		return wrapError(ErrHeaderNotFound, err)
	case errors.Is(err, assets.ErrTemplateNotFound), errors.Is(err, assets.ErrInvalidAssetName):
		return wrapError(ErrTemplateNotFound, err)
	case errors.Is(err, assets.ErrInvalidBasePath), errors.Is(err, assets.ErrPathTraversal):
		return wrapError(ErrInvalidAssetPath, err)
	default:
		return err
	}
}

// wrapError keeps the original message while matching the public
// sentinel with errors.Is.
func wrapError(sentinel, original error) error {
	return &wrappedAssetError{sentinel: sentinel, original: original}
}

type wrappedAssetError struct {
	sentinel error
	original error
}

func (e *wrappedAssetError) Error() string { return e.original.Error() }

// Unwrap returns the public sentinel; internal errors stay unexported.
func (e *wrappedAssetError) Unwrap() error { return e.sentinel }
