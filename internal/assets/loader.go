package assets

// DefaultHeaderName is the built-in LaTeX header.
const DefaultHeaderName = "header"

// DefaultTemplateName is the template used when none is selected.
const DefaultTemplateName = "default"

// AssetLoader loads LaTeX headers and document templates by name.
type AssetLoader interface {
	// LoadHeader returns the header template source (name without .tex).
	LoadHeader(name string) (string, error)

	// LoadTemplate returns the YAML document template (name without .yaml).
	LoadTemplate(name string) (string, error)
}
