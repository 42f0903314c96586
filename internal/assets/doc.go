// Package assets provides the LaTeX header template and the document
// templates used to build the front section of a repository document.
//
// # Loader Architecture
//
//	AssetLoader (interface)
//	    │
//	    ├── EmbeddedLoader    - built-in header and templates (go:embed)
//	    ├── FilesystemLoader  - project directory on disk
//	    └── AssetResolver     - custom-first with fallback to embedded
//
// # Directory Structure
//
//	{basePath}/
//	├── latex/
//	│   └── {name}.tex       # LaTeX header (text/template, << >> delimiters)
//	└── templates/
//	    └── {name}.yaml      # Document template
//
// # Security
//
// Asset names are validated to prevent path traversal. FilesystemLoader
// resolves symlinks and verifies paths stay within basePath.
package assets
