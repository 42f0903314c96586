package fileproc

import (
	"path"
	"strings"

	"github.com/alecthomas/chroma/v2/lexers"
)

// Kind is the classification of one repository file.
type Kind int

// File kinds, each with its own handler.
const (
	Other Kind = iota
	Ignored
	Binary
	Image
	Markdown
	MDX
	HTML
	Code
	Cursorrules
)

var kindNames = [...]string{
	Other:       "other",
	Ignored:     "ignored",
	Binary:      "binary",
	Image:       "image",
	Markdown:    "markdown",
	MDX:         "mdx",
	HTML:        "html",
	Code:        "code",
	Cursorrules: "cursorrules",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "unknown"
	}
	return kindNames[k]
}

var binaryExts = map[string]bool{
	".pyc": true, ".pyo": true, ".pyd": true, ".so": true, ".dylib": true, ".dll": true,
	".class": true, ".o": true, ".obj": true, ".exe": true, ".bin": true,
	".a": true, ".jar": true, ".wasm": true,
}

var imageExts = map[string]bool{
	".png": true, ".jpg": true, ".jpeg": true, ".gif": true, ".ico": true,
	".svg": true, ".svgz": true, ".webp": true,
}

// codeLanguages maps extensions to the fence language pandoc highlights.
var codeLanguages = map[string]string{
	".js": "javascript", ".jsx": "javascript", ".ts": "typescript", ".tsx": "typescript",
	".vue": "javascript", ".svelte": "javascript",
	".css": "css", ".scss": "css", ".sass": "css", ".less": "css",
	".json": "json", ".graphql": "graphql", ".gql": "graphql",

	".py": "python", ".java": "java", ".cpp": "cpp", ".cc": "cpp", ".cxx": "cpp", ".hpp": "cpp",
	".c": "c", ".h": "c", ".go": "go", ".rs": "rust", ".rb": "ruby", ".php": "php",
	".cs": "csharp", ".kt": "kotlin", ".swift": "swift", ".scala": "scala", ".clj": "clojure",
	".ex": "elixir", ".exs": "elixir", ".erl": "erlang", ".lua": "lua", ".r": "r",

	".sh": "bash", ".bash": "bash", ".zsh": "bash", ".fish": "fish", ".sql": "sql",
	".yaml": "yaml", ".yml": "yaml", ".toml": "toml", ".xml": "xml", ".ini": "ini",
	".conf": "conf", ".env": "bash",

	".rst": "rst", ".txt": "text",
	".dockerfile": "dockerfile", ".makefile": "makefile",
}

// namedLanguages covers files recognized by full name. Lock and manifest
// files get an empty language so pandoc skips highlighting them.
var namedLanguages = map[string]string{
	"package.json":      "",
	"package-lock.json": "",
	"yarn.lock":         "",
	".gitignore":        "",
	".dockerignore":     "",
	".env.example":      "bash",
}

// AllowedDotfiles are hidden files collected despite their leading dot.
var AllowedDotfiles = map[string]bool{
	".cursorrules":  true,
	".gitignore":    true,
	".dockerignore": true,
	".env.example":  true,
}

// Classify returns the kind of the file at rel (slash separated) from
// its name alone. Ignore patterns are applied by the Processor.
func Classify(rel string) Kind {
	name := path.Base(rel)
	ext := strings.ToLower(path.Ext(name))

	switch {
	case name == ".cursorrules":
		return Cursorrules
	case binaryExts[ext]:
		return Binary
	case imageExts[ext]:
		return Image
	case ext == ".md" || ext == ".markdown":
		return Markdown
	case ext == ".mdx":
		return MDX
	case ext == ".html" || ext == ".htm":
		return HTML
	}
	if _, ok := LanguageFor(name); ok {
		return Code
	}
	return Other
}

// LanguageFor returns the fence language for a file name. Names without
// an extension (Dockerfile, Makefile, Jenkinsfile) are looked up in the
// chroma lexer registry.
func LanguageFor(name string) (string, bool) {
	name = path.Base(name)
	if lang, ok := namedLanguages[name]; ok {
		return lang, true
	}
	if lang, ok := codeLanguages[strings.ToLower(path.Ext(name))]; ok {
		return lang, true
	}
	if path.Ext(name) != "" {
		return "", false
	}
	lexer := lexers.Match(name)
	if lexer == nil {
		return "", false
	}
	cfg := lexer.Config()
	if len(cfg.Aliases) > 0 {
		return cfg.Aliases[0], true
	}
	return strings.ToLower(cfg.Name), true
}
