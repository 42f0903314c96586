package config

import "runtime"

// Processing defaults.
const (
	DefaultMaxFileSize   ByteSize = 512 << 10
	DefaultMaxLineLength          = 200
	DefaultTreeMaxDepth           = 3
	DefaultTOCDepth               = 2
	DefaultTitle                  = "{{repo_name}} Code Documentation"
	DefaultPreset                 = "desktop"
)

// DefaultIgnores skips dependency trees, build output, VCS metadata,
// editor state and generated lock files.
var DefaultIgnores = []string{
	"node_modules", "/vendor/", "bower_components",
	"/dist/", "/build/", "/out/", "/target/", "/.next/", "/.nuxt/",
	"/.git/", "/.svn/", "/.hg/",
	"__pycache__", "*.pyc", "*.pyo", "*.pyd", "/.venv/", "/venv/", "/.tox/", "/.eggs/", "*.egg-info",
	"/.idea/", "/.vscode/", "*.swp", "*.swo", ".DS_Store", "Thumbs.db",
	"*.log", "/.cache/", "/.temp/", "/tmp/",
	"package-lock.json", "yarn.lock", "pnpm-lock.yaml", "Cargo.lock", "Gemfile.lock", "poetry.lock", "Pipfile.lock",
}

type platformFonts struct {
	main, sans, mono string
	emoji            []string
}

func fontsFor(goos string) platformFonts {
	switch goos {
	case "darwin":
		return platformFonts{"Times New Roman", "Helvetica", "Menlo", []string{"Apple Color Emoji"}}
	case "windows":
		return platformFonts{"Cambria", "Calibri", "Consolas", []string{"Segoe UI Emoji"}}
	default:
		return platformFonts{"DejaVu Serif", "DejaVu Sans", "DejaVu Sans Mono", []string{"Noto Color Emoji"}}
	}
}

// DefaultConfig returns the settings a config file is applied over.
// Repository.URL is left empty and must come from the file.
func DefaultConfig() *Config {
	fonts := fontsFor(runtime.GOOS)
	return &Config{
		Repository:   RepositoryConfig{Branch: "main", Depth: 1},
		WorkspaceDir: "./repo-workspace",
		OutputDir:    "./repo-pdfs",
		PDF: PDFSettings{
			Margin:         "margin=1in",
			MainFont:       fonts.main,
			SansFont:       fonts.sans,
			MonoFont:       fonts.mono,
			EmojiFont:      fonts.emoji,
			FontSize:       "10pt",
			CodeFontSize:   `\small`,
			LineSpread:     "1.0",
			ParSkip:        "6pt",
			HighlightStyle: "monochrome",
			TOCDepth:       DefaultTOCDepth,
			Title:          DefaultTitle,

			CodeBlockBg:      "gray!5",
			CodeBlockBorder:  "gray!30",
			CodeBlockPadding: "5pt",

			SplitLargeFiles:                 true,
			RenderHeaderCommentsOutsideCode: true,
			MaxLineLength:                   DefaultMaxLineLength,
			MaxFileSize:                     DefaultMaxFileSize,
			IncludeTree:                     true,
			IncludeStats:                    true,
			TreeMaxDepth:                    DefaultTreeMaxDepth,

			Metadata: map[string]string{
				"author":   "repo2pdf",
				"creator":  "LaTeX",
				"producer": "XeLaTeX",
			},
		},
		Ignores:      append([]string(nil), DefaultIgnores...),
		DevicePreset: DefaultPreset,
	}
}
