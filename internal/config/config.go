package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/alnah/go-repo2pdf/internal/fileutil"
	"github.com/alnah/go-repo2pdf/internal/yamlutil"
)

// Sentinel errors for config operations.
var (
	ErrConfigNotFound  = errors.New("config file not found")
	ErrEmptyConfigName = errors.New("config name cannot be empty")
	ErrEmptyConfig     = errors.New("config file is empty")
	ErrConfigParse     = errors.New("failed to parse config")
	ErrFieldTooLong    = errors.New("field exceeds maximum length")
	ErrInvalidValue    = errors.New("invalid config value")
	ErrUnknownPreset   = errors.New("unknown device preset")
	ErrRetiredSetting  = errors.New("setting is no longer supported")
)

// Field length limits.
const (
	MaxURLLength    = 2048
	MaxBranchLength = 255
	MaxFontLength   = 100
	MaxTitleLength  = 200
	MaxLatexLength  = 50 // colors, dimensions, margin specs
)

// Validation ranges.
const (
	MinMaxLineLength = 40
	MaxMaxLineLength = 500
	MinTreeDepth     = 1
	MaxTreeDepth     = 10
	MinTOCDepth      = 1
	MaxTOCDepth      = 6
)

// ValidFontSizes lists the document class sizes xelatex accepts here.
var ValidFontSizes = []string{"7pt", "8pt", "9pt", "10pt", "11pt", "12pt", "14pt"}

// CodeFontSizes maps short names to LaTeX size commands.
var CodeFontSizes = map[string]string{
	"tiny":         `\tiny`,
	"scriptsize":   `\scriptsize`,
	"footnotesize": `\footnotesize`,
	"small":        `\small`,
	"normalsize":   `\normalsize`,
}

// HighlightStyles lists pandoc's built-in highlight styles.
var HighlightStyles = []string{
	"pygments", "tango", "espresso", "zenburn", "kate", "monochrome", "breezedark", "haddock",
}

// Config holds all configuration for one repository conversion.
type Config struct {
	Repository    RepositoryConfig        `yaml:"repository"`
	WorkspaceDir  string                  `yaml:"workspace_dir"`
	OutputDir     string                  `yaml:"output_dir"`
	PDF           PDFSettings             `yaml:"pdf_settings"`
	Ignores       []string                `yaml:"ignores"`
	DevicePreset  string                  `yaml:"device_preset"`
	DevicePresets map[string]DevicePreset `yaml:"device_presets"`

	projectRoot string
}

// RepositoryConfig names the repository to document.
type RepositoryConfig struct {
	URL    string     `yaml:"url"`
	Branch string     `yaml:"branch"`
	Depth  int        `yaml:"depth"` // 0 = full history
	Auth   AuthConfig `yaml:"auth"`
}

// AuthConfig holds credentials for private repositories. Token, password
// and key passphrase may reference environment variables as ${NAME}.
type AuthConfig struct {
	Type          string `yaml:"type"` // token, basic, ssh (empty = anonymous)
	Username      string `yaml:"username"`
	Password      string `yaml:"password"`
	Token         string `yaml:"token"`
	KeyPath       string `yaml:"key_path"`
	KeyPassphrase string `yaml:"key_passphrase"`
}

// PDFSettings controls layout and per-file processing.
type PDFSettings struct {
	Margin         string   `yaml:"margin"`
	MainFont       string   `yaml:"main_font"`
	SansFont       string   `yaml:"sans_font"`
	MonoFont       string   `yaml:"mono_font"`
	EmojiFont      FontList `yaml:"emoji_font"`
	FontSize       string   `yaml:"fontsize"`
	CodeFontSize   string   `yaml:"code_fontsize"`
	LineSpread     string   `yaml:"linespread"`
	ParSkip        string   `yaml:"parskip"`
	HighlightStyle string   `yaml:"highlight_style"`
	TOCDepth       int      `yaml:"toc_depth"`
	Title          string   `yaml:"title"`

	CodeBlockBg      string `yaml:"code_block_bg"`
	CodeBlockBorder  string `yaml:"code_block_border"`
	CodeBlockPadding string `yaml:"code_block_padding"`

	SplitLargeFiles                 bool     `yaml:"split_large_files"`
	RenderHeaderCommentsOutsideCode bool     `yaml:"render_header_comments_outside_code"`
	MaxLineLength                   int      `yaml:"max_line_length"`
	MaxFileSize                     ByteSize `yaml:"max_file_size"`
	IncludeTree                     bool     `yaml:"include_tree"`
	IncludeStats                    bool     `yaml:"include_stats"`
	TreeMaxDepth                    int      `yaml:"tree_max_depth"`

	Metadata map[string]string `yaml:"metadata"`

	// Retired keys; Validate rejects them with the replacement setting.
	EmojiDownload     *bool  `yaml:"emoji_download,omitempty"`
	CodeBlockStrategy string `yaml:"code_block_strategy,omitempty"`
}

// ProjectRoot is the directory holding the loaded config file, or the
// working directory for configs built in code.
func (c *Config) ProjectRoot() string {
	if c.projectRoot != "" {
		return c.projectRoot
	}
	wd, err := os.Getwd()
	if err != nil {
		return "."
	}
	return wd
}

// WorkspacePath resolves WorkspaceDir against the project root.
func (c *Config) WorkspacePath() string {
	return c.resolve(c.WorkspaceDir)
}

// OutputPath resolves OutputDir against the project root.
func (c *Config) OutputPath() string {
	return c.resolve(c.OutputDir)
}

// TemplatesPath is where user templates override the embedded ones.
func (c *Config) TemplatesPath() string {
	return filepath.Join(c.ProjectRoot(), "templates")
}

func (c *Config) resolve(p string) string {
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	return filepath.Join(c.ProjectRoot(), p)
}

// Validate checks required fields, ranges and enumerations.
func (c *Config) Validate() error {
	if err := c.Repository.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(c.WorkspaceDir) == "" {
		return fmt.Errorf("%w: workspace_dir cannot be empty", ErrInvalidValue)
	}
	if strings.TrimSpace(c.OutputDir) == "" {
		return fmt.Errorf("%w: output_dir cannot be empty", ErrInvalidValue)
	}
	return c.PDF.Validate()
}

// Validate checks the repository URL scheme, branch and auth settings.
func (r *RepositoryConfig) Validate() error {
	url := strings.TrimSpace(r.URL)
	if url == "" {
		return fmt.Errorf("%w: repository.url is required", ErrInvalidValue)
	}
	if err := validateFieldLength("repository.url", url, MaxURLLength); err != nil {
		return err
	}
	schemes := []string{"http://", "https://", "git@", "ssh://"}
	if !slices.ContainsFunc(schemes, func(s string) bool { return strings.HasPrefix(url, s) }) {
		return fmt.Errorf("%w: repository.url must start with one of: %s", ErrInvalidValue, strings.Join(schemes, ", "))
	}
	if strings.TrimSpace(r.Branch) == "" {
		return fmt.Errorf("%w: repository.branch cannot be empty", ErrInvalidValue)
	}
	if err := validateFieldLength("repository.branch", r.Branch, MaxBranchLength); err != nil {
		return err
	}
	if r.Depth < 0 {
		return fmt.Errorf("%w: repository.depth must be >= 0, got %d", ErrInvalidValue, r.Depth)
	}

	switch r.Auth.Type {
	case "":
	case "token":
		if r.Auth.Token == "" {
			return fmt.Errorf("%w: repository.auth.token is required for token auth", ErrInvalidValue)
		}
	case "basic":
		if r.Auth.Username == "" || r.Auth.Password == "" {
			return fmt.Errorf("%w: repository.auth.username and password are required for basic auth", ErrInvalidValue)
		}
	case "ssh":
		if r.Auth.KeyPath == "" {
			return fmt.Errorf("%w: repository.auth.key_path is required for ssh auth", ErrInvalidValue)
		}
	default:
		return fmt.Errorf("%w: repository.auth.type %q (must be token, basic or ssh)", ErrInvalidValue, r.Auth.Type)
	}
	return nil
}

// Validate checks layout and processing settings. CodeFontSize must
// already be normalized (see Normalize).
func (p *PDFSettings) Validate() error {
	if p.EmojiDownload != nil {
		return fmt.Errorf("%w: pdf_settings.emoji_download (emoji render through the fonts in pdf_settings.emoji_font; remove the key)", ErrRetiredSetting)
	}
	if p.CodeBlockStrategy != "" {
		return fmt.Errorf("%w: pdf_settings.code_block_strategy (code blocks always use pandoc highlighting; remove the key)", ErrRetiredSetting)
	}

	fields := []struct {
		name  string
		value string
		max   int
	}{
		{"pdf_settings.main_font", p.MainFont, MaxFontLength},
		{"pdf_settings.sans_font", p.SansFont, MaxFontLength},
		{"pdf_settings.mono_font", p.MonoFont, MaxFontLength},
		{"pdf_settings.margin", p.Margin, MaxLatexLength},
		{"pdf_settings.linespread", p.LineSpread, MaxLatexLength},
		{"pdf_settings.parskip", p.ParSkip, MaxLatexLength},
		{"pdf_settings.code_block_bg", p.CodeBlockBg, MaxLatexLength},
		{"pdf_settings.code_block_border", p.CodeBlockBorder, MaxLatexLength},
		{"pdf_settings.code_block_padding", p.CodeBlockPadding, MaxLatexLength},
		{"pdf_settings.title", p.Title, MaxTitleLength},
	}
	for _, f := range fields {
		if err := validateFieldLength(f.name, f.value, f.max); err != nil {
			return err
		}
	}
	for i, font := range p.EmojiFont {
		if err := validateFieldLength(fmt.Sprintf("pdf_settings.emoji_font[%d]", i), font, MaxFontLength); err != nil {
			return err
		}
	}

	if p.MainFont == "" || p.MonoFont == "" {
		return fmt.Errorf("%w: pdf_settings.main_font and mono_font are required", ErrInvalidValue)
	}
	if !slices.Contains(ValidFontSizes, p.FontSize) {
		return fmt.Errorf("%w: pdf_settings.fontsize %q (must be one of %s)",
			ErrInvalidValue, p.FontSize, strings.Join(ValidFontSizes, ", "))
	}
	if !strings.HasPrefix(p.CodeFontSize, `\`) {
		return fmt.Errorf("%w: pdf_settings.code_fontsize %q (use tiny, scriptsize, footnotesize, small, normalsize or a LaTeX size command)",
			ErrInvalidValue, p.CodeFontSize)
	}
	if !slices.Contains(HighlightStyles, p.HighlightStyle) {
		return fmt.Errorf("%w: pdf_settings.highlight_style %q (must be one of %s)",
			ErrInvalidValue, p.HighlightStyle, strings.Join(HighlightStyles, ", "))
	}
	if p.MaxLineLength < MinMaxLineLength || p.MaxLineLength > MaxMaxLineLength {
		return fmt.Errorf("%w: pdf_settings.max_line_length must be between %d and %d, got %d",
			ErrInvalidValue, MinMaxLineLength, MaxMaxLineLength, p.MaxLineLength)
	}
	if p.TreeMaxDepth < MinTreeDepth || p.TreeMaxDepth > MaxTreeDepth {
		return fmt.Errorf("%w: pdf_settings.tree_max_depth must be between %d and %d, got %d",
			ErrInvalidValue, MinTreeDepth, MaxTreeDepth, p.TreeMaxDepth)
	}
	if p.TOCDepth < MinTOCDepth || p.TOCDepth > MaxTOCDepth {
		return fmt.Errorf("%w: pdf_settings.toc_depth must be between %d and %d, got %d",
			ErrInvalidValue, MinTOCDepth, MaxTOCDepth, p.TOCDepth)
	}
	if p.MaxFileSize <= 0 {
		return fmt.Errorf("%w: pdf_settings.max_file_size must be positive", ErrInvalidValue)
	}
	return nil
}

// Normalize rewrites short code font size names to LaTeX commands.
func (p *PDFSettings) Normalize() {
	if cmd, ok := CodeFontSizes[p.CodeFontSize]; ok {
		p.CodeFontSize = cmd
	}
}

func validateFieldLength(fieldName, value string, maxLength int) error {
	if len(value) > maxLength {
		return fmt.Errorf("%w: %s (%d chars, max %d)", ErrFieldTooLong, fieldName, len(value), maxLength)
	}
	return nil
}

// Load reads configuration from a file path or config name, applies it over
// DefaultConfig and validates the result. A name without separators is
// searched as <name>.yaml/.yml in the working directory, then in the user
// config directory. There is no silent fallback when nothing is found.
//
// The device preset is not applied here; see ApplyPreset.
func Load(nameOrPath string) (*Config, error) {
	if nameOrPath == "" {
		return nil, ErrEmptyConfigName
	}

	configPath := nameOrPath
	if !fileutil.IsFilePath(nameOrPath) && !fileutil.FileExists(nameOrPath) {
		var err error
		if configPath, err = resolveConfigPath(nameOrPath); err != nil {
			return nil, err
		}
	}

	cfg := DefaultConfig()
	if err := yamlutil.ReadFile(configPath, cfg); err != nil {
		var pathErr *fs.PathError
		switch {
		case errors.Is(err, fs.ErrNotExist):
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, configPath)
		case errors.Is(err, yamlutil.ErrNilData):
			return nil, fmt.Errorf("%w: %s", ErrEmptyConfig, configPath)
		case errors.As(err, &pathErr):
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		return nil, fmt.Errorf("%w: %v", ErrConfigParse, err)
	}

	abs, err := filepath.Abs(configPath)
	if err != nil {
		return nil, fmt.Errorf("resolving config path: %w", err)
	}
	cfg.projectRoot = filepath.Dir(abs)
	cfg.Repository.Auth.expand()
	cfg.PDF.Normalize()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (a *AuthConfig) expand() {
	a.Token = os.ExpandEnv(a.Token)
	a.Password = os.ExpandEnv(a.Password)
	a.KeyPassphrase = os.ExpandEnv(a.KeyPassphrase)
	a.KeyPath = os.ExpandEnv(a.KeyPath)
}

// CandidatePaths lists where Load looks for a bare config name.
func CandidatePaths(name string) []string {
	extensions := []string{".yaml", ".yml"}
	paths := make([]string, 0, len(extensions)*2)
	for _, ext := range extensions {
		paths = append(paths, name+ext)
	}
	if userConfigDir, err := os.UserConfigDir(); err == nil {
		for _, ext := range extensions {
			paths = append(paths, filepath.Join(userConfigDir, "repo2pdf", name+ext))
		}
	}
	return paths
}

func resolveConfigPath(name string) (string, error) {
	tried := CandidatePaths(name)
	for _, p := range tried {
		if fileutil.FileExists(p) {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w: tried %s", ErrConfigNotFound, strings.Join(tried, ", "))
}
