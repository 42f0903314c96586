package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/alnah/go-repo2pdf/internal/config"
)

// envConfig holds configuration from environment variables.
// Provides CI/CD-friendly overrides without editing the YAML file.
type envConfig struct {
	ConfigPath   string        // REPO2PDF_CONFIG: config file name or path
	Device       string        // REPO2PDF_DEVICE: device preset
	Template     string        // REPO2PDF_TEMPLATE: document template
	OutputDir    string        // REPO2PDF_OUTPUT_DIR: PDF destination
	WorkspaceDir string        // REPO2PDF_WORKSPACE_DIR: clone destination
	Timeout      time.Duration // REPO2PDF_TIMEOUT: typesetting timeout
}

// knownEnvVars lists valid REPO2PDF_* environment variables.
// Used to detect typos and warn users about unknown variables.
var knownEnvVars = map[string]bool{
	"REPO2PDF_CONFIG":        true,
	"REPO2PDF_DEVICE":        true,
	"REPO2PDF_TEMPLATE":      true,
	"REPO2PDF_OUTPUT_DIR":    true,
	"REPO2PDF_WORKSPACE_DIR": true,
	"REPO2PDF_TIMEOUT":       true,
}

// loadEnvConfig reads configuration from environment variables.
// An unparsable or non-positive REPO2PDF_TIMEOUT is ignored.
func loadEnvConfig() *envConfig {
	cfg := &envConfig{
		ConfigPath:   os.Getenv("REPO2PDF_CONFIG"),
		Device:       os.Getenv("REPO2PDF_DEVICE"),
		Template:     os.Getenv("REPO2PDF_TEMPLATE"),
		OutputDir:    os.Getenv("REPO2PDF_OUTPUT_DIR"),
		WorkspaceDir: os.Getenv("REPO2PDF_WORKSPACE_DIR"),
	}
	if timeout := os.Getenv("REPO2PDF_TIMEOUT"); timeout != "" {
		if d, err := time.ParseDuration(timeout); err == nil && d > 0 {
			cfg.Timeout = d
		}
	}
	return cfg
}

// warnUnknownEnvVars prints a warning for unrecognized REPO2PDF_* variables.
// Helps catch typos like REPO2PDF_OUTPUTDIR.
func warnUnknownEnvVars(w io.Writer) {
	for _, env := range os.Environ() {
		if !strings.HasPrefix(env, "REPO2PDF_") {
			continue
		}
		name, _, _ := strings.Cut(env, "=")
		if !knownEnvVars[name] {
			fmt.Fprintf(w, "warning: unknown environment variable %s (typo?)\n", name)
		}
	}
}

// applyEnvConfig applies environment values over the loaded config.
// CLI flags are applied afterwards by mergeFlags, giving:
// CLI flags > env vars > config file > defaults.
func applyEnvConfig(env *envConfig, cfg *config.Config) {
	if env.OutputDir != "" {
		cfg.OutputDir = env.OutputDir
	}
	if env.WorkspaceDir != "" {
		cfg.WorkspaceDir = env.WorkspaceDir
	}
}
