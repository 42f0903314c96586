package config

import (
	"fmt"
	"maps"
	"slices"

	"github.com/alnah/go-repo2pdf/internal/yamlutil"
)

// DevicePreset tunes layout for a reading device and picks a template.
type DevicePreset struct {
	Description  string         `yaml:"description"`
	Template     string         `yaml:"template"`
	PDFOverrides map[string]any `yaml:"pdf_overrides"`
}

// BuiltinPresets are always available; config entries with the same name
// replace them.
var BuiltinPresets = map[string]DevicePreset{
	"desktop": {
		Description: "Desktop reading",
		Template:    "default",
		PDFOverrides: map[string]any{
			"margin":        "margin=1in",
			"fontsize":      "10pt",
			"code_fontsize": `\small`,
			"linespread":    "1.0",
		},
	},
	"kindle7": {
		Description: "7-inch Kindle",
		Template:    "kindle",
		PDFOverrides: map[string]any{
			"margin":          "margin=0.4in",
			"fontsize":        "11pt",
			"code_fontsize":   `\small`,
			"linespread":      "1.0",
			"parskip":         "5pt",
			"max_file_size":   "200KB",
			"max_line_length": 60,
		},
	},
	"tablet": {
		Description: "Tablet reading",
		Template:    "technical",
		PDFOverrides: map[string]any{
			"margin":        "margin=0.6in",
			"fontsize":      "9pt",
			"code_fontsize": `\small`,
			"linespread":    "0.95",
		},
	},
	"mobile": {
		Description: "Phone reading",
		Template:    "kindle",
		PDFOverrides: map[string]any{
			"margin":        "margin=0.3in",
			"fontsize":      "7pt",
			"code_fontsize": `\tiny`,
			"linespread":    "0.85",
			"parskip":       "2pt",
		},
	},
}

// Presets merges user presets over the built-ins.
func (c *Config) Presets() map[string]DevicePreset {
	all := maps.Clone(BuiltinPresets)
	maps.Copy(all, c.DevicePresets)
	return all
}

// PresetNames returns the sorted preset names.
func (c *Config) PresetNames() []string {
	return slices.Sorted(maps.Keys(c.Presets()))
}

// ApplyPreset applies the named preset's overrides to PDF settings and
// returns the preset. An empty name selects c.DevicePreset. The result is
// validated again since overrides may carry any pdf_settings key.
func (c *Config) ApplyPreset(name string) (DevicePreset, error) {
	if name == "" {
		name = c.DevicePreset
	}
	if name == "" {
		name = DefaultPreset
	}

	preset, ok := c.Presets()[name]
	if !ok {
		return DevicePreset{}, fmt.Errorf("%w: %q", ErrUnknownPreset, name)
	}
	if preset.Template == "" {
		preset.Template = "default"
	}

	if len(preset.PDFOverrides) > 0 {
		data, err := yamlutil.Marshal(preset.PDFOverrides)
		if err != nil {
			return DevicePreset{}, fmt.Errorf("preset %s: %w", name, err)
		}
		if err := yamlutil.UnmarshalStrict(data, &c.PDF); err != nil {
			return DevicePreset{}, fmt.Errorf("%w: preset %s overrides: %v", ErrConfigParse, name, err)
		}
		c.PDF.Normalize()
	}
	c.DevicePreset = name

	if err := c.PDF.Validate(); err != nil {
		return DevicePreset{}, fmt.Errorf("preset %s: %w", name, err)
	}
	return preset, nil
}
