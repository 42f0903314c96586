package config

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
)

// ByteSize is a size in bytes written in YAML as a human-readable string
// ("512KiB", "200KB", "1 MB") or a plain integer.
type ByteSize int64

// ParseByteSize parses s with go-humanize's SI and IEC suffixes.
func ParseByteSize(s string) (ByteSize, error) {
	n, err := humanize.ParseBytes(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("%w: size %q: %v", ErrInvalidValue, s, err)
	}
	return ByteSize(n), nil
}

// UnmarshalYAML accepts a string or an integer.
func (b *ByteSize) UnmarshalYAML(unmarshal func(any) error) error {
	var raw any
	if err := unmarshal(&raw); err != nil {
		return err
	}
	switch v := raw.(type) {
	case string:
		size, err := ParseByteSize(v)
		if err != nil {
			return err
		}
		*b = size
	case int:
		*b = ByteSize(v)
	case int64:
		*b = ByteSize(v)
	case uint64:
		*b = ByteSize(v)
	case float64:
		*b = ByteSize(v)
	default:
		return fmt.Errorf("%w: size must be a string or integer, got %T", ErrInvalidValue, raw)
	}
	return nil
}

// MarshalYAML writes the IEC form so a round trip keeps the exact value.
func (b ByteSize) MarshalYAML() (any, error) {
	return b.String(), nil
}

func (b ByteSize) String() string {
	return humanize.IBytes(uint64(b))
}

// FontList is one font or an ordered list of fallbacks.
type FontList []string

// UnmarshalYAML accepts a scalar or a sequence.
func (f *FontList) UnmarshalYAML(unmarshal func(any) error) error {
	var raw any
	if err := unmarshal(&raw); err != nil {
		return err
	}
	switch v := raw.(type) {
	case nil:
		*f = nil
	case string:
		if v == "" {
			*f = nil
			return nil
		}
		*f = FontList{v}
	case []any:
		fonts := make(FontList, 0, len(v))
		for i, item := range v {
			s, ok := item.(string)
			if !ok {
				return fmt.Errorf("%w: emoji_font[%d] must be a string", ErrInvalidValue, i)
			}
			fonts = append(fonts, s)
		}
		*f = fonts
	default:
		return fmt.Errorf("%w: emoji_font must be a string or list, got %T", ErrInvalidValue, raw)
	}
	return nil
}

// Primary returns the first font, or "".
func (f FontList) Primary() string {
	if len(f) == 0 {
		return ""
	}
	return f[0]
}
