package repo2pdf

import (
	"fmt"
	"strings"

	"github.com/alnah/go-repo2pdf/internal/yamlutil"
)

// Section types that render a generated report instead of text.
const (
	SectionTree  = "tree"
	SectionStats = "stats"
)

// Template describes the front section of a document.
type Template struct {
	Name        string            `yaml:"name"`
	Description string            `yaml:"description"`
	Structure   TemplateStructure `yaml:"structure"`
}

// TemplateStructure selects the reports and free-form sections placed
// before the file sections. Nil flags defer to Processing.
type TemplateStructure struct {
	IncludeTree  *bool     `yaml:"include_tree"`
	IncludeStats *bool     `yaml:"include_stats"`
	TreeMaxDepth int       `yaml:"tree_max_depth"`
	Sections     []Section `yaml:"sections"`
}

// Section is either a titled text block or, when Type is set, one of the
// generated reports.
type Section struct {
	Type    string `yaml:"type"`
	Title   string `yaml:"title"`
	Content string `yaml:"content"`
}

// ParseTemplate decodes a YAML document template. Unknown keys and
// unknown section types are rejected.
func ParseTemplate(data string) (*Template, error) {
	var t Template
	if err := yamlutil.UnmarshalStrict([]byte(data), &t); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTemplateParse, err)
	}
	if d := t.Structure.TreeMaxDepth; d != 0 && (d < MinTreeDepth || d > MaxTreeDepth) {
		return nil, fmt.Errorf("%w: %w: %d", ErrTemplateParse, ErrInvalidTreeDepth, d)
	}
	for i, s := range t.Structure.Sections {
		switch s.Type {
		case "", SectionTree, SectionStats:
		default:
			return nil, fmt.Errorf("%w: section %d has unknown type %q", ErrTemplateParse, i+1, s.Type)
		}
		if s.Type == "" && strings.TrimSpace(s.Title) == "" && strings.TrimSpace(s.Content) == "" {
			return nil, fmt.Errorf("%w: section %d is empty", ErrTemplateParse, i+1)
		}
	}
	return &t, nil
}
