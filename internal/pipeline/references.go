package pipeline

import (
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
)

// Reference is one link reference definition: [label]: destination "title".
type Reference struct {
	Label       string
	Destination string
	Title       string
}

// ReferenceTable holds the definitions of one document, keyed by
// normalized label.
type ReferenceTable map[string]Reference

// Lookup finds a definition by label using CommonMark label matching
// (case-insensitive, whitespace-collapsed).
func (t ReferenceTable) Lookup(label string) (Reference, bool) {
	ref, ok := t[util.ToLinkReference([]byte(label))]
	return ref, ok
}

// ExtractReferences collects the link reference definitions of content.
// Definitions inside code blocks are not definitions and are ignored; when
// a label is defined twice the first definition wins.
func ExtractReferences(content string) ReferenceTable {
	pc := parser.NewContext()
	goldmark.DefaultParser().Parse(text.NewReader([]byte(content)), parser.WithContext(pc))

	refs := pc.References()
	table := make(ReferenceTable, len(refs))
	for _, ref := range refs {
		label := string(ref.Label())
		table[util.ToLinkReference(ref.Label())] = Reference{
			Label:       strings.TrimSpace(label),
			Destination: string(ref.Destination()),
			Title:       string(ref.Title()),
		}
	}
	return table
}
