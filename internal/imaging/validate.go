package imaging

import (
	"strings"

	"golang.org/x/net/html"
)

// IsValidSVG reports whether content parses to an <svg> element carrying
// a width, height or viewBox attribute.
func IsValidSVG(content string) bool {
	doc, err := html.Parse(strings.NewReader(content))
	if err != nil {
		return false
	}
	svg := findElement(doc, "svg")
	if svg == nil {
		return false
	}
	for _, a := range svg.Attr {
		switch strings.ToLower(a.Key) {
		case "width", "height", "viewbox":
			return true
		}
	}
	return false
}

func findElement(n *html.Node, name string) *html.Node {
	if n.Type == html.ElementNode && n.Data == name {
		return n
	}
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		if found := findElement(child, name); found != nil {
			return found
		}
	}
	return nil
}
