package workflow

import (
	"strings"

	"golang.org/x/net/html"
)

// ProblemTitle returns the text of the first heading (h1 to h6) in markup,
// with whitespace collapsed. It returns "" when markup has no heading.
func ProblemTitle(markup string) string {
	doc, err := html.Parse(strings.NewReader(markup))
	if err != nil {
		return ""
	}
	h := findHeading(doc)
	if h == nil {
		return ""
	}
	var sb strings.Builder
	collectText(h, &sb)
	return strings.Join(strings.Fields(sb.String()), " ")
}

func findHeading(n *html.Node) *html.Node {
	if n.Type == html.ElementNode && isHeading(n.Data) {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if h := findHeading(c); h != nil {
			return h
		}
	}
	return nil
}

func isHeading(tag string) bool {
	return len(tag) == 2 && tag[0] == 'h' && tag[1] >= '1' && tag[1] <= '6'
}

func collectText(n *html.Node, sb *strings.Builder) {
	if n.Type == html.TextNode {
		sb.WriteString(n.Data)
		sb.WriteByte(' ')
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectText(c, sb)
	}
}
