package preprocess

import (
	"regexp"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
	"golang.org/x/text/unicode/norm"
)

// droppedElements are removed with their whole subtree before text is
// collected.
var droppedElements = map[atom.Atom]bool{
	atom.Script: true,
	atom.Style:  true,
	atom.Meta:   true,
	atom.Link:   true,
}

var tagPattern = regexp.MustCompile(`<[^>]+>`)

// CleanHTML returns the visible text of an HTML fragment with entities
// decoded and whitespace collapsed. If the document cannot be parsed, tags
// are stripped with a regular expression instead.
func (p *Preprocessor) CleanHTML(content string) string {
	if content == "" {
		return ""
	}

	doc, err := html.Parse(strings.NewReader(content))
	if err != nil {
		p.logger.Warn("Error cleaning HTML, falling back to tag stripping", "error", err)
		return stripTags(content)
	}

	var b strings.Builder
	collectText(doc, &b)
	return collapseWhitespace(unescape(b.String()))
}

func collectText(n *html.Node, b *strings.Builder) {
	switch n.Type {
	case html.ElementNode:
		if droppedElements[n.DataAtom] {
			return
		}
	case html.TextNode:
		b.WriteString(n.Data)
		return
	case html.CommentNode, html.DoctypeNode:
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectText(c, b)
	}
}

func stripTags(content string) string {
	return collapseWhitespace(unescape(tagPattern.ReplaceAllString(content, "")))
}

func nfd(s string) string {
	return norm.NFD.String(s)
}
