package helpers

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// StrippedText returns the text of every node in the selection with each
// text fragment trimmed and the fragments joined without a separator.
func StrippedText(sel *goquery.Selection) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(strings.TrimSpace(n.Data))
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	for _, n := range sel.Nodes {
		walk(n)
	}
	return b.String()
}

// TextAfterLabel removes every occurrence of label from text and trims
// the remainder. It returns "" when the label is absent.
func TextAfterLabel(text, label string) string {
	if !strings.Contains(text, label) {
		return ""
	}
	return strings.TrimSpace(strings.ReplaceAll(text, label, ""))
}
