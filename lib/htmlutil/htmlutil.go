package htmlutil

import (
	"bytes"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

func GetText(node *html.Node) string {
	var buffer bytes.Buffer
	getTextRecursive(node, &buffer)
	return buffer.String()
}

func getTextRecursive(node *html.Node, buffer *bytes.Buffer) {
	if node == nil {
		return
	}
	if node.Type == html.TextNode {
		buffer.WriteString(node.Data)
		return
	}
	child := node.FirstChild
	for child != nil {
		getTextRecursive(child, buffer)
		child = child.NextSibling
	}
}

// TextFragments returns the contents of every text node under the
// selection, in document order. Whitespace-only nodes are kept: the
// positional cleanup rules in the table extractor index into this stream
// and count them.
func TextFragments(sel *goquery.Selection) []string {
	var out []string
	for _, n := range sel.Nodes {
		collectTextNodes(n, &out)
	}
	return out
}

func collectTextNodes(node *html.Node, out *[]string) {
	if node == nil {
		return
	}
	if node.Type == html.TextNode {
		*out = append(*out, node.Data)
		return
	}
	child := node.FirstChild
	for child != nil {
		collectTextNodes(child, out)
		child = child.NextSibling
	}
}

// FirstAnchorText returns the trimmed text of the first <a> under the
// selection, or "" when there is none.
func FirstAnchorText(sel *goquery.Selection) string {
	a := sel.Find("a").First()
	if a.Length() == 0 {
		return ""
	}
	return strings.TrimSpace(GetText(a.Nodes[0]))
}
