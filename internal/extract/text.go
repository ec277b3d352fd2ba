package extract

import (
	"io"
	"strings"

	"golang.org/x/net/html"
)

// Page is the readable content of one HTML document
type Page struct {
	Title string
	Text  string
}

// skipped elements never contribute visible text
var skipped = map[string]bool{
	"script":   true,
	"style":    true,
	"noscript": true,
	"iframe":   true,
	"svg":      true,
	"template": true,
	"nav":      true,
	"footer":   true,
	"head":     true,
}

// block elements start a new line in the extracted text
var block = map[string]bool{
	"p": true, "div": true, "section": true, "article": true, "main": true,
	"header": true, "aside": true, "li": true, "ul": true, "ol": true,
	"table": true, "tr": true, "h1": true, "h2": true, "h3": true,
	"h4": true, "h5": true, "h6": true, "br": true, "dt": true, "dd": true,
	"blockquote": true, "pre": true, "form": true,
}

// Parse reads an HTML document and returns its title and visible text
func Parse(r io.Reader) (*Page, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, err
	}
	return &Page{Title: Title(doc), Text: VisibleText(doc)}, nil
}

// ParseString is Parse for in-memory content
func ParseString(content string) (*Page, error) {
	return Parse(strings.NewReader(content))
}

// Title returns the text of the first <title> element
func Title(doc *html.Node) string {
	var title string
	var walk func(*html.Node) bool
	walk = func(n *html.Node) bool {
		if n.Type == html.ElementNode && n.Data == "title" {
			if n.FirstChild != nil {
				title = collapseSpaces(n.FirstChild.Data)
			}
			return true
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if walk(c) {
				return true
			}
		}
		return false
	}
	walk(doc)
	return title
}

// VisibleText extracts the readable text of a document. Navigation, scripts
// and styling are skipped; block elements become line breaks and paragraphs
// are separated by a blank line.
func VisibleText(doc *html.Node) string {
	var buf strings.Builder

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			if skipped[n.Data] {
				return
			}
			if block[n.Data] {
				buf.WriteString("\n")
			}
		}

		if n.Type == html.TextNode {
			text := collapseSpaces(n.Data)
			if text != "" {
				buf.WriteString(text)
				buf.WriteString(" ")
			}
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}

		if n.Type == html.ElementNode && (n.Data == "p" || isHeading(n.Data)) {
			buf.WriteString("\n\n")
		}
	}
	walk(doc)

	return tidyLines(buf.String())
}

func isHeading(tag string) bool {
	return len(tag) == 2 && tag[0] == 'h' && tag[1] >= '1' && tag[1] <= '6'
}

func collapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// tidyLines trims every line and keeps at most one blank line in a row
func tidyLines(s string) string {
	lines := strings.Split(s, "\n")
	out := make([]string, 0, len(lines))
	blank := true
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			if !blank {
				out = append(out, "")
			}
			blank = true
			continue
		}
		out = append(out, line)
		blank = false
	}
	return strings.TrimSpace(strings.Join(out, "\n"))
}
