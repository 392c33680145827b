package rules

import (
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Collapse trims s and folds every whitespace run to a single space.
func Collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Text reads the element's text with whitespace collapsed.
func Text(s *goquery.Selection) string {
	return Collapse(s.Text())
}

// Attr reads an attribute value, trimmed.
func Attr(name string) Reader {
	return func(s *goquery.Selection) string {
		return strings.TrimSpace(s.AttrOr(name, ""))
	}
}

// blockAtoms end the current text block when walking prose.
var blockAtoms = map[atom.Atom]bool{
	atom.Br: true, atom.P: true, atom.Div: true, atom.Li: true,
	atom.Ul: true, atom.Ol: true, atom.H1: true, atom.H2: true,
	atom.H3: true, atom.H4: true, atom.Section: true, atom.Article: true,
}

// Paragraphs reads prose as text blocks separated by <br> and block
// elements, each block whitespace-collapsed, joined with sep.
func Paragraphs(sep string) Reader {
	return func(s *goquery.Selection) string {
		var (
			blocks []string
			cur    strings.Builder
		)
		flush := func() {
			if b := Collapse(cur.String()); b != "" {
				blocks = append(blocks, b)
			}
			cur.Reset()
		}
		var walk func(*html.Node)
		walk = func(n *html.Node) {
			switch n.Type {
			case html.TextNode:
				cur.WriteString(n.Data)
				return
			case html.ElementNode:
				if n.DataAtom == atom.Script || n.DataAtom == atom.Style {
					return
				}
				if blockAtoms[n.DataAtom] {
					flush()
					defer flush()
				}
			}
			for c := n.FirstChild; c != nil; c = c.NextSibling {
				walk(c)
			}
		}
		for _, n := range s.Nodes {
			walk(n)
			flush()
		}
		return strings.Join(blocks, sep)
	}
}

// Markdown reads prose as markdown, keeping links and list structure.
// Conversion failures fall back to newline-separated paragraphs.
func Markdown(s *goquery.Selection) string {
	inner, err := s.Html()
	if err != nil {
		return Paragraphs("\n")(s)
	}
	md, err := htmltomarkdown.ConvertString(inner)
	if err != nil {
		return Paragraphs("\n")(s)
	}
	return strings.TrimSpace(md)
}

// Prose picks the markdown or plain-paragraph reader.
func Prose(markdown bool, sep string) Reader {
	if markdown {
		return Markdown
	}
	return Paragraphs(sep)
}
