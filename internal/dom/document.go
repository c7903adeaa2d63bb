// Package dom is the in-memory page the runtime works on: an HTML document
// parsed with x/net/html and queried through goquery, with HTML and markdown
// snapshots.
package dom

import (
	"fmt"
	"io"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Document is an in-memory HTML page the runtime mutates in place.
type Document struct {
	doc *goquery.Document
}

// Parse reads a full HTML document.
func Parse(r io.Reader) (*Document, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parsing HTML: %w", err)
	}
	return &Document{doc: doc}, nil
}

// ParseString is Parse for an in-memory string.
func ParseString(s string) (*Document, error) {
	return Parse(strings.NewReader(s))
}

// Find returns every element matching the CSS selector.
func (d *Document) Find(selector string) *goquery.Selection {
	return d.doc.Find(selector)
}

// First returns the first element matching selector, or false if none does.
func (d *Document) First(selector string) (*goquery.Selection, bool) {
	sel := d.doc.Find(selector).First()
	return sel, sel.Length() > 0
}

// Title returns the text of the document's <title>.
func (d *Document) Title() string {
	return strings.TrimSpace(d.doc.Find("title").First().Text())
}

// SetTitle replaces the document title, creating the element if needed.
func (d *Document) SetTitle(title string) {
	t := d.doc.Find("title").First()
	if t.Length() == 0 {
		d.doc.Find("head").First().AppendHtml("<title></title>")
		t = d.doc.Find("title").First()
	}
	t.SetText(title)
}

// BodyHTML returns the inner HTML of <body>.
func (d *Document) BodyHTML() (string, error) {
	return d.doc.Find("body").First().Html()
}

// SetBodyHTML replaces the inner HTML of <body>.
func (d *Document) SetBodyHTML(s string) {
	d.doc.Find("body").First().SetHtml(s)
}

// HTML serializes the whole document.
func (d *Document) HTML() (string, error) {
	return d.doc.Html()
}

// Markdown converts the body to markdown for plain-text snapshots.
func (d *Document) Markdown() (string, error) {
	body, err := d.BodyHTML()
	if err != nil {
		return "", err
	}
	md, err := htmltomarkdown.ConvertString(body)
	if err != nil {
		return "", fmt.Errorf("converting body to markdown: %w", err)
	}
	return md, nil
}

// ParseElements parses an HTML fragment and returns its top-level elements,
// dropping stray text and comments between them.
func ParseElements(fragment string) ([]*html.Node, error) {
	ctx := &html.Node{Type: html.ElementNode, Data: "div", DataAtom: atom.Div}
	nodes, err := html.ParseFragment(strings.NewReader(fragment), ctx)
	if err != nil {
		return nil, fmt.Errorf("parsing fragment: %w", err)
	}
	elems := make([]*html.Node, 0, len(nodes))
	for _, n := range nodes {
		if n.Type == html.ElementNode {
			elems = append(elems, n)
		}
	}
	return elems, nil
}
