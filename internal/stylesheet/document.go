// Package stylesheet keeps a single tagged <link rel="stylesheet"> in an HTML
// document pointed at the active theme.
package stylesheet

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"sync"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

const emptyDocument = "<!DOCTYPE html><html><head></head><body></body></html>"

// Document is a parsed HTML document that can be mutated and rendered from
// multiple goroutines.
type Document struct {
	mu   sync.Mutex
	root *html.Node
}

// NewDocument returns an empty document with <head> and <body>.
func NewDocument() *Document {
	doc, _ := ParseString(emptyDocument)
	return doc
}

// Parse reads an HTML document.
func Parse(r io.Reader) (*Document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}
	return &Document{root: root}, nil
}

// ParseString parses an HTML document from a string.
func ParseString(s string) (*Document, error) {
	return Parse(strings.NewReader(s))
}

// Render writes the document as HTML.
func (d *Document) Render(w io.Writer) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return html.Render(w, d.root)
}

// RenderHead writes only the <head> element.
func (d *Document) RenderHead(w io.Writer) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return html.Render(w, Head(d.root))
}

// String renders the document to a string.
func (d *Document) String() string {
	var buf bytes.Buffer
	if err := d.Render(&buf); err != nil {
		return ""
	}
	return buf.String()
}

// Update runs fn with exclusive access to the root node.
func (d *Document) Update(fn func(root *html.Node)) {
	d.mu.Lock()
	defer d.mu.Unlock()
	fn(d.root)
}

// LinksByID returns the href of every element whose id attribute equals id.
func (d *Document) LinksByID(id string) []string {
	d.mu.Lock()
	defer d.mu.Unlock()

	var hrefs []string
	for _, n := range findByID(d.root, id) {
		hrefs = append(hrefs, attr(n, "href"))
	}
	return hrefs
}

// Head returns the <head> element, creating it under <html> when missing.
// Callers hold the document lock (use Update).
func Head(root *html.Node) *html.Node {
	if head := findElement(root, atom.Head); head != nil {
		return head
	}

	htmlNode := findElement(root, atom.Html)
	if htmlNode == nil {
		htmlNode = &html.Node{Type: html.ElementNode, Data: "html", DataAtom: atom.Html}
		root.AppendChild(htmlNode)
	}

	head := &html.Node{Type: html.ElementNode, Data: "head", DataAtom: atom.Head}
	htmlNode.InsertBefore(head, htmlNode.FirstChild)
	return head
}

// Body returns the <body> element, or nil.
func Body(root *html.Node) *html.Node {
	return findElement(root, atom.Body)
}

func findElement(n *html.Node, a atom.Atom) *html.Node {
	if n.Type == html.ElementNode && n.DataAtom == a {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findElement(c, a); found != nil {
			return found
		}
	}
	return nil
}

func findByID(n *html.Node, id string) []*html.Node {
	var out []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && attr(n, "id") == id {
			out = append(out, n)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return out
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

// setAttr sets key to val and reports whether the node changed.
func setAttr(n *html.Node, key, val string) bool {
	for i := range n.Attr {
		if n.Attr[i].Key == key {
			if n.Attr[i].Val == val {
				return false
			}
			n.Attr[i].Val = val
			return true
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
	return true
}
