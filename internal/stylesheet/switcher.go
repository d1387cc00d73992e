package stylesheet

import (
	"log/slog"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// DefaultLinkID is the id attribute that marks the theme stylesheet link.
const DefaultLinkID = "theme-stylesheet"

// Switcher points the tagged stylesheet link of a document at a theme.
type Switcher struct {
	LinkID   string
	BaseHref string
	Logger   *slog.Logger
}

// NewSwitcher creates a Switcher. An empty linkID uses DefaultLinkID.
func NewSwitcher(linkID, baseHref string, logger *slog.Logger) *Switcher {
	if linkID == "" {
		linkID = DefaultLinkID
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Switcher{LinkID: linkID, BaseHref: baseHref, Logger: logger}
}

// Href returns the stylesheet location for theme.
func (s *Switcher) Href(theme string) string {
	return s.BaseHref + theme + ".css"
}

// Apply makes doc contain exactly one link tagged with s.LinkID whose href is
// Href(theme). Non-link elements carrying the id are removed. It reports
// whether the document was modified.
func (s *Switcher) Apply(doc *Document, theme string) bool {
	href := s.Href(theme)
	changed := false

	doc.Update(func(root *html.Node) {
		var links []*html.Node
		for _, n := range findByID(root, s.LinkID) {
			if n.DataAtom == atom.Link {
				links = append(links, n)
				continue
			}
			// Only a <link> can carry the stylesheet; other tagged elements go.
			if n.Parent != nil {
				n.Parent.RemoveChild(n)
			}
			changed = true
		}

		if len(links) == 0 {
			Head(root).AppendChild(s.newLink(href))
			changed = true
			return
		}

		// Documents parsed from elsewhere may carry stray duplicates.
		for _, extra := range links[1:] {
			if extra.Parent != nil {
				extra.Parent.RemoveChild(extra)
			}
			changed = true
		}

		if setAttr(links[0], "href", href) {
			changed = true
		}
	})

	if changed {
		s.logger().Debug("stylesheet switched", "id", s.LinkID, "href", href)
	}
	return changed
}

func (s *Switcher) newLink(href string) *html.Node {
	return &html.Node{
		Type:     html.ElementNode,
		Data:     "link",
		DataAtom: atom.Link,
		Attr: []html.Attribute{
			{Key: "rel", Val: "stylesheet"},
			{Key: "id", Val: s.LinkID},
			{Key: "href", Val: href},
		},
	}
}

// ThemeHooker is the part of the theme store the switcher binds to.
type ThemeHooker interface {
	OnThemeChange(fn func(theme string))
}

// Bind applies the switcher to doc on every committed theme change.
func (s *Switcher) Bind(store ThemeHooker, doc *Document) {
	store.OnThemeChange(func(theme string) {
		s.Apply(doc, theme)
	})
}

func (s *Switcher) logger() *slog.Logger {
	if s.Logger == nil {
		return slog.Default()
	}
	return s.Logger
}
