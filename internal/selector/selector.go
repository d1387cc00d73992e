// Package selector provides the theme, header and footer selection controls.
//
// Controls hold no state of their own: every call reads a fresh snapshot from
// the store handle they were built with and writes choices straight back.
package selector

import (
	"errors"
	"html/template"
	"io"

	"github.com/jmylchreest/themekit/internal/model"
)

// ErrInvalidOption is returned when a chosen value does not name an option.
var ErrInvalidOption = errors.New("invalid option")

// Store is the store handle a control reads from and writes to.
type Store interface {
	Snapshot() model.Snapshot
	SetTheme(name string) error
	SetHeader(v model.Variant) error
	SetFooter(v model.Variant) error
}

// Option is one entry of a selection widget.
type Option struct {
	Label    string `json:"label"`
	Value    string `json:"value"`
	Selected bool   `json:"selected"`
}

// Widget is the rendered state of a control. Selected is the value of the
// selected option, or empty when none matches.
type Widget struct {
	Name     string   `json:"name"`
	Title    string   `json:"title"`
	Options  []Option `json:"options"`
	Selected string   `json:"selected"`
}

// SelectedIndex returns the position of the selected option, or -1.
func (w Widget) SelectedIndex() int {
	for i, o := range w.Options {
		if o.Selected {
			return i
		}
	}
	return -1
}

// Control is implemented by every selector.
type Control interface {
	Widget() Widget
	Choose(value string) error
	Render(w io.Writer) error
}

var widgetTemplate = template.Must(template.New("widget").Parse(
	`<div class="selector selector-{{.Name}}"><h3>{{.Title}}</h3>` +
		`<select name="{{.Name}}">` +
		`{{range .Options}}<option value="{{.Value}}"{{if .Selected}} selected{{end}}>{{.Label}}</option>{{end}}` +
		`</select></div>`))

func render(w io.Writer, widget Widget) error {
	return widgetTemplate.Execute(w, widget)
}
