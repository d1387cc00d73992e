package selector

import "io"

// ThemeSelector selects the theme name.
type ThemeSelector struct {
	store Store
}

// NewThemeSelector creates a ThemeSelector bound to store.
func NewThemeSelector(store Store) *ThemeSelector {
	return &ThemeSelector{store: store}
}

// Widget projects the theme list into options labelled and valued by name.
func (s *ThemeSelector) Widget() Widget {
	snap := s.store.Snapshot()

	w := Widget{
		Name:    "theme",
		Title:   "Select Theme",
		Options: make([]Option, 0, len(snap.Themes)),
	}
	for _, name := range snap.Themes {
		selected := name == snap.Theme
		if selected {
			w.Selected = name
		}
		w.Options = append(w.Options, Option{Label: name, Value: name, Selected: selected})
	}
	return w
}

// Choose sets the theme to value without checking it against the list.
func (s *ThemeSelector) Choose(value string) error {
	return s.store.SetTheme(value)
}

// Render writes the control as an HTML select.
func (s *ThemeSelector) Render(w io.Writer) error {
	return render(w, s.Widget())
}
