package model

// Snapshot is a consistent, read-only view of the theme store.
// Every field is copied out of the store under one lock, so a Snapshot never
// mixes values from before and after a mutation.
type Snapshot struct {
	Revision uint64 `json:"revision" yaml:"revision"`

	Theme  string   `json:"theme" yaml:"theme"`
	Header *Variant `json:"header" yaml:"header"`
	Footer *Variant `json:"footer" yaml:"footer"`

	Themes  []string  `json:"themes" yaml:"themes"`
	Headers []Variant `json:"headers" yaml:"headers"`
	Footers []Variant `json:"footers" yaml:"footers"`

	HeadersLoaded bool   `json:"headers_loaded" yaml:"headers_loaded"`
	FootersLoaded bool   `json:"footers_loaded" yaml:"footers_loaded"`
	HeadersErr    string `json:"headers_error,omitempty" yaml:"headers_error,omitempty"`
	FootersErr    string `json:"footers_error,omitempty" yaml:"footers_error,omitempty"`
}

// Choices returns the ChoiceSet for kind.
func (s Snapshot) Choices(kind Kind) []Variant {
	if kind == KindFooter {
		return s.Footers
	}
	return s.Headers
}

// Selected returns the current selection for kind.
func (s Snapshot) Selected(kind Kind) *Variant {
	if kind == KindFooter {
		return s.Footer
	}
	return s.Header
}

// Loaded reports whether the ChoiceSet for kind has been populated.
func (s Snapshot) Loaded(kind Kind) bool {
	if kind == KindFooter {
		return s.FootersLoaded
	}
	return s.HeadersLoaded
}

// Clone returns a deep copy of the snapshot.
func (s Snapshot) Clone() Snapshot {
	c := s
	c.Themes = append([]string(nil), s.Themes...)
	c.Headers = append([]Variant(nil), s.Headers...)
	c.Footers = append([]Variant(nil), s.Footers...)
	if s.Header != nil {
		h := *s.Header
		c.Header = &h
	}
	if s.Footer != nil {
		f := *s.Footer
		c.Footer = &f
	}
	return c
}
