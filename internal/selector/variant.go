package selector

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/jmylchreest/themekit/internal/model"
)

// VariantSelector selects a header or footer by position.
type VariantSelector struct {
	store Store
	kind  model.Kind
}

// NewHeaderSelector creates a selector for the header variant.
func NewHeaderSelector(store Store) *VariantSelector {
	return &VariantSelector{store: store, kind: model.KindHeader}
}

// NewFooterSelector creates a selector for the footer variant.
func NewFooterSelector(store Store) *VariantSelector {
	return &VariantSelector{store: store, kind: model.KindFooter}
}

// Kind returns the variant kind this selector controls.
func (s *VariantSelector) Kind() model.Kind {
	return s.kind
}

// Widget projects the variant set into options "Header 1".."Header N" valued
// by index. The current selection is found by positional lookup; when it is not
// in the set no option is selected.
func (s *VariantSelector) Widget() Widget {
	snap := s.store.Snapshot()
	set := snap.Choices(s.kind)
	current := model.IndexOf(set, snap.Selected(s.kind))

	w := Widget{
		Name:    string(s.kind),
		Title:   "Select " + s.kind.Label(),
		Options: make([]Option, 0, len(set)),
	}
	for i := range set {
		value := strconv.Itoa(i)
		if i == current {
			w.Selected = value
		}
		w.Options = append(w.Options, Option{
			Label:    fmt.Sprintf("%s %d", s.kind.Label(), i+1),
			Value:    value,
			Selected: i == current,
		})
	}
	return w
}

// Choose selects the variant at the index in value.
func (s *VariantSelector) Choose(value string) error {
	idx, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return fmt.Errorf("%w: %q is not an index", ErrInvalidOption, value)
	}
	return s.ChooseIndex(idx)
}

// ChooseIndex selects the variant at position idx of the current set.
func (s *VariantSelector) ChooseIndex(idx int) error {
	set := s.store.Snapshot().Choices(s.kind)
	v, ok := model.At(set, idx)
	if !ok {
		return fmt.Errorf("%w: %s index %d out of range [0,%d)", ErrInvalidOption, s.kind, idx, len(set))
	}

	if s.kind == model.KindFooter {
		return s.store.SetFooter(v)
	}
	return s.store.SetHeader(v)
}

// Render writes the control as an HTML select.
func (s *VariantSelector) Render(w io.Writer) error {
	return render(w, s.Widget())
}
