package output

import (
	"encoding/json"
	"io"

	"github.com/jmylchreest/themekit/internal/model"
	"github.com/jmylchreest/themekit/internal/theme"
)

// JSONFormatter formats results as JSON.
type JSONFormatter struct {
	opts FormatterOptions
}

// NewJSONFormatter creates a new JSON formatter.
func NewJSONFormatter(opts FormatterOptions) *JSONFormatter {
	return &JSONFormatter{opts: opts}
}

// FormatVariants writes variants as a JSON array.
func (f *JSONFormatter) FormatVariants(w io.Writer, variants []model.Variant) error {
	if variants == nil {
		variants = []model.Variant{}
	}
	return f.encode(w, variants)
}

// FormatThemes writes theme entries as a JSON array.
func (f *JSONFormatter) FormatThemes(w io.Writer, themes []theme.ThemeInfo) error {
	if themes == nil {
		themes = []theme.ThemeInfo{}
	}
	return f.encode(w, themes)
}

// FormatSnapshot writes a snapshot as a JSON object.
func (f *JSONFormatter) FormatSnapshot(w io.Writer, snap model.Snapshot) error {
	return f.encode(w, snap)
}

func (f *JSONFormatter) encode(w io.Writer, v any) error {
	encoder := json.NewEncoder(w)
	if !f.opts.Compact {
		encoder.SetIndent("", "  ")
	}
	return encoder.Encode(v)
}
