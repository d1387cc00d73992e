package output

import (
	"io"

	"gopkg.in/yaml.v3"

	"github.com/jmylchreest/themekit/internal/model"
	"github.com/jmylchreest/themekit/internal/theme"
)

// YAMLFormatter formats results as YAML documents.
type YAMLFormatter struct{}

// NewYAMLFormatter creates a new YAML formatter.
func NewYAMLFormatter() *YAMLFormatter {
	return &YAMLFormatter{}
}

// FormatVariants writes variants as a YAML sequence.
func (f *YAMLFormatter) FormatVariants(w io.Writer, variants []model.Variant) error {
	if variants == nil {
		variants = []model.Variant{}
	}
	return encodeYAML(w, variants)
}

// FormatThemes writes theme entries as a YAML sequence.
func (f *YAMLFormatter) FormatThemes(w io.Writer, themes []theme.ThemeInfo) error {
	if themes == nil {
		themes = []theme.ThemeInfo{}
	}
	return encodeYAML(w, themes)
}

// FormatSnapshot writes a snapshot as a YAML mapping.
func (f *YAMLFormatter) FormatSnapshot(w io.Writer, snap model.Snapshot) error {
	return encodeYAML(w, snap)
}

func encodeYAML(w io.Writer, v any) error {
	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	if err := encoder.Encode(v); err != nil {
		return err
	}
	return encoder.Close()
}
