// Package output provides output formatters for variants, themes and store state.
package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/jmylchreest/themekit/internal/model"
	"github.com/jmylchreest/themekit/internal/theme"
)

// Formatter formats CLI results for output.
type Formatter interface {
	// FormatVariants writes a header or footer set.
	FormatVariants(w io.Writer, variants []model.Variant) error
	// FormatThemes writes theme catalog entries.
	FormatThemes(w io.Writer, themes []theme.ThemeInfo) error
	// FormatSnapshot writes a store snapshot.
	FormatSnapshot(w io.Writer, snap model.Snapshot) error
}

// FormatType represents an output format type.
type FormatType string

const (
	FormatPlain FormatType = "plain"
	FormatJSON  FormatType = "json"
	FormatYAML  FormatType = "yaml"
	FormatIDs   FormatType = "ids"
)

// FormatTypes lists the accepted format names.
var FormatTypes = []FormatType{FormatPlain, FormatJSON, FormatYAML, FormatIDs}

// ParseFormat converts a flag value to a FormatType.
func ParseFormat(s string) (FormatType, error) {
	f := FormatType(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range FormatTypes {
		if f == known {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown format %q, must be one of: %v", s, FormatTypes)
}

// NewFormatter creates a formatter for the specified format type.
func NewFormatter(format FormatType, opts FormatterOptions) Formatter {
	switch format {
	case FormatJSON:
		return NewJSONFormatter(opts)
	case FormatYAML:
		return NewYAMLFormatter()
	case FormatIDs:
		return NewIDsFormatter()
	case FormatPlain:
		fallthrough
	default:
		return NewPlainFormatter(opts)
	}
}

// FormatterOptions configures formatter behavior.
type FormatterOptions struct {
	Template    string // Custom text/template for plain variant lines
	ShowIndex   bool   // Show 1-based index prefix
	ShowMarkup  bool   // Include markup in plain output
	MarkupWidth int    // Maximum markup length (0 = unlimited)
	Compact     bool   // Single-line JSON
}

// DefaultFormatterOptions returns sensible defaults for terminal output.
func DefaultFormatterOptions() FormatterOptions {
	return FormatterOptions{
		ShowIndex:   true,
		ShowMarkup:  true,
		MarkupWidth: 60,
	}
}

// sanitizeMarkup collapses markup onto one line for terminal display.
func sanitizeMarkup(markup string, maxLen int) string {
	markup = strings.Join(strings.Fields(markup), " ")

	if maxLen > 0 && len(markup) > maxLen {
		if maxLen <= 3 {
			return markup[:maxLen]
		}
		return markup[:maxLen-3] + "..."
	}
	return markup
}
