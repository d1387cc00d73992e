package output

import (
	"fmt"
	"io"

	"github.com/jmylchreest/themekit/internal/model"
	"github.com/jmylchreest/themekit/internal/theme"
)

// IDsFormatter outputs bare identifiers, one per line, for piping to other
// commands: variant IDs, theme names, or the selected theme, header and footer.
type IDsFormatter struct{}

// NewIDsFormatter creates a new IDs formatter.
func NewIDsFormatter() *IDsFormatter {
	return &IDsFormatter{}
}

// FormatVariants writes variant IDs.
func (f *IDsFormatter) FormatVariants(w io.Writer, variants []model.Variant) error {
	for _, v := range variants {
		if _, err := fmt.Fprintln(w, v.ID); err != nil {
			return err
		}
	}
	return nil
}

// FormatThemes writes theme names.
func (f *IDsFormatter) FormatThemes(w io.Writer, themes []theme.ThemeInfo) error {
	for _, t := range themes {
		if _, err := fmt.Fprintln(w, t.Name); err != nil {
			return err
		}
	}
	return nil
}

// FormatSnapshot writes the theme name and the selected header and footer IDs.
// An empty line stands for a missing selection.
func (f *IDsFormatter) FormatSnapshot(w io.Writer, snap model.Snapshot) error {
	lines := []string{snap.Theme, "", ""}
	if snap.Header != nil {
		lines[1] = snap.Header.ID
	}
	if snap.Footer != nil {
		lines[2] = snap.Footer.ID
	}
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}
