package output

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"text/template"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/jmylchreest/themekit/internal/model"
	"github.com/jmylchreest/themekit/internal/theme"
)

// PlainFormatter formats results as human-readable text.
type PlainFormatter struct {
	opts     FormatterOptions
	template *template.Template
}

// NewPlainFormatter creates a new plain text formatter.
// An unparsable Template falls back to the default line format.
func NewPlainFormatter(opts FormatterOptions) *PlainFormatter {
	f := &PlainFormatter{opts: opts}

	if opts.Template != "" {
		tmpl, err := template.New("plain").Funcs(templateFuncs()).Parse(opts.Template)
		if err == nil {
			f.template = tmpl
		}
	}

	return f
}

// templateData is the value a custom variant template is executed with.
type templateData struct {
	Index int
	*model.Variant
}

// FormatVariants writes one line per variant.
func (f *PlainFormatter) FormatVariants(w io.Writer, variants []model.Variant) error {
	for i := range variants {
		if err := f.formatVariant(w, i+1, &variants[i]); err != nil {
			return err
		}
	}
	return nil
}

func (f *PlainFormatter) formatVariant(w io.Writer, index int, v *model.Variant) error {
	if f.template != nil {
		if err := f.template.Execute(w, templateData{Index: index, Variant: v}); err != nil {
			return err
		}
		_, err := io.WriteString(w, "\n")
		return err
	}

	var sb strings.Builder
	if f.opts.ShowIndex {
		sb.WriteString(fmt.Sprintf("[%d] ", index))
	}
	sb.WriteString(v.Name)
	sb.WriteString(fmt.Sprintf(" (%s)", v.ID))
	sb.WriteString("\n")

	if f.opts.ShowMarkup {
		sb.WriteString("    " + sanitizeMarkup(v.Markup, f.opts.MarkupWidth) + "\n")
	}

	_, err := io.WriteString(w, sb.String())
	return err
}

// FormatThemes writes an aligned table of themes.
func (f *PlainFormatter) FormatThemes(w io.Writer, themes []theme.ThemeInfo) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tSOURCE\tSIZE\tMODIFIED\tPATH")

	for _, t := range themes {
		name := t.Name
		if t.IsDefault {
			name += " *"
		}
		source := "bundled"
		if !t.IsBundled {
			source = "user"
			if t.Overrides {
				source = "user (override)"
			}
		}
		path := t.Path
		if path == "" {
			path = "-"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			name, source, humanize.Bytes(uint64(t.Size)), relativeTime(t.ModTime), path)
	}

	return tw.Flush()
}

// FormatSnapshot writes the selections followed by the set summaries.
func (f *PlainFormatter) FormatSnapshot(w io.Writer, snap model.Snapshot) error {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("theme:   %s\n", snap.Theme))
	for _, kind := range model.Kinds {
		sb.WriteString(fmt.Sprintf("%-8s %s\n", string(kind)+":", describeSelection(snap, kind)))
	}
	sb.WriteString(fmt.Sprintf("themes:  %s\n", strings.Join(snap.Themes, ", ")))
	for _, kind := range model.Kinds {
		sb.WriteString(fmt.Sprintf("%-8s %s\n", string(kind)+"s:", describeSet(snap, kind)))
	}
	sb.WriteString(fmt.Sprintf("revision: %d\n", snap.Revision))

	_, err := io.WriteString(w, sb.String())
	return err
}

func describeSelection(snap model.Snapshot, kind model.Kind) string {
	sel := snap.Selected(kind)
	if sel == nil {
		return "(none)"
	}
	idx := model.IndexOf(snap.Choices(kind), sel)
	if idx < 0 {
		return fmt.Sprintf("%s [%s] (not in set)", sel.Name, sel.ID)
	}
	return fmt.Sprintf("%s %d: %s [%s]", kind.Label(), idx+1, sel.Name, sel.ID)
}

func describeSet(snap model.Snapshot, kind model.Kind) string {
	errMsg := snap.HeadersErr
	if kind == model.KindFooter {
		errMsg = snap.FootersErr
	}

	switch {
	case errMsg != "":
		return "failed: " + errMsg
	case !snap.Loaded(kind):
		return "loading"
	default:
		return humanize.Comma(int64(len(snap.Choices(kind)))) + " loaded"
	}
}

// templateFuncs returns template helper functions.
func templateFuncs() template.FuncMap {
	return template.FuncMap{
		"truncate": func(s string, maxLen int) string {
			return sanitizeMarkup(s, maxLen)
		},
		"bytes": func(n int) string {
			return humanize.Bytes(uint64(n))
		},
		"upper": strings.ToUpper,
	}
}

// relativeTime returns a human-readable relative time, or "-" for a zero time.
func relativeTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return humanize.Time(t)
}
