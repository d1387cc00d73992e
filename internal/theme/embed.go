package theme

import (
	"embed"
	"io/fs"
	"path"
	"sort"
	"strings"
)

// DefaultTheme is the bundled theme a catalog falls back to.
const DefaultTheme = "default"

const (
	cssExt        = ".css"
	partialPrefix = "_"
)

//go:embed themes/*.css
var bundleFS embed.FS

// bundle holds the stylesheets compiled into the binary. Stems starting
// with an underscore are partials: importable, never offered as themes.
var bundle = stylesheetSet{fsys: bundleFS, dir: "themes"}

type stylesheetSet struct {
	fsys fs.FS
	dir  string
}

func (s stylesheetSet) read(stem string) (string, bool) {
	data, err := fs.ReadFile(s.fsys, path.Join(s.dir, stem+cssExt))
	if err != nil {
		return "", false
	}
	return string(data), true
}

// themes returns the non-partial stems in name order.
func (s stylesheetSet) themes() []string {
	matches, err := fs.Glob(s.fsys, path.Join(s.dir, "*"+cssExt))
	if err != nil {
		return nil
	}

	names := make([]string, 0, len(matches))
	for _, m := range matches {
		stem := strings.TrimSuffix(path.Base(m), cssExt)
		if isPartial(stem) {
			continue
		}
		names = append(names, stem)
	}
	sort.Strings(names)
	return names
}

func isPartial(stem string) bool {
	return strings.HasPrefix(stem, partialPrefix)
}

// Bundled returns the CSS of a bundled theme with its @import statements
// left in place.
func Bundled(name string) (string, bool) {
	if !validName(name) || isPartial(name) {
		return "", false
	}
	return bundle.read(name)
}

// BundledPartial returns a bundled partial. The leading underscore and the
// .css extension may be omitted.
func BundledPartial(name string) (string, bool) {
	stem := partialPrefix + strings.TrimPrefix(strings.TrimSuffix(name, cssExt), partialPrefix)
	if !validName(stem) {
		return "", false
	}
	return bundle.read(stem)
}

// BundledNames lists the bundled themes.
func BundledNames() []string {
	return bundle.themes()
}

// IsBundled reports whether a theme of that name ships with the binary.
func IsBundled(name string) bool {
	_, ok := Bundled(name)
	return ok
}

// validName reports whether name can be used as a stylesheet stem.
func validName(name string) bool {
	return name != "" && name != "." && name != ".." && !strings.ContainsAny(name, `/\`)
}
