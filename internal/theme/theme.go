// Package theme provides the CSS theme catalog served to the page.
//
// Bundled themes are embedded in the binary; a user themes directory may add
// themes or override bundled ones by name. @import statements are inlined so
// each theme is served as a single stylesheet.
package theme

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

// importRegex matches @import "file.css"; or @import 'file.css'; or @import url("file.css");
var importRegex = regexp.MustCompile(`@import\s+(?:url\s*\(\s*)?["']([^"']+)["']\s*\)?;?`)

// Theme is a resolved theme stylesheet.
type Theme struct {
	Name    string
	Path    string // empty for bundled themes
	CSS     string // with imports inlined
	ModTime time.Time
	Bundled bool
}

// ThemeInfo describes a theme for listing.
type ThemeInfo struct {
	Name      string    `json:"name" yaml:"name"`
	Path      string    `json:"path,omitempty" yaml:"path,omitempty"`
	Size      int64     `json:"size" yaml:"size"`
	ModTime   time.Time `json:"mod_time,omitempty" yaml:"mod_time,omitempty"`
	IsDefault bool      `json:"is_default" yaml:"is_default"`
	IsBundled bool      `json:"is_bundled" yaml:"is_bundled"`
	Overrides bool      `json:"overrides,omitempty" yaml:"overrides,omitempty"`
}

// loadFile reads a user theme from path and inlines its imports.
func loadFile(name, path string) (*Theme, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	css, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	return &Theme{
		Name:    name,
		Path:    path,
		CSS:     ProcessImports(string(css), filepath.Dir(path), nil),
		ModTime: info.ModTime(),
	}, nil
}

// loadEmbedded resolves a bundled theme.
func loadEmbedded(name string) (*Theme, bool) {
	css, ok := Bundled(name)
	if !ok {
		return nil, false
	}
	return &Theme{
		Name:    name,
		CSS:     ProcessImports(css, "", nil),
		Bundled: true,
	}, true
}

// ProcessImports resolves and inlines @import statements in CSS.
// Imports are resolved relative to baseDir, falling back to bundled partials
// and themes; an empty baseDir resolves against the bundled files only.
// seen holds the files on the current import path, so a partial imported
// twice by siblings is inlined both times while a cycle is cut.
func ProcessImports(css string, baseDir string, seen map[string]bool) string {
	if seen == nil {
		seen = make(map[string]bool)
	}

	// inline expands imported under key, which stays in seen only while its
	// own imports are being resolved.
	inline := func(key, header, imported, dir string) string {
		seen[key] = true
		defer delete(seen, key)
		return header + "\n" + ProcessImports(imported, dir, seen)
	}

	return importRegex.ReplaceAllStringFunc(css, func(match string) string {
		submatch := importRegex.FindStringSubmatch(match)
		if len(submatch) < 2 {
			return match
		}
		importPath := submatch[1]

		if baseDir == "" {
			key := "embedded:" + filepath.Base(importPath)
			if seen[key] {
				return "/* circular import prevented: " + importPath + " */"
			}
			imported, ok := embeddedImport(importPath)
			if !ok {
				return "/* import failed: " + importPath + " - not bundled */"
			}
			return inline(key, "/* imported: "+importPath+" */", imported, "")
		}

		fullPath := importPath
		if !filepath.IsAbs(importPath) {
			fullPath = filepath.Join(baseDir, importPath)
		}
		if seen[fullPath] {
			return "/* circular import prevented: " + importPath + " */"
		}

		imported, err := os.ReadFile(fullPath)
		if err != nil {
			if embedded, ok := embeddedImport(importPath); ok {
				return inline(fullPath, "/* imported (embedded): "+importPath+" */", embedded, "")
			}
			return "/* import failed: " + importPath + " - " + err.Error() + " */"
		}

		return inline(fullPath, "/* imported: "+importPath+" */", string(imported), filepath.Dir(fullPath))
	})
}

// embeddedImport looks an import path up among the bundled partials and themes.
func embeddedImport(importPath string) (string, bool) {
	base := filepath.Base(importPath)
	if strings.HasPrefix(base, "_") {
		return BundledPartial(base)
	}
	return Bundled(strings.TrimSuffix(base, ".css"))
}
