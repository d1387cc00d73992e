package variant

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/jmylchreest/themekit/internal/model"
	"github.com/jmylchreest/themekit/internal/store"
)

// ManifestFile is the optional file that fixes fragment order and names.
const ManifestFile = "manifest.yaml"

// Manifest lists the fragments of a directory in display order.
type Manifest struct {
	Variants []ManifestEntry `yaml:"variants"`
}

// ManifestEntry names one fragment file.
type ManifestEntry struct {
	File string `yaml:"file"`
	Name string `yaml:"name,omitempty"`
}

// Dir returns a FetchFunc that reads the fragments of kind from dir.
// Without a manifest every *.html file is used, sorted by file name.
func Dir(dir string, kind model.Kind) store.FetchFunc {
	return func(ctx context.Context) ([]model.Variant, error) {
		if _, err := dirName(kind); err != nil {
			return nil, err
		}

		entries, err := dirEntries(dir)
		if err != nil {
			return nil, err
		}

		variants := make([]model.Variant, 0, len(entries))
		for _, entry := range entries {
			if err := ctx.Err(); err != nil {
				return nil, err
			}

			data, err := os.ReadFile(filepath.Join(dir, entry.File))
			if err != nil {
				return nil, fmt.Errorf("read fragment: %w", err)
			}
			name := entry.Name
			if name == "" {
				name = nameFromFile(entry.File)
			}
			variants, err = appendVariant(variants, kind, name, string(data), entry.File)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", entry.File, err)
			}
		}
		return variants, nil
	}
}

// LoadManifest reads the manifest in dir. It returns nil without error
// when the directory has none.
func LoadManifest(dir string) (*Manifest, error) {
	data, err := os.ReadFile(filepath.Join(dir, ManifestFile))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}

	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to parse manifest: %w", err)
	}
	for i, entry := range m.Variants {
		if entry.File == "" {
			return nil, fmt.Errorf("manifest entry %d: file is required", i)
		}
		if filepath.Base(entry.File) != entry.File {
			return nil, fmt.Errorf("manifest entry %d: %q must be a file in %s", i, entry.File, dir)
		}
	}
	return &m, nil
}

func dirEntries(dir string) ([]ManifestEntry, error) {
	m, err := LoadManifest(dir)
	if err != nil {
		return nil, err
	}
	if m != nil {
		return m.Variants, nil
	}

	files, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read variant directory: %w", err)
	}

	var entries []ManifestEntry
	for _, f := range files {
		if f.IsDir() || !strings.HasSuffix(f.Name(), FragmentExt) {
			continue
		}
		entries = append(entries, ManifestEntry{File: f.Name()})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].File < entries[j].File })
	return entries, nil
}
