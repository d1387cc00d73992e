package variant

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	"github.com/jmylchreest/themekit/internal/model"
	"github.com/jmylchreest/themekit/internal/store"
)

// EmbeddedVariants contains the bundled header and footer fragments.
//
//go:embed variants/headers/*.html variants/footers/*.html
var EmbeddedVariants embed.FS

// Embedded returns a FetchFunc over the bundled fragments of kind.
func Embedded(kind model.Kind) store.FetchFunc {
	return func(ctx context.Context) ([]model.Variant, error) {
		return readFS(ctx, EmbeddedVariants, "variants", kind)
	}
}

// ListEmbedded returns the file names of the bundled fragments of kind.
func ListEmbedded(kind model.Kind) []string {
	dir, err := dirName(kind)
	if err != nil {
		return nil
	}
	entries, err := fs.ReadDir(EmbeddedVariants, path.Join("variants", dir))
	if err != nil {
		return nil
	}

	var names []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), FragmentExt) {
			names = append(names, entry.Name())
		}
	}
	return names
}

func readFS(ctx context.Context, fsys fs.FS, root string, kind model.Kind) ([]model.Variant, error) {
	dir, err := dirName(kind)
	if err != nil {
		return nil, err
	}
	dir = path.Join(root, dir)

	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", dir, err)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	variants := make([]model.Variant, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), FragmentExt) {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		data, err := fs.ReadFile(fsys, path.Join(dir, entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", entry.Name(), err)
		}
		variants, err = appendVariant(variants, kind, nameFromFile(entry.Name()), string(data), entry.Name())
		if err != nil {
			return nil, fmt.Errorf("%s: %w", entry.Name(), err)
		}
	}
	return variants, nil
}
