// Package variant provides retrieval functions for header and footer markup.
package variant

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/jmylchreest/themekit/internal/model"
	"github.com/jmylchreest/themekit/internal/store"
)

// FragmentExt is the file extension of markup fragments.
const FragmentExt = ".html"

// Load resolves fetch synchronously, for stores given static variant sets.
func Load(ctx context.Context, fetch store.FetchFunc) ([]model.Variant, error) {
	if fetch == nil {
		return nil, nil
	}
	variants, err := fetch(ctx)
	if err != nil {
		return nil, err
	}
	if variants == nil {
		variants = []model.Variant{}
	}
	return variants, nil
}

// dirName returns the fragment directory name for kind.
func dirName(kind model.Kind) (string, error) {
	switch kind {
	case model.KindHeader:
		return "headers", nil
	case model.KindFooter:
		return "footers", nil
	default:
		return "", fmt.Errorf("%w: %q", model.ErrUnknownKind, kind)
	}
}

// nameFromFile derives a variant name from a fragment file name, dropping
// the extension and any numeric ordering prefix ("02-navbar.html" -> "navbar").
func nameFromFile(file string) string {
	name := strings.TrimSuffix(filepath.Base(file), filepath.Ext(file))
	trimmed := strings.TrimLeft(name, "0123456789")
	if trimmed != name {
		trimmed = strings.TrimLeft(trimmed, "-_")
	}
	if trimmed == "" {
		return name
	}
	return trimmed
}

// appendVariant appends a new variant to set. Entries that fail validation
// are skipped with a warning so one bad fragment does not empty the set.
func appendVariant(set []model.Variant, kind model.Kind, name, markup, source string) ([]model.Variant, error) {
	v, err := model.NewVariant(kind, name, markup)
	if err != nil {
		return nil, err
	}
	if err := v.Validate(); err != nil {
		slog.Warn("skipping variant", "kind", kind, "source", source, "error", err)
		return set, nil
	}
	return append(set, v), nil
}
