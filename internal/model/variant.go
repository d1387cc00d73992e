// Package model defines the core data structures for themekit.
package model

import (
	"crypto/rand"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
)

// DefaultTheme is the theme name used when no initial theme is configured.
const DefaultTheme = "default"

// Kind identifies which page slot a variant fills.
type Kind string

const (
	KindHeader Kind = "header"
	KindFooter Kind = "footer"
)

// Kinds lists every variant kind in display order.
var Kinds = []Kind{KindHeader, KindFooter}

// ParseKind converts user input ("header", "headers", "Footer") to a Kind.
func ParseKind(s string) (Kind, error) {
	switch strings.TrimSuffix(strings.ToLower(strings.TrimSpace(s)), "s") {
	case string(KindHeader):
		return KindHeader, nil
	case string(KindFooter):
		return KindFooter, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownKind, s)
}

// Label returns the capitalised kind name used in selector labels.
func (k Kind) Label() string {
	if k == "" {
		return ""
	}
	return strings.ToUpper(string(k[:1])) + string(k[1:])
}

// Variant is one selectable header or footer.
// Variants are immutable once loaded; two variants are the same choice
// exactly when their IDs match.
type Variant struct {
	ID     string `json:"id" yaml:"id"`
	Kind   Kind   `json:"kind" yaml:"kind"`
	Name   string `json:"name" yaml:"name"`
	Markup string `json:"markup" yaml:"markup"`
}

// Validation errors.
var (
	ErrUnknownKind = errors.New("unknown variant kind")
	ErrEmptyID     = errors.New("variant id cannot be empty")
	ErrEmptyMarkup = errors.New("variant markup cannot be empty")
)

// NewVariant creates a Variant with a freshly generated ULID.
func NewVariant(kind Kind, name, markup string) (Variant, error) {
	id, err := ulid.New(ulid.Timestamp(time.Now()), rand.Reader)
	if err != nil {
		return Variant{}, fmt.Errorf("failed to generate ULID: %w", err)
	}

	return Variant{
		ID:     id.String(),
		Kind:   kind,
		Name:   name,
		Markup: markup,
	}, nil
}

// Validate checks that the variant has the fields a selector needs.
func (v Variant) Validate() error {
	if v.ID == "" {
		return ErrEmptyID
	}
	if v.Kind != KindHeader && v.Kind != KindFooter {
		return fmt.Errorf("%w: %q", ErrUnknownKind, v.Kind)
	}
	if strings.TrimSpace(v.Markup) == "" {
		return ErrEmptyMarkup
	}
	return nil
}

// IndexOf returns the position of v in set, or -1 when v is nil or absent.
func IndexOf(set []Variant, v *Variant) int {
	if v == nil {
		return -1
	}
	for i := range set {
		if set[i].ID == v.ID {
			return i
		}
	}
	return -1
}

// Contains reports whether v is a member of set.
func Contains(set []Variant, v Variant) bool {
	return IndexOf(set, &v) >= 0
}

// At returns the variant at index i and whether i was in range.
func At(set []Variant, i int) (Variant, bool) {
	if i < 0 || i >= len(set) {
		return Variant{}, false
	}
	return set[i], true
}

// First returns a pointer to a copy of the first element, or nil for an empty set.
func First(set []Variant) *Variant {
	if len(set) == 0 {
		return nil
	}
	v := set[0]
	return &v
}
