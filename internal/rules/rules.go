// Package rules holds the per-dataset configuration that drives extraction:
// where a JS literal block starts and ends in a textage source file, and the
// ordered text substitutions that turn its lines into JSON.
package rules

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
)

// LineShape describes how captured interior lines are laid out.
type LineShape int

const (
	// KeyedEntries lines are `key: value` pairs of a JSON object.
	KeyedEntries LineShape = iota
	// PlainEntries lines are bare JSON array elements.
	PlainEntries
)

// String returns the overlay-file spelling of the shape.
func (s LineShape) String() string {
	switch s {
	case KeyedEntries:
		return "keyed"
	case PlainEntries:
		return "plain"
	default:
		return fmt.Sprintf("LineShape(%d)", int(s))
	}
}

// ParseLineShape maps an overlay spelling back to a LineShape.
func ParseLineShape(s string) (LineShape, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "keyed":
		return KeyedEntries, nil
	case "plain":
		return PlainEntries, nil
	}
	return 0, fmt.Errorf("%w: unknown shape %q", ErrInvalidDataset, s)
}

// Kind selects the decoder used for a dataset's JSON output.
type Kind string

const (
	KindDifficulties Kind = "difficulties"
	KindVersions     Kind = "versions"
	KindTitles       Kind = "titles"
	// KindRaw datasets are validated as JSON but not decoded into a typed shape.
	KindRaw Kind = "raw"
)

// Valid reports whether k is a known kind.
func (k Kind) Valid() bool {
	switch k {
	case KindDifficulties, KindVersions, KindTitles, KindRaw:
		return true
	}
	return false
}

// TransformRule is one substitution step. Literal rules replace a plain
// substring; regexp rules replace every match, expanding $1-style references.
type TransformRule struct {
	Pattern     *regexp.Regexp
	Literal     string
	Replacement string
}

// Regexp builds a regexp rule. It panics on an invalid pattern and is meant
// for the built-in table.
func Regexp(pattern, replacement string) TransformRule {
	return TransformRule{Pattern: regexp.MustCompile(pattern), Replacement: replacement}
}

// Literal builds a plain substring rule.
func Literal(old, replacement string) TransformRule {
	return TransformRule{Literal: old, Replacement: replacement}
}

// IsLiteral reports whether the rule is a plain substring replacement.
func (r TransformRule) IsLiteral() bool { return r.Pattern == nil }

// Source returns the rule's pattern text.
func (r TransformRule) Source() string {
	if r.IsLiteral() {
		return r.Literal
	}
	return r.Pattern.String()
}

// Apply replaces all non-overlapping matches of the rule in s.
func (r TransformRule) Apply(s string) string {
	if r.IsLiteral() {
		if r.Literal == "" {
			return s
		}
		return strings.ReplaceAll(s, r.Literal, r.Replacement)
	}
	return r.Pattern.ReplaceAllString(s, r.Replacement)
}

// Apply runs every rule over s in declaration order, each rule consuming the
// previous rule's output.
func Apply(s string, rs []TransformRule) string {
	for _, r := range rs {
		s = r.Apply(s)
	}
	return s
}

// DatasetSpec describes how to locate and normalize one remote data table.
// Values are shared read-only after construction.
type DatasetSpec struct {
	Name       string
	Kind       Kind
	SourceName string // remote resource, relative to the fetcher's base
	CacheName  string // cache artifact file name

	// BlockStart group 1 captures the opening bracket; an optional group 2
	// captures content trailing the bracket on the same line.
	BlockStart *regexp.Regexp
	BlockEnd   *regexp.Regexp

	Rules []TransformRule
	Shape LineShape
}

// Validate checks that the dataset can drive an extraction.
func (d DatasetSpec) Validate() error {
	switch {
	case d.Name == "":
		return fmt.Errorf("%w: name is required", ErrInvalidDataset)
	case d.SourceName == "":
		return fmt.Errorf("%w: dataset %q: source is required", ErrInvalidDataset, d.Name)
	case d.CacheName == "":
		return fmt.Errorf("%w: dataset %q: cache is required", ErrInvalidDataset, d.Name)
	case !filepath.IsLocal(d.CacheName):
		return fmt.Errorf("%w: dataset %q: cache %q must be a relative path inside the cache directory", ErrInvalidDataset, d.Name, d.CacheName)
	case !d.Kind.Valid():
		return fmt.Errorf("%w: dataset %q: unknown kind %q", ErrInvalidDataset, d.Name, d.Kind)
	case d.BlockStart == nil || d.BlockEnd == nil:
		return fmt.Errorf("%w: dataset %q: start and end patterns are required", ErrInvalidDataset, d.Name)
	case d.BlockStart.NumSubexp() < 1:
		return fmt.Errorf("%w: dataset %q: start pattern must capture the opening bracket", ErrInvalidDataset, d.Name)
	case d.Shape != KeyedEntries && d.Shape != PlainEntries:
		return fmt.Errorf("%w: dataset %q: unknown shape %v", ErrInvalidDataset, d.Name, d.Shape)
	}
	return nil
}

// Table is an ordered set of dataset specs.
type Table []DatasetSpec

// Lookup returns the dataset with the given name.
func (t Table) Lookup(name string) (DatasetSpec, bool) {
	for _, d := range t {
		if d.Name == name {
			return d, true
		}
	}
	return DatasetSpec{}, false
}

// Names returns dataset names in table order.
func (t Table) Names() []string {
	names := make([]string, len(t))
	for i, d := range t {
		names[i] = d.Name
	}
	return names
}

// Select returns the specs named in names, in the order given. An empty
// names list selects the whole table.
func (t Table) Select(names []string) (Table, error) {
	if len(names) == 0 {
		return t, nil
	}
	out := make(Table, 0, len(names))
	for _, n := range names {
		d, ok := t.Lookup(n)
		if !ok {
			return nil, fmt.Errorf("%w: %q (known: %s)", ErrUnknownDataset, n, strings.Join(t.Names(), ", "))
		}
		out = append(out, d)
	}
	return out, nil
}

// Merge overlays extra onto t: specs sharing a name replace the original in
// place, new names are appended.
func (t Table) Merge(extra Table) Table {
	out := make(Table, len(t), len(t)+len(extra))
	copy(out, t)
	for _, d := range extra {
		replaced := false
		for i := range out {
			if out[i].Name == d.Name {
				out[i] = d
				replaced = true
				break
			}
		}
		if !replaced {
			out = append(out, d)
		}
	}
	return out
}
