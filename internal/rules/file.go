package rules

import (
	"fmt"
	"io"
	"os"
	"regexp"

	toml "github.com/pelletier/go-toml/v2"
)

// overlayFile is the TOML layout of a rules file:
//
//	[[dataset]]
//	name = "actbl"
//	kind = "difficulties"
//	source = "actbl.js"
//	cache = "actbl.js.parsed.json"
//	start = '^\s*actbl=(\{).*$'
//	end = '\s*}\s*;\s*'
//	shape = "keyed"
//
//	[[dataset.rule]]
//	pattern = "A"
//	replace = "10"
//	literal = true
type overlayFile struct {
	Datasets []overlayDataset `toml:"dataset"`
}

type overlayDataset struct {
	Name   string        `toml:"name"`
	Kind   string        `toml:"kind"`
	Source string        `toml:"source"`
	Cache  string        `toml:"cache"`
	Start  string        `toml:"start"`
	End    string        `toml:"end"`
	Shape  string        `toml:"shape"`
	Rules  []overlayRule `toml:"rule"`
}

type overlayRule struct {
	Pattern string `toml:"pattern"`
	Replace string `toml:"replace"`
	Literal bool   `toml:"literal,omitempty"`
}

// LoadFile reads a TOML rules file.
func LoadFile(path string) (Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("rules: reading %s: %w", path, err)
	}
	t, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("rules: %s: %w", path, err)
	}
	return t, nil
}

// Parse decodes and validates TOML dataset records.
func Parse(data []byte) (Table, error) {
	var f overlayFile
	if err := toml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing TOML: %w", err)
	}

	t := make(Table, 0, len(f.Datasets))
	seen := make(map[string]bool, len(f.Datasets))
	for i, od := range f.Datasets {
		d, err := od.spec()
		if err != nil {
			return nil, fmt.Errorf("dataset %d: %w", i, err)
		}
		if seen[d.Name] {
			return nil, fmt.Errorf("%w: dataset %q declared twice", ErrInvalidDataset, d.Name)
		}
		seen[d.Name] = true
		t = append(t, d)
	}
	return t, nil
}

func (od overlayDataset) spec() (DatasetSpec, error) {
	shape, err := ParseLineShape(od.Shape)
	if err != nil {
		return DatasetSpec{}, err
	}
	start, err := regexp.Compile(od.Start)
	if err != nil {
		return DatasetSpec{}, fmt.Errorf("%w: dataset %q: start pattern: %v", ErrInvalidDataset, od.Name, err)
	}
	end, err := regexp.Compile(od.End)
	if err != nil {
		return DatasetSpec{}, fmt.Errorf("%w: dataset %q: end pattern: %v", ErrInvalidDataset, od.Name, err)
	}

	rs := make([]TransformRule, 0, len(od.Rules))
	for j, r := range od.Rules {
		if r.Pattern == "" {
			return DatasetSpec{}, fmt.Errorf("%w: dataset %q: rule %d: empty pattern", ErrInvalidDataset, od.Name, j)
		}
		if r.Literal {
			rs = append(rs, Literal(r.Pattern, r.Replace))
			continue
		}
		re, err := regexp.Compile(r.Pattern)
		if err != nil {
			return DatasetSpec{}, fmt.Errorf("%w: dataset %q: rule %d: %v", ErrInvalidDataset, od.Name, j, err)
		}
		rs = append(rs, TransformRule{Pattern: re, Replacement: r.Replace})
	}

	d := DatasetSpec{
		Name:       od.Name,
		Kind:       Kind(od.Kind),
		SourceName: od.Source,
		CacheName:  od.Cache,
		BlockStart: start,
		BlockEnd:   end,
		Rules:      rs,
		Shape:      shape,
	}
	if err := d.Validate(); err != nil {
		return DatasetSpec{}, err
	}
	return d, nil
}

// Encode writes t in the rules file layout accepted by Parse.
func Encode(w io.Writer, t Table) error {
	f := overlayFile{Datasets: make([]overlayDataset, 0, len(t))}
	for _, d := range t {
		od := overlayDataset{
			Name:   d.Name,
			Kind:   string(d.Kind),
			Source: d.SourceName,
			Cache:  d.CacheName,
			Shape:  d.Shape.String(),
		}
		if d.BlockStart != nil {
			od.Start = d.BlockStart.String()
		}
		if d.BlockEnd != nil {
			od.End = d.BlockEnd.String()
		}
		for _, r := range d.Rules {
			od.Rules = append(od.Rules, overlayRule{
				Pattern: r.Source(),
				Replace: r.Replacement,
				Literal: r.IsLiteral(),
			})
		}
		f.Datasets = append(f.Datasets, od)
	}
	if err := toml.NewEncoder(w).Encode(f); err != nil {
		return fmt.Errorf("rules: encoding TOML: %w", err)
	}
	return nil
}
