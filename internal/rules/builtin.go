package rules

import (
	"regexp"
	"slices"
)

// Built-in dataset names.
const (
	Difficulties = "actbl"
	Versions     = "scrlist"
	Titles       = "titletbl"
)

// difficultyRules normalizes actbl.js entries such as
// 'ahl':[1,0,3,7,A,0,0,0,0,0,0,"<span ...>span>"],// 1234
var difficultyRules = []TransformRule{
	// Levels are single hex digits; keep these ahead of the regexp cleanup.
	Literal("A", "10"),
	Literal("B", "11"),
	Literal("C", "12"),
	Literal("D", "13"),
	Literal("E", "14"),
	Literal("F", "15"),
	// Trailing id comments inside the literal.
	Regexp(`//\d+`, ""),
	// A quoted note closes some rows; it is never used.
	Regexp(`".*"]`, "-1]"),
	Regexp(`,"<span.*span>"`, ""),
}

// versionRules normalizes the scrlist.js vertbl array. The index-35 entry is
// assigned out of line after the literal.
var versionRules = []TransformRule{
	Regexp(`;`, ""),
	Regexp(`]$`, ""),
	Regexp(`vertbl\[35\]=`, ","),
}

// titleRules strip the markup embedded in titletbl.js titles. Escaped closing
// tags only exist in the raw source, so the order here matters.
var titleRules = []TransformRule{
	Regexp(`.fontcolor\(.*?\)`, ""),
	Regexp(`<span style='.*?'>`, ""),
	Regexp(`<\\/span>`, ""),
	Regexp(`<div class=.*?>`, ""),
	Regexp(`<\\/div>`, ""),
	Regexp(`<br>`, ""),
	Regexp(`<b>`, ""),
	Regexp(`<\\/b>`, ""),
	// Substream rows carry SS instead of a version number.
	Regexp(`^\[SS`, "[-1"),
	Regexp(`\t`, ""),
}

var objectEnd = regexp.MustCompile(`\s*}\s*;\s*`)

var builtin = Table{
	{
		Name:       Difficulties,
		Kind:       KindDifficulties,
		SourceName: "actbl.js",
		CacheName:  "actbl.js.parsed.json",
		BlockStart: regexp.MustCompile(`^\s*actbl=(\{).*$`),
		BlockEnd:   objectEnd,
		Rules:      difficultyRules,
		Shape:      KeyedEntries,
	},
	{
		Name:       Versions,
		Kind:       KindVersions,
		SourceName: "scrlist.js",
		CacheName:  "scrlist.js.parsed.json",
		BlockStart: regexp.MustCompile(`^vertbl\s*=\s*(\[)(.*)$`),
		BlockEnd:   regexp.MustCompile(`^\s*$`),
		Rules:      versionRules,
		Shape:      PlainEntries,
	},
	{
		Name:       Titles,
		Kind:       KindTitles,
		SourceName: "titletbl.js",
		CacheName:  "titletbl.js.parsed.json",
		BlockStart: regexp.MustCompile(`^\s*titletbl=(\{).*$`),
		BlockEnd:   objectEnd,
		Rules:      titleRules,
		Shape:      KeyedEntries,
	},
}

// Builtin returns a copy of the three textage datasets. The caller may
// reorder, extend or edit the table and its rule lists; compiled patterns
// are shared.
func Builtin() Table {
	out := make(Table, len(builtin))
	for i, d := range builtin {
		d.Rules = slices.Clone(d.Rules)
		out[i] = d
	}
	return out
}
