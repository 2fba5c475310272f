package rules

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestBuiltin_Validate(t *testing.T) {
	t.Parallel()

	table := Builtin()
	if got, want := table.Names(), []string{Difficulties, Versions, Titles}; !cmp.Equal(got, want) {
		t.Fatalf("Names() = %v, want %v", got, want)
	}
	for _, d := range table {
		if err := d.Validate(); err != nil {
			t.Errorf("built-in %q: Validate() = %v", d.Name, err)
		}
	}
}

func TestBuiltin_CopyIsIndependent(t *testing.T) {
	t.Parallel()

	a := Builtin()
	a[0] = DatasetSpec{Name: "clobbered"}
	a[1].Rules[0] = Literal("x", "y")
	a[2].Rules = append(a[2].Rules[:0], Literal("x", "y"))

	b := Builtin()
	if b[0].Name != Difficulties {
		t.Errorf("Builtin()[0].Name = %q after caller mutation, want %q", b[0].Name, Difficulties)
	}
	if got, want := b[1].Rules[0].Source(), versionRules[0].Source(); got != want || b[1].Rules[0].IsLiteral() != versionRules[0].IsLiteral() {
		t.Errorf("Builtin()[1].Rules[0] = %q after caller mutation, want %q", got, want)
	}
	if got, want := b[2].Rules[0].Source(), titleRules[0].Source(); got != want {
		t.Errorf("Builtin()[2].Rules[0] = %q after caller append, want %q", got, want)
	}
	if versionRules[0].Source() == "x" || titleRules[0].Source() == "x" {
		t.Error("caller mutation reached the built-in rule slices")
	}
}

func TestDifficultyRules(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		rules []TransformRule
		in    string
		want  string
	}{
		{
			name:  "hex stage",
			rules: difficultyRules[:6],
			in:    `"A,B,C,3"`,
			want:  `"10,11,12,3"`,
		},
		{
			name:  "hex inside quotes is replaced too",
			rules: difficultyRules[:6],
			in:    `[D,E,F,"Bad"]`,
			want:  `[13,14,15,"11ad"]`,
		},
		{
			name:  "id comment",
			rules: difficultyRules,
			in:    `[1,0,3,7,A,0],//1234`,
			want:  `[1,0,3,7,10,0],`,
		},
		{
			name:  "quoted note becomes sentinel",
			rules: difficultyRules,
			in:    `[1,0,3,7,"note"],`,
			want:  `[1,0,3,7,-1],`,
		},
		{
			name:  "span markup removed",
			rules: difficultyRules,
			in:    `[1,2,3,"<span class='x'>new</span>"],`,
			want:  `[1,2,3,-1],`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := Apply(tt.in, tt.rules); got != tt.want {
				t.Errorf("Apply(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestVersionRules(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{`vertbl[35]=foo];`, `,foo`},
		{`"HEROIC VERSE","BISTROVER"];`, `"HEROIC VERSE","BISTROVER"`},
		{`];`, ``},
		{`"1st style",`, `"1st style",`},
	}
	for _, tt := range tests {
		if got := Apply(tt.in, versionRules); got != tt.want {
			t.Errorf("Apply(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestTitleRules(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "substream and span",
			in:   `[SS,1008,1,"GENRE","ARTIST","<span style='color:red'>TI<\/span>TLE"],`,
			want: `[-1,1008,1,"GENRE","ARTIST","TITLE"],`,
		},
		{
			name: "fontcolor call",
			in:   `[3,12,1,"G","A","X".fontcolor('#ff0000')],`,
			want: `[3,12,1,"G","A","X"],`,
		},
		{
			name: "div bold and break",
			in:   "[5,7,1,\"G\",\"<div class=small>A<\\/div>\",\"<b>T<\\/b><br>S\"],\t",
			want: `[5,7,1,"G","A","TS"],`,
		},
		{
			name: "SS only at line start",
			in:   `[2,9,1,"SSS","A","T"],`,
			want: `[2,9,1,"SSS","A","T"],`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := Apply(tt.in, titleRules); got != tt.want {
				t.Errorf("Apply(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestApply_Pure(t *testing.T) {
	t.Parallel()

	in := `[1,A,"x"],//99`
	first := Apply(in, difficultyRules)
	for i := 0; i < 5; i++ {
		if got := Apply(in, difficultyRules); got != first {
			t.Fatalf("call %d: Apply = %q, want %q", i, got, first)
		}
	}
}

func TestTransformRule_BackReference(t *testing.T) {
	t.Parallel()

	r := Regexp(`(\d+)px`, "${1}")
	if got := r.Apply("10px 20px"); got != "10 20" {
		t.Errorf("Apply = %q, want %q", got, "10 20")
	}
}

func TestTable_Select(t *testing.T) {
	t.Parallel()

	table := Builtin()

	all, err := table.Select(nil)
	if err != nil {
		t.Fatalf("Select(nil): %v", err)
	}
	if len(all) != 3 {
		t.Errorf("Select(nil) returned %d specs, want 3", len(all))
	}

	sel, err := table.Select([]string{Titles, Difficulties})
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	if got := sel.Names(); !cmp.Equal(got, []string{Titles, Difficulties}) {
		t.Errorf("Select names = %v", got)
	}

	if _, err := table.Select([]string{"nope"}); !errors.Is(err, ErrUnknownDataset) {
		t.Errorf("Select(unknown) error = %v, want ErrUnknownDataset", err)
	}
}

func TestTable_Merge(t *testing.T) {
	t.Parallel()

	base := Builtin()
	override := base[1]
	override.SourceName = "scrlist-mirror.js"
	extra := DatasetSpec{Name: "extra"}

	merged := base.Merge(Table{override, extra})
	if got, want := merged.Names(), []string{Difficulties, Versions, Titles, "extra"}; !cmp.Equal(got, want) {
		t.Fatalf("merged names = %v, want %v", got, want)
	}
	if got, _ := merged.Lookup(Versions); got.SourceName != "scrlist-mirror.js" {
		t.Errorf("override not applied: SourceName = %q", got.SourceName)
	}
	if got, _ := base.Lookup(Versions); got.SourceName != "scrlist.js" {
		t.Errorf("Merge mutated receiver: SourceName = %q", got.SourceName)
	}
}

const overlayTOML = `
[[dataset]]
name = "clear"
kind = "raw"
source = "cleartbl.js"
cache = "cleartbl.js.parsed.json"
start = '^cleartbl=(\{)(.*)$'
end = '^};'
shape = "keyed"

[[dataset.rule]]
pattern = ";"
replace = ""
literal = true

[[dataset.rule]]
pattern = '(\d+)x'
replace = "$1"
`

func TestParse(t *testing.T) {
	t.Parallel()

	table, err := Parse([]byte(overlayTOML))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(table) != 1 {
		t.Fatalf("got %d datasets, want 1", len(table))
	}
	d := table[0]
	if d.Name != "clear" || d.Kind != KindRaw || d.Shape != KeyedEntries {
		t.Errorf("unexpected dataset: name=%q kind=%q shape=%v", d.Name, d.Kind, d.Shape)
	}
	if len(d.Rules) != 2 || !d.Rules[0].IsLiteral() || d.Rules[1].IsLiteral() {
		t.Fatalf("unexpected rules: %+v", d.Rules)
	}
	if got := Apply("3x;", d.Rules); got != "3" {
		t.Errorf("Apply = %q, want %q", got, "3")
	}
}

func TestParse_Errors(t *testing.T) {
	t.Parallel()

	valid := func(edit func(string) string) string { return edit(overlayTOML) }
	tests := []struct {
		name string
		doc  string
	}{
		{"no start group", valid(func(s string) string {
			return strings.Replace(s, `'^cleartbl=(\{)(.*)$'`, `'^cleartbl='`, 1)
		})},
		{"unknown kind", valid(func(s string) string { return strings.Replace(s, `"raw"`, `"scores"`, 1) })},
		{"unknown shape", valid(func(s string) string { return strings.Replace(s, `"keyed"`, `"nested"`, 1) })},
		{"bad rule regexp", valid(func(s string) string { return strings.Replace(s, `'(\d+)x'`, `'(\d+x'`, 1) })},
		{"missing source", valid(func(s string) string { return strings.Replace(s, `source = "cleartbl.js"`, ``, 1) })},
		{"cache escapes root", valid(func(s string) string {
			return strings.Replace(s, `cache = "cleartbl.js.parsed.json"`, `cache = "../cleartbl.json"`, 1)
		})},
		{"absolute cache", valid(func(s string) string {
			return strings.Replace(s, `cache = "cleartbl.js.parsed.json"`, `cache = "/tmp/cleartbl.json"`, 1)
		})},
		{"duplicate name", overlayTOML + strings.SplitN(overlayTOML, "[[dataset.rule]]", 2)[0]},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if _, err := Parse([]byte(tt.doc)); !errors.Is(err, ErrInvalidDataset) {
				t.Errorf("Parse error = %v, want ErrInvalidDataset", err)
			}
		})
	}

	if _, err := Parse([]byte("[[dataset]\n")); err == nil {
		t.Error("Parse(malformed TOML) returned nil error")
	}
}

func TestParse_CacheSubdirectory(t *testing.T) {
	t.Parallel()

	doc := strings.Replace(overlayTOML, `cache = "cleartbl.js.parsed.json"`, `cache = "extra/cleartbl.json"`, 1)
	table, err := Parse([]byte(doc))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if got := table[0].CacheName; got != "extra/cleartbl.json" {
		t.Errorf("CacheName = %q, want %q", got, "extra/cleartbl.json")
	}
}

func TestEncode_ParsesBack(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	if err := Encode(&buf, Builtin()); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	back, err := Parse(buf.Bytes())
	if err != nil {
		t.Fatalf("Parse(Encode(Builtin())): %v\n%s", err, buf.String())
	}

	for i, want := range Builtin() {
		got := back[i]
		if got.Name != want.Name || got.BlockStart.String() != want.BlockStart.String() || got.Shape != want.Shape {
			t.Errorf("dataset %d: got %q %q %v, want %q %q %v", i,
				got.Name, got.BlockStart, got.Shape, want.Name, want.BlockStart, want.Shape)
		}
		in := `[SS,A,"x".fontcolor('r')],vertbl[35]=y];//12`
		if g, w := Apply(in, got.Rules), Apply(in, want.Rules); g != w {
			t.Errorf("dataset %q: re-parsed rules give %q, want %q", want.Name, g, w)
		}
	}
}
