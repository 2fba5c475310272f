// Package arch_test checks structural rules of the internal packages by
// parsing their sources.
package arch_test

import (
	"go/ast"
	"go/parser"
	"go/token"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"testing"
)

const internalImportPrefix = "github.com/papapumpkin/textage/internal/"

// internalDir returns the absolute path of internal/, two levels above this
// file.
func internalDir(t *testing.T) string {
	t.Helper()
	_, thisFile, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("runtime.Caller failed")
	}
	root := filepath.Join(filepath.Dir(thisFile), "..", "..")
	if _, err := os.Stat(filepath.Join(root, "go.mod")); err != nil {
		t.Fatalf("go.mod not found at %s: %v", root, err)
	}
	return filepath.Join(root, "internal")
}

// internalPackages lists the directories under internal/ that hold non-test
// Go sources. arch_test has none and drops out.
func internalPackages(t *testing.T) []string {
	t.Helper()

	dir := internalDir(t)
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("reading %s: %v", dir, err)
	}
	var pkgs []string
	for _, e := range entries {
		if e.IsDir() && len(parsePackage(t, e.Name(), parser.PackageClauseOnly)) > 0 {
			pkgs = append(pkgs, e.Name())
		}
	}
	sort.Strings(pkgs)
	return pkgs
}

// parsedFile is one non-test source file of an internal package.
type parsedFile struct {
	name string
	ast  *ast.File
}

// parsePackage parses the non-test .go files of internal/<pkg> with mode.
func parsePackage(t *testing.T, pkg string, mode parser.Mode) []parsedFile {
	t.Helper()

	pkgDir := filepath.Join(internalDir(t), pkg)
	entries, err := os.ReadDir(pkgDir)
	if err != nil {
		t.Fatalf("reading %s: %v", pkgDir, err)
	}
	fset := token.NewFileSet()
	var files []parsedFile
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".go") || strings.HasSuffix(name, "_test.go") {
			continue
		}
		f, err := parser.ParseFile(fset, filepath.Join(pkgDir, name), nil, mode)
		if err != nil {
			t.Fatalf("parsing %s/%s: %v", pkg, name, err)
		}
		files = append(files, parsedFile{name: name, ast: f})
	}
	return files
}

// internalImports returns the internal packages pkg imports, by short name.
func internalImports(t *testing.T, pkg string) []string {
	t.Helper()

	seen := make(map[string]bool)
	for _, f := range parsePackage(t, pkg, parser.ImportsOnly) {
		for _, imp := range f.ast.Imports {
			path := strings.Trim(imp.Path.Value, `"`)
			rel, ok := strings.CutPrefix(path, internalImportPrefix)
			if !ok {
				continue
			}
			rel, _, _ = strings.Cut(rel, "/")
			seen[rel] = true
		}
	}
	out := make([]string, 0, len(seen))
	for p := range seen {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}
