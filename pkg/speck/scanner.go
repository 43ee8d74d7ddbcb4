// Package speck parses .speck source trees into call-graph snapshots.
//
// The .speck dialect is small: a file declares child modules with
// "mod name { dep, dep }" and functions with "def name(...) -> T { body }".
// Inside a function body, "path::name" references a function in another
// module, with the path resolved relative to the directory of the file
// being parsed.
//
// Parsing is deliberately tolerant. The scanner extracts whatever matches
// the expected shapes and ignores everything else: a malformed declaration
// is not an error, it simply produces no match. This lets the visualizer
// keep rendering a partial graph while source files are mid-edit.
package speck

import (
	"regexp"
	"strings"
)

var (
	modRe = regexp.MustCompile(`mod\s+(\w+)\s*\{([^}]*)\}`)
	fnRe  = regexp.MustCompile(`def\s+(\w+)\s*\([^)]*\)\s*->\s*[^{]*\{([^}]*)\}`)
	refRe = regexp.MustCompile(`([\w./-]+)::(\w+)`)
)

// ModuleDecl is a "mod name { deps }" declaration: a child module name and
// the sibling names it declares a dependency on. Dependency names that do
// not match any sibling are tolerated and ignored by the sorter.
type ModuleDecl struct {
	Name string
	Deps []string
}

// FunctionDecl is a "def name(...) -> T { body }" declaration. Only the
// name and raw body text are extracted; parameters and return types are
// structural noise as far as graph construction is concerned.
type FunctionDecl struct {
	Name string
	Body string
}

// CallRef is a "path::name" reference found inside a function body. Path
// is the raw, unresolved path component exactly as written.
type CallRef struct {
	Path string
	Name string
}

// ScanModules extracts every child module declaration from src, in order
// of appearance. Text that does not match the declaration shape yields no
// result - absence of a match is a normal outcome, not an error.
func ScanModules(src string) []ModuleDecl {
	var decls []ModuleDecl
	for _, m := range modRe.FindAllStringSubmatch(src, -1) {
		decls = append(decls, ModuleDecl{
			Name: m[1],
			Deps: splitDeps(m[2]),
		})
	}
	return decls
}

// ScanFunctions extracts every function declaration from src, in order of
// appearance.
func ScanFunctions(src string) []FunctionDecl {
	var decls []FunctionDecl
	for _, m := range fnRe.FindAllStringSubmatch(src, -1) {
		decls = append(decls, FunctionDecl{Name: m[1], Body: m[2]})
	}
	return decls
}

// ScanRefs extracts every "path::name" call reference from a function
// body. The pattern is intentionally loose and will match any
// word::word substring, even ones that are not semantically call sites;
// this mirrors how a build tool would scan for imports and is a known
// source of false-positive edges, which downstream stages drop when the
// resolved target does not exist in the tree.
func ScanRefs(body string) []CallRef {
	var refs []CallRef
	for _, m := range refRe.FindAllStringSubmatch(body, -1) {
		refs = append(refs, CallRef{Path: m[1], Name: m[2]})
	}
	return refs
}

func splitDeps(list string) []string {
	var deps []string
	for _, part := range strings.Split(list, ",") {
		if dep := strings.TrimSpace(part); dep != "" {
			deps = append(deps, dep)
		}
	}
	return deps
}
