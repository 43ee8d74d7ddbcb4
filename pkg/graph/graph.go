// Package graph defines the module/function call-graph model shared by the
// parser, layout engine, and renderers.
//
// A [Snapshot] is the complete result of parsing one .speck source tree:
// a map of modules keyed by path, the flat list of function-level call
// edges found in source text, and the module-level edges derived from them.
// Snapshots are plain values - once built they are never mutated, and every
// downstream stage (layout, visibility, routing) treats them as read-only.
package graph

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrMissingRoot is returned by [Snapshot.Validate] when the root path
	// does not name a module in the snapshot.
	ErrMissingRoot = errors.New("root module not found")

	// ErrUnknownChild is returned by [Snapshot.Validate] when a module's
	// child list references a path with no corresponding module entry.
	ErrUnknownChild = errors.New("child path references unknown module")

	// ErrDuplicateChild is returned by [Snapshot.Validate] when the same
	// child path appears twice in one module's child list. Sibling sorting
	// must permute children, never duplicate them.
	ErrDuplicateChild = errors.New("duplicate child path")
)

// FunctionSep separates a module path from a function name in a function
// identity, e.g. "app/net::connect".
const FunctionSep = "::"

// PathSep separates segments of a module path, e.g. "app/net/client".
const PathSep = "/"

// Module is one node in the structural tree. Identity is the /-joined Path
// from the tree root; Name is the last path segment. Children and Functions
// preserve the order produced by the tree builder (children are
// dependency-sorted, functions appear in declaration order).
//
// A module with no children and no functions is a valid empty leaf - the
// parser records one for every declared child whose file is missing.
type Module struct {
	Name      string   `json:"name"`
	Path      string   `json:"path"`
	Depth     int      `json:"depth"`
	Children  []string `json:"children"`
	Functions []string `json:"functions"`
}

// FunctionID builds the identity of a function declared in this module.
func (m Module) FunctionID(fn string) string { return m.Path + FunctionSep + fn }

// Edge is a directed reference between two identities. For function edges
// the endpoints are function identities ("path::name"); for module edges
// they are module paths.
type Edge struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// Snapshot is the complete parsed graph for one source tree.
type Snapshot struct {
	Modules map[string]Module `json:"modules"`

	// FunctionEdges lists every call reference found in source, in
	// discovery order. Duplicates are retained: two textual references
	// from the same function to the same target produce two edges.
	FunctionEdges []Edge `json:"function_edges"`

	// ModuleEdges is the deduplicated projection of FunctionEdges onto
	// owning modules, excluding self-referential edges. It is derived,
	// informational data - edge resolution at draw time works from
	// FunctionEdges because it depends on live visibility state.
	ModuleEdges []Edge `json:"module_edges"`

	Root string `json:"root"`
}

// SplitFunctionID splits a function identity into its owning module path
// and function name. The second return is empty when id has no "::"
// separator (i.e. id is a bare module path).
func SplitFunctionID(id string) (modulePath, name string) {
	if i := strings.LastIndex(id, FunctionSep); i >= 0 {
		return id[:i], id[i+len(FunctionSep):]
	}
	return id, ""
}

// IsFunctionID reports whether id names a function rather than a module.
func IsFunctionID(id string) bool { return strings.Contains(id, FunctionSep) }

// OwnerPath returns the module path that owns id. For module paths this is
// the path itself; for function identities it is the part before "::".
func OwnerPath(id string) string {
	owner, _ := SplitFunctionID(id)
	return owner
}

// IsAncestorPath reports whether ancestor strictly contains descendant in
// the tree, in the identity sense used by edge routing: "app" contains
// both "app/net" and "app::main".
func IsAncestorPath(ancestor, descendant string) bool {
	return strings.HasPrefix(descendant, ancestor+PathSep) ||
		strings.HasPrefix(descendant, ancestor+FunctionSep)
}

// Ancestors returns the chain of module paths from the tree root down to
// and including path. For "app/net/client" it returns
// ["app", "app/net", "app/net/client"].
func Ancestors(path string) []string {
	segments := strings.Split(path, PathSep)
	chain := make([]string, len(segments))
	current := segments[0]
	chain[0] = current
	for i := 1; i < len(segments); i++ {
		current += PathSep + segments[i]
		chain[i] = current
	}
	return chain
}

// DeriveModuleEdges projects function edges onto their owning modules,
// dropping self-referential edges and duplicates. The result preserves
// first-discovery order, which keeps snapshot serialization deterministic.
func DeriveModuleEdges(functionEdges []Edge) []Edge {
	seen := make(map[Edge]struct{}, len(functionEdges))
	var out []Edge
	for _, e := range functionEdges {
		me := Edge{From: OwnerPath(e.From), To: OwnerPath(e.To)}
		if me.From == me.To {
			continue
		}
		if _, dup := seen[me]; dup {
			continue
		}
		seen[me] = struct{}{}
		out = append(out, me)
	}
	return out
}

// Validate checks structural invariants and returns nil if the snapshot is
// well formed:
//
//  1. Root names an existing module (empty snapshots are valid).
//  2. Every child path in every module's child list exists in Modules.
//  3. No child list contains the same path twice.
//
// Dangling function-edge endpoints are deliberately NOT an error: the
// parser records call references verbatim, and unresolvable ones are
// dropped at draw time instead of failing the whole graph.
func (s *Snapshot) Validate() error {
	if len(s.Modules) == 0 && s.Root == "" {
		return nil
	}
	if _, ok := s.Modules[s.Root]; !ok {
		return fmt.Errorf("%w: %q", ErrMissingRoot, s.Root)
	}
	for path, m := range s.Modules {
		seen := make(map[string]struct{}, len(m.Children))
		for _, child := range m.Children {
			if _, ok := s.Modules[child]; !ok {
				return fmt.Errorf("%w: %q in %q", ErrUnknownChild, child, path)
			}
			if _, dup := seen[child]; dup {
				return fmt.Errorf("%w: %q in %q", ErrDuplicateChild, child, path)
			}
			seen[child] = struct{}{}
		}
	}
	return nil
}

// ModuleCount returns the number of modules in the snapshot.
func (s *Snapshot) ModuleCount() int { return len(s.Modules) }

// FunctionCount returns the total number of declared functions.
func (s *Snapshot) FunctionCount() int {
	n := 0
	for _, m := range s.Modules {
		n += len(m.Functions)
	}
	return n
}

// Walk visits every module reachable from the root in depth-first,
// children-in-order sequence, calling fn with each.
func (s *Snapshot) Walk(fn func(Module)) {
	var visit func(path string)
	visit = func(path string) {
		m, ok := s.Modules[path]
		if !ok {
			return
		}
		fn(m)
		for _, child := range m.Children {
			visit(child)
		}
	}
	visit(s.Root)
}
