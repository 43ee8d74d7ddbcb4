// Package visibility answers what is painted for a given expand/collapse
// state and resolves edge endpoints onto the nearest visible box.
//
// The engine itself is stateless: every query is a pure function of the
// snapshot, the geometry, and an [ExpandedSet] owned by the caller.
// Toggling visibility never touches layout - geometry computed once per
// structural change stays valid for every possible expanded state.
package visibility

import (
	"sort"

	"github.com/matzehuels/speckview/pkg/graph"
	"github.com/matzehuels/speckview/pkg/layout"
)

// ExpandedSet is the set of module paths whose contents (functions and
// children) are currently shown. The set is an externally-owned value:
// callers construct it, mutate it through the toggle methods, and pass it
// into queries. Nothing here caches derived state between calls.
type ExpandedSet map[string]struct{}

// NewExpandedSet builds a set containing the given paths.
func NewExpandedSet(paths ...string) ExpandedSet {
	s := make(ExpandedSet, len(paths))
	for _, p := range paths {
		s[p] = struct{}{}
	}
	return s
}

// Has reports whether path is expanded.
func (s ExpandedSet) Has(path string) bool {
	_, ok := s[path]
	return ok
}

// Expand marks a single module's contents visible. Its children stay
// collapsed until toggled themselves.
func (s ExpandedSet) Expand(path string) { s[path] = struct{}{} }

// ExpandSubtree marks path and every descendant module expanded.
func (s ExpandedSet) ExpandSubtree(snap *graph.Snapshot, path string) {
	for modPath := range snap.Modules {
		if modPath == path || graph.IsAncestorPath(path, modPath) {
			s[modPath] = struct{}{}
		}
	}
}

// Collapse removes path and every descendant from the set. Descendant
// state is dropped on purpose: re-expanding later starts from a fully
// collapsed subtree rather than restoring prior nested state.
func (s ExpandedSet) Collapse(path string) {
	for p := range s {
		if p == path || graph.IsAncestorPath(path, p) {
			delete(s, p)
		}
	}
}

// ExpandAll marks every module in the snapshot expanded.
func (s ExpandedSet) ExpandAll(snap *graph.Snapshot) {
	for path := range snap.Modules {
		s[path] = struct{}{}
	}
}

// CollapseAll clears the set back to the default view: only the root's
// contents remain visible.
func (s ExpandedSet) CollapseAll(snap *graph.Snapshot) {
	for p := range s {
		delete(s, p)
	}
	s[snap.Root] = struct{}{}
}

// Toggle flips one module: collapsed modules expand (subtree-wide when
// subtree is set), expanded modules collapse along with all descendants.
func (s ExpandedSet) Toggle(snap *graph.Snapshot, path string, subtree bool) {
	switch {
	case s.Has(path):
		s.Collapse(path)
	case subtree:
		s.ExpandSubtree(snap, path)
	default:
		s.Expand(path)
	}
}

// Paths returns the expanded paths in sorted order.
func (s ExpandedSet) Paths() []string {
	paths := make([]string, 0, len(s))
	for p := range s {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// =============================================================================
// Queries
// =============================================================================

// ModuleReachable reports whether a module's box is actually visible on
// screen: the root always is, a deeper module only when every strict
// ancestor (root down to its parent) is expanded.
func ModuleReachable(s ExpandedSet, path string) bool {
	chain := graph.Ancestors(path)
	for i := 0; i < len(chain)-1; i++ {
		if !s.Has(chain[i]) {
			return false
		}
	}
	return true
}

// ContentsVisible reports whether a module's contents (its functions and
// children boxes) are painted: true iff its own path is expanded.
// Every module box itself is always drawn once the tree is loaded.
func ContentsVisible(s ExpandedSet, path string) bool { return s.Has(path) }

// FunctionVisible reports whether a function box is painted: its owning
// module must be reachable and expanded.
func FunctionVisible(s ExpandedSet, fnID string) bool {
	modPath := graph.OwnerPath(fnID)
	return ModuleReachable(s, modPath) && s.Has(modPath)
}

// ResolveEndpoint maps an edge endpoint to the most specific visible box
// it collapses onto. Walking from the root toward the owning module, the
// first ancestor whose contents are not expanded substitutes for the
// endpoint. When the whole chain down to and including the owning module
// is expanded, a function endpoint resolves to the function box itself.
func ResolveEndpoint(s ExpandedSet, id string) string {
	modPath := graph.OwnerPath(id)
	chain := graph.Ancestors(modPath)
	for i := 0; i < len(chain)-1; i++ {
		if !s.Has(chain[i]) {
			return chain[i]
		}
	}
	if s.Has(modPath) {
		return id
	}
	return modPath
}

// VisibleBox pairs an identity with its laid-out geometry. The slice
// returned by [VisibleBoxes] doubles as the router's obstacle set.
type VisibleBox struct {
	ID  string
	Box layout.Box
}

// VisibleBoxes collects every currently painted box: all reachable module
// boxes plus the function boxes of expanded modules. The result is sorted
// by identity so downstream consumers see a deterministic order.
func VisibleBoxes(snap *graph.Snapshot, geo *layout.Geometry, s ExpandedSet) []VisibleBox {
	var boxes []VisibleBox
	for path := range snap.Modules {
		if !ModuleReachable(s, path) {
			continue
		}
		if box, ok := geo.Modules[path]; ok {
			boxes = append(boxes, VisibleBox{ID: path, Box: box})
		}
	}
	for fnID := range geo.Functions {
		if !FunctionVisible(s, fnID) {
			continue
		}
		boxes = append(boxes, VisibleBox{ID: fnID, Box: geo.Functions[fnID]})
	}
	sort.Slice(boxes, func(i, j int) bool { return boxes[i].ID < boxes[j].ID })
	return boxes
}

// ResolveEdges maps every function edge onto visible endpoints,
// suppressing edges that collapse to a self-loop (both endpoints inside
// the same collapsed module) and deduplicating resolved pairs. Order
// follows first discovery in the snapshot's edge list.
func ResolveEdges(snap *graph.Snapshot, s ExpandedSet) []graph.Edge {
	seen := make(map[graph.Edge]struct{}, len(snap.FunctionEdges))
	var resolved []graph.Edge
	for _, e := range snap.FunctionEdges {
		re := graph.Edge{
			From: ResolveEndpoint(s, e.From),
			To:   ResolveEndpoint(s, e.To),
		}
		if re.From == re.To {
			continue
		}
		if _, dup := seen[re]; dup {
			continue
		}
		seen[re] = struct{}{}
		resolved = append(resolved, re)
	}
	return resolved
}
