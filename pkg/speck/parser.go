package speck

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/matzehuels/speckview/pkg/graph"
)

// Parse recursively parses the .speck tree rooted at rootFile and returns
// the complete graph snapshot.
//
// The root module takes its name from the directory containing rootFile
// (so "myapp/myapp.speck" produces a root module "myapp"). Each "mod name"
// declaration recurses into "<dir>/name/name.speck", where <dir> is the
// directory of the declaring file. A declared child whose file is missing
// or unreadable terminates that branch silently: the child still appears
// in the snapshot as an empty leaf module, and the rest of the tree is
// unaffected.
//
// Parse returns an error only when rootFile itself does not exist;
// everything below the root degrades to partial results instead of
// failing the whole graph.
func Parse(rootFile string) (*graph.Snapshot, error) {
	if _, err := os.Stat(rootFile); err != nil {
		return nil, fmt.Errorf("root file %s: %w", rootFile, err)
	}

	rootName := filepath.Base(filepath.Dir(rootFile))
	result := parseModule(rootFile, rootName, 0)

	return &graph.Snapshot{
		Modules:       result.modules,
		FunctionEdges: result.edges,
		ModuleEdges:   graph.DeriveModuleEdges(result.edges),
		Root:          rootName,
	}, nil
}

// parseResult is the arena for one subtree: modules and edges are built
// children-first and merged into the parent by value, so no recursion
// level ever mutates an ancestor's maps.
type parseResult struct {
	modules map[string]graph.Module
	edges   []graph.Edge
}

func parseModule(file, modPath string, depth int) parseResult {
	result := parseResult{modules: make(map[string]graph.Module)}

	content, err := os.ReadFile(file)
	if err != nil {
		return result
	}
	src := string(content)
	fileDir := filepath.Dir(file)

	var children []string
	childDeps := make(map[string][]string)
	for _, decl := range ScanModules(src) {
		childPath := modPath + graph.PathSep + decl.Name
		children = append(children, childPath)
		childDeps[decl.Name] = decl.Deps

		childFile := filepath.Join(fileDir, decl.Name, decl.Name+".speck")
		child := parseModule(childFile, childPath, depth+1)
		for p, m := range child.modules {
			result.modules[p] = m
		}
		result.edges = append(result.edges, child.edges...)

		// A missing child file leaves no module entry behind; record
		// the declared child as an empty leaf so the parent's child
		// list stays resolvable.
		if _, ok := result.modules[childPath]; !ok {
			result.modules[childPath] = graph.Module{
				Name:  decl.Name,
				Path:  childPath,
				Depth: depth + 1,
			}
		}
	}

	var fns []string
	for _, fn := range ScanFunctions(src) {
		fns = append(fns, fn.Name)
		for _, ref := range ScanRefs(fn.Body) {
			result.edges = append(result.edges, graph.Edge{
				From: modPath + graph.FunctionSep + fn.Name,
				To:   resolveRef(fileDir, ref),
			})
		}
	}

	result.modules[modPath] = graph.Module{
		Name:      lastSegment(modPath),
		Path:      modPath,
		Depth:     depth,
		Children:  SortChildren(children, childDeps),
		Functions: fns,
	}

	return result
}

// resolveRef turns a raw call reference into a function identity. The path
// component resolves against the directory of the file being parsed, with
// ".." and "." normalized away, exactly as a build tool would resolve a
// relative import. When the tree is parsed from a path whose directory
// prefix matches the logical root name, resolved identities line up with
// module paths; references that resolve outside the tree simply never
// match a module and are dropped at draw time.
func resolveRef(fileDir string, ref CallRef) string {
	resolved := filepath.ToSlash(filepath.Clean(filepath.Join(fileDir, ref.Path)))
	return resolved + graph.FunctionSep + ref.Name
}
