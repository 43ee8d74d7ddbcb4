package visibility

import (
	"testing"

	"github.com/matzehuels/speckview/pkg/graph"
	"github.com/matzehuels/speckview/pkg/layout"
)

func testSnapshot() *graph.Snapshot {
	return &graph.Snapshot{
		Root: "app",
		Modules: map[string]graph.Module{
			"app": {
				Name:      "app",
				Path:      "app",
				Children:  []string{"app/api", "app/core"},
				Functions: []string{"main"},
			},
			"app/api": {
				Name:      "api",
				Path:      "app/api",
				Depth:     1,
				Functions: []string{"handle"},
			},
			"app/core": {
				Name:     "core",
				Path:     "app/core",
				Depth:    1,
				Children: []string{"app/core/store"},
			},
			"app/core/store": {
				Name:      "store",
				Path:      "app/core/store",
				Depth:     2,
				Functions: []string{"open"},
			},
		},
		FunctionEdges: []graph.Edge{
			{From: "app::main", To: "app/api::handle"},
			{From: "app/api::handle", To: "app/core/store::open"},
		},
	}
}

func TestModuleReachable(t *testing.T) {
	s := NewExpandedSet("app")
	if !ModuleReachable(s, "app") {
		t.Error("root must always be reachable")
	}
	if !ModuleReachable(s, "app/core") {
		t.Error("child of expanded root must be reachable")
	}
	if ModuleReachable(s, "app/core/store") {
		t.Error("grandchild must not be reachable while app/core is collapsed")
	}
	s.Expand("app/core")
	if !ModuleReachable(s, "app/core/store") {
		t.Error("grandchild must be reachable once the chain is expanded")
	}
}

func TestFunctionVisible(t *testing.T) {
	s := NewExpandedSet("app")
	if !FunctionVisible(s, "app::main") {
		t.Error("root functions visible when root is expanded")
	}
	if FunctionVisible(s, "app/api::handle") {
		t.Error("collapsed module's functions must be hidden")
	}
	s.Expand("app/api")
	if !FunctionVisible(s, "app/api::handle") {
		t.Error("expanded module's functions must be visible")
	}
}

func TestResolveEndpoint(t *testing.T) {
	tests := []struct {
		name     string
		expanded []string
		id       string
		want     string
	}{
		{
			name:     "fully expanded chain resolves to function",
			expanded: []string{"app", "app/core", "app/core/store"},
			id:       "app/core/store::open",
			want:     "app/core/store::open",
		},
		{
			name:     "reachable but collapsed module substitutes itself",
			expanded: []string{"app", "app/core"},
			id:       "app/core/store::open",
			want:     "app/core/store",
		},
		{
			name:     "first collapsed ancestor substitutes",
			expanded: []string{"app"},
			id:       "app/core/store::open",
			want:     "app/core",
		},
		{
			name:     "module endpoint with expanded chain stays itself",
			expanded: []string{"app", "app/core"},
			id:       "app/core",
			want:     "app/core",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewExpandedSet(tt.expanded...)
			if got := ResolveEndpoint(s, tt.id); got != tt.want {
				t.Errorf("ResolveEndpoint(%q) = %q, want %q", tt.id, got, tt.want)
			}
		})
	}
}

func TestCollapseDropsDescendants(t *testing.T) {
	snap := testSnapshot()
	s := NewExpandedSet()
	s.ExpandAll(snap)
	s.Collapse("app/core")
	if s.Has("app/core") || s.Has("app/core/store") {
		t.Errorf("collapse left state behind: %v", s.Paths())
	}
	if !s.Has("app") || !s.Has("app/api") {
		t.Errorf("collapse touched unrelated paths: %v", s.Paths())
	}
}

func TestToggle(t *testing.T) {
	snap := testSnapshot()
	s := NewExpandedSet("app")
	s.Toggle(snap, "app/core", false)
	if !s.Has("app/core") || s.Has("app/core/store") {
		t.Errorf("plain toggle expanded too much: %v", s.Paths())
	}
	s.Toggle(snap, "app/core", false)
	if s.Has("app/core") {
		t.Error("second toggle must collapse")
	}
	s.Toggle(snap, "app/core", true)
	if !s.Has("app/core") || !s.Has("app/core/store") {
		t.Errorf("subtree toggle missed descendants: %v", s.Paths())
	}
}

func TestCollapseAll(t *testing.T) {
	snap := testSnapshot()
	s := NewExpandedSet()
	s.ExpandAll(snap)
	s.CollapseAll(snap)
	paths := s.Paths()
	if len(paths) != 1 || paths[0] != "app" {
		t.Errorf("CollapseAll left %v, want [app]", paths)
	}
}

func TestResolveEdges(t *testing.T) {
	snap := testSnapshot()

	// Default view: only the root is expanded, so the deep call target
	// collapses onto app/core and the api endpoints onto app/api.
	s := NewExpandedSet("app")
	got := ResolveEdges(snap, s)
	want := []graph.Edge{
		{From: "app::main", To: "app/api"},
		{From: "app/api", To: "app/core"},
	}
	if len(got) != len(want) {
		t.Fatalf("ResolveEdges() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("ResolveEdges() = %v, want %v", got, want)
		}
	}
}

func TestResolveEdgesSuppressesSelfLoops(t *testing.T) {
	snap := testSnapshot()
	snap.FunctionEdges = append(snap.FunctionEdges, graph.Edge{
		From: "app/core::init",
		To:   "app/core/store::open",
	})

	// With app/core collapsed both endpoints resolve to app/core.
	s := NewExpandedSet("app")
	for _, e := range ResolveEdges(snap, s) {
		if e.From == e.To {
			t.Fatalf("self-loop survived resolution: %+v", e)
		}
	}
}

func TestResolveEdgesDeduplicates(t *testing.T) {
	snap := testSnapshot()
	snap.FunctionEdges = append(snap.FunctionEdges,
		graph.Edge{From: "app/api::shutdown", To: "app/core/store::close"},
	)

	// Collapsed view folds both api->store edges onto the same pair.
	s := NewExpandedSet("app")
	got := ResolveEdges(snap, s)
	seen := make(map[graph.Edge]int)
	for _, e := range got {
		seen[e]++
		if seen[e] > 1 {
			t.Fatalf("duplicate resolved edge %+v in %v", e, got)
		}
	}
}

func TestVisibleBoxes(t *testing.T) {
	snap := testSnapshot()
	geo, err := layout.Compute(snap, layout.DefaultConfig(), layout.Monospace{})
	if err != nil {
		t.Fatal(err)
	}

	s := NewExpandedSet("app")
	boxes := VisibleBoxes(snap, geo, s)

	ids := make(map[string]bool, len(boxes))
	for _, vb := range boxes {
		ids[vb.ID] = true
	}
	for _, want := range []string{"app", "app/api", "app/core", "app::main"} {
		if !ids[want] {
			t.Errorf("missing visible box %q in %v", want, ids)
		}
	}
	for _, hidden := range []string{"app/core/store", "app/api::handle", "app/core/store::open"} {
		if ids[hidden] {
			t.Errorf("box %q should be hidden", hidden)
		}
	}

	// Sorted by identity.
	for i := 1; i < len(boxes); i++ {
		if boxes[i-1].ID >= boxes[i].ID {
			t.Fatalf("boxes not sorted: %q before %q", boxes[i-1].ID, boxes[i].ID)
		}
	}
}

func TestGeometryStableAcrossToggles(t *testing.T) {
	snap := testSnapshot()
	cfg := layout.DefaultConfig()
	geo, err := layout.Compute(snap, cfg, layout.Monospace{})
	if err != nil {
		t.Fatal(err)
	}

	s := NewExpandedSet()
	s.ExpandAll(snap)
	before := VisibleBoxes(snap, geo, s)

	s.Collapse("app/core")
	s.ExpandSubtree(snap, "app/core")
	after := VisibleBoxes(snap, geo, s)

	if len(before) != len(after) {
		t.Fatalf("box count changed across collapse/re-expand: %d vs %d",
			len(before), len(after))
	}
	for i := range before {
		if before[i] != after[i] {
			t.Fatalf("box %d changed: %+v vs %+v", i, before[i], after[i])
		}
	}
}
