package render

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/matzehuels/speckview/pkg/graph"
	"github.com/matzehuels/speckview/pkg/layout"
	"github.com/matzehuels/speckview/pkg/visibility"
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
				Name:      "core",
				Path:      "app/core",
				Depth:     1,
				Functions: []string{"boot"},
			},
		},
		FunctionEdges: []graph.Edge{
			{From: "app::main", To: "app/core::boot"},
			{From: "app/api::handle", To: "app/core::boot"},
		},
		ModuleEdges: []graph.Edge{
			{From: "app", To: "app/core"},
			{From: "app/api", To: "app/core"},
		},
	}
}

func testGeometry(t *testing.T, snap *graph.Snapshot) *layout.Geometry {
	t.Helper()
	geo, err := layout.Compute(snap, layout.DefaultConfig(), layout.Monospace{})
	if err != nil {
		t.Fatal(err)
	}
	return geo
}

func TestRenderSVG(t *testing.T) {
	snap := testSnapshot()
	geo := testGeometry(t, snap)
	set := visibility.NewExpandedSet("app")

	svg := string(RenderSVG(snap, geo, set, layout.DefaultConfig()))

	if !strings.HasPrefix(svg, "<svg xmlns=") {
		t.Errorf("svg start = %q", svg[:40])
	}
	for _, path := range []string{"app", "app/api", "app/core"} {
		if !strings.Contains(svg, `data-path="`+path+`"`) {
			t.Errorf("missing module box for %q", path)
		}
	}
	// Root expanded: its function shows. Children collapsed: theirs do not.
	if !strings.Contains(svg, ">main<") {
		t.Error("root function should be drawn")
	}
	if strings.Contains(svg, ">boot<") || strings.Contains(svg, ">handle<") {
		t.Error("collapsed modules' functions should be hidden")
	}
	if !strings.Contains(svg, `marker-end="url(#arrow-mod)"`) {
		t.Error("arrows should reference the arrowhead marker")
	}
}

func TestRenderSVGExpandedAll(t *testing.T) {
	snap := testSnapshot()
	geo := testGeometry(t, snap)
	set := visibility.NewExpandedSet()
	set.ExpandAll(snap)

	svg := string(RenderSVG(snap, geo, set, layout.DefaultConfig()))
	for _, fn := range []string{">main<", ">boot<", ">handle<"} {
		if !strings.Contains(svg, fn) {
			t.Errorf("missing function label %s", fn)
		}
	}
}

func TestRenderSVGOptions(t *testing.T) {
	snap := testSnapshot()
	geo := testGeometry(t, snap)
	set := visibility.NewExpandedSet("app")
	cfg := layout.DefaultConfig()

	plain := string(RenderSVG(snap, geo, set, cfg))
	if strings.Contains(plain, `fill="#1e1e2e"/>`) {
		t.Error("background should be absent by default")
	}

	withBG := string(RenderSVG(snap, geo, set, cfg, WithBackground()))
	if !strings.Contains(withBG, `fill="#1e1e2e"/>`) {
		t.Error("WithBackground should paint a background rect")
	}

	noArrows := string(RenderSVG(snap, geo, set, cfg, WithoutArrows()))
	if strings.Contains(noArrows, "marker-end") {
		t.Error("WithoutArrows should omit the arrow paths")
	}
}

func TestRenderSVGEscapesLabels(t *testing.T) {
	snap := &graph.Snapshot{
		Root: "a<b",
		Modules: map[string]graph.Module{
			"a<b": {Name: "a<b", Path: "a<b"},
		},
	}
	geo := testGeometry(t, snap)
	svg := string(RenderSVG(snap, geo, visibility.NewExpandedSet("a<b"), layout.DefaultConfig()))
	if strings.Contains(svg, ">a<b<") {
		t.Error("labels must be escaped")
	}
	if !strings.Contains(svg, "a&lt;b") {
		t.Error("escaped label missing")
	}
}

func TestToDOT(t *testing.T) {
	dot := ToDOT(testSnapshot())

	if !strings.HasPrefix(dot, "digraph speck {") {
		t.Errorf("dot start = %q", dot[:30])
	}
	for _, node := range []string{`"app" [label="app"]`, `"app/core" [label="core"]`} {
		if !strings.Contains(dot, node) {
			t.Errorf("missing node %s", node)
		}
	}
	for _, edge := range []string{`"app" -> "app/core";`, `"app/api" -> "app/core";`} {
		if got := strings.Count(dot, edge); got != 1 {
			t.Errorf("edge %s appears %d times, want 1", edge, got)
		}
	}

	// Deterministic output
	if ToDOT(testSnapshot()) != dot {
		t.Error("ToDOT should be deterministic")
	}
}

func TestBuildDocument(t *testing.T) {
	snap := testSnapshot()
	geo := testGeometry(t, snap)
	set := visibility.NewExpandedSet("app")

	doc := BuildDocument(snap, geo, set, layout.DefaultConfig(), 42)
	if doc.Version != 42 {
		t.Errorf("Version = %d, want 42", doc.Version)
	}
	if len(doc.Expanded) != 1 || doc.Expanded[0] != "app" {
		t.Errorf("Expanded = %v, want [app]", doc.Expanded)
	}
	if len(doc.Arrows) == 0 {
		t.Error("document should carry routed arrows")
	}

	data, err := RenderJSON(doc)
	if err != nil {
		t.Fatalf("RenderJSON() error: %v", err)
	}
	var decoded struct {
		Snapshot struct {
			Root string `json:"root"`
		} `json:"snapshot"`
		Version int64 `json:"version"`
	}
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if decoded.Snapshot.Root != "app" || decoded.Version != 42 {
		t.Errorf("round trip lost fields: %+v", decoded)
	}
}

func TestNormalizeViewBox(t *testing.T) {
	in := []byte(`<svg width="8pt" height="6pt" viewBox="0.00 0.00 120.50 80.25" xmlns="http://www.w3.org/2000/svg">`)
	out := string(normalizeViewBox(in))
	if !strings.Contains(out, `viewBox="0 0 120.50 80.25"`) {
		t.Errorf("viewBox not normalized: %s", out)
	}
	if !strings.Contains(out, `width="120" height="80"`) {
		t.Errorf("pixel dimensions missing: %s", out)
	}

	// Input without a viewBox passes through untouched.
	plain := []byte(`<svg width="10">`)
	if string(normalizeViewBox(plain)) != string(plain) {
		t.Error("svg without viewBox should be unchanged")
	}
}
