package speck

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/matzehuels/speckview/pkg/graph"
)

// writeTree lays out a .speck fixture under dir, one entry per file with
// contents, and returns nothing; paths are created as needed.
func writeTree(t *testing.T, dir string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		path := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
}

func TestParse(t *testing.T) {
	tmp := t.TempDir()
	writeTree(t, tmp, map[string]string{
		"myapp/myapp.speck": `
mod core { }
mod api { core }

def main() -> unit {
    core::boot()
}
`,
		"myapp/core/core.speck": `
def boot() -> unit {
}

def helper() -> int {
}
`,
		"myapp/api/api.speck": `
def handle() -> response {
    ../core::boot()
}
`,
	})

	// Refs resolve against the file's directory, so identities line up
	// with module paths only when the root is parsed by a path whose
	// prefix equals the root module name.
	t.Chdir(tmp)

	snap, err := Parse("myapp/myapp.speck")
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if err := snap.Validate(); err != nil {
		t.Fatalf("Validate() error: %v", err)
	}

	if snap.Root != "myapp" {
		t.Errorf("Root = %q, want %q", snap.Root, "myapp")
	}
	if got := snap.ModuleCount(); got != 3 {
		t.Errorf("ModuleCount() = %d, want 3", got)
	}

	root := snap.Modules["myapp"]
	// api depends on core, so the dependent is emitted first.
	wantChildren := []string{"myapp/api", "myapp/core"}
	if len(root.Children) != 2 || root.Children[0] != wantChildren[0] || root.Children[1] != wantChildren[1] {
		t.Errorf("root children = %v, want %v", root.Children, wantChildren)
	}
	if len(root.Functions) != 1 || root.Functions[0] != "main" {
		t.Errorf("root functions = %v, want [main]", root.Functions)
	}

	core := snap.Modules["myapp/core"]
	if len(core.Functions) != 2 || core.Functions[0] != "boot" || core.Functions[1] != "helper" {
		t.Errorf("core functions = %v, want [boot helper]", core.Functions)
	}
	if core.Depth != 1 {
		t.Errorf("core depth = %d, want 1", core.Depth)
	}

	wantEdges := map[graph.Edge]bool{
		{From: "myapp::main", To: "myapp/core::boot"}:       false,
		{From: "myapp/api::handle", To: "myapp/core::boot"}: false,
	}
	for _, e := range snap.FunctionEdges {
		if _, ok := wantEdges[e]; !ok {
			t.Errorf("unexpected function edge %+v", e)
			continue
		}
		wantEdges[e] = true
	}
	for e, seen := range wantEdges {
		if !seen {
			t.Errorf("missing function edge %+v", e)
		}
	}

	wantModuleEdges := map[graph.Edge]bool{
		{From: "myapp", To: "myapp/core"}:     false,
		{From: "myapp/api", To: "myapp/core"}: false,
	}
	for _, e := range snap.ModuleEdges {
		if _, ok := wantModuleEdges[e]; !ok {
			t.Errorf("unexpected module edge %+v", e)
			continue
		}
		wantModuleEdges[e] = true
	}
	for e, seen := range wantModuleEdges {
		if !seen {
			t.Errorf("missing module edge %+v", e)
		}
	}
}

func TestParseMissingChildFile(t *testing.T) {
	tmp := t.TempDir()
	writeTree(t, tmp, map[string]string{
		"app/app.speck": `
mod ghost { }

def main() -> unit {
}
`,
	})
	t.Chdir(tmp)

	snap, err := Parse("app/app.speck")
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if err := snap.Validate(); err != nil {
		t.Fatalf("Validate() error: %v", err)
	}

	ghost, ok := snap.Modules["app/ghost"]
	if !ok {
		t.Fatal("declared child with missing file should appear as empty leaf")
	}
	if len(ghost.Children) != 0 || len(ghost.Functions) != 0 {
		t.Errorf("empty leaf has children=%v functions=%v", ghost.Children, ghost.Functions)
	}
	if ghost.Depth != 1 || ghost.Name != "ghost" {
		t.Errorf("leaf = %+v", ghost)
	}
}

func TestParseMissingRoot(t *testing.T) {
	if _, err := Parse(filepath.Join(t.TempDir(), "nope.speck")); err == nil {
		t.Fatal("expected error for missing root file")
	}
}

func TestParseNestedTree(t *testing.T) {
	tmp := t.TempDir()
	writeTree(t, tmp, map[string]string{
		"app/app.speck": `
mod net { }
`,
		"app/net/net.speck": `
mod client { }

def listen() -> unit {
    client::dial()
}
`,
		"app/net/client/client.speck": `
def dial() -> conn {
}
`,
	})
	t.Chdir(tmp)

	snap, err := Parse("app/app.speck")
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}

	client, ok := snap.Modules["app/net/client"]
	if !ok {
		t.Fatalf("missing nested module, have %v", snap.Modules)
	}
	if client.Depth != 2 {
		t.Errorf("client depth = %d, want 2", client.Depth)
	}
	want := graph.Edge{From: "app/net::listen", To: "app/net/client::dial"}
	found := false
	for _, e := range snap.FunctionEdges {
		if e == want {
			found = true
		}
	}
	if !found {
		t.Errorf("missing edge %+v in %v", want, snap.FunctionEdges)
	}
}
