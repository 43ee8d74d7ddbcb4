package pipeline

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/matzehuels/speckview/pkg/errors"
	"github.com/matzehuels/speckview/pkg/graph"
	"github.com/matzehuels/speckview/pkg/layout"
)

func TestValidateFormat(t *testing.T) {
	for _, f := range []string{FormatSVG, FormatJSON, FormatDOT} {
		if err := ValidateFormat(f); err != nil {
			t.Errorf("ValidateFormat(%q) = %v", f, err)
		}
	}
	err := ValidateFormat("png")
	if err == nil {
		t.Fatal("expected error for unsupported format")
	}
	if errors.GetCode(err) != errors.ErrCodeInvalidFormat {
		t.Errorf("code = %v, want %v", errors.GetCode(err), errors.ErrCodeInvalidFormat)
	}
}

func TestValidateForParse(t *testing.T) {
	tests := []struct {
		name     string
		rootFile string
		wantErr  bool
	}{
		{"valid", "myapp/myapp.speck", false},
		{"empty", "", true},
		{"wrong extension", "myapp/myapp.txt", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := Options{RootFile: tt.rootFile}
			err := opts.ValidateForParse()
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateForParse() = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil && opts.Logger == nil {
				t.Error("validation should default the logger")
			}
		})
	}
}

func TestValidateForLayoutDefaults(t *testing.T) {
	opts := Options{RootFile: "app/app.speck"}
	if err := opts.ValidateForLayout(); err != nil {
		t.Fatalf("ValidateForLayout() error: %v", err)
	}
	if opts.Config != layout.DefaultConfig() {
		t.Error("zero config should be replaced by defaults")
	}
	if opts.Measurer == nil {
		t.Error("measurer should default to Monospace")
	}
}

func TestValidateForLayoutConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "layout.toml")
	if err := os.WriteFile(path, []byte("moduleGap = 99\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	opts := Options{RootFile: "app/app.speck", ConfigFile: path}
	if err := opts.ValidateForLayout(); err != nil {
		t.Fatalf("ValidateForLayout() error: %v", err)
	}
	if opts.Config.ModuleGap != 99 {
		t.Errorf("ModuleGap = %v, want 99", opts.Config.ModuleGap)
	}
}

func TestValidateForRender(t *testing.T) {
	opts := Options{}
	if err := opts.ValidateForRender(); err != nil {
		t.Fatalf("ValidateForRender() error: %v", err)
	}
	if len(opts.Formats) != 1 || opts.Formats[0] != FormatSVG {
		t.Errorf("Formats = %v, want default [svg]", opts.Formats)
	}

	opts = Options{Formats: []string{"png"}}
	if err := opts.ValidateForRender(); err == nil {
		t.Fatal("expected error for invalid format")
	}

	opts = Options{Expanded: []string{"bad path with spaces"}}
	if err := opts.ValidateForRender(); err == nil {
		t.Fatal("expected error for invalid expanded path")
	}
}

func TestExpandedSet(t *testing.T) {
	snap := &graph.Snapshot{
		Root: "app",
		Modules: map[string]graph.Module{
			"app":      {Path: "app", Children: []string{"app/core"}},
			"app/core": {Path: "app/core", Depth: 1},
		},
	}

	// Root is always expanded.
	opts := Options{}
	set := opts.ExpandedSet(snap)
	if !set.Has("app") || set.Has("app/core") {
		t.Errorf("default set = %v", set.Paths())
	}

	opts = Options{Expanded: []string{"app/core"}}
	set = opts.ExpandedSet(snap)
	if !set.Has("app/core") {
		t.Errorf("explicit expansion missing: %v", set.Paths())
	}

	opts = Options{All: true}
	set = opts.ExpandedSet(snap)
	if !set.Has("app") || !set.Has("app/core") {
		t.Errorf("All should expand everything: %v", set.Paths())
	}
}

func TestExpandedHash(t *testing.T) {
	// Order must not matter.
	a := Options{Expanded: []string{"app/x", "app/y"}}
	b := Options{Expanded: []string{"app/y", "app/x"}}
	if a.ExpandedHash() != b.ExpandedHash() {
		t.Error("hash should be order independent")
	}

	c := Options{Expanded: []string{"app/x"}}
	if a.ExpandedHash() == c.ExpandedHash() {
		t.Error("different sets should hash differently")
	}

	all := Options{All: true}
	if all.ExpandedHash() == a.ExpandedHash() {
		t.Error("All should have its own hash")
	}
}

func TestValidateAndSetDefaultsIdempotent(t *testing.T) {
	opts := Options{RootFile: "app/app.speck"}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("first call: %v", err)
	}
	cfg := opts.Config
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("second call: %v", err)
	}
	if opts.Config != cfg {
		t.Error("second call must not change the configuration")
	}
}
