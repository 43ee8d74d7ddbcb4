package cli

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
)

func TestParseFormats(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"", []string{"svg"}},
		{"svg", []string{"svg"}},
		{"svg,json,dot", []string{"svg", "json", "dot"}},
	}
	for _, tt := range tests {
		got := parseFormats(tt.in)
		if len(got) != len(tt.want) {
			t.Errorf("parseFormats(%q) = %v, want %v", tt.in, got, tt.want)
			continue
		}
		for i := range tt.want {
			if got[i] != tt.want[i] {
				t.Errorf("parseFormats(%q) = %v, want %v", tt.in, got, tt.want)
			}
		}
	}
}

func TestParsePaths(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"", nil},
		{"app/core", []string{"app/core"}},
		{"app/core, app/api", []string{"app/core", "app/api"}},
		{" , app/core, ", []string{"app/core"}},
	}
	for _, tt := range tests {
		got := parsePaths(tt.in)
		if len(got) != len(tt.want) {
			t.Errorf("parsePaths(%q) = %v, want %v", tt.in, got, tt.want)
			continue
		}
		for i := range tt.want {
			if got[i] != tt.want[i] {
				t.Errorf("parsePaths(%q) = %v, want %v", tt.in, got, tt.want)
			}
		}
	}
}

func TestArtifactPath(t *testing.T) {
	tests := []struct {
		base, format, want string
	}{
		{"diagram.svg", "json", "diagram.json"},
		{"diagram", "svg", "diagram.svg"},
		{"out/dir/diagram.svg", "dot", "out/dir/diagram.dot"},
	}
	for _, tt := range tests {
		if got := artifactPath(tt.base, tt.format); got != tt.want {
			t.Errorf("artifactPath(%q, %q) = %q, want %q", tt.base, tt.format, got, tt.want)
		}
	}
}

func TestRootCommandStructure(t *testing.T) {
	c := New(io.Discard, log.WarnLevel)
	root := c.RootCommand()

	if root.Use != "speckview" {
		t.Errorf("root Use = %q", root.Use)
	}

	want := map[string]bool{
		"parse":      false,
		"layout":     false,
		"render":     false,
		"serve":      false,
		"cache":      false,
		"completion": false,
	}
	for _, cmd := range root.Commands() {
		name := strings.Fields(cmd.Use)[0]
		if _, ok := want[name]; ok {
			want[name] = true
		}
	}
	for name, found := range want {
		if !found {
			t.Errorf("missing subcommand %q", name)
		}
	}
}

func TestParseCommandEndToEnd(t *testing.T) {
	tmp := t.TempDir()
	dir := filepath.Join(tmp, "app")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	src := "def main() -> unit {\n}\n"
	if err := os.WriteFile(filepath.Join(dir, "app.speck"), []byte(src), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Chdir(tmp)

	out := filepath.Join(tmp, "snapshot.json")
	c := New(io.Discard, log.WarnLevel)
	root := c.RootCommand()
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	root.SetArgs([]string{"parse", "app/app.speck", "-o", out, "--no-cache"})

	if err := root.Execute(); err != nil {
		t.Fatalf("parse command failed: %v", err)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read snapshot: %v", err)
	}
	if !bytes.Contains(data, []byte(`"root": "app"`)) {
		t.Errorf("snapshot output missing root: %s", data)
	}
}

func TestRenderCommandEndToEnd(t *testing.T) {
	tmp := t.TempDir()
	dir := filepath.Join(tmp, "app")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	src := "def main() -> unit {\n}\n"
	if err := os.WriteFile(filepath.Join(dir, "app.speck"), []byte(src), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Chdir(tmp)

	out := filepath.Join(tmp, "diagram.svg")
	c := New(io.Discard, log.WarnLevel)
	root := c.RootCommand()
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	root.SetArgs([]string{"render", "app/app.speck", "-o", out, "--no-cache"})

	if err := root.Execute(); err != nil {
		t.Fatalf("render command failed: %v", err)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read artifact: %v", err)
	}
	if !bytes.Contains(data, []byte("<svg")) {
		t.Errorf("artifact is not SVG: %.80s", data)
	}
}
