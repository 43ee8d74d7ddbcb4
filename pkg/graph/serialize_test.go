package graph

import (
	"errors"
	"path/filepath"
	"testing"

	apperrors "github.com/matzehuels/speckview/pkg/errors"
)

func TestSnapshotRoundTrip(t *testing.T) {
	s := testSnapshot()
	data, err := MarshalSnapshot(s)
	if err != nil {
		t.Fatalf("MarshalSnapshot() error: %v", err)
	}
	got, err := UnmarshalSnapshot(data)
	if err != nil {
		t.Fatalf("UnmarshalSnapshot() error: %v", err)
	}
	if got.Root != s.Root {
		t.Errorf("Root = %q, want %q", got.Root, s.Root)
	}
	if got.ModuleCount() != s.ModuleCount() {
		t.Errorf("ModuleCount() = %d, want %d", got.ModuleCount(), s.ModuleCount())
	}
	if len(got.FunctionEdges) != len(s.FunctionEdges) {
		t.Errorf("FunctionEdges = %v, want %v", got.FunctionEdges, s.FunctionEdges)
	}
}

func TestUnmarshalSnapshotRejectsInvalid(t *testing.T) {
	// Structurally valid JSON whose root names no module.
	data := []byte(`{"modules":{"app":{"name":"app","path":"app","depth":0}},"root":"nope"}`)
	if _, err := UnmarshalSnapshot(data); !errors.Is(err, ErrMissingRoot) {
		t.Fatalf("UnmarshalSnapshot() = %v, want %v", err, ErrMissingRoot)
	}
	if _, err := UnmarshalSnapshot([]byte("{not json")); err == nil {
		t.Fatal("expected decode error")
	}
}

func TestUnmarshalSnapshotRejectsMalformedEdgeEndpoints(t *testing.T) {
	tests := []struct {
		name string
		edge string
	}{
		{"missing separator", `{"from":"appmain","to":"app::boot"}`},
		{"double separator", `{"from":"app::main","to":"app::two::parts"}`},
		{"empty endpoint", `{"from":"","to":"app::boot"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := []byte(`{"modules":{"app":{"name":"app","path":"app","depth":0}},` +
				`"root":"app","function_edges":[` + tt.edge + `]}`)
			_, err := UnmarshalSnapshot(data)
			if err == nil {
				t.Fatal("expected error for malformed edge endpoint")
			}
			if !apperrors.Is(err, apperrors.ErrCodeInvalidInput) {
				t.Errorf("error code = %v, want %v", apperrors.GetCode(err), apperrors.ErrCodeInvalidInput)
			}
		})
	}
}

func TestSnapshotFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snapshot.json")
	s := testSnapshot()
	if err := WriteSnapshotFile(s, path); err != nil {
		t.Fatalf("WriteSnapshotFile() error: %v", err)
	}
	got, err := ReadSnapshotFile(path)
	if err != nil {
		t.Fatalf("ReadSnapshotFile() error: %v", err)
	}
	if got.Root != "app" || got.ModuleCount() != 3 {
		t.Errorf("round trip lost data: root=%q modules=%d", got.Root, got.ModuleCount())
	}
}
