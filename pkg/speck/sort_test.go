package speck

import "testing"

func TestSortChildren(t *testing.T) {
	tests := []struct {
		name     string
		children []string
		deps     map[string][]string
		want     []string
	}{
		{
			name:     "no dependencies keeps declaration order",
			children: []string{"app/a", "app/b", "app/c"},
			deps:     map[string][]string{},
			want:     []string{"app/a", "app/b", "app/c"},
		},
		{
			name:     "dependent comes before dependency",
			children: []string{"app/core", "app/api"},
			deps:     map[string][]string{"api": {"core"}},
			want:     []string{"app/api", "app/core"},
		},
		{
			name:     "chain sorts from most dependent to most foundational",
			children: []string{"app/store", "app/api", "app/web"},
			deps: map[string][]string{
				"web": {"api"},
				"api": {"store"},
			},
			want: []string{"app/web", "app/api", "app/store"},
		},
		{
			name:     "unknown dependency names are ignored",
			children: []string{"app/a", "app/b"},
			deps:     map[string][]string{"a": {"missing"}},
			want:     []string{"app/a", "app/b"},
		},
		{
			name:     "cycle members fall back to declaration order",
			children: []string{"app/x", "app/y", "app/z"},
			deps: map[string][]string{
				"x": {"y"},
				"y": {"x"},
			},
			want: []string{"app/z", "app/x", "app/y"},
		},
		{
			name:     "zero in-degree ties break by declaration order",
			children: []string{"app/b", "app/a", "app/core"},
			deps: map[string][]string{
				"b": {"core"},
				"a": {"core"},
			},
			want: []string{"app/b", "app/a", "app/core"},
		},
		{
			name:     "empty input",
			children: nil,
			deps:     map[string][]string{},
			want:     []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SortChildren(tt.children, tt.deps)
			if len(got) != len(tt.want) {
				t.Fatalf("SortChildren() = %v, want %v", got, tt.want)
			}
			for i := range tt.want {
				if got[i] != tt.want[i] {
					t.Fatalf("SortChildren() = %v, want %v", got, tt.want)
				}
			}
		})
	}
}

func TestSortChildrenIsPermutation(t *testing.T) {
	children := []string{"app/a", "app/b", "app/c", "app/d"}
	deps := map[string][]string{
		"a": {"b"},
		"b": {"a"},
		"c": {"a", "d"},
	}
	got := SortChildren(children, deps)
	if len(got) != len(children) {
		t.Fatalf("expected %d children, got %d: %v", len(children), len(got), got)
	}
	seen := make(map[string]bool)
	for _, p := range got {
		if seen[p] {
			t.Fatalf("duplicate child %q in %v", p, got)
		}
		seen[p] = true
	}
	for _, p := range children {
		if !seen[p] {
			t.Fatalf("child %q missing from %v", p, got)
		}
	}
}
