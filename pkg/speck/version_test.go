package speck

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestVersion(t *testing.T) {
	tmp := t.TempDir()
	writeTree(t, tmp, map[string]string{
		"app/app.speck":        "mod net { }\n",
		"app/net/net.speck":    "def listen() -> unit {\n}\n",
		"app/notes.txt":        "ignored\n",
		"app/net/helper.speck": "def x() -> unit {\n}\n",
	})

	base := time.Now().Add(-time.Hour).Truncate(time.Second)
	for i, name := range []string{"app/app.speck", "app/net/net.speck", "app/net/helper.speck"} {
		ts := base.Add(time.Duration(i) * time.Minute)
		if err := os.Chtimes(filepath.Join(tmp, name), ts, ts); err != nil {
			t.Fatal(err)
		}
	}
	// The .txt file is newest but must not count.
	newest := base.Add(time.Hour)
	if err := os.Chtimes(filepath.Join(tmp, "app/notes.txt"), newest, newest); err != nil {
		t.Fatal(err)
	}

	got, err := Version(filepath.Join(tmp, "app/app.speck"))
	if err != nil {
		t.Fatalf("Version() error: %v", err)
	}
	want := base.Add(2 * time.Minute)
	if !got.Equal(want) {
		t.Errorf("Version() = %v, want %v", got, want)
	}
}

func TestVersionNoSpeckFiles(t *testing.T) {
	tmp := t.TempDir()
	writeTree(t, tmp, map[string]string{"app/readme.md": "hi\n"})

	got, err := Version(filepath.Join(tmp, "app/app.speck"))
	if err != nil {
		t.Fatalf("Version() error: %v", err)
	}
	if !got.IsZero() {
		t.Errorf("Version() = %v, want zero time", got)
	}
}

func TestVersionToken(t *testing.T) {
	if got := VersionToken(time.Time{}); got != 0 {
		t.Errorf("VersionToken(zero) = %d, want 0", got)
	}
	ts := time.UnixMilli(1700000000123)
	if got := VersionToken(ts); got != 1700000000123 {
		t.Errorf("VersionToken() = %d, want 1700000000123", got)
	}
}
