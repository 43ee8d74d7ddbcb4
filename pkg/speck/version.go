package speck

import (
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/bmatcuk/doublestar/v4"
)

// Version returns the snapshot version token for the tree rooted at
// rootFile: the maximum modification time across every .speck file under
// the root directory. Pollers compare successive tokens to decide when
// the whole pipeline must re-run; computing the token only stats files
// and never parses them.
//
// The zero time is returned when the directory contains no .speck files.
func Version(rootFile string) (time.Time, error) {
	rootDir := filepath.Dir(rootFile)
	fsys := os.DirFS(rootDir)

	matches, err := doublestar.Glob(fsys, "**/*.speck")
	if err != nil {
		return time.Time{}, err
	}

	var latest time.Time
	for _, name := range matches {
		info, err := fs.Stat(fsys, name)
		if err != nil {
			continue
		}
		if mt := info.ModTime(); mt.After(latest) {
			latest = mt
		}
	}
	return latest, nil
}

// VersionToken formats a version time as the integer token exposed over
// the wire (Unix milliseconds, 0 for the zero time).
func VersionToken(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixMilli()
}
