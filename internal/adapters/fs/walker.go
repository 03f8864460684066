// Package fs provides file system adapters for walking and hashing declared
// rule inputs.
package fs

import (
	"io/fs"
	"iter"
	"path/filepath"
)

// Walker yields the files under a directory in lexical order.
type Walker struct{}

// NewWalker creates a new Walker.
func NewWalker() *Walker {
	return &Walker{}
}

// WalkFiles returns an iterator over all file paths under root, skipping
// version-control metadata and any name matching an ignore pattern. An I/O
// error encountered during the walk is yielded as the final pair; callers
// must not treat a truncated walk as a complete one.
func (w *Walker) WalkFiles(root string, ignores []string) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}

			name := d.Name()
			if d.IsDir() {
				if name == ".git" || name == ".jj" || name == ".mason" || matchesAny(name, ignores) {
					return filepath.SkipDir
				}
				return nil
			}
			if matchesAny(name, ignores) {
				return nil
			}

			if !yield(path, nil) {
				return filepath.SkipAll
			}
			return nil
		})
		if err != nil {
			yield("", err)
		}
	}
}

func matchesAny(name string, patterns []string) bool {
	for _, pattern := range patterns {
		if matched, _ := filepath.Match(pattern, name); matched {
			return true
		}
	}
	return false
}
