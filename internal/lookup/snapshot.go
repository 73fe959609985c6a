// Package lookup resolves C++ names against a snapshot of parsed documents.
package lookup

import (
	"sort"

	"github.com/phobologic/qmlscan/internal/symbols"
)

// File is a parsed document as far as name lookup is concerned.
type File interface {
	Path() string
	Global() *symbols.Namespace
}

// Snapshot is an immutable set of documents, ordered by path. It is safe for
// concurrent use.
type Snapshot struct {
	files  []File
	byPath map[string]File
}

// NewSnapshot returns a snapshot of files. When two files share a path the
// first one is kept.
func NewSnapshot(files ...File) *Snapshot {
	s := &Snapshot{byPath: make(map[string]File, len(files))}
	for _, f := range files {
		if f == nil {
			continue
		}
		if _, dup := s.byPath[f.Path()]; dup {
			continue
		}
		s.byPath[f.Path()] = f
		s.files = append(s.files, f)
	}
	sort.SliceStable(s.files, func(i, j int) bool {
		return s.files[i].Path() < s.files[j].Path()
	})
	return s
}

// Files returns the documents in path order.
func (s *Snapshot) Files() []File {
	if s == nil {
		return nil
	}
	return s.files
}

// Len returns the number of documents.
func (s *Snapshot) Len() int {
	if s == nil {
		return 0
	}
	return len(s.files)
}

// File returns the document with the given path.
func (s *Snapshot) File(path string) (File, bool) {
	if s == nil {
		return nil, false
	}
	f, ok := s.byPath[path]
	return f, ok
}
