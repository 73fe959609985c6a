// Package lang holds the tree-sitter grammar qmlscan parses with and the
// identifier query compiled against it.
package lang

import (
	"fmt"
	"slices"
	"strings"
	"sync"

	sitter "github.com/smacker/go-tree-sitter"
)

// Language pairs a grammar with the extensions of the files written in it.
type Language struct {
	Name       string
	Extensions []string
	grammar    *sitter.Language

	queryOnce sync.Once
	query     *sitter.Query
	queryErr  error
}

// Languages maps names to the registered languages.
var Languages = map[string]*Language{}

// NewParser returns a parser for l. Parsers are not safe for concurrent use.
func (l *Language) NewParser() *sitter.Parser {
	p := sitter.NewParser()
	p.SetLanguage(l.grammar)
	return p
}

// GetIdentifierQuery compiles queries/<name>.scm once. The query may be
// shared between goroutines.
func (l *Language) GetIdentifierQuery() (*sitter.Query, error) {
	l.queryOnce.Do(func() {
		src, err := queryFS.ReadFile("queries/" + l.Name + ".scm")
		if err != nil {
			l.queryErr = fmt.Errorf("reading %s query: %w", l.Name, err)
			return
		}
		l.query, l.queryErr = sitter.NewQuery(src, l.grammar)
		if l.queryErr != nil {
			l.queryErr = fmt.Errorf("compiling %s query: %w", l.Name, l.queryErr)
		}
	})
	return l.query, l.queryErr
}

// Accepts reports whether ext, with its dot and in any case, names a file
// written in l.
func (l *Language) Accepts(ext string) bool {
	return slices.Contains(l.Extensions, strings.ToLower(ext))
}

// ForExtension returns the name of the language ext belongs to, or "".
func ForExtension(ext string) string {
	for name, l := range Languages {
		if l.Accepts(ext) {
			return name
		}
	}
	return ""
}
