// Package parse turns C++ source files into Documents: a reduced syntax
// tree, an identifier table and the symbols with their scopes.
package parse

import (
	"context"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/phobologic/qmlscan/internal/cppast"
	"github.com/phobologic/qmlscan/internal/symbols"
)

// Document is one parsed C++ file. It is read-only once Parse returns and
// may be shared between goroutines.
type Document struct {
	path        string
	source      []byte
	ast         *cppast.Node
	global      *symbols.Namespace
	identifiers map[string]struct{}
}

// Parse parses source with parser, which must be set up for C++, and
// collects identifiers with query. path is only recorded and should be the
// repo-relative path.
//
// A document whose source is empty, or that tree-sitter could not parse at
// all, has a nil AST and an empty global namespace.
func Parse(parser *sitter.Parser, query *sitter.Query, source []byte, path string) *Document {
	doc := &Document{
		path:        path,
		source:      source,
		identifiers: make(map[string]struct{}),
		global:      symbols.NewNamespace(0, "", 0, len(source)),
	}
	if len(source) == 0 {
		return doc
	}

	blanked, qt := blankQt(source)
	tree, err := parser.ParseCtx(context.Background(), nil, blanked)
	if err != nil || tree == nil {
		return doc
	}
	defer tree.Close()
	root := tree.RootNode()

	doc.ast = convert(root, source)
	doc.global = newBuilder(source, qt).build(root)

	for _, w := range qt.words {
		doc.identifiers[w] = struct{}{}
	}
	if query != nil {
		qc := sitter.NewQueryCursor()
		defer qc.Close()
		qc.Exec(query, root)
		for {
			match, ok := qc.NextMatch()
			if !ok {
				break
			}
			for _, c := range match.Captures {
				doc.identifiers[string(source[c.Node.StartByte():c.Node.EndByte()])] = struct{}{}
			}
		}
	}
	return doc
}

// Path returns the path the document was parsed from.
func (d *Document) Path() string { return d.path }

// Source returns the document text as it was read.
func (d *Document) Source() []byte { return d.source }

// AST returns the reduced syntax tree, or nil when the source did not parse.
func (d *Document) AST() *cppast.Node { return d.ast }

// Global returns the document's global namespace.
func (d *Document) Global() *symbols.Namespace { return d.global }

// HasIdentifier reports whether name is spelled anywhere in the document as
// an identifier. Comments and string literals do not count.
func (d *Document) HasIdentifier(name string) bool {
	_, ok := d.identifiers[name]
	return ok
}

// ScopeAt returns the innermost scope whose extent contains offset.
func (d *Document) ScopeAt(offset int) symbols.Scope {
	var scope symbols.Scope = d.global
	for {
		inner := innerScopeAt(scope, offset)
		if inner == nil {
			return scope
		}
		scope = inner
	}
}

func innerScopeAt(s symbols.Scope, offset int) symbols.Scope {
	for _, m := range s.Members() {
		inner, ok := m.(symbols.Scope)
		if !ok {
			continue
		}
		start, end := inner.Extent()
		if start <= offset && offset < end {
			return inner
		}
	}
	return nil
}
