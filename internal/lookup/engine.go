package lookup

import (
	"strings"

	"github.com/phobologic/qmlscan/internal/symbols"
)

// Engine looks up names on behalf of one document. Lookups only read the
// snapshot, so an Engine may be used from several goroutines.
type Engine struct {
	snapshot *Snapshot
	current  File
}

// New returns an engine for names written in current. current does not need
// to be part of snapshot; when it is, it is still searched first.
func New(snapshot *Snapshot, current File) *Engine {
	return &Engine{snapshot: snapshot, current: current}
}

// Lookup returns the declarations expr can refer to when written in scope,
// innermost first and without duplicates. expr is a name such as "Item",
// "app::Item" or "::QList<int>"; template arguments are ignored. A nil scope
// means the current document's global namespace.
func (e *Engine) Lookup(expr string, scope symbols.Scope) []symbols.Symbol {
	w := &walker{Engine: e, active: make(map[search]bool)}
	return w.lookup(expr, scope)
}

// search is one expansion of a scope into its bases or qualifier classes.
type search struct {
	scope symbols.Scope
	name  string
}

// walker carries the expansions in progress during one Lookup, so class
// hierarchies and out-of-line qualifiers that refer back to themselves end.
// A finished expansion may run again for another name component.
type walker struct {
	*Engine
	active map[search]bool
}

// enter marks the expansion of s for name as in progress. It reports false
// when that expansion is already running further up the stack.
func (w *walker) enter(s symbols.Scope, name string) bool {
	key := search{s, name}
	if w.active[key] {
		return false
	}
	w.active[key] = true
	return true
}

func (w *walker) leave(s symbols.Scope, name string) { delete(w.active, search{s, name}) }

func (w *walker) lookup(expr string, scope symbols.Scope) []symbols.Symbol {
	names, global := splitName(expr)
	if len(names) == 0 {
		return nil
	}
	if scope == nil && w.current != nil {
		scope = w.current.Global()
	}

	var found []symbols.Symbol
	if global {
		found = w.namespaceMembers("", names[0])
	} else {
		for s := scope; s != nil; s = s.Parent() {
			found = append(found, w.scopeMembers(s, names[0])...)
		}
	}

	for _, name := range names[1:] {
		var next []symbols.Symbol
		for _, s := range unique(found) {
			next = append(next, w.membersOf(s, name)...)
		}
		found = next
	}
	return unique(found)
}

// scopeMembers returns the members named name that are visible in s itself,
// not counting enclosing scopes.
func (w *walker) scopeMembers(s symbols.Scope, name string) []symbols.Symbol {
	switch s := s.(type) {
	case *symbols.Namespace:
		// s itself first, in case its document is not in the snapshot.
		return append(named(s.Members(), name), w.namespaceMembers(symbols.QualifiedName(s), name)...)
	case *symbols.Class:
		return w.classMembers(s, name)
	case *symbols.Block:
		found := named(s.Members(), name)
		if s.Qualifier == "" || !w.enter(s, name) {
			return found
		}
		defer w.leave(s, name)
		for _, k := range w.classes(s.Qualifier, s.Parent()) {
			found = append(found, w.classMembers(k, name)...)
			for p := k.Parent(); p != nil; p = p.Parent() {
				found = append(found, w.scopeMembers(p, name)...)
			}
		}
		return found
	}
	return named(s.Members(), name)
}

// membersOf returns the members named name of a class or namespace found by
// an earlier name component.
func (w *walker) membersOf(s symbols.Symbol, name string) []symbols.Symbol {
	switch s := s.(type) {
	case *symbols.Namespace:
		return w.namespaceMembers(symbols.QualifiedName(s), name)
	case *symbols.Class:
		return w.classMembers(s, name)
	case *symbols.ForwardClass:
		var found []symbols.Symbol
		for _, k := range w.definitions(s) {
			found = append(found, w.classMembers(k, name)...)
		}
		return found
	}
	return nil
}

// namespaceMembers searches every namespace with the qualified name qname in
// the current document and then in the snapshot.
func (w *walker) namespaceMembers(qname, name string) []symbols.Symbol {
	var path []string
	if qname != "" {
		path = strings.Split(qname, "::")
	}
	var found []symbols.Symbol
	for _, f := range w.files() {
		for _, ns := range namespacesAt(f.Global(), path) {
			found = append(found, named(ns.Members(), name)...)
		}
	}
	return found
}

// classMembers returns the members of k named name, followed by those of
// its base classes.
func (w *walker) classMembers(k *symbols.Class, name string) []symbols.Symbol {
	if !w.enter(k, name) {
		return nil
	}
	defer w.leave(k, name)
	found := named(k.Members(), name)
	for i := 0; i < k.BaseClassCount(); i++ {
		for _, base := range w.classes(k.BaseClassAt(i).Name, k.Parent()) {
			found = append(found, w.classMembers(base, name)...)
		}
	}
	return found
}

// classes resolves expr in scope and keeps the class definitions, following
// forward declarations to their definitions.
func (w *walker) classes(expr string, scope symbols.Scope) []*symbols.Class {
	var out []*symbols.Class
	for _, s := range w.lookup(expr, scope) {
		switch s := s.(type) {
		case *symbols.Class:
			out = append(out, s)
		case *symbols.ForwardClass:
			out = append(out, w.definitions(s)...)
		}
	}
	return out
}

// definitions finds the classes a forward declaration declares.
func (w *walker) definitions(f *symbols.ForwardClass) []*symbols.Class {
	var out []*symbols.Class
	for s := f.Parent(); s != nil; s = s.Parent() {
		for _, m := range w.scopeMembers(s, f.Name()) {
			if k, ok := m.(*symbols.Class); ok {
				out = append(out, k)
			}
		}
		if len(out) > 0 {
			break
		}
	}
	return out
}

// files returns the current document followed by the rest of the snapshot.
func (w *walker) files() []File {
	var out []File
	if w.current != nil {
		out = append(out, w.current)
	}
	for _, f := range w.snapshot.Files() {
		if w.current != nil && f.Path() == w.current.Path() {
			continue
		}
		out = append(out, f)
	}
	return out
}

// namespacesAt returns the namespaces reached from global by following path.
// A path may match several namespaces because a namespace can be reopened.
func namespacesAt(global *symbols.Namespace, path []string) []*symbols.Namespace {
	level := []*symbols.Namespace{global}
	for _, name := range path {
		var next []*symbols.Namespace
		for _, ns := range level {
			for _, m := range ns.Members() {
				if sub, ok := m.(*symbols.Namespace); ok && sub.Name() == name {
					next = append(next, sub)
				}
			}
		}
		level = next
	}
	return level
}

func named(members []symbols.Symbol, name string) []symbols.Symbol {
	var out []symbols.Symbol
	for _, m := range members {
		if m.Name() == name {
			out = append(out, m)
		}
	}
	return out
}

func unique(in []symbols.Symbol) []symbols.Symbol {
	seen := make(map[symbols.Symbol]bool, len(in))
	out := in[:0:0]
	for _, s := range in {
		if seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}

// splitName breaks "::a::b<c>::d" into ["a", "b", "d"] and reports whether
// it started with "::".
func splitName(expr string) ([]string, bool) {
	var b strings.Builder
	depth := 0
	for _, r := range expr {
		switch {
		case r == '<':
			depth++
		case r == '>':
			if depth > 0 {
				depth--
			}
		case depth > 0, r == ' ', r == '\t', r == '\n', r == '\r':
		default:
			b.WriteRune(r)
		}
	}
	flat := b.String()
	global := strings.HasPrefix(flat, "::")
	flat = strings.TrimPrefix(flat, "::")
	if flat == "" {
		return nil, global
	}
	var names []string
	for _, n := range strings.Split(flat, "::") {
		if n == "" {
			return nil, global
		}
		names = append(names, n)
	}
	return names, global
}
