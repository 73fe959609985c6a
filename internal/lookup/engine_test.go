package lookup

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phobologic/qmlscan/internal/lang"
	"github.com/phobologic/qmlscan/internal/parse"
	"github.com/phobologic/qmlscan/internal/symbols"
)

func parseFile(t *testing.T, path, source string) *parse.Document {
	t.Helper()
	l := lang.Languages[lang.CPP]
	q, err := l.GetIdentifierQuery()
	require.NoError(t, err)
	return parse.Parse(l.NewParser(), q, []byte(source), path)
}

const shapesHeader = `namespace geo {
class Shape {
public:
    enum Kind { Round, Square };
    int area() const;
};

class Circle : public Shape {
public:
    class Style { };
    double radius;
};
}
`

const moreShapes = `namespace geo {
class Square : public Shape { };
}
class Shape;
`

const plugin = `class Later;
namespace geo { class Circle; }

void Plugin::registerTypes(const char *uri)
{
    qmlRegisterType<geo::Circle>(uri, 1, 0, "Circle");
}
class Later { };
class Plugin { public: enum Phase { Early }; void registerTypes(const char *uri); };
`

func setup(t *testing.T) (*parse.Document, *Engine) {
	t.Helper()
	shapes := parseFile(t, "geo/shapes.h", shapesHeader)
	more := parseFile(t, "geo/more.h", moreShapes)
	main := parseFile(t, "plugin.cpp", plugin)
	snap := NewSnapshot(more, main, shapes)
	return main, New(snap, main)
}

func kinds(syms []symbols.Symbol) []string {
	var out []string
	for _, s := range syms {
		switch s.(type) {
		case *symbols.Class:
			out = append(out, "class")
		case *symbols.ForwardClass:
			out = append(out, "forward")
		case *symbols.Namespace:
			out = append(out, "namespace")
		case *symbols.Enum:
			out = append(out, "enum")
		case *symbols.Function:
			out = append(out, "function")
		case *symbols.Declaration:
			out = append(out, "declaration")
		default:
			out = append(out, "other")
		}
	}
	return out
}

func firstClass(syms []symbols.Symbol) *symbols.Class {
	for _, s := range syms {
		if k, ok := s.(*symbols.Class); ok {
			return k
		}
	}
	return nil
}

func TestSnapshotOrder(t *testing.T) {
	t.Parallel()
	a := parseFile(t, "b.h", "")
	b := parseFile(t, "a.h", "")
	dup := parseFile(t, "a.h", "int x;")

	snap := NewSnapshot(a, b, dup, nil)
	require.Equal(t, 2, snap.Len())
	assert.Equal(t, "a.h", snap.Files()[0].Path())
	assert.Equal(t, "b.h", snap.Files()[1].Path())

	f, ok := snap.File("a.h")
	require.True(t, ok)
	assert.Same(t, b, f)

	var none *Snapshot
	assert.Zero(t, none.Len())
	assert.Nil(t, none.Files())
}

func TestLookupQualifiedAcrossDocuments(t *testing.T) {
	t.Parallel()
	main, e := setup(t)
	scope := main.ScopeAt(strings.Index(plugin, "qmlRegisterType"))

	got := e.Lookup("geo::Circle", scope)
	// The forward declaration in the current document comes first.
	require.Equal(t, []string{"forward", "class"}, kinds(got))
	k := firstClass(got)
	require.NotNil(t, k)
	assert.Equal(t, "geo::Circle", k.QualifiedName())

	assert.Equal(t, k, firstClass(e.Lookup(" ::geo :: Circle ", nil)))
	assert.Equal(t, "geo::Square", firstClass(e.Lookup("geo::Square", nil)).QualifiedName())
}

func TestLookupForwardDeclarationsResolve(t *testing.T) {
	t.Parallel()
	_, e := setup(t)

	got := e.Lookup("Later", nil)
	assert.Equal(t, []string{"forward", "class"}, kinds(got))

	// A member reached through a forward declaration comes from the
	// definition.
	style := e.Lookup("geo::Circle::Style", nil)
	require.Len(t, style, 1)
	assert.Equal(t, "geo::Circle::Style", symbols.QualifiedName(style[0]))
}

func TestLookupBaseClassMembers(t *testing.T) {
	t.Parallel()
	_, e := setup(t)
	circle := firstClass(e.Lookup("geo::Circle", nil))
	require.NotNil(t, circle)

	assert.Equal(t, []string{"enum"}, kinds(e.Lookup("Kind", circle)))
	assert.Equal(t, []string{"function"}, kinds(e.Lookup("area", circle)))
	assert.Equal(t, []string{"declaration"}, kinds(e.Lookup("radius", circle)))
	assert.Equal(t, []string{"enum"}, kinds(e.Lookup("geo::Circle::Kind", nil)))

	// Base names resolve from the derived class.
	base := firstClass(e.Lookup("Shape", circle))
	require.NotNil(t, base)
	assert.Equal(t, "geo::Shape", base.QualifiedName())
}

func TestLookupOutOfLineQualifier(t *testing.T) {
	t.Parallel()
	main, e := setup(t)
	scope := main.ScopeAt(strings.Index(plugin, "qmlRegisterType"))

	_, ok := scope.(*symbols.Block)
	require.True(t, ok)
	assert.Equal(t, []string{"enum"}, kinds(e.Lookup("Phase", scope)))
}

const nested = `class Outer {
public:
    class Inner : public QObject { };
    void reg();
};

class Derived : public Outer::Inner { };

void Outer::reg()
{
    qmlRegisterType<Outer::Inner>("a", 1, 0, "I");
}
`

func TestLookupClassNestedBase(t *testing.T) {
	t.Parallel()
	doc := parseFile(t, "nested.h", nested)
	e := New(NewSnapshot(doc), doc)

	derived := firstClass(e.Lookup("Derived", nil))
	require.NotNil(t, derived)

	// Expanding Derived's bases looks up Outer; that must not hide Outer's
	// members from the rest of the name.
	base := firstClass(e.Lookup("Outer::Inner", derived))
	require.NotNil(t, base)
	assert.Equal(t, "Outer::Inner", base.QualifiedName())
}

func TestLookupClassQualifiedFromOutOfLineMember(t *testing.T) {
	t.Parallel()
	doc := parseFile(t, "nested.h", nested)
	e := New(NewSnapshot(doc), doc)
	scope := doc.ScopeAt(strings.Index(nested, "qmlRegisterType"))

	_, ok := scope.(*symbols.Block)
	require.True(t, ok)
	inner := firstClass(e.Lookup("Outer::Inner", scope))
	require.NotNil(t, inner)
	assert.Equal(t, "Outer::Inner", inner.QualifiedName())
	assert.Equal(t, inner, firstClass(e.Lookup("Inner", scope)))
}

const cyclic = `class A : public B { public: int a; };
class B : public A { public: int b; };
`

func TestLookupCyclicBasesEnd(t *testing.T) {
	t.Parallel()
	doc := parseFile(t, "cyclic.h", cyclic)
	e := New(NewSnapshot(doc), doc)
	a := firstClass(e.Lookup("A", nil))
	require.NotNil(t, a)

	assert.Equal(t, []string{"declaration"}, kinds(e.Lookup("b", a)))
	assert.Empty(t, e.Lookup("c", a))
}

func TestLookupMissing(t *testing.T) {
	t.Parallel()
	_, e := setup(t)

	assert.Empty(t, e.Lookup("Nope", nil))
	assert.Empty(t, e.Lookup("geo::Nope", nil))
	assert.Empty(t, e.Lookup("", nil))
	assert.Empty(t, e.Lookup("::", nil))
}

func TestSplitName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in     string
		names  []string
		global bool
	}{
		{"Item", []string{"Item"}, false},
		{"app::Item", []string{"app", "Item"}, false},
		{"::QList<QMap<int, int> >::iterator", []string{"QList", "iterator"}, true},
		{"a::::b", nil, false},
		{"", nil, false},
	}
	for _, tt := range tests {
		names, global := splitName(tt.in)
		assert.Equal(t, tt.names, names, tt.in)
		assert.Equal(t, tt.global, global, tt.in)
	}
}
