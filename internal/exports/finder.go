package exports

import (
	"slices"
	"strconv"
	"strings"

	"github.com/phobologic/qmlscan/internal/cppast"
	"github.com/phobologic/qmlscan/internal/model"
	"github.com/phobologic/qmlscan/internal/symbols"
)

// ExportedQmlType describes one registration call site.
type ExportedQmlType struct {
	// PackageName is the module uri, or model.DefaultPackage when it could
	// not be determined.
	PackageName string
	TypeName    string
	// Version is only valid together with a real package name.
	Version model.ComponentVersion
	// Scope is the lexical scope of the call. It points into the document
	// that was searched and is only meaningful while that document is.
	Scope symbols.Scope
	// TypeExpression is the template argument as written, e.g. "app::Item".
	TypeExpression string
}

// finder collects the registration calls of one document.
type finder struct {
	doc     Document
	source  []byte
	opts    Options
	exports []ExportedQmlType
}

// FindExports walks the syntax tree of doc and returns its registration call
// sites in source order.
func FindExports(doc Document, opts Options) []ExportedQmlType {
	f := &finder{doc: doc, source: doc.Source(), opts: opts.withDefaults()}
	cppast.Walk(&findVisitor{f: f}, doc.AST())
	return f.exports
}

// findVisitor remembers the innermost block around the node it visits.
type findVisitor struct {
	f        *finder
	compound *cppast.Node
}

func (v *findVisitor) Visit(n *cppast.Node) cppast.Visitor {
	if n == nil {
		return nil
	}
	switch n.Kind {
	case cppast.CompoundStatement:
		return &findVisitor{f: v.f, compound: n}
	case cppast.Call:
		// Arguments of a call are never searched, whether or not the call
		// was a registration.
		v.f.call(n, v.compound)
		return nil
	}
	return v
}

func (f *finder) call(n, compound *cppast.Node) {
	callee := n.Callee()
	if callee == nil || callee.Kind != cppast.IdExpression || callee.TemplateArgs == nil {
		return
	}
	if callee.Name != f.opts.RegisterFunction {
		return
	}
	if len(callee.TemplateArgs) != 1 || callee.TemplateArgs[0].Kind != cppast.TypeID {
		return
	}
	typeID := callee.TemplateArgs[0]

	args := n.Args()
	if len(args) != 4 {
		return
	}
	if args[3].Kind != cppast.StringLiteral {
		return
	}

	var pkg string
	if args[0].Kind == cppast.StringLiteral {
		pkg = args[0].Value
	}
	// An identifier uri is accepted when the enclosing block asserts its
	// value: Q_ASSERT(QLatin1String(uri) == QLatin1String("com.foo")).
	if pkg == "" && args[0].Kind == cppast.IdExpression && compound != nil {
		for _, stmt := range compound.Children {
			if pkg = f.nameOfURIAssert(stmt, args[0]); pkg != "" {
				break
			}
		}
	}

	major, majorOK := intLiteral(args[1])
	minor, minorOK := intLiteral(args[2])

	exp := ExportedQmlType{TypeName: args[3].Value}
	if pkg != "" && majorOK && minorOK {
		exp.PackageName = pkg
		exp.Version = model.NewComponentVersion(major, minor)
	} else {
		exp.PackageName = model.DefaultPackage
	}
	exp.Scope = f.doc.ScopeAt(n.Start)
	exp.TypeExpression = typeID.Text(f.source)

	f.exports = append(f.exports, exp)
}

// nameOfURIAssert returns the string uriName is asserted to equal in stmt,
// or "" when stmt is not such an assertion. Both the call as written and the
// expansion of Q_ASSERT are recognized:
//
//	Q_ASSERT(uri == "com.foo");
//	((!(uri == "com.foo")) ? qt_assert(...) : ...);
func (f *finder) nameOfURIAssert(stmt, uriName *cppast.Node) string {
	var b cppast.Builder

	outerCallName := b.IdExpression()
	binary := b.BinaryExpression()
	pattern := b.ExpressionStatement(
		b.Call(outerCallName, b.ExpressionList(
			binary)))

	if !cppast.Match(pattern, stmt) {
		outerCallName = b.IdExpression()
		binary = b.BinaryExpression()
		pattern = b.ExpressionStatement(
			b.NestedExpression(
				b.ConditionalExpression(
					b.NestedExpression(
						b.UnaryExpression(
							b.NestedExpression(
								binary))),
					b.Call(outerCallName, nil),
					nil)))

		if !cppast.Match(pattern, stmt) {
			return ""
		}
	}

	if !slices.Contains(f.opts.AssertFunctions, outerCallName.Bound().Text(f.source)) {
		return ""
	}
	bin := binary.Bound()
	if bin.Op != "==" {
		return ""
	}

	lhs := f.skipStringCall(bin.Child(0))
	rhs := f.skipStringCall(bin.Child(1))
	if lhs == nil || rhs == nil {
		return ""
	}

	uriString, uriArgName := ofKind(lhs, cppast.StringLiteral), ofKind(lhs, cppast.IdExpression)
	if uriString == nil {
		uriString = ofKind(rhs, cppast.StringLiteral)
	}
	if uriArgName == nil {
		uriArgName = ofKind(rhs, cppast.IdExpression)
	}
	if uriString == nil || uriArgName == nil {
		return ""
	}
	if uriArgName.Text(f.source) != uriName.Text(f.source) {
		return ""
	}
	return uriString.Value
}

// skipStringCall unwraps QLatin1String(x) and QString(x) to x.
func (f *finder) skipStringCall(exp *cppast.Node) *cppast.Node {
	if exp == nil {
		return nil
	}
	var b cppast.Builder
	callName := b.IdExpression()
	call := b.Call(callName, nil)
	if !cppast.Match(call, exp) {
		return exp
	}
	if !slices.Contains(f.opts.StringFunctions, callName.Bound().Text(f.source)) {
		return exp
	}
	args := exp.Args()
	if len(args) != 1 {
		return exp
	}
	return args[0]
}

func ofKind(n *cppast.Node, k cppast.Kind) *cppast.Node {
	if n != nil && n.Kind == k {
		return n
	}
	return nil
}

// intLiteral reads an integer literal in any C++ spelling: 10, 0x0A, 012,
// 0b1010, 1'000, 10u, 10UL.
func intLiteral(n *cppast.Node) (int, bool) {
	if n == nil || n.Kind != cppast.NumericLiteral {
		return 0, false
	}
	text := strings.ToLower(strings.ReplaceAll(n.Value, "'", ""))
	text = strings.TrimRight(text, "ulz")
	v, err := strconv.ParseInt(text, 0, 0)
	if err != nil {
		return 0, false
	}
	return int(v), true
}
