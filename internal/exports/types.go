package exports

import (
	"github.com/phobologic/qmlscan/internal/symbols"
)

// StripPointerAndReference removes every pointer and reference layer of t,
// together with the cv-qualifiers of what remains: "const QString &" and
// "QObject **" become "QString" and "QObject".
func StripPointerAndReference(t symbols.Type) symbols.Type {
	for {
		switch tt := t.(type) {
		case *symbols.PointerType:
			t = tt.Elem
		case *symbols.ReferenceType:
			t = tt.Elem
		case *symbols.NamedType:
			return &symbols.NamedType{Name: tt.Name}
		default:
			return t
		}
	}
}

// ToQmlType renders t the way QML sees it.
func ToQmlType(t symbols.Type) string {
	result := symbols.Overview{}.TypeString(StripPointerAndReference(t))
	if result == "QString" {
		result = "string"
	}
	return result
}

// Lookup resolves a name written in a scope. *lookup.Engine implements it.
type Lookup interface {
	Lookup(expr string, scope symbols.Scope) []symbols.Symbol
}

// LookupClass returns the first class definition expression names when
// written in scope, or nil. Other kinds of results, forward declarations
// included, are passed over.
func LookupClass(expression string, scope symbols.Scope, typeOf Lookup) *symbols.Class {
	for _, s := range typeOf.Lookup(expression, scope) {
		if k, ok := s.(*symbols.Class); ok {
			return k
		}
	}
	return nil
}

// lookupEnum is LookupClass for enums.
func lookupEnum(name string, scope symbols.Scope, typeOf Lookup) *symbols.Enum {
	for _, s := range typeOf.Lookup(name, scope) {
		if e, ok := s.(*symbols.Enum); ok {
			return e
		}
	}
	return nil
}
