package symbols

import "strings"

// Type is a declared C++ type.
type Type interface {
	isType()
}

// NamedType is a type referred to by name: a builtin such as "int", a class
// name, or a template specialization written out as text.
type NamedType struct {
	Name     string
	Const    bool
	Volatile bool
}

// PointerType is "Elem *".
type PointerType struct {
	Elem  Type
	Const bool
}

// ReferenceType is "Elem &", or "Elem &&" when RValue is set.
type ReferenceType struct {
	Elem   Type
	RValue bool
}

func (*NamedType) isType() {}
func (*PointerType) isType() {}
func (*ReferenceType) isType() {}

// IsPointer reports whether the outermost layer of t is a pointer.
func IsPointer(t Type) bool {
	_, ok := t.(*PointerType)
	return ok
}

// Overview renders types as C++ source text, in the spelling a declaration
// would use: "const QString &", "QObject *", "QList<int>".
type Overview struct{}

// TypeString returns the text for t, or "" for a nil type.
func (o Overview) TypeString(t Type) string {
	var b strings.Builder
	o.write(&b, t)
	return b.String()
}

func (o Overview) write(b *strings.Builder, t Type) {
	switch t := t.(type) {
	case *NamedType:
		if t.Const {
			b.WriteString("const ")
		}
		if t.Volatile {
			b.WriteString("volatile ")
		}
		b.WriteString(t.Name)
	case *PointerType:
		o.write(b, t.Elem)
		b.WriteString(" *")
		if t.Const {
			b.WriteString("const")
		}
	case *ReferenceType:
		o.write(b, t.Elem)
		if t.RValue {
			b.WriteString(" &&")
		} else {
			b.WriteString(" &")
		}
	}
}

// Name returns the name of a symbol as it would be printed, or "" when the
// symbol is nil or anonymous.
func (Overview) Name(s Symbol) string {
	if s == nil {
		return ""
	}
	return s.Name()
}

// ParseType reads a type written without a declarator, as found in
// Q_PROPERTY: "int", "const QString &", "QList<QObject *>", "Foo *const".
func ParseType(text string) Type {
	text = strings.Join(strings.Fields(text), " ")
	var layers []Type
	for {
		text = strings.TrimSpace(text)
		switch {
		case strings.HasSuffix(text, "&&"):
			layers = append(layers, &ReferenceType{RValue: true})
			text = text[:len(text)-2]
		case strings.HasSuffix(text, "&"):
			layers = append(layers, &ReferenceType{})
			text = text[:len(text)-1]
		case strings.HasSuffix(text, "*"):
			layers = append(layers, &PointerType{})
			text = text[:len(text)-1]
		case hasWordSuffix(text, "const") && strings.HasSuffix(strings.TrimSpace(strings.TrimSuffix(text, "const")), "*"):
			// "T *const"
			t := strings.TrimSpace(strings.TrimSuffix(text, "const"))
			layers = append(layers, &PointerType{Const: true})
			text = t[:len(t)-1]
		default:
			var t Type = parseNamed(text)
			for i := len(layers) - 1; i >= 0; i-- {
				switch l := layers[i].(type) {
				case *PointerType:
					l.Elem = t
				case *ReferenceType:
					l.Elem = t
				}
				t = layers[i]
			}
			return t
		}
	}
}

func parseNamed(text string) *NamedType {
	n := &NamedType{}
	words := strings.Fields(text)
	kept := words[:0]
	depth := 0
	for _, w := range words {
		if depth == 0 {
			switch w {
			case "const":
				n.Const = true
				continue
			case "volatile":
				n.Volatile = true
				continue
			}
		}
		depth += strings.Count(w, "<") - strings.Count(w, ">")
		kept = append(kept, w)
	}
	n.Name = strings.Join(kept, " ")
	return n
}

func hasWordSuffix(s, word string) bool {
	if !strings.HasSuffix(s, word) {
		return false
	}
	rest := s[:len(s)-len(word)]
	return rest == "" || strings.HasSuffix(rest, " ") || strings.HasSuffix(rest, "*")
}
