// Package symbols models the C++ declarations the analysis needs to read:
// namespaces, classes and their members, plus the Qt meta-object additions
// (properties, registered enums, signal/slot markers).
//
// Symbols are built once by the parser and are read-only afterwards. Class
// identity is pointer identity.
package symbols

import "sort"

// Symbol is implemented by every declaration in this package.
type Symbol interface {
	// Name is the unqualified name, or "" for anonymous declarations.
	Name() string
	// Pos is the byte offset of the declaration in its document.
	Pos() int
	// Parent is the scope that directly contains the symbol.
	Parent() Scope

	setParent(Scope)
}

// Scope is a symbol that contains other symbols.
type Scope interface {
	Symbol
	// Members returns the direct members ordered by position.
	Members() []Symbol
	// Extent is the byte range the scope covers in its document.
	Extent() (start, end int)
}

type object struct {
	name   string
	pos    int
	parent Scope
}

func (o *object) Name() string { return o.name }
func (o *object) Pos() int { return o.pos }
func (o *object) Parent() Scope { return o.parent }
func (o *object) setParent(s Scope) { o.parent = s }

type scope struct {
	members    []Symbol
	start, end int
}

func (s *scope) Members() []Symbol { return s.members }
func (s *scope) Extent() (int, int) { return s.start, s.end }
func (s *scope) SetExtent(start, end int) { s.start, s.end = start, end }

func (s *scope) insert(owner Scope, m Symbol) {
	m.setParent(owner)
	i := sort.Search(len(s.members), func(i int) bool {
		return s.members[i].Pos() > m.Pos()
	})
	s.members = append(s.members, nil)
	copy(s.members[i+1:], s.members[i:])
	s.members[i] = m
}

// Namespace is a named namespace, or the global namespace when the name is "".
type Namespace struct {
	object
	scope
}

// NewNamespace returns an empty namespace covering [start, end).
func NewNamespace(pos int, name string, start, end int) *Namespace {
	return &Namespace{object: object{name: name, pos: pos}, scope: scope{start: start, end: end}}
}

// Insert adds m to the namespace keeping members in position order.
func (n *Namespace) Insert(m Symbol) { n.insert(n, m) }

// IsGlobal reports whether n is a document's global namespace.
func (n *Namespace) IsGlobal() bool { return n.parent == nil }

// Block is the body of a function definition.
type Block struct {
	object
	scope

	// Qualifier is the class part of an out-of-line member definition, as
	// in "Plugin" for "void Plugin::registerTypes(...)".
	Qualifier string
}

// NewBlock returns an empty block covering [start, end).
func NewBlock(start, end int, qualifier string) *Block {
	return &Block{object: object{pos: start}, scope: scope{start: start, end: end}, Qualifier: qualifier}
}

// Insert adds m to the block keeping members in position order.
func (b *Block) Insert(m Symbol) { b.insert(b, m) }

// BaseClass is one entry of a class's base-specifier list.
type BaseClass struct {
	// Name is the base name as written, e.g. "QObject" or "ns::Base".
	Name    string
	Access  string
	Virtual bool
}

// Class is a class, struct or union definition.
type Class struct {
	object
	scope

	Key   string // "class", "struct" or "union"
	bases []*BaseClass
}

// NewClass returns an empty class definition covering [start, end).
func NewClass(pos int, key, name string, start, end int) *Class {
	return &Class{object: object{name: name, pos: pos}, scope: scope{start: start, end: end}, Key: key}
}

// Insert adds m to the class keeping members in position order.
func (c *Class) Insert(m Symbol) { c.insert(c, m) }

// AddBaseClass appends a base-specifier.
func (c *Class) AddBaseClass(b *BaseClass) { c.bases = append(c.bases, b) }

// BaseClassCount returns the number of base-specifiers.
func (c *Class) BaseClassCount() int { return len(c.bases) }

// BaseClassAt returns the i-th base-specifier.
func (c *Class) BaseClassAt(i int) *BaseClass { return c.bases[i] }

// QualifiedName joins the names of the enclosing namespaces and classes
// with "::".
func (c *Class) QualifiedName() string { return QualifiedName(c) }

// ForwardClass is a class declaration without a body.
type ForwardClass struct {
	object
}

// NewForwardClass returns a forward declaration of name.
func NewForwardClass(pos int, name string) *ForwardClass {
	return &ForwardClass{object{name: name, pos: pos}}
}

// FunctionFlags describes how moc would see a member function.
type FunctionFlags uint8

const (
	Signal FunctionFlags = 1 << iota
	Slot
	Invokable
)

// Function is a function or member function declaration.
type Function struct {
	object

	ReturnType Type
	Flags      FunctionFlags
	arguments  []*Argument
}

// NewFunction returns a function declaration.
func NewFunction(pos int, name string, ret Type) *Function {
	return &Function{object: object{name: name, pos: pos}, ReturnType: ret}
}

func (f *Function) IsSignal() bool { return f.Flags&Signal != 0 }
func (f *Function) IsSlot() bool { return f.Flags&Slot != 0 }
func (f *Function) IsInvokable() bool { return f.Flags&Invokable != 0 }

// AddArgument appends a parameter.
func (f *Function) AddArgument(a *Argument) { f.arguments = append(f.arguments, a) }

// ArgumentCount returns the number of parameters.
func (f *Function) ArgumentCount() int { return len(f.arguments) }

// ArgumentAt returns the i-th parameter.
func (f *Function) ArgumentAt(i int) *Argument { return f.arguments[i] }

// Argument is a function parameter. Its name may be empty.
type Argument struct {
	object
	Type Type
}

// NewArgument returns a parameter.
func NewArgument(pos int, name string, t Type) *Argument {
	return &Argument{object: object{name: name, pos: pos}, Type: t}
}

// Declaration is a variable or data member.
type Declaration struct {
	object
	Type Type
}

// NewDeclaration returns a variable declaration.
func NewDeclaration(pos int, name string, t Type) *Declaration {
	return &Declaration{object: object{name: name, pos: pos}, Type: t}
}

// PropertyFlags records which accessors a Q_PROPERTY names.
type PropertyFlags uint16

const (
	ReadFunction PropertyFlags = 1 << iota
	WriteFunction
	ResetFunction
	NotifyFunction
	MemberVariable
	Constant
	Final
)

// Property is a Q_PROPERTY declaration.
type Property struct {
	object

	Type  Type
	Flags PropertyFlags
}

// NewProperty returns a Q_PROPERTY declaration.
func NewProperty(pos int, name string, t Type, flags PropertyFlags) *Property {
	return &Property{object: object{name: name, pos: pos}, Type: t, Flags: flags}
}

// QtEnum is one name listed in Q_ENUMS, Q_ENUM, Q_FLAGS or Q_FLAG.
type QtEnum struct {
	object
	IsFlag bool
}

// NewQtEnum returns a registered enum reference.
func NewQtEnum(pos int, name string, isFlag bool) *QtEnum {
	return &QtEnum{object: object{name: name, pos: pos}, IsFlag: isFlag}
}

// Enum is an enumeration definition.
type Enum struct {
	object

	Scoped      bool
	enumerators []*Enumerator
}

// NewEnum returns an empty enumeration.
func NewEnum(pos int, name string, scoped bool) *Enum {
	return &Enum{object: object{name: name, pos: pos}, Scoped: scoped}
}

// AddEnumerator appends an enumerator.
func (e *Enum) AddEnumerator(m *Enumerator) { e.enumerators = append(e.enumerators, m) }

// Enumerators returns the enumerators in declaration order.
func (e *Enum) Enumerators() []*Enumerator { return e.enumerators }

// Enumerator is one key of an Enum. Value holds the initializer as written.
type Enumerator struct {
	object
	Value string
}

// NewEnumerator returns an enumerator.
func NewEnumerator(pos int, name, value string) *Enumerator {
	return &Enumerator{object: object{name: name, pos: pos}, Value: value}
}

// QualifiedName joins the names of s and its named enclosing scopes with "::".
func QualifiedName(s Symbol) string {
	name := s.Name()
	for p := s.Parent(); p != nil; p = p.Parent() {
		if _, ok := p.(*Block); ok {
			break
		}
		if p.Name() == "" {
			continue
		}
		name = p.Name() + "::" + name
	}
	return name
}
