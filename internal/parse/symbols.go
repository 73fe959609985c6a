package parse

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/phobologic/qmlscan/internal/lang"
	"github.com/phobologic/qmlscan/internal/symbols"
)

// container is a scope the builder can add members to.
type container interface {
	symbols.Scope
	Insert(symbols.Symbol)
}

// builder turns declarations in the syntax tree into symbols.
type builder struct {
	source  []byte
	qt      *qtMarkers
	claimed []bool
}

func newBuilder(source []byte, qt *qtMarkers) *builder {
	return &builder{source: source, qt: qt, claimed: make([]bool, len(qt.macros))}
}

func (b *builder) text(n *sitter.Node) string {
	return lang.CollapseWhitespace(lang.NodeText(n, b.source))
}

// build returns the global namespace of the translation unit rooted at root.
func (b *builder) build(root *sitter.Node) *symbols.Namespace {
	global := symbols.NewNamespace(0, "", 0, len(b.source))
	if root != nil {
		b.declarations(root, global)
	}
	return global
}

// declarations adds the declarations among n's children to into.
func (b *builder) declarations(n *sitter.Node, into container) {
	for i := 0; i < int(n.NamedChildCount()); i++ {
		c := n.NamedChild(i)
		switch c.Type() {
		case "namespace_definition":
			b.namespace(c, into)
		case "declaration_list", "linkage_specification", "template_declaration", "ERROR",
			"preproc_if", "preproc_ifdef", "preproc_else", "preproc_elif", "preproc_elifdef":
			b.declarations(c, into)
		case "class_specifier", "struct_specifier", "union_specifier", "enum_specifier":
			b.typeSpecifier(c, into)
		case "declaration", "field_declaration":
			b.declaration(c, into, 0)
		case "function_definition":
			b.functionDefinition(c, into, 0)
		case "type_definition":
			if t := c.ChildByFieldName("type"); t != nil {
				b.typeSpecifier(t, into)
			}
		}
	}
}

func (b *builder) namespace(n *sitter.Node, into container) {
	body := n.ChildByFieldName("body")
	if body == nil {
		return
	}
	nameNode := n.ChildByFieldName("name")
	if nameNode == nil {
		// Anonymous namespace members are visible in the enclosing scope.
		b.declarations(body, into)
		return
	}
	start, end := int(n.StartByte()), int(n.EndByte())
	// "namespace a::b {" opens one namespace per component.
	for _, name := range strings.Split(b.text(nameNode), "::") {
		name = strings.TrimSpace(name)
		if name == "" || name == "inline" {
			continue
		}
		ns := symbols.NewNamespace(int(nameNode.StartByte()), name, start, end)
		into.Insert(ns)
		into = ns
	}
	b.declarations(body, into)
}

// typeSpecifier handles class and enum specifiers that appear as the type of
// a declaration or on their own.
func (b *builder) typeSpecifier(n *sitter.Node, into container) {
	switch n.Type() {
	case "class_specifier", "struct_specifier", "union_specifier":
		b.class(n, into)
	case "enum_specifier":
		b.enum(n, into)
	}
}

func (b *builder) class(n *sitter.Node, into container) {
	var name string
	pos := int(n.StartByte())
	if nameNode := n.ChildByFieldName("name"); nameNode != nil {
		name = className(nameNode, b.source)
		pos = int(nameNode.StartByte())
	}
	body := n.ChildByFieldName("body")
	if body == nil {
		if name != "" {
			into.Insert(symbols.NewForwardClass(pos, name))
		}
		return
	}

	key := "class"
	if n.ChildCount() > 0 {
		key = n.Child(0).Type()
	}
	klass := symbols.NewClass(pos, key, name, int(n.StartByte()), int(n.EndByte()))
	for i := 0; i < int(n.NamedChildCount()); i++ {
		if c := n.NamedChild(i); c.Type() == "base_class_clause" {
			b.baseClasses(c, klass)
		}
	}
	into.Insert(klass)

	b.members(body, klass, &memberState{prevEnd: int(body.StartByte()) + 1})
	b.attachMacros(klass, int(body.StartByte()), int(body.EndByte()))
}

// className returns the unqualified name of a class head: "Foo" for
// "ns::Foo" and for the specialization "Foo<int>".
func className(n *sitter.Node, source []byte) string {
	switch n.Type() {
	case "qualified_identifier":
		if name := n.ChildByFieldName("name"); name != nil {
			return className(name, source)
		}
	case "template_type":
		if name := n.ChildByFieldName("name"); name != nil {
			return lang.NodeText(name, source)
		}
	}
	return lang.CollapseWhitespace(lang.NodeText(n, source))
}

func (b *builder) baseClasses(n *sitter.Node, klass *symbols.Class) {
	var access string
	var virtual bool
	for i := 0; i < int(n.ChildCount()); i++ {
		c := n.Child(i)
		switch c.Type() {
		case "access_specifier", "public", "protected", "private":
			access = b.text(c)
		case "virtual", "virtual_specifier":
			virtual = true
		case "type_identifier", "qualified_identifier", "template_type":
			klass.AddBaseClass(&symbols.BaseClass{Name: b.text(c), Access: access, Virtual: virtual})
			access, virtual = "", false
		}
	}
}

// memberState carries the access section through a class body, including
// bodies split by preprocessor conditionals.
type memberState struct {
	section symbols.FunctionFlags
	prevEnd int
}

func (b *builder) members(n *sitter.Node, klass *symbols.Class, st *memberState) {
	for i := 0; i < int(n.NamedChildCount()); i++ {
		c := n.NamedChild(i)
		start := int(c.StartByte())
		switch c.Type() {
		case "comment":
			continue
		case "access_specifier":
			st.section = b.qt.sections[start]
		case "field_declaration", "declaration":
			b.declaration(c, klass, st.section|b.qt.nextFlags(st.prevEnd, start))
		case "function_definition":
			b.functionDefinition(c, klass, st.section|b.qt.nextFlags(st.prevEnd, start))
		case "template_declaration":
			b.declarations(c, klass)
		case "class_specifier", "struct_specifier", "union_specifier", "enum_specifier":
			b.typeSpecifier(c, klass)
		case "preproc_if", "preproc_ifdef", "preproc_else", "preproc_elif", "preproc_elifdef", "ERROR":
			b.members(c, klass, st)
		}
		st.prevEnd = int(c.EndByte())
	}
}

func (b *builder) enum(n *sitter.Node, into container) {
	body := n.ChildByFieldName("body")
	if body == nil {
		return
	}
	var name string
	pos := int(n.StartByte())
	if nameNode := n.ChildByFieldName("name"); nameNode != nil {
		name = className(nameNode, b.source)
		pos = int(nameNode.StartByte())
	}
	scoped := false
	for i := 0; i < int(n.ChildCount()); i++ {
		if t := n.Child(i).Type(); t == "class" || t == "struct" {
			scoped = true
		}
	}
	e := symbols.NewEnum(pos, name, scoped)
	for i := 0; i < int(body.NamedChildCount()); i++ {
		c := body.NamedChild(i)
		if c.Type() != "enumerator" {
			continue
		}
		nameNode := c.ChildByFieldName("name")
		if nameNode == nil {
			continue
		}
		var value string
		if v := c.ChildByFieldName("value"); v != nil {
			value = b.text(v)
		}
		e.AddEnumerator(symbols.NewEnumerator(int(nameNode.StartByte()), lang.NodeText(nameNode, b.source), value))
	}
	into.Insert(e)
}

// baseType reads the type specifier of a declaration together with the
// const and volatile qualifiers written around it.
func (b *builder) baseType(n *sitter.Node) symbols.Type {
	typeNode := n.ChildByFieldName("type")
	if typeNode == nil {
		return nil
	}
	var words []string
	for i := 0; i < int(n.ChildCount()); i++ {
		if c := n.Child(i); c.Type() == "type_qualifier" {
			words = append(words, b.text(c))
		}
	}
	words = append(words, b.text(typeNode))
	if typeNode.Type() == "class_specifier" || typeNode.Type() == "struct_specifier" ||
		typeNode.Type() == "union_specifier" || typeNode.Type() == "enum_specifier" {
		if name := typeNode.ChildByFieldName("name"); name != nil {
			words[len(words)-1] = b.text(name)
		}
	}
	return symbols.ParseType(strings.Join(words, " "))
}

func (b *builder) declaration(n *sitter.Node, into container, flags symbols.FunctionFlags) {
	if t := n.ChildByFieldName("type"); t != nil {
		b.typeSpecifier(t, into)
	}
	base := b.baseType(n)
	for i := 0; i < int(n.ChildCount()); i++ {
		if n.FieldNameForChild(i) != "declarator" {
			continue
		}
		sym, qualifier := b.declarator(n.Child(i), base)
		if sym == nil || qualifier != "" {
			continue
		}
		if fn, ok := sym.(*symbols.Function); ok {
			fn.Flags = flags
		}
		into.Insert(sym)
	}
}

func (b *builder) functionDefinition(n *sitter.Node, into container, flags symbols.FunctionFlags) {
	sym, qualifier := b.declarator(n.ChildByFieldName("declarator"), b.baseType(n))
	if sym != nil && qualifier == "" {
		if fn, ok := sym.(*symbols.Function); ok {
			fn.Flags = flags
		}
		into.Insert(sym)
	}
	body := n.ChildByFieldName("body")
	if body == nil || body.Type() != "compound_statement" {
		return
	}
	block := symbols.NewBlock(int(body.StartByte()), int(body.EndByte()), qualifier)
	into.Insert(block)
	b.declarations(body, block)
}

// declarator applies the declarator n to the base type t. It returns a
// Function or Declaration, and the "A::B" part of a qualified declarator
// name. Declarators that introduce nothing nameable give nil.
func (b *builder) declarator(n *sitter.Node, t symbols.Type) (symbols.Symbol, string) {
	for n != nil {
		switch n.Type() {
		case "pointer_declarator":
			t = &symbols.PointerType{Elem: t, Const: hasChild(n, "type_qualifier")}
			n = n.ChildByFieldName("declarator")
		case "reference_declarator":
			rvalue := n.ChildCount() > 0 && n.Child(0).Type() == "&&"
			t = &symbols.ReferenceType{Elem: t, RValue: rvalue}
			n = firstNamed(n)
		case "init_declarator", "array_declarator":
			n = n.ChildByFieldName("declarator")
		case "parenthesized_declarator", "attributed_declarator":
			n = firstNamed(n)
		case "function_declarator":
			inner := n.ChildByFieldName("declarator")
			name, qualifier, ok := b.declaratorName(inner)
			if !ok {
				// A pointer to function: the variable is named inside.
				n = inner
				continue
			}
			fn := symbols.NewFunction(int(inner.StartByte()), name, t)
			b.parameters(n.ChildByFieldName("parameters"), fn)
			return fn, qualifier
		default:
			name, qualifier, ok := b.declaratorName(n)
			if !ok {
				return nil, ""
			}
			return symbols.NewDeclaration(int(n.StartByte()), name, t), qualifier
		}
	}
	return nil, ""
}

// declaratorName splits the name at the core of a declarator.
func (b *builder) declaratorName(n *sitter.Node) (name, qualifier string, ok bool) {
	if n == nil {
		return "", "", false
	}
	switch n.Type() {
	case "identifier", "field_identifier", "destructor_name", "operator_name", "type_identifier":
		return b.text(n), "", true
	case "template_function":
		if name := n.ChildByFieldName("name"); name != nil {
			return b.text(name), "", true
		}
	case "qualified_identifier":
		full := strings.ReplaceAll(b.text(n), " ", "")
		full = strings.TrimPrefix(full, "::")
		if i := strings.LastIndex(full, "::"); i >= 0 {
			return full[i+2:], full[:i], true
		}
		return full, "", true
	}
	return "", "", false
}

func (b *builder) parameters(list *sitter.Node, fn *symbols.Function) {
	if list == nil {
		return
	}
	for i := 0; i < int(list.NamedChildCount()); i++ {
		p := list.NamedChild(i)
		switch p.Type() {
		case "parameter_declaration", "optional_parameter_declaration":
		default:
			continue
		}
		t := b.baseType(p)
		d := p.ChildByFieldName("declarator")
		if d == nil && list.NamedChildCount() == 1 {
			if nt, ok := t.(*symbols.NamedType); ok && nt.Name == "void" && !nt.Const {
				// f(void)
				return
			}
		}
		name, t := b.abstractDeclarator(d, t)
		fn.AddArgument(symbols.NewArgument(int(p.StartByte()), name, t))
	}
}

// abstractDeclarator is declarator for parameters, where the name may be
// missing ("const QString &").
func (b *builder) abstractDeclarator(n *sitter.Node, t symbols.Type) (string, symbols.Type) {
	for n != nil {
		switch n.Type() {
		case "pointer_declarator", "abstract_pointer_declarator":
			t = &symbols.PointerType{Elem: t, Const: hasChild(n, "type_qualifier")}
			n = n.ChildByFieldName("declarator")
		case "reference_declarator", "abstract_reference_declarator":
			rvalue := n.ChildCount() > 0 && n.Child(0).Type() == "&&"
			t = &symbols.ReferenceType{Elem: t, RValue: rvalue}
			n = firstNamed(n)
		case "init_declarator", "array_declarator", "abstract_array_declarator":
			n = n.ChildByFieldName("declarator")
		case "parenthesized_declarator", "abstract_parenthesized_declarator":
			n = firstNamed(n)
		case "identifier":
			return b.text(n), t
		default:
			return "", t
		}
	}
	return "", t
}

func hasChild(n *sitter.Node, typ string) bool {
	for i := 0; i < int(n.ChildCount()); i++ {
		if n.Child(i).Type() == typ {
			return true
		}
	}
	return false
}

// attachMacros turns the Qt macros written in [start, end) that no nested
// class claimed into members of klass.
func (b *builder) attachMacros(klass *symbols.Class, start, end int) {
	for i, m := range b.qt.macros {
		if b.claimed[i] || m.Pos < start || m.Pos >= end {
			continue
		}
		b.claimed[i] = true
		switch m.Name {
		case "Q_PROPERTY":
			if p := parseProperty(m.Pos, m.Args); p != nil {
				klass.Insert(p)
			}
		case "Q_PRIVATE_PROPERTY":
			args := m.Args
			if comma := topLevelComma(args); comma >= 0 {
				args = args[comma+1:]
			}
			if p := parseProperty(m.Pos, args); p != nil {
				klass.Insert(p)
			}
		case "Q_ENUMS", "Q_ENUM", "Q_FLAGS", "Q_FLAG":
			isFlag := m.Name == "Q_FLAGS" || m.Name == "Q_FLAG"
			for _, name := range strings.FieldsFunc(m.Args, func(r rune) bool {
				return r == ',' || r == ' ' || r == '\t' || r == '\n' || r == '\r'
			}) {
				klass.Insert(symbols.NewQtEnum(m.Pos, name, isFlag))
			}
		}
	}
}

var propertyKeywords = map[string]symbols.PropertyFlags{
	"READ":       symbols.ReadFunction,
	"WRITE":      symbols.WriteFunction,
	"RESET":      symbols.ResetFunction,
	"NOTIFY":     symbols.NotifyFunction,
	"MEMBER":     symbols.MemberVariable,
	"CONSTANT":   symbols.Constant,
	"FINAL":      symbols.Final,
	"REVISION":   0,
	"DESIGNABLE": 0,
	"SCRIPTABLE": 0,
	"STORED":     0,
	"USER":       0,
	"BINDABLE":   0,
	"REQUIRED":   0,
}

// parseProperty reads "type name KEYWORD ..." from the arguments of a
// Q_PROPERTY.
func parseProperty(pos int, args string) *symbols.Property {
	s := &cppScanner{src: []byte(args)}
	depth := 0
	head := len(args)
	var flags symbols.PropertyFlags
	found := false
	for {
		tok, ok := s.next()
		if !ok {
			break
		}
		if tok.kind == tokPunct {
			switch args[tok.start] {
			case '<', '(', '[':
				depth++
			case '>', ')', ']':
				depth--
			}
			continue
		}
		if tok.kind != tokIdent || depth != 0 {
			continue
		}
		f, ok := propertyKeywords[args[tok.start:tok.end]]
		if !ok {
			continue
		}
		if !found {
			head = tok.start
			found = true
		}
		flags |= f
	}

	decl := strings.TrimSpace(args[:head])
	i := len(decl)
	for i > 0 && isIdentPart(decl[i-1]) {
		i--
	}
	name := decl[i:]
	typ := strings.TrimSpace(decl[:i])
	if name == "" || typ == "" {
		return nil
	}
	return symbols.NewProperty(pos, name, symbols.ParseType(typ), flags)
}

func topLevelComma(s string) int {
	depth := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '(', '<', '[':
			depth++
		case ')', '>', ']':
			depth--
		case ',':
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}
