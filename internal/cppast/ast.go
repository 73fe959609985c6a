// Package cppast defines the reduced C++ syntax tree that the export finder
// works on, together with a structural pattern matcher over it.
//
// The tree keeps only the node kinds the finder needs to tell apart. Anything
// else becomes an Other node that still carries its children, so a walk can
// reach calls and blocks nested anywhere in a translation unit.
package cppast

// Kind identifies the syntactic category of a Node.
type Kind int

const (
	Other Kind = iota
	TranslationUnit
	CompoundStatement
	ExpressionStatement
	ExpressionList
	IdExpression
	TypeID
	Call
	BinaryExpression
	UnaryExpression
	NestedExpression
	ConditionalExpression
	StringLiteral
	NumericLiteral
)

var kindNames = [...]string{
	Other:                 "Other",
	TranslationUnit:       "TranslationUnit",
	CompoundStatement:     "CompoundStatement",
	ExpressionStatement:   "ExpressionStatement",
	ExpressionList:        "ExpressionList",
	IdExpression:          "IdExpression",
	TypeID:                "TypeID",
	Call:                  "Call",
	BinaryExpression:      "BinaryExpression",
	UnaryExpression:       "UnaryExpression",
	NestedExpression:      "NestedExpression",
	ConditionalExpression: "ConditionalExpression",
	StringLiteral:         "StringLiteral",
	NumericLiteral:        "NumericLiteral",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "Kind(?)"
	}
	return kindNames[k]
}

// Node is one element of the reduced tree.
//
// Children follow a fixed layout for kinds with fixed slots:
//
//	Call                   [callee, ExpressionList]
//	BinaryExpression       [left, right]
//	UnaryExpression        [operand]
//	NestedExpression       [inner]
//	ConditionalExpression  [condition, then, else]   (then may be nil)
//	ExpressionStatement    [expression]              (empty for ";")
//
// All other kinds hold their children in source order.
type Node struct {
	Kind Kind
	// Type is the grammar node type the node was converted from.
	Type string
	// Start and End are byte offsets into the document source.
	Start int
	End   int

	// Op is the operator spelling of binary and unary expressions.
	Op string
	// Name is the identifier of an IdExpression, without template arguments.
	Name string
	// Value is the unquoted content of a StringLiteral or the spelling of a
	// NumericLiteral.
	Value string
	// TemplateArgs is non-nil when an IdExpression names a template-id.
	TemplateArgs []*Node

	Children []*Node
}

// Child returns the i-th child, or nil when there is none.
func (n *Node) Child(i int) *Node {
	if n == nil || i < 0 || i >= len(n.Children) {
		return nil
	}
	return n.Children[i]
}

// Callee returns the called expression of a Call node.
func (n *Node) Callee() *Node {
	if n == nil || n.Kind != Call {
		return nil
	}
	return n.Child(0)
}

// Args returns the argument expressions of a Call node.
func (n *Node) Args() []*Node {
	if n == nil || n.Kind != Call {
		return nil
	}
	if list := n.Child(1); list != nil {
		return list.Children
	}
	return nil
}

// Text returns the source text the node spans.
func (n *Node) Text(source []byte) string {
	if n == nil || n.Start < 0 || n.End > len(source) || n.Start > n.End {
		return ""
	}
	return string(source[n.Start:n.End])
}

// A Visitor's Visit method is invoked for each node encountered by Walk.
// If the result visitor w is not nil, Walk visits each of the children of
// node with w, followed by a call of w.Visit(nil).
type Visitor interface {
	Visit(node *Node) (w Visitor)
}

// Walk traverses the tree in depth-first order, the same way go/ast.Walk does.
func Walk(v Visitor, node *Node) {
	if node == nil {
		return
	}
	if v = v.Visit(node); v == nil {
		return
	}
	for _, c := range node.Children {
		Walk(v, c)
	}
	v.Visit(nil)
}

type inspector func(*Node) bool

func (f inspector) Visit(node *Node) Visitor {
	if f(node) {
		return f
	}
	return nil
}

// Inspect calls f for every node in pre-order; f returning false prunes the
// subtree. f is called with nil after a node's children are done.
func Inspect(node *Node, f func(*Node) bool) {
	Walk(inspector(f), node)
}
