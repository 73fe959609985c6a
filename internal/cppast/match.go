package cppast

// Pattern is a template tree for Match. Every pattern node is a hole of a
// given Kind: it matches any concrete node of that kind and, on a match,
// remembers that node so the caller can read it back through Bound.
//
// A pattern with nil children accepts any children. Otherwise the concrete
// node must have the same number of children, and each non-nil pattern child
// must match the child in the same position. A nil pattern child matches
// anything, including a missing child.
type Pattern struct {
	kind     Kind
	children []*Pattern
	bound    *Node
}

// Kind reports the node kind the pattern accepts.
func (p *Pattern) Kind() Kind { return p.kind }

// Bound returns the concrete node this pattern matched during the last call
// to Match. It is only meaningful after Match returned true.
func (p *Pattern) Bound() *Node {
	if p == nil {
		return nil
	}
	return p.bound
}

// Match reports whether node has the shape described by pattern, binding
// every pattern node it visits to the corresponding concrete node.
func Match(pattern *Pattern, node *Node) bool {
	if pattern == nil {
		return true
	}
	if node == nil || node.Kind != pattern.kind {
		return false
	}
	pattern.bound = node
	if pattern.children == nil {
		return true
	}
	if len(pattern.children) != len(node.Children) {
		return false
	}
	for i, c := range pattern.children {
		if !Match(c, node.Children[i]) {
			return false
		}
	}
	return true
}

// Builder allocates fresh pattern holes. The zero value is ready to use.
type Builder struct{}

func (Builder) hole(kind Kind, children ...*Pattern) *Pattern {
	return &Pattern{kind: kind, children: children}
}

// IdExpression returns a hole for any identifier expression.
func (b Builder) IdExpression() *Pattern { return b.hole(IdExpression) }

// StringLiteral returns a hole for any string literal.
func (b Builder) StringLiteral() *Pattern { return b.hole(StringLiteral) }

// NumericLiteral returns a hole for any numeric literal.
func (b Builder) NumericLiteral() *Pattern { return b.hole(NumericLiteral) }

// BinaryExpression returns a hole for a binary expression. Nil operands match
// any operand.
func (b Builder) BinaryExpression(operands ...*Pattern) *Pattern {
	if len(operands) == 0 {
		return b.hole(BinaryExpression)
	}
	left, right := pair(operands)
	return b.hole(BinaryExpression, left, right)
}

// UnaryExpression returns a hole for a unary expression around operand.
func (b Builder) UnaryExpression(operand *Pattern) *Pattern {
	return b.hole(UnaryExpression, operand)
}

// NestedExpression returns a hole for a parenthesized expression.
func (b Builder) NestedExpression(inner *Pattern) *Pattern {
	return b.hole(NestedExpression, inner)
}

// ConditionalExpression returns a hole for "cond ? then : else".
func (b Builder) ConditionalExpression(cond, then, els *Pattern) *Pattern {
	return b.hole(ConditionalExpression, cond, then, els)
}

// Call returns a hole for a call of callee. A nil args pattern matches any
// argument list.
func (b Builder) Call(callee, args *Pattern) *Pattern {
	return b.hole(Call, callee, args)
}

// ExpressionList returns a hole for an argument list with exactly the given
// items.
func (b Builder) ExpressionList(items ...*Pattern) *Pattern {
	if items == nil {
		items = []*Pattern{}
	}
	return b.hole(ExpressionList, items...)
}

// ExpressionStatement returns a hole for "expr;".
func (b Builder) ExpressionStatement(expr *Pattern) *Pattern {
	return b.hole(ExpressionStatement, expr)
}

func pair(ps []*Pattern) (*Pattern, *Pattern) {
	var a, b *Pattern
	if len(ps) > 0 {
		a = ps[0]
	}
	if len(ps) > 1 {
		b = ps[1]
	}
	return a, b
}
