package parse

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/phobologic/qmlscan/internal/cppast"
	"github.com/phobologic/qmlscan/internal/lang"
)

// convert builds the reduced tree for a tree-sitter node. Comments are
// dropped; every other named node survives, either as a kind the finder knows
// or as an Other node holding its children.
func convert(n *sitter.Node, source []byte) *cppast.Node {
	if n == nil || n.Type() == "comment" {
		return nil
	}
	out := &cppast.Node{
		Kind:  cppast.Other,
		Type:  n.Type(),
		Start: int(n.StartByte()),
		End:   int(n.EndByte()),
	}

	switch n.Type() {
	case "translation_unit":
		out.Kind = cppast.TranslationUnit
		out.Children = convertNamed(n, source)

	case "compound_statement":
		out.Kind = cppast.CompoundStatement
		out.Children = convertNamed(n, source)

	case "expression_statement":
		out.Kind = cppast.ExpressionStatement
		if e := convert(firstNamed(n), source); e != nil {
			out.Children = []*cppast.Node{e}
		}

	case "call_expression":
		out.Kind = cppast.Call
		list := &cppast.Node{Kind: cppast.ExpressionList, Type: "argument_list", Start: out.End, End: out.End}
		if args := n.ChildByFieldName("arguments"); args != nil {
			list.Type = args.Type()
			list.Start, list.End = int(args.StartByte()), int(args.EndByte())
			list.Children = convertNamed(args, source)
		}
		out.Children = []*cppast.Node{convert(n.ChildByFieldName("function"), source), list}

	case "identifier", "qualified_identifier":
		out.Kind = cppast.IdExpression
		out.Name = lang.CollapseWhitespace(lang.NodeText(n, source))

	case "template_function":
		out.Kind = cppast.IdExpression
		if name := n.ChildByFieldName("name"); name != nil {
			out.Name = lang.NodeText(name, source)
		}
		out.TemplateArgs = []*cppast.Node{}
		if args := n.ChildByFieldName("arguments"); args != nil {
			for i := 0; i < int(args.NamedChildCount()); i++ {
				a := args.NamedChild(i)
				if a.Type() == "type_descriptor" {
					out.TemplateArgs = append(out.TemplateArgs, &cppast.Node{
						Kind:  cppast.TypeID,
						Type:  a.Type(),
						Start: int(a.StartByte()),
						End:   int(a.EndByte()),
					})
				} else if c := convert(a, source); c != nil {
					out.TemplateArgs = append(out.TemplateArgs, c)
				}
			}
		}

	case "binary_expression":
		out.Kind = cppast.BinaryExpression
		if op := n.ChildByFieldName("operator"); op != nil {
			out.Op = lang.NodeText(op, source)
		}
		out.Children = []*cppast.Node{
			convert(n.ChildByFieldName("left"), source),
			convert(n.ChildByFieldName("right"), source),
		}

	case "unary_expression", "pointer_expression":
		out.Kind = cppast.UnaryExpression
		if op := n.ChildByFieldName("operator"); op != nil {
			out.Op = lang.NodeText(op, source)
		}
		out.Children = []*cppast.Node{convert(n.ChildByFieldName("argument"), source)}

	case "parenthesized_expression":
		out.Kind = cppast.NestedExpression
		out.Children = []*cppast.Node{convert(firstNamed(n), source)}

	case "conditional_expression":
		out.Kind = cppast.ConditionalExpression
		out.Children = []*cppast.Node{
			convert(n.ChildByFieldName("condition"), source),
			convert(n.ChildByFieldName("consequence"), source),
			convert(n.ChildByFieldName("alternative"), source),
		}

	case "string_literal", "raw_string_literal":
		out.Kind = cppast.StringLiteral
		out.Value = stringValue(n.Type(), lang.NodeText(n, source))

	case "concatenated_string":
		out.Kind = cppast.StringLiteral
		var b strings.Builder
		for i := 0; i < int(n.NamedChildCount()); i++ {
			c := n.NamedChild(i)
			if c.Type() == "string_literal" || c.Type() == "raw_string_literal" {
				b.WriteString(stringValue(c.Type(), lang.NodeText(c, source)))
			}
		}
		out.Value = b.String()

	case "number_literal":
		out.Kind = cppast.NumericLiteral
		out.Value = lang.NodeText(n, source)

	default:
		out.Children = convertNamed(n, source)
	}
	return out
}

func convertNamed(n *sitter.Node, source []byte) []*cppast.Node {
	var out []*cppast.Node
	for i := 0; i < int(n.NamedChildCount()); i++ {
		if c := convert(n.NamedChild(i), source); c != nil {
			out = append(out, c)
		}
	}
	return out
}

// firstNamed returns the first named child that is not a comment.
func firstNamed(n *sitter.Node) *sitter.Node {
	for i := 0; i < int(n.NamedChildCount()); i++ {
		if c := n.NamedChild(i); c.Type() != "comment" {
			return c
		}
	}
	return nil
}

// stringValue returns the characters between the quotes of a literal,
// without processing escapes: u8"a\n" gives `a\n`, R"x(y)x" gives "y".
func stringValue(typ, text string) string {
	open := strings.IndexByte(text, '"')
	if open < 0 {
		return ""
	}
	if typ == "raw_string_literal" {
		paren := strings.IndexByte(text[open:], '(')
		if paren < 0 {
			return ""
		}
		delim := text[open+1 : open+paren]
		body := text[open+paren+1:]
		if end := strings.LastIndex(body, ")"+delim+`"`); end >= 0 {
			return body[:end]
		}
		return body
	}
	end := strings.LastIndexByte(text, '"')
	if end <= open {
		return text[open+1:]
	}
	return text[open+1 : end]
}
