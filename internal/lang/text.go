package lang

import (
	"embed"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
)

//go:embed queries/*.scm
var queryFS embed.FS

// NodeText returns the source n spans.
func NodeText(n *sitter.Node, source []byte) string {
	return string(source[n.StartByte():n.EndByte()])
}

// CollapseWhitespace joins the words of s with single spaces, so a
// declaration split over lines reads as it would on one.
func CollapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
