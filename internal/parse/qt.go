package parse

import (
	"sort"
	"strings"

	"github.com/phobologic/qmlscan/internal/symbols"
)

// Qt extends C++ with keywords and macros that moc understands but a plain
// C++ grammar does not. Before parsing, they are overwritten with spaces (or,
// for signal sections, with "public") so the grammar sees ordinary C++ and
// every byte offset stays valid. What was removed is kept in qtMarkers.

// qtWords are removed outright. A non-zero flag marks the next member
// declaration.
var qtWords = map[string]symbols.FunctionFlags{
	"Q_OBJECT":           0,
	"Q_GADGET":           0,
	"Q_NAMESPACE":        0,
	"Q_INVOKABLE":        symbols.Invokable,
	"Q_SCRIPTABLE":       0,
	"Q_SIGNAL":           symbols.Signal,
	"Q_SLOT":             symbols.Slot,
	"Q_DECL_OVERRIDE":    0,
	"Q_DECL_FINAL":       0,
	"Q_DECL_EXPORT":      0,
	"Q_DECL_IMPORT":      0,
	"Q_DECL_CONSTEXPR":   0,
	"Q_DECL_NOEXCEPT":    0,
	"QT_BEGIN_NAMESPACE": 0,
	"QT_END_NAMESPACE":   0,
	"Q_EMIT":             0,
	"emit":               0,
}

// qtMacros are removed together with their parenthesized argument list.
var qtMacros = map[string]struct{}{
	"Q_PROPERTY":                    {},
	"Q_PRIVATE_PROPERTY":            {},
	"Q_ENUMS":                       {},
	"Q_ENUM":                        {},
	"Q_ENUM_NS":                     {},
	"Q_FLAGS":                       {},
	"Q_FLAG":                        {},
	"Q_FLAG_NS":                     {},
	"Q_CLASSINFO":                   {},
	"Q_INTERFACES":                  {},
	"Q_REVISION":                    {},
	"Q_DECLARE_FLAGS":               {},
	"Q_DECLARE_PRIVATE":             {},
	"Q_DECLARE_PUBLIC":              {},
	"Q_DISABLE_COPY":                {},
	"Q_DISABLE_COPY_MOVE":           {},
	"Q_PRIVATE_SLOT":                {},
	"Q_PLUGIN_METADATA":             {},
	"Q_DECLARE_METATYPE":            {},
	"Q_DECLARE_INTERFACE":           {},
	"Q_DECLARE_OPERATORS_FOR_FLAGS": {},
}

// qtMacro is one removed macro invocation.
type qtMacro struct {
	Name string
	Pos  int
	// Args is the text between the parentheses.
	Args string
	// ArgsPos is the offset of Args in the source.
	ArgsPos int
}

type qtMarker struct {
	pos   int
	flags symbols.FunctionFlags
}

// qtMarkers records what blankQt removed.
type qtMarkers struct {
	// sections maps the offset of an access keyword to the kind of section
	// it opens ("public slots:", "signals:").
	sections map[int]symbols.FunctionFlags
	// next holds Q_INVOKABLE, Q_SIGNAL and Q_SLOT positions in order.
	next   []qtMarker
	macros []qtMacro
	// words are the identifiers that were blanked, so the identifier table
	// still knows about them.
	words []string
}

// nextFlags returns the flags of markers in [from, to).
func (m *qtMarkers) nextFlags(from, to int) symbols.FunctionFlags {
	var flags symbols.FunctionFlags
	i := sort.Search(len(m.next), func(i int) bool { return m.next[i].pos >= from })
	for ; i < len(m.next) && m.next[i].pos < to; i++ {
		flags |= m.next[i].flags
	}
	return flags
}

// blankQt returns a copy of source with Qt keywords and macros replaced.
func blankQt(source []byte) ([]byte, *qtMarkers) {
	out := make([]byte, len(source))
	copy(out, source)
	m := &qtMarkers{sections: make(map[int]symbols.FunctionFlags)}

	s := &cppScanner{src: source}
	var prev token
	for {
		tok, ok := s.next()
		if !ok {
			break
		}
		if tok.kind != tokIdent {
			prev = tok
			continue
		}
		word := string(source[tok.start:tok.end])

		switch {
		case word == "signals" || word == "Q_SIGNALS":
			if !s.followedByColon(tok.end) {
				break
			}
			access := "public"
			if prev.kind == tokIdent && isAccess(string(source[prev.start:prev.end])) {
				// "protected Q_SIGNALS:" is not valid, but keep the
				// written access keyword if someone tries.
				blank(out, tok.start, tok.end)
				m.sections[prev.start] = symbols.Signal
			} else {
				copy(out[tok.start:tok.end], padRight(access, tok.end-tok.start))
				m.sections[tok.start] = symbols.Signal
			}
			m.words = append(m.words, word)
			continue

		case word == "slots" || word == "Q_SLOTS":
			if prev.kind != tokIdent || !isAccess(string(source[prev.start:prev.end])) {
				break
			}
			blank(out, tok.start, tok.end)
			m.sections[prev.start] = symbols.Slot
			m.words = append(m.words, word)
			continue
		}

		if flags, ok := qtWords[word]; ok {
			blank(out, tok.start, tok.end)
			if flags != 0 {
				m.next = append(m.next, qtMarker{pos: tok.start, flags: flags})
			}
			m.words = append(m.words, word)
			continue
		}

		if _, ok := qtMacros[word]; ok {
			open, end, found := s.parenRange(tok.end)
			if !found {
				prev = tok
				continue
			}
			m.macros = append(m.macros, qtMacro{
				Name:    word,
				Pos:     tok.start,
				Args:    string(source[open+1 : end]),
				ArgsPos: open + 1,
			})
			blank(out, tok.start, end+1)
			s.pos = end + 1
			m.words = append(m.words, word)
			prev = token{}
			continue
		}

		prev = tok
	}
	return out, m
}

func isAccess(word string) bool {
	return word == "public" || word == "protected" || word == "private"
}

// blank overwrites out[start:end] with spaces, keeping line breaks.
func blank(out []byte, start, end int) {
	for i := start; i < end; i++ {
		if out[i] != '\n' && out[i] != '\r' {
			out[i] = ' '
		}
	}
}

func padRight(s string, n int) []byte {
	if len(s) >= n {
		return []byte(s[:n])
	}
	return []byte(s + strings.Repeat(" ", n-len(s)))
}

type tokenKind int

const (
	tokNone tokenKind = iota
	tokIdent
	tokPunct
	tokLiteral
)

type token struct {
	kind       tokenKind
	start, end int
}

// cppScanner splits C++ source into identifiers, literals and punctuation,
// skipping comments and preprocessor line continuations. It is only precise
// enough to find Qt keywords outside of comments and literals.
type cppScanner struct {
	src []byte
	pos int
}

func (s *cppScanner) next() (token, bool) {
	s.skipSpaceAndComments()
	if s.pos >= len(s.src) {
		return token{}, false
	}
	start := s.pos
	c := s.src[s.pos]
	switch {
	case isIdentStart(c):
		for s.pos < len(s.src) && isIdentPart(s.src[s.pos]) {
			s.pos++
		}
		// Raw string literals and prefixed literals: R"(..)", u8"..", L'x'.
		if s.pos < len(s.src) && (s.src[s.pos] == '"' || s.src[s.pos] == '\'') && isLiteralPrefix(string(s.src[start:s.pos])) {
			s.skipLiteral(strings.HasSuffix(string(s.src[start:s.pos]), "R"))
			return token{kind: tokLiteral, start: start, end: s.pos}, true
		}
		return token{kind: tokIdent, start: start, end: s.pos}, true
	case c == '"' || c == '\'':
		s.skipLiteral(false)
		return token{kind: tokLiteral, start: start, end: s.pos}, true
	case c >= '0' && c <= '9':
		for s.pos < len(s.src) && (isIdentPart(s.src[s.pos]) || s.src[s.pos] == '.' || s.src[s.pos] == '\'') {
			s.pos++
		}
		return token{kind: tokLiteral, start: start, end: s.pos}, true
	default:
		s.pos++
		return token{kind: tokPunct, start: start, end: s.pos}, true
	}
}

func (s *cppScanner) skipSpaceAndComments() {
	for s.pos < len(s.src) {
		c := s.src[s.pos]
		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\f' || c == '\v':
			s.pos++
		case c == '\\' && s.pos+1 < len(s.src) && (s.src[s.pos+1] == '\n' || s.src[s.pos+1] == '\r'):
			s.pos += 2
		case c == '/' && s.pos+1 < len(s.src) && s.src[s.pos+1] == '/':
			for s.pos < len(s.src) && s.src[s.pos] != '\n' {
				s.pos++
			}
		case c == '/' && s.pos+1 < len(s.src) && s.src[s.pos+1] == '*':
			end := strings.Index(string(s.src[s.pos+2:]), "*/")
			if end < 0 {
				s.pos = len(s.src)
			} else {
				s.pos += end + 4
			}
		default:
			return
		}
	}
}

// skipLiteral advances past the string or character literal starting at
// s.pos.
func (s *cppScanner) skipLiteral(raw bool) {
	quote := s.src[s.pos]
	if raw && quote == '"' {
		open := strings.IndexByte(string(s.src[s.pos:]), '(')
		if open < 0 {
			s.pos = len(s.src)
			return
		}
		delim := ")" + string(s.src[s.pos+1:s.pos+open]) + `"`
		end := strings.Index(string(s.src[s.pos+open:]), delim)
		if end < 0 {
			s.pos = len(s.src)
			return
		}
		s.pos += open + end + len(delim)
		return
	}
	s.pos++
	for s.pos < len(s.src) {
		c := s.src[s.pos]
		switch c {
		case '\\':
			s.pos += 2
			continue
		case quote:
			s.pos++
			return
		case '\n':
			// Unterminated literal.
			return
		}
		s.pos++
	}
	if s.pos > len(s.src) {
		s.pos = len(s.src)
	}
}

// followedByColon reports whether the next token after pos is a single ':'.
func (s *cppScanner) followedByColon(pos int) bool {
	peek := &cppScanner{src: s.src, pos: pos}
	tok, ok := peek.next()
	if !ok || tok.kind != tokPunct || s.src[tok.start] != ':' {
		return false
	}
	return tok.end >= len(s.src) || s.src[tok.end] != ':'
}

// parenRange finds the parenthesized argument list that starts at the next
// token after pos and returns the offsets of its parentheses.
func (s *cppScanner) parenRange(pos int) (open, end int, ok bool) {
	peek := &cppScanner{src: s.src, pos: pos}
	tok, found := peek.next()
	if !found || tok.kind != tokPunct || s.src[tok.start] != '(' {
		return 0, 0, false
	}
	depth := 1
	for {
		t, found := peek.next()
		if !found {
			return 0, 0, false
		}
		if t.kind != tokPunct {
			continue
		}
		switch s.src[t.start] {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return tok.start, t.start, true
			}
		}
	}
}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || c >= 0x80
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || (c >= '0' && c <= '9')
}

func isLiteralPrefix(p string) bool {
	switch p {
	case "L", "u", "U", "u8", "R", "LR", "uR", "UR", "u8R":
		return true
	}
	return false
}
