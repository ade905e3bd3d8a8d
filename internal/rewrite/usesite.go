package rewrite

import (
	"strings"

	"iltransform/internal/analysis"
	"iltransform/internal/diag"
	"iltransform/internal/domain"
	"iltransform/internal/lexer"
)

// Mode selects which use sites a qualified rename may touch
type Mode int

const (
	// NamespaceUse accepts namespace declarations and namespace path segments
	NamespaceUse Mode = iota
	// TypeUse accepts type references
	TypeUse
)

func (m Mode) String() string {
	if m == TypeUse {
		return "type"
	}
	return "namespace"
}

type verdict int

const (
	ambiguous verdict = iota
	accept
	reject
)

var (
	csTypeDeclKeywords = []string{"class", "struct", "interface", "enum", "record"}

	// IL instructions and clauses whose operand is a type token
	ilTypeOperators = []string{"box", "unbox", "isinst", "castclass", "ldtoken", "initobj", "stobj", "ldobj", "newarr", "sizeof", "catch"}

	// A name preceded by one of these is a variable or member name
	scalarKeywords = []string{"int", "int32", "int64", "long", "string", "bool", "void", "var"}
)

// Classifier decides, token by token, whether an identifier occurrence is a
// use site a rename should touch. Undecidable occurrences are logged and left alone.
type Classifier struct {
	path    string
	dialect domain.Dialect
	log     diag.Logger
}

// NewClassifier creates a classifier for the file at path
func NewClassifier(path string, log diag.Logger) *Classifier {
	return &Classifier{path: path, dialect: domain.DialectOf(path), log: log}
}

// Rename replaces the occurrences of from in line that mode accepts with to.
// lineNo is only used for diagnostics.
func (c *Classifier) Rename(line string, lineNo int, mode Mode, from, to string) (string, bool) {
	if from == "" || !strings.Contains(line, strings.SplitN(from, ".", 2)[0]) {
		return line, false
	}
	tokens := lexer.Tokenize(line)
	var out []lexer.Token
	changed := false

	for i := 0; i < len(tokens); i++ {
		var end int
		var v verdict
		switch mode {
		case NamespaceUse:
			end = matchPath(tokens, i, from)
			if end < 0 {
				if tokens[i].Kind == lexer.QuotedLiteral && tokens[i].Text == "'"+from+"'" && c.dialect == domain.IL {
					if v = c.classifyNamespace(tokens, i, i+1); v == accept {
						out = append(out, lexer.Token{Text: "'" + to + "'", Kind: lexer.QuotedLiteral})
						changed = true
						continue
					}
				}
				out = append(out, tokens[i])
				continue
			}
			v = c.classifyNamespace(tokens, i, end)
		case TypeUse:
			if !tokens[i].IsIdent(from) {
				out = append(out, tokens[i])
				continue
			}
			end = i + 1
			v = c.classifyType(tokens, i)
		}

		switch v {
		case accept:
			out = append(out, lexer.Token{Text: to, Kind: lexer.Identifier})
			changed = true
		case ambiguous:
			c.log.Warn("ambiguous use site left unchanged",
				diag.F("file", c.path), diag.F("line", lineNo+1), diag.F("mode", mode),
				diag.F("token", from), diag.F("text", strings.TrimSpace(line)))
			out = append(out, tokens[i:end]...)
		default:
			out = append(out, tokens[i:end]...)
		}
		i = end - 1
	}

	if !changed {
		return line, false
	}
	return lexer.Join(out), true
}

// matchPath reports the end of the token run starting at i that spells the
// dotted name exactly, or -1
func matchPath(tokens []lexer.Token, i int, name string) int {
	k := i
	for n, segment := range strings.Split(name, ".") {
		if n > 0 {
			if k >= len(tokens) || !tokens[k].Is(lexer.Other, ".") {
				return -1
			}
			k++
		}
		if k >= len(tokens) || !tokens[k].IsIdent(segment) {
			return -1
		}
		k++
	}
	return k
}

func (c *Classifier) classifyNamespace(tokens []lexer.Token, start, end int) verdict {
	first := lexer.NewCursor(tokens, start)
	last := lexer.NewCursor(tokens, end-1)

	// Tail of a longer path: a different namespace
	if prev, ok := first.PrevAdjacent(); ok && prev.Is(lexer.Other, ".") {
		return reject
	}
	if isPathSegment(tokens, end-1) {
		return accept
	}
	if prev, ok := first.PeekPrev(1); ok && prev.IsIdent("namespace") {
		return accept
	}
	if first.PrecededBy("using") || first.PrecededBy("using", "static") {
		if next, ok := last.PeekNext(1); ok && next.Is(lexer.Other, ";") {
			return accept
		}
	}
	if c.isTypeDeclaration(first) {
		return reject
	}
	return ambiguous
}

func (c *Classifier) classifyType(tokens []lexer.Token, i int) verdict {
	cur := lexer.NewCursor(tokens, i)
	prevAdj, _ := cur.PrevAdjacent()
	prev, _ := cur.PeekPrev(1)
	next, _ := cur.PeekNext(1)

	switch {
	// Already qualified, or a member of something else
	case prevAdj.Is(lexer.Other, "."), prevAdj.Is(lexer.Special, lexer.MemberAccess):
		return reject
	case c.isTypeDeclaration(cur):
		return reject
	case isPathSegment(tokens, i):
		return reject
	case c.dialect == domain.IL && prev.IsIdent("class", "valuetype"):
		return accept
	// Type from another assembly: [asm]Foo
	case prevAdj.Is(lexer.Other, "]"):
		return reject
	case c.isMemberAccess(tokens, i):
		return accept
	case c.dialect == domain.IL && isInheritanceType(cur):
		return accept
	case c.dialect == domain.IL && prev.IsIdent(ilTypeOperators...):
		return accept
	case c.dialect == domain.CSharp && prev.IsIdent("new"):
		return accept
	case c.dialect == domain.CSharp && cur.PrecededBy("typeof", lexer.OpenParen):
		return accept
	case next.Is(lexer.Special, lexer.OpenParen):
		return reject
	case prev.IsIdent(scalarKeywords...):
		return reject
	// Declaration of a variable, field or parameter: Foo x
	case c.dialect == domain.CSharp && next.Kind == lexer.Identifier:
		return accept
	}
	return ambiguous
}

// isTypeDeclaration reports whether the cursor sits on the name of a type declaration
func (c *Classifier) isTypeDeclaration(cur *lexer.Cursor) bool {
	if c.dialect == domain.IL {
		tok, ok := cur.MatchBackwardThrough(func(t lexer.Token) bool {
			return t.Kind == lexer.Whitespace ||
				(t.Kind == lexer.Identifier && (t.Text == "nested" || analysis.IsILTypeKeyword(t.Text)))
		})
		return ok && tok.Is(lexer.Special, lexer.ClassDirective)
	}
	prev, ok := cur.PeekPrev(1)
	return ok && prev.IsIdent(csTypeDeclKeywords...)
}

// isMemberAccess reports Foo::Member and, for IL, the nested type separator Foo/Nested
func (c *Classifier) isMemberAccess(tokens []lexer.Token, i int) bool {
	if i+2 >= len(tokens) {
		return false
	}
	op, member := tokens[i+1], tokens[i+2]
	if !op.Is(lexer.Special, lexer.MemberAccess) && !(c.dialect == domain.IL && op.Is(lexer.Other, "/")) {
		return false
	}
	return member.Kind == lexer.Identifier || member.Kind == lexer.QuotedLiteral || member.Is(lexer.Special, lexer.CtorName)
}

// isPathSegment reports whether tokens[i] is followed by ".Identifier"
func isPathSegment(tokens []lexer.Token, i int) bool {
	return i+2 < len(tokens) && tokens[i+1].Is(lexer.Other, ".") && tokens[i+2].Kind == lexer.Identifier
}

// isInheritanceType reports whether the cursor is in an extends/implements
// list, walking back through names, whitespace and commas only.
func isInheritanceType(cur *lexer.Cursor) bool {
	found := false
	cur.MatchBackwardThrough(func(t lexer.Token) bool {
		if t.IsIdent("extends", "implements") {
			found = true
			return false
		}
		return t.Kind == lexer.Whitespace || t.Kind == lexer.Identifier || t.Is(lexer.Other, ",")
	})
	return found
}
