package lexer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func kinds(tokens []Token) []Kind {
	out := make([]Kind, len(tokens))
	for i, t := range tokens {
		out[i] = t.Kind
	}
	return out
}

func texts(tokens []Token) []string {
	out := make([]string, len(tokens))
	for i, t := range tokens {
		out[i] = t.Text
	}
	return out
}

func TestIsIdentifierChar(t *testing.T) {
	for _, r := range "aZ09_@$é" {
		assert.True(t, IsIdentifierChar(r), "%q", r)
	}
	for _, r := range " .:(<-'\"/" {
		assert.False(t, IsIdentifierChar(r), "%q", r)
	}
}

func TestTokenize(t *testing.T) {
	tests := []struct {
		name  string
		line  string
		texts []string
		kinds []Kind
	}{
		{
			name:  "declaration",
			line:  "  Foo x = new Foo();",
			texts: []string{"  ", "Foo", " ", "x", " ", "=", " ", "new", " ", "Foo", "(", ")", ";"},
			kinds: []Kind{Whitespace, Identifier, Whitespace, Identifier, Whitespace, Other, Whitespace, Identifier, Whitespace, Identifier, Special, Special, Other},
		},
		{
			name:  "il member access",
			line:  "newobj instance void Bar.Foo::.ctor()",
			texts: []string{"newobj", " ", "instance", " ", "void", " ", "Bar", ".", "Foo", "::", ".ctor", "(", ")"},
			kinds: []Kind{Identifier, Whitespace, Identifier, Whitespace, Identifier, Whitespace, Identifier, Other, Identifier, Special, Special, Special, Special},
		},
		{
			name:  "class directive",
			line:  ".class public Foo",
			texts: []string{".class", " ", "public", " ", "Foo"},
			kinds: []Kind{Special, Whitespace, Identifier, Whitespace, Identifier},
		},
		{
			name:  "comment consumes rest",
			line:  "x; // Foo(\"a\")",
			texts: []string{"x", ";", " ", "// Foo(\"a\")"},
			kinds: []Kind{Identifier, Other, Whitespace, Comment},
		},
		{
			name:  "unterminated quote runs to end",
			line:  "ldstr \"Foo bar",
			texts: []string{"ldstr", " ", "\"Foo bar"},
			kinds: []Kind{Identifier, Whitespace, QuotedLiteral},
		},
		{
			name:  "single quoted il name",
			line:  ".namespace 'Bar'",
			texts: []string{".", "namespace", " ", "'Bar'"},
			kinds: []Kind{Other, Identifier, Whitespace, QuotedLiteral},
		},
		{
			name:  "other run stops at special",
			line:  "a=>(b)",
			texts: []string{"a", "=>", "(", "b", ")"},
			kinds: []Kind{Identifier, Other, Special, Identifier, Special},
		},
		{
			name:  "dot class prefix of longer word is not special",
			line:  ".classy",
			texts: []string{".", "classy"},
			kinds: []Kind{Other, Identifier},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tokens := Tokenize(tt.line)
			assert.Equal(t, tt.texts, texts(tokens))
			assert.Equal(t, tt.kinds, kinds(tokens))
			assert.Equal(t, tt.line, Join(tokens))
		})
	}
}

func TestReplaceIdentifiers(t *testing.T) {
	assert.Equal(t, "Bar x = new Bar(); FooBar Foo_", ReplaceIdentifiers("Foo x = new Foo(); FooBar Foo_", "Foo", "Bar"))
	assert.Equal(t, "// Bar", ReplaceIdentifiers("// Foo", "Foo", "Bar"))
	assert.Equal(t, "nothing", ReplaceIdentifiers("nothing", "Foo", "Bar"))
}

func TestCursor(t *testing.T) {
	tokens := Tokenize("extends Base, Foo")
	c := NewCursor(tokens, len(tokens)-1)
	require.Equal(t, "Foo", c.Current().Text)

	prev, ok := c.PeekPrev(1)
	require.True(t, ok)
	assert.Equal(t, ",", prev.Text)

	prev, ok = c.PeekPrev(2)
	require.True(t, ok)
	assert.Equal(t, "Base", prev.Text)

	_, ok = c.PeekNext(1)
	assert.False(t, ok)

	stop, ok := c.MatchBackwardThrough(func(tok Token) bool {
		return tok.Kind == Whitespace || tok.Text == "," || tok.Is(Identifier, "Base")
	})
	require.True(t, ok)
	assert.Equal(t, "extends", stop.Text)

	assert.True(t, c.PrecededBy("Base", ","))
	assert.False(t, c.PrecededBy("extends"))
}
