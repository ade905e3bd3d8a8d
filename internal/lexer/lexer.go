// Package lexer splits single source lines into typed spans.
//
// It is not a full lexer for either dialect: there is no string escape
// handling, no block comment tracking and no nesting awareness. It only
// produces enough structure for anchor detection and use-site classification.
package lexer

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Kind classifies a token span
type Kind int

const (
	Whitespace Kind = iota
	Comment
	QuotedLiteral
	Identifier
	Special
	Other
)

func (k Kind) String() string {
	switch k {
	case Whitespace:
		return "Whitespace"
	case Comment:
		return "Comment"
	case QuotedLiteral:
		return "QuotedLiteral"
	case Identifier:
		return "Identifier"
	case Special:
		return "Special"
	case Other:
		return "Other"
	default:
		return "Unknown"
	}
}

// Token is one span of a line
type Token struct {
	Text string
	Kind Kind
}

// Is reports whether the token has the given kind and text
func (t Token) Is(kind Kind, text string) bool {
	return t.Kind == kind && t.Text == text
}

// IsIdent reports whether the token is an identifier equal to one of names
func (t Token) IsIdent(names ...string) bool {
	if t.Kind != Identifier {
		return false
	}
	for _, name := range names {
		if t.Text == name {
			return true
		}
	}
	return false
}

// Special token spellings, matched by exact prefix before identifier runs.
const (
	ClassDirective = ".class"
	CtorName       = ".ctor"
	MemberAccess   = "::"
	OpenParen      = "("
	CloseParen     = ")"
)

var specialTokens = []string{ClassDirective, CtorName, MemberAccess, OpenParen, CloseParen}

// IsIdentifierChar reports whether r can appear in an identifier of either dialect.
// '@' covers C# verbatim identifiers and '$' covers compiler-generated IL names.
func IsIdentifierChar(r rune) bool {
	return r == '_' || r == '@' || r == '$' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\r' || c == '\v' || c == '\f'
}

func isQuote(c byte) bool {
	return c == '"' || c == '\''
}

func matchSpecial(s string) string {
	for _, special := range specialTokens {
		if !strings.HasPrefix(s, special) {
			continue
		}
		// Keyword-like specials must end at an identifier boundary.
		if special[0] == '.' && len(s) > len(special) {
			r, _ := utf8.DecodeRuneInString(s[len(special):])
			if IsIdentifierChar(r) {
				continue
			}
		}
		return special
	}
	return ""
}

// Tokenize splits line into an ordered list of typed spans. Concatenating
// the token texts always yields the original line.
func Tokenize(line string) []Token {
	var tokens []Token
	i := 0
	for i < len(line) {
		c := line[i]
		switch {
		case isQuote(c):
			end := strings.IndexByte(line[i+1:], c)
			if end < 0 {
				end = len(line)
			} else {
				end = i + 1 + end + 1
			}
			tokens = append(tokens, Token{Text: line[i:end], Kind: QuotedLiteral})
			i = end
		case strings.HasPrefix(line[i:], "//"):
			tokens = append(tokens, Token{Text: line[i:], Kind: Comment})
			i = len(line)
		case isSpace(c):
			start := i
			for i < len(line) && isSpace(line[i]) {
				i++
			}
			tokens = append(tokens, Token{Text: line[start:i], Kind: Whitespace})
		default:
			if special := matchSpecial(line[i:]); special != "" {
				tokens = append(tokens, Token{Text: special, Kind: Special})
				i += len(special)
				continue
			}
			start := i
			r, w := utf8.DecodeRuneInString(line[i:])
			if IsIdentifierChar(r) {
				i += w
				for i < len(line) {
					r, w = utf8.DecodeRuneInString(line[i:])
					if !IsIdentifierChar(r) {
						break
					}
					i += w
				}
				tokens = append(tokens, Token{Text: line[start:i], Kind: Identifier})
				continue
			}
			i += w
			for i < len(line) {
				c = line[i]
				if isSpace(c) || isQuote(c) || strings.HasPrefix(line[i:], "//") || matchSpecial(line[i:]) != "" {
					break
				}
				r, w = utf8.DecodeRuneInString(line[i:])
				if IsIdentifierChar(r) {
					break
				}
				i += w
			}
			tokens = append(tokens, Token{Text: line[start:i], Kind: Other})
		}
	}
	return tokens
}

// Join concatenates token texts back into a line
func Join(tokens []Token) string {
	var sb strings.Builder
	for _, t := range tokens {
		sb.WriteString(t.Text)
	}
	return sb.String()
}

// ReplaceIdentifiers replaces every identifier run equal to from with to,
// regardless of where it appears in the line (comments and literals included).
func ReplaceIdentifiers(line, from, to string) string {
	if from == "" || !strings.Contains(line, from) {
		return line
	}
	var sb strings.Builder
	i := 0
	for {
		j := strings.Index(line[i:], from)
		if j < 0 {
			sb.WriteString(line[i:])
			break
		}
		j += i
		end := j + len(from)
		before, _ := utf8.DecodeLastRuneInString(line[:j])
		after, _ := utf8.DecodeRuneInString(line[end:])
		boundedLeft := j == 0 || !IsIdentifierChar(before)
		boundedRight := end == len(line) || !IsIdentifierChar(after)
		sb.WriteString(line[i:j])
		if boundedLeft && boundedRight {
			sb.WriteString(to)
		} else {
			sb.WriteString(from)
		}
		i = end
	}
	return sb.String()
}
