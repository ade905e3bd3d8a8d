package index

import (
	"strings"
	"unicode"

	"iltransform/internal/lexer"
)

// SanitizeIdentifier turns an arbitrary name into a valid identifier:
// hyphens become underscores, every other non-identifier character becomes
// a double underscore, and a leading digit gets an underscore prefix.
func SanitizeIdentifier(name string) string {
	var sb strings.Builder
	for _, r := range name {
		switch {
		case r == '-':
			sb.WriteByte('_')
		case lexer.IsIdentifierChar(r):
			sb.WriteRune(r)
		default:
			sb.WriteString("__")
		}
	}
	out := sb.String()
	if out != "" && unicode.IsDigit([]rune(out)[0]) {
		out = "_" + out
	}
	return out
}
