package rewrite

import (
	"strings"

	"iltransform/internal/lexer"
)

// codeText drops comments and quoted literals so their braces are not counted
func codeText(line string) string {
	var sb strings.Builder
	for _, t := range lexer.Tokenize(line) {
		if t.Kind != lexer.Comment && t.Kind != lexer.QuotedLiteral {
			sb.WriteString(t.Text)
		}
	}
	return sb.String()
}

// findBlockEnd returns the line holding the brace that closes the first
// block opened at or after line from, or -1
func findBlockEnd(lines []string, from int) int {
	depth := 0
	opened := false
	for i := from; i < len(lines); i++ {
		for _, c := range codeText(lines[i]) {
			switch c {
			case '{':
				depth++
				opened = true
			case '}':
				depth--
				if opened && depth == 0 {
					return i
				}
			}
		}
	}
	return -1
}

// findOpeningBrace returns the first line at or after from, within limit lines, that opens a block
func findOpeningBrace(lines []string, from, limit int) int {
	for i := from; i < len(lines) && i < from+limit; i++ {
		if strings.Contains(codeText(lines[i]), "{") {
			return i
		}
	}
	return -1
}

// lastNonBlank returns the index of the last line holding text, or -1
func lastNonBlank(lines []string) int {
	for i := len(lines) - 1; i >= 0; i-- {
		if strings.TrimSpace(lines[i]) != "" {
			return i
		}
	}
	return -1
}

// promoteAccess rewrites the access modifiers on a declaration line to public.
// Modifiers are looked for before the first '('. With no modifier present the
// line is only changed when force is set, by inserting public at the token
// index returned by insertAt (a negative index means no place was found).
func promoteAccess(line string, access []string, force bool, insertAt func([]lexer.Token) int) (string, bool) {
	tokens := lexer.Tokenize(line)
	limit := len(tokens)
	for i, t := range tokens {
		if t.Is(lexer.Special, lexer.OpenParen) {
			limit = i
			break
		}
	}

	var found []int
	for i := 0; i < limit; i++ {
		if tokens[i].IsIdent(access...) {
			found = append(found, i)
		}
	}

	switch {
	case len(found) == 1 && tokens[found[0]].Text == "public":
		return line, false
	case len(found) == 0:
		if !force {
			return line, false
		}
		at := insertAt(tokens[:limit])
		if at < 0 {
			return line, false
		}
		tokens = append(tokens[:at], append([]lexer.Token{
			{Text: "public", Kind: lexer.Identifier},
			{Text: " ", Kind: lexer.Whitespace},
		}, tokens[at:]...)...)
		return lexer.Join(tokens), true
	}

	tokens[found[0]] = lexer.Token{Text: "public", Kind: lexer.Identifier}
	drop := make(map[int]bool)
	for _, i := range found[1:] {
		drop[i] = true
		if i+1 < len(tokens) && tokens[i+1].Kind == lexer.Whitespace {
			drop[i+1] = true
		}
	}
	var kept []lexer.Token
	for i, t := range tokens {
		if !drop[i] {
			kept = append(kept, t)
		}
	}
	out := lexer.Join(kept)
	return out, out != line
}

// baseTypeName reduces a base list entry like "A.B.Foo<int>" or "[asm]Ns.Foo" to "Foo".
// Types from another assembly yield "".
func baseTypeName(base string) string {
	if strings.HasPrefix(base, "[") {
		return ""
	}
	if lt := strings.IndexByte(base, '<'); lt >= 0 {
		base = base[:lt]
	}
	if i := strings.LastIndexAny(base, "./"); i >= 0 {
		base = base[i+1:]
	}
	return strings.Trim(base, "'")
}
