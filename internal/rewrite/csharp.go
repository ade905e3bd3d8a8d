package rewrite

import (
	"regexp"
	"strings"

	"iltransform/internal/domain"
	"iltransform/internal/lexer"
	"iltransform/internal/textio"
)

const (
	csTestEntryName = "TestEntryPoint"
	csFactLine      = "[Fact]"
	csXunitUsing    = "using Xunit;"
)

var (
	csAccessKeywords = []string{"public", "private", "internal", "protected"}
	csXunitPattern   = regexp.MustCompile(`^\s*using\s+Xunit\s*;`)
)

// csharpFirstModifier is the insertion point for a missing access modifier:
// the first word of the declaration, after any attribute list on the same line
func csharpFirstModifier(tokens []lexer.Token) int {
	depth := 0
	for i, t := range tokens {
		switch {
		case t.Kind == lexer.Other:
			depth += strings.Count(t.Text, "[") - strings.Count(t.Text, "]")
		case t.Kind == lexer.Identifier && depth == 0:
			return i
		}
	}
	return -1
}

// addCSharpFact renames the entry method to the test entry name and puts the
// test attribute directly above it
func addCSharpFact(doc *Document) bool {
	info := doc.Info()
	if info.HasFactAttribute {
		return false
	}
	mainLine := int(info.MainTokenMethodLine)
	if info.MainMethodName != csTestEntryName {
		renamed, ok := renameMethod(doc.Line(mainLine), info.MainMethodName, csTestEntryName)
		if !ok {
			return false
		}
		doc.Set(mainLine, renamed)
		info.MainMethodName = csTestEntryName
	}
	at := int(info.FirstMainMethodLine)
	doc.Insert(at, textio.Indent(doc.Line(at))+csFactLine)
	info.HasFactAttribute = true
	return true
}

// renameMethod renames the first identifier called name that is followed by '('
func renameMethod(line, name, to string) (string, bool) {
	tokens := lexer.Tokenize(line)
	for i, t := range tokens {
		if !t.IsIdent(name) {
			continue
		}
		if next, ok := lexer.NewCursor(tokens, i).PeekNext(1); ok && next.Is(lexer.Special, lexer.OpenParen) {
			tokens[i].Text = to
			return lexer.Join(tokens), true
		}
	}
	return line, false
}

// promoteCSharp makes the entry method, its type and the base types declared
// in the same file public
func promoteCSharp(doc *Document, force bool) {
	info := doc.Info()
	promote := func(i int) {
		if out, ok := promoteAccess(doc.Line(i), csAccessKeywords, force, csharpFirstModifier); ok {
			doc.Set(i, out)
		}
	}

	promote(int(info.FirstMainMethodLine))
	if info.TestClassLine.Found() {
		promote(int(info.TestClassLine))
	}
	for _, base := range info.TestClassBases {
		name := baseTypeName(base)
		if name == "" {
			continue
		}
		decl := regexp.MustCompile(`\b(?:class|struct|interface|record)\s+` + regexp.QuoteMeta(name) + `\b`)
		for i, line := range doc.Lines() {
			if decl.MatchString(codeText(line)) {
				promote(i)
			}
		}
	}
}

// synthesizeCSharpType wraps the entry method in a new class
func synthesizeCSharpType(doc *Document, name string) bool {
	info := doc.Info()
	start := int(info.FirstMainMethodLine)
	for start > 0 && strings.HasPrefix(strings.TrimSpace(doc.Line(start-1)), "[") {
		start--
	}
	end := findBlockEnd(doc.Lines(), int(info.LastMainMethodLine))
	if end < 0 {
		return false
	}
	indent := textio.Indent(doc.Line(start))
	doc.Insert(end+1, indent+"}")
	doc.Insert(start, indent+"public class "+name, indent+"{")
	setSynthesizedType(info, start, name)
	return true
}

func setSynthesizedType(info *domain.SourceInfo, line int, name string) {
	info.TestClassLine = domain.Line(line)
	info.TestClassName = name
	if info.TestClassNamespace != "" {
		info.TestClassName = info.TestClassNamespace + "." + name
	}
}

// addXunitUsing imports the test framework after the last using directive,
// or after the header comment block when the file has none
func addXunitUsing(doc *Document) bool {
	for _, line := range doc.Lines() {
		if csXunitPattern.MatchString(line) {
			return false
		}
	}
	info := doc.Info()
	switch {
	case info.LastUsingLine.Found():
		at := int(info.LastUsingLine) + 1
		doc.Insert(at, csXunitUsing)
		info.LastUsingLine = domain.Line(at)
	case info.LastHeaderCommentLine.Found():
		at := int(info.LastHeaderCommentLine) + 1
		doc.Insert(at, csXunitUsing, "")
		info.LastUsingLine = domain.Line(at)
	default:
		doc.Insert(0, csXunitUsing, "")
		info.LastUsingLine = 0
	}
	return true
}
