package analysis

import (
	"fmt"
	"regexp"
	"strings"

	"iltransform/internal/domain"
)

var (
	// call void [System.Runtime]System.Environment::Exit(int32)
	ilExitPattern      = regexp.MustCompile(`\bSystem\.Environment\s*::\s*Exit\s*\(`)
	ilEntryPattern     = regexp.MustCompile(`^\s*\.entrypoint\b`)
	ilMethodPattern    = regexp.MustCompile(`^\s*\.method\b`)
	ilDirectivePattern = regexp.MustCompile(`^\s*(\.[a-z]+)\b`)
)

// ilTypeKeywords may precede the type name in a .class header
var ilTypeKeywords = map[string]bool{
	"public": true, "private": true, "sealed": true, "value": true, "enum": true,
	"auto": true, "ansi": true, "beforefieldinit": true, "abstract": true,
	"sequential": true, "explicit": true, "interface": true, "serializable": true,
	"import": true, "specialname": true, "rtspecialname": true, "unicode": true,
	"autochar": true, "windowsruntime": true, "static": true,
}

// IsILTypeKeyword reports whether word is a .class header attribute rather than the type name
func IsILTypeKeyword(word string) bool {
	return ilTypeKeywords[word]
}

// AnalyzeIL extracts facts from a low-level dialect source file
func AnalyzeIL(path string, lines []string, info *domain.SourceInfo) error {
	code := stripILComments(lines)

	for _, line := range code {
		if ilExitPattern.MatchString(line) {
			info.HasExit = true
			break
		}
	}

	var entries []int
	for i, line := range code {
		if ilEntryPattern.MatchString(line) {
			entries = append(entries, i)
		}
	}
	switch {
	case len(entries) == 0:
		return ErrNoEntryPoint
	case len(entries) > 1:
		return fmt.Errorf("%w: lines %d and %d", ErrMultipleEntryPoints, entries[0]+1, entries[1]+1)
	}
	entry := entries[0]

	methodLine := -1
	for i := entry - 1; i >= 0; i-- {
		if ilEntryPattern.MatchString(code[i]) {
			return fmt.Errorf("%w: entry point marker at line %d precedes its method", ErrMultipleEntryPoints, i+1)
		}
		if ilMethodPattern.MatchString(code[i]) {
			methodLine = i
			break
		}
	}
	if methodLine < 0 {
		return fmt.Errorf("%w: no .method above .entrypoint at line %d", ErrSignatureMismatch, entry+1)
	}

	sig, err := matchSignature(code, methodLine)
	if err != nil {
		return err
	}

	info.TestClassSourceFile = path
	info.MainMethodName = sig.name
	info.FirstMainMethodLine = domain.Line(sig.startLine)
	info.MainTokenMethodLine = domain.Line(sig.nameLine)
	info.LastMainMethodLine = domain.Line(sig.endLine)
	// An IL entry point is invokable as a test with or without an explicit
	// Xunit.FactAttribute, so the flag does not depend on the marker.
	info.HasFactAttribute = true

	header, ok := findILEnclosingType(code, methodLine)
	if !ok {
		return nil
	}
	name := header.name
	ns := findILNamespace(code, header.line)
	if ns == "" {
		if dot := strings.LastIndex(name, "."); dot > 0 {
			ns = name[:dot]
			name = name[dot+1:]
		}
	}
	info.TestClassLine = domain.Line(header.line)
	info.TestClassBases = header.bases
	info.TestClassName = name
	if ns != "" {
		info.TestClassNamespace = ns
		info.TestClassName = ns + "." + name
	}
	info.NamespaceLine = domain.Line(header.line)
	if header.namespaceLine >= 0 {
		info.NamespaceLine = domain.Line(header.namespaceLine)
	}
	return nil
}

// ilTypeHeader describes a .class declaration
type ilTypeHeader struct {
	name          string
	line          int
	bases         []string
	namespaceLine int
}

// findILEnclosingType walks backward from the method directive to the block
// that encloses it and parses that block's .class header.
func findILEnclosingType(code []string, methodLine int) (ilTypeHeader, bool) {
	opener, ok := enclosingOpener(code, methodLine, 0)
	if !ok {
		return ilTypeHeader{}, false
	}
	headerLine := directiveAbove(code, opener)
	if headerLine < 0 || directiveOf(code[headerLine]) != ".class" {
		return ilTypeHeader{}, false
	}

	var text strings.Builder
	for i := headerLine; i <= opener; i++ {
		line := code[i]
		if i == opener {
			line = line[:strings.Index(line, "{")]
		}
		text.WriteString(line)
		text.WriteString(" ")
	}
	fields := splitILFields(text.String())

	header := ilTypeHeader{line: headerLine, namespaceLine: -1}
	i := 1
	for ; i < len(fields); i++ {
		f := fields[i]
		if f == "nested" {
			return ilTypeHeader{}, false
		}
		if ilTypeKeywords[f] {
			continue
		}
		header.name = unquoteIL(f)
		if lt := strings.IndexByte(header.name, '<'); lt > 0 {
			header.name = header.name[:lt]
		}
		break
	}
	if header.name == "" {
		return ilTypeHeader{}, false
	}

	for i++; i < len(fields); i++ {
		if fields[i] != "extends" && fields[i] != "implements" {
			continue
		}
		for i+1 < len(fields) {
			i++
			header.bases = append(header.bases, fields[i])
			if i+1 < len(fields) && fields[i+1] == "," {
				i++
				continue
			}
			break
		}
	}
	if nsLine, ok := enclosingOpener(code, headerLine, 0); ok {
		if d := directiveAbove(code, nsLine); d >= 0 && directiveOf(code[d]) == ".namespace" {
			header.namespaceLine = d
		}
	}
	return header, true
}

// findILNamespace collects the .namespace blocks enclosing line, outermost first
func findILNamespace(code []string, line int) string {
	var parts []string
	for {
		opener, ok := enclosingOpener(code, line, 0)
		if !ok {
			break
		}
		d := directiveAbove(code, opener)
		if d < 0 {
			break
		}
		if directiveOf(code[d]) == ".namespace" {
			fields := splitILFields(code[d])
			if len(fields) > 1 {
				parts = append([]string{unquoteIL(strings.TrimSuffix(fields[1], "{"))}, parts...)
			}
		}
		line = d
	}
	return strings.Join(parts, ".")
}

// enclosingOpener walks backward from line (exclusive) counting braces and
// returns the line holding the '{' that opens the enclosing block.
func enclosingOpener(code []string, line, depth int) (int, bool) {
	for i := line - 1; i >= 0; i-- {
		text := code[i]
		for k := len(text) - 1; k >= 0; k-- {
			switch text[k] {
			case '}':
				depth++
			case '{':
				depth--
				if depth < 0 {
					return i, true
				}
			}
		}
	}
	return -1, false
}

// directiveAbove returns the nearest line at or above line that starts with a directive
func directiveAbove(code []string, line int) int {
	for i := line; i >= 0; i-- {
		if ilDirectivePattern.MatchString(code[i]) {
			return i
		}
	}
	return -1
}

func directiveOf(line string) string {
	m := ilDirectivePattern.FindStringSubmatch(line)
	if m == nil {
		return ""
	}
	return m[1]
}

// splitILFields splits on whitespace keeping single-quoted names intact and
// separating commas from the names they follow.
func splitILFields(s string) []string {
	var fields []string
	var cur strings.Builder
	inQuote := false
	flush := func() {
		if cur.Len() > 0 {
			fields = append(fields, cur.String())
			cur.Reset()
		}
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '\'':
			inQuote = !inQuote
			cur.WriteByte(c)
		case inQuote:
			cur.WriteByte(c)
		case c == ' ' || c == '\t':
			flush()
		case c == ',':
			flush()
			fields = append(fields, ",")
		default:
			cur.WriteByte(c)
		}
	}
	flush()
	return fields
}

func unquoteIL(s string) string {
	if len(s) >= 2 && s[0] == '\'' && s[len(s)-1] == '\'' {
		return s[1 : len(s)-1]
	}
	return s
}

// stripILComments blanks out // and /* */ comments and the contents of
// double-quoted strings, keeping line count and column positions intact.
func stripILComments(lines []string) []string {
	out := make([]string, len(lines))
	inBlock := false
	for n, line := range lines {
		b := []byte(line)
		inString := false
		for i := 0; i < len(b); i++ {
			switch {
			case inBlock:
				if b[i] == '*' && i+1 < len(b) && b[i+1] == '/' {
					b[i], b[i+1] = ' ', ' '
					i++
					inBlock = false
				} else {
					b[i] = ' '
				}
			case inString:
				if b[i] == '"' {
					inString = false
				} else {
					b[i] = ' '
				}
			case b[i] == '"':
				inString = true
			case b[i] == '/' && i+1 < len(b) && b[i+1] == '*':
				b[i], b[i+1] = ' ', ' '
				i++
				inBlock = true
			case b[i] == '/' && i+1 < len(b) && b[i+1] == '/':
				for j := i; j < len(b); j++ {
					b[j] = ' '
				}
				i = len(b)
			}
		}
		out[n] = string(b)
	}
	return out
}
