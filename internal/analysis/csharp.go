package analysis

import (
	"regexp"
	"strings"

	"iltransform/internal/domain"
	"iltransform/internal/lexer"
	"iltransform/internal/textio"
)

var (
	// Environment.Exit(...) anywhere in the file
	csExitPattern = regexp.MustCompile(`\bEnvironment\s*\.\s*Exit\s*\(`)

	// Matches:
	// - static int Main()
	// - public static void TestEntryPoint()
	csEntryPattern = regexp.MustCompile(`\b(?:int|void)\s+(Main|TestEntryPoint)\s*\(\s*\)`)

	// Matches [Fact], [Xunit.Fact], [FactAttribute], [Fact, OuterLoop]
	csFactPattern = regexp.MustCompile(`\[\s*(?:Xunit\s*\.\s*)?Fact(?:Attribute)?\s*[\],(]`)

	csTypePattern      = regexp.MustCompile(`\b(?:class|struct)\s+(@?[A-Za-z_]\w*)`)
	csNamespacePattern = regexp.MustCompile(`^\s*namespace\s+(@?[A-Za-z_][\w.]*)\s*(?:;|\{|$)`)
	csUsingPattern     = regexp.MustCompile(`^\s*using\s+[^(]*;\s*(?://.*)?$`)
)

// AnalyzeCSharp extracts facts from a high-level dialect source file
func AnalyzeCSharp(path string, lines []string, info *domain.SourceInfo) error {
	for _, line := range lines {
		if csExitPattern.MatchString(line) {
			info.HasExit = true
			break
		}
	}

	mainLine := -1
	for i := len(lines) - 1; i >= 0; i-- {
		line := lines[i]
		if m := csEntryPattern.FindStringSubmatch(line); m != nil {
			mainLine = i
			info.MainMethodName = m[1]
			break
		}
		if csFactPattern.MatchString(line) {
			info.HasFactAttribute = true
		}
	}
	if mainLine < 0 {
		return ErrNoEntryPoint
	}

	info.TestClassSourceFile = path
	info.FirstMainMethodLine = domain.Line(mainLine)
	info.MainTokenMethodLine = domain.Line(mainLine)
	info.LastMainMethodLine = domain.Line(mainLine)
	if csFactPattern.MatchString(lines[mainLine]) || hasFactAbove(lines, mainLine) {
		info.HasFactAttribute = true
	}

	if typeName, typeLine, bases, ok := findCSharpType(lines, mainLine); ok {
		info.TestClassName = typeName
		info.TestClassLine = domain.Line(typeLine)
		info.TestClassBases = bases
		if ns := findCSharpNamespace(lines, typeLine); ns != "" {
			info.TestClassNamespace = ns
			info.TestClassName = ns + "." + typeName
		}
	}

	analyzeCSharpHeader(lines, info)
	return nil
}

// hasFactAbove looks at the attribute lines directly above the entry point
func hasFactAbove(lines []string, mainLine int) bool {
	for i := mainLine - 1; i >= 0; i-- {
		trimmed := strings.TrimSpace(lines[i])
		if trimmed == "" || strings.HasPrefix(trimmed, "//") {
			continue
		}
		if !strings.HasPrefix(trimmed, "[") {
			return false
		}
		if csFactPattern.MatchString(trimmed) {
			return true
		}
	}
	return false
}

// findCSharpType locates the innermost type enclosing mainLine. The anchor is
// the nearest line above with a smaller indentation that opens a brace; the
// type header is the run of same-indented lines ending at that anchor.
func findCSharpType(lines []string, mainLine int) (name string, line int, bases []string, ok bool) {
	mainIndent := textio.IndentWidth(lines[mainLine])
	anchor := -1
	for i := mainLine - 1; i >= 0; i-- {
		if textio.IsBlank(lines[i]) {
			continue
		}
		if textio.IndentWidth(lines[i]) < mainIndent && strings.Contains(codeOf(lines[i]), "{") {
			anchor = i
			break
		}
	}
	if anchor < 0 {
		return "", -1, nil, false
	}

	anchorIndent := textio.IndentWidth(lines[anchor])
	start := anchor
	for i := anchor - 1; i >= 0; i-- {
		code := strings.TrimSpace(codeOf(lines[i]))
		if code == "" || textio.IndentWidth(lines[i]) != anchorIndent {
			break
		}
		if strings.HasSuffix(code, ";") || strings.HasSuffix(code, "}") {
			break
		}
		start = i
	}

	for i := start; i <= anchor; i++ {
		code := codeOf(lines[i])
		loc := csTypePattern.FindStringSubmatchIndex(code)
		if loc == nil {
			continue
		}
		name = code[loc[2]:loc[3]]
		var rest strings.Builder
		rest.WriteString(code[loc[1]:])
		for j := i + 1; j <= anchor; j++ {
			rest.WriteString(" ")
			rest.WriteString(codeOf(lines[j]))
		}
		return name, i, parseCSharpBases(rest.String()), true
	}
	return "", -1, nil, false
}

// parseCSharpBases parses the optional inheritance clause following a type name:
//
//	<T> : Base<List<T>>, IFoo where T : class {
func parseCSharpBases(rest string) []string {
	s := strings.TrimSpace(rest)
	if strings.HasPrefix(s, "<") {
		n := balancedAngles(s)
		if n < 0 {
			return nil
		}
		s = strings.TrimSpace(s[n:])
	}
	if !strings.HasPrefix(s, ":") {
		return nil
	}
	s = s[1:]

	var bases []string
	for {
		s = strings.TrimSpace(s)
		n := 0
		for n < len(s) && (s[n] == '.' || lexer.IsIdentifierChar(rune(s[n]))) {
			n++
		}
		if n == 0 {
			break
		}
		base := s[:n]
		s = s[n:]
		trimmed := strings.TrimLeft(s, " \t")
		if strings.HasPrefix(trimmed, "<") {
			g := balancedAngles(trimmed)
			if g < 0 {
				break
			}
			base += trimmed[:g]
			s = trimmed[g:]
		}
		if base == "where" {
			break
		}
		bases = append(bases, base)
		s = strings.TrimSpace(s)
		if !strings.HasPrefix(s, ",") {
			break
		}
		s = s[1:]
	}
	return bases
}

// balancedAngles returns the length of the <...> group at the start of s, or -1 when unbalanced
func balancedAngles(s string) int {
	depth := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '<':
			depth++
		case '>':
			depth--
			if depth == 0 {
				return i + 1
			}
		case '{', ';':
			return -1
		}
	}
	return -1
}

// findCSharpNamespace walks outward from the type declaration collecting enclosing namespaces
func findCSharpNamespace(lines []string, typeLine int) string {
	var parts []string
	indent := textio.IndentWidth(lines[typeLine])
	for i := typeLine - 1; i >= 0; i-- {
		m := csNamespacePattern.FindStringSubmatch(lines[i])
		if m == nil {
			continue
		}
		fileScoped := strings.HasSuffix(strings.TrimSpace(codeOf(lines[i])), ";")
		nsIndent := textio.IndentWidth(lines[i])
		if !fileScoped && nsIndent >= indent {
			continue
		}
		parts = append([]string{m[1]}, parts...)
		if fileScoped {
			break
		}
		indent = nsIndent
	}
	return strings.Join(parts, ".")
}

// analyzeCSharpHeader records the header comment block, the using block and
// the first declaration line after them.
func analyzeCSharpHeader(lines []string, info *domain.SourceInfo) {
	i := 0
	for i < len(lines) && strings.HasPrefix(strings.TrimSpace(lines[i]), "//") {
		i++
	}
	if i > 0 {
		last := i - 1
		if i < len(lines) && textio.IsBlank(lines[i]) {
			last = i
			i++
		}
		info.LastHeaderCommentLine = domain.Line(last)
	}

	for ; i < len(lines); i++ {
		trimmed := strings.TrimSpace(lines[i])
		switch {
		case trimmed == "", strings.HasPrefix(trimmed, "//"), strings.HasPrefix(trimmed, "#"):
			continue
		case csUsingPattern.MatchString(lines[i]):
			info.LastUsingLine = domain.Line(i)
			continue
		}
		break
	}
	if i >= len(lines) {
		return
	}

	info.NamespaceLine = domain.Line(i)
	if m := csNamespacePattern.FindStringSubmatch(lines[i]); m != nil && info.TestClassNamespace == "" {
		info.TestClassNamespace = m[1]
		if info.TestClassName != "" && !strings.HasPrefix(info.TestClassName, m[1]+".") {
			info.TestClassName = m[1] + "." + info.TestClassName
		}
	}
}

// codeOf strips a trailing line comment and quoted literals so braces inside them are ignored
func codeOf(line string) string {
	tokens := lexer.Tokenize(line)
	var sb strings.Builder
	for _, t := range tokens {
		switch t.Kind {
		case lexer.Comment:
		case lexer.QuotedLiteral:
			sb.WriteString(`""`)
		default:
			sb.WriteString(t.Text)
		}
	}
	return sb.String()
}
