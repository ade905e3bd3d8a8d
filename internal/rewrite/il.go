package rewrite

import (
	"path/filepath"
	"regexp"
	"strings"

	"iltransform/internal/analysis"
	"iltransform/internal/domain"
	"iltransform/internal/lexer"
	"iltransform/internal/textio"
)

const (
	ilFactMarker    = "Xunit.FactAttribute"
	ilFactLine      = ".custom instance void [xunit.core]Xunit.FactAttribute::.ctor() = (01 00 00 00)"
	ilFactLookahead = 10
	ilXunitAssembly = "xunit.core"
)

var (
	ilAccessKeywords = []string{"public", "private", "assembly", "family", "famandassem", "famorassem", "privatescope"}

	ilAssemblyPattern = regexp.MustCompile(`^(\s*\.assembly\s+)('[^']*'|[^\s{']+)(.*)$`)
	ilModulePattern   = regexp.MustCompile(`^(\s*\.module\s+)('[^']*'|\S+)(.*)$`)
	ilAnyAssembly     = regexp.MustCompile(`^\s*\.assembly\b`)
	ilPlainName       = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)
)

// ilAfterDirective is the insertion point for a missing access modifier: the
// first word after .method/.class, or after "nested" for nested types
func ilAfterDirective(tokens []lexer.Token) int {
	seenDirective := false
	for i, t := range tokens {
		switch {
		case t.Kind == lexer.Whitespace:
		case !seenDirective && (t.Is(lexer.Special, lexer.ClassDirective) || t.IsIdent("method")):
			seenDirective = true
		case seenDirective && t.IsIdent("nested"):
		case seenDirective:
			return i
		}
	}
	return -1
}

// addILFact inserts the test attribute as the first line of the entry method body
func addILFact(doc *Document) bool {
	info := doc.Info()
	brace := findOpeningBrace(doc.Lines(), int(info.LastMainMethodLine), ilFactLookahead)
	if brace < 0 {
		return false
	}
	for i := int(info.FirstMainMethodLine); i < doc.Len() && i <= brace+ilFactLookahead; i++ {
		if strings.Contains(doc.Line(i), ilFactMarker) {
			return false
		}
	}

	indent := textio.Indent(doc.Line(brace)) + "  "
	if brace+1 < doc.Len() {
		next := doc.Line(brace + 1)
		if !textio.IsBlank(next) && !strings.HasPrefix(strings.TrimSpace(next), "}") {
			indent = textio.Indent(next)
		}
	}
	doc.Insert(brace+1, indent+ilFactLine)
	ensureAssemblyExtern(doc, ilXunitAssembly)
	return true
}

// ensureAssemblyExtern declares a referenced assembly before the first .assembly directive
func ensureAssemblyExtern(doc *Document, name string) bool {
	if hasAssemblyExtern(doc.Lines(), name) {
		return false
	}
	at := 0
	for i, line := range doc.Lines() {
		if ilAnyAssembly.MatchString(line) {
			at = i
			break
		}
	}
	doc.Insert(at, ".assembly extern "+name+" {}")
	return true
}

func hasAssemblyExtern(lines []string, name string) bool {
	pattern := regexp.MustCompile(`^\s*\.assembly\s+extern\s+'?` + regexp.QuoteMeta(name) + `'?(?:\s|\{|$)`)
	for _, line := range lines {
		if pattern.MatchString(line) {
			return true
		}
	}
	return false
}

// promoteIL makes the entry method, its type and the base types declared in
// the same file public
func promoteIL(doc *Document, force bool) {
	info := doc.Info()
	promote := func(i int) {
		if out, ok := promoteAccess(doc.Line(i), ilAccessKeywords, force, ilAfterDirective); ok {
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
		for i, line := range doc.Lines() {
			if ilDeclaredName(line) == name {
				promote(i)
			}
		}
	}
}

// ilDeclaredName returns the simple name declared by a .class header line, or ""
func ilDeclaredName(line string) string {
	fields := strings.Fields(codeText(line))
	if len(fields) < 2 || fields[0] != lexer.ClassDirective {
		return ""
	}
	for _, f := range fields[1:] {
		if f == "nested" || analysis.IsILTypeKeyword(f) {
			continue
		}
		return baseTypeName(strings.TrimSuffix(f, "{"))
	}
	return ""
}

// synthesizeILType wraps a global entry method in a new class
func synthesizeILType(doc *Document, name string) bool {
	info := doc.Info()
	start := int(info.FirstMainMethodLine)
	end := findBlockEnd(doc.Lines(), int(info.LastMainMethodLine))
	if end < 0 {
		return false
	}

	runtime := "System.Runtime"
	if hasAssemblyExtern(doc.Lines(), "mscorlib") {
		runtime = "mscorlib"
	}
	indent := textio.Indent(doc.Line(start))
	doc.Insert(end+1, indent+"}")
	doc.Insert(start,
		indent+".class public auto ansi "+ilName(name),
		indent+"       extends ["+runtime+"]System.Object",
		indent+"{")
	setSynthesizedType(info, start, name)
	if !info.NamespaceLine.Found() {
		info.NamespaceLine = domain.Line(start)
	}
	ensureAssemblyExtern(doc, runtime)
	return true
}

// cleanupModuleAssembly names the assembly and module after the source file
func cleanupModuleAssembly(doc *Document, sourcePath string) bool {
	base := strings.TrimSuffix(filepath.Base(sourcePath), filepath.Ext(sourcePath))
	changed := false

	assemblyLine := -1
	for i, line := range doc.Lines() {
		m := ilAssemblyPattern.FindStringSubmatch(line)
		if m == nil || m[2] == "extern" {
			continue
		}
		assemblyLine = i
		if out := m[1] + ilName(base) + m[3]; out != line {
			doc.Set(i, out)
			changed = true
		}
		break
	}
	if assemblyLine < 0 {
		return changed
	}

	module := base + ".dll"
	if !ilPlainName.MatchString(base) {
		module = "'" + module + "'"
	}
	for i, line := range doc.Lines() {
		if m := ilModulePattern.FindStringSubmatch(line); m != nil {
			if out := m[1] + module + m[3]; out != line {
				doc.Set(i, out)
				changed = true
			}
			return changed
		}
	}

	end := findBlockEnd(doc.Lines(), assemblyLine)
	if end < 0 {
		return changed
	}
	doc.Insert(end+1, ".module "+module)
	return true
}

// ilName quotes a name that is not a plain identifier
func ilName(name string) string {
	if ilPlainName.MatchString(name) {
		return name
	}
	return "'" + name + "'"
}
