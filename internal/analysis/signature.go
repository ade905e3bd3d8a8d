package analysis

import (
	"fmt"
	"regexp"
	"strings"
)

// ilMethodQualifiers are the method attributes accepted around the static keyword
const ilMethodQualifiers = `(?:public|private|assembly|family|famandassem|famorassem|privatescope|hidebysig|specialname|rtspecialname|final|virtual|newslot|strict|reqsecobj|unmanagedexp|pinvokeimpl\s*\([^)]*\))`

// signatureStage is one anchored step of the IL entry-point signature match
type signatureStage struct {
	name string
	re   *regexp.Regexp
}

// The stages run strictly in order, each anchored at the end of the previous match:
//
//	.method public hidebysig static int32 modopt([mscorlib]System.Runtime.CompilerServices.CallConvCdecl)
//	        'main'(string[] args) cil managed
var signatureStages = []signatureStage{
	{"qualifiers", regexp.MustCompile(`^\s*\.method\s+(?:` + ilMethodQualifiers + `\s+)*static\b\s*(?:` + ilMethodQualifiers + `\b\s*)*`)},
	{"return type", regexp.MustCompile(`^\s*(?:(?:default|vararg)\s+)?(?:int32|void|uint32|unsigned\s+int32)\b(?:\s*modopt\s*\([^)]*\))*\s*`)},
	{"method name", regexp.MustCompile(`^\s*(?:'([^']*)'|([A-Za-z_$@][\w$@]*))\s*\(`)},
	{"parameter", regexp.MustCompile(`^\s*(?:(?:string\s*\[\s*\]|string|int32|native\s+int)(?:\s+(?:'[^']*'|[A-Za-z_$@][\w$@]*))?)?\s*`)},
	{"closing parenthesis", regexp.MustCompile(`^\s*\)`)},
}

// signatureLookahead bounds how many physical lines a signature may span
const signatureLookahead = 8

// signatureMatch is the result of a successful five-stage match
type signatureMatch struct {
	name      string
	startLine int
	nameLine  int
	endLine   int
}

// signatureScanner consumes a method signature line by line. A stage whose
// remaining input on the current line is blank first rolls onto the next
// physical line; a stage that does not match aborts the whole signature.
type signatureScanner struct {
	lines []string
	line  int
	col   int
	limit int
}

func newSignatureScanner(lines []string, start int) *signatureScanner {
	return &signatureScanner{
		lines: lines,
		line:  start,
		limit: min(len(lines), start+signatureLookahead),
	}
}

func (s *signatureScanner) step(stage signatureStage) ([]string, error) {
	rest := s.lines[s.line][s.col:]
	for strings.TrimSpace(rest) == "" {
		s.line++
		s.col = 0
		if s.line >= s.limit {
			return nil, fmt.Errorf("%w: %s missing before line %d", ErrSignatureMismatch, stage.name, s.line+1)
		}
		rest = s.lines[s.line]
	}
	m := stage.re.FindStringSubmatch(rest)
	if m == nil {
		return nil, fmt.Errorf("%w: %s at line %d: %s", ErrSignatureMismatch, stage.name, s.line+1, strings.TrimSpace(rest))
	}
	s.col += len(m[0])
	return m, nil
}

// matchSignature parses the method signature starting at line start
func matchSignature(lines []string, start int) (*signatureMatch, error) {
	s := newSignatureScanner(lines, start)
	result := &signatureMatch{startLine: start}
	for i, stage := range signatureStages {
		m, err := s.step(stage)
		if err != nil {
			return nil, err
		}
		switch i {
		case 2:
			result.nameLine = s.line
			if m[1] != "" {
				result.name = m[1]
			} else {
				result.name = m[2]
			}
		case len(signatureStages) - 1:
			result.endLine = s.line
		}
	}
	return result, nil
}
