package analysis

import (
	"errors"
	"strings"

	"iltransform/internal/diag"
	"iltransform/internal/domain"
	"iltransform/internal/textio"
)

var (
	// ErrNoEntryPoint is returned when a file has no recognizable entry point
	ErrNoEntryPoint = errors.New("no entry point")
	// ErrMultipleEntryPoints is returned when an IL file declares more than one entry point
	ErrMultipleEntryPoints = errors.New("multiple entry points")
	// ErrSignatureMismatch is returned when the entry-point signature cannot be parsed
	ErrSignatureMismatch = errors.New("entry point signature mismatch")
)

// Analyzer extracts source facts from entry-point files and logs every file it cannot handle
type Analyzer struct {
	log diag.Logger
}

// NewAnalyzer creates a new Analyzer
func NewAnalyzer(log diag.Logger) *Analyzer {
	return &Analyzer{log: log}
}

// Analyze reads path and fills info with its facts. Pattern mismatches are
// logged and leave info with whatever it had; only I/O errors are returned.
func (a *Analyzer) Analyze(path string, info *domain.SourceInfo) error {
	f, err := textio.Read(path)
	if err != nil {
		return err
	}
	a.AnalyzeLines(path, f.Lines, info)
	return nil
}

// AnalyzeLines runs the dialect-specific extractor selected by the path extension
func (a *Analyzer) AnalyzeLines(path string, lines []string, info *domain.SourceInfo) {
	var err error
	if domain.DialectOf(path) == domain.IL {
		err = AnalyzeIL(path, lines, info)
	} else {
		err = AnalyzeCSharp(path, lines, info)
	}
	switch {
	case err == nil:
	case errors.Is(err, ErrNoEntryPoint):
		a.log.Debug("no entry point", diag.F("file", path))
	default:
		a.log.Warn(err.Error(), diag.F("file", path))
	}
}

// AnalyzeFiles analyzes every candidate file of a project and returns the
// facts of the one holding the entry point. Exactly one candidate is expected
// to contain it; extra ones are reported and ignored.
func (a *Analyzer) AnalyzeFiles(paths []string) domain.SourceInfo {
	result := domain.NewSourceInfo()
	found := false
	for _, path := range paths {
		ext := strings.ToLower(path)
		if !strings.HasSuffix(ext, ".cs") && !strings.HasSuffix(ext, ".il") {
			continue
		}
		info := domain.NewSourceInfo()
		if err := a.Analyze(path, &info); err != nil {
			a.log.Warn("cannot analyze source", diag.F("file", path), diag.F("error", err))
			continue
		}
		if !info.HasEntryPoint() {
			continue
		}
		if found {
			a.log.Warn("second entry point ignored",
				diag.F("file", path), diag.F("first", result.TestClassSourceFile))
			continue
		}
		result = info
		found = true
	}
	return result
}
