package execution

import (
	"iltransform/internal/analysis"
	"iltransform/internal/diag"
	"iltransform/internal/discovery"
	"iltransform/internal/domain"
)

// Runner analyzes a single project descriptor
type Runner struct {
	parser   *discovery.Parser
	analyzer *analysis.Analyzer
}

// NewRunner creates a new Runner; relative project paths are computed against root
func NewRunner(root string, log diag.Logger) *Runner {
	return &Runner{
		parser:   discovery.NewParser(root),
		analyzer: analysis.NewAnalyzer(log),
	}
}

// Run parses the descriptor and extracts the facts of its entry-point source.
// Only descriptor errors are returned; source problems are logged by the analyzer.
func (r *Runner) Run(descriptor string) (*domain.Project, error) {
	p, err := r.parser.Parse(descriptor)
	if err != nil {
		return nil, err
	}
	p.Source = r.analyzer.AnalyzeFiles(p.CompileFiles)
	// Recomputed now that the exit-call fact is known
	p.IsolationReasons = discovery.IsolationReasons(p)
	return p, nil
}
