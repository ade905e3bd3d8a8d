package commands

import (
	"context"
	"time"

	"iltransform/internal/config"
	"iltransform/internal/diag"
	"iltransform/internal/discovery"
	"iltransform/internal/domain"
	"iltransform/internal/execution"
	"iltransform/internal/index"
	"iltransform/internal/storage"
	"iltransform/internal/ui"
)

// Pipeline is the analysis phase shared by every command: discover the
// descriptors, analyze them in parallel and index the corpus. Dependencies
// are built per call because the config is only final once flags are parsed.
type Pipeline struct {
	config  *config.Config
	storage storage.Storage
	log     diag.Logger
}

// NewPipeline creates a new Pipeline
func NewPipeline(cfg *config.Config, st storage.Storage, log diag.Logger) *Pipeline {
	return &Pipeline{config: cfg, storage: st, log: log}
}

// Descriptors returns the descriptor paths under the test path that pass the name filter
func (p *Pipeline) Descriptors() ([]string, error) {
	descriptors, err := discovery.NewScanner(p.config.PathsToIgnore).Scan(p.config.GetTestPath())
	if err != nil {
		return nil, err
	}
	return discovery.NewFilter().FilterByName(descriptors, p.config.Flags.Filter), nil
}

func (p *Pipeline) executor(count int) execution.Executor {
	pool := execution.NewPool(execution.NewRunner(p.config.GetTestPath(), p.log), p.config.Processors, p.log)
	if !p.config.Flags.Quiet {
		pool.SetProgress(ui.NewProgressBar(count))
	}
	return pool
}

// Scan discovers and analyzes every descriptor
func (p *Pipeline) Scan(ctx context.Context) ([]*domain.Project, time.Duration, error) {
	descriptors, err := p.Descriptors()
	if err != nil {
		return nil, 0, err
	}
	if len(descriptors) == 0 {
		return nil, 0, nil
	}
	p.log.Debug("analyzing projects", diag.F("count", len(descriptors)), diag.F("workers", p.config.Processors))
	return p.executor(len(descriptors)).Analyze(ctx, descriptors)
}

// Index builds the corpus index and gives every project its display alias.
// With plan set the disambiguating names are assigned too.
func (p *Pipeline) Index(projects []*domain.Project, plan bool) *index.Index {
	ix := index.Build(projects, p.config.KnownCommonNames, p.log)
	index.AssignAliases(projects)
	if plan {
		n := ix.AssignDeduplicatedNames(p.config.Rewrite.ClassToDeduplicate)
		p.log.Debug("deduplicated names planned", diag.F("projects", n))
	}
	return ix
}

// Save writes the snapshot of a finished scan
func (p *Pipeline) Save(projects []*domain.Project, ix *index.Index, duration time.Duration) error {
	snapshot := storage.NewSnapshot(p.config.GetTestPath(), projects, len(ix.DuplicateGroups()), duration, p.config.Processors)
	return p.storage.Save(snapshot)
}
