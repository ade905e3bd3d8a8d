package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"iltransform/internal/domain"
)

// NewSnapshot builds the snapshot of a finished scan
func NewSnapshot(root string, projects []*domain.Project, duplicateGroups int, duration time.Duration, workers int) *domain.Snapshot {
	withEntry := 0
	for _, p := range projects {
		if p.Source.HasEntryPoint() {
			withEntry++
		}
	}
	return &domain.Snapshot{
		Meta: domain.SnapshotMeta{
			Root:            root,
			TotalProjects:   len(projects),
			WithEntryPoint:  withEntry,
			DuplicateGroups: duplicateGroups,
			Duration:        duration.String(),
			DurationSeconds: duration.Seconds(),
			Workers:         workers,
			Timestamp:       time.Now().Format(time.RFC3339),
		},
		Projects: projects,
	}
}

// Save writes the snapshot to the configured JSON output file.
func (s *JSONStorage) Save(snapshot *domain.Snapshot) error {
	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}

	path := s.Path()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	return nil
}

// Load reads the last snapshot from the configured JSON output file.
func (s *JSONStorage) Load() (*domain.Snapshot, error) {
	data, err := os.ReadFile(s.Path())
	if err != nil {
		return nil, fmt.Errorf("read snapshot file: %w", err)
	}
	var snapshot domain.Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, fmt.Errorf("parse snapshot: %w", err)
	}
	return &snapshot, nil
}
