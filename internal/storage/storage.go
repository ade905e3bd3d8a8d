package storage

import (
	"iltransform/internal/config"
	"iltransform/internal/domain"
)

// Storage persists and loads the snapshot of the last scan (e.g. for the viewer).
type Storage interface {
	Save(snapshot *domain.Snapshot) error
	Load() (*domain.Snapshot, error)
}

// JSONStorage stores the snapshot in a JSON file under the configured output path.
type JSONStorage struct {
	cfg *config.Config
}

// NewJSONStorage returns a Storage that reads/writes the config's output JSON path.
func NewJSONStorage(cfg *config.Config) *JSONStorage {
	return &JSONStorage{cfg: cfg}
}

// Path returns the snapshot file location
func (s *JSONStorage) Path() string {
	return s.cfg.GetOutputPath()
}
