package domain

// SnapshotMeta contains metadata about a scan
type SnapshotMeta struct {
	Root            string  `json:"root"`
	TotalProjects   int     `json:"total_projects"`
	WithEntryPoint  int     `json:"with_entry_point"`
	DuplicateGroups int     `json:"duplicate_groups"`
	Duration        string  `json:"duration"`
	DurationSeconds float64 `json:"duration_seconds"`
	Workers         int     `json:"workers"`
	Timestamp       string  `json:"timestamp"`
}

// Snapshot is the persisted result of the last scan
type Snapshot struct {
	Meta     SnapshotMeta `json:"meta"`
	Projects []*Project   `json:"projects"`
}
