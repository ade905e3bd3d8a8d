package ui

import "iltransform/internal/domain"

// Viewer displays a scan snapshot in an interactive TUI
type Viewer interface {
	View(snapshot *domain.Snapshot) error
}
