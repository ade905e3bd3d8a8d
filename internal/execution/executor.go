package execution

import (
	"context"
	"time"

	"iltransform/internal/domain"
)

// Executor analyzes project descriptors and returns their facts
type Executor interface {
	Analyze(ctx context.Context, descriptors []string) ([]*domain.Project, time.Duration, error)
}
