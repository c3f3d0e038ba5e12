package runs

import (
	"context"
	"sync"

	"crosstab/internal/core/apperror"
	"crosstab/internal/core/id"
)

// MemoryRepository keeps the latest runs in process memory. It serves the
// journal when no database is configured.
type MemoryRepository struct {
	mu       sync.RWMutex
	runs     []Run
	capacity int
}

// NewMemoryRepository keeps at most capacity runs.
func NewMemoryRepository(capacity int) *MemoryRepository {
	if capacity <= 0 {
		capacity = 1000
	}
	return &MemoryRepository{capacity: capacity}
}

func (m *MemoryRepository) Save(_ context.Context, run *Run) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.runs = append(m.runs, *run)
	if over := len(m.runs) - m.capacity; over > 0 {
		m.runs = append(m.runs[:0:0], m.runs[over:]...)
	}
	return nil
}

func (m *MemoryRepository) Get(_ context.Context, runID id.ID) (*Run, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for i := range m.runs {
		if m.runs[i].ID == runID {
			run := m.runs[i]
			return &run, nil
		}
	}
	return nil, apperror.NewNotFound("run", runID.String())
}

func (m *MemoryRepository) List(_ context.Context, filter ListFilter) ([]Run, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]Run, 0)
	skipped := 0
	for i := len(m.runs) - 1; i >= 0; i-- {
		r := m.runs[i]
		if filter.TaskID != 0 && r.TaskID != filter.TaskID {
			continue
		}
		if filter.Status != "" && r.Status != filter.Status {
			continue
		}
		if skipped < filter.Offset {
			skipped++
			continue
		}
		r.Tables = nil
		out = append(out, r)
		if filter.Limit > 0 && len(out) == filter.Limit {
			break
		}
	}
	return out, nil
}
