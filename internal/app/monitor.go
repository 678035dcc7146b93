package service

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/okian/sentinela/internal/domain/model"
)

// Runner produces an analysis. *Service satisfies it.
type Runner interface {
	Run(ctx context.Context) (*model.Analysis, error)
}

// Monitor keeps the latest successful analysis for readers such as the HTTP
// API. Runs are serialised; reads never block on a run once a value exists.
type Monitor struct {
	runner  Runner
	runMu   sync.Mutex
	current atomic.Pointer[model.Analysis]
}

// NewMonitor wraps r.
func NewMonitor(r Runner) *Monitor {
	return &Monitor{runner: r}
}

// Current returns the cached analysis, running the pipeline on first use.
func (m *Monitor) Current(ctx context.Context) (*model.Analysis, error) {
	if a := m.current.Load(); a != nil {
		return a, nil
	}

	m.runMu.Lock()
	defer m.runMu.Unlock()
	if a := m.current.Load(); a != nil {
		return a, nil
	}
	return m.refreshLocked(ctx)
}

// Refresh re-runs the pipeline. The cached analysis is replaced only when
// the run succeeds.
func (m *Monitor) Refresh(ctx context.Context) (*model.Analysis, error) {
	m.runMu.Lock()
	defer m.runMu.Unlock()
	return m.refreshLocked(ctx)
}

func (m *Monitor) refreshLocked(ctx context.Context) (*model.Analysis, error) {
	a, err := m.runner.Run(ctx)
	if err != nil {
		return nil, err
	}
	m.current.Store(a)
	return a, nil
}
