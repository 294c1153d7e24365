package bridge

import (
	"context"
	"sync"

	"github.com/mfagerlund/Rotera-sub004/core"
)

// Solver runs one bundle adjustment over a snapshot. Implementations
// typically shell out to an external process; they must honor ctx.
type Solver interface {
	Solve(ctx context.Context, snap *Snapshot) (*Result, error)
}

// SolverFunc adapts a function to the Solver interface.
type SolverFunc func(ctx context.Context, snap *Snapshot) (*Result, error)

// Solve implements Solver.
func (f SolverFunc) Solve(ctx context.Context, snap *Snapshot) (*Result, error) {
	return f(ctx, snap)
}

// Session serializes solves: at most one runs at a time. The zero value
// is ready to use.
type Session struct {
	mu       sync.Mutex
	inFlight bool
}

// Solve is the handle for one running solve.
type Solve struct {
	cancel context.CancelFunc
	done   chan struct{}

	mu     sync.Mutex
	result *Result
	err    error
}

// Start exports a snapshot and runs solver on it in the background.
// It returns ErrSolveInProgress while a previous solve has not finished.
// On solver success the result is ingested atomically; if ctx is
// cancelled first, the result is discarded and the project untouched.
func (s *Session) Start(ctx context.Context, p *core.Project, solver Solver, opts ...IngestOption) (*Solve, error) {
	if p == nil {
		return nil, ErrNilProject
	}
	if solver == nil {
		return nil, ErrNilSolver
	}

	s.mu.Lock()
	if s.inFlight {
		s.mu.Unlock()

		return nil, ErrSolveInProgress
	}
	s.inFlight = true
	s.mu.Unlock()

	snap, err := Export(p)
	if err != nil {
		s.release()

		return nil, err
	}

	ctx, cancel := context.WithCancel(ctx)
	h := &Solve{cancel: cancel, done: make(chan struct{})}

	go func() {
		// Release before done closes so a waiter can Start again immediately.
		defer close(h.done)
		defer s.release()
		defer cancel()

		res, err := solver.Solve(ctx, snap)
		if err == nil && ctx.Err() != nil {
			err = ctx.Err()
		}
		if err == nil {
			err = Ingest(p, res, opts...)
		}

		h.mu.Lock()
		h.result, h.err = res, err
		h.mu.Unlock()
	}()

	return h, nil
}

func (s *Session) release() {
	s.mu.Lock()
	s.inFlight = false
	s.mu.Unlock()
}

// Cancel aborts the solve. The project is left untouched unless ingestion
// already completed.
func (h *Solve) Cancel() { h.cancel() }

// Done is closed when the solve has finished, whatever the outcome.
func (h *Solve) Done() <-chan struct{} { return h.done }

// Wait blocks until the solve finishes and returns the solver's result
// and the final error, including ingestion errors and cancellation.
func (h *Solve) Wait() (*Result, error) {
	<-h.done
	h.mu.Lock()
	defer h.mu.Unlock()

	return h.result, h.err
}
