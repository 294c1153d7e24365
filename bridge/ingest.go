package bridge

import (
	"fmt"

	"github.com/mfagerlund/Rotera-sub004/core"
)

// IngestOption tunes result acceptance.
type IngestOption func(*ingestOptions)

type ingestOptions struct {
	// maxCost rejects results whose final cost exceeds it; zero disables.
	maxCost float64
}

// WithMaxCost rejects results whose final cost exceeds bound.
func WithMaxCost(bound float64) IngestOption {
	return func(o *ingestOptions) { o.maxCost = bound }
}

// Ingest applies a solver result to the project, all or nothing.
//
// A non-successful result returns ErrSolveFailed wrapping the solver's
// convergence reason; a cost above the configured bound returns
// ErrCostExceeded; a result naming unknown points or observations returns
// ErrUnknownEntity. In every error case the project is untouched.
func Ingest(p *core.Project, r *Result, opts ...IngestOption) error {
	if p == nil {
		return ErrNilProject
	}
	if r == nil {
		return fmt.Errorf("%w: nil result", ErrMalformedResult)
	}
	var o ingestOptions
	for _, opt := range opts {
		opt(&o)
	}

	if !r.Success {
		return fmt.Errorf("%w: %s", ErrSolveFailed, r.ConvergenceReason)
	}
	if o.maxCost > 0 && r.FinalCost > o.maxCost {
		return fmt.Errorf("%w: %g > %g", ErrCostExceeded, r.FinalCost, o.maxCost)
	}

	diag := &core.Diagnostics{
		Success:           r.Success,
		Iterations:        r.Iterations,
		FinalCost:         r.FinalCost,
		ConvergenceReason: r.ConvergenceReason,
		ComputationTime:   r.ComputationTime,
	}
	if err := p.ApplySolution(r.OptimizedPoints, r.Reprojections, diag); err != nil {
		return fmt.Errorf("%w: %v", ErrUnknownEntity, err)
	}

	return nil
}
