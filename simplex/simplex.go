// Package simplex solves linear programs with the primal simplex method on a
// dense tableau.
//
// General problems are put in equality form with slack, surplus and
// artificial variables and solved with the two-phase method (or, on request,
// the Big-M method). Balanced transportation problems get a dedicated
// tableau with one equality row per source and per destination.
//
// Infeasible, unbounded and iteration-limited runs are reported through
// Result.Status; errors are reserved for malformed input and cancellation.
package simplex

import (
	"context"
	"log/slog"
	"time"

	"github.com/pkg/errors"
	"q.log/twophase/model"
)

// Solver holds the configuration of a solve. It is immutable and may be used
// by several goroutines at once; every solve works on its own tableau.
type Solver struct {
	opts options
}

func New(opts ...Option) (*Solver, error) {
	s := &Solver{opts: defaultOptions()}
	for _, opt := range opts {
		if err := opt(&s.opts); err != nil {
			return nil, errors.Wrap(err, "applying solver option")
		}
	}
	return s, nil
}

// Solve solves the general linear program p. Rows with a negative rhs are
// negated first; p itself is not modified.
func (s *Solver) Solve(p *model.Problem) (*Result, error) {
	return s.SolveContext(context.Background(), p)
}

// SolveContext is Solve with a context checked once per iteration. When the
// context ends first, the context's error is returned.
func (s *Solver) SolveContext(ctx context.Context, p *model.Problem) (*Result, error) {
	start := time.Now()
	if err := p.Validate(); err != nil {
		return nil, err
	}
	t, err := newStandardForm(p.Normalized(), s.opts.epsilon)
	if err != nil {
		return nil, err
	}
	built := time.Now()

	o, err := s.run(ctx, t, slog.String("problem", "general"), slog.Int("rows", p.NumRows()), slog.Int("cols", p.NumCols()))
	if err != nil {
		return nil, err
	}
	res := o.extract(p.NumCols(), p.Sense)
	res.buildTime, res.solveTime = built.Sub(start), time.Since(built)
	return res, nil
}

// SolveTransportation solves the balanced transportation problem tp and
// returns the minimal total cost as the objective.
func (s *Solver) SolveTransportation(tp *model.Transportation) (*Result, error) {
	return s.SolveTransportationContext(context.Background(), tp)
}

func (s *Solver) SolveTransportationContext(ctx context.Context, tp *model.Transportation) (*Result, error) {
	start := time.Now()
	t, err := newTransportationTableau(tp, s.opts.epsilon)
	if err != nil {
		return nil, err
	}
	built := time.Now()

	m, n := tp.Sources(), tp.Destinations()
	o, err := s.run(ctx, t, slog.String("problem", "transportation"), slog.Int("sources", m), slog.Int("destinations", n))
	if err != nil {
		return nil, err
	}

	res := o.extract(m*n, model.Minimize)
	res.sources, res.destinations = m, n
	res.buildTime, res.solveTime = built.Sub(start), time.Since(built)
	return res, nil
}

func (s *Solver) run(ctx context.Context, t *tableau, attrs ...any) (*orchestrator, error) {
	opts := s.opts
	opts.logger = opts.logger.With(attrs...)

	o := newOrchestrator(t, &opts)
	if err := o.run(ctx); err != nil {
		return nil, err
	}

	opts.logger.Debug("simplex finished",
		slog.String("status", statusOf(o.state).String()),
		slog.Int("iterations", o.iterations),
		slog.Int("phase1_iterations", o.phase1Iterations),
	)
	return o, nil
}
