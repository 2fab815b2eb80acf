package simplex

import (
	"context"
	"log/slog"
	"math"
)

type state int

const (
	stateBuilding state = iota
	statePhase1Running
	statePhase1Infeasible
	statePhase1Done
	statePhase2Running
	stateOptimal
	stateUnbounded
	stateInfeasible
	stateIterationLimit
	stateCancelled
)

func (s state) String() string {
	switch s {
	case stateBuilding:
		return "building"
	case statePhase1Running:
		return "phase1-running"
	case statePhase1Infeasible:
		return "phase1-infeasible"
	case statePhase1Done:
		return "phase1-done"
	case statePhase2Running:
		return "phase2-running"
	case stateOptimal:
		return "optimal"
	case stateUnbounded:
		return "unbounded"
	case stateInfeasible:
		return "infeasible"
	case stateIterationLimit:
		return "iteration-limit"
	case stateCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

func (s state) terminal() bool {
	switch s {
	case statePhase1Infeasible, stateOptimal, stateUnbounded, stateInfeasible, stateIterationLimit, stateCancelled:
		return true
	default:
		return false
	}
}

// orchestrator drives a tableau through the phases of the simplex method.
// It owns the tableau for the duration of one solve.
type orchestrator struct {
	t      *tableau
	opts   *options
	logger *slog.Logger

	state             state
	iterations        int
	phase1Iterations  int
	excludeArtificial bool
}

func newOrchestrator(t *tableau, opts *options) *orchestrator {
	t.bland = opts.bland
	return &orchestrator{
		t:      t,
		opts:   opts,
		logger: opts.logger,
		state:  stateBuilding,
	}
}

// run steps the state machine until it reaches a terminal state. The only
// error it returns is the context's.
func (o *orchestrator) run(ctx context.Context) error {
	for !o.state.terminal() {
		switch o.state {
		case stateBuilding:
			o.start()
		case statePhase1Running:
			o.stepPhase1(ctx)
		case statePhase1Done:
			o.startPhase2()
		case statePhase2Running:
			o.stepPhase2(ctx)
		}
	}

	if o.state == stateCancelled {
		return ctx.Err()
	}
	return nil
}

func (o *orchestrator) transition(next state) {
	o.logger.Debug("simplex state change",
		slog.String("from", o.state.String()),
		slog.String("to", next.String()),
		slog.Int("iterations", o.iterations),
		slog.Float64("objective", o.t.objectiveValue()),
	)
	o.state = next
}

func (o *orchestrator) start() {
	switch {
	case o.opts.method == BigM:
		o.t.loadObjective(o.t.bigMObjective(o.opts.bigM))
		o.transition(statePhase2Running)
	case o.t.hasArtificial():
		o.t.loadObjective(o.t.phase1Objective())
		o.transition(statePhase1Running)
	default:
		o.t.loadObjective(o.t.cost)
		o.transition(statePhase2Running)
	}
}

// exhausted checks the termination policy before a pivot: cancellation
// first, then the iteration budget.
func (o *orchestrator) exhausted(ctx context.Context) bool {
	if ctx.Err() != nil {
		o.transition(stateCancelled)
		return true
	}
	if o.iterations >= o.opts.maxIterations {
		o.transition(stateIterationLimit)
		return true
	}
	return false
}

func (o *orchestrator) stepPhase1(ctx context.Context) {
	col, ok := o.t.enteringColumn(nil)
	if !ok {
		o.phase1Iterations = o.iterations
		// the phase-1 optimum is -Σ artificial
		if math.Abs(o.t.objectiveValue()) > o.t.eps || o.t.artificialPositive() {
			o.transition(statePhase1Infeasible)
			return
		}
		o.driveOutArtificials()
		o.excludeArtificial = true
		o.transition(statePhase1Done)
		return
	}
	if o.exhausted(ctx) {
		return
	}

	row, ok := o.t.leavingRow(col)
	if !ok {
		// -Σ artificial is bounded by zero; only numerical trouble gets here
		o.logger.Warn("phase 1 ratio test found no row", slog.Int("column", col))
		o.transition(stateUnbounded)
		return
	}
	o.t.pivot(row, col)
	o.iterations++
}

// driveOutArtificials replaces every artificial variable still basic (at
// zero) after phase 1 with a non-artificial column of its row. A row with no
// such column is redundant and stays as it is: its artificial is never
// priced back in because artificial columns are excluded from entering.
//
// These pivots are counted but not budgeted, so iterations can exceed
// maxIterations by at most one per row; the next phase-2 step then stops
// with IterationLimit unless the basis is already optimal.
func (o *orchestrator) driveOutArtificials() {
	t := o.t
	for i := range t.m {
		if !t.artificial(t.basis[i]) {
			continue
		}
		r := t.row(i)
		for j := range t.n {
			if t.artificial(j) || math.Abs(r[j]) <= t.eps {
				continue
			}
			t.pivot(i, j)
			o.iterations++
			break
		}
		if t.artificial(t.basis[i]) {
			o.logger.Debug("redundant row kept", slog.Int("row", i))
		}
	}
}

func (o *orchestrator) startPhase2() {
	o.t.loadObjective(o.t.cost)
	o.transition(statePhase2Running)
}

func (o *orchestrator) stepPhase2(ctx context.Context) {
	col, ok := o.t.enteringColumn(o.excluded)
	if !ok {
		if o.opts.method == BigM && o.t.artificialPositive() {
			o.transition(stateInfeasible)
			return
		}
		o.transition(stateOptimal)
		return
	}
	if o.exhausted(ctx) {
		return
	}

	row, ok := o.t.leavingRow(col)
	if !ok {
		if o.opts.method == BigM && !o.excludeArtificial && o.t.artificialPositive() {
			o.fallBackToPhase1(col)
			return
		}
		o.transition(stateUnbounded)
		return
	}
	o.t.pivot(row, col)
	o.iterations++
}

// fallBackToPhase1 handles a Big-M ray found while an artificial is still
// positive. The ray says nothing about feasibility, so the artificial sum is
// minimized from the current basis and the run continues as two-phase.
// It happens at most once per solve.
func (o *orchestrator) fallBackToPhase1(col int) {
	o.logger.Debug("big-m ray with positive artificial, switching to phase 1", slog.Int("column", col))
	o.t.loadObjective(o.t.phase1Objective())
	o.transition(statePhase1Running)
}

func (o *orchestrator) excluded(col int) bool {
	return o.excludeArtificial && o.t.artificial(col)
}
