package simplex

import (
	"maps"
	"time"

	"gonum.org/v1/gonum/mat"
)

type Status int

const (
	Optimal Status = iota
	Infeasible
	Unbounded
	IterationLimit
)

func (s Status) String() string {
	switch s {
	case Optimal:
		return "optimal"
	case Infeasible:
		return "infeasible"
	case Unbounded:
		return "unbounded"
	case IterationLimit:
		return "iteration limit reached"
	default:
		return "unknown"
	}
}

// Result is the outcome of one solve. It is never modified after the solve
// returns it.
type Result struct {
	status           Status
	objective        float64
	hasObjective     bool
	values           map[int]float64
	iterations       int
	phase1Iterations int

	buildTime, solveTime time.Duration

	// set for transportation problems
	sources, destinations int
}

func (res *Result) Status() Status {
	return res.status
}

// Objective returns the objective value in the problem's own sense. ok is
// false unless the status is Optimal.
func (res *Result) Objective() (value float64, ok bool) {
	return res.objective, res.hasObjective
}

// Values returns a copy of the original-variable values, keyed by variable
// index. It is empty unless the status is Optimal.
func (res *Result) Values() map[int]float64 {
	return maps.Clone(res.values)
}

// Value returns the value of original variable i, 0 when unknown.
func (res *Result) Value(i int) float64 {
	return res.values[i]
}

// Iterations is the number of pivots performed, both phases included.
func (res *Result) Iterations() int {
	return res.iterations
}

// Phase1Iterations is the number of pivots spent reaching a feasible basis.
func (res *Result) Phase1Iterations() int {
	return res.phase1Iterations
}

// BuildTime is the time spent validating the input and building the tableau.
func (res *Result) BuildTime() time.Duration {
	return res.buildTime
}

// SolveTime is the time spent pivoting and reading the solution back.
func (res *Result) SolveTime() time.Duration {
	return res.solveTime
}

// Plan returns the optimal flows of a transportation problem as a
// sources×destinations matrix, or nil for other problems and non-optimal
// results.
func (res *Result) Plan() *mat.Dense {
	if res.sources == 0 || !res.hasObjective {
		return nil
	}
	plan := mat.NewDense(res.sources, res.destinations, nil)
	for i := range res.sources {
		for j := range res.destinations {
			plan.Set(i, j, res.values[i*res.destinations+j])
		}
	}
	return plan
}
