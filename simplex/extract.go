package simplex

import (
	"math"

	"q.log/twophase/model"
)

func statusOf(s state) Status {
	switch s {
	case stateOptimal:
		return Optimal
	case statePhase1Infeasible, stateInfeasible:
		return Infeasible
	case stateUnbounded:
		return Unbounded
	default:
		return IterationLimit
	}
}

// extract reads the final tableau of o. Original variables occupy columns
// 0..nOrig-1; a minimization objective is negated back from the internal
// maximize form.
func (o *orchestrator) extract(nOrig int, sense model.Sense) *Result {
	t := o.t
	res := &Result{
		status:           statusOf(o.state),
		values:           make(map[int]float64),
		iterations:       o.iterations,
		phase1Iterations: o.phase1Iterations,
	}
	if res.status != Optimal {
		return res
	}

	for j := range nOrig {
		res.values[j] = 0
	}
	for i, col := range t.basis {
		if col >= nOrig || t.roles[col] != model.Original {
			continue
		}
		res.values[col] = snap(t.rhs(i), t.eps)
	}

	obj := t.objectiveValue()
	if sense == model.Minimize {
		obj = -obj
	}
	res.objective = snap(obj, t.eps)
	res.hasObjective = true
	return res
}

func snap(v, eps float64) float64 {
	if math.Abs(v) <= eps {
		return 0
	}
	return v
}
