package model

import (
	"math"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Transportation is a balanced transportation problem: ship Supply[i] units
// out of every source and Demand[j] units into every destination at minimal
// total Cost[i][j] per unit.
type Transportation struct {
	Supply []float64
	Demand []float64
	Cost   *mat.Dense
}

// NewTransportation copies its arguments into a Transportation. Only the shape
// of the cost matrix is checked here; use Validate for the full set of checks.
func NewTransportation(supply, demand []float64, cost [][]float64) (*Transportation, error) {
	if len(supply) == 0 || len(demand) == 0 {
		return nil, errors.Wrapf(ErrConstruction, "need at least one source and one destination, got %d and %d", len(supply), len(demand))
	}
	if len(cost) != len(supply) {
		return nil, errors.Wrapf(ErrConstruction, "cost matrix has %d rows, want %d", len(cost), len(supply))
	}

	data := make([]float64, 0, len(supply)*len(demand))
	for i, row := range cost {
		if len(row) != len(demand) {
			return nil, errors.Wrapf(ErrConstruction, "cost row %d has %d entries, want %d", i, len(row), len(demand))
		}
		data = append(data, row...)
	}

	return &Transportation{
		Supply: append([]float64(nil), supply...),
		Demand: append([]float64(nil), demand...),
		Cost:   mat.NewDense(len(supply), len(demand), data),
	}, nil
}

func (t *Transportation) Sources() int {
	return len(t.Supply)
}

func (t *Transportation) Destinations() int {
	return len(t.Demand)
}

// Validate checks shapes, signs and that total supply equals total demand
// within eps. An unbalanced instance is rejected, never truncated.
func (t *Transportation) Validate(eps float64) error {
	m, n := t.Sources(), t.Destinations()
	if m == 0 || n == 0 {
		return errors.Wrapf(ErrConstruction, "need at least one source and one destination, got %d and %d", m, n)
	}
	if t.Cost == nil {
		return errors.Wrap(ErrConstruction, "missing cost matrix")
	}
	if r, c := t.Cost.Dims(); r != m || c != n {
		return errors.Wrapf(ErrConstruction, "cost matrix is %dx%d, want %dx%d", r, c, m, n)
	}
	for i, s := range t.Supply {
		if !finite(s) || s < 0 {
			return errors.Wrapf(ErrConstruction, "supply %d is %v", i, s)
		}
	}
	for j, d := range t.Demand {
		if !finite(d) || d < 0 {
			return errors.Wrapf(ErrConstruction, "demand %d is %v", j, d)
		}
	}
	for i := range m {
		for j, c := range t.Cost.RawRowView(i) {
			if !finite(c) || c < 0 {
				return errors.Wrapf(ErrConstruction, "cost (%d,%d) is %v", i, j, c)
			}
		}
	}

	supply, demand := floats.Sum(t.Supply), floats.Sum(t.Demand)
	if math.Abs(supply-demand) > eps {
		return errors.Wrapf(ErrConstruction, "unbalanced problem: supply %v, demand %v", supply, demand)
	}
	return nil
}

// NorthwestCorner returns the plan built by the northwest-corner rule: fill
// cell (i,j) with as much as possible, then move right when the destination
// is satisfied and down when the source is exhausted. The instance is
// expected to be balanced.
func (t *Transportation) NorthwestCorner() *mat.Dense {
	m, n := t.Sources(), t.Destinations()
	plan := mat.NewDense(m, n, nil)
	supply := append([]float64(nil), t.Supply...)
	demand := append([]float64(nil), t.Demand...)

	for i, j := 0, 0; i < m && j < n; {
		q := math.Min(supply[i], demand[j])
		plan.Set(i, j, q)
		supply[i] -= q
		demand[j] -= q

		switch {
		case supply[i] <= 0 && i < m-1:
			i++
		case demand[j] <= 0:
			j++
		default:
			i++
		}
	}
	return plan
}

// PlanCost returns Σ cost[i][j]·plan[i][j].
func (t *Transportation) PlanCost(plan mat.Matrix) float64 {
	var prod mat.Dense
	prod.MulElem(t.Cost, plan)
	return mat.Sum(&prod)
}

// Problem expresses the transportation instance as a general LP with one
// equality row per source and per destination. Flow x[i][j] is variable
// i*Destinations()+j.
func (t *Transportation) Problem() *Problem {
	m, n := t.Sources(), t.Destinations()
	p := NewProblem(Minimize, mat.DenseCopyOf(t.Cost).RawMatrix().Data)

	for i := range m {
		row := make([]float64, m*n)
		for j := range n {
			row[i*n+j] = 1
		}
		// cannot fail: row length matches
		_ = p.AddConstraint(row, EQ, t.Supply[i])
	}
	for j := range n {
		row := make([]float64, m*n)
		for i := range m {
			row[i*n+j] = 1
		}
		_ = p.AddConstraint(row, EQ, t.Demand[j])
	}
	return p
}
