package simplex

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"q.log/twophase/model"
)

// tableau is the dense simplex tableau: m constraint rows followed by the
// objective row, n variable columns followed by the rhs column.
//
// The objective row always encodes a maximization: for max c·x it starts as
// -c with rhs 0, and after pricing out its rhs is the current objective value.
type tableau struct {
	m, n int
	data *mat.Dense

	//basis column basic in each constraint row
	basis []int

	//roles kind of variable behind each column
	roles []model.Role

	//cost maximize-sense coefficients of the true objective
	cost []float64

	eps   float64
	bland bool
}

func newTableau(m, n int, eps float64) *tableau {
	return &tableau{
		m:     m,
		n:     n,
		data:  mat.NewDense(m+1, n+1, nil),
		basis: make([]int, m),
		roles: make([]model.Role, n),
		cost:  make([]float64, n),
		eps:   eps,
	}
}

func (t *tableau) row(i int) []float64 {
	return t.data.RawRowView(i)
}

func (t *tableau) objRow() []float64 {
	return t.row(t.m)
}

func (t *tableau) rhs(i int) float64 {
	return t.data.At(i, t.n)
}

// objectiveValue is the maximize-sense objective of the current basis.
func (t *tableau) objectiveValue() float64 {
	return t.rhs(t.m)
}

func (t *tableau) artificial(col int) bool {
	return t.roles[col] == model.Artificial
}

func (t *tableau) hasArtificial() bool {
	for _, r := range t.roles {
		if r == model.Artificial {
			return true
		}
	}
	return false
}

// loadObjective replaces the objective row with maximize c·x and prices it
// out so every basic column has a zero reduced cost.
func (t *tableau) loadObjective(c []float64) {
	obj := t.objRow()
	for j := range t.n {
		obj[j] = -c[j]
	}
	obj[t.n] = 0
	t.priceOut()
}

func (t *tableau) priceOut() {
	obj := t.objRow()
	for i, col := range t.basis {
		f := obj[col]
		if f == 0 {
			continue
		}
		floats.AddScaled(obj, -f, t.row(i))
	}
}

// phase1Objective is maximize -Σ artificial.
func (t *tableau) phase1Objective() []float64 {
	c := make([]float64, t.n)
	for j := range t.n {
		if t.artificial(j) {
			c[j] = -1
		}
	}
	return c
}

// bigMObjective is the true objective with -M on every artificial column.
func (t *tableau) bigMObjective(m float64) []float64 {
	c := append([]float64(nil), t.cost...)
	for j := range t.n {
		if t.artificial(j) {
			c[j] = -m
		}
	}
	return c
}

// artificialPositive reports whether some artificial variable is basic with
// a value above eps.
func (t *tableau) artificialPositive() bool {
	for i, col := range t.basis {
		if t.artificial(col) && t.rhs(i) > t.eps {
			return true
		}
	}
	return false
}
