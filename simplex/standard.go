package simplex

import (
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
	"q.log/twophase/model"
)

// newStandardForm translates p into a tableau in equality form. Every row
// gets the auxiliary columns its operator needs:
//
//	<=  slack +1 (basic)
//	>=  surplus -1, artificial +1 (basic)
//	=   artificial +1 (basic)
//
// The original variables keep columns 0..p.NumCols()-1. p must have a
// non-negative rhs on every row; see model.Problem.Normalized.
func newStandardForm(p *model.Problem, eps float64) (*tableau, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	m, nOrig := p.NumRows(), p.NumCols()
	extra := 0
	for i, op := range p.Ops {
		if p.B[i] < 0 {
			return nil, errors.Wrapf(model.ErrConstruction, "row %d has negative rhs %v", i, p.B[i])
		}
		if op == model.GE {
			extra += 2
		} else {
			extra++
		}
	}

	t := newTableau(m, nOrig+extra, eps)
	for j, c := range p.C {
		if p.Sense == model.Minimize {
			c = -c
		}
		t.cost[j] = c
		t.roles[j] = model.Original
	}

	next := nOrig
	for i := range m {
		r := t.row(i)
		mat.Row(r[:nOrig], i, p.A)
		r[t.n] = p.B[i]

		switch p.Ops[i] {
		case model.LE:
			r[next] = 1
			t.roles[next] = model.Slack
			t.basis[i] = next
			next++
		case model.GE:
			r[next] = -1
			t.roles[next] = model.Surplus
			next++
			r[next] = 1
			t.roles[next] = model.Artificial
			t.basis[i] = next
			next++
		case model.EQ:
			r[next] = 1
			t.roles[next] = model.Artificial
			t.basis[i] = next
			next++
		}
	}

	return t, nil
}
