package simplex

import (
	"q.log/twophase/model"
)

// newTransportationTableau builds the equality tableau of a balanced
// transportation problem with m sources and n destinations:
//
//	rows 0..m-1      source i:       Σj x[i][j] + u[i]   = supply[i]
//	rows m..m+n-1    destination j:  Σi x[i][j] + u[m+j] = demand[j]
//
// Flow x[i][j] is column i*n+j. Every row owns one unit column u that forms
// the starting basis. The unit columns are tagged artificial: they must be
// driven to zero, otherwise each equality would only hold as <=.
func newTransportationTableau(tp *model.Transportation, eps float64) (*tableau, error) {
	if err := tp.Validate(eps); err != nil {
		return nil, err
	}

	m, n := tp.Sources(), tp.Destinations()
	flows := m * n
	t := newTableau(m+n, flows+m+n, eps)

	for i := range m {
		for j := range n {
			col := i*n + j
			t.data.Set(i, col, 1)
			t.data.Set(m+j, col, 1)
			t.cost[col] = -tp.Cost.At(i, j)
			t.roles[col] = model.Original
		}
	}

	for k := range m + n {
		col := flows + k
		t.data.Set(k, col, 1)
		t.roles[col] = model.Artificial
		t.basis[k] = col
	}

	for i, s := range tp.Supply {
		t.data.Set(i, t.n, s)
	}
	for j, d := range tp.Demand {
		t.data.Set(m+j, t.n, d)
	}

	return t, nil
}
