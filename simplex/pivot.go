package simplex

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// enteringColumn returns the column with the most negative reduced cost
// below -eps, ties to the lowest index. With Bland's rule the first such
// column wins. Columns for which excluded returns true are skipped. ok is
// false when no column qualifies, i.e. the basis is optimal.
func (t *tableau) enteringColumn(excluded func(col int) bool) (col int, ok bool) {
	obj := t.objRow()
	col, best := -1, -t.eps
	for j := range t.n {
		if excluded != nil && excluded(j) {
			continue
		}
		if obj[j] >= best {
			continue
		}
		if t.bland {
			return j, true
		}
		col, best = j, obj[j]
	}
	return col, col >= 0
}

// leavingRow runs the minimum-ratio test on column col over the rows with a
// coefficient above eps. Ratio ties go to the lowest row index, or with
// Bland's rule to the row whose basic column has the lowest index. ok is
// false when no row qualifies: the column can grow without bound.
func (t *tableau) leavingRow(col int) (row int, ok bool) {
	row, minRatio := -1, math.Inf(1)
	for i := range t.m {
		a := t.data.At(i, col)
		if a <= t.eps {
			continue
		}
		ratio := t.rhs(i) / a
		switch {
		case row < 0 || ratio < minRatio-t.eps:
			row, minRatio = i, ratio
		case t.bland && ratio <= minRatio+t.eps && t.basis[i] < t.basis[row]:
			row, minRatio = i, math.Min(ratio, minRatio)
		}
	}
	return row, row >= 0
}

// pivot makes col basic in row by Gauss-Jordan elimination over every row,
// objective row included.
func (t *tableau) pivot(row, col int) {
	pr := t.row(row)
	floats.Scale(1/pr[col], pr)
	pr[col] = 1

	for i := 0; i <= t.m; i++ {
		if i == row {
			continue
		}
		r := t.row(i)
		f := r[col]
		if f == 0 {
			continue
		}
		floats.AddScaled(r, -f, pr)
		r[col] = 0
	}

	// round-off from the elimination must not leave a negative rhs behind
	for i := range t.m {
		if v := t.rhs(i); v < 0 && v >= -t.eps {
			t.data.Set(i, t.n, 0)
		}
	}

	t.basis[row] = col
}
