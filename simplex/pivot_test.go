package simplex

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"q.log/twophase/model"
)

// maximize 3x + 2y s.t. x + y <= 4, x + 3y <= 6
func smallTableau(t *testing.T) *tableau {
	t.Helper()

	p := newProblem(t, model.Maximize, []float64{3, 2},
		row{[]float64{1, 1}, model.LE, 4},
		row{[]float64{1, 3}, model.LE, 6},
	)
	tab, err := newStandardForm(p, DefaultEpsilon)
	require.NoError(t, err)
	tab.loadObjective(tab.cost)
	return tab
}

func TestEnteringColumn(t *testing.T) {
	tab := smallTableau(t)

	col, ok := tab.enteringColumn(nil)
	require.True(t, ok)
	assert.Equal(t, 0, col)

	col, ok = tab.enteringColumn(func(c int) bool { return c == 0 })
	require.True(t, ok)
	assert.Equal(t, 1, col)

	_, ok = tab.enteringColumn(func(c int) bool { return c < 2 })
	assert.False(t, ok)
}

func TestEnteringColumnTies(t *testing.T) {
	tab := smallTableau(t)
	obj := tab.objRow()
	obj[0], obj[1] = -2, -2

	col, ok := tab.enteringColumn(nil)
	require.True(t, ok)
	assert.Equal(t, 0, col)

	// Bland takes the first improving column, not the steepest
	obj[0], obj[1] = -1, -5
	tab.bland = true
	col, ok = tab.enteringColumn(nil)
	require.True(t, ok)
	assert.Equal(t, 0, col)
}

func TestEnteringColumnIgnoresNoise(t *testing.T) {
	tab := smallTableau(t)
	obj := tab.objRow()
	obj[0], obj[1] = -DefaultEpsilon/2, 0

	_, ok := tab.enteringColumn(nil)
	assert.False(t, ok)
}

func TestLeavingRow(t *testing.T) {
	tab := smallTableau(t)

	// x: ratios 4/1 and 6/1
	row, ok := tab.leavingRow(0)
	require.True(t, ok)
	assert.Equal(t, 0, row)

	// y: ratios 4/1 and 6/3
	row, ok = tab.leavingRow(1)
	require.True(t, ok)
	assert.Equal(t, 1, row)
}

func TestLeavingRowTiesAndUnbounded(t *testing.T) {
	tab := newTableau(3, 2, DefaultEpsilon)
	for i, v := range [][]float64{{2, -1, 4}, {1, 0, 2}, {4, -3, 8}} {
		copy(tab.row(i), v)
	}
	tab.basis = []int{1, 0, 1}

	row, ok := tab.leavingRow(0)
	require.True(t, ok)
	assert.Equal(t, 0, row)

	tab.bland = true
	row, ok = tab.leavingRow(0)
	require.True(t, ok)
	assert.Equal(t, 1, row)

	_, ok = tab.leavingRow(1)
	assert.False(t, ok)
}

func TestPivot(t *testing.T) {
	tab := smallTableau(t)
	tab.pivot(0, 0)

	assert.Equal(t, []int{0, 3}, tab.basis)
	assert.Equal(t, []float64{1, 1, 1, 0, 4}, tab.row(0))
	assert.Equal(t, []float64{0, 2, -1, 1, 2}, tab.row(1))
	assert.Equal(t, []float64{0, 1, 3, 0, 12}, tab.objRow())
	assert.Equal(t, 12.0, tab.objectiveValue())

	_, ok := tab.enteringColumn(nil)
	assert.False(t, ok)
}

func TestStandardFormColumns(t *testing.T) {
	p := newProblem(t, model.Minimize, []float64{1, 2},
		row{[]float64{1, 1}, model.LE, 5},
		row{[]float64{1, -1}, model.GE, 1},
		row{[]float64{0, 1}, model.EQ, 2},
	)
	tab, err := newStandardForm(p, DefaultEpsilon)
	require.NoError(t, err)

	assert.Equal(t, 3, tab.m)
	assert.Equal(t, 6, tab.n)
	assert.Equal(t, []model.Role{
		model.Original, model.Original,
		model.Slack,
		model.Surplus, model.Artificial,
		model.Artificial,
	}, tab.roles)
	assert.Equal(t, []int{2, 4, 5}, tab.basis)
	assert.Equal(t, []float64{-1, -2, 0, 0, 0, 0}, tab.cost)

	assert.Equal(t, []float64{1, 1, 1, 0, 0, 0, 5}, tab.row(0))
	assert.Equal(t, []float64{1, -1, 0, -1, 1, 0, 1}, tab.row(1))
	assert.Equal(t, []float64{0, 1, 0, 0, 0, 1, 2}, tab.row(2))
}

func TestStandardFormRejectsNegativeRHS(t *testing.T) {
	p := newProblem(t, model.Minimize, []float64{1},
		row{[]float64{1}, model.LE, -1},
	)
	_, err := newStandardForm(p, DefaultEpsilon)
	assert.ErrorIs(t, err, model.ErrConstruction)
}

func TestPhase1Objective(t *testing.T) {
	p := newProblem(t, model.Minimize, []float64{1, 2},
		row{[]float64{1, 1}, model.GE, 3},
		row{[]float64{1, 0}, model.EQ, 1},
	)
	tab, err := newStandardForm(p, DefaultEpsilon)
	require.NoError(t, err)

	tab.loadObjective(tab.phase1Objective())

	// -(a1 + a2) priced out against the artificial basis
	assert.Equal(t, []float64{-2, -1, 1, 0, 0, -4}, tab.objRow())
	assert.Equal(t, -4.0, tab.objectiveValue())
}
