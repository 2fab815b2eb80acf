package instance

import (
	"math"
	"runtime"

	"github.com/lukpank/go-glpk/glpk"
	"github.com/pkg/errors"
	"q.log/twophase/model"
)

// Reader reads a free-format mps file to construct a problem
type Reader struct {
	filename string
}

func NewReader(filename string) *Reader {
	return &Reader{
		filename: filename,
	}
}

// Read returns the problem stored in the file. Ranged rows become a >= and
// a <= row; finite column bounds other than x >= 0 become extra rows, since
// the solver only knows non-negative variables. Free columns are read as
// non-negative.
func (r *Reader) Read() (*model.Problem, error) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()
	lp := glpk.New()
	defer lp.Delete()
	if err := lp.ReadMPS(glpk.MPS_FILE, nil, r.filename); err != nil {
		return nil, errors.Wrapf(err, "reading mps file %s", r.filename)
	}

	numRows, numCols := lp.NumRows(), lp.NumCols()
	if numCols == 0 {
		return nil, errors.Wrapf(model.ErrConstruction, "mps file %s has no columns", r.filename)
	}

	sense := model.Minimize
	if lp.ObjDir() == glpk.MAX {
		sense = model.Maximize
	}

	//populate obj function
	cVec := make([]float64, numCols)
	names := make([]string, numCols)
	for c := range numCols {
		cVec[c] = lp.ObjCoef(c + 1)
		names[c] = lp.ColName(c + 1)
	}
	p := model.NewProblem(sense, cVec)
	p.Names = names

	//populate constraints
	for i := 1; i <= numRows; i++ {
		rowVec := make([]float64, numCols)
		idxs, row := lp.MatRow(i)
		for k, v := range idxs {
			if v == 0 {
				continue
			}
			rowVec[v-1] = row[k]
		}

		lb, ub := lp.RowLB(i), lp.RowUB(i)
		if err := addBounded(p, rowVec, lb, ub); err != nil {
			return nil, errors.Wrapf(err, "row %d", i)
		}
	}

	//column bounds as rows
	for c := range numCols {
		lb, ub := lp.ColLB(c+1), lp.ColUB(c+1)
		if bounded(lb) && lb == 0 {
			lb = -math.MaxFloat64
		}
		rowVec := make([]float64, numCols)
		rowVec[c] = 1
		if err := addBounded(p, rowVec, lb, ub); err != nil {
			return nil, errors.Wrapf(err, "bounds of column %d", c+1)
		}
	}

	return p, nil
}

// addBounded adds lb <= row·x <= ub, skipping infinite sides.
func addBounded(p *model.Problem, rowVec []float64, lb, ub float64) error {
	switch {
	case !bounded(lb) && !bounded(ub):
		return nil
	case lb == ub:
		return p.AddConstraint(rowVec, model.EQ, lb)
	case !bounded(lb):
		return p.AddConstraint(rowVec, model.LE, ub)
	case !bounded(ub):
		return p.AddConstraint(rowVec, model.GE, lb)
	default:
		if err := p.AddConstraint(rowVec, model.GE, lb); err != nil {
			return err
		}
		return p.AddConstraint(rowVec, model.LE, ub)
	}
}

// glpk reports a missing bound as ±DBL_MAX
func bounded(v float64) bool {
	return v != -math.MaxFloat64 && v != math.MaxFloat64
}
