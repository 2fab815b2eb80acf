package model

import (
	"math"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// ErrConstruction is wrapped by every error caused by malformed input:
// dimension mismatches, non-finite coefficients, unbalanced transportation
// totals. Match it with errors.Is.
var ErrConstruction = errors.New("model: construction error")

type Sense int

const (
	Minimize Sense = iota
	Maximize
)

func (s Sense) String() string {
	switch s {
	case Minimize:
		return "min"
	case Maximize:
		return "max"
	default:
		return "unknown"
	}
}

// Op is the relational operator of a constraint row.
type Op int

const (
	LE Op = iota
	GE
	EQ
)

func (o Op) String() string {
	switch o {
	case LE:
		return "<="
	case GE:
		return ">="
	case EQ:
		return "="
	default:
		return "?"
	}
}

// Flip returns the operator obtained by multiplying the row by -1.
func (o Op) Flip() Op {
	switch o {
	case LE:
		return GE
	case GE:
		return LE
	default:
		return o
	}
}

// ParseOp accepts "<=", ">=" and "=" (and "==").
func ParseOp(s string) (Op, error) {
	switch s {
	case "<=":
		return LE, nil
	case ">=":
		return GE, nil
	case "=", "==":
		return EQ, nil
	default:
		return 0, errors.Wrapf(ErrConstruction, "unknown operator %q", s)
	}
}

// Problem is a general linear program over non-negative variables:
//
//	min|max  C·x
//	s.t.     A[i]·x  Ops[i]  B[i]
//	         x >= 0
type Problem struct {
	Sense Sense

	//C objective function coefficients
	C []float64

	//A constraints matrix, nil while the problem has no rows
	A *mat.Dense

	//B constraints rhs
	B []float64

	//Ops relational operator of each row
	Ops []Op

	//Names optional variable names, same length as C when set
	Names []string
}

// NewProblem returns a problem with the given objective and no constraints.
// The coefficient slice is copied.
func NewProblem(sense Sense, c []float64) *Problem {
	return &Problem{
		Sense: sense,
		C:     append([]float64(nil), c...),
	}
}

func (p *Problem) NumRows() int {
	return len(p.B)
}

func (p *Problem) NumCols() int {
	return len(p.C)
}

// AddConstraint appends the row coefs·x op rhs.
func (p *Problem) AddConstraint(coefs []float64, op Op, rhs float64) error {
	if p.NumCols() == 0 {
		return errors.Wrap(ErrConstruction, "problem has no variables")
	}
	if len(coefs) != p.NumCols() {
		return errors.Wrapf(ErrConstruction, "row %d has %d coefficients, want %d", p.NumRows(), len(coefs), p.NumCols())
	}

	row := append([]float64(nil), coefs...)
	if p.A == nil {
		p.A = mat.NewDense(1, p.NumCols(), row)
	} else {
		p.A = mat.DenseCopyOf(p.A.Grow(1, 0))
		p.A.SetRow(p.NumRows(), row)
	}

	p.B = append(p.B, rhs)
	p.Ops = append(p.Ops, op)
	return nil
}

// Row returns a copy of the coefficients of row i.
func (p *Problem) Row(i int) []float64 {
	return mat.Row(nil, i, p.A)
}

// MultiplyConstraint scales row i (coefficients and rhs) by mul. A negative
// multiplier flips the operator.
func (p *Problem) MultiplyConstraint(row int, mul float64) error {
	if row < 0 || row >= p.NumRows() {
		return errors.Wrapf(ErrConstruction, "row %d does not exist", row)
	}

	for col := range p.NumCols() {
		p.A.Set(row, col, p.A.At(row, col)*mul)
	}
	p.B[row] *= mul
	if mul < 0 {
		p.Ops[row] = p.Ops[row].Flip()
	}
	return nil
}

// Clone returns a deep copy of the problem.
func (p *Problem) Clone() *Problem {
	q := &Problem{
		Sense: p.Sense,
		C:     append([]float64(nil), p.C...),
		B:     append([]float64(nil), p.B...),
		Ops:   append([]Op(nil), p.Ops...),
	}
	if p.A != nil {
		q.A = mat.DenseCopyOf(p.A)
	}
	if p.Names != nil {
		q.Names = append([]string(nil), p.Names...)
	}
	return q
}

// Normalized returns a copy of the problem in which every row with a
// negative rhs has been negated, so all rhs values are non-negative.
func (p *Problem) Normalized() *Problem {
	q := p.Clone()
	for r := range q.NumRows() {
		if q.B[r] < 0 {
			// cannot fail: r is in range
			_ = q.MultiplyConstraint(r, -1)
		}
	}
	return q
}

// Validate checks dimensions and rejects NaN/Inf entries.
func (p *Problem) Validate() error {
	if p.Sense != Minimize && p.Sense != Maximize {
		return errors.Wrapf(ErrConstruction, "unknown objective sense %d", p.Sense)
	}
	if p.NumCols() == 0 {
		return errors.Wrap(ErrConstruction, "problem has no variables")
	}
	if p.Names != nil && len(p.Names) != p.NumCols() {
		return errors.Wrapf(ErrConstruction, "%d names for %d variables", len(p.Names), p.NumCols())
	}
	if len(p.Ops) != p.NumRows() {
		return errors.Wrapf(ErrConstruction, "%d operators for %d rows", len(p.Ops), p.NumRows())
	}
	for j, c := range p.C {
		if !finite(c) {
			return errors.Wrapf(ErrConstruction, "objective coefficient %d is not finite", j)
		}
	}

	if p.NumRows() == 0 {
		if p.A != nil {
			return errors.Wrap(ErrConstruction, "constraint matrix without rhs")
		}
		return nil
	}
	if p.A == nil {
		return errors.Wrapf(ErrConstruction, "%d rhs values without constraint matrix", p.NumRows())
	}
	if r, c := p.A.Dims(); r != p.NumRows() || c != p.NumCols() {
		return errors.Wrapf(ErrConstruction, "constraint matrix is %dx%d, want %dx%d", r, c, p.NumRows(), p.NumCols())
	}
	for i := range p.NumRows() {
		if !finite(p.B[i]) {
			return errors.Wrapf(ErrConstruction, "rhs of row %d is not finite", i)
		}
		if p.Ops[i] != LE && p.Ops[i] != GE && p.Ops[i] != EQ {
			return errors.Wrapf(ErrConstruction, "row %d has unknown operator %d", i, p.Ops[i])
		}
		for j, v := range p.A.RawRowView(i) {
			if !finite(v) {
				return errors.Wrapf(ErrConstruction, "coefficient (%d,%d) is not finite", i, j)
			}
		}
	}
	return nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
