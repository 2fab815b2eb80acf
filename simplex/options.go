package simplex

import (
	"log/slog"

	"github.com/pkg/errors"
)

const (
	// DefaultEpsilon is the tolerance for every comparison against zero:
	// reduced costs, pivot candidates, ratio ties, feasibility.
	DefaultEpsilon = 1e-9

	// DefaultMaxIterations bounds the pivots of one solve, both phases included.
	DefaultMaxIterations = 10000

	// DefaultBigM is the artificial-variable penalty of the Big-M method.
	DefaultBigM = 1e6
)

// ErrInvalidOption is wrapped by every error New returns for a bad option.
var ErrInvalidOption = errors.New("simplex: invalid option")

// Method selects how the initial basis is made feasible.
type Method int

const (
	// TwoPhase minimizes the sum of artificial variables first, then
	// optimizes the true objective from the feasible basis found.
	TwoPhase Method = iota
	// BigM folds a large penalty on artificial variables into the
	// objective and runs a single phase.
	BigM
)

func (m Method) String() string {
	switch m {
	case TwoPhase:
		return "two-phase"
	case BigM:
		return "big-m"
	default:
		return "unknown"
	}
}

// ParseMethod accepts the names returned by Method.String.
func ParseMethod(s string) (Method, error) {
	switch s {
	case "two-phase", "":
		return TwoPhase, nil
	case "big-m":
		return BigM, nil
	default:
		return 0, errors.Wrapf(ErrInvalidOption, "unknown method %q", s)
	}
}

type options struct {
	epsilon       float64
	maxIterations int
	method        Method
	bigM          float64
	bland         bool
	logger        *slog.Logger
}

func defaultOptions() options {
	return options{
		epsilon:       DefaultEpsilon,
		maxIterations: DefaultMaxIterations,
		method:        TwoPhase,
		bigM:          DefaultBigM,
		logger:        slog.New(slog.DiscardHandler),
	}
}

// Option configures a Solver; New rejects invalid values.
type Option func(*options) error

// WithEpsilon sets the tolerance used for every comparison against zero.
func WithEpsilon(eps float64) Option {
	return func(o *options) error {
		if !(eps > 0) {
			return errors.Wrapf(ErrInvalidOption, "epsilon must be positive, got %v", eps)
		}
		o.epsilon = eps
		return nil
	}
}

// WithMaxIterations sets the pivot budget shared by both phases. A solve
// that runs out of budget reports IterationLimit.
func WithMaxIterations(n int) Option {
	return func(o *options) error {
		if n <= 0 {
			return errors.Wrapf(ErrInvalidOption, "max iterations must be positive, got %d", n)
		}
		o.maxIterations = n
		return nil
	}
}

// WithMethod selects TwoPhase (the default) or BigM.
func WithMethod(m Method) Option {
	return func(o *options) error {
		if m != TwoPhase && m != BigM {
			return errors.Wrapf(ErrInvalidOption, "unknown method %d", m)
		}
		o.method = m
		return nil
	}
}

// WithBigM sets the penalty used by the BigM method. It must dominate the
// objective coefficients without swamping them in float64 precision.
func WithBigM(m float64) Option {
	return func(o *options) error {
		if !(m > 0) {
			return errors.Wrapf(ErrInvalidOption, "big M must be positive, got %v", m)
		}
		o.bigM = m
		return nil
	}
}

// WithBlandRule switches pivoting to Bland's rule (lowest-index entering
// column, lowest-index basic variable on ratio ties), which cannot cycle.
func WithBlandRule(enabled bool) Option {
	return func(o *options) error {
		o.bland = enabled
		return nil
	}
}

// WithLogger sets the logger receiving state changes at debug level.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) error {
		if logger == nil {
			return errors.Wrap(ErrInvalidOption, "nil logger")
		}
		o.logger = logger
		return nil
	}
}
