// Package system assembles a sparse nodal admittance matrix from element
// stamps and factors it through a kernel.Kernel, reusing as much of the
// previous factorization as the configured tier and the current state allow.
//
// A System is not safe for concurrent use. Separate systems share nothing.
package system

import (
	"fmt"
	"log/slog"

	"github.com/edp1096/toy-ybus/pkg/kernel"
	"github.com/edp1096/toy-ybus/pkg/matrix"
)

// Outcome is the result of a factorization request.
type Outcome int

const (
	Success Outcome = iota
	Singular
	HardFailure
)

func (o Outcome) String() string {
	switch o {
	case Success:
		return "success"
	case Singular:
		return "singular"
	case HardFailure:
		return "hard failure"
	default:
		return fmt.Sprintf("Outcome(%d)", int(o))
	}
}

// Err maps the outcome to ErrSingular, ErrFactorization or nil.
func (o Outcome) Err() error {
	switch o {
	case Success:
		return nil
	case Singular:
		return ErrSingular
	default:
		return ErrFactorization
	}
}

type System struct {
	n        int
	format   matrix.Format
	kernel   kernel.Kernel
	logger   *slog.Logger
	observer Observer
	reuse    ReuseTier

	pending  *matrix.Triplets
	csc      *matrix.Compressed
	symbolic kernel.Symbolic
	numeric  kernel.Numeric

	factored      bool
	reuseSymbolic bool

	patternChanged bool // nonzero positions were added since the last factorization
	valuesChanged  bool
	hasOutcome     bool
	outcome        Outcome

	singularCol int // 1-based, 0 when none
	preNNZ      int
	postNNZ     int
}

var _ matrix.DeviceMatrix = (*System)(nil)

// New creates a system of n buses. Bus 0 is ground and never stored.
func New(n int, opts ...Option) (*System, error) {
	if n < 0 {
		return nil, fmt.Errorf("invalid bus count: %d", n)
	}

	s := &System{
		n:        n,
		format:   matrix.FormatComplex,
		logger:   discardLogger(),
		observer: nopObserver{},
		reuse:    ReuseNone,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.kernel == nil {
		s.kernel = kernel.NewSparse(s.format)
	}

	s.pending = matrix.NewTriplets(4 * n)
	s.csc = matrix.NewCompressed(n)
	return s, nil
}

func (s *System) Size() int { return s.n }

func (s *System) Format() matrix.Format { return s.format }

func (s *System) Reuse() ReuseTier { return s.reuse }

func (s *System) SetReuseOption(tier ReuseTier) {
	s.reuse = tier
}

// Factored reports whether the last FactorSystem succeeded and no stamp
// has been applied since.
func (s *System) Factored() bool { return s.factored }

// Zero resets the system to an empty matrix of the same size.
func (s *System) Zero() {
	s.freeFactorization()
	s.pending.Reset()
	s.csc = matrix.NewCompressed(s.n)

	s.factored = false
	s.reuseSymbolic = false
	s.patternChanged = false
	s.valuesChanged = false
	s.hasOutcome = false
	s.singularCol = 0
	s.preNNZ = 0
	s.postNNZ = 0
}

// Destroy releases the factorization. The system must not be used afterwards.
func (s *System) Destroy() {
	s.freeFactorization()
	s.pending = matrix.NewTriplets(0)
	s.csc = matrix.NewCompressed(s.n)
	s.factored = false
	s.hasOutcome = false
}

func (s *System) freeFactorization() {
	s.freeNumeric()
	if s.symbolic != nil {
		s.symbolic.Free()
		s.symbolic = nil
	}
}

func (s *System) freeNumeric() {
	if s.numeric != nil {
		s.numeric.Free()
		s.numeric = nil
	}
}
