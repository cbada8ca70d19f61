package system

import (
	"fmt"
	"time"
)

// Solve returns the bus voltages for the injections in rhs. Position 0 of
// rhs is the ground voltage and is copied through unchanged; positions 1..N
// hold the injected currents.
//
// The system must have been factored with FactorSystem. After in-place
// updates with a tier of at least ReuseSymbolic it refactors on its own.
func (s *System) Solve(rhs []complex128) ([]complex128, error) {
	if len(rhs) < s.n+1 {
		return nil, fmt.Errorf("%w: rhs length %d, need %d", ErrSizeMismatch, len(rhs), s.n+1)
	}

	if s.symbolicRequested() {
		if err := s.FactorSystem(); err != nil {
			return nil, err
		}
	}
	if !s.factored {
		return nil, ErrNotFactored
	}

	x := make([]complex128, s.n+1)
	x[0] = rhs[0]
	if s.n == 0 || s.numeric == nil {
		return x, nil
	}

	start := time.Now()
	copy(x[1:], rhs[1:s.n+1])
	if err := s.kernel.Solve(s.symbolic, s.numeric, x[1:]); err != nil {
		return nil, fmt.Errorf("solve failed: %v", err)
	}
	s.observer.ObserveSolve(time.Since(start))

	return x, nil
}
