package system

import (
	"time"

	"github.com/edp1096/toy-ybus/pkg/kernel"
)

// FactorSystem factors the matrix and, on success, marks the system ready
// for Solve. It returns nil, ErrSingular or ErrFactorization.
func (s *System) FactorSystem() error {
	s.factored = false

	outcome := s.Factor()
	if outcome != Success {
		return outcome.Err()
	}

	s.factored = true
	s.reuseSymbolic = false
	return nil
}

// Factor brings the factorization up to date with the matrix, keeping what
// the reuse tier and the current state allow. With nothing changed since
// the previous call it returns the previous outcome without calling the
// kernel.
func (s *System) Factor() Outcome {
	start := time.Now()
	path, outcome := s.factor()
	elapsed := time.Since(start)

	s.observer.ObserveFactor(path, outcome, elapsed)
	s.logger.Debug("factor", "path", path, "outcome", outcome, "singular_col", s.singularCol, "elapsed", elapsed)
	return outcome
}

func (s *System) symbolicRequested() bool {
	return s.reuseSymbolic && s.reuse >= ReuseSymbolic
}

func (s *System) factor() (FactorPath, Outcome) {
	s.compact()

	if s.hasOutcome && !s.patternChanged && !s.valuesChanged && !s.symbolicRequested() {
		return PathCached, s.outcome
	}

	patternChanged := s.patternChanged
	s.patternChanged = false
	s.valuesChanged = false

	if s.n == 0 || s.csc.NNZ() == 0 {
		s.freeFactorization()
		s.singularCol = 0
		s.postNNZ = 0
		return PathTrivial, s.record(Success)
	}

	reuseSymbolic := s.symbolicRequested() && !patternChanged
	if !reuseSymbolic {
		if s.symbolic != nil {
			s.symbolic.Free()
			s.symbolic = nil
		}
	}
	if !reuseSymbolic || s.reuse < ReuseNumeric {
		s.freeNumeric()
	}

	var res kernel.Result
	path := PathFull
	reuseFailed := true

	if reuseSymbolic && s.symbolic != nil {
		if s.numeric != nil {
			path = PathRefactor
			res = s.kernel.Refactor(s.csc, s.symbolic, s.numeric)
			reuseFailed = res.Status != kernel.StatusOK
			if reuseFailed {
				s.logger.Warn("refactorization failed, factoring from scratch", "status", res.Status)
			}
		} else {
			path = PathNumeric
			s.numeric, res = s.kernel.Factor(s.csc, s.symbolic)
			reuseFailed = res.Status != kernel.StatusOK
		}
	}

	if reuseFailed {
		path = PathFull
		s.freeFactorization()

		var status kernel.Status
		s.symbolic, status = s.kernel.Analyze(s.csc)
		if status != kernel.StatusOK {
			s.symbolic = nil
			res = kernel.Result{Status: status, SingularCol: s.n}
		} else {
			s.numeric, res = s.kernel.Factor(s.csc, s.symbolic)
		}
	}
	if res.Status != kernel.StatusOK && s.numeric != nil {
		s.freeNumeric()
	}

	if res.SingularCol >= 0 && res.SingularCol < s.n {
		s.singularCol = res.SingularCol + 1
	} else {
		s.singularCol = 0
	}

	switch res.Status {
	case kernel.StatusOK:
		s.postNNZ = s.numeric.Info().NNZ()
		return path, s.record(Success)
	case kernel.StatusSingular:
		s.postNNZ = 0
		return path, s.record(Singular)
	default:
		s.postNNZ = 0
		s.logger.Warn("factorization failed", "status", res.Status, "size", s.n, "nnz", s.csc.NNZ())
		if s.singularCol == 0 {
			s.singularCol = 1
		}
		return path, s.record(HardFailure)
	}
}

func (s *System) record(outcome Outcome) Outcome {
	s.outcome = outcome
	s.hasOutcome = true
	return outcome
}
