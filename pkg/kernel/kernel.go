// Package kernel defines the sparse LU service the system factors through and
// provides the production implementation on top of github.com/edp1096/sparse.
package kernel

import (
	"fmt"

	"github.com/edp1096/toy-ybus/pkg/matrix"
)

type Status int

const (
	StatusOK Status = iota
	StatusSingular
	StatusOutOfMemory
	StatusInvalid
	StatusTooLarge
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusSingular:
		return "singular"
	case StatusOutOfMemory:
		return "out of memory"
	case StatusInvalid:
		return "invalid"
	case StatusTooLarge:
		return "too large"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// Result is what a factorization reports. SingularCol is zero-based; a value
// equal to the matrix size means no singular column was found.
type Result struct {
	Status      Status
	SingularCol int
}

// FactorInfo describes the size of a numeric factorization.
type FactorInfo struct {
	N       int
	LNZ     int // nonzeros in L, diagonal included
	UNZ     int // nonzeros in U, diagonal included
	OffDiag int // entries kept outside the diagonal blocks
}

// NNZ is the fill-in count lnz + unz - n + offdiag.
func (f FactorInfo) NNZ() int {
	return f.LNZ + f.UNZ - f.N + f.OffDiag
}

// Symbolic is an ordering computed from a nonzero pattern.
type Symbolic interface {
	Size() int
	Free()
}

// Numeric holds factor values computed against a Symbolic.
type Numeric interface {
	Info() FactorInfo
	Free()
}

// Kernel is the LU service. All operations take the matrix in
// compressed-column form; values must follow the pattern the Symbolic was
// built from.
type Kernel interface {
	Analyze(a *matrix.Compressed) (Symbolic, Status)
	Factor(a *matrix.Compressed, sym Symbolic) (Numeric, Result)
	// Refactor reuses the pivot order of num. It never pivots.
	Refactor(a *matrix.Compressed, sym Symbolic, num Numeric) Result
	// Solve overwrites b (zero-based, length N) with the solution.
	Solve(sym Symbolic, num Numeric, b []complex128) error

	RCond(sym Symbolic, num Numeric) float64
	RGrowth(a *matrix.Compressed, sym Symbolic, num Numeric) (float64, error)
	CondEst(a *matrix.Compressed, sym Symbolic, num Numeric) (float64, error)
	Flops(sym Symbolic, num Numeric) float64
}
