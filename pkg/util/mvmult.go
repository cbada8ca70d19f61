package util

import (
	"fmt"

	"gonum.org/v1/gonum/blas"
	"gonum.org/v1/gonum/blas/cblas128"
	"gonum.org/v1/gonum/mat"
)

// MVMult returns A·x for a small dense n x n complex matrix stored
// column-major, the layout of a primitive admittance block.
func MVMult(n int, a, x []complex128) ([]complex128, error) {
	if n < 0 || len(a) < n*n || len(x) < n {
		return nil, fmt.Errorf("mvmult: order %d with %d values and %d vector entries", n, len(a), len(x))
	}
	b := make([]complex128, n)
	if n == 0 {
		return b, nil
	}

	// Read column-major data as a row-major matrix, that is A^T, and
	// multiply with its transpose.
	at := mat.NewCDense(n, n, append([]complex128(nil), a[:n*n]...))
	cblas128.Gemv(blas.Trans, 1, at.RawCMatrix(),
		cblas128.Vector{N: n, Inc: 1, Data: x[:n]},
		0, cblas128.Vector{N: n, Inc: 1, Data: b})
	return b, nil
}
