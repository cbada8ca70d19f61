package kernel

import (
	"fmt"
	"math"
	"math/cmplx"

	"github.com/edp1096/sparse"

	"github.com/edp1096/toy-ybus/pkg/matrix"
)

const condEstMaxIter = 5

// RCond is the ratio of the smallest to the largest pivot magnitude.
func (k *SparseKernel) RCond(sym Symbolic, num Numeric) float64 {
	s, err := k.factored(sym, num)
	if err != nil {
		return 0
	}

	minPivot, maxPivot := math.Inf(1), 0.0
	for step := 1; step <= s.n; step++ {
		pivot := pivotMag(s.matrix.Diags[step])
		minPivot = math.Min(minPivot, pivot)
		maxPivot = math.Max(maxPivot, pivot)
	}

	rcond := minPivot / maxPivot
	if maxPivot == 0 || math.IsNaN(rcond) || math.IsInf(rcond, 0) {
		return 0
	}
	return rcond
}

// RGrowth is the reciprocal pivot growth: the smallest ratio, over columns,
// of the largest entry of A to the largest entry of the factored column.
func (k *SparseKernel) RGrowth(a *matrix.Compressed, sym Symbolic, num Numeric) (float64, error) {
	s, err := k.factored(sym, num)
	if err != nil {
		return 0, err
	}
	if _, err := k.symbolic(a, sym); err != nil {
		return 0, err
	}

	intCol := make([]int64, s.n+1)
	for c := int64(1); c <= int64(s.n); c++ {
		intCol[s.matrix.IntToExtColMap[c]] = c
	}

	growth := math.Inf(1)
	for j := 0; j < a.N; j++ {
		aMax := 0.0
		for p := a.ColPtr[j]; p < a.ColPtr[j+1]; p++ {
			aMax = math.Max(aMax, cmplx.Abs(a.Values[p]))
		}

		pivot := s.matrix.Diags[intCol[j+1]]
		if pivot == nil {
			return 0, fmt.Errorf("missing pivot for column %d", j+1)
		}
		uMax := pivotMag(pivot)
		for element := pivot.NextInCol; element != nil; element = element.NextInCol {
			uMax = math.Max(uMax, elementMag(element))
		}

		if uMax == 0 {
			continue
		}
		growth = math.Min(growth, aMax/uMax)
	}

	if math.IsInf(growth, 1) {
		return 0, nil
	}
	return growth, nil
}

// CondEst estimates the 1-norm condition number with Hager's method
// refined by Higham's alternating-sign vector.
func (k *SparseKernel) CondEst(a *matrix.Compressed, sym Symbolic, num Numeric) (float64, error) {
	s, err := k.factored(sym, num)
	if err != nil {
		return 0, err
	}
	n := s.n

	aNorm := 0.0
	for j := 0; j < a.N; j++ {
		sum := 0.0
		for p := a.ColPtr[j]; p < a.ColPtr[j+1]; p++ {
			sum += cmplx.Abs(a.Values[p])
		}
		aNorm = math.Max(aNorm, sum)
	}

	x := make([]complex128, n)
	for i := range x {
		x[i] = complex(1/float64(n), 0)
	}

	est := 0.0
	last := -1
	for iter := 0; iter < condEstMaxIter; iter++ {
		if err := k.solve(s, x, false); err != nil {
			return 0, err
		}

		yNorm := norm1(x)
		if iter > 0 && yNorm <= est {
			break
		}
		est = yNorm

		for i, v := range x {
			if mag := cmplx.Abs(v); mag > 0 {
				x[i] = v / complex(mag, 0)
			} else {
				x[i] = 1
			}
		}
		if err := k.solve(s, x, true); err != nil {
			return 0, err
		}

		j := 0
		for i := range x {
			if cmplx.Abs(x[i]) > cmplx.Abs(x[j]) {
				j = i
			}
		}
		if j == last {
			break
		}
		last = j

		for i := range x {
			x[i] = 0
		}
		x[j] = 1
	}

	if n > 1 {
		sign := 1.0
		for i := range x {
			x[i] = complex(sign*(1+float64(i)/float64(n-1)), 0)
			sign = -sign
		}
		if err := k.solve(s, x, false); err != nil {
			return 0, err
		}
		if alt := 2 * norm1(x) / float64(3*n); alt > est {
			est = alt
		}
	}

	return aNorm * est, nil
}

// Flops counts the multiply-adds of one factorization with the current
// pivot order.
func (k *SparseKernel) Flops(sym Symbolic, num Numeric) float64 {
	s, err := k.factored(sym, num)
	if err != nil {
		return 0
	}

	flops := 0.0
	for step := 1; step <= s.n; step++ {
		pivot := s.matrix.Diags[step]
		if pivot == nil {
			continue
		}
		lower, upper := 0, 0
		for element := pivot.NextInCol; element != nil; element = element.NextInCol {
			lower++
		}
		for element := pivot.NextInRow; element != nil; element = element.NextInRow {
			upper++
		}
		flops += float64(upper + 2*lower*upper)
	}
	return flops
}

func elementMag(element *sparse.Element) float64 {
	return math.Hypot(element.Real, element.Imag)
}

// Diagonal elements hold reciprocal pivots after factorization.
func pivotMag(element *sparse.Element) float64 {
	if element == nil {
		return 0
	}
	mag := elementMag(element)
	if mag == 0 {
		return math.Inf(1)
	}
	return 1 / mag
}

func norm1(x []complex128) float64 {
	sum := 0.0
	for _, v := range x {
		sum += cmplx.Abs(v)
	}
	return sum
}
