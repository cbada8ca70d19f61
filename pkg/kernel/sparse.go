package kernel

import (
	"fmt"
	"math"
	"strings"

	"github.com/edp1096/sparse"

	"github.com/edp1096/toy-ybus/pkg/matrix"
)

// SparseKernel factors with the Markowitz-ordered LU of github.com/edp1096/sparse.
// One kernel serves one storage format.
type SparseKernel struct {
	format matrix.Format
	config sparse.Configuration
}

var _ Kernel = (*SparseKernel)(nil)

func NewSparse(format matrix.Format) *SparseKernel {
	isComplex := format == matrix.FormatComplex

	config := sparse.Configuration{
		Real:                    true,
		Complex:                 isComplex,
		SeparatedComplexVectors: false,
		Expandable:              true,
		Translate:               false,
		ModifiedNodal:           true,
		TiesMultiplier:          5,
		PrinterWidth:            140,
		Annotate:                0,
	}

	return &SparseKernel{format: format, config: config}
}

type sparseSymbolic struct {
	n       int
	matrix  *sparse.Matrix
	slots   []*sparse.Element // aligned with Compressed.Values
	ordered bool              // pivot order computed by a successful factorization
}

func (s *sparseSymbolic) Size() int { return s.n }

func (s *sparseSymbolic) Free() {
	if s.matrix != nil {
		s.matrix.Destroy()
	}
	s.matrix = nil
	s.slots = nil
	s.ordered = false
}

type sparseNumeric struct {
	sym  *sparseSymbolic
	info FactorInfo
}

func (n *sparseNumeric) Info() FactorInfo { return n.info }

// The factor values live inside the symbolic's matrix, so freeing only
// detaches.
func (n *sparseNumeric) Free() { n.sym = nil }

func (k *SparseKernel) Analyze(a *matrix.Compressed) (Symbolic, Status) {
	if a.N <= 0 {
		return nil, StatusInvalid
	}
	if a.N >= math.MaxInt32 || a.NNZ() >= math.MaxInt32 {
		return nil, StatusTooLarge
	}

	config := k.config
	mat, err := sparse.Create(int64(a.N), &config)
	if err != nil {
		return nil, StatusInvalid
	}

	slots := make([]*sparse.Element, a.NNZ())
	for j := 0; j < a.N; j++ {
		for p := a.ColPtr[j]; p < a.ColPtr[j+1]; p++ {
			element := mat.GetElement(int64(a.RowIdx[p]+1), int64(j+1))
			if element == nil {
				mat.Destroy()
				return nil, StatusOutOfMemory
			}
			slots[p] = element
		}
	}

	return &sparseSymbolic{n: a.N, matrix: mat, slots: slots}, StatusOK
}

func (k *SparseKernel) Factor(a *matrix.Compressed, sym Symbolic) (Numeric, Result) {
	s, err := k.symbolic(a, sym)
	if err != nil {
		return nil, Result{Status: StatusInvalid, SingularCol: a.N}
	}

	k.load(a, s)
	s.matrix.NeedsOrdering = !s.ordered

	err = s.matrix.OrderAndFactor(nil, 0.0, 0.0, true)
	if err != nil {
		s.ordered = false
		return nil, Result{Status: statusOf(err), SingularCol: singularColumn(s.matrix, s.n)}
	}
	if step := zeroPivot(s.matrix, s.n); step > 0 {
		s.ordered = false
		s.matrix.Factored = false
		return nil, Result{Status: StatusSingular, SingularCol: externalColumn(s.matrix, step, s.n)}
	}
	s.ordered = true

	return &sparseNumeric{sym: s, info: factorInfo(s.matrix, s.n)}, Result{Status: StatusOK, SingularCol: s.n}
}

func (k *SparseKernel) Refactor(a *matrix.Compressed, sym Symbolic, num Numeric) Result {
	s, err := k.symbolic(a, sym)
	if err != nil {
		return Result{Status: StatusInvalid, SingularCol: a.N}
	}
	nm, ok := num.(*sparseNumeric)
	if !ok || nm.sym != s || !s.ordered {
		return Result{Status: StatusInvalid, SingularCol: a.N}
	}

	k.load(a, s)
	s.matrix.NeedsOrdering = false

	err = s.matrix.Factor()
	if err != nil {
		return Result{Status: statusOf(err), SingularCol: singularColumn(s.matrix, s.n)}
	}
	if step := zeroPivot(s.matrix, s.n); step > 0 {
		s.matrix.Factored = false
		return Result{Status: StatusSingular, SingularCol: externalColumn(s.matrix, step, s.n)}
	}

	nm.info = factorInfo(s.matrix, s.n)
	return Result{Status: StatusOK, SingularCol: s.n}
}

func (k *SparseKernel) Solve(sym Symbolic, num Numeric, b []complex128) error {
	s, err := k.factored(sym, num)
	if err != nil {
		return err
	}
	if len(b) < s.n {
		return fmt.Errorf("rhs length %d is smaller than matrix size %d", len(b), s.n)
	}

	return k.solve(s, b, false)
}

// solve runs the substitution on b in place. With transpose set it solves
// with the conjugate transpose.
func (k *SparseKernel) solve(s *sparseSymbolic, b []complex128, transpose bool) error {
	n := s.n

	if k.format == matrix.FormatComplex {
		rhs := make([]float64, 2*(n+1)) // 1-based, interleaved
		for i := 0; i < n; i++ {
			v := b[i]
			if transpose {
				v = complex(real(v), -imag(v))
			}
			rhs[2*(i+1)] = real(v)
			rhs[2*(i+1)+1] = imag(v)
		}

		var solution []float64
		var err error
		if transpose {
			// irhs is unused with interleaved vectors but still length-checked
			solution, _, err = s.matrix.SolveComplexTransposed(rhs, make([]float64, n+1))
		} else {
			solution, _, err = s.matrix.SolveComplex(rhs, nil)
		}
		if err != nil {
			return fmt.Errorf("complex solve failed: %v", err)
		}

		for i := 0; i < n; i++ {
			re, im := solution[2*(i+1)], solution[2*(i+1)+1]
			if transpose {
				im = -im
			}
			b[i] = complex(re, im)
		}
		return nil
	}

	rhs := make([]float64, n+1)
	for i := 0; i < n; i++ {
		rhs[i+1] = real(b[i])
	}

	var solution []float64
	var err error
	if transpose {
		solution, err = s.matrix.SolveTransposed(rhs)
	} else {
		solution, err = s.matrix.Solve(rhs)
	}
	if err != nil {
		return fmt.Errorf("solve failed: %v", err)
	}

	for i := 0; i < n; i++ {
		b[i] = complex(solution[i+1], 0)
	}
	return nil
}

func (k *SparseKernel) symbolic(a *matrix.Compressed, sym Symbolic) (*sparseSymbolic, error) {
	s, ok := sym.(*sparseSymbolic)
	if !ok || s == nil || s.matrix == nil {
		return nil, fmt.Errorf("symbolic analysis not available")
	}
	if s.n != a.N || len(s.slots) != a.NNZ() {
		return nil, fmt.Errorf("pattern (%d, %d) does not match symbolic analysis (%d, %d)", a.N, a.NNZ(), s.n, len(s.slots))
	}
	return s, nil
}

func (k *SparseKernel) factored(sym Symbolic, num Numeric) (*sparseSymbolic, error) {
	s, ok := sym.(*sparseSymbolic)
	if !ok || s == nil || s.matrix == nil {
		return nil, fmt.Errorf("symbolic analysis not available")
	}
	nm, ok := num.(*sparseNumeric)
	if !ok || nm == nil || nm.sym != s || !s.matrix.Factored {
		return nil, fmt.Errorf("matrix is not factored")
	}
	return s, nil
}

// load writes the current values through the element handles kept by
// Analyze. Clear also zeroes fill-ins left by a previous factorization.
func (k *SparseKernel) load(a *matrix.Compressed, s *sparseSymbolic) {
	s.matrix.Clear()
	for p, element := range s.slots {
		v := a.Values[p]
		element.Real = real(v)
		if k.format == matrix.FormatComplex {
			element.Imag = imag(v)
		}
	}
}

func statusOf(err error) Status {
	msg := err.Error()
	switch {
	case strings.Contains(msg, "singular"), strings.Contains(msg, "zero pivot"):
		return StatusSingular
	case strings.Contains(msg, "memory"):
		return StatusOutOfMemory
	default:
		return StatusInvalid
	}
}

// singularColumn maps the failing elimination step back to a zero-based
// external column, or n when none was recorded.
func singularColumn(m *sparse.Matrix, n int) int {
	step := m.SingularCol
	if step == 0 {
		step = m.SingularRow
	}
	return externalColumn(m, step, n)
}

func externalColumn(m *sparse.Matrix, step int64, n int) int {
	if step <= 0 || step > int64(n) {
		return n
	}

	ext := m.IntToExtColMap[step]
	if ext <= 0 || ext > int64(n) {
		return n
	}
	return int(ext - 1)
}

// zeroPivot returns the first elimination step whose stored pivot
// reciprocal is missing or not finite, or 0. The ordering pass does not
// report every zero pivot it meets.
func zeroPivot(m *sparse.Matrix, n int) int64 {
	for step := int64(1); step <= int64(n); step++ {
		pivot := m.Diags[step]
		if pivot == nil {
			return step
		}
		mag := math.Hypot(pivot.Real, pivot.Imag)
		if mag == 0 || math.IsInf(mag, 0) || math.IsNaN(mag) {
			return step
		}
	}
	return 0
}

func factorInfo(m *sparse.Matrix, n int) FactorInfo {
	info := FactorInfo{N: n}
	for col := int64(1); col <= int64(n); col++ {
		for element := m.FirstInCol[col]; element != nil; element = element.NextInCol {
			if element.Row >= col {
				info.LNZ++
			}
			if element.Row <= col {
				info.UNZ++
			}
		}
	}
	return info
}
