package system

import (
	"math/cmplx"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edp1096/toy-ybus/pkg/kernel"
	"github.com/edp1096/toy-ybus/pkg/matrix"
)

// countingKernel wraps the sparse kernel and counts how often each
// operation reaches it.
type countingKernel struct {
	kernel.Kernel
	analyze  int
	factor   int
	refactor int
	solve    int

	failRefactor  bool
	analyzeStatus kernel.Status
}

func newCountingKernel(format matrix.Format) *countingKernel {
	return &countingKernel{Kernel: kernel.NewSparse(format)}
}

func (c *countingKernel) Analyze(a *matrix.Compressed) (kernel.Symbolic, kernel.Status) {
	c.analyze++
	if c.analyzeStatus != kernel.StatusOK {
		return nil, c.analyzeStatus
	}
	return c.Kernel.Analyze(a)
}

func (c *countingKernel) Factor(a *matrix.Compressed, sym kernel.Symbolic) (kernel.Numeric, kernel.Result) {
	c.factor++
	return c.Kernel.Factor(a, sym)
}

func (c *countingKernel) Refactor(a *matrix.Compressed, sym kernel.Symbolic, num kernel.Numeric) kernel.Result {
	c.refactor++
	if c.failRefactor {
		return kernel.Result{Status: kernel.StatusInvalid, SingularCol: a.N}
	}
	return c.Kernel.Refactor(a, sym, num)
}

func (c *countingKernel) Solve(sym kernel.Symbolic, num kernel.Numeric, b []complex128) error {
	c.solve++
	return c.Kernel.Solve(sym, num, b)
}

func (c *countingKernel) calls() int {
	return c.analyze + c.factor + c.refactor
}

type recordingObserver struct {
	mu     sync.Mutex
	paths  []FactorPath
	solves int
}

func (r *recordingObserver) ObserveFactor(path FactorPath, _ Outcome, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.paths = append(r.paths, path)
}

func (r *recordingObserver) ObserveSolve(time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.solves++
}

func (r *recordingObserver) last() FactorPath {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.paths[len(r.paths)-1]
}

func newSystem(t *testing.T, n int, opts ...Option) (*System, *countingKernel) {
	t.Helper()
	k := newCountingKernel(matrix.FormatComplex)
	s, err := New(n, append([]Option{WithKernel(k)}, opts...)...)
	require.NoError(t, err)
	t.Cleanup(s.Destroy)
	return s, k
}

func stampChain(s *System) {
	s.AddElement(1, 1, 2)
	s.AddElement(2, 2, 2)
	s.AddElement(3, 3, 2)
	s.AddElement(1, 2, -1)
	s.AddElement(2, 1, -1)
}

func assertVector(t *testing.T, want, got []complex128) {
	t.Helper()
	require.Len(t, got, len(want))
	for i := range want {
		assert.InDelta(t, 0, cmplx.Abs(want[i]-got[i]), 1e-12, "index %d", i)
	}
}

func TestChainSolve(t *testing.T) {
	s, _ := newSystem(t, 3)
	stampChain(s)

	require.NoError(t, s.FactorSystem())
	x, err := s.Solve([]complex128{0, 1, 0, 0})
	require.NoError(t, err)
	assertVector(t, []complex128{0, 2.0 / 3, 1.0 / 3, 0}, x)

	for _, v := range x {
		assert.False(t, cmplx.IsNaN(v) || cmplx.IsInf(v))
	}
}

func TestChainSolveRealFormat(t *testing.T) {
	s, err := New(3, WithFormat(matrix.FormatReal))
	require.NoError(t, err)
	defer s.Destroy()

	stampChain(s)
	s.AddElement(3, 3, 5i) // dropped by real storage
	assert.Equal(t, complex128(2), s.GetElement(3, 3))

	require.NoError(t, s.FactorSystem())
	x, err := s.Solve([]complex128{0, 1, 0, 0})
	require.NoError(t, err)
	assertVector(t, []complex128{0, 2.0 / 3, 1.0 / 3, 0}, x)
}

func TestAddElementSums(t *testing.T) {
	s, _ := newSystem(t, 2)
	s.AddElement(1, 2, 1+1i)
	s.AddElement(1, 2, 2-3i)
	s.AddElement(1, 2, 0.5)
	assert.Equal(t, 3.5-2i, s.GetElement(1, 2))

	// Once compressed the update lands in the existing slot.
	s.AddElement(1, 2, -0.5)
	assert.Equal(t, 3-2i, s.GetElement(1, 2))
	assert.Equal(t, 1, s.Compressed().NNZ())
}

func TestAddElementCancellationKeepsSlot(t *testing.T) {
	s, _ := newSystem(t, 2)
	s.AddElement(2, 1, 4)
	s.AddElement(2, 1, -4)

	c := s.Compressed()
	assert.Equal(t, 1, c.NNZ())
	assert.Equal(t, complex128(0), s.GetElement(2, 1))
}

func TestAddElementIgnores(t *testing.T) {
	s, _ := newSystem(t, 2)
	s.AddElement(1, 1, 0)
	s.AddElement(0, 1, 1)
	s.AddElement(1, 0, 1)
	s.AddElement(3, 1, 1)
	s.AddElement(1, -1, 1)

	assert.Equal(t, 0, s.Compressed().NNZ())
	assert.Equal(t, complex128(0), s.GetElement(0, 0))
	assert.Equal(t, complex128(0), s.GetElement(5, 5))
}

func TestPrimitiveGroundSkipped(t *testing.T) {
	s, _ := newSystem(t, 2)
	// column-major 2x2: [a b; c d] stored as a c b d
	block := []complex128{1, -1, -1, 1}
	require.NoError(t, s.AddPrimitiveMatrix(2, []int{1, 0}, block))

	c := s.Compressed()
	assert.Equal(t, 1, c.NNZ())
	assert.Equal(t, complex128(1), s.GetElement(1, 1))
	assert.Equal(t, complex128(0), s.GetElement(2, 2))
}

func TestPrimitiveColumnMajor(t *testing.T) {
	s, _ := newSystem(t, 2)
	block := []complex128{1, 2, 3, 4}
	require.NoError(t, s.AddPrimitiveMatrix(2, []int{2, 1}, block))

	assert.Equal(t, complex128(1), s.GetElement(2, 2))
	assert.Equal(t, complex128(2), s.GetElement(1, 2))
	assert.Equal(t, complex128(3), s.GetElement(2, 1))
	assert.Equal(t, complex128(4), s.GetElement(1, 1))
}

func TestPrimitiveSkipsZeros(t *testing.T) {
	s, _ := newSystem(t, 2)
	require.NoError(t, s.AddPrimitiveMatrix(2, []int{1, 2}, []complex128{1, 0, 0, 1}))
	assert.Equal(t, 2, s.Compressed().NNZ())
}

func TestPrimitiveOutOfRangeRejected(t *testing.T) {
	s, _ := newSystem(t, 2)
	s.AddElement(1, 1, 1)
	before := s.Compressed()

	err := s.AddPrimitiveMatrix(2, []int{1, 3}, []complex128{1, -1, -1, 1})
	require.ErrorIs(t, err, ErrNodeOutOfRange)
	assert.Equal(t, before, s.Compressed())

	err = s.AddPrimitiveMatrix(2, []int{1}, []complex128{1, -1, -1, 1})
	require.ErrorIs(t, err, ErrBadPrimitive)
}

func TestIncrementMissingSlot(t *testing.T) {
	s, _ := newSystem(t, 3, WithReuse(ReuseNumeric))
	stampChain(s)
	require.NoError(t, s.FactorSystem())
	nnz := s.Compressed().NNZ()

	require.ErrorIs(t, s.IncrementElement(1, 3, 1, 0), ErrNoSlot)
	require.ErrorIs(t, s.ZeroiseElement(3, 1), ErrNoSlot)
	require.ErrorIs(t, s.IncrementElement(0, 1, 1, 0), ErrNoSlot)
	assert.Equal(t, nnz, s.Compressed().NNZ())
	assert.False(t, s.reuseSymbolic)
}

func TestIncrementNeedsCompressedTier(t *testing.T) {
	s, _ := newSystem(t, 3)
	stampChain(s)
	require.NoError(t, s.FactorSystem())

	require.ErrorIs(t, s.IncrementElement(1, 1, 1, 0), ErrReuseDisabled)
	require.ErrorIs(t, s.ZeroiseElement(1, 1), ErrReuseDisabled)
	assert.Equal(t, complex128(2), s.GetElement(1, 1))
}

func TestIncrementAndZeroise(t *testing.T) {
	s, _ := newSystem(t, 3, WithReuse(ReuseCompressed))
	stampChain(s)
	require.NoError(t, s.FactorSystem())

	require.NoError(t, s.IncrementElement(1, 1, 1, 2))
	assert.Equal(t, 3+2i, s.GetElement(1, 1))
	assert.False(t, s.Factored())

	require.NoError(t, s.ZeroiseElement(1, 2))
	assert.Equal(t, complex128(0), s.GetElement(1, 2))
	assert.Equal(t, 5, s.Compressed().NNZ())
}

func TestFactorCachedWhenUnchanged(t *testing.T) {
	obs := &recordingObserver{}
	s, k := newSystem(t, 3, WithObserver(obs))
	stampChain(s)

	first := s.Factor()
	calls := k.calls()
	m1 := s.Metrics()

	second := s.Factor()
	assert.Equal(t, first, second)
	assert.Equal(t, calls, k.calls())
	assert.Equal(t, PathCached, obs.last())
	assert.Equal(t, m1, s.Metrics())
}

func TestFactorCachedAtEveryTier(t *testing.T) {
	for _, tier := range []ReuseTier{ReuseNone, ReuseCompressed, ReuseSymbolic, ReuseNumeric} {
		t.Run(tier.String(), func(t *testing.T) {
			obs := &recordingObserver{}
			s, k := newSystem(t, 3, WithReuse(tier), WithObserver(obs))
			stampChain(s)

			require.NoError(t, s.FactorSystem())
			assert.Equal(t, PathFull, obs.last())
			calls := k.calls()

			require.NoError(t, s.FactorSystem())
			assert.Equal(t, PathCached, obs.last())
			assert.Equal(t, calls, k.calls())
		})
	}
}

func TestSingularClearsFillCount(t *testing.T) {
	s, _ := newSystem(t, 2)
	s.AddElement(1, 1, 1)
	s.AddElement(2, 2, 1)
	require.NoError(t, s.FactorSystem())
	require.NotZero(t, s.Metrics().PostNNZ)

	// [[1, 1], [1, 1]]
	s.AddElement(1, 2, 1)
	s.AddElement(2, 1, 1)
	require.ErrorIs(t, s.FactorSystem(), ErrSingular)
	assert.Zero(t, s.Metrics().PostNNZ)
}

func TestFactorAfterStampRecomputes(t *testing.T) {
	s, k := newSystem(t, 3)
	stampChain(s)
	require.NoError(t, s.FactorSystem())
	analyzed := k.analyze

	s.AddElement(1, 1, 1)
	require.NoError(t, s.FactorSystem())
	assert.Equal(t, analyzed+1, k.analyze)

	x, err := s.Solve([]complex128{0, 1, 0, 0})
	require.NoError(t, err)
	assertVector(t, []complex128{0, 0.4, 0.2, 0}, x)
}

func TestSymbolicReuseAfterIncrement(t *testing.T) {
	obs := &recordingObserver{}
	s, k := newSystem(t, 3, WithReuse(ReuseSymbolic), WithObserver(obs))
	stampChain(s)
	require.NoError(t, s.FactorSystem())
	assert.Equal(t, 1, k.analyze)

	require.NoError(t, s.IncrementElement(1, 1, 1, 0))
	require.NoError(t, s.FactorSystem())
	assert.Equal(t, 1, k.analyze)
	assert.Equal(t, 2, k.factor)
	assert.Equal(t, 0, k.refactor)
	assert.Equal(t, PathNumeric, obs.last())
}

func TestNumericReuseRefactors(t *testing.T) {
	obs := &recordingObserver{}
	s, k := newSystem(t, 3, WithReuse(ReuseNumeric), WithObserver(obs))
	stampChain(s)
	require.NoError(t, s.FactorSystem())

	require.NoError(t, s.IncrementElement(1, 1, 1, 0))
	require.NoError(t, s.FactorSystem())
	assert.Equal(t, 1, k.analyze)
	assert.Equal(t, 1, k.refactor)
	assert.Equal(t, PathRefactor, obs.last())

	x, err := s.Solve([]complex128{0, 1, 0, 0})
	require.NoError(t, err)
	assertVector(t, []complex128{0, 0.4, 0.2, 0}, x)
}

func TestSolveRefactorsAfterIncrement(t *testing.T) {
	s, k := newSystem(t, 3, WithReuse(ReuseNumeric))
	stampChain(s)
	require.NoError(t, s.FactorSystem())

	require.NoError(t, s.IncrementElement(1, 1, 1, 0))
	x, err := s.Solve([]complex128{0, 1, 0, 0})
	require.NoError(t, err)
	assertVector(t, []complex128{0, 0.4, 0.2, 0}, x)
	assert.Equal(t, 1, k.refactor)
	assert.True(t, s.Factored())
}

func TestRefactorFailureFallsBack(t *testing.T) {
	obs := &recordingObserver{}
	s, k := newSystem(t, 3, WithReuse(ReuseNumeric), WithObserver(obs))
	stampChain(s)
	require.NoError(t, s.FactorSystem())

	k.failRefactor = true
	require.NoError(t, s.IncrementElement(1, 1, 1, 0))
	require.NoError(t, s.FactorSystem())
	assert.Equal(t, 1, k.refactor)
	assert.Equal(t, 2, k.analyze)
	assert.Equal(t, PathFull, obs.last())

	x, err := s.Solve([]complex128{0, 1, 0, 0})
	require.NoError(t, err)
	assertVector(t, []complex128{0, 0.4, 0.2, 0}, x)
}

func TestPatternGrowthDiscardsSymbolic(t *testing.T) {
	s, k := newSystem(t, 3, WithReuse(ReuseNumeric))
	stampChain(s)
	require.NoError(t, s.FactorSystem())

	require.NoError(t, s.IncrementElement(1, 1, 1, 0))
	s.AddElement(2, 3, -1)
	s.AddElement(3, 2, -1)
	require.NoError(t, s.FactorSystem())
	assert.Equal(t, 2, k.analyze)
	assert.Equal(t, 0, k.refactor)
	assert.Equal(t, 7, s.Metrics().PreNNZ)
}

func TestSolveBeforeFactor(t *testing.T) {
	s, _ := newSystem(t, 3)
	stampChain(s)

	_, err := s.Solve([]complex128{0, 1, 0, 0})
	require.ErrorIs(t, err, ErrNotFactored)

	require.NoError(t, s.FactorSystem())
	_, err = s.Solve([]complex128{0, 1})
	require.ErrorIs(t, err, ErrSizeMismatch)
}

func TestSingular(t *testing.T) {
	s, _ := newSystem(t, 2)
	require.NoError(t, s.AddPrimitiveMatrix(2, []int{1, 2}, []complex128{1, -1, -1, 1}))

	require.ErrorIs(t, s.FactorSystem(), ErrSingular)
	assert.False(t, s.Factored())
	assert.NotZero(t, s.FindDisconnectedSubnetwork())

	_, err := s.Solve([]complex128{0, 1, 0})
	require.ErrorIs(t, err, ErrNotFactored)

	// A shunt at bus 1 makes the system solvable again.
	s.AddElement(1, 1, 1)
	require.NoError(t, s.FactorSystem())
	assert.Zero(t, s.FindDisconnectedSubnetwork())
	assert.Zero(t, s.Metrics().SingularCol)
}

func TestHardFailureFlagsSingularIndex(t *testing.T) {
	s, k := newSystem(t, 2)
	s.AddElement(1, 1, 1)
	s.AddElement(2, 2, 1)
	require.NoError(t, s.FactorSystem())
	require.NotZero(t, s.Metrics().PostNNZ)

	k.analyzeStatus = kernel.StatusOutOfMemory
	s.AddElement(1, 2, 1)

	assert.Equal(t, HardFailure, s.Factor())
	assert.Equal(t, 1, s.Metrics().SingularCol)
	assert.Zero(t, s.Metrics().PostNNZ)
	require.ErrorIs(t, s.FactorSystem(), ErrFactorization)

	k.analyzeStatus = kernel.StatusOK
	s.AddElement(1, 1, 1)
	require.NoError(t, s.FactorSystem())
}

func TestEmptyPattern(t *testing.T) {
	obs := &recordingObserver{}
	s, k := newSystem(t, 2, WithObserver(obs))

	assert.Equal(t, Success, s.Factor())
	assert.Equal(t, PathTrivial, obs.last())
	assert.Equal(t, Success, s.Factor())
	assert.Equal(t, PathCached, obs.last())
	assert.Zero(t, k.calls())

	require.NoError(t, s.FactorSystem())
	x, err := s.Solve([]complex128{0, 1, 2})
	require.NoError(t, err)
	assert.Equal(t, []complex128{0, 0, 0}, x)
	assert.Equal(t, Metrics{Size: 2}, s.Metrics())
}

func TestZeroThenSolve(t *testing.T) {
	s, _ := newSystem(t, 3)
	stampChain(s)
	require.NoError(t, s.FactorSystem())

	s.Zero()
	assert.Equal(t, 0, s.Compressed().NNZ())
	require.NoError(t, s.FactorSystem())

	x, err := s.Solve(make([]complex128, 4))
	require.NoError(t, err)
	assert.Equal(t, make([]complex128, 4), x)
}

func TestZeroSizeSystem(t *testing.T) {
	s, _ := newSystem(t, 0)
	s.AddElement(1, 1, 1)
	require.NoError(t, s.FactorSystem())

	x, err := s.Solve([]complex128{5})
	require.NoError(t, err)
	assert.Equal(t, []complex128{5}, x)

	ids, count := s.FindIslands()
	assert.Empty(t, ids)
	assert.Zero(t, count)
}

func TestNewRejectsNegativeSize(t *testing.T) {
	_, err := New(-1)
	assert.Error(t, err)
}

func TestMetrics(t *testing.T) {
	s, _ := newSystem(t, 3)
	stampChain(s)
	require.NoError(t, s.FactorSystem())

	m := s.Metrics()
	assert.Equal(t, 3, m.Size)
	assert.Equal(t, 5, m.PreNNZ)
	assert.GreaterOrEqual(t, m.PostNNZ, 5)
	assert.Zero(t, m.SingularCol)
	assert.Greater(t, m.RCond, 0.0)
	assert.LessOrEqual(t, m.RCond, 1.0)
	assert.Greater(t, m.RGrowth, 0.0)
	assert.GreaterOrEqual(t, m.CondEst, 1.0)
}

func TestReuseTierOrder(t *testing.T) {
	assert.Less(t, ReuseNone, ReuseCompressed)
	assert.Less(t, ReuseCompressed, ReuseSymbolic)
	assert.Less(t, ReuseSymbolic, ReuseNumeric)

	for _, tier := range []ReuseTier{ReuseNone, ReuseCompressed, ReuseSymbolic, ReuseNumeric} {
		parsed, err := ParseReuseTier(tier.String())
		require.NoError(t, err)
		assert.Equal(t, tier, parsed)
	}
	_, err := ParseReuseTier("everything")
	assert.Error(t, err)
}

func TestSetReuseOption(t *testing.T) {
	s, _ := newSystem(t, 3)
	stampChain(s)
	require.NoError(t, s.FactorSystem())
	require.ErrorIs(t, s.ZeroiseElement(1, 1), ErrReuseDisabled)

	s.SetReuseOption(ReuseCompressed)
	assert.Equal(t, ReuseCompressed, s.Reuse())
	require.NoError(t, s.ZeroiseElement(1, 1))
}

func TestSeparateSystemsConcurrently(t *testing.T) {
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(scale float64) {
			defer wg.Done()
			s, err := New(3)
			if !assert.NoError(t, err) {
				return
			}
			defer s.Destroy()

			stampChain(s)
			s.AddElement(3, 3, complex(scale, 0))
			if !assert.NoError(t, s.FactorSystem()) {
				return
			}
			x, err := s.Solve([]complex128{0, 0, 0, 1})
			if assert.NoError(t, err) {
				assert.InDelta(t, 1/(2+scale), real(x[3]), 1e-12)
			}
		}(float64(i))
	}
	wg.Wait()
}
