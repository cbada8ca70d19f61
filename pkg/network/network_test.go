package network

import (
	"math"
	"math/cmplx"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edp1096/toy-ybus/pkg/device"
	"github.com/edp1096/toy-ybus/pkg/netlist"
	"github.com/edp1096/toy-ybus/pkg/system"
)

func build(t *testing.T, text string, opts ...system.Option) *Network {
	t.Helper()
	data, err := netlist.Parse(text)
	require.NoError(t, err)
	n, err := Build(data, nil, opts...)
	require.NoError(t, err)
	t.Cleanup(n.Destroy)
	return n
}

const ladder = `ladder
I1 a 0 1
R1 a b 1
R2 b 0 1
.end
`

func TestSolveLadder(t *testing.T) {
	n := build(t, ladder)
	assert.Equal(t, 2, n.GetNumNodes())
	assert.Equal(t, []string{"a", "b"}, n.NodeNames())

	require.NoError(t, n.Stamp(n.Status))
	require.NoError(t, n.Solve(n.Status))

	sol, err := n.GetSolution()
	require.NoError(t, err)
	assert.InDelta(t, 2.0, real(sol["V(a)"]), 1e-12)
	assert.InDelta(t, 1.0, real(sol["V(b)"]), 1e-12)
	assert.InDelta(t, 1.0, real(sol["I(R1)"]), 1e-12)
	assert.InDelta(t, 1.0, real(sol["I(R2)"]), 1e-12)
	assert.Equal(t, complex(1, 0), sol["I(I1)"])
	assert.InDelta(t, 2.0, real(n.GetNodeVoltage("a")), 1e-12)
	assert.Zero(t, n.GetNodeVoltage("missing"))
}

func TestSolutionBeforeSolve(t *testing.T) {
	n := build(t, ladder)
	_, err := n.GetSolution()
	assert.Error(t, err)
}

func TestInjectionsSkipGround(t *testing.T) {
	n := build(t, `inj
I1 a b 2
I2 0 b 1
R1 a b 1
R2 b 0 1
`)
	rhs := n.Injections(n.Status)
	require.Len(t, rhs, 3)
	assert.Equal(t, complex(0, 0), rhs[0])
	assert.Equal(t, complex(2, 0), rhs[1])
	assert.Equal(t, complex(-3, 0), rhs[2])
}

func TestRestampMatchesStamp(t *testing.T) {
	const rc = `rc
I1 1 0 1
R1 1 0 1
C1 1 0 1
.end
`
	for _, tier := range []system.ReuseTier{system.ReuseNone, system.ReuseCompressed, system.ReuseSymbolic, system.ReuseNumeric} {
		t.Run(tier.String(), func(t *testing.T) {
			n := build(t, rc, system.WithReuse(tier))

			status := &device.NetworkStatus{Frequency: 0.5}
			require.NoError(t, n.Stamp(status))
			require.NoError(t, n.Solve(status))

			status.Frequency = 1
			require.NoError(t, n.Restamp(status))
			require.NoError(t, n.Solve(status))

			want := 1 / complex(1, 2*math.Pi)
			assert.InDelta(t, 0.0, cmplx.Abs(n.GetNodeVoltage("1")-want), 1e-12)
		})
	}
}

func TestRestampFallsBackOnNewPosition(t *testing.T) {
	n := build(t, `bridge
I1 1 0 1
R1 1 0 1
R2 2 0 1
C1 1 2 1
`, system.WithReuse(system.ReuseNumeric))

	// At dc the capacitor adds nothing, so (1,2) is not in the pattern.
	dc := &device.NetworkStatus{Frequency: 0}
	require.NoError(t, n.Stamp(dc))
	require.NoError(t, n.Solve(dc))
	assert.InDelta(t, 0.0, cmplx.Abs(n.GetNodeVoltage("2")), 1e-12)

	ac := &device.NetworkStatus{Frequency: 1 / (2 * math.Pi)}
	require.NoError(t, n.Restamp(ac))
	require.NoError(t, n.Solve(ac))

	// Y = [[1+j, -j], [-j, 1+j]], det = 1+2j
	det := complex(1, 2)
	assert.InDelta(t, 0.0, cmplx.Abs(n.GetNodeVoltage("1")-complex(1, 1)/det), 1e-12)
	assert.InDelta(t, 0.0, cmplx.Abs(n.GetNodeVoltage("2")-complex(0, 1)/det), 1e-12)
}

func TestIslands(t *testing.T) {
	n := build(t, `two groups
R1 a b 1
R2 b 0 1
R3 c d 1
R4 d 0 1
`)
	require.NoError(t, n.Stamp(n.Status))

	islands, count := n.Islands()
	assert.Equal(t, 2, count)
	assert.Equal(t, islands["a"], islands["b"])
	assert.Equal(t, islands["c"], islands["d"])
	assert.NotEqual(t, islands["a"], islands["c"])
}

func TestSingularNetwork(t *testing.T) {
	n := build(t, `floating
I1 a 0 1
R1 a b 1
`)
	require.NoError(t, n.Stamp(n.Status))
	assert.Error(t, n.Solve(n.Status))
}
