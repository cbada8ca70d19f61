package partition

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edp1096/toy-ybus/pkg/matrix"
)

func path(n int) Graph {
	g := Graph{Vertices: n}
	for v := 0; v+1 < n; v++ {
		g.Edges = append(g.Edges, Edge{From: v, To: v + 1, Weight: 1})
	}
	return g
}

func TestGreedyPathSplitsInHalves(t *testing.T) {
	res, err := Greedy{}.Partition(path(6), 2)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 1, 1, 2, 2, 2}, res.Zones)
	assert.Equal(t, 1, res.EdgeCut)
}

func TestGreedySingleZone(t *testing.T) {
	res, err := Greedy{}.Partition(path(4), 1)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 1, 1, 1}, res.Zones)
	assert.Zero(t, res.EdgeCut)
}

func TestGreedyTwoComponents(t *testing.T) {
	g := Graph{Vertices: 4, Edges: []Edge{
		{From: 0, To: 1, Weight: 3},
		{From: 2, To: 3, Weight: 5},
	}}
	res, err := Greedy{}.Partition(g, 2)
	require.NoError(t, err)
	assert.Equal(t, res.Zones[0], res.Zones[1])
	assert.Equal(t, res.Zones[2], res.Zones[3])
	assert.NotEqual(t, res.Zones[0], res.Zones[2])
	assert.Zero(t, res.EdgeCut)
}

func TestGreedyMoreZonesThanNeeded(t *testing.T) {
	res, err := Greedy{}.Partition(path(3), 5)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3}, res.Zones)
	assert.Equal(t, 2, res.EdgeCut)
}

func TestGreedyRejectsBadInput(t *testing.T) {
	_, err := Greedy{}.Partition(path(3), 0)
	require.ErrorIs(t, err, ErrInvalidCount)

	_, err = Greedy{}.Partition(Graph{Vertices: 2, Edges: []Edge{{From: 0, To: 2, Weight: 1}}}, 2)
	require.ErrorIs(t, err, ErrInvalidVertex)
}

func TestFromCompressed(t *testing.T) {
	c := matrix.NewCompressed(3)
	p := matrix.NewTriplets(6)
	p.Append(0, 0, 2)
	p.Append(0, 1, -1.2)
	p.Append(1, 0, -1.2)
	p.Append(1, 2, 0.1i)
	p.Append(2, 1, 0.1i)
	c.Compact(p)

	g := FromCompressed(c)
	assert.Equal(t, 3, g.Vertices)
	assert.Equal(t, []Edge{
		{From: 0, To: 1, Weight: 1},
		{From: 1, To: 2, Weight: 1},
	}, g.Edges)
}
