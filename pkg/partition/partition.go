// Package partition splits a weighted network graph into zones.
package partition

import (
	"errors"
	"fmt"
	"math/cmplx"

	"github.com/edp1096/toy-ybus/pkg/matrix"
)

var (
	ErrInvalidVertex = errors.New("partition: edge references an unknown vertex")
	ErrInvalidCount  = errors.New("partition: zone count must be positive")
)

// Edge joins two zero-based vertices.
type Edge struct {
	From   int
	To     int
	Weight int
}

type Graph struct {
	Vertices int
	Edges    []Edge
}

// Result holds the 1-based zone of every vertex and the total weight of
// edges whose ends fall in different zones.
type Result struct {
	Zones   []int
	EdgeCut int
}

// Partitioner maps a weighted graph to k zones.
type Partitioner interface {
	Partition(g Graph, k int) (Result, error)
}

func (g Graph) validate() error {
	if g.Vertices < 0 {
		return fmt.Errorf("%w: %d vertices", ErrInvalidVertex, g.Vertices)
	}
	for _, e := range g.Edges {
		if e.From < 0 || e.From >= g.Vertices || e.To < 0 || e.To >= g.Vertices {
			return fmt.Errorf("%w: (%d, %d) with %d vertices", ErrInvalidVertex, e.From, e.To, g.Vertices)
		}
	}
	return nil
}

// EdgeCut sums the weights of edges crossing zones.
func EdgeCut(g Graph, zones []int) int {
	cut := 0
	for _, e := range g.Edges {
		if e.From != e.To && zones[e.From] != zones[e.To] {
			cut += e.Weight
		}
	}
	return cut
}

// FromCompressed builds the bus graph of an admittance matrix: one edge per
// off-diagonal pair, weighted by the rounded admittance magnitude (at least 1).
func FromCompressed(c *matrix.Compressed) Graph {
	type pair struct{ a, b int }
	weights := make(map[pair]float64)
	order := make([]pair, 0)

	for j := 0; j < c.N; j++ {
		for k := c.ColPtr[j]; k < c.ColPtr[j+1]; k++ {
			i := c.RowIdx[k]
			if i == j {
				continue
			}
			p := pair{min(i, j), max(i, j)}
			if _, ok := weights[p]; !ok {
				order = append(order, p)
			}
			weights[p] = max(weights[p], cmplx.Abs(c.Values[k]))
		}
	}

	g := Graph{Vertices: c.N, Edges: make([]Edge, 0, len(order))}
	for _, p := range order {
		w := int(weights[p] + 0.5)
		if w < 1 {
			w = 1
		}
		g.Edges = append(g.Edges, Edge{From: p.a, To: p.b, Weight: w})
	}
	return g
}
