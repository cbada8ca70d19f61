package partition

import (
	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/traverse"
)

// Greedy grows zones breadth-first from the lowest unassigned vertex until
// each holds its share of the vertices. The last zone takes whatever is
// left.
type Greedy struct{}

var _ Partitioner = Greedy{}

func (Greedy) Partition(g Graph, k int) (Result, error) {
	if k < 1 {
		return Result{}, ErrInvalidCount
	}
	if err := g.validate(); err != nil {
		return Result{}, err
	}

	wg := simple.NewWeightedUndirectedGraph(0, 0)
	for v := 0; v < g.Vertices; v++ {
		wg.AddNode(simple.Node(v))
	}
	for _, e := range g.Edges {
		if e.From == e.To {
			continue
		}
		w := float64(e.Weight)
		if existing, ok := wg.Weight(int64(e.From), int64(e.To)); ok {
			w += existing
		}
		wg.SetWeightedEdge(wg.NewWeightedEdge(simple.Node(e.From), simple.Node(e.To), w))
	}

	zones := make([]int, g.Vertices)
	share := (g.Vertices + k - 1) / k
	zone, size := 1, 0

	for seed := 0; seed < g.Vertices; seed++ {
		if zones[seed] != 0 {
			continue
		}

		bfs := traverse.BreadthFirst{
			Traverse: func(e graph.Edge) bool {
				return zones[e.From().ID()] == 0 || zones[e.To().ID()] == 0
			},
		}
		bfs.Walk(wg, simple.Node(seed), func(n graph.Node, _ int) bool {
			zones[n.ID()] = zone
			size++
			if zone < k && size == share {
				zone++
				size = 0
				return true
			}
			return false
		})
	}

	return Result{Zones: zones, EdgeCut: EdgeCut(g, zones)}, nil
}
