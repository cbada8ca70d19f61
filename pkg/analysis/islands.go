package analysis

import (
	"fmt"

	"github.com/edp1096/toy-ybus/pkg/network"
)

// IslandAnalysis labels every node with its connected component.
type IslandAnalysis struct {
	BaseAnalysis
	islands map[string]int
	count   int
}

func NewIslands() *IslandAnalysis {
	return &IslandAnalysis{BaseAnalysis: *NewBaseAnalysis()}
}

func (ia *IslandAnalysis) Setup(nw *network.Network) error {
	return ia.setup(nw)
}

func (ia *IslandAnalysis) Execute() error {
	nw := ia.Network
	if nw == nil {
		return fmt.Errorf("network not set")
	}

	if err := nw.Stamp(nw.Status); err != nil {
		return fmt.Errorf("stamping error: %v", err)
	}

	ia.islands, ia.count = nw.Islands()
	for name, id := range ia.islands {
		ia.results[fmt.Sprintf("ISLAND(%s)", name)] = []float64{float64(id)}
	}
	ia.results["ISLANDS"] = []float64{float64(ia.count)}

	return nil
}

func (ia *IslandAnalysis) Islands() (map[string]int, int) {
	return ia.islands, ia.count
}
