package analysis

import (
	"fmt"

	"github.com/edp1096/toy-ybus/pkg/network"
	"github.com/edp1096/toy-ybus/pkg/partition"
)

// PartitionAnalysis splits the buses into zones over the admittance graph.
type PartitionAnalysis struct {
	BaseAnalysis
	zones       int
	partitioner partition.Partitioner
	result      partition.Result
}

func NewPartition(zones int, p partition.Partitioner) *PartitionAnalysis {
	return &PartitionAnalysis{
		BaseAnalysis: *NewBaseAnalysis(),
		zones:        zones,
		partitioner:  p,
	}
}

func (pa *PartitionAnalysis) Setup(nw *network.Network) error {
	if err := pa.setup(nw); err != nil {
		return err
	}
	if pa.zones < 1 {
		return fmt.Errorf("invalid zone count: %d", pa.zones)
	}
	if pa.partitioner == nil {
		pa.partitioner = partition.Greedy{}
	}
	return nil
}

func (pa *PartitionAnalysis) Execute() error {
	nw := pa.Network
	if nw == nil {
		return fmt.Errorf("network not set")
	}

	if err := nw.Stamp(nw.Status); err != nil {
		return fmt.Errorf("stamping error: %v", err)
	}

	g := partition.FromCompressed(nw.System().Compressed())
	result, err := pa.partitioner.Partition(g, pa.zones)
	if err != nil {
		return fmt.Errorf("partition: %w", err)
	}
	pa.result = result

	for name, idx := range nw.GetNodeMap() {
		pa.results[fmt.Sprintf("ZONE(%s)", name)] = []float64{float64(result.Zones[idx-1])}
	}
	pa.results["EDGECUT"] = []float64{float64(result.EdgeCut)}

	return nil
}

func (pa *PartitionAnalysis) Result() partition.Result {
	return pa.result
}
