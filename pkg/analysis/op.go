package analysis

import (
	"fmt"

	"github.com/edp1096/toy-ybus/pkg/network"
)

type OperatingPoint struct{ BaseAnalysis }

func NewOP() *OperatingPoint {
	return &OperatingPoint{
		BaseAnalysis: *NewBaseAnalysis(),
	}
}

func (op *OperatingPoint) Setup(nw *network.Network) error {
	return op.setup(nw)
}

// Execute solves the network once at its own frequency.
func (op *OperatingPoint) Execute() error {
	nw := op.Network
	if nw == nil {
		return fmt.Errorf("network not set")
	}

	err := nw.Stamp(nw.Status)
	if err != nil {
		return fmt.Errorf("stamping error: %v", err)
	}

	err = nw.Solve(nw.Status)
	if err != nil {
		return fmt.Errorf("matrix solve error: %w", err)
	}

	solution, err := nw.GetSolution()
	if err != nil {
		return err
	}
	op.StorePhasors(solution)
	op.StoreMetrics(nw.System().Metrics())

	return nil
}
