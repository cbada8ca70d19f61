package analysis

import (
	"fmt"
	"math/cmplx"

	"github.com/edp1096/toy-ybus/pkg/netlist"
	"github.com/edp1096/toy-ybus/pkg/network"
	"github.com/edp1096/toy-ybus/pkg/partition"
	"github.com/edp1096/toy-ybus/pkg/system"
	"github.com/edp1096/toy-ybus/pkg/util"
)

type Analysis interface {
	Setup(nw *network.Network) error
	Execute() error
	GetResults() map[string][]float64
}

type BaseAnalysis struct {
	Network *network.Network
	results map[string][]float64 // key: variable name, value: result by point
}

func NewBaseAnalysis() *BaseAnalysis {
	return &BaseAnalysis{results: make(map[string][]float64)}
}

// New creates the analysis for one netlist directive.
func New(kind netlist.AnalysisType, data *netlist.NetlistData) (Analysis, error) {
	switch kind {
	case netlist.AnalysisOP:
		return NewOP(), nil
	case netlist.AnalysisAC:
		param := data.ACParam
		return NewAC(param.FStart, param.FStop, param.Points, param.Sweep), nil
	case netlist.AnalysisIslands:
		return NewIslands(), nil
	case netlist.AnalysisPartition:
		return NewPartition(data.Zones, partition.Greedy{}), nil
	}
	return nil, fmt.Errorf("unsupported analysis type: %v", kind)
}

func (a *BaseAnalysis) setup(nw *network.Network) error {
	if nw == nil || nw.System() == nil {
		return fmt.Errorf("network not set")
	}
	a.Network = nw
	return nil
}

func (a *BaseAnalysis) store(name string, value float64) {
	a.results[name] = append(a.results[name], value)
}

// StorePhasors appends magnitude and phase (degree) of every value.
func (a *BaseAnalysis) StorePhasors(solution map[string]complex128) {
	for name, value := range solution {
		a.store(name+"_MAG", cmplx.Abs(value))
		a.store(name+"_PHASE", util.PhaseDeg(value))
	}
}

func (a *BaseAnalysis) StoreACResult(freq float64, solution map[string]complex128) {
	a.store("FREQ", freq)
	a.StorePhasors(solution)
}

// StoreMetrics keeps the factorization counters of the last solve.
func (a *BaseAnalysis) StoreMetrics(m system.Metrics) {
	a.results["NNZ"] = []float64{float64(m.PreNNZ)}
	a.results["LUNNZ"] = []float64{float64(m.PostNNZ)}
	a.results["RCOND"] = []float64{m.RCond}
	a.results["RGROWTH"] = []float64{m.RGrowth}
	a.results["CONDEST"] = []float64{m.CondEst}
	a.results["FLOPS"] = []float64{m.Flops}
}

func (a *BaseAnalysis) GetResults() map[string][]float64 {
	return a.results
}
