package network

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"

	"github.com/edp1096/toy-ybus/pkg/device"
	"github.com/edp1096/toy-ybus/pkg/netlist"
	"github.com/edp1096/toy-ybus/pkg/system"
	"github.com/edp1096/toy-ybus/pkg/util"
)

type Network struct {
	name     string
	nodeMap  map[string]int
	devices  []device.Device
	branches []device.Branch
	sources  []device.Source
	numNodes int
	system   *system.System
	Status   *device.NetworkStatus
	logger   *slog.Logger
	solution []complex128
	stamped  bool
}

func New(name string, logger *slog.Logger) *Network {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Network{
		name:    name,
		nodeMap: make(map[string]int),
		devices: make([]device.Device, 0),
		Status:  &device.NetworkStatus{},
		logger:  logger,
	}
}

// Build maps nodes, creates the devices and an owned system sized to the
// node count.
func Build(data *netlist.NetlistData, logger *slog.Logger, opts ...system.Option) (*Network, error) {
	n := New(data.Title, logger)
	if err := n.AssignNodeMap(data.Elements); err != nil {
		return nil, err
	}
	if err := n.CreateSystem(opts...); err != nil {
		return nil, err
	}
	if err := n.SetupDevices(data.Elements); err != nil {
		n.Destroy()
		return nil, err
	}
	n.Status.Frequency = data.Frequency
	return n, nil
}

// AssignNodeMap numbers non-ground nodes from 1 in order of first use.
func (n *Network) AssignNodeMap(elements []netlist.Element) error {
	for _, elem := range elements {
		for _, nodeName := range elem.Nodes {
			if netlist.IsGround(nodeName) {
				continue
			}
			if _, exists := n.nodeMap[nodeName]; !exists {
				idx := len(n.nodeMap) + 1
				n.nodeMap[nodeName] = idx
			}
		}
	}

	n.numNodes = len(n.nodeMap)
	return nil
}

func (n *Network) CreateSystem(opts ...system.Option) error {
	opts = append([]system.Option{system.WithLogger(n.logger)}, opts...)
	sys, err := system.New(n.numNodes, opts...)
	if err != nil {
		return fmt.Errorf("creating system: %v", err)
	}
	n.system = sys
	return nil
}

func (n *Network) SetupDevices(elements []netlist.Element) error {
	for _, elem := range elements {
		dev, err := netlist.CreateDevice(elem)
		if err != nil {
			return fmt.Errorf("creating device %s: %v", elem.Name, err)
		}

		// Node index
		nodeIndices := make([]int, len(elem.Nodes))
		for i, nodeName := range elem.Nodes {
			if netlist.IsGround(nodeName) {
				nodeIndices[i] = 0
				continue
			}
			nodeIndices[i] = n.nodeMap[nodeName]
		}
		dev.SetNodes(nodeIndices)

		switch d := dev.(type) {
		case device.Branch:
			n.branches = append(n.branches, d)
		case device.Source:
			n.sources = append(n.sources, d)
		}
		n.devices = append(n.devices, dev)
	}

	n.logger.Info("network ready", "name", n.name, "nodes", n.numNodes, "branches", len(n.branches), "sources", len(n.sources))
	return nil
}

// Stamp rebuilds the matrix from scratch.
func (n *Network) Stamp(status *device.NetworkStatus) error {
	n.system.Zero()
	n.stamped = false

	for _, b := range n.branches {
		if err := device.Stamp(n.system, b, status); err != nil {
			return fmt.Errorf("stamping device %s: %v", b.GetName(), err)
		}
	}
	n.stamped = true
	return nil
}

// Restamp loads new values into the existing pattern: every slot touched by
// a branch is zeroed, then the branch blocks are added again. When the
// reuse tier forbids in-place updates or a block needs a position the
// pattern lacks, it falls back to Stamp.
func (n *Network) Restamp(status *device.NetworkStatus) error {
	if !n.stamped || n.system.Reuse() < system.ReuseCompressed {
		return n.Stamp(status)
	}

	blocks := make([][]complex128, len(n.branches))
	for k, b := range n.branches {
		block, err := b.Primitive(status)
		if err != nil {
			return fmt.Errorf("stamping device %s: %v", b.GetName(), err)
		}
		blocks[k] = block
	}

	err := n.restamp(blocks)
	if errors.Is(err, system.ErrNoSlot) {
		n.logger.Debug("pattern changed, stamping from scratch", "err", err)
		return n.Stamp(status)
	}
	return err
}

func (n *Network) restamp(blocks [][]complex128) error {
	for _, b := range n.branches {
		nodes := b.GetNodes()
		for _, i := range nodes {
			for _, j := range nodes {
				if i == 0 || j == 0 {
					continue
				}
				if err := n.system.ZeroiseElement(i, j); err != nil {
					return err
				}
			}
		}
	}

	for k, b := range n.branches {
		nodes := b.GetNodes()
		order := len(nodes)
		for c, j := range nodes {
			for r, i := range nodes {
				v := blocks[k][r+c*order]
				if i == 0 || j == 0 || v == 0 {
					continue
				}
				if err := n.system.IncrementElement(i, j, real(v), imag(v)); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// Injections builds the right-hand side: position 0 is ground, then one
// current per bus.
func (n *Network) Injections(status *device.NetworkStatus) []complex128 {
	rhs := make([]complex128, n.numNodes+1)
	for _, src := range n.sources {
		current := src.Injection(status)
		nodes := src.GetNodes()
		if nodes[0] != 0 {
			rhs[nodes[0]] += current
		}
		if nodes[1] != 0 {
			rhs[nodes[1]] -= current
		}
	}
	return rhs
}

// Solve factors the current matrix and solves for the injections at status.
func (n *Network) Solve(status *device.NetworkStatus) error {
	if err := n.system.FactorSystem(); err != nil {
		return fmt.Errorf("factor: %w", err)
	}

	solution, err := n.system.Solve(n.Injections(status))
	if err != nil {
		return fmt.Errorf("solve: %w", err)
	}
	n.solution = solution
	return nil
}

func (n *Network) System() *system.System {
	return n.system
}

func (n *Network) GetNodeMap() map[string]int {
	return n.nodeMap
}

// NodeNames lists node names by bus number.
func (n *Network) NodeNames() []string {
	names := make([]string, 0, len(n.nodeMap))
	for name := range n.nodeMap {
		names = append(names, name)
	}
	sort.Slice(names, func(a, b int) bool { return n.nodeMap[names[a]] < n.nodeMap[names[b]] })
	return names
}

func (n *Network) GetDevices() []device.Device {
	return n.devices
}

// GetSolution reports V(node) for every node and I(device) for every
// device. Branch currents flow into the first terminal.
func (n *Network) GetSolution() (map[string]complex128, error) {
	if n.solution == nil {
		return nil, fmt.Errorf("network %s is not solved", n.name)
	}

	solution := make(map[string]complex128)

	// Node voltage
	for name, idx := range n.nodeMap {
		solution[fmt.Sprintf("V(%s)", name)] = n.solution[idx]
	}

	for _, b := range n.branches {
		block, err := b.Primitive(n.Status)
		if err != nil {
			return nil, err
		}

		nodes := b.GetNodes()
		v := make([]complex128, len(nodes))
		for i, node := range nodes {
			v[i] = n.solution[node]
		}

		currents, err := util.MVMult(len(nodes), block, v)
		if err != nil {
			return nil, fmt.Errorf("current of %s: %v", b.GetName(), err)
		}
		solution[fmt.Sprintf("I(%s)", b.GetName())] = currents[0]
	}

	for _, src := range n.sources {
		solution[fmt.Sprintf("I(%s)", src.GetName())] = src.Injection(n.Status)
	}

	return solution, nil
}

// Islands labels every node with the connected component it belongs to.
func (n *Network) Islands() (map[string]int, int) {
	ids, count := n.system.FindIslands()

	islands := make(map[string]int, len(n.nodeMap))
	for name, idx := range n.nodeMap {
		islands[name] = ids[idx-1]
	}
	return islands, count
}

func (n *Network) Destroy() {
	if n.system != nil {
		n.system.Destroy()
	}
}

func (n *Network) Name() string {
	return n.name
}

func (n *Network) GetNumNodes() int {
	return n.numNodes
}

func (n *Network) GetNodeVoltage(name string) complex128 {
	idx, ok := n.nodeMap[name]
	if !ok || n.solution == nil {
		return 0
	}
	return n.solution[idx]
}
