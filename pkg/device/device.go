package device

import (
	"fmt"

	"github.com/edp1096/toy-ybus/pkg/matrix"
)

type Device interface {
	GetName() string
	GetType() string
	GetNodeNames() []string
	GetNodes() []int
	GetValue() float64
	SetNodes(nodes []int)
}

// Branch devices connect buses through an admittance.
type Branch interface {
	Device
	// Primitive returns the terminal admittance block, column-major, with
	// one row and column per node.
	Primitive(status *NetworkStatus) ([]complex128, error)
}

// Source devices inject a current phasor: into their first node and out of
// their second.
type Source interface {
	Device
	Injection(status *NetworkStatus) complex128
}

type BaseDevice struct {
	Name      string
	Nodes     []int
	Value     float64
	NodeNames []string
}

type NetworkStatus struct {
	Frequency float64 // Hz, 0 for the operating point
}

func (d *BaseDevice) GetName() string {
	return d.Name
}

func (d *BaseDevice) GetNodes() []int {
	return d.Nodes
}

func (d *BaseDevice) GetNodeNames() []string {
	return d.NodeNames
}

func (d *BaseDevice) GetValue() float64 {
	return d.Value
}

func (d *BaseDevice) SetNodes(nodes []int) {
	d.Nodes = nodes
}

func newBaseDevice(name string, nodeNames []string, value float64) BaseDevice {
	return BaseDevice{
		Name:      name,
		Nodes:     make([]int, len(nodeNames)),
		NodeNames: nodeNames,
		Value:     value,
	}
}

// Stamp adds the primitive block of b into m at the nodes of b.
func Stamp(m matrix.DeviceMatrix, b Branch, status *NetworkStatus) error {
	block, err := b.Primitive(status)
	if err != nil {
		return err
	}
	if err := m.AddPrimitiveMatrix(len(b.GetNodes()), b.GetNodes(), block); err != nil {
		return fmt.Errorf("%s %s: %v", b.GetType(), b.GetName(), err)
	}
	return nil
}

// twoTerminal is the block of an admittance y between two nodes.
func twoTerminal(y complex128) []complex128 {
	return []complex128{y, -y, -y, y}
}

func checkNodes(d Device, count int) error {
	if len(d.GetNodes()) != count {
		return fmt.Errorf("%s %s: requires exactly %d nodes", d.GetType(), d.GetName(), count)
	}
	return nil
}
