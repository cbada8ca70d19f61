package device

import "fmt"

type Resistor struct {
	BaseDevice
}

var _ Branch = (*Resistor)(nil)

func NewResistor(name string, nodeNames []string, value float64) *Resistor {
	return &Resistor{BaseDevice: newBaseDevice(name, nodeNames, value)}
}

func (r *Resistor) GetType() string { return "R" }

func (r *Resistor) Primitive(status *NetworkStatus) ([]complex128, error) {
	if err := checkNodes(r, 2); err != nil {
		return nil, err
	}
	if r.Value == 0 {
		return nil, fmt.Errorf("resistor %s: zero resistance", r.Name)
	}

	g := 1.0 / r.Value // Conductance. G = 1/R
	return twoTerminal(complex(g, 0)), nil
}
