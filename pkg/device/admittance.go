package device

// Admittance is a fixed G + jB between two nodes, or a shunt when the
// second node is ground.
type Admittance struct {
	BaseDevice
	G float64
	B float64
}

var _ Branch = (*Admittance)(nil)

func NewAdmittance(name string, nodeNames []string, g, b float64) *Admittance {
	return &Admittance{BaseDevice: newBaseDevice(name, nodeNames, g), G: g, B: b}
}

func (a *Admittance) GetType() string { return "Y" }

func (a *Admittance) Primitive(status *NetworkStatus) ([]complex128, error) {
	if err := checkNodes(a, 2); err != nil {
		return nil, err
	}
	return twoTerminal(complex(a.G, a.B)), nil
}
