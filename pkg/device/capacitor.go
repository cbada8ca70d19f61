package device

import "math"

type Capacitor struct {
	BaseDevice
}

var _ Branch = (*Capacitor)(nil)

func NewCapacitor(name string, nodeNames []string, value float64) *Capacitor {
	return &Capacitor{BaseDevice: newBaseDevice(name, nodeNames, value)}
}

func (c *Capacitor) GetType() string { return "C" }

// Primitive is open at zero frequency; the block is then all zeros and
// stamps nothing.
func (c *Capacitor) Primitive(status *NetworkStatus) ([]complex128, error) {
	if err := checkNodes(c, 2); err != nil {
		return nil, err
	}

	omega := 2 * math.Pi * status.Frequency
	return twoTerminal(complex(0, omega*c.Value)), nil // C * jω
}
