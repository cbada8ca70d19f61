package device

import (
	"fmt"
	"math"
)

type Inductor struct {
	BaseDevice
}

var _ Branch = (*Inductor)(nil)

func NewInductor(name string, nodeNames []string, value float64) *Inductor {
	return &Inductor{BaseDevice: newBaseDevice(name, nodeNames, value)}
}

func (l *Inductor) GetType() string { return "L" }

func (l *Inductor) Primitive(status *NetworkStatus) ([]complex128, error) {
	if err := checkNodes(l, 2); err != nil {
		return nil, err
	}

	omega := 2 * math.Pi * status.Frequency
	if omega*l.Value == 0 {
		return nil, fmt.Errorf("inductor %s: short circuit at %g Hz", l.Name, status.Frequency)
	}
	return twoTerminal(1 / complex(0, omega*l.Value)), nil // 1 / jωL
}
