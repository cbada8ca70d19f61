package device

import "fmt"

// Line is a pi-section: series impedance R + jX with the total shunt
// susceptance B split between both ends.
type Line struct {
	BaseDevice
	R float64
	X float64
	B float64
}

var _ Branch = (*Line)(nil)

func NewLine(name string, nodeNames []string, r, x, b float64) *Line {
	return &Line{BaseDevice: newBaseDevice(name, nodeNames, r), R: r, X: x, B: b}
}

func (l *Line) GetType() string { return "Z" }

func (l *Line) Primitive(status *NetworkStatus) ([]complex128, error) {
	if err := checkNodes(l, 2); err != nil {
		return nil, err
	}

	z := complex(l.R, l.X)
	if z == 0 {
		return nil, fmt.Errorf("line %s: zero series impedance", l.Name)
	}

	ys := 1 / z
	yh := complex(0, l.B/2)
	return []complex128{ys + yh, -ys, -ys, ys + yh}, nil
}
