package device

import (
	"math"
	"math/cmplx"
)

type CurrentSource struct {
	BaseDevice
	acMag   float64
	acPhase float64 // degrees
}

var _ Source = (*CurrentSource)(nil)

func NewCurrentSource(name string, nodeNames []string, mag, phase float64) *CurrentSource {
	return &CurrentSource{
		BaseDevice: newBaseDevice(name, nodeNames, mag),
		acMag:      mag,
		acPhase:    phase,
	}
}

func (i *CurrentSource) GetType() string { return "I" }

func (i *CurrentSource) Phase() float64 { return i.acPhase }

// Injection is the same phasor at every frequency.
func (i *CurrentSource) Injection(status *NetworkStatus) complex128 {
	return cmplx.Rect(i.acMag, i.acPhase*math.Pi/180.0)
}

func (i *CurrentSource) SetValue(mag float64) {
	i.Value = mag
	i.acMag = mag
}
