package consts

const (
	DefaultFrequency = 60.0 // Operating point frequency (Hz)
	GroundName       = "0"
	GroundAlias      = "gnd"
)
