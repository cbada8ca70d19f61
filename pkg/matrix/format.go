package matrix

import "fmt"

// Format selects how a matrix stores its values for its whole lifetime.
type Format int

const (
	FormatComplex Format = iota
	FormatReal
)

func (f Format) String() string {
	switch f {
	case FormatComplex:
		return "complex"
	case FormatReal:
		return "real"
	default:
		return fmt.Sprintf("Format(%d)", int(f))
	}
}

// ParseFormat accepts "complex" or "real". An empty string means complex.
func ParseFormat(s string) (Format, error) {
	switch s {
	case "", "complex":
		return FormatComplex, nil
	case "real":
		return FormatReal, nil
	}
	return FormatComplex, fmt.Errorf("unknown matrix format: %s", s)
}

// Normalize drops the imaginary part of v for real storage.
func (f Format) Normalize(v complex128) complex128 {
	if f == FormatReal {
		return complex(real(v), 0)
	}
	return v
}
