package system

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/edp1096/toy-ybus/pkg/kernel"
	"github.com/edp1096/toy-ybus/pkg/matrix"
)

// ReuseTier selects how much of a previous factorization may be kept.
// Tiers are ordered; each one implies all lower tiers.
type ReuseTier int

const (
	ReuseNone ReuseTier = iota
	ReuseCompressed
	ReuseSymbolic
	ReuseNumeric
)

func (r ReuseTier) String() string {
	switch r {
	case ReuseNone:
		return "none"
	case ReuseCompressed:
		return "compressed"
	case ReuseSymbolic:
		return "symbolic"
	case ReuseNumeric:
		return "numeric"
	default:
		return fmt.Sprintf("ReuseTier(%d)", int(r))
	}
}

func ParseReuseTier(s string) (ReuseTier, error) {
	switch strings.ToLower(s) {
	case "", "none":
		return ReuseNone, nil
	case "compressed":
		return ReuseCompressed, nil
	case "symbolic":
		return ReuseSymbolic, nil
	case "numeric":
		return ReuseNumeric, nil
	default:
		return ReuseNone, fmt.Errorf("unknown reuse tier: %s", s)
	}
}

type Option func(*System)

// WithFormat picks the storage format for the lifetime of the system.
func WithFormat(format matrix.Format) Option {
	return func(s *System) { s.format = format }
}

// WithKernel replaces the default sparse LU kernel.
func WithKernel(k kernel.Kernel) Option {
	return func(s *System) { s.kernel = k }
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *System) { s.logger = logger }
}

func WithObserver(observer Observer) Option {
	return func(s *System) { s.observer = observer }
}

func WithReuse(tier ReuseTier) Option {
	return func(s *System) { s.reuse = tier }
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
