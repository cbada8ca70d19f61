package system

import "time"

// FactorPath names the route a factorization request took.
type FactorPath int

const (
	PathCached FactorPath = iota
	PathTrivial
	PathRefactor
	PathNumeric
	PathFull
)

func (p FactorPath) String() string {
	switch p {
	case PathCached:
		return "cached"
	case PathTrivial:
		return "trivial"
	case PathRefactor:
		return "refactor"
	case PathNumeric:
		return "numeric"
	case PathFull:
		return "full"
	default:
		return "unknown"
	}
}

// Observer receives factorization and solve events. Implementations must
// be safe for use by several systems at once.
type Observer interface {
	ObserveFactor(path FactorPath, outcome Outcome, elapsed time.Duration)
	ObserveSolve(elapsed time.Duration)
}

type nopObserver struct{}

func (nopObserver) ObserveFactor(FactorPath, Outcome, time.Duration) {}
func (nopObserver) ObserveSolve(time.Duration)                       {}
