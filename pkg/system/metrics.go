package system

// Metrics describes the current matrix and factorization.
type Metrics struct {
	Size        int
	PreNNZ      int // stored entries after compaction
	PostNNZ     int // entries of L and U
	SingularCol int // 1-based, 0 when none
	RCond       float64
	RGrowth     float64 // -1 when it could not be computed
	CondEst     float64
	Flops       float64
}

// Metrics reports the counters of the last factorization. The estimates
// are computed from the current factors and are zero when there are none.
func (s *System) Metrics() Metrics {
	m := Metrics{
		Size:        s.n,
		PreNNZ:      s.preNNZ,
		PostNNZ:     s.postNNZ,
		SingularCol: s.singularCol,
	}
	if s.n == 0 || s.symbolic == nil || s.numeric == nil {
		return m
	}

	m.RCond = s.kernel.RCond(s.symbolic, s.numeric)
	m.Flops = s.kernel.Flops(s.symbolic, s.numeric)

	if growth, err := s.kernel.RGrowth(s.csc, s.symbolic, s.numeric); err == nil {
		m.RGrowth = growth
	} else {
		m.RGrowth = -1
	}
	if cond, err := s.kernel.CondEst(s.csc, s.symbolic, s.numeric); err == nil {
		m.CondEst = cond
	}
	return m
}
