package system

import (
	"fmt"

	"github.com/edp1096/toy-ybus/pkg/matrix"
)

func (s *System) inRange(row, col int) bool {
	return row >= 1 && row <= s.n && col >= 1 && col <= s.n
}

// AddElement adds value to entry (row, col), both 1-based. Ground and
// out-of-range indices are ignored, as are zero values.
func (s *System) AddElement(row, col int, value complex128) {
	if !s.inRange(row, col) {
		if row != 0 && col != 0 {
			s.logger.Debug("ignoring element out of range", "row", row, "col", col, "size", s.n)
		}
		return
	}

	value = s.format.Normalize(value)
	if value == 0 {
		return
	}

	if k, ok := s.csc.Find(row-1, col-1); ok {
		s.csc.Values[k] += value
	} else {
		s.pending.Append(row-1, col-1, value)
	}
	s.factored = false
	s.valuesChanged = true
}

// AddPrimitiveMatrix stamps a dense order x order block stored column-major.
// nodes maps block rows and columns to buses; bus 0 is skipped. The whole
// block is rejected when any node exceeds the system size.
func (s *System) AddPrimitiveMatrix(order int, nodes []int, block []complex128) error {
	if order < 0 || len(nodes) < order || len(block) < order*order {
		return fmt.Errorf("%w: order %d, %d nodes, %d values", ErrBadPrimitive, order, len(nodes), len(block))
	}
	for _, node := range nodes[:order] {
		if node < 0 || node > s.n {
			return fmt.Errorf("%w: node %d, size %d", ErrNodeOutOfRange, node, s.n)
		}
	}

	for j := 0; j < order; j++ {
		if nodes[j] == 0 {
			continue
		}
		for i := 0; i < order; i++ {
			if nodes[i] == 0 {
				continue
			}
			if v := block[i+j*order]; v != 0 {
				s.AddElement(nodes[i], nodes[j], v)
			}
		}
	}
	return nil
}

// IncrementElement adds re+j·im to an entry already present in the
// compressed pattern. It never creates a new position.
func (s *System) IncrementElement(row, col int, re, im float64) error {
	k, err := s.slot(row, col)
	if err != nil {
		s.reuseSymbolic = false
		return err
	}

	s.csc.Values[k] += s.format.Normalize(complex(re, im))
	s.markUpdated()
	return nil
}

// ZeroiseElement sets an entry of the compressed pattern to zero and keeps
// its position.
func (s *System) ZeroiseElement(row, col int) error {
	k, err := s.slot(row, col)
	if err != nil {
		s.reuseSymbolic = false
		return err
	}

	s.csc.Values[k] = 0
	s.markUpdated()
	return nil
}

func (s *System) slot(row, col int) (int, error) {
	if s.reuse < ReuseCompressed {
		return 0, ErrReuseDisabled
	}
	if !s.inRange(row, col) {
		return 0, fmt.Errorf("%w: (%d, %d)", ErrNoSlot, row, col)
	}
	k, ok := s.csc.Find(row-1, col-1)
	if !ok {
		return 0, fmt.Errorf("%w: (%d, %d)", ErrNoSlot, row, col)
	}
	return k, nil
}

// Values changed in place; the pattern did not.
func (s *System) markUpdated() {
	s.factored = false
	s.reuseSymbolic = true
	s.valuesChanged = true
}

// GetElement returns entry (row, col). Pending stamps are compacted first.
func (s *System) GetElement(row, col int) complex128 {
	if !s.inRange(row, col) {
		return 0
	}
	s.compact()
	return s.csc.At(row-1, col-1)
}

// LoadTriplets replaces the matrix with the given zero-based entries.
// Explicit zeros keep their position, so an exported pattern loads back
// unchanged.
func (s *System) LoadTriplets(entries []matrix.Triplet) error {
	for _, e := range entries {
		if e.Row < 0 || e.Row >= s.n || e.Col < 0 || e.Col >= s.n {
			return fmt.Errorf("%w: (%d, %d), size %d", ErrNodeOutOfRange, e.Row, e.Col, s.n)
		}
	}

	s.Zero()
	for _, e := range entries {
		s.pending.Append(e.Row, e.Col, s.format.Normalize(e.Value))
	}
	s.valuesChanged = true
	s.compact()
	return nil
}

// compact moves pending stamps into the compressed matrix.
func (s *System) compact() {
	if s.pending.Len() == 0 {
		return
	}
	if s.csc.Compact(s.pending) {
		s.patternChanged = true
	}
	s.preNNZ = s.csc.NNZ()
	s.valuesChanged = true
}
