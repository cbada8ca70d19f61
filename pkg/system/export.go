package system

import (
	"fmt"

	"github.com/edp1096/toy-ybus/pkg/matrix"
)

// GetCompressedMatrix copies the compressed-column arrays into the caller's
// buffers: colPtr needs N+1 entries, rowIdx and values need NNZ each.
// Nothing is copied when a buffer is short.
func (s *System) GetCompressedMatrix(colPtr, rowIdx []int, values []complex128) (int, error) {
	s.compact()

	nnz := s.csc.NNZ()
	if nnz == 0 {
		return 0, ErrEmptyMatrix
	}
	if len(colPtr) < s.n+1 || len(rowIdx) < nnz || len(values) < nnz {
		return nnz, fmt.Errorf("%w: need %d column pointers and %d entries", ErrSizeMismatch, s.n+1, nnz)
	}

	copy(colPtr, s.csc.ColPtr)
	copy(rowIdx, s.csc.RowIdx)
	copy(values, s.csc.Values)
	return nnz, nil
}

// GetTripletMatrix copies the stored entries, zero-based and column by
// column, into out.
func (s *System) GetTripletMatrix(out []matrix.Triplet) (int, error) {
	s.compact()

	nnz := s.csc.NNZ()
	if nnz == 0 {
		return 0, ErrEmptyMatrix
	}
	if len(out) < nnz {
		return nnz, fmt.Errorf("%w: need %d entries", ErrSizeMismatch, nnz)
	}

	copy(out, s.csc.Triplets())
	return nnz, nil
}

// Compressed returns a copy of the compressed matrix.
func (s *System) Compressed() *matrix.Compressed {
	s.compact()
	return s.csc.Clone()
}
