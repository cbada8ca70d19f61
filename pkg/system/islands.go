package system

// FindIslands labels the connected components of the nonzero pattern,
// treated as an undirected graph. It factors first so that pending stamps
// are part of the pattern. ids[k] is the 1-based component of bus k+1.
func (s *System) FindIslands() ([]int, int) {
	s.Factor()

	n := s.n
	colPtr, rowIdx := s.csc.ColPtr, s.csc.RowIdx

	// Row-wise view of the pattern so both directions are walked.
	rowPtr := make([]int, n+1)
	for _, i := range rowIdx {
		rowPtr[i+1]++
	}
	for i := 0; i < n; i++ {
		rowPtr[i+1] += rowPtr[i]
	}
	colIdx := make([]int, len(rowIdx))
	next := append([]int(nil), rowPtr[:n]...)
	for j := 0; j < n; j++ {
		for k := colPtr[j]; k < colPtr[j+1]; k++ {
			i := rowIdx[k]
			colIdx[next[i]] = j
			next[i]++
		}
	}

	ids := make([]int, n)
	stack := make([]int, 0, n)
	count := 0

	for root := 0; root < n; root++ {
		if ids[root] != 0 {
			continue
		}
		count++
		ids[root] = count
		stack = append(stack[:0], root)

		for len(stack) > 0 {
			v := stack[len(stack)-1]
			stack = stack[:len(stack)-1]

			for k := colPtr[v]; k < colPtr[v+1]; k++ {
				if w := rowIdx[k]; ids[w] == 0 {
					ids[w] = count
					stack = append(stack, w)
				}
			}
			for k := rowPtr[v]; k < rowPtr[v+1]; k++ {
				if w := colIdx[k]; ids[w] == 0 {
					ids[w] = count
					stack = append(stack, w)
				}
			}
		}
	}

	s.logger.Debug("islands", "count", count, "size", n)
	return ids, count
}

// FindDisconnectedSubnetwork factors and returns the 1-based singular
// column, or 0 when the factorization found none.
func (s *System) FindDisconnectedSubnetwork() int {
	s.Factor()
	return s.singularCol
}
