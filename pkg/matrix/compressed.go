package matrix

import (
	"sort"
)

// Compressed is a square N x N matrix in compressed-column form. Row indices
// are strictly increasing within each column once built by Compact.
type Compressed struct {
	N      int
	ColPtr []int // len N+1
	RowIdx []int // len NNZ
	Values []complex128
}

func NewCompressed(n int) *Compressed {
	return &Compressed{
		N:      n,
		ColPtr: make([]int, n+1),
	}
}

func (c *Compressed) NNZ() int {
	return c.ColPtr[c.N]
}

// Find returns the value slot of (row, col), zero-based, by binary search
// within the column.
func (c *Compressed) Find(row, col int) (int, bool) {
	if row < 0 || col < 0 || row >= c.N || col >= c.N {
		return 0, false
	}

	lo, hi := c.ColPtr[col], c.ColPtr[col+1]
	k := lo + sort.SearchInts(c.RowIdx[lo:hi], row)
	if k == hi || c.RowIdx[k] != row {
		return 0, false
	}
	return k, true
}

func (c *Compressed) At(row, col int) complex128 {
	if k, ok := c.Find(row, col); ok {
		return c.Values[k]
	}
	return 0
}

// Compact merges the pending triplets into the matrix, summing duplicate
// positions, and empties t. Existing entries are kept, so the resulting
// pattern is a superset of the previous one. It reports whether the pattern
// gained positions.
func (c *Compressed) Compact(t *Triplets) bool {
	if t.Len() == 0 {
		return false
	}

	n := c.N
	oldNNZ := c.NNZ()
	pending := t.Entries()

	start := make([]int, n+1)
	for j := 0; j < n; j++ {
		start[j+1] = c.ColPtr[j+1] - c.ColPtr[j]
	}
	for _, e := range pending {
		start[e.Col+1]++
	}
	for j := 0; j < n; j++ {
		start[j+1] += start[j]
	}

	rows := make([]int, start[n])
	vals := make([]complex128, start[n])
	next := make([]int, n)
	copy(next, start[:n])

	for j := 0; j < n; j++ {
		for k := c.ColPtr[j]; k < c.ColPtr[j+1]; k++ {
			rows[next[j]] = c.RowIdx[k]
			vals[next[j]] = c.Values[k]
			next[j]++
		}
	}
	for _, e := range pending {
		rows[next[e.Col]] = e.Row
		vals[next[e.Col]] = e.Value
		next[e.Col]++
	}

	colPtr := make([]int, n+1)
	nz := 0
	for j := 0; j < n; j++ {
		lo, hi := start[j], start[j+1]
		sort.Stable(columnSorter{rows: rows[lo:hi], vals: vals[lo:hi]})

		colPtr[j] = nz
		for k := lo; k < hi; k++ {
			if nz > colPtr[j] && rows[nz-1] == rows[k] {
				vals[nz-1] += vals[k]
				continue
			}
			rows[nz] = rows[k]
			vals[nz] = vals[k]
			nz++
		}
	}
	colPtr[n] = nz

	c.ColPtr = colPtr
	c.RowIdx = rows[:nz:nz]
	c.Values = vals[:nz:nz]
	t.Reset()

	return nz != oldNNZ
}

// Triplets lists the stored entries column by column.
func (c *Compressed) Triplets() []Triplet {
	out := make([]Triplet, 0, c.NNZ())
	for j := 0; j < c.N; j++ {
		for k := c.ColPtr[j]; k < c.ColPtr[j+1]; k++ {
			out = append(out, Triplet{Row: c.RowIdx[k], Col: j, Value: c.Values[k]})
		}
	}
	return out
}

func (c *Compressed) Clone() *Compressed {
	return &Compressed{
		N:      c.N,
		ColPtr: append([]int(nil), c.ColPtr...),
		RowIdx: append([]int(nil), c.RowIdx...),
		Values: append([]complex128(nil), c.Values...),
	}
}

type columnSorter struct {
	rows []int
	vals []complex128
}

func (s columnSorter) Len() int           { return len(s.rows) }
func (s columnSorter) Less(a, b int) bool { return s.rows[a] < s.rows[b] }
func (s columnSorter) Swap(a, b int) {
	s.rows[a], s.rows[b] = s.rows[b], s.rows[a]
	s.vals[a], s.vals[b] = s.vals[b], s.vals[a]
}
