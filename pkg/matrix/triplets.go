package matrix

// Triplet is one (row, col, value) contribution with zero-based indices.
type Triplet struct {
	Row   int
	Col   int
	Value complex128
}

// Triplets holds contributions that have not been compacted yet. Entries for
// the same position coexist until Compressed.Compact sums them.
type Triplets struct {
	entries []Triplet
}

func NewTriplets(capacity int) *Triplets {
	return &Triplets{entries: make([]Triplet, 0, capacity)}
}

func (t *Triplets) Append(row, col int, value complex128) {
	t.entries = append(t.entries, Triplet{Row: row, Col: col, Value: value})
}

func (t *Triplets) Len() int {
	return len(t.entries)
}

func (t *Triplets) Entries() []Triplet {
	return t.entries
}

// Reset empties the list and drops its backing storage.
func (t *Triplets) Reset() {
	t.entries = nil
}
