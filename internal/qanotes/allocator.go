package qanotes

// Allocator hands out the ids that tie a collapsible region to its show and
// hide links. Ids start at 1 and only grow. An Allocator belongs to exactly
// one render; Render builds a fresh one every time.
type Allocator struct {
	last int
}

// NewAllocator returns an allocator whose first id is 1.
func NewAllocator() *Allocator {
	return &Allocator{}
}

// Next returns a fresh id.
func (a *Allocator) Next() int {
	a.last++
	return a.last
}
