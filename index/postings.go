package index

import (
	"iter"

	"github.com/RoaringBitmap/roaring/v2/roaring64"

	"github.com/hupe1980/quickset/model"
)

// Postings is a set of row IDs associated with one index key.
// It wraps a 64-bit Roaring bitmap; iteration order is ascending.
type Postings struct {
	rb *roaring64.Bitmap
}

// NewPostings creates a new empty posting set.
func NewPostings() *Postings {
	return &Postings{rb: roaring64.New()}
}

// Add adds a row ID to the set.
func (p *Postings) Add(id model.RowID) {
	p.rb.Add(uint64(id))
}

// Remove removes a row ID from the set.
func (p *Postings) Remove(id model.RowID) {
	p.rb.Remove(uint64(id))
}

// Contains checks if a row ID is in the set.
func (p *Postings) Contains(id model.RowID) bool {
	return p.rb.Contains(uint64(id))
}

// IsEmpty returns true if the set is empty.
func (p *Postings) IsEmpty() bool {
	return p.rb.IsEmpty()
}

// Cardinality returns the number of row IDs in the set.
func (p *Postings) Cardinality() uint64 {
	return p.rb.GetCardinality()
}

// Clone returns a deep copy of the set.
func (p *Postings) Clone() *Postings {
	return &Postings{rb: p.rb.Clone()}
}

// And intersects the set with other in place.
func (p *Postings) And(other *Postings) {
	p.rb.And(other.rb)
}

// Or unions the set with other in place.
func (p *Postings) Or(other *Postings) {
	p.rb.Or(other.rb)
}

// All returns an iterator over the row IDs in ascending order.
func (p *Postings) All() iter.Seq[model.RowID] {
	return func(yield func(model.RowID) bool) {
		it := p.rb.Iterator()
		for it.HasNext() {
			if !yield(model.RowID(it.Next())) {
				return
			}
		}
	}
}

// Slice materializes the row IDs in ascending order.
func (p *Postings) Slice() []model.RowID {
	out := make([]model.RowID, 0, p.rb.GetCardinality())
	it := p.rb.Iterator()
	for it.HasNext() {
		out = append(out, model.RowID(it.Next()))
	}
	return out
}
