package index

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/hupe1980/quickset/storage"
)

func TestSortedIndexRangeInt(t *testing.T) {
	ix := NewSortedIndex(0)
	ix.Insert(storage.Int(10), 1)
	ix.Insert(storage.Int(-5), 2)
	ix.Insert(storage.Int(30), 3)
	ix.Insert(storage.Int(10), 4)

	assert.Equal(t, []uint64{1, 4}, rawIDs(ix.Range(storage.Int(10), storage.Int(10))))
	assert.Equal(t, []uint64{1, 2, 4}, rawIDs(ix.Range(storage.Int(-5), storage.Int(10))))
	assert.Equal(t, []uint64{1, 2, 3, 4}, rawIDs(ix.Range(storage.Int(math.MinInt64), storage.Int(math.MaxInt64))))
	assert.Empty(t, rawIDs(ix.Range(storage.Int(11), storage.Int(29))))
	assert.Empty(t, rawIDs(ix.Range(storage.Int(5), storage.Int(-5))))
}

func TestSortedIndexRangeFloat(t *testing.T) {
	ix := NewSortedIndex(0)
	ix.Insert(storage.Float(9.99), 1)
	ix.Insert(storage.Float(19.50), 2)
	ix.Insert(storage.Float(100.0), 3)
	ix.Insert(storage.Float(-0.5), 4)

	assert.Equal(t, []uint64{2}, rawIDs(ix.Range(storage.Float(10), storage.Float(50))))
	assert.Equal(t, []uint64{1, 2, 4}, rawIDs(ix.Range(storage.Float(math.Inf(-1)), storage.Float(50))))

	// Inclusive on both bounds.
	assert.Equal(t, []uint64{1}, rawIDs(ix.Range(storage.Float(9.99), storage.Float(9.99))))
}

func TestSortedIndexNaN(t *testing.T) {
	ix := NewSortedIndex(0)
	ix.Insert(storage.Float(1), 1)
	ix.Insert(storage.Float(math.NaN()), 2)

	// NaN sorts greatest but never matches a query.
	assert.Empty(t, rawIDs(ix.Range(storage.Float(math.NaN()), storage.Float(math.NaN()))))
	assert.Empty(t, rawIDs(ix.Range(storage.Float(0), storage.Float(math.NaN()))))

	// Ordinary ranges do not sweep the NaN entry in.
	assert.Equal(t, []uint64{1}, rawIDs(ix.Range(storage.Float(0), storage.Float(math.Inf(1)))))
	assert.Equal(t, 2, ix.Len())
}

func TestSortedIndexRemove(t *testing.T) {
	ix := NewSortedIndex(0)
	ix.Insert(storage.Int(5), 1)
	ix.Insert(storage.Int(5), 2)
	ix.Insert(storage.Int(6), 3)

	ix.Remove(storage.Int(5), 1)
	assert.Equal(t, []uint64{2}, rawIDs(ix.Range(storage.Int(5), storage.Int(5))))

	// Absent pairs are no-ops.
	ix.Remove(storage.Int(5), 99)
	ix.Remove(storage.Int(7), 1)
	assert.Equal(t, 2, ix.Len())
}

func TestSortedIndexTieBreakByRowID(t *testing.T) {
	ix := NewSortedIndex(0)
	ix.Insert(storage.Int(1), 9)
	ix.Insert(storage.Int(1), 3)
	ix.Insert(storage.Int(1), 6)

	assert.Equal(t, []uint64{3, 6, 9}, rawIDs(ix.Range(storage.Int(1), storage.Int(1))))
}
