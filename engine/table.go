package engine

import (
	"sync"

	"github.com/hupe1980/quickset/index"
	"github.com/hupe1980/quickset/internal/bitset"
	"github.com/hupe1980/quickset/model"
	"github.com/hupe1980/quickset/storage"
)

// defaultCapacityHint sizes storage and indexes when the caller gives
// no hint.
const defaultCapacityHint = 1024

// Row is a materialized row: its stable ID and the cell values in
// schema order.
type Row struct {
	ID     model.RowID
	Values []storage.Value
}

// columnIndexes is the capability set of one column. Which variants
// are non-nil depends on the column type:
//
//	int:    hash, bloom, sorted
//	float:  bloom, sorted
//	string: hash, bloom, trie, inverted
//	bytes:  hash, bloom
type columnIndexes struct {
	hash     *index.HashIndex
	bloom    *index.BloomIndex
	trie     *index.TrieIndex
	inverted *index.InvertedIndex
	sorted   *index.SortedIndex
}

func newColumnIndexes(kind storage.Kind, capacity int) columnIndexes {
	ci := columnIndexes{
		bloom: index.NewBloomIndex(capacity, index.DefaultFalsePositiveRate),
	}
	switch kind {
	case storage.KindInt:
		ci.hash = index.NewHashIndex(capacity)
		ci.sorted = index.NewSortedIndex(capacity)
	case storage.KindFloat:
		ci.sorted = index.NewSortedIndex(capacity)
	case storage.KindString:
		ci.hash = index.NewHashIndex(capacity)
		ci.trie = index.NewTrieIndex()
		ci.inverted = index.NewInvertedIndex()
	case storage.KindBytes:
		ci.hash = index.NewHashIndex(capacity)
	}
	return ci
}

// insert adds the row's value to every applicable index.
func (ci *columnIndexes) insert(v storage.Value, id model.RowID) {
	ci.bloom.Add(v)
	if ci.hash != nil {
		ci.hash.Insert(v, id)
	}
	if ci.sorted != nil {
		ci.sorted.Insert(v, id)
	}
	if s, ok := v.AsString(); ok {
		if ci.trie != nil {
			ci.trie.Insert(s, id)
		}
		if ci.inverted != nil {
			ci.inverted.Insert(id, s)
		}
	}
}

// remove subtracts the row's value from every applicable index. The
// Bloom filter is append-only and keeps its bits; false positives are
// allowed, false negatives are not.
func (ci *columnIndexes) remove(v storage.Value, id model.RowID) {
	if ci.hash != nil {
		ci.hash.Remove(v, id)
	}
	if ci.sorted != nil {
		ci.sorted.Remove(v, id)
	}
	if s, ok := v.AsString(); ok {
		if ci.trie != nil {
			ci.trie.Remove(s, id)
		}
		if ci.inverted != nil {
			ci.inverted.Remove(id, s)
		}
	}
}

// Table composes typed column storage, the per-column index sets and
// the row directory under a single read/write lock.
//
// Writers (Insert, Update, Delete) take the lock exclusively and
// maintain every index inside the critical section, so readers (Get,
// Search, Stats) always observe a state where either all indexes
// reflect a write or none do.
type Table struct {
	mu sync.RWMutex

	name   string
	schema Schema

	cols []*storage.Column
	idx  []columnIndexes

	// Row directory: slot → ID, live ID → slot, and per-slot liveness.
	slots []model.RowID
	dir   map[model.RowID]int
	live  *bitset.BitSet

	nextID uint64
}

// NewTable builds storage and the per-type index set for the schema.
// capacity is a hint; zero or negative falls back to a default.
func NewTable(name string, schema Schema, capacity int) *Table {
	if capacity <= 0 {
		capacity = defaultCapacityHint
	}
	t := &Table{
		name:   name,
		schema: schema,
		cols:   make([]*storage.Column, len(schema)),
		idx:    make([]columnIndexes, len(schema)),
		slots:  make([]model.RowID, 0, capacity),
		dir:    make(map[model.RowID]int, capacity),
		live:   bitset.New(capacity),
	}
	for i, c := range schema {
		t.cols[i] = storage.NewColumn(c.Type, capacity)
		t.idx[i] = newColumnIndexes(c.Type, capacity)
	}
	return t
}

// Name returns the table name.
func (t *Table) Name() string { return t.name }

// Schema returns the table schema. The returned slice must not be
// mutated.
func (t *Table) Schema() Schema { return t.schema }

// validateRow checks arity and per-cell kinds without touching state.
func (t *Table) validateRow(values []storage.Value) error {
	if len(values) != len(t.schema) {
		return &ErrArity{Want: len(t.schema), Got: len(values)}
	}
	for i, v := range values {
		if v.Kind != t.schema[i].Type {
			return &ErrTypeMismatch{Column: t.schema[i].Name, Want: t.schema[i].Type, Got: v.Kind}
		}
	}
	return nil
}

// Insert appends the given rows, allocating consecutive row IDs, and
// returns the IDs in order. The batch is all-or-nothing: every row is
// validated before any storage or index is modified, so the first
// arity or type error fails the whole call with state untouched.
func (t *Table) Insert(rows [][]storage.Value) ([]model.RowID, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	for _, row := range rows {
		if err := t.validateRow(row); err != nil {
			return nil, err
		}
	}

	ids := make([]model.RowID, 0, len(rows))
	for _, row := range rows {
		id := model.RowID(t.nextID)
		t.nextID++

		slot := len(t.slots)
		t.slots = append(t.slots, id)
		t.dir[id] = slot
		t.live.Set(uint64(slot))

		for i, v := range row {
			// Validated above; Append cannot fail here.
			_ = t.cols[i].Append(v)
			t.idx[i].insert(v, id)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// Get materializes rows for the given IDs. Unknown and dead IDs are
// omitted, not errors. Order follows the input IDs.
func (t *Table) Get(ids []model.RowID) []Row {
	t.mu.RLock()
	defer t.mu.RUnlock()

	rows := make([]Row, 0, len(ids))
	for _, id := range ids {
		slot, ok := t.dir[id]
		if !ok {
			continue
		}
		rows = append(rows, t.materialize(id, slot))
	}
	return rows
}

// materialize builds a Row from a live slot. Callers hold the lock.
func (t *Table) materialize(id model.RowID, slot int) Row {
	values := make([]storage.Value, len(t.cols))
	for i, col := range t.cols {
		values[i] = col.Get(slot)
	}
	return Row{ID: id, Values: values}
}

// Update replaces the row's values in its existing slot, keeping its
// ID. For each changed column the old value is removed from every
// applicable index before any new value is inserted, so the
// storage/index consistency contract holds at both edges of the
// critical section. Arity and type errors leave state unchanged;
// a dead or unknown ID fails with ErrNotFound.
func (t *Table) Update(id model.RowID, values []storage.Value) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	slot, ok := t.dir[id]
	if !ok {
		return ErrNotFound
	}
	if err := t.validateRow(values); err != nil {
		return err
	}

	changed := make([]bool, len(values))
	for i, v := range values {
		changed[i] = !t.cols[i].Get(slot).Equal(v)
	}

	// Remove-all-old, then insert-all-new.
	for i := range values {
		if changed[i] {
			t.idx[i].remove(t.cols[i].Get(slot), id)
		}
	}
	for i, v := range values {
		if changed[i] {
			_ = t.cols[i].Set(slot, v)
			t.idx[i].insert(v, id)
		}
	}
	return nil
}

// Delete retires the given IDs: each live row is removed from every
// index, its slot is cleared and its ID is never reused. Unknown IDs
// are silently skipped. Returns the number of rows deleted; the call
// is idempotent.
func (t *Table) Delete(ids []model.RowID) int {
	t.mu.Lock()
	defer t.mu.Unlock()

	deleted := 0
	for _, id := range ids {
		slot, ok := t.dir[id]
		if !ok {
			continue
		}
		for i, col := range t.cols {
			t.idx[i].remove(col.Get(slot), id)
			col.Clear(slot)
		}
		delete(t.dir, id)
		t.live.Clear(uint64(slot))
		deleted++
	}
	return deleted
}

// ColumnStats reports the per-index sizes of one column.
type ColumnStats struct {
	Name     string `json:"name"`
	Type     string `json:"type"`
	Hash     int    `json:"hash,omitempty"`
	Bloom    uint64 `json:"bloom,omitempty"`
	Trie     int    `json:"trie,omitempty"`
	Inverted int    `json:"inverted,omitempty"`
	Sorted   int    `json:"sorted,omitempty"`
}

// TableStats is a snapshot of table occupancy and index sizes.
type TableStats struct {
	Name        string        `json:"name"`
	RowCount    uint64        `json:"row_count"`
	LiveCount   int           `json:"live_count"`
	ColumnCount int           `json:"column_count"`
	Columns     []ColumnStats `json:"columns"`
}

// Stats returns row counts and per-column index sizes.
func (t *Table) Stats() TableStats {
	t.mu.RLock()
	defer t.mu.RUnlock()

	cols := make([]ColumnStats, len(t.schema))
	for i, c := range t.schema {
		cs := ColumnStats{
			Name:  c.Name,
			Type:  c.Type.String(),
			Bloom: t.idx[i].bloom.Count(),
		}
		if ix := t.idx[i].hash; ix != nil {
			cs.Hash = ix.Len()
		}
		if ix := t.idx[i].trie; ix != nil {
			cs.Trie = ix.Len()
		}
		if ix := t.idx[i].inverted; ix != nil {
			cs.Inverted = ix.Len()
		}
		if ix := t.idx[i].sorted; ix != nil {
			cs.Sorted = ix.Len()
		}
		cols[i] = cs
	}

	return TableStats{
		Name:        t.name,
		RowCount:    t.nextID,
		LiveCount:   t.live.Count(),
		ColumnCount: len(t.schema),
		Columns:     cols,
	}
}
