package engine

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/quickset/model"
	"github.com/hupe1980/quickset/storage"
)

func usersSchema(t *testing.T) Schema {
	t.Helper()
	schema, err := NewSchema([]Column{
		{Name: "id", Type: storage.KindInt},
		{Name: "name", Type: storage.KindString},
		{Name: "email", Type: storage.KindString},
	})
	require.NoError(t, err)
	return schema
}

func usersTable(t *testing.T) *Table {
	t.Helper()
	tbl := NewTable("users", usersSchema(t), 0)
	_, err := tbl.Insert([][]storage.Value{
		{storage.Int(1), storage.String("alice"), storage.String("a@x")},
		{storage.Int(2), storage.String("bob"), storage.String("b@x")},
	})
	require.NoError(t, err)
	return tbl
}

func TestNewSchemaValidation(t *testing.T) {
	_, err := NewSchema([]Column{
		{Name: "a", Type: storage.KindInt},
		{Name: "a", Type: storage.KindString},
	})
	assert.ErrorIs(t, err, ErrDuplicateColumn)

	_, err = NewSchema([]Column{{Name: "a", Type: storage.KindInvalid}})
	assert.ErrorIs(t, err, ErrInvalidType)

	_, err = NewSchema(nil)
	assert.Error(t, err)
}

func TestInsertRoundTrip(t *testing.T) {
	tbl := usersTable(t)

	rows := tbl.Get([]model.RowID{0, 1})
	require.Len(t, rows, 2)
	assert.Equal(t, model.RowID(0), rows[0].ID)
	assert.Equal(t, storage.String("alice"), rows[0].Values[1])
	assert.Equal(t, storage.String("b@x"), rows[1].Values[2])
}

func TestInsertAllocatesMonotonicIDs(t *testing.T) {
	tbl := usersTable(t)

	ids, err := tbl.Insert([][]storage.Value{
		{storage.Int(3), storage.String("carol"), storage.String("c@x")},
	})
	require.NoError(t, err)
	assert.Equal(t, []model.RowID{2}, ids)

	// Deleting the newest row must not recycle its ID.
	tbl.Delete(ids)
	ids, err = tbl.Insert([][]storage.Value{
		{storage.Int(4), storage.String("dave"), storage.String("d@x")},
	})
	require.NoError(t, err)
	assert.Equal(t, []model.RowID{3}, ids)
}

func TestInsertBatchAtomicity(t *testing.T) {
	tbl := usersTable(t)
	before := tbl.Stats()

	_, err := tbl.Insert([][]storage.Value{
		{storage.Int(3), storage.String("carol"), storage.String("c@x")},
		{storage.Int(4), storage.String("dave")}, // short row
	})
	var arity *ErrArity
	require.ErrorAs(t, err, &arity)
	assert.Equal(t, 3, arity.Want)
	assert.Equal(t, 2, arity.Got)

	_, err = tbl.Insert([][]storage.Value{
		{storage.String("nope"), storage.String("x"), storage.String("y")},
	})
	var mismatch *ErrTypeMismatch
	require.ErrorAs(t, err, &mismatch)
	assert.Equal(t, "id", mismatch.Column)

	// Nothing was applied: counts and index sizes are untouched.
	assert.Equal(t, before, tbl.Stats())
}

func TestGetOmitsUnknownAndDead(t *testing.T) {
	tbl := usersTable(t)
	tbl.Delete([]model.RowID{0})

	rows := tbl.Get([]model.RowID{0, 1, 99})
	require.Len(t, rows, 1)
	assert.Equal(t, model.RowID(1), rows[0].ID)
}

func TestUpdatePreservesRowID(t *testing.T) {
	tbl := usersTable(t)

	err := tbl.Update(0, []storage.Value{
		storage.Int(1), storage.String("alicia"), storage.String("a2@x"),
	})
	require.NoError(t, err)

	rows := tbl.Get([]model.RowID{0})
	require.Len(t, rows, 1)
	assert.Equal(t, model.RowID(0), rows[0].ID)
	assert.Equal(t, storage.String("alicia"), rows[0].Values[1])

	// The old value left every index; the new one entered.
	found, err := tbl.Search(Query{Type: SearchExact, Column: "name", Value: storage.String("alice")})
	require.NoError(t, err)
	assert.Empty(t, found)

	found, err = tbl.Search(Query{Type: SearchExact, Column: "name", Value: storage.String("alicia")})
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, model.RowID(0), found[0].ID)
}

func TestUpdateErrors(t *testing.T) {
	tbl := usersTable(t)

	err := tbl.Update(99, []storage.Value{
		storage.Int(1), storage.String("x"), storage.String("y"),
	})
	assert.ErrorIs(t, err, ErrNotFound)

	err = tbl.Update(0, []storage.Value{storage.Int(1)})
	var arity *ErrArity
	assert.ErrorAs(t, err, &arity)

	err = tbl.Update(0, []storage.Value{
		storage.Int(1), storage.Int(2), storage.String("y"),
	})
	var mismatch *ErrTypeMismatch
	assert.ErrorAs(t, err, &mismatch)

	// Failed updates leave the row as it was.
	rows := tbl.Get([]model.RowID{0})
	require.Len(t, rows, 1)
	assert.Equal(t, storage.String("alice"), rows[0].Values[1])
}

func TestDeleteIdempotent(t *testing.T) {
	tbl := usersTable(t)

	assert.Equal(t, 2, tbl.Delete([]model.RowID{0, 1, 42}))
	first := tbl.Stats()

	assert.Equal(t, 0, tbl.Delete([]model.RowID{0, 1, 42}))
	assert.Equal(t, first, tbl.Stats())
	assert.Equal(t, 0, first.LiveCount)
}

func TestStats(t *testing.T) {
	tbl := usersTable(t)
	stats := tbl.Stats()

	assert.Equal(t, "users", stats.Name)
	assert.Equal(t, uint64(2), stats.RowCount)
	assert.Equal(t, 2, stats.LiveCount)
	assert.Equal(t, 3, stats.ColumnCount)
	require.Len(t, stats.Columns, 3)

	idCol := stats.Columns[0]
	assert.Equal(t, "int", idCol.Type)
	assert.Equal(t, 2, idCol.Hash)
	assert.Equal(t, 2, idCol.Sorted)
	assert.Equal(t, uint64(2), idCol.Bloom)

	nameCol := stats.Columns[1]
	assert.Equal(t, 2, nameCol.Hash)
	assert.Equal(t, 2, nameCol.Trie)
	assert.Equal(t, 2, nameCol.Inverted)
	assert.Equal(t, 0, nameCol.Sorted)
}

func TestConcurrentWritersAndReaders(t *testing.T) {
	tbl := NewTable("users", usersSchema(t), 0)

	const writers = 8
	const perWriter = 50

	var wg sync.WaitGroup
	idsCh := make(chan []model.RowID, writers*perWriter)
	for w := 0; w < writers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perWriter; i++ {
				ids, err := tbl.Insert([][]storage.Value{
					{storage.Int(int64(w*perWriter + i)), storage.String("name"), storage.String("e@x")},
				})
				assert.NoError(t, err)
				idsCh <- ids
			}
			// Readers interleave with writers; results only need to be
			// internally consistent.
			_, err := tbl.Search(Query{Type: SearchExact, Column: "name", Value: storage.String("name")})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
	close(idsCh)

	seen := make(map[model.RowID]struct{})
	for ids := range idsCh {
		for _, id := range ids {
			_, dup := seen[id]
			assert.False(t, dup, "row id %d allocated twice", id)
			seen[id] = struct{}{}
		}
	}
	assert.Len(t, seen, writers*perWriter)
	assert.Equal(t, writers*perWriter, tbl.Stats().LiveCount)
}
