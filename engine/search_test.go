package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/quickset/model"
	"github.com/hupe1980/quickset/storage"
)

func itemsTable(t *testing.T) *Table {
	t.Helper()
	schema, err := NewSchema([]Column{
		{Name: "id", Type: storage.KindInt},
		{Name: "price", Type: storage.KindFloat},
	})
	require.NoError(t, err)

	tbl := NewTable("items", schema, 0)
	_, err = tbl.Insert([][]storage.Value{
		{storage.Int(1), storage.Float(9.99)},
		{storage.Int(2), storage.Float(19.50)},
		{storage.Int(3), storage.Float(100.0)},
	})
	require.NoError(t, err)
	return tbl
}

func resultIDs(rows []Row) []model.RowID {
	ids := make([]model.RowID, len(rows))
	for i, r := range rows {
		ids[i] = r.ID
	}
	return ids
}

func TestSearchExactString(t *testing.T) {
	tbl := usersTable(t)

	rows, err := tbl.Search(Query{Type: SearchExact, Column: "name", Value: storage.String("alice")})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, model.RowID(0), rows[0].ID)
	assert.Equal(t, storage.String("a@x"), rows[0].Values[2])

	rows, err = tbl.Search(Query{Type: SearchExact, Column: "name", Value: storage.String("nobody")})
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestSearchPrefix(t *testing.T) {
	tbl := usersTable(t)

	rows, err := tbl.Search(Query{Type: SearchPrefix, Column: "name", Prefix: "al"})
	require.NoError(t, err)
	assert.Equal(t, []model.RowID{0}, resultIDs(rows))

	// Empty prefix returns every live row in ascending ID order.
	rows, err = tbl.Search(Query{Type: SearchPrefix, Column: "name", Prefix: ""})
	require.NoError(t, err)
	assert.Equal(t, []model.RowID{0, 1}, resultIDs(rows))
}

func TestSearchFulltext(t *testing.T) {
	tbl := usersTable(t)
	_, err := tbl.Insert([][]storage.Value{
		{storage.Int(3), storage.String("alice smith"), storage.String("c@x")},
	})
	require.NoError(t, err)

	// AND of tokens: no row mentions both alice and bob.
	rows, err := tbl.Search(Query{Type: SearchFulltext, Column: "name", Text: "alice bob"})
	require.NoError(t, err)
	assert.Empty(t, rows)

	rows, err = tbl.Search(Query{Type: SearchFulltext, Column: "name", Text: "alice"})
	require.NoError(t, err)
	assert.Equal(t, []model.RowID{0, 2}, resultIDs(rows))

	// An empty query tokenizes to nothing and matches nothing.
	rows, err = tbl.Search(Query{Type: SearchFulltext, Column: "name", Text: "  ... "})
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestSearchContains(t *testing.T) {
	tbl := usersTable(t)
	_, err := tbl.Insert([][]storage.Value{
		{storage.Int(3), storage.String("alice smith"), storage.String("c@x")},
	})
	require.NoError(t, err)

	// One token: verbatim posting list.
	rows, err := tbl.Search(Query{Type: SearchContains, Column: "name", Text: "smith"})
	require.NoError(t, err)
	assert.Equal(t, []model.RowID{2}, resultIDs(rows))

	// Several tokens fall back to AND-merge.
	rows, err = tbl.Search(Query{Type: SearchContains, Column: "name", Text: "alice smith"})
	require.NoError(t, err)
	assert.Equal(t, []model.RowID{2}, resultIDs(rows))
}

func TestSearchRangeFloat(t *testing.T) {
	tbl := itemsTable(t)

	rows, err := tbl.Search(Query{Type: SearchRange, Column: "price", Min: storage.Float(10), Max: storage.Float(50)})
	require.NoError(t, err)
	assert.Equal(t, []model.RowID{1}, resultIDs(rows))

	// Int bounds are upgraded for float columns.
	rows, err = tbl.Search(Query{Type: SearchRange, Column: "price", Min: storage.Int(10), Max: storage.Int(50)})
	require.NoError(t, err)
	assert.Equal(t, []model.RowID{1}, resultIDs(rows))
}

func TestSearchExactFloatViaSortedIndex(t *testing.T) {
	tbl := itemsTable(t)

	// Update row 1 (price 19.50) down to 9.99.
	err := tbl.Update(1, []storage.Value{storage.Int(2), storage.Float(9.99)})
	require.NoError(t, err)

	rows, err := tbl.Search(Query{Type: SearchRange, Column: "price", Min: storage.Float(10), Max: storage.Float(50)})
	require.NoError(t, err)
	assert.Empty(t, rows)

	rows, err = tbl.Search(Query{Type: SearchExact, Column: "price", Value: storage.Float(9.99)})
	require.NoError(t, err)
	assert.Equal(t, []model.RowID{0, 1}, resultIDs(rows))
}

func TestSearchAfterDelete(t *testing.T) {
	tbl := itemsTable(t)

	deleted := tbl.Delete([]model.RowID{0, 2})
	assert.Equal(t, 2, deleted)

	rows := tbl.Get([]model.RowID{0, 1, 2})
	assert.Equal(t, []model.RowID{1}, resultIDs(rows))

	found, err := tbl.Search(Query{Type: SearchExact, Column: "price", Value: storage.Float(100.0)})
	require.NoError(t, err)
	assert.Empty(t, found)
}

func TestSearchErrors(t *testing.T) {
	users := usersTable(t)
	items := itemsTable(t)

	_, err := users.Search(Query{Type: SearchExact, Column: "missing", Value: storage.Int(1)})
	assert.ErrorIs(t, err, ErrUnknownColumn)

	// Strings have no sorted index; ints no trie.
	_, err = users.Search(Query{Type: SearchRange, Column: "name", Min: storage.Int(0), Max: storage.Int(1)})
	assert.ErrorIs(t, err, ErrUnsupportedQuery)
	_, err = users.Search(Query{Type: SearchPrefix, Column: "id", Prefix: "1"})
	assert.ErrorIs(t, err, ErrUnsupportedQuery)
	_, err = items.Search(Query{Type: SearchFulltext, Column: "price", Text: "x"})
	assert.ErrorIs(t, err, ErrUnsupportedQuery)

	var mismatch *ErrTypeMismatch
	_, err = users.Search(Query{Type: SearchExact, Column: "name", Value: storage.Int(5)})
	assert.ErrorAs(t, err, &mismatch)
	_, err = items.Search(Query{Type: SearchRange, Column: "price", Min: storage.String("a"), Max: storage.Float(1)})
	assert.ErrorAs(t, err, &mismatch)

	_, err = users.Search(Query{Type: SearchType("regex"), Column: "name"})
	assert.ErrorIs(t, err, ErrUnsupportedQuery)
}

func TestSearchLimitOffset(t *testing.T) {
	tbl := usersTable(t)
	_, err := tbl.Insert([][]storage.Value{
		{storage.Int(3), storage.String("carol"), storage.String("c@x")},
		{storage.Int(4), storage.String("dave"), storage.String("d@x")},
	})
	require.NoError(t, err)

	rows, err := tbl.Search(Query{Type: SearchPrefix, Column: "name", Prefix: "", Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, []model.RowID{0, 1}, resultIDs(rows))

	rows, err = tbl.Search(Query{Type: SearchPrefix, Column: "name", Prefix: "", Limit: 2, Offset: 3})
	require.NoError(t, err)
	assert.Equal(t, []model.RowID{3}, resultIDs(rows))
}

func TestSearchExactIntUsesBloomGate(t *testing.T) {
	tbl := itemsTable(t)

	// Misses short-circuit on the Bloom gate; hits go to the hash index.
	rows, err := tbl.Search(Query{Type: SearchExact, Column: "id", Value: storage.Int(2)})
	require.NoError(t, err)
	assert.Equal(t, []model.RowID{1}, resultIDs(rows))

	rows, err = tbl.Search(Query{Type: SearchExact, Column: "id", Value: storage.Int(12345)})
	require.NoError(t, err)
	assert.Empty(t, rows)
}
