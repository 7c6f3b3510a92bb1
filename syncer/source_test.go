package syncer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/quickset/storage"
)

func TestParseTableSpec(t *testing.T) {
	table, err := ParseTableSpec("src_users:users:id=int,name=string,score=float,raw=bytes")
	require.NoError(t, err)

	assert.Equal(t, "src_users", table.SourceTable)
	assert.Equal(t, "users", table.TargetTable)
	require.Len(t, table.Columns, 4)
	assert.Equal(t, ColumnMapping{Source: "id", Target: "id", Type: storage.KindInt}, table.Columns[0])
	assert.Equal(t, storage.KindString, table.Columns[1].Type)
	assert.Equal(t, storage.KindFloat, table.Columns[2].Type)
	assert.Equal(t, storage.KindBytes, table.Columns[3].Type)
}

func TestParseTableSpecNoColumns(t *testing.T) {
	table, err := ParseTableSpec("db.events:events")
	require.NoError(t, err)
	assert.Equal(t, "db.events", table.SourceTable)
	assert.Empty(t, table.Columns)
}

func TestParseTableSpecUnknownTypeFallsBackToString(t *testing.T) {
	table, err := ParseTableSpec("a:b:c=uuid")
	require.NoError(t, err)
	require.Len(t, table.Columns, 1)
	assert.Equal(t, storage.KindString, table.Columns[0].Type)
}

func TestParseTableSpecErrors(t *testing.T) {
	for _, spec := range []string{"", "solo", ":missing", "src:", "a:b:=int"} {
		_, err := ParseTableSpec(spec)
		assert.ErrorIs(t, err, ErrBadTableSpec, spec)
	}
}
