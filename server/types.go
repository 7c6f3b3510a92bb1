package server

import (
	"fmt"

	"github.com/hupe1980/quickset/engine"
	"github.com/hupe1980/quickset/model"
	"github.com/hupe1980/quickset/storage"
)

// Response is the uniform envelope for every endpoint.
type Response struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

func okResp(data any) Response { return Response{Success: true, Data: data} }

func errResp(msg string) Response { return Response{Success: false, Error: msg} }

// ColumnDef is one column in a create-table request.
type ColumnDef struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// CreateTableRequest creates a table.
type CreateTableRequest struct {
	Name     string      `json:"name"`
	Columns  []ColumnDef `json:"columns"`
	Capacity int         `json:"capacity,omitempty"`
}

// DropTableRequest drops a table.
type DropTableRequest struct {
	Name string `json:"name"`
}

// InsertRequest appends rows to a table.
type InsertRequest struct {
	Table string  `json:"table"`
	Rows  [][]any `json:"rows"`
}

// InsertResponse returns the allocated row IDs.
type InsertResponse struct {
	IDs   []model.RowID `json:"ids"`
	Count int           `json:"count"`
}

// SearchRequest is the wire form of the query descriptor.
type SearchRequest struct {
	Table  string `json:"table"`
	Column string `json:"column"`
	Type   string `json:"type"`
	Value  any    `json:"value,omitempty"`
	Prefix string `json:"prefix,omitempty"`
	Query  string `json:"query,omitempty"`
	Min    any    `json:"min,omitempty"`
	Max    any    `json:"max,omitempty"`
	Limit  int    `json:"limit,omitempty"`
	Offset int    `json:"offset,omitempty"`
}

// GetRequest fetches rows by ID.
type GetRequest struct {
	Table string        `json:"table"`
	IDs   []model.RowID `json:"ids"`
}

// UpdateRequest replaces one row's values.
type UpdateRequest struct {
	Table  string      `json:"table"`
	ID     model.RowID `json:"id"`
	Values []any       `json:"values"`
}

// DeleteRequest retires rows by ID.
type DeleteRequest struct {
	Table string        `json:"table"`
	IDs   []model.RowID `json:"ids"`
}

// DeleteResponse reports how many rows were deleted.
type DeleteResponse struct {
	Deleted int `json:"deleted"`
}

// RowResponse is one materialized row on the wire. Bytes cells are
// base64-encoded.
type RowResponse struct {
	ID     model.RowID `json:"id"`
	Values []any       `json:"values"`
}

// SearchResponse carries materialized rows: /search returns them in
// ascending row-ID order, /get in the order of the requested IDs.
type SearchResponse struct {
	Rows  []RowResponse `json:"rows"`
	Total int           `json:"total"`
}

// StatsResponse aggregates per-table statistics.
type StatsResponse struct {
	Tables []engine.TableStats `json:"tables"`
}

// UserRequest adds or removes a user.
type UserRequest struct {
	Name     string `json:"name"`
	Password string `json:"password,omitempty"`
	Role     string `json:"role,omitempty"`
}

// SyncStatusResponse reports sync manager state.
type SyncStatusResponse struct {
	Tables     []SyncTableStatus `json:"tables"`
	Running    bool              `json:"running"`
	TotalSyncs uint64            `json:"total_syncs"`
}

// SyncTableStatus is the wire form of one table's sync status.
type SyncTableStatus struct {
	Table           string `json:"table"`
	LastSyncAgoSecs *int64 `json:"last_sync_ago_secs,omitempty"`
	LastRowCount    int    `json:"last_row_count"`
	LastDurationMS  int64  `json:"last_duration_ms"`
	Error           string `json:"error,omitempty"`
	Syncing         bool   `json:"syncing"`
}

// SyncTriggerRequest triggers a manual sync. An empty table syncs all.
type SyncTriggerRequest struct {
	Table string `json:"table,omitempty"`
}

// toRowResponse converts a materialized row to its wire form.
func toRowResponse(row engine.Row) RowResponse {
	values := make([]any, len(row.Values))
	for i, v := range row.Values {
		values[i] = v.ToJSON()
	}
	return RowResponse{ID: row.ID, Values: values}
}

// decodeRow converts one wire row to typed values per the schema.
func decodeRow(raw []any, schema engine.Schema) ([]storage.Value, error) {
	if len(raw) != len(schema) {
		return nil, fmt.Errorf("row has %d values, table has %d columns", len(raw), len(schema))
	}
	values := make([]storage.Value, len(raw))
	for i, cell := range raw {
		v, ok := storage.FromJSON(cell, schema[i].Type)
		if !ok {
			return nil, fmt.Errorf("column %q expects %s", schema[i].Name, schema[i].Type)
		}
		values[i] = v
	}
	return values, nil
}

// decodeOperand converts a query operand for the named column. Errors
// carry engine kinds so they map onto the right HTTP status.
func decodeOperand(raw any, column string, schema engine.Schema) (storage.Value, error) {
	i := schema.Index(column)
	if i < 0 {
		return storage.Value{}, fmt.Errorf("%w: %q", engine.ErrUnknownColumn, column)
	}
	v, ok := storage.FromJSON(raw, schema[i].Type)
	if !ok {
		return storage.Value{}, &engine.ErrTypeMismatch{Column: column, Want: schema[i].Type, Got: storage.KindInvalid}
	}
	return v, nil
}
