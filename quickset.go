package quickset

import (
	"context"
	"time"

	"github.com/hupe1980/quickset/engine"
	"github.com/hupe1980/quickset/model"
	"github.com/hupe1980/quickset/storage"
)

// Quickset is the embedded database facade: a table registry plus
// logging and metrics hooks around the engine operations. All methods
// are safe for concurrent use.
type Quickset struct {
	db      *engine.Database
	logger  *Logger
	metrics MetricsCollector
	hint    int
}

// New creates an empty Quickset.
func New(optFns ...Option) *Quickset {
	o := applyOptions(optFns)
	return &Quickset{
		db:      engine.NewDatabase(),
		logger:  o.logger,
		metrics: o.metricsCollector,
		hint:    o.capacityHint,
	}
}

// CreateTable creates a table with the given schema. capacity <= 0
// falls back to the configured hint.
func (q *Quickset) CreateTable(ctx context.Context, name string, cols []engine.Column, capacity int) error {
	schema, err := engine.NewSchema(cols)
	if err != nil {
		return err
	}
	if capacity <= 0 {
		capacity = q.hint
	}
	if _, err := q.db.Create(name, schema, capacity); err != nil {
		q.logger.ErrorContext(ctx, "create table failed", "table", name, "error", err)
		return err
	}
	q.logger.InfoContext(ctx, "table created", "table", name, "columns", len(cols))
	return nil
}

// DropTable removes a table.
func (q *Quickset) DropTable(ctx context.Context, name string) error {
	if err := q.db.Drop(name); err != nil {
		return err
	}
	q.logger.InfoContext(ctx, "table dropped", "table", name)
	return nil
}

// Tables returns the table names in lexical order.
func (q *Quickset) Tables() []string {
	return q.db.List()
}

// Insert appends rows to a table and returns the allocated row IDs.
// The batch is all-or-nothing.
func (q *Quickset) Insert(ctx context.Context, table string, rows [][]storage.Value) ([]model.RowID, error) {
	start := time.Now()
	t, err := q.db.Get(table)
	if err != nil {
		q.metrics.RecordInsert(len(rows), time.Since(start), err)
		return nil, err
	}
	ids, err := t.Insert(rows)
	q.metrics.RecordInsert(len(rows), time.Since(start), err)
	q.logger.LogInsert(ctx, table, len(rows), err)
	return ids, err
}

// Get materializes rows for live IDs; unknown and dead IDs are
// omitted.
func (q *Quickset) Get(table string, ids []model.RowID) ([]engine.Row, error) {
	t, err := q.db.Get(table)
	if err != nil {
		return nil, err
	}
	return t.Get(ids), nil
}

// Update replaces the values of one row in place.
func (q *Quickset) Update(ctx context.Context, table string, id model.RowID, values []storage.Value) error {
	start := time.Now()
	t, err := q.db.Get(table)
	if err != nil {
		q.metrics.RecordUpdate(time.Since(start), err)
		return err
	}
	err = t.Update(id, values)
	q.metrics.RecordUpdate(time.Since(start), err)
	q.logger.LogUpdate(ctx, table, uint64(id), err)
	return err
}

// Delete retires the given row IDs and returns the number deleted.
func (q *Quickset) Delete(ctx context.Context, table string, ids []model.RowID) (int, error) {
	start := time.Now()
	t, err := q.db.Get(table)
	if err != nil {
		q.metrics.RecordDelete(0, time.Since(start), err)
		return 0, err
	}
	deleted := t.Delete(ids)
	q.metrics.RecordDelete(deleted, time.Since(start), nil)
	q.logger.LogDelete(ctx, table, deleted, nil)
	return deleted, nil
}

// Search executes a typed query descriptor against a table.
func (q *Quickset) Search(ctx context.Context, table string, query engine.Query) ([]engine.Row, error) {
	start := time.Now()
	t, err := q.db.Get(table)
	if err != nil {
		q.metrics.RecordSearch(0, time.Since(start), err)
		return nil, err
	}
	rows, err := t.Search(query)
	q.metrics.RecordSearch(len(rows), time.Since(start), err)
	q.logger.LogSearch(ctx, table, query.Column, len(rows), err)
	return rows, err
}

// Schema returns the schema of a table.
func (q *Quickset) Schema(table string) (engine.Schema, error) {
	t, err := q.db.Get(table)
	if err != nil {
		return nil, err
	}
	return t.Schema(), nil
}

// Stats returns per-table statistics ordered by table name.
func (q *Quickset) Stats() []engine.TableStats {
	return q.db.Stats()
}
