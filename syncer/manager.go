package syncer

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/quickset"
	"github.com/hupe1980/quickset/engine"
	"github.com/hupe1980/quickset/storage"
)

// Status is the last known sync state of one target table.
type Status struct {
	Table        string    `json:"table"`
	LastSync     time.Time `json:"-"`
	LastRowCount int       `json:"last_row_count"`
	LastDuration time.Duration
	Error        string `json:"error,omitempty"`
	Syncing      bool   `json:"syncing"`
}

// Result reports one completed table sync.
type Result struct {
	Table      string `json:"table"`
	Success    bool   `json:"success"`
	RowsSynced int    `json:"rows_synced"`
	DurationMS int64  `json:"duration_ms"`
	Error      string `json:"error,omitempty"`
}

// Manager pulls configured tables from a Source into quickset. Each
// sync replaces the target table wholesale: drop, recreate, insert.
// An interval of zero disables the background loop; syncs then run
// only via SyncAll or SyncOne.
type Manager struct {
	source   Source
	tables   []SyncTable
	interval time.Duration
	logger   *quickset.Logger

	mu     sync.Mutex
	status map[string]*Status

	syncCount atomic.Uint64
	running   atomic.Bool
	cancel    context.CancelFunc
}

// NewManager creates a Manager for the given source and tables.
func NewManager(source Source, tables []SyncTable, interval time.Duration, logger *quickset.Logger) *Manager {
	if logger == nil {
		logger = quickset.NoopLogger()
	}
	status := make(map[string]*Status, len(tables))
	for _, t := range tables {
		status[t.TargetTable] = &Status{Table: t.TargetTable}
	}
	return &Manager{
		source:   source,
		tables:   tables,
		interval: interval,
		logger:   logger,
		status:   status,
	}
}

// Start launches the background loop when an interval is configured.
func (m *Manager) Start(ctx context.Context, qs *quickset.Quickset) {
	if m.interval <= 0 {
		m.logger.Info("sync interval not set, manual trigger only", "source", m.source.Name())
		return
	}
	ctx, m.cancel = context.WithCancel(ctx)
	m.running.Store(true)

	go func() {
		defer m.running.Store(false)

		ticker := time.NewTicker(m.interval)
		defer ticker.Stop()

		m.SyncAll(ctx, qs)
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				m.SyncAll(ctx, qs)
			}
		}
	}()
}

// Stop cancels the background loop.
func (m *Manager) Stop() {
	if m.cancel != nil {
		m.cancel()
	}
}

// Running reports whether the background loop is active.
func (m *Manager) Running() bool { return m.running.Load() }

// SyncCount returns the number of table syncs attempted.
func (m *Manager) SyncCount() uint64 { return m.syncCount.Load() }

// SyncAll syncs every configured table, fanning out one goroutine per
// table, and returns the per-table results.
func (m *Manager) SyncAll(ctx context.Context, qs *quickset.Quickset) []Result {
	results := make([]Result, len(m.tables))

	g, ctx := errgroup.WithContext(ctx)
	for i, t := range m.tables {
		g.Go(func() error {
			results[i] = m.SyncTable(ctx, qs, t)
			return nil
		})
	}
	_ = g.Wait()
	return results
}

// SyncOne syncs the named target table.
func (m *Manager) SyncOne(ctx context.Context, qs *quickset.Quickset, target string) (Result, error) {
	for _, t := range m.tables {
		if t.TargetTable == target {
			return m.SyncTable(ctx, qs, t), nil
		}
	}
	return Result{}, fmt.Errorf("syncer: table %q not configured", target)
}

// SyncTable fetches one table from the source and replaces the target
// in quickset.
func (m *Manager) SyncTable(ctx context.Context, qs *quickset.Quickset, table SyncTable) Result {
	start := time.Now()
	target := table.TargetTable
	m.syncCount.Add(1)

	m.logger.Info("sync started", "source", m.source.Name(), "table", target)
	m.setSyncing(target, true)

	fetched, err := m.source.FetchTable(ctx, table)
	if err == nil {
		err = m.replace(ctx, qs, table, fetched.Rows)
	}

	duration := time.Since(start)
	if err != nil {
		m.logger.Error("sync failed", "table", target, "error", err)
		m.finish(target, 0, duration, err)
		return Result{Table: target, DurationMS: duration.Milliseconds(), Error: err.Error()}
	}

	m.logger.Info("sync completed", "table", target, "rows", len(fetched.Rows), "duration", duration)
	m.finish(target, len(fetched.Rows), duration, nil)
	return Result{Table: target, Success: true, RowsSynced: len(fetched.Rows), DurationMS: duration.Milliseconds()}
}

// replace swaps the target table for a fresh one holding rows.
func (m *Manager) replace(ctx context.Context, qs *quickset.Quickset, table SyncTable, rows [][]storage.Value) error {
	cols := make([]engine.Column, len(table.Columns))
	for i, c := range table.Columns {
		cols[i] = engine.Column{Name: c.Target, Type: c.Type}
	}

	// Drop-if-exists keeps the sync idempotent; the first run has
	// nothing to drop.
	_ = qs.DropTable(ctx, table.TargetTable)

	if err := qs.CreateTable(ctx, table.TargetTable, cols, len(rows)); err != nil {
		return err
	}
	if len(rows) == 0 {
		return nil
	}
	_, err := qs.Insert(ctx, table.TargetTable, rows)
	return err
}

// Statuses returns a snapshot of per-table sync state.
func (m *Manager) Statuses() []Status {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]Status, 0, len(m.status))
	for _, t := range m.tables {
		if s, ok := m.status[t.TargetTable]; ok {
			out = append(out, *s)
		}
	}
	return out
}

func (m *Manager) setSyncing(target string, syncing bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.status[target]; ok {
		s.Syncing = syncing
		if syncing {
			s.Error = ""
		}
	}
}

func (m *Manager) finish(target string, rows int, duration time.Duration, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.status[target]
	if !ok {
		return
	}
	s.Syncing = false
	s.LastSync = time.Now()
	s.LastRowCount = rows
	s.LastDuration = duration
	if err != nil {
		s.Error = err.Error()
	}
}
