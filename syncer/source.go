package syncer

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/hupe1980/quickset/storage"
)

// ErrBadTableSpec indicates an unparseable table mapping string.
var ErrBadTableSpec = errors.New("syncer: bad table spec")

// ColumnMapping maps one source column to a target column and kind.
type ColumnMapping struct {
	Source string
	Target string
	Type   storage.Kind
}

// SyncTable describes one table to pull from the source.
type SyncTable struct {
	// SourceTable may include a database prefix like "db.table".
	SourceTable string
	TargetTable string
	Columns     []ColumnMapping
	// QueryOverride replaces the generated SELECT when non-empty.
	QueryOverride string
}

// ParseTableSpec parses the "src:dst:col=type,..." mapping format used
// by QUICKSET_SYNC_TABLES. Columns with unknown types fall back to
// string, matching the permissive behavior of the wire format.
func ParseTableSpec(spec string) (SyncTable, error) {
	parts := strings.Split(spec, ":")
	if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
		return SyncTable{}, fmt.Errorf("%w: %q", ErrBadTableSpec, spec)
	}

	st := SyncTable{SourceTable: parts[0], TargetTable: parts[1]}
	if len(parts) < 3 {
		return st, nil
	}

	for _, def := range strings.Split(parts[2], ",") {
		def = strings.TrimSpace(def)
		if def == "" {
			continue
		}
		name, typeName, ok := strings.Cut(def, "=")
		if !ok || name == "" {
			return SyncTable{}, fmt.Errorf("%w: column %q in %q", ErrBadTableSpec, def, spec)
		}
		kind, ok := storage.ParseKind(typeName)
		if !ok {
			kind = storage.KindString
		}
		st.Columns = append(st.Columns, ColumnMapping{Source: name, Target: name, Type: kind})
	}
	return st, nil
}

// SourceConfig holds connection settings for a source.
type SourceConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
}

// FetchResult is one table's worth of rows pulled from a source.
type FetchResult struct {
	Rows [][]storage.Value
}

// Source pulls rows from an external system. Implementations must be
// safe for concurrent use.
type Source interface {
	// Ping verifies connectivity.
	Ping(ctx context.Context) error

	// FetchTable fetches all rows for a table.
	FetchTable(ctx context.Context, table SyncTable) (FetchResult, error)

	// Name identifies the source type for logging.
	Name() string
}
