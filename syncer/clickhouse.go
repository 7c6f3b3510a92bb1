package syncer

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/hupe1980/quickset/storage"
)

// ClickHouseSource pulls rows over the ClickHouse HTTP interface using
// the TabSeparated format. The HTTP interface keeps the wire protocol
// trivial: one POST per query, one text line per row.
type ClickHouseSource struct {
	config SourceConfig
	client *http.Client
}

// NewClickHouseSource creates a source for the given connection
// settings.
func NewClickHouseSource(config SourceConfig) *ClickHouseSource {
	return &ClickHouseSource{
		config: config,
		client: &http.Client{Timeout: 30 * time.Second},
	}
}

// Name implements Source.
func (s *ClickHouseSource) Name() string { return "clickhouse" }

// Ping implements Source.
func (s *ClickHouseSource) Ping(ctx context.Context) error {
	_, err := s.execute(ctx, "SELECT 1")
	return err
}

// FetchTable implements Source.
func (s *ClickHouseSource) FetchTable(ctx context.Context, table SyncTable) (FetchResult, error) {
	body, err := s.execute(ctx, buildQuery(table))
	if err != nil {
		return FetchResult{}, err
	}
	rows, err := parseResponse(body, table)
	if err != nil {
		return FetchResult{}, err
	}
	return FetchResult{Rows: rows}, nil
}

// buildQuery renders the SELECT for a table unless overridden.
func buildQuery(table SyncTable) string {
	if table.QueryOverride != "" {
		return table.QueryOverride
	}
	if len(table.Columns) == 0 {
		return "SELECT * FROM " + table.SourceTable
	}
	cols := make([]string, len(table.Columns))
	for i, c := range table.Columns {
		cols[i] = c.Source
	}
	return fmt.Sprintf("SELECT %s FROM %s", strings.Join(cols, ", "), table.SourceTable)
}

// execute posts a query and returns the raw TabSeparated body.
func (s *ClickHouseSource) execute(ctx context.Context, query string) (string, error) {
	endpoint := url.URL{
		Scheme: "http",
		Host:   fmt.Sprintf("%s:%d", s.config.Host, s.config.Port),
		Path:   "/",
	}
	params := endpoint.Query()
	if s.config.Database != "" {
		params.Set("database", s.config.Database)
	}
	if s.config.User != "" {
		params.Set("user", s.config.User)
		params.Set("password", s.config.Password)
	}
	endpoint.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint.String(),
		strings.NewReader(query+" FORMAT TabSeparated"))
	if err != nil {
		return "", fmt.Errorf("syncer: build request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("syncer: connect %s: %w", endpoint.Host, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("syncer: read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("syncer: clickhouse %s: %s", resp.Status, strings.TrimSpace(string(body)))
	}
	return string(body), nil
}

// parseValue converts one TSV field. Empty, \N and NULL fields map to
// the column kind's zero value; quickset has no null cells.
func parseValue(field string, kind storage.Kind) storage.Value {
	field = strings.TrimSpace(field)
	isNull := field == "" || field == `\N` || field == "NULL"

	switch kind {
	case storage.KindInt:
		if isNull {
			return storage.Int(0)
		}
		n, err := strconv.ParseInt(field, 10, 64)
		if err != nil {
			return storage.Int(0)
		}
		return storage.Int(n)
	case storage.KindFloat:
		if isNull {
			return storage.Float(0)
		}
		f, err := strconv.ParseFloat(field, 64)
		if err != nil {
			return storage.Float(0)
		}
		return storage.Float(f)
	case storage.KindBytes:
		if isNull {
			return storage.Bytes(nil)
		}
		return storage.Bytes([]byte(field))
	default:
		if isNull {
			return storage.String("")
		}
		return storage.String(unescape(field))
	}
}

// unescape reverses the TabSeparated escapes ClickHouse emits.
func unescape(s string) string {
	if !strings.ContainsRune(s, '\\') {
		return s
	}
	r := strings.NewReplacer(`\t`, "\t", `\n`, "\n", `\\`, `\`)
	return r.Replace(s)
}

// parseResponse splits the TSV body into typed rows per the table's
// column mapping.
func parseResponse(body string, table SyncTable) ([][]storage.Value, error) {
	var rows [][]storage.Value
	for _, line := range strings.Split(body, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		fields := strings.Split(line, "\t")
		if len(table.Columns) == 0 {
			row := make([]storage.Value, len(fields))
			for i, f := range fields {
				row[i] = storage.String(unescape(f))
			}
			rows = append(rows, row)
			continue
		}
		if len(fields) != len(table.Columns) {
			return nil, fmt.Errorf("syncer: column count mismatch for %s: want %d, got %d",
				table.SourceTable, len(table.Columns), len(fields))
		}
		row := make([]storage.Value, len(fields))
		for i, f := range fields {
			row[i] = parseValue(f, table.Columns[i].Type)
		}
		rows = append(rows, row)
	}
	return rows, nil
}
