package engine

import (
	"fmt"

	"github.com/hupe1980/quickset/index"
	"github.com/hupe1980/quickset/storage"
)

// SearchType selects the query shape and therefore the index plan.
type SearchType string

const (
	// SearchExact matches a column value exactly: Bloom gate, then
	// hash lookup. Float columns carry no hash index; exact float
	// lookups run as a sorted-index range [v, v] instead.
	SearchExact SearchType = "exact"
	// SearchPrefix walks the trie below the given prefix.
	SearchPrefix SearchType = "prefix"
	// SearchFulltext tokenizes the query and AND-merges the posting
	// lists of every token.
	SearchFulltext SearchType = "fulltext"
	// SearchRange scans the sorted index between inclusive bounds.
	SearchRange SearchType = "range"
	// SearchContains is best-effort substring matching: the query is
	// tokenized and answered from the inverted index, so it degrades
	// to term (one token) or AND-merge (several) semantics rather
	// than true substring scanning.
	SearchContains SearchType = "contains"
)

// ParseSearchType resolves a search type string.
func ParseSearchType(s string) (SearchType, bool) {
	switch SearchType(s) {
	case SearchExact, SearchPrefix, SearchFulltext, SearchRange, SearchContains:
		return SearchType(s), true
	default:
		return "", false
	}
}

// Query is a typed query descriptor consumed by the search planner.
type Query struct {
	Type   SearchType
	Column string

	// Value is the operand for exact queries.
	Value storage.Value
	// Prefix is the operand for prefix queries.
	Prefix string
	// Text is the operand for fulltext and contains queries.
	Text string
	// Min and Max are the inclusive bounds for range queries.
	Min storage.Value
	Max storage.Value

	// Limit and Offset window the materialized result after
	// ascending-ID ordering. Limit 0 means unbounded.
	Limit  int
	Offset int
}

// coerceNumeric upgrades an int operand to float for float columns,
// so clients need not distinguish 10 from 10.0.
func coerceNumeric(v storage.Value, want storage.Kind) storage.Value {
	if want == storage.KindFloat && v.Kind == storage.KindInt {
		return storage.Float(float64(v.I64))
	}
	return v
}

// Search plans and executes a query against the table, returning the
// matching rows materialized in ascending row-ID order. An empty
// result is a valid success.
func (t *Table) Search(q Query) ([]Row, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	ci, kind, err := t.resolveColumn(q.Column)
	if err != nil {
		return nil, err
	}

	var ids *index.Postings
	switch q.Type {
	case SearchExact:
		ids, err = t.searchExact(q, ci, kind)
	case SearchPrefix:
		ids, err = t.searchPrefix(q, ci)
	case SearchFulltext, SearchContains:
		ids, err = t.searchTokens(q, ci)
	case SearchRange:
		ids, err = t.searchRange(q, ci, kind)
	default:
		return nil, fmt.Errorf("%w: unknown search type %q", ErrUnsupportedQuery, string(q.Type))
	}
	if err != nil {
		return nil, err
	}

	return t.collect(ids, q.Limit, q.Offset), nil
}

func (t *Table) resolveColumn(name string) (*columnIndexes, storage.Kind, error) {
	i := t.schema.Index(name)
	if i < 0 {
		return nil, storage.KindInvalid, fmt.Errorf("%w: %q", ErrUnknownColumn, name)
	}
	return &t.idx[i], t.schema[i].Type, nil
}

func (t *Table) searchExact(q Query, ci *columnIndexes, kind storage.Kind) (*index.Postings, error) {
	v := coerceNumeric(q.Value, kind)
	if v.Kind != kind {
		return nil, &ErrTypeMismatch{Column: q.Column, Want: kind, Got: v.Kind}
	}

	// Floats have no hash index; answer via a degenerate range.
	if kind == storage.KindFloat {
		return ci.sorted.Range(v, v), nil
	}

	if !ci.bloom.MayContain(v) {
		return index.NewPostings(), nil
	}
	ids := ci.hash.Lookup(v)
	if ids == nil {
		return index.NewPostings(), nil
	}
	return ids.Clone(), nil
}

func (t *Table) searchPrefix(q Query, ci *columnIndexes) (*index.Postings, error) {
	if ci.trie == nil {
		return nil, fmt.Errorf("%w: column %q has no prefix index", ErrUnsupportedQuery, q.Column)
	}
	return ci.trie.Prefix(q.Prefix), nil
}

func (t *Table) searchTokens(q Query, ci *columnIndexes) (*index.Postings, error) {
	if ci.inverted == nil {
		return nil, fmt.Errorf("%w: column %q has no fulltext index", ErrUnsupportedQuery, q.Column)
	}
	tokens := index.Tokenize(q.Text)
	if q.Type == SearchContains && len(tokens) == 1 {
		return ci.inverted.QueryTerm(tokens[0]), nil
	}
	return ci.inverted.QueryAll(tokens), nil
}

func (t *Table) searchRange(q Query, ci *columnIndexes, kind storage.Kind) (*index.Postings, error) {
	if ci.sorted == nil {
		return nil, fmt.Errorf("%w: column %q has no range index", ErrUnsupportedQuery, q.Column)
	}
	min := coerceNumeric(q.Min, kind)
	max := coerceNumeric(q.Max, kind)
	if min.Kind != kind {
		return nil, &ErrTypeMismatch{Column: q.Column, Want: kind, Got: min.Kind}
	}
	if max.Kind != kind {
		return nil, &ErrTypeMismatch{Column: q.Column, Want: kind, Got: max.Kind}
	}
	return ci.sorted.Range(min, max), nil
}

// collect materializes candidate IDs into rows in ascending ID order,
// skipping entries whose row has died, then applies offset and limit.
func (t *Table) collect(ids *index.Postings, limit, offset int) []Row {
	rows := make([]Row, 0, ids.Cardinality())
	skipped := 0
	for id := range ids.All() {
		slot, ok := t.dir[id]
		if !ok {
			continue
		}
		if skipped < offset {
			skipped++
			continue
		}
		rows = append(rows, t.materialize(id, slot))
		if limit > 0 && len(rows) >= limit {
			break
		}
	}
	return rows
}
