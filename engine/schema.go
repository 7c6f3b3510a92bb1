package engine

import (
	"fmt"

	"github.com/hupe1980/quickset/storage"
)

// Column describes one column of a table schema.
type Column struct {
	Name string
	Type storage.Kind
}

// Schema is the ordered list of columns of a table. Row arity equals
// its length. Column types are immutable after table creation.
type Schema []Column

// NewSchema validates and returns a schema: names must be non-empty
// and unique, types must be one of the four value kinds.
func NewSchema(cols []Column) (Schema, error) {
	if len(cols) == 0 {
		return nil, fmt.Errorf("%w: schema has no columns", ErrInvalidType)
	}
	seen := make(map[string]struct{}, len(cols))
	for _, c := range cols {
		if c.Name == "" {
			return nil, fmt.Errorf("%w: empty column name", ErrDuplicateColumn)
		}
		if _, dup := seen[c.Name]; dup {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateColumn, c.Name)
		}
		seen[c.Name] = struct{}{}
		switch c.Type {
		case storage.KindInt, storage.KindFloat, storage.KindString, storage.KindBytes:
		default:
			return nil, fmt.Errorf("%w: column %q", ErrInvalidType, c.Name)
		}
	}
	return Schema(cols), nil
}

// Index returns the position of the named column, or -1.
func (s Schema) Index(name string) int {
	for i, c := range s {
		if c.Name == name {
			return i
		}
	}
	return -1
}
