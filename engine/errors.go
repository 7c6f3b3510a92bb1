package engine

import (
	"errors"
	"fmt"

	"github.com/hupe1980/quickset/storage"
)

var (
	// ErrUnknownTable is returned when a table name does not resolve.
	ErrUnknownTable = errors.New("unknown table")
	// ErrUnknownColumn is returned when a column name does not resolve.
	ErrUnknownColumn = errors.New("unknown column")
	// ErrDuplicateTable is returned when creating a table whose name is taken.
	ErrDuplicateTable = errors.New("duplicate table")
	// ErrDuplicateColumn is returned when a schema repeats a column name.
	ErrDuplicateColumn = errors.New("duplicate column")
	// ErrInvalidType is returned for an unknown column type string.
	ErrInvalidType = errors.New("invalid type")
	// ErrInvalidName is returned for an empty or oversized table name.
	ErrInvalidName = errors.New("invalid table name")
	// ErrNotFound is returned when a row ID is dead or was never allocated.
	ErrNotFound = errors.New("row not found")
	// ErrUnsupportedQuery is returned when the column lacks the index a
	// query shape requires.
	ErrUnsupportedQuery = errors.New("unsupported query")
)

// ErrTypeMismatch indicates a value whose kind does not match the
// column it targets. State is left unchanged.
type ErrTypeMismatch struct {
	Column string
	Want   storage.Kind
	Got    storage.Kind
}

func (e *ErrTypeMismatch) Error() string {
	return fmt.Sprintf("type mismatch on column %q: want %s, got %s", e.Column, e.Want, e.Got)
}

// ErrArity indicates a row whose length differs from the column count.
type ErrArity struct {
	Want int
	Got  int
}

func (e *ErrArity) Error() string {
	return fmt.Sprintf("arity mismatch: table has %d columns, row has %d values", e.Want, e.Got)
}
