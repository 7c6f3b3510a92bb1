package model

import "fmt"

// RowID is the user-facing stable identifier for a row within a table.
// IDs are allocated monotonically per table and never reused after
// deletion, so an ID found in an index either refers to a live row or
// to nothing at all.
type RowID uint64

// String returns a string representation of the RowID.
func (id RowID) String() string {
	return fmt.Sprintf("Row(%d)", uint64(id))
}
