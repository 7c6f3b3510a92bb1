// Package engine is the table and search core: typed schemas, the row
// directory, per-column storage and index sets composed under one
// read/write lock per table, the name→table registry, and the search
// planner that maps a query descriptor onto the column's index
// capability set.
//
// All operations are total: they return an error kind from errors.go
// rather than panicking, and a failed write leaves storage and every
// index untouched.
package engine
