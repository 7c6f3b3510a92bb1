// Package storage provides the tagged scalar Value type and dense
// per-column typed storage. A Value is one of int64, float64, string
// or bytes; a Column is a flat slice of one kind indexed by row slot.
//
// Float values are canonicalized on construction (-0.0 → +0.0, one
// NaN payload) so that lookup equality and ordering stay consistent
// across storage and indexes.
package storage
