package storage

import "fmt"

// ErrTypeMismatch indicates a value whose kind does not match the
// column it is written to. The column is left unchanged.
type ErrTypeMismatch struct {
	Want Kind
	Got  Kind
}

func (e *ErrTypeMismatch) Error() string {
	return fmt.Sprintf("type mismatch: column holds %s, got %s", e.Want, e.Got)
}

// Column is a dense, typed sequence of values indexed by row slot.
//
// The backing storage is columnar: one flat slice per kind, selected at
// construction. Deleted slots keep their physical value until the slot
// is cleared; liveness is tracked by the owning table, not here.
type Column struct {
	kind  Kind
	ints  []int64
	flts  []float64
	strs  []string
	blobs [][]byte
}

// NewColumn creates an empty column of the given kind with a capacity
// hint.
func NewColumn(kind Kind, capacity int) *Column {
	c := &Column{kind: kind}
	switch kind {
	case KindInt:
		c.ints = make([]int64, 0, capacity)
	case KindFloat:
		c.flts = make([]float64, 0, capacity)
	case KindString:
		c.strs = make([]string, 0, capacity)
	case KindBytes:
		c.blobs = make([][]byte, 0, capacity)
	}
	return c
}

// Kind returns the kind of values the column stores.
func (c *Column) Kind() Kind { return c.kind }

// Len returns the number of slots, live or dead.
func (c *Column) Len() int {
	switch c.kind {
	case KindInt:
		return len(c.ints)
	case KindFloat:
		return len(c.flts)
	case KindString:
		return len(c.strs)
	case KindBytes:
		return len(c.blobs)
	default:
		return 0
	}
}

// Append adds a value at the next slot. O(1) amortized.
func (c *Column) Append(v Value) error {
	if v.Kind != c.kind {
		return &ErrTypeMismatch{Want: c.kind, Got: v.Kind}
	}
	switch c.kind {
	case KindInt:
		c.ints = append(c.ints, v.I64)
	case KindFloat:
		c.flts = append(c.flts, v.F64)
	case KindString:
		c.strs = append(c.strs, v.S)
	case KindBytes:
		c.blobs = append(c.blobs, v.B)
	}
	return nil
}

// Get returns the value at the given slot.
func (c *Column) Get(slot int) Value {
	switch c.kind {
	case KindInt:
		return Int(c.ints[slot])
	case KindFloat:
		return Float(c.flts[slot])
	case KindString:
		return String(c.strs[slot])
	case KindBytes:
		return Bytes(c.blobs[slot])
	default:
		return Value{}
	}
}

// Set replaces the value at the given slot.
func (c *Column) Set(slot int, v Value) error {
	if v.Kind != c.kind {
		return &ErrTypeMismatch{Want: c.kind, Got: v.Kind}
	}
	switch c.kind {
	case KindInt:
		c.ints[slot] = v.I64
	case KindFloat:
		c.flts[slot] = v.F64
	case KindString:
		c.strs[slot] = v.S
	case KindBytes:
		c.blobs[slot] = v.B
	}
	return nil
}

// Clear zeroes the slot so large payloads become collectable. The slot
// itself stays allocated; slots are never compacted.
func (c *Column) Clear(slot int) {
	switch c.kind {
	case KindInt:
		c.ints[slot] = 0
	case KindFloat:
		c.flts[slot] = 0
	case KindString:
		c.strs[slot] = ""
	case KindBytes:
		c.blobs[slot] = nil
	}
}
