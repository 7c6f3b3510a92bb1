package storage

import (
	"bytes"
	"encoding/base64"
	"math"
	"strconv"
	"strings"
)

// Kind identifies the concrete type stored in a Value.
type Kind uint8

const (
	// KindInvalid represents an invalid kind.
	KindInvalid Kind = iota
	// KindInt represents a 64-bit signed integer value.
	KindInt
	// KindFloat represents a 64-bit float value.
	KindFloat
	// KindString represents a UTF-8 string value.
	KindString
	// KindBytes represents an opaque byte buffer value.
	KindBytes
)

// String returns the canonical name of the Kind.
func (k Kind) String() string {
	switch k {
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindString:
		return "string"
	case KindBytes:
		return "bytes"
	default:
		return "invalid"
	}
}

// ParseKind resolves a user-supplied type string to a Kind.
// Accepted spellings per kind: int|integer|i64, float|double|f64,
// string|text|varchar, bytes|blob|binary.
func ParseKind(s string) (Kind, bool) {
	switch strings.ToLower(s) {
	case "int", "integer", "i64":
		return KindInt, true
	case "float", "double", "f64":
		return KindFloat, true
	case "string", "text", "varchar":
		return KindString, true
	case "bytes", "blob", "binary":
		return KindBytes, true
	default:
		return KindInvalid, false
	}
}

// Value is a small tagged scalar used for cells, index keys and query
// operands.
//
// The representation is designed to make indexing fast and predictable:
// no reflection and no fmt-based stringification on hot paths.
type Value struct {
	Kind Kind    `json:"k"`
	I64  int64   `json:"i,omitempty"`
	F64  float64 `json:"f,omitempty"`
	S    string  `json:"s,omitempty"`
	B    []byte  `json:"b,omitempty"`
}

// Int returns an int64 Value.
func Int(v int64) Value { return Value{Kind: KindInt, I64: v} }

// Float returns a float64 Value.
//
// The value is canonicalized for lookup semantics: -0.0 is stored as
// +0.0 and every NaN payload collapses to the canonical quiet NaN.
func Float(v float64) Value {
	if v == 0 {
		v = 0 // drop the sign of -0.0
	}
	if math.IsNaN(v) {
		v = math.NaN()
	}
	return Value{Kind: KindFloat, F64: v}
}

// String returns a string Value.
func String(v string) Value { return Value{Kind: KindString, S: v} }

// Bytes returns a bytes Value. The buffer is not copied; callers that
// retain the slice should copy first.
func Bytes(v []byte) Value { return Value{Kind: KindBytes, B: v} }

// AsInt64 returns the int64 value if Kind is KindInt.
func (v Value) AsInt64() (int64, bool) {
	if v.Kind != KindInt {
		return 0, false
	}
	return v.I64, true
}

// AsFloat64 returns the float64 value if Kind is KindFloat.
func (v Value) AsFloat64() (float64, bool) {
	if v.Kind != KindFloat {
		return 0, false
	}
	return v.F64, true
}

// AsString returns the string value if Kind is KindString.
func (v Value) AsString() (string, bool) {
	if v.Kind != KindString {
		return "", false
	}
	return v.S, true
}

// AsBytes returns the byte buffer if Kind is KindBytes.
func (v Value) AsBytes() ([]byte, bool) {
	if v.Kind != KindBytes {
		return nil, false
	}
	return v.B, true
}

// Equal reports lookup equality between two values.
//
// Floats compare bit-exact after canonicalization, so NaN never equals
// NaN and -0.0 equals +0.0. Cross-kind comparisons are always false.
func (v Value) Equal(o Value) bool {
	if v.Kind != o.Kind {
		return false
	}
	switch v.Kind {
	case KindInt:
		return v.I64 == o.I64
	case KindFloat:
		if math.IsNaN(v.F64) || math.IsNaN(o.F64) {
			return false
		}
		return math.Float64bits(v.F64) == math.Float64bits(o.F64)
	case KindString:
		return v.S == o.S
	case KindBytes:
		return bytes.Equal(v.B, o.B)
	default:
		return false
	}
}

// Key returns a stable string representation for use as a map key in
// hash and Bloom indexes. The per-kind prefix keeps kinds from
// colliding.
func (v Value) Key() string {
	switch v.Kind {
	case KindInt:
		return "i:" + strconv.FormatInt(v.I64, 10)
	case KindFloat:
		return "f:" + strconv.FormatUint(math.Float64bits(v.F64), 16)
	case KindString:
		return "s:" + v.S
	case KindBytes:
		return "b:" + string(v.B)
	default:
		return "invalid"
	}
}

// OrderKey returns an order-preserving uint64 encoding for numeric
// values: a < b exactly when OrderKey(a) < OrderKey(b). Floats follow
// IEEE-754 total order with NaN greatest. ok is false for non-numeric
// kinds.
func (v Value) OrderKey() (key uint64, ok bool) {
	switch v.Kind {
	case KindInt:
		return uint64(v.I64) ^ (1 << 63), true
	case KindFloat:
		bits := math.Float64bits(v.F64)
		if bits&(1<<63) != 0 {
			return ^bits, true
		}
		return bits | (1 << 63), true
	default:
		return 0, false
	}
}

// IsNaN reports whether the value is a float NaN.
func (v Value) IsNaN() bool {
	return v.Kind == KindFloat && math.IsNaN(v.F64)
}

// ToJSON converts the value to its wire representation: numbers for
// int and float, a string for strings, and a base64 string for bytes.
func (v Value) ToJSON() any {
	switch v.Kind {
	case KindInt:
		return v.I64
	case KindFloat:
		return v.F64
	case KindString:
		return v.S
	case KindBytes:
		return base64.StdEncoding.EncodeToString(v.B)
	default:
		return nil
	}
}

// FromJSON converts a decoded JSON scalar to a Value of the wanted
// kind. JSON numbers arrive as float64; integral floats are accepted
// for int columns, and ints are accepted for float columns. Bytes are
// expected base64-encoded, falling back to the raw string bytes when
// the payload is not valid base64.
func FromJSON(raw any, want Kind) (Value, bool) {
	switch want {
	case KindInt:
		switch n := raw.(type) {
		case float64:
			if n != math.Trunc(n) || math.IsNaN(n) || n < math.MinInt64 || n >= math.MaxInt64 {
				return Value{}, false
			}
			return Int(int64(n)), true
		case int64:
			return Int(n), true
		}
	case KindFloat:
		switch n := raw.(type) {
		case float64:
			return Float(n), true
		case int64:
			return Float(float64(n)), true
		}
	case KindString:
		if s, ok := raw.(string); ok {
			return String(s), true
		}
	case KindBytes:
		if s, ok := raw.(string); ok {
			if b, err := base64.StdEncoding.DecodeString(s); err == nil {
				return Bytes(b), true
			}
			return Bytes([]byte(s)), true
		}
	}
	return Value{}, false
}
