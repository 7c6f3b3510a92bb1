package storage

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseKind(t *testing.T) {
	tests := []struct {
		in   string
		want Kind
		ok   bool
	}{
		{"int", KindInt, true},
		{"INTEGER", KindInt, true},
		{"i64", KindInt, true},
		{"float", KindFloat, true},
		{"double", KindFloat, true},
		{"f64", KindFloat, true},
		{"string", KindString, true},
		{"text", KindString, true},
		{"varchar", KindString, true},
		{"bytes", KindBytes, true},
		{"blob", KindBytes, true},
		{"binary", KindBytes, true},
		{"bool", KindInvalid, false},
		{"", KindInvalid, false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseKind(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestValueEqual(t *testing.T) {
	tests := []struct {
		name string
		a, b Value
		want bool
	}{
		{"int equal", Int(42), Int(42), true},
		{"int not equal", Int(42), Int(43), false},
		{"cross kind", Int(1), Float(1), false},
		{"string equal", String("a"), String("a"), true},
		{"bytes equal", Bytes([]byte{1, 2}), Bytes([]byte{1, 2}), true},
		{"bytes not equal", Bytes([]byte{1}), Bytes([]byte{2}), false},
		{"float equal", Float(9.99), Float(9.99), true},
		{"nan never equal", Float(math.NaN()), Float(math.NaN()), false},
		{"negative zero equals zero", Float(math.Copysign(0, -1)), Float(0), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.a.Equal(tt.b))
		})
	}
}

func TestValueKeyStability(t *testing.T) {
	// Keys must be distinct across kinds and stable per value.
	assert.NotEqual(t, Int(1).Key(), Float(1).Key())
	assert.NotEqual(t, String("1").Key(), Int(1).Key())
	assert.NotEqual(t, String("x").Key(), Bytes([]byte("x")).Key())
	assert.Equal(t, Int(7).Key(), Int(7).Key())

	// -0.0 canonicalizes to +0.0, so the keys collide on purpose.
	assert.Equal(t, Float(0).Key(), Float(math.Copysign(0, -1)).Key())
}

func TestValueOrderKey(t *testing.T) {
	ints := []int64{math.MinInt64, -7, -1, 0, 1, 42, math.MaxInt64}
	for i := 1; i < len(ints); i++ {
		a, ok := Int(ints[i-1]).OrderKey()
		require.True(t, ok)
		b, ok := Int(ints[i]).OrderKey()
		require.True(t, ok)
		assert.Less(t, a, b, "int order %d < %d", ints[i-1], ints[i])
	}

	floats := []float64{math.Inf(-1), -1e300, -1.5, 0, 2.5, 1e300, math.Inf(1), math.NaN()}
	for i := 1; i < len(floats); i++ {
		a, ok := Float(floats[i-1]).OrderKey()
		require.True(t, ok)
		b, ok := Float(floats[i]).OrderKey()
		require.True(t, ok)
		assert.Less(t, a, b, "float order %v < %v", floats[i-1], floats[i])
	}

	_, ok := String("nope").OrderKey()
	assert.False(t, ok)
}

func TestFromJSON(t *testing.T) {
	v, ok := FromJSON(float64(42), KindInt)
	require.True(t, ok)
	assert.Equal(t, Int(42), v)

	_, ok = FromJSON(float64(42.5), KindInt)
	assert.False(t, ok)

	v, ok = FromJSON(float64(10), KindFloat)
	require.True(t, ok)
	assert.Equal(t, Float(10), v)

	v, ok = FromJSON("hello", KindString)
	require.True(t, ok)
	assert.Equal(t, String("hello"), v)

	_, ok = FromJSON(true, KindString)
	assert.False(t, ok)

	// Base64 round-trip for bytes.
	v, ok = FromJSON("aGVsbG8=", KindBytes)
	require.True(t, ok)
	assert.Equal(t, []byte("hello"), v.B)
}

func TestToJSON(t *testing.T) {
	assert.Equal(t, int64(5), Int(5).ToJSON())
	assert.Equal(t, 2.5, Float(2.5).ToJSON())
	assert.Equal(t, "x", String("x").ToJSON())
	assert.Equal(t, "aGVsbG8=", Bytes([]byte("hello")).ToJSON())
}
