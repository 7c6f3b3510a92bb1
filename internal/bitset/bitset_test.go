package bitset

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSetTestClear(t *testing.T) {
	b := New(16)
	assert.False(t, b.Test(3))

	b.Set(3)
	b.Set(64)
	assert.True(t, b.Test(3))
	assert.True(t, b.Test(64))
	assert.Equal(t, 2, b.Count())

	b.Clear(3)
	assert.False(t, b.Test(3))
	assert.Equal(t, 1, b.Count())

	// Clearing out of range is a no-op.
	b.Clear(1 << 20)
}

func TestGrowOnSet(t *testing.T) {
	b := New(0)
	b.Set(1000)
	assert.True(t, b.Test(1000))
	assert.False(t, b.Test(999))
	assert.False(t, b.Test(100000))
	assert.Equal(t, 1, b.Count())
}
