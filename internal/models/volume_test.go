package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVolumeIndexing(t *testing.T) {
	v := NewVolume(4, 3, 2)
	assert.Equal(t, 24, v.NumVoxels())
	assert.Len(t, v.Data, 24)

	// x varies fastest, z slowest.
	assert.Equal(t, 0, v.Index(0, 0, 0))
	assert.Equal(t, 1, v.Index(1, 0, 0))
	assert.Equal(t, 4, v.Index(0, 1, 0))
	assert.Equal(t, 12, v.Index(0, 0, 1))
	assert.Equal(t, 23, v.Index(3, 2, 1))

	v.Set(2, 1, 1, 7)
	assert.Equal(t, uint8(7), v.At(2, 1, 1))
	assert.Equal(t, uint8(7), v.Data[v.Index(2, 1, 1)])
}

func TestSameShape(t *testing.T) {
	a := NewVolume(10, 10, 10)
	assert.True(t, a.SameShape(NewVolume(10, 10, 10)))
	assert.False(t, a.SameShape(NewVolume(8, 10, 10)))
	assert.False(t, a.SameShape(NewVolume(10, 8, 10)))
	assert.False(t, a.SameShape(NewVolume(10, 10, 8)))
}

func TestClone(t *testing.T) {
	a := NewVolume(2, 2, 2)
	a.Set(0, 0, 0, 3)

	b := a.Clone()
	b.Set(0, 0, 0, 5)

	assert.Equal(t, uint8(3), a.At(0, 0, 0))
	assert.Equal(t, uint8(5), b.At(0, 0, 0))
}
