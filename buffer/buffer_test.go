package buffer

import (
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAllocAlignment(t *testing.T) {
	alignments := []int{1, 2, 4, 8, 16, 32, 64, 128, 4096}
	lengths := []int{1, 16, 17, 1024, 4096}

	for _, align := range alignments {
		for _, length := range lengths {
			t.Run(fmt.Sprintf("align=%d/len=%d", align, length), func(t *testing.T) {
				b, err := Alloc(length, align)
				require.NoError(t, err)

				assert.Zero(t, b.Addr()%uintptr(align), "address %#x not divisible by %d", b.Addr(), align)
				assert.True(t, b.Aligned())
				assert.Equal(t, length, b.Len())
				assert.Equal(t, length-1, b.ContentLen())
				assert.Equal(t, align, b.Alignment())
				assert.Len(t, b.Content(), length-1)
			})
		}
	}
}

func TestAllocBadAlignment(t *testing.T) {
	for _, align := range []int{0, -1, 3, 6, 12, 100} {
		_, err := Alloc(1024, align)
		assert.ErrorIs(t, err, ErrAlignment, "alignment %d", align)
	}
}

func TestAllocBadLength(t *testing.T) {
	for _, length := range []int{0, -1, -1024} {
		_, err := Alloc(length, 16)
		assert.ErrorIs(t, err, ErrAllocation, "length %d", length)
	}
}

func TestAllocOverflow(t *testing.T) {
	// length+alignment-1 wraps around before any memory is touched
	_, err := Alloc(math.MaxInt, 64)
	assert.ErrorIs(t, err, ErrAllocation)
}

func TestContentExcludesSentinel(t *testing.T) {
	b, err := Alloc(64, 16)
	require.NoError(t, err)

	content := b.Content()
	assert.Equal(t, 63, len(content))

	// writing through the content view never reaches the last byte
	for i := range content {
		content[i] = 0xaa
	}
	assert.EqualValues(t, 0, b.Bytes()[63])
}

func TestArenaLifecycle(t *testing.T) {
	a := NewArena()

	b1, err := a.Alloc(128, 32)
	require.NoError(t, err)
	b2, err := a.Alloc(128, 32)
	require.NoError(t, err)
	assert.Equal(t, 2, a.Live())

	a.Free(b1)
	assert.Equal(t, 1, a.Live())
	assert.Nil(t, b1.Bytes())
	assert.Zero(t, b1.Addr())

	// double free is a no-op
	a.Free(b1)
	assert.Equal(t, 1, a.Live())

	// freeing a buffer the arena never allocated is a no-op
	foreign, err := Alloc(128, 32)
	require.NoError(t, err)
	a.Free(foreign)
	assert.Equal(t, 1, a.Live())
	assert.NotNil(t, foreign.Bytes())

	a.Free(nil)
	assert.Equal(t, 1, a.Live())

	a.Free(b2)
	assert.Equal(t, 0, a.Live())
}

func TestArenaFreeAll(t *testing.T) {
	a := NewArena()
	var bufs []*Buffer
	for i := 0; i < 4; i++ {
		b, err := a.Alloc(256, 64)
		require.NoError(t, err)
		bufs = append(bufs, b)
	}
	require.Equal(t, 4, a.Live())

	a.FreeAll()
	assert.Equal(t, 0, a.Live())
	for _, b := range bufs {
		assert.Nil(t, b.Bytes())
	}
}

func TestArenaAllocError(t *testing.T) {
	a := NewArena()
	_, err := a.Alloc(1024, 7)
	assert.ErrorIs(t, err, ErrAlignment)
	assert.Equal(t, 0, a.Live())
}
