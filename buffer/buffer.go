// Package buffer provides the aligned byte buffers the counters run
// over: allocation at a caller-chosen power-of-two alignment,
// deterministic content generation, and an arena that pairs every
// allocation with a free.
package buffer

import (
	"errors"
	"fmt"
	"unsafe"
)

var (
	// ErrAlignment is returned when the requested alignment is not a
	// power of two, or no aligned address fits inside the raw block.
	ErrAlignment = errors.New("buffer: bad alignment")

	// ErrAllocation is returned when the requested length cannot be
	// allocated.
	ErrAllocation = errors.New("buffer: allocation failed")
)

// A Buffer is an aligned view into a slightly larger raw block. The
// view starts at the first address in the block divisible by the
// requested alignment and spans exactly the requested length. The
// last byte is reserved for the zero sentinel written by Filler.
type Buffer struct {
	raw       []byte // over-allocated block
	data      []byte // aligned view, len == requested length
	alignment int
}

// Alloc returns a buffer of length bytes whose first byte sits on an
// address divisible by alignment. The raw block is length+alignment-1
// bytes, which always holds such an address.
func Alloc(length, alignment int) (*Buffer, error) {
	if alignment < 1 || alignment&(alignment-1) != 0 {
		return nil, fmt.Errorf("%w: %d is not a power of two", ErrAlignment, alignment)
	}
	if length < 1 {
		return nil, fmt.Errorf("%w: non-positive length %d", ErrAllocation, length)
	}
	total := length + alignment - 1
	if total < length {
		return nil, fmt.Errorf("%w: length %d with alignment %d overflows", ErrAllocation, length, alignment)
	}

	raw := make([]byte, total)
	addr := uintptr(unsafe.Pointer(&raw[0]))
	off := int(alignUp(addr, uintptr(alignment)) - addr)
	if off+length > total {
		return nil, fmt.Errorf("%w: no aligned address within %d spare bytes", ErrAlignment, total-length)
	}

	return &Buffer{
		raw:       raw,
		data:      raw[off : off+length : off+length],
		alignment: alignment,
	}, nil
}

// alignUp rounds addr up to the next multiple of a. a must be a power
// of two.
func alignUp(addr, a uintptr) uintptr {
	return (addr + a - 1) &^ (a - 1)
}

// Bytes returns the full aligned view, sentinel byte included.
func (b *Buffer) Bytes() []byte { return b.data }

// Content returns the view without the trailing sentinel. This is the
// region the counters read.
func (b *Buffer) Content() []byte {
	if len(b.data) == 0 {
		return nil
	}
	return b.data[:len(b.data)-1]
}

// Len returns the full view length, sentinel included.
func (b *Buffer) Len() int { return len(b.data) }

// ContentLen returns the number of counted bytes, Len()-1.
func (b *Buffer) ContentLen() int {
	if len(b.data) == 0 {
		return 0
	}
	return len(b.data) - 1
}

// Alignment returns the alignment the buffer was allocated with.
func (b *Buffer) Alignment() int { return b.alignment }

// Addr returns the address of the first byte of the aligned view, or 0
// for a freed buffer.
func (b *Buffer) Addr() uintptr {
	if len(b.data) == 0 {
		return 0
	}
	return uintptr(unsafe.Pointer(&b.data[0]))
}

// Aligned reports whether the view address satisfies the alignment.
func (b *Buffer) Aligned() bool {
	return b.Addr()&uintptr(b.alignment-1) == 0
}

// An Arena tracks live buffers by their aligned address so every
// allocation can be paired with a free. Freeing a buffer the arena
// does not own is a no-op, which makes double frees and foreign
// buffers harmless. Not safe for concurrent use.
type Arena struct {
	live map[uintptr]*Buffer
}

func NewArena() *Arena {
	return &Arena{live: make(map[uintptr]*Buffer)}
}

// Alloc allocates a buffer and records it as live.
func (a *Arena) Alloc(length, alignment int) (*Buffer, error) {
	b, err := Alloc(length, alignment)
	if err != nil {
		return nil, err
	}
	a.live[b.Addr()] = b
	return b, nil
}

// Free releases b if the arena owns it; unknown or already freed
// buffers are ignored. The released buffer reads as empty afterwards.
func (a *Arena) Free(b *Buffer) {
	if b == nil || len(b.data) == 0 {
		return
	}
	addr := b.Addr()
	if a.live[addr] != b {
		return
	}
	delete(a.live, addr)
	b.raw, b.data = nil, nil
}

// FreeAll releases every live buffer.
func (a *Arena) FreeAll() {
	for _, b := range a.live {
		b.raw, b.data = nil, nil
	}
	clear(a.live)
}

// Live returns the number of buffers allocated and not yet freed.
func (a *Arena) Live() int { return len(a.live) }
