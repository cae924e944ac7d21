package kernel

import (
	"encoding/binary"
	"math/bits"
)

// blockSize is the vector block width shared by all vector kernels.
const blockSize = 16

// lsb has the low bit of every byte lane set.
const lsb = ^uint64(0) / 255

// broadcast replicates c into all eight byte lanes of a word.
func broadcast(c byte) uint64 {
	return lsb * uint64(c)
}

// zeroLaneMask returns a word with 0x80 set in exactly the byte lanes
// of x that are zero. Related to the zero-in-word trick from
// https://graphics.stanford.edu/~seander/bithacks.html#ZeroInWord, but
// uses the carry-free form: the (x-lsb)&^x&msb variant lets borrows
// leak into neighboring lanes, which is fine for existence checks and
// wrong for popcounts.
func zeroLaneMask(x uint64) uint64 {
	const low7 = lsb * 127
	return ^(((x & low7) + low7) | x | low7)
}

// countSWAR compares 16-byte blocks as two 64-bit words per step and
// popcounts the match masks, then finishes the tail a byte at a time.
// Words are assembled byte-wise, so any alignment is safe.
func countSWAR(p []byte, c byte) int {
	pat := broadcast(c)
	n := 0
	for ; len(p) >= blockSize; p = p[blockSize:] {
		lo := binary.LittleEndian.Uint64(p)
		hi := binary.LittleEndian.Uint64(p[8:])
		n += bits.OnesCount64(zeroLaneMask(lo ^ pat))
		n += bits.OnesCount64(zeroLaneMask(hi ^ pat))
	}
	for i := 0; i < len(p); i++ {
		if p[i] == c {
			n++
		}
	}
	return n
}
