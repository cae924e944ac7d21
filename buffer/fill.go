package buffer

import "math/rand/v2"

// Printable ASCII range written by Fill, both ends inclusive.
const (
	minPrintable = 32  // space
	maxPrintable = 126 // tilde
)

// A Filler writes deterministic buffer content from a seeded PCG
// stream. The same seed always produces the same bytes, so runs are
// reproducible and scalar and vector counters see identical data.
type Filler struct {
	rng  *rand.Rand
	seed uint64
}

func NewFiller(seed uint64) *Filler {
	f := &Filler{}
	f.Reset(seed)
	return f
}

// Seed returns the seed of the current stream.
func (f *Filler) Seed() uint64 { return f.seed }

// Reset restarts the stream. Resetting to the seed already in use
// replays the sequence from the beginning.
func (f *Filler) Reset(seed uint64) {
	f.seed = seed
	f.rng = rand.New(rand.NewPCG(seed, seed))
}

// Fill writes uniform printable ASCII over the content region and a
// zero sentinel over the last byte.
func (f *Filler) Fill(b *Buffer) {
	content := b.Content()
	for i := range content {
		content[i] = f.printable()
	}
	writeSentinel(b)
}

// FillWithFrequency writes content where target appears with
// probability freq per byte; every other byte is printable ASCII
// redrawn until it differs from target. Returns the number of targets
// written.
func (f *Filler) FillWithFrequency(b *Buffer, target byte, freq float64) int {
	content := b.Content()
	planted := 0
	for i := range content {
		if f.rng.Float64() < freq {
			content[i] = target
			planted++
			continue
		}
		c := f.printable()
		for c == target {
			c = f.printable()
		}
		content[i] = c
	}
	writeSentinel(b)
	return planted
}

// FillUTF8 writes a mix of one, two and three byte UTF-8 sequences
// over the content region. Sequences are cut off at the region end,
// so the tail may hold a partial rune; the counters treat content as
// raw bytes either way.
func (f *Filler) FillUTF8(b *Buffer) {
	content := b.Content()
	i := 0
	for i < len(content) {
		switch f.rng.IntN(10) {
		case 0: // 2-byte sequence, U+0080..U+07BF
			content[i] = byte(0xc2 + f.rng.IntN(0x1e))
			i++
			if i < len(content) {
				content[i] = f.continuation()
				i++
			}
		case 1: // 3-byte sequence clear of the E0/ED special ranges
			content[i] = byte(0xe1 + f.rng.IntN(0x0c))
			i++
			for j := 0; j < 2 && i < len(content); j++ {
				content[i] = f.continuation()
				i++
			}
		default:
			content[i] = f.printable()
			i++
		}
	}
	writeSentinel(b)
}

func (f *Filler) printable() byte {
	return byte(minPrintable + f.rng.IntN(maxPrintable-minPrintable+1))
}

func (f *Filler) continuation() byte {
	return byte(0x80 + f.rng.IntN(0x40))
}

func writeSentinel(b *Buffer) {
	if n := b.Len(); n > 0 {
		b.data[n-1] = 0
	}
}
