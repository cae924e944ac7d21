package bench

import (
	"fmt"

	"github.com/mhr3/charbench/config"
	"github.com/mhr3/charbench/count"
)

// CacheSizes returns the buffer ladder for the cache locality sweep:
// inside L1, around L2, around L3, and well into main memory.
func CacheSizes() []int {
	return []int{1 << 10, 32 << 10, 256 << 10, 1 << 20, 8 << 20, 32 << 20}
}

// Pow2Sizes returns the powers of two from lo through hi inclusive.
func Pow2Sizes(lo, hi int) []int {
	var sizes []int
	for n := lo; n > 0 && n <= hi; n <<= 1 {
		sizes = append(sizes, n)
	}
	return sizes
}

// Sweep compares scalar and vector at every size, keeping all other
// parameters fixed.
func (r *Runner) Sweep(cfg config.Run, sizes []int) ([]*Comparison, error) {
	out := make([]*Comparison, 0, len(sizes))
	for _, size := range sizes {
		c := cfg
		c.Length = size
		cmp, err := r.Compare(c, count.ScalarCounter{}, count.VectorCounter{})
		if err != nil {
			return nil, fmt.Errorf("sweep at %d bytes: %w", size, err)
		}
		out = append(out, cmp)
	}
	return out, nil
}
