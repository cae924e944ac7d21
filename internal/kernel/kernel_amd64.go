//go:build !noasm

package kernel

import "golang.org/x/sys/cpu"

var hasPOPCNT = cpu.X86.HasPOPCNT

func init() {
	if hasPOPCNT {
		impls[SSE2] = countSSE2
	}
	initKernel()
}

// countBlocksSSE2 counts bytes equal to c in p.
// len(p) must be a multiple of 16.
//
//go:noescape
func countBlocksSSE2(p []byte, c byte) int

// countSSE2 runs the assembly kernel over whole blocks and counts the
// tail with the scalar loop. MOVOU loads tolerate any alignment.
func countSSE2(p []byte, c byte) int {
	n := len(p) &^ (blockSize - 1)
	total := countBlocksSSE2(p[:n], c)
	for _, b := range p[n:] {
		if b == c {
			total++
		}
	}
	return total
}
