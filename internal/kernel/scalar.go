package kernel

// countScalar is the reference kernel: one byte per step, no tricks.
// Every other kernel must agree with it on every input.
func countScalar(p []byte, c byte) int {
	n := 0
	for i := 0; i < len(p); i++ {
		if p[i] == c {
			n++
		}
	}
	return n
}
