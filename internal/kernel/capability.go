package kernel

import "os"

// Env names the environment variable that forces a kernel at startup,
// e.g. CHARBENCH_KERNEL=swar. Unknown or unavailable names are ignored
// and selection falls through to the best available kernel.
const Env = "CHARBENCH_KERNEL"

// initKernel picks the startup kernel. Called from the per-platform
// init functions once vector kernels have been registered.
func initKernel() {
	if s := os.Getenv(Env); s != "" {
		if k, ok := ParseKind(s); ok && Available(k) {
			overridden = true
			setActive(k)
			return
		}
	}
	setActive(best())
}

// best prefers the widest available vector kernel. Scalar is never
// auto-selected; it stays reachable through Force and CountScalar.
func best() Kind {
	if Available(SSE2) {
		return SSE2
	}
	return SWAR
}
