package count

import (
	"fmt"

	"github.com/mhr3/charbench/internal/kernel"
)

// ErrCapability is returned when a requested kernel cannot run on this
// cpu.
var ErrCapability = kernel.ErrUnavailable

// KernelName returns the kernel the vector counter dispatches to.
func KernelName() string { return kernel.Active().String() }

// KernelOverridden reports whether the kernel came from the
// CHARBENCH_KERNEL environment variable rather than auto-selection.
func KernelOverridden() bool { return kernel.Overridden() }

// ForceKernel switches the vector counter to the named kernel for the
// rest of the process. Unknown names and kernels the cpu cannot run
// return ErrCapability. Forcing "scalar" is the explicit fallback
// configuration.
func ForceKernel(name string) error {
	k, ok := kernel.ParseKind(name)
	if !ok {
		return fmt.Errorf("%w: unknown kernel %q", ErrCapability, name)
	}
	return kernel.Force(k)
}

// KernelInfo describes one kernel for capability reports.
type KernelInfo struct {
	Name      string
	Available bool
	Active    bool
}

// Kernels lists every kernel with its availability on this cpu.
func Kernels() []KernelInfo {
	kinds := kernel.All()
	infos := make([]KernelInfo, 0, len(kinds))
	for _, k := range kinds {
		infos = append(infos, KernelInfo{
			Name:      k.String(),
			Available: kernel.Available(k),
			Active:    k == kernel.Active(),
		})
	}
	return infos
}
