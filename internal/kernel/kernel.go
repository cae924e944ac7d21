// Package kernel holds the byte-counting kernels and their runtime
// selection. The scalar kernel is the reference implementation; the
// vector kernels step through 16-byte blocks and are picked at startup
// from cpu capabilities, or forced through the CHARBENCH_KERNEL
// environment variable.
package kernel

import (
	"errors"
	"fmt"
	"strings"
)

// Kind identifies a counting kernel.
type Kind uint8

const (
	// Scalar is the byte-at-a-time reference kernel.
	Scalar Kind = iota
	// SWAR compares 16-byte blocks as pairs of 64-bit words.
	SWAR
	// SSE2 compares 16-byte blocks with PCMPEQB and needs POPCNT.
	SSE2

	numKinds
)

// ErrUnavailable is returned by Force for kernels this cpu cannot run.
var ErrUnavailable = errors.New("kernel not available on this cpu")

var kindNames = [numKinds]string{
	Scalar: "scalar",
	SWAR:   "swar",
	SSE2:   "sse2",
}

func (k Kind) String() string {
	if k < numKinds {
		return kindNames[k]
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// ParseKind maps a kernel name to its Kind, ignoring case.
func ParseKind(s string) (Kind, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, name := range kindNames {
		if s == name {
			return Kind(i), true
		}
	}
	return Scalar, false
}

// impls holds one counting function per kind. Vector entries stay nil
// until the platform init registers them; nil means unavailable.
var impls = [numKinds]func([]byte, byte) int{
	Scalar: countScalar,
	SWAR:   countSWAR,
}

var (
	active     Kind
	activeFn   = countSWAR
	overridden bool
)

// Active returns the kernel Count currently dispatches to.
func Active() Kind { return active }

// Overridden reports whether the active kernel came from the environment.
func Overridden() bool { return overridden }

// Available reports whether k can run on this cpu.
func Available(k Kind) bool {
	return k < numKinds && impls[k] != nil
}

// All lists every kernel kind, available or not.
func All() []Kind {
	return []Kind{Scalar, SWAR, SSE2}
}

// Force makes k the active kernel for subsequent Count calls.
func Force(k Kind) error {
	if !Available(k) {
		return fmt.Errorf("%w: %s", ErrUnavailable, k)
	}
	setActive(k)
	return nil
}

func setActive(k Kind) {
	active = k
	activeFn = impls[k]
}

// Count returns the number of bytes in p equal to c, using the active
// kernel. Any slice alignment is accepted.
func Count(p []byte, c byte) int {
	return activeFn(p, c)
}

// CountScalar counts with the reference kernel regardless of Active.
func CountScalar(p []byte, c byte) int {
	return countScalar(p, c)
}

// Impl returns the counting function registered for k, if any.
func Impl(k Kind) (func([]byte, byte) int, bool) {
	if !Available(k) {
		return nil, false
	}
	return impls[k], true
}
