//go:build !amd64 || noasm

package kernel

func init() {
	initKernel()
}
