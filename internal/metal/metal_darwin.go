//go:build darwin
// +build darwin

package metal

import "runtime"

// IsAvailable checks if the Metal Performance Shaders backend can be used.
// Every Apple Silicon Mac ships an MPS capable GPU.
func IsAvailable() bool {
	return runtime.GOARCH == "arm64" && !disabled()
}
