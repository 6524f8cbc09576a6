//go:build !darwin
// +build !darwin

package metal

// IsAvailable always reports false outside macOS.
func IsAvailable() bool {
	return false
}
