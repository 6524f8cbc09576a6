package config

import (
	"strings"

	"github.com/FlavioCFOliveira/mlgui/internal/metal"
	"github.com/pkg/errors"
)

// ErrDeviceUnavailable is returned when the selected device cannot be used on this machine.
var ErrDeviceUnavailable = errors.New("device not available")

// Device represents the hardware the backend trains on.
type Device int

const (
	CPU Device = iota
	CUDA
	MPS
	Vulkan
)

var deviceNames = [...]string{
	CPU:    "CPU",
	CUDA:   "CUDA",
	MPS:    "MPS",
	Vulkan: "VULKAN",
}

// Devices returns every device in menu order.
func Devices() []Device {
	return []Device{CPU, CUDA, MPS, Vulkan}
}

func (d Device) String() string {
	if d < 0 || int(d) >= len(deviceNames) {
		return "Unknown"
	}
	return deviceNames[d]
}

// ParseDevice resolves a device name, ignoring case.
func ParseDevice(s string) (Device, error) {
	for i, n := range deviceNames {
		if strings.EqualFold(n, strings.TrimSpace(s)) {
			return Device(i), nil
		}
	}
	return 0, errors.Errorf("unknown device %q", s)
}

// Prober reports whether the MPS device can be used.
type Prober func() bool

// MetalProber probes the local machine.
var MetalProber Prober = metal.IsAvailable

// DefaultDevice returns the best available device for the current platform.
func DefaultDevice(probe Prober) Device {
	if probe != nil && probe() {
		return MPS
	}
	return CPU
}
