// Package metal probes for the Metal Performance Shaders (MPS) device used by
// the training backend on macOS.
package metal

import (
	"os"
	"strconv"
)

// DisableEnv names the environment variable that forces the probe to report
// MPS as unavailable, e.g. when the installed backend was built without it.
const DisableEnv = "MLGUI_DISABLE_MPS"

func disabled() bool {
	v, err := strconv.ParseBool(os.Getenv(DisableEnv))
	return err == nil && v
}
