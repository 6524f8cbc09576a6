// Package layer provides the catalog of layer kinds that can be placed on the
// playground, together with their configurable parameter sets.
package layer

import (
	"strings"

	"github.com/pkg/errors"
)

// ErrUnknownKind is returned when a layer name does not match any catalog entry.
var ErrUnknownKind = errors.New("unknown layer kind")

// Kind identifies a layer type.
type Kind int

const (
	Linear Kind = iota
	LSTM
	GRU
	BatchNorm1D
	BatchNorm2D
	BatchNorm3D
	Conv1D
	Conv2D
	Conv3D
	ConvTranspose1D
	ConvTranspose2D
	ConvTranspose3D
)

var displayNames = [...]string{
	Linear:          "Linear",
	LSTM:            "LSTM",
	GRU:             "GRU",
	BatchNorm1D:     "BatchNorm1D",
	BatchNorm2D:     "BatchNorm2D",
	BatchNorm3D:     "BatchNorm3D",
	Conv1D:          "Conv1D",
	Conv2D:          "Conv2D",
	Conv3D:          "Conv3D",
	ConvTranspose1D: "ConvTranspose1D",
	ConvTranspose2D: "ConvTranspose2D",
	ConvTranspose3D: "ConvTranspose3D",
}

// Kinds returns every layer kind in palette order.
func Kinds() []Kind {
	kinds := make([]Kind, len(displayNames))
	for i := range displayNames {
		kinds[i] = Kind(i)
	}
	return kinds
}

// Valid reports whether k is a catalog entry.
func (k Kind) Valid() bool {
	return k >= 0 && int(k) < len(displayNames)
}

// DisplayName returns the label shown on the component palette.
func (k Kind) DisplayName() string {
	if !k.Valid() {
		return "Unknown"
	}
	return displayNames[k]
}

func (k Kind) String() string {
	return k.DisplayName()
}

// Dims returns the spatial dimensionality of the kind, or 0 for kinds that
// operate on flat or sequence inputs.
func (k Kind) Dims() int {
	switch k {
	case BatchNorm1D, Conv1D, ConvTranspose1D:
		return 1
	case BatchNorm2D, Conv2D, ConvTranspose2D:
		return 2
	case BatchNorm3D, Conv3D, ConvTranspose3D:
		return 3
	default:
		return 0
	}
}

// ParseKind resolves a palette label to a Kind. Matching ignores case, so the
// older "Lstm" and "Gru" spellings are accepted too.
func ParseKind(s string) (Kind, error) {
	name := strings.TrimSpace(s)
	for i, n := range displayNames {
		if strings.EqualFold(n, name) {
			return Kind(i), nil
		}
	}
	return 0, errors.Wrapf(ErrUnknownKind, "%q", s)
}
