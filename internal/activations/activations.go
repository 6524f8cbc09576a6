// Package activations provides the catalog of activation functions that can be
// placed between layers. Activations carry no tunable state.
package activations

import (
	"strings"

	"github.com/pkg/errors"
)

// ErrUnknownKind is returned when a name does not match any activation.
var ErrUnknownKind = errors.New("unknown activation kind")

// Kind identifies an activation function.
type Kind int

const (
	ReLU Kind = iota
	Sigmoid
	Tanh
	Softmax
	LeakyReLU
	Flatten
)

var displayNames = [...]string{
	ReLU:      "ReLU",
	Sigmoid:   "Sigmoid",
	Tanh:      "Tanh",
	Softmax:   "Softmax",
	LeakyReLU: "Leaky ReLU",
	Flatten:   "Flatten",
}

// Kinds returns every activation kind in palette order.
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

// DisplayName returns the palette label.
func (k Kind) DisplayName() string {
	if !k.Valid() {
		return "Unknown"
	}
	return displayNames[k]
}

func (k Kind) String() string {
	return k.DisplayName()
}

// ParseKind resolves a palette label to a Kind. Case and inner spaces are
// ignored, so "LeakyReLU" and "Leaky ReLU" are equivalent.
func ParseKind(s string) (Kind, error) {
	name := squash(s)
	for i, n := range displayNames {
		if squash(n) == name {
			return Kind(i), nil
		}
	}
	return 0, errors.Wrapf(ErrUnknownKind, "%q", s)
}

func squash(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), ""))
}
