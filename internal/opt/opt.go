// Package opt provides the catalog of optimizers a training run can use.
package opt

import (
	"strings"

	"github.com/pkg/errors"
)

// ErrUnknownKind is returned when a name does not match any optimizer.
var ErrUnknownKind = errors.New("unknown optimizer")

// Kind identifies an optimization algorithm.
type Kind int

const (
	SGD Kind = iota
	Adam
	AdamW
	RMSprop
)

var names = [...]string{
	SGD:     "SGD",
	Adam:    "Adam",
	AdamW:   "AdamW",
	RMSprop: "RMSprop",
}

// Kinds returns every optimizer in menu order.
func Kinds() []Kind {
	return []Kind{SGD, Adam, AdamW, RMSprop}
}

// Valid reports whether k is a catalog entry.
func (k Kind) Valid() bool {
	return k >= 0 && int(k) < len(names)
}

func (k Kind) String() string {
	if !k.Valid() {
		return "Unknown"
	}
	return names[k]
}

// ParseKind resolves an optimizer name, ignoring case.
func ParseKind(s string) (Kind, error) {
	for i, n := range names {
		if strings.EqualFold(n, strings.TrimSpace(s)) {
			return Kind(i), nil
		}
	}
	return 0, errors.Wrapf(ErrUnknownKind, "%q", s)
}
