package loss

import (
	"math"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// ErrInvalidOption is returned when a loss option cannot be parsed or is out of range.
var ErrInvalidOption = errors.New("invalid loss option")

// Form carries the raw values entered in a loss configuration dialog. Only the
// fields relevant to the chosen kind are read.
type Form struct {
	Reduction    string
	Smoothing    string
	Delta        string
	Blank        string
	ZeroInfinity bool
}

// Parse turns a dialog submission into a Spec.
func Parse(k Kind, f Form) (Spec, error) {
	if k == KindNLL {
		return NLLLoss{}, nil
	}
	if k < 0 || int(k) >= len(kindNames) {
		return nil, errors.Wrapf(ErrUnknownKind, "kind %d", int(k))
	}

	red, err := ParseReduction(f.Reduction)
	if err != nil {
		return nil, err
	}

	switch k {
	case KindMSE:
		return MSE{Reduction: red}, nil
	case KindBCE:
		return BCELoss{Reduction: red}, nil
	case KindL1:
		return L1Loss{Reduction: red}, nil
	case KindCrossEntropy:
		smoothing, err := parseFloat("smoothing", f.Smoothing, 0)
		if err != nil {
			return nil, err
		}
		if smoothing < 0 || smoothing > 1 {
			return nil, errors.Wrapf(ErrInvalidOption, "label smoothing must be within [0, 1], got %g", smoothing)
		}
		return CrossEntropy{Reduction: red, LabelSmoothing: smoothing}, nil
	case KindHuber:
		delta, err := parseFloat("delta", f.Delta, 1)
		if err != nil {
			return nil, err
		}
		if delta <= 0 {
			return nil, errors.Wrapf(ErrInvalidOption, "delta must be positive, got %g", delta)
		}
		return NewHuber(red, delta), nil
	case KindCTC:
		blank, err := strconv.ParseInt(strings.TrimSpace(f.Blank), 10, 64)
		if err != nil {
			return nil, errors.Wrapf(ErrInvalidOption, "error parsing blank %q", f.Blank)
		}
		if blank < 0 {
			return nil, errors.Wrapf(ErrInvalidOption, "blank must not be negative, got %d", blank)
		}
		return CTCLoss{Reduction: red, Blank: blank, ZeroInfinity: f.ZeroInfinity}, nil
	}
	return nil, errors.Wrapf(ErrUnknownKind, "kind %d", int(k))
}

// parseFloat returns def for an empty field.
func parseFloat(name, s string, def float64) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return def, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, errors.Wrapf(ErrInvalidOption, "error parsing %s %q", name, s)
	}
	return v, nil
}
