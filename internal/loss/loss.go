// Package loss provides loss function specifications. A Spec only describes
// the loss and its options; computing it is left to the training backend.
package loss

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

var (
	// ErrUnknownKind is returned when a name does not match any loss function.
	ErrUnknownKind = errors.New("unknown loss function")
	// ErrUnknownReduction is returned when a reduction is neither Sum nor Mean.
	ErrUnknownReduction = errors.New("please select a reduction")
)

// Reduction is the aggregation applied across a batch.
type Reduction int

const (
	Sum Reduction = iota
	Mean
)

func (r Reduction) String() string {
	switch r {
	case Sum:
		return "Sum"
	case Mean:
		return "Mean"
	default:
		return "Unknown"
	}
}

// ParseReduction accepts "Sum" or "Mean" in any case.
func ParseReduction(s string) (Reduction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "sum":
		return Sum, nil
	case "mean":
		return Mean, nil
	}
	return 0, errors.Wrapf(ErrUnknownReduction, "got %q", s)
}

// Kind identifies a loss function.
type Kind int

const (
	KindMSE Kind = iota
	KindCrossEntropy
	KindBCE
	KindNLL
	KindCTC
	KindHuber
	KindL1
)

var kindNames = [...]string{
	KindMSE:          "MSE",
	KindCrossEntropy: "CrossEntropy",
	KindBCE:          "BCE",
	KindNLL:          "NLL",
	KindCTC:          "CTC",
	KindHuber:        "Huber",
	KindL1:           "L1",
}

// Kinds returns every loss kind in menu order.
func Kinds() []Kind {
	kinds := make([]Kind, len(kindNames))
	for i := range kindNames {
		kinds[i] = Kind(i)
	}
	return kinds
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "Unknown"
	}
	return kindNames[k]
}

// ParseKind resolves a loss name, ignoring case.
func ParseKind(s string) (Kind, error) {
	for i, n := range kindNames {
		if strings.EqualFold(n, strings.TrimSpace(s)) {
			return Kind(i), nil
		}
	}
	return 0, errors.Wrapf(ErrUnknownKind, "%q", s)
}

// Spec is a fully parameterised loss function.
type Spec interface {
	Kind() Kind
	String() string
}

// MSE (Mean Squared Error) loss.
type MSE struct {
	Reduction Reduction `json:"reduction"`
}

func (l MSE) Kind() Kind      { return KindMSE }
func (l MSE) String() string { return fmt.Sprintf("MSE(reduction=%s)", l.Reduction) }

// CrossEntropy loss for classification.
type CrossEntropy struct {
	Reduction      Reduction `json:"reduction"`
	LabelSmoothing float64   `json:"label_smoothing"`
}

func (l CrossEntropy) Kind() Kind { return KindCrossEntropy }
func (l CrossEntropy) String() string {
	return fmt.Sprintf("CrossEntropy(reduction=%s, label_smoothing=%g)", l.Reduction, l.LabelSmoothing)
}

// BCELoss is binary cross entropy.
type BCELoss struct {
	Reduction Reduction `json:"reduction"`
}

func (l BCELoss) Kind() Kind      { return KindBCE }
func (l BCELoss) String() string { return fmt.Sprintf("BCE(reduction=%s)", l.Reduction) }

// NLLLoss is negative log likelihood. It takes no options.
type NLLLoss struct{}

func (l NLLLoss) Kind() Kind      { return KindNLL }
func (l NLLLoss) String() string { return "NLL" }

// CTCLoss is connectionist temporal classification loss.
type CTCLoss struct {
	Reduction    Reduction `json:"reduction"`
	Blank        int64     `json:"blank"`
	ZeroInfinity bool      `json:"zero_infinity"`
}

func (l CTCLoss) Kind() Kind { return KindCTC }
func (l CTCLoss) String() string {
	return fmt.Sprintf("CTC(reduction=%s, blank=%d, zero_infinity=%t)", l.Reduction, l.Blank, l.ZeroInfinity)
}

// Huber loss for robust regression.
type Huber struct {
	Reduction Reduction `json:"reduction"`
	Delta     float64   `json:"delta"`
}

// NewHuber creates a Huber loss with the given threshold.
func NewHuber(reduction Reduction, delta float64) Huber {
	return Huber{Reduction: reduction, Delta: delta}
}

func (l Huber) Kind() Kind { return KindHuber }
func (l Huber) String() string {
	return fmt.Sprintf("Huber(reduction=%s, delta=%g)", l.Reduction, l.Delta)
}

// L1Loss is mean absolute error.
type L1Loss struct {
	Reduction Reduction `json:"reduction"`
}

func (l L1Loss) Kind() Kind      { return KindL1 }
func (l L1Loss) String() string { return fmt.Sprintf("L1(reduction=%s)", l.Reduction) }
