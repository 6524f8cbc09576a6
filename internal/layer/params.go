package layer

import (
	"math"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

var (
	// ErrUnknownParam is returned by Set for a key the parameter set does not have.
	ErrUnknownParam = errors.New("unknown parameter")
	// ErrInvalidValue is returned by Set when a value cannot be parsed.
	ErrInvalidValue = errors.New("invalid parameter value")
	// ErrInvalidParams is returned by Validate for an inconsistent parameter set.
	ErrInvalidParams = errors.New("invalid layer parameters")
)

// Params is the user-editable configuration of a single layer.
type Params interface {
	// Kind returns the layer kind the parameters describe.
	Kind() Kind
	// InputSize returns the number of input features or channels.
	InputSize() int64
	// OutputSize returns the number of output features or channels.
	OutputSize() int64
	// Validate checks the parameter set for structural consistency.
	Validate() error
	// Set assigns a single parameter from its textual form.
	Set(key, value string) error
	// Clone returns an independent copy.
	Clone() Params
}

// DefaultParams returns the parameter set a freshly placed layer starts with.
// Sizes are zero, so the defaults never validate until the user sets them.
func DefaultParams(k Kind) Params {
	switch k {
	case Linear:
		return &LinearConfig{Bias: true}
	case LSTM, GRU:
		return &RNNConfig{
			LayerKind:  k,
			NumLayers:  1,
			HasBiases:  true,
			BatchFirst: true,
		}
	case BatchNorm1D, BatchNorm2D, BatchNorm3D:
		return &BatchNormConfig{
			LayerKind: k,
			Eps:       1e-5,
			Momentum:  0.1,
			Affine:    true,
		}
	case Conv1D, Conv2D, Conv3D:
		return &ConvConfig{
			LayerKind: k,
			Stride:    1,
			Dilation:  1,
			Groups:    1,
			Bias:      true,
		}
	case ConvTranspose1D, ConvTranspose2D, ConvTranspose3D:
		return &ConvTransposeConfig{
			ConvConfig: ConvConfig{
				LayerKind: k,
				Stride:    1,
				Dilation:  1,
				Groups:    1,
				Bias:      true,
			},
		}
	default:
		return nil
	}
}

// ParseParams builds a parameter set for k from key=value assignments applied
// on top of DefaultParams. The result is validated.
func ParseParams(k Kind, values map[string]string) (Params, error) {
	p := DefaultParams(k)
	if p == nil {
		return nil, errors.Wrapf(ErrUnknownKind, "kind %d", int(k))
	}
	for key, value := range values {
		if err := p.Set(key, value); err != nil {
			return nil, err
		}
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

// LinearConfig configures a fully connected layer.
type LinearConfig struct {
	InFeatures  int64 `json:"in_features"`
	OutFeatures int64 `json:"out_features"`
	Bias        bool  `json:"bias"`
}

func (c *LinearConfig) Kind() Kind        { return Linear }
func (c *LinearConfig) InputSize() int64  { return c.InFeatures }
func (c *LinearConfig) OutputSize() int64 { return c.OutFeatures }

func (c *LinearConfig) Clone() Params {
	cp := *c
	return &cp
}

func (c *LinearConfig) Validate() error {
	if err := positive("in_features", c.InFeatures); err != nil {
		return err
	}
	return positive("out_features", c.OutFeatures)
}

func (c *LinearConfig) Set(key, value string) error {
	switch normKey(key) {
	case "in_features", "in":
		return setInt(&c.InFeatures, key, value)
	case "out_features", "out":
		return setInt(&c.OutFeatures, key, value)
	case "bias":
		return setBool(&c.Bias, key, value)
	}
	return errors.Wrapf(ErrUnknownParam, "%s has no %q", Linear, key)
}

// RNNConfig configures an LSTM or GRU layer.
type RNNConfig struct {
	LayerKind     Kind    `json:"kind"`
	InSize        int64   `json:"input_size"`
	HiddenSize    int64   `json:"hidden_size"`
	NumLayers     int64   `json:"num_layers"`
	HasBiases     bool    `json:"has_biases"`
	Dropout       float64 `json:"dropout"`
	Bidirectional bool    `json:"bidirectional"`
	BatchFirst    bool    `json:"batch_first"`
}

func (c *RNNConfig) Kind() Kind       { return c.LayerKind }
func (c *RNNConfig) InputSize() int64 { return c.InSize }

// OutputSize is the hidden size, doubled for bidirectional layers.
func (c *RNNConfig) OutputSize() int64 {
	if c.Bidirectional {
		return 2 * c.HiddenSize
	}
	return c.HiddenSize
}

func (c *RNNConfig) Clone() Params {
	cp := *c
	return &cp
}

func (c *RNNConfig) Validate() error {
	if c.LayerKind != LSTM && c.LayerKind != GRU {
		return errors.Wrapf(ErrInvalidParams, "recurrent config for %s", c.LayerKind)
	}
	if err := positive("input_size", c.InSize); err != nil {
		return err
	}
	if err := positive("hidden_size", c.HiddenSize); err != nil {
		return err
	}
	if err := positive("num_layers", c.NumLayers); err != nil {
		return err
	}
	return unitInterval("dropout", c.Dropout)
}

func (c *RNNConfig) Set(key, value string) error {
	switch normKey(key) {
	case "input_size", "in":
		return setInt(&c.InSize, key, value)
	case "hidden_size", "out":
		return setInt(&c.HiddenSize, key, value)
	case "num_layers":
		return setInt(&c.NumLayers, key, value)
	case "has_biases", "bias":
		return setBool(&c.HasBiases, key, value)
	case "dropout":
		return setFloat(&c.Dropout, key, value)
	case "bidirectional":
		return setBool(&c.Bidirectional, key, value)
	case "batch_first":
		return setBool(&c.BatchFirst, key, value)
	}
	return errors.Wrapf(ErrUnknownParam, "%s has no %q", c.LayerKind, key)
}

// BatchNormConfig configures a BatchNorm1D, BatchNorm2D or BatchNorm3D layer.
type BatchNormConfig struct {
	LayerKind   Kind    `json:"kind"`
	NumFeatures int64   `json:"num_features"`
	Eps         float64 `json:"eps"`
	Momentum    float64 `json:"momentum"`
	Affine      bool    `json:"affine"`
}

func (c *BatchNormConfig) Kind() Kind        { return c.LayerKind }
func (c *BatchNormConfig) InputSize() int64  { return c.NumFeatures }
func (c *BatchNormConfig) OutputSize() int64 { return c.NumFeatures }

func (c *BatchNormConfig) Clone() Params {
	cp := *c
	return &cp
}

func (c *BatchNormConfig) Validate() error {
	switch c.LayerKind {
	case BatchNorm1D, BatchNorm2D, BatchNorm3D:
	default:
		return errors.Wrapf(ErrInvalidParams, "batch norm config for %s", c.LayerKind)
	}
	if err := positive("num_features", c.NumFeatures); err != nil {
		return err
	}
	if c.Eps <= 0 {
		return errors.Wrapf(ErrInvalidParams, "eps must be positive, got %v", c.Eps)
	}
	return unitInterval("momentum", c.Momentum)
}

func (c *BatchNormConfig) Set(key, value string) error {
	switch normKey(key) {
	case "num_features", "features", "in", "out":
		return setInt(&c.NumFeatures, key, value)
	case "eps":
		return setFloat(&c.Eps, key, value)
	case "momentum":
		return setFloat(&c.Momentum, key, value)
	case "affine":
		return setBool(&c.Affine, key, value)
	}
	return errors.Wrapf(ErrUnknownParam, "%s has no %q", c.LayerKind, key)
}

// ConvConfig configures a Conv1D, Conv2D or Conv3D layer. Kernel size, stride,
// padding and dilation apply uniformly to every spatial dimension.
type ConvConfig struct {
	LayerKind   Kind  `json:"kind"`
	InChannels  int64 `json:"in_channels"`
	OutChannels int64 `json:"out_channels"`
	KernelSize  int64 `json:"kernel_size"`
	Stride      int64 `json:"stride"`
	Padding     int64 `json:"padding"`
	Dilation    int64 `json:"dilation"`
	Groups      int64 `json:"groups"`
	Bias        bool  `json:"bias"`
}

func (c *ConvConfig) Kind() Kind        { return c.LayerKind }
func (c *ConvConfig) InputSize() int64  { return c.InChannels }
func (c *ConvConfig) OutputSize() int64 { return c.OutChannels }

func (c *ConvConfig) Clone() Params {
	cp := *c
	return &cp
}

func (c *ConvConfig) Validate() error {
	switch c.LayerKind {
	case Conv1D, Conv2D, Conv3D:
	default:
		return errors.Wrapf(ErrInvalidParams, "convolution config for %s", c.LayerKind)
	}
	return c.validateShape()
}

func (c *ConvConfig) validateShape() error {
	checks := []struct {
		name string
		v    int64
	}{
		{"in_channels", c.InChannels},
		{"out_channels", c.OutChannels},
		{"kernel_size", c.KernelSize},
		{"stride", c.Stride},
		{"dilation", c.Dilation},
		{"groups", c.Groups},
	}
	for _, ch := range checks {
		if err := positive(ch.name, ch.v); err != nil {
			return err
		}
	}
	if c.Padding < 0 {
		return errors.Wrapf(ErrInvalidParams, "padding must not be negative, got %d", c.Padding)
	}
	if c.InChannels%c.Groups != 0 || c.OutChannels%c.Groups != 0 {
		return errors.Wrapf(ErrInvalidParams, "groups (%d) must divide in_channels (%d) and out_channels (%d)",
			c.Groups, c.InChannels, c.OutChannels)
	}
	return nil
}

func (c *ConvConfig) Set(key, value string) error {
	switch normKey(key) {
	case "in_channels", "in":
		return setInt(&c.InChannels, key, value)
	case "out_channels", "out":
		return setInt(&c.OutChannels, key, value)
	case "kernel_size", "kernel":
		return setInt(&c.KernelSize, key, value)
	case "stride":
		return setInt(&c.Stride, key, value)
	case "padding":
		return setInt(&c.Padding, key, value)
	case "dilation":
		return setInt(&c.Dilation, key, value)
	case "groups":
		return setInt(&c.Groups, key, value)
	case "bias":
		return setBool(&c.Bias, key, value)
	}
	return errors.Wrapf(ErrUnknownParam, "%s has no %q", c.LayerKind, key)
}

// ConvTransposeConfig configures a transposed convolution layer.
type ConvTransposeConfig struct {
	ConvConfig
	OutputPadding int64 `json:"output_padding"`
}

func (c *ConvTransposeConfig) Clone() Params {
	cp := *c
	return &cp
}

func (c *ConvTransposeConfig) Validate() error {
	switch c.LayerKind {
	case ConvTranspose1D, ConvTranspose2D, ConvTranspose3D:
	default:
		return errors.Wrapf(ErrInvalidParams, "transposed convolution config for %s", c.LayerKind)
	}
	if err := c.validateShape(); err != nil {
		return err
	}
	if c.OutputPadding < 0 {
		return errors.Wrapf(ErrInvalidParams, "output_padding must not be negative, got %d", c.OutputPadding)
	}
	// output_padding must be smaller than either stride or dilation.
	if c.OutputPadding >= c.Stride && c.OutputPadding >= c.Dilation {
		return errors.Wrapf(ErrInvalidParams, "output_padding (%d) must be smaller than stride (%d) or dilation (%d)",
			c.OutputPadding, c.Stride, c.Dilation)
	}
	return nil
}

func (c *ConvTransposeConfig) Set(key, value string) error {
	if normKey(key) == "output_padding" {
		return setInt(&c.OutputPadding, key, value)
	}
	return c.ConvConfig.Set(key, value)
}

func normKey(key string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(key)), "-", "_")
}

func positive(name string, v int64) error {
	if v <= 0 {
		return errors.Wrapf(ErrInvalidParams, "%s must be positive, got %d", name, v)
	}
	return nil
}

func unitInterval(name string, v float64) error {
	if v < 0 || v > 1 {
		return errors.Wrapf(ErrInvalidParams, "%s must be within [0, 1], got %v", name, v)
	}
	return nil
}

func setInt(dst *int64, key, value string) error {
	v, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
	if err != nil {
		return errors.Wrapf(ErrInvalidValue, "%s=%q", key, value)
	}
	*dst = v
	return nil
}

func setFloat(dst *float64, key, value string) error {
	v, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return errors.Wrapf(ErrInvalidValue, "%s=%q", key, value)
	}
	*dst = v
	return nil
}

func setBool(dst *bool, key, value string) error {
	v, err := strconv.ParseBool(strings.TrimSpace(value))
	if err != nil {
		return errors.Wrapf(ErrInvalidValue, "%s=%q", key, value)
	}
	*dst = v
	return nil
}
