// Package mlgui assembles neural-network topologies and hands finished builds
// to a training backend. It re-exports the pieces of the internal packages a
// program needs to script a session without the interactive shell.
package mlgui

import (
	"context"

	"github.com/FlavioCFOliveira/mlgui/internal/activations"
	"github.com/FlavioCFOliveira/mlgui/internal/backend"
	"github.com/FlavioCFOliveira/mlgui/internal/config"
	"github.com/FlavioCFOliveira/mlgui/internal/editor"
	"github.com/FlavioCFOliveira/mlgui/internal/layer"
	"github.com/FlavioCFOliveira/mlgui/internal/loss"
	"github.com/FlavioCFOliveira/mlgui/internal/net"
	"github.com/FlavioCFOliveira/mlgui/internal/opt"
	"github.com/FlavioCFOliveira/mlgui/internal/settings"
	"github.com/pkg/errors"
)

// Re-export common types for easier access
type (
	Topology       = net.Topology
	ComponentID    = net.ComponentID
	Plan           = net.Plan
	BuildErrors    = net.BuildErrors
	LayerParams    = layer.Params
	ActivationKind = activations.Kind
	Loss           = loss.Spec
	Optimizer      = opt.Kind
	Device         = config.Device
	Settings       = settings.Settings
	Training       = config.Training
	Editor         = editor.Editor
	Hook           = editor.Hook
	Backend        = backend.Backend
	Request        = backend.Request
)

// Loss functions
type (
	MSE          = loss.MSE
	CrossEntropy = loss.CrossEntropy
	BCE          = loss.BCELoss
	NLL          = loss.NLLLoss
	CTC          = loss.CTCLoss
	Huber        = loss.Huber
	L1           = loss.L1Loss
)

// None marks an absent component.
const None = net.None

// Activations
const (
	ReLU      = activations.ReLU
	Sigmoid   = activations.Sigmoid
	Tanh      = activations.Tanh
	Softmax   = activations.Softmax
	LeakyReLU = activations.LeakyReLU
	Flatten   = activations.Flatten
)

// Optimizers
const (
	SGD     = opt.SGD
	Adam    = opt.Adam
	AdamW   = opt.AdamW
	RMSprop = opt.RMSprop
)

// Devices
const (
	CPU    = config.CPU
	CUDA   = config.CUDA
	MPS    = config.MPS
	Vulkan = config.Vulkan
)

// Reductions
const (
	Sum  = loss.Sum
	Mean = loss.Mean
)

// Errors
var (
	ErrInvalidComponent = net.ErrInvalidComponent
	ErrCycleDetected    = net.ErrCycleDetected
	ErrInvalidParams    = net.ErrInvalidParams
)

// Session creation
func NewTopology() *Topology {
	return net.New()
}

func DefaultSettings() Settings {
	return settings.Defaults()
}

func LoadSettings(path string) (Settings, error) {
	return settings.Load(path)
}

func NewTraining(s Settings) *Training {
	return config.New(s)
}

func NewEditor(cfg *Training, b Backend, hooks ...Hook) *Editor {
	return editor.New(cfg, b, hooks...)
}

// Backends
func Dial(ctx context.Context, url string) (*backend.Remote, error) {
	return backend.Dial(ctx, url)
}

func FileBackend() Backend {
	return backend.File{}
}

// Layers
func Dense(in, out int64) LayerParams {
	return &layer.LinearConfig{InFeatures: in, OutFeatures: out, Bias: true}
}

func LSTM(in, hidden int64) LayerParams {
	return rnn(layer.LSTM, in, hidden)
}

func GRU(in, hidden int64) LayerParams {
	return rnn(layer.GRU, in, hidden)
}

func rnn(k layer.Kind, in, hidden int64) LayerParams {
	p := layer.DefaultParams(k).(*layer.RNNConfig)
	p.InSize = in
	p.HiddenSize = hidden
	return p
}

func Conv2D(inChannels, outChannels, kernelSize, stride, padding int64) LayerParams {
	p := layer.DefaultParams(layer.Conv2D).(*layer.ConvConfig)
	p.InChannels = inChannels
	p.OutChannels = outChannels
	p.KernelSize = kernelSize
	p.Stride = stride
	p.Padding = padding
	return p
}

func BatchNorm2D(features int64) LayerParams {
	p := layer.DefaultParams(layer.BatchNorm2D).(*layer.BatchNormConfig)
	p.NumFeatures = features
	return p
}

// Params builds parameters for any layer kind from key=value assignments.
func Params(kind string, values map[string]string) (LayerParams, error) {
	k, err := layer.ParseKind(kind)
	if err != nil {
		return nil, err
	}
	return layer.ParseParams(k, values)
}

// Part is one element of a Stack.
type Part struct {
	params     LayerParams
	activation ActivationKind
}

// Layer wraps configured layer parameters.
func Layer(p LayerParams) Part {
	return Part{params: p}
}

// Activation wraps an activation function.
func Activation(k ActivationKind) Part {
	return Part{activation: k}
}

// Stack appends parts to t, links each one to the next and makes the first
// one the head. It returns the new ids in order.
func Stack(t *Topology, parts ...Part) ([]ComponentID, error) {
	ids := make([]ComponentID, 0, len(parts))
	for i, p := range parts {
		var id ComponentID
		if p.params != nil {
			id = t.AddLayer(p.params.Kind())
			if err := t.ConfigureLayer(id, p.params); err != nil {
				return ids, errors.Wrapf(err, "part %d", i)
			}
		} else {
			id = t.AddActivation(p.activation)
		}
		if len(ids) > 0 {
			if err := t.Link(ids[len(ids)-1], id); err != nil {
				return ids, errors.Wrapf(err, "part %d", i)
			}
		}
		ids = append(ids, id)
	}
	if len(ids) > 0 {
		if err := t.SetHead(ids[0]); err != nil {
			return ids, err
		}
	}
	return ids, nil
}

// NewRequest validates t and cfg and snapshots them into a build request.
func NewRequest(t *Topology, cfg *Training) (*Request, error) {
	if err := t.ValidateBuild(cfg); err != nil {
		return nil, err
	}
	return backend.NewRequest(t, cfg)
}
