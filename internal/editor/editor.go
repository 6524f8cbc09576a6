// Package editor holds an editing session: one topology, one training
// configuration and the backend that receives finished builds. Every user
// action reaches the session through Dispatch.
package editor

import (
	"context"
	"sort"

	"github.com/FlavioCFOliveira/mlgui/internal/activations"
	"github.com/FlavioCFOliveira/mlgui/internal/backend"
	"github.com/FlavioCFOliveira/mlgui/internal/config"
	"github.com/FlavioCFOliveira/mlgui/internal/layer"
	"github.com/FlavioCFOliveira/mlgui/internal/loss"
	"github.com/FlavioCFOliveira/mlgui/internal/net"
	"github.com/pkg/errors"
)

// ErrUnknownEvent is returned by Dispatch for an event type it does not handle.
var ErrUnknownEvent = errors.New("unknown event")

// Editor is a single-threaded editing session.
type Editor struct {
	top     *net.Topology
	cfg     *config.Training
	backend backend.Backend
	hooks   []Hook
}

// New creates a session with an empty topology. A nil backend discards builds.
func New(cfg *config.Training, b backend.Backend, hooks ...Hook) *Editor {
	if b == nil {
		b = backend.Discard{}
	}
	return &Editor{
		top:     net.New(),
		cfg:     cfg,
		backend: b,
		hooks:   hooks,
	}
}

// AddHook registers h for subsequent events and builds.
func (e *Editor) AddHook(h Hook) {
	e.hooks = append(e.hooks, h)
}

// Topology returns the session topology. It stays owned by the editor.
func (e *Editor) Topology() *net.Topology { return e.top }

// Training returns the session training configuration.
func (e *Editor) Training() *config.Training { return e.cfg }

// Dispatch applies ev. Failures are returned and leave the session usable.
func (e *Editor) Dispatch(ctx context.Context, ev Event) (Result, error) {
	res, err := e.apply(ctx, ev)
	for _, h := range e.hooks {
		h.OnEvent(ev, res, err)
	}
	return res, err
}

func (e *Editor) apply(ctx context.Context, ev Event) (Result, error) {
	res := Result{ID: net.None}

	switch ev := ev.(type) {
	case AddLayer:
		k, err := layer.ParseKind(ev.Name)
		if err != nil {
			return res, err
		}
		res.ID = e.top.AddLayer(k)
	case AddActivation:
		k, err := activations.ParseKind(ev.Name)
		if err != nil {
			return res, err
		}
		res.ID = e.top.AddActivation(k)
	case SetHead:
		res.ID = ev.ID
		return res, e.top.SetHead(ev.ID)
	case Link:
		res.ID = ev.From
		return res, e.top.Link(ev.From, ev.To)
	case Unlink:
		res.ID = ev.ID
		return res, e.top.Unlink(ev.ID)
	case Configure:
		res.ID = ev.ID
		return res, e.configure(ev.ID, ev.Values)
	case SetField:
		return res, e.cfg.Set(ev.Field, ev.Value)
	case SetLoss:
		k, err := loss.ParseKind(ev.Kind)
		if err != nil {
			return res, err
		}
		spec, err := loss.Parse(k, ev.Form)
		if err != nil {
			return res, err
		}
		return res, e.cfg.SetLoss(spec)
	case Build:
		req, err := e.Build(ctx)
		res.Request = req
		return res, err
	default:
		return res, errors.Wrapf(ErrUnknownEvent, "%T", ev)
	}
	return res, nil
}

// configure applies values on top of the layer's current parameters.
func (e *Editor) configure(id net.ComponentID, values map[string]string) error {
	c, ok := e.top.Component(id)
	if !ok || !c.IsLayer() {
		return &net.TopologyError{Op: "configure", ID: id, Err: net.ErrInvalidComponent}
	}

	params := c.Layer.Params
	if params == nil {
		params = layer.DefaultParams(c.Layer.Kind)
	}
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if err := params.Set(k, values[k]); err != nil {
			return &net.TopologyError{Op: "configure", ID: id, Err: err}
		}
	}
	return e.top.ConfigureLayer(id, params)
}

// Ready reports whether every layer is configured.
func (e *Editor) Ready() bool {
	return e.top.IsReadyForBuild()
}

// Validate returns every unmet build precondition, or nil.
func (e *Editor) Validate() error {
	return e.top.ValidateBuild(e.cfg)
}

// Build validates the session and sends it to the backend exactly once. The
// request is returned even when the backend refuses it.
func (e *Editor) Build(ctx context.Context) (*backend.Request, error) {
	for _, h := range e.hooks {
		h.OnBuildBegin(e)
	}
	req, err := e.build(ctx)
	for _, h := range e.hooks {
		h.OnBuildEnd(req, err)
	}
	return req, err
}

func (e *Editor) build(ctx context.Context) (*backend.Request, error) {
	if err := e.Validate(); err != nil {
		return nil, err
	}
	req, err := backend.NewRequest(e.top, e.cfg)
	if err != nil {
		return nil, err
	}
	if err := e.backend.Build(ctx, req); err != nil {
		return req, errors.Wrap(err, "backend build failed")
	}
	return req, nil
}

// Open replaces the session topology with the one stored in filename.
func (e *Editor) Open(filename string) error {
	t, err := net.Load(filename)
	if err != nil {
		return errors.Wrapf(err, "failed to open %s", filename)
	}
	e.Reset(t)
	return nil
}

// Reset replaces the session topology with t, or with an empty one when t is nil.
func (e *Editor) Reset(t *net.Topology) {
	if t == nil {
		t = net.New()
	}
	e.top = t
}

// Save writes the session topology to filename.
func (e *Editor) Save(filename string) error {
	return errors.Wrapf(e.top.Save(filename), "failed to save %s", filename)
}
