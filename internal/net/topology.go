// Package net provides the topology model: the components placed on the
// playground, the chain they are linked into and the checks that gate a build.
package net

import (
	"github.com/FlavioCFOliveira/mlgui/internal/activations"
	"github.com/FlavioCFOliveira/mlgui/internal/layer"
	"github.com/pkg/errors"
)

// ComponentID is a stable index into the topology's component arena.
type ComponentID int

// None marks an absent component reference.
const None ComponentID = -1

// Layer is a trainable component. It cannot be built until Configured.
type Layer struct {
	Kind       layer.Kind
	Configured bool
	InputSize  int64
	OutputSize int64
	Params     layer.Params
}

// Activation is a stateless component and is always considered configured.
type Activation struct {
	Kind activations.Kind
}

// Component is a node of the topology. Exactly one of Layer and Activation is set.
type Component struct {
	ID   ComponentID
	Head bool
	Next ComponentID

	Layer      *Layer
	Activation *Activation
}

// IsLayer reports whether c is a layer.
func (c Component) IsLayer() bool {
	return c.Layer != nil
}

// Configured reports whether c is ready to be built.
func (c Component) Configured() bool {
	if c.Layer != nil {
		return c.Layer.Configured
	}
	return true
}

// Name returns the display name of the component's kind.
func (c Component) Name() string {
	if c.Layer != nil {
		return c.Layer.Kind.DisplayName()
	}
	return c.Activation.Kind.DisplayName()
}

// clone returns a deep copy so callers cannot mutate the arena.
func (c Component) clone() Component {
	if c.Layer != nil {
		l := *c.Layer
		if l.Params != nil {
			l.Params = l.Params.Clone()
		}
		c.Layer = &l
	}
	if c.Activation != nil {
		a := *c.Activation
		c.Activation = &a
	}
	return c
}

// Topology owns the components of one editing session. Components are only
// appended, never removed, so ids stay valid for the whole session.
// Topology is not safe for concurrent use.
type Topology struct {
	components []Component
	head       ComponentID
}

// New creates an empty topology.
func New() *Topology {
	return &Topology{head: None}
}

// Len returns the number of components.
func (t *Topology) Len() int {
	return len(t.components)
}

// AddLayer appends an unconfigured layer with default parameters.
func (t *Topology) AddLayer(k layer.Kind) ComponentID {
	id := ComponentID(len(t.components))
	t.components = append(t.components, Component{
		ID:   id,
		Next: None,
		Layer: &Layer{
			Kind:   k,
			Params: layer.DefaultParams(k),
		},
	})
	return id
}

// AddActivation appends an activation function.
func (t *Topology) AddActivation(k activations.Kind) ComponentID {
	id := ComponentID(len(t.components))
	t.components = append(t.components, Component{
		ID:         id,
		Next:       None,
		Activation: &Activation{Kind: k},
	})
	return id
}

// Component returns a copy of the component with the given id.
func (t *Topology) Component(id ComponentID) (Component, bool) {
	if !t.exists(id) {
		return Component{}, false
	}
	return t.components[id].clone(), true
}

// Components returns copies of all components in id order.
func (t *Topology) Components() []Component {
	out := make([]Component, len(t.components))
	for i, c := range t.components {
		out[i] = c.clone()
	}
	return out
}

// Head returns the designated chain head, if any.
func (t *Topology) Head() (ComponentID, bool) {
	return t.head, t.head != None
}

// SetHead designates id as the chain head, clearing any previous head.
func (t *Topology) SetHead(id ComponentID) error {
	if !t.exists(id) {
		return &TopologyError{Op: "set head", ID: id, Err: ErrInvalidComponent}
	}
	if t.head != None {
		t.components[t.head].Head = false
	}
	t.components[id].Head = true
	t.head = id
	return nil
}

// ConfigureLayer stores params on the layer id and marks it configured.
// Reconfiguring overwrites the previous parameters.
func (t *Topology) ConfigureLayer(id ComponentID, params layer.Params) error {
	if !t.exists(id) || t.components[id].Layer == nil {
		return &TopologyError{Op: "configure", ID: id, Err: ErrInvalidComponent}
	}
	l := t.components[id].Layer
	if params == nil {
		return &TopologyError{Op: "configure", ID: id, Err: ErrInvalidParams}
	}
	if params.Kind() != l.Kind {
		return &TopologyError{
			Op:  "configure",
			ID:  id,
			Err: errors.Wrapf(ErrInvalidParams, "%s parameters for a %s layer", params.Kind(), l.Kind),
		}
	}
	if err := params.Validate(); err != nil {
		return &TopologyError{Op: "configure", ID: id, Err: errors.Wrap(ErrInvalidParams, err.Error())}
	}

	p := params.Clone()
	l.Params = p
	l.InputSize = p.InputSize()
	l.OutputSize = p.OutputSize()
	l.Configured = true
	return nil
}

// Link points from at to. It fails with ErrCycleDetected when to's chain
// already leads back to from; nothing is modified in that case.
func (t *Topology) Link(from, to ComponentID) error {
	if !t.exists(from) {
		return &TopologyError{Op: "link", ID: from, Err: ErrInvalidComponent}
	}
	if !t.exists(to) {
		return &TopologyError{Op: "link", ID: to, Err: ErrInvalidComponent}
	}
	// Chains are acyclic, so this walk visits each component at most once.
	for cur := to; cur != None; cur = t.components[cur].Next {
		if cur == from {
			return &TopologyError{Op: "link", ID: from, Err: ErrCycleDetected}
		}
	}
	t.components[from].Next = to
	return nil
}

// Unlink clears the successor of id.
func (t *Topology) Unlink(id ComponentID) error {
	if !t.exists(id) {
		return &TopologyError{Op: "unlink", ID: id, Err: ErrInvalidComponent}
	}
	t.components[id].Next = None
	return nil
}

// Chain returns the ids reachable from the head in link order.
func (t *Topology) Chain() []ComponentID {
	if t.head == None {
		return nil
	}
	var chain []ComponentID
	for cur := t.head; cur != None; cur = t.components[cur].Next {
		chain = append(chain, cur)
	}
	return chain
}

func (t *Topology) exists(id ComponentID) bool {
	return id >= 0 && int(id) < len(t.components)
}
