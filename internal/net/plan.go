package net

import (
	"fmt"
	"io"

	"github.com/FlavioCFOliveira/mlgui/internal/layer"
)

// Stage is one component of a build plan.
type Stage struct {
	ID         ComponentID  `json:"id"`
	Name       string       `json:"name"`
	Layer      bool         `json:"layer"`
	Configured bool         `json:"configured"`
	Params     layer.Params `json:"params,omitempty"`
	InputSize  int64        `json:"input_size,omitempty"`
	OutputSize int64        `json:"output_size,omitempty"`
	Next       ComponentID  `json:"next"`
}

// Plan is an immutable snapshot of a topology handed to the training backend.
// Stages on the head chain come first, in link order.
type Plan struct {
	Head     ComponentID `json:"head"`
	Stages   []Stage     `json:"stages"`
	Detached int         `json:"detached"`
}

// NewPlan snapshots t.
func NewPlan(t *Topology) (*Plan, error) {
	order, err := t.Order()
	if err != nil {
		return nil, err
	}

	p := &Plan{
		Head:     t.head,
		Stages:   make([]Stage, 0, len(order)),
		Detached: len(t.Detached()),
	}
	for _, id := range order {
		c := t.components[id]
		s := Stage{ID: c.ID, Name: c.Name(), Configured: c.Configured(), Next: c.Next}
		if c.Layer != nil {
			s.Layer = true
			s.InputSize = c.Layer.InputSize
			s.OutputSize = c.Layer.OutputSize
			if c.Layer.Params != nil {
				s.Params = c.Layer.Params.Clone()
			}
		}
		p.Stages = append(p.Stages, s)
	}
	return p, nil
}

// Chain returns the stages reachable from the head.
func (p *Plan) Chain() []Stage {
	return p.Stages[:len(p.Stages)-p.Detached]
}

// Summary prints a summary of the planned architecture.
func (p *Plan) Summary(w io.Writer) {
	fmt.Fprintln(w, "Model: Sequential")
	fmt.Fprintln(w, "_________________________________________________________________")
	fmt.Fprintf(w, "%-25s %-20s %-10s\n", "Component (type)", "Shape (in -> out)", "Status")
	fmt.Fprintln(w, "=================================================================")

	layers := 0
	for i, s := range p.Stages {
		if i == len(p.Stages)-p.Detached && p.Detached > 0 {
			fmt.Fprintln(w, "----------------------------- detached --------------------------")
		}
		name := fmt.Sprintf("%s_%d", s.Name, s.ID)
		if s.ID == p.Head {
			name = "* " + name
		}
		shape := "-"
		status := "ok"
		if s.Layer {
			layers++
			shape = fmt.Sprintf("(%d) -> (%d)", s.InputSize, s.OutputSize)
			if !s.Configured {
				shape = "?"
				status = "unconfigured"
			}
		}
		fmt.Fprintf(w, "%-25s %-20s %-10s\n", name, shape, status)
	}
	fmt.Fprintln(w, "=================================================================")
	fmt.Fprintf(w, "Total components: %d (layers: %d)\n", len(p.Stages), layers)
	fmt.Fprintln(w, "_________________________________________________________________")
}
