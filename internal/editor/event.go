package editor

import (
	"github.com/FlavioCFOliveira/mlgui/internal/backend"
	"github.com/FlavioCFOliveira/mlgui/internal/loss"
	"github.com/FlavioCFOliveira/mlgui/internal/net"
)

// Event is a single user action forwarded by the shell.
type Event interface {
	// Op names the action for logs and journals.
	Op() string
}

// AddLayer places a new, unconfigured layer. Name is a layer kind.
type AddLayer struct{ Name string }

// AddActivation places a new activation function. Name is an activation kind.
type AddActivation struct{ Name string }

// SetHead marks a component as the first of the chain.
type SetHead struct{ ID net.ComponentID }

// Link connects From to To.
type Link struct{ From, To net.ComponentID }

// Unlink detaches the successor of a component.
type Unlink struct{ ID net.ComponentID }

// Configure submits layer parameters as key=value pairs. Keys that are not
// given keep their current value.
type Configure struct {
	ID     net.ComponentID
	Values map[string]string
}

// SetField assigns one training setting from its textual form.
type SetField struct{ Field, Value string }

// SetLoss selects and configures the loss function.
type SetLoss struct {
	Kind string
	Form loss.Form
}

// Build validates the session and hands it to the backend.
type Build struct{}

func (AddLayer) Op() string      { return "add layer" }
func (AddActivation) Op() string { return "add activation" }
func (SetHead) Op() string       { return "set head" }
func (Link) Op() string          { return "link" }
func (Unlink) Op() string        { return "unlink" }
func (Configure) Op() string     { return "configure" }
func (SetField) Op() string      { return "set" }
func (SetLoss) Op() string       { return "loss" }
func (Build) Op() string         { return "build" }

// Result is the outcome of a dispatched event.
type Result struct {
	// ID is the component created or addressed by the event, or net.None.
	ID net.ComponentID
	// Request is the request handed to the backend by a Build event.
	Request *backend.Request
}
