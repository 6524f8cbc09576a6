package net

import (
	"fmt"
	"strings"

	"github.com/FlavioCFOliveira/mlgui/internal/layer"
	"github.com/pkg/errors"
)

var (
	// ErrInvalidComponent is returned when an id does not exist or names the
	// wrong kind of component for the operation.
	ErrInvalidComponent = errors.New("invalid component")
	// ErrCycleDetected is returned when a link would close a loop in the chain.
	ErrCycleDetected = errors.New("cycle detected")
	// ErrInvalidParams is returned when layer parameters are rejected.
	ErrInvalidParams = layer.ErrInvalidParams
)

// TopologyError records a failed topology mutation.
type TopologyError struct {
	Op  string
	ID  ComponentID
	Err error
}

func (e *TopologyError) Error() string {
	return fmt.Sprintf("%s component %d: %v", e.Op, e.ID, e.Err)
}

func (e *TopologyError) Unwrap() error { return e.Err }

// BuildErrorKind classifies a build precondition failure.
type BuildErrorKind int

const (
	// MissingField means a required training setting is unset.
	MissingField BuildErrorKind = iota
	// UnconfiguredLayer means a layer still has its default parameters.
	UnconfiguredLayer
)

// BuildError is a single unmet build precondition.
type BuildError struct {
	Kind  BuildErrorKind
	Field string
	ID    ComponentID
}

// NewMissingField reports an unset training field.
func NewMissingField(name string) BuildError {
	return BuildError{Kind: MissingField, Field: name, ID: None}
}

// NewUnconfiguredLayer reports a layer that has not been configured.
func NewUnconfiguredLayer(id ComponentID) BuildError {
	return BuildError{Kind: UnconfiguredLayer, ID: id}
}

func (e BuildError) Error() string {
	if e.Kind == UnconfiguredLayer {
		return fmt.Sprintf("layer %d is not configured", e.ID)
	}
	return fmt.Sprintf("missing %s", e.Field)
}

// BuildErrors collects every unmet precondition found by ValidateBuild.
type BuildErrors []BuildError

func (e BuildErrors) Error() string {
	msgs := make([]string, len(e))
	for i, be := range e {
		msgs[i] = be.Error()
	}
	return "build rejected: " + strings.Join(msgs, "; ")
}

// UnconfiguredLayers returns the ids of the unconfigured layers in e.
func (e BuildErrors) UnconfiguredLayers() []ComponentID {
	var ids []ComponentID
	for _, be := range e {
		if be.Kind == UnconfiguredLayer {
			ids = append(ids, be.ID)
		}
	}
	return ids
}
