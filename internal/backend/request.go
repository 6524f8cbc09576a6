// Package backend hands validated builds to a training backend. The editor
// never trains anything itself: a Backend receives a Request holding the
// network plan and the training settings and takes it from there.
package backend

import (
	"context"
	"time"

	"github.com/FlavioCFOliveira/mlgui/internal/config"
	"github.com/FlavioCFOliveira/mlgui/internal/loss"
	"github.com/FlavioCFOliveira/mlgui/internal/net"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// Backend receives build requests.
type Backend interface {
	Build(ctx context.Context, req *Request) error
}

// Request is a single build handed to a backend.
type Request struct {
	ID        uuid.UUID `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	Plan      *net.Plan `json:"plan"`
	Config    Config    `json:"config"`
}

// Config is the wire form of a training configuration.
type Config struct {
	SavePath     string   `json:"save_path"`
	Device       string   `json:"device"`
	Optimizer    string   `json:"optimizer"`
	Loss         LossSpec `json:"loss"`
	LearningRate float64  `json:"learning_rate"`
	BatchSize    int64    `json:"batch_size"`
	Epochs       int      `json:"epochs"`
}

// LossSpec names the loss function and carries its options.
type LossSpec struct {
	Kind    string    `json:"kind"`
	Options loss.Spec `json:"options"`
}

// NewRequest snapshots t and cfg. Callers are expected to have validated the
// build first; an incomplete configuration is reported as an error.
func NewRequest(t *net.Topology, cfg *config.Training) (*Request, error) {
	snap, err := cfg.Snapshot()
	if err != nil {
		return nil, errors.Wrap(err, "failed to snapshot training config")
	}
	plan, err := net.NewPlan(t)
	if err != nil {
		return nil, errors.Wrap(err, "failed to plan network")
	}
	return &Request{
		ID:        uuid.New(),
		CreatedAt: time.Now().UTC(),
		Plan:      plan,
		Config: Config{
			SavePath:     snap.SavePath,
			Device:       snap.Device.String(),
			Optimizer:    snap.Optimizer.String(),
			Loss:         LossSpec{Kind: snap.Loss.Kind().String(), Options: snap.Loss},
			LearningRate: snap.LearningRate,
			BatchSize:    snap.BatchSize,
			Epochs:       snap.Epochs,
		},
	}, nil
}

// Discard accepts every request.
type Discard struct{}

func (Discard) Build(ctx context.Context, req *Request) error {
	return ctx.Err()
}
