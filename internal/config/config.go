// Package config holds the training configuration assembled from the
// configuration panel. Every setter validates its input and leaves the field
// untouched when the input is rejected.
package config

import (
	"fmt"
	"math"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/FlavioCFOliveira/mlgui/internal/loss"
	"github.com/FlavioCFOliveira/mlgui/internal/opt"
	"github.com/FlavioCFOliveira/mlgui/internal/settings"
	"github.com/pkg/errors"
)

// Names of the required fields, as reported by Missing.
const (
	FieldSavePath     = "save_path"
	FieldDevice       = "device"
	FieldOptimizer    = "optimizer"
	FieldLoss         = "loss"
	FieldLearningRate = "learning_rate"
	FieldBatchSize    = "batch_size"
	FieldEpochs       = "epochs"
)

// ErrParse is wrapped by every ParseError.
var ErrParse = errors.New("parse error")

// ParseError reports a rejected panel entry.
type ParseError struct {
	Field  string
	Input  string
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("invalid %s %q: %s", e.Field, e.Input, e.Reason)
}

func (e *ParseError) Unwrap() error { return ErrParse }

// Training is the training configuration. The pointer fields and Loss are
// unset until the user picks a value; they must all be set before a build.
type Training struct {
	SavePath  *string
	Device    *Device
	Optimizer *opt.Kind
	Loss      loss.Spec

	LearningRate float64
	BatchSize    int64
	Epochs       int

	ext   string
	probe Prober
}

// New creates a configuration seeded with the numeric defaults from s. MPS
// availability is checked with MetalProber.
func New(s settings.Settings) *Training {
	return &Training{
		LearningRate: s.LearningRate,
		BatchSize:    s.BatchSize,
		Epochs:       s.Epochs,
		ext:          strings.TrimPrefix(s.ModelExtension, "."),
		probe:        MetalProber,
	}
}

// WithProber replaces the MPS availability check.
func (c *Training) WithProber(p Prober) *Training {
	c.probe = p
	return c
}

// ModelExtension returns the extension enforced on save paths, without the dot.
func (c *Training) ModelExtension() string {
	if c.ext == "" {
		return settings.DefaultModelExtension
	}
	return c.ext
}

// SetLearningRate parses a positive float.
func (c *Training) SetLearningRate(s string) error {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || v <= 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return &ParseError{Field: FieldLearningRate, Input: s, Reason: "must be a positive number"}
	}
	c.LearningRate = v
	return nil
}

// SetBatchSize parses a positive integer.
func (c *Training) SetBatchSize(s string) error {
	v, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || v <= 0 {
		return &ParseError{Field: FieldBatchSize, Input: s, Reason: "must be a positive integer"}
	}
	c.BatchSize = v
	return nil
}

// SetEpochs parses a positive integer.
func (c *Training) SetEpochs(s string) error {
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || v <= 0 {
		return &ParseError{Field: FieldEpochs, Input: s, Reason: "must be a positive integer"}
	}
	c.Epochs = v
	return nil
}

// SetSavePath stores p with its extension replaced by the model extension.
func (c *Training) SetSavePath(p string) error {
	p = strings.TrimSpace(p)
	if p == "" || strings.HasSuffix(p, "/") || strings.HasSuffix(p, string(filepath.Separator)) {
		return &ParseError{Field: FieldSavePath, Input: p, Reason: "must name a file"}
	}
	normalized := NormalizeSavePath(p, c.ModelExtension())
	c.SavePath = &normalized
	return nil
}

// NormalizeSavePath replaces the extension of p with ext.
func NormalizeSavePath(p, ext string) string {
	ext = "." + strings.TrimPrefix(ext, ".")
	p = filepath.Clean(p)
	return strings.TrimSuffix(p, filepath.Ext(p)) + ext
}

// SetDevice selects d, probing for MPS support first.
func (c *Training) SetDevice(d Device) error {
	if d < 0 || int(d) >= len(deviceNames) {
		return errors.Errorf("unknown device %d", int(d))
	}
	if d == MPS && (c.probe == nil || !c.probe()) {
		return errors.Wrap(ErrDeviceUnavailable, "MPS")
	}
	c.Device = &d
	return nil
}

// SetOptimizer selects k.
func (c *Training) SetOptimizer(k opt.Kind) error {
	if !k.Valid() {
		return errors.Wrapf(opt.ErrUnknownKind, "kind %d", int(k))
	}
	c.Optimizer = &k
	return nil
}

// SetLoss selects a configured loss function.
func (c *Training) SetLoss(s loss.Spec) error {
	if s == nil {
		return errors.New("loss must not be nil")
	}
	c.Loss = s
	return nil
}

// Set assigns a field from its textual form. Field names follow the panel
// labels; short aliases are accepted.
func (c *Training) Set(field, value string) error {
	switch strings.ToLower(strings.TrimSpace(field)) {
	case FieldLearningRate, "lr":
		return c.SetLearningRate(value)
	case FieldBatchSize, "batch":
		return c.SetBatchSize(value)
	case FieldEpochs:
		return c.SetEpochs(value)
	case FieldSavePath, "path":
		return c.SetSavePath(value)
	case FieldDevice:
		d, err := ParseDevice(value)
		if err != nil {
			return err
		}
		return c.SetDevice(d)
	case FieldOptimizer, "opt":
		k, err := opt.ParseKind(value)
		if err != nil {
			return err
		}
		return c.SetOptimizer(k)
	}
	return errors.Errorf("unknown field %q", field)
}

// Missing lists the required fields that are still unset.
func (c *Training) Missing() []string {
	var missing []string
	if c.SavePath == nil {
		missing = append(missing, FieldSavePath)
	}
	if c.Device == nil {
		missing = append(missing, FieldDevice)
	}
	if c.Optimizer == nil {
		missing = append(missing, FieldOptimizer)
	}
	if c.Loss == nil {
		missing = append(missing, FieldLoss)
	}
	return missing
}

// Snapshot is a complete, immutable copy of a Training configuration.
type Snapshot struct {
	SavePath     string    `json:"save_path"`
	Device       Device    `json:"device"`
	Optimizer    opt.Kind  `json:"optimizer"`
	Loss         loss.Spec `json:"loss"`
	LearningRate float64   `json:"learning_rate"`
	BatchSize    int64     `json:"batch_size"`
	Epochs       int       `json:"epochs"`
}

// Snapshot copies the configuration. It fails when a required field is unset.
func (c *Training) Snapshot() (Snapshot, error) {
	if missing := c.Missing(); len(missing) > 0 {
		return Snapshot{}, errors.Errorf("missing %s", strings.Join(missing, ", "))
	}
	return Snapshot{
		SavePath:     *c.SavePath,
		Device:       *c.Device,
		Optimizer:    *c.Optimizer,
		Loss:         c.Loss,
		LearningRate: c.LearningRate,
		BatchSize:    c.BatchSize,
		Epochs:       c.Epochs,
	}, nil
}
