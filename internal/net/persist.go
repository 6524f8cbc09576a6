package net

import (
	"encoding/gob"
	"io"
	"os"

	"github.com/FlavioCFOliveira/mlgui/internal/activations"
	"github.com/FlavioCFOliveira/mlgui/internal/layer"
	"github.com/pkg/errors"
)

func init() {
	gob.Register(&layer.LinearConfig{})
	gob.Register(&layer.RNNConfig{})
	gob.Register(&layer.BatchNormConfig{})
	gob.Register(&layer.ConvConfig{})
	gob.Register(&layer.ConvTransposeConfig{})
}

// ComponentRecord is the serialized form of a component.
type ComponentRecord struct {
	IsLayer        bool
	LayerKind      layer.Kind
	Configured     bool
	Params         layer.Params
	ActivationKind activations.Kind
	Next           int
}

// Encode writes the topology to an io.Writer using gob encoding.
func (t *Topology) Encode(w io.Writer) error {
	encoder := gob.NewEncoder(w)

	if err := encoder.Encode(int32(len(t.components))); err != nil {
		return errors.Wrap(err, "failed to encode component count")
	}
	if err := encoder.Encode(int32(t.head)); err != nil {
		return errors.Wrap(err, "failed to encode head")
	}

	for _, c := range t.components {
		rec := ComponentRecord{Next: int(c.Next)}
		if c.Layer != nil {
			rec.IsLayer = true
			rec.LayerKind = c.Layer.Kind
			rec.Configured = c.Layer.Configured
			if c.Layer.Configured {
				rec.Params = c.Layer.Params
			}
		} else {
			rec.ActivationKind = c.Activation.Kind
		}
		if err := encoder.Encode(rec); err != nil {
			return errors.Wrapf(err, "failed to encode component %d", c.ID)
		}
	}
	return nil
}

// Decode reads a topology written by Encode. The topology is rebuilt through
// the regular mutators, so a corrupted stream cannot produce a cyclic chain.
func Decode(r io.Reader) (*Topology, error) {
	decoder := gob.NewDecoder(r)

	var count, head int32
	if err := decoder.Decode(&count); err != nil {
		return nil, errors.Wrap(err, "failed to decode component count")
	}
	if count < 0 {
		return nil, errors.Errorf("invalid component count %d", count)
	}
	if err := decoder.Decode(&head); err != nil {
		return nil, errors.Wrap(err, "failed to decode head")
	}

	t := New()
	// count is untrusted; the stream ends long before a bogus count is reached.
	var nexts []int
	for i := int32(0); i < count; i++ {
		var rec ComponentRecord
		if err := decoder.Decode(&rec); err != nil {
			return nil, errors.Wrapf(err, "failed to decode component %d", i)
		}
		if rec.IsLayer {
			if !rec.LayerKind.Valid() {
				return nil, errors.Errorf("component %d: invalid layer kind %d", i, int(rec.LayerKind))
			}
			id := t.AddLayer(rec.LayerKind)
			if rec.Configured {
				if err := t.ConfigureLayer(id, rec.Params); err != nil {
					return nil, err
				}
			}
		} else {
			if !rec.ActivationKind.Valid() {
				return nil, errors.Errorf("component %d: invalid activation kind %d", i, int(rec.ActivationKind))
			}
			t.AddActivation(rec.ActivationKind)
		}
		nexts = append(nexts, rec.Next)
	}

	for from, to := range nexts {
		if ComponentID(to) == None {
			continue
		}
		if err := t.Link(ComponentID(from), ComponentID(to)); err != nil {
			return nil, err
		}
	}
	if ComponentID(head) != None {
		if err := t.SetHead(ComponentID(head)); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// Save writes the topology to a file.
func (t *Topology) Save(filename string) error {
	f, err := os.Create(filename)
	if err != nil {
		return errors.Wrap(err, "failed to create file")
	}
	if err := t.Encode(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// Load reads a topology from a file written by Save.
func Load(filename string) (*Topology, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open file")
	}
	defer f.Close()
	return Decode(f)
}
