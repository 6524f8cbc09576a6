package net

import (
	"bytes"
	"testing"

	"github.com/FlavioCFOliveira/mlgui/internal/activations"
	"github.com/FlavioCFOliveira/mlgui/internal/layer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPlan(t *testing.T) {
	top := sampleTopology(t)

	p, err := NewPlan(top)
	require.NoError(t, err)
	assert.Equal(t, ComponentID(0), p.Head)
	require.Len(t, p.Stages, 4)
	assert.Equal(t, 1, p.Detached)

	chain := p.Chain()
	require.Len(t, chain, 3)
	assert.Equal(t, "Conv2D", chain[0].Name)
	assert.True(t, chain[0].Layer)
	assert.True(t, chain[0].Configured)
	assert.Equal(t, int64(3), chain[0].InputSize)
	assert.Equal(t, int64(16), chain[0].OutputSize)
	assert.Equal(t, "ReLU", chain[1].Name)
	assert.False(t, chain[1].Layer)
	assert.False(t, chain[2].Configured)
	assert.Equal(t, "Softmax", p.Stages[3].Name)
}

func TestPlanIsSnapshot(t *testing.T) {
	top := New()
	id := top.AddLayer(layer.Linear)
	require.NoError(t, top.ConfigureLayer(id, linearParams(t, "2", "4")))

	p, err := NewPlan(top)
	require.NoError(t, err)

	require.NoError(t, top.ConfigureLayer(id, linearParams(t, "8", "8")))
	top.AddActivation(activations.Tanh)

	assert.Len(t, p.Stages, 1)
	assert.Equal(t, int64(2), p.Stages[0].Params.InputSize())
}

func TestPlanSummary(t *testing.T) {
	p, err := NewPlan(sampleTopology(t))
	require.NoError(t, err)

	var buf bytes.Buffer
	p.Summary(&buf)
	out := buf.String()

	assert.Contains(t, out, "* Conv2D_0")
	assert.Contains(t, out, "(3) -> (16)")
	assert.Contains(t, out, "unconfigured")
	assert.Contains(t, out, "detached")
	assert.Contains(t, out, "Total components: 4 (layers: 2)")
}
