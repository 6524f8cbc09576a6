package shell

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/FlavioCFOliveira/mlgui/internal/backend"
	"github.com/FlavioCFOliveira/mlgui/internal/config"
	"github.com/FlavioCFOliveira/mlgui/internal/editor"
	"github.com/FlavioCFOliveira/mlgui/internal/settings"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingBackend struct{ builds int }

func (b *countingBackend) Build(ctx context.Context, req *backend.Request) error {
	b.builds++
	return nil
}

func run(t *testing.T, ed *editor.Editor, script string) string {
	t.Helper()
	var out bytes.Buffer
	require.NoError(t, Run(context.Background(), strings.NewReader(script), &out, ed))
	return out.String()
}

func newEditor(b backend.Backend) *editor.Editor {
	cfg := config.New(settings.Defaults()).WithProber(func() bool { return false })
	return editor.New(cfg, b)
}

func TestRunBuildScript(t *testing.T) {
	b := &countingBackend{}
	ed := newEditor(b)

	out := run(t, ed, `
# a small classifier
layer linear
activation leaky relu
layer Linear
link 0 1
link 1 2
head 0
configure 0 in=4 out=8
configure 2 in=8 out=3
set save_path models/iris
set device cpu
set optimizer adam
set lr 0.02
loss crossentropy reduction=mean smoothing=0.1
ready
validate
build
`)

	assert.Contains(t, out, "added Linear as component 0")
	assert.Contains(t, out, "added Leaky ReLU as component 1")
	assert.Contains(t, out, "ready\n")
	assert.Contains(t, out, "ok\n")
	assert.Contains(t, out, "build ")
	assert.NotContains(t, out, "error:")
	assert.Equal(t, 1, b.builds)
	assert.Equal(t, 0.02, ed.Training().LearningRate)
}

func TestRunErrorsContinue(t *testing.T) {
	b := &countingBackend{}
	ed := newEditor(b)

	out := run(t, ed, `
layer linear
layer linear
link 0 1
link 1 0
head 9
set learning_rate -1
set device mps
configure 0 in
frobnicate
link 0
ready
validate
build
activation relu
`)

	assert.Contains(t, out, "error: link component 1: cycle detected")
	assert.Contains(t, out, "error: set head component 9: invalid component")
	assert.Contains(t, out, `error: invalid learning_rate "-1"`)
	assert.Contains(t, out, "error: MPS: device not available")
	assert.Contains(t, out, `error: expected key=value, got "in"`)
	assert.Contains(t, out, `error: unknown command "frobnicate"`)
	assert.Contains(t, out, "usage: link <from> <to>")
	assert.Contains(t, out, "not ready: unconfigured layers 0, 1")
	assert.Contains(t, out, "- missing save_path")
	assert.Contains(t, out, "- layer 1 is not configured")
	assert.Contains(t, out, "error: build rejected")
	assert.Contains(t, out, "added ReLU as component 2")
	assert.Zero(t, b.builds)
}

func TestRunQuit(t *testing.T) {
	ed := newEditor(nil)
	run(t, ed, "layer gru\nquit\nlayer gru\n")
	assert.Equal(t, 1, ed.Topology().Len())
}

func TestRunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := Run(ctx, strings.NewReader("layer linear\n"), &bytes.Buffer{}, newEditor(nil))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestShowAndCatalog(t *testing.T) {
	ed := newEditor(nil)
	out := run(t, ed, "layer conv1d\nhead 0\nloss nll\nshow\ncatalog\nhelp\n")

	assert.Contains(t, out, "* Conv1D_0")
	assert.Contains(t, out, "save_path:     <unset>")
	assert.Contains(t, out, "loss:          NLL")
	assert.Contains(t, out, "batch_size:    20")
	assert.Contains(t, out, "ConvTranspose3D")
	assert.Contains(t, out, "RMSprop")
	assert.Contains(t, out, "VULKAN")
	assert.Contains(t, out, "configure <id> key=value...")
}

func TestSaveOpen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "net.gob")
	run(t, newEditor(nil), "layer lstm\nactivation tanh\nlink 0 1\nsave "+path+"\n")

	ed := newEditor(nil)
	out := run(t, ed, "open "+path+"\n")
	assert.Contains(t, out, "opened 2 components")
	assert.Equal(t, 2, ed.Topology().Len())
}
