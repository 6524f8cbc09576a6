package editor

import (
	"bytes"
	"context"
	"encoding/csv"
	"log"
	"os"
	"path/filepath"
	"testing"

	"github.com/FlavioCFOliveira/mlgui/internal/backend"
	"github.com/FlavioCFOliveira/mlgui/internal/config"
	"github.com/FlavioCFOliveira/mlgui/internal/layer"
	"github.com/FlavioCFOliveira/mlgui/internal/loss"
	"github.com/FlavioCFOliveira/mlgui/internal/net"
	"github.com/FlavioCFOliveira/mlgui/internal/settings"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingBackend counts builds and optionally fails them.
type recordingBackend struct {
	requests []*backend.Request
	err      error
}

func (b *recordingBackend) Build(ctx context.Context, req *backend.Request) error {
	b.requests = append(b.requests, req)
	return b.err
}

// recordingHook keeps every callback it receives.
type recordingHook struct {
	BaseHook
	ops    []string
	errs   []error
	begins int
	ends   []error
}

func (h *recordingHook) OnEvent(ev Event, res Result, err error) {
	h.ops = append(h.ops, ev.Op())
	h.errs = append(h.errs, err)
}

func (h *recordingHook) OnBuildBegin(e *Editor) { h.begins++ }

func (h *recordingHook) OnBuildEnd(req *backend.Request, err error) {
	h.ends = append(h.ends, err)
}

func newEditor(b backend.Backend, hooks ...Hook) *Editor {
	cfg := config.New(settings.Defaults()).WithProber(func() bool { return false })
	return New(cfg, b, hooks...)
}

func mustDispatch(t *testing.T, e *Editor, ev Event) Result {
	t.Helper()
	res, err := e.Dispatch(context.Background(), ev)
	require.NoError(t, err, ev.Op())
	return res
}

// buildable dispatches a complete Linear -> ReLU session.
func buildable(t *testing.T, e *Editor, savePath string) {
	t.Helper()
	lin := mustDispatch(t, e, AddLayer{Name: "linear"}).ID
	relu := mustDispatch(t, e, AddActivation{Name: "relu"}).ID
	mustDispatch(t, e, Configure{ID: lin, Values: map[string]string{"in": "4", "out": "3"}})
	mustDispatch(t, e, Link{From: lin, To: relu})
	mustDispatch(t, e, SetHead{ID: lin})
	mustDispatch(t, e, SetField{Field: "save_path", Value: savePath})
	mustDispatch(t, e, SetField{Field: "device", Value: "cpu"})
	mustDispatch(t, e, SetField{Field: "optimizer", Value: "adam"})
	mustDispatch(t, e, SetLoss{Kind: "MSE", Form: loss.Form{Reduction: "mean"}})
}

func TestDispatchAdds(t *testing.T) {
	e := newEditor(nil)

	assert.Equal(t, net.ComponentID(0), mustDispatch(t, e, AddLayer{Name: "Conv2D"}).ID)
	assert.Equal(t, net.ComponentID(1), mustDispatch(t, e, AddActivation{Name: "leaky relu"}).ID)
	assert.Equal(t, 2, e.Topology().Len())

	res, err := e.Dispatch(context.Background(), AddLayer{Name: "Transformer"})
	assert.True(t, errors.Is(err, layer.ErrUnknownKind))
	assert.Equal(t, net.None, res.ID)
	assert.Equal(t, 2, e.Topology().Len())
}

func TestDispatchErrorsKeepSession(t *testing.T) {
	hook := &recordingHook{}
	e := newEditor(nil, hook)
	a := mustDispatch(t, e, AddLayer{Name: "linear"}).ID
	b := mustDispatch(t, e, AddLayer{Name: "linear"}).ID
	mustDispatch(t, e, Link{From: a, To: b})

	_, err := e.Dispatch(context.Background(), Link{From: b, To: a})
	assert.True(t, errors.Is(err, net.ErrCycleDetected))
	_, err = e.Dispatch(context.Background(), SetHead{ID: 42})
	assert.True(t, errors.Is(err, net.ErrInvalidComponent))
	_, err = e.Dispatch(context.Background(), SetField{Field: "learning_rate", Value: "-1"})
	assert.True(t, errors.Is(err, config.ErrParse))

	// The session keeps accepting events.
	assert.Equal(t, net.ComponentID(2), mustDispatch(t, e, AddActivation{Name: "tanh"}).ID)

	assert.Equal(t, []string{"add layer", "add layer", "link", "link", "set head", "set", "add activation"}, hook.ops)
	assert.Error(t, hook.errs[3])
	assert.NoError(t, hook.errs[6])
}

func TestDispatchConfigure(t *testing.T) {
	e := newEditor(nil)
	id := mustDispatch(t, e, AddLayer{Name: "lstm"}).ID
	act := mustDispatch(t, e, AddActivation{Name: "relu"}).ID

	_, err := e.Dispatch(context.Background(), Configure{ID: id, Values: map[string]string{"input_size": "8"}})
	assert.True(t, errors.Is(err, net.ErrInvalidParams), "hidden size is still zero")
	assert.False(t, e.Ready())

	mustDispatch(t, e, Configure{ID: id, Values: map[string]string{"input_size": "8", "hidden_size": "16"}})
	assert.True(t, e.Ready())

	// Later submissions only override the keys they carry.
	mustDispatch(t, e, Configure{ID: id, Values: map[string]string{"bidirectional": "true"}})
	c, _ := e.Topology().Component(id)
	assert.Equal(t, int64(8), c.Layer.InputSize)
	assert.Equal(t, int64(32), c.Layer.OutputSize)

	_, err = e.Dispatch(context.Background(), Configure{ID: id, Values: map[string]string{"colour": "red"}})
	assert.True(t, errors.Is(err, layer.ErrUnknownParam))
	_, err = e.Dispatch(context.Background(), Configure{ID: act, Values: map[string]string{"in": "1"}})
	assert.True(t, errors.Is(err, net.ErrInvalidComponent))
}

func TestDispatchLoss(t *testing.T) {
	e := newEditor(nil)

	_, err := e.Dispatch(context.Background(), SetLoss{Kind: "huber"})
	assert.True(t, errors.Is(err, loss.ErrUnknownReduction))
	assert.Nil(t, e.Training().Loss)

	mustDispatch(t, e, SetLoss{Kind: "huber", Form: loss.Form{Reduction: "sum", Delta: "0.5"}})
	assert.Equal(t, loss.KindHuber, e.Training().Loss.Kind())

	_, err = e.Dispatch(context.Background(), SetLoss{Kind: "hinge"})
	assert.True(t, errors.Is(err, loss.ErrUnknownKind))
}

type unknownEvent struct{}

func (unknownEvent) Op() string { return "unknown" }

func TestDispatchUnknownEvent(t *testing.T) {
	_, err := newEditor(nil).Dispatch(context.Background(), unknownEvent{})
	assert.True(t, errors.Is(err, ErrUnknownEvent))
}

func TestBuildRejectedBeforeBackend(t *testing.T) {
	b := &recordingBackend{}
	hook := &recordingHook{}
	e := newEditor(b, hook)
	lin := mustDispatch(t, e, AddLayer{Name: "linear"}).ID
	mustDispatch(t, e, AddActivation{Name: "relu"})

	res, err := e.Dispatch(context.Background(), Build{})
	require.Error(t, err)
	assert.Nil(t, res.Request)
	assert.Empty(t, b.requests)

	var errs net.BuildErrors
	require.True(t, errors.As(err, &errs))
	assert.Len(t, errs, 5)
	assert.Equal(t, []net.ComponentID{lin}, errs.UnconfiguredLayers())

	assert.Equal(t, 1, hook.begins)
	require.Len(t, hook.ends, 1)
	assert.Error(t, hook.ends[0])
}

func TestBuildCallsBackendOnce(t *testing.T) {
	b := &recordingBackend{}
	e := newEditor(b)
	buildable(t, e, "models/net")

	res := mustDispatch(t, e, Build{})
	require.Len(t, b.requests, 1)
	assert.Same(t, b.requests[0], res.Request)
	assert.Equal(t, "models/net.pt", res.Request.Config.SavePath)
	assert.Equal(t, "Adam", res.Request.Config.Optimizer)
	assert.Len(t, res.Request.Plan.Chain(), 2)
}

func TestBuildBackendFailure(t *testing.T) {
	b := &recordingBackend{err: backend.ErrRejected}
	e := newEditor(b)
	buildable(t, e, "model")

	req, err := e.Build(context.Background())
	assert.True(t, errors.Is(err, backend.ErrRejected))
	assert.NotNil(t, req)
	assert.Len(t, b.requests, 1)
}

func TestSaveOpen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.gob")
	e := newEditor(nil)
	buildable(t, e, "model")
	require.NoError(t, e.Save(path))

	other := newEditor(nil)
	require.NoError(t, other.Open(path))
	assert.Equal(t, e.Topology().Components(), other.Topology().Components())
	assert.True(t, other.Ready())

	assert.Error(t, other.Open(filepath.Join(t.TempDir(), "missing.gob")))
	assert.Equal(t, 2, other.Topology().Len(), "failed open keeps the topology")
}

func TestLogHook(t *testing.T) {
	var buf bytes.Buffer
	e := newEditor(nil, NewLogHook(log.New(&buf, "", 0), false))

	mustDispatch(t, e, AddLayer{Name: "linear"})
	assert.Empty(t, buf.String())

	e.Dispatch(context.Background(), Link{From: 0, To: 0})
	assert.Contains(t, buf.String(), "link: ")
	assert.Contains(t, buf.String(), "cycle detected")

	buf.Reset()
	e.Build(context.Background())
	assert.Contains(t, buf.String(), "build failed")

	verbose := newEditor(nil, NewLogHook(log.New(&buf, "", 0), true))
	buf.Reset()
	buildable(t, verbose, "model")
	_, err := verbose.Build(context.Background())
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "add layer: component 0")
	assert.Contains(t, buf.String(), "set: ok")
	assert.Contains(t, buf.String(), "save path model.pt")
}

func TestCSVHook(t *testing.T) {
	path := filepath.Join(t.TempDir(), "builds.csv")
	require.NoError(t, os.WriteFile(path, []byte("stale\n"), 0644))

	e := newEditor(&recordingBackend{}, NewCSVHook(path, false))
	e.Build(context.Background())
	buildable(t, e, "model")
	req, err := e.Build(context.Background())
	require.NoError(t, err)

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)

	require.Len(t, rows, 3)
	assert.Equal(t, []string{"time", "request_id", "status", "components", "duration_ms", "error"}, rows[0])
	assert.Equal(t, StatusInvalid, rows[1][2])
	assert.Empty(t, rows[1][1])
	assert.Contains(t, rows[1][5], "missing save_path")
	assert.Equal(t, req.ID.String(), rows[2][1])
	assert.Equal(t, StatusOK, rows[2][2])
	assert.Equal(t, "2", rows[2][3])
}
