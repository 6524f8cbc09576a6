package backend

import (
	"context"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/pkg/errors"
)

// ErrRejected is returned when the remote backend refuses a build.
var ErrRejected = errors.New("build rejected by backend")

// RemoteError carries the message sent by the remote backend.
type RemoteError struct {
	Message string
}

func (e *RemoteError) Error() string { return ErrRejected.Error() + ": " + e.Message }

func (e *RemoteError) Unwrap() error { return ErrRejected }

type buildMessage struct {
	Type    string   `json:"type"`
	Request *Request `json:"request"`
}

type reply struct {
	Type    string `json:"type"`
	ID      string `json:"id,omitempty"`
	Message string `json:"message,omitempty"`
}

// Remote sends requests over a websocket connection and waits for the
// backend to acknowledge each one. Builds are serialized.
type Remote struct {
	mu     sync.Mutex
	conn   *websocket.Conn
	broken error
}

// Dial connects to a backend listening at url.
func Dial(ctx context.Context, url string) (*Remote, error) {
	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if resp != nil {
		resp.Body.Close()
	}
	if err != nil {
		return nil, errors.Wrapf(err, "failed to connect to backend %s", url)
	}
	return &Remote{conn: conn}, nil
}

// Build sends req and blocks until the backend replies or ctx is done. A
// cancelled build leaves the connection unusable.
func (r *Remote) Build(ctx context.Context, req *Request) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.broken != nil {
		return r.broken
	}

	deadline, _ := ctx.Deadline()
	r.conn.SetWriteDeadline(deadline)
	r.conn.SetReadDeadline(deadline)

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			r.conn.SetReadDeadline(time.Now())
		case <-done:
		}
	}()

	if err := r.conn.WriteJSON(buildMessage{Type: "build", Request: req}); err != nil {
		return r.fail(ctx, errors.Wrap(err, "failed to send build request"))
	}

	var resp reply
	if err := r.conn.ReadJSON(&resp); err != nil {
		return r.fail(ctx, errors.Wrap(err, "failed to read backend reply"))
	}

	switch resp.Type {
	case "ack":
		if resp.ID != "" && resp.ID != req.ID.String() {
			return r.fail(ctx, errors.Errorf("backend acknowledged %s, expected %s", resp.ID, req.ID))
		}
		return nil
	case "error":
		return &RemoteError{Message: resp.Message}
	default:
		return r.fail(ctx, errors.Errorf("unexpected backend reply %q", resp.Type))
	}
}

func (r *Remote) fail(ctx context.Context, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		err = errors.Wrap(ctxErr, "build interrupted")
	} else if d, ok := ctx.Deadline(); ok && !time.Now().Before(d) {
		err = errors.Wrap(context.DeadlineExceeded, "build interrupted")
	}
	r.broken = errors.Wrap(err, "connection unusable")
	return err
}

// Close closes the connection.
func (r *Remote) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.broken == nil {
		r.broken = errors.New("connection closed")
	}
	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
	r.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
	return r.conn.Close()
}
