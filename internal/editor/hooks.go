package editor

import (
	"encoding/csv"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/FlavioCFOliveira/mlgui/internal/backend"
	"github.com/FlavioCFOliveira/mlgui/internal/net"
	"github.com/pkg/errors"
)

// Hook observes a session.
type Hook interface {
	OnEvent(ev Event, res Result, err error)
	OnBuildBegin(e *Editor)
	OnBuildEnd(req *backend.Request, err error)
}

// BaseHook provides default empty implementations for Hook.
type BaseHook struct{}

func (BaseHook) OnEvent(ev Event, res Result, err error)    {}
func (BaseHook) OnBuildBegin(e *Editor)                     {}
func (BaseHook) OnBuildEnd(req *backend.Request, err error) {}

// LogHook writes failed events and build outcomes to a logger.
type LogHook struct {
	BaseHook
	Logger *log.Logger
	// Verbose also logs successful events.
	Verbose bool
}

// NewLogHook creates a LogHook. A nil logger uses the standard logger.
func NewLogHook(l *log.Logger, verbose bool) *LogHook {
	if l == nil {
		l = log.Default()
	}
	return &LogHook{Logger: l, Verbose: verbose}
}

func (h *LogHook) OnEvent(ev Event, res Result, err error) {
	switch {
	case err != nil:
		h.Logger.Printf("%s: %v", ev.Op(), err)
	case h.Verbose && res.ID != net.None:
		h.Logger.Printf("%s: component %d", ev.Op(), res.ID)
	case h.Verbose:
		h.Logger.Printf("%s: ok", ev.Op())
	}
}

func (h *LogHook) OnBuildEnd(req *backend.Request, err error) {
	if err != nil {
		h.Logger.Printf("build failed: %v", err)
		return
	}
	h.Logger.Printf("build %s sent: %d components, save path %s",
		req.ID, len(req.Plan.Stages), req.Config.SavePath)
}

// Build outcomes recorded by CSVHook.
const (
	StatusOK       = "ok"
	StatusInvalid  = "invalid"
	StatusRejected = "rejected"
)

// CSVHook journals every build attempt to a CSV file.
type CSVHook struct {
	BaseHook
	Filename string
	Append   bool

	file    *os.File
	writer  *csv.Writer
	start   time.Time
	written bool
}

// NewCSVHook creates a new CSVHook. Unless append is set, the first build of
// the session truncates the file.
func NewCSVHook(filename string, append bool) *CSVHook {
	return &CSVHook{
		Filename: filename,
		Append:   append,
	}
}

func (h *CSVHook) OnBuildBegin(e *Editor) {
	mode := os.O_CREATE | os.O_WRONLY
	if h.Append || h.written {
		mode |= os.O_APPEND
	} else {
		mode |= os.O_TRUNC
	}

	file, err := os.OpenFile(h.Filename, mode, 0644)
	if err != nil {
		log.Printf("CSVHook: failed to open file %s: %v", h.Filename, err)
		return
	}
	h.file = file
	h.writer = csv.NewWriter(file)
	h.start = time.Now()

	info, err := file.Stat()
	if err == nil && info.Size() == 0 {
		h.writer.Write([]string{"time", "request_id", "status", "components", "duration_ms", "error"})
	}
}

func (h *CSVHook) OnBuildEnd(req *backend.Request, err error) {
	if h.writer == nil {
		return
	}
	defer h.close()

	status := StatusOK
	msg := ""
	if err != nil {
		msg = err.Error()
		status = StatusRejected
		var berrs net.BuildErrors
		if errors.As(err, &berrs) {
			status = StatusInvalid
		}
	}
	id, components := "", ""
	if req != nil {
		id = req.ID.String()
		components = strconv.Itoa(len(req.Plan.Stages))
	}

	record := []string{
		h.start.UTC().Format(time.RFC3339),
		id,
		status,
		components,
		strconv.FormatInt(time.Since(h.start).Milliseconds(), 10),
		msg,
	}
	if err := h.writer.Write(record); err != nil {
		log.Printf("CSVHook: failed to write record: %v", err)
	}
	h.written = true
}

func (h *CSVHook) close() {
	h.writer.Flush()
	h.file.Close()
	h.file = nil
	h.writer = nil
}
