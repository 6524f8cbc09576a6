package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strings"

	"github.com/FlavioCFOliveira/mlgui/internal/backend"
	"github.com/FlavioCFOliveira/mlgui/internal/config"
	"github.com/FlavioCFOliveira/mlgui/internal/editor"
	"github.com/FlavioCFOliveira/mlgui/internal/settings"
	"github.com/FlavioCFOliveira/mlgui/internal/shell"
	"github.com/pkg/errors"
)

func main() {
	settingsPath := flag.String("settings", "", "JSON settings file")
	backendFlag := flag.String("backend", "", `backend: "file", "discard" or a ws:// URL (defaults to the settings file)`)
	script := flag.String("script", "", "read commands from this file instead of stdin")
	verbose := flag.Bool("v", false, "log every event")
	flag.Parse()

	logger := log.New(os.Stderr, "mlgui: ", log.LstdFlags)

	s := settings.Defaults()
	if *settingsPath != "" {
		var err error
		if s, err = settings.Load(*settingsPath); err != nil {
			logger.Fatalf("Failed to load settings: %v", err)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	target := *backendFlag
	if target == "" {
		target = s.BackendURL
	}
	b, closeBackend, err := openBackend(ctx, target)
	if err != nil {
		logger.Fatalf("Failed to open backend: %v", err)
	}
	defer closeBackend()

	hooks := []editor.Hook{editor.NewLogHook(logger, *verbose)}
	if s.BuildLog != "" {
		hooks = append(hooks, editor.NewCSVHook(s.BuildLog, true))
	}
	ed := editor.New(config.New(s), b, hooks...)

	var in io.Reader = os.Stdin
	if *script != "" {
		f, err := os.Open(*script)
		if err != nil {
			logger.Fatalf("Failed to open script: %v", err)
		}
		defer f.Close()
		in = f
	} else if isTerminal(os.Stdin) {
		fmt.Println("mlgui: type help for a list of commands")
	}

	if err := shell.Run(ctx, in, os.Stdout, ed); err != nil && ctx.Err() == nil {
		logger.Printf("Session ended: %v", err)
		os.Exit(1)
	}
}

// openBackend resolves the -backend value. An empty target writes plan files.
func openBackend(ctx context.Context, target string) (backend.Backend, func(), error) {
	switch {
	case target == "" || target == "file":
		return backend.File{}, func() {}, nil
	case target == "discard":
		return backend.Discard{}, func() {}, nil
	case strings.HasPrefix(target, "ws://") || strings.HasPrefix(target, "wss://"):
		r, err := backend.Dial(ctx, target)
		if err != nil {
			return nil, nil, err
		}
		return r, func() { r.Close() }, nil
	}
	return nil, nil, errors.Errorf("unknown backend %q", target)
}

func isTerminal(f *os.File) bool {
	info, err := f.Stat()
	return err == nil && info.Mode()&os.ModeCharDevice != 0
}
