// Package shell is a headless front end for the editor. It reads one command
// per line, dispatches it and prints the outcome. A failing command prints an
// error and the session carries on, the same way a dialog would.
package shell

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/FlavioCFOliveira/mlgui/internal/activations"
	"github.com/FlavioCFOliveira/mlgui/internal/config"
	"github.com/FlavioCFOliveira/mlgui/internal/editor"
	"github.com/FlavioCFOliveira/mlgui/internal/layer"
	"github.com/FlavioCFOliveira/mlgui/internal/loss"
	"github.com/FlavioCFOliveira/mlgui/internal/net"
	"github.com/FlavioCFOliveira/mlgui/internal/opt"
	"github.com/pkg/errors"
)

// ErrUsage is returned for a malformed command line.
var ErrUsage = errors.New("usage")

type command struct {
	usage string
	help  string
	run   func(s *session, args []string) error
}

var commands map[string]command

func init() {
	commands = map[string]command{
		"layer":      {"layer <kind>", "place a new layer", (*session).addLayer},
		"activation": {"activation <kind>", "place a new activation function", (*session).addActivation},
		"head":       {"head <id>", "mark a component as the first of the chain", (*session).setHead},
		"link":       {"link <from> <to>", "connect two components", (*session).link},
		"unlink":     {"unlink <id>", "detach the successor of a component", (*session).unlink},
		"configure":  {"configure <id> key=value...", "set layer parameters", (*session).configure},
		"set":        {"set <field> <value>", "set a training field", (*session).set},
		"loss":       {"loss <kind> [reduction=..] [smoothing=..] [delta=..] [blank=..] [zero_infinity]", "select the loss function", (*session).loss},
		"show":       {"show", "print the network and training settings", (*session).show},
		"catalog":    {"catalog", "list the available components and options", (*session).catalog},
		"ready":      {"ready", "report whether every layer is configured", (*session).ready},
		"validate":   {"validate", "list every problem blocking a build", (*session).validate},
		"build":      {"build", "send the network to the backend", (*session).build},
		"save":       {"save <file>", "write the topology to a file", (*session).save},
		"open":       {"open <file>", "replace the topology with one read from a file", (*session).open},
		"help":       {"help", "list commands", (*session).help},
	}
}

type session struct {
	ctx context.Context
	ed  *editor.Editor
	out io.Writer
}

// Run executes commands read from in until EOF, quit or ctx is done.
func Run(ctx context.Context, in io.Reader, out io.Writer, ed *editor.Editor) error {
	s := &session{ctx: ctx, ed: ed, out: out}
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		name := strings.ToLower(fields[0])
		if name == "quit" || name == "exit" {
			return nil
		}

		cmd, ok := commands[name]
		if !ok {
			fmt.Fprintf(out, "error: unknown command %q (try help)\n", fields[0])
			continue
		}
		if err := cmd.run(s, fields[1:]); err != nil {
			if errors.Is(err, ErrUsage) {
				fmt.Fprintf(out, "usage: %s\n", cmd.usage)
				continue
			}
			fmt.Fprintf(out, "error: %v\n", err)
		}
	}
	return errors.Wrap(scanner.Err(), "failed to read commands")
}

func (s *session) dispatch(ev editor.Event) (editor.Result, error) {
	return s.ed.Dispatch(s.ctx, ev)
}

func parseID(arg string) (net.ComponentID, error) {
	id, err := strconv.Atoi(arg)
	if err != nil {
		return net.None, errors.Errorf("invalid component id %q", arg)
	}
	return net.ComponentID(id), nil
}

func (s *session) addLayer(args []string) error {
	if len(args) != 1 {
		return ErrUsage
	}
	res, err := s.dispatch(editor.AddLayer{Name: args[0]})
	if err != nil {
		return err
	}
	c, _ := s.ed.Topology().Component(res.ID)
	fmt.Fprintf(s.out, "added %s as component %d\n", c.Name(), res.ID)
	return nil
}

func (s *session) addActivation(args []string) error {
	if len(args) == 0 {
		return ErrUsage
	}
	res, err := s.dispatch(editor.AddActivation{Name: strings.Join(args, " ")})
	if err != nil {
		return err
	}
	c, _ := s.ed.Topology().Component(res.ID)
	fmt.Fprintf(s.out, "added %s as component %d\n", c.Name(), res.ID)
	return nil
}

func (s *session) setHead(args []string) error {
	if len(args) != 1 {
		return ErrUsage
	}
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	_, err = s.dispatch(editor.SetHead{ID: id})
	return err
}

func (s *session) link(args []string) error {
	if len(args) != 2 {
		return ErrUsage
	}
	from, err := parseID(args[0])
	if err != nil {
		return err
	}
	to, err := parseID(args[1])
	if err != nil {
		return err
	}
	_, err = s.dispatch(editor.Link{From: from, To: to})
	return err
}

func (s *session) unlink(args []string) error {
	if len(args) != 1 {
		return ErrUsage
	}
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	_, err = s.dispatch(editor.Unlink{ID: id})
	return err
}

func (s *session) configure(args []string) error {
	if len(args) < 1 {
		return ErrUsage
	}
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	values := make(map[string]string, len(args)-1)
	for _, kv := range args[1:] {
		k, v, ok := strings.Cut(kv, "=")
		if !ok || k == "" {
			return errors.Errorf("expected key=value, got %q", kv)
		}
		values[k] = v
	}
	_, err = s.dispatch(editor.Configure{ID: id, Values: values})
	return err
}

func (s *session) set(args []string) error {
	if len(args) < 2 {
		return ErrUsage
	}
	_, err := s.dispatch(editor.SetField{Field: args[0], Value: strings.Join(args[1:], " ")})
	return err
}

func (s *session) loss(args []string) error {
	if len(args) < 1 {
		return ErrUsage
	}
	var form loss.Form
	for _, o := range args[1:] {
		k, v, _ := strings.Cut(o, "=")
		switch strings.ToLower(k) {
		case "reduction":
			form.Reduction = v
		case "smoothing", "label_smoothing":
			form.Smoothing = v
		case "delta":
			form.Delta = v
		case "blank":
			form.Blank = v
		case "zero_infinity":
			form.ZeroInfinity = v == "" || strings.EqualFold(v, "true")
		default:
			return errors.Errorf("unknown loss option %q", k)
		}
	}
	_, err := s.dispatch(editor.SetLoss{Kind: args[0], Form: form})
	return err
}

func (s *session) show(args []string) error {
	p, err := net.NewPlan(s.ed.Topology())
	if err != nil {
		return err
	}
	p.Summary(s.out)

	cfg := s.ed.Training()
	fmt.Fprintf(s.out, "%-14s %s\n", config.FieldSavePath+":", orUnset(cfg.SavePath))
	fmt.Fprintf(s.out, "%-14s %s\n", config.FieldDevice+":", orUnset(cfg.Device))
	fmt.Fprintf(s.out, "%-14s %s\n", config.FieldOptimizer+":", orUnset(cfg.Optimizer))
	lossName := "<unset>"
	if cfg.Loss != nil {
		lossName = cfg.Loss.String()
	}
	fmt.Fprintf(s.out, "%-14s %s\n", config.FieldLoss+":", lossName)
	fmt.Fprintf(s.out, "%-14s %g\n", config.FieldLearningRate+":", cfg.LearningRate)
	fmt.Fprintf(s.out, "%-14s %d\n", config.FieldBatchSize+":", cfg.BatchSize)
	fmt.Fprintf(s.out, "%-14s %d\n", config.FieldEpochs+":", cfg.Epochs)
	return nil
}

func orUnset[T any](v *T) string {
	if v == nil {
		return "<unset>"
	}
	return fmt.Sprint(*v)
}

func (s *session) catalog(args []string) error {
	var names []string
	for _, k := range layer.Kinds() {
		names = append(names, k.DisplayName())
	}
	fmt.Fprintf(s.out, "layers:      %s\n", strings.Join(names, ", "))

	names = names[:0]
	for _, k := range activations.Kinds() {
		names = append(names, k.DisplayName())
	}
	fmt.Fprintf(s.out, "activations: %s\n", strings.Join(names, ", "))

	names = names[:0]
	for _, k := range loss.Kinds() {
		names = append(names, k.String())
	}
	fmt.Fprintf(s.out, "losses:      %s\n", strings.Join(names, ", "))

	names = names[:0]
	for _, k := range opt.Kinds() {
		names = append(names, k.String())
	}
	fmt.Fprintf(s.out, "optimizers:  %s\n", strings.Join(names, ", "))

	names = names[:0]
	for _, d := range config.Devices() {
		names = append(names, d.String())
	}
	fmt.Fprintf(s.out, "devices:     %s\n", strings.Join(names, ", "))
	return nil
}

func (s *session) ready(args []string) error {
	if s.ed.Ready() {
		fmt.Fprintln(s.out, "ready")
		return nil
	}
	var ids []string
	for _, c := range s.ed.Topology().Components() {
		if !c.Configured() {
			ids = append(ids, strconv.Itoa(int(c.ID)))
		}
	}
	fmt.Fprintf(s.out, "not ready: unconfigured layers %s\n", strings.Join(ids, ", "))
	return nil
}

func (s *session) validate(args []string) error {
	err := s.ed.Validate()
	if err == nil {
		fmt.Fprintln(s.out, "ok")
		return nil
	}
	var errs net.BuildErrors
	if !errors.As(err, &errs) {
		return err
	}
	for _, be := range errs {
		fmt.Fprintf(s.out, "- %v\n", be)
	}
	return nil
}

func (s *session) build(args []string) error {
	res, err := s.dispatch(editor.Build{})
	if err != nil {
		return err
	}
	fmt.Fprintf(s.out, "build %s sent\n", res.Request.ID)
	return nil
}

func (s *session) save(args []string) error {
	if len(args) != 1 {
		return ErrUsage
	}
	return s.ed.Save(args[0])
}

func (s *session) open(args []string) error {
	if len(args) != 1 {
		return ErrUsage
	}
	if err := s.ed.Open(args[0]); err != nil {
		return err
	}
	fmt.Fprintf(s.out, "opened %d components\n", s.ed.Topology().Len())
	return nil
}

func (s *session) help(args []string) error {
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(s.out, "  %-50s %s\n", commands[name].usage, commands[name].help)
	}
	fmt.Fprintf(s.out, "  %-50s %s\n", "quit", "leave the session")
	return nil
}
