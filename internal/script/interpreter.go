package script

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/GriffinCanCode/twill/internal/browser"
	"github.com/GriffinCanCode/twill/internal/config"
	"github.com/GriffinCanCode/twill/internal/logging"
	"github.com/GriffinCanCode/twill/internal/monitoring"
	"github.com/GriffinCanCode/twill/internal/script/namespace"
	"github.com/GriffinCanCode/twill/internal/script/parser"
)

// StdinName is the script name that reads commands from the interpreter's
// input.
const StdinName = "-"

const maxLineSize = 1024 * 1024

// Config configures an Interpreter.
type Config struct {
	Browser   *browser.Browser
	Registry  *Registry
	Namespace *namespace.Namespace
	Script    config.ScriptConfig
	Logger    *logging.Logger
	Metrics   *monitoring.Metrics
	In        io.Reader
	Out       io.Writer
}

// ExecOptions controls one script frame.
type ExecOptions struct {
	Source     string
	NoReset    bool
	InitialURL string
	NeverFail  bool
}

// Env is what a command sees while it runs.
type Env struct {
	Browser   *browser.Browser
	Namespace *namespace.Namespace
	Interp    *Interpreter
	Frame     *Frame
	Logger    *logging.Logger
	Out       io.Writer
}

// Frame is one executing script.
type Frame struct {
	Source    string
	NeverFail bool
	cleanups  []string
}

// AddCleanup registers scripts to run when the frame exits. Each call's
// files run in the given order, after those of later calls.
func (f *Frame) AddCleanup(paths ...string) {
	for i := len(paths) - 1; i >= 0; i-- {
		f.cleanups = append(f.cleanups, paths[i])
	}
}

// Cleanups returns the registered cleanup scripts in execution order.
func (f *Frame) Cleanups() []string {
	out := make([]string, 0, len(f.cleanups))
	for i := len(f.cleanups) - 1; i >= 0; i-- {
		out = append(out, f.cleanups[i])
	}
	return out
}

// Interpreter executes scripts against a browser.
type Interpreter struct {
	browser  *browser.Browser
	registry *Registry
	ns       *namespace.Namespace
	cfg      config.ScriptConfig
	logger   *logging.Logger
	metrics  *monitoring.Metrics
	rawIn    io.Reader
	in       *bufio.Reader
	out      io.Writer
	trace    bool
}

// New creates an interpreter.
func New(cfg Config) (*Interpreter, error) {
	if cfg.Browser == nil {
		return nil, fmt.Errorf("interpreter requires a browser")
	}
	if cfg.Registry == nil {
		return nil, fmt.Errorf("interpreter requires a command registry")
	}
	if cfg.Namespace == nil {
		cfg.Namespace = namespace.New()
	}
	if cfg.Logger == nil {
		cfg.Logger = logging.NewNop()
	}
	if cfg.In == nil {
		cfg.In = os.Stdin
	}
	if cfg.Out == nil {
		cfg.Out = os.Stdout
	}
	if cfg.Script.Extension == "" {
		cfg.Script.Extension = config.Default().Script.Extension
	}

	return &Interpreter{
		browser:  cfg.Browser,
		registry: cfg.Registry,
		ns:       cfg.Namespace,
		cfg:      cfg.Script,
		logger:   cfg.Logger.Named("script"),
		metrics:  cfg.Metrics,
		rawIn:    cfg.In,
		in:       bufio.NewReader(cfg.In),
		out:      cfg.Out,
	}, nil
}

func (i *Interpreter) Browser() *browser.Browser { return i.browser }

func (i *Interpreter) Namespace() *namespace.Namespace { return i.ns }

func (i *Interpreter) Registry() *Registry { return i.registry }

// Extension is the file extension of script files found in directories.
func (i *Interpreter) Extension() string { return i.cfg.Extension }

// ExecuteFile runs the script at path. StdinName reads the interpreter's
// input.
func (i *Interpreter) ExecuteFile(ctx context.Context, path string, opts ExecOptions) error {
	if opts.Source == "" {
		opts.Source = path
	}
	if path == StdinName {
		return i.Execute(ctx, i.in, opts)
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open script: %w", err)
	}
	defer f.Close()
	return i.Execute(ctx, f, opts)
}

// ExecuteString runs src in the current browser state.
func (i *Interpreter) ExecuteString(ctx context.Context, src string) error {
	return i.Execute(ctx, strings.NewReader(src), ExecOptions{Source: "<string>", NoReset: true})
}

// Execute runs the commands read from r as one frame.
func (i *Interpreter) Execute(ctx context.Context, r io.Reader, opts ExecOptions) (err error) {
	if opts.Source == "" {
		opts.Source = "<input>"
	}
	frame := &Frame{Source: opts.Source, NeverFail: opts.NeverFail}

	i.ns.PushLocal()
	logger := i.logger.With(zap.String("source", opts.Source), zap.Int("depth", i.ns.Depth()))
	defer func() {
		i.finish(ctx, frame, logger)
		i.ns.PopLocal()
		i.metrics.ObserveScript(err)
	}()

	if !opts.NoReset {
		if err := i.browser.Reset(); err != nil {
			return err
		}
	}
	if opts.InitialURL != "" {
		if err := i.browser.Go(ctx, opts.InitialURL); err != nil {
			return err
		}
	}
	i.ns.SetLocal("__url__", i.browser.URL())

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	n := 0
	for scanner.Scan() {
		n++
		if err := ctx.Err(); err != nil {
			return err
		}
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}

		line, perr := parser.ParseLine(text)
		if perr != nil {
			logger.Error("parse error", zap.Int("line", n), zap.String("text", text), zap.Error(perr))
			continue
		}
		if line == nil {
			continue
		}

		args, serr := i.ns.ProcessArgs(line.Args)
		if serr != nil {
			return &LineError{Source: opts.Source, Line: n, Text: text, Err: serr}
		}

		cerr := i.dispatch(ctx, frame, line.Command, args)
		var abort *AbortError
		if errors.As(cerr, &abort) {
			logger.Info("script exit", zap.Int("line", n), zap.Int("code", abort.Code))
			return abort
		}
		if cerr != nil {
			lerr := &LineError{Source: opts.Source, Line: n, Text: text, Err: cerr}
			logger.Error("command failed", zap.Int("line", n), zap.String("text", text), zap.Error(cerr))
			i.browser.RecordError(lerr)
			if !opts.NeverFail {
				return lerr
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read script %s: %w", opts.Source, err)
	}
	return nil
}

func (i *Interpreter) dispatch(ctx context.Context, frame *Frame, name string, args []string) error {
	i.ns.SetLocal("__cmd__", name)
	i.ns.SetLocal("__args__", args)

	cmd, ok := i.registry.Lookup(name)
	if !ok {
		i.metrics.ObserveCommand(name, ErrUnknownCommand, 0)
		return fmt.Errorf("%w: %s", ErrUnknownCommand, name)
	}
	if err := cmd.CheckArity(len(args)); err != nil {
		i.metrics.ObserveCommand(cmd.Name, err, 0)
		return err
	}

	if i.trace {
		i.logger.Info("executing command", zap.String("command", name), zap.Strings("args", args))
	} else {
		i.logger.Debug("executing command", zap.String("command", name), zap.Strings("args", args))
	}

	env := &Env{
		Browser:   i.browser,
		Namespace: i.ns,
		Interp:    i,
		Frame:     frame,
		Logger:    i.logger.Named(cmd.Name),
		Out:       i.out,
	}

	start := time.Now()
	err := cmd.Run(ctx, env, args)
	i.metrics.ObserveCommand(cmd.Name, err, time.Since(start))

	i.ns.SetLocal("__url__", i.browser.URL())
	return err
}

// finish runs the frame's cleanup scripts. When any ran, the browser is reset
// and its page and first error restored.
func (i *Interpreter) finish(ctx context.Context, frame *Frame, logger *logging.Logger) {
	cleanups := frame.Cleanups()
	if len(cleanups) == 0 {
		return
	}

	page := i.browser.Page()
	firstErr := i.browser.FirstError()
	ctx = context.WithoutCancel(ctx)

	for _, path := range cleanups {
		logger.Info("running cleanup", zap.String("cleanup", path))
		err := i.ExecuteFile(ctx, path, ExecOptions{NoReset: true})
		var abort *AbortError
		if errors.As(err, &abort) {
			err = nil
		}
		i.metrics.ObserveCleanup(err)
		if err != nil {
			logger.Error("cleanup failed", zap.String("cleanup", path), zap.Error(err))
		}
	}

	if err := i.browser.Reset(); err != nil {
		logger.Error("cannot reset browser after cleanup", zap.Error(err))
	}
	i.browser.Restore(page, firstErr)
}

// ReadLine writes prompt and reads one line of input without its line
// ending.
func (i *Interpreter) ReadLine(prompt string) (string, error) {
	fmt.Fprint(i.out, prompt)
	line, err := i.in.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// ReadPassword reads a line like ReadLine but without echo when the input is
// a terminal.
func (i *Interpreter) ReadPassword(prompt string) (string, error) {
	f, ok := i.rawIn.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return i.ReadLine(prompt)
	}
	fmt.Fprint(i.out, prompt)
	pw, err := term.ReadPassword(int(f.Fd()))
	fmt.Fprintln(i.out)
	if err != nil {
		return "", err
	}
	return string(pw), nil
}

// SetTraceCommands logs every dispatched command at info level when on.
func (i *Interpreter) SetTraceCommands(on bool) { i.trace = on }

