package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/twill/internal/browser"
	"github.com/GriffinCanCode/twill/internal/commands"
	"github.com/GriffinCanCode/twill/internal/config"
	"github.com/GriffinCanCode/twill/internal/logging"
	"github.com/GriffinCanCode/twill/internal/monitoring"
	"github.com/GriffinCanCode/twill/internal/script"
)

// exitError carries the process exit status out of a run.
type exitError struct {
	code int
}

func (e *exitError) Error() string { return fmt.Sprintf("exit status %d", e.code) }

type options struct {
	configFile  string
	initialURL  string
	neverFail   bool
	dev         bool
	logLevel    string
	logFormat   string
	metricsFile string
}

func newRootCmd(in io.Reader, out, errOut io.Writer) *cobra.Command {
	opts := &options{}
	cmd := &cobra.Command{
		Use:   "twill [flags] <script|dir|glob|->...",
		Short: "Run twill web-browsing scripts",
		Long: `twill drives a programmatic web browser with simple line-based scripts.

Each script runs in a fresh browser session. Directories are searched for
script files by extension, glob patterns may use **, and - reads a script
from standard input.`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), opts, args, in, out, errOut)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.configFile, "config", "c", "", "YAML or TOML config file")
	flags.StringVarP(&opts.initialURL, "url", "u", "", "url to visit before each script")
	flags.BoolVarP(&opts.neverFail, "never-fail", "n", false, "log failing commands and keep going")
	flags.BoolVar(&opts.dev, "dev", false, "development logging")
	flags.StringVar(&opts.logLevel, "log-level", "", "log level (debug, info, warn, error)")
	flags.StringVar(&opts.logFormat, "log-format", "", "log format (console, json)")
	flags.StringVar(&opts.metricsFile, "metrics-file", "", "write Prometheus metrics to this file when done")
	return cmd
}

func loadConfig(opts *options) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if opts.configFile != "" {
		cfg, err = config.LoadFile(opts.configFile)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, err
	}
	if opts.neverFail {
		cfg.Script.NeverFail = true
	}
	if opts.dev {
		cfg.Logging.Development = true
	}
	if opts.logLevel != "" {
		cfg.Logging.Level = opts.logLevel
	}
	if opts.logFormat != "" {
		cfg.Logging.Format = opts.logFormat
	}
	return cfg, nil
}

func run(ctx context.Context, opts *options, args []string, in io.Reader, out, errOut io.Writer) error {
	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}

	logger, err := logging.New(logging.Config{
		Level:       cfg.Logging.Level,
		Format:      cfg.Logging.Format,
		Development: cfg.Logging.Development,
		OutputPaths: []string{"stderr"},
	})
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	metrics := monitoring.NewMetrics()
	b, err := browser.New(browser.Config{
		Browser: cfg.Browser,
		HTTP:    cfg.HTTP,
		Logger:  logger,
		Metrics: metrics,
	})
	if err != nil {
		return err
	}
	reg, err := commands.NewRegistry()
	if err != nil {
		return err
	}
	interp, err := script.New(script.Config{
		Browser:  b,
		Registry: reg,
		Script:   cfg.Script,
		Logger:   logger,
		Metrics:  metrics,
		In:       in,
		Out:      out,
	})
	if err != nil {
		return err
	}

	files, err := script.GatherFilenames(args, cfg.Script.Extension)
	if err != nil {
		return err
	}

	code := runScripts(ctx, interp, files, opts.initialURL, cfg.Script.NeverFail, logger, errOut)

	if opts.metricsFile != "" {
		if err := metrics.WriteTextfile(opts.metricsFile); err != nil {
			logger.Error("failed to write metrics", zap.String("file", opts.metricsFile), zap.Error(err))
		}
	}
	if code != 0 {
		return &exitError{code: code}
	}
	return nil
}

// runScripts executes each file in a fresh session and reports failures on
// errOut. The result is the exit status of the run.
func runScripts(ctx context.Context, interp *script.Interpreter, files []string, initialURL string, neverFail bool, logger *logging.Logger, errOut io.Writer) int {
	var failed []string
	code := 0
	for _, f := range files {
		logger.Info(">> EXECUTING FILE", zap.String("file", f))
		err := interp.ExecuteFile(ctx, f, script.ExecOptions{InitialURL: initialURL, NeverFail: neverFail})

		var abort *script.AbortError
		if errors.As(err, &abort) {
			if abort.Code != 0 {
				failed = append(failed, f)
				code = abort.Code
			}
			continue
		}
		if err == nil && neverFail {
			err = interp.Browser().FirstError()
		}
		if err != nil {
			fmt.Fprintf(errOut, "EXCEPTION raised at %s: %v\n", f, err)
			failed = append(failed, f)
			if code == 0 {
				code = 1
			}
		}
		if ctx.Err() != nil {
			break
		}
	}

	if len(failed) > 0 {
		fmt.Fprintf(errOut, "\nThere were %d failures:\n", len(failed))
		for _, f := range failed {
			fmt.Fprintf(errOut, "\t%s\n", f)
		}
	}
	return code
}
