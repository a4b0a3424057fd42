package commands

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/twill/internal/script"
)

const (
	InputVar    = "__input__"
	PasswordVar = "__password__"
)

func scriptingCommands() []script.Command {
	return []script.Command{
		{
			Name:    "setlocal",
			Help:    "setlocal <name> <value>: set a variable in the current script",
			MinArgs: 2,
			MaxArgs: 2,
			Run: func(_ context.Context, env *script.Env, args []string) error {
				env.Namespace.SetLocal(args[0], args[1])
				return nil
			},
		},
		{
			Name:    "setglobal",
			Help:    "setglobal <name> <value>: set a variable visible to every script",
			MinArgs: 2,
			MaxArgs: 2,
			Run: func(_ context.Context, env *script.Env, args []string) error {
				env.Namespace.SetGlobal(args[0], args[1])
				return nil
			},
		},
		{
			Name:    "runfile",
			Help:    "runfile <file|dir|glob>...: run other scripts in the current session",
			MinArgs: 1,
			MaxArgs: script.Unlimited,
			Run:     runFile,
		},
		{
			Name:    "add_cleanup",
			Help:    "add_cleanup <file|dir|glob>...: run scripts when the current script ends",
			MinArgs: 1,
			MaxArgs: script.Unlimited,
			Run: func(_ context.Context, env *script.Env, args []string) error {
				files, err := script.GatherFilenames(args, env.Interp.Extension())
				if err != nil {
					return err
				}
				env.Logger.Debug("adding cleanup scripts", zap.Strings("files", files))
				env.Frame.AddCleanup(files...)
				return nil
			},
		},
		{
			Name:    "getinput",
			Help:    "getinput <prompt>: read a line into __input__",
			MinArgs: 1,
			MaxArgs: 1,
			Run: func(_ context.Context, env *script.Env, args []string) error {
				line, err := env.Interp.ReadLine(args[0])
				if err != nil {
					return fmt.Errorf("failed to read input: %w", err)
				}
				env.Namespace.SetLocal(InputVar, line)
				return nil
			},
		},
		{
			Name:    "getpassword",
			Help:    "getpassword <prompt>: read a line without echo into __password__",
			MinArgs: 1,
			MaxArgs: 1,
			Run: func(_ context.Context, env *script.Env, args []string) error {
				pw, err := env.Interp.ReadPassword(args[0])
				if err != nil {
					return fmt.Errorf("failed to read password: %w", err)
				}
				env.Namespace.SetLocal(PasswordVar, pw)
				return nil
			},
		},
		{
			Name:    "sleep",
			Help:    "sleep [<seconds>]: pause, one second by default",
			MaxArgs: 1,
			Run:     sleep,
		},
		{
			Name:    "exit",
			Help:    "exit [<code>]: stop the current script",
			MaxArgs: 1,
			Run: func(_ context.Context, _ *script.Env, args []string) error {
				code := 0
				if len(args) == 1 {
					n, err := strconv.Atoi(strings.TrimSpace(args[0]))
					if err != nil {
						return fmt.Errorf("invalid exit code %q", args[0])
					}
					code = n
				}
				return &script.AbortError{Code: code}
			},
		},
	}
}

func runFile(ctx context.Context, env *script.Env, args []string) error {
	files, err := script.GatherFilenames(args, env.Interp.Extension())
	if err != nil {
		return err
	}
	for _, f := range files {
		err := env.Interp.ExecuteFile(ctx, f, script.ExecOptions{NoReset: true, NeverFail: env.Frame.NeverFail})
		var abort *script.AbortError
		if errors.As(err, &abort) {
			continue
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func sleep(ctx context.Context, _ *script.Env, args []string) error {
	seconds := 1.0
	if len(args) == 1 {
		v, err := strconv.ParseFloat(args[0], 64)
		if err != nil || v < 0 {
			return fmt.Errorf("invalid interval %q", args[0])
		}
		seconds = v
	}

	timer := time.NewTimer(time.Duration(seconds * float64(time.Second)))
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
