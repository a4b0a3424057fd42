package commands

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/twill/internal/browser"
	"github.com/GriffinCanCode/twill/internal/document"
	"github.com/GriffinCanCode/twill/internal/script"
)

func sessionCommands() []script.Command {
	return []script.Command{
		{
			Name:    "agent",
			Help:    "agent <agent>: set the User-Agent, either literally or by shortcut",
			MinArgs: 1,
			MaxArgs: 1,
			Run: func(_ context.Context, env *script.Env, args []string) error {
				what := strings.TrimSpace(args[0])
				if full, ok := agents[what]; ok {
					what = full
				}
				env.Browser.SetAgent(what)
				return nil
			},
		},
		{
			Name:    "add_auth",
			Help:    "add_auth <realm> <url> <user> <password>: add basic auth credentials",
			MinArgs: 4,
			MaxArgs: 4,
			Run: func(_ context.Context, env *script.Env, args []string) error {
				env.Browser.AddCredentials(args[1], args[0], args[2], args[3])
				return nil
			},
		},
		{
			Name:    "add_extra_header",
			Help:    "add_extra_header <name> <value>: send a header with every request",
			MinArgs: 2,
			MaxArgs: 2,
			Run: func(_ context.Context, env *script.Env, args []string) error {
				env.Browser.SetHeader(args[0], args[1])
				return nil
			},
		},
		{
			Name: "show_extra_headers",
			Help: "show_extra_headers: list the headers sent with every request",
			Run:  showHeaders,
		},
		{
			Name: "clear_extra_headers",
			Help: "clear_extra_headers: restore the default request headers",
			Run: func(_ context.Context, env *script.Env, _ []string) error {
				env.Browser.ResetHeaders()
				return nil
			},
		},
		{
			Name:    "save_cookies",
			Help:    "save_cookies <file>: save the cookie jar",
			MinArgs: 1,
			MaxArgs: 1,
			Run: func(_ context.Context, env *script.Env, args []string) error {
				return env.Browser.SaveCookies(args[0])
			},
		},
		{
			Name:    "load_cookies",
			Help:    "load_cookies <file>: replace the cookie jar with a saved one",
			MinArgs: 1,
			MaxArgs: 1,
			Run: func(_ context.Context, env *script.Env, args []string) error {
				return env.Browser.LoadCookies(args[0])
			},
		},
		{
			Name: "clear_cookies",
			Help: "clear_cookies: empty the cookie jar",
			Run: func(_ context.Context, env *script.Env, _ []string) error {
				env.Browser.ClearCookies()
				return nil
			},
		},
		{
			Name: "show_cookies",
			Help: "show_cookies: list the cookies in the jar",
			Run: func(_ context.Context, env *script.Env, _ []string) error {
				env.Browser.WriteCookies(env.Out)
				return nil
			},
		},
		{
			Name:    "config",
			Help:    "config [<key> [<value>]]: show or change browser options",
			MaxArgs: 2,
			Run:     configure,
		},
		{
			Name:    "debug",
			Help:    "debug <http|commands|equiv-refresh> <level>: toggle diagnostics",
			MinArgs: 2,
			MaxArgs: 2,
			Run:     debug,
		},
	}
}

func showHeaders(_ context.Context, env *script.Env, _ []string) error {
	headers := env.Browser.Headers()
	if len(headers) == 0 {
		fmt.Fprintln(env.Out, "** no extra HTTP headers **")
		return nil
	}
	keys := make([]string, 0, len(headers))
	for k := range headers {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	fmt.Fprintln(env.Out, "\nThe following HTTP headers are added to each request:")
	fmt.Fprintln(env.Out)
	for _, k := range keys {
		fmt.Fprintf(env.Out, "\t%q = %q\n", k, headers[k])
	}
	fmt.Fprintln(env.Out)
	return nil
}

func configure(_ context.Context, env *script.Env, args []string) error {
	opts := env.Browser.Options()
	if len(args) == 0 {
		fmt.Fprintln(env.Out, "\nCurrent configuration:")
		fmt.Fprintln(env.Out)
		for _, name := range browser.OptionNames() {
			v, _ := opts.Get(name)
			fmt.Fprintf(env.Out, "\t%s : %s\n", name, v)
		}
		fmt.Fprintln(env.Out)
		return nil
	}

	key := args[0]
	current, err := opts.Get(key)
	if err != nil {
		env.Logger.Error("no such configuration key",
			zap.String("key", key), zap.Strings("valid", browser.OptionNames()))
		return err
	}
	if len(args) == 1 {
		fmt.Fprintf(env.Out, "\nkey %s: value %s\n\n", key, current)
		return nil
	}
	return opts.Set(key, args[1])
}

func debug(_ context.Context, env *script.Env, args []string) error {
	what := args[0]
	level, err := strconv.Atoi(args[1])
	if err != nil {
		on, berr := document.ParseBool(args[1])
		if berr != nil {
			return fmt.Errorf("invalid debug level %q", args[1])
		}
		level = 0
		if on {
			level = 1
		}
	}
	env.Logger.Info("setting debugging level", zap.String("what", what), zap.Int("level", level))

	switch what {
	case "http":
		env.Browser.SetDebug(level > 0)
	case "equiv-refresh":
		env.Browser.SetShowRefresh(level > 0)
	case "commands":
		env.Interp.SetTraceCommands(level > 0)
	default:
		return fmt.Errorf("unknown debugging type %q", what)
	}
	return nil
}
