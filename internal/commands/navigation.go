package commands

import (
	"context"
	"errors"

	"github.com/GriffinCanCode/twill/internal/document"
	"github.com/GriffinCanCode/twill/internal/script"
)

func navigationCommands() []script.Command {
	return []script.Command{
		{
			Name:    "go",
			Help:    "go <url>: visit the url",
			MinArgs: 1,
			MaxArgs: 1,
			Run: func(ctx context.Context, env *script.Env, args []string) error {
				return env.Browser.Go(ctx, args[0])
			},
		},
		{
			Name: "reload",
			Help: "reload: reload the current url",
			Run: func(ctx context.Context, env *script.Env, _ []string) error {
				return env.Browser.Reload(ctx)
			},
		},
		{
			Name: "back",
			Help: "back: return to the previous page",
			Run: func(_ context.Context, env *script.Env, _ []string) error {
				env.Browser.Back()
				return nil
			},
		},
		{
			Name:    "follow",
			Help:    "follow <regex>: visit the first link whose text or url matches",
			MinArgs: 1,
			MaxArgs: 1,
			Run: func(ctx context.Context, env *script.Env, args []string) error {
				err := env.Browser.Follow(ctx, args[0])
				if errors.Is(err, document.ErrNoSuchLink) {
					return assertionf("no links match to %q", args[0])
				}
				return err
			},
		},
		{
			Name: "reset_browser",
			Help: "reset_browser: forget all session state",
			Run: func(_ context.Context, env *script.Env, _ []string) error {
				return env.Browser.Reset()
			},
		},
	}
}
