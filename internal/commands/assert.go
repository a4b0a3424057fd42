package commands

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/twill/internal/browser"
	"github.com/GriffinCanCode/twill/internal/script"
)

// MatchVar holds the text matched by the last successful check.
const MatchVar = "__match__"

func assertionCommands() []script.Command {
	return []script.Command{
		{
			Name:    "code",
			Help:    "code <int>: check the status code of the current page",
			MinArgs: 1,
			MaxArgs: 1,
			Run:     code,
		},
		{
			Name:    "url",
			Help:    "url <regex>: check that the current url matches",
			MinArgs: 1,
			MaxArgs: 1,
			Run:     matchURL,
		},
		{
			Name:    "find",
			Help:    "find <regex> [<flags>]: check that the page matches; flags are i, m, s and x for XPath",
			MinArgs: 1,
			MaxArgs: 2,
			Run:     find,
		},
		{
			Name:    "notfind",
			Help:    "notfind <regex> [<flags>]: check that the page does not match",
			MinArgs: 1,
			MaxArgs: 2,
			Run:     notfind,
		},
		{
			Name:    "title",
			Help:    "title <regex>: check that the page title matches",
			MinArgs: 1,
			MaxArgs: 1,
			Run:     title,
		},
	}
}

func code(_ context.Context, env *script.Env, args []string) error {
	want, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid status code %q", args[0])
	}
	if got := env.Browser.Code(); got != want {
		return assertionf("code is %d != %d", got, want)
	}
	return nil
}

func matchURL(_ context.Context, env *script.Env, args []string) error {
	re, err := regexp.Compile(args[0])
	if err != nil {
		return err
	}
	current := env.Browser.URL()
	m := re.FindStringSubmatch(current)
	if m == nil {
		return assertionf("current url is %q; does not match %q", current, args[0])
	}
	env.Namespace.SetLocal(MatchVar, matchText(m))
	return nil
}

// matchText is the first group of a match, or the whole match without
// groups.
func matchText(m []string) string {
	if len(m) > 1 {
		return m[1]
	}
	return m[0]
}

func findFlags(flags string) (prefix string, xpath bool, err error) {
	var re strings.Builder
	for _, c := range flags {
		switch c {
		case 'i', 'm', 's':
			re.WriteRune(c)
		case 'x':
			xpath = true
		default:
			return "", false, fmt.Errorf("unknown find flag %q", c)
		}
	}
	if re.Len() > 0 {
		prefix = "(?" + re.String() + ")"
	}
	return prefix, xpath, nil
}

func find(_ context.Context, env *script.Env, args []string) error {
	flags := ""
	if len(args) == 2 {
		flags = args[1]
	}
	prefix, xpath, err := findFlags(flags)
	if err != nil {
		return err
	}

	page := env.Browser.Page()
	if page == nil {
		return browser.ErrNoPage
	}

	if xpath {
		elements, err := page.XPath(args[0])
		if err != nil {
			return err
		}
		if len(elements) == 0 {
			return assertionf("no element to path %q", args[0])
		}
		env.Namespace.SetLocal(MatchVar, elements[0])
		return nil
	}

	re, err := regexp.Compile(prefix + args[0])
	if err != nil {
		return err
	}
	m := re.FindStringSubmatch(page.Text)
	if m == nil {
		return assertionf("no match to %q", args[0])
	}
	env.Namespace.SetLocal(MatchVar, matchText(m))
	return nil
}

func notfind(ctx context.Context, env *script.Env, args []string) error {
	err := find(ctx, env, args)
	if errors.Is(err, ErrAssertion) {
		return nil
	}
	if err != nil {
		return err
	}
	return assertionf("match to %q", args[0])
}

func title(_ context.Context, env *script.Env, args []string) error {
	re, err := regexp.Compile(args[0])
	if err != nil {
		return err
	}
	t, err := env.Browser.Title()
	if err != nil {
		return err
	}
	env.Logger.Info("title is", zap.String("title", t))

	m := re.FindStringSubmatch(t)
	if m == nil {
		return assertionf("title does not contain %q", args[0])
	}
	env.Namespace.SetLocal(MatchVar, matchText(m))
	return nil
}
