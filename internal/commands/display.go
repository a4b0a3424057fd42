package commands

import (
	"context"
	"fmt"
	"html"
	"os"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/twill/internal/script"
)

func displayCommands() []script.Command {
	return []script.Command{
		{
			Name:    "show",
			Help:    "show [text]: print the current page, or only its text",
			MaxArgs: 1,
			Run:     show,
		},
		{
			Name: "showlinks",
			Help: "showlinks: list the links of the current page",
			Run: func(_ context.Context, env *script.Env, _ []string) error {
				env.Browser.WriteLinks(env.Out)
				return nil
			},
		},
		{
			Name: "showhistory",
			Help: "showhistory: list the visited pages",
			Run: func(_ context.Context, env *script.Env, _ []string) error {
				env.Browser.WriteHistory(env.Out)
				return nil
			},
		},
		{
			Name: "info",
			Help: "info: describe the current page",
			Run:  info,
		},
		{
			Name:    "echo",
			Help:    "echo <words>: print the arguments",
			MaxArgs: script.Unlimited,
			Run: func(_ context.Context, env *script.Env, args []string) error {
				fmt.Fprintln(env.Out, strings.Join(args, " "))
				return nil
			},
		},
		{
			Name:    "save_html",
			Help:    "save_html [<file>]: save the current page, named after its url by default",
			MaxArgs: 1,
			Run:     saveHTML,
		},
	}
}

func show(_ context.Context, env *script.Env, args []string) error {
	page, err := env.Browser.HTML()
	if err != nil {
		return err
	}
	out := strings.TrimSpace(page)
	if len(args) == 1 {
		if args[0] != "text" {
			return fmt.Errorf("unknown show mode %q", args[0])
		}
		out = pageText(page)
	}
	fmt.Fprintf(env.Out, "\n%s\n\n", out)
	return nil
}

var textPolicy = bluemonday.StrictPolicy()

// pageText strips all markup from page and drops blank lines.
func pageText(page string) string {
	text := html.UnescapeString(textPolicy.Sanitize(page))
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "\n")
}

func info(_ context.Context, env *script.Env, _ []string) error {
	page := env.Browser.Page()
	if page == nil {
		env.Logger.Warn("We're not on a page!")
		return nil
	}

	htmlSuffix := ""
	if page.IsHTML() {
		htmlSuffix = " (HTML)"
	}
	fmt.Fprintf(env.Out, "\tURL: %s\n", page.URL)
	fmt.Fprintf(env.Out, "\tHTTP code: %d\n", page.StatusCode)
	fmt.Fprintf(env.Out, "\tContent type: %s%s\n", page.ContentType, htmlSuffix)
	if page.IsHTML() {
		fmt.Fprintf(env.Out, "\tPage title: %s\n", page.Title)
		if n := len(page.Forms); n > 0 {
			fmt.Fprintf(env.Out, "\tThis page contains %d form(s)\n", n)
		}
	}
	fmt.Fprintln(env.Out)
	return nil
}

func saveHTML(_ context.Context, env *script.Env, args []string) error {
	page := env.Browser.Page()
	if page == nil {
		env.Logger.Warn("No page to save.")
		return nil
	}

	filename := ""
	if len(args) == 1 {
		filename = args[0]
	} else {
		filename = filenameFromURL(page.URL)
		env.Logger.Info("using filename", zap.String("file", filename))
	}
	if err := os.WriteFile(filename, []byte(page.Text), 0o644); err != nil {
		return fmt.Errorf("failed to save html: %w", err)
	}
	return nil
}

func filenameFromURL(u string) string {
	u, _, _ = strings.Cut(u, "?")
	if i := strings.LastIndex(u, "/"); i >= 0 {
		u = u[i+1:]
	}
	if u == "" {
		return "index.html"
	}
	return u
}
