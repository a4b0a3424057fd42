package commands

import (
	"bytes"
	"context"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/GriffinCanCode/twill/internal/browser"
	"github.com/GriffinCanCode/twill/internal/config"
	"github.com/GriffinCanCode/twill/internal/document"
	"github.com/GriffinCanCode/twill/internal/logging"
	"github.com/GriffinCanCode/twill/internal/script"
	"github.com/GriffinCanCode/twill/internal/testutil"
)

type fixture struct {
	srv     *httptest.Server
	browser *browser.Browser
	interp  *script.Interpreter
	out     *bytes.Buffer
	logs    *observer.ObservedLogs
}

func newFixture(t *testing.T, input string) *fixture {
	t.Helper()
	core, logs := observer.New(zap.DebugLevel)
	logger := logging.FromZap(zap.New(core))

	cfg := config.Default()
	b, err := browser.New(browser.Config{Browser: cfg.Browser, HTTP: cfg.HTTP, Logger: logger})
	require.NoError(t, err)

	reg, err := NewRegistry()
	require.NoError(t, err)

	out := &bytes.Buffer{}
	interp, err := script.New(script.Config{
		Browser:  b,
		Registry: reg,
		Script:   cfg.Script,
		Logger:   logger,
		In:       strings.NewReader(input),
		Out:      out,
	})
	require.NoError(t, err)

	srv := testutil.NewServer(t)
	interp.Namespace().SetGlobal("base", srv.URL)
	return &fixture{srv: srv, browser: b, interp: interp, out: out, logs: logs}
}

func (f *fixture) run(lines ...string) error {
	return f.interp.ExecuteString(context.Background(), strings.Join(lines, "\n"))
}

func TestRegistryHasBuiltins(t *testing.T) {
	reg, err := NewRegistry()
	require.NoError(t, err)

	for _, name := range []string{
		"go", "reload", "back", "follow", "code", "url", "find", "notfind", "title",
		"showforms", "formvalue", "fv", "formclear", "formaction", "fa", "formfile", "submit",
		"show", "showlinks", "showhistory", "info", "echo", "save_html",
		"agent", "add_auth", "add_extra_header", "show_extra_headers", "clear_extra_headers",
		"save_cookies", "load_cookies", "clear_cookies", "show_cookies", "reset_browser",
		"config", "debug", "setlocal", "setglobal", "runfile", "rf", "add_cleanup",
		"getinput", "getpassword", "sleep", "exit",
	} {
		_, ok := reg.Lookup(name)
		assert.True(t, ok, name)
	}

	cmd, ok := reg.Lookup("fv")
	require.True(t, ok)
	assert.Equal(t, "formvalue", cmd.Name)
}

func TestNavigationAndChecks(t *testing.T) {
	f := newFixture(t, "")

	err := f.run(
		"go ${base}/",
		"code 200",
		"title Hello",
		`find "visit #(\d+)"`,
		"echo visit ${__match__}",
		"follow increment",
		"url '/(incr)ement$'",
		"echo url ${__match__}",
		"find 'visit #1'",
		"back",
		"url '/$'",
		"reload",
		"find 'visit #1'",
		"notfind 'logged in as \"john\"'",
	)
	require.NoError(t, err)

	assert.Contains(t, f.out.String(), "visit 0\n")
	assert.Contains(t, f.out.String(), "url incr\n")
	assert.Equal(t, f.srv.URL+"/", f.browser.URL())
}

func TestCheckFailures(t *testing.T) {
	tests := []string{
		"code 404",
		"find 'no such text'",
		"notfind Hello",
		"title Goodbye",
		"url nowhere",
		"follow 'no such link'",
		"find '//table' x",
	}

	for _, line := range tests {
		t.Run(line, func(t *testing.T) {
			f := newFixture(t, "")
			err := f.run("go ${base}/", line)
			assert.ErrorIs(t, err, ErrAssertion)
		})
	}
}

func TestFindFlags(t *testing.T) {
	f := newFixture(t, "")

	require.NoError(t, f.run(
		"go ${base}/",
		"find 'HELLO, WORLD' i",
		"find 'tests.$' m",
		"find 'twill.tests' s",
		"find //title x",
		"echo ${__match__}",
		"find '//a/@href' x",
		"echo ${__match__}",
	))
	assert.Contains(t, f.out.String(), "<title>Hello, world!</title>\n")
	assert.Contains(t, f.out.String(), "./increment\n")

	err := f.run("find x q")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrAssertion)

	err = f.run("notfind x q")
	assert.Error(t, err)
}

func TestFindWithoutPage(t *testing.T) {
	f := newFixture(t, "")
	assert.ErrorIs(t, f.run("find anything"), browser.ErrNoPage)
}

func TestLoginForm(t *testing.T) {
	f := newFixture(t, "")

	require.NoError(t, f.run(
		"go ${base}/login",
		"fv 1 username john",
		"fv 1 submit click",
		"submit",
		"code 200",
		"find 'logged in as \"john\"'",
	))

	require.NoError(t, f.run(
		"go ${base}/login",
		"fv 1 username jane",
		"submit",
		"code 400",
		"find 'wrong button'",
	))
}

func TestReadonlyAndFileFields(t *testing.T) {
	f := newFixture(t, "")

	require.NoError(t, f.run(
		"go ${base}/readonly_form",
		"fv ro locked changed",
		"fv ro free abc",
		"submit",
		"find \"locked''' : '''fixed\"",
		"find \"free''' : '''abc\"",
	))
	assert.Equal(t, 1, f.logs.FilterMessage("form field is read-only; nothing done").Len())

	require.NoError(t, f.run(
		"go ${base}/readonly_form",
		"config readonly_controls_writeable 1",
		"fv ro locked changed",
		"submit",
		"find \"locked''' : '''changed\"",
	))

	err := f.run("go ${base}/readonly_form", "fv ro attachment x")
	assert.ErrorIs(t, err, browser.ErrNotFileField)

	err = f.run("go ${base}/readonly_form", "formfile ro free x")
	assert.ErrorIs(t, err, browser.ErrNotFileField)

	err = f.run("go ${base}/readonly_form", "fv ro 9 x")
	assert.ErrorIs(t, err, document.ErrNoSuchField)
}

func TestFormFileUpload(t *testing.T) {
	f := newFixture(t, "")
	path := filepath.Join(t.TempDir(), "note.txt")
	require.NoError(t, os.WriteFile(path, []byte("hello"), 0o644))
	f.interp.Namespace().SetGlobal("file", path)

	require.NoError(t, f.run(
		"go ${base}/upload_file",
		"formfile 1 upload ${file} text/plain",
		"fv 1 note hi",
		"submit",
		"find 'FILE: note.txt TYPE: text/plain NOTE: hi BODY: hello'",
	))
}

func TestFormClearAndAction(t *testing.T) {
	f := newFixture(t, "")

	require.NoError(t, f.run(
		"go ${base}/readonly_form",
		"fv ro free abc",
		"formclear ro",
		"submit",
		"find \"free''' : ''''''\"",
		"find \"locked''' : '''fixed\"",
	))

	require.NoError(t, f.run(
		"go ${base}/get_form",
		"fa search /display_post",
		"fv search q hi",
		"submit",
		"url /display_post",
		"find \"q''' : '''hi\"",
		"notfind stale",
	))
}

func TestCheckboxGroup(t *testing.T) {
	f := newFixture(t, "")

	require.NoError(t, f.run(
		"go ${base}/test_checkboxes",
		"fv 1 checkboxtest one",
		"fv 1 checkboxtest +three",
		"submit",
		"find ==one,three==",
	))
}

func TestMultipleSubmitButtons(t *testing.T) {
	f := newFixture(t, "")

	require.NoError(t, f.run(
		"go ${base}/multisubmitform",
		"fv 1 sub_b click",
		"submit",
		"find used_sub_b",
		"notfind used_sub_a",
	))
	require.NoError(t, f.run(
		"go ${base}/multisubmitform",
		"submit sub_a",
		"find used_sub_a",
	))
}

func TestDisplayCommands(t *testing.T) {
	f := newFixture(t, "")

	require.NoError(t, f.run("info"))
	assert.Equal(t, 1, f.logs.FilterMessage("We're not on a page!").Len())

	require.NoError(t, f.run(
		"go ${base}/",
		"show",
		"info",
		"showlinks",
		"follow increment",
		"showhistory",
		"go ${base}/login",
		"showforms",
		"echo a 'b c'",
	))
	out := f.out.String()
	assert.Contains(t, out, "<title>Hello, world!</title>")
	assert.Contains(t, out, "\tURL: "+f.srv.URL+"/\n")
	assert.Contains(t, out, "\tHTTP code: 200\n")
	assert.Contains(t, out, "\tContent type: text/html; charset=utf-8 (HTML)\n")
	assert.Contains(t, out, "\tPage title: Hello, world!\n")
	assert.Contains(t, out, "Links (2 links total)")
	assert.Contains(t, out, "History (1 pages total)")
	assert.Contains(t, out, "username")
	assert.Contains(t, out, "a b c\n")

	f.out.Reset()
	require.NoError(t, f.run("go ${base}/", "show text"))
	assert.Contains(t, f.out.String(), "You are logged in as \"guest\".")
	assert.NotContains(t, f.out.String(), "<p>")

	assert.Error(t, f.run("show nonsense"))
}

func TestSaveHTML(t *testing.T) {
	f := newFixture(t, "")
	path := filepath.Join(t.TempDir(), "page.html")
	f.interp.Namespace().SetGlobal("out", path)

	require.NoError(t, f.run("save_html ${out}"))
	assert.NoFileExists(t, path)

	require.NoError(t, f.run("go ${base}/plaintext", "save_html ${out}"))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "hello, world", string(data))
}

func TestFilenameFromURL(t *testing.T) {
	assert.Equal(t, "page.html", filenameFromURL("http://x/dir/page.html?q=1"))
	assert.Equal(t, "index.html", filenameFromURL("http://x/dir/"))
	assert.Equal(t, "index.html", filenameFromURL("http://x/?a=b/c"))
}

func TestSessionCommands(t *testing.T) {
	f := newFixture(t, "")

	require.NoError(t, f.run("agent ie6"))
	assert.Equal(t, agents["ie6"], f.browser.Agent())
	require.NoError(t, f.run("agent 'my agent/1.0'"))
	assert.Equal(t, "my agent/1.0", f.browser.Agent())

	require.NoError(t, f.run("add_extra_header X-Test yes", "show_extra_headers"))
	assert.Contains(t, f.out.String(), `"X-Test" = "yes"`)
	require.NoError(t, f.run("clear_extra_headers"))
	assert.NotContains(t, f.browser.Headers(), "X-Test")

	require.NoError(t, f.run(
		"go ${base}/http_auth",
		"code 401",
		"add_auth Protected ${base}/http_auth test password",
		"go ${base}/http_auth",
		"code 200",
		"find 'you made it'",
	))
}

func TestCookieCommands(t *testing.T) {
	f := newFixture(t, "")
	f.interp.Namespace().SetGlobal("jar", filepath.Join(t.TempDir(), "cookies.gz"))

	require.NoError(t, f.run(
		"go ${base}/increment",
		"find 'visit #1'",
		"save_cookies ${jar}",
		"clear_cookies",
		"show_cookies",
		"go ${base}/",
		"find 'visit #0'",
		"load_cookies ${jar}",
		"show_cookies",
		"go ${base}/",
		"find 'visit #1'",
	))
	out := f.out.String()
	assert.Contains(t, out, "There are no cookies in the cookie jar.")
	assert.Contains(t, out, "There are 1 cookie(s) in the cookie jar.")
}

func TestConfigAndDebug(t *testing.T) {
	f := newFixture(t, "")

	require.NoError(t, f.run("config", "config max_refresh_hops", "config max_refresh_hops 3"))
	out := f.out.String()
	assert.Contains(t, out, "\tacknowledge_equiv_refresh : true\n")
	assert.Contains(t, out, "key max_refresh_hops: value 10")
	assert.Equal(t, 3, f.browser.Options().MaxRefreshHops)

	assert.ErrorIs(t, f.run("config no_such_key"), browser.ErrUnknownOption)
	assert.Error(t, f.run("config with_default_realm maybe"))

	require.NoError(t, f.run("debug http 1", "debug commands on", "debug equiv-refresh 0", "echo traced"))
	assert.Equal(t, 1, f.logs.FilterMessage("executing command").FilterField(zap.String("command", "echo")).Len())
	assert.Error(t, f.run("debug nope 1"))
	assert.Error(t, f.run("debug http maybe"))

	require.NoError(t, f.run("reset_browser"))
	assert.Equal(t, 10, f.browser.Options().MaxRefreshHops)
}

func TestVariablesAndInput(t *testing.T) {
	f := newFixture(t, "john\nsecret\n")

	require.NoError(t, f.run(
		"setlocal who world",
		"setglobal g 42",
		"getinput 'name? '",
		"getpassword 'password? '",
		"echo ${who} ${g} ${__input__} ${__password__}",
	))
	assert.Contains(t, f.out.String(), "name? ")
	assert.Contains(t, f.out.String(), "world 42 john secret\n")

	v, ok := f.interp.Namespace().Lookup("g")
	require.True(t, ok)
	assert.Equal(t, "42", v)
	_, ok = f.interp.Namespace().Lookup("who")
	assert.False(t, ok)

	assert.Error(t, f.run("getinput 'more? '"))
}

func TestRunfileAndCleanup(t *testing.T) {
	f := newFixture(t, "")
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.twill"), []byte("setglobal a ran\nexit\nsetglobal never 1\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.twill"), []byte("setglobal b ${a}\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "cleanup.txt"), []byte("echo cleaned\n"), 0o644))
	f.interp.Namespace().SetGlobal("dir", dir)

	require.NoError(t, f.run(
		"add_cleanup ${dir}/cleanup.txt",
		"rf ${dir}",
		"echo ${b}",
	))
	assert.Equal(t, "ran\ncleaned\n", f.out.String())

	_, ok := f.interp.Namespace().Lookup("never")
	assert.False(t, ok)
}

func TestSleepAndExit(t *testing.T) {
	f := newFixture(t, "")

	require.NoError(t, f.run("sleep 0"))
	assert.Error(t, f.run("sleep soon"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := sleep(ctx, nil, []string{"5"})
	assert.ErrorIs(t, err, context.Canceled)

	err = f.run("exit 3", "echo unreachable")
	var abort *script.AbortError
	require.ErrorAs(t, err, &abort)
	assert.Equal(t, 3, abort.Code)
	assert.Empty(t, f.out.String())

	assert.Error(t, f.run("exit soon"))
}
