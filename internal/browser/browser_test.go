package browser

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/GriffinCanCode/twill/internal/config"
	"github.com/GriffinCanCode/twill/internal/logging"
	"github.com/GriffinCanCode/twill/internal/monitoring"
	"github.com/GriffinCanCode/twill/internal/testutil"
	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func newBrowser(t *testing.T, transport http.RoundTripper) *Browser {
	t.Helper()
	cfg := config.Default()
	b, err := New(Config{
		Browser:   cfg.Browser,
		HTTP:      cfg.HTTP,
		Transport: transport,
		Logger:    logging.FromZap(zaptest.NewLogger(t)),
	})
	require.NoError(t, err)
	return b
}

// recordingTransport records every requested url and refuses the ones for
// which accept returns false.
type recordingTransport struct {
	mu     sync.Mutex
	urls   []string
	accept func(*http.Request) bool
}

func (rt *recordingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	rt.mu.Lock()
	rt.urls = append(rt.urls, req.URL.String())
	rt.mu.Unlock()

	if !rt.accept(req) {
		return nil, errors.New("connection refused")
	}
	return &http.Response{
		StatusCode: http.StatusOK,
		Header:     http.Header{"Content-Type": []string{"text/html"}},
		Body:       io.NopCloser(strings.NewReader("<title>ok</title>")),
		Request:    req,
	}, nil
}

func TestGoTriesSchemeVariants(t *testing.T) {
	rt := &recordingTransport{accept: func(r *http.Request) bool { return r.URL.Scheme == "https" }}
	b := newBrowser(t, rt)

	require.NoError(t, b.Go(context.Background(), "example.test/path"))

	assert.Equal(t, []string{"http://example.test/path", "https://example.test/path"}, rt.urls)
	assert.Equal(t, "https://example.test/path", b.URL())
	assert.Equal(t, "ok", b.Page().Title)
}

func TestGoResolvesAgainstCurrentPageFirst(t *testing.T) {
	rt := &recordingTransport{accept: func(r *http.Request) bool { return true }}
	b := newBrowser(t, rt)
	ctx := context.Background()

	require.NoError(t, b.Go(ctx, "http://example.test/dir/page"))
	require.NoError(t, b.Go(ctx, "other"))

	assert.Equal(t, []string{"http://example.test/dir/page", "http://example.test/dir/other"}, rt.urls)
}

func TestGoReportsEveryAttempt(t *testing.T) {
	rt := &recordingTransport{accept: func(r *http.Request) bool { return false }}
	b := newBrowser(t, rt)

	err := b.Go(context.Background(), "nowhere.test")

	var navErr *NavigationError
	require.ErrorAs(t, err, &navErr)
	assert.Equal(t, "nowhere.test", navErr.URL)
	assert.Equal(t, []string{"http://nowhere.test", "https://nowhere.test"}, navErr.Attempts)
	assert.ErrorContains(t, err, "connection refused")
	assert.Nil(t, b.Page())
}

func TestGoRelativeWithoutPage(t *testing.T) {
	rt := &recordingTransport{accept: func(r *http.Request) bool { return true }}
	b := newBrowser(t, rt)

	err := b.Go(context.Background(), "/absolute/path")

	var navErr *NavigationError
	require.ErrorAs(t, err, &navErr)
	assert.Empty(t, navErr.Attempts)
	assert.Empty(t, rt.urls)
}

func TestNavigationHistory(t *testing.T) {
	srv := testutil.NewServer(t)
	b := newBrowser(t, nil)
	ctx := context.Background()

	require.NoError(t, b.Go(ctx, srv.URL+"/"))
	assert.Equal(t, http.StatusOK, b.Code())
	title, err := b.Title()
	require.NoError(t, err)
	assert.Equal(t, "Hello, world!", title)
	assert.Empty(t, b.History())

	require.NoError(t, b.Follow(ctx, "increment"))
	assert.Equal(t, srv.URL+"/increment", b.URL())
	assert.Len(t, b.History(), 1)

	require.NoError(t, b.Reload(ctx))
	assert.Len(t, b.History(), 1)
	html, err := b.HTML()
	require.NoError(t, err)
	assert.Contains(t, html, "visit #2")

	require.NoError(t, b.Go(ctx, srv.URL+"/increment"))
	assert.Len(t, b.History(), 1, "same url does not grow history")

	assert.True(t, b.Back())
	assert.Equal(t, srv.URL+"/", b.URL())
	assert.False(t, b.Back())
	assert.Equal(t, srv.URL+"/", b.URL())
}

func TestFollowMissingLink(t *testing.T) {
	srv := testutil.NewServer(t)
	b := newBrowser(t, nil)
	ctx := context.Background()

	assert.ErrorIs(t, b.Follow(ctx, "anything"), ErrNoPage)

	require.NoError(t, b.Go(ctx, srv.URL+"/broken_linktext"))
	require.NoError(t, b.Follow(ctx, "some text"))
	assert.Equal(t, srv.URL+"/", b.URL())

	assert.Error(t, b.Follow(ctx, "no-such-link"))
}

func TestRedirectSetsFinalURL(t *testing.T) {
	srv := testutil.NewServer(t)
	b := newBrowser(t, nil)

	require.NoError(t, b.Go(context.Background(), srv.URL+"/redirect"))
	assert.Equal(t, srv.URL+"/plaintext", b.URL())
	assert.False(t, b.Page().IsHTML())
}

func TestMetaRefresh(t *testing.T) {
	srv := testutil.NewServer(t)
	ctx := context.Background()

	tests := []struct {
		path string
		want string
	}{
		{"/test_refresh", "/login"},
		{"/test_refresh2", "/login"},
		{"/test_refresh3", "/test_refresh3"},
		{"/test_refresh4", "/login"},
		{"/test_refresh5", "/login"},
		{"/refresh_ping", "/refresh_pong"},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			b := newBrowser(t, nil)
			require.NoError(t, b.Go(ctx, srv.URL+tt.path))
			assert.Equal(t, srv.URL+tt.want, b.URL())
		})
	}

	t.Run("disabled", func(t *testing.T) {
		b := newBrowser(t, nil)
		require.NoError(t, b.Options().Set("acknowledge_equiv_refresh", "false"))
		require.NoError(t, b.Go(ctx, srv.URL+"/test_refresh"))
		assert.Equal(t, srv.URL+"/test_refresh", b.URL())
	})

	t.Run("hop limit", func(t *testing.T) {
		b := newBrowser(t, nil)
		require.NoError(t, b.Options().Set("max_refresh_hops", "0"))
		require.NoError(t, b.Go(ctx, srv.URL+"/test_refresh"))
		assert.Equal(t, srv.URL+"/test_refresh", b.URL())
	})
}

func TestBasicAuth(t *testing.T) {
	srv := testutil.NewServer(t)
	ctx := context.Background()
	target := srv.URL + "/http_auth"

	t.Run("realm", func(t *testing.T) {
		b := newBrowser(t, nil)
		require.NoError(t, b.Go(ctx, target))
		assert.Equal(t, http.StatusUnauthorized, b.Code())

		b.AddCredentials(target, testutil.AuthRealm, testutil.AuthUser, testutil.AuthPassword)
		require.NoError(t, b.Go(ctx, target))
		assert.Equal(t, http.StatusOK, b.Code())
	})

	t.Run("wrong realm", func(t *testing.T) {
		b := newBrowser(t, nil)
		b.AddCredentials(target, "Other", testutil.AuthUser, testutil.AuthPassword)
		require.NoError(t, b.Go(ctx, target))
		assert.Equal(t, http.StatusUnauthorized, b.Code())
	})

	t.Run("default realm", func(t *testing.T) {
		b := newBrowser(t, nil)
		b.Options().WithDefaultRealm = true
		b.AddCredentials(target, "Other", testutil.AuthUser, testutil.AuthPassword)
		require.NoError(t, b.Go(ctx, target))
		assert.Equal(t, http.StatusOK, b.Code())
	})
}

func TestSubmitLoginKeepsSession(t *testing.T) {
	srv := testutil.NewServer(t)
	b := newBrowser(t, nil)
	ctx := context.Background()

	require.NoError(t, b.Go(ctx, srv.URL+"/login"))
	form, err := b.Form("1")
	require.NoError(t, err)

	field, err := form.Field("username")
	require.NoError(t, err)
	require.NoError(t, field.Set("john"))
	b.Clicked(form, field.Members()[0])

	button, err := form.Field("submit")
	require.NoError(t, err)
	b.Clicked(form, button.Members()[0])

	require.NoError(t, b.Submit(ctx, ""))

	assert.Equal(t, srv.URL+"/", b.URL())
	html, _ := b.HTML()
	assert.Contains(t, html, `You are logged in as "john".`)
	assert.Len(t, b.History(), 1)
	assert.Nil(t, b.SelectedForm())
}

func TestSubmitExplicitButtonAndReferer(t *testing.T) {
	srv := testutil.NewServer(t)
	b := newBrowser(t, nil)
	ctx := context.Background()

	require.NoError(t, b.Go(ctx, srv.URL+"/multisubmitform"))
	require.NoError(t, b.Submit(ctx, "sub_b"))

	html, _ := b.HTML()
	assert.Contains(t, html, "used_sub_b")
	assert.NotContains(t, html, "used_sub_a")
	assert.Contains(t, html, "referer: "+srv.URL+"/multisubmitform")
}

func TestSubmitDefaultsToFirstSubmit(t *testing.T) {
	srv := testutil.NewServer(t)
	b := newBrowser(t, nil)
	ctx := context.Background()

	require.NoError(t, b.Go(ctx, srv.URL+"/multisubmitform"))
	require.NoError(t, b.Submit(ctx, ""))

	html, _ := b.HTML()
	assert.Contains(t, html, "used_sub_a")
}

func TestSubmitWithoutSubmitControl(t *testing.T) {
	srv := testutil.NewServer(t)
	b := newBrowser(t, nil)
	ctx := context.Background()

	require.NoError(t, b.Go(ctx, srv.URL+"/single_field"))
	require.NoError(t, b.Submit(ctx, ""))

	body, err := b.HTML()
	require.NoError(t, err)
	assert.Equal(t, "n=v", body)
	assert.Equal(t, srv.URL+"/echo_body", b.URL())
}

func TestSubmitFormSelection(t *testing.T) {
	srv := testutil.NewServer(t)
	b := newBrowser(t, nil)
	ctx := context.Background()

	assert.ErrorIs(t, b.Submit(ctx, ""), ErrNoPage)

	require.NoError(t, b.Go(ctx, srv.URL+"/plaintext"))
	assert.ErrorIs(t, b.Submit(ctx, ""), ErrNoForms)

	require.NoError(t, b.Go(ctx, srv.URL+"/test_global_form"))
	require.Len(t, b.Forms(), 3)
	assert.True(t, b.Forms()[0].Global)
	assert.ErrorIs(t, b.Submit(ctx, ""), ErrFormSelectionRequired)

	form, err := b.Form("login2")
	require.NoError(t, err)
	field, err := form.Field("hello")
	require.NoError(t, err)
	require.NoError(t, field.Set("world"))
	b.Clicked(form, field.Members()[0])

	require.NoError(t, b.Submit(ctx, ""))
	html, _ := b.HTML()
	assert.Contains(t, html, "k: '''hello''' : '''world'''")
}

func TestSubmitGetReplacesQuery(t *testing.T) {
	srv := testutil.NewServer(t)
	b := newBrowser(t, nil)
	ctx := context.Background()

	require.NoError(t, b.Go(ctx, srv.URL+"/get_form"))
	form, err := b.Form("search")
	require.NoError(t, err)
	field, err := form.Field("q")
	require.NoError(t, err)
	require.NoError(t, field.Set("hello world"))

	require.NoError(t, b.Submit(ctx, ""))

	assert.Equal(t, srv.URL+"/display_get?q=hello+world&go=Search", b.URL())
	html, _ := b.HTML()
	assert.Contains(t, html, "k: '''q''' : '''hello world'''")
	assert.NotContains(t, html, "stale")
}

func TestSubmitCheckboxGroup(t *testing.T) {
	srv := testutil.NewServer(t)
	b := newBrowser(t, nil)
	ctx := context.Background()

	require.NoError(t, b.Go(ctx, srv.URL+"/test_checkboxes"))
	form, err := b.Form("1")
	require.NoError(t, err)
	field, err := form.Field("checkboxtest")
	require.NoError(t, err)

	require.NoError(t, field.Set("+one"))
	require.NoError(t, field.Set("three"))
	require.NoError(t, b.Submit(ctx, ""))

	html, _ := b.HTML()
	assert.Contains(t, html, "CHECKBOXTEST: ==one,three==")
}

func TestSubmitUpload(t *testing.T) {
	srv := testutil.NewServer(t)
	b := newBrowser(t, nil)
	ctx := context.Background()

	path := filepath.Join(t.TempDir(), "notes.txt")
	require.NoError(t, os.WriteFile(path, []byte("hello upload"), 0o600))

	require.NoError(t, b.Go(ctx, srv.URL+"/upload_file"))
	form, err := b.Form("1")
	require.NoError(t, err)
	note, err := form.Field("note")
	require.NoError(t, err)
	require.NoError(t, note.Set("attached"))

	up, err := b.AddUpload("upload", path, "")
	require.NoError(t, err)
	assert.Equal(t, "text/plain; charset=utf-8", up.ContentType)

	require.NoError(t, b.Submit(ctx, ""))

	html, _ := b.HTML()
	assert.Contains(t, html, "FILE: notes.txt")
	assert.Contains(t, html, "TYPE: text/plain; charset=utf-8")
	assert.Contains(t, html, "NOTE: attached")
	assert.Contains(t, html, "BODY: hello upload")
	assert.Empty(t, b.Uploads())
}

func TestSubmitReencodesPayload(t *testing.T) {
	srv := testutil.NewServer(t)
	b := newBrowser(t, nil)
	ctx := context.Background()

	require.NoError(t, b.Go(ctx, srv.URL+"/latin1"))
	assert.Equal(t, "café", b.Page().Title)

	form, err := b.Form("1")
	require.NoError(t, err)
	field, err := form.Field("word")
	require.NoError(t, err)
	require.NoError(t, field.Set("café"))

	require.NoError(t, b.Submit(ctx, ""))

	html, _ := b.HTML()
	assert.Contains(t, html, "k: '''word''' : '''caf\xe9'''")
}

func TestCookiesSaveLoad(t *testing.T) {
	srv := testutil.NewServer(t)
	b := newBrowser(t, nil)
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "cookies")

	require.NoError(t, b.Go(ctx, srv.URL+"/"))
	require.NoError(t, b.Go(ctx, srv.URL+"/increment"))
	require.NoError(t, b.Go(ctx, srv.URL+"/increment"))
	require.NoError(t, b.SaveCookies(path))

	var out bytes.Buffer
	b.WriteCookies(&out)
	assert.Contains(t, out.String(), "1 cookie(s)")

	require.NoError(t, b.Reset())
	require.NoError(t, b.Go(ctx, srv.URL+"/"))
	html, _ := b.HTML()
	assert.Contains(t, html, "visit #0")

	require.NoError(t, b.LoadCookies(path))
	require.NoError(t, b.Go(ctx, srv.URL+"/"))
	html, _ = b.HTML()
	assert.Contains(t, html, "visit #2")

	b.ClearCookies()
	out.Reset()
	b.WriteCookies(&out)
	assert.Contains(t, out.String(), "no cookies")
}

func TestResetRestoresDefaults(t *testing.T) {
	srv := testutil.NewServer(t)
	b := newBrowser(t, nil)
	ctx := context.Background()
	session := b.SessionID()

	require.NoError(t, b.Go(ctx, srv.URL+"/"))
	require.NoError(t, b.Go(ctx, srv.URL+"/increment"))
	b.SetAgent("custom")
	b.SetHeader("X-Extra", "1")
	b.Options().ReadonlyControlsWriteable = true
	b.RecordError(errors.New("boom"))

	require.NoError(t, b.Reset())

	assert.Nil(t, b.Page())
	assert.Empty(t, b.History())
	assert.Equal(t, "TwillBrowser/2.0", b.Agent())
	assert.NotContains(t, b.Headers(), "X-Extra")
	assert.False(t, b.Options().ReadonlyControlsWriteable)
	assert.NoError(t, b.FirstError())
	assert.NotEqual(t, session, b.SessionID())
}

func TestRecordErrorKeepsFirst(t *testing.T) {
	b := newBrowser(t, nil)
	first := errors.New("first")

	b.RecordError(first)
	b.RecordError(errors.New("second"))
	assert.Equal(t, first, b.FirstError())

	b.Restore(nil, nil)
	assert.NoError(t, b.FirstError())
}

func TestClickedTracksSubmitControl(t *testing.T) {
	srv := testutil.NewServer(t)
	b := newBrowser(t, nil)
	ctx := context.Background()

	require.NoError(t, b.Go(ctx, srv.URL+"/test_global_form"))
	forms := b.Forms()

	b.Clicked(forms[1], forms[1].Controls[1])
	assert.Same(t, forms[1], b.SelectedForm())
	assert.Same(t, forms[1].Controls[1], b.lastSubmit)

	b.Clicked(forms[2], forms[2].Controls[0])
	assert.Same(t, forms[2], b.SelectedForm())
	assert.Nil(t, b.lastSubmit)
}

func TestOptions(t *testing.T) {
	b := newBrowser(t, nil)
	opts := b.Options()

	v, err := opts.Get("acknowledge_equiv_refresh")
	require.NoError(t, err)
	assert.Equal(t, "true", v)

	require.NoError(t, opts.Set("readonly_controls_writeable", "on"))
	assert.True(t, opts.ReadonlyControlsWriteable)

	assert.ErrorIs(t, opts.Set("require_tidy", "1"), ErrUnknownOption)
	assert.Error(t, opts.Set("with_default_realm", "maybe"))
	assert.Error(t, opts.Set("max_refresh_hops", "-1"))

	assert.Equal(t, []string{
		"acknowledge_equiv_refresh",
		"max_refresh_hops",
		"readonly_controls_writeable",
		"with_default_realm",
	}, OptionNames())

	b.ResetOptions()
	assert.False(t, opts.ReadonlyControlsWriteable)
}

func TestWriteListings(t *testing.T) {
	srv := testutil.NewServer(t)
	b := newBrowser(t, nil)
	ctx := context.Background()

	var out bytes.Buffer
	b.WriteLinks(&out)
	assert.Contains(t, out.String(), "no links")

	out.Reset()
	b.WriteHistory(&out)
	assert.Contains(t, out.String(), "no history")

	require.NoError(t, b.Go(ctx, srv.URL+"/"))
	require.NoError(t, b.Go(ctx, srv.URL+"/login"))

	out.Reset()
	b.WriteHistory(&out)
	assert.Contains(t, out.String(), "1. "+srv.URL+"/")

	out.Reset()
	b.WriteForms(&out)
	assert.Contains(t, out.String(), "Form #1")
	assert.Contains(t, out.String(), "username")
	assert.Contains(t, out.String(), "submit me")

	require.True(t, b.Back())
	out.Reset()
	b.WriteLinks(&out)
	assert.Contains(t, out.String(), "increment ==> ./increment")
}

func TestNavigationMetrics(t *testing.T) {
	srv := testutil.NewServer(t)
	metrics := monitoring.NewMetrics()
	cfg := config.Default()
	b, err := New(Config{Browser: cfg.Browser, HTTP: cfg.HTTP, Metrics: metrics})
	require.NoError(t, err)

	require.NoError(t, b.Go(context.Background(), srv.URL+"/test_refresh"))

	assert.Equal(t, 1.0, promtest.ToFloat64(metrics.NavigationsTotal.WithLabelValues("open", "ok")))
	assert.Equal(t, 1.0, promtest.ToFloat64(metrics.RefreshHops))
}
