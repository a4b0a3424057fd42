package browser

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"github.com/GriffinCanCode/twill/internal/config"
	"github.com/GriffinCanCode/twill/internal/document"
	"github.com/GriffinCanCode/twill/internal/httpclient"
	"github.com/GriffinCanCode/twill/internal/logging"
	"github.com/GriffinCanCode/twill/internal/monitoring"
	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Config configures a Browser.
type Config struct {
	Browser config.BrowserConfig
	HTTP    config.HTTPConfig
	// Transport overrides the HTTP transport, mainly for tests.
	Transport http.RoundTripper
	Logger    *logging.Logger
	Metrics   *monitoring.Metrics
}

// CredentialKey identifies basic-auth credentials by url and realm. An empty
// realm is the default realm for the url.
type CredentialKey struct {
	URL   string
	Realm string
}

// Credential is a basic-auth user and password.
type Credential struct {
	User     string
	Password string
}

// Upload is a file queued for the next multipart submission.
type Upload struct {
	Field       string
	FileName    string
	ContentType string
	Data        []byte
}

// Browser is a stateful web session: the current page, history, form
// selection, credentials, headers and cookies.
type Browser struct {
	cfg     Config
	logger  *logging.Logger
	metrics *monitoring.Metrics

	client    *httpclient.Client
	options   Options
	sessionID string

	current    *document.Document
	history    []*document.Document
	creds      map[CredentialKey]Credential
	form       *document.Form
	lastSubmit *document.Control
	uploads    []*Upload
	firstErr   error

	showRefresh bool
}

// New creates a browser with default headers and options.
func New(cfg Config) (*Browser, error) {
	if cfg.Logger == nil {
		cfg.Logger = logging.NewNop()
	}
	b := &Browser{cfg: cfg, metrics: cfg.Metrics}
	if err := b.Reset(); err != nil {
		return nil, err
	}
	return b, nil
}

// Reset discards all session state: page, history, credentials, headers,
// cookies, options and the sticky first error.
func (b *Browser) Reset() error {
	client, err := httpclient.New(httpclient.Config{
		UserAgent:    b.cfg.Browser.UserAgent,
		Retries:      b.cfg.HTTP.Retries,
		RateLimit:    b.cfg.HTTP.RateLimit,
		VerifyTLS:    b.cfg.HTTP.VerifyTLS,
		MaxRedirects: b.cfg.HTTP.MaxRedirects,
		Transport:    b.cfg.Transport,
		Logger:       b.cfg.Logger,
	})
	if err != nil {
		return fmt.Errorf("failed to create http client: %w", err)
	}

	b.client = client
	b.options = DefaultOptions(b.cfg.Browser)
	b.sessionID = uuid.New().String()
	b.logger = b.cfg.Logger.Named("browser").With(zap.String("session", b.sessionID))

	b.current = nil
	b.history = nil
	b.creds = make(map[CredentialKey]Credential)
	b.clearSelection()
	b.firstErr = nil
	return nil
}

func (b *Browser) clearSelection() {
	b.form = nil
	b.lastSubmit = nil
	b.uploads = nil
}

// SessionID identifies the current session in logs.
func (b *Browser) SessionID() string { return b.sessionID }

// Client returns the HTTP client of the current session.
func (b *Browser) Client() *httpclient.Client { return b.client }

// Options returns the mutable runtime options.
func (b *Browser) Options() *Options { return &b.options }

// ResetOptions restores the configured default options.
func (b *Browser) ResetOptions() { b.options = DefaultOptions(b.cfg.Browser) }

// Page returns the current document, or nil.
func (b *Browser) Page() *document.Document { return b.current }

// URL returns the url of the current page, or "".
func (b *Browser) URL() string {
	if b.current == nil {
		return ""
	}
	return b.current.URL
}

// Code returns the status code of the current page, or 0.
func (b *Browser) Code() int {
	if b.current == nil {
		return 0
	}
	return b.current.StatusCode
}

// HTML returns the decoded text of the current page.
func (b *Browser) HTML() (string, error) {
	if b.current == nil {
		return "", ErrNoPage
	}
	return b.current.Text, nil
}

// Title returns the title of the current page.
func (b *Browser) Title() (string, error) {
	if b.current == nil {
		return "", fmt.Errorf("getting title: %w", ErrNoPage)
	}
	return b.current.Title, nil
}

// History returns the visited documents, oldest first.
func (b *Browser) History() []*document.Document { return b.history }

// Forms returns the forms of the current page.
func (b *Browser) Forms() []*document.Form {
	if b.current == nil {
		return nil
	}
	return b.current.Forms
}

// Form finds a form of the current page by key.
func (b *Browser) Form(key string) (*document.Form, error) {
	if b.current == nil {
		return nil, ErrNoPage
	}
	return b.current.Form(key)
}

// SelectedForm returns the form chosen by the last click, or nil.
func (b *Browser) SelectedForm() *document.Form { return b.form }

// Clicked records an interaction with control in form. Switching to another
// form forgets the last clicked submit control.
func (b *Browser) Clicked(form *document.Form, control *document.Control) {
	if b.form != form {
		b.form = form
		b.lastSubmit = nil
	}
	if control != nil && control.IsSubmit() {
		b.lastSubmit = control
	}
}

// ForgetSubmit drops the last clicked submit control.
func (b *Browser) ForgetSubmit() { b.lastSubmit = nil }

// AddUpload queues a file for the given file field. The content type is
// detected from the data when not given.
func (b *Browser) AddUpload(field, path, contentType string) (*Upload, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read upload: %w", err)
	}
	if contentType == "" {
		contentType = mimetype.Detect(data).String()
	}
	up := &Upload{
		Field:       field,
		FileName:    filepath.Base(path),
		ContentType: contentType,
		Data:        data,
	}
	for i, existing := range b.uploads {
		if existing.Field == field {
			b.uploads[i] = up
			return up, nil
		}
	}
	b.uploads = append(b.uploads, up)
	return up, nil
}

// Uploads returns the queued uploads.
func (b *Browser) Uploads() []*Upload { return b.uploads }

// AddCredentials stores basic-auth credentials for url and realm. With the
// with_default_realm option they are also stored for the url alone.
func (b *Browser) AddCredentials(url, realm, user, password string) {
	cred := Credential{User: user, Password: password}
	b.creds[CredentialKey{URL: url, Realm: realm}] = cred
	if b.options.WithDefaultRealm {
		b.creds[CredentialKey{URL: url}] = cred
	}
	b.logger.Info("Added auth info",
		zap.String("realm", realm), zap.String("url", url), zap.String("user", user))
}

func (b *Browser) lookupCredentials(url, realm string) (Credential, bool) {
	if c, ok := b.creds[CredentialKey{URL: url, Realm: realm}]; ok {
		return c, true
	}
	c, ok := b.creds[CredentialKey{URL: url}]
	return c, ok
}

// SetAgent sets the User-Agent header.
func (b *Browser) SetAgent(agent string) { b.client.SetHeader("User-Agent", agent) }

// Agent returns the User-Agent header.
func (b *Browser) Agent() string { return b.client.Header("User-Agent") }

// SetHeader adds a header sent with every request.
func (b *Browser) SetHeader(key, value string) { b.client.SetHeader(key, value) }

// Headers returns the headers sent with every request.
func (b *Browser) Headers() map[string]string { return b.client.GetHeaders() }

// ResetHeaders restores the default Accept and User-Agent headers only.
func (b *Browser) ResetHeaders() { b.client.ResetHeaders() }

// SetDebug toggles HTTP transaction dumps.
func (b *Browser) SetDebug(on bool) { b.client.SetDebug(on) }

// SetShowRefresh makes followed meta refreshes visible at info level.
func (b *Browser) SetShowRefresh(on bool) { b.showRefresh = on }

// FirstError returns the first error recorded in this session.
func (b *Browser) FirstError() error { return b.firstErr }

// RecordError remembers err unless an error was already recorded.
func (b *Browser) RecordError(err error) {
	if b.firstErr == nil && err != nil {
		b.firstErr = err
	}
}

// Restore puts back a page and first error saved before a reset.
func (b *Browser) Restore(page *document.Document, firstErr error) {
	b.current = page
	b.firstErr = firstErr
}
