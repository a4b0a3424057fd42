package httpclient

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/GriffinCanCode/twill/internal/logging"
	"github.com/go-resty/resty/v2"
	"github.com/hashicorp/go-retryablehttp"
	"golang.org/x/time/rate"
)

// DefaultAccept is the Accept header sent with every request.
const DefaultAccept = "text/html; */*"

// Config configures a Client.
type Config struct {
	UserAgent    string
	Retries      int
	RateLimit    float64 // requests per second, <= 0 means unlimited
	VerifyTLS    bool
	MaxRedirects int
	// Transport replaces the pooled default transport when set.
	Transport http.RoundTripper
	Logger    *logging.Logger
}

// Client wraps resty with rate limiting, a persistent cookie jar and the
// default headers of a browsing session.
type Client struct {
	Resty   *resty.Client
	Limiter *rate.Limiter
	Jar     *Jar
	Mu      sync.RWMutex

	userAgent string
}

// New creates a client. Timeouts are left to the transport defaults.
func New(cfg Config) (*Client, error) {
	transport := cfg.Transport
	if transport == nil {
		// pooled transport from cleanhttp via retryablehttp
		retryClient := retryablehttp.NewClient()
		retryClient.Logger = nil
		base, ok := retryClient.HTTPClient.Transport.(*http.Transport)
		if !ok {
			return nil, fmt.Errorf("unexpected transport type %T", retryClient.HTTPClient.Transport)
		}
		base.TLSClientConfig = &tls.Config{InsecureSkipVerify: !cfg.VerifyTLS} //nolint:gosec // configurable
		transport = base
	}

	maxRedirects := cfg.MaxRedirects
	if maxRedirects <= 0 {
		maxRedirects = 10
	}

	jar := NewJar()

	restyClient := resty.New()
	restyClient.
		SetTransport(transport).
		SetCookieJar(jar).
		SetRedirectPolicy(resty.FlexibleRedirectPolicy(maxRedirects)).
		SetRetryCount(cfg.Retries).
		SetRetryWaitTime(1 * time.Second).
		SetRetryMaxWaitTime(30 * time.Second)

	if cfg.Logger != nil {
		restyClient.SetLogger(cfg.Logger.Named("http").Sugar())
	}

	c := &Client{
		Resty:     restyClient,
		Limiter:   rate.NewLimiter(rate.Inf, 0),
		Jar:       jar,
		userAgent: cfg.UserAgent,
	}
	c.SetRateLimit(cfg.RateLimit)
	c.ResetHeaders()

	return c, nil
}

// SetHeader adds default header
func (c *Client) SetHeader(key, value string) {
	c.Mu.Lock()
	defer c.Mu.Unlock()
	c.Resty.SetHeader(key, value)
}

// Header returns a default header value.
func (c *Client) Header(key string) string {
	c.Mu.RLock()
	defer c.Mu.RUnlock()
	return c.Resty.Header.Get(key)
}

// GetHeaders returns copy of all headers
func (c *Client) GetHeaders() map[string]string {
	c.Mu.RLock()
	defer c.Mu.RUnlock()

	headers := make(map[string]string)
	for k, v := range c.Resty.Header {
		if len(v) > 0 {
			headers[k] = v[0]
		}
	}
	return headers
}

// ResetHeaders drops every default header and restores Accept and User-Agent.
func (c *Client) ResetHeaders() {
	c.Mu.Lock()
	defer c.Mu.Unlock()
	c.Resty.Header = http.Header{}
	c.Resty.SetHeader("Accept", DefaultAccept)
	if c.userAgent != "" {
		c.Resty.SetHeader("User-Agent", c.userAgent)
	}
}

// SetRateLimit configures rate limiting (requests per second)
func (c *Client) SetRateLimit(rps float64) {
	c.Mu.Lock()
	defer c.Mu.Unlock()
	if rps <= 0 {
		c.Limiter = rate.NewLimiter(rate.Inf, 0)
	} else {
		burst := int(rps)
		if burst < 1 {
			burst = 1
		}
		c.Limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// SetDebug toggles resty's request/response dumps.
func (c *Client) SetDebug(on bool) {
	c.Mu.Lock()
	defer c.Mu.Unlock()
	c.Resty.SetDebug(on)
}

// Request creates new request with rate limiting
func (c *Client) Request(ctx context.Context) (*resty.Request, error) {
	c.Mu.RLock()
	limiter := c.Limiter
	c.Mu.RUnlock()

	if err := limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit error: %w", err)
	}

	c.Mu.RLock()
	defer c.Mu.RUnlock()
	return c.Resty.R().SetContext(ctx), nil
}

// FinalURL returns the URL of the request that produced resp, after redirects.
func FinalURL(resp *resty.Response) string {
	if resp == nil {
		return ""
	}
	if raw := resp.RawResponse; raw != nil && raw.Request != nil && raw.Request.URL != nil {
		return raw.Request.URL.String()
	}
	if resp.Request != nil {
		return resp.Request.URL
	}
	return ""
}
