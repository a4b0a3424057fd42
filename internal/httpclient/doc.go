// Package httpclient provides the HTTP transport used by the browser: a resty
// client with rate limiting, default session headers and a cookie jar that can
// be saved to and restored from disk.
package httpclient
