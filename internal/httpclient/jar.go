package httpclient

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/bytedance/sonic"
	"github.com/klauspost/compress/gzip"
	"golang.org/x/net/publicsuffix"
)

const cookieFileVersion = 1

// StoredCookie is a cookie as it was received, together with the URL that set it.
type StoredCookie struct {
	Origin   string    `json:"origin"`
	Name     string    `json:"name"`
	Value    string    `json:"value"`
	Domain   string    `json:"domain,omitempty"`
	Path     string    `json:"path,omitempty"`
	Expires  time.Time `json:"expires,omitempty"`
	Secure   bool      `json:"secure,omitempty"`
	HttpOnly bool      `json:"http_only,omitempty"`
	SameSite int       `json:"same_site,omitempty"`

	seq uint64
}

// Host returns the domain the cookie applies to.
func (c StoredCookie) Host() string {
	if c.Domain != "" {
		return strings.TrimPrefix(c.Domain, ".")
	}
	if u, err := url.Parse(c.Origin); err == nil {
		return u.Hostname()
	}
	return ""
}

func (c StoredCookie) expired(now time.Time) bool {
	return !c.Expires.IsZero() && !c.Expires.After(now)
}

type cookieKey struct {
	host, path, name string
}

type cookieFile struct {
	Version int            `json:"version"`
	Cookies []StoredCookie `json:"cookies"`
}

// Jar is an http.CookieJar that remembers every cookie it accepted so the
// session can be written to disk and replayed later.
type Jar struct {
	mu      sync.Mutex
	inner   *cookiejar.Jar
	entries map[cookieKey]*StoredCookie
	seq     uint64
	now     func() time.Time
}

// NewJar creates an empty jar backed by the public suffix list.
func NewJar() *Jar {
	j := &Jar{now: time.Now}
	j.reset()
	return j
}

func (j *Jar) reset() {
	inner, _ := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	j.inner = inner
	j.entries = make(map[cookieKey]*StoredCookie)
}

// SetCookies implements http.CookieJar.
func (j *Jar) SetCookies(u *url.URL, cookies []*http.Cookie) {
	j.mu.Lock()
	defer j.mu.Unlock()

	j.inner.SetCookies(u, cookies)

	now := j.now()
	origin := (&url.URL{Scheme: u.Scheme, Host: u.Host, Path: u.Path}).String()
	for _, c := range cookies {
		if c == nil || c.Name == "" {
			continue
		}
		sc := StoredCookie{
			Origin:   origin,
			Name:     c.Name,
			Value:    c.Value,
			Domain:   c.Domain,
			Path:     c.Path,
			Secure:   c.Secure,
			HttpOnly: c.HttpOnly,
			SameSite: int(c.SameSite),
		}
		switch {
		case c.MaxAge < 0:
			sc.Expires = now.Add(-time.Second)
		case c.MaxAge > 0:
			sc.Expires = now.Add(time.Duration(c.MaxAge) * time.Second)
		default:
			sc.Expires = c.Expires
		}

		path := sc.Path
		if path == "" || path[0] != '/' {
			path = defaultPath(u.Path)
		}
		key := cookieKey{host: strings.ToLower(sc.Host()), path: path, name: sc.Name}
		if c.Domain == "" {
			key.host = strings.ToLower(u.Hostname())
		}

		if sc.expired(now) {
			delete(j.entries, key)
			continue
		}
		j.seq++
		sc.seq = j.seq
		if prev, ok := j.entries[key]; ok {
			sc.seq = prev.seq
		}
		j.entries[key] = &sc
	}
}

// Cookies implements http.CookieJar.
func (j *Jar) Cookies(u *url.URL) []*http.Cookie {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.inner.Cookies(u)
}

// All returns the unexpired cookies in the order they were first set.
func (j *Jar) All() []StoredCookie {
	j.mu.Lock()
	defer j.mu.Unlock()

	now := j.now()
	out := make([]StoredCookie, 0, len(j.entries))
	for _, c := range j.entries {
		if c.expired(now) {
			continue
		}
		out = append(out, *c)
	}
	sort.Slice(out, func(a, b int) bool { return out[a].seq < out[b].seq })
	return out
}

// Len returns the number of unexpired cookies.
func (j *Jar) Len() int {
	return len(j.All())
}

// Clear forgets every cookie.
func (j *Jar) Clear() {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.reset()
}

// Save writes the jar to path as gzip-compressed JSON.
func (j *Jar) Save(path string) error {
	data, err := sonic.Marshal(cookieFile{Version: cookieFileVersion, Cookies: j.All()})
	if err != nil {
		return fmt.Errorf("failed to encode cookies: %w", err)
	}

	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	if _, err := gz.Write(data); err != nil {
		return fmt.Errorf("failed to compress cookies: %w", err)
	}
	if err := gz.Close(); err != nil {
		return fmt.Errorf("failed to compress cookies: %w", err)
	}

	if err := os.WriteFile(path, buf.Bytes(), 0o600); err != nil {
		return fmt.Errorf("failed to write cookie file: %w", err)
	}
	return nil
}

// Load replaces the jar contents with the cookies stored at path.
func (j *Jar) Load(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open cookie file: %w", err)
	}
	defer f.Close()

	gz, err := gzip.NewReader(f)
	if err != nil {
		return fmt.Errorf("invalid cookie file: %w", err)
	}
	defer gz.Close()

	data, err := io.ReadAll(gz)
	if err != nil {
		return fmt.Errorf("invalid cookie file: %w", err)
	}

	var file cookieFile
	if err := sonic.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("invalid cookie file: %w", err)
	}
	if file.Version != cookieFileVersion {
		return fmt.Errorf("unsupported cookie file version %d", file.Version)
	}

	j.Clear()
	for _, sc := range file.Cookies {
		origin, err := url.Parse(sc.Origin)
		if err != nil {
			continue
		}
		j.SetCookies(origin, []*http.Cookie{{
			Name:     sc.Name,
			Value:    sc.Value,
			Domain:   sc.Domain,
			Path:     sc.Path,
			Expires:  sc.Expires,
			Secure:   sc.Secure,
			HttpOnly: sc.HttpOnly,
			SameSite: http.SameSite(sc.SameSite),
		}})
	}
	return nil
}

// defaultPath is the RFC 6265 section 5.1.4 default cookie path.
func defaultPath(p string) string {
	if p == "" || p[0] != '/' {
		return "/"
	}
	i := strings.LastIndex(p, "/")
	if i == 0 {
		return "/"
	}
	return p[:i]
}
