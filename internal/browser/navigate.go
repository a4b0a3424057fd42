package browser

import (
	"context"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/GriffinCanCode/twill/internal/document"
	"github.com/GriffinCanCode/twill/internal/httpclient"
	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

type journeyKind string

const (
	journeyOpen   journeyKind = "open"
	journeyFollow journeyKind = "follow"
	journeyReload journeyKind = "reload"
)

var basicRealm = regexp.MustCompile(`(?i)^Basic realm="(.*)"`)

// Go visits target. A url without a scheme is first resolved against the
// current page, then tried with http:// and https:// prefixes unless it
// starts with '.', '/' or '?'. The first variant that can be fetched wins.
func (b *Browser) Go(ctx context.Context, target string) error {
	attempts := b.candidates(target)
	var lastErr error
	for _, candidate := range attempts {
		err := b.journey(ctx, journeyOpen, candidate)
		if err == nil {
			b.metrics.ObserveNavigation(string(journeyOpen), nil)
			b.logger.Info("==> at", zap.String("url", b.URL()))
			return nil
		}
		lastErr = err
		b.logger.Info("cannot go", zap.String("url", candidate), zap.Error(err))
		if ctx.Err() != nil {
			break
		}
	}
	navErr := &NavigationError{URL: target, Attempts: attempts, Err: lastErr}
	b.metrics.ObserveNavigation(string(journeyOpen), navErr)
	return navErr
}

func (b *Browser) candidates(target string) []string {
	if strings.Contains(target, "://") {
		return []string{target}
	}
	var out []string
	if b.current != nil {
		if resolved, err := b.current.Resolve(target); err == nil {
			out = append(out, resolved)
		}
	}
	if !strings.HasPrefix(target, ".") && !strings.HasPrefix(target, "/") && !strings.HasPrefix(target, "?") {
		out = append(out, "http://"+target, "https://"+target)
	}
	return out
}

// Reload fetches the current url again.
func (b *Browser) Reload(ctx context.Context) error {
	if b.current == nil {
		return ErrNoPage
	}
	err := b.journey(ctx, journeyReload, b.current.URL)
	b.metrics.ObserveNavigation(string(journeyReload), err)
	if err == nil {
		b.logger.Info("==> reloaded")
	}
	return err
}

// Back returns to the previous page. It reports false and leaves the state
// unchanged when there is no history.
func (b *Browser) Back() bool {
	b.clearSelection()
	if len(b.history) == 0 {
		b.logger.Warn("==> back at empty page")
		return false
	}
	b.current = b.history[len(b.history)-1]
	b.history = b.history[:len(b.history)-1]
	b.metrics.ObserveNavigation("back", nil)
	b.logger.Info("==> back to", zap.String("url", b.URL()))
	return true
}

// Follow visits the first link of the current page matching pattern.
func (b *Browser) Follow(ctx context.Context, pattern string) error {
	if b.current == nil {
		return ErrNoPage
	}
	link, err := b.current.FindLink(pattern)
	if err != nil {
		return err
	}
	return b.FollowURL(ctx, link.URL)
}

// FollowURL visits href, resolving it against the current page.
func (b *Browser) FollowURL(ctx context.Context, href string) error {
	target := href
	if !strings.Contains(href, "://") && b.current != nil {
		resolved, err := b.current.Resolve(href)
		if err != nil {
			return err
		}
		target = resolved
	}
	err := b.journey(ctx, journeyFollow, target)
	b.metrics.ObserveNavigation(string(journeyFollow), err)
	if err == nil {
		b.logger.Info("==> at", zap.String("url", b.URL()))
	}
	return err
}

func (b *Browser) journey(ctx context.Context, kind journeyKind, target string) error {
	b.clearSelection()

	doc, err := b.fetch(ctx, target)
	if err != nil {
		return err
	}

	if kind != journeyReload && b.current != nil && b.current.URL != doc.URL {
		b.history = append(b.history, b.current)
	}
	b.current = doc
	return nil
}

// fetch GETs target, retrying once with stored credentials on a basic-auth
// challenge and following meta refreshes when enabled.
func (b *Browser) fetch(ctx context.Context, target string) (*document.Document, error) {
	resp, err := b.get(ctx, target, nil)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode() == http.StatusUnauthorized {
		if m := basicRealm.FindStringSubmatch(resp.Header().Get("WWW-Authenticate")); m != nil {
			if cred, ok := b.lookupCredentials(target, m[1]); ok {
				b.logger.Debug("retrying with credentials", zap.String("url", target), zap.String("realm", m[1]))
				resp, err = b.get(ctx, target, &cred)
				if err != nil {
					return nil, err
				}
			}
		}
	}

	doc, err := toDocument(resp)
	if err != nil {
		return nil, err
	}
	if b.options.AcknowledgeEquivRefresh {
		return b.followRefresh(ctx, doc)
	}
	return doc, nil
}

// followRefresh follows <meta http-equiv="refresh"> directives until a page
// has none, a url repeats or the hop limit is reached.
func (b *Browser) followRefresh(ctx context.Context, doc *document.Document) (*document.Document, error) {
	visited := map[string]bool{doc.URL: true}
	for hops := 0; ; hops++ {
		target, ok := doc.RefreshTarget()
		if !ok {
			return doc, nil
		}
		if visited[target] {
			b.logger.Warn("meta refresh loop detected", zap.String("url", target))
			return doc, nil
		}
		if hops >= b.options.MaxRefreshHops {
			b.logger.Warn("meta refresh limit reached",
				zap.String("url", target), zap.Int("hops", hops))
			return doc, nil
		}
		visited[target] = true
		b.metrics.IncRefreshHops()
		if b.showRefresh {
			b.logger.Info("following meta refresh", zap.String("url", target))
		} else {
			b.logger.Debug("following meta refresh", zap.String("url", target))
		}

		resp, err := b.get(ctx, target, nil)
		if err != nil {
			return nil, err
		}
		if doc, err = toDocument(resp); err != nil {
			return nil, err
		}
	}
}

func (b *Browser) get(ctx context.Context, target string, cred *Credential) (*resty.Response, error) {
	req, err := b.client.Request(ctx)
	if err != nil {
		return nil, err
	}
	if cred != nil {
		req.SetBasicAuth(cred.User, cred.Password)
	}

	start := time.Now()
	resp, err := req.Get(target)
	b.metrics.ObserveFetch(http.MethodGet, time.Since(start))
	if err != nil {
		return nil, fmt.Errorf("GET %s: %w", target, err)
	}
	return resp, nil
}

func toDocument(resp *resty.Response) (*document.Document, error) {
	return document.Parse(document.Response{
		URL:        httpclient.FinalURL(resp),
		StatusCode: resp.StatusCode(),
		Header:     resp.Header(),
		Body:       resp.Body(),
	})
}
