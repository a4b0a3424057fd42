package document

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/antchfx/htmlquery"
	"golang.org/x/net/html"
)

var (
	// ErrNoSuchForm is returned when no form matches a form key.
	ErrNoSuchForm = errors.New("no matching forms")
	// ErrNoSuchLink is returned when no link matches a pattern.
	ErrNoSuchLink = errors.New("no link matches")
)

// Link is an anchor with an href.
type Link struct {
	Text string
	URL  string
}

// Document is a fetched page together with everything parsed from it.
type Document struct {
	URL         string
	StatusCode  int
	Header      http.Header
	ContentType string
	Encoding    string
	Raw         []byte
	Text        string
	Title       string
	Links       []Link
	Forms       []*Form

	root *html.Node
}

// Response is the raw material of a document.
type Response struct {
	URL        string
	StatusCode int
	Header     http.Header
	Body       []byte
}

// Parse decodes and parses a response. Malformed markup never fails; only
// the DOM construction itself can.
func Parse(resp Response) (*Document, error) {
	header := resp.Header
	if header == nil {
		header = http.Header{}
	}
	contentType := header.Get("Content-Type")
	text, enc := decodeBody(resp.Body, contentType)

	root, err := html.Parse(strings.NewReader(text))
	if err != nil {
		return nil, fmt.Errorf("failed to parse document: %w", err)
	}

	doc := &Document{
		URL:         resp.URL,
		StatusCode:  resp.StatusCode,
		Header:      header,
		ContentType: contentType,
		Encoding:    enc,
		Raw:         resp.Body,
		Text:        text,
		Forms:       parseForms(text),
		root:        root,
	}

	gq := goquery.NewDocumentFromNode(root)
	doc.Title = strings.TrimSpace(gq.Find("title").First().Text())
	gq.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		doc.Links = append(doc.Links, Link{
			Text: strings.TrimSpace(s.Text()),
			URL:  href,
		})
	})

	return doc, nil
}

// IsHTML reports whether the document was served as text/html.
func (d *Document) IsHTML() bool {
	mediaType, _, _ := strings.Cut(d.ContentType, ";")
	return strings.EqualFold(strings.TrimSpace(mediaType), "text/html")
}

// Form finds a form by exact id, then by regex search on its name, then by
// 1-based position.
func (d *Document) Form(key string) (*Form, error) {
	for _, f := range d.Forms {
		if f.ID != "" && f.ID == key {
			return f, nil
		}
	}
	if re, err := regexp.Compile(key); err == nil {
		for _, f := range d.Forms {
			if f.Name != "" && re.MatchString(f.Name) {
				return f, nil
			}
		}
	}
	if n, err := strconv.Atoi(key); err == nil && n >= 1 && n <= len(d.Forms) {
		return d.Forms[n-1], nil
	}
	return nil, fmt.Errorf("%w for %q", ErrNoSuchForm, key)
}

// FindLink returns the first link whose text or url matches pattern.
func (d *Document) FindLink(pattern string) (*Link, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid link pattern: %w", err)
	}
	for i := range d.Links {
		l := &d.Links[i]
		if re.MatchString(l.Text) || re.MatchString(l.URL) {
			return l, nil
		}
	}
	return nil, fmt.Errorf("%w %q", ErrNoSuchLink, pattern)
}

// Resolve resolves ref against the document url.
func (d *Document) Resolve(ref string) (string, error) {
	return ResolveURL(d.URL, ref)
}

// XPath evaluates expr against the document and returns the matches as
// strings: elements as markup, everything else as text. Attribute matches
// come back from htmlquery as detached elements and are reported as text.
func (d *Document) XPath(expr string) ([]string, error) {
	nodes, err := htmlquery.QueryAll(d.root, expr)
	if err != nil {
		return nil, fmt.Errorf("invalid xpath %q: %w", expr, err)
	}
	out := make([]string, 0, len(nodes))
	for _, n := range nodes {
		if n.Type == html.ElementNode && n.Parent != nil {
			out = append(out, htmlquery.OutputHTML(n, true))
		} else {
			out = append(out, htmlquery.InnerText(n))
		}
	}
	return out, nil
}

// ResolveURL resolves ref against base.
func ResolveURL(base, ref string) (string, error) {
	r, err := url.Parse(strings.TrimSpace(ref))
	if err != nil {
		return "", fmt.Errorf("invalid url %q: %w", ref, err)
	}
	if base == "" {
		return r.String(), nil
	}
	b, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("invalid url %q: %w", base, err)
	}
	return b.ResolveReference(r).String(), nil
}
