package document

import (
	"strings"

	"github.com/antchfx/htmlquery"
)

const refreshXPath = "//meta[translate(@http-equiv,'REFSH','refsh')='refresh']"

// RefreshTarget returns the absolute url of a <meta http-equiv="refresh">
// directive, if the page carries one with a url.
func (d *Document) RefreshTarget() (string, bool) {
	if d.root == nil {
		return "", false
	}
	node := htmlquery.FindOne(d.root, refreshXPath)
	if node == nil {
		return "", false
	}
	target, ok := parseRefresh(htmlquery.SelectAttr(node, "content"))
	if !ok {
		return "", false
	}
	abs, err := d.Resolve(target)
	if err != nil {
		return "", false
	}
	return abs, true
}

// parseRefresh extracts the url from a refresh content value of the form
// "N;url=target", tolerating quotes and whitespace around the target.
func parseRefresh(content string) (string, bool) {
	_, rest, found := strings.Cut(content, ";")
	if !found {
		return "", false
	}
	rest = strings.Trim(strings.TrimSpace(rest), `'"`)
	key, target, found := strings.Cut(rest, "=")
	if !found || !strings.EqualFold(strings.TrimSpace(key), "url") {
		return "", false
	}
	target = strings.Trim(strings.TrimSpace(target), `'"`)
	if target == "" {
		return "", false
	}
	return target, true
}
