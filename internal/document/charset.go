package document

import (
	"mime"
	"strings"
	"unicode/utf8"

	"github.com/saintfish/chardet"
	"golang.org/x/net/html/charset"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/unicode"
)

// minDetectConfidence is the chardet confidence below which a guess is ignored.
const minDetectConfidence = 50

// decodeBody returns the body as UTF-8 text together with the canonical name
// of the encoding it was decoded from. A charset declared in the Content-Type
// header wins, then BOM and <meta> sniffing, then statistical detection.
func decodeBody(body []byte, contentType string) (string, string) {
	enc, name := lookupDeclared(contentType)
	if enc == nil {
		var certain bool
		enc, name, certain = charset.DetermineEncoding(body, contentType)
		if !certain && utf8.Valid(body) {
			enc, name = unicode.UTF8, "utf-8"
		} else if !certain {
			if detected, detectedName := detectEncoding(body); detected != nil {
				enc, name = detected, detectedName
			}
		}
	}
	if enc == nil || enc == encoding.Nop || enc == unicode.UTF8 {
		return string(body), "utf-8"
	}

	text, err := enc.NewDecoder().Bytes(body)
	if err != nil {
		return string(body), "utf-8"
	}
	return string(text), name
}

func lookupDeclared(contentType string) (encoding.Encoding, string) {
	if contentType == "" {
		return nil, ""
	}
	_, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		return nil, ""
	}
	label := strings.TrimSpace(params["charset"])
	if label == "" {
		return nil, ""
	}
	return charset.Lookup(label)
}

func detectEncoding(body []byte) (encoding.Encoding, string) {
	if len(body) == 0 {
		return nil, ""
	}
	result, err := chardet.NewTextDetector().DetectBest(body)
	if err != nil || result == nil || result.Confidence < minDetectConfidence {
		return nil, ""
	}
	return charset.Lookup(result.Charset)
}

// IsUTF8 reports whether name refers to UTF-8 (or is empty).
func IsUTF8(name string) bool {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "utf-8", "utf8":
		return true
	}
	return false
}
