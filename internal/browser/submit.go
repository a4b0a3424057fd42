package browser

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/GriffinCanCode/twill/internal/document"
	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
	"golang.org/x/net/html/charset"
)

// Submit submits the selected form, or the only form of the page. button,
// when not empty, names the submit control; otherwise the last clicked
// submit control or the first one of the form is used.
func (b *Browser) Submit(ctx context.Context, button string) error {
	if b.current == nil {
		return ErrNoPage
	}
	forms := b.current.Forms
	if len(forms) == 0 {
		return ErrNoForms
	}

	form := b.form
	if form == nil {
		if len(forms) != 1 {
			return ErrFormSelectionRequired
		}
		form = forms[0]
	}

	if !strings.Contains(form.Action, "://") {
		action, err := b.current.Resolve(form.Action)
		if err != nil {
			return err
		}
		form.Action = action
	}

	ctl, err := b.submitControl(form, button)
	if err != nil {
		return err
	}
	if ctl == nil {
		b.logger.Debug("submit without using a submit button")
	} else {
		b.logger.Info("submit is using submit button",
			zap.String("name", ctl.Name), zap.String("value", ctl.Value))
	}

	payload := form.Values()
	if ctl != nil && ctl.Name != "" {
		payload = append(payload, document.Pair{Name: ctl.Name, Value: ctl.Value})
	}
	payload, err = encodePayload(payload, b.current.Encoding)
	if err != nil {
		return err
	}

	method := http.MethodGet
	if form.IsPost() {
		method = http.MethodPost
	}
	resp, err := b.send(ctx, method, form.Action, payload)
	b.metrics.ObserveSubmission(method, err)
	if err != nil {
		return err
	}

	doc, err := toDocument(resp)
	if err != nil {
		return err
	}

	b.clearSelection()
	b.history = append(b.history, b.current)
	b.current = doc
	return nil
}

func (b *Browser) submitControl(form *document.Form, button string) (*document.Control, error) {
	if button != "" {
		field, err := form.Field(button)
		if err != nil {
			return nil, err
		}
		return field.Members()[0], nil
	}
	if b.lastSubmit != nil {
		return b.lastSubmit, nil
	}
	if submits := form.SubmitControls(); len(submits) > 0 {
		return submits[0], nil
	}
	return nil, nil
}

func (b *Browser) send(ctx context.Context, method, action string, payload []document.Pair) (*resty.Response, error) {
	req, err := b.client.Request(ctx)
	if err != nil {
		return nil, err
	}
	req.SetHeader("Referer", b.current.URL)

	start := time.Now()
	defer func() { b.metrics.ObserveFetch(method, time.Since(start)) }()

	if method == http.MethodGet {
		u, err := url.Parse(action)
		if err != nil {
			return nil, fmt.Errorf("invalid form action %q: %w", action, err)
		}
		u.RawQuery = document.Encode(payload)
		resp, err := req.Get(u.String())
		if err != nil {
			return nil, fmt.Errorf("GET %s: %w", u, err)
		}
		return resp, nil
	}

	if len(b.uploads) > 0 {
		values := url.Values{}
		for _, p := range payload {
			values.Add(p.Name, p.Value)
		}
		req.SetFormDataFromValues(values)
		for _, up := range b.uploads {
			req.SetMultipartField(up.Field, up.FileName, up.ContentType, bytes.NewReader(up.Data))
		}
	} else {
		req.SetHeader("Content-Type", "application/x-www-form-urlencoded").
			SetBody(document.Encode(payload))
	}

	resp, err := req.Post(action)
	if err != nil {
		return nil, fmt.Errorf("POST %s: %w", action, err)
	}
	return resp, nil
}

// encodePayload converts payload values to the page encoding.
func encodePayload(payload []document.Pair, encodingName string) ([]document.Pair, error) {
	if document.IsUTF8(encodingName) {
		return payload, nil
	}
	enc, _ := charset.Lookup(encodingName)
	if enc == nil {
		return payload, nil
	}
	encoder := enc.NewEncoder()
	out := make([]document.Pair, len(payload))
	for i, p := range payload {
		value, err := encoder.String(p.Value)
		if err != nil {
			return nil, fmt.Errorf("cannot encode %q as %s: %w", p.Name, encodingName, err)
		}
		out[i] = document.Pair{Name: p.Name, Value: value}
	}
	return out, nil
}
