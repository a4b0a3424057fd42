package document

import (
	"net/url"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Form is a form reconstructed from the page markup.
type Form struct {
	Name     string
	ID       string
	Action   string
	Method   string
	Enctype  string
	Global   bool
	Controls []*Control
}

// Pair is one name/value entry of a form payload.
type Pair struct {
	Name  string
	Value string
}

// Label names the form for listings.
func (f *Form) Label() string {
	switch {
	case f.Global:
		return "global form"
	case f.Name != "":
		return f.Name
	case f.ID != "":
		return "#" + f.ID
	}
	return ""
}

// IsPost reports whether the form submits with POST.
func (f *Form) IsPost() bool {
	return strings.EqualFold(f.Method, "post")
}

// Values returns the payload of the form in document order. Disabled and
// unnamed controls are skipped, as are unchecked checkboxes and radios and
// button-like and file controls.
func (f *Form) Values() []Pair {
	var out []Pair
	for _, c := range f.Controls {
		if c.Name == "" || c.Disabled {
			continue
		}
		if c.Checkable() {
			if c.Checked {
				out = append(out, Pair{c.Name, c.onValue()})
			}
			continue
		}
		switch c.Type {
		case TypeSubmit, TypeImage, TypeReset, TypeButton, TypeFile:
			continue
		case TypeSelect:
			for _, v := range c.Selected() {
				out = append(out, Pair{c.Name, v})
			}
		default:
			out = append(out, Pair{c.Name, c.Value})
		}
	}
	return out
}

// Clear clears every writable control. Readonly controls are kept unless
// includeReadonly is set; disabled controls are always kept.
func (f *Form) Clear(includeReadonly bool) {
	for _, c := range f.Controls {
		if c.Disabled || (c.Readonly && !includeReadonly) {
			continue
		}
		c.Clear()
	}
}

// SubmitControls returns the submit and image controls of the form.
func (f *Form) SubmitControls() []*Control {
	var out []*Control
	for _, c := range f.Controls {
		if c.IsSubmit() {
			out = append(out, c)
		}
	}
	return out
}

// Encode url-encodes pairs preserving their order.
func Encode(pairs []Pair) string {
	var b strings.Builder
	for i, p := range pairs {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(url.QueryEscape(p.Name))
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(p.Value))
	}
	return b.String()
}

// formBuilder collects forms from a token stream. At most one form is open at
// a time: a nested <form> start tag is ignored and the first </form> closes
// the open form, so every control belongs to exactly one form.
type formBuilder struct {
	global *Form
	forms  []*Form
	open   *Form

	selectCtl    *Control
	option       *Option
	optionValued bool
	optionTxt    strings.Builder
	textarea     *Control
	textBuf      strings.Builder
}

// parseForms reconstructs the forms of a page from its markup. The global
// form collecting stray inputs and selects comes first when non-empty.
func parseForms(markup string) []*Form {
	b := &formBuilder{global: &Form{Global: true, Method: "GET"}}
	z := html.NewTokenizer(strings.NewReader(markup))
	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			break
		}
		tok := z.Token()
		switch tt {
		case html.StartTagToken, html.SelfClosingTagToken:
			b.start(tok, tt == html.SelfClosingTagToken)
		case html.EndTagToken:
			b.end(tok)
		case html.TextToken:
			b.text(tok.Data)
		}
	}
	b.finishOption()
	b.finishTextarea()
	b.open = nil

	if len(b.global.Controls) == 0 {
		return b.forms
	}
	return append([]*Form{b.global}, b.forms...)
}

func (b *formBuilder) start(tok html.Token, selfClosing bool) {
	switch tok.DataAtom {
	case atom.Form:
		if b.open != nil {
			return
		}
		f := &Form{
			Name:    attr(tok, "name"),
			ID:      attr(tok, "id"),
			Action:  attr(tok, "action"),
			Method:  strings.ToUpper(attr(tok, "method")),
			Enctype: attr(tok, "enctype"),
		}
		if f.Method == "" {
			f.Method = "GET"
		}
		b.forms = append(b.forms, f)
		b.open = f
	case atom.Input:
		raw := attr(tok, "type")
		c := b.control(tok, parseInputType(raw), raw)
		c.Value = attr(tok, "value")
		c.Checked = hasAttr(tok, "checked")
		b.add(c, true)
	case atom.Select:
		b.finishOption()
		c := b.control(tok, TypeSelect, "select")
		c.Multiple = hasAttr(tok, "multiple")
		b.add(c, true)
		b.selectCtl = c
	case atom.Option:
		if b.selectCtl == nil {
			return
		}
		b.finishOption()
		opt := &Option{Selected: hasAttr(tok, "selected")}
		opt.Value, b.optionValued = attrOK(tok, "value")
		b.selectCtl.Options = append(b.selectCtl.Options, opt)
		b.option = opt
		if selfClosing {
			b.finishOption()
		}
	case atom.Textarea:
		c := b.control(tok, TypeTextarea, "textarea")
		b.add(c, false)
		if !selfClosing {
			b.textarea = c
			b.textBuf.Reset()
		}
	case atom.Button:
		if !strings.EqualFold(attr(tok, "type"), "submit") {
			return
		}
		c := b.control(tok, TypeSubmit, "submit")
		c.Value = attr(tok, "value")
		b.add(c, false)
	}
}

func (b *formBuilder) end(tok html.Token) {
	switch tok.DataAtom {
	case atom.Form:
		b.open = nil
	case atom.Select:
		b.finishOption()
		b.selectCtl = nil
	case atom.Option:
		b.finishOption()
	case atom.Textarea:
		b.finishTextarea()
	}
}

func (b *formBuilder) text(data string) {
	switch {
	case b.textarea != nil:
		b.textBuf.WriteString(data)
	case b.option != nil:
		b.optionTxt.WriteString(data)
	}
}

func (b *formBuilder) control(tok html.Token, t ControlType, raw string) *Control {
	if raw == "" {
		raw = "text"
	}
	return &Control{
		Type:     t,
		RawType:  strings.ToLower(raw),
		Name:     attr(tok, "name"),
		ID:       attr(tok, "id"),
		Readonly: hasAttr(tok, "readonly"),
		Disabled: hasAttr(tok, "disabled"),
	}
}

// add attaches c to the open form. Stray controls join the global form when
// orphanable, otherwise they are dropped.
func (b *formBuilder) add(c *Control, orphanable bool) {
	switch {
	case b.open != nil:
		b.open.Controls = append(b.open.Controls, c)
	case orphanable:
		b.global.Controls = append(b.global.Controls, c)
	}
}

func (b *formBuilder) finishOption() {
	if b.option == nil {
		return
	}
	label := strings.TrimSpace(b.optionTxt.String())
	b.option.Label = label
	if !b.optionValued {
		b.option.Value = label
	}
	b.option = nil
	b.optionTxt.Reset()
}

func (b *formBuilder) finishTextarea() {
	if b.textarea == nil {
		return
	}
	b.textarea.Value = strings.TrimPrefix(b.textBuf.String(), "\n")
	b.textarea = nil
	b.textBuf.Reset()
}

func attrOK(tok html.Token, name string) (string, bool) {
	for _, a := range tok.Attr {
		if a.Key == name {
			return a.Val, true
		}
	}
	return "", false
}

func attr(tok html.Token, name string) string {
	v, _ := attrOK(tok, name)
	return v
}

func hasAttr(tok html.Token, name string) bool {
	_, ok := attrOK(tok, name)
	return ok
}
