package document

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ControlType tags the kind of a form control.
type ControlType string

const (
	TypeText     ControlType = "text"
	TypePassword ControlType = "password"
	TypeCheckbox ControlType = "checkbox"
	TypeRadio    ControlType = "radio"
	TypeSubmit   ControlType = "submit"
	TypeImage    ControlType = "image"
	TypeFile     ControlType = "file"
	TypeSelect   ControlType = "select"
	TypeHidden   ControlType = "hidden"
	TypeTextarea ControlType = "textarea"
	TypeReset    ControlType = "reset"
	TypeButton   ControlType = "button"
	TypeOther    ControlType = "other"
)

var (
	// ErrNotSettable is returned when setting a submit or image control.
	ErrNotSettable = errors.New("control value cannot be set")
	// ErrNoSuchValue is returned when a value names no option of a list control.
	ErrNoSuchValue = errors.New("no such value")
	// ErrNotBoolean is returned when a value cannot be read as true/false.
	ErrNotBoolean = errors.New("not a boolean value")
)

// textLike input types are treated as plain text fields.
var textLike = map[string]bool{
	"": true, "text": true, "email": true, "search": true, "tel": true, "url": true,
	"number": true, "range": true, "date": true, "datetime-local": true,
	"month": true, "week": true, "time": true, "color": true,
}

// parseInputType maps the type attribute of an <input> to a ControlType.
func parseInputType(raw string) ControlType {
	raw = strings.ToLower(strings.TrimSpace(raw))
	switch ControlType(raw) {
	case TypePassword, TypeCheckbox, TypeRadio, TypeSubmit, TypeImage,
		TypeFile, TypeHidden, TypeReset, TypeButton:
		return ControlType(raw)
	}
	if textLike[raw] {
		return TypeText
	}
	return TypeOther
}

// Option is an <option> of a select control.
type Option struct {
	Value    string
	Label    string
	Selected bool
}

// Control is a single form control.
type Control struct {
	Type     ControlType
	RawType  string
	Name     string
	ID       string
	Value    string
	Checked  bool
	Readonly bool
	Disabled bool
	Multiple bool
	Options  []*Option
}

// Checkable reports whether the control is a checkbox or radio button.
func (c *Control) Checkable() bool {
	return c.Type == TypeCheckbox || c.Type == TypeRadio
}

// IsSubmit reports whether the control can submit its form.
func (c *Control) IsSubmit() bool {
	return c.Type == TypeSubmit || c.Type == TypeImage
}

// Members implements Field.
func (c *Control) Members() []*Control {
	return []*Control{c}
}

// Set assigns value to the control following the control's type.
func (c *Control) Set(value string) error {
	switch c.Type {
	case TypeSubmit, TypeImage:
		return ErrNotSettable
	case TypeCheckbox, TypeRadio:
		if b, err := ParseBool(value); err == nil {
			c.Checked = b
			return nil
		}
		on, v := splitToggle(value)
		if v != c.onValue() {
			return fmt.Errorf("%w: %q", ErrNoSuchValue, v)
		}
		c.Checked = on
		return nil
	case TypeSelect:
		return c.selectOption(value)
	default:
		c.Value = value
		return nil
	}
}

// Clear resets the control to an empty value. Submit, image and hidden
// controls are left alone.
func (c *Control) Clear() {
	switch c.Type {
	case TypeSubmit, TypeImage, TypeHidden:
	case TypeCheckbox, TypeRadio:
		c.Checked = false
	case TypeSelect:
		for _, opt := range c.Options {
			opt.Selected = false
		}
	default:
		c.Value = ""
	}
}

// Selected returns the values of the selected options of a select control.
// A single select without an explicit selection reports its first option.
func (c *Control) Selected() []string {
	var out []string
	for _, opt := range c.Options {
		if opt.Selected {
			out = append(out, opt.Value)
		}
	}
	if out == nil && !c.Multiple && len(c.Options) > 0 {
		out = []string{c.Options[0].Value}
	}
	return out
}

// Display returns the control's current value for listings.
func (c *Control) Display() string {
	switch c.Type {
	case TypeSelect:
		values := make([]string, len(c.Options))
		for i, opt := range c.Options {
			values[i] = "'" + opt.Value + "'"
		}
		return fmt.Sprintf("%s of %s", strings.Join(c.Selected(), ","), strings.Join(values, ", "))
	case TypeCheckbox, TypeRadio:
		if c.Checked {
			return c.onValue() + " (checked)"
		}
		return c.onValue()
	}
	return c.Value
}

func (c *Control) onValue() string {
	if c.Value == "" {
		return "on"
	}
	return c.Value
}

func (c *Control) selectOption(value string) error {
	add, v := splitToggle(value)
	for _, opt := range c.Options {
		if v != opt.Value && v != opt.Label {
			continue
		}
		if c.Multiple {
			opt.Selected = add
			return nil
		}
		for _, other := range c.Options {
			other.Selected = false
		}
		opt.Selected = add
		return nil
	}
	return fmt.Errorf("%w: %q", ErrNoSuchValue, v)
}

// splitToggle splits a leading '+' or '-' from value. A missing sign means on.
func splitToggle(value string) (bool, string) {
	switch {
	case strings.HasPrefix(value, "-"):
		return false, value[1:]
	case strings.HasPrefix(value, "+"):
		return true, value[1:]
	}
	return true, value
}

// ParseBool reads true/false, integers, +/- and on/off as booleans.
func ParseBool(value string) (bool, error) {
	v := strings.ToLower(strings.TrimSpace(value))
	switch v {
	case "true", "+", "on":
		return true, nil
	case "false", "-", "off":
		return false, nil
	}
	if n, err := strconv.Atoi(v); err == nil {
		return n != 0, nil
	}
	return false, fmt.Errorf("%w: %q", ErrNotBoolean, value)
}
