package document

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
)

var (
	ErrMultipleMatches = errors.New("multiple matches")
	ErrNoFieldMatches  = errors.New("no field matches")
	ErrNoSuchField     = errors.New("no such field")
)

// Field is the result of resolving a field key against a form: a single
// *Control, a *CheckboxGroup or a *RadioGroup.
type Field interface {
	// Set assigns a value using the field's value semantics.
	Set(value string) error
	// Members returns the controls behind the field.
	Members() []*Control
}

// CheckboxGroup is a set of same-named checkboxes that behave as one
// multi-valued field.
type CheckboxGroup struct {
	Name     string
	Controls []*Control
}

// Members implements Field.
func (g *CheckboxGroup) Members() []*Control { return g.Controls }

// Set checks the box whose value is v for "v" or "+v" and unchecks it for "-v".
func (g *CheckboxGroup) Set(value string) error {
	on, v := splitToggle(value)
	for _, c := range g.Controls {
		if c.onValue() == v {
			c.Checked = on
			return nil
		}
	}
	return fmt.Errorf("%w: %q in %q", ErrNoSuchValue, v, g.Name)
}

// Values returns the values of the checked boxes.
func (g *CheckboxGroup) Values() []string {
	var out []string
	for _, c := range g.Controls {
		if c.Checked {
			out = append(out, c.onValue())
		}
	}
	return out
}

// RadioGroup is a set of same-named radio buttons.
type RadioGroup struct {
	Name     string
	Controls []*Control
}

// Members implements Field.
func (g *RadioGroup) Members() []*Control { return g.Controls }

// Set selects the button whose value is value.
func (g *RadioGroup) Set(value string) error {
	var target *Control
	for _, c := range g.Controls {
		if c.onValue() == value {
			target = c
			break
		}
	}
	if target == nil {
		return fmt.Errorf("%w: %q in %q", ErrNoSuchValue, value, g.Name)
	}
	for _, c := range g.Controls {
		c.Checked = c == target
	}
	return nil
}

// Value returns the value of the checked button, or "".
func (g *RadioGroup) Value() string {
	for _, c := range g.Controls {
		if c.Checked {
			return c.onValue()
		}
	}
	return ""
}

// FieldAt returns the control at 1-based position n.
func (f *Form) FieldAt(n int) (*Control, error) {
	if n < 1 || n > len(f.Controls) {
		return nil, fmt.Errorf("%w: %d", ErrNoSuchField, n)
	}
	return f.Controls[n-1], nil
}

// Field resolves key to a field of the form. Candidates are tried by exact
// name (returning a group when all same-named controls are checkboxes or all
// are radios), exact id, the name matches, then a numeric key is taken as a
// 1-based position, otherwise a regex search over names and finally exact
// value.
func (f *Form) Field(key string) (Field, error) {
	multiple := false

	var byName []*Control
	for _, c := range f.Controls {
		if c.Name == key {
			byName = append(byName, c)
		}
	}
	if len(byName) > 1 {
		switch {
		case allOfType(byName, TypeCheckbox):
			return &CheckboxGroup{Name: key, Controls: byName}, nil
		case allOfType(byName, TypeRadio):
			return &RadioGroup{Name: key, Controls: byName}, nil
		}
	}

	var byID []*Control
	for _, c := range f.Controls {
		if c.ID != "" && c.ID == key {
			byID = append(byID, c)
		}
	}
	if len(byID) > 0 {
		if uniqueMatch(byID) {
			return byID[0], nil
		}
		multiple = true
	}

	if len(byName) > 0 {
		if uniqueMatch(byName) {
			return byName[0], nil
		}
		multiple = true
	}

	if !multiple && isDigits(key) {
		n, err := strconv.Atoi(key)
		if err != nil {
			return nil, fmt.Errorf("%w: %s", ErrNoSuchField, key)
		}
		return f.FieldAt(n)
	}

	if re, err := regexp.Compile(key); err == nil {
		var byRegex []*Control
		for _, c := range f.Controls {
			if c.Name != "" && re.MatchString(c.Name) {
				byRegex = append(byRegex, c)
			}
		}
		if len(byRegex) > 0 {
			if uniqueMatch(byRegex) {
				return byRegex[0], nil
			}
			multiple = true
		}
	}

	var byValue []*Control
	for _, c := range f.Controls {
		if c.Value == key {
			byValue = append(byValue, c)
		}
	}
	if len(byValue) == 1 {
		return byValue[0], nil
	}
	if len(byValue) > 1 {
		multiple = true
	}

	if multiple {
		return nil, fmt.Errorf("%w to %q", ErrMultipleMatches, key)
	}
	return nil, fmt.Errorf("%w %q", ErrNoFieldMatches, key)
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func allOfType(controls []*Control, t ControlType) bool {
	for _, c := range controls {
		if c.Type != t {
			return false
		}
	}
	return true
}

// uniqueMatch treats a candidate set as one control when it has a single
// member, when all members are same-named checkbox or hidden controls, or
// when all are identical submit or hidden controls.
func uniqueMatch(matches []*Control) bool {
	return len(matches) == 1 || sameCheckbox(matches) || sameSubmit(matches)
}

func sameCheckbox(matches []*Control) bool {
	for _, c := range matches {
		if c.Type != TypeCheckbox && c.Type != TypeHidden {
			return false
		}
		if c.Name != matches[0].Name {
			return false
		}
	}
	return true
}

func sameSubmit(matches []*Control) bool {
	for _, c := range matches {
		if c.Type != TypeSubmit && c.Type != TypeHidden {
			return false
		}
		if c.Name != matches[0].Name || c.Value != matches[0].Value {
			return false
		}
	}
	return true
}
