package browser

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNoPage                = errors.New("no page loaded")
	ErrNoForms               = errors.New("no forms on this page")
	ErrFormSelectionRequired = errors.New("more than one form; selection required")
	ErrNotFileField          = errors.New("field is not a file upload field")
	ErrUnknownOption         = errors.New("no such configuration key")
)

// NavigationError reports that none of the url variants tried by Go could
// be fetched.
type NavigationError struct {
	URL      string
	Attempts []string
	Err      error
}

func (e *NavigationError) Error() string {
	msg := fmt.Sprintf("cannot go to %q (tried %s)", e.URL, strings.Join(e.Attempts, ", "))
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *NavigationError) Unwrap() error {
	return e.Err
}
