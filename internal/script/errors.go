package script

import "fmt"

// LineError is a failure of one script line.
type LineError struct {
	Source string
	Line   int
	Text   string
	Err    error
}

func (e *LineError) Error() string {
	return fmt.Sprintf("%s:%d: %s: %v", e.Source, e.Line, e.Text, e.Err)
}

func (e *LineError) Unwrap() error { return e.Err }

// AbortError is returned when a script executes exit. It ends the current
// frame only.
type AbortError struct {
	Code int
}

func (e *AbortError) Error() string {
	return fmt.Sprintf("script exited with code %d", e.Code)
}
