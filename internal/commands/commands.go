package commands

import (
	"errors"
	"fmt"

	"github.com/GriffinCanCode/twill/internal/script"
)

// ErrAssertion marks a failed check such as code, find or url.
var ErrAssertion = errors.New("assertion failed")

func assertionf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrAssertion, fmt.Sprintf(format, args...))
}

var aliases = map[string]string{
	"fv": "formvalue",
	"fa": "formaction",
	"rf": "runfile",
}

// Register adds every built-in command and its aliases to r.
func Register(r *script.Registry) error {
	groups := [][]script.Command{
		navigationCommands(),
		assertionCommands(),
		formCommands(),
		displayCommands(),
		sessionCommands(),
		scriptingCommands(),
	}
	for _, group := range groups {
		for _, cmd := range group {
			if err := r.Register(cmd); err != nil {
				return err
			}
		}
	}
	for alias, target := range aliases {
		if err := r.Alias(alias, target); err != nil {
			return err
		}
	}
	return nil
}

// NewRegistry returns a registry holding the built-in commands.
func NewRegistry() (*script.Registry, error) {
	r := script.NewRegistry()
	if err := Register(r); err != nil {
		return nil, err
	}
	return r, nil
}
