package script

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
)

var (
	ErrUnknownCommand = errors.New("unknown command")
	ErrArity          = errors.New("wrong number of arguments")
)

// Unlimited marks a command without an upper argument bound.
const Unlimited = -1

// Command describes one script command.
type Command struct {
	Name    string
	Help    string
	MinArgs int
	MaxArgs int
	Run     func(ctx context.Context, env *Env, args []string) error
}

// Registry manages the commands known to an interpreter.
type Registry struct {
	mu       sync.RWMutex
	commands map[string]*Command
	aliases  map[string]string
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		commands: make(map[string]*Command),
		aliases:  make(map[string]string),
	}
}

// Register adds a command, replacing any command of the same name.
func (r *Registry) Register(cmd Command) error {
	if cmd.Name == "" {
		return fmt.Errorf("command name cannot be empty")
	}
	if cmd.Run == nil {
		return fmt.Errorf("command %s has no implementation", cmd.Name)
	}
	if cmd.MaxArgs != Unlimited && cmd.MaxArgs < cmd.MinArgs {
		return fmt.Errorf("command %s: max args %d below min args %d", cmd.Name, cmd.MaxArgs, cmd.MinArgs)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	c := cmd
	r.commands[cmd.Name] = &c
	return nil
}

// Alias makes alias resolve to the registered command target.
func (r *Registry) Alias(alias, target string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.commands[target]; !ok {
		return fmt.Errorf("%w: %s", ErrUnknownCommand, target)
	}
	r.aliases[alias] = target
	return nil
}

// Lookup finds a command by name or alias.
func (r *Registry) Lookup(name string) (*Command, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if target, ok := r.aliases[name]; ok {
		name = target
	}
	cmd, ok := r.commands[name]
	return cmd, ok
}

// Names returns the registered command names and aliases, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.commands)+len(r.aliases))
	for name := range r.commands {
		names = append(names, name)
	}
	for alias := range r.aliases {
		names = append(names, alias)
	}
	sort.Strings(names)
	return names
}

// CheckArity validates the argument count for cmd.
func (c *Command) CheckArity(n int) error {
	if n < c.MinArgs || (c.MaxArgs != Unlimited && n > c.MaxArgs) {
		switch {
		case c.MaxArgs == Unlimited:
			return fmt.Errorf("%w: %s takes at least %d, got %d", ErrArity, c.Name, c.MinArgs, n)
		case c.MinArgs == c.MaxArgs:
			return fmt.Errorf("%w: %s takes %d, got %d", ErrArity, c.Name, c.MinArgs, n)
		default:
			return fmt.Errorf("%w: %s takes %d to %d, got %d", ErrArity, c.Name, c.MinArgs, c.MaxArgs, n)
		}
	}
	return nil
}
