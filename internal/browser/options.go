package browser

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/GriffinCanCode/twill/internal/config"
	"github.com/GriffinCanCode/twill/internal/document"
)

// Options are the runtime switches changed with the config command.
type Options struct {
	AcknowledgeEquivRefresh   bool
	MaxRefreshHops            int
	ReadonlyControlsWriteable bool
	WithDefaultRealm          bool
}

// DefaultOptions returns the options a browser starts with.
func DefaultOptions(cfg config.BrowserConfig) Options {
	return Options{
		AcknowledgeEquivRefresh:   cfg.AcknowledgeEquivRefresh,
		MaxRefreshHops:            cfg.MaxRefreshHops,
		ReadonlyControlsWriteable: cfg.ReadonlyControlsWriteable,
		WithDefaultRealm:          cfg.WithDefaultRealm,
	}
}

type option struct {
	get func(o *Options) string
	set func(o *Options, value string) error
}

func boolOption(field func(o *Options) *bool) option {
	return option{
		get: func(o *Options) string { return strconv.FormatBool(*field(o)) },
		set: func(o *Options, value string) error {
			v, err := document.ParseBool(value)
			if err != nil {
				return err
			}
			*field(o) = v
			return nil
		},
	}
}

func intOption(field func(o *Options) *int) option {
	return option{
		get: func(o *Options) string { return strconv.Itoa(*field(o)) },
		set: func(o *Options, value string) error {
			n, err := strconv.Atoi(value)
			if err != nil || n < 0 {
				return fmt.Errorf("invalid count %q", value)
			}
			*field(o) = n
			return nil
		},
	}
}

var optionTable = map[string]option{
	"acknowledge_equiv_refresh":   boolOption(func(o *Options) *bool { return &o.AcknowledgeEquivRefresh }),
	"max_refresh_hops":            intOption(func(o *Options) *int { return &o.MaxRefreshHops }),
	"readonly_controls_writeable": boolOption(func(o *Options) *bool { return &o.ReadonlyControlsWriteable }),
	"with_default_realm":          boolOption(func(o *Options) *bool { return &o.WithDefaultRealm }),
}

// OptionNames lists the configurable option keys in sorted order.
func OptionNames() []string {
	names := make([]string, 0, len(optionTable))
	for name := range optionTable {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Get returns the value of the named option.
func (o *Options) Get(name string) (string, error) {
	opt, ok := optionTable[name]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownOption, name)
	}
	return opt.get(o), nil
}

// Set parses and assigns the named option.
func (o *Options) Set(name, value string) error {
	opt, ok := optionTable[name]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownOption, name)
	}
	return opt.set(o, value)
}
