package commands

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/twill/internal/browser"
	"github.com/GriffinCanCode/twill/internal/document"
	"github.com/GriffinCanCode/twill/internal/script"
)

func formCommands() []script.Command {
	return []script.Command{
		{
			Name: "showforms",
			Help: "showforms: list the forms of the current page",
			Run: func(_ context.Context, env *script.Env, _ []string) error {
				env.Browser.WriteForms(env.Out)
				return nil
			},
		},
		{
			Name:    "formvalue",
			Help:    "formvalue <form> <field> <value>: set a form field",
			MinArgs: 3,
			MaxArgs: 3,
			Run:     formValue,
		},
		{
			Name:    "formclear",
			Help:    "formclear <form>: clear every writable field of a form",
			MinArgs: 1,
			MaxArgs: 1,
			Run:     formClear,
		},
		{
			Name:    "formaction",
			Help:    "formaction <form> <url>: change the action of a form",
			MinArgs: 2,
			MaxArgs: 2,
			Run:     formAction,
		},
		{
			Name:    "formfile",
			Help:    "formfile <form> <field> <file> [<content type>]: attach a file to an upload field",
			MinArgs: 3,
			MaxArgs: 4,
			Run:     formFile,
		},
		{
			Name:    "submit",
			Help:    "submit [<button>]: submit the selected form",
			MaxArgs: 1,
			Run: func(ctx context.Context, env *script.Env, args []string) error {
				button := ""
				if len(args) == 1 {
					button = args[0]
				}
				return env.Browser.Submit(ctx, button)
			},
		},
	}
}

func formValue(_ context.Context, env *script.Env, args []string) error {
	b := env.Browser
	form, err := b.Form(args[0])
	if err != nil {
		return err
	}
	field, err := form.Field(args[1])
	if err != nil {
		return err
	}

	ctl, _ := field.(*document.Control)
	b.Clicked(form, ctl)

	if ctl != nil {
		if ctl.Readonly {
			if !b.Options().ReadonlyControlsWriteable {
				env.Logger.Info("form field is read-only; nothing done", zap.String("field", ctl.Name))
				return nil
			}
			env.Logger.Info("forcing read-only form field to writeable", zap.String("field", ctl.Name))
			ctl.Readonly = false
		}
		if ctl.Type == document.TypeFile {
			return fmt.Errorf("%w: use formfile instead", browser.ErrNotFileField)
		}
	}

	err = field.Set(args[2])
	if errors.Is(err, document.ErrNotSettable) {
		return nil
	}
	return err
}

func formClear(_ context.Context, env *script.Env, args []string) error {
	form, err := env.Browser.Form(args[0])
	if err != nil {
		return err
	}
	form.Clear(false)
	env.Browser.ForgetSubmit()
	return nil
}

func formAction(_ context.Context, env *script.Env, args []string) error {
	form, err := env.Browser.Form(args[0])
	if err != nil {
		return err
	}
	env.Logger.Info("setting form action",
		zap.String("form", form.Label()), zap.String("action", args[1]))
	form.Action = args[1]
	return nil
}

func formFile(_ context.Context, env *script.Env, args []string) error {
	b := env.Browser
	form, err := b.Form(args[0])
	if err != nil {
		return err
	}
	field, err := form.Field(args[1])
	if err != nil {
		return err
	}
	ctl, ok := field.(*document.Control)
	if !ok || ctl.Type != document.TypeFile {
		return browser.ErrNotFileField
	}
	b.Clicked(form, ctl)

	contentType := ""
	if len(args) == 4 {
		contentType = args[3]
	}
	up, err := b.AddUpload(ctl.Name, args[2], contentType)
	if err != nil {
		return err
	}
	env.Logger.Info("added file to upload field",
		zap.String("file", args[2]), zap.String("field", ctl.Name), zap.String("content_type", up.ContentType))
	return nil
}
