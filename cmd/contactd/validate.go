package main

import (
	"fmt"
	"io"
	"os"

	"github.com/vortex-fintech/contactform/contact"
	"github.com/vortex-fintech/contactform/phone"
)

// ValidateCmd checks the given fields; omitted fields are validated as empty.
type ValidateCmd struct {
	Name    string `help:"Full name."`
	Email   string `help:"Email address."`
	Phone   string `help:"Phone number."`
	Message string `help:"Message text."`
	Only    string `help:"Validate a single field (name, email, phone, message)."`

	out io.Writer
}

func (v *ValidateCmd) Run(cli *CLI) error {
	cfg, err := cli.loadConfig()
	if err != nil {
		return err
	}
	return v.run(cfg.Limits)
}

func (v *ValidateCmd) writer() io.Writer {
	if v.out != nil {
		return v.out
	}
	return os.Stdout
}

func (v *ValidateCmd) run(lim contact.Limits) error {
	form := contact.Form{Name: v.Name, Email: v.Email, Phone: v.Phone, Message: v.Message}
	w := v.writer()

	if v.Only != "" {
		f, ok := contact.ParseField(v.Only)
		if !ok {
			return fmt.Errorf("%w: %q", contact.ErrUnknownField, v.Only)
		}
		res, err := contact.Validate(f, form.Value(f), lim)
		if err != nil {
			return err
		}
		printResult(w, f, res)
		if !res.Valid {
			return errFormInvalid
		}
		return nil
	}

	rep := contact.ValidateForm(form, lim)
	for _, f := range contact.Fields {
		printResult(w, f, rep.Get(f))
	}
	if cnt := contact.CharCount(form.Message, lim); cnt.Length > 0 {
		fmt.Fprintf(w, "%-8s %s (%s)\n", "counter", cnt, cnt.State)
	}
	if !rep.Valid() {
		return errFormInvalid
	}
	return nil
}

func printResult(w io.Writer, f contact.Field, res contact.Result) {
	if res.Valid {
		fmt.Fprintf(w, "%-8s ok\n", f)
		return
	}
	fmt.Fprintf(w, "%-8s %s: %s\n", f, res.Kind, res.Message)
}

// FormatPhoneCmd prints the keystroke formatting of a raw phone number.
type FormatPhoneCmd struct {
	Raw string `arg:"" help:"Raw phone input."`

	out io.Writer
}

func (p *FormatPhoneCmd) Run() error {
	w := p.out
	if w == nil {
		w = os.Stdout
	}
	_, err := fmt.Fprintln(w, phone.Format(p.Raw))
	return err
}
