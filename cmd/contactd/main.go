// Command contactd serves the contact form API and offers offline
// validation and phone formatting from the shell.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/alecthomas/kong"

	"github.com/vortex-fintech/contactform/config"
)

var (
	version = "dev"
	commit  = "unknown"
)

// CLI is the top-level command structure for contactd.
type CLI struct {
	Version     kong.VersionFlag `help:"Show version." short:"V"`
	Config      []string         `help:"YAML config layers, later files win." short:"c" default:"config.yaml"`
	DotEnv      string           `help:"Dotenv file loaded before the environment is applied." name:"dotenv" default:".env"`
	Serve       ServeCmd         `cmd:"" help:"Run the HTTP API and metrics servers."`
	Validate    ValidateCmd      `cmd:"" help:"Validate form fields and print the results."`
	FormatPhone FormatPhoneCmd   `cmd:"" name:"format-phone" help:"Print a phone number in (XXX) XXX-XXXX form."`
}

// errFormInvalid makes validate exit with status 1 after printing results.
var errFormInvalid = errors.New("form is invalid")

const (
	exitInvalid = 1
	exitConfig  = 2
	exitFailure = 3
)

func exitCode(err error) int {
	var verr *config.ValidationError
	switch {
	case errors.Is(err, errFormInvalid):
		return exitInvalid
	case errors.As(err, &verr):
		return exitConfig
	default:
		return exitFailure
	}
}

func (c *CLI) loadConfig() (*config.Config, error) {
	return config.Load(c.DotEnv, c.Config...)
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("contactd"),
		kong.Vars{"version": version + " " + commit},
		kong.Bind(&cli),
	)
	if err := ctx.Run(); err != nil {
		if !errors.Is(err, errFormInvalid) {
			fmt.Fprintf(os.Stderr, "error: %s\n", err)
		}
		os.Exit(exitCode(err))
	}
}
