package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rowquery/rowquery-sheets/config"
	"github.com/rowquery/rowquery-sheets/log"
	"github.com/rowquery/rowquery-sheets/spreadsheet"
)

const APP = "rowquery-sheets"

// Options holds the global command line flags.
type Options struct {
	Debug bool
}

// Command is implemented by every rowquery-sheets subcommand.
type Command interface {
	Name() string
	Description() string
	Usage() string
	Configure(cmd *cobra.Command)
	Execute(cmd *cobra.Command, options *Options) error
}

// Cobra wraps a Command for registration with the root command.
func Cobra(c Command, options *Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:           fmt.Sprintf("%s %s", c.Name(), c.Usage()),
		Short:         c.Description(),
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.Execute(cmd, options)
		},
	}

	c.Configure(cmd)

	return cmd
}

// load reads the environment configuration, with the command line --debug flag
// taking precedence over DEBUG.
func load(options *Options) (*config.Config, error) {
	cfg, err := config.FromEnv()
	if err != nil {
		return nil, fmt.Errorf("could not load configuration (%v)", err)
	}

	if options.Debug {
		cfg.Debug = true
	}

	log.SetDebug(cfg.Debug)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func reader(cfg *config.Config) (*spreadsheet.Reader, error) {
	r, err := spreadsheet.NewReader(cfg.ClientEmail, cfg.PrivateKey)
	if err != nil {
		return nil, fmt.Errorf("authentication/authorization error (%v)", err)
	}

	return r, nil
}
