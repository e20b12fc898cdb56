package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/rowquery/rowquery-sheets/commands"
	"github.com/rowquery/rowquery-sheets/log"
)

var cli = []commands.Command{
	&commands.VersionCmd,
	&commands.GetCmd,
	&commands.ServeCmd,
}

var options = commands.Options{
	Debug: false,
}

func main() {
	// A local .env file supplements, but never overrides, the process environment.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(os.Stderr, ".env load warning: %v\n", err)
	}

	root := &cobra.Command{
		Use:           commands.APP,
		Short:         "Serves rows from a Google Sheets worksheet as JSON",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			log.SetDebug(options.Debug)
		},
	}

	root.PersistentFlags().BoolVar(&options.Debug, "debug", options.Debug, "Enable debugging information")

	for _, c := range cli {
		root.AddCommand(commands.Cobra(c, &options))
	}

	if err := root.ExecuteContext(context.Background()); err != nil {
		log.Errorf("%v", err)
		os.Exit(1)
	}
}
