// Package commands holds the poolserve cobra commands.
package commands

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/utkarsh5026/poolserve/pool"
)

const cliExecutable = "poolserve"

// NewCommand constructs the top-level poolserve command.
func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   cliExecutable,
		Short: "A small TCP server backed by a fixed-size worker pool",
		Long: `poolserve accepts TCP connections and hands each one to a fixed-size
worker pool. Every job reads the request line and answers with a page from
the document root.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newBenchCmd())
	cmd.AddCommand(newVersionCmd())

	return cmd
}

// Message renders err the way the CLI prints it on exit.
func Message(err error) string {
	var pce *pool.PoolCreationError
	if errors.As(err, &pce) {
		return "Problem creating pool: " + pce.Error()
	}
	return err.Error()
}
