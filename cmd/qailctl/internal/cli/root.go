// Package cli implements qailctl's cobra command tree (spec §6's
// "ambient terminal driver" addition): query, exec, and bench
// subcommands sharing a --dsn flag resolved the same way ParseDSN/
// environment fallbacks resolve it in the library itself.
package cli

import (
	"github.com/spf13/cobra"
)

var dsnFlag string

// Root builds the qailctl command tree.
func Root() *cobra.Command {
	root := &cobra.Command{
		Use:   "qailctl",
		Short: "Drive a qail connection from the terminal",
	}
	root.PersistentFlags().StringVar(&dsnFlag, "dsn", "", "postgres:// connection string (falls back to PG_* environment variables)")

	root.AddCommand(queryCmd())
	root.AddCommand(execCmd())
	root.AddCommand(benchCmd())
	return root
}
