package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/qail-lang/qail"
)

func execCmd() *cobra.Command {
	var action string
	var table string
	var set string
	var where string

	cmd := &cobra.Command{
		Use:   "exec",
		Short: "Run a set or del command and print the affected row count",
		RunE: func(cmd *cobra.Command, args []string) error {
			if table == "" {
				return fmt.Errorf("exec: --table is required")
			}

			var c *qail.Command
			switch strings.ToLower(action) {
			case "set":
				c = qail.Set(table)
				for _, kv := range strings.Split(set, ",") {
					parts := strings.SplitN(kv, "=", 2)
					if len(parts) == 2 {
						c = c.SetValue(strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1]))
					}
				}
			case "del":
				c = qail.Del(table)
			default:
				return fmt.Errorf("exec: unsupported --action %q (want set or del)", action)
			}
			if where != "" {
				parts := strings.SplitN(where, "=", 2)
				if len(parts) == 2 {
					c = c.WhereEq(strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1]))
				}
			}

			driver, err := qail.Connect(context.Background(), resolveDSN())
			if err != nil {
				return err
			}
			defer driver.Close()

			result, err := driver.Execute(context.Background(), c)
			if err != nil {
				return err
			}
			fmt.Printf("Affected: %d\n", result.Affected)
			return nil
		},
	}
	cmd.Flags().StringVar(&action, "action", "set", "set or del")
	cmd.Flags().StringVar(&table, "table", "", "target table")
	cmd.Flags().StringVar(&set, "set", "", "comma-separated col=value assignments (set only)")
	cmd.Flags().StringVar(&where, "where", "", "single col=value equality filter")
	return cmd
}
