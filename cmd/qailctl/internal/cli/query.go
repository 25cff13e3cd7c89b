package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/qail-lang/qail"
)

func queryCmd() *cobra.Command {
	var columns string
	var limit int64
	var where string

	cmd := &cobra.Command{
		Use:   "query <table>",
		Short: "Build a get command and print each matching row's columns",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			table := args[0]
			c := qail.Get(table)
			if columns != "" {
				c = c.Columns(strings.Split(columns, ",")...)
			} else {
				c = c.SelectAll()
			}
			if limit > 0 {
				c = c.Limit(limit)
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

			rows, err := driver.Query(context.Background(), c)
			if err != nil {
				return err
			}
			printRows(rows)
			return nil
		},
	}
	cmd.Flags().StringVar(&columns, "columns", "", "comma-separated column list (default: all columns)")
	cmd.Flags().Int64Var(&limit, "limit", 0, "LIMIT clause (0 means unset)")
	cmd.Flags().StringVar(&where, "where", "", "single col=value equality filter")
	return cmd
}

func printRows(rows []qail.Row) {
	if len(rows) == 0 {
		fmt.Println("(no rows)")
		return
	}
	for i, row := range rows {
		fmt.Printf("row %d:\n", i)
		for _, col := range row.Columns {
			fmt.Printf("  %s = %v\n", col.Name, valueString(col.Value))
		}
	}
}

func valueString(v qail.Value) string {
	if v.IsNull() {
		return "NULL"
	}
	switch v.Kind() {
	case qail.KindText:
		return v.Text()
	case qail.KindBool:
		return fmt.Sprintf("%v", v.Bool())
	case qail.KindInt64:
		return fmt.Sprintf("%d", v.Int64())
	case qail.KindFloat64:
		return fmt.Sprintf("%g", v.Float64())
	default:
		b, err := qail.EncodeText(v, nil)
		if err != nil {
			return "<unprintable>"
		}
		return string(b)
	}
}
