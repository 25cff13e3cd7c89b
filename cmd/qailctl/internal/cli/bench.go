package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/qail-lang/qail"
)

// benchCmd is a pipelined-batch micro-benchmark in the spirit of the
// teacher's bench/ directory (qail_vs_pgx.go, sequential.go,
// prepared_benchmark.go), rewritten against this module's own driver
// rather than shelling out to a CGO/pgx/gorm comparison: it measures the
// uniform-batch fast path's throughput directly.
func benchCmd() *cobra.Command {
	var table string
	var rows int

	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Pipeline a uniform insert batch and report throughput",
		RunE: func(cmd *cobra.Command, args []string) error {
			if table == "" {
				return fmt.Errorf("bench: --table is required")
			}
			if rows <= 0 {
				rows = 10000
			}

			driver, err := qail.Connect(context.Background(), resolveDSN())
			if err != nil {
				return err
			}
			defer driver.Close()

			c := qail.Add(table).ColumnNamesFor("seq")
			for i := 0; i < rows; i++ {
				c = c.Values(i)
			}

			start := time.Now()
			result, err := driver.Batch(context.Background(), c)
			if err != nil {
				return err
			}
			elapsed := time.Since(start)

			opsPerSec := float64(result.Affected) / elapsed.Seconds()
			fmt.Printf("inserted %d rows in %s (%.0f ops/sec)\n", result.Affected, elapsed, opsPerSec)
			return nil
		},
	}
	cmd.Flags().StringVar(&table, "table", "", "target table (must have a single integer column named seq)")
	cmd.Flags().IntVar(&rows, "rows", 10000, "number of rows to batch-insert")
	return cmd
}
