// Command qailctl is a terminal driver for the qail core, in the spirit
// of the teacher's bench/ and examples/ mains but built on this module's
// own driver instead of shelling out to pgx/gorm for comparison.
package main

import (
	"fmt"
	"os"

	"github.com/qail-lang/qail/cmd/qailctl/internal/cli"
)

func main() {
	if err := cli.Root().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
