// Command pagecache inspects and tests paginated entity cache snapshots.
package main

import (
	"fmt"
	"os"

	"github.com/roach88/pagecache/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(cli.GetExitCode(err))
	}
}
