// Command lmkit fits linear models on tabular data from the command line.
package main

import (
	"fmt"
	"os"

	"github.com/arloliu/lmkit/cmd/lmkit/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
