// causalspan - cause/effect span extraction from per-token model scores
package main

import (
	"fmt"
	"os"

	"github.com/sievelabs/causalspan/cmd"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	cmd.SetVersion(version, commit, date)
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
