// Command awrecall is a chat-style search console over a local
// ActivityWatch history.
package main

import (
	"fmt"
	"os"

	"github.com/runnerr0/awrecall/internal/cli"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	if err := cli.Run(version); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
