// beacond is the beacon background daemon. It keeps the application
// catalog warm, serves queries over a local socket, and exits after an
// idle timeout when one is configured. The picker spawns it on demand.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/runger/beacon/internal/cmd"
)

func main() {
	if err := cmd.RunDaemon(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "beacond: %v\n", err)
		os.Exit(1)
	}
}
