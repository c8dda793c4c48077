// Command gqlbuild renders GraphQL operations from YAML manifests and keeps a
// registry of persisted operations.
package main

import (
	"fmt"
	"os"

	"github.com/asaidimu/go-gqlbuilder/cli"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	return cli.Execute()
}
