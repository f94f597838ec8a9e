package main

import (
	"context"
	"os"

	"github.com/asynkron/splitpatch/internal/cli"
)

// main splits the patch named on the command line.
func main() {
	os.Exit(cli.Run(context.Background(), os.Args[1:], os.Stdout, os.Stderr))
}
