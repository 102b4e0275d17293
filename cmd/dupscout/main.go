package main

import (
	"os"

	"github.com/issuelab/dupscout/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
