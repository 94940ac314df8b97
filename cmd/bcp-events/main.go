package main

import (
	"os"

	"github.com/samircd4/bcp-events/internal/cli"
)

func main() {
	if err := cli.NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
