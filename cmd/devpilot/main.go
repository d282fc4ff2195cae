package main

import (
	"os"

	"github.com/daydemir/devpilot/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
