package main

import (
	"os"

	"github.com/infrasync/infrasync-go/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
