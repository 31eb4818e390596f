package main

import (
	"os"

	"tidyd/cmd/tidyd/cli"
)

var version = "dev"

func main() {
	if err := Execute(); err != nil {
		cli.PrintError(err.Error())
		os.Exit(1)
	}
}
