package main

import (
	"os"

	"github.com/solatis/doccheck/cmd/doccheck/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
