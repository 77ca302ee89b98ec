package main

import (
	"os"

	"github.com/spicery/pdxlua/cmd/pdxlua/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
