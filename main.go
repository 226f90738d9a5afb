package main

import (
	"os"

	"github.com/linesmerrill/police-case-api/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
