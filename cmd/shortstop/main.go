package main

import (
	"os"

	"github.com/solatis/shortstop/cmd/shortstop/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
