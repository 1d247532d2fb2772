package main

import (
	"os"

	"github.com/flowmaps/featurematch/cmd/featurematch/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
