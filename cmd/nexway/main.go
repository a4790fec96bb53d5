// Package main is the entry point for the nexway CLI.
package main

import (
	"os"

	"github.com/Shuvo786/Nexway-API/cmd/nexway/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
