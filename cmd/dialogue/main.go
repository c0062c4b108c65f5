// Package main provides the entry point for the dialogue client daemon.
package main

import (
	"fmt"
	"os"

	"github.com/nixdorfer/dialogue/cmd/dialogue/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
