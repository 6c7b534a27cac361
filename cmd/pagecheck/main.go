package main

import (
	"os"

	"github.com/moolen/pagecheck/cmd/pagecheck/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
