package main

import (
	"os"

	"github.com/user/release-tools/internal/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
