package main

import (
	"os"

	"github.com/gridsmith/powerplan/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
