package main

import (
	"os"

	"github.com/studydeck/studydeck/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
