package main

import (
	"os"

	"github.com/abhisek/studyloop/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
