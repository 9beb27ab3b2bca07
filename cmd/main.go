package main

import (
	"os"

	"github.com/romaisa914/lingo-translator/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
