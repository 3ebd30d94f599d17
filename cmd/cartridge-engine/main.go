// Package main is the cartridge-engine entrypoint.
package main

import (
	"log"
	"os"

	"cartridge-engine/internal/cli"
)

var version = "dev"

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	if err := cli.Execute(version); err != nil {
		os.Exit(1)
	}
}
