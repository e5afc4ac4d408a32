// Package main provides roomctl, an offline view over room listings.
package main

import (
	"os"

	"github.com/meraroom/meraroom-server/internal/cli"
)

func main() {
	if err := cli.NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
