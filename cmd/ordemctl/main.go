package main

import (
	"os"

	"github.com/veritasos/ordem-backend/internal/cli"
)

func main() {
	if err := cli.RootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
