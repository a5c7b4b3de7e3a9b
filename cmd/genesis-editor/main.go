package main

import (
	"os"

	"github.com/3menions-ctrl/genesis-director-sub010/internal/cli"
)

func main() {
	os.Exit(cli.Execute(os.Stderr))
}
