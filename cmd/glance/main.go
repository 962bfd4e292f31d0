package main

import (
	"os"

	"github.com/dadukhankevin/Glance/internal/cli"
)

func main() {
	if err := cli.RootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
