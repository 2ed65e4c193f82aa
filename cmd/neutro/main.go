package main

import (
	"os"

	"github.com/neutroai/neutro/internal/cli"
	"github.com/tillberg/autorestart"
)

func main() {
	// Rebuild-and-restart while developing.
	if os.Getenv("NEUTRO_AUTORESTART") == "1" {
		go autorestart.RestartOnChange()
	}

	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
