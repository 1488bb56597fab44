package main

import (
	"fmt"
	"os"

	app "github.com/valter-silva-au/wayanad-weather/internal"
	"github.com/valter-silva-au/wayanad-weather/internal/cli"
)

// Set by goreleaser ldflags at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	cli.SetVersionInfo(version, commit, date)
	basePath := app.ResolveBasePath()

	desk, err := app.NewApp(basePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing wdesk: %v\n", err)
		os.Exit(1)
	}
	if desk.ConfigErr != nil {
		fmt.Fprintf(os.Stderr, "Warning: ignoring invalid configuration: %v\n", desk.ConfigErr)
	}

	err = cli.Execute()
	_ = desk.Close()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
