package main

import (
	"context"
	"fmt"
	"os"

	"github.com/wildwatch/sightings/cmd"
	"github.com/wildwatch/sightings/internal/buildinfo"
	"github.com/wildwatch/sightings/internal/config"
)

// Set at build time with -ldflags "-X main.version=... -X main.buildDate=..."
var (
	version   = "dev"
	buildDate = ""
)

func main() {
	ctx := config.NewContext(buildinfo.NewContext(version, buildDate))

	rootCmd := cmd.RootCommand(ctx)
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		_ = ctx.Close()
		os.Exit(1)
	}
}
