package main

import (
	"context"
	"flag"
	"os"

	platformcmd "github.com/lorebound/lorekeeper/internal/platform/cmd"
	"github.com/lorebound/lorekeeper/internal/platform/config"
	compendiumimporter "github.com/lorebound/lorekeeper/internal/tools/importer/compendium/v1"
)

func main() {
	cfg, err := compendiumimporter.ParseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		config.Exitf("Error: %v", err)
	}

	err = platformcmd.RunWithTelemetry(context.Background(), platformcmd.ServiceCompendiumImporter, func(ctx context.Context) error {
		return compendiumimporter.Run(ctx, cfg, os.Stdout)
	})
	if err != nil {
		config.Exitf("Error: %v", err)
	}
}
