// Package main rolls dice notation from the command line.
package main

import (
	"context"
	"flag"
	"os"

	rollcmd "github.com/louisbranch/roll/internal/cmd/roll"
	entrypoint "github.com/louisbranch/roll/internal/platform/cmd"
	"github.com/louisbranch/roll/internal/platform/config"
)

func main() {
	cfg, err := rollcmd.ParseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		config.Exitf("Error: %v", err)
	}
	entrypoint.Main(entrypoint.ServiceRoll, func(ctx context.Context) error {
		return rollcmd.Run(ctx, cfg, os.Stdout)
	})
}
