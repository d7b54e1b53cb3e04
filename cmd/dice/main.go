// Package main starts the dice gRPC and HTTP service.
package main

import (
	"context"
	"flag"
	"os"

	dicecmd "github.com/louisbranch/roll/internal/cmd/dice"
	entrypoint "github.com/louisbranch/roll/internal/platform/cmd"
	"github.com/louisbranch/roll/internal/platform/config"
)

func main() {
	cfg, err := dicecmd.ParseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		config.Exitf("parse flags: %v", err)
	}
	entrypoint.Main(entrypoint.ServiceDice, func(ctx context.Context) error {
		return dicecmd.Run(ctx, cfg)
	})
}
