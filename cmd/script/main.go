// Package main runs a Lua script with the dice bindings loaded.
package main

import (
	"context"
	"flag"
	"os"

	scriptcmd "github.com/louisbranch/roll/internal/cmd/script"
	entrypoint "github.com/louisbranch/roll/internal/platform/cmd"
	"github.com/louisbranch/roll/internal/platform/config"
)

func main() {
	cfg, err := scriptcmd.ParseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		config.Exitf("parse flags: %v", err)
	}
	entrypoint.Main(entrypoint.ServiceScript, func(ctx context.Context) error {
		return scriptcmd.Run(ctx, cfg, os.Stdout)
	})
}
