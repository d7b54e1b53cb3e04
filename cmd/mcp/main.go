// Package main starts the dice MCP server on stdio.
package main

import (
	"context"
	"flag"
	"os"

	mcpcmd "github.com/louisbranch/roll/internal/cmd/mcp"
	entrypoint "github.com/louisbranch/roll/internal/platform/cmd"
	"github.com/louisbranch/roll/internal/platform/config"
)

func main() {
	cfg, err := mcpcmd.ParseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		config.Exitf("parse flags: %v", err)
	}
	entrypoint.Main(entrypoint.ServiceMCP, func(ctx context.Context) error {
		return mcpcmd.Run(ctx, cfg)
	})
}
