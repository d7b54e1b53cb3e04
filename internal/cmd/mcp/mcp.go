// Package mcp parses MCP command flags and runs the stdio adapter.
package mcp

import (
	"context"
	"flag"

	entrypoint "github.com/louisbranch/roll/internal/platform/cmd"
	mcpservice "github.com/louisbranch/roll/internal/services/mcp/service"
)

// Config holds MCP command configuration.
type Config = mcpservice.Config

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	transport := string(cfg.Transport)
	fs.StringVar(&cfg.DiceAddr, "addr", cfg.DiceAddr, "dice server address")
	fs.StringVar(&transport, "transport", transport, "Transport type: stdio")
	fs.StringVar(&cfg.Locale, "locale", cfg.Locale, "Locale for dice error messages")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	cfg.Transport = mcpservice.TransportKind(transport)
	return cfg, nil
}

// Run starts the MCP protocol adapter.
func Run(ctx context.Context, cfg Config) error {
	return mcpservice.Run(ctx, cfg)
}
