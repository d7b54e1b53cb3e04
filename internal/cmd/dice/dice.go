// Package dice parses dice server flags and launches the service.
package dice

import (
	"context"
	"flag"

	entrypoint "github.com/louisbranch/roll/internal/platform/cmd"
	server "github.com/louisbranch/roll/internal/services/dice/app"
)

// Config holds dice command configuration.
type Config = server.Config

// ParseConfig parses environment and flags into Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	fs.IntVar(&cfg.Port, "port", cfg.Port, "The dice gRPC server port")
	fs.StringVar(&cfg.HTTPAddr, "http-addr", cfg.HTTPAddr, "The dice HTTP API address (empty disables it)")
	fs.StringVar(&cfg.Store, "store", cfg.Store, "Roll history store: none, sqlite or redis")
	fs.StringVar(&cfg.SQLitePath, "sqlite-path", cfg.SQLitePath, "SQLite roll history path")
	fs.StringVar(&cfg.RedisAddr, "redis-addr", cfg.RedisAddr, "Redis roll history address")
	fs.IntVar(&cfg.Dice.MaxCount, "max-dice", cfg.Dice.MaxCount, "Largest dice count accepted from remote callers")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run starts the dice gRPC and HTTP service.
func Run(ctx context.Context, cfg Config) error {
	return server.Run(ctx, cfg)
}
