// Package script parses script command flags and runs a Lua file.
package script

import (
	"context"
	"errors"
	"flag"
	"io"

	entrypoint "github.com/louisbranch/roll/internal/platform/cmd"
	"github.com/louisbranch/roll/internal/platform/config"
	luascript "github.com/louisbranch/roll/internal/script"
)

// Config holds script command configuration.
type Config struct {
	Seed string `env:"ROLL_SCRIPT_SEED"`
	Path string
}

// ParseConfig parses environment and flags into Config. The script path is
// the single positional argument.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	fs.StringVar(&cfg.Seed, "seed", cfg.Seed, "Seed for a private generator (default: process-wide generator)")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	if fs.NArg() != 1 {
		return Config{}, errors.New("usage: script [-seed N] FILE.lua")
	}
	cfg.Path = fs.Arg(0)
	return cfg, nil
}

// Run executes the configured Lua file with print routed to out.
func Run(_ context.Context, cfg Config, out io.Writer) error {
	seed, err := config.ParseSeed(cfg.Seed)
	if err != nil {
		return err
	}
	opts := []luascript.Option{luascript.WithOutput(out)}
	if seed != nil {
		opts = append(opts, luascript.WithSeed(*seed))
	}
	return luascript.New(opts...).RunFile(cfg.Path)
}
