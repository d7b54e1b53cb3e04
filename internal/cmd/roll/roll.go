// Package roll implements the roll command line: parse notation, roll it on
// the process-wide generator and print the result.
package roll

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/louisbranch/roll/internal/core/dice"
	"github.com/louisbranch/roll/internal/platform/branding"
	entrypoint "github.com/louisbranch/roll/internal/platform/cmd"
	"github.com/louisbranch/roll/internal/platform/config"
)

// Config holds roll command configuration.
type Config struct {
	Seed       string `env:"ROLL_SEED"`
	Times      int    `env:"ROLL_TIMES" envDefault:"1"`
	Individual bool
	Version    bool
	Notation   string
}

// ParseConfig parses environment and flags into Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	for _, name := range []string{"seed", "s"} {
		fs.StringVar(&cfg.Seed, name, cfg.Seed, "Seed the generator with N")
	}
	for _, name := range []string{"times", "count", "c"} {
		fs.IntVar(&cfg.Times, name, cfg.Times, "Roll N times")
	}
	for _, name := range []string{"individual", "i"} {
		fs.BoolVar(&cfg.Individual, name, cfg.Individual, "Show every die")
	}
	for _, name := range []string{"version", "v"} {
		fs.BoolVar(&cfg.Version, name, cfg.Version, "Show version information")
	}
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	if cfg.Version {
		return cfg, nil
	}
	switch fs.NArg() {
	case 0:
		return Config{}, errors.New("no dice notation specified")
	case 1:
		cfg.Notation = fs.Arg(0)
	default:
		return Config{}, errors.New("multiple dice notations specified")
	}
	return cfg, nil
}

// Run rolls cfg.Notation cfg.Times times and writes one line per roll.
func Run(_ context.Context, cfg Config, out io.Writer) error {
	if cfg.Version {
		_, err := fmt.Fprintf(out, "%s %s - %s\n", branding.AppName, dice.Version(), branding.Tagline)
		return err
	}
	if cfg.Times <= 0 {
		return fmt.Errorf("count must be positive, got %d", cfg.Times)
	}
	seed, err := config.ParseSeed(cfg.Seed)
	if err != nil {
		return err
	}
	if seed != nil {
		dice.Init(seed)
	}

	roller := dice.Default()
	for i := 1; i <= cfg.Times; i++ {
		result, err := roller.RollNotationDetailed(cfg.Notation)
		if err != nil {
			return err
		}
		line := strconv.Itoa(result.Total)
		if cfg.Individual {
			line = FormatDetailed(result)
		}
		if cfg.Times > 1 {
			line = fmt.Sprintf("Roll %d: %s", i, line)
		}
		if _, err := fmt.Fprintln(out, line); err != nil {
			return err
		}
	}
	return nil
}

// FormatDetailed renders a roll as "[a b c] +m = total".
func FormatDetailed(result dice.NotationResult) string {
	values := make([]string, len(result.Individual))
	for i, value := range result.Individual {
		values[i] = strconv.Itoa(value)
	}
	var b strings.Builder
	b.WriteString("[")
	b.WriteString(strings.Join(values, " "))
	b.WriteString("]")
	if result.Spec.HasModifier {
		fmt.Fprintf(&b, " %+d", result.Spec.Modifier)
	}
	fmt.Fprintf(&b, " = %d", result.Total)
	return b.String()
}
