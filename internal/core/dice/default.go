package dice

// The process-wide generator below backs the package-level functions.
//
// Seed 0 is an ordinary seed here: Init(&zero) replays the same sequence every
// time. Code ported from a dice_init(0) or init(Some(0)) call, where 0 meant
// "choose a seed", must pass nil instead.

import "github.com/louisbranch/roll/internal/core/random"

// version is overridable at link time with -ldflags "-X ...dice.version=...".
var version = "1.0.0"

// unknownVersion is reported when the build blanked the version string.
const unknownVersion = "unknown"

var (
	defaultGenerator = random.New()
	defaultRoller    = NewRoller(defaultGenerator)
)

// Version returns the library version.
func Version() string {
	if version == "" {
		return unknownVersion
	}
	return version
}

// Init reseeds the process-wide generator. A nil seed selects a time-derived
// one; a pointer to 0 seeds with 0. Without Init the generator seeds itself
// on first use.
func Init(seed *uint64) {
	defaultGenerator.Init(seed)
}

// Default returns the roller backed by the process-wide generator.
func Default() *Roller {
	return defaultRoller
}

// Roll rolls one die on the process-wide generator.
func Roll(sides int) (int, error) {
	return defaultRoller.Roll(sides)
}

// RollMultiple rolls a die group on the process-wide generator.
func RollMultiple(count, sides int) (int, error) {
	return defaultRoller.RollMultiple(count, sides)
}

// RollIndividual rolls a die group on the process-wide generator and keeps every die.
func RollIndividual(count, sides int) (Outcome, error) {
	return defaultRoller.RollIndividual(count, sides)
}

// RollNotation rolls dice notation on the process-wide generator.
func RollNotation(text string) (int, error) {
	return defaultRoller.RollNotation(text)
}
