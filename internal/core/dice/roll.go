package dice

import (
	"fmt"
	"math"

	"github.com/louisbranch/roll/internal/core/random"
)

// Source draws uniform integers for a roller. Each must deliver exactly n
// values in [low, high] without interleaving values from other callers.
type Source interface {
	Each(n, low, high int, fn func(int)) error
}

// MaxIndividual caps the dice RollIndividual reports in one call.
const MaxIndividual = 1 << 20

// Outcome is the result of rolling a die group.
//
// Sum always equals the arithmetic sum of Individual.
type Outcome struct {
	Sum        int
	Individual []int
}

// Roller rolls dice against a Source.
type Roller struct {
	source Source
}

// NewRoller returns a roller backed by source. A nil source selects a fresh
// lazily seeded generator.
func NewRoller(source Source) *Roller {
	if source == nil {
		source = random.New()
	}
	return &Roller{source: source}
}

// Roll rolls a single die and returns a value in [1, sides].
func (r *Roller) Roll(sides int) (int, error) {
	if sides <= 0 {
		return 0, InvalidSides(sides)
	}
	var value int
	if err := r.source.Each(1, 1, sides, func(v int) { value = v }); err != nil {
		return 0, fmt.Errorf("roll d%d: %w", sides, err)
	}
	return value, nil
}

// RollMultiple rolls count dice with the given sides and returns their sum.
//
// The sum is in [count, count*sides]. Count is validated before sides.
func (r *Roller) RollMultiple(count, sides int) (int, error) {
	if err := validateGroup(count, sides); err != nil {
		return 0, err
	}
	sum := 0
	if err := r.source.Each(count, 1, sides, func(v int) { sum += v }); err != nil {
		return 0, fmt.Errorf("roll %dd%d: %w", count, sides, err)
	}
	return sum, nil
}

// RollIndividual rolls count dice and returns every outcome in roll order.
func (r *Roller) RollIndividual(count, sides int) (Outcome, error) {
	if err := validateGroup(count, sides); err != nil {
		return Outcome{}, err
	}
	if count > MaxIndividual {
		return Outcome{}, InvalidCount(count)
	}
	outcome := Outcome{Individual: make([]int, 0, count)}
	err := r.source.Each(count, 1, sides, func(v int) {
		outcome.Individual = append(outcome.Individual, v)
		outcome.Sum += v
	})
	if err != nil {
		return Outcome{}, fmt.Errorf("roll %dd%d: %w", count, sides, err)
	}
	return outcome, nil
}

func validateGroup(count, sides int) error {
	if count <= 0 {
		return InvalidCount(count)
	}
	if sides <= 0 {
		return InvalidSides(sides)
	}
	// count*sides bounds the sum.
	if count > math.MaxInt/sides {
		return InvalidCount(count)
	}
	return nil
}
