// Package random provides the seedable pseudo-random source behind every roll.
//
// A Generator is safe for concurrent use. Callers that need reproducible
// sequences initialize it with an explicit seed; otherwise the first draw
// seeds it lazily from the configured seed function (time-derived by default).
package random

import (
	"errors"
	"math"
	"math/rand"
	"sync"
)

// ErrInvalidRange indicates a draw was requested with low > high.
var ErrInvalidRange = errors.New("random range low bound exceeds high bound")

// SeedFunc produces a seed when the generator is initialized without one.
type SeedFunc func() uint64

// Option configures a Generator.
type Option func(*Generator)

// WithSeedFunc overrides the seed function used for implicit initialization.
func WithSeedFunc(fn SeedFunc) Option {
	return func(g *Generator) {
		if fn != nil {
			g.seedFunc = fn
		}
	}
}

// Generator is a mutex-guarded pseudo-random source producing uniform integers.
type Generator struct {
	mu       sync.Mutex
	rng      *rand.Rand
	seed     uint64
	seeded   bool
	draws    uint64
	seedFunc SeedFunc
}

// New returns an uninitialized generator. It seeds itself on first use.
func New(opts ...Option) *Generator {
	g := &Generator{seedFunc: TimeSeed}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// NewSeeded returns a generator initialized with seed.
func NewSeeded(seed uint64, opts ...Option) *Generator {
	g := New(opts...)
	g.Init(&seed)
	return g
}

// Init replaces the generator state. A nil seed selects one from the seed
// function. Previous state and the draw counter are discarded.
func (g *Generator) Init(seed *uint64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if seed == nil {
		g.reseedLocked(g.seedFunc())
		return
	}
	g.reseedLocked(*seed)
}

// Seed returns the seed in use and whether the generator has been initialized.
func (g *Generator) Seed() (uint64, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.seed, g.seeded
}

// Draws returns how many values were drawn since the last initialization.
func (g *Generator) Draws() uint64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.draws
}

// NextInRange returns a uniformly distributed integer in [low, high].
func (g *Generator) NextInRange(low, high int) (int, error) {
	if low > high {
		return 0, ErrInvalidRange
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.ensureSeededLocked()
	return g.drawLocked(low, high), nil
}

// FillRange fills dst with len(dst) draws in [low, high].
func (g *Generator) FillRange(dst []int, low, high int) error {
	i := 0
	return g.Each(len(dst), low, high, func(v int) {
		dst[i] = v
		i++
	})
}

// Each draws n values in [low, high] under a single lock acquisition and
// passes them to fn in draw order, so the values of one call are never
// interleaved with another caller's. fn must not use the generator.
func (g *Generator) Each(n, low, high int, fn func(int)) error {
	if low > high {
		return ErrInvalidRange
	}
	if n <= 0 {
		return nil
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.ensureSeededLocked()
	for i := 0; i < n; i++ {
		fn(g.drawLocked(low, high))
	}
	return nil
}

func (g *Generator) ensureSeededLocked() {
	if !g.seeded {
		g.reseedLocked(g.seedFunc())
	}
}

func (g *Generator) reseedLocked(seed uint64) {
	g.rng = rand.New(rand.NewSource(int64(seed)))
	g.seed = seed
	g.seeded = true
	g.draws = 0
}

// drawLocked relies on two's complement wrapping: high-low+1 computed in
// uint64 is the exact span size, and zero means the full 64-bit range.
func (g *Generator) drawLocked(low, high int) int {
	g.draws++
	span := uint64(high) - uint64(low) + 1
	switch {
	case span == 0:
		return int(g.rng.Uint64())
	case span <= math.MaxInt64:
		return low + int(g.rng.Int63n(int64(span)))
	default:
		for {
			if v := g.rng.Uint64(); v < span {
				return low + int(v)
			}
		}
	}
}
