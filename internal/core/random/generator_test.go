package random

import (
	"errors"
	"math"
	"sync"
	"testing"
)

func TestNextInRangeStaysInBounds(t *testing.T) {
	g := NewSeeded(42)
	tests := []struct {
		name      string
		low, high int
	}{
		{name: "d6", low: 1, high: 6},
		{name: "single value", low: 7, high: 7},
		{name: "negative span", low: -10, high: -3},
		{name: "crosses zero", low: -5, high: 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for i := 0; i < 500; i++ {
				v, err := g.NextInRange(tt.low, tt.high)
				if err != nil {
					t.Fatalf("NextInRange(%d, %d) error = %v", tt.low, tt.high, err)
				}
				if v < tt.low || v > tt.high {
					t.Fatalf("NextInRange(%d, %d) = %d, out of range", tt.low, tt.high, v)
				}
			}
		})
	}
}

func TestNextInRangeExtremeBounds(t *testing.T) {
	g := NewSeeded(7)
	for i := 0; i < 100; i++ {
		if _, err := g.NextInRange(math.MinInt, math.MaxInt); err != nil {
			t.Fatalf("full range draw error = %v", err)
		}
		v, err := g.NextInRange(-1, math.MaxInt)
		if err != nil {
			t.Fatalf("wide range draw error = %v", err)
		}
		if v < -1 {
			t.Fatalf("wide range draw = %d, want >= -1", v)
		}
	}
}

func TestNextInRangeRejectsInvertedRange(t *testing.T) {
	g := NewSeeded(1)
	if _, err := g.NextInRange(6, 1); !errors.Is(err, ErrInvalidRange) {
		t.Fatalf("NextInRange(6, 1) error = %v, want %v", err, ErrInvalidRange)
	}
	if err := g.FillRange(make([]int, 3), 2, 1); !errors.Is(err, ErrInvalidRange) {
		t.Fatalf("FillRange(2, 1) error = %v, want %v", err, ErrInvalidRange)
	}
	if g.Draws() != 0 {
		t.Fatalf("Draws() = %d after rejected calls, want 0", g.Draws())
	}
}

func TestSameSeedSameSequence(t *testing.T) {
	first := NewSeeded(12345)
	second := NewSeeded(12345)
	for i := 0; i < 50; i++ {
		a, _ := first.NextInRange(1, 100)
		b, _ := second.NextInRange(1, 100)
		if a != b {
			t.Fatalf("draw %d differs: %d vs %d", i, a, b)
		}
	}
}

func TestInitReplacesState(t *testing.T) {
	seed := uint64(99)
	g := New()
	g.Init(&seed)
	want := make([]int, 10)
	if err := g.FillRange(want, 1, 20); err != nil {
		t.Fatalf("FillRange error = %v", err)
	}

	g.Init(&seed)
	if g.Draws() != 0 {
		t.Fatalf("Draws() = %d after Init, want 0", g.Draws())
	}
	got := make([]int, 10)
	if err := g.FillRange(got, 1, 20); err != nil {
		t.Fatalf("FillRange error = %v", err)
	}
	for i := range want {
		if want[i] != got[i] {
			t.Fatalf("draw %d differs after reinit: %d vs %d", i, want[i], got[i])
		}
	}
}

func TestFillRangeMatchesSequentialDraws(t *testing.T) {
	batch := NewSeeded(5)
	single := NewSeeded(5)
	values := make([]int, 8)
	if err := batch.FillRange(values, 1, 8); err != nil {
		t.Fatalf("FillRange error = %v", err)
	}
	for i, v := range values {
		s, _ := single.NextInRange(1, 8)
		if s != v {
			t.Fatalf("value %d = %d, want %d", i, v, s)
		}
	}
	if batch.Draws() != uint64(len(values)) {
		t.Fatalf("Draws() = %d, want %d", batch.Draws(), len(values))
	}
}

func TestLazyInitUsesSeedFunc(t *testing.T) {
	calls := 0
	g := New(WithSeedFunc(func() uint64 {
		calls++
		return 314
	}))
	if _, ok := g.Seed(); ok {
		t.Fatal("expected uninitialized generator")
	}
	if _, err := g.NextInRange(1, 6); err != nil {
		t.Fatalf("NextInRange error = %v", err)
	}
	seed, ok := g.Seed()
	if !ok || seed != 314 {
		t.Fatalf("Seed() = (%d, %t), want (314, true)", seed, ok)
	}
	if _, err := g.NextInRange(1, 6); err != nil {
		t.Fatalf("NextInRange error = %v", err)
	}
	if calls != 1 {
		t.Fatalf("seed func called %d times, want 1", calls)
	}
}

func TestInitWithoutSeedUsesSeedFunc(t *testing.T) {
	g := New(WithSeedFunc(func() uint64 { return 8 }))
	g.Init(nil)
	seed, ok := g.Seed()
	if !ok || seed != 8 {
		t.Fatalf("Seed() = (%d, %t), want (8, true)", seed, ok)
	}
}

func TestConcurrentDrawsAreCounted(t *testing.T) {
	g := NewSeeded(2)
	const workers = 8
	const perWorker = 200
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			buf := make([]int, 4)
			for i := 0; i < perWorker; i++ {
				_ = g.FillRange(buf, 1, 6)
			}
		}()
	}
	wg.Wait()
	if got, want := g.Draws(), uint64(workers*perWorker*4); got != want {
		t.Fatalf("Draws() = %d, want %d", got, want)
	}
}

func TestNewSeedProducesValues(t *testing.T) {
	a, err := NewSeed()
	if err != nil {
		t.Fatalf("NewSeed error = %v", err)
	}
	b, err := NewSeed()
	if err != nil {
		t.Fatalf("NewSeed error = %v", err)
	}
	if a == b {
		t.Fatalf("expected distinct seeds, got %d twice", a)
	}
}
