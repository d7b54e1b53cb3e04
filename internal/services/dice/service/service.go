// Package service implements the dice application service shared by the
// gRPC, HTTP and MCP surfaces.
package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/louisbranch/roll/internal/core/dice"
	"github.com/louisbranch/roll/internal/core/random"
	"github.com/louisbranch/roll/internal/platform/grpc/pagination"
	"github.com/louisbranch/roll/internal/platform/id"
	"github.com/louisbranch/roll/internal/platform/otel"
	"github.com/louisbranch/roll/internal/services/dice/storage"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	// DefaultMaxCount caps the dice rolled by one remote call.
	DefaultMaxCount = 1000

	defaultListRollsPageSize = 20
	maxListRollsPageSize     = 100
)

// Config holds service limits loaded from the environment.
type Config struct {
	MaxCount int `env:"ROLL_MAX_DICE" envDefault:"1000"`
}

// RollOptions carries per-call generator settings.
type RollOptions struct {
	// Seed replays a previous roll when set. Nil asks the service for a fresh seed.
	Seed *uint64
}

// RngInfo reports the generator state a roll was produced with.
type RngInfo struct {
	SeedUsed   uint64
	SeedSource string
}

// RollResult is the outcome of one service roll.
type RollResult struct {
	// ID is the history record ID, empty when no store is configured.
	ID         string
	Operation  storage.Operation
	Notation   string
	Spec       dice.Spec
	Individual []int
	// Sum is the dice total before any modifier.
	Sum       int
	Total     int
	Rng       RngInfo
	CreatedAt time.Time
}

// Service rolls dice for remote callers.
type Service struct {
	store    storage.RollStore
	maxCount int
	seedFunc func() (uint64, error)
	newID    func() (string, error)
	clock    func() time.Time
	metrics  *Metrics
	tracer   trace.Tracer
}

// Option configures a Service.
type Option func(*Service)

// WithStore records successful rolls in store.
func WithStore(store storage.RollStore) Option {
	return func(s *Service) {
		s.store = store
	}
}

// WithMaxCount overrides DefaultMaxCount. Non-positive values keep the default.
func WithMaxCount(max int) Option {
	return func(s *Service) {
		if max > 0 {
			s.maxCount = max
		}
	}
}

// WithSeedFunc overrides the source of server-chosen seeds.
func WithSeedFunc(fn func() (uint64, error)) Option {
	return func(s *Service) {
		if fn != nil {
			s.seedFunc = fn
		}
	}
}

// WithIDFunc overrides the history record ID generator.
func WithIDFunc(fn func() (string, error)) Option {
	return func(s *Service) {
		if fn != nil {
			s.newID = fn
		}
	}
}

// WithClock overrides the time source for record timestamps.
func WithClock(clock func() time.Time) Option {
	return func(s *Service) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// WithMetrics records request outcomes on metrics.
func WithMetrics(metrics *Metrics) Option {
	return func(s *Service) {
		s.metrics = metrics
	}
}

// New returns a dice service.
func New(opts ...Option) *Service {
	s := &Service{
		maxCount: DefaultMaxCount,
		seedFunc: random.NewSeed,
		newID:    id.NewID,
		clock:    time.Now,
		tracer:   otel.Tracer("dice"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// MaxCount returns the per-call dice limit.
func (s *Service) MaxCount() int {
	return s.maxCount
}

// HasHistory reports whether rolls are being recorded.
func (s *Service) HasHistory() bool {
	return s.store != nil
}

// Version returns the dice library version.
func (s *Service) Version() string {
	return dice.Version()
}

// Roll rolls one die.
func (s *Service) Roll(ctx context.Context, sides int, opts RollOptions) (RollResult, error) {
	spec := dice.Spec{Count: 1, Sides: sides}
	return s.run(ctx, storage.OperationRoll, spec, "", opts, func(r *dice.Roller) (RollResult, error) {
		value, err := r.Roll(sides)
		if err != nil {
			return RollResult{}, err
		}
		return RollResult{Sum: value, Total: value}, nil
	})
}

// RollMultiple rolls count dice and reports their sum.
func (s *Service) RollMultiple(ctx context.Context, count, sides int, opts RollOptions) (RollResult, error) {
	spec := dice.Spec{Count: count, Sides: sides}
	return s.run(ctx, storage.OperationRollMultiple, spec, "", opts, func(r *dice.Roller) (RollResult, error) {
		sum, err := r.RollMultiple(count, sides)
		if err != nil {
			return RollResult{}, err
		}
		return RollResult{Sum: sum, Total: sum}, nil
	})
}

// RollIndividual rolls count dice and reports every die.
func (s *Service) RollIndividual(ctx context.Context, count, sides int, opts RollOptions) (RollResult, error) {
	spec := dice.Spec{Count: count, Sides: sides}
	return s.run(ctx, storage.OperationRollIndividual, spec, "", opts, func(r *dice.Roller) (RollResult, error) {
		outcome, err := r.RollIndividual(count, sides)
		if err != nil {
			return RollResult{}, err
		}
		return RollResult{Individual: outcome.Individual, Sum: outcome.Sum, Total: outcome.Sum}, nil
	})
}

// RollNotation parses and rolls dice notation such as "3d6+5".
func (s *Service) RollNotation(ctx context.Context, notation string, opts RollOptions) (RollResult, error) {
	spec, err := dice.Parse(notation)
	if err != nil {
		s.metrics.observeFailure(storage.OperationRollNotation, err)
		return RollResult{}, DomainError(err)
	}
	return s.run(ctx, storage.OperationRollNotation, spec, notation, opts, func(r *dice.Roller) (RollResult, error) {
		detailed, err := r.RollNotationDetailed(notation)
		if err != nil {
			return RollResult{}, err
		}
		return RollResult{Individual: detailed.Individual, Sum: detailed.Sum, Total: detailed.Total}, nil
	})
}

// GetRoll returns one recorded roll.
func (s *Service) GetRoll(ctx context.Context, rollID string) (storage.RollRecord, error) {
	if s.store == nil {
		return storage.RollRecord{}, errHistoryDisabled()
	}
	rollID = strings.TrimSpace(rollID)
	if rollID == "" {
		return storage.RollRecord{}, InvalidRequest("roll id is required", nil)
	}
	record, err := s.store.GetRoll(ctx, rollID)
	if err != nil {
		return storage.RollRecord{}, DomainError(err)
	}
	return record, nil
}

// ListRolls returns recorded rolls, newest first.
func (s *Service) ListRolls(ctx context.Context, pageSize int, pageToken string) (storage.RollPage, error) {
	if s.store == nil {
		return storage.RollPage{}, errHistoryDisabled()
	}
	pageSize = pagination.ClampPageSize(pageSize, pagination.PageSizeConfig{
		Default: defaultListRollsPageSize,
		Max:     maxListRollsPageSize,
	})
	page, err := s.store.ListRolls(ctx, pageSize, pageToken)
	if err != nil {
		return storage.RollPage{}, DomainError(err)
	}
	return page, nil
}

func (s *Service) run(ctx context.Context, op storage.Operation, spec dice.Spec, notation string, opts RollOptions, roll func(*dice.Roller) (RollResult, error)) (RollResult, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, span := s.tracer.Start(ctx, "dice."+string(op), trace.WithAttributes(
		attribute.Int("dice.count", spec.Count),
		attribute.Int("dice.sides", spec.Sides),
		attribute.String("dice.notation", notation),
		attribute.Bool("dice.seeded", opts.Seed != nil),
	))
	defer span.End()

	result, err := s.roll(ctx, op, spec, opts, roll)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		s.metrics.observeFailure(op, err)
		return RollResult{}, DomainError(err)
	}
	span.SetAttributes(
		attribute.Int("dice.total", result.Total),
		attribute.String("dice.seed_source", result.Rng.SeedSource),
	)
	s.metrics.observeSuccess(op, spec.Count, result.Total)
	return result, nil
}

func (s *Service) roll(ctx context.Context, op storage.Operation, spec dice.Spec, opts RollOptions, roll func(*dice.Roller) (RollResult, error)) (RollResult, error) {
	if op != storage.OperationRoll && spec.Count > 0 && spec.Count > s.maxCount {
		return RollResult{}, errCountTooLarge(spec.Count, s.maxCount)
	}

	rng := RngInfo{SeedSource: storage.SeedSourceClient}
	if opts.Seed != nil {
		rng.SeedUsed = *opts.Seed
	} else {
		seed, err := s.seedFunc()
		if err != nil {
			return RollResult{}, fmt.Errorf("generate seed: %w", err)
		}
		rng = RngInfo{SeedUsed: seed, SeedSource: storage.SeedSourceServer}
	}

	result, err := roll(dice.NewRoller(random.NewSeeded(rng.SeedUsed)))
	if err != nil {
		return RollResult{}, err
	}
	result.Operation = op
	result.Spec = spec
	result.Rng = rng
	if op == storage.OperationRollNotation {
		result.Notation = spec.String()
	}
	result.CreatedAt = s.clock().UTC()

	if s.store == nil {
		return result, nil
	}
	result.ID, err = s.newID()
	if err != nil {
		return RollResult{}, err
	}
	if err := s.store.PutRoll(ctx, recordFromResult(result)); err != nil {
		return RollResult{}, fmt.Errorf("record roll: %w", err)
	}
	return result, nil
}

func recordFromResult(result RollResult) storage.RollRecord {
	return storage.RollRecord{
		ID:          result.ID,
		Operation:   result.Operation,
		Notation:    result.Notation,
		Count:       result.Spec.Count,
		Sides:       result.Spec.Sides,
		Modifier:    result.Spec.Modifier,
		HasModifier: result.Spec.HasModifier,
		Individual:  result.Individual,
		Total:       result.Total,
		Seed:        result.Rng.SeedUsed,
		SeedSource:  result.Rng.SeedSource,
		CreatedAt:   result.CreatedAt,
	}
}
