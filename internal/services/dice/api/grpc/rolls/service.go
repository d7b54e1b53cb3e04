// Package rolls implements the roll.v1.DiceService gRPC API.
package rolls

import (
	"context"
	"errors"
	"log"
	"strings"

	apperrors "github.com/louisbranch/roll/internal/platform/errors"
	"github.com/louisbranch/roll/internal/services/dice/api/grpc/rollv1"
	"github.com/louisbranch/roll/internal/services/dice/service"
	"github.com/louisbranch/roll/internal/services/dice/storage"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

// Service exposes roll.v1 gRPC operations.
type Service struct {
	dice *service.Service
}

// NewService creates a gRPC service backed by the dice application service.
func NewService(dice *service.Service) *Service {
	return &Service{dice: dice}
}

// Version returns the dice library version.
func (s *Service) Version(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	return rollv1.VersionResponse{Version: s.dice.Version()}.Struct(), nil
}

// Roll rolls one die with the requested sides.
func (s *Service) Roll(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	req, err := s.parse(ctx, in)
	if err != nil {
		return nil, err
	}
	if req.Sides == nil {
		return nil, s.fail(ctx, service.MissingField(rollv1.FieldSides))
	}
	result, err := s.dice.Roll(ctx, *req.Sides, service.RollOptions{Seed: req.Seed})
	if err != nil {
		return nil, s.fail(ctx, err)
	}
	return rollFromResult(result).Struct(), nil
}

// RollMultiple rolls a die group and returns its sum.
func (s *Service) RollMultiple(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	req, err := s.parse(ctx, in)
	if err != nil {
		return nil, err
	}
	if err := requireGroup(req); err != nil {
		return nil, s.fail(ctx, err)
	}
	result, err := s.dice.RollMultiple(ctx, *req.Count, *req.Sides, service.RollOptions{Seed: req.Seed})
	if err != nil {
		return nil, s.fail(ctx, err)
	}
	return rollFromResult(result).Struct(), nil
}

// RollIndividual rolls a die group and returns every die.
func (s *Service) RollIndividual(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	req, err := s.parse(ctx, in)
	if err != nil {
		return nil, err
	}
	if err := requireGroup(req); err != nil {
		return nil, s.fail(ctx, err)
	}
	result, err := s.dice.RollIndividual(ctx, *req.Count, *req.Sides, service.RollOptions{Seed: req.Seed})
	if err != nil {
		return nil, s.fail(ctx, err)
	}
	return rollFromResult(result).Struct(), nil
}

// RollNotation rolls dice notation.
func (s *Service) RollNotation(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	req, err := s.parse(ctx, in)
	if err != nil {
		return nil, err
	}
	if req.Notation == nil {
		return nil, s.fail(ctx, service.MissingField(rollv1.FieldNotation))
	}
	result, err := s.dice.RollNotation(ctx, *req.Notation, service.RollOptions{Seed: req.Seed})
	if err != nil {
		return nil, s.fail(ctx, err)
	}
	return rollFromResult(result).Struct(), nil
}

// GetRoll returns one recorded roll.
func (s *Service) GetRoll(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	req, err := rollv1.ParseGetRollRequest(in)
	if err != nil {
		return nil, s.fail(ctx, requestError(err))
	}
	record, err := s.dice.GetRoll(ctx, req.ID)
	if err != nil {
		return nil, s.fail(ctx, err)
	}
	return rollFromRecord(record).Struct(), nil
}

// ListRolls returns one page of recorded rolls.
func (s *Service) ListRolls(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	req, err := rollv1.ParseListRollsRequest(in)
	if err != nil {
		return nil, s.fail(ctx, requestError(err))
	}
	page, err := s.dice.ListRolls(ctx, req.PageSize, req.PageToken)
	if err != nil {
		return nil, s.fail(ctx, err)
	}
	resp := rollv1.ListRollsResponse{
		Rolls:         make([]rollv1.Roll, 0, len(page.Rolls)),
		NextPageToken: page.NextPageToken,
	}
	for _, record := range page.Rolls {
		resp.Rolls = append(resp.Rolls, rollFromRecord(record))
	}
	return resp.Struct(), nil
}

func (s *Service) ready() error {
	if s == nil || s.dice == nil {
		return status.Error(codes.Internal, "dice service is not configured")
	}
	return nil
}

func (s *Service) parse(ctx context.Context, in *structpb.Struct) (rollv1.RollRequest, error) {
	if err := s.ready(); err != nil {
		return rollv1.RollRequest{}, err
	}
	req, err := rollv1.ParseRollRequest(in)
	if err != nil {
		return rollv1.RollRequest{}, s.fail(ctx, requestError(err))
	}
	return req, nil
}

// fail converts err to a localized gRPC status. Errors without a domain code
// are logged and reported as Internal.
func (s *Service) fail(ctx context.Context, err error) error {
	err = service.DomainError(err)
	var appErr *apperrors.Error
	if !errors.As(err, &appErr) {
		log.Printf("dice grpc: %v", err)
	}
	return apperrors.HandleError(err, localeFromContext(ctx))
}

func requireGroup(req rollv1.RollRequest) error {
	if req.Count == nil {
		return service.MissingField(rollv1.FieldCount)
	}
	if req.Sides == nil {
		return service.MissingField(rollv1.FieldSides)
	}
	return nil
}

func requestError(err error) error {
	var fieldErr *rollv1.FieldError
	if errors.As(err, &fieldErr) && fieldErr.Field == rollv1.FieldSeed {
		return apperrors.Wrap(apperrors.CodeSeedOutOfRange, err.Error(), err)
	}
	return service.InvalidRequest(err.Error(), err)
}

func localeFromContext(ctx context.Context) string {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return ""
	}
	for _, value := range md.Get(rollv1.LocaleMetadataKey) {
		if value = strings.TrimSpace(value); value != "" {
			return value
		}
	}
	return ""
}

func rollFromResult(result service.RollResult) rollv1.Roll {
	return rollv1.Roll{
		ID:          result.ID,
		Operation:   string(result.Operation),
		Notation:    result.Notation,
		Count:       result.Spec.Count,
		Sides:       result.Spec.Sides,
		Modifier:    result.Spec.Modifier,
		HasModifier: result.Spec.HasModifier,
		Individual:  result.Individual,
		Sum:         result.Sum,
		Total:       result.Total,
		SeedUsed:    result.Rng.SeedUsed,
		SeedSource:  result.Rng.SeedSource,
		CreatedAt:   result.CreatedAt,
	}
}

func rollFromRecord(record storage.RollRecord) rollv1.Roll {
	sum := record.Total
	if record.HasModifier {
		sum -= record.Modifier
	}
	return rollv1.Roll{
		ID:          record.ID,
		Operation:   string(record.Operation),
		Notation:    record.Notation,
		Count:       record.Count,
		Sides:       record.Sides,
		Modifier:    record.Modifier,
		HasModifier: record.HasModifier,
		Individual:  record.Individual,
		Sum:         sum,
		Total:       record.Total,
		SeedUsed:    record.Seed,
		SeedSource:  record.SeedSource,
		CreatedAt:   record.CreatedAt,
	}
}

var _ rollv1.DiceServiceServer = (*Service)(nil)
