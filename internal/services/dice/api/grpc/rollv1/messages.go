package rollv1

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"google.golang.org/protobuf/types/known/structpb"
)

// Field names shared by requests and responses.
const (
	FieldSides         = "sides"
	FieldCount         = "count"
	FieldNotation      = "notation"
	FieldSeed          = "seed"
	FieldID            = "id"
	FieldPageSize      = "page_size"
	FieldPageToken     = "page_token"
	FieldVersion       = "version"
	FieldOperation     = "operation"
	FieldModifier      = "modifier"
	FieldHasModifier   = "has_modifier"
	FieldIndividual    = "individual"
	FieldSum           = "sum"
	FieldTotal         = "total"
	FieldRng           = "rng"
	FieldSeedUsed      = "seed_used"
	FieldSeedSource    = "seed_source"
	FieldCreatedAt     = "created_at"
	FieldRolls         = "rolls"
	FieldNextPageToken = "next_page_token"
)

// maxExactInteger is the largest integer a Struct number holds exactly.
const maxExactInteger = 1 << 53

// FieldError reports a request field with the wrong shape.
type FieldError struct {
	Field  string
	Reason string
}

// Error implements the error interface.
func (e *FieldError) Error() string {
	return fmt.Sprintf("field %s: %s", e.Field, e.Reason)
}

// RollRequest is the request for every roll method. Each method reads the
// fields it needs; absent fields stay nil.
type RollRequest struct {
	Sides    *int
	Count    *int
	Notation *string
	Seed     *uint64
}

// Struct encodes the request. Seeds travel as decimal strings so all 64
// bits survive.
func (r RollRequest) Struct() *structpb.Struct {
	fields := map[string]*structpb.Value{}
	if r.Sides != nil {
		fields[FieldSides] = structpb.NewNumberValue(float64(*r.Sides))
	}
	if r.Count != nil {
		fields[FieldCount] = structpb.NewNumberValue(float64(*r.Count))
	}
	if r.Notation != nil {
		fields[FieldNotation] = structpb.NewStringValue(*r.Notation)
	}
	if r.Seed != nil {
		fields[FieldSeed] = structpb.NewStringValue(strconv.FormatUint(*r.Seed, 10))
	}
	return &structpb.Struct{Fields: fields}
}

// ParseRollRequest decodes a roll request. Seeds may be a non-negative
// integral number up to 2^53 or a decimal string.
func ParseRollRequest(in *structpb.Struct) (RollRequest, error) {
	var req RollRequest
	var err error
	if req.Sides, err = optionalInt(in, FieldSides); err != nil {
		return RollRequest{}, err
	}
	if req.Count, err = optionalInt(in, FieldCount); err != nil {
		return RollRequest{}, err
	}
	if req.Notation, err = optionalString(in, FieldNotation); err != nil {
		return RollRequest{}, err
	}
	if req.Seed, err = optionalSeed(in, FieldSeed); err != nil {
		return RollRequest{}, err
	}
	return req, nil
}

// GetRollRequest identifies one recorded roll.
type GetRollRequest struct {
	ID string
}

// Struct encodes the request.
func (r GetRollRequest) Struct() *structpb.Struct {
	return &structpb.Struct{Fields: map[string]*structpb.Value{
		FieldID: structpb.NewStringValue(r.ID),
	}}
}

// ParseGetRollRequest decodes a get request.
func ParseGetRollRequest(in *structpb.Struct) (GetRollRequest, error) {
	id, err := optionalString(in, FieldID)
	if err != nil {
		return GetRollRequest{}, err
	}
	if id == nil {
		return GetRollRequest{}, nil
	}
	return GetRollRequest{ID: *id}, nil
}

// ListRollsRequest pages through roll history.
type ListRollsRequest struct {
	PageSize  int
	PageToken string
}

// Struct encodes the request.
func (r ListRollsRequest) Struct() *structpb.Struct {
	fields := map[string]*structpb.Value{}
	if r.PageSize != 0 {
		fields[FieldPageSize] = structpb.NewNumberValue(float64(r.PageSize))
	}
	if r.PageToken != "" {
		fields[FieldPageToken] = structpb.NewStringValue(r.PageToken)
	}
	return &structpb.Struct{Fields: fields}
}

// ParseListRollsRequest decodes a list request.
func ParseListRollsRequest(in *structpb.Struct) (ListRollsRequest, error) {
	var req ListRollsRequest
	size, err := optionalInt(in, FieldPageSize)
	if err != nil {
		return ListRollsRequest{}, err
	}
	if size != nil {
		req.PageSize = *size
	}
	token, err := optionalString(in, FieldPageToken)
	if err != nil {
		return ListRollsRequest{}, err
	}
	if token != nil {
		req.PageToken = *token
	}
	return req, nil
}

// VersionResponse reports the dice library version.
type VersionResponse struct {
	Version string
}

// Struct encodes the response.
func (r VersionResponse) Struct() *structpb.Struct {
	return &structpb.Struct{Fields: map[string]*structpb.Value{
		FieldVersion: structpb.NewStringValue(r.Version),
	}}
}

// ParseVersionResponse decodes a version response.
func ParseVersionResponse(in *structpb.Struct) (VersionResponse, error) {
	version, err := optionalString(in, FieldVersion)
	if err != nil {
		return VersionResponse{}, err
	}
	if version == nil {
		return VersionResponse{}, &FieldError{Field: FieldVersion, Reason: "is required"}
	}
	return VersionResponse{Version: *version}, nil
}

// Roll is a completed roll as returned by every roll method and by history.
type Roll struct {
	ID          string
	Operation   string
	Notation    string
	Count       int
	Sides       int
	Modifier    int
	HasModifier bool
	Individual  []int
	Sum         int
	Total       int
	SeedUsed    uint64
	SeedSource  string
	CreatedAt   time.Time
}

// Struct encodes the roll.
func (r Roll) Struct() *structpb.Struct {
	fields := map[string]*structpb.Value{
		FieldOperation:   structpb.NewStringValue(r.Operation),
		FieldCount:       structpb.NewNumberValue(float64(r.Count)),
		FieldSides:       structpb.NewNumberValue(float64(r.Sides)),
		FieldModifier:    structpb.NewNumberValue(float64(r.Modifier)),
		FieldHasModifier: structpb.NewBoolValue(r.HasModifier),
		FieldSum:         structpb.NewNumberValue(float64(r.Sum)),
		FieldTotal:       structpb.NewNumberValue(float64(r.Total)),
		FieldRng: structpb.NewStructValue(&structpb.Struct{Fields: map[string]*structpb.Value{
			FieldSeedUsed:   structpb.NewStringValue(strconv.FormatUint(r.SeedUsed, 10)),
			FieldSeedSource: structpb.NewStringValue(r.SeedSource),
		}}),
	}
	if r.ID != "" {
		fields[FieldID] = structpb.NewStringValue(r.ID)
	}
	if r.Notation != "" {
		fields[FieldNotation] = structpb.NewStringValue(r.Notation)
	}
	if r.Individual != nil {
		values := make([]*structpb.Value, len(r.Individual))
		for i, v := range r.Individual {
			values[i] = structpb.NewNumberValue(float64(v))
		}
		fields[FieldIndividual] = structpb.NewListValue(&structpb.ListValue{Values: values})
	}
	if !r.CreatedAt.IsZero() {
		fields[FieldCreatedAt] = structpb.NewStringValue(r.CreatedAt.UTC().Format(time.RFC3339Nano))
	}
	return &structpb.Struct{Fields: fields}
}

// ParseRoll decodes a roll.
func ParseRoll(in *structpb.Struct) (Roll, error) {
	var (
		roll Roll
		err  error
	)
	strs := []struct {
		field string
		dst   *string
	}{
		{FieldID, &roll.ID},
		{FieldOperation, &roll.Operation},
		{FieldNotation, &roll.Notation},
	}
	for _, s := range strs {
		value, err := optionalString(in, s.field)
		if err != nil {
			return Roll{}, err
		}
		if value != nil {
			*s.dst = *value
		}
	}
	ints := []struct {
		field string
		dst   *int
	}{
		{FieldCount, &roll.Count},
		{FieldSides, &roll.Sides},
		{FieldModifier, &roll.Modifier},
		{FieldSum, &roll.Sum},
		{FieldTotal, &roll.Total},
	}
	for _, n := range ints {
		value, err := optionalInt(in, n.field)
		if err != nil {
			return Roll{}, err
		}
		if value != nil {
			*n.dst = *value
		}
	}
	if v, ok := field(in, FieldHasModifier); ok {
		b, isBool := v.GetKind().(*structpb.Value_BoolValue)
		if !isBool {
			return Roll{}, &FieldError{Field: FieldHasModifier, Reason: "must be a bool"}
		}
		roll.HasModifier = b.BoolValue
	}
	if roll.Individual, err = optionalIntList(in, FieldIndividual); err != nil {
		return Roll{}, err
	}
	if v, ok := field(in, FieldRng); ok {
		rng := v.GetStructValue()
		if rng == nil {
			return Roll{}, &FieldError{Field: FieldRng, Reason: "must be an object"}
		}
		seed, err := optionalSeed(rng, FieldSeedUsed)
		if err != nil {
			return Roll{}, err
		}
		if seed != nil {
			roll.SeedUsed = *seed
		}
		source, err := optionalString(rng, FieldSeedSource)
		if err != nil {
			return Roll{}, err
		}
		if source != nil {
			roll.SeedSource = *source
		}
	}
	created, err := optionalString(in, FieldCreatedAt)
	if err != nil {
		return Roll{}, err
	}
	if created != nil {
		roll.CreatedAt, err = time.Parse(time.RFC3339Nano, *created)
		if err != nil {
			return Roll{}, &FieldError{Field: FieldCreatedAt, Reason: "must be an RFC 3339 timestamp"}
		}
	}
	return roll, nil
}

// ListRollsResponse is one page of roll history.
type ListRollsResponse struct {
	Rolls         []Roll
	NextPageToken string
}

// Struct encodes the response.
func (r ListRollsResponse) Struct() *structpb.Struct {
	values := make([]*structpb.Value, len(r.Rolls))
	for i, roll := range r.Rolls {
		values[i] = structpb.NewStructValue(roll.Struct())
	}
	fields := map[string]*structpb.Value{
		FieldRolls: structpb.NewListValue(&structpb.ListValue{Values: values}),
	}
	if r.NextPageToken != "" {
		fields[FieldNextPageToken] = structpb.NewStringValue(r.NextPageToken)
	}
	return &structpb.Struct{Fields: fields}
}

// ParseListRollsResponse decodes a list response.
func ParseListRollsResponse(in *structpb.Struct) (ListRollsResponse, error) {
	var resp ListRollsResponse
	if v, ok := field(in, FieldRolls); ok {
		list := v.GetListValue()
		if list == nil {
			return ListRollsResponse{}, &FieldError{Field: FieldRolls, Reason: "must be a list"}
		}
		for _, item := range list.GetValues() {
			s := item.GetStructValue()
			if s == nil {
				return ListRollsResponse{}, &FieldError{Field: FieldRolls, Reason: "entries must be objects"}
			}
			roll, err := ParseRoll(s)
			if err != nil {
				return ListRollsResponse{}, err
			}
			resp.Rolls = append(resp.Rolls, roll)
		}
	}
	token, err := optionalString(in, FieldNextPageToken)
	if err != nil {
		return ListRollsResponse{}, err
	}
	if token != nil {
		resp.NextPageToken = *token
	}
	return resp, nil
}

func field(in *structpb.Struct, name string) (*structpb.Value, bool) {
	if in == nil {
		return nil, false
	}
	v, ok := in.GetFields()[name]
	if !ok || v == nil {
		return nil, false
	}
	if _, isNull := v.GetKind().(*structpb.Value_NullValue); isNull {
		return nil, false
	}
	return v, true
}

func optionalString(in *structpb.Struct, name string) (*string, error) {
	v, ok := field(in, name)
	if !ok {
		return nil, nil
	}
	s, isString := v.GetKind().(*structpb.Value_StringValue)
	if !isString {
		return nil, &FieldError{Field: name, Reason: "must be a string"}
	}
	return &s.StringValue, nil
}

func optionalInt(in *structpb.Struct, name string) (*int, error) {
	v, ok := field(in, name)
	if !ok {
		return nil, nil
	}
	n, err := integer(v, name)
	if err != nil {
		return nil, err
	}
	return &n, nil
}

func optionalIntList(in *structpb.Struct, name string) ([]int, error) {
	v, ok := field(in, name)
	if !ok {
		return nil, nil
	}
	list := v.GetListValue()
	if list == nil {
		return nil, &FieldError{Field: name, Reason: "must be a list"}
	}
	out := make([]int, 0, len(list.GetValues()))
	for _, item := range list.GetValues() {
		n, err := integer(item, name)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, nil
}

func integer(v *structpb.Value, name string) (int, error) {
	num, isNumber := v.GetKind().(*structpb.Value_NumberValue)
	if !isNumber {
		return 0, &FieldError{Field: name, Reason: "must be a number"}
	}
	f := num.NumberValue
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) || math.Abs(f) > maxExactInteger {
		return 0, &FieldError{Field: name, Reason: "must be an integer"}
	}
	return int(f), nil
}

func optionalSeed(in *structpb.Struct, name string) (*uint64, error) {
	v, ok := field(in, name)
	if !ok {
		return nil, nil
	}
	outOfRange := &FieldError{Field: name, Reason: "must be an unsigned 64-bit integer"}
	switch kind := v.GetKind().(type) {
	case *structpb.Value_NumberValue:
		f := kind.NumberValue
		if math.IsNaN(f) || f < 0 || f > maxExactInteger || f != math.Trunc(f) {
			return nil, outOfRange
		}
		seed := uint64(f)
		return &seed, nil
	case *structpb.Value_StringValue:
		seed, err := strconv.ParseUint(strings.TrimSpace(kind.StringValue), 10, 64)
		if err != nil {
			return nil, outOfRange
		}
		return &seed, nil
	default:
		return nil, outOfRange
	}
}
