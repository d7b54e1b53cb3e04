package domain

import (
	"context"
	"fmt"

	"github.com/louisbranch/roll/internal/platform/timeouts"
	"github.com/louisbranch/roll/internal/services/dice/client"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// DiceClient is the subset of the dice client used by MCP handlers.
type DiceClient interface {
	Version(ctx context.Context) (string, error)
	Roll(ctx context.Context, sides int, seed *uint64) (client.Roll, error)
	RollMultiple(ctx context.Context, count, sides int, seed *uint64) (client.Roll, error)
	RollIndividual(ctx context.Context, count, sides int, seed *uint64) (client.Roll, error)
	RollNotation(ctx context.Context, notation *string, seed *uint64) (client.Roll, error)
	GetRoll(ctx context.Context, id string) (client.Roll, error)
	ListRolls(ctx context.Context, pageSize int, pageToken string) (client.Page, error)
}

// RngResult reports the generator state a roll used.
type RngResult struct {
	SeedUsed   uint64 `json:"seed_used" jsonschema:"seed that reproduces this roll"`
	SeedSource string `json:"seed_source" jsonschema:"seed source (client or server)"`
}

// RollResult is the MCP output for every rolling tool.
type RollResult struct {
	ID          string    `json:"id,omitempty" jsonschema:"history id, empty when history is disabled"`
	Notation    string    `json:"notation,omitempty" jsonschema:"canonical dice notation"`
	Count       int       `json:"count" jsonschema:"number of dice rolled"`
	Sides       int       `json:"sides" jsonschema:"sides per die"`
	Modifier    int       `json:"modifier,omitempty" jsonschema:"modifier added to the dice sum"`
	Individual  []int     `json:"individual,omitempty" jsonschema:"each die in roll order"`
	Sum         int       `json:"sum" jsonschema:"dice sum before the modifier"`
	Total       int       `json:"total" jsonschema:"final result"`
	Rng         RngResult `json:"rng" jsonschema:"generator details"`
	CreatedAt   string    `json:"created_at,omitempty" jsonschema:"RFC 3339 time the roll was made"`
	HasModifier bool      `json:"has_modifier,omitempty" jsonschema:"whether the notation carried a modifier"`
}

// VersionInput is the empty input for dice_version.
type VersionInput struct{}

// VersionResult reports the dice library version.
type VersionResult struct {
	Version string `json:"version" jsonschema:"dice library version"`
}

// RollInput is the input for dice_roll.
type RollInput struct {
	Sides int     `json:"sides" jsonschema:"number of sides for the die"`
	Seed  *uint64 `json:"seed,omitempty" jsonschema:"optional seed to replay a roll"`
}

// RollGroupInput is the input for dice_roll_multiple and dice_roll_individual.
type RollGroupInput struct {
	Count int     `json:"count" jsonschema:"number of dice to roll"`
	Sides int     `json:"sides" jsonschema:"number of sides for each die"`
	Seed  *uint64 `json:"seed,omitempty" jsonschema:"optional seed to replay a roll"`
}

// RollNotationInput is the input for dice_roll_notation.
type RollNotationInput struct {
	Notation string  `json:"notation" jsonschema:"dice notation such as 3d6+5"`
	Seed     *uint64 `json:"seed,omitempty" jsonschema:"optional seed to replay a roll"`
}

// VersionTool defines the dice_version tool.
func VersionTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "dice_version",
		Description: "Reports the dice library version",
	}
}

// RollTool defines the dice_roll tool.
func RollTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "dice_roll",
		Description: "Rolls a single die",
	}
}

// RollMultipleTool defines the dice_roll_multiple tool.
func RollMultipleTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "dice_roll_multiple",
		Description: "Rolls several dice of the same size and reports the sum",
	}
}

// RollIndividualTool defines the dice_roll_individual tool.
func RollIndividualTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "dice_roll_individual",
		Description: "Rolls several dice of the same size and reports every die",
	}
}

// RollNotationTool defines the dice_roll_notation tool.
func RollNotationTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "dice_roll_notation",
		Description: "Rolls dice written in NdS or NdS+M notation",
	}
}

// VersionHandler reports the server's dice version.
func VersionHandler(dice DiceClient) mcp.ToolHandlerFor[VersionInput, VersionResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, _ VersionInput) (*mcp.CallToolResult, VersionResult, error) {
		if dice == nil {
			return nil, VersionResult{}, errDiceNotConfigured
		}
		callCtx, cancel := context.WithTimeout(ctx, timeouts.GRPCRequest)
		defer cancel()

		version, err := dice.Version(callCtx)
		if err != nil {
			return nil, VersionResult{}, fmt.Errorf("dice version failed: %w", err)
		}
		return nil, VersionResult{Version: version}, nil
	}
}

// RollHandler rolls one die.
func RollHandler(dice DiceClient) mcp.ToolHandlerFor[RollInput, RollResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input RollInput) (*mcp.CallToolResult, RollResult, error) {
		return callRoll(ctx, dice, "dice roll", func(callCtx context.Context) (client.Roll, error) {
			return dice.Roll(callCtx, input.Sides, input.Seed)
		})
	}
}

// RollMultipleHandler rolls a die group and reports its sum.
func RollMultipleHandler(dice DiceClient) mcp.ToolHandlerFor[RollGroupInput, RollResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input RollGroupInput) (*mcp.CallToolResult, RollResult, error) {
		return callRoll(ctx, dice, "dice roll multiple", func(callCtx context.Context) (client.Roll, error) {
			return dice.RollMultiple(callCtx, input.Count, input.Sides, input.Seed)
		})
	}
}

// RollIndividualHandler rolls a die group and reports every die.
func RollIndividualHandler(dice DiceClient) mcp.ToolHandlerFor[RollGroupInput, RollResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input RollGroupInput) (*mcp.CallToolResult, RollResult, error) {
		return callRoll(ctx, dice, "dice roll individual", func(callCtx context.Context) (client.Roll, error) {
			return dice.RollIndividual(callCtx, input.Count, input.Sides, input.Seed)
		})
	}
}

// RollNotationHandler parses and rolls dice notation.
func RollNotationHandler(dice DiceClient) mcp.ToolHandlerFor[RollNotationInput, RollResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input RollNotationInput) (*mcp.CallToolResult, RollResult, error) {
		return callRoll(ctx, dice, "dice roll notation", func(callCtx context.Context) (client.Roll, error) {
			notation := input.Notation
			return dice.RollNotation(callCtx, &notation, input.Seed)
		})
	}
}

func callRoll(ctx context.Context, dice DiceClient, label string, call func(context.Context) (client.Roll, error)) (*mcp.CallToolResult, RollResult, error) {
	if dice == nil {
		return nil, RollResult{}, errDiceNotConfigured
	}
	callCtx, cancel := context.WithTimeout(ctx, timeouts.GRPCRequest)
	defer cancel()

	roll, err := call(callCtx)
	if err != nil {
		return nil, RollResult{}, fmt.Errorf("%s failed: %w", label, err)
	}
	return nil, rollResult(roll), nil
}

func rollResult(roll client.Roll) RollResult {
	result := RollResult{
		ID:          roll.ID,
		Notation:    roll.Notation,
		Count:       roll.Count,
		Sides:       roll.Sides,
		Modifier:    roll.Modifier,
		HasModifier: roll.HasModifier,
		Individual:  roll.Individual,
		Sum:         roll.Sum,
		Total:       roll.Total,
		Rng: RngResult{
			SeedUsed:   roll.SeedUsed,
			SeedSource: roll.SeedSource,
		},
	}
	if !roll.CreatedAt.IsZero() {
		result.CreatedAt = roll.CreatedAt.UTC().Format(timeLayout)
	}
	return result
}
