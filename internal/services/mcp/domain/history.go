package domain

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/louisbranch/roll/internal/platform/timeouts"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const (
	rollURIPrefix    = "roll://"
	rollHistoryURI   = "roll://history"
	historyPageSize  = 50
	timeLayout       = time.RFC3339Nano
	jsonResourceMIME = "application/json"
)

var errDiceNotConfigured = errors.New("dice client is not configured")

// RollHistoryPayload is the JSON body of roll://history.
type RollHistoryPayload struct {
	Rolls         []RollResult `json:"rolls"`
	NextPageToken string       `json:"next_page_token,omitempty"`
}

// RollResourceTemplate defines roll://{roll_id}.
func RollResourceTemplate() *mcp.ResourceTemplate {
	return &mcp.ResourceTemplate{
		Name:        "roll",
		Title:       "Roll",
		Description: "Readable record of one recorded roll. URI format: roll://{roll_id}",
		MIMEType:    jsonResourceMIME,
		URITemplate: "roll://{roll_id}",
	}
}

// RollHistoryResource defines roll://history.
func RollHistoryResource() *mcp.Resource {
	return &mcp.Resource{
		Name:        "roll_history",
		Title:       "Roll History",
		Description: "Most recent recorded rolls, newest first",
		MIMEType:    jsonResourceMIME,
		URI:         rollHistoryURI,
	}
}

// RollResourceHandler reads one recorded roll.
func RollResourceHandler(dice DiceClient) mcp.ResourceHandler {
	return func(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
		if dice == nil {
			return nil, errDiceNotConfigured
		}
		if req == nil || req.Params == nil || req.Params.URI == "" {
			return nil, fmt.Errorf("roll ID is required; use URI format roll://{roll_id}")
		}
		uri := req.Params.URI
		rollID, err := parseRollIDFromURI(uri)
		if err != nil {
			return nil, fmt.Errorf("parse roll ID from URI: %w", err)
		}

		callCtx, cancel := context.WithTimeout(ctx, timeouts.GRPCRequest)
		defer cancel()

		roll, err := dice.GetRoll(callCtx, rollID)
		if err != nil {
			return nil, fmt.Errorf("get roll failed: %w", err)
		}
		return jsonResource(uri, rollResult(roll))
	}
}

// RollHistoryResourceHandler reads the newest recorded rolls.
func RollHistoryResourceHandler(dice DiceClient) mcp.ResourceHandler {
	return func(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
		if dice == nil {
			return nil, errDiceNotConfigured
		}
		uri := rollHistoryURI
		if req != nil && req.Params != nil && req.Params.URI != "" {
			uri = req.Params.URI
		}
		if uri != rollHistoryURI {
			return nil, fmt.Errorf("invalid URI: expected %s, got %q", rollHistoryURI, uri)
		}

		callCtx, cancel := context.WithTimeout(ctx, timeouts.GRPCRequest)
		defer cancel()

		page, err := dice.ListRolls(callCtx, historyPageSize, "")
		if err != nil {
			return nil, fmt.Errorf("list rolls failed: %w", err)
		}
		payload := RollHistoryPayload{
			Rolls:         make([]RollResult, 0, len(page.Rolls)),
			NextPageToken: page.NextPageToken,
		}
		for _, roll := range page.Rolls {
			payload.Rolls = append(payload.Rolls, rollResult(roll))
		}
		return jsonResource(uri, payload)
	}
}

// parseRollIDFromURI extracts the ID from roll://{roll_id}.
func parseRollIDFromURI(uri string) (string, error) {
	rest, ok := strings.CutPrefix(uri, rollURIPrefix)
	if !ok {
		return "", fmt.Errorf("URI must start with %s", rollURIPrefix)
	}
	rest = strings.TrimSpace(rest)
	if rest == "" || strings.Contains(rest, "/") || rest == "{roll_id}" {
		return "", fmt.Errorf("URI must be roll://{roll_id} with a concrete roll ID")
	}
	if rest == strings.TrimPrefix(rollHistoryURI, rollURIPrefix) {
		return "", fmt.Errorf("%s is not a roll ID", rest)
	}
	return rest, nil
}

func jsonResource(uri string, payload any) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal resource: %w", err)
	}
	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{
			{
				URI:      uri,
				MIMEType: jsonResourceMIME,
				Text:     string(data),
			},
		},
	}, nil
}
