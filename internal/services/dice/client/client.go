// Package client is a typed client for roll.v1.DiceService.
package client

import (
	"context"
	"errors"
	"time"

	apperrors "github.com/louisbranch/roll/internal/platform/errors"
	platformgrpc "github.com/louisbranch/roll/internal/platform/grpc"
	"github.com/louisbranch/roll/internal/services/dice/api/grpc/rollv1"
	"github.com/louisbranch/roll/internal/services/dice/service"
	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

// Roll is a completed roll returned by the server.
type Roll = rollv1.Roll

// Page is one page of roll history.
type Page = rollv1.ListRollsResponse

// Client calls the dice service over a gRPC connection.
type Client struct {
	rpc    *rollv1.DiceServiceClient
	conn   *grpc.ClientConn
	locale string
}

// Option configures a Client.
type Option func(*Client)

// WithLocale asks the server for error messages in locale.
func WithLocale(locale string) Option {
	return func(c *Client) {
		c.locale = locale
	}
}

// New wraps an existing connection. Close does not close cc.
func New(cc grpc.ClientConnInterface, opts ...Option) *Client {
	c := &Client{rpc: rollv1.NewDiceServiceClient(cc)}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Dial connects to the dice server at addr and waits until it reports
// healthy. Close closes the connection.
func Dial(ctx context.Context, addr string, timeout time.Duration, logf func(string, ...any), opts ...Option) (*Client, error) {
	conn, err := platformgrpc.DialWithHealth(ctx, addr, timeout, logf)
	if err != nil {
		return nil, err
	}
	c := New(conn, opts...)
	c.conn = conn
	return c, nil
}

// Close releases a connection opened by Dial.
func (c *Client) Close() error {
	if c == nil || c.conn == nil {
		return nil
	}
	return c.conn.Close()
}

// Version returns the server's dice library version.
func (c *Client) Version(ctx context.Context) (string, error) {
	out, err := c.invoke(ctx, rollv1.MethodVersion, &structpb.Struct{})
	if err != nil {
		return "", err
	}
	resp, err := rollv1.ParseVersionResponse(out)
	if err != nil {
		return "", err
	}
	return resp.Version, nil
}

// Roll rolls one die. A nil seed lets the server choose one.
func (c *Client) Roll(ctx context.Context, sides int, seed *uint64) (Roll, error) {
	return c.roll(ctx, rollv1.MethodRoll, rollv1.RollRequest{Sides: &sides, Seed: seed}.Struct())
}

// RollMultiple rolls count dice and returns their sum.
func (c *Client) RollMultiple(ctx context.Context, count, sides int, seed *uint64) (Roll, error) {
	return c.roll(ctx, rollv1.MethodRollMultiple, rollv1.RollRequest{Count: &count, Sides: &sides, Seed: seed}.Struct())
}

// RollIndividual rolls count dice and returns every die.
func (c *Client) RollIndividual(ctx context.Context, count, sides int, seed *uint64) (Roll, error) {
	return c.roll(ctx, rollv1.MethodRollIndividual, rollv1.RollRequest{Count: &count, Sides: &sides, Seed: seed}.Struct())
}

// RollNotation rolls dice notation. A nil notation is rejected by the server
// with a null pointer error.
func (c *Client) RollNotation(ctx context.Context, notation *string, seed *uint64) (Roll, error) {
	return c.roll(ctx, rollv1.MethodRollNotation, rollv1.RollRequest{Notation: notation, Seed: seed}.Struct())
}

// GetRoll returns one recorded roll.
func (c *Client) GetRoll(ctx context.Context, id string) (Roll, error) {
	return c.roll(ctx, rollv1.MethodGetRoll, rollv1.GetRollRequest{ID: id}.Struct())
}

// ListRolls returns one page of recorded rolls.
func (c *Client) ListRolls(ctx context.Context, pageSize int, pageToken string) (Page, error) {
	out, err := c.invoke(ctx, rollv1.MethodListRolls, rollv1.ListRollsRequest{PageSize: pageSize, PageToken: pageToken}.Struct())
	if err != nil {
		return Page{}, err
	}
	return rollv1.ParseListRollsResponse(out)
}

func (c *Client) roll(ctx context.Context, method string, in *structpb.Struct) (Roll, error) {
	out, err := c.invoke(ctx, method, in)
	if err != nil {
		return Roll{}, err
	}
	return rollv1.ParseRoll(out)
}

func (c *Client) invoke(ctx context.Context, method string, in *structpb.Struct) (*structpb.Struct, error) {
	if c == nil || c.rpc == nil {
		return nil, errors.New("dice client is not configured")
	}
	if c.locale != "" {
		ctx = metadata.AppendToOutgoingContext(ctx, rollv1.LocaleMetadataKey, c.locale)
	}
	out, err := c.rpc.Invoke(ctx, method, in)
	if err != nil {
		return nil, fromStatus(err)
	}
	return out, nil
}

// fromStatus rebuilds a domain error from a gRPC status. Dice codes wrap the
// matching core error, so errors.Is(err, dice.ErrInvalidSides) holds on the
// client side. Message carries the server's localized text when present.
func fromStatus(err error) error {
	st, ok := status.FromError(err)
	if !ok {
		return err
	}
	appErr := apperrors.FromGRPCStatus(st)
	if appErr == nil {
		return err
	}
	for _, detail := range st.Details() {
		if localized, ok := detail.(*errdetails.LocalizedMessage); ok && localized.GetMessage() != "" {
			appErr.Message = localized.GetMessage()
		}
	}
	if diceErr := service.DiceError(appErr); diceErr != nil {
		appErr.Cause = diceErr
	} else {
		appErr.Cause = err
	}
	return appErr
}
