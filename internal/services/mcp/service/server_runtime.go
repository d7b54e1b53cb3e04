package service

import (
	"context"
	"errors"
	"fmt"
	"log"

	platformgrpc "github.com/louisbranch/roll/internal/platform/grpc"
	"github.com/louisbranch/roll/internal/platform/timeouts"
	"github.com/louisbranch/roll/internal/services/dice/client"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// Run is the MCP entrypoint and blocks until context cancellation.
func Run(ctx context.Context, cfg Config) error {
	if cfg.Transport == "" {
		cfg.Transport = TransportStdio
	}
	switch cfg.Transport {
	case TransportStdio:
		return runWithTransport(ctx, cfg, &mcp.StdioTransport{})
	default:
		return fmt.Errorf("transport %q is not supported", cfg.Transport)
	}
}

// Serve starts the MCP server on stdio and blocks until it stops or the context ends.
func (s *Server) Serve(ctx context.Context) error {
	return s.serveWithTransport(ctx, &mcp.StdioTransport{})
}

// Close releases the dice connection held by the server.
func (s *Server) Close() error {
	if s == nil || s.conn == nil {
		return nil
	}
	if err := s.conn.Close(); err != nil {
		return err
	}
	s.conn = nil
	return nil
}

// serveWithTransport runs the MCP server and then closes the dice connection.
func (s *Server) serveWithTransport(ctx context.Context, transport mcp.Transport) error {
	if s == nil || s.mcpServer == nil {
		return fmt.Errorf("MCP server is not configured")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	err := s.mcpServer.Run(ctx, transport)
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		err = nil
	}
	closeErr := s.Close()
	if closeErr != nil {
		if err == nil {
			return fmt.Errorf("close dice connection: %w", closeErr)
		}
		return fmt.Errorf("serve MCP: %v; close dice connection: %w", err, closeErr)
	}
	if err != nil {
		return fmt.Errorf("serve MCP: %w", err)
	}
	return nil
}

// runWithTransport dials dice, builds the server and serves it over transport.
func runWithTransport(ctx context.Context, cfg Config, transport mcp.Transport) error {
	dice, err := dialDice(ctx, cfg)
	if err != nil {
		return err
	}
	server, err := newServer(dice, dice)
	if err != nil {
		_ = dice.Close()
		return err
	}
	return server.serveWithTransport(ctx, transport)
}

func dialDice(ctx context.Context, cfg Config) (*client.Client, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	addr := diceAddress(cfg.DiceAddr)
	logf := func(format string, args ...any) {
		log.Printf("dice %s", fmt.Sprintf(format, args...))
	}
	var opts []client.Option
	if cfg.Locale != "" {
		opts = append(opts, client.WithLocale(cfg.Locale))
	}
	dice, err := client.Dial(ctx, addr, timeouts.GRPCDial, logf, opts...)
	if err != nil {
		var dialErr *platformgrpc.DialError
		if errors.As(err, &dialErr) {
			if dialErr.Stage == platformgrpc.DialStageConnect {
				return nil, fmt.Errorf("connect to dice server at %s: %w", addr, dialErr.Err)
			}
			return nil, dialErr.Err
		}
		return nil, err
	}
	return dice, nil
}
