package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/louisbranch/roll/internal/platform/branding"
	"github.com/louisbranch/roll/internal/platform/discovery"
	"github.com/louisbranch/roll/internal/services/mcp/domain"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const (
	// serverName identifies this MCP server to clients.
	serverName = branding.AppName + " MCP"
	// serverVersion identifies the MCP server version.
	serverVersion = "0.1.0"
)

// TransportKind identifies the MCP transport implementation.
type TransportKind string

// TransportStdio uses standard input/output for MCP.
const TransportStdio TransportKind = "stdio"

// Config configures the MCP server.
type Config struct {
	DiceAddr  string        `env:"ROLL_MCP_DICE_ADDR" envDefault:"localhost:8090"`
	Transport TransportKind `env:"ROLL_MCP_TRANSPORT" envDefault:"stdio"`
	// Locale selects the language of dice error messages.
	Locale string `env:"ROLL_MCP_LOCALE"`
}

// closer releases the dice connection.
type closer interface {
	Close() error
}

// Server hosts the MCP server.
type Server struct {
	mcpServer *mcp.Server
	conn      closer
}

type mcpRegistrationModule struct {
	name     string
	register func(mcpRegistrationTarget) error
}

// newServer binds tool and resource handlers to dice once.
func newServer(dice domain.DiceClient, conn closer) (*Server, error) {
	mcpServer := mcp.NewServer(&mcp.Implementation{Name: serverName, Version: serverVersion}, &mcp.ServerOptions{
		CompletionHandler:  completionHandler,
		SubscribeHandler:   resourceSubscribeHandler,
		UnsubscribeHandler: resourceUnsubscribeHandler,
	})

	modules := []mcpRegistrationModule{
		{
			name: "dice-tools",
			register: func(registrar mcpRegistrationTarget) error {
				return registerDiceTools(registrar, dice)
			},
		},
		{
			name: "history-resources",
			register: func(registrar mcpRegistrationTarget) error {
				registerHistoryResources(registrar, dice)
				return nil
			},
		},
	}
	for _, module := range modules {
		if err := module.register(mcpServerRegistrationAdapter{server: mcpServer}); err != nil {
			return nil, fmt.Errorf("register MCP module %q: %w", module.name, err)
		}
	}
	return &Server{mcpServer: mcpServer, conn: conn}, nil
}

// completionHandler returns empty completions.
func completionHandler(context.Context, *mcp.CompleteRequest) (*mcp.CompleteResult, error) {
	return &mcp.CompleteResult{
		Completion: mcp.CompletionResultDetails{
			Values: []string{},
		},
	}, nil
}

// resourceSubscribeHandler accepts resource subscriptions with a valid URI.
func resourceSubscribeHandler(_ context.Context, req *mcp.SubscribeRequest) error {
	if req == nil || req.Params == nil || strings.TrimSpace(req.Params.URI) == "" {
		return fmt.Errorf("resource uri is required")
	}
	return nil
}

// resourceUnsubscribeHandler accepts resource unsubscriptions with a valid URI.
func resourceUnsubscribeHandler(_ context.Context, req *mcp.UnsubscribeRequest) error {
	if req == nil || req.Params == nil || strings.TrimSpace(req.Params.URI) == "" {
		return fmt.Errorf("resource uri is required")
	}
	return nil
}

// diceAddress falls back to the conventional dice address.
func diceAddress(addr string) string {
	return discovery.OrDefaultGRPCAddr(addr, discovery.ServiceDice)
}
