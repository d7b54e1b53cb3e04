package service

import (
	"fmt"

	"github.com/louisbranch/roll/internal/services/mcp/domain"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

type mcpRegistrationTarget interface {
	AddTool(*mcp.Tool, any) error
	AddResourceTemplate(*mcp.ResourceTemplate, mcp.ResourceHandler)
	AddResource(*mcp.Resource, mcp.ResourceHandler)
}

type mcpServerRegistrationAdapter struct {
	server *mcp.Server
}

func (r mcpServerRegistrationAdapter) AddTool(tool *mcp.Tool, handler any) error {
	return addMCPTool(r.server, tool, handler)
}

func (r mcpServerRegistrationAdapter) AddResourceTemplate(resourceTemplate *mcp.ResourceTemplate, handler mcp.ResourceHandler) {
	r.server.AddResourceTemplate(resourceTemplate, handler)
}

func (r mcpServerRegistrationAdapter) AddResource(resource *mcp.Resource, handler mcp.ResourceHandler) {
	r.server.AddResource(resource, handler)
}

type mcpToolRegistrar struct {
	matches func(any) bool
	add     func(*mcp.Server, *mcp.Tool, any)
}

func newMCPToolRegistrar[I any, O any]() mcpToolRegistrar {
	return mcpToolRegistrar{
		matches: func(handler any) bool {
			_, ok := handler.(mcp.ToolHandlerFor[I, O])
			return ok
		},
		add: func(server *mcp.Server, tool *mcp.Tool, handler any) {
			mcp.AddTool(server, tool, handler.(mcp.ToolHandlerFor[I, O]))
		},
	}
}

var mcpToolRegistrars = []mcpToolRegistrar{
	newMCPToolRegistrar[domain.VersionInput, domain.VersionResult](),
	newMCPToolRegistrar[domain.RollInput, domain.RollResult](),
	newMCPToolRegistrar[domain.RollGroupInput, domain.RollResult](),
	newMCPToolRegistrar[domain.RollNotationInput, domain.RollResult](),
}

func addMCPTool(server *mcp.Server, tool *mcp.Tool, handler any) error {
	for _, registrar := range mcpToolRegistrars {
		if registrar.matches(handler) {
			registrar.add(server, tool, handler)
			return nil
		}
	}
	toolName := "<nil>"
	if tool != nil {
		toolName = tool.Name
	}
	return fmt.Errorf("mcp registration adapter does not support handler type %T for tool %q", handler, toolName)
}

func registerDiceTools(registrar mcpRegistrationTarget, dice domain.DiceClient) error {
	registrations := []struct {
		tool    *mcp.Tool
		handler any
	}{
		{tool: domain.VersionTool(), handler: domain.VersionHandler(dice)},
		{tool: domain.RollTool(), handler: domain.RollHandler(dice)},
		{tool: domain.RollMultipleTool(), handler: domain.RollMultipleHandler(dice)},
		{tool: domain.RollIndividualTool(), handler: domain.RollIndividualHandler(dice)},
		{tool: domain.RollNotationTool(), handler: domain.RollNotationHandler(dice)},
	}
	for _, registration := range registrations {
		if err := registerTool(registrar, registration.tool, registration.handler); err != nil {
			return err
		}
	}
	return nil
}

func registerTool(registrar mcpRegistrationTarget, tool *mcp.Tool, handler any) error {
	if tool == nil {
		return fmt.Errorf("tool is nil")
	}
	return registrar.AddTool(tool, handler)
}

// registerHistoryResources registers readable roll history resources.
func registerHistoryResources(registrar mcpRegistrationTarget, dice domain.DiceClient) {
	registrar.AddResource(domain.RollHistoryResource(), domain.RollHistoryResourceHandler(dice))
	registrar.AddResourceTemplate(domain.RollResourceTemplate(), domain.RollResourceHandler(dice))
}
