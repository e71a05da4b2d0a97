package mcp

import (
	"context"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSeamarkServer(t *testing.T) {
	s, err := NewSeamarkServer(SeamarkServerDeps{})
	require.NoError(t, err)
	require.NotNil(t, s)
	assert.NotNil(t, s.mcpServer)
	assert.NotNil(t, s.logger)
	assert.Equal(t, DefaultInlineLimit, s.inlineLimit)
}

func TestToolRegistration(t *testing.T) {
	s, err := NewSeamarkServer(SeamarkServerDeps{})
	require.NoError(t, err)

	tools := s.mcpServer.ListTools()
	require.Len(t, tools, 3)

	for _, name := range []string{"seamark.render", "seamark.fetch", "seamark.examples"} {
		tool := s.mcpServer.GetTool(name)
		assert.NotNil(t, tool, "tool %s should be registered", name)
	}
}

func TestArchitecturePrompt(t *testing.T) {
	s, err := NewSeamarkServer(SeamarkServerDeps{})
	require.NoError(t, err)

	req := mcp.GetPromptRequest{}
	req.Params.Name = "create_system_architecture"
	req.Params.Arguments = map[string]string{
		"system_name": "Checkout",
		"components":  "API Gateway, Payment Service",
	}

	result, err := s.handleArchitecturePrompt(context.Background(), req)
	require.NoError(t, err)
	require.Len(t, result.Messages, 1)

	text := mcp.GetTextFromContent(result.Messages[0].Content)
	assert.Contains(t, text, "Checkout")
	assert.Contains(t, text, "- API Gateway")
	assert.Contains(t, text, "flowchart TD")
}

func TestArchitecturePromptRequiresSystemName(t *testing.T) {
	s, err := NewSeamarkServer(SeamarkServerDeps{})
	require.NoError(t, err)

	req := mcp.GetPromptRequest{}
	req.Params.Name = "create_system_architecture"

	_, err = s.handleArchitecturePrompt(context.Background(), req)
	require.Error(t, err)
}

func TestUserFlowPrompt(t *testing.T) {
	s, err := NewSeamarkServer(SeamarkServerDeps{})
	require.NoError(t, err)

	req := mcp.GetPromptRequest{}
	req.Params.Name = "document_user_flow"
	req.Params.Arguments = map[string]string{
		"process_name": "password reset",
		"actors":       "User, Frontend, Backend",
	}

	result, err := s.handleUserFlowPrompt(context.Background(), req)
	require.NoError(t, err)
	require.Len(t, result.Messages, 1)

	text := mcp.GetTextFromContent(result.Messages[0].Content)
	assert.Contains(t, text, "password reset")
	assert.Contains(t, text, "- Frontend")
	assert.Contains(t, text, "sequenceDiagram")
}
