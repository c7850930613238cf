package server

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/reasonmesh/reasoner"
	"github.com/hupe1980/reasonmesh/tool"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	rsn := reasoner.New()
	registry := tool.NewRegistry()
	require.NoError(t, registry.Register(tool.NewReasonerTool(rsn)))
	require.NoError(t, registry.Register(tool.NewStatsTool(rsn)))
	return New(registry)
}

func callRequest(args map[string]any) mcp.CallToolRequest {
	var req mcp.CallToolRequest
	req.Params.Arguments = args
	return req
}

func TestHandle_ProcessesThought(t *testing.T) {
	s := newTestServer(t)
	handler := s.handle(tool.ReasonerToolName)

	result, err := handler(context.Background(), callRequest(map[string]any{
		"thought":           "start with the simplest case",
		"thoughtNumber":     float64(1),
		"totalThoughts":     float64(2),
		"nextThoughtNeeded": true,
	}))
	require.NoError(t, err)
	require.False(t, result.IsError)

	text, ok := result.Content[0].(mcp.TextContent)
	require.True(t, ok)

	var payload map[string]any
	require.NoError(t, json.Unmarshal([]byte(text.Text), &payload))
	assert.NotEmpty(t, payload["nodeId"])
	assert.Contains(t, payload, "reasoningContext")
	assert.Contains(t, payload, "stats")
}

func TestHandle_ValidationFailureIsErrorResult(t *testing.T) {
	s := newTestServer(t)
	handler := s.handle(tool.ReasonerToolName)

	result, err := handler(context.Background(), callRequest(map[string]any{
		"thought":           "missing the rest",
		"thoughtNumber":     float64(0),
		"totalThoughts":     float64(2),
		"nextThoughtNeeded": true,
	}))
	// Tool-level failures must not break the protocol session.
	require.NoError(t, err)
	assert.True(t, result.IsError)
}

func TestHandle_UnknownToolIsErrorResult(t *testing.T) {
	s := newTestServer(t)
	handler := s.handle("nonexistent")

	result, err := handler(context.Background(), callRequest(map[string]any{}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
}

func TestDeclareTool_SchemaTranslation(t *testing.T) {
	rsn := reasoner.New()
	declared := declareTool(tool.NewReasonerTool(rsn))

	assert.Equal(t, tool.ReasonerToolName, declared.Name)
	assert.NotEmpty(t, declared.Description)
	assert.Contains(t, declared.InputSchema.Properties, "thought")
	assert.Contains(t, declared.InputSchema.Properties, "beamWidth")
	assert.Contains(t, declared.InputSchema.Required, "thought")
	assert.NotContains(t, declared.InputSchema.Required, "strategyType")
}
