// Package server exposes the registered tools over the Model Context
// Protocol on stdio. It is a thin framing layer: tool schemas are translated
// into MCP tool declarations, results are serialized to JSON text, and tool
// errors become MCP error results instead of protocol failures.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/hupe1980/reasonmesh/logging"
	"github.com/hupe1980/reasonmesh/tool"
)

// Options configure the MCP server.
type Options struct {
	// Name identifies the server towards the host.
	Name string
	// Version is reported during the MCP handshake.
	Version string
	// Logger receives request diagnostics. Must write to stderr when the
	// server runs on stdio.
	Logger logging.Logger
}

// Server bridges the tool registry to an MCP host.
type Server struct {
	mcp      *mcpserver.MCPServer
	registry *tool.Registry
	logger   logging.Logger
}

// New creates an MCP server exposing every tool in the registry.
func New(registry *tool.Registry, optFns ...func(o *Options)) *Server {
	opts := Options{
		Name:    "reasonmesh",
		Version: "0.1.0",
		Logger:  logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	s := &Server{
		mcp: mcpserver.NewMCPServer(
			opts.Name,
			opts.Version,
			mcpserver.WithToolCapabilities(true),
			mcpserver.WithLogging(),
		),
		registry: registry,
		logger:   opts.Logger,
	}

	for _, name := range registry.Names() {
		t, _ := registry.Get(name)
		s.mcp.AddTool(declareTool(t), s.handle(name))
	}

	return s
}

// ServeStdio runs the server on stdin/stdout until the host disconnects.
func (s *Server) ServeStdio() error {
	s.logger.Info("serving on stdio", "tools", s.registry.Names())
	return mcpserver.ServeStdio(s.mcp)
}

// handle adapts a registry tool into an MCP handler. Tool-level failures,
// including validation and classified model errors, are reported as error
// results so the host session survives them.
func (s *Server) handle(name string) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		result, err := s.registry.Call(ctx, name, request.GetArguments())
		if err != nil {
			var toolErr *tool.ToolError
			if errors.As(err, &toolErr) {
				s.logger.Warn("tool call failed", "tool", name, "code", toolErr.Code)
				return mcp.NewToolResultError(toolErr.Error()), nil
			}
			s.logger.Error("tool call failed", "tool", name, "error", err.Error())
			return mcp.NewToolResultError(err.Error()), nil
		}

		data, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to serialize result: %v", err)), nil
		}
		return mcp.NewToolResultText(string(data)), nil
	}
}

// declareTool translates a tool's JSON schema into an MCP tool declaration.
func declareTool(t tool.Tool) mcp.Tool {
	toolOpts := []mcp.ToolOption{mcp.WithDescription(t.Description())}

	schema := t.Parameters()
	required := requiredSet(schema)
	properties, _ := schema["properties"].(map[string]interface{})
	for propName, propSchema := range properties {
		propMap, ok := propSchema.(map[string]interface{})
		if !ok {
			continue
		}

		var propOpts []mcp.PropertyOption
		if desc, ok := propMap["description"].(string); ok && desc != "" {
			propOpts = append(propOpts, mcp.Description(desc))
		}
		if required[propName] {
			propOpts = append(propOpts, mcp.Required())
		}

		propType, _ := propMap["type"].(string)
		switch propType {
		case "integer", "number":
			toolOpts = append(toolOpts, mcp.WithNumber(propName, propOpts...))
		case "boolean":
			toolOpts = append(toolOpts, mcp.WithBoolean(propName, propOpts...))
		default:
			toolOpts = append(toolOpts, mcp.WithString(propName, propOpts...))
		}
	}

	return mcp.NewTool(t.Name(), toolOpts...)
}

// requiredSet indexes a schema's required names, tolerating both the
// []string and JSON decoded []any shapes.
func requiredSet(schema map[string]interface{}) map[string]bool {
	set := make(map[string]bool)
	switch req := schema["required"].(type) {
	case []string:
		for _, name := range req {
			set[name] = true
		}
	case []interface{}:
		for _, name := range req {
			if s, ok := name.(string); ok {
				set[s] = true
			}
		}
	}
	return set
}
