// Package mcp supervises the configured MCP tool servers and executes
// approved tool calls against them. Servers are launched once at startup
// over stdio; process lifecycle is owned by the client transport.
package mcp

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	mcpclient "github.com/mark3labs/mcp-go/client"
	mcplib "github.com/mark3labs/mcp-go/mcp"
	"github.com/rs/zerolog"

	"github.com/Cyclone1070/relaybot/internal/config"
	"github.com/Cyclone1070/relaybot/internal/orchestrator/models"
	provider "github.com/Cyclone1070/relaybot/internal/provider/models"
)

const clientName = "relaybot"

// ServerClient is the subset of the MCP client used by the manager.
// *client.Client satisfies it.
type ServerClient interface {
	Initialize(ctx context.Context, req mcplib.InitializeRequest) (*mcplib.InitializeResult, error)
	ListTools(ctx context.Context, req mcplib.ListToolsRequest) (*mcplib.ListToolsResult, error)
	CallTool(ctx context.Context, req mcplib.CallToolRequest) (*mcplib.CallToolResult, error)
	Close() error
}

// Dialer launches one configured server and returns a connected client.
type Dialer func(ctx context.Context, srv config.ServerConfig) (ServerClient, error)

// binding ties a discovered tool to the server that provides it.
type binding struct {
	server string
	client ServerClient
	def    provider.ToolDefinition
}

// Manager aggregates the tools of all configured servers and routes
// executions to the right one. It is immutable after construction.
type Manager struct {
	clients  map[string]ServerClient
	bindings map[string]binding
	timeout  time.Duration
	log      zerolog.Logger
}

// NewManager starts every configured server over stdio, initializes the
// session, and discovers its tools. A server that fails to start fails
// startup; there is nothing useful to degrade to silently.
func NewManager(ctx context.Context, servers []config.ServerConfig, timeout time.Duration, log zerolog.Logger) (*Manager, error) {
	return NewManagerWithDialer(ctx, servers, timeout, log, stdioDial)
}

// NewManagerWithDialer creates a Manager with a custom dialer (for testing).
func NewManagerWithDialer(ctx context.Context, servers []config.ServerConfig, timeout time.Duration, log zerolog.Logger, dial Dialer) (*Manager, error) {
	m := &Manager{
		clients:  make(map[string]ServerClient),
		bindings: make(map[string]binding),
		timeout:  timeout,
		log:      log,
	}

	for _, srv := range servers {
		c, err := dial(ctx, srv)
		if err != nil {
			m.closeAll()
			return nil, fmt.Errorf("%w: %s: %v", ErrServerStartFailed, srv.Name, err)
		}

		initReq := mcplib.InitializeRequest{}
		initReq.Params.ProtocolVersion = mcplib.LATEST_PROTOCOL_VERSION
		initReq.Params.ClientInfo = mcplib.Implementation{Name: clientName, Version: "1.0.0"}
		if _, err := c.Initialize(ctx, initReq); err != nil {
			_ = c.Close()
			m.closeAll()
			return nil, fmt.Errorf("%w: %s: initialize: %v", ErrServerStartFailed, srv.Name, err)
		}
		m.clients[srv.Name] = c

		listed, err := c.ListTools(ctx, mcplib.ListToolsRequest{})
		if err != nil {
			m.closeAll()
			return nil, fmt.Errorf("%w: %s: list tools: %v", ErrServerStartFailed, srv.Name, err)
		}

		for _, t := range listed.Tools {
			if prev, exists := m.bindings[t.Name]; exists {
				log.Warn().Str("tool", t.Name).Str("server", srv.Name).Str("kept", prev.server).
					Msg("duplicate tool name, keeping first registration")
				continue
			}
			m.bindings[t.Name] = binding{
				server: srv.Name,
				client: c,
				def:    toDefinition(t),
			}
		}
		log.Info().Str("server", srv.Name).Int("tools", len(listed.Tools)).Msg("mcp server started")
	}

	return m, nil
}

// Tools returns the aggregated tool definitions, sorted by name.
func (m *Manager) Tools() []provider.ToolDefinition {
	defs := make([]provider.ToolDefinition, 0, len(m.bindings))
	for _, b := range m.bindings {
		defs = append(defs, b.def)
	}
	sort.Slice(defs, func(i, j int) bool {
		return defs[i].Name < defs[j].Name
	})
	return defs
}

// Execute runs an approved tool call and always returns a result; failures
// are folded into an error-flagged result so the model can react to them.
// No retries: retry policy belongs to the servers themselves.
func (m *Manager) Execute(ctx context.Context, call models.ToolCall) models.ToolResult {
	b, ok := m.bindings[call.Name]
	if !ok {
		return models.ToolResult{
			RequestID: call.ID,
			Content:   fmt.Sprintf("%v: %q", ErrUnknownTool, call.Name),
			IsError:   true,
		}
	}

	if m.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, m.timeout)
		defer cancel()
	}

	req := mcplib.CallToolRequest{}
	req.Params.Name = call.Name
	req.Params.Arguments = call.Params

	res, err := b.client.CallTool(ctx, req)
	if err != nil {
		m.log.Warn().Err(err).Str("tool", call.Name).Str("server", b.server).Msg("tool call failed")
		return models.ToolResult{
			RequestID: call.ID,
			Content:   fmt.Sprintf("tool %q failed: %v", call.Name, err),
			IsError:   true,
		}
	}

	return models.ToolResult{
		RequestID: call.ID,
		Content:   flattenContent(res.Content),
		IsError:   res.IsError,
	}
}

// Close shuts down all server clients.
func (m *Manager) Close() error {
	var firstErr error
	for name, c := range m.clients {
		if err := c.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("close %s: %w", name, err)
		}
	}
	return firstErr
}

func (m *Manager) closeAll() {
	for _, c := range m.clients {
		_ = c.Close()
	}
}

// stdioDial launches the server process described by the config entry.
func stdioDial(_ context.Context, srv config.ServerConfig) (ServerClient, error) {
	env := make([]string, 0, len(srv.Env))
	for k, v := range srv.Env {
		env = append(env, k+"="+v)
	}
	return mcpclient.NewStdioMCPClient(srv.Command, env, srv.Args...)
}

// toDefinition converts a discovered MCP tool to the provider's schema type.
// The input schema passes through verbatim.
func toDefinition(t mcplib.Tool) provider.ToolDefinition {
	def := provider.ToolDefinition{
		Name:        t.Name,
		Description: t.Description,
	}
	if len(t.InputSchema.Properties) > 0 || len(t.InputSchema.Required) > 0 {
		def.Parameters = &provider.ParameterSchema{
			Type:       t.InputSchema.Type,
			Properties: t.InputSchema.Properties,
			Required:   t.InputSchema.Required,
		}
	}
	return def
}

// flattenContent joins the text blocks of a tool result. Non-text content is
// ignored; the servers in scope only produce text.
func flattenContent(content []mcplib.Content) string {
	var parts []string
	for _, c := range content {
		if tc, ok := c.(mcplib.TextContent); ok {
			parts = append(parts, tc.Text)
		}
	}
	return strings.Join(parts, "\n")
}
