// Package mcp bridges a registered App onto the Model Context Protocol.
// Tools keep their generated JSON schemas, resources become URI
// templates and prompts carry their argument descriptions. Transport is
// stdio only.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/aretw0/graft"
	"github.com/aretw0/graft/pkg/domain"
	"github.com/aretw0/graft/pkg/registry"
	"github.com/aretw0/graft/pkg/schema"
)

// Server exposes an App's surfaces over MCP. Only direct tools can be
// bridged: an MCP tool call is a single request/response exchange, so
// streaming and session tools are rejected at construction.
//
// The reserved execution-control fields are not interpreted here; MCP
// clients drive cancellation through the protocol itself.
type Server struct {
	app       *graft.App
	mcpServer *server.MCPServer
}

// NewServer wraps app as an MCP server.
func NewServer(app *graft.App) (*Server, error) {
	s := &Server{
		app: app,
		mcpServer: server.NewMCPServer(app.Name, app.Version,
			server.WithToolCapabilities(true),
			server.WithResourceCapabilities(false, true),
			server.WithPromptCapabilities(true),
			server.WithRecovery(),
		),
	}
	if err := s.registerTools(); err != nil {
		return nil, err
	}
	s.registerResources()
	s.registerPrompts()
	return s, nil
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

func (s *Server) registerTools() error {
	for _, t := range s.app.Registry.Tools() {
		if t.Streaming || t.SessionMode {
			return fmt.Errorf("tool %q cannot be bridged: MCP tool calls are single exchanges", t.Name)
		}

		description := t.Summary
		if t.Description != "" {
			description = t.Description
		}

		tool := mcp.NewToolWithRawSchema(t.Name, description, t.Manifest().Schema)
		s.mcpServer.AddTool(tool, toolHandler(t))
	}
	return nil
}

// toolHandler adapts one registered tool into an MCP handler. The
// envelope is passed through as JSON text; MCP-level errors are reserved
// for serialization failures.
func toolHandler(t *registry.Tool) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		data, isError := invokeTool(ctx, t, request.GetArguments())
		if isError {
			return mcp.NewToolResultError(string(data)), nil
		}
		return mcp.NewToolResultText(string(data)), nil
	}
}

// invokeTool runs a direct tool with already-parsed parameters and
// renders its envelope, mirroring the command-line direct mode:
// validation failures are recoverable INVALID_INPUT envelopes, panics
// and plain errors become INTERNAL, envelope-shaped results pass
// through untouched.
func invokeTool(ctx context.Context, t *registry.Tool, params map[string]any) ([]byte, bool) {
	if params == nil {
		params = map[string]any{}
	}

	in := any(params)
	if t.Decode != nil {
		if t.Schema != nil {
			if err := schema.ValidateRaw(t.Schema, params); err != nil {
				return marshalEnvelope(domain.NewError(domain.CodeInvalidInput, err.Error()).Response())
			}
		}

		decoded, err := t.Decode(params)
		if err != nil {
			return marshalEnvelope(domain.NewError(domain.CodeInvalidInput, err.Error()).Response())
		}
		if pv, ok := decoded.(schema.PreValidator); ok {
			if err := safeHook(pv.PreValidate); err != nil {
				return marshalEnvelope(errorEnvelope(err))
			}
		}
		in = decoded
	}

	result, err := safeInvoke(ctx, t, in)
	if err != nil {
		return marshalEnvelope(errorEnvelope(err))
	}

	switch v := result.(type) {
	case domain.Response:
		return marshalEnvelope(v)
	case *domain.Response:
		if v != nil {
			return marshalEnvelope(*v)
		}
	case map[string]any:
		if _, ok := v["status"]; ok {
			data, merr := json.Marshal(v)
			if merr != nil {
				return marshalEnvelope(errorEnvelope(merr))
			}
			return data, v["status"] == string(domain.StatusError)
		}
		return marshalEnvelope(domain.Success(v))
	}
	return marshalEnvelope(domain.Success(map[string]any{"result": result}))
}

func marshalEnvelope(resp domain.Response) ([]byte, bool) {
	data, err := json.Marshal(resp)
	if err != nil {
		return []byte(`{"status":"error","error":{"code":"INTERNAL","message":"unencodable response","recoverable":false}}`), true
	}
	return data, resp.Status == domain.StatusError
}

// errorEnvelope keeps structured error codes and folds everything else
// into non-recoverable INTERNAL.
func errorEnvelope(err error) domain.Response {
	if serr, ok := domain.AsError(err); ok {
		return serr.Response()
	}
	return domain.NewError(domain.CodeInternal, err.Error()).Response()
}

func safeInvoke(ctx context.Context, t *registry.Tool, in any) (result any, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("%v", p)
		}
	}()
	return t.Invoke(ctx, in)
}

func safeHook(fn func() error) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("%v", p)
		}
	}()
	return fn()
}

func (s *Server) registerResources() {
	for _, res := range s.app.Registry.Resources() {
		name := res.Summary
		if name == "" {
			name = res.Pattern
		}

		opts := []mcp.ResourceTemplateOption{mcp.WithTemplateDescription(res.Summary)}
		if len(res.MimeTypes) > 0 {
			opts = append(opts, mcp.WithTemplateMIMEType(res.MimeTypes[0]))
		}

		template := mcp.NewResourceTemplate(res.Pattern, name, opts...)
		s.mcpServer.AddResourceTemplate(template, s.resourceHandler(res))
	}
}

// resourceHandler serves reads for one template by routing the concrete
// URI back through the registry, so placeholder capture behaves exactly
// like the command-line --resource surface.
func (s *Server) resourceHandler(res *registry.Resource) server.ResourceTemplateHandlerFunc {
	return func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		uri := request.Params.URI

		matched, params, ok := s.app.Registry.ResolveResource(uri)
		if !ok || matched != res {
			return nil, fmt.Errorf("no resource matches URI: %s", uri)
		}

		result, err := matched.Handler(ctx, params)
		if err != nil {
			return nil, err
		}

		data, err := json.Marshal(result)
		if err != nil {
			return nil, err
		}

		mime := "application/json"
		if len(res.MimeTypes) > 0 {
			mime = res.MimeTypes[0]
		}
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      uri,
				MIMEType: mime,
				Text:     string(data),
			},
		}, nil
	}
}

func (s *Server) registerPrompts() {
	for _, p := range s.app.Registry.Prompts() {
		opts := []mcp.PromptOption{mcp.WithPromptDescription(p.Summary)}

		names := make([]string, 0, len(p.Arguments))
		for name := range p.Arguments {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			opts = append(opts, mcp.WithArgument(name, mcp.ArgumentDescription(p.Arguments[name])))
		}

		prompt := mcp.NewPrompt(p.Name, opts...)
		s.mcpServer.AddPrompt(prompt, promptHandler(p))
	}
}

func promptHandler(p *registry.Prompt) server.PromptHandlerFunc {
	return func(ctx context.Context, request mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
		args := make(map[string]any, len(request.Params.Arguments))
		for k, v := range request.Params.Arguments {
			args[k] = v
		}

		result, err := p.Handler(ctx, args)
		if err != nil {
			return nil, err
		}

		return mcp.NewGetPromptResult(p.Summary, []mcp.PromptMessage{
			mcp.NewPromptMessage(mcp.RoleUser, mcp.NewTextContent(promptText(result))),
		}), nil
	}
}

// promptText extracts the conventional {"text": ...} payload, falling
// back to compact JSON for any other result shape.
func promptText(result any) string {
	switch v := result.(type) {
	case string:
		return v
	case map[string]any:
		if text, ok := v["text"].(string); ok {
			return text
		}
	}
	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Sprintf("%v", result)
	}
	return string(data)
}
