package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aretw0/graft"
	mcpAdapter "github.com/aretw0/graft/pkg/adapters/mcp"
	"github.com/aretw0/graft/pkg/adapters/process"
	"github.com/aretw0/graft/pkg/registry"
)

// mcpCmd represents the mcp command
var mcpCmd = &cobra.Command{
	Use:   "mcp [executable]...",
	Short: "Bridge executables onto the Model Context Protocol",
	Long: `Aggregates tool executables behind a single MCP server on stdio.
This allows AI agents (like Claude Desktop) to call any conforming
executable without a native MCP implementation.

Sources come from positional arguments, a YAML/JSON config file
(--config tools.yaml), or both. Streaming and session tools are
skipped: an MCP tool call is a single exchange.`,
	Run: func(cmd *cobra.Command, args []string) {
		configPath, _ := cmd.Flags().GetString("config")
		redisAddr, _ := cmd.Flags().GetString("redis")

		// Ensure logs don't corrupt JSON-RPC on Stdout
		log.SetOutput(os.Stderr)
		logger := cliLogger(cmd)
		slog.SetDefault(logger)

		opts := []process.Option{
			process.WithPaths(args...),
			process.WithLogger(logger),
		}

		if configPath != "" {
			sources, err := process.LoadSources(configPath)
			if err != nil {
				slog.Error("failed to read tool config", "err", err)
				os.Exit(1)
			}
			opts = append(opts, process.WithSources(sources...))
		}

		if redisAddr != "" {
			opts = append(opts, process.WithCache(process.NewRedisCache(redisAddr, "", 0)))
		}

		reg := process.New(opts...)
		reg.Load(cmd.Context())

		app, err := bridgeApp(cmd.Context(), reg)
		if err != nil {
			slog.Error("failed to assemble bridge", "err", err)
			os.Exit(1)
		}

		srv, err := mcpAdapter.NewServer(app)
		if err != nil {
			slog.Error("failed to build MCP server", "err", err)
			os.Exit(1)
		}

		slog.Info("Starting graft MCP server (stdio)", "tools", len(reg.Tools()))
		if err := srv.ServeStdio(); err != nil {
			slog.Error("MCP server execution failed", "err", err)
			os.Exit(1)
		}
	},
}

// bridgeApp registers every discovered external surface on an in-process
// App so the MCP adapter can serve it. Calls proxy back to the child
// executables; the envelope discipline carries over unchanged.
func bridgeApp(ctx context.Context, reg *process.Registry) (*graft.App, error) {
	app := graft.New("graft")

	for _, name := range reg.Tools() {
		man, err := reg.Schema(ctx, name)
		if err != nil {
			return nil, err
		}
		if man.Streaming || man.SessionMode {
			slog.Warn("skipping tool: mode cannot be bridged", "tool", name)
			continue
		}

		app.Registry.RegisterTool(&registry.Tool{
			Name:        name,
			Summary:     man.Summary,
			Description: man.Description,
			Tags:        man.Tags,
			Examples:    man.Examples,
			Schema:      man.Schema,
			Invoke: func(ctx context.Context, in any) (any, error) {
				params, _ := in.(map[string]any)
				return reg.Call(ctx, name, params), nil
			},
		})
	}

	for _, res := range reg.Resources() {
		pattern := res.URIPattern
		handler := func(ctx context.Context, params map[string]string) (any, error) {
			uri := pattern
			for k, v := range params {
				uri = strings.ReplaceAll(uri, "{"+k+"}", v)
			}
			return reg.FetchResource(ctx, uri)
		}
		if err := app.Resource(pattern, res.Summary, handler, graft.WithMimeTypes(res.MimeTypes...)); err != nil {
			return nil, err
		}
	}

	for _, p := range reg.Prompts() {
		name := p.Name
		handler := func(ctx context.Context, args map[string]any) (any, error) {
			return reg.RenderPrompt(ctx, name, args)
		}
		app.Prompt(name, p.Summary, handler, graft.WithArguments(p.Arguments))
	}

	return app, nil
}

func init() {
	rootCmd.AddCommand(mcpCmd)

	mcpCmd.Flags().String("config", "", "Path to a YAML or JSON tool sources file")
	mcpCmd.Flags().String("redis", "", "Redis address for a shared discovery manifest cache")
}
