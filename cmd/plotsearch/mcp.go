package main

import (
	"fmt"

	"github.com/spf13/cobra"

	mcpTransport "github.com/kailas-cloud/plotsearch/internal/transport/mcp"
)

// NewMCPCmd runs the MCP server exposing the search_movies tool.
func NewMCPCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Run MCP server",
		Long:  "Run an MCP server that exposes the search_movies tool.",
		Args:  cobra.NoArgs,
		RunE:  runMCP,
	}

	cmd.Flags().StringP("transport", "t", "stdio", "transport (stdio, http)")
	cmd.Flags().StringP("address", "a", ":8081", "server address for the http transport")
	return cmd
}

func runMCP(cmd *cobra.Command, _ []string) error {
	transport, _ := cmd.Flags().GetString("transport")
	address, _ := cmd.Flags().GetString("address")
	if transport != "stdio" && transport != "http" {
		return fmt.Errorf("unsupported transport: %s (supported: stdio, http)", transport)
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger, err := newLogger("cli", cfg)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	a, err := newApp(cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	srv := mcpTransport.New(a.search, mcpTransport.ServerOptions{
		DefaultTopK: cfg.Search.DefaultK,
		Logger:      logger,
	})

	if transport == "http" {
		return srv.ServeHTTP(address)
	}
	return srv.ServeStdio()
}
