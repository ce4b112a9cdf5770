// Command spaces-mcp serves the Spaces tools over MCP stdio. Stdout
// carries JSON-RPC frames; all logging goes to stderr.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/mark3labs/mcp-go/server"

	"spaces-mcp/internal/config"
	"spaces-mcp/internal/spaces"
	"spaces-mcp/internal/tools"
)

func main() {
	configPath := flag.String("config", "", "path to YAML config file (optional)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "spaces-mcp:", err)
		os.Exit(1)
	}

	logger := config.NewLogger(cfg.Logging)
	svc := spaces.NewService(cfg, logger)

	logger.Info("serving MCP over stdio",
		"backend", cfg.Backend.BaseURL, "timeout", cfg.Backend.Timeout())

	if err := server.ServeStdio(tools.NewStdioServer(svc)); err != nil {
		logger.Error("stdio server stopped", "err", err)
		os.Exit(1)
	}
}
