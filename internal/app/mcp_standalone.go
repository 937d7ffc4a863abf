package app

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"mindmap/internal/config"
	mcpserver "mindmap/internal/mcp"
	"mindmap/internal/service"
)

// ServeMCP runs the app as a standalone MCP server on stdin/stdout with no GUI.
// It initializes storage, services, and runs the MCP server until interrupted.
// Destructive tools are approved through the mcp_approvals table, answered by
// a running GUI.
func ServeMCP(cfg *config.Config, logger *zap.Logger) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	core, err := OpenCore(cfg, logger, service.NopEmitter{})
	if err != nil {
		return err
	}
	defer core.Close()

	mcpSrv := mcpserver.New(ctx, mcpserver.Deps{
		Emitter:   service.NopEmitter{},
		Mindmaps:  core.Mindmaps,
		Settings:  core.Settings,
		Logger:    logger,
		Approvals: core.Approvals, // Enable store-based approval IPC
	})

	logger.Info("starting standalone MCP server", zap.String("dataDir", cfg.DataDir))
	return mcpSrv.ServeStdio()
}
