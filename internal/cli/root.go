// Package cli wires the mindmap binary's commands.
package cli

import (
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"mindmap/internal/config"
)

// GUIFunc starts the desktop app. It lives in package main because the
// frontend assets are embedded there.
type GUIFunc func(cfg *config.Config, logger *zap.Logger) error

type env struct {
	cfg    *config.Config
	logger *zap.Logger
}

func NewRootCmd(gui GUIFunc) *cobra.Command {
	e := &env{}

	cmd := &cobra.Command{
		Use:          "mindmap",
		Short:        "Mindmap editor with auto-layout, undo history and an MCP server",
		SilenceUsage: true,
		Example: strings.TrimSpace(`
  # Start the desktop app
  mindmap

  # Serve tools to an AI agent over stdio
  mindmap mcp

  # Lay out a generated mindmap without touching the database
  mindmap layout generated.txt
`),
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			logger, err := config.NewLogger(cfg)
			if err != nil {
				return err
			}
			e.cfg, e.logger = cfg, logger
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if e.logger != nil {
				_ = e.logger.Sync()
			}
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			// No subcommand => desktop app.
			return gui(e.cfg, e.logger)
		},
	}

	cmd.AddCommand(
		newGUICmd(e, gui),
		newMCPCmd(e),
		newListCmd(e),
		newExportCmd(e),
		newImportCmd(e),
		newLayoutCmd(e),
		newBackupCmd(e),
	)
	return cmd
}

func newGUICmd(e *env, gui GUIFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "gui",
		Short: "Start the desktop app",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return gui(e.cfg, e.logger)
		},
	}
}
