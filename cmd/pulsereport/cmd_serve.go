package main

import (
	"github.com/spf13/cobra"

	"github.com/stellalab/pulsereport/internal/mcp"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the MCP server over stdio",
		Long: `Run a Model Context Protocol server exposing pulse detection, report
building, and run history as tools. Communicates over stdio; intended to
be launched by an MCP client.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			server, err := mcp.NewServer(&mcp.Config{
				Name:    "pulsereport",
				Version: version,
				App:     cfg,
			})
			if err != nil {
				return err
			}
			return server.Run(cmd.Context())
		},
	}
}
