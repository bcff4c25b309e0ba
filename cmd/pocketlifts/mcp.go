package main

import (
	"github.com/claude/pocketlifts/internal/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"
)

func mcpCmd() *cobra.Command {
	var remote string
	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Run an MCP server on stdio",
		Long: `Expose the training log to an MCP client over stdio. By default the local
database is read; with --remote the tools query a running "pocketlifts serve"
instance instead, e.g. one reached over Tailscale.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var ds mcp.DataSource
			if remote != "" {
				log.Info("mcp using remote data source", "url", remote)
				ds = mcp.NewHTTPClient(remote)
			} else {
				t, db, err := openTracker(cmd.Context())
				if err != nil {
					return err
				}
				defer db.Close()
				ds = t
			}
			return mcpserver.ServeStdio(mcp.New(ds, Version, log))
		},
	}
	cmd.Flags().StringVar(&remote, "remote", "", "base URL of a pocketlifts server (e.g. http://pocketlifts)")
	return cmd
}
