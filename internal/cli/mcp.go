package cli

import (
	"github.com/spf13/cobra"

	"github.com/dadukhankevin/Glance/internal/mcp"
)

func init() {
	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Serve glance over MCP on stdio",
		Long: "Serve the glance tools over the Model Context Protocol on stdio,\n" +
			"for use as a memory backend by coding agents.",
		Run: runMCP,
	}

	RootCmd.AddCommand(cmd)
}

func runMCP(cmd *cobra.Command, args []string) {
	svc, s := newService()
	defer s.Close()

	srv := mcp.NewServer(svc)
	if err := srv.Run(cmd.Context()); err != nil {
		exitErr("mcp serve", err)
	}
}
