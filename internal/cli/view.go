package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/dadukhankevin/Glance/internal/render"
	"github.com/dadukhankevin/Glance/internal/shards"
)

func init() {
	cmd := &cobra.Command{
		Use:   "view",
		Short: "View shards with live health",
		Long: "View shards, oldest first, re-resolved against the current files.\n" +
			"Viewing counts: stale shards move closer to expiry, expired and\n" +
			"broken shards are deleted.",
		Run: runView,
	}

	cmd.Flags().StringP("tags", "t", "", "Filter by tags (comma-separated, any match)")
	cmd.Flags().String("file", "", "Filter by file")
	cmd.Flags().IntP("limit", "l", 0, "Max shards per page (default from config)")
	cmd.Flags().Int("offset", 0, "Skip this many shards, oldest first")
	cmd.Flags().Bool("raw", false, "Show raw content even when a summary exists")
	cmd.Flags().Bool("diff", false, "Show a unified diff from the captured region to the live one")

	RootCmd.AddCommand(cmd)
}

func runView(cmd *cobra.Command, args []string) {
	tagsStr, _ := cmd.Flags().GetString("tags")
	file, _ := cmd.Flags().GetString("file")
	limit, _ := cmd.Flags().GetInt("limit")
	offset, _ := cmd.Flags().GetInt("offset")
	raw, _ := cmd.Flags().GetBool("raw")
	diff, _ := cmd.Flags().GetBool("diff")

	svc, s := newService()
	defer s.Close()

	result, err := svc.View(cmd.Context(), shards.ViewParams{
		Tags:   splitTags(tagsStr),
		File:   file,
		Raw:    raw,
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		exitErr("view", err)
	}

	if useJSON() {
		printJSON(result)
		return
	}
	render.ViewResult(os.Stdout, result, diff)
}
