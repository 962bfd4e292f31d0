package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/dadukhankevin/Glance/internal/render"
	"github.com/dadukhankevin/Glance/internal/shards"
)

func init() {
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Capture a shard",
		Long: "Capture a live shard of a source file, anchored between --from and --to.\n" +
			"Re-adding a shard with the same file and --from refreshes it in place.",
		Run: runAdd,
	}

	cmd.Flags().String("file", "", "Source file, relative to the project root (required)")
	cmd.Flags().String("from", "", "Text marking the start of the region (required)")
	cmd.Flags().String("to", "", "Text marking the end of the region (required)")
	cmd.Flags().String("func", "", "Function name hint for re-anchoring after edits")
	cmd.Flags().StringP("summary", "s", "", "Summary shown instead of raw content while the shard is healthy")
	cmd.Flags().StringP("tags", "t", "", "Comma-separated tags")

	cmd.MarkFlagRequired("file")
	cmd.MarkFlagRequired("from")
	cmd.MarkFlagRequired("to")

	RootCmd.AddCommand(cmd)
}

func runAdd(cmd *cobra.Command, args []string) {
	file, _ := cmd.Flags().GetString("file")
	from, _ := cmd.Flags().GetString("from")
	to, _ := cmd.Flags().GetString("to")
	fn, _ := cmd.Flags().GetString("func")
	summary, _ := cmd.Flags().GetString("summary")
	tagsStr, _ := cmd.Flags().GetString("tags")

	svc, s := newService()
	defer s.Close()

	result, err := svc.Create(cmd.Context(), shards.CreateParams{
		File:         file,
		FromText:     from,
		ToText:       to,
		FunctionHint: fn,
		Summary:      summary,
		Tags:         splitTags(tagsStr),
	})
	if err != nil {
		exitErr("add", err)
	}

	if useJSON() {
		printJSON(result)
		return
	}
	render.CreateResult(os.Stdout, result)
}
