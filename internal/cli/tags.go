package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/dadukhankevin/Glance/internal/render"
)

func init() {
	cmd := &cobra.Command{
		Use:   "tags",
		Short: "List tags by recent activity",
		Run:   runTags,
	}

	cmd.Flags().IntP("limit", "l", 20, "Max tags")

	RootCmd.AddCommand(cmd)
}

func runTags(cmd *cobra.Command, args []string) {
	limit, _ := cmd.Flags().GetInt("limit")

	svc, s := newService()
	defer s.Close()

	infos, err := svc.TopTags(cmd.Context(), limit)
	if err != nil {
		exitErr("tags", err)
	}

	if useJSON() {
		printJSON(infos)
		return
	}
	render.TagTable(os.Stdout, infos)
}
