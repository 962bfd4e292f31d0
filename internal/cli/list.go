package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/dadukhankevin/Glance/internal/model"
	"github.com/dadukhankevin/Glance/internal/render"
)

func init() {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List shards without viewing them",
		Long:  "List stored shards, oldest first. Unlike view, this never resolves, flags, or deletes anything.",
		Run:   runList,
	}

	cmd.Flags().String("file", "", "Filter by file")
	cmd.Flags().StringP("tags", "t", "", "Filter by tags (comma-separated, any match)")
	cmd.Flags().IntP("limit", "l", 0, "Max results (0 = all)")

	RootCmd.AddCommand(cmd)
}

func runList(cmd *cobra.Command, args []string) {
	file, _ := cmd.Flags().GetString("file")
	tagsStr, _ := cmd.Flags().GetString("tags")
	limit, _ := cmd.Flags().GetInt("limit")

	cfg := loadConfig()
	s, err := openStore(cfg)
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	tags := splitTags(tagsStr)
	var items []model.Shard
	switch {
	case len(tags) > 0:
		items, err = s.ByTags(cmd.Context(), tags)
	case file != "":
		items, err = s.ByFile(cmd.Context(), file)
	default:
		items, err = s.All(cmd.Context())
	}
	if err != nil {
		exitErr("list", err)
	}

	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}

	if useJSON() {
		printJSON(items)
		return
	}
	render.ShardTable(os.Stdout, items)
}
