package cli

import (
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dadukhankevin/Glance/internal/render"
)

func init() {
	cmd := &cobra.Command{
		Use:   "search [query]",
		Short: "Search tags by name",
		Long:  "Search existing tags. Exact matches rank first, then prefixes, then substrings.",
		Args:  cobra.MinimumNArgs(1),
		Run:   runSearch,
	}

	cmd.Flags().IntP("limit", "l", 5, "Max results")

	RootCmd.AddCommand(cmd)
}

func runSearch(cmd *cobra.Command, args []string) {
	limit, _ := cmd.Flags().GetInt("limit")
	query := strings.Join(args, " ")

	svc, s := newService()
	defer s.Close()

	matches, err := svc.SearchTags(cmd.Context(), query, limit)
	if err != nil {
		exitErr("search", err)
	}

	if useJSON() {
		printJSON(matches)
		return
	}
	render.TagMatches(os.Stdout, matches)
}
