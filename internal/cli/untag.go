package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "untag [tag]",
		Short: "Remove a tag from every shard",
		Long:  "Remove a tag from every shard that carries it. Shards left with no tags are deleted.",
		Args:  cobra.ExactArgs(1),
		Run:   runUntag,
	}

	RootCmd.AddCommand(cmd)
}

func runUntag(cmd *cobra.Command, args []string) {
	svc, s := newService()
	defer s.Close()

	result, err := svc.DeleteTag(cmd.Context(), args[0])
	if err != nil {
		exitErr("untag", err)
	}

	if useJSON() {
		printJSON(result)
		return
	}
	if result.ShardsModified == 0 {
		fmt.Printf("No shards carry the tag %q.\n", result.Tag)
		return
	}
	fmt.Printf("Removed %q from %d shard(s); %d left untagged and deleted.\n",
		result.Tag, result.ShardsModified, result.OrphansDeleted)
}
