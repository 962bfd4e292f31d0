package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "rm [shard-id]",
		Short: "Delete a shard",
		Args:  cobra.ExactArgs(1),
		Run:   runRm,
	}

	RootCmd.AddCommand(cmd)
}

func runRm(cmd *cobra.Command, args []string) {
	cfg := loadConfig()
	s, err := openStore(cfg)
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	deleted, err := s.Delete(cmd.Context(), args[0])
	if err != nil {
		exitErr("rm", err)
	}
	if !deleted {
		exitErr("rm", fmt.Errorf("shard not found: %s", args[0]))
	}

	if useJSON() {
		fmt.Printf(`{"ok":true,"id":%q}`+"\n", args[0])
		return
	}
	fmt.Printf("Deleted shard %s.\n", args[0])
}
