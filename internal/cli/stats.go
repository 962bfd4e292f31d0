package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/dadukhankevin/Glance/internal/render"
)

func init() {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show database statistics",
		Run:   runStats,
	}

	RootCmd.AddCommand(cmd)
}

func runStats(cmd *cobra.Command, args []string) {
	cfg := loadConfig()
	svc, s := newServiceWithConfig(cfg)
	defer s.Close()

	stats, err := svc.Stats(cmd.Context(), getDBPath(cfg))
	if err != nil {
		exitErr("stats", err)
	}

	if useJSON() {
		printJSON(stats)
		return
	}
	render.StatsReport(os.Stdout, stats)
}
