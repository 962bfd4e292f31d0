// Package cli implements the glance CLI commands.
package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dadukhankevin/Glance/internal/config"
	"github.com/dadukhankevin/Glance/internal/shards"
	"github.com/dadukhankevin/Glance/internal/store"
)

var (
	dbPath     string
	formatFlag string
	configFile string
)

// RootCmd is the top-level command.
var RootCmd = &cobra.Command{
	Use:   "glance",
	Short: "Live memory shards for codebases",
	Long: "Glance keeps live memory shards for a codebase: anchored windows into\n" +
		"source files that re-resolve as the code changes, degrade as it drifts,\n" +
		"and expire when it is rewritten. SQLite-backed, single binary.",
	Version: "0.2.0",
}

func init() {
	RootCmd.PersistentFlags().StringVarP(&dbPath, "db", "d", "", "Database path (default: $GLANCE_DB or ~/.glance/glance.db)")
	RootCmd.PersistentFlags().StringVarP(&formatFlag, "format", "f", "text", "Output format: text or json")
	RootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Config file (default: .glance.yaml in CWD or $HOME)")
}

func loadConfig() *config.Config {
	cfg, err := config.Load(configFile)
	if err != nil {
		exitErr("load config", err)
	}
	return cfg
}

func getDBPath(cfg *config.Config) string {
	if dbPath != "" {
		return dbPath
	}
	if env := os.Getenv("GLANCE_DB"); env != "" {
		return env
	}
	if cfg.DBPath != "" {
		return cfg.DBPath
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".glance", "glance.db")
}

func openStore(cfg *config.Config) (*store.SQLiteStore, error) {
	return store.NewSQLiteStore(getDBPath(cfg))
}

// newService loads config and opens the store. The caller closes the store.
func newService() (*shards.Service, *store.SQLiteStore) {
	return newServiceWithConfig(loadConfig())
}

func newServiceWithConfig(cfg *config.Config) (*shards.Service, *store.SQLiteStore) {
	s, err := openStore(cfg)
	if err != nil {
		exitErr("open store", err)
	}
	return shards.NewService(s, cfg), s
}

func useJSON() bool {
	return formatFlag == "json"
}

func printJSON(v interface{}) {
	b, _ := json.MarshalIndent(v, "", "  ")
	fmt.Println(string(b))
}

func splitTags(s string) []string {
	var tags []string
	for _, t := range strings.Split(s, ",") {
		t = strings.TrimSpace(t)
		if t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}

func exitErr(msg string, err error) {
	fmt.Fprintf(os.Stderr, "error: %s: %v\n", msg, err)
	os.Exit(1)
}
