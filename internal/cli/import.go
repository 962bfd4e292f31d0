package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/dadukhankevin/Glance/internal/model"
)

func init() {
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import shards from JSON",
		Long:  "Import shards from JSON on stdin. Expects the format produced by export.",
		Run:   runImport,
	}

	RootCmd.AddCommand(cmd)
}

func runImport(cmd *cobra.Command, args []string) {
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		exitErr("read stdin", err)
	}

	var items []model.Shard
	if err := json.Unmarshal(data, &items); err != nil {
		exitErr("parse json", err)
	}

	cfg := loadConfig()
	s, err := openStore(cfg)
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	imported, err := s.Import(cmd.Context(), items)
	if err != nil {
		exitErr("import", err)
	}

	if useJSON() {
		fmt.Printf(`{"ok":true,"imported":%d}`+"\n", imported)
		return
	}
	fmt.Printf("Imported %d shard(s).\n", imported)
}
