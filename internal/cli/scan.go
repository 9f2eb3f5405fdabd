package cli

import (
	"database/sql"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/finvault/datafence/internal/asset"
	"github.com/finvault/datafence/internal/model"
)

var (
	scanDB     string
	scanSystem string
)

func init() {
	rootCmd.AddCommand(scanCmd)
	scanCmd.Flags().StringVar(&scanDB, "db", "", "Path to governance database")
	scanCmd.Flags().StringVar(&scanSystem, "system", "unknown", "Source system name recorded on scanned assets")
}

var scanCmd = &cobra.Command{
	Use:   "scan <source-db>",
	Short: "Scan a source database and register its tables as assets",
	Long:  "Walks the source database's table metadata, registers unseen tables in\nthe asset catalog and classifies each one by name.",
	Args:  cobra.ExactArgs(1),
	RunE:  runScan,
}

func runScan(cmd *cobra.Command, args []string) error {
	store, err := openStore(scanDB)
	if err != nil {
		return err
	}
	defer store.Close()

	catalog, err := asset.NewCatalog(store.DB())
	if err != nil {
		return err
	}

	source, err := sql.Open("sqlite", args[0])
	if err != nil {
		return fmt.Errorf("open source database: %w", err)
	}
	defer source.Close()

	registered, err := asset.NewScanner(catalog).Scan(source, scanSystem)
	if err != nil {
		return err
	}

	if len(registered) == 0 {
		fmt.Println("No new tables found.")
		return nil
	}
	fmt.Printf("%-6s %-24s %-12s %s\n", "ID", "CODE", "LEVEL", "NAME")
	for _, a := range registered {
		fmt.Printf("%-6d %-24s %-12s %s\n", a.ID, a.Code, a.Level, model.LevelNames[a.Level])
	}
	return nil
}
