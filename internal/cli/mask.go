package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/finvault/datafence/internal/configstore"
	"github.com/finvault/datafence/internal/mask"
)

var maskDB string

func init() {
	rootCmd.AddCommand(maskCmd)
	maskCmd.Flags().StringVar(&maskDB, "db", "", "Path to governance database (masking rules)")
}

var maskCmd = &cobra.Command{
	Use:   "mask <json>",
	Short: "Desensitize a JSON payload",
	Long:  "Applies the configured masking rules to a JSON object and prints the\ndesensitized result. Rules come from the governance database.",
	Args:  cobra.ExactArgs(1),
	RunE:  runMask,
}

func runMask(cmd *cobra.Command, args []string) error {
	var data map[string]any
	if err := json.Unmarshal([]byte(args[0]), &data); err != nil {
		return fmt.Errorf("invalid JSON payload: %w", err)
	}

	store, err := openStore(maskDB)
	if err != nil {
		return err
	}
	defer store.Close()

	engine := mask.New(configstore.NewParams(store))
	out, err := json.MarshalIndent(engine.Desensitize(data, nil), "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}
