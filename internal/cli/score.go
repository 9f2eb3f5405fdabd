package cli

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/finvault/datafence/internal/configstore"
	"github.com/finvault/datafence/internal/risk"
)

var scoreDB string

func init() {
	rootCmd.AddCommand(scoreCmd)
	scoreCmd.Flags().StringVar(&scoreDB, "db", "", "Path to governance database")
}

var scoreCmd = &cobra.Command{
	Use:   "score <assessment-id>",
	Short: "Calculate and persist the risk score of an assessment",
	Args:  cobra.ExactArgs(1),
	RunE:  runScore,
}

func runScore(cmd *cobra.Command, args []string) error {
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid assessment id %q", args[0])
	}

	store, err := openStore(scoreDB)
	if err != nil {
		return err
	}
	defer store.Close()

	assessments, err := risk.NewStore(store.DB())
	if err != nil {
		return err
	}

	a, err := assessments.Get(id)
	if err != nil {
		return err
	}

	scored := risk.Score(a, configstore.NewParams(store))
	updated, err := assessments.Update(scored)
	if err != nil {
		return err
	}

	out, err := json.MarshalIndent(updated, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}
