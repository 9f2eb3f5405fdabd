package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/finvault/datafence/internal/classify"
	"github.com/finvault/datafence/internal/model"
)

func init() {
	rootCmd.AddCommand(classifyCmd)
}

var classifyCmd = &cobra.Command{
	Use:   "classify <asset-name>",
	Short: "Classify an asset name against the sensitivity rule tiers",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		result := classify.Classify(model.DataAsset{Name: args[0]})
		fmt.Printf("%s\t%s\n", result.Level, model.LevelNames[result.Level])
	},
}
