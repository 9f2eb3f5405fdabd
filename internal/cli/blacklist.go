package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/finvault/datafence/internal/configstore"
	"github.com/finvault/datafence/internal/gate"
	"github.com/finvault/datafence/internal/mask"
)

var blacklistDB string

func init() {
	rootCmd.AddCommand(blacklistCmd)
	blacklistCmd.PersistentFlags().StringVar(&blacklistDB, "db", "", "Path to governance database")
	blacklistCmd.AddCommand(blacklistAddCmd)
	blacklistCmd.AddCommand(blacklistRemoveCmd)
	blacklistCmd.AddCommand(blacklistListCmd)
}

var blacklistCmd = &cobra.Command{
	Use:   "blacklist",
	Short: "Manage the asset blacklist",
	Long:  "Blacklisted assets are intercepted regardless of approval state.\nChanges persist to the governance database and apply to the gateway\non its next start.",
}

var blacklistAddCmd = &cobra.Command{
	Use:   "add <asset-id>",
	Short: "Add an asset to the blacklist",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return mutateBlacklist(args[0], func(g *gate.Gate, id int64) { g.AddBlacklisted(id) })
	},
}

var blacklistRemoveCmd = &cobra.Command{
	Use:   "remove <asset-id>",
	Short: "Remove an asset from the blacklist",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return mutateBlacklist(args[0], func(g *gate.Gate, id int64) { g.RemoveBlacklisted(id) })
	},
}

var blacklistListCmd = &cobra.Command{
	Use:   "list",
	Short: "List blacklisted asset ids",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore(blacklistDB)
		if err != nil {
			return err
		}
		defer store.Close()

		ids := configstore.NewParams(store).BlacklistAssetIDs()
		if len(ids) == 0 {
			fmt.Println("Blacklist is empty.")
			return nil
		}
		for _, id := range ids {
			fmt.Println(id)
		}
		return nil
	},
}

func mutateBlacklist(arg string, op func(*gate.Gate, int64)) error {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid asset id %q", arg)
	}

	store, err := openStore(blacklistDB)
	if err != nil {
		return err
	}
	defer store.Close()

	params := configstore.NewParams(store)
	g := gate.New(gate.StaticLevels{}, mask.New(params), gate.WithStore(store))
	g.Seed(nil, params.BlacklistAssetIDs())

	op(g, id)

	fmt.Printf("Blacklist now holds %d asset(s).\n", len(g.Blacklisted()))
	return nil
}
