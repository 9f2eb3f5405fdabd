package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/finvault/datafence/internal/configstore"
)

var (
	configDB   string
	configType string
)

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.PersistentFlags().StringVar(&configDB, "db", "", "Path to governance database")
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configListCmd)
	configSetCmd.Flags().StringVar(&configType, "type", "", "Value type (string, integer, float, boolean, json)")
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect and edit governance configuration",
}

var configGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Print one configuration entry",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore(configDB)
		if err != nil {
			return err
		}
		defer store.Close()

		e, ok := store.Get(args[0])
		if !ok {
			return fmt.Errorf("config key %q not found", args[0])
		}
		fmt.Printf("%s = %s (%s)\n", e.Key, e.Value, e.Type)
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Write one configuration entry",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore(configDB)
		if err != nil {
			return err
		}
		defer store.Close()

		e := configstore.Entry{
			Key:      args[0],
			Value:    args[1],
			Type:     configstore.Type(configType),
			Editable: true,
		}
		if prev, ok := store.Get(args[0]); ok {
			if !prev.Editable {
				return fmt.Errorf("config key %q is not editable", args[0])
			}
			e.Name = prev.Name
			e.Category = prev.Category
			if configType == "" {
				e.Type = prev.Type
			}
		}
		if e.Type == "" {
			e.Type = configstore.TypeString
		}
		if err := store.Set(e); err != nil {
			return err
		}
		fmt.Printf("%s = %s\n", e.Key, e.Value)
		return nil
	},
}

var configListCmd = &cobra.Command{
	Use:   "list [category]",
	Short: "List configuration entries, optionally by category",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore(configDB)
		if err != nil {
			return err
		}
		defer store.Close()

		category := ""
		if len(args) == 1 {
			category = args[0]
		}
		entries, err := store.List(category)
		if err != nil {
			return err
		}
		fmt.Printf("%-36s %-10s %-16s %s\n", "KEY", "TYPE", "CATEGORY", "VALUE")
		for _, e := range entries {
			fmt.Printf("%-36s %-10s %-16s %s\n", e.Key, e.Type, e.Category, truncate(e.Value, 40))
		}
		return nil
	},
}
