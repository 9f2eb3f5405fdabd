package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/finvault/datafence/internal/approval"
	"github.com/finvault/datafence/internal/asset"
	"github.com/finvault/datafence/internal/configstore"
	"github.com/finvault/datafence/internal/gate"
	"github.com/finvault/datafence/internal/mask"
)

var (
	checkDB       string
	checkApproval int64
	checkAssets   string
	checkData     string
)

func init() {
	rootCmd.AddCommand(checkCmd)
	checkCmd.Flags().StringVar(&checkDB, "db", "", "Path to governance database")
	checkCmd.Flags().Int64Var(&checkApproval, "approval", 0, "Approval record id")
	checkCmd.Flags().StringVar(&checkAssets, "assets", "", "Comma-separated asset ids")
	checkCmd.Flags().StringVar(&checkData, "data", "", "JSON payload to desensitize on allow")
}

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Run a transfer request through the decision gate",
	Long:  "Evaluates approval state, blacklist membership and asset levels the\nsame way the gateway does, and prints the decision. Exits 1 when the\ntransfer is intercepted.",
	RunE:  runCheck,
}

func runCheck(cmd *cobra.Command, args []string) error {
	assetIDs, err := parseIDList(checkAssets)
	if err != nil {
		return err
	}

	var payload map[string]any
	if checkData != "" {
		if err := json.Unmarshal([]byte(checkData), &payload); err != nil {
			return fmt.Errorf("invalid JSON payload: %w", err)
		}
	}

	store, err := openStore(checkDB)
	if err != nil {
		return err
	}
	defer store.Close()

	catalog, err := asset.NewCatalog(store.DB())
	if err != nil {
		return err
	}
	approvals, err := approval.NewStore(store.DB())
	if err != nil {
		return err
	}

	params := configstore.NewParams(store)
	g := gate.New(catalog, mask.New(params), gate.WithStore(store))

	approvedIDs, err := approvals.ApprovedIDs()
	if err != nil {
		return err
	}
	g.Seed(approvedIDs, params.BlacklistAssetIDs())

	decision := g.Decide(checkApproval, assetIDs, payload)
	out, err := json.MarshalIndent(decision, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))

	if decision.Intercepted {
		os.Exit(1)
	}
	return nil
}
