package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/finvault/datafence/internal/approval"
)

var (
	approvalDB      string
	approverID      int64
	approveComment  string
	rejectReason    string
	requestScenario int64
	requestApplican int64
	requestAssets   string
)

func init() {
	rootCmd.AddCommand(approveCmd)
	rootCmd.AddCommand(rejectCmd)
	rootCmd.AddCommand(requestCmd)
	rootCmd.AddCommand(pendingCmd)

	for _, c := range []*cobra.Command{approveCmd, rejectCmd, requestCmd, pendingCmd} {
		c.Flags().StringVar(&approvalDB, "db", "", "Path to governance database")
	}
	approveCmd.Flags().Int64Var(&approverID, "approver", 0, "Approver user id")
	approveCmd.Flags().StringVar(&approveComment, "comment", "", "Approval comment")
	rejectCmd.Flags().Int64Var(&approverID, "approver", 0, "Approver user id")
	rejectCmd.Flags().StringVar(&rejectReason, "reason", "", "Rejection reason")
	requestCmd.Flags().Int64Var(&requestScenario, "scenario", 0, "Transfer scenario id")
	requestCmd.Flags().Int64Var(&requestApplican, "applicant", 0, "Applicant user id")
	requestCmd.Flags().StringVar(&requestAssets, "assets", "", "Comma-separated asset ids")
}

var requestCmd = &cobra.Command{
	Use:   "request",
	Short: "File a new transfer approval request",
	RunE: func(cmd *cobra.Command, args []string) error {
		assetIDs, err := parseIDList(requestAssets)
		if err != nil {
			return err
		}
		store, err := approvalStore()
		if err != nil {
			return err
		}
		rec, err := store.Create(requestScenario, requestApplican, assetIDs)
		if err != nil {
			return err
		}
		fmt.Printf("Created approval %d (pending).\n", rec.ID)
		return nil
	},
}

var approveCmd = &cobra.Command{
	Use:   "approve <id>",
	Short: "Approve a pending transfer request",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return resolveApproval(args[0], true)
	},
}

var rejectCmd = &cobra.Command{
	Use:   "reject <id>",
	Short: "Reject a pending transfer request",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return resolveApproval(args[0], false)
	},
}

var pendingCmd = &cobra.Command{
	Use:   "pending",
	Short: "List pending approval requests",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := approvalStore()
		if err != nil {
			return err
		}
		list, err := store.List("pending")
		if err != nil {
			return err
		}
		if len(list) == 0 {
			fmt.Println("No pending approvals.")
			return nil
		}
		fmt.Printf("%-6s %-10s %-24s %s\n", "ID", "SCENARIO", "ASSETS", "CREATED")
		for _, rec := range list {
			fmt.Printf("%-6d %-10d %-24s %s\n",
				rec.ID, rec.ScenarioID,
				truncate(fmt.Sprint(rec.AssetIDs), 24),
				rec.CreatedAt.Format("2006-01-02 15:04:05"))
		}
		return nil
	},
}

func approvalStore() (*approval.Store, error) {
	store, err := openStore(approvalDB)
	if err != nil {
		return nil, err
	}
	return approval.NewStore(store.DB())
}

func resolveApproval(arg string, approve bool) error {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid approval id %q", arg)
	}
	store, err := approvalStore()
	if err != nil {
		return err
	}
	if approve {
		rec, err := store.Approve(id, approverID, approveComment)
		if err != nil {
			return err
		}
		fmt.Printf("Approval %d approved.\n", rec.ID)
		return nil
	}
	rec, err := store.Reject(id, approverID, rejectReason)
	if err != nil {
		return err
	}
	fmt.Printf("Approval %d rejected.\n", rec.ID)
	return nil
}
