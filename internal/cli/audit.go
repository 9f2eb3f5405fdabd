package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/finvault/datafence/internal/audit"
)

var (
	replayApproval int64
	replayFrom     string
	replayTo       string
	replayJSON     bool
)

func init() {
	rootCmd.AddCommand(auditCmd)
	auditCmd.AddCommand(auditVerifyCmd)
	auditCmd.AddCommand(auditReplayCmd)
	auditReplayCmd.Flags().Int64Var(&replayApproval, "approval", 0, "Only show decisions for this approval id")
	auditReplayCmd.Flags().StringVar(&replayFrom, "from", "", "Lower time bound (RFC 3339)")
	auditReplayCmd.Flags().StringVar(&replayTo, "to", "", "Upper time bound (RFC 3339)")
	auditReplayCmd.Flags().BoolVar(&replayJSON, "json", false, "Emit JSON instead of a timeline")
}

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Audit log operations",
	Long:  "Commands for verifying and inspecting the hash-chained decision log.",
}

var auditVerifyCmd = &cobra.Command{
	Use:   "verify <path>",
	Short: "Verify hash chain integrity of an audit log",
	Long:  "Walks the JSONL audit log and validates that every entry's prev_hash\nmatches the SHA-256 of the previous entry. Exits 0 if valid, 1 if tampered.",
	Args:  cobra.ExactArgs(1),
	RunE:  runAuditVerify,
}

var auditReplayCmd = &cobra.Command{
	Use:   "replay <path>",
	Short: "Replay recorded transfer decisions",
	Long:  "Reads the JSONL audit log and prints the matching decisions as a\ntimeline with allow/intercept counts.",
	Args:  cobra.ExactArgs(1),
	RunE:  runAuditReplay,
}

func runAuditVerify(cmd *cobra.Command, args []string) error {
	result := audit.Verify(args[0])
	if result.Valid {
		fmt.Printf("OK: %d entries verified\n", result.Lines)
		return nil
	}
	fmt.Fprintf(os.Stderr, "FAILED at line %d: %s\n", result.ErrorLine, result.Error)
	os.Exit(1)
	return nil
}

func runAuditReplay(cmd *cobra.Command, args []string) error {
	filter := audit.ReplayFilter{ApprovalID: replayApproval}

	if replayFrom != "" {
		t, err := time.Parse(time.RFC3339, replayFrom)
		if err != nil {
			return fmt.Errorf("invalid --from: %w", err)
		}
		filter.From = t
	}
	if replayTo != "" {
		t, err := time.Parse(time.RFC3339, replayTo)
		if err != nil {
			return fmt.Errorf("invalid --to: %w", err)
		}
		filter.To = t
	}

	result, err := audit.Replay(args[0], filter)
	if err != nil {
		return err
	}

	if replayJSON {
		out, err := audit.FormatJSON(result)
		if err != nil {
			return err
		}
		fmt.Println(out)
		return nil
	}
	fmt.Print(audit.FormatTimeline(result))
	return nil
}
