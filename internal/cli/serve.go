package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/finvault/datafence/internal/server"
)

var (
	serveAddr      string
	serveDB        string
	serveAuditLog  string
	serveOverrides string
	serveJSONLogs  bool
)

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "HTTP listen address (default :8080)")
	serveCmd.Flags().StringVar(&serveDB, "db", "", "Path to governance database")
	serveCmd.Flags().StringVar(&serveAuditLog, "audit-log", "", "Path to audit log JSONL file")
	serveCmd.Flags().StringVar(&serveOverrides, "overrides", "", "Path to config overrides YAML (hot-reloaded)")
	serveCmd.Flags().BoolVar(&serveJSONLogs, "json-logs", false, "Emit JSON logs")
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP transfer gateway",
	Long:  "Runs the governance gateway: transfer checks, desensitization,\nclassification, approvals, blacklist and risk assessment over HTTP.\nConfig overrides are hot-reloaded when --overrides is set.",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	log := server.NewLogger(serveJSONLogs)
	server.LoadEnv(log)

	cfg := server.ConfigFromEnv()
	if serveAddr != "" {
		cfg.Addr = serveAddr
	}
	if serveDB != "" {
		cfg.DBPath = serveDB
	}
	if serveAuditLog != "" {
		cfg.AuditLogPath = serveAuditLog
	}
	if serveOverrides != "" {
		cfg.OverridesPath = serveOverrides
	}
	cfg.HTTPLogJSON = cfg.HTTPLogJSON || serveJSONLogs

	srv, err := server.New(cfg, log)
	if err != nil {
		return fmt.Errorf("failed to create gateway: %w", err)
	}
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		fmt.Fprintln(os.Stderr, "\nShutting down gateway...")
		cancel()
	}()

	return srv.Serve(ctx)
}
