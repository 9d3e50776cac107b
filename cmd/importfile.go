package cmd

import (
	"context"
	"fmt"
	"os"

	"inventory-server/core/config"
	"inventory-server/core/database"
	"inventory-server/core/logger"
	"inventory-server/core/reconcile"
	"inventory-server/feature/inventory"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	// Flags for the import command
	importContentType string
	importAgentID     string
)

// importCmd feeds a captured submission file through the same pipeline as
// the HTTP endpoint. Useful for replaying agent dumps against a database.
var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import an inventory submission from a file",
	Long: `Imports an agent inventory submission from a file and reconciles it
against the database, exactly as if it had arrived over HTTP.

The file may be raw JSON or XML, or compressed with any of the supported
codecs; pass --content-type to identify compressed input.

Examples:
  # Plain JSON dump
  import inventory.json

  # Zlib-compressed legacy submission
  import inventory.dat --content-type application/x-compress-zlib`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

func init() {
	importCmd.Flags().StringVar(&importContentType, "content-type", "application/json", "Content type of the submission file")
	importCmd.Flags().StringVar(&importAgentID, "agent-id", "cli-import", "Agent identifier to attribute the submission to")

	RootCmd.AddCommand(importCmd)
}

func runImport(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	// Load configuration
	cfg, err := config.LoadConfig(".")
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Initialize logger
	l, err := logger.New(&cfg.Log)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	// Connect to database
	db, err := database.Connect(cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	// Load dictionary rules
	rules, err := reconcile.LoadRulesFile(cfg.Inventory.RulesFile)
	if err != nil {
		return fmt.Errorf("failed to load dictionary rules: %w", err)
	}

	body, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to read submission file: %w", err)
	}

	// No archiver for offline imports; the source file is the archive.
	svc, err := inventory.NewService(db, l, cfg.Inventory, rules, nil)
	if err != nil {
		return fmt.Errorf("failed to initialize inventory service: %w", err)
	}

	result := svc.HandleSubmission(ctx, body, importContentType, importAgentID)
	if result.Status != 200 {
		l.Error("Import failed",
			zap.Int("status", result.Status),
			zap.ByteString("reply", result.Body),
		)
		return fmt.Errorf("import rejected with status %d", result.Status)
	}

	l.Info("Import complete", zap.String("file", args[0]))
	return nil
}
