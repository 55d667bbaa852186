// Command bulkworker executes a single bulk operation as a child process of
// the API server. It reports progress on stdout as "Progress: X/Y" and
// "Message: ..." lines and exits non-zero on failure.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"inschoolz/internal/bulkops"
	"inschoolz/internal/config"
	"inschoolz/internal/database"
	"inschoolz/internal/models"
	"inschoolz/internal/seed"
)

func main() {
	opID := flag.String("op-id", "", "Bulk operation ID")
	opType := flag.String("type", "", "Bulk operation type")
	rawParams := flag.String("params", "", "Operation params as JSON")
	flag.Parse()

	if *opID == "" || *opType == "" {
		log.Fatal("usage: bulkworker --op-id <id> --type <type> [--params <json>]")
	}

	if err := run(*opID, models.BulkOperationType(*opType), *rawParams); err != nil {
		log.Fatalf("bulk operation %s failed: %v", *opID, err)
	}
}

func run(opID string, opType models.BulkOperationType, rawParams string) error {
	params, err := bulkops.DecodeParams([]byte(rawParams))
	if err != nil {
		return fmt.Errorf("decode params: %w", err)
	}
	if err := bulkops.ValidateParams(opType, params); err != nil {
		return err
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	db, err := database.Connect(cfg)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer func() {
		if sqlDB, derr := db.DB(); derr == nil {
			sqlDB.Close()
		}
	}()

	// The orchestrator kills us on timeout; a signal just cancels cleanly.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	runner := seed.NewRunner(db)
	report := func(done, total int, message string) {
		// Message before Progress so the orchestrator persists both in
		// the same progress update.
		fmt.Fprintf(os.Stdout, "Message: %s\n", message)
		fmt.Fprintf(os.Stdout, "Progress: %d/%d\n", done, total)
	}

	switch opType {
	case models.BulkOpCreateBots:
		return runner.CreateBots(ctx, params.Count, report)
	case models.BulkOpGeneratePosts:
		return runner.GeneratePosts(ctx, params.PostsPerSchool, report)
	case models.BulkOpGenerateComments:
		return runner.GenerateComments(ctx, params.CommentsPerPost, report)
	case models.BulkOpDeletePosts:
		return runner.DeleteBotPosts(ctx, report)
	case models.BulkOpDeleteBots:
		return runner.DeleteBots(ctx, report)
	case models.BulkOpCleanup:
		return runner.Cleanup(ctx, report)
	default:
		return fmt.Errorf("unknown operation type: %s", opType)
	}
}
