package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/schollz/progressbar/v3"

	"github.com/salesops-platform/api/internal/db"
	"github.com/salesops-platform/api/internal/importer"
)

// Command importer runs a CSV bulk import from the shell, for backfills too
// large or too routine to push through the HTTP endpoint.
func main() {
	_ = godotenv.Load()

	path := flag.String("file", "", "path to the CSV file to import")
	maxBindParams := flag.Int("max-bind-params", importer.DefaultMaxBindParams, "bind parameter ceiling per insert statement")
	flag.Parse()

	if *path == "" {
		log.Fatal("-file is required")
	}
	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		log.Fatal("DATABASE_URL is required")
	}

	file, err := os.Open(*path)
	if err != nil {
		log.Fatalf("open csv: %v", err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		log.Fatalf("stat csv: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	pool, err := db.Connect(ctx, databaseURL)
	if err != nil {
		log.Fatalf("connect db: %v", err)
	}
	defer pool.Close()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	engine := importer.New(importer.NewPGStore(pool), *maxBindParams, logger)

	bar := progressbar.DefaultBytes(info.Size(), "importing")
	result, err := engine.Run(ctx, io.TeeReader(file, bar))
	if err != nil {
		log.Fatalf("import failed, nothing was written: %v", err)
	}
	_ = bar.Finish()

	stats := result.Stats
	fmt.Printf("\nImport done.\n")
	fmt.Printf("  companies created: %d\n", stats.CompaniesCreated)
	fmt.Printf("  companies updated: %d\n", stats.CompaniesUpdated)
	fmt.Printf("  contacts created:  %d\n", stats.ContactsCreated)
	fmt.Printf("  contacts updated:  %d\n", stats.ContactsUpdated)
	fmt.Printf("  rows total:        %d\n", stats.RowsTotal)
	fmt.Printf("  skipped (no key):  %d\n", stats.RowsSkippedNoKey)
	fmt.Printf("  insert chunks:     %d\n", stats.InsertChunksUsed)
}
