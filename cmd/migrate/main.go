package main

import (
	"database/sql"
	"flag"
	"log"
	"os"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	"github.com/pressly/goose/v3"
)

// Applies the schema migrations for the sales-ops database: reference
// tables, the profile tables the importer writes, the sales tables, and the
// per-BU reporting views. Accepts an optional goose command (up, down,
// status); default is up.
func main() {
	_ = godotenv.Load()

	dir := flag.String("dir", "./migrations", "migrations directory")
	flag.Parse()

	command := "up"
	if flag.NArg() > 0 {
		command = flag.Arg(0)
	}

	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		log.Fatal("DATABASE_URL is required")
	}

	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		log.Fatalf("open db: %v", err)
	}
	defer db.Close()

	switch command {
	case "up":
		err = goose.Up(db, *dir)
	case "down":
		err = goose.Down(db, *dir)
	case "status":
		err = goose.Status(db, *dir)
	default:
		log.Fatalf("unknown command %q (want up, down, or status)", command)
	}
	if err != nil {
		log.Fatalf("goose %s: %v", command, err)
	}
}
