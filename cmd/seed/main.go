package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
)

// Seeds the reference tables the import engine depends on: the business
// units and a couple of employees for follow-up task assignment.
func main() {
	_ = godotenv.Load()

	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		log.Fatal("DATABASE_URL is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		log.Fatalf("connect db: %v", err)
	}
	defer pool.Close()

	tx, err := pool.Begin(ctx)
	if err != nil {
		log.Fatalf("begin: %v", err)
	}
	defer tx.Rollback(ctx)

	businessUnits := []struct {
		id   int
		code string
		desc string
	}{
		{1, "RETAIL", "Retail business unit"},
		{2, "ALLIANCE", "Alliance business unit"},
		{3, "ENTERPRISE", "Enterprise business unit"},
	}
	for _, bu := range businessUnits {
		if _, err := tx.Exec(ctx, `
			INSERT INTO bu_ref (bu_id, bu_code, bu_desc)
			VALUES ($1, $2, $3)
			ON CONFLICT (bu_id) DO UPDATE SET bu_code = EXCLUDED.bu_code, bu_desc = EXCLUDED.bu_desc
		`, bu.id, bu.code, bu.desc); err != nil {
			log.Fatalf("seed bu_ref %s: %v", bu.code, err)
		}
	}

	employees := []struct {
		name string
		role string
	}{
		{"DBD - Team A", "DBD"},
		{"Sales Rep - Mike", "Sales"},
	}
	for _, emp := range employees {
		if _, err := tx.Exec(ctx, `
			INSERT INTO employee_ref (employee_name, employee_role)
			VALUES ($1, $2)
			ON CONFLICT DO NOTHING
		`, emp.name, emp.role); err != nil {
			log.Fatalf("seed employee_ref %s: %v", emp.name, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		log.Fatalf("commit: %v", err)
	}
	log.Println("seed complete")
}
