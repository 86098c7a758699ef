package app

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/salesops-platform/api/internal/config"
)

type testEnv struct {
	pool   *pgxpool.Pool
	router http.Handler
}

func setupTestEnv(t *testing.T) testEnv {
	t.Helper()
	databaseURL := os.Getenv("TEST_DATABASE_URL")
	if databaseURL == "" {
		t.Skip("TEST_DATABASE_URL is not set")
	}

	// Run from the module root so openapi.yaml and migrations/ resolve.
	origDir, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	if err := os.Chdir("../.."); err != nil {
		t.Fatalf("chdir to module root: %v", err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(origDir); err != nil {
			t.Fatalf("restore working directory: %v", err)
		}
	})

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		t.Fatalf("connect test db: %v", err)
	}
	t.Cleanup(pool.Close)

	resetSchema(t, ctx, pool, databaseURL)
	seedBusinessUnits(t, ctx, pool)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	cfg := config.Config{
		Addr:                ":0",
		DatabaseURL:         databaseURL,
		Env:                 "test",
		CORSAllowedOrigins:  []string{"http://localhost:3000"},
		APIMaxBodyBytes:     2 * 1024 * 1024,
		ImportMaxFileBytes:  20 * 1024 * 1024,
		ImportMaxBindParams: 2100,
		ImportRateLimit:     100,
		OverrideTTL:         time.Hour,
	}

	router, err := NewRouter(cfg, pool, logger)
	if err != nil {
		t.Fatalf("create router: %v", err)
	}
	return testEnv{pool: pool, router: router}
}

func resetSchema(t *testing.T, ctx context.Context, pool *pgxpool.Pool, databaseURL string) {
	t.Helper()
	if _, err := pool.Exec(ctx, `DROP SCHEMA public CASCADE; CREATE SCHEMA public;`); err != nil {
		t.Fatalf("drop schema: %v", err)
	}

	sqlDB, err := sql.Open("pgx", databaseURL)
	if err != nil {
		t.Fatalf("open migration db: %v", err)
	}
	defer sqlDB.Close()
	if err := goose.Up(sqlDB, "migrations"); err != nil {
		t.Fatalf("goose up: %v", err)
	}
}

func seedBusinessUnits(t *testing.T, ctx context.Context, pool *pgxpool.Pool) {
	t.Helper()
	_, err := pool.Exec(ctx, `
		INSERT INTO bu_ref (bu_id, bu_code, bu_desc) VALUES
		(1, 'RETAIL', 'Retail'), (2, 'ALLIANCE', 'Alliance'), (3, 'ENTERPRISE', 'Enterprise')`)
	if err != nil {
		t.Fatalf("seed bu_ref: %v", err)
	}
}

func csvUpload(t *testing.T, router http.Handler, csvBody string) (int, []byte) {
	t.Helper()
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", "contacts.csv")
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := io.WriteString(part, csvBody); err != nil {
		t.Fatalf("write csv: %v", err)
	}
	writer.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/csv-import", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.RemoteAddr = "127.0.0.1:12345"
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	body, _ := io.ReadAll(rec.Result().Body)
	return rec.Code, body
}

type importStats struct {
	CompaniesCreated int `json:"companies_created"`
	CompaniesUpdated int `json:"companies_updated"`
	ContactsCreated  int `json:"contacts_created"`
	ContactsUpdated  int `json:"contacts_updated"`
	RowsTotal        int `json:"rows_total"`
	RowsSkippedNoKey int `json:"rows_skipped_no_key"`
	InsertChunksUsed int `json:"insert_chunks_used"`
}

func parseImportStats(t *testing.T, body []byte) importStats {
	t.Helper()
	var resp struct {
		OK    bool        `json:"ok"`
		Stats importStats `json:"stats"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		t.Fatalf("parse import response: %v (%s)", err, string(body))
	}
	if !resp.OK {
		t.Fatalf("import not ok: %s", string(body))
	}
	return resp.Stats
}

func TestCsvImportCreatesThenUpdates(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()

	csvBody := "contact_email,company_name,contact_first_name,contact_persona,business_unit_id\n" +
		"ana@example.com,Acme Corp,Ana,Advanced Tech,1\n" +
		"ben@example.com,Acme Corp,Ben,Galactic Overlord,99\n"

	status, body := csvUpload(t, env.router, csvBody)
	if status != http.StatusOK {
		t.Fatalf("import expected 200, got %d (%s)", status, string(body))
	}
	stats := parseImportStats(t, body)
	if stats.CompaniesCreated != 1 || stats.ContactsCreated != 2 || stats.ContactsUpdated != 0 {
		t.Fatalf("first run stats = %+v", stats)
	}

	var contactCount, companyCount int
	if err := env.pool.QueryRow(ctx, `SELECT count(*) FROM contact_profile`).Scan(&contactCount); err != nil {
		t.Fatalf("count contacts: %v", err)
	}
	if err := env.pool.QueryRow(ctx, `SELECT count(*) FROM company_profile`).Scan(&companyCount); err != nil {
		t.Fatalf("count companies: %v", err)
	}
	if contactCount != 2 || companyCount != 1 {
		t.Fatalf("rows = %d contacts, %d companies", contactCount, companyCount)
	}

	// Constraint repair: the invalid persona was replaced, the invalid
	// business unit nulled, and the valid ones kept.
	var persona *string
	var buID *int
	if err := env.pool.QueryRow(ctx, `
		SELECT contact_persona, business_unit_id FROM contact_profile
		WHERE contact_email = 'ben@example.com'`).Scan(&persona, &buID); err != nil {
		t.Fatalf("load ben: %v", err)
	}
	if persona == nil || *persona != "Average Students" {
		t.Fatalf("persona = %v", persona)
	}
	if buID != nil {
		t.Fatalf("business_unit_id = %v, want NULL", *buID)
	}

	// Contacts link to the company created in the same run.
	var linked int
	if err := env.pool.QueryRow(ctx, `
		SELECT count(*) FROM contact_profile c
		JOIN company_profile comp ON comp.company_id = c.company_id
		WHERE comp.company_name = 'Acme Corp'`).Scan(&linked); err != nil {
		t.Fatalf("count linked: %v", err)
	}
	if linked != 2 {
		t.Fatalf("linked contacts = %d, want 2", linked)
	}

	// Second run with the same file matches by email and updates instead.
	status, body = csvUpload(t, env.router, csvBody)
	if status != http.StatusOK {
		t.Fatalf("re-import expected 200, got %d (%s)", status, string(body))
	}
	stats = parseImportStats(t, body)
	if stats.ContactsCreated != 0 || stats.ContactsUpdated != 2 || stats.CompaniesCreated != 0 {
		t.Fatalf("second run stats = %+v", stats)
	}

	if err := env.pool.QueryRow(ctx, `SELECT count(*) FROM contact_profile`).Scan(&contactCount); err != nil {
		t.Fatalf("recount contacts: %v", err)
	}
	if contactCount != 2 {
		t.Fatalf("contacts after re-import = %d, want 2", contactCount)
	}
}

func TestCsvImportRejectsFileWithoutMatchColumn(t *testing.T) {
	env := setupTestEnv(t)

	status, body := csvUpload(t, env.router, "contact_first_name,company_name\nAna,Acme\n")
	if status != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d (%s)", status, string(body))
	}

	var count int
	if err := env.pool.QueryRow(context.Background(), `SELECT count(*) FROM company_profile`).Scan(&count); err != nil {
		t.Fatalf("count companies: %v", err)
	}
	if count != 0 {
		t.Fatalf("companies written by rejected import: %d", count)
	}
}

func TestContactsListServesMockWhenViewEmpty(t *testing.T) {
	env := setupTestEnv(t)

	req := httptest.NewRequest(http.MethodGet, "/api/contacts?bu=retail", nil)
	req.RemoteAddr = "127.0.0.1:12345"
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d (%s)", rec.Code, rec.Body.String())
	}
	var resp struct {
		Source string           `json:"source"`
		BU     string           `json:"bu"`
		Data   []map[string]any `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Source != "mock" || len(resp.Data) == 0 {
		t.Fatalf("source = %q, rows = %d", resp.Source, len(resp.Data))
	}
}

func TestContactsListServesImportedLeads(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()

	status, body := csvUpload(t, env.router,
		"contact_email,contact_first_name,contact_last_name,business_unit_id\n"+
			"lead@example.com,Lena,Ortiz,1\n")
	if status != http.StatusOK {
		t.Fatalf("import expected 200, got %d (%s)", status, string(body))
	}

	var contactID int64
	if err := env.pool.QueryRow(ctx, `
		SELECT contact_id FROM contact_profile WHERE contact_email = 'lead@example.com'`).Scan(&contactID); err != nil {
		t.Fatalf("load contact: %v", err)
	}
	if _, err := env.pool.Exec(ctx, `
		INSERT INTO contact_engagement_status (contact_id, cilos_stage, cilos_status, contact_status)
		VALUES ($1, 'Lead', 'Not Verified (12h)', 'Active')`, contactID); err != nil {
		t.Fatalf("seed engagement: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/contacts?bu=RETAIL", nil)
	req.RemoteAddr = "127.0.0.1:12345"
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d (%s)", rec.Code, rec.Body.String())
	}

	var resp struct {
		Source string           `json:"source"`
		Data   []map[string]any `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Source != "db" || len(resp.Data) != 1 {
		t.Fatalf("source = %q, rows = %d", resp.Source, len(resp.Data))
	}
	row := resp.Data[0]
	if row["name"] != "Lena Ortiz" {
		t.Fatalf("name = %v", row["name"])
	}
	// SLA is inferred from the exception type when the view has none.
	if row["sla_status"] != "Breached" {
		t.Fatalf("sla_status = %v", row["sla_status"])
	}
}

func TestDashboardStatsEmptyDatabase(t *testing.T) {
	env := setupTestEnv(t)

	req := httptest.NewRequest(http.MethodGet, "/api/dashboard/stats", nil)
	req.RemoteAddr = "127.0.0.1:12345"
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d (%s)", rec.Code, rec.Body.String())
	}
	var stats map[string]int
	if err := json.Unmarshal(rec.Body.Bytes(), &stats); err != nil {
		t.Fatalf("decode: %v", err)
	}
	for _, key := range []string{"active_leads", "meetings_scheduled", "no_shows", "deals_in_pipeline", "closed_won"} {
		if v, ok := stats[key]; !ok || v != 0 {
			t.Fatalf("%s = %d (present=%v)", key, v, ok)
		}
	}
}
