package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"
	"time"

	"github.com/salesops-platform/api/internal/audit"
	"github.com/salesops-platform/api/internal/config"
	"github.com/salesops-platform/api/internal/importer"
	"github.com/salesops-platform/api/internal/overrides"
)

// fakeStore satisfies importer.Store with just enough behavior for handler
// tests: everything is new, inserts succeed.
type fakeStore struct {
	inserted map[string]int
}

func newFakeStore() *fakeStore { return &fakeStore{inserted: map[string]int{}} }

func (f *fakeStore) ValidBusinessUnits(ctx context.Context) (map[int]struct{}, error) {
	return map[int]struct{}{}, nil
}

func (f *fakeStore) CompanyIDsByName(ctx context.Context, names []string) (map[string]int64, error) {
	out := map[string]int64{}
	for i, name := range names {
		if f.inserted[importer.CompanyTable] > 0 {
			out[name] = int64(100 + i)
		}
	}
	return out, nil
}

func (f *fakeStore) ContactIDsByEmail(ctx context.Context, emails []string) (map[string]int64, error) {
	return map[string]int64{}, nil
}

func (f *fakeStore) ContactIDsByHubspotID(ctx context.Context, ids []string) (map[string]int64, error) {
	return map[string]int64{}, nil
}

func (f *fakeStore) InsertBatch(ctx context.Context, table string, cols []string, rows [][]any) error {
	f.inserted[table] += len(rows)
	return nil
}

func (f *fakeStore) UpdateCompany(ctx context.Context, id int64, p *importer.Payload) error { return nil }
func (f *fakeStore) UpdateContact(ctx context.Context, id int64, p *importer.Payload) error { return nil }

func (f *fakeStore) InTx(ctx context.Context, fn func(importer.Store) error) error {
	return fn(f)
}

func testServer(store importer.Store) *Server {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	cfg := config.Config{
		ImportMaxFileBytes:  20 * 1024 * 1024,
		ImportMaxBindParams: importer.DefaultMaxBindParams,
	}
	return NewServer(cfg, nil,
		importer.New(store, cfg.ImportMaxBindParams, logger),
		overrides.NewStore(time.Hour),
		audit.NewLogger(logger), logger)
}

func multipartUpload(t *testing.T, filename, contentType, body string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition", `form-data; name="file"; filename="`+filename+`"`)
	if contentType != "" {
		header.Set("Content-Type", contentType)
	}
	part, err := writer.CreatePart(header)
	if err != nil {
		t.Fatalf("create part: %v", err)
	}
	if _, err := io.WriteString(part, body); err != nil {
		t.Fatalf("write part: %v", err)
	}
	writer.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/csv-import", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func TestPostCsvImportSuccess(t *testing.T) {
	store := newFakeStore()
	s := testServer(store)

	req := multipartUpload(t, "contacts.csv", "text/csv",
		"contact_email,company_name\na@example.com,Acme\nb@example.com,Acme\n")
	rr := httptest.NewRecorder()
	s.PostCsvImport(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rr.Code, rr.Body.String())
	}

	var resp struct {
		OK      bool           `json:"ok"`
		Message string         `json:"message"`
		Stats   importer.Stats `json:"stats"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !resp.OK {
		t.Fatal("ok = false")
	}
	if resp.Stats.ContactsCreated != 2 || resp.Stats.CompaniesCreated != 1 {
		t.Fatalf("stats = %+v", resp.Stats)
	}
	if resp.Message == "" {
		t.Fatal("message empty")
	}
	if store.inserted[importer.ContactTable] != 2 {
		t.Fatalf("contacts inserted = %d", store.inserted[importer.ContactTable])
	}
}

func TestPostCsvImportRejectsMissingFile(t *testing.T) {
	s := testServer(newFakeStore())
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	writer.WriteField("notfile", "x")
	writer.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/csv-import", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	rr := httptest.NewRecorder()
	s.PostCsvImport(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rr.Code)
	}
}

func TestPostCsvImportRejectsWrongExtension(t *testing.T) {
	s := testServer(newFakeStore())
	req := multipartUpload(t, "contacts.xlsx", "text/csv", "contact_email\na@example.com\n")
	rr := httptest.NewRecorder()
	s.PostCsvImport(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rr.Code)
	}
}

func TestPostCsvImportRejectsMissingMatchColumn(t *testing.T) {
	s := testServer(newFakeStore())
	req := multipartUpload(t, "contacts.csv", "text/csv", "contact_first_name\nAna\n")
	rr := httptest.NewRecorder()
	s.PostCsvImport(rr, req)

	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, body = %s", rr.Code, rr.Body.String())
	}
}

func TestPostCsvImportRejectsEmptyFile(t *testing.T) {
	s := testServer(newFakeStore())
	req := multipartUpload(t, "contacts.csv", "text/csv", "")
	rr := httptest.NewRecorder()
	s.PostCsvImport(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rr.Code)
	}
}
