package importer

import (
	"errors"
	"net/http"
	"strings"
	"testing"
)

func TestNormalizeHeader(t *testing.T) {
	tests := []struct{ in, want string }{
		{"Contact Email", "contact_email"},
		{" contact-email ", "contact_email"},
		{"HUBSPOT_ID", "hubspot_id"},
		{"Company  Name", "company__name"},
	}
	for _, tt := range tests {
		if got := NormalizeHeader(tt.in); got != tt.want {
			t.Errorf("NormalizeHeader(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestParseCSV(t *testing.T) {
	csvData := "Contact Email,Company Name,Contact-Persona\n" +
		"a@example.com,Acme,Top Students\n" +
		"\n" +
		"b@example.com,Globex\n" +
		"c@example.com,Initech,Average Students,overflow\n"

	batch, err := ParseCSV(strings.NewReader(csvData))
	if err != nil {
		t.Fatalf("ParseCSV: %v", err)
	}

	wantHeader := []string{"contact_email", "company_name", "contact_persona"}
	if len(batch.Header) != len(wantHeader) {
		t.Fatalf("header = %v", batch.Header)
	}
	for i, col := range wantHeader {
		if batch.Header[i] != col {
			t.Fatalf("header[%d] = %q, want %q", i, batch.Header[i], col)
		}
	}

	if len(batch.Rows) != 3 {
		t.Fatalf("rows = %d, want 3 (blank line skipped)", len(batch.Rows))
	}

	// Short row: missing trailing cell is nil.
	if v := batch.Rows[1]["contact_persona"]; v != nil {
		t.Fatalf("short row persona = %v, want nil", *v)
	}
	// Long row: overflow cell dropped, known cells intact.
	if v := batch.Rows[2]["company_name"]; v == nil || *v != "Initech" {
		t.Fatalf("long row company = %v", deref(v))
	}
	if !batch.HasColumn("contact_email") || batch.HasColumn("overflow") {
		t.Fatal("HasColumn mismatch")
	}
}

func TestParseCSVAllEmptyCellsIsDataRow(t *testing.T) {
	csvData := "contact_email,contact_first_name\n" +
		"a@example.com,Ana\n" +
		"\" \"\n" +
		",\n"

	batch, err := ParseCSV(strings.NewReader(csvData))
	if err != nil {
		t.Fatalf("ParseCSV: %v", err)
	}

	// The single-field whitespace record is a blank separator; the ","
	// record has two cells and counts as a data row.
	if len(batch.Rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(batch.Rows))
	}
	last := batch.Rows[1]
	if v := last["contact_email"]; v == nil || *v != "" {
		t.Fatalf("empty row email cell = %v", deref(v))
	}
	if v := last["contact_first_name"]; v == nil || *v != "" {
		t.Fatalf("empty row name cell = %v", deref(v))
	}
}

func TestParseCSVStripsBOM(t *testing.T) {
	batch, err := ParseCSV(strings.NewReader("\xEF\xBB\xBFcontact_email\na@example.com\n"))
	if err != nil {
		t.Fatalf("ParseCSV: %v", err)
	}
	if !batch.HasColumn("contact_email") {
		t.Fatalf("BOM not stripped, header = %v", batch.Header)
	}
}

func TestParseCSVEmptyInput(t *testing.T) {
	_, err := ParseCSV(strings.NewReader(""))
	var verr *ValidationError
	if !errors.As(err, &verr) || verr.Status != http.StatusBadRequest {
		t.Fatalf("err = %v", err)
	}
}

func TestParseCSVHeaderOnly(t *testing.T) {
	_, err := ParseCSV(strings.NewReader("contact_email,company_name\n"))
	var verr *ValidationError
	if !errors.As(err, &verr) || verr.Status != http.StatusBadRequest {
		t.Fatalf("err = %v", err)
	}
}
