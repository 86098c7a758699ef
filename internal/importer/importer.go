// Package importer implements the CSV bulk import and reconciliation engine:
// header normalization, value sanitization, constraint repair, company and
// contact resolution, and chunked bulk inserts, all inside one transaction.
package importer

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"
)

// DefaultMaxBindParams matches the common driver ceiling on bind parameters
// per statement.
const DefaultMaxBindParams = 2100

// Stats counts what one import run did.
type Stats struct {
	CompaniesCreated int `json:"companies_created"`
	CompaniesUpdated int `json:"companies_updated"`
	ContactsCreated  int `json:"contacts_created"`
	ContactsUpdated  int `json:"contacts_updated"`
	RowsTotal        int `json:"rows_total"`
	RowsSkippedNoKey int `json:"rows_skipped_no_key"`
	InsertChunksUsed int `json:"insert_chunks_used"`
}

// Meta describes how the run interpreted the upload.
type Meta struct {
	CompanyNameColumnUsed               *string  `json:"company_name_column_used"`
	ContactMatchKey                     string   `json:"contact_match_key"`
	CompanySourceAllowed                []string `json:"company_source_allowed"`
	CompanyClassificationAllowed        []string `json:"company_classification_allowed"`
	ContactPersonaAllowed               []string `json:"contact_persona_allowed"`
	ContactCompanyClassificationAllowed []string `json:"contact_company_classification_allowed"`
	ContactSourceAllowed                []string `json:"contact_source_allowed"`
}

// Result is what Run reports back on success.
type Result struct {
	Stats Stats `json:"stats"`
	Meta  Meta  `json:"meta"`
}

// Importer runs CSV imports against a Store.
type Importer struct {
	store         Store
	maxBindParams int
	logger        *slog.Logger
	now           func() time.Time
}

func New(store Store, maxBindParams int, logger *slog.Logger) *Importer {
	if maxBindParams < 1 {
		maxBindParams = DefaultMaxBindParams
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Importer{
		store:         store,
		maxBindParams: maxBindParams,
		logger:        logger,
		now:           time.Now,
	}
}

// Run parses the upload and reconciles it against the database in a single
// transaction. Validation problems come back as *ValidationError; any
// database error rolls the whole run back.
func (im *Importer) Run(ctx context.Context, r io.Reader) (*Result, error) {
	batch, err := ParseCSV(r)
	if err != nil {
		return nil, err
	}

	hasEmail := batch.HasColumn("contact_email")
	hasHubspot := batch.HasColumn("hubspot_id")
	if !hasEmail && !hasHubspot {
		return nil, unprocessable("CSV must contain a contact_email or hubspot_id column to match contacts")
	}

	now := im.now().UTC()
	stats := Stats{RowsTotal: len(batch.Rows)}

	err = im.store.InTx(ctx, func(tx Store) error {
		validBU, err := tx.ValidBusinessUnits(ctx)
		if err != nil {
			return fmt.Errorf("load business units: %w", err)
		}

		companyMap, err := im.resolveCompanies(ctx, tx, batch, validBU, now, &stats)
		if err != nil {
			return err
		}
		return im.resolveContacts(ctx, tx, batch, companyMap, validBU, now, &stats)
	})
	if err != nil {
		return nil, err
	}

	im.logger.Info("csv import complete",
		"rows_total", stats.RowsTotal,
		"companies_created", stats.CompaniesCreated,
		"companies_updated", stats.CompaniesUpdated,
		"contacts_created", stats.ContactsCreated,
		"contacts_updated", stats.ContactsUpdated,
		"rows_skipped_no_key", stats.RowsSkippedNoKey,
		"insert_chunks_used", stats.InsertChunksUsed)

	return &Result{Stats: stats, Meta: buildMeta(batch, hasEmail)}, nil
}

func buildMeta(batch *Batch, hasEmail bool) Meta {
	meta := Meta{
		ContactMatchKey:                     "hubspot_id",
		CompanySourceAllowed:                AllowedCompanySource,
		CompanyClassificationAllowed:        AllowedClassification,
		ContactPersonaAllowed:               AllowedContactPersona,
		ContactCompanyClassificationAllowed: AllowedContactCompanyClassification,
		ContactSourceAllowed:                AllowedContactSource,
	}
	if hasEmail {
		meta.ContactMatchKey = "contact_email"
	}
	switch {
	case batch.HasColumn("company_name"):
		col := "company_name"
		meta.CompanyNameColumnUsed = &col
	case batch.HasColumn("current_company"):
		col := "current_company"
		meta.CompanyNameColumnUsed = &col
	}
	return meta
}
