package importer

import (
	"context"
	"fmt"
	"time"
)

// contactInsertColumns derives the one insert shape used for every created
// contact in a run: the uploaded contact columns in registry order, then
// company_id when the upload can carry one, then the audit columns. A single
// shape keeps the multi-row INSERT statements well-formed even when
// individual rows lack values.
func contactInsertColumns(batch *Batch) []string {
	var cols []string
	for _, col := range contactColumns {
		if col == "company_id" || isAuditColumn(col) {
			continue
		}
		if batch.HasColumn(col) {
			cols = append(cols, col)
		}
	}
	if hasCompanyNameColumn(batch) || batch.HasColumn("company_id") {
		cols = append(cols, "company_id")
	}
	cols = append(cols, "updated_at", "created_at")
	return cols
}

func hasCompanyNameColumn(batch *Batch) bool {
	return batch.HasColumn("company_name") || batch.HasColumn("current_company")
}

// extractContactPayload builds the sanitized column set for one row. Only
// uploaded columns are included, so updates never clobber data the CSV did
// not carry.
func extractContactPayload(row Row, companyID *int64, now time.Time) *Payload {
	p := NewPayload()
	for _, col := range contactColumns {
		if col == "company_id" || isAuditColumn(col) {
			continue
		}
		raw, uploaded := row[col]
		if !uploaded {
			continue
		}
		switch col {
		case "contact_email":
			p.Set(col, CleanEmail(raw))
		case "date_of_birth":
			p.Set(col, NormalizeDate(raw))
		default:
			p.Set(col, CleanText(raw))
		}
	}

	if companyID != nil {
		p.Set("company_id", *companyID)
	} else if raw, uploaded := row["company_id"]; uploaded {
		p.Set("company_id", CleanText(raw))
	}
	p.Set("updated_at", now)
	return p
}

type contactUpdate struct {
	id      int64
	payload *Payload
}

// resolveContacts partitions rows into inserts and updates by matching on
// contact_email first and hubspot_id second, then bulk-inserts the new
// contacts and applies per-row updates to the matched ones.
func (im *Importer) resolveContacts(ctx context.Context, tx Store, batch *Batch, companyMap map[string]int64, validBU map[int]struct{}, now time.Time, stats *Stats) error {
	emailToID := map[string]int64{}
	if batch.HasColumn("contact_email") {
		var emails []string
		seen := map[string]struct{}{}
		for _, row := range batch.Rows {
			email := CleanEmail(row["contact_email"])
			if email == nil {
				continue
			}
			if _, dup := seen[*email]; dup {
				continue
			}
			seen[*email] = struct{}{}
			emails = append(emails, *email)
		}
		var err error
		if emailToID, err = tx.ContactIDsByEmail(ctx, emails); err != nil {
			return fmt.Errorf("match contacts by email: %w", err)
		}
	}

	hubspotToID := map[string]int64{}
	if batch.HasColumn("hubspot_id") {
		var ids []string
		seen := map[string]struct{}{}
		for _, row := range batch.Rows {
			id := CleanText(row["hubspot_id"])
			if id == nil {
				continue
			}
			if _, dup := seen[*id]; dup {
				continue
			}
			seen[*id] = struct{}{}
			ids = append(ids, *id)
		}
		var err error
		if hubspotToID, err = tx.ContactIDsByHubspotID(ctx, ids); err != nil {
			return fmt.Errorf("match contacts by hubspot id: %w", err)
		}
	}

	insertCols := contactInsertColumns(batch)
	resolveCompany := hasCompanyNameColumn(batch)

	var inserts [][]any
	var updates []contactUpdate
	for _, row := range batch.Rows {
		email := CleanEmail(row["contact_email"])
		hubspotID := CleanText(row["hubspot_id"])
		if email == nil && hubspotID == nil {
			stats.RowsSkippedNoKey++
			continue
		}

		var existingID int64
		matched := false
		if email != nil {
			if id, ok := emailToID[*email]; ok {
				existingID, matched = id, true
			}
		}
		if !matched && hubspotID != nil {
			if id, ok := hubspotToID[*hubspotID]; ok {
				existingID, matched = id, true
			}
		}

		var companyID *int64
		if resolveCompany {
			if name := companyNameFromRow(row); name != nil {
				if id, ok := companyMap[*name]; ok {
					companyID = &id
				}
			}
		}

		p := extractContactPayload(row, companyID, now)
		EnforceContactConstraints(p, validBU)

		if matched {
			updates = append(updates, contactUpdate{id: existingID, payload: p})
		} else {
			p.Set("created_at", now)
			inserts = append(inserts, p.Values(insertCols))
		}
	}

	if len(inserts) > 0 {
		if err := im.chunkedInsert(ctx, tx, ContactTable, insertCols, inserts, stats); err != nil {
			return err
		}
		stats.ContactsCreated += len(inserts)
	}
	for _, u := range updates {
		if err := tx.UpdateContact(ctx, u.id, u.payload); err != nil {
			return fmt.Errorf("update contact %d: %w", u.id, err)
		}
		stats.ContactsUpdated++
	}
	return nil
}
