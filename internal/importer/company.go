package importer

import (
	"context"
	"fmt"
	"time"
)

// companyInsertColumns is the fixed shape for companies created during an
// import. Values the CSV does not supply are filled with defaults.
var companyInsertColumns = []string{
	"company_name",
	"company_source",
	"company_classification",
	"business_unit_id",
	"created_at",
	"updated_at",
}

// companyNameFromRow picks the company match key for one row: company_name
// when the cell is present, current_company only when it is not. An empty
// company_name cell means no company, it does not fall through.
func companyNameFromRow(row Row) *string {
	value, ok := row["company_name"]
	if !ok || value == nil {
		value = row["current_company"]
	}
	return CleanCompanyName(value)
}

// hasCompanyDataColumns reports whether the upload carries company profile
// columns beyond the name itself, which is what makes an update pass worth
// running.
func hasCompanyDataColumns(batch *Batch) bool {
	for _, col := range companyColumns {
		if col == "company_name" || isAuditColumn(col) {
			continue
		}
		if batch.HasColumn(col) {
			return true
		}
	}
	return false
}

// resolveCompanies matches every distinct company name in the batch against
// company_profile, creates the missing ones with default-substituted
// constrained columns, and optionally applies an update pass when the upload
// carries real company data. The returned map covers every name in the batch.
func (im *Importer) resolveCompanies(ctx context.Context, tx Store, batch *Batch, validBU map[int]struct{}, now time.Time, stats *Stats) (map[string]int64, error) {
	companyMap := map[string]int64{}

	var names []string
	seen := map[string]struct{}{}
	for _, row := range batch.Rows {
		name := companyNameFromRow(row)
		if name == nil {
			continue
		}
		if _, dup := seen[*name]; dup {
			continue
		}
		seen[*name] = struct{}{}
		names = append(names, *name)
	}
	if len(names) == 0 {
		return companyMap, nil
	}

	existing, err := tx.CompanyIDsByName(ctx, names)
	if err != nil {
		return nil, fmt.Errorf("match companies: %w", err)
	}
	for name, id := range existing {
		companyMap[name] = id
	}

	var missing []string
	for _, name := range names {
		if _, ok := companyMap[name]; !ok {
			missing = append(missing, name)
		}
	}

	if len(missing) > 0 {
		rows := make([][]any, 0, len(missing))
		for _, name := range missing {
			n := name
			p := NewPayload()
			p.Set("company_name", &n)
			p.Set("company_source", &DefaultCompanySource)
			p.Set("company_classification", &DefaultClassification)
			p.Set("business_unit_id", nil)
			p.Set("created_at", now)
			p.Set("updated_at", now)
			EnforceCompanyConstraints(p, validBU)
			rows = append(rows, p.Values(companyInsertColumns))
		}
		if err := im.chunkedInsert(ctx, tx, CompanyTable, companyInsertColumns, rows, stats); err != nil {
			return nil, err
		}
		stats.CompaniesCreated += len(missing)

		created, err := tx.CompanyIDsByName(ctx, missing)
		if err != nil {
			return nil, fmt.Errorf("reload created companies: %w", err)
		}
		for name, id := range created {
			companyMap[name] = id
		}
	}

	if hasCompanyDataColumns(batch) {
		if err := im.updateCompanies(ctx, tx, batch, companyMap, validBU, now, stats); err != nil {
			return nil, err
		}
	}
	return companyMap, nil
}

// updateCompanies merges every row's company columns per name, later rows
// winning, and applies one UPDATE per matched company. Companies created
// earlier in this run are updated too.
func (im *Importer) updateCompanies(ctx context.Context, tx Store, batch *Batch, companyMap map[string]int64, validBU map[int]struct{}, now time.Time, stats *Stats) error {
	merged := map[string]*Payload{}
	var order []string
	for _, row := range batch.Rows {
		name := companyNameFromRow(row)
		if name == nil {
			continue
		}
		if _, matched := companyMap[*name]; !matched {
			continue
		}

		p := NewPayload()
		for _, col := range companyColumns {
			if col == "company_name" || isAuditColumn(col) {
				continue
			}
			raw, uploaded := row[col]
			if !uploaded {
				continue
			}
			p.Set(col, CleanText(raw))
		}
		if p.Len() == 0 {
			continue
		}
		p.Set("company_name", name)
		p.Set("updated_at", now)
		EnforceCompanyConstraints(p, validBU)

		if existing, ok := merged[*name]; ok {
			existing.Merge(p)
		} else {
			merged[*name] = p
			order = append(order, *name)
		}
	}

	for _, name := range order {
		if err := tx.UpdateCompany(ctx, companyMap[name], merged[name]); err != nil {
			return fmt.Errorf("update company %q: %w", name, err)
		}
		stats.CompaniesUpdated++
	}
	return nil
}
