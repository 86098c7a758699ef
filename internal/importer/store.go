package importer

import "context"

// Table names targeted by imports.
const (
	CompanyTable = "company_profile"
	ContactTable = "contact_profile"
)

// Store is the persistence surface the import engine needs. The production
// implementation is PGStore; tests supply an in-memory fake.
type Store interface {
	// ValidBusinessUnits returns the set of bu_ref ids.
	ValidBusinessUnits(ctx context.Context) (map[int]struct{}, error)

	// CompanyIDsByName maps normalized company names to ids for the given
	// names. Names with no match are absent from the result.
	CompanyIDsByName(ctx context.Context, names []string) (map[string]int64, error)

	// ContactIDsByEmail maps lowercased emails to contact ids.
	ContactIDsByEmail(ctx context.Context, emails []string) (map[string]int64, error)

	// ContactIDsByHubspotID maps hubspot ids to contact ids.
	ContactIDsByHubspotID(ctx context.Context, hubspotIDs []string) (map[string]int64, error)

	// InsertBatch inserts all rows into table in one statement. Every row
	// must have len(cols) values.
	InsertBatch(ctx context.Context, table string, cols []string, rows [][]any) error

	// UpdateCompany applies the payload's columns to one company row.
	UpdateCompany(ctx context.Context, companyID int64, payload *Payload) error

	// UpdateContact applies the payload's columns to one contact row.
	UpdateContact(ctx context.Context, contactID int64, payload *Payload) error

	// InTx runs fn inside a transaction; a non-nil error rolls everything
	// back.
	InTx(ctx context.Context, fn func(Store) error) error
}
