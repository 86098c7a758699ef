package importer

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type pgxQuerier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// PGStore backs the import engine with PostgreSQL via pgx.
type PGStore struct {
	pool *pgxpool.Pool
	q    pgxQuerier
}

func NewPGStore(pool *pgxpool.Pool) *PGStore {
	return &PGStore{pool: pool, q: pool}
}

func (s *PGStore) InTx(ctx context.Context, fn func(Store) error) error {
	if s.pool == nil {
		return errors.New("importer: nested transaction")
	}
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin import transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := fn(&PGStore{q: tx}); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit import transaction: %w", err)
	}
	return nil
}

func (s *PGStore) ValidBusinessUnits(ctx context.Context) (map[int]struct{}, error) {
	rows, err := s.q.Query(ctx, `SELECT bu_id FROM bu_ref`)
	if err != nil {
		return nil, fmt.Errorf("query bu_ref: %w", err)
	}
	defer rows.Close()

	valid := map[int]struct{}{}
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan bu_ref: %w", err)
		}
		valid[id] = struct{}{}
	}
	return valid, rows.Err()
}

func (s *PGStore) CompanyIDsByName(ctx context.Context, names []string) (map[string]int64, error) {
	return s.idsByKey(ctx,
		`SELECT company_name, company_id FROM company_profile WHERE company_name = ANY($1)`,
		names,
		func(raw string) string {
			if cleaned := CleanCompanyName(&raw); cleaned != nil {
				return *cleaned
			}
			return raw
		})
}

func (s *PGStore) ContactIDsByEmail(ctx context.Context, emails []string) (map[string]int64, error) {
	return s.idsByKey(ctx,
		`SELECT contact_email, contact_id FROM contact_profile WHERE lower(contact_email) = ANY($1)`,
		emails,
		func(raw string) string {
			if cleaned := CleanEmail(&raw); cleaned != nil {
				return *cleaned
			}
			return raw
		})
}

func (s *PGStore) ContactIDsByHubspotID(ctx context.Context, hubspotIDs []string) (map[string]int64, error) {
	return s.idsByKey(ctx,
		`SELECT hubspot_id, contact_id FROM contact_profile WHERE hubspot_id = ANY($1)`,
		hubspotIDs,
		func(raw string) string { return strings.TrimSpace(raw) })
}

func (s *PGStore) idsByKey(ctx context.Context, query string, keys []string, normalize func(string) string) (map[string]int64, error) {
	out := map[string]int64{}
	if len(keys) == 0 {
		return out, nil
	}
	rows, err := s.q.Query(ctx, query, keys)
	if err != nil {
		return nil, fmt.Errorf("lookup ids: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var key *string
		var id int64
		if err := rows.Scan(&key, &id); err != nil {
			return nil, fmt.Errorf("scan id lookup: %w", err)
		}
		if key == nil {
			continue
		}
		out[normalize(*key)] = id
	}
	return out, rows.Err()
}

func (s *PGStore) InsertBatch(ctx context.Context, table string, cols []string, rows [][]any) error {
	if len(rows) == 0 {
		return nil
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "INSERT INTO %s (%s) VALUES ", table, strings.Join(cols, ", "))

	args := make([]any, 0, len(rows)*len(cols))
	placeholder := 1
	for i, row := range rows {
		if len(row) != len(cols) {
			return fmt.Errorf("insert into %s: row %d has %d values for %d columns", table, i, len(row), len(cols))
		}
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteByte('(')
		for j, value := range row {
			if j > 0 {
				sb.WriteString(", ")
			}
			fmt.Fprintf(&sb, "$%d", placeholder)
			placeholder++
			args = append(args, value)
		}
		sb.WriteByte(')')
	}

	if _, err := s.q.Exec(ctx, sb.String(), args...); err != nil {
		return fmt.Errorf("insert into %s: %w", table, err)
	}
	return nil
}

func (s *PGStore) UpdateCompany(ctx context.Context, companyID int64, payload *Payload) error {
	return s.update(ctx, CompanyTable, "company_id", companyID, payload)
}

func (s *PGStore) UpdateContact(ctx context.Context, contactID int64, payload *Payload) error {
	return s.update(ctx, ContactTable, "contact_id", contactID, payload)
}

func (s *PGStore) update(ctx context.Context, table, idColumn string, id int64, payload *Payload) error {
	cols := payload.Columns()
	if len(cols) == 0 {
		return nil
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "UPDATE %s SET ", table)
	for i, col := range cols {
		if i > 0 {
			sb.WriteString(", ")
		}
		fmt.Fprintf(&sb, "%s = $%d", col, i+1)
	}
	fmt.Fprintf(&sb, " WHERE %s = $%d", idColumn, len(cols)+1)

	args := append(payload.Values(cols), id)
	if _, err := s.q.Exec(ctx, sb.String(), args...); err != nil {
		return fmt.Errorf("update %s %d: %w", table, id, err)
	}
	return nil
}
