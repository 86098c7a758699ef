// Package views reads the reporting views and sales tables that back the
// list, detail, and dashboard endpoints.
package views

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	openapi_types "github.com/oapi-codegen/runtime/types"
)

// Queries wraps the read-side SQL. Writes stay with the import engine.
type Queries struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Queries {
	return &Queries{pool: pool}
}

// leadView maps a business unit name to its lead qualification view.
func leadView(bu string) string {
	switch strings.ToUpper(bu) {
	case "ALLIANCE":
		return "vw_leads_qualification_alliance"
	case "ENT", "ENTERPRISE":
		return "vw_leads_qualification_enterprise"
	default:
		return "vw_leads_qualification_retail"
	}
}

func companyView(bu string) string {
	switch strings.ToLower(bu) {
	case "alliance":
		return "vw_alliance_companies"
	case "enterprise":
		return "vw_enterprise_companies"
	default:
		return "vw_retail_companies"
	}
}

// collectMaps drains rows into column-keyed maps, the shape the override
// store merges into.
func collectMaps(rows pgx.Rows) ([]map[string]any, error) {
	defer rows.Close()

	fields := rows.FieldDescriptions()
	var out []map[string]any
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, fmt.Errorf("read row values: %w", err)
		}
		row := make(map[string]any, len(fields))
		for i, field := range fields {
			row[string(field.Name)] = values[i]
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

// Leads returns the lead qualification rows for one business unit, newest
// contact first.
func (q *Queries) Leads(ctx context.Context, bu string) ([]map[string]any, error) {
	query := fmt.Sprintf(`
		SELECT contact_id, bu, name, email, documents, lead_status, exception_type
		FROM %s
		ORDER BY contact_id DESC`, leadView(bu))
	rows, err := q.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query leads: %w", err)
	}
	return collectMaps(rows)
}

// LeadByID returns one lead qualification row, or nil when the contact is
// not in the view.
func (q *Queries) LeadByID(ctx context.Context, contactID int64) (map[string]any, error) {
	rows, err := q.pool.Query(ctx, `
		SELECT contact_id, bu, name, email, documents, lead_status, exception_type
		FROM vw_leads_qualification_retail
		WHERE contact_id = $1`, contactID)
	if err != nil {
		return nil, fmt.Errorf("query lead: %w", err)
	}
	leads, err := collectMaps(rows)
	if err != nil {
		return nil, err
	}
	if len(leads) == 0 {
		return nil, nil
	}
	return leads[0], nil
}

// Companies lists the companies view for one business unit, ordered by name.
func (q *Queries) Companies(ctx context.Context, bu string) ([]map[string]any, error) {
	query := fmt.Sprintf(`
		SELECT company_id AS id, company_name, company_email, business_unit AS bu,
		       owner, owner_team, industry, location,
		       related_contacts_count, related_opportunities_count
		FROM %s
		ORDER BY company_name`, companyView(bu))
	rows, err := q.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query companies: %w", err)
	}
	return collectMaps(rows)
}

// CompanyByID returns one company row, or nil when unknown.
func (q *Queries) CompanyByID(ctx context.Context, companyID int64) (map[string]any, error) {
	rows, err := q.pool.Query(ctx, `
		SELECT company_id AS id, company_name, company_email, business_unit AS bu,
		       owner, owner_team, industry, location,
		       company_phone AS mobile, company_website AS domain
		FROM vw_retail_companies
		WHERE company_id = $1`, companyID)
	if err != nil {
		return nil, fmt.Errorf("query company: %w", err)
	}
	companies, err := collectMaps(rows)
	if err != nil {
		return nil, err
	}
	if len(companies) == 0 {
		return nil, nil
	}
	return companies[0], nil
}

// CompanyRelatedContacts lists the contacts linked to one company.
func (q *Queries) CompanyRelatedContacts(ctx context.Context, companyID int64) ([]map[string]any, error) {
	rows, err := q.pool.Query(ctx, `
		SELECT c.contact_id,
		       trim(coalesce(c.contact_first_name, '') || ' ' || coalesce(c.contact_last_name, '')) AS name,
		       bu.bu_code AS bu,
		       ces.cilos_stage AS lead_status,
		       ces.cilos_status AS exception_type
		FROM contact_profile c
		LEFT JOIN bu_ref bu ON bu.bu_id = c.business_unit_id
		LEFT JOIN contact_engagement_status ces ON ces.contact_id = c.contact_id
		WHERE c.company_id = $1
		ORDER BY name`, companyID)
	if err != nil {
		return nil, fmt.Errorf("query related contacts: %w", err)
	}
	return collectMaps(rows)
}

// CompanyRelatedDeals lists the deals linked to one company, newest first.
func (q *Queries) CompanyRelatedDeals(ctx context.Context, companyID int64) ([]map[string]any, error) {
	rows, err := q.pool.Query(ctx, `
		SELECT deal_id AS opportunity_id, deal_stage AS stage, deal_amount AS value, updated_at
		FROM deal_profile
		WHERE company_id = $1
		ORDER BY updated_at DESC`, companyID)
	if err != nil {
		return nil, fmt.Errorf("query related deals: %w", err)
	}
	return collectMaps(rows)
}

// DashboardStats are the headline counters on the dashboard.
type DashboardStats struct {
	ActiveLeads       int `json:"active_leads"`
	MeetingsScheduled int `json:"meetings_scheduled"`
	NoShows           int `json:"no_shows"`
	DealsInPipeline   int `json:"deals_in_pipeline"`
	ClosedWon         int `json:"closed_won"`
}

func (q *Queries) Stats(ctx context.Context, now time.Time) (DashboardStats, error) {
	var stats DashboardStats
	err := q.pool.QueryRow(ctx, `
		SELECT
			(SELECT count(*) FROM contact_engagement_status
			 WHERE cilos_stage = 'Lead' AND contact_status = 'Active'),
			(SELECT count(*) FROM meetings
			 WHERE meeting_status = 'Scheduled' AND meeting_date > $1),
			(SELECT count(*) FROM meetings WHERE meeting_status = 'No Show'),
			(SELECT count(*) FROM deal_profile
			 WHERE deal_stage NOT IN ('Closed Won', 'Closed Lost')),
			(SELECT count(*) FROM deal_profile WHERE deal_stage = 'Closed Won')`,
		now).Scan(
		&stats.ActiveLeads,
		&stats.MeetingsScheduled,
		&stats.NoShows,
		&stats.DealsInPipeline,
		&stats.ClosedWon,
	)
	if err != nil {
		return DashboardStats{}, fmt.Errorf("query dashboard stats: %w", err)
	}
	return stats, nil
}

// TaskException is one follow-up task that is breached or due soon, joined
// with the records it touches.
type TaskException struct {
	ID              int64           `json:"id"`
	TaskType        *string         `json:"task_type"`
	TaskTitle       *string         `json:"task_title"`
	TaskDescription *string         `json:"task_description"`
	Status          *string         `json:"status"`
	Priority        *string         `json:"priority"`
	DueDate         *time.Time      `json:"due_date"`
	SourceType      *string         `json:"source_type"`
	SourceID        *int64          `json:"source_id"`
	CreatedDate     *time.Time      `json:"created_date"`
	CompletedDate   *time.Time      `json:"completed_date"`
	ContactProfile  TaskContact     `json:"contact_profile"`
	DealProfile     TaskDeal        `json:"deal_profile"`
	CompanyProfile  *TaskCompany    `json:"company_profile"`
	BURef           TaskBU          `json:"bu_ref"`
	EmployeeRef     TaskEmployee    `json:"employee_ref"`
	CreatedByName   *string         `json:"created_by_name"`
}

type TaskContact struct {
	ID        int64                `json:"id"`
	FirstName *string              `json:"first_name"`
	LastName  *string              `json:"last_name"`
	Email     *openapi_types.Email `json:"email"`
}

type TaskDeal struct {
	ID     int64    `json:"id"`
	Name   *string  `json:"name"`
	Stage  *string  `json:"stage"`
	Amount *float64 `json:"amount"`
}

type TaskCompany struct {
	ID   int64   `json:"id"`
	Name *string `json:"name"`
}

type TaskBU struct {
	ID          int     `json:"id"`
	Code        *string `json:"code"`
	Description *string `json:"description"`
}

type TaskEmployee struct {
	ID      int64   `json:"id"`
	Name    *string `json:"name"`
	Role    *string `json:"role"`
	OwnerID *int64  `json:"owner_id"`
}

// Exceptions lists open follow-up tasks that are past due or due within the
// next 24 hours, earliest deadline first.
func (q *Queries) Exceptions(ctx context.Context, now time.Time) ([]TaskException, error) {
	tomorrow := now.Add(24 * time.Hour)
	rows, err := q.pool.Query(ctx, `
		SELECT t.task_id, t.task_type, t.task_title, t.task_description,
		       t.task_status, t.priority, t.due_date, t.source_type, t.source_id,
		       t.created_date, t.completed_date,
		       cp.contact_id, cp.contact_first_name, cp.contact_last_name, cp.contact_email,
		       dp.deal_id, dp.deal_name, dp.deal_stage, dp.deal_amount,
		       comp.company_id, comp.company_name,
		       bu.bu_id, bu.bu_code, bu.bu_desc,
		       assigned.employee_id, assigned.employee_name, assigned.employee_role, assigned.owner_id,
		       creator.employee_name
		FROM follow_up_tasks t
		JOIN deal_profile dp ON dp.deal_id = t.deal_id
		JOIN contact_profile cp ON cp.contact_id = dp.contact_id
		LEFT JOIN company_profile comp ON comp.company_id = dp.company_id
		JOIN bu_ref bu ON bu.bu_id = t.bu_id
		JOIN employee_ref assigned ON assigned.employee_id = t.assigned_to
		LEFT JOIN employee_ref creator ON creator.employee_id = t.created_by
		WHERE t.task_status IN ('Open', 'In Progress')
		  AND (t.due_date < $1 OR t.due_date BETWEEN $1 AND $2)
		ORDER BY t.due_date ASC`, now, tomorrow)
	if err != nil {
		return nil, fmt.Errorf("query exceptions: %w", err)
	}
	defer rows.Close()

	var out []TaskException
	for rows.Next() {
		var e TaskException
		var companyID *int64
		var companyName *string
		var contactEmail *string
		if err := rows.Scan(
			&e.ID, &e.TaskType, &e.TaskTitle, &e.TaskDescription,
			&e.Status, &e.Priority, &e.DueDate, &e.SourceType, &e.SourceID,
			&e.CreatedDate, &e.CompletedDate,
			&e.ContactProfile.ID, &e.ContactProfile.FirstName, &e.ContactProfile.LastName, &contactEmail,
			&e.DealProfile.ID, &e.DealProfile.Name, &e.DealProfile.Stage, &e.DealProfile.Amount,
			&companyID, &companyName,
			&e.BURef.ID, &e.BURef.Code, &e.BURef.Description,
			&e.EmployeeRef.ID, &e.EmployeeRef.Name, &e.EmployeeRef.Role, &e.EmployeeRef.OwnerID,
			&e.CreatedByName,
		); err != nil {
			return nil, fmt.Errorf("scan exception: %w", err)
		}
		e.ContactProfile.Email = (*openapi_types.Email)(contactEmail)
		if companyID != nil {
			e.CompanyProfile = &TaskCompany{ID: *companyID, Name: companyName}
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// CompleteTask marks one follow-up task as completed. Returns false when the
// task does not exist.
func (q *Queries) CompleteTask(ctx context.Context, taskID int64, now time.Time) (bool, error) {
	tag, err := q.pool.Exec(ctx, `
		UPDATE follow_up_tasks
		SET task_status = 'Completed', completed_date = $2, updated_at = $2
		WHERE task_id = $1`, taskID, now)
	if err != nil {
		return false, fmt.Errorf("complete task %d: %w", taskID, err)
	}
	return tag.RowsAffected() > 0, nil
}
