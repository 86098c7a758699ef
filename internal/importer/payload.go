package importer

// Recognized CSV columns per entity. These mirror the contact_profile and
// company_profile tables; anything else in an upload is parsed but ignored.
var contactColumns = []string{
	"hubspot_id",
	"contact_first_name",
	"contact_last_name",
	"contact_email",
	"contact_mobile",
	"linkedin_id",
	"facebook_id",
	"passport_full_name",
	"nric_id",
	"passport_id",
	"date_of_birth",
	"race",
	"nationality",
	"parent_name",
	"parent_email_id",
	"parent_passport_id",
	"highest_qualification",
	"business_unit_id",
	"academic_aptitude",
	"career_segment",
	"work_experience",
	"company_id",
	"company_classification",
	"current_job_role",
	"job_classification",
	"career_level",
	"contact_cv",
	"general_ksa_profile",
	"digital_skills_profile",
	"management_skills_profile",
	"stem_skills",
	"coding_skills",
	"ai_skills",
	"digital_marketing_skills",
	"application_skills",
	"project_magt_skills",
	"business_leader_skills",
	"customer_magt_skills",
	"contact_persona",
	"contact_source",
	"sales_affiliate",
	"created_by",
	"created_at",
	"updated_by",
	"updated_at",
}

var companyColumns = []string{
	"company_source",
	"company_email",
	"hubspot_id",
	"company_name",
	"company_website",
	"company_phone",
	"company_address",
	"linkedin_webpage",
	"facebook_webpage",
	"business_unit_id",
	"company_persona",
	"company_classification",
	"company_profile",
	"industry_sector",
	"created_by",
	"created_at",
	"updated_by",
	"updated_at",
}

func isAuditColumn(col string) bool {
	return col == "created_at" || col == "updated_at"
}

// Payload is an ordered set of column values destined for one database row.
// Only columns actually uploaded get set, so updates touch uploaded fields
// and nothing else.
type Payload struct {
	cols []string
	vals map[string]any
}

func NewPayload() *Payload {
	return &Payload{vals: map[string]any{}}
}

func (p *Payload) Set(col string, value any) {
	if _, ok := p.vals[col]; !ok {
		p.cols = append(p.cols, col)
	}
	p.vals[col] = value
}

func (p *Payload) Get(col string) (any, bool) {
	v, ok := p.vals[col]
	return v, ok
}

func (p *Payload) Has(col string) bool {
	_, ok := p.vals[col]
	return ok
}

func (p *Payload) Len() int {
	return len(p.cols)
}

// Columns returns the column names in insertion order.
func (p *Payload) Columns() []string {
	out := make([]string, len(p.cols))
	copy(out, p.cols)
	return out
}

// Values returns the payload values in the given column order; columns the
// payload never saw come back as nil (SQL NULL).
func (p *Payload) Values(cols []string) []any {
	out := make([]any, len(cols))
	for i, col := range cols {
		out[i] = p.vals[col]
	}
	return out
}

// Merge folds other into p; later values win, matching last-row-wins
// semantics for repeated company names in one upload.
func (p *Payload) Merge(other *Payload) {
	for _, col := range other.cols {
		p.Set(col, other.vals[col])
	}
}

// stringValue unwraps a payload value into its string form, reporting
// whether a non-null string is held.
func stringValue(v any) (string, bool) {
	switch s := v.(type) {
	case string:
		return s, true
	case *string:
		if s == nil {
			return "", false
		}
		return *s, true
	default:
		return "", false
	}
}
