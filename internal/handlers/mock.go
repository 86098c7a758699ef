package handlers

import "strings"

// Mock rows keep the UI demoable while the reporting views are still being
// provisioned in the warehouse.

func mockLeadRows(bu string) []map[string]any {
	return []map[string]any{
		{
			"contact_id":     1245,
			"bu":             bu,
			"name":           "John Smith",
			"email":          "john@example.com",
			"documents":      "Missing CaLA",
			"lead_status":    "New",
			"exception_type": "Not Verified (12h)",
			"owner":          "DBD - Team A",
			"sla_status":     "Breached",
		},
		{
			"contact_id":     1248,
			"bu":             bu,
			"name":           "Jennifer Lee",
			"email":          "jennifer@example.com",
			"documents":      "All Collected",
			"lead_status":    "Meeting Scheduled",
			"exception_type": "Not Confirmed (24h)",
			"owner":          "Sales Rep - Mike",
			"sla_status":     "Due Soon",
		},
		{
			"contact_id":     895,
			"bu":             bu,
			"name":           "Emma Brown",
			"email":          "emma@example.com",
			"documents":      "Missing CV",
			"lead_status":    "Meeting Scheduled",
			"exception_type": "No-show Not Retargeted (48h)",
			"owner":          "Sales Rep - Sara",
			"sla_status":     "Breached",
		},
		{
			"contact_id":     1272,
			"bu":             bu,
			"name":           "Olivia Jones",
			"email":          "olivia@example.com",
			"documents":      "All Collected",
			"lead_status":    "Meeting Scheduled",
			"exception_type": "Follow-up Overdue (2h)",
			"owner":          "Sales Rep - Daniel",
			"sla_status":     "Breached",
		},
	}
}

func mockLeadDetail(id string) map[string]any {
	return map[string]any{
		"contact_id":     id,
		"name":           "John Smith",
		"email":          "john@example.com",
		"bu":             "Retail",
		"owner":          "DBD - Team A",
		"last_action":    "Verify Now",
		"last_action_at": "2026-02-24 10:05",
		"contact": map[string]any{
			"first_name":        "John",
			"last_name":         "Smith",
			"mobile":            "+13 78421232",
			"whatsapp":          "+13 78421232",
			"preferred_channel": "WhatsApp",
			"student_nrc":       "Singapore / SEA",
		},
		"lead_qualification": map[string]any{
			"inquiry_type":             "Course Information",
			"solution_course_interest": "Data Analytics (Foundations)",
			"current_company":          "St. Louis Uni",
			"current_job_role":         "Operations Executive",
			"target_career_goals":      "Analyst role within 6-12 months",
			"qualification_score":      "Medium",
			"notes":                    "Add Notes here…",
		},
		"documents": map[string]any{
			"cv_status":           "Uploaded",
			"last_cv_upload_date": "12.2.2024",
			"document_notes":      "Add Notes here…",
			"cala_form":           "Received",
		},
	}
}

func titleBU(bu string) string {
	if bu == "" {
		return "Retail"
	}
	lower := strings.ToLower(bu)
	return strings.ToUpper(lower[:1]) + lower[1:]
}

func mockCompanies(bu string) []map[string]any {
	return []map[string]any{
		{
			"id":                          "C0342",
			"company_name":                "Maxwell. co",
			"company_email":               "mxc@example.com",
			"bu":                          titleBU(bu),
			"owner":                       "Hysie Osit",
			"owner_team":                  "DBD - Team A",
			"industry":                    "Education",
			"location":                    "New York",
			"related_contacts_count":      2,
			"related_opportunities_count": 2,
		},
	}
}

func mockCompanyDetail(id, bu string) map[string]any {
	return map[string]any{
		"id":             id,
		"company_name":   "Maxwell. co",
		"company_email":  "mxc@example.com",
		"bu":             titleBU(bu),
		"owner":          "Hysie Osit",
		"owner_team":     "DBD - Team A",
		"industry":       "Education",
		"location":       "New York",
		"mobile":         "+65 654332143",
		"domain":         "maxwells.edu.com",
		"notes":          "Add notes here…",
		"exception_type": "Not Verified",
		"sla_status":     "Due in 12h",
		"last_action":    nil,
		"last_action_at": nil,
		"activity": []any{
			map[string]any{
				"type":       "Company linked",
				"title":      "Associated contact with Maxwell.co",
				"handled_by": "DBD - Team A",
			},
			map[string]any{
				"type":       "Lead created",
				"title":      "Record created. Verification timer started (12h).",
				"handled_by": "DBD - Team A",
			},
		},
	}
}

func mockRelatedContacts(bu string) []map[string]any {
	return []map[string]any{
		{
			"contact_id":     1245,
			"name":           "John Smith",
			"bu":             titleBU(bu),
			"lead_status":    "Meeting Scheduled",
			"owner":          "DBD - Team A",
			"exception_type": "Not Verified",
			"sla_status":     "Due in 12h",
		},
		{
			"contact_id":     1248,
			"name":           "Jennifer Lee",
			"bu":             titleBU(bu),
			"lead_status":    "Meeting Scheduled",
			"owner":          "Sales Rep - Mike",
			"exception_type": "Not Confirmed",
			"sla_status":     "Due in 24h",
		},
	}
}

func mockRelatedDeals() []map[string]any {
	return []map[string]any{
		{
			"opportunity_id": "BR-2001",
			"stage":          "Bronze",
			"value":          "SGD 18,000",
			"owner":          "DBD - Team A",
			"updated_at":     "2026-02-01",
		},
		{
			"opportunity_id": "BR-2112",
			"stage":          "Silver",
			"value":          "SGD 18,000",
			"owner":          "Sales Rep - Mike",
			"updated_at":     "2026-02-03",
		},
	}
}
