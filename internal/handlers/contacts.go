package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/salesops-platform/api/internal/audit"
	"github.com/salesops-platform/api/internal/httpx"
	"github.com/salesops-platform/api/internal/middleware"
	"github.com/salesops-platform/api/internal/sop"
)

func contactOverrideKey(id string) string { return "contact:" + id }

// contactPatchFields is the editable surface for contact overrides: section,
// field, and maximum length.
var contactPatchFields = map[string]map[string]int{
	"contact": {
		"first_name":        100,
		"last_name":         100,
		"mobile":            50,
		"whatsapp":          50,
		"preferred_channel": 50,
		"student_nrc":       100,
	},
	"lead_qualification": {
		"inquiry_type":             100,
		"solution_course_interest": 150,
		"current_company":          150,
		"current_job_role":         150,
		"target_career_goals":      250,
		"qualification_score":      50,
		"notes":                    2000,
	},
	"documents": {
		"cv_status":           50,
		"last_cv_upload_date": 50,
		"document_notes":      2000,
		"cala_form":           50,
		"cala_form_notes":     2000,
		"cv_url":              2000,
		"cala_url":            2000,
	},
}

// GetContacts lists the lead qualification queue for one business unit,
// falling back to mock rows while the reporting views are still empty.
func (s *Server) GetContacts(w http.ResponseWriter, r *http.Request) {
	bu := strings.ToUpper(r.URL.Query().Get("bu"))
	if bu == "" {
		bu = "RETAIL"
	}

	rows, err := s.Views.Leads(r.Context(), bu)
	if err != nil {
		s.Logger.Error("list leads", "error", err, "bu", bu)
		httpx.WriteError(w, r, http.StatusInternalServerError, "internal_error", "Failed to load contacts", nil)
		return
	}

	data := make([]map[string]any, 0, len(rows))
	for _, row := range rows {
		data = append(data, s.decorateLeadRow(row))
	}

	if len(data) == 0 {
		mock := make([]map[string]any, 0)
		for _, row := range mockLeadRows(bu) {
			mock = append(mock, s.mergeContactOverride(row))
		}
		httpx.WriteJSON(w, http.StatusOK, map[string]any{"source": "mock", "bu": bu, "data": mock})
		return
	}

	httpx.WriteJSON(w, http.StatusOK, map[string]any{"source": "db", "bu": bu, "data": data})
}

func (s *Server) decorateLeadRow(row map[string]any) map[string]any {
	if row["owner"] == nil {
		row["owner"] = "—"
	}
	if row["sla_status"] == nil {
		exceptionType, _ := row["exception_type"].(string)
		row["sla_status"] = sop.InferSLA(exceptionType)
	}
	return s.mergeContactOverride(row)
}

func (s *Server) mergeContactOverride(row map[string]any) map[string]any {
	id := idString(row["contact_id"])
	if id == "" {
		return row
	}
	return s.Overrides.MergeInto(contactOverrideKey(id), row)
}

// GetContact returns one lead's detail, mock-backed when the contact is not
// in the view.
func (s *Server) GetContact(w http.ResponseWriter, r *http.Request, id string) {
	contactID, err := strconv.ParseInt(id, 10, 64)
	var row map[string]any
	if err == nil {
		if row, err = s.Views.LeadByID(r.Context(), contactID); err != nil {
			s.Logger.Error("load lead", "error", err, "contact_id", id)
			httpx.WriteError(w, r, http.StatusInternalServerError, "internal_error", "Failed to load contact", nil)
			return
		}
	}

	if row == nil {
		detail := s.Overrides.MergeInto(contactOverrideKey(id), mockLeadDetail(id))
		httpx.WriteJSON(w, http.StatusOK, map[string]any{"source": "mock", "data": detail})
		return
	}

	exceptionType, _ := row["exception_type"].(string)
	detail := map[string]any{
		"contact_id":     row["contact_id"],
		"name":           orDash(row["name"]),
		"email":          orDash(row["email"]),
		"bu":             orDash(row["bu"]),
		"owner":          orDash(row["owner"]),
		"documents":      orDash(row["documents"]),
		"lead_status":    orDash(row["lead_status"]),
		"exception_type": orDash(row["exception_type"]),
		"sla_status":     sop.InferSLA(exceptionType),
	}
	detail = s.Overrides.MergeInto(contactOverrideKey(id), detail)
	httpx.WriteJSON(w, http.StatusOK, map[string]any{"source": "db", "data": detail})
}

// PatchContact stores a field-level override for one contact. Only
// recognized sections and fields are kept; everything else is rejected.
func (s *Server) PatchContact(w http.ResponseWriter, r *http.Request, id string) {
	var body map[string]any
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		httpx.WriteError(w, r, http.StatusBadRequest, "invalid_body", "Malformed JSON body", nil)
		return
	}

	patch := map[string]any{}
	for section, fields := range body {
		allowed, ok := contactPatchFields[section]
		if !ok {
			httpx.WriteError(w, r, http.StatusUnprocessableEntity, "validation_error",
				"Unknown section: "+section, nil)
			return
		}
		sectionMap, ok := fields.(map[string]any)
		if !ok {
			httpx.WriteError(w, r, http.StatusUnprocessableEntity, "validation_error",
				"Section "+section+" must be an object", nil)
			return
		}
		cleanSection := map[string]any{}
		for field, value := range sectionMap {
			maxLen, ok := allowed[field]
			if !ok {
				httpx.WriteError(w, r, http.StatusUnprocessableEntity, "validation_error",
					"Unknown field: "+section+"."+field, nil)
				return
			}
			if value == nil {
				cleanSection[field] = nil
				continue
			}
			str, ok := value.(string)
			if !ok || len(str) > maxLen {
				httpx.WriteError(w, r, http.StatusUnprocessableEntity, "validation_error",
					"Field "+section+"."+field+" must be a string of at most "+strconv.Itoa(maxLen)+" characters", nil)
				return
			}
			cleanSection[field] = str
		}
		if len(cleanSection) > 0 {
			patch[section] = cleanSection
		}
	}

	override := s.Overrides.Put(contactOverrideKey(id), patch)
	httpx.WriteJSON(w, http.StatusOK, map[string]any{"ok": true, "override": override})
}

// PostContactAction applies one SOP action to a contact and stores its
// status effects as an override.
func (s *Server) PostContactAction(w http.ResponseWriter, r *http.Request, id string) {
	var body struct {
		Action string         `json:"action"`
		Form   map[string]any `json:"form"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		httpx.WriteError(w, r, http.StatusBadRequest, "invalid_body", "Malformed JSON body", nil)
		return
	}
	if !sop.IsValidAction(body.Action) {
		httpx.WriteError(w, r, http.StatusUnprocessableEntity, "validation_error",
			"action must be one of VERIFY, LOG_CONFIRMATION, START_RETARGET, SEND_FOLLOWUP", nil)
		return
	}

	patch := sop.ContactPatch(body.Action, body.Form, time.Now())
	override := s.Overrides.Put(contactOverrideKey(id), patch)

	s.Audit.Log(r.Context(), audit.Entry{
		Action:     "contacts.sop_action",
		EntityType: "contact",
		EntityID:   id,
		RequestID:  middleware.RequestIDFromContext(r.Context()),
		Metadata:   map[string]any{"sop_action": body.Action},
	})

	httpx.WriteJSON(w, http.StatusOK, map[string]any{"ok": true, "override": override})
}

func orDash(v any) any {
	if v == nil {
		return "—"
	}
	if s, ok := v.(string); ok && s == "" {
		return "—"
	}
	return v
}

func idString(v any) string {
	switch id := v.(type) {
	case string:
		return id
	case int:
		return strconv.Itoa(id)
	case int32:
		return strconv.FormatInt(int64(id), 10)
	case int64:
		return strconv.FormatInt(id, 10)
	case float64:
		return strconv.FormatInt(int64(id), 10)
	default:
		return ""
	}
}
