package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/salesops-platform/api/internal/audit"
	"github.com/salesops-platform/api/internal/httpx"
	"github.com/salesops-platform/api/internal/middleware"
	"github.com/salesops-platform/api/internal/sop"
)

func companyOverrideKey(id string) string { return "company:" + id }

// GetCompanies lists companies for one business unit. Query failures and
// empty views both fall back to mock data so the UI keeps working while the
// warehouse views are provisioned.
func (s *Server) GetCompanies(w http.ResponseWriter, r *http.Request) {
	bu := r.URL.Query().Get("bu")
	if bu == "" {
		bu = "Retail"
	}

	rows, err := s.Views.Companies(r.Context(), bu)
	if err != nil {
		s.Logger.Warn("list companies, serving mock fallback", "error", err, "bu", bu)
		httpx.WriteJSON(w, http.StatusOK, map[string]any{
			"source": "mock",
			"data":   mockCompanies(bu),
			"note":   "DB query failed; returning mock fallback.",
		})
		return
	}

	data := make([]map[string]any, 0, len(rows))
	for _, row := range rows {
		id := idString(row["id"])
		if id != "" {
			row = s.Overrides.MergeInto(companyOverrideKey(id), row)
		}
		data = append(data, row)
	}

	if len(data) == 0 {
		httpx.WriteJSON(w, http.StatusOK, map[string]any{"source": "mock", "data": mockCompanies(bu)})
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{"source": "db", "data": data})
}

// GetCompany returns one company's detail with overrides applied.
func (s *Server) GetCompany(w http.ResponseWriter, r *http.Request, id string) {
	bu := r.URL.Query().Get("bu")
	if bu == "" {
		bu = "Retail"
	}

	companyID, parseErr := strconv.ParseInt(id, 10, 64)
	var row map[string]any
	if parseErr == nil {
		var err error
		if row, err = s.Views.CompanyByID(r.Context(), companyID); err != nil {
			s.Logger.Warn("load company, serving mock fallback", "error", err, "company_id", id)
			data := s.Overrides.MergeInto(companyOverrideKey(id), mockCompanyDetail(id, bu))
			httpx.WriteJSON(w, http.StatusOK, map[string]any{
				"source": "mock",
				"data":   data,
				"note":   "DB query failed; returning mock fallback.",
			})
			return
		}
	}

	if row == nil {
		data := s.Overrides.MergeInto(companyOverrideKey(id), mockCompanyDetail(id, bu))
		httpx.WriteJSON(w, http.StatusOK, map[string]any{"source": "mock", "data": data})
		return
	}

	data := s.Overrides.MergeInto(companyOverrideKey(id), row)
	httpx.WriteJSON(w, http.StatusOK, map[string]any{"source": "db", "data": data})
}

// PatchCompany stores the whole request body as an override patch, so UI
// edits survive even without write access to the warehouse.
func (s *Server) PatchCompany(w http.ResponseWriter, r *http.Request, id string) {
	var patch map[string]any
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		httpx.WriteError(w, r, http.StatusBadRequest, "invalid_body", "Malformed JSON body", nil)
		return
	}

	override := s.Overrides.Put(companyOverrideKey(id), patch)
	httpx.WriteJSON(w, http.StatusOK, map[string]any{
		"ok":       true,
		"message":  "Saved override.",
		"override": override,
	})
}

// PostCompanyAction applies an SOP action to a company and prepends an
// activity history entry.
func (s *Server) PostCompanyAction(w http.ResponseWriter, r *http.Request, id string) {
	var body struct {
		Action    string         `json:"action"`
		Form      map[string]any `json:"form"`
		HandledBy string         `json:"handled_by"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		httpx.WriteError(w, r, http.StatusBadRequest, "invalid_body", "Malformed JSON body", nil)
		return
	}
	if body.Action == "" {
		body.Action = sop.ActionVerify
	}
	if !sop.IsValidAction(body.Action) {
		httpx.WriteError(w, r, http.StatusUnprocessableEntity, "validation_error",
			"action must be one of VERIFY, LOG_CONFIRMATION, START_RETARGET, SEND_FOLLOWUP", nil)
		return
	}

	now := time.Now()
	patch := sop.CompanyPatch(body.Action, now)

	notes, _ := body.Form["notes"].(string)
	if notes == "" {
		notes, _ = body.Form["message_summary"].(string)
	}
	handledBy := body.HandledBy
	if handledBy == "" {
		handledBy = "You"
	}
	historyItem := map[string]any{
		"type":       "SOP Log",
		"title":      body.Action,
		"notes":      notes,
		"timestamp":  now.Format("2006-01-02 15:04:05"),
		"handled_by": handledBy,
	}

	data := s.Overrides.Apply(companyOverrideKey(id), func(current map[string]any) map[string]any {
		merged := mergePatch(current, patch)
		history, _ := merged["activity"].([]any)
		merged["activity"] = append([]any{historyItem}, history...)
		return merged
	})

	s.Audit.Log(r.Context(), audit.Entry{
		Action:     "companies.sop_action",
		EntityType: "company",
		EntityID:   id,
		RequestID:  middleware.RequestIDFromContext(r.Context()),
		Metadata:   map[string]any{"sop_action": body.Action},
	})

	httpx.WriteJSON(w, http.StatusOK, map[string]any{
		"ok":      true,
		"message": "Action saved.",
		"data":    data,
	})
}

func mergePatch(current, patch map[string]any) map[string]any {
	for key, value := range patch {
		current[key] = value
	}
	return current
}

// GetCompanyRelatedContacts lists contacts linked to one company.
func (s *Server) GetCompanyRelatedContacts(w http.ResponseWriter, r *http.Request, id string) {
	bu := r.URL.Query().Get("bu")
	if bu == "" {
		bu = "Retail"
	}

	companyID, parseErr := strconv.ParseInt(id, 10, 64)
	var rows []map[string]any
	if parseErr == nil {
		var err error
		if rows, err = s.Views.CompanyRelatedContacts(r.Context(), companyID); err != nil {
			s.Logger.Warn("related contacts, serving mock fallback", "error", err, "company_id", id)
			rows = nil
		}
	}

	if len(rows) == 0 {
		httpx.WriteJSON(w, http.StatusOK, map[string]any{"source": "mock", "data": mockRelatedContacts(bu)})
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{"source": "db", "data": rows})
}

// GetCompanyRelatedDeals lists deals linked to one company.
func (s *Server) GetCompanyRelatedDeals(w http.ResponseWriter, r *http.Request, id string) {
	companyID, parseErr := strconv.ParseInt(id, 10, 64)
	var rows []map[string]any
	if parseErr == nil {
		var err error
		if rows, err = s.Views.CompanyRelatedDeals(r.Context(), companyID); err != nil {
			s.Logger.Warn("related deals, serving mock fallback", "error", err, "company_id", id)
			rows = nil
		}
	}

	if len(rows) == 0 {
		httpx.WriteJSON(w, http.StatusOK, map[string]any{"source": "mock", "data": mockRelatedDeals()})
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{"source": "db", "data": rows})
}
