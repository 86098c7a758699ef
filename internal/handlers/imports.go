package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/salesops-platform/api/internal/audit"
	"github.com/salesops-platform/api/internal/httpx"
	"github.com/salesops-platform/api/internal/importer"
	"github.com/salesops-platform/api/internal/middleware"
)

var csvContentTypes = map[string]struct{}{
	"text/csv":                 {},
	"text/plain":               {},
	"application/csv":          {},
	"application/vnd.ms-excel": {},
	"application/octet-stream": {},
}

type importResponse struct {
	OK      bool           `json:"ok"`
	Message string         `json:"message"`
	Stats   importer.Stats `json:"stats"`
	Meta    importer.Meta  `json:"meta"`
}

// PostCsvImport accepts a multipart upload in the "file" field and runs the
// bulk import. The whole run either commits or rolls back.
func (s *Server) PostCsvImport(w http.ResponseWriter, r *http.Request) {
	file, header, err := r.FormFile("file")
	if err != nil {
		httpx.WriteError(w, r, http.StatusBadRequest, "invalid_body", "A CSV upload is required in the 'file' field", nil)
		return
	}
	defer file.Close()

	if header.Size > s.Config.ImportMaxFileBytes {
		httpx.WriteError(w, r, http.StatusRequestEntityTooLarge, "file_too_large",
			fmt.Sprintf("Upload exceeds the %d byte limit", s.Config.ImportMaxFileBytes), nil)
		return
	}

	ext := strings.ToLower(filepath.Ext(header.Filename))
	if ext != ".csv" && ext != ".txt" {
		httpx.WriteError(w, r, http.StatusBadRequest, "unsupported_file_type", "Only .csv and .txt uploads are accepted", nil)
		return
	}
	if ct := header.Header.Get("Content-Type"); ct != "" {
		mediaType := strings.ToLower(strings.TrimSpace(strings.Split(ct, ";")[0]))
		if _, ok := csvContentTypes[mediaType]; !ok {
			httpx.WriteError(w, r, http.StatusBadRequest, "unsupported_file_type", "Upload does not look like a CSV file", nil)
			return
		}
	}

	result, err := s.Importer.Run(r.Context(), file)
	if err != nil {
		var verr *importer.ValidationError
		if errors.As(err, &verr) {
			httpx.WriteError(w, r, verr.Status, "invalid_csv", verr.Message, nil)
			return
		}
		s.Logger.Error("csv import failed", "error", err, "filename", header.Filename)
		httpx.WriteError(w, r, http.StatusInternalServerError, "import_failed", "Import failed and was rolled back", nil)
		return
	}

	stats := result.Stats
	s.Audit.Log(r.Context(), audit.Entry{
		Action:     "imports.csv",
		EntityType: "import",
		RequestID:  middleware.RequestIDFromContext(r.Context()),
		Metadata: map[string]any{
			"filename":          header.Filename,
			"rows_total":        stats.RowsTotal,
			"companies_created": stats.CompaniesCreated,
			"contacts_created":  stats.ContactsCreated,
			"contacts_updated":  stats.ContactsUpdated,
		},
	})

	message := fmt.Sprintf(
		"Import done. Companies created: %d. Companies updated: %d. "+
			"Contacts created: %d. Contacts updated: %d. "+
			"Rows total: %d. Skipped (no key): %d. Insert chunks used: %d.",
		stats.CompaniesCreated, stats.CompaniesUpdated,
		stats.ContactsCreated, stats.ContactsUpdated,
		stats.RowsTotal, stats.RowsSkippedNoKey, stats.InsertChunksUsed)

	httpx.WriteJSON(w, http.StatusOK, importResponse{
		OK:      true,
		Message: message,
		Stats:   stats,
		Meta:    result.Meta,
	})
}
