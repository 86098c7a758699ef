package handlers

import (
	"log/slog"
	"net/http"

	"github.com/salesops-platform/api/internal/audit"
	"github.com/salesops-platform/api/internal/config"
	"github.com/salesops-platform/api/internal/httpx"
	"github.com/salesops-platform/api/internal/importer"
	"github.com/salesops-platform/api/internal/overrides"
	"github.com/salesops-platform/api/internal/views"
)

type Server struct {
	Config    config.Config
	Views     *views.Queries
	Importer  *importer.Importer
	Overrides *overrides.Store
	Audit     *audit.Logger
	Logger    *slog.Logger
}

func NewServer(cfg config.Config, v *views.Queries, im *importer.Importer, ov *overrides.Store, auditLogger *audit.Logger, logger *slog.Logger) *Server {
	return &Server{
		Config:    cfg,
		Views:     v,
		Importer:  im,
		Overrides: ov,
		Audit:     auditLogger,
		Logger:    logger,
	}
}

func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	httpx.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
