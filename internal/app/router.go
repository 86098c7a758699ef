package app

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	openapimiddleware "github.com/oapi-codegen/nethttp-middleware"

	"github.com/salesops-platform/api/internal/audit"
	"github.com/salesops-platform/api/internal/config"
	"github.com/salesops-platform/api/internal/handlers"
	"github.com/salesops-platform/api/internal/httpx"
	"github.com/salesops-platform/api/internal/importer"
	"github.com/salesops-platform/api/internal/middleware"
	"github.com/salesops-platform/api/internal/overrides"
	"github.com/salesops-platform/api/internal/views"
)

func NewRouter(cfg config.Config, pool *pgxpool.Pool, logger *slog.Logger) (http.Handler, error) {
	specPath := "openapi.yaml"
	if _, err := os.Stat(specPath); err != nil {
		return nil, fmt.Errorf("openapi spec not found at %s: %w", specPath, err)
	}

	loader := openapi3.NewLoader()
	doc, err := loader.LoadFromFile(specPath)
	if err != nil {
		return nil, fmt.Errorf("load openapi spec: %w", err)
	}
	if err := doc.Validate(loader.Context); err != nil {
		return nil, fmt.Errorf("validate openapi spec: %w", err)
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.SecurityHeaders(cfg.Env))
	r.Use(middleware.CORS(cfg.CORSAllowedOrigins))
	r.Use(middleware.Logging(logger))

	api := chi.NewRouter()
	api.Use(middleware.LimitBodyBytesWithOverrides(cfg.APIMaxBodyBytes, []middleware.BodyLimitOverride{
		{PathPrefix: "/csv-import", MaxBytes: cfg.ImportMaxFileBytes + 1024*1024},
	}))
	api.Use(openapimiddleware.OapiRequestValidatorWithOptions(doc, &openapimiddleware.Options{
		SilenceServersWarning: true,
		ErrorHandler: func(w http.ResponseWriter, message string, statusCode int) {
			requestID := w.Header().Get("X-Request-Id")
			httpx.WriteJSON(w, statusCode, httpx.ErrorEnvelope{
				Error:     httpx.ErrorBody{Code: "validation_error", Message: message},
				RequestID: requestID,
			})
		},
	}))

	auditLogger := audit.NewLogger(logger)
	store := importer.NewPGStore(pool)
	engine := importer.New(store, cfg.ImportMaxBindParams, logger)
	overrideStore := overrides.NewStore(cfg.OverrideTTL)
	viewQueries := views.New(pool)

	h := handlers.NewServer(cfg, viewQueries, engine, overrideStore, auditLogger, logger)
	importLimiter := middleware.NewIPRateLimiter(cfg.ImportRateLimit, time.Minute)

	api.Get("/health", h.GetHealth)
	api.With(importLimiter.Middleware("Too many import requests, slow down")).
		Post("/csv-import", h.PostCsvImport)

	api.Get("/dashboard/stats", h.GetDashboardStats)
	api.Get("/dashboard/exceptions", h.GetDashboardExceptions)
	api.Post("/follow-up-tasks/{taskId}/action", func(w http.ResponseWriter, r *http.Request) {
		h.PostFollowUpTaskAction(w, r, chi.URLParam(r, "taskId"))
	})

	api.Get("/contacts", h.GetContacts)
	api.Get("/contacts/{id}", func(w http.ResponseWriter, r *http.Request) {
		h.GetContact(w, r, chi.URLParam(r, "id"))
	})
	api.Patch("/contacts/{id}", func(w http.ResponseWriter, r *http.Request) {
		h.PatchContact(w, r, chi.URLParam(r, "id"))
	})
	api.Post("/contacts/{id}/action", func(w http.ResponseWriter, r *http.Request) {
		h.PostContactAction(w, r, chi.URLParam(r, "id"))
	})

	api.Get("/companies", h.GetCompanies)
	api.Get("/companies/{id}", func(w http.ResponseWriter, r *http.Request) {
		h.GetCompany(w, r, chi.URLParam(r, "id"))
	})
	api.Patch("/companies/{id}", func(w http.ResponseWriter, r *http.Request) {
		h.PatchCompany(w, r, chi.URLParam(r, "id"))
	})
	api.Post("/companies/{id}/action", func(w http.ResponseWriter, r *http.Request) {
		h.PostCompanyAction(w, r, chi.URLParam(r, "id"))
	})
	api.Get("/companies/{id}/related-contacts", func(w http.ResponseWriter, r *http.Request) {
		h.GetCompanyRelatedContacts(w, r, chi.URLParam(r, "id"))
	})
	api.Get("/companies/{id}/related-deals", func(w http.ResponseWriter, r *http.Request) {
		h.GetCompanyRelatedDeals(w, r, chi.URLParam(r, "id"))
	})

	r.Mount("/api", api)
	return r, nil
}
