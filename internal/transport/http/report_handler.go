// Package http contains the chi handlers for the report API.
package http

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"

	"fieldpulse/internal/dataprocessing"
	apierrors "fieldpulse/internal/errors"
	"fieldpulse/internal/exporter"
	"fieldpulse/internal/services"
	"fieldpulse/pkg/contracts/domain"
)

// ReportHandler handles report generation and retrieval requests
type ReportHandler struct {
	service        *services.ReportService
	logger         *slog.Logger
	validate       *validator.Validate
	errorHandler   *apierrors.ErrorHandler
	defaultWeights domain.Weights
	defaultK       float64
	maxUploadBytes int64
}

// NewReportHandler creates a report handler. The default weights and
// credibility constant apply when a request omits them.
func NewReportHandler(service *services.ReportService, logger *slog.Logger, weights domain.Weights, credibilityK float64, maxUploadBytes int64) *ReportHandler {
	return &ReportHandler{
		service:        service,
		logger:         logger,
		validate:       validator.New(),
		errorHandler:   apierrors.NewErrorHandler(logger, false),
		defaultWeights: weights,
		defaultK:       credibilityK,
		maxUploadBytes: maxUploadBytes,
	}
}

// RegisterRoutes registers the report routes
func (h *ReportHandler) RegisterRoutes(r chi.Router) {
	r.Route("/reports", func(r chi.Router) {
		r.Post("/", h.Process)
		r.Get("/latest", h.Latest)
		r.Get("/latest/export", h.Export)
	})
}

// ProcessRequest is the JSON payload for a pipeline run. Rows map header
// strings to cell values: strings, numbers, or null for absent.
type ProcessRequest struct {
	Headers      []string                 `json:"headers" validate:"required,min=1"`
	Rows         []map[string]interface{} `json:"rows" validate:"required"`
	Filters      FiltersRequest           `json:"filters"`
	Weights      *domain.Weights          `json:"weights" validate:"omitempty"`
	CredibilityK float64                  `json:"credibilityK" validate:"gte=0"`
}

// FiltersRequest carries the optional row filter criteria. Dates use
// 2006-01-02 form.
type FiltersRequest struct {
	CompletedFrom string `json:"completedFrom" validate:"omitempty,datetime=2006-01-02"`
	CompletedTo   string `json:"completedTo" validate:"omitempty,datetime=2006-01-02"`
	Service       string `json:"service"`
	Product       string `json:"product"`
	PostalCode    string `json:"postalCode"`
}

// Process runs the pipeline over an uploaded workbook (multipart) or a
// JSON row set and returns the generated report.
func (h *ReportHandler) Process(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var in services.ProcessInput
	var err error
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/") {
		in, err = h.inputFromUpload(r)
	} else {
		in, err = h.inputFromJSON(r)
	}
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	report, err := h.service.Process(ctx, in)
	if err != nil {
		var missing *services.MissingColumnsError
		if errors.As(err, &missing) {
			h.errorHandler.HandleError(w, r, apierrors.MissingColumns(missing.Missing))
			return
		}
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, report)
}

// Latest returns the most recently generated report
func (h *ReportHandler) Latest(w http.ResponseWriter, r *http.Request) {
	report := h.service.Latest(r.Context())
	if report == nil {
		h.errorHandler.HandleError(w, r, apierrors.ErrNoReport)
		return
	}
	render.JSON(w, r, report)
}

// Export streams the latest report's installer- or technician-level
// collection as CSV.
func (h *ReportHandler) Export(w http.ResponseWriter, r *http.Request) {
	report := h.service.Latest(r.Context())
	if report == nil {
		h.errorHandler.HandleError(w, r, apierrors.ErrNoReport)
		return
	}

	level := r.URL.Query().Get("level")
	var items []domain.AggregatedResult
	switch level {
	case "", "installers":
		level = "installers"
		items = report.Installers
	case "technicians":
		items = report.InstallerTechs
	default:
		h.errorHandler.HandleError(w, r, apierrors.NewWithDetails(
			http.StatusBadRequest, "INVALID_LEVEL",
			"Export level must be installers or technicians",
			map[string]string{"level": level},
		))
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s.csv", level))
	if err := exporter.WriteResults(w, items); err != nil {
		h.logger.ErrorContext(r.Context(), "csv export failed",
			slog.String("level", level),
			slog.String("error", err.Error()))
	}
}

func (h *ReportHandler) inputFromJSON(r *http.Request) (services.ProcessInput, error) {
	var req ProcessRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		return services.ProcessInput{}, apierrors.NewWithDetails(
			http.StatusBadRequest, "INVALID_REQUEST", "Malformed JSON body",
			map[string]string{"error": err.Error()})
	}
	if err := h.validate.Struct(&req); err != nil {
		return services.ProcessInput{}, apierrors.NewWithDetails(
			http.StatusBadRequest, "VALIDATION_FAILED", "Request validation failed",
			map[string]string{"error": err.Error()})
	}

	rows := make([]dataprocessing.RawRow, 0, len(req.Rows))
	for _, raw := range req.Rows {
		row := make(dataprocessing.RawRow, len(raw))
		for header, v := range raw {
			row[header] = cellFromJSON(v)
		}
		rows = append(rows, row)
	}

	filters, err := filtersFromRequest(req.Filters)
	if err != nil {
		return services.ProcessInput{}, err
	}

	in := services.ProcessInput{
		Headers:      req.Headers,
		Rows:         rows,
		Filters:      filters,
		Weights:      h.defaultWeights,
		CredibilityK: h.defaultK,
	}
	if req.Weights != nil {
		in.Weights = *req.Weights
	}
	if req.CredibilityK > 0 {
		in.CredibilityK = req.CredibilityK
	}
	return in, nil
}

// inputFromUpload reads a multipart .xlsx upload. Filters, weights, and K
// arrive as query parameters alongside the file.
func (h *ReportHandler) inputFromUpload(r *http.Request) (services.ProcessInput, error) {
	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		return services.ProcessInput{}, apierrors.NewWithDetails(
			http.StatusBadRequest, "INVALID_UPLOAD", "Could not parse multipart upload",
			map[string]string{"error": err.Error()})
	}
	file, _, err := r.FormFile("workbook")
	if err != nil {
		return services.ProcessInput{}, apierrors.New(
			http.StatusBadRequest, "MISSING_FILE", `Multipart field "workbook" is required`)
	}
	defer file.Close()

	ds, err := dataprocessing.LoadWorkbook(file, dataprocessing.DefaultSynonyms())
	if err != nil {
		return services.ProcessInput{}, apierrors.NewWithDetails(
			http.StatusUnprocessableEntity, "INVALID_WORKBOOK", "Could not read workbook",
			map[string]string{"error": err.Error()})
	}

	q := r.URL.Query()
	freq := FiltersRequest{
		CompletedFrom: q.Get("completedFrom"),
		CompletedTo:   q.Get("completedTo"),
		Service:       q.Get("service"),
		Product:       q.Get("product"),
		PostalCode:    q.Get("postalCode"),
	}
	if err := h.validate.Struct(&freq); err != nil {
		return services.ProcessInput{}, apierrors.NewWithDetails(
			http.StatusBadRequest, "VALIDATION_FAILED", "Invalid filter parameters",
			map[string]string{"error": err.Error()})
	}
	filters, err := filtersFromRequest(freq)
	if err != nil {
		return services.ProcessInput{}, err
	}

	return services.ProcessInput{
		Headers:      ds.Headers,
		Rows:         ds.Rows,
		Filters:      filters,
		Weights:      h.defaultWeights,
		CredibilityK: h.defaultK,
	}, nil
}

func filtersFromRequest(req FiltersRequest) (domain.Filters, error) {
	f := domain.Filters{
		Service:    req.Service,
		Product:    req.Product,
		PostalCode: req.PostalCode,
	}
	if req.CompletedFrom != "" {
		t, err := time.ParseInLocation("2006-01-02", req.CompletedFrom, time.Local)
		if err != nil {
			return f, apierrors.New(http.StatusBadRequest, "INVALID_PARAMETER", "completedFrom must be a 2006-01-02 date")
		}
		f.CompletedFrom = &t
	}
	if req.CompletedTo != "" {
		t, err := time.ParseInLocation("2006-01-02", req.CompletedTo, time.Local)
		if err != nil {
			return f, apierrors.New(http.StatusBadRequest, "INVALID_PARAMETER", "completedTo must be a 2006-01-02 date")
		}
		f.CompletedTo = &t
	}
	return f, nil
}

// cellFromJSON maps a decoded JSON value onto a typed cell
func cellFromJSON(v interface{}) dataprocessing.Cell {
	switch val := v.(type) {
	case nil:
		return dataprocessing.Cell{Kind: dataprocessing.CellAbsent}
	case float64:
		return dataprocessing.NumberCell(val)
	case string:
		return dataprocessing.TextCell(val)
	case bool:
		return dataprocessing.TextCell(fmt.Sprintf("%t", val))
	default:
		return dataprocessing.TextCell(fmt.Sprintf("%v", val))
	}
}
