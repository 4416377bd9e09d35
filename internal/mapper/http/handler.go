// Package mapperhttp exposes upload and column mapping endpoints.
package mapperhttp

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/statement-workbench/statement-workbench/internal/ingest"
	"github.com/statement-workbench/statement-workbench/internal/mapper"
	"github.com/statement-workbench/statement-workbench/internal/observability"
	"github.com/statement-workbench/statement-workbench/internal/platform/httpx"
	"github.com/statement-workbench/statement-workbench/internal/workspace"
)

// Handler wires spreadsheet upload and mapping routes.
type Handler struct {
	logger    *slog.Logger
	service   *mapper.Service
	store     *workspace.Store
	validate  *validator.Validate
	metrics   *observability.Metrics
	maxUpload int64
}

// NewHandler constructs the mapping handler. Metrics may be nil.
func NewHandler(logger *slog.Logger, service *mapper.Service, store *workspace.Store, metrics *observability.Metrics, maxUpload int64) *Handler {
	return &Handler{
		logger:    logger,
		service:   service,
		store:     store,
		validate:  validator.New(),
		metrics:   metrics,
		maxUpload: maxUpload,
	}
}

// MountRoutes registers mapping routes under a workspace.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/upload", h.handleUpload)
	r.Get("/mapping", h.handleGetMapping)
	r.Post("/mapping/auto", h.handleAutoMap)
	r.Post("/mapping/override", h.handleOverride)
	r.Post("/mapping/confirm", h.handleConfirm)
}

type uploadResponse struct {
	Columns []string       `json:"columns"`
	Rows    int            `json:"rows"`
	Mapping mapper.Mapping `json:"mapping"`
}

func (h *Handler) handleUpload(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "workspaceID")
	if err := r.ParseMultipartForm(h.maxUpload); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Upload", "multipart form required")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Upload", "file field required")
		return
	}
	defer func() {
		_ = file.Close()
	}()

	sheet, err := ingest.Parse(header.Filename, file)
	if err != nil {
		h.logger.Warn("parse upload", slog.String("file", header.Filename), slog.Any("error", err))
		h.metrics.ObserveUpload("error")
		httpx.Problem(w, http.StatusBadRequest, "Invalid Upload", err.Error())
		return
	}
	h.metrics.ObserveUpload("ok")

	var resp uploadResponse
	err = h.store.Update(id, func(ws *workspace.Workspace) error {
		ws.Sheet = &sheet
		ws.Mapping = mapper.AutoMap(sheet.Columns)
		ws.Rows = nil
		resp = uploadResponse{Columns: sheet.Columns, Rows: len(sheet.Rows), Mapping: ws.Mapping}
		return nil
	})
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	h.logger.Info("upload parsed",
		slog.String("workspace", id),
		slog.String("file", header.Filename),
		slog.Int("rows", len(sheet.Rows)))
	httpx.JSON(w, http.StatusOK, resp)
}

func (h *Handler) handleGetMapping(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "workspaceID")
	var resp uploadResponse
	err := h.store.View(id, func(ws *workspace.Workspace) error {
		if ws.Sheet == nil {
			return errNoUpload()
		}
		resp = uploadResponse{Columns: ws.Sheet.Columns, Rows: len(ws.Sheet.Rows), Mapping: ws.Mapping}
		return nil
	})
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, resp)
}

func (h *Handler) handleAutoMap(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "workspaceID")
	var resp uploadResponse
	err := h.store.Update(id, func(ws *workspace.Workspace) error {
		if ws.Sheet == nil {
			return errNoUpload()
		}
		ws.Mapping = mapper.AutoMap(ws.Sheet.Columns)
		resp = uploadResponse{Columns: ws.Sheet.Columns, Rows: len(ws.Sheet.Rows), Mapping: ws.Mapping}
		return nil
	})
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, resp)
}

type overrideRequest struct {
	Field  string `json:"field" validate:"required"`
	Column string `json:"column"`
}

func (h *Handler) handleOverride(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "workspaceID")
	var req overrideRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Request", "malformed JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	var resp uploadResponse
	err := h.store.Update(id, func(ws *workspace.Workspace) error {
		if ws.Sheet == nil {
			return errNoUpload()
		}
		if err := ws.Mapping.Override(mapper.Field(req.Field), req.Column, ws.Sheet.Columns); err != nil {
			return err
		}
		resp = uploadResponse{Columns: ws.Sheet.Columns, Rows: len(ws.Sheet.Rows), Mapping: ws.Mapping}
		return nil
	})
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, resp)
}

type confirmRequest struct {
	PeriodType string `json:"periodType" validate:"required"`
	Date       string `json:"date" validate:"required,datetime=2006-01-02"`
}

type confirmResponse struct {
	Rows        int    `json:"rows"`
	CurrentKey  string `json:"currentKey"`
	PreviousKey string `json:"previousKey"`
	Submitted   bool   `json:"submitted"`
	SubmitError string `json:"submitError,omitempty"`
}

// handleConfirm validates the mapping, normalizes the sheet and publishes the
// batches. Local mapped state is set before the network calls and is not
// rolled back when they fail.
func (h *Handler) handleConfirm(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "workspaceID")
	var req confirmRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Request", "malformed JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "date must be yyyy-mm-dd")
		return
	}
	period := mapper.PeriodSpec{Type: mapper.PeriodType(req.PeriodType), Date: date}

	var rows []mapper.MappedRow
	err = h.store.Update(id, func(ws *workspace.Workspace) error {
		if ws.Sheet == nil {
			return errNoUpload()
		}
		normalized, err := mapper.Normalize(ws.Mapping, period, *ws.Sheet)
		if err != nil {
			return err
		}
		ws.Period = period
		ws.Rows = normalized
		rows = normalized
		return nil
	})
	if err != nil {
		httpx.RespondError(w, err)
		return
	}

	resp := confirmResponse{
		Rows:        len(rows),
		CurrentKey:  period.CurrentKey(),
		PreviousKey: period.PreviousKey(),
		Submitted:   true,
	}
	if err := h.service.Submit(r.Context(), rows, period); err != nil {
		resp.Submitted = false
		resp.SubmitError = err.Error()
	}
	httpx.JSON(w, http.StatusOK, resp)
}

func errNoUpload() error {
	return httpx.ErrValidationf("no spreadsheet uploaded yet")
}
