// Package journalhttp exposes the adjustment journal endpoints.
package journalhttp

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/statement-workbench/statement-workbench/internal/journal"
	"github.com/statement-workbench/statement-workbench/internal/observability"
	"github.com/statement-workbench/statement-workbench/internal/platform/httpx"
	"github.com/statement-workbench/statement-workbench/internal/workspace"
)

// Handler wires journal routes for a workspace.
type Handler struct {
	logger   *slog.Logger
	service  *journal.Service
	store    *workspace.Store
	validate *validator.Validate
	metrics  *observability.Metrics
}

// NewHandler constructs the journal handler. Metrics may be nil.
func NewHandler(logger *slog.Logger, service *journal.Service, store *workspace.Store, metrics *observability.Metrics) *Handler {
	return &Handler{logger: logger, service: service, store: store, validate: validator.New(), metrics: metrics}
}

// MountRoutes registers journal routes under a workspace.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/journal", h.handleGetState)
	r.Get("/journal/metadata", h.handleGetMetadata)
	r.Post("/journal/rows", h.handleAddRow)
	r.Delete("/journal/rows/{rowID}", h.handleDeleteRow)
	r.Put("/journal/rows/{rowID}", h.handleUpdateRow)
	r.Put("/journal/rows/{rowID}/amounts", h.handleSetAmount)
	r.Post("/journal/periods", h.handleAddPeriod)
	r.Post("/journal/post", h.handlePost)
}

// handleGetState returns the journal page state, fetching metadata on first
// access. A failed fetch leaves the state loading so the user can retry.
func (h *Handler) handleGetState(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "workspaceID")
	needsMetadata := false
	err := h.store.View(id, func(ws *workspace.Workspace) error {
		needsMetadata = ws.Journal.Status == journal.StatusLoading
		return nil
	})
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	if needsMetadata {
		meta, err := h.service.Metadata(r.Context())
		if err != nil {
			httpx.RespondError(w, err)
			return
		}
		err = h.store.Update(id, func(ws *workspace.Workspace) error {
			if ws.Journal.Status == journal.StatusLoading {
				ws.Journal.Metadata = meta
				ws.Journal.Status = journal.StatusReady
			}
			return nil
		})
		if err != nil {
			httpx.RespondError(w, err)
			return
		}
	}
	h.respondState(w, id)
}

// handleGetMetadata refetches accounts and periods from the backend and
// refreshes the cached copy.
func (h *Handler) handleGetMetadata(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "workspaceID")
	meta, err := h.service.Metadata(r.Context())
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	err = h.store.Update(id, func(ws *workspace.Workspace) error {
		ws.Journal.Metadata = meta
		if ws.Journal.Status == journal.StatusLoading {
			ws.Journal.Status = journal.StatusReady
		}
		return nil
	})
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, meta)
}

func (h *Handler) respondState(w http.ResponseWriter, id string) {
	var state workspace.JournalState
	err := h.store.View(id, func(ws *workspace.Workspace) error {
		state = ws.Journal
		state.Rows = journal.CloneRows(ws.Journal.Rows)
		state.SelectedPeriods = append([]string(nil), ws.Journal.SelectedPeriods...)
		return nil
	})
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, state)
}

func (h *Handler) handleAddRow(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "workspaceID")
	var row journal.Row
	err := h.store.Update(id, func(ws *workspace.Workspace) error {
		if ws.Journal.Status == journal.StatusLoading {
			return httpx.ErrValidationf("journal metadata not loaded yet")
		}
		row = journal.NewRow()
		ws.Journal.Rows = append(ws.Journal.Rows, row.Clone())
		return nil
	})
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, row)
}

func (h *Handler) handleDeleteRow(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "workspaceID")
	rowID := chi.URLParam(r, "rowID")
	err := h.store.Update(id, func(ws *workspace.Workspace) error {
		for i, row := range ws.Journal.Rows {
			if row.ID == rowID {
				ws.Journal.Rows = append(ws.Journal.Rows[:i], ws.Journal.Rows[i+1:]...)
				return nil
			}
		}
		return httpx.ErrNotFound
	})
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type updateRowRequest struct {
	GLAccount *string `json:"selectedGlAccount"`
	Side      string  `json:"transactionType" validate:"omitempty,oneof=Debit Credit"`
}

func (h *Handler) handleUpdateRow(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "workspaceID")
	rowID := chi.URLParam(r, "rowID")
	var req updateRowRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Request", "malformed JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	var updated journal.Row
	err := h.store.Update(id, func(ws *workspace.Workspace) error {
		for i := range ws.Journal.Rows {
			row := &ws.Journal.Rows[i]
			if row.ID != rowID {
				continue
			}
			if req.GLAccount != nil {
				if *req.GLAccount != "" && !knownAccount(ws, *req.GLAccount) {
					return httpx.ErrValidationf("unknown GL account %q", *req.GLAccount)
				}
				if *req.GLAccount == "" {
					row.GLAccount = nil
				} else {
					account := *req.GLAccount
					row.GLAccount = &account
				}
			}
			if req.Side != "" {
				row.Side = journal.Side(req.Side)
			}
			updated = row.Clone()
			return nil
		}
		return httpx.ErrNotFound
	})
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, updated)
}

type setAmountRequest struct {
	Period string `json:"period" validate:"required"`
	Value  string `json:"value"`
}

func (h *Handler) handleSetAmount(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "workspaceID")
	rowID := chi.URLParam(r, "rowID")
	var req setAmountRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Request", "malformed JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	var updated journal.Row
	err := h.store.Update(id, func(ws *workspace.Workspace) error {
		if !selectedPeriod(ws, req.Period) {
			return httpx.ErrValidationf("period %q is not selected", req.Period)
		}
		for i := range ws.Journal.Rows {
			row := &ws.Journal.Rows[i]
			if row.ID != rowID {
				continue
			}
			if row.Amounts == nil {
				row.Amounts = make(map[string]string)
			}
			row.Amounts[req.Period] = req.Value
			updated = row.Clone()
			return nil
		}
		return httpx.ErrNotFound
	})
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, updated)
}

type addPeriodRequest struct {
	Period string `json:"period" validate:"required"`
}

func (h *Handler) handleAddPeriod(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "workspaceID")
	var req addPeriodRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Request", "malformed JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	var selected []string
	err := h.store.Update(id, func(ws *workspace.Workspace) error {
		next := journal.AddPeriod(ws.Journal.SelectedPeriods, req.Period, ws.Journal.Metadata.Periods)
		if len(next) == len(ws.Journal.SelectedPeriods) && !selectedPeriod(ws, req.Period) {
			return httpx.ErrValidationf("period %q is not offered by the backend", req.Period)
		}
		ws.Journal.SelectedPeriods = next
		selected = append([]string(nil), next...)
		return nil
	})
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string][]string{"selectedPeriods": selected})
}

type postResponse struct {
	Entries int `json:"entries"`
}

// handlePost submits the batch. Only one post per workspace may be in flight;
// a successful post clears the composed rows, a failed one leaves everything
// as it was.
func (h *Handler) handlePost(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "workspaceID")
	var rows []journal.Row
	var periods []string
	err := h.store.Update(id, func(ws *workspace.Workspace) error {
		if ws.Journal.Status == journal.StatusPosting {
			return httpx.ErrConflict
		}
		if ws.Journal.Status == journal.StatusLoading {
			return httpx.ErrValidationf("journal metadata not loaded yet")
		}
		ws.Journal.Status = journal.StatusPosting
		rows = journal.CloneRows(ws.Journal.Rows)
		periods = append([]string(nil), ws.Journal.SelectedPeriods...)
		return nil
	})
	if err != nil {
		httpx.RespondError(w, err)
		return
	}

	entries, postErr := h.service.Post(r.Context(), rows, periods)

	finalizeErr := h.store.Update(id, func(ws *workspace.Workspace) error {
		ws.Journal.Status = journal.StatusReady
		if postErr == nil {
			ws.Journal.Rows = nil
		}
		return nil
	})
	if finalizeErr != nil {
		httpx.RespondError(w, finalizeErr)
		return
	}
	if postErr != nil {
		httpx.RespondError(w, postErr)
		return
	}
	h.metrics.ObserveJournalPost(entries)
	h.logger.Info("journal batch posted", slog.String("workspace", id), slog.Int("entries", entries))
	httpx.JSON(w, http.StatusOK, postResponse{Entries: entries})
}

func knownAccount(ws *workspace.Workspace, code string) bool {
	for _, acct := range ws.Journal.Metadata.GLAccounts {
		if acct.Code == code {
			return true
		}
	}
	return false
}

func selectedPeriod(ws *workspace.Workspace, period string) bool {
	for _, p := range ws.Journal.SelectedPeriods {
		if p == period {
			return true
		}
	}
	return false
}
