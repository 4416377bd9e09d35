// Package statementhttp exposes note viewing and editing endpoints.
package statementhttp

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/statement-workbench/statement-workbench/internal/platform/httpx"
	"github.com/statement-workbench/statement-workbench/internal/statement"
	"github.com/statement-workbench/statement-workbench/internal/workspace"
)

// Handler wires note routes for a workspace.
type Handler struct {
	logger   *slog.Logger
	store    *workspace.Store
	validate *validator.Validate
}

// NewHandler constructs the note handler.
func NewHandler(logger *slog.Logger, store *workspace.Store) *Handler {
	return &Handler{logger: logger, store: store, validate: validator.New()}
}

// MountRoutes registers note routes under a workspace.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Put("/notes", h.handleLoadNotes)
	r.Get("/notes", h.handleListNotes)
	r.Get("/notes/{number}", h.handleGetNote)
	r.Post("/notes/{number}/edits", h.handleEditValue)
	r.Post("/notes/{number}/narrative", h.handleEditNarrative)
	r.Post("/notes/{number}/blocks/{block}/cells", h.handleEditCell)
	r.Put("/notes/selected", h.handleSelectNote)
	r.Get("/notes/selected", h.handleGetSelected)
}

// handleLoadNotes replaces the workspace's note set with freshly loaded
// structures, recomputing every derived value up front.
func (h *Handler) handleLoadNotes(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "workspaceID")
	var notes []statement.Note
	if err := httpx.DecodeJSON(r, &notes); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Request", "malformed JSON body")
		return
	}
	loaded, err := statement.LoadNotes(notes)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	err = h.store.Update(id, func(ws *workspace.Workspace) error {
		ws.Notes = loaded
		return nil
	})
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	h.logger.Info("notes loaded", slog.String("workspace", id), slog.Int("notes", len(loaded)))
	httpx.JSON(w, http.StatusOK, loaded)
}

func (h *Handler) handleListNotes(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "workspaceID")
	var notes []statement.Note
	err := h.store.View(id, func(ws *workspace.Workspace) error {
		notes = make([]statement.Note, len(ws.Notes))
		for i, note := range ws.Notes {
			notes[i] = note.Clone()
		}
		return nil
	})
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, notes)
}

func (h *Handler) handleGetNote(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "workspaceID")
	number, err := strconv.Atoi(chi.URLParam(r, "number"))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Request", "note number must be an integer")
		return
	}
	var note statement.Note
	err = h.store.View(id, func(ws *workspace.Workspace) error {
		idx, err := statement.FindNote(ws.Notes, number)
		if err != nil {
			return err
		}
		note = ws.Notes[idx].Clone()
		return nil
	})
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, note)
}

// handleEditValue applies one leaf edit and returns the recalculated note.
func (h *Handler) handleEditValue(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "workspaceID")
	number, err := strconv.Atoi(chi.URLParam(r, "number"))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Request", "note number must be an integer")
		return
	}
	var edit statement.Edit
	if err := httpx.DecodeJSON(r, &edit); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Request", "malformed JSON body")
		return
	}
	var note statement.Note
	err = h.store.Update(id, func(ws *workspace.Workspace) error {
		idx, err := statement.FindNote(ws.Notes, number)
		if err != nil {
			return err
		}
		recalced, err := statement.RecalcNote(ws.Notes[idx], &edit)
		if err != nil {
			return err
		}
		ws.Notes[idx] = recalced
		note = recalced.Clone()
		return nil
	})
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, note)
}

type narrativeRequest struct {
	Path []int  `json:"path" validate:"required,min=1"`
	Text string `json:"text"`
}

func (h *Handler) handleEditNarrative(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "workspaceID")
	number, err := strconv.Atoi(chi.URLParam(r, "number"))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Request", "note number must be an integer")
		return
	}
	var req narrativeRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Request", "malformed JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	var note statement.Note
	err = h.store.Update(id, func(ws *workspace.Workspace) error {
		idx, err := statement.FindNote(ws.Notes, number)
		if err != nil {
			return err
		}
		updated, err := statement.UpdateNarrative(ws.Notes[idx], req.Path, req.Text)
		if err != nil {
			return err
		}
		ws.Notes[idx] = updated
		note = updated.Clone()
		return nil
	})
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, note)
}

func (h *Handler) handleEditCell(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "workspaceID")
	number, err := strconv.Atoi(chi.URLParam(r, "number"))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Request", "note number must be an integer")
		return
	}
	blockIdx, err := strconv.Atoi(chi.URLParam(r, "block"))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Request", "block index must be an integer")
		return
	}
	var edit statement.CellEdit
	if err := httpx.DecodeJSON(r, &edit); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Request", "malformed JSON body")
		return
	}
	var note statement.Note
	err = h.store.Update(id, func(ws *workspace.Workspace) error {
		idx, err := statement.FindNote(ws.Notes, number)
		if err != nil {
			return err
		}
		updated, err := statement.UpdateTable(ws.Notes[idx], blockIdx, edit)
		if err != nil {
			return err
		}
		ws.Notes[idx] = updated
		note = updated.Clone()
		return nil
	})
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, note)
}

type selectRequest struct {
	Note int `json:"note" validate:"gte=0"`
}

// handleSelectNote records which note the view scrolls to and filters on.
// Explicit workspace state replaces the browser's local storage key.
func (h *Handler) handleSelectNote(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "workspaceID")
	var req selectRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Request", "malformed JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	err := h.store.Update(id, func(ws *workspace.Workspace) error {
		if req.Note != 0 {
			if _, err := statement.FindNote(ws.Notes, req.Note); err != nil {
				return err
			}
		}
		ws.SelectedNote = req.Note
		return nil
	})
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]int{"note": req.Note})
}

func (h *Handler) handleGetSelected(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "workspaceID")
	var selected int
	err := h.store.View(id, func(ws *workspace.Workspace) error {
		selected = ws.SelectedNote
		return nil
	})
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]int{"note": selected})
}
