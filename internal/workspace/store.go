// Package workspace keeps the ephemeral per-session working state the
// browser used to hold in component state. Nothing here survives a restart.
package workspace

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/statement-workbench/statement-workbench/internal/backend"
	"github.com/statement-workbench/statement-workbench/internal/ingest"
	"github.com/statement-workbench/statement-workbench/internal/journal"
	"github.com/statement-workbench/statement-workbench/internal/mapper"
	"github.com/statement-workbench/statement-workbench/internal/platform/httpx"
	"github.com/statement-workbench/statement-workbench/internal/statement"
)

// JournalState is the adjustment page's local state.
type JournalState struct {
	Status          journal.Status          `json:"status"`
	Metadata        backend.JournalMetadata `json:"metadata"`
	Rows            []journal.Row           `json:"rows"`
	SelectedPeriods []string                `json:"selectedPeriods"`
}

// Workspace is one user session's working set.
type Workspace struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"createdAt"`

	Sheet   *ingest.Sheet     `json:"-"`
	Mapping mapper.Mapping    `json:"mapping,omitempty"`
	Period  mapper.PeriodSpec `json:"period"`
	Rows    []mapper.MappedRow `json:"-"`

	Notes []statement.Note `json:"-"`
	// SelectedNote filters and scrolls the note view; explicit state instead
	// of browser local storage.
	SelectedNote int `json:"selectedNote,omitempty"`

	Journal JournalState `json:"-"`
}

// Store is an in-memory workspace registry guarded by a RWMutex.
type Store struct {
	mu         sync.RWMutex
	workspaces map[string]*Workspace
}

// NewStore constructs an empty store.
func NewStore() *Store {
	return &Store{workspaces: make(map[string]*Workspace)}
}

// Create registers a fresh workspace and returns its identifier.
func (s *Store) Create() string {
	ws := &Workspace{
		ID:        uuid.NewString(),
		CreatedAt: time.Now().UTC(),
		Journal:   JournalState{Status: journal.StatusLoading},
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.workspaces[ws.ID] = ws
	return ws.ID
}

// View runs fn with read access to the workspace. The workspace must not be
// retained or mutated by fn.
func (s *Store) View(id string, fn func(*Workspace) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ws, ok := s.workspaces[id]
	if !ok {
		return fmt.Errorf("%w: workspace %s", httpx.ErrNotFound, id)
	}
	return fn(ws)
}

// Update runs fn with exclusive access to the workspace.
func (s *Store) Update(id string, fn func(*Workspace) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	ws, ok := s.workspaces[id]
	if !ok {
		return fmt.Errorf("%w: workspace %s", httpx.ErrNotFound, id)
	}
	return fn(ws)
}

// Delete removes a workspace. Deleting an unknown id is a no-op.
func (s *Store) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.workspaces, id)
}

// Len reports how many workspaces are live.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.workspaces)
}
