package workspace

import (
	"errors"
	"sync"
	"testing"

	"github.com/statement-workbench/statement-workbench/internal/journal"
	"github.com/statement-workbench/statement-workbench/internal/platform/httpx"
)

func TestStoreCreateAndView(t *testing.T) {
	store := NewStore()
	id := store.Create()
	if id == "" {
		t.Fatal("create returned empty id")
	}

	err := store.View(id, func(ws *Workspace) error {
		if ws.ID != id {
			t.Fatalf("workspace id = %q", ws.ID)
		}
		if ws.Journal.Status != journal.StatusLoading {
			t.Fatalf("journal status = %q, want loading", ws.Journal.Status)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("view: %v", err)
	}
}

func TestStoreUnknownWorkspace(t *testing.T) {
	store := NewStore()
	err := store.View("nope", func(*Workspace) error { return nil })
	if !errors.Is(err, httpx.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
	err = store.Update("nope", func(*Workspace) error { return nil })
	if !errors.Is(err, httpx.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestStoreUpdatePersists(t *testing.T) {
	store := NewStore()
	id := store.Create()

	err := store.Update(id, func(ws *Workspace) error {
		ws.SelectedNote = 7
		ws.Journal.Status = journal.StatusReady
		return nil
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}

	_ = store.View(id, func(ws *Workspace) error {
		if ws.SelectedNote != 7 {
			t.Fatalf("selected note = %d", ws.SelectedNote)
		}
		if ws.Journal.Status != journal.StatusReady {
			t.Fatalf("journal status = %q", ws.Journal.Status)
		}
		return nil
	})
}

func TestStoreDelete(t *testing.T) {
	store := NewStore()
	id := store.Create()
	store.Delete(id)
	if store.Len() != 0 {
		t.Fatalf("len = %d after delete", store.Len())
	}
	// deleting twice is fine
	store.Delete(id)
}

func TestStoreConcurrentAccess(t *testing.T) {
	store := NewStore()
	id := store.Create()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_ = store.Update(id, func(ws *Workspace) error {
				ws.SelectedNote++
				return nil
			})
		}()
		go func() {
			defer wg.Done()
			_ = store.View(id, func(ws *Workspace) error { return nil })
		}()
	}
	wg.Wait()

	_ = store.View(id, func(ws *Workspace) error {
		if ws.SelectedNote != 50 {
			t.Fatalf("selected note = %d, want 50", ws.SelectedNote)
		}
		return nil
	})
}
