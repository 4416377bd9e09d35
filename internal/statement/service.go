package statement

import (
	"fmt"

	"github.com/statement-workbench/statement-workbench/internal/platform/httpx"
)

// LoadNotes normalizes freshly loaded note structures: every derived value
// and note total is recomputed so the view starts consistent.
func LoadNotes(notes []Note) ([]Note, error) {
	out := make([]Note, len(notes))
	for i, note := range notes {
		recalced, err := RecalcNote(note, nil)
		if err != nil {
			return nil, err
		}
		out[i] = recalced
	}
	return out, nil
}

// FindNote returns the index of the note with the given number.
func FindNote(notes []Note, number int) (int, error) {
	for i, note := range notes {
		if note.Number == number {
			return i, nil
		}
	}
	return 0, fmt.Errorf("%w: note %d", httpx.ErrNotFound, number)
}

// UpdateNarrative rewrites the free text of a narrative node. Only nodes
// flagged editable accept text changes.
func UpdateNarrative(note Note, path []int, text string) (Note, error) {
	out := note.Clone()
	if len(path) == 0 {
		return Note{}, fmt.Errorf("%w: edit path is empty", httpx.ErrValidation)
	}
	idx := path[0]
	if idx < 0 || idx >= len(out.Content) {
		return Note{}, fmt.Errorf("%w: block index %d out of range", httpx.ErrValidation, idx)
	}
	block := &out.Content[idx]
	if block.Kind != BlockItem || block.Item == nil {
		return Note{}, fmt.Errorf("%w: block %d is not a line item", httpx.ErrValidation, idx)
	}
	target := block.Item
	if len(path) > 1 {
		node, err := locate(block.Item.Children, path[1:])
		if err != nil {
			return Note{}, err
		}
		target = node
	}
	if target.Kind != KindNarrative || !target.IsEditableText {
		return Note{}, fmt.Errorf("%w: node %q does not accept text edits", httpx.ErrValidation, target.Key)
	}
	target.NarrativeText = text
	return out, nil
}

// UpdateTable replaces the table block at the given content index after a
// cell edit.
func UpdateTable(note Note, blockIndex int, edit CellEdit) (Note, error) {
	out := note.Clone()
	if blockIndex < 0 || blockIndex >= len(out.Content) {
		return Note{}, fmt.Errorf("%w: block index %d out of range", httpx.ErrValidation, blockIndex)
	}
	block := &out.Content[blockIndex]
	if block.Kind != BlockTable || block.Table == nil {
		return Note{}, fmt.Errorf("%w: block %d is not a table", httpx.ErrValidation, blockIndex)
	}
	updated, err := ApplyCellEdit(*block.Table, edit)
	if err != nil {
		return Note{}, err
	}
	block.Table = &updated
	return out, nil
}
