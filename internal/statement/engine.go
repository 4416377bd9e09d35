package statement

import (
	"fmt"

	"github.com/statement-workbench/statement-workbench/internal/platform/httpx"
)

// pair carries both period values of a computed node.
type pair struct {
	current  float64
	previous float64
}

// RecalcItems applies an optional leaf edit to a line item tree and returns a
// new tree with every derived value recomputed. The input is never mutated.
// Recalculation always covers the full tree: aggregates become the sum of
// their children, formula nodes resolve against nodes already visited in
// document order, and unresolved references evaluate to zero.
func RecalcItems(items []LineItem, edit *Edit) ([]LineItem, error) {
	out := make([]LineItem, len(items))
	for i, item := range items {
		out[i] = item.Clone()
	}
	if edit != nil {
		if len(edit.Path) == 0 {
			return nil, fmt.Errorf("%w: edit path is empty", httpx.ErrValidation)
		}
		if !edit.Field.Valid() {
			return nil, fmt.Errorf("%w: unknown value field %q", httpx.ErrValidation, edit.Field)
		}
		target, err := locate(out, edit.Path)
		if err != nil {
			return nil, err
		}
		if err := applyEdit(target, edit.Field, edit.Value); err != nil {
			return nil, err
		}
	}
	totals := make(map[string]pair)
	for i := range out {
		compute(&out[i], totals)
	}
	return out, nil
}

// locate walks a child index path from the top-level item list.
func locate(items []LineItem, path []int) (*LineItem, error) {
	idx := path[0]
	if idx < 0 || idx >= len(items) {
		return nil, fmt.Errorf("%w: path index %d out of range", httpx.ErrValidation, idx)
	}
	node := &items[idx]
	for _, idx := range path[1:] {
		if idx < 0 || idx >= len(node.Children) {
			return nil, fmt.Errorf("%w: path index %d out of range", httpx.ErrValidation, idx)
		}
		node = &node.Children[idx]
	}
	return node, nil
}

// applyEdit writes a new value into an editable leaf.
func applyEdit(node *LineItem, field ValueField, value float64) error {
	switch node.Kind {
	case KindLeaf:
	case KindNarrative:
		return fmt.Errorf("%w: node %q holds text, not amounts", httpx.ErrValidation, node.Key)
	default:
		if !node.IsEditableRow || len(node.Children) > 0 {
			return fmt.Errorf("%w: node %q is derived and cannot be edited", httpx.ErrValidation, node.Key)
		}
	}
	v := value
	if field == FieldPrevious {
		node.Previous = &v
	} else {
		node.Current = &v
	}
	return nil
}

// compute finalizes one node after its children, registering its values under
// its key for later formula references.
func compute(node *LineItem, totals map[string]pair) {
	for i := range node.Children {
		compute(&node.Children[i], totals)
	}
	switch node.Kind {
	case KindNarrative:
		return
	case KindAggregate:
		// childless aggregates are not derived: editable ones keep the
		// entered values, never-valued ones stay unvalued
		if len(node.Children) == 0 {
			break
		}
		var sum pair
		for _, child := range node.Children {
			sum.current += deref(child.Current)
			sum.previous += deref(child.Previous)
		}
		node.Current = ptr(sum.current)
		node.Previous = ptr(sum.previous)
	case KindFormula:
		if node.Formula != nil {
			left := totals[node.Formula.LeftKey]
			right := totals[node.Formula.RightKey]
			if node.Formula.Op == OpSubtract {
				node.Current = ptr(left.current - right.current)
				node.Previous = ptr(left.previous - right.previous)
			} else {
				node.Current = ptr(left.current + right.current)
				node.Previous = ptr(left.previous + right.previous)
			}
		}
	case KindLeaf:
		// user-entered values stand as-is
	}
	if node.Key != "" {
		totals[node.Key] = pair{current: deref(node.Current), previous: deref(node.Previous)}
	}
}

// RecalcNote applies an optional edit to a note's item blocks and recomputes
// the note-level totals. Path[0] addresses the block inside the note content;
// remaining indexes descend through children. Caption and table blocks are
// untouched but still occupy their content positions.
func RecalcNote(note Note, edit *Edit) (Note, error) {
	out := note.Clone()
	if edit != nil {
		if len(edit.Path) == 0 {
			return Note{}, fmt.Errorf("%w: edit path is empty", httpx.ErrValidation)
		}
		idx := edit.Path[0]
		if idx < 0 || idx >= len(out.Content) {
			return Note{}, fmt.Errorf("%w: block index %d out of range", httpx.ErrValidation, idx)
		}
		if out.Content[idx].Kind != BlockItem || out.Content[idx].Item == nil {
			return Note{}, fmt.Errorf("%w: block %d is not a line item", httpx.ErrValidation, idx)
		}
	}
	totals := make(map[string]pair)
	for i := range out.Content {
		block := &out.Content[i]
		if block.Kind != BlockItem || block.Item == nil {
			continue
		}
		if edit != nil && edit.Path[0] == i {
			if !edit.Field.Valid() {
				return Note{}, fmt.Errorf("%w: unknown value field %q", httpx.ErrValidation, edit.Field)
			}
			target := block.Item
			if len(edit.Path) > 1 {
				rest, err := locate(block.Item.Children, edit.Path[1:])
				if err != nil {
					return Note{}, err
				}
				target = rest
			}
			if err := applyEdit(target, edit.Field, edit.Value); err != nil {
				return Note{}, err
			}
		}
		compute(block.Item, totals)
	}
	out.TotalCurrent, out.TotalPrevious = noteTotals(out)
	return out, nil
}

// noteTotals sums the top-level items that are either flagged subtotal or
// have no children.
func noteTotals(note Note) (current, previous float64) {
	for _, block := range note.Content {
		if block.Kind != BlockItem || block.Item == nil {
			continue
		}
		item := block.Item
		if item.Kind == KindNarrative {
			continue
		}
		if item.IsSubtotal || len(item.Children) == 0 {
			current += deref(item.Current)
			previous += deref(item.Previous)
		}
	}
	return current, previous
}

func deref(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}

func ptr(v float64) *float64 {
	return &v
}
