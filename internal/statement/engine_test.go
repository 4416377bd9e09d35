package statement

import (
	"testing"
)

func leaf(key string, current, previous float64) LineItem {
	return LineItem{
		Key:           key,
		Label:         key,
		Kind:          KindLeaf,
		Current:       ptr(current),
		Previous:      ptr(previous),
		IsEditableRow: true,
	}
}

func subtotal(key string, children ...LineItem) LineItem {
	return LineItem{
		Key:        key,
		Label:      key,
		Kind:       KindAggregate,
		IsSubtotal: true,
		Children:   children,
	}
}

func TestRecalcItemsSumInvariant(t *testing.T) {
	items := []LineItem{
		subtotal("current-assets",
			leaf("cash", 100, 90),
			leaf("receivables", 50, 40),
		),
		subtotal("liabilities",
			leaf("payables", 30, 20),
		),
	}

	out, err := RecalcItems(items, &Edit{Path: []int{0, 0}, Field: FieldCurrent, Value: 200})
	if err != nil {
		t.Fatalf("recalc: %v", err)
	}
	if got := *out[0].Children[0].Current; got != 200 {
		t.Fatalf("edited leaf = %v, want 200", got)
	}
	if got := *out[0].Current; got != 250 {
		t.Fatalf("edited parent = %v, want 250", got)
	}
	if got := *out[0].Previous; got != 130 {
		t.Fatalf("parent previous = %v, want 130", got)
	}
	// sibling subtree is untouched
	if got := *out[1].Current; got != 30 {
		t.Fatalf("sibling subtotal = %v, want 30", got)
	}
	if got := *out[1].Children[0].Current; got != 30 {
		t.Fatalf("sibling leaf = %v, want 30", got)
	}
}

func TestRecalcItemsDoesNotMutateInput(t *testing.T) {
	items := []LineItem{
		subtotal("assets", leaf("cash", 100, 90)),
	}
	if _, err := RecalcItems(items, &Edit{Path: []int{0, 0}, Field: FieldCurrent, Value: 999}); err != nil {
		t.Fatalf("recalc: %v", err)
	}
	if got := *items[0].Children[0].Current; got != 100 {
		t.Fatalf("input leaf mutated to %v", got)
	}
	if items[0].Current != nil {
		t.Fatalf("input subtotal gained a value: %v", *items[0].Current)
	}
}

func TestRecalcItemsFormula(t *testing.T) {
	items := []LineItem{
		subtotal("gross", leaf("revenue", 1000, 900)),
		subtotal("costs", leaf("cogs", 400, 380)),
		{
			Key:          "net",
			Label:        "Net",
			Kind:         KindFormula,
			IsGrandTotal: true,
			Formula:      &Formula{LeftKey: "gross", RightKey: "costs", Op: OpSubtract},
		},
	}
	out, err := RecalcItems(items, nil)
	if err != nil {
		t.Fatalf("recalc: %v", err)
	}
	if got := *out[2].Current; got != 600 {
		t.Fatalf("formula current = %v, want 600", got)
	}
	if got := *out[2].Previous; got != 520 {
		t.Fatalf("formula previous = %v, want 520", got)
	}
}

func TestRecalcItemsForwardReferenceIsZero(t *testing.T) {
	items := []LineItem{
		{
			Key:     "early",
			Kind:    KindFormula,
			Formula: &Formula{LeftKey: "later", RightKey: "also-later", Op: OpAdd},
		},
		subtotal("later", leaf("x", 10, 10)),
	}
	out, err := RecalcItems(items, nil)
	if err != nil {
		t.Fatalf("recalc: %v", err)
	}
	if got := *out[0].Current; got != 0 {
		t.Fatalf("forward reference = %v, want 0", got)
	}
}

func TestRecalcItemsEditableStandaloneRow(t *testing.T) {
	items := []LineItem{
		{Key: "adjustment", Kind: KindAggregate, IsEditableRow: true},
	}
	out, err := RecalcItems(items, &Edit{Path: []int{0}, Field: FieldCurrent, Value: 42})
	if err != nil {
		t.Fatalf("recalc: %v", err)
	}
	if out[0].Current == nil || *out[0].Current != 42 {
		t.Fatalf("edited standalone row = %v, want 42", out[0].Current)
	}
	// a second recalc without an edit keeps the entered value
	again, err := RecalcItems(out, nil)
	if err != nil {
		t.Fatalf("recalc: %v", err)
	}
	if again[0].Current == nil || *again[0].Current != 42 {
		t.Fatalf("standalone row after recalc = %v, want 42", again[0].Current)
	}
}

func TestRecalcItemsEmptyAggregateStaysUnvalued(t *testing.T) {
	items := []LineItem{
		{Key: "placeholder", Kind: KindAggregate},
	}
	out, err := RecalcItems(items, nil)
	if err != nil {
		t.Fatalf("recalc: %v", err)
	}
	if out[0].Current != nil || out[0].Previous != nil {
		t.Fatalf("never-valued aggregate gained values: %v/%v", out[0].Current, out[0].Previous)
	}
}

func TestRecalcItemsRejectsDerivedEdit(t *testing.T) {
	items := []LineItem{
		subtotal("assets", leaf("cash", 100, 90)),
	}
	if _, err := RecalcItems(items, &Edit{Path: []int{0}, Field: FieldCurrent, Value: 5}); err == nil {
		t.Fatal("expected error editing a derived subtotal")
	}
}

func TestRecalcNoteTotals(t *testing.T) {
	note := Note{
		Number: 3,
		Title:  "Trade receivables",
		Content: []Block{
			{Kind: BlockCaption, Caption: "Amounts due within one year"},
			{Kind: BlockItem, Item: &LineItem{
				Key:        "gross",
				Kind:       KindAggregate,
				IsSubtotal: true,
				Children: []LineItem{
					leaf("trade", 500, 450),
					leaf("other", 100, 80),
				},
			}},
			{Kind: BlockItem, Item: ptrItem(leaf("provision", -50, -40))},
		},
	}

	out, err := RecalcNote(note, &Edit{Path: []int{1, 1}, Field: FieldPrevious, Value: 120})
	if err != nil {
		t.Fatalf("recalc note: %v", err)
	}
	if got := *out.Content[1].Item.Previous; got != 570 {
		t.Fatalf("subtotal previous = %v, want 570", got)
	}
	if out.TotalCurrent != 550 {
		t.Fatalf("note total current = %v, want 550", out.TotalCurrent)
	}
	if out.TotalPrevious != 530 {
		t.Fatalf("note total previous = %v, want 530", out.TotalPrevious)
	}
	// caption block survives untouched
	if out.Content[0].Caption != "Amounts due within one year" {
		t.Fatalf("caption changed: %q", out.Content[0].Caption)
	}
}

func TestRecalcNoteRejectsCaptionEdit(t *testing.T) {
	note := Note{
		Number:  1,
		Content: []Block{{Kind: BlockCaption, Caption: "text"}},
	}
	if _, err := RecalcNote(note, &Edit{Path: []int{0}, Field: FieldCurrent, Value: 1}); err == nil {
		t.Fatal("expected error editing a caption block")
	}
}

func ptrItem(item LineItem) *LineItem {
	return &item
}
