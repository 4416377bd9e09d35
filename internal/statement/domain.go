// Package statement models financial notes as tagged-variant trees and
// recomputes their derived totals after edits.
package statement

// Kind discriminates the line item variants.
type Kind string

const (
	// KindLeaf holds a user-entered value and never derives anything.
	KindLeaf Kind = "leaf"
	// KindAggregate derives its values as the sum of its children.
	KindAggregate Kind = "aggregate"
	// KindFormula derives its values from two previously computed nodes.
	KindFormula Kind = "formula"
	// KindNarrative carries free text instead of amounts.
	KindNarrative Kind = "narrative"
)

// Operator joins the two operands of a formula node.
type Operator string

const (
	OpAdd      Operator = "+"
	OpSubtract Operator = "-"
)

// Formula references two earlier nodes by key. In document order both keys
// must have been visited before the node carrying the formula; unresolved
// references evaluate to zero.
type Formula struct {
	LeftKey  string   `json:"leftKey"`
	RightKey string   `json:"rightKey"`
	Op       Operator `json:"op"`
}

// LineItem is one node of a note hierarchy. Current and Previous are nil
// until a value is entered or derived.
type LineItem struct {
	Key            string     `json:"key"`
	Label          string     `json:"label"`
	Kind           Kind       `json:"kind"`
	Current        *float64   `json:"valueCurrent"`
	Previous       *float64   `json:"valuePrevious"`
	Children       []LineItem `json:"children,omitempty"`
	IsSubtotal     bool       `json:"isSubtotal,omitempty"`
	IsGrandTotal   bool       `json:"isGrandTotal,omitempty"`
	IsEditableRow  bool       `json:"isEditableRow,omitempty"`
	Formula        *Formula   `json:"formula,omitempty"`
	NarrativeText  string     `json:"narrativeText,omitempty"`
	IsEditableText bool       `json:"isEditableText,omitempty"`
}

// Table is flat tabular note content. All cells are text; numeric parsing
// happens on read.
type Table struct {
	Headers  []string   `json:"headers"`
	Rows     [][]string `json:"rows"`
	Editable bool       `json:"isEditable"`
}

// BlockKind discriminates the heterogeneous note content variants.
type BlockKind string

const (
	BlockCaption BlockKind = "caption"
	BlockTable   BlockKind = "table"
	BlockItem    BlockKind = "item"
)

// Block is one element of a note's ordered content. Exactly one of Caption,
// Table and Item is meaningful, selected by Kind.
type Block struct {
	Kind    BlockKind `json:"kind"`
	Caption string    `json:"caption,omitempty"`
	Table   *Table    `json:"table,omitempty"`
	Item    *LineItem `json:"item,omitempty"`
}

// Note is a numbered supplementary disclosure section.
type Note struct {
	Number        int     `json:"noteNumber"`
	Title         string  `json:"title"`
	Subtitle      string  `json:"subtitle,omitempty"`
	Footer        string  `json:"footer,omitempty"`
	Content       []Block `json:"content"`
	TotalCurrent  float64 `json:"totalCurrent"`
	TotalPrevious float64 `json:"totalPrevious"`
}

// ValueField selects which period column an edit targets.
type ValueField string

const (
	FieldCurrent  ValueField = "current"
	FieldPrevious ValueField = "previous"
)

// Valid reports whether the field names a known period column.
func (f ValueField) Valid() bool {
	return f == FieldCurrent || f == FieldPrevious
}

// Edit locates one leaf value change inside a note's item blocks. Path is the
// chain of child indexes starting at the item block list.
type Edit struct {
	Path  []int      `json:"path"`
	Field ValueField `json:"field"`
	Value float64    `json:"value"`
}

// Clone returns a structurally independent copy of the item.
func (li LineItem) Clone() LineItem {
	out := li
	if li.Current != nil {
		v := *li.Current
		out.Current = &v
	}
	if li.Previous != nil {
		v := *li.Previous
		out.Previous = &v
	}
	if li.Formula != nil {
		f := *li.Formula
		out.Formula = &f
	}
	if len(li.Children) > 0 {
		out.Children = make([]LineItem, len(li.Children))
		for i, child := range li.Children {
			out.Children[i] = child.Clone()
		}
	}
	return out
}

// Clone returns a structurally independent copy of the table.
func (t Table) Clone() Table {
	out := t
	out.Headers = append([]string(nil), t.Headers...)
	if len(t.Rows) > 0 {
		out.Rows = make([][]string, len(t.Rows))
		for i, row := range t.Rows {
			out.Rows[i] = append([]string(nil), row...)
		}
	}
	return out
}

// Clone returns a structurally independent copy of the note.
func (n Note) Clone() Note {
	out := n
	if len(n.Content) > 0 {
		out.Content = make([]Block, len(n.Content))
		for i, block := range n.Content {
			cloned := block
			if block.Table != nil {
				t := block.Table.Clone()
				cloned.Table = &t
			}
			if block.Item != nil {
				item := block.Item.Clone()
				cloned.Item = &item
			}
			out.Content[i] = cloned
		}
	}
	return out
}
