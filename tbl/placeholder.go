package tbl

import (
	"github.com/syntax-framework/spage/cmn"
)

var errorCellSpanMismatch = cmn.Err(
	"tbl.cellspan",
	"The cells of a table item do not add up to the field count. "+
		"Existing placeholders plus the field spans of the item's own cells must exactly equal the number of fields.",
	"ItemIndex: %d", "Expected: %d", "Actual: %d",
)

var errorCellOverlap = cmn.Err(
	"tbl.celloverlap",
	"Two spanning cells overlap on the same slot.", "ItemIndex: %d", "FieldIndex: %d",
)

var errorRowCount = cmn.Err(
	"tbl.rowcount",
	"A cell spans past the declared item count.", "Items: %d", "Rows: %d",
)

var errorFieldNoCells = cmn.Err(
	"tbl.fieldnocells",
	"A field has no cells across all items.", "FieldIndex: %d",
)

// placeholder one slot of the grid. A real cell occupies its top-left slot;
// every other slot covered by its field/item span holds an opaque spanned
// placeholder marking the slot consumed.
type placeholder struct {
	cell      *Cell
	item      *Item
	itemIndex int
	spanned   bool
}

// buildPlaceholderMatrix lays the items out into a fieldCount-wide grid,
// failing fast on span mismatch, overlap and overflow.
func buildPlaceholderMatrix(items []*Item, fieldCount int) [][]*placeholder {
	var rows [][]*placeholder

	ensureRow := func(index int) {
		for len(rows) <= index {
			rows = append(rows, make([]*placeholder, fieldCount))
		}
	}

	for itemIndex, item := range items {
		ensureRow(itemIndex)
		row := rows[itemIndex]

		// slots already consumed by multi-item-spanning cells placed above
		consumed := 0
		for _, slot := range row {
			if slot != nil {
				consumed++
			}
		}
		spanSum := 0
		for _, cell := range item.Cells {
			spanSum += cell.Setup.FieldSpan
		}
		if consumed+spanSum != fieldCount {
			panic(errorCellSpanMismatch(itemIndex, fieldCount, consumed+spanSum))
		}

		cursor := 0
		for _, cell := range item.Cells {
			// scan forward from the first unfilled slot
			for cursor < fieldCount && row[cursor] != nil {
				cursor++
			}
			ensureRow(itemIndex + cell.Setup.ItemSpan - 1)
			for r := itemIndex; r < itemIndex+cell.Setup.ItemSpan; r++ {
				for c := cursor; c < cursor+cell.Setup.FieldSpan; c++ {
					if rows[r][c] != nil {
						panic(errorCellOverlap(r, c))
					}
					rows[r][c] = &placeholder{
						cell:      cell,
						item:      item,
						itemIndex: itemIndex,
						spanned:   r != itemIndex || c != cursor,
					}
				}
			}
			// rows may have grown, re-resolve the working row
			row = rows[itemIndex]
			cursor += cell.Setup.FieldSpan
		}
	}

	// a cell silently overflowing past the declared item count would leave
	// extra rows behind
	if len(rows) != len(items) {
		panic(errorRowCount(len(items), len(rows)))
	}

	return rows
}

// checkFieldsHaveCells every field must own at least one real cell across
// all rows. Callers may explicitly disable the check.
func checkFieldsHaveCells(rows [][]*placeholder, fieldCount int) {
	for fieldIndex := 0; fieldIndex < fieldCount; fieldIndex++ {
		found := false
		for _, row := range rows {
			slot := row[fieldIndex]
			if slot != nil && !slot.spanned {
				found = true
				break
			}
		}
		if !found {
			panic(errorFieldNoCells(fieldIndex))
		}
	}
}

// transpose flips the matrix for column-primary tables; spans swap at
// emission time.
func transpose(rows [][]*placeholder, fieldCount int) [][]*placeholder {
	out := make([][]*placeholder, fieldCount)
	for c := 0; c < fieldCount; c++ {
		out[c] = make([]*placeholder, len(rows))
		for r := range rows {
			slot := rows[r][c]
			if slot == nil {
				continue
			}
			// the top-left of the transposed rectangle is the original
			// top-left, so the spanned flag carries over unchanged
			out[c][r] = slot
		}
	}
	return out
}
