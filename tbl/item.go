package tbl

import (
	"github.com/syntax-framework/spage/cmn"
)

var errorItemNoCells = cmn.Err(
	"tbl.itemnocells",
	"Every table item must contain at least one cell.", "ItemIndex: %d",
)

// ItemSetup the optional parts of an item (a row-to-be)
type ItemSetup struct {
	// Id stable id; required for checkbox selection
	Id string

	// RankId enables reordering of the item
	RankId *int

	Classes       []string
	TextAlign     TextAlignment
	VerticalAlign VerticalAlignment

	// Activation row-level activation (clickable row)
	Activation *ActivationBehavior
}

// Item one row definition: an ordered collection of cells plus a setup
type Item struct {
	Setup ItemSetup
	Cells []*Cell
}

// NewItem an item from cells
func NewItem(setup *ItemSetup, cells ...*Cell) *Item {
	item := &Item{Cells: cells}
	if setup != nil {
		item.Setup = *setup
	}
	return item
}

// materializeItems runs the deferred item factories once, in declared
// order, and checks the at-least-one-cell invariant. The two-phase contract
// (describe, then materialize) keeps validation side effects ordered.
func materializeItems(factories []func() *Item) []*Item {
	items := make([]*Item, 0, len(factories))
	for index, factory := range factories {
		item := factory()
		if item == nil || len(item.Cells) == 0 {
			panic(errorItemNoCells(index))
		}
		items = append(items, item)
	}
	return items
}
