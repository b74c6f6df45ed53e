package tbl

import (
	"github.com/syntax-framework/spage/swp"
)

// CellSetup the optional parts of a cell
type CellSetup struct {
	// FieldSpan columns this cell occupies, minimum 1
	FieldSpan int

	// ItemSpan rows this cell occupies, minimum 1
	ItemSpan int

	Classes       []string
	TextAlign     TextAlignment
	VerticalAlign VerticalAlignment

	// Activation cell-specific activation behavior, wins over row and column
	Activation *ActivationBehavior

	// ContainsActivatableElements suppresses row activation over this cell
	// so links and buttons inside it stay clickable
	ContainsActivatableElements bool

	// Ethereal out-of-band content owned by this cell
	Ethereal swp.Component
}

// Cell content plus setup. Content is deferred; it materializes during the
// layout pass, in declared order.
type Cell struct {
	Setup   CellSetup
	Content swp.Component
}

// NewCell a cell with normalized spans
func NewCell(content swp.Component, setup *CellSetup) *Cell {
	cell := &Cell{Content: content}
	if setup != nil {
		cell.Setup = *setup
	}
	if cell.Setup.FieldSpan < 1 {
		cell.Setup.FieldSpan = 1
	}
	if cell.Setup.ItemSpan < 1 {
		cell.Setup.ItemSpan = 1
	}
	return cell
}

// TextCell a plain text cell
func TextCell(text string) *Cell {
	return NewCell(swp.Text(text), nil)
}
