// Package tbl is the table layout engine: declarative items and fields in,
// a rectangular grid of cell placeholders out, with spanning, alternation
// and incremental item-limit re-rendering.
package tbl

// TextAlignment horizontal alignment; the zero value defers to the next
// level of the precedence chain (cell, then row, then column).
type TextAlignment int

const (
	AlignDefault TextAlignment = iota
	AlignLeft
	AlignCenter
	AlignRight
)

// Class the css class of the alignment, empty for the default
func (a TextAlignment) Class() string {
	switch a {
	case AlignLeft:
		return "table-text-align-left"
	case AlignCenter:
		return "table-text-align-center"
	case AlignRight:
		return "table-text-align-right"
	}
	return ""
}

// VerticalAlignment vertical alignment; precedence is row, then column.
type VerticalAlignment int

const (
	VAlignDefault VerticalAlignment = iota
	VAlignTop
	VAlignMiddle
	VAlignBottom
	VAlignBaseline
)

func (a VerticalAlignment) Class() string {
	switch a {
	case VAlignTop:
		return "table-vertical-align-top"
	case VAlignMiddle:
		return "table-vertical-align-middle"
	case VAlignBottom:
		return "table-vertical-align-bottom"
	case VAlignBaseline:
		return "table-vertical-align-baseline"
	}
	return ""
}

// Field one column definition
type Field struct {
	// Size a css width ("12em", "20%"); empty lets the browser decide
	Size string

	TextAlign     TextAlignment
	VerticalAlign VerticalAlignment

	// Activation column-level activation behavior; only wins on
	// column-primary tables or rows without their own behavior
	Activation *ActivationBehavior

	Classes []string
}
