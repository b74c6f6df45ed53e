package tbl

import (
	"strconv"
	"strings"

	"github.com/iancoleman/strcase"

	"github.com/syntax-framework/spage/cmn"
	"github.com/syntax-framework/spage/swp"
)

var errorMixedModes = cmn.Err(
	"tbl.mixedmodes",
	"A table either has explicit item groups or is built by repeated AddItem calls, never both.", "IdBase: %s",
)

var errorCheckboxesAdded = cmn.Err(
	"tbl.checkboxes",
	"The table cannot be modified after checkboxes have been added.", "IdBase: %s",
)

// Table the declarative description of one table. Describe it fully (pure
// data, no side effects), then Component materializes the items once, in
// declared order, lays them out and emits renderable rows.
type Table struct {
	// IdBase prefix of every generated id, post-back and region key
	IdBase string

	Caption string
	Fields  []*Field

	// ColumnPrimary transposes the table: items render as columns
	ColumnPrimary bool

	// FirstRowContrast flips the alternation parity, supports visually
	// continuing alternation across tables
	FirstRowContrast bool

	// HeaderItems leading items rendered as header rows (th)
	HeaderItems int

	// HeaderFields leading fields rendered as header cells (th)
	HeaderFields int

	DisableEmptyFieldDetection bool

	// Limit non-nil enables the item-limiting sub-protocol
	Limit *ItemLimitConfig

	groups       []*ItemGroup
	implicit     *ItemGroup
	explicitMode bool
	checkboxes   bool
}

func NewTable(idBase string, fields ...*Field) *Table {
	return &Table{IdBase: idBase, Fields: fields}
}

// AddItem appends a deferred item to the implicit single group
func (t *Table) AddItem(factory func() *Item) *Table {
	if t.checkboxes {
		panic(errorCheckboxesAdded(t.IdBase))
	}
	if t.explicitMode {
		panic(errorMixedModes(t.IdBase))
	}
	if t.implicit == nil {
		t.implicit = NewItemGroup(nil)
		t.groups = append(t.groups, t.implicit)
	}
	t.implicit.AddItem(factory)
	return t
}

// AddGroup appends an explicit item group
func (t *Table) AddGroup(group *ItemGroup) *Table {
	if t.checkboxes {
		panic(errorCheckboxesAdded(t.IdBase))
	}
	if t.implicit != nil {
		panic(errorMixedModes(t.IdBase))
	}
	t.explicitMode = true
	t.groups = append(t.groups, group)
	if group.hasCheckboxes() {
		t.checkboxes = true
	}
	return t
}

// TailRegionSet the update-region set covering rows appended to the item
// limiting tail of this table
func (t *Table) TailRegionSet() *swp.RegionSet {
	return swp.NewRegionSet(t.IdBase + ".itemLimitingTail")
}

// Component the renderable table. Building it registers the item limit
// state item, the "show more" post-back and the tail region linker.
func (t *Table) Component() swp.Component {
	return swp.IdentifiedFlow(nil, t.build)
}

// tableLayout everything the emission pass and the tail region getter share
type tableLayout struct {
	table      *Table
	items      []*Item
	groupOf    map[*Item]*ItemGroup
	matrix     [][]*placeholder
	fieldCount int
	fields     []*Field
}

func (t *Table) build(b *swp.TreeBuilder) *swp.Node {
	layout := t.layout(b)

	node := &swp.Node{Type: swp.FlowNode}
	table := element(b, "table", "responsive-table")
	if t.IdBase != "" {
		table.Attributes.Set("id", t.IdBase)
	}
	node.AppendChild(table)

	if t.Caption != "" {
		caption := element(b, "caption", "")
		caption.AppendChild(&swp.Node{Type: swp.TextNode, Data: t.Caption})
		table.AppendChild(caption)
	}

	table.AppendChild(layout.colgroup(b))

	tbody := element(b, "tbody", "")
	table.AppendChild(tbody)

	visible := len(layout.matrix)
	limitState, tail := t.wireItemLimit(b, layout)
	if limitState != nil {
		limit := limitFromState(limitState.Value())
		if limit < visible {
			visible = limit
		}
	}

	group := (*ItemGroup)(nil)
	emitted := 0
	for rowIndex := 0; rowIndex < visible; rowIndex++ {
		row := layout.matrix[rowIndex]
		if !t.ColumnPrimary {
			// group header rows only make sense in the row-primary layout
			if itemGroup := layout.groupAt(rowIndex); itemGroup != group {
				group = itemGroup
				if header := layout.groupHeader(b, group); header != nil {
					tbody.AppendChild(header)
				}
			}
		}
		tbody.AppendChild(layout.emitRow(b, rowIndex, row, emitted))
		emitted++
	}

	if tail != nil {
		tbody.AppendChild(tail)
	}

	return node
}

// layout materializes every group in declared order and constructs the
// placeholder matrix
func (t *Table) layout(b *swp.TreeBuilder) *tableLayout {
	layout := &tableLayout{
		table:   t,
		groupOf: map[*Item]*ItemGroup{},
		fields:  t.Fields,
	}

	var selected *swp.FormValue
	if t.checkboxes {
		// the checkbox column squeezes in before the declared fields
		layout.fields = append([]*Field{{Size: "2em", TextAlign: AlignCenter}}, t.Fields...)
		selected = t.selectionFormValue(b)
	}
	layout.fieldCount = len(layout.fields)

	for _, group := range t.groups {
		items := materializeItems(group.factories)
		for _, item := range items {
			if t.checkboxes {
				item.Cells = append([]*Cell{t.checkboxCell(group, item, selected)}, item.Cells...)
			}
			layout.groupOf[item] = group
			layout.items = append(layout.items, item)
		}
	}

	layout.matrix = buildPlaceholderMatrix(layout.items, layout.fieldCount)
	if !t.DisableEmptyFieldDetection {
		checkFieldsHaveCells(layout.matrix, layout.fieldCount)
	}
	if t.ColumnPrimary {
		layout.matrix = transpose(layout.matrix, layout.fieldCount)
	}
	return layout
}

// selectionFormValue the comma separated ids of the checked items
func (t *Table) selectionFormValue(b *swp.TreeBuilder) *swp.FormValue {
	var modifications []*swp.DataModification
	for _, group := range t.groups {
		for _, action := range group.SelectedItemActions {
			if action.PostBack != nil && action.PostBack.Modification != nil {
				modifications = append(modifications, action.PostBack.Modification)
			}
		}
	}
	value := &swp.FormValue{
		Key:           t.IdBase + ".selected",
		Durable:       func() string { return "" },
		Modifications: modifications,
	}
	b.AddFormValue(value)
	return value
}

func (t *Table) checkboxCell(group *ItemGroup, item *Item, selected *swp.FormValue) *Cell {
	if !group.hasCheckboxes() || item.Setup.Id == "" {
		return NewCell(nil, nil)
	}
	id := item.Setup.Id
	return NewCell(swp.Element("input", &swp.ElementOptions{Attributes: map[string]string{
		"type":  "checkbox",
		"name":  selected.Key,
		"value": id,
	}}), &CellSetup{ContainsActivatableElements: true})
}

// wireItemLimit registers the limit state item, the "show more" intermediate
// post-back and the tail region linker, all inside their own identified
// node so the whole tail is legitimately dynamic.
func (t *Table) wireItemLimit(b *swp.TreeBuilder, layout *tableLayout) (*swp.StateItem, *swp.Node) {
	if t.Limit == nil {
		return nil, nil
	}

	total := len(layout.matrix)
	tailSet := t.TailRegionSet()

	var limitState *swp.StateItem
	var showMore *swp.PostBack

	tail := swp.IdentifiedFlow(nil, func(b *swp.TreeBuilder) *swp.Node {
		node := &swp.Node{Type: swp.FlowNode}

		showMore = swp.NewIntermediatePostBack(t.IdBase+".showMore", tailSet)
		limitState = b.AddStateItem(&swp.StateItem{
			Key:           t.IdBase + ".itemLimit",
			Default:       t.Limit.Default,
			Valid:         validLimit,
			Modifications: []*swp.DataModification{showMore.Modification},
		})
		limit := limitFromState(limitState.Value())
		visible := total
		if limit < visible {
			visible = limit
		}

		showMore.Modification.AddMethod(func() error {
			limitState.Set(nextLimit(limitFromState(limitState.Value())))
			return nil
		})
		b.AddPostBack(showMore)

		if visible < total {
			node.AppendChild(layout.showMoreRow(b, showMore, total-visible))
		}
		return node
	})

	tailNode := tail(b)

	// the linker hangs off the tail's identity; captured argument is the
	// count currently shown, replayed into the post getter to resolve only
	// the newly revealed rows
	identity := tailNode.Identity
	identity.Linkers = append(identity.Linkers, &swp.RegionLinker{
		KeyBase: t.IdBase,
		Suffix:  "itemLimitingTail",
		Pre: []*swp.PreRegion{{
			Sets: []*swp.RegionSet{tailSet},
			Argument: func() string {
				limit := limitFromState(limitState.Value())
				if limit > total {
					limit = total
				}
				return strconv.Itoa(limit)
			},
		}},
		Post: func(argument string) []swp.Component {
			previous, err := strconv.Atoi(argument)
			if err != nil {
				previous = 0
			}
			return []swp.Component{layout.tailRows(previous, limitState, showMore)}
		},
	})

	return limitState, tailNode
}

// tailRows the rows revealed by a limit increase plus, when more remain,
// the refreshed control
func (l *tableLayout) tailRows(previous int, limitState *swp.StateItem, showMore *swp.PostBack) swp.Component {
	return func(b *swp.TreeBuilder) *swp.Node {
		node := &swp.Node{Type: swp.FlowNode}
		total := len(l.matrix)
		visible := limitFromState(limitState.Value())
		if visible > total {
			visible = total
		}
		for rowIndex := previous; rowIndex < visible; rowIndex++ {
			node.AppendChild(l.emitRow(b, rowIndex, l.matrix[rowIndex], rowIndex))
		}
		if visible < total {
			node.AppendChild(l.showMoreRow(b, showMore, total-visible))
		}
		return node
	}
}

func (l *tableLayout) showMoreRow(b *swp.TreeBuilder, showMore *swp.PostBack, remaining int) *swp.Node {
	tr := element(b, "tr", "table-show-more")
	td := element(b, "td", "")
	td.Attributes.Set("colspan", strconv.Itoa(l.fieldCount))
	button := element(b, "button", "")
	button.Attributes.Set("type", "submit")
	button.Attributes.Set("data-post-back", showMore.Id)
	label := "Show " + strconv.Itoa(remaining) + " more"
	if remaining > nextLimit(0) {
		label = "Show more"
	}
	button.AppendChild(&swp.Node{Type: swp.TextNode, Data: label})
	td.AppendChild(button)
	tr.AppendChild(td)
	return tr
}

// groupAt the group owning the item at the given matrix row, nil for the
// implicit group
func (l *tableLayout) groupAt(rowIndex int) *ItemGroup {
	if rowIndex >= len(l.items) {
		return nil
	}
	return l.groupOf[l.items[rowIndex]]
}

// groupHeader the header row of an explicit group: name, group actions and
// selected-item actions
func (l *tableLayout) groupHeader(b *swp.TreeBuilder, group *ItemGroup) *swp.Node {
	if group == nil || group.Name == nil {
		return nil
	}
	tr := element(b, "tr", "table-group-head")
	th := element(b, "th", "")
	th.Attributes.Set("colspan", strconv.Itoa(l.fieldCount))
	if name := group.Name(b); name != nil {
		th.AppendChild(name)
	}
	for _, action := range group.Actions {
		if built := action(b); built != nil {
			th.AppendChild(built)
		}
	}
	for _, action := range group.SelectedItemActions {
		button := element(b, "button", "table-selected-action")
		if action.Label != "" {
			// the label doubles as a styling and scripting hook
			button.Attributes.AddClass("table-action-" + strcase.ToKebab(action.Label))
		}
		button.Attributes.Set("type", "submit")
		if action.PostBack != nil {
			b.AddPostBack(action.PostBack)
			button.Attributes.Set("data-post-back", action.PostBack.Id)
		}
		button.AppendChild(&swp.Node{Type: swp.TextNode, Data: action.Label})
		th.AppendChild(button)
	}
	tr.AppendChild(th)
	return tr
}

// emitRow one renderable row. emittedIndex drives the alternation so the
// parity stays continuous when item limiting hides rows.
func (l *tableLayout) emitRow(b *swp.TreeBuilder, rowIndex int, row []*placeholder, emittedIndex int) *swp.Node {
	t := l.table
	tr := element(b, "tr", "")

	// alternation: row parity XOR the first-row-contrast flag
	if (emittedIndex%2 == 1) != t.FirstRowContrast {
		tr.Attributes.AddClass("table-contrast")
	}

	var rowItem *Item
	for _, slot := range row {
		if slot != nil && !slot.spanned {
			rowItem = slot.item
			break
		}
	}
	if rowItem != nil && !t.ColumnPrimary {
		setup := rowItem.Setup
		for _, class := range setup.Classes {
			tr.Attributes.AddClass(class)
		}
		if setup.Activation != nil {
			applyActivation(b, setup.Activation, tr.Attributes)
		}
		if setup.Id != "" {
			tr.Attributes.Set("data-item-id", setup.Id)
		}
		if setup.RankId != nil {
			tr.Attributes.Set("data-rank-id", strconv.Itoa(*setup.RankId))
		}
	}

	for colIndex, slot := range row {
		if slot == nil || slot.spanned {
			continue
		}
		tr.AppendChild(l.emitCell(b, rowIndex, colIndex, slot))
	}
	return tr
}

func (l *tableLayout) emitCell(b *swp.TreeBuilder, rowIndex, colIndex int, slot *placeholder) *swp.Node {
	t := l.table
	cell := slot.cell

	// original coordinates survive transposition via the placeholder
	itemIndex := slot.itemIndex
	fieldIndex := colIndex
	if t.ColumnPrimary {
		fieldIndex = rowIndex
	}
	field := l.fields[fieldIndex]

	header := itemIndex < t.HeaderItems || fieldIndex < l.firstDataField()
	tag := "td"
	if header {
		tag = "th"
	}
	td := element(b, tag, "")

	colspan, rowspan := cell.Setup.FieldSpan, cell.Setup.ItemSpan
	if t.ColumnPrimary {
		colspan, rowspan = rowspan, colspan
	}
	if colspan > 1 {
		td.Attributes.Set("colspan", strconv.Itoa(colspan))
	}
	if rowspan > 1 {
		td.Attributes.Set("rowspan", strconv.Itoa(rowspan))
	}

	// text alignment precedence: cell, then row, then column
	align := cell.Setup.TextAlign
	if align == AlignDefault {
		align = slot.item.Setup.TextAlign
	}
	if align == AlignDefault {
		align = field.TextAlign
	}
	if class := align.Class(); class != "" {
		td.Attributes.AddClass(class)
	}

	// vertical alignment precedence: row, then column
	valign := slot.item.Setup.VerticalAlign
	if valign == VAlignDefault {
		valign = field.VerticalAlign
	}
	if class := valign.Class(); class != "" {
		td.Attributes.AddClass(class)
	}

	// activation precedence: cell-specific, else column-level only on
	// column-primary tables or rows without their own behavior
	activation := cell.Setup.Activation
	if activation == nil && (t.ColumnPrimary || slot.item.Setup.Activation == nil) {
		activation = field.Activation
	}
	if activation != nil {
		applyActivation(b, activation, td.Attributes)
	}
	if cell.Setup.ContainsActivatableElements {
		td.Attributes.AddClass("table-contains-activatable")
	}

	for _, class := range cell.Setup.Classes {
		td.Attributes.AddClass(class)
	}
	for _, class := range field.Classes {
		td.Attributes.AddClass(class)
	}
	if header {
		td.Attributes.Set("scope", headerScope(itemIndex < t.HeaderItems, t.ColumnPrimary))
	}

	if cell.Content != nil {
		if built := cell.Content(b); built != nil {
			td.AppendChild(built)
		}
	}
	if cell.Setup.Ethereal != nil {
		ethereal := swp.Ethereal(cell.Setup.Ethereal)(b)
		td.AppendChild(ethereal)
	}
	return td
}

func (l *tableLayout) firstDataField() int {
	first := l.table.HeaderFields
	if l.table.checkboxes {
		first++
	}
	return first
}

// colgroup the column sizing and classes
func (l *tableLayout) colgroup(b *swp.TreeBuilder) *swp.Node {
	colgroup := element(b, "colgroup", "")
	for _, field := range l.fields {
		col := element(b, "col", "")
		if field.Size != "" {
			col.Attributes.Set("style", "width: "+field.Size)
		}
		if len(field.Classes) > 0 {
			col.Attributes.Set("class", strings.Join(field.Classes, " "))
		}
		colgroup.AppendChild(col)
	}
	return colgroup
}

func headerScope(isHeaderItem bool, columnPrimary bool) string {
	if isHeaderItem != columnPrimary {
		return "col"
	}
	return "row"
}

// applyActivation registers the activation post-back, if any, and decorates
// the element
func applyActivation(b *swp.TreeBuilder, activation *ActivationBehavior, attrs *swp.Attributes) {
	if activation.PostBack != nil {
		b.AddPostBack(activation.PostBack)
	}
	activation.apply(attrs)
}

func element(b *swp.TreeBuilder, tag string, class string) *swp.Node {
	node := &swp.Node{Type: swp.ElementNode, Data: tag, Attributes: swp.NewAttributes()}
	if class != "" {
		node.Attributes.AddClass(class)
	}
	return node
}
