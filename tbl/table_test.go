package tbl

import (
	"strconv"
	"strings"
	"testing"

	"github.com/syntax-framework/spage/cmn"
	"github.com/syntax-framework/spage/swp"
)

func renderTable(t *testing.T, table *Table, snapshot *cmn.JSON) string {
	t.Helper()
	b := swp.NewTreeBuilder(snapshot)
	tree := b.Build(table.Component())
	rendered, err := tree.Render()
	if err != nil {
		t.Fatal(err)
	}
	return rendered
}

func simpleTable(idBase string, itemCount int) *Table {
	table := NewTable(idBase, &Field{Size: "10em"}, &Field{})
	for i := 0; i < itemCount; i++ {
		n := i
		table.AddItem(func() *Item {
			return NewItem(nil, TextCell("row "+strconv.Itoa(n)), TextCell("value"))
		})
	}
	return table
}

func Test_Table_Basic_Render(t *testing.T) {
	table := simpleTable("orders", 2)
	table.Caption = "Open orders"

	rendered := renderTable(t, table, nil)

	for _, fragment := range []string{
		`<table class="responsive-table" id="orders">`,
		`<caption>Open orders</caption>`,
		`<colgroup><col style="width: 10em"/><col/></colgroup>`,
		`<tbody>`,
		`row 0`,
		`row 1`,
	} {
		if !strings.Contains(rendered, fragment) {
			t.Errorf("missing fragment %q in: %q", fragment, rendered)
		}
	}
}

func Test_Table_Alternation(t *testing.T) {
	rendered := renderTable(t, simpleTable("orders", 4), nil)
	if count := strings.Count(rendered, "table-contrast"); count != 2 {
		t.Errorf("every second row gets the contrast class. actual: %d expected: %d", count, 2)
	}

	flipped := simpleTable("orders", 4)
	flipped.FirstRowContrast = true
	rendered = renderTable(t, flipped, nil)
	if !strings.Contains(rendered, `<tr class="table-contrast">`) {
		t.Errorf("with FirstRowContrast the first row is the contrasting one")
	}
}

func Test_Table_Header_Items(t *testing.T) {
	table := simpleTable("orders", 3)
	table.HeaderItems = 1

	rendered := renderTable(t, table, nil)

	if count := strings.Count(rendered, `<th`); count != 2 {
		t.Errorf("every cell of the first item renders as th. actual: %d expected: %d", count, 2)
	}
	if !strings.Contains(rendered, `scope="col"`) {
		t.Errorf("header item cells carry the col scope. actual: %q", rendered)
	}
}

func Test_Table_Header_Fields(t *testing.T) {
	table := simpleTable("orders", 2)
	table.HeaderFields = 1

	rendered := renderTable(t, table, nil)

	if count := strings.Count(rendered, `<th`); count != 2 {
		t.Errorf("the first cell of every item renders as th. actual: %d expected: %d", count, 2)
	}
	if !strings.Contains(rendered, `scope="row"`) {
		t.Errorf("header field cells carry the row scope. actual: %q", rendered)
	}
}

func Test_Table_Alignment_Precedence(t *testing.T) {
	table := NewTable("orders", &Field{TextAlign: AlignLeft}, &Field{TextAlign: AlignLeft})
	table.AddItem(func() *Item {
		return NewItem(&ItemSetup{TextAlign: AlignCenter},
			NewCell(swp.Text("cell wins"), &CellSetup{TextAlign: AlignRight}),
			NewCell(swp.Text("row wins"), nil),
		)
	})
	table.AddItem(func() *Item {
		return NewItem(nil,
			NewCell(swp.Text("column wins"), nil),
			NewCell(swp.Text("column wins"), nil),
		)
	})

	rendered := renderTable(t, table, nil)

	if !strings.Contains(rendered, AlignRight.Class()) {
		t.Errorf("cell alignment must win over row and column")
	}
	if count := strings.Count(rendered, AlignCenter.Class()); count != 1 {
		t.Errorf("row alignment applies where the cell has none. actual: %d expected: %d", count, 1)
	}
	if count := strings.Count(rendered, AlignLeft.Class()); count != 2 {
		t.Errorf("column alignment is the fallback. actual: %d expected: %d", count, 2)
	}
}

func Test_Table_Row_Activation(t *testing.T) {
	table := NewTable("orders", &Field{}, &Field{})
	table.AddItem(func() *Item {
		return NewItem(&ItemSetup{Id: "42", Activation: NewUrlActivation("/orders/42")},
			TextCell("a"),
			NewCell(swp.Text("b"), &CellSetup{ContainsActivatableElements: true}),
		)
	})

	rendered := renderTable(t, table, nil)

	if !strings.Contains(rendered, `data-activation-url="/orders/42"`) {
		t.Errorf("row activation missing. actual: %q", rendered)
	}
	if !strings.Contains(rendered, `data-item-id="42"`) {
		t.Errorf("item id missing. actual: %q", rendered)
	}
	if !strings.Contains(rendered, "table-contains-activatable") {
		t.Errorf("activatable-content marker missing. actual: %q", rendered)
	}
}

func Test_Table_Column_Primary(t *testing.T) {
	table := simpleTable("orders", 2)
	table.ColumnPrimary = true

	rendered := renderTable(t, table, nil)

	// two fields, so two rendered rows; each carries one cell per item
	if count := strings.Count(rendered, "<tr"); count != 2 {
		t.Errorf("column primary renders one row per field. actual: %d expected: %d", count, 2)
	}
	if count := strings.Count(rendered, "<td"); count != 4 {
		t.Errorf("invalid cell count. actual: %d expected: %d", count, 4)
	}
}

func Test_Table_Column_Primary_Swaps_Spans(t *testing.T) {
	table := NewTable("orders", &Field{}, &Field{})
	table.ColumnPrimary = true
	table.AddItem(func() *Item {
		return NewItem(nil, NewCell(swp.Text("wide"), &CellSetup{FieldSpan: 2}))
	})
	table.AddItem(func() *Item {
		return NewItem(nil, TextCell("a"), TextCell("b"))
	})

	rendered := renderTable(t, table, nil)

	// a field span becomes a row span when items are columns
	if !strings.Contains(rendered, `rowspan="2"`) {
		t.Errorf("field span must render as rowspan. actual: %q", rendered)
	}
}

func Test_Table_Mixing_Modes_Panics(t *testing.T) {
	expectPanic(t, "item then group", func() {
		table := simpleTable("orders", 1)
		table.AddGroup(NewItemGroup(nil))
	})
	expectPanic(t, "group then item", func() {
		table := NewTable("orders", &Field{})
		table.AddGroup(NewItemGroup(nil))
		table.AddItem(func() *Item { return NewItem(nil, TextCell("x")) })
	})
}

func Test_Table_Checkbox_Column(t *testing.T) {
	table := NewTable("orders", &Field{}, &Field{})
	action := &SelectedItemAction{Label: "Archive", PostBack: swp.NewFullPostBack("orders.archive")}
	group := NewItemGroup(swp.Text("Open"))
	group.SelectedItemActions = []*SelectedItemAction{action}
	group.AddItem(func() *Item {
		return NewItem(&ItemSetup{Id: "7"}, TextCell("a"), TextCell("b"))
	})
	group.AddItem(func() *Item {
		// no id, the checkbox slot stays blank
		return NewItem(nil, TextCell("c"), TextCell("d"))
	})
	table.AddGroup(group)

	rendered := renderTable(t, table, nil)

	if count := strings.Count(rendered, "<col"); count != 4 {
		// colgroup + 3 col elements
		t.Errorf("the checkbox column must join the colgroup. actual: %d expected: %d", count, 4)
	}
	if !strings.Contains(rendered, `type="checkbox"`) {
		t.Errorf("checkbox input missing. actual: %q", rendered)
	}
	if !strings.Contains(rendered, `name="orders.selected"`) {
		t.Errorf("selection form value key missing. actual: %q", rendered)
	}
	if count := strings.Count(rendered, `type="checkbox"`); count != 1 {
		t.Errorf("items without an id get no checkbox. actual: %d expected: %d", count, 1)
	}
	if !strings.Contains(rendered, ">Archive<") {
		t.Errorf("selected-item action button missing. actual: %q", rendered)
	}
	if !strings.Contains(rendered, "table-action-archive") {
		t.Errorf("action label must derive a css hook. actual: %q", rendered)
	}
}

func Test_Table_Modification_After_Checkboxes_Panics(t *testing.T) {
	group := NewItemGroup(swp.Text("Open"))
	group.SelectedItemActions = []*SelectedItemAction{{Label: "Archive"}}

	table := NewTable("orders", &Field{})
	table.AddGroup(group)

	expectPanic(t, "add after checkboxes", func() {
		table.AddGroup(NewItemGroup(nil))
	})
}

func Test_Table_Group_Header(t *testing.T) {
	table := NewTable("orders", &Field{})
	group := NewItemGroup(swp.Text("Closed"))
	group.AddItem(func() *Item { return NewItem(nil, TextCell("x")) })
	table.AddGroup(group)

	rendered := renderTable(t, table, nil)

	if !strings.Contains(rendered, "table-group-head") {
		t.Errorf("group header row missing. actual: %q", rendered)
	}
	if !strings.Contains(rendered, ">Closed<") {
		t.Errorf("group name missing. actual: %q", rendered)
	}
}

func Test_Table_Item_Limit_Initial(t *testing.T) {
	table := simpleTable("orders", 120)
	table.Limit = &ItemLimitConfig{Default: 50}

	rendered := renderTable(t, table, nil)

	// 50 data rows plus the show-more control row
	if count := strings.Count(rendered, "<tr"); count != 51 {
		t.Errorf("invalid row count. actual: %d expected: %d", count, 51)
	}
	if !strings.Contains(rendered, `data-post-back="orders.showMore"`) {
		t.Errorf("show-more control missing. actual: %q", rendered)
	}
	if !strings.Contains(rendered, "row 49") || strings.Contains(rendered, "row 50") {
		t.Errorf("exactly the first 50 items render")
	}
}

func Test_Table_Item_Limit_From_Snapshot(t *testing.T) {
	table := simpleTable("orders", 120)
	table.Limit = &ItemLimitConfig{Default: 50}

	snapshot := cmn.JSON{"orders.itemLimit": float64(500)}
	rendered := renderTable(t, table, &snapshot)

	if count := strings.Count(rendered, "<tr"); count != 120 {
		t.Errorf("the raised limit shows every item. actual: %d expected: %d", count, 120)
	}
	if strings.Contains(rendered, "data-post-back") {
		t.Errorf("no control when nothing is hidden. actual row content: %q", rendered)
	}
}

func Test_Table_Item_Limit_Ladder(t *testing.T) {
	steps := []struct {
		current  int
		expected int
	}{
		{0, 50},
		{50, 500},
		{500, Unlimited},
		{Unlimited, Unlimited},
	}
	for _, step := range steps {
		if actual := nextLimit(step.current); actual != step.expected {
			t.Errorf("nextLimit(%d). actual: %d expected: %d", step.current, actual, step.expected)
		}
	}

	if !validLimit(float64(50)) || validLimit(float64(51)) {
		t.Errorf("only ladder steps are valid snapshot values")
	}
}
