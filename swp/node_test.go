package swp

import (
	"strings"
	"testing"
)

func Test_Render_Element_Tree(t *testing.T) {
	b := NewTreeBuilder(nil)
	tree := b.Build(Element("div", &ElementOptions{Classes: []string{"outer"}},
		Text("hello & goodbye"),
		Element("span", nil, Text("inner")),
	))

	rendered, err := tree.Render()
	if err != nil {
		t.Fatal(err)
	}

	expected := `<div class="outer">hello &amp; goodbye<span>inner</span></div>`
	if rendered != expected {
		t.Errorf("invalid render. actual: %q expected: %q", rendered, expected)
	}
}

func Test_Node_InsertBefore(t *testing.T) {
	parent := &Node{Type: FlowNode}
	middle := &Node{Type: TextNode, Data: "b"}
	parent.AppendChild(middle)

	parent.InsertBefore(&Node{Type: TextNode, Data: "a"}, middle)
	parent.InsertBefore(&Node{Type: TextNode, Data: "c"}, nil)

	var order []string
	for c := parent.FirstChild; c != nil; c = c.NextSibling {
		order = append(order, c.Data)
	}
	if actual := strings.Join(order, ""); actual != "abc" {
		t.Errorf("invalid child order. actual: %q expected: %q", actual, "abc")
	}
	if parent.LastChild.Data != "c" || parent.FirstChild.Data != "a" {
		t.Errorf("first and last child links must be updated")
	}
}

func Test_Node_InsertBefore_Attached_Panics(t *testing.T) {
	parent := &Node{Type: FlowNode}
	child := &Node{Type: TextNode, Data: "a"}
	parent.AppendChild(child)

	defer func() {
		if recover() == nil {
			t.Errorf("expected panic for an attached child")
		}
	}()
	(&Node{Type: FlowNode}).InsertBefore(child, nil)
}

func Test_Render_Flow_Is_Transparent(t *testing.T) {
	b := NewTreeBuilder(nil)
	tree := b.Build(Flow(
		Element("p", nil, Text("one")),
		Element("p", nil, Text("two")),
	))

	rendered, err := tree.Render()
	if err != nil {
		t.Fatal(err)
	}

	expected := `<p>one</p><p>two</p>`
	if rendered != expected {
		t.Errorf("invalid render. actual: %q expected: %q", rendered, expected)
	}
}

func Test_Render_Ethereal_Hoisted_To_End(t *testing.T) {
	b := NewTreeBuilder(nil)
	tree := b.Build(Element("div", nil,
		Ethereal(Element("dialog", nil, Text("modal"))),
		Text("body"),
	))

	rendered, err := tree.Render()
	if err != nil {
		t.Fatal(err)
	}

	expected := `<div>body</div><dialog>modal</dialog>`
	if rendered != expected {
		t.Errorf("ethereal content must move to the end. actual: %q expected: %q", rendered, expected)
	}
}

func Test_Render_Nested_Ethereal(t *testing.T) {
	b := NewTreeBuilder(nil)
	tree := b.Build(Element("main", nil,
		Ethereal(
			Element("dialog", nil, Text("outer")),
			Ethereal(Element("template", nil, Text("inner"))),
		),
		Text("content"),
	))

	rendered, err := tree.Render()
	if err != nil {
		t.Fatal(err)
	}

	if !strings.HasPrefix(rendered, "<main>content</main>") {
		t.Errorf("main content must render first. actual: %q", rendered)
	}
	if !strings.Contains(rendered, "<dialog>outer</dialog>") || !strings.HasSuffix(rendered, "<template>inner</template>") {
		t.Errorf("nested ethereal content must follow, in document order. actual: %q", rendered)
	}
}

func Test_Render_Markup_Unescaped(t *testing.T) {
	b := NewTreeBuilder(nil)
	tree := b.Build(Element("div", nil, Markup(`<b>bold</b>`)))

	rendered, err := tree.Render()
	if err != nil {
		t.Fatal(err)
	}

	expected := `<div><b>bold</b></div>`
	if rendered != expected {
		t.Errorf("invalid render. actual: %q expected: %q", rendered, expected)
	}
}

func Test_Render_Attributes_Sorted(t *testing.T) {
	b := NewTreeBuilder(nil)
	tree := b.Build(Element("input", &ElementOptions{Attributes: map[string]string{
		"type": "text",
		"name": "email",
		"id":   "email",
	}}))

	rendered, err := tree.Render()
	if err != nil {
		t.Fatal(err)
	}

	expected := `<input id="email" name="email" type="text"/>`
	if rendered != expected {
		t.Errorf("attribute order must be deterministic. actual: %q expected: %q", rendered, expected)
	}
}

func Test_AppendChild_Attached_Panics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Errorf("expected panic when appending an attached node")
		}
	}()

	parent := &Node{Type: ElementNode, Data: "div"}
	child := &Node{Type: TextNode, Data: "x"}
	parent.AppendChild(child)

	other := &Node{Type: ElementNode, Data: "span"}
	other.AppendChild(child)
}

func Test_Identified_Nodes_Get_Sequential_Keys(t *testing.T) {
	b := NewTreeBuilder(nil)
	var first, second *Identity
	b.Build(Flow(
		IdentifiedFlow(func(id *Identity) { first = id }),
		IdentifiedFlow(func(id *Identity) { second = id }),
	))

	if first.Key != "c1" || second.Key != "c2" {
		t.Errorf("ids must be sequential per build. actual: %q, %q expected: %q, %q",
			first.Key, second.Key, "c1", "c2")
	}

	// a second build of the same tree produces the same keys
	b2 := NewTreeBuilder(nil)
	var again *Identity
	b2.Build(Flow(
		IdentifiedFlow(func(id *Identity) { again = id }),
		IdentifiedFlow(nil),
	))
	if again.Key != first.Key {
		t.Errorf("rebuild must produce the same ids. actual: %q expected: %q", again.Key, first.Key)
	}
}
