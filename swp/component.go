package swp

// Component describes one part of a page. Components are pure descriptions,
// they hold no request state; Build runs once per request, in document order,
// and registers whatever the component needs (form values, state items,
// post-backs) on the TreeBuilder it receives.
type Component func(b *TreeBuilder) *Node

// Identity the metadata carried by identified nodes. Everything the
// lifecycle needs to know about a subtree without rendering it hangs here:
// which update regions may replace it, which form values and state items
// live inside it, and whether it is an autofocus region.
type Identity struct {
	Key        string
	Linkers    []*RegionLinker
	FormValues []*FormValue
	StateItems []*StateItem
	Autofocus  []*FocusCondition
}

// FocusableData marks an element as a focus target. In error-focus mode only
// elements whose validations noted errors (or that accept general errors)
// are considered.
type FocusableData struct {
	Validations   []*Validation
	GeneralErrors bool
}

// Text a plain text component, escaped on render
func Text(text string) Component {
	return func(b *TreeBuilder) *Node {
		return &Node{Type: TextNode, Data: text}
	}
}

// Markup a block of raw markup. The markup is checked for well-formedness
// the first time the component builds; a malformed block is a modeling error.
func Markup(markup string) Component {
	return func(b *TreeBuilder) *Node {
		if err := CheckMarkup(markup); err != nil {
			panic(err)
		}
		return &Node{Type: MarkupNode, Data: markup}
	}
}

// ElementOptions the optional parts of an element component
type ElementOptions struct {
	Attributes map[string]string
	Classes    []string
	Focus      *FocusableData
}

// Element an html element component
func Element(tag string, options *ElementOptions, children ...Component) Component {
	return func(b *TreeBuilder) *Node {
		node := &Node{Type: ElementNode, Data: tag, Attributes: NewAttributes()}
		if options != nil {
			for name, value := range options.Attributes {
				node.Attributes.Set(name, value)
			}
			for _, class := range options.Classes {
				node.Attributes.AddClass(class)
			}
			node.Focus = options.Focus
		}
		appendChildren(b, node, children)
		return node
	}
}

// Flow a transparent container
func Flow(children ...Component) Component {
	return func(b *TreeBuilder) *Node {
		node := &Node{Type: FlowNode}
		appendChildren(b, node, children)
		return node
	}
}

// Ethereal out-of-band content, hoisted to the end of the document
func Ethereal(children ...Component) Component {
	return func(b *TreeBuilder) *Node {
		node := &Node{Type: EtherealNode}
		appendChildren(b, node, children)
		return node
	}
}

// IdentifiedFlow a flow container carrying an Identity. The id key is
// generated here, during the build, so it is stable across rebuilds.
func IdentifiedFlow(setup func(id *Identity), children ...Component) Component {
	return identified(IdentifiedFlowNode, setup, children)
}

// IdentifiedEthereal an ethereal container carrying an Identity
func IdentifiedEthereal(setup func(id *Identity), children ...Component) Component {
	return identified(IdentifiedEtherealNode, setup, children)
}

func identified(nodeType NodeType, setup func(id *Identity), children []Component) Component {
	return func(b *TreeBuilder) *Node {
		identity := &Identity{Key: b.Ids.NextId("c")}
		if setup != nil {
			setup(identity)
		}
		node := &Node{Type: nodeType, Identity: identity}
		b.register(identity)
		appendChildren(b, node, children)
		b.closeIdentity()
		return node
	}
}

func appendChildren(b *TreeBuilder, node *Node, children []Component) {
	for _, child := range children {
		if child == nil {
			continue
		}
		if built := child(b); built != nil {
			node.AppendChild(built)
		}
	}
}
