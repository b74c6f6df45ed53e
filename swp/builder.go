package swp

import (
	"github.com/syntax-framework/spage/cmn"
)

// TreeBuilder carries the per-request registries consulted while the
// component tree is being built. The registries are explicit parameters of
// the build pass, not ambient globals: every registration is auditable from
// the component that made it.
type TreeBuilder struct {
	Ids        *Sequence
	FormValues *FormValueRegistry
	States     *StateRegistry
	PostBacks  *PostBackRegistry

	// Context allows components to exchange information during the build
	Context *Context

	// GeneralErrors / ErrorsByKey the recoverable errors stored by the
	// previous request; controls read them to render their in-page messages
	GeneralErrors []string
	ErrorsByKey   map[string][]string

	// snapshot the client submitted component state, nil on a plain view
	snapshot *cmn.JSON

	// identityStack the identified nodes currently open; registrations made
	// while an identity is open belong to its subtree
	identityStack []*Identity

	// rootFormValues / rootStateItems registrations made outside any
	// identified node; always part of the static region
	rootFormValues []*FormValue
	rootStateItems []*StateItem
}

// NewTreeBuilder a builder for one request. snapshot is the component state
// the client submitted, or nil when there is none.
func NewTreeBuilder(snapshot *cmn.JSON) *TreeBuilder {
	return &TreeBuilder{
		Ids:        &Sequence{},
		FormValues: NewFormValueRegistry(),
		States:     NewStateRegistry(),
		PostBacks:  NewPostBackRegistry(),
		Context:    NewContext(),
		snapshot:   snapshot,
	}
}

// AddFormValue registers a form value; it attaches to the innermost open
// identified node, or to the root when none is open.
func (b *TreeBuilder) AddFormValue(value *FormValue) {
	b.FormValues.Add(value)
	if top := b.top(); top != nil {
		top.FormValues = append(top.FormValues, value)
	} else {
		b.rootFormValues = append(b.rootFormValues, value)
	}
}

// AddStateItem registers a component state item under a generated element id
// and restores it from the client snapshot. Returns the item for reading and
// writing its value.
func (b *TreeBuilder) AddStateItem(item *StateItem) *StateItem {
	if item.Key == "" {
		item.Key = b.Ids.NextId("s")
	}
	b.States.Add(item, b.snapshot)
	if top := b.top(); top != nil {
		top.StateItems = append(top.StateItems, item)
	} else {
		b.rootStateItems = append(b.rootStateItems, item)
	}
	return item
}

// AddPostBack registers a post-back on the page
func (b *TreeBuilder) AddPostBack(postBack *PostBack) {
	b.PostBacks.Add(postBack)
}

// register opens an identity scope for the children about to be built.
// identified() closes it again via closeIdentity.
func (b *TreeBuilder) register(identity *Identity) {
	b.identityStack = append(b.identityStack, identity)
}

func (b *TreeBuilder) closeIdentity() {
	b.identityStack = b.identityStack[:len(b.identityStack)-1]
}

func (b *TreeBuilder) top() *Identity {
	if len(b.identityStack) == 0 {
		return nil
	}
	return b.identityStack[len(b.identityStack)-1]
}

// Build runs the root component, finalizes the registries and returns the
// tree. The fixed order matters: later lifecycle phases depend on every
// duplicate key being detected and every cross reference checked here.
func (b *TreeBuilder) Build(root Component) *Node {
	node := root(b)
	tree := &Node{Type: DocumentNode}
	if node != nil {
		tree.AppendChild(node)
	}
	b.PostBacks.Finalize()
	return tree
}

// SubmitFormValues feeds the raw client form values into every active form
// value, running each Parse exactly once.
func (b *TreeBuilder) SubmitFormValues(raw map[string]string) {
	for _, value := range b.FormValues.Active() {
		submitted, found := raw[value.Key]
		value.Submit(submitted, found)
	}
}
