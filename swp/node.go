package swp

import (
	"bytes"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// A NodeType is the type of a Node.
type NodeType uint32

const (
	ErrorNode NodeType = iota
	// TextNode plain text, escaped on render
	TextNode
	// ElementNode a single html element with attributes and children
	ElementNode
	// MarkupNode a block of raw, pre-validated markup inserted without escaping
	MarkupNode
	// FlowNode transparent container, its children render in place
	FlowNode
	// EtherealNode out-of-band content, hoisted to the end of the document
	EtherealNode
	// IdentifiedFlowNode a FlowNode that carries an Identity (update regions,
	// form values, state items, autofocus metadata)
	IdentifiedFlowNode
	// IdentifiedEtherealNode an EtherealNode that carries an Identity
	IdentifiedEtherealNode
	// DocumentNode the root of a rendered tree
	DocumentNode
)

// A Node is one component of the per-request tree. The tree is rebuilt on
// every request and owned exclusively by that request; nothing here survives
// across requests except the durable value getters captured by form values.
//
// Element nodes have Data (tag name), Attributes and children. Text and
// Markup nodes have Data only. Container nodes have children only.
type Node struct {
	Parent, FirstChild, LastChild, PrevSibling, NextSibling *Node

	Type       NodeType
	Data       string
	DataAtom   atom.Atom
	Attributes *Attributes
	Identity   *Identity
	Focus      *FocusableData
}

// AppendChild adds a node c as a child of n.
//
// It will panic if c already has a parent or siblings.
func (n *Node) AppendChild(c *Node) {
	if c.Parent != nil || c.PrevSibling != nil || c.NextSibling != nil {
		panic("swp: AppendChild called for an attached child Node")
	}
	last := n.LastChild
	if last != nil {
		last.NextSibling = c
	} else {
		n.FirstChild = c
	}
	n.LastChild = c
	c.Parent = n
	c.PrevSibling = last
}

// InsertBefore inserts newChild as a child of n, immediately before oldChild
// in the sequence of n's children. oldChild may be nil, in which case
// newChild is appended to the end of n's children.
//
// It will panic if newChild already has a parent or siblings.
func (n *Node) InsertBefore(newChild, oldChild *Node) {
	if newChild.Parent != nil || newChild.PrevSibling != nil || newChild.NextSibling != nil {
		panic("swp: InsertBefore called for an attached child Node")
	}
	var prev, next *Node
	if oldChild != nil {
		prev, next = oldChild.PrevSibling, oldChild
	} else {
		prev = n.LastChild
	}
	if prev != nil {
		prev.NextSibling = newChild
	} else {
		n.FirstChild = newChild
	}
	if next != nil {
		next.PrevSibling = newChild
	} else {
		n.LastChild = newChild
	}
	newChild.Parent = n
	newChild.PrevSibling = prev
	newChild.NextSibling = next
}

// Remove detaches the node from its parent
func (n *Node) Remove() {
	if n.Parent != nil {
		n.Parent.RemoveChild(n)
	}
}

// RemoveChild removes a node c that is a child of n. Afterwards, c will have
// no parent and no siblings.
//
// It will panic if c's parent is not n.
func (n *Node) RemoveChild(c *Node) {
	if c.Parent != n {
		panic("swp: RemoveChild called for a non-child Node")
	}
	if n.FirstChild == c {
		n.FirstChild = c.NextSibling
	}
	if c.NextSibling != nil {
		c.NextSibling.PrevSibling = c.PrevSibling
	}
	if n.LastChild == c {
		n.LastChild = c.PrevSibling
	}
	if c.PrevSibling != nil {
		c.PrevSibling.NextSibling = c.NextSibling
	}
	c.Parent = nil
	c.PrevSibling = nil
	c.NextSibling = nil
}

// Walk runs callback for node and all its children, until callback returns true
func Walk(node *Node, callback func(node *Node) (stop bool)) {
	var f func(*Node)
	f = func(n *Node) {
		if callback(n) {
			return
		}
		for d := n.FirstChild; d != nil; d = d.NextSibling {
			f(d)
		}
	}
	f(node)
}

// Render renders the tree n to string. Ethereal subtrees are hoisted to the
// end of the output, in document order.
func (n *Node) Render() (string, error) {
	root := &html.Node{Type: html.DocumentNode}
	var ethereal []*Node
	appendXhtml(root, n, &ethereal)
	for i := 0; i < len(ethereal); i++ {
		// ethereal content may itself contain ethereal descendants
		for c := ethereal[i].FirstChild; c != nil; c = c.NextSibling {
			appendXhtml(root, c, &ethereal)
		}
	}

	w := bytes.NewBufferString("")
	if err := renderChildren(w, root); err != nil {
		return "", err
	}
	return w.String(), nil
}

func renderChildren(w *bytes.Buffer, root *html.Node) error {
	for c := root.FirstChild; c != nil; c = c.NextSibling {
		c.Parent = nil
		if err := html.Render(w, c); err != nil {
			return err
		}
	}
	return nil
}

// appendXhtml converts n and appends the result to the children of parent.
// Transparent containers are spliced, ethereal containers are deferred.
func appendXhtml(parent *html.Node, n *Node, ethereal *[]*Node) {
	switch n.Type {
	case ElementNode:
		o := &html.Node{
			Type:     html.ElementNode,
			Data:     n.Data,
			DataAtom: n.DataAtom,
		}
		if n.Attributes != nil {
			for _, name := range n.Attributes.SortedNames() {
				o.Attr = append(o.Attr, html.Attribute{Key: name, Val: n.Attributes.Get(name)})
			}
		}
		parent.AppendChild(o)
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			appendXhtml(o, c, ethereal)
		}
	case TextNode:
		parent.AppendChild(&html.Node{Type: html.TextNode, Data: n.Data})
	case MarkupNode:
		parent.AppendChild(&html.Node{Type: html.RawNode, Data: n.Data})
	case EtherealNode, IdentifiedEtherealNode:
		*ethereal = append(*ethereal, n)
	case FlowNode, IdentifiedFlowNode, DocumentNode:
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			appendXhtml(parent, c, ethereal)
		}
	}
}

// DebugTag Returns the string representation of the element.
func (n *Node) DebugTag() string {

	if n.Type == TextNode || n.Type == MarkupNode {
		return n.Data
	}

	// Render the <xxx> opening tag.
	w := &bytes.Buffer{}
	w.WriteByte('<')
	w.WriteString(n.Data)
	if n.Attributes != nil {
		for _, name := range n.Attributes.SortedNames() {
			w.WriteByte(' ')
			w.WriteString(name)
			w.WriteString(`="`)
			w.WriteString(HtmlEscape(n.Attributes.Get(name)))
			w.WriteByte('"')
		}
	}
	w.WriteByte('>')
	return w.String()
}
