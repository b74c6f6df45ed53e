package tbl

import (
	"github.com/syntax-framework/spage/swp"
)

// SelectedItemAction an action over the checked items of a group; adding
// one gives the group a checkbox column.
type SelectedItemAction struct {
	Label    string
	PostBack *swp.PostBack
}

// ItemGroup an ordered collection of lazily-created items plus its
// remaining data: group name, group actions, tail update regions and
// optional selected-item actions.
type ItemGroup struct {
	// Name renders in the group header row; nil for the implicit group
	Name swp.Component

	// Actions render next to the group name
	Actions []swp.Component

	// TailSets update-region sets covering rows appended to the tail of
	// this group
	TailSets []*swp.RegionSet

	// SelectedItemActions non-empty adds a checkbox column to the group
	SelectedItemActions []*SelectedItemAction

	factories []func() *Item
}

// NewItemGroup a group of deferred items
func NewItemGroup(name swp.Component, factories ...func() *Item) *ItemGroup {
	return &ItemGroup{Name: name, factories: factories}
}

// AddItem appends a deferred item to the group
func (g *ItemGroup) AddItem(factory func() *Item) *ItemGroup {
	g.factories = append(g.factories, factory)
	return g
}

// hasCheckboxes true when the group carries selected-item actions
func (g *ItemGroup) hasCheckboxes() bool {
	return len(g.SelectedItemActions) > 0
}
