package swp

import (
	"bytes"
	"sort"
)

// DurableHash the MD5 hash over every (key, durable value) pair of the
// state items and form values participating in any of the given active
// modifications, ordered by key. The client submits it back untouched; a
// mismatch on submission means another user (or the developer) changed the
// data under the page.
//
// Inactive values never enter the hash, so reordering them cannot change it.
func DurableHash(
	values *FormValueRegistry, states *StateRegistry, active map[*DataModification]bool,
) string {
	var pairs []string
	for _, item := range states.All() {
		if item.ParticipatesIn(active) {
			pairs = append(pairs, item.Key+"="+item.DurableValue())
		}
	}
	for _, value := range values.Active() {
		if value.ParticipatesIn(active) {
			pairs = append(pairs, value.Key+"="+value.DurableString())
		}
	}
	sort.Strings(pairs)

	buf := &bytes.Buffer{}
	for _, pair := range pairs {
		buf.WriteString(pair)
		buf.WriteByte('\n')
	}
	return HashMD5(buf.String())
}

// StaticRegionContents everything that must not change across an
// intermediate post-back: the keys and durable values of every state item
// and form value outside the active update regions, plus, when modification
// errors exist, the sorted error display keys, plus, when a secondary
// operation is pending, the sorted pending post-back ids.
type StaticRegionContents struct {
	StateItems []*StateItem
	FormValues []*FormValue
	ErrorKeys  []string
	PendingIds []string
}

// CollectStaticRegion walks the tree and gathers the state items and form
// values outside every region whose update-region-set intersects the active
// sets. Registrations made outside any identified node (the builder's root
// lists) are always static.
func CollectStaticRegion(
	tree *Node, b *TreeBuilder, activeSets StringSet,
) *StaticRegionContents {
	contents := &StaticRegionContents{
		StateItems: append([]*StateItem{}, b.rootStateItems...),
		FormValues: append([]*FormValue{}, b.rootFormValues...),
	}

	Walk(tree, func(n *Node) (stop bool) {
		if n.Identity == nil {
			return false
		}
		for _, linker := range n.Identity.Linkers {
			if linker.Covers(activeSets) {
				// dynamic subtree, nothing below it is static
				return true
			}
		}
		contents.StateItems = append(contents.StateItems, n.Identity.StateItems...)
		contents.FormValues = append(contents.FormValues, n.Identity.FormValues...)
		return false
	})

	return contents
}

// Fingerprint the deterministic fingerprint of the static region. Running
// it twice on an unmodified tree yields the identical string; items and
// values are sorted by key.
func (c *StaticRegionContents) Fingerprint() string {
	var pairs []string
	for _, item := range c.StateItems {
		pairs = append(pairs, "s:"+item.Key+"="+item.DurableValue())
	}
	for _, value := range c.FormValues {
		if value.Active() {
			pairs = append(pairs, "f:"+value.Key+"="+value.DurableString())
		}
	}
	sort.Strings(pairs)

	buf := &bytes.Buffer{}
	for _, pair := range pairs {
		buf.WriteString(pair)
		buf.WriteByte('\n')
	}

	if len(c.ErrorKeys) > 0 {
		keys := append([]string{}, c.ErrorKeys...)
		sort.Strings(keys)
		buf.WriteString("errors:")
		for _, key := range keys {
			buf.WriteByte(' ')
			buf.WriteString(key)
		}
		buf.WriteByte('\n')
	}

	if len(c.PendingIds) > 0 {
		ids := append([]string{}, c.PendingIds...)
		sort.Strings(ids)
		buf.WriteString("pending:")
		for _, id := range ids {
			buf.WriteByte(' ')
			buf.WriteString(id)
		}
		buf.WriteByte('\n')
	}

	return HashMD5(buf.String())
}

// CaptureRegions snapshots, before the modification runs, the argument of
// every linker covered by the active sets, and remembers the matching post
// getters. The lifecycle replays the arguments into the getters afterwards
// to produce the region payload of the partial response.
func CaptureRegions(tree *Node, activeSets StringSet) (map[string]string, map[string]func(string) []Component) {
	arguments := map[string]string{}
	getters := map[string]func(string) []Component{}

	Walk(tree, func(n *Node) (stop bool) {
		if n.Identity == nil {
			return false
		}
		for _, linker := range n.Identity.Linkers {
			if !linker.Covers(activeSets) {
				continue
			}
			for key, argument := range linker.Arguments(activeSets) {
				arguments[key] = argument
			}
			if linker.Post != nil {
				getters[linker.Key()] = linker.Post
			}
		}
		return false
	})

	return arguments, getters
}
