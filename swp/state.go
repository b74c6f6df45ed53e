package swp

import (
	"encoding/json"

	"github.com/syntax-framework/spage/cmn"
)

var errorStateDuplicateKey = cmn.Err(
	"state.duplicatekey",
	"Two component state items registered the same element id on a single tree build.", "Key: %s",
)

// A StateItem is a server-authoritative piece of UI state round-tripped to
// the client as an opaque JSON value keyed by a generated element id. It is
// not user-entered data; think "current item limit", "expanded or collapsed".
//
// When the client snapshot has no entry for an item active in the new tree
// the item is treated as newly created and keeps its default.
type StateItem struct {
	// Key the generated element id
	Key string

	// Default the value a newly created item starts with
	Default interface{}

	// Valid rejects snapshot values the item cannot accept. Nil accepts all.
	Valid func(value interface{}) bool

	// Modifications the data modifications this item participates in
	Modifications []*DataModification

	value   interface{}
	invalid bool
}

// Value the current value for this request
func (s *StateItem) Value() interface{} {
	return s.value
}

// Set replaces the current value. Modification methods call this; the new
// value becomes the durable value serialized into the next baseline.
func (s *StateItem) Set(value interface{}) {
	s.value = value
}

// Invalid true when the client snapshot carried a value Valid rejected
func (s *StateItem) Invalid() bool {
	return s.invalid
}

// DurableValue the current value encoded as JSON, used by the hash and the
// static region fingerprint
func (s *StateItem) DurableValue() string {
	data, err := json.Marshal(s.value)
	if err != nil {
		return ""
	}
	return string(data)
}

// ParticipatesIn true when the item takes part in any of the given
// modifications
func (s *StateItem) ParticipatesIn(active map[*DataModification]bool) bool {
	for _, dm := range s.Modifications {
		if active[dm] {
			return true
		}
	}
	return false
}

// restore applies the client snapshot entry, if any
func (s *StateItem) restore(snapshot *cmn.JSON) {
	s.value = s.Default
	if snapshot == nil || !snapshot.Has(s.Key) {
		// newly created, keeps its default
		return
	}
	value := snapshot.Get()[s.Key]
	if s.Valid != nil && !s.Valid(value) {
		s.invalid = true
		return
	}
	s.value = value
}

// StateRegistry collects every component state item discovered while the
// tree is built.
type StateRegistry struct {
	order []*StateItem
	byKey map[string]*StateItem
}

func NewStateRegistry() *StateRegistry {
	return &StateRegistry{byKey: map[string]*StateItem{}}
}

// Add registers a state item and immediately restores it from the client
// snapshot. Duplicate keys are a modeling error.
func (r *StateRegistry) Add(item *StateItem, snapshot *cmn.JSON) {
	if _, exists := r.byKey[item.Key]; exists {
		panic(errorStateDuplicateKey(item.Key))
	}
	r.byKey[item.Key] = item
	r.order = append(r.order, item)
	item.restore(snapshot)
}

// Get a state item by element id
func (r *StateRegistry) Get(key string) *StateItem {
	return r.byKey[key]
}

// All every registered item, in document order
func (r *StateRegistry) All() []*StateItem {
	return r.order
}

// Snapshot the component state of the whole tree, keyed by element id.
// This is what the hidden field carries back to the client.
func (r *StateRegistry) Snapshot() cmn.JSON {
	snapshot := cmn.JSON{}
	for _, item := range r.order {
		snapshot[item.Key] = item.value
	}
	return snapshot
}

// UnknownKeys snapshot keys the client submitted that no longer exist in
// the new tree. A non-empty result on submission means staleness.
func (r *StateRegistry) UnknownKeys(snapshot *cmn.JSON) []string {
	if snapshot == nil {
		return nil
	}
	var unknown []string
	for key := range snapshot.Get() {
		if _, exists := r.byKey[key]; !exists {
			unknown = append(unknown, key)
		}
	}
	return unknown
}
