package swp

import (
	"github.com/syntax-framework/spage/cmn"
)

var errorFormValueDuplicateKey = cmn.Err(
	"formvalue.duplicatekey",
	"Two active form values registered the same post-back value key on a single tree build.", "Key: %s",
)

// A FormValue is one piece of user-editable state. The Durable getter closes
// over the server truth (a database backed entity, session data); Parse
// converts the raw submitted representation into the typed value, reporting
// whether the representation itself is valid. A FormValue with an empty Key
// is inactive: it renders but is never submitted nor hashed.
//
// A form value is consulted exactly twice per request: once to extract and
// validate the submitted value, once to compute the durable value hash used
// for tamper detection.
type FormValue struct {
	// Key the post-back value key. Empty means inactive.
	Key string

	// Durable returns the server-authoritative value, serialized
	Durable func() string

	// Parse converts the raw submitted string into the typed value, storing
	// it wherever the owning control needs it. ok reports whether the raw
	// representation is valid at all; a user-level problem with a valid
	// representation belongs in a validation callback instead.
	Parse func(raw string, found bool) (ok bool)

	// Modifications the data modifications this value participates in.
	// Only values participating in an active modification enter the hash.
	Modifications []*DataModification

	submitted      string
	submittedFound bool
	parsed         bool
	parseOk        bool
}

// Active an inactive form value is rendered but never submitted
func (f *FormValue) Active() bool {
	return f.Key != ""
}

// Submit feeds the raw client value in and runs Parse once.
func (f *FormValue) Submit(raw string, found bool) {
	f.submitted = raw
	f.submittedFound = found
	f.parsed = true
	f.parseOk = true
	if f.Parse != nil {
		f.parseOk = f.Parse(raw, found)
	}
}

// Valid false when the submitted raw representation failed Parse
func (f *FormValue) Valid() bool {
	return !f.parsed || f.parseOk
}

// Changed true when the submitted value differs from the durable value
func (f *FormValue) Changed() bool {
	if !f.parsed || !f.submittedFound {
		return false
	}
	return f.submitted != f.DurableString()
}

// DurableString the serialized server truth, empty when no getter was given
func (f *FormValue) DurableString() string {
	if f.Durable == nil {
		return ""
	}
	return f.Durable()
}

// ParticipatesIn true when the value takes part in any of the given
// modifications
func (f *FormValue) ParticipatesIn(active map[*DataModification]bool) bool {
	for _, dm := range f.Modifications {
		if active[dm] {
			return true
		}
	}
	return false
}

// FormValueRegistry collects every form value discovered while the tree is
// built. Registration order is the document order of the owning controls.
type FormValueRegistry struct {
	order []*FormValue
	byKey map[string]*FormValue
}

func NewFormValueRegistry() *FormValueRegistry {
	return &FormValueRegistry{byKey: map[string]*FormValue{}}
}

// Add registers a form value. Duplicate active keys are a modeling error.
func (r *FormValueRegistry) Add(value *FormValue) {
	if value.Active() {
		if _, exists := r.byKey[value.Key]; exists {
			panic(errorFormValueDuplicateKey(value.Key))
		}
		r.byKey[value.Key] = value
	}
	r.order = append(r.order, value)
}

// Get an active form value by post-back value key
func (r *FormValueRegistry) Get(key string) *FormValue {
	return r.byKey[key]
}

// All every registered value, in document order
func (r *FormValueRegistry) All() []*FormValue {
	return r.order
}

// Active every active value, in document order
func (r *FormValueRegistry) Active() []*FormValue {
	var active []*FormValue
	for _, value := range r.order {
		if value.Active() {
			active = append(active, value)
		}
	}
	return active
}
