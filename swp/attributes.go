package swp

import (
	"bytes"
	"sort"
	"strings"
)

// Attributes abstraction of the attributes of an element Node
type Attributes struct {
	Attrs map[string]string
}

func NewAttributes() *Attributes {
	return &Attributes{Attrs: map[string]string{}}
}

// Clone makes a copy of the attributes to be used at render time
func (a *Attributes) Clone() *Attributes {
	attributes := map[string]string{}
	if a.Attrs != nil {
		for name, value := range a.Attrs {
			attributes[name] = value
		}
	}
	return &Attributes{Attrs: attributes}
}

func (a *Attributes) Set(key string, value string) {
	name := NormalizeName(key)
	if name == "" {
		return
	}
	if a.Attrs == nil {
		a.Attrs = map[string]string{}
	}
	a.Attrs[name] = value
}

func (a *Attributes) Get(name string) (value string) {
	if a.Attrs != nil {
		value = a.Attrs[NormalizeName(name)]
	}
	return
}

func (a *Attributes) Exists(name string) (exists bool) {
	if a.Attrs == nil {
		return false
	}
	_, exists = a.Attrs[NormalizeName(name)]
	return
}

func (a *Attributes) Remove(name string) {
	if a.Attrs != nil {
		delete(a.Attrs, NormalizeName(name))
	}
}

// SortedNames attribute names in lexical order, render output must be
// deterministic because the static region is fingerprinted byte-for-byte
func (a *Attributes) SortedNames() []string {
	if a.Attrs == nil {
		return nil
	}
	names := make([]string, 0, len(a.Attrs))
	for name := range a.Attrs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// HasClass Determine whether the element is assigned the given class.
func (a *Attributes) HasClass(value string) bool {
	current := a.Get("class")
	if current == "" {
		return false
	}
	for _, c := range strings.Fields(current) {
		if c == value {
			return true
		}
	}
	return false
}

// AddClass Adds the specified class(es) to element
func (a *Attributes) AddClass(value string) {
	current := a.Get("class")
	changed := false
	buf := &bytes.Buffer{}
	for _, c := range strings.Fields(value) {
		if !a.HasClass(c) {
			if current != "" || changed {
				buf.WriteRune(' ')
			}
			buf.WriteString(c)
			changed = true
		}
	}
	if changed {
		a.Set("class", current+buf.String())
	}
}

// RemoveClass Remove a single class or multiple classes from element
func (a *Attributes) RemoveClass(value string) {
	trimValue := strings.TrimSpace(value)
	if trimValue == "" {
		return
	}
	oldValue := a.Get("class")
	if oldValue == "" {
		return
	}

	removed := map[string]bool{}
	for _, c := range strings.Fields(trimValue) {
		removed[c] = true
	}

	var kept []string
	for _, c := range strings.Fields(oldValue) {
		if !removed[c] {
			kept = append(kept, c)
		}
	}
	newValue := strings.Join(kept, " ")
	if newValue != oldValue {
		a.Set("class", newValue)
	}
}
