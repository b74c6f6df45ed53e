package swp

// RegionSet an update-region-set token. Post-backs declare the sets they
// trigger; identified nodes declare the sets that may replace them. A node
// is dynamic for a given intermediate post-back when the two intersect,
// static otherwise.
type RegionSet struct {
	Key string
}

func NewRegionSet(key string) *RegionSet {
	return &RegionSet{Key: key}
}

// PreRegion one pre-modification region declaration: the sets it belongs to
// and the argument captured at snapshot time. The argument is an arbitrary
// string (a previous row count, a previous item limit) handed back to the
// post-modification getter so regions whose size changed can resolve
// themselves ("N more rows were appended, show only the new ones").
type PreRegion struct {
	Sets     []*RegionSet
	Argument func() string
}

// A RegionLinker associates a keyed region of the tree with its update
// behavior. Multiple linkers are chained by composite key, a base plus a
// suffix ("tail", "itemLimitingTail").
type RegionLinker struct {
	KeyBase string
	Suffix  string

	// Pre the declared pre-modification regions
	Pre []*PreRegion

	// Post given a previously captured argument, returns the components
	// that resolve this region after modification
	Post func(argument string) []Component
}

// Key the composite id of this linker
func (l *RegionLinker) Key() string {
	return l.KeyBase + "." + l.Suffix
}

// Covers true when any pre-region of this linker belongs to any of the
// given active set tokens
func (l *RegionLinker) Covers(active StringSet) bool {
	if active == nil {
		return false
	}
	for _, pre := range l.Pre {
		for _, set := range pre.Sets {
			if active.Contains(set.Key) {
				return true
			}
		}
	}
	return false
}

// Arguments the captured argument of every pre-region matching the active
// sets, keyed by composite linker key. Captured before the modification
// runs, replayed into Post afterwards.
func (l *RegionLinker) Arguments(active StringSet) map[string]string {
	captured := map[string]string{}
	for _, pre := range l.Pre {
		for _, set := range pre.Sets {
			if active.Contains(set.Key) {
				argument := ""
				if pre.Argument != nil {
					argument = pre.Argument()
				}
				captured[l.Key()] = argument
				break
			}
		}
	}
	return captured
}
