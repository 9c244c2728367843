package directory

import "strings"

// Descriptor is a search descriptor: the subtree base (relative to the
// configured search base), the object class every result must carry, and
// the attribute list to request (spec.md §4.2).
type Descriptor struct {
	SubBase        string
	ObjectClass    string
	RequestedAttrs []string
}

// AttrBag is a read-only mapping from attribute name to its ordered value
// sequence. Names are compared case-insensitively (spec.md §3).
type AttrBag map[string][]string

// Get returns the values for name, case-insensitively, or nil.
func (b AttrBag) Get(name string) []string {
	for k, v := range b {
		if strings.EqualFold(k, name) {
			return v
		}
	}
	return nil
}

// First returns the first value for name, or "" with ok=false if absent.
func (b AttrBag) First(name string) (string, bool) {
	v := b.Get(name)
	if len(v) == 0 {
		return "", false
	}
	return v[0], true
}

// Entry is one directory entry returned by a search: the DN and its
// attribute bag, already filtered to the object class and attribute list
// the descriptor requested (spec.md §4.2 "Result handling").
type Entry struct {
	DN    string
	Attrs AttrBag
}
