package match

import (
	"github.com/gbdata/gb2260/pkg/division"
)

// nameKey scopes normalized-name lookups to one level under one parent, so
// same-named divisions in different regions never collide.
type nameKey struct {
	name   string
	level  int
	parent int
}

// Index holds the authoritative set prepared for matching: code lookups,
// scoped name lookups, and per-key sibling lists in document order for
// positional tiebreaks.
type Index struct {
	set      *division.Set
	byName   map[nameKey][]int // codes in document order
	position map[int]int       // code -> document position
}

// NewIndex builds an Index over the authoritative set.
func NewIndex(set *division.Set) *Index {
	idx := &Index{
		set:      set,
		byName:   make(map[nameKey][]int),
		position: make(map[int]int),
	}
	for i, rec := range set.Ordered() {
		idx.position[rec.Code] = i
		key := keyFor(rec)
		idx.byName[key] = append(idx.byName[key], rec.Code)
	}
	return idx
}

// keyFor returns the scoped name key of a record.
func keyFor(rec division.Record) nameKey {
	return nameKey{
		name:   Normalize(rec.NameZH),
		level:  rec.Level,
		parent: division.Parent(rec.Code, rec.Level),
	}
}

// HasCode reports whether code exists in the authoritative set.
func (idx *Index) HasCode(code int) bool {
	return idx.set.Has(code)
}

// Get returns the authoritative record for code.
func (idx *Index) Get(code int) (division.Record, bool) {
	return idx.set.Get(code)
}

// Candidates returns the authoritative codes sharing the record's
// normalized name, level and parent prefix, in document order.
func (idx *Index) Candidates(rec division.Record) []int {
	return idx.byName[keyFor(rec)]
}
