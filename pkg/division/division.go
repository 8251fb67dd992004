// Package division defines the administrative-division record shared by
// every stage of the pipeline, together with the six-digit code arithmetic
// from GB/T 2260.
//
// A Record is sparse: only Code, NameZH and Level are guaranteed. Optional
// fields are pointers so that "absent" and "empty" stay distinguishable
// through parsing, matching and merging.
package division

import (
	"fmt"
	"sort"

	"github.com/gbdata/gb2260/pkg/errors"
)

// Record is one administrative division.
type Record struct {
	Code       int      `yaml:"code"`
	NameZH     string   `yaml:"name_zh"`
	Level      int      `yaml:"level"`
	NamePinyin *string  `yaml:"name_pinyin,omitempty"`
	NameEN     *string  `yaml:"name_en,omitempty"`
	Alpha      *string  `yaml:"alpha,omitempty"`
	Latitude   *float64 `yaml:"latitude,omitempty"`
	Longitude  *float64 `yaml:"longitude,omitempty"`
}

// Validate checks the required fields and the code/level invariant.
func (r Record) Validate() error {
	if !ValidCode(r.Code) {
		return errors.NewValidationError("code", r.Code, "not a six-digit code")
	}
	if r.NameZH == "" {
		return errors.NewValidationError("name_zh", r.Code, "empty name")
	}
	if r.Level < 1 || r.Level > 3 {
		return errors.NewValidationError("level", r.Level, "outside 1..3")
	}
	if Level(r.Code) != r.Level {
		return errors.NewValidationError("level", r.Level,
			fmt.Sprintf("code %d implies level %d", r.Code, Level(r.Code)))
	}
	return nil
}

// Clone returns a deep copy of r.
func (r Record) Clone() Record {
	out := r
	out.NamePinyin = cloneString(r.NamePinyin)
	out.NameEN = cloneString(r.NameEN)
	out.Alpha = cloneString(r.Alpha)
	out.Latitude = cloneFloat(r.Latitude)
	out.Longitude = cloneFloat(r.Longitude)
	return out
}

func cloneString(p *string) *string {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func cloneFloat(p *float64) *float64 {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// String returns a short human-readable form.
func (r Record) String() string {
	return fmt.Sprintf("%06d %s (level %d)", r.Code, r.NameZH, r.Level)
}

// StringPtr returns a pointer to s. Convenience for building sparse records.
func StringPtr(s string) *string { return &s }

// FloatPtr returns a pointer to f.
func FloatPtr(f float64) *float64 { return &f }

// Set is an ordered collection of records indexed by code. Insertion order
// is preserved because the matcher uses document order to break ties between
// same-named siblings.
type Set struct {
	order  []int
	byCode map[int]Record
}

// NewSet returns an empty Set.
func NewSet() *Set {
	return &Set{byCode: make(map[int]Record)}
}

// Add inserts or replaces a record. First insertion fixes the record's
// position in document order.
func (s *Set) Add(r Record) {
	if _, ok := s.byCode[r.Code]; !ok {
		s.order = append(s.order, r.Code)
	}
	s.byCode[r.Code] = r
}

// Get returns the record for code.
func (s *Set) Get(code int) (Record, bool) {
	r, ok := s.byCode[code]
	return r, ok
}

// Has reports whether code is in the set.
func (s *Set) Has(code int) bool {
	_, ok := s.byCode[code]
	return ok
}

// Len returns the number of records.
func (s *Set) Len() int { return len(s.order) }

// Ordered returns the records in document order.
func (s *Set) Ordered() []Record {
	out := make([]Record, 0, len(s.order))
	for _, code := range s.order {
		out = append(out, s.byCode[code])
	}
	return out
}

// Codes returns all codes sorted ascending.
func (s *Set) Codes() []int {
	out := make([]int, len(s.order))
	copy(out, s.order)
	sort.Ints(out)
	return out
}

// Sorted returns the records sorted by code ascending.
func (s *Set) Sorted() []Record {
	out := make([]Record, 0, len(s.order))
	for _, code := range s.Codes() {
		out = append(out, s.byCode[code])
	}
	return out
}
