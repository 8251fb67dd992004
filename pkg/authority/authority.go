// Package authority defines the per-field source priority table that drives
// the merge engine. The table is configuration, not logic: adding a source
// or reordering priorities never requires touching merge code.
package authority

import (
	"github.com/gbdata/gb2260/pkg/sources"
)

// Field defines source priority for a single record field.
type Field struct {
	Name     string       `yaml:"name"`     // e.g. "name_zh", "latitude"
	Source   sources.Type `yaml:"source"`   // which source supplies the value
	Priority int          `yaml:"priority"` // higher = more authoritative
}

// Table holds the full set of field authorities.
type Table struct {
	fields []Field
}

// New creates a Table from explicit field authorities.
func New(fields ...Field) *Table {
	return &Table{fields: fields}
}

// Default returns the standard priority policy:
//
//   - code, name_zh, level: the scraped listing wins, with the corrections
//     file above it.
//   - name_pinyin, alpha: the historical data set over the standard
//     transcription.
//   - name_en: the standard transcription first, with the historical
//     romanizations as fallback.
//   - latitude, longitude: the standard transcription only.
func Default() *Table {
	return New(
		Field{Name: "name_zh", Source: sources.Extra, Priority: 110},
		Field{Name: "name_zh", Source: sources.Scraped, Priority: 100},
		Field{Name: "level", Source: sources.Extra, Priority: 110},
		Field{Name: "level", Source: sources.Scraped, Priority: 100},

		Field{Name: "name_pinyin", Source: sources.Extra, Priority: 110},
		Field{Name: "name_pinyin", Source: sources.Historical, Priority: 90},
		Field{Name: "name_pinyin", Source: sources.Standard, Priority: 80},

		Field{Name: "alpha", Source: sources.Extra, Priority: 110},
		Field{Name: "alpha", Source: sources.Historical, Priority: 90},
		Field{Name: "alpha", Source: sources.Standard, Priority: 80},

		Field{Name: "name_en", Source: sources.Extra, Priority: 110},
		Field{Name: "name_en", Source: sources.Standard, Priority: 90},
		Field{Name: "name_en", Source: sources.Historical, Priority: 80},

		Field{Name: "latitude", Source: sources.Extra, Priority: 110},
		Field{Name: "latitude", Source: sources.Standard, Priority: 80},
		Field{Name: "longitude", Source: sources.Extra, Priority: 110},
		Field{Name: "longitude", Source: sources.Standard, Priority: 80},
	)
}

// Priority returns the priority of source for field, or 0 when the source
// has no authority over the field at all.
func (t *Table) Priority(field string, source sources.Type) int {
	best := 0
	for _, f := range t.fields {
		if f.Name == field && f.Source == source && f.Priority > best {
			best = f.Priority
		}
	}
	return best
}

// Wins reports whether source a beats source b for field. Ties go to a, the
// value already in place.
func (t *Table) Wins(field string, a, b sources.Type) bool {
	return t.Priority(field, a) >= t.Priority(field, b)
}

// Sources returns the sources with any authority over field, highest
// priority first.
func (t *Table) Sources(field string) []sources.Type {
	type entry struct {
		source   sources.Type
		priority int
	}
	var entries []entry
	for _, f := range t.fields {
		if f.Name == field {
			entries = append(entries, entry{f.Source, f.Priority})
		}
	}
	for i := 1; i < len(entries); i++ {
		for j := i; j > 0 && entries[j].priority > entries[j-1].priority; j-- {
			entries[j], entries[j-1] = entries[j-1], entries[j]
		}
	}
	out := make([]sources.Type, len(entries))
	for i, e := range entries {
		out[i] = e.source
	}
	return out
}

// Fields returns the distinct field names covered by the table, in first
// appearance order.
func (t *Table) Fields() []string {
	seen := make(map[string]bool)
	var out []string
	for _, f := range t.fields {
		if !seen[f.Name] {
			seen[f.Name] = true
			out = append(out, f.Name)
		}
	}
	return out
}
