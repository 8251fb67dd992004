// Package merge folds the aligned source sets into one unified record per
// authoritative division. Field precedence comes from the authority table,
// never from code in this package: the engine only asks "who wins this
// field" and records a conflict whenever two sources disagree.
package merge

import (
	"context"
	"fmt"
	"strings"

	"github.com/mozillazg/go-pinyin"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/gbdata/gb2260/internal/match"
	"github.com/gbdata/gb2260/pkg/authority"
	"github.com/gbdata/gb2260/pkg/division"
	"github.com/gbdata/gb2260/pkg/errors"
	"github.com/gbdata/gb2260/pkg/logging"
	"github.com/gbdata/gb2260/pkg/sources"
)

// cityArea is the name shared by the municipal-district placeholder rows.
const cityArea = "市辖区"

// Contribution is one aligned source set keyed by authoritative code.
type Contribution struct {
	Source  sources.Type
	Records map[int]division.Record
}

// Engine merges contributions into the authoritative set under a priority
// table.
type Engine struct {
	table      *authority.Table
	titleCaser cases.Caser
	pinyinArgs pinyin.Args
}

// New creates an Engine with the given priority table.
func New(table *authority.Table) *Engine {
	return &Engine{
		table:      table,
		titleCaser: cases.Title(language.English),
		pinyinArgs: pinyin.NewArgs(),
	}
}

// Merge builds the unified set: one record per authoritative entity, fields
// filled from the contributions in authority order. Contributions must be
// listed lowest priority first so that later ones can displace earlier
// values when the table says they win.
func (e *Engine) Merge(ctx context.Context, authoritative *division.Set, contributions ...Contribution) (*division.Set, []*errors.ConflictError) {
	log := logging.FromContext(ctx)

	unified := division.NewSet()
	var conflicts []*errors.ConflictError

	for _, base := range authoritative.Ordered() {
		rec := base.Clone()

		// Which source currently supplies each optional field.
		owner := map[string]sources.Type{
			"name_zh": sources.Scraped,
			"level":   sources.Scraped,
		}

		for _, c := range contributions {
			other, ok := c.Records[rec.Code]
			if !ok {
				continue
			}
			conflicts = append(conflicts, e.fold(&rec, owner, other, c.Source)...)
		}

		unified.Add(rec)
	}

	e.fillDerived(unified)

	if len(conflicts) > 0 {
		log.Warn().Int("conflicts", len(conflicts)).Msg("merge finished with recorded conflicts")
	} else {
		log.Info().Int("records", unified.Len()).Msg("merge complete")
	}
	return unified, conflicts
}

// fold applies one source record to the merged record, field by field.
func (e *Engine) fold(rec *division.Record, owner map[string]sources.Type, other division.Record, src sources.Type) []*errors.ConflictError {
	var conflicts []*errors.ConflictError

	// name_zh and level never leave the authoritative source, but a
	// disagreement is still recorded for the audit. Spelling variants that
	// normalize to the same core are not disagreements.
	if other.NameZH != "" && !match.SameName(rec.NameZH, other.NameZH) {
		conflicts = append(conflicts, errors.NewConflictError(rec.Code, "name_zh",
			fmt.Sprintf("%s supplies %q, conflicting with %q from %s", src, other.NameZH, rec.NameZH, owner["name_zh"])))
	}
	if other.Level != 0 && other.Level != rec.Level {
		conflicts = append(conflicts, errors.NewConflictError(rec.Code, "level",
			fmt.Sprintf("%s supplies %d, conflicting with %d from %s", src, other.Level, rec.Level, owner["level"])))
	}
	if other.NameZH != "" && e.wins("name_zh", src, owner) {
		rec.NameZH = other.NameZH
		owner["name_zh"] = src
	}
	if other.Level != 0 && e.wins("level", src, owner) {
		rec.Level = other.Level
		owner["level"] = src
	}

	conflicts = append(conflicts, e.foldString(rec.Code, &rec.NamePinyin, other.NamePinyin, "name_pinyin", src, owner)...)
	conflicts = append(conflicts, e.foldString(rec.Code, &rec.NameEN, other.NameEN, "name_en", src, owner)...)
	conflicts = append(conflicts, e.foldString(rec.Code, &rec.Alpha, other.Alpha, "alpha", src, owner)...)
	conflicts = append(conflicts, e.foldFloat(rec.Code, &rec.Latitude, other.Latitude, "latitude", src, owner)...)
	conflicts = append(conflicts, e.foldFloat(rec.Code, &rec.Longitude, other.Longitude, "longitude", src, owner)...)
	return conflicts
}

// wins reports whether src may overwrite the field's current owner.
func (e *Engine) wins(field string, src sources.Type, owner map[string]sources.Type) bool {
	current, ok := owner[field]
	if !ok {
		// Unowned: any source with authority over the field may fill it.
		return e.table.Priority(field, src) > 0
	}
	return e.table.Priority(field, src) > e.table.Priority(field, current)
}

func (e *Engine) foldString(code int, dst **string, src *string, field string, from sources.Type, owner map[string]sources.Type) []*errors.ConflictError {
	if src == nil || *src == "" {
		return nil
	}
	var conflicts []*errors.ConflictError
	if *dst != nil && **dst != *src {
		conflicts = append(conflicts, errors.NewConflictError(code, field,
			fmt.Sprintf("%s has %q, current value %q from %s", from, *src, **dst, owner[field])))
	}
	if e.wins(field, from, owner) {
		v := *src
		*dst = &v
		owner[field] = from
	}
	return conflicts
}

func (e *Engine) foldFloat(code int, dst **float64, src *float64, field string, from sources.Type, owner map[string]sources.Type) []*errors.ConflictError {
	if src == nil {
		return nil
	}
	var conflicts []*errors.ConflictError
	if *dst != nil && **dst != *src {
		conflicts = append(conflicts, errors.NewConflictError(code, field,
			fmt.Sprintf("%s has %v, current value %v from %s", from, *src, **dst, owner[field])))
	}
	if e.wins(field, from, owner) {
		v := *src
		*dst = &v
		owner[field] = from
	}
	return conflicts
}

// fillDerived completes fields no source supplies directly: English names
// for municipal-district placeholder rows, and pinyin transcribed from the
// Chinese name where every source left it blank.
func (e *Engine) fillDerived(unified *division.Set) {
	for _, rec := range unified.Sorted() {
		changed := false

		if rec.NameEN == nil && rec.NameZH == cityArea {
			_, l2, _ := division.Parents(rec.Code)
			if parent, ok := unified.Get(l2); ok && parent.NameEN != nil {
				rec.NameEN = division.StringPtr(*parent.NameEN + " city area")
				changed = true
			}
		}

		if rec.NamePinyin == nil && rec.NameZH != "" {
			if py := e.transcribe(rec.NameZH); py != "" {
				rec.NamePinyin = &py
				changed = true
			}
		}

		if changed {
			unified.Add(rec)
		}
	}
}

// transcribe renders a Chinese name in title-cased toneless pinyin.
func (e *Engine) transcribe(name string) string {
	parts := pinyin.Pinyin(name, e.pinyinArgs)
	var sb strings.Builder
	for _, readings := range parts {
		if len(readings) > 0 {
			sb.WriteString(readings[0])
		}
	}
	if sb.Len() == 0 {
		return ""
	}
	return e.titleCaser.String(sb.String())
}
