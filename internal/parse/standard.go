package parse

import (
	"context"
	"io"

	"github.com/gbdata/gb2260/pkg/division"
	"github.com/gbdata/gb2260/pkg/errors"
	"github.com/gbdata/gb2260/pkg/logging"
	"github.com/gbdata/gb2260/pkg/sources"
)

// Standard parses a GB/T 2260-2007 transcription CSV. Both the primary file
// and the supplement share the column set: code, name_zh and level, plus
// optional name_pinyin, name_en, alpha, latitude and longitude. Rows without
// a code are skipped and logged; other fields may be sparse because the
// supplement patches single columns of existing rows.
func Standard(ctx context.Context, r io.Reader, source sources.Type, file string) (*division.Set, error) {
	log := logging.FromContext(ctx)

	rows, err := readRows(r, source.String(), file)
	if err != nil {
		return nil, err
	}

	set := division.NewSet()
	for _, row := range rows {
		code, ok := row.intField("code")
		if !ok || !division.ValidCode(code) {
			log.Warn().Int("line", row.line).Str("file", file).Msg("skipping row without six-digit code")
			continue
		}

		rec := division.Record{Code: code}
		if name, _ := row.get("name_zh"); name != "" {
			rec.NameZH = name
		}
		if level, ok := row.intField("level"); ok {
			rec.Level = level
		}
		rec.NamePinyin = row.stringField("name_pinyin")
		rec.NameEN = row.stringField("name_en")
		rec.Alpha = row.stringField("alpha")

		if rec.Latitude, err = row.floatField("latitude"); err != nil {
			log.Warn().Int("line", row.line).Str("file", file).Msg("skipping row with bad latitude")
			continue
		}
		if rec.Longitude, err = row.floatField("longitude"); err != nil {
			log.Warn().Int("line", row.line).Str("file", file).Msg("skipping row with bad longitude")
			continue
		}

		set.Add(rec)
	}

	if set.Len() == 0 {
		return nil, errors.NewSourceError(source.String(), "", errors.ErrEmptyDataset)
	}
	return set, nil
}

// ApplySupplement folds the supplement into the primary transcription before
// matching. For rows present in both, the supplement wins on every field it
// populates, except that an absent or empty value never clobbers a populated
// one. Rows only in the supplement are added as-is.
func ApplySupplement(primary, supplement *division.Set) *division.Set {
	out := division.NewSet()
	for _, rec := range primary.Ordered() {
		out.Add(rec.Clone())
	}

	for _, sup := range supplement.Ordered() {
		base, ok := out.Get(sup.Code)
		if !ok {
			out.Add(sup.Clone())
			continue
		}

		if sup.NameZH != "" {
			base.NameZH = sup.NameZH
		}
		if sup.Level != 0 {
			base.Level = sup.Level
		}
		if sup.NamePinyin != nil {
			base.NamePinyin = sup.NamePinyin
		}
		if sup.NameEN != nil {
			base.NameEN = sup.NameEN
		}
		if sup.Alpha != nil {
			base.Alpha = sup.Alpha
		}
		if sup.Latitude != nil {
			base.Latitude = sup.Latitude
		}
		if sup.Longitude != nil {
			base.Longitude = sup.Longitude
		}
		out.Add(base)
	}
	return out
}
