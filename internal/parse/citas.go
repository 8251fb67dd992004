package parse

import (
	"context"
	"io"
	"regexp"
	"strings"

	"github.com/gbdata/gb2260/pkg/division"
	"github.com/gbdata/gb2260/pkg/errors"
	"github.com/gbdata/gb2260/pkg/logging"
	"github.com/gbdata/gb2260/pkg/sources"
)

// editionCutoff selects the CITAS rows belonging to the final edition of
// the 1982-1992 GuoBiao code table.
const editionCutoff = "19941231"

// suffixes are the romanized division-type words that trail CITAS names;
// they name the kind of area, not the area itself.
var suffixes = []string{
	"kuangqu",   // 矿区, mining area
	"qi",        // 旗, banner
	"qu",        // 区, area
	"shi",       // 市, city
	"xian",      // 县, county
	"zizhixian", // 自治县, autonomous county
	"zizhizhou", // 自治州, autonomous state
}

// nameEN strips the parent-name prefix and the type suffix from a CITAS
// romanized name: "Beijing: Dongcheng qu" reduces to "Dongcheng".
var nameEN = regexp.MustCompile(`(?:[^:]*: )?(.*?)(?: (` + strings.Join(suffixes, "|") + `))?$`)

// Historical parses the CITAS CSV. Rows outside the edition cutoff are
// dropped. The legacy C-gbcode is carried as the record code when it has
// the six-digit shape; the matcher decides whether it still maps to a
// current division or needs name matching.
func Historical(ctx context.Context, r io.Reader, file string) (*division.Set, error) {
	log := logging.FromContext(ctx)

	rows, err := readRows(r, sources.Historical.String(), file)
	if err != nil {
		return nil, err
	}

	set := division.NewSet()
	for _, row := range rows {
		if toDate, _ := row.get("todate"); toDate != editionCutoff {
			continue
		}

		code, ok := row.intField("C-gbcode")
		if !ok || !division.ValidCode(code) {
			log.Warn().Int("line", row.line).Str("file", file).Msg("skipping row without usable legacy code")
			continue
		}

		name, _ := row.get("N-hanzi")
		if name == "" {
			log.Warn().Int("line", row.line).Str("file", file).Msg("skipping row without Chinese name")
			continue
		}

		rec := division.Record{
			Code:   code,
			NameZH: name,
			Level:  division.Level(code),
		}
		if pinyin := row.stringField("N-pinyin"); pinyin != nil {
			rec.NamePinyin = division.StringPtr(cleanRomanized(*pinyin))
		}
		if local := row.stringField("N-local"); local != nil {
			rec.NameEN = division.StringPtr(CleanNameEN(cleanRomanized(*local)))
		}
		rec.Alpha = row.stringField("alpha")

		set.Add(rec)
	}

	if set.Len() == 0 {
		return nil, errors.NewSourceError(sources.Historical.String(), "", errors.ErrEmptyDataset)
	}
	return set, nil
}

// cleanRomanized replaces the CITAS backtick apostrophes, as in "Xi`an".
func cleanRomanized(s string) string {
	return strings.ReplaceAll(s, "`", "'")
}

// CleanNameEN normalizes a CITAS romanized name to a bare English name:
// " shixiaqu" becomes " city area", then the parent prefix and type suffix
// are stripped.
func CleanNameEN(s string) string {
	s = strings.ReplaceAll(s, " shixiaqu", " city area")
	if m := nameEN.FindStringSubmatch(s); m != nil {
		return m[1]
	}
	return s
}
