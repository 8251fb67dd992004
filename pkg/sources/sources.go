// Package sources enumerates the data sources the pipeline reconciles and
// the known publication versions of the scraped listing.
package sources

import (
	"sort"
)

// Type identifies a data source.
type Type string

// The five sources, in rough order of authority for the core fields.
const (
	// Extra is the hand-maintained corrections file, applied last and
	// allowed to squash any field.
	Extra Type = "extra"

	// Scraped is the NBS website listing, authoritative for code, name_zh
	// and level.
	Scraped Type = "nbs"

	// Historical is the CITAS data set (1982-1992 GuoBiao codes) carrying
	// pinyin and romanized names.
	Historical Type = "citas"

	// Standard is the transcription of the printed GB/T 2260-2007 standard.
	Standard Type = "gbt2260"

	// Supplement extends and corrects the Standard transcription.
	Supplement Type = "gbt2260-sup"
)

// String returns the string representation of the source type.
func (t Type) String() string { return string(t) }

// IsValid checks if the source type is one of the known sources.
func (t Type) IsValid() bool {
	switch t {
	case Extra, Scraped, Historical, Standard, Supplement:
		return true
	default:
		return false
	}
}

// All returns all source types.
func All() []Type {
	return []Type{Extra, Scraped, Historical, Standard, Supplement}
}

// baseURL is the common prefix of every known listing URL.
const baseURL = "http://www.stats.gov.cn/tjsj/tjbz/xzqhdm/"

// versions maps each known publication date of the scraped listing to its
// URL path under baseURL.
var versions = map[string]string{
	"2015-09-30": "201608/t20160809_1386477.html",
	"2014-10-31": "201504/t20150415_712722.html",
	"2013-08-31": "201401/t20140116_501070.html",
	"2012-10-31": "201301/t20130118_38316.html",
}

// DefaultVersion is the most recent known publication date.
const DefaultVersion = "2015-09-30"

// Versions returns the known publication dates, newest first.
func Versions() []string {
	out := make([]string, 0, len(versions))
	for v := range versions {
		out = append(out, v)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(out)))
	return out
}

// URL returns the listing URL for a publication date.
func URL(version string) (string, bool) {
	path, ok := versions[version]
	if !ok {
		return "", false
	}
	return baseURL + path, true
}

// IsVersion reports whether version is a known publication date.
func IsVersion(version string) bool {
	_, ok := versions[version]
	return ok
}
