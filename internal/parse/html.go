// Package parse converts each raw source into division records: the scraped
// NBS HTML listing, the GB/T 2260-2007 transcription CSVs, the CITAS
// historical CSV and the corrections file.
package parse

import (
	"context"
	"io"
	"strconv"
	"strings"

	"golang.org/x/net/html"

	"github.com/gbdata/gb2260/pkg/division"
	"github.com/gbdata/gb2260/pkg/errors"
	"github.com/gbdata/gb2260/pkg/logging"
	"github.com/gbdata/gb2260/pkg/sources"
)

// ideographicSpace indents names in the 2014/2015 listings; one per level.
const ideographicSpace = '　'

// nbsp indents entries in the 2013 listing: 3, 5 or 7 per row.
const nbsp = ' '

// HTML parses the scraped listing for a publication date. The year decides
// the markup shape: 2012 uses table rows, 2013 encodes the level in runs of
// non-breaking spaces, 2014 and later indent the name with ideographic
// spaces inside the last span.
//
// Rows without a parseable code or name are skipped and logged. An empty
// result is an error.
func HTML(ctx context.Context, r io.Reader, version string) (*division.Set, error) {
	log := logging.FromContext(ctx)

	doc, err := html.Parse(r)
	if err != nil {
		return nil, errors.WrapSource(sources.Scraped.String(), version, err)
	}

	year := versionYear(version)

	// The listing body sits inside the TRS editor div; scope to it when
	// present so navigation paragraphs do not show up as rows.
	root := doc
	if editors := findAll(doc, func(n *html.Node) bool {
		return n.Type == html.ElementNode && hasClass(n, "TRS_Editor")
	}); len(editors) > 0 {
		root = editors[0]
	}

	var rows []*html.Node
	if year == 2012 {
		rows = findAll(root, isElement("tr"))
	} else {
		rows = findAll(root, func(n *html.Node) bool {
			return isElement("p")(n) && hasClass(n, "MsoNormal")
		})
	}

	set := division.NewSet()
	skipped := 0
	for _, row := range rows {
		text := nodeText(row)
		if strings.TrimSpace(text) == "" {
			continue
		}

		var rec division.Record
		var perr error
		switch year {
		case 2012:
			rec, perr = fromCells(row)
		case 2013:
			rec, perr = fromIndentRun(text)
		default:
			rec, perr = fromSpans(row)
			if perr != nil {
				// Some rows fold code and name into one span; fall back to
				// the bare text.
				rec, perr = fromBareText(text)
			}
		}
		if perr != nil {
			skipped++
			log.Warn().Err(perr).Str("text", strings.TrimSpace(text)).Msg("skipping unparseable row")
			continue
		}
		set.Add(rec)
	}

	if set.Len() == 0 {
		return nil, errors.NewSourceError(sources.Scraped.String(), version, errors.ErrEmptyDataset)
	}
	if skipped > 0 {
		log.Info().Int("skipped", skipped).Int("parsed", set.Len()).Msg("parsed listing with skips")
	}
	return set, nil
}

// fromCells extracts a 2012-style record from a table row: the first cell
// holds the code, the last cell the name. Cell texts are read individually
// because nothing separates them once the row is flattened to text.
func fromCells(row *html.Node) (division.Record, error) {
	cells := findAll(row, isElement("td"))
	if len(cells) < 2 {
		return division.Record{}, errors.NewParseError(sources.Scraped.String(), "", 0,
			"row lacks code and name cells")
	}

	code, err := strconv.Atoi(strings.TrimSpace(nodeText(cells[0])))
	if err != nil || !division.ValidCode(code) {
		return division.Record{}, errors.NewParseError(sources.Scraped.String(), "", 0,
			"first cell is not a six-digit code")
	}

	name := strings.TrimSpace(strings.ReplaceAll(nodeText(cells[len(cells)-1]), string(nbsp), " "))
	if name == "" {
		return division.Record{}, errors.NewParseError(sources.Scraped.String(), "", 0,
			"empty name")
	}

	return division.Record{Code: code, NameZH: name, Level: division.Level(code)}, nil
}

// fromBareText extracts a record from whitespace-separated text: code at the
// beginning, name at the end, level derived from the code's zero parts.
func fromBareText(text string) (division.Record, error) {
	fields := strings.Fields(strings.ReplaceAll(text, string(nbsp), " "))
	if len(fields) < 2 {
		return division.Record{}, errors.NewParseError(sources.Scraped.String(), "", 0,
			"row lacks code and name")
	}

	code, err := strconv.Atoi(fields[0])
	if err != nil || !division.ValidCode(code) {
		return division.Record{}, errors.NewParseError(sources.Scraped.String(), "", 0,
			"no six-digit code at row start")
	}

	return division.Record{
		Code:   code,
		NameZH: fields[len(fields)-1],
		Level:  division.Level(code),
	}, nil
}

// fromIndentRun extracts a 2013-style record. Stripping stray spaces and
// splitting on non-breaking spaces leaves 4, 6 or 8 parts; the count
// encodes the administrative level.
func fromIndentRun(text string) (division.Record, error) {
	parts := strings.Split(strings.ReplaceAll(text, " ", ""), string(nbsp))
	if len(parts) != 4 && len(parts) != 6 && len(parts) != 8 {
		return division.Record{}, errors.NewParseError(sources.Scraped.String(), "", 0,
			"unexpected indent width")
	}

	code, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil || !division.ValidCode(code) {
		return division.Record{}, errors.NewParseError(sources.Scraped.String(), "", 0,
			"no six-digit code at row start")
	}
	name := strings.TrimSpace(parts[len(parts)-1])
	if name == "" {
		return division.Record{}, errors.NewParseError(sources.Scraped.String(), "", 0,
			"empty name")
	}

	return division.Record{
		Code:   code,
		NameZH: name,
		Level:  (len(parts) - 2) / 2,
	}, nil
}

// fromSpans extracts a 2014/2015-style record: the first span holds the
// code, the last span holds the name preceded by one ideographic space per
// level. A wrong indent count falls back to the code-derived level.
func fromSpans(row *html.Node) (division.Record, error) {
	spans := findAll(row, isElement("span"))
	if len(spans) < 2 {
		return division.Record{}, errors.NewParseError(sources.Scraped.String(), "", 0,
			"row lacks code and name spans")
	}

	code, err := strconv.Atoi(strings.TrimSpace(nodeText(spans[0])))
	if err != nil || !division.ValidCode(code) {
		return division.Record{}, errors.NewParseError(sources.Scraped.String(), "", 0,
			"first span is not a six-digit code")
	}

	nameText := nodeText(spans[len(spans)-1])
	level := strings.Count(nameText, string(ideographicSpace))
	if level < 1 || level > 3 {
		level = division.Level(code)
	}

	name := strings.TrimSpace(strings.ReplaceAll(nameText, string(ideographicSpace), ""))
	if name == "" {
		return division.Record{}, errors.NewParseError(sources.Scraped.String(), "", 0,
			"empty name")
	}

	return division.Record{Code: code, NameZH: name, Level: level}, nil
}

// versionYear returns the leading year of a publication date like
// "2015-09-30", or 0 when it cannot be read.
func versionYear(version string) int {
	if len(version) < 4 {
		return 0
	}
	year, err := strconv.Atoi(version[:4])
	if err != nil {
		return 0
	}
	return year
}

// isElement matches element nodes by tag name.
func isElement(tag string) func(*html.Node) bool {
	return func(n *html.Node) bool {
		return n.Type == html.ElementNode && n.Data == tag
	}
}

// hasClass reports whether the node's class attribute contains name.
func hasClass(n *html.Node, name string) bool {
	for _, attr := range n.Attr {
		if attr.Key != "class" {
			continue
		}
		for _, c := range strings.Fields(attr.Val) {
			if c == name {
				return true
			}
		}
	}
	return false
}

// findAll returns all nodes under root matching pred, in document order.
func findAll(root *html.Node, pred func(*html.Node) bool) []*html.Node {
	var out []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if pred(n) {
			out = append(out, n)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)
	return out
}

// nodeText concatenates all text under n.
func nodeText(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return sb.String()
}
